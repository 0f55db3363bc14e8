// Package admin provides operator tasks: tokens, demo data, catalog resets,
// schema migration and audit history.
package admin

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/zander/internal/auth"
	"github.com/JonMunkholm/zander/internal/core"
	"github.com/google/uuid"
)

// ResetTimeout is the maximum duration for catalog reset operations.
const ResetTimeout = 30 * time.Second

// Actor is recorded in the audit log for operations run from the admin tool.
const Actor = "zander-admin"

//go:embed demo_products.csv
var demoCatalog string

// DemoCatalog returns the CSV used by Seed.
func DemoCatalog() string { return demoCatalog }

// Migrator applies the database schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

func adminContext(ctx context.Context, tenantID uuid.UUID) context.Context {
	ctx = core.ContextWithActor(ctx, core.Actor{TenantID: tenantID, UserID: Actor})
	return core.ContextWithUserAgent(ctx, Actor)
}

// MintToken issues a bearer token for a tenant user.
func MintToken(issuer *auth.Issuer, tenantID uuid.UUID, userID, email string, ttl time.Duration) (string, error) {
	return issuer.Mint(core.Actor{TenantID: tenantID, UserID: userID, Email: email}, ttl)
}

// Seed provisions the demo catalog through the regular import pipeline.
// Existing SKUs are updated, so running it twice leaves one copy.
func Seed(ctx context.Context, svc *core.Service, tenantID uuid.UUID) (*core.ImportResult, error) {
	rows, lines, err := core.ParseImportFileLines(demoCatalog)
	if err != nil {
		return nil, fmt.Errorf("parse demo catalog: %w", err)
	}

	result, err := svc.Import(adminContext(ctx, tenantID), tenantID, rows, lines, core.DuplicateUpdate)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	if result.Errors > 0 {
		return result, fmt.Errorf("seed: %d demo rows failed", result.Errors)
	}
	return result, nil
}

// Reset deletes every product of a tenant.
// This is a destructive operation - use with caution.
func Reset(ctx context.Context, svc *core.Service, tenantID uuid.UUID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	n, err := svc.ResetCatalog(adminContext(ctx, tenantID), tenantID)
	if err != nil {
		return 0, fmt.Errorf("reset: %w", err)
	}
	return n, nil
}

// Migrate applies the embedded schema.
func Migrate(ctx context.Context, m Migrator) error {
	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// WriteHistory prints audit entries as an aligned table.
func WriteHistory(w io.Writer, entries []core.AuditEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tACTION\tSEVERITY\tUSER\tPOLICY\tROWS\tIMPORTED\tUPDATED\tSKIPPED\tERRORS\tAFFECTED")
	for _, e := range entries {
		user := e.UserEmail
		if user == "" {
			user = e.UserID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			e.CreatedAt.Local().Format(time.DateTime),
			e.Action, e.Severity, orDash(user), orDash(string(e.DuplicateAction)),
			e.TotalRows, e.Imported, e.Updated, e.Skipped, e.Errors, e.RowsAffected,
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

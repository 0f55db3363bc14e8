package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionImport       AuditAction = "import"
	ActionCatalogReset AuditAction = "catalog_reset"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// DefaultAuditLimit is the number of entries History returns when no limit is given.
const DefaultAuditLimit = 50

// AuditEntry records one import commit or catalog reset.
type AuditEntry struct {
	ID              uuid.UUID       `json:"id"`
	Action          AuditAction     `json:"action"`
	Severity        AuditSeverity   `json:"severity"`
	TenantID        uuid.UUID       `json:"tenantId"`
	UserID          string          `json:"userId,omitempty"`
	UserEmail       string          `json:"userEmail,omitempty"`
	IPAddress       string          `json:"ipAddress,omitempty"`
	UserAgent       string          `json:"userAgent,omitempty"`
	DuplicateAction DuplicateAction `json:"duplicateAction,omitempty"`
	TotalRows       int             `json:"totalRows"`
	Imported        int             `json:"imported"`
	Updated         int             `json:"updated"`
	Skipped         int             `json:"skipped"`
	Errors          int             `json:"errors"`
	RowsAffected    int64           `json:"rowsAffected"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImport:
		return SeverityHigh
	case ActionCatalogReset:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// newAuditEntry fills the caller details from ctx.
func newAuditEntry(ctx context.Context, action AuditAction, tenantID uuid.UUID) AuditEntry {
	entry := AuditEntry{
		ID:        uuid.New(),
		Action:    action,
		Severity:  determineSeverity(action),
		TenantID:  tenantID,
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		CreatedAt: time.Now().UTC(),
	}
	if actor, ok := ActorFromContext(ctx); ok {
		entry.UserID = actor.UserID
		entry.UserEmail = actor.Email
	}
	return entry
}

// History returns recent audit entries for a tenant, newest first.
func (s *Service) History(ctx context.Context, tenantID uuid.UUID, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	entries, err := s.store.ListAudit(ctx, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return entries, nil
}

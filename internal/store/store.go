// Package store implements core.Store on PostgreSQL and in memory.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/zander/internal/config"
	"github.com/JonMunkholm/zander/internal/core"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL applied by Migrate.
func Schema() string { return schemaSQL }

// ErrProductNotFound is returned when an update targets a product that no
// longer exists for the tenant.
var ErrProductNotFound = errors.New("product not found")

// Backend is a store the binaries can migrate and close.
type Backend interface {
	core.Store
	Migrate(ctx context.Context) error
	Close()
}

var (
	_ Backend = (*Postgres)(nil)
	_ Backend = (*Memory)(nil)
)

// Open returns the backend named by kind: "postgres" or "memory".
func Open(ctx context.Context, kind string, db config.DatabaseConfig) (Backend, error) {
	switch strings.ToLower(kind) {
	case "postgres":
		pg, err := Connect(ctx, db)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store %q", kind)
	}
}

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Canonical field names of an import row.
const (
	FieldName         = "name"
	FieldDescription  = "description"
	FieldSKU          = "sku"
	FieldCategory     = "category"
	FieldType         = "type"
	FieldStatus       = "status"
	FieldBasePrice    = "basePrice"
	FieldUnit         = "unit"
	FieldCostOfGoods  = "costOfGoods"
	FieldPricingModel = "pricingModel"
)

// CanonicalFields lists every field an import row may carry, in template order
// followed by the optional extras.
var CanonicalFields = []string{
	FieldName, FieldSKU, FieldType, FieldBasePrice, FieldUnit,
	FieldCategory, FieldStatus, FieldDescription, FieldCostOfGoods, FieldPricingModel,
}

// IsCanonicalField reports whether key is one of CanonicalFields.
func IsCanonicalField(key string) bool {
	for _, f := range CanonicalFields {
		if f == key {
			return true
		}
	}
	return false
}

// Product type and status enumerations.
var (
	ProductTypes    = []string{"PHYSICAL", "SERVICE", "SUBSCRIPTION", "DIGITAL", "ACCESS", "BUNDLE"}
	ProductStatuses = []string{"ACTIVE", "DRAFT", "DISCONTINUED"}
	PricingModels   = []string{"FIXED", "PER_UNIT", "TIERED", "VOLUME", "USAGE"}
)

// Defaults applied when a created product omits the field.
const (
	DefaultProductType  = "PHYSICAL"
	DefaultStatus       = "ACTIVE"
	DefaultPricingModel = "FIXED"
)

// ImportRow maps canonical field names to raw, trimmed string values.
// No type coercion happens at parse time.
type ImportRow map[string]string

// Name returns the row's product name.
func (r ImportRow) Name() string { return r[FieldName] }

// SKU returns the row's SKU.
func (r ImportRow) SKU() string { return r[FieldSKU] }

// ValidationResult is the backend verdict for one submitted row.
type ValidationResult struct {
	Row               int       `json:"row"`
	Data              ImportRow `json:"data"`
	Errors            []string  `json:"errors"`
	Warnings          []string  `json:"warnings"`
	IsDuplicate       bool      `json:"isDuplicate"`
	ExistingProductID string    `json:"existingProductId,omitempty"`
}

// HasErrors reports whether the row is blocked from import.
func (r ValidationResult) HasErrors() bool { return len(r.Errors) > 0 }

// ValidationSummary aggregates a list of ValidationResult.
//
// Valid and Invalid partition Total. Duplicates overlaps both.
// HasWarnings counts rows carrying at least one warning.
type ValidationSummary struct {
	Total       int `json:"total"`
	Valid       int `json:"valid"`
	Invalid     int `json:"invalid"`
	Duplicates  int `json:"duplicates"`
	HasWarnings int `json:"hasWarnings"`
}

// Summarize builds the summary for a list of results.
func Summarize(results []ValidationResult) ValidationSummary {
	s := ValidationSummary{Total: len(results)}
	for _, r := range results {
		if r.HasErrors() {
			s.Invalid++
		} else {
			s.Valid++
		}
		if r.IsDuplicate {
			s.Duplicates++
		}
		if len(r.Warnings) > 0 {
			s.HasWarnings++
		}
	}
	return s
}

// DetailStatus is the per-row outcome of an import.
type DetailStatus string

const (
	StatusImported DetailStatus = "imported"
	StatusUpdated  DetailStatus = "updated"
	StatusSkipped  DetailStatus = "skipped"
	StatusError    DetailStatus = "error"
)

// ImportDetail describes what happened to one row during an import.
type ImportDetail struct {
	Row     int          `json:"row"`
	Name    string       `json:"name"`
	Status  DetailStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// ImportResult is the outcome of one commit.
type ImportResult struct {
	Imported int            `json:"imported"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Details  []ImportDetail `json:"details"`
}

func (r *ImportResult) add(d ImportDetail) {
	switch d.Status {
	case StatusImported:
		r.Imported++
	case StatusUpdated:
		r.Updated++
	case StatusSkipped:
		r.Skipped++
	case StatusError:
		r.Errors++
	}
	r.Details = append(r.Details, d)
}

// ErrInvalidDuplicateAction is returned for a duplicate policy other than skip or update.
var ErrInvalidDuplicateAction = errors.New("invalid duplicate action: must be skip or update")

// DuplicateAction is the policy applied to rows whose SKU already exists.
type DuplicateAction string

const (
	DuplicateSkip   DuplicateAction = "skip"
	DuplicateUpdate DuplicateAction = "update"
)

// ParseDuplicateAction converts user input into a DuplicateAction.
func ParseDuplicateAction(s string) (DuplicateAction, error) {
	a := DuplicateAction(strings.ToLower(strings.TrimSpace(s)))
	if !a.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDuplicateAction, s)
	}
	return a, nil
}

// Valid reports whether a is a known policy.
func (a DuplicateAction) Valid() bool {
	return a == DuplicateSkip || a == DuplicateUpdate
}

// Product is a stored catalog entry.
type Product struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Name         string
	Description  string
	SKU          string
	Category     string
	Type         string
	Status       string
	BasePrice    decimal.Decimal
	Unit         string
	CostOfGoods  decimal.NullDecimal
	PricingModel string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProductUpdate carries the fields an update may overwrite.
// Nil pointers and invalid decimals leave the stored value untouched.
type ProductUpdate struct {
	Name         string
	Description  *string
	Category     *string
	Type         *string
	Status       *string
	BasePrice    decimal.NullDecimal
	Unit         *string
	CostOfGoods  decimal.NullDecimal
	PricingModel *string
}

// Apply overwrites p with every field set on u.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != "" {
		p.Name = u.Name
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Description, u.Description)
	set(&p.Category, u.Category)
	set(&p.Type, u.Type)
	set(&p.Status, u.Status)
	set(&p.Unit, u.Unit)
	set(&p.PricingModel, u.PricingModel)
	if u.BasePrice.Valid {
		p.BasePrice = u.BasePrice.Decimal
	}
	if u.CostOfGoods.Valid {
		p.CostOfGoods = u.CostOfGoods
	}
}

// Store is the persistence layer used by Service.
// Implementations live in the store package.
type Store interface {
	// FindBySKUs returns the product id for each of skus that exists for the tenant.
	FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string) (map[string]uuid.UUID, error)

	// Begin starts a write transaction.
	Begin(ctx context.Context) (ProductTx, error)

	// RecordAudit appends an entry to the import audit log.
	RecordAudit(ctx context.Context, entry AuditEntry) error

	// ListAudit returns the most recent audit entries for a tenant, newest first.
	ListAudit(ctx context.Context, tenantID uuid.UUID, limit int) ([]AuditEntry, error)

	// DeleteTenantProducts removes every product of a tenant.
	DeleteTenantProducts(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// CountProducts returns the number of products a tenant owns.
	CountProducts(ctx context.Context, tenantID uuid.UUID) (int64, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// ProductTx is a write transaction.
//
// A failed Create or Update discards only that write; the transaction stays
// usable for the following rows.
type ProductTx interface {
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, tenantID, id uuid.UUID, u ProductUpdate) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

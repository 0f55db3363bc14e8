package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/JonMunkholm/zander/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMaxRows is the per-request row cap when Options.MaxRows is unset.
const DefaultMaxRows = 5000

// ContextCheckInterval is how many rows are written between cancellation checks.
const ContextCheckInterval = 100

var (
	// ErrNoRows is returned when a validate or import request carries no rows.
	ErrNoRows = errors.New("no rows provided")

	// ErrTooManyRows is returned when a request exceeds the row cap.
	ErrTooManyRows = errors.New("too many rows")

	// ErrLineCount is returned when line numbers are sent but do not pair
	// one to one with the rows.
	ErrLineCount = errors.New("invalid request body: lines must hold one entry per row")
)

// Options configures a Service.
type Options struct {
	MaxRows       int
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service validates and commits product imports for a tenant.
type Service struct {
	store     Store
	validator *RowValidator
	limiter   *ImportLimiter
	maxRows   int
}

// NewService creates a new Service instance.
func NewService(store Store, opts Options) *Service {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	return &Service{
		store:     store,
		validator: NewRowValidator(),
		limiter:   NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		maxRows:   opts.MaxRows,
	}
}

// Limiter exposes the import limiter for draining on shutdown and health reporting.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Ping checks the underlying store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Validate checks rows without writing anything. lines optionally carries the
// file line of each row for diagnostics; pass nil to number rows by position.
func (s *Service) Validate(ctx context.Context, tenantID uuid.UUID, rows []ImportRow, lines []int) ([]ValidationResult, ValidationSummary, error) {
	if err := s.checkRows(rows, lines); err != nil {
		return nil, ValidationSummary{}, err
	}

	results, err := s.validate(ctx, tenantID, rows, lines)
	if err != nil {
		return nil, ValidationSummary{}, err
	}

	summary := Summarize(results)
	logging.FromContext(ctx).Debug("rows validated",
		"tenant_id", tenantID,
		"total", summary.Total,
		"invalid", summary.Invalid,
		"duplicates", summary.Duplicates,
	)
	return results, summary, nil
}

// Import re-validates rows and writes the importable ones.
//
// All writes share one transaction. A row whose write fails is reported as an
// error while the remaining rows still commit. Rows with validation errors are
// never written. Duplicate rows follow action. lines is as for Validate.
func (s *Service) Import(ctx context.Context, tenantID uuid.UUID, rows []ImportRow, lines []int, action DuplicateAction) (*ImportResult, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDuplicateAction, action)
	}
	if err := s.checkRows(rows, lines); err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	logger := logging.WithFields(ctx,
		"tenant_id", tenantID,
		"rows", len(rows),
		"duplicate_action", action,
	)
	start := time.Now()
	logger.Info("import started")

	results, err := s.validate(ctx, tenantID, rows, lines)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result := &ImportResult{Details: make([]ImportDetail, 0, len(results))}
	for i, res := range results {
		if i%ContextCheckInterval == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result.add(s.commitRow(ctx, logger, tx, tenantID, res, action))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	logger.Info("import completed",
		"imported", result.Imported,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", result.Errors,
		"duration", time.Since(start),
	)

	entry := newAuditEntry(ctx, ActionImport, tenantID)
	entry.DuplicateAction = action
	entry.TotalRows = len(rows)
	entry.Imported = result.Imported
	entry.Updated = result.Updated
	entry.Skipped = result.Skipped
	entry.Errors = result.Errors
	entry.RowsAffected = int64(result.Imported + result.Updated)
	if err := s.store.RecordAudit(ctx, entry); err != nil {
		logger.Warn("failed to record import audit", "error", err)
	}

	return result, nil
}

// commitRow decides the outcome of one validated row and performs its write.
func (s *Service) commitRow(ctx context.Context, logger *slog.Logger, tx ProductTx, tenantID uuid.UUID, res ValidationResult, action DuplicateAction) ImportDetail {
	detail := ImportDetail{Row: res.Row, Name: res.Data.Name()}

	switch {
	case res.HasErrors():
		detail.Status = StatusError
		detail.Message = res.Errors[0]
		if len(res.Errors) > 1 {
			detail.Message = fmt.Sprintf("%s (and %d more)", res.Errors[0], len(res.Errors)-1)
		}

	case res.IsDuplicate && action == DuplicateSkip:
		detail.Status = StatusSkipped
		detail.Message = fmt.Sprintf("Product with SKU '%s' already exists", res.Data.SKU())

	case res.IsDuplicate:
		id, err := uuid.Parse(res.ExistingProductID)
		if err == nil {
			err = tx.Update(ctx, tenantID, id, newProductUpdate(res.Data))
		}
		if err != nil {
			logger.Warn("row update failed", "row", res.Row, "error", err)
			detail.Status = StatusError
			detail.Message = MapError(err).Message
			break
		}
		detail.Status = StatusUpdated

	default:
		if err := tx.Create(ctx, newProduct(tenantID, res.Data)); err != nil {
			logger.Warn("row insert failed", "row", res.Row, "error", err)
			detail.Status = StatusError
			detail.Message = MapError(err).Message
			break
		}
		detail.Status = StatusImported
	}

	return detail
}

// ResetCatalog deletes every product of a tenant and records the reset.
func (s *Service) ResetCatalog(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	n, err := s.store.DeleteTenantProducts(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}

	entry := newAuditEntry(ctx, ActionCatalogReset, tenantID)
	entry.RowsAffected = n
	if err := s.store.RecordAudit(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("failed to record reset audit", "tenant_id", tenantID, "error", err)
	}

	logging.FromContext(ctx).Info("catalog reset", "tenant_id", tenantID, "deleted", n)
	return n, nil
}

// CountProducts returns the number of products a tenant owns.
func (s *Service) CountProducts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return s.store.CountProducts(ctx, tenantID)
}

func (s *Service) checkRows(rows []ImportRow, lines []int) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	if len(rows) > s.maxRows {
		return fmt.Errorf("%w: %d exceeds the limit of %d", ErrTooManyRows, len(rows), s.maxRows)
	}
	if lines != nil && len(lines) != len(rows) {
		return fmt.Errorf("%w: got %d for %d rows", ErrLineCount, len(lines), len(rows))
	}
	return nil
}

func (s *Service) validate(ctx context.Context, tenantID uuid.UUID, rows []ImportRow, lines []int) ([]ValidationResult, error) {
	existing, err := s.store.FindBySKUs(ctx, tenantID, collectSKUs(rows))
	if err != nil {
		return nil, fmt.Errorf("find existing products: %w", err)
	}
	return s.validator.ValidateRows(rows, lines, existing), nil
}

// collectSKUs returns the distinct non-empty SKUs of rows in first-seen order.
func collectSKUs(rows []ImportRow) []string {
	skus := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		sku := strings.TrimSpace(r[FieldSKU])
		if sku == "" || seen[sku] {
			continue
		}
		seen[sku] = true
		skus = append(skus, sku)
	}
	return skus
}

// newProduct builds a product for insertion from normalized row data.
func newProduct(tenantID uuid.UUID, data ImportRow) Product {
	p := Product{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Name:         data[FieldName],
		Description:  data[FieldDescription],
		SKU:          data[FieldSKU],
		Category:     data[FieldCategory],
		Type:         orDefault(data[FieldType], DefaultProductType),
		Status:       orDefault(data[FieldStatus], DefaultStatus),
		Unit:         data[FieldUnit],
		PricingModel: pricingModel(data[FieldPricingModel]),
	}
	if d, err := ParseAmount(data[FieldBasePrice]); err == nil {
		p.BasePrice = d
	}
	if d, err := ParseAmount(data[FieldCostOfGoods]); err == nil {
		p.CostOfGoods = decimal.NewNullDecimal(d)
	}
	return p
}

// newProductUpdate builds an update that only touches fields present in data.
func newProductUpdate(data ImportRow) ProductUpdate {
	u := ProductUpdate{
		Name:        data[FieldName],
		Description: optional(data[FieldDescription]),
		Category:    optional(data[FieldCategory]),
		Type:        optional(data[FieldType]),
		Status:      optional(data[FieldStatus]),
		Unit:        optional(data[FieldUnit]),
	}
	if pm := data[FieldPricingModel]; pm != "" {
		pm = pricingModel(pm)
		u.PricingModel = &pm
	}
	if d, err := ParseAmount(data[FieldBasePrice]); err == nil {
		u.BasePrice = decimal.NewNullDecimal(d)
	}
	if d, err := ParseAmount(data[FieldCostOfGoods]); err == nil {
		u.CostOfGoods = decimal.NewNullDecimal(d)
	}
	return u
}

func pricingModel(s string) string {
	if slices.Contains(PricingModels, s) {
		return s
	}
	return DefaultPricingModel
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

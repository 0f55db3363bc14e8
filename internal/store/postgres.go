package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/zander/internal/config"
	"github.com/JonMunkholm/zander/internal/core"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Postgres is a core.Store backed by a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect opens a pool configured from cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Migrate applies the embedded schema. It is safe to run repeatedly.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// FindBySKUs returns the ids of the tenant's products whose SKU is in skus.
func (p *Postgres) FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string) (map[string]uuid.UUID, error) {
	found := make(map[string]uuid.UUID, len(skus))
	if len(skus) == 0 {
		return found, nil
	}

	rows, err := p.pool.Query(ctx,
		`SELECT sku, id FROM products WHERE tenant_id = $1 AND sku = ANY($2)`,
		tenantID, skus)
	if err != nil {
		return nil, fmt.Errorf("query products by sku: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sku string
			id  uuid.UUID
		)
		if err := rows.Scan(&sku, &id); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		found[sku] = id
	}
	return found, rows.Err()
}

// CountProducts returns the number of products a tenant owns.
func (p *Postgres) CountProducts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var n int64
	err := p.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE tenant_id = $1`, tenantID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// DeleteTenantProducts removes every product of a tenant.
func (p *Postgres) DeleteTenantProducts(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM products WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return 0, fmt.Errorf("delete products: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetProduct loads one product.
func (p *Postgres) GetProduct(ctx context.Context, tenantID, id uuid.UUID) (core.Product, error) {
	var (
		prod        core.Product
		description pgtype.Text
		sku         pgtype.Text
		category    pgtype.Text
		unit        pgtype.Text
		basePrice   pgtype.Numeric
		cost        pgtype.Numeric
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, description, sku, category, type, status,
		       base_price, unit, cost_of_goods, pricing_model, created_at, updated_at
		FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id,
	).Scan(&prod.ID, &prod.TenantID, &prod.Name, &description, &sku, &category,
		&prod.Type, &prod.Status, &basePrice, &unit, &cost, &prod.PricingModel,
		&prod.CreatedAt, &prod.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Product{}, ErrProductNotFound
	}
	if err != nil {
		return core.Product{}, fmt.Errorf("get product: %w", err)
	}

	prod.Description = description.String
	prod.SKU = sku.String
	prod.Category = category.String
	prod.Unit = unit.String
	prod.BasePrice = core.FromPgNumeric(basePrice).Decimal
	prod.CostOfGoods = core.FromPgNumeric(cost)
	return prod, nil
}

// RecordAudit appends an audit entry.
func (p *Postgres) RecordAudit(ctx context.Context, e core.AuditEntry) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO import_audit (
			id, action, severity, tenant_id, user_id, user_email, ip_address, user_agent,
			duplicate_action, total_rows, imported, updated, skipped, errors, rows_affected, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		e.ID, string(e.Action), string(e.Severity), e.TenantID,
		core.ToPgText(e.UserID), core.ToPgText(e.UserEmail),
		core.ToPgText(e.IPAddress), core.ToPgText(e.UserAgent),
		core.ToPgText(string(e.DuplicateAction)),
		e.TotalRows, e.Imported, e.Updated, e.Skipped, e.Errors, e.RowsAffected,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListAudit returns the most recent audit entries for a tenant, newest first.
func (p *Postgres) ListAudit(ctx context.Context, tenantID uuid.UUID, limit int) ([]core.AuditEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, action, severity, tenant_id, user_id, user_email, ip_address, user_agent,
		       duplicate_action, total_rows, imported, updated, skipped, errors, rows_affected, created_at
		FROM import_audit
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []core.AuditEntry
	for rows.Next() {
		var (
			e                                core.AuditEntry
			action, severity                 string
			userID, email, ip, ua, dupAction pgtype.Text
		)
		if err := rows.Scan(&e.ID, &action, &severity, &e.TenantID, &userID, &email, &ip, &ua,
			&dupAction, &e.TotalRows, &e.Imported, &e.Updated, &e.Skipped, &e.Errors,
			&e.RowsAffected, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = core.AuditAction(action)
		e.Severity = core.AuditSeverity(severity)
		e.UserID = userID.String
		e.UserEmail = email.String
		e.IPAddress = ip.String
		e.UserAgent = ua.String
		e.DuplicateAction = core.DuplicateAction(dupAction.String)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Begin starts a write transaction.
func (p *Postgres) Begin(ctx context.Context) (core.ProductTx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

// pgTx wraps every write in its own savepoint so one failed row does not
// abort the surrounding transaction.
type pgTx struct {
	tx pgx.Tx
	n  int
}

func (t *pgTx) savepoint(ctx context.Context, fn func() error) error {
	t.n++
	name := fmt.Sprintf("sp_%d", t.n)

	if _, err := t.tx.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("create savepoint: %w", err)
	}

	if err := fn(); err != nil {
		_, _ = t.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name)
		return err
	}

	_, _ = t.tx.Exec(ctx, "RELEASE SAVEPOINT "+name)
	return nil
}

func (t *pgTx) Create(ctx context.Context, p core.Product) error {
	now := time.Now().UTC()
	return t.savepoint(ctx, func() error {
		_, err := t.tx.Exec(ctx, `
			INSERT INTO products (
				id, tenant_id, name, description, sku, category, type, status,
				base_price, unit, cost_of_goods, pricing_model, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
			p.ID, p.TenantID, p.Name,
			core.ToPgText(p.Description), core.ToPgText(p.SKU), core.ToPgText(p.Category),
			p.Type, p.Status,
			core.ToPgNumeric(decimal.NewNullDecimal(p.BasePrice)), core.ToPgText(p.Unit),
			core.ToPgNumeric(p.CostOfGoods), p.PricingModel, now,
		)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		return nil
	})
}

func (t *pgTx) Update(ctx context.Context, tenantID, id uuid.UUID, u core.ProductUpdate) error {
	return t.savepoint(ctx, func() error {
		tag, err := t.tx.Exec(ctx, `
			UPDATE products SET
				name          = COALESCE($3, name),
				description   = COALESCE($4, description),
				category      = COALESCE($5, category),
				type          = COALESCE($6, type),
				status        = COALESCE($7, status),
				base_price    = COALESCE($8, base_price),
				unit          = COALESCE($9, unit),
				cost_of_goods = COALESCE($10, cost_of_goods),
				pricing_model = COALESCE($11, pricing_model),
				updated_at    = now()
			WHERE tenant_id = $1 AND id = $2`,
			tenantID, id,
			core.ToPgText(u.Name),
			core.ToPgTextPtr(u.Description), core.ToPgTextPtr(u.Category),
			core.ToPgTextPtr(u.Type), core.ToPgTextPtr(u.Status),
			core.ToPgNumeric(u.BasePrice), core.ToPgTextPtr(u.Unit),
			core.ToPgNumeric(u.CostOfGoods), core.ToPgTextPtr(u.PricingModel),
		)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrProductNotFound
		}
		return nil
	})
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

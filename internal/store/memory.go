package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/zander/internal/core"
	"github.com/google/uuid"
)

// Memory is an in-process core.Store. It backs tests and SERVER_STORE=memory runs.
//
// Writes staged in a transaction become visible on Commit. SKU uniqueness
// per tenant is enforced like the Postgres index, with the same error text so
// error mapping behaves identically.
type Memory struct {
	mu       sync.RWMutex
	products map[uuid.UUID]core.Product
	audit    []core.AuditEntry
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{products: make(map[uuid.UUID]core.Product)}
}

func errDuplicateSKU(sku string) error {
	return fmt.Errorf(`duplicate key value violates unique constraint "products_tenant_sku_key" (sku %q)`, sku)
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Migrate is a no-op; the memory store has no schema.
func (m *Memory) Migrate(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() {}

func (m *Memory) FindBySKUs(_ context.Context, tenantID uuid.UUID, skus []string) (map[string]uuid.UUID, error) {
	want := make(map[string]bool, len(skus))
	for _, s := range skus {
		want[s] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	found := make(map[string]uuid.UUID)
	for _, p := range m.products {
		if p.TenantID == tenantID && p.SKU != "" && want[p.SKU] {
			found[p.SKU] = p.ID
		}
	}
	return found, nil
}

func (m *Memory) CountProducts(_ context.Context, tenantID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, p := range m.products {
		if p.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

func (m *Memory) DeleteTenantProducts(_ context.Context, tenantID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, p := range m.products {
		if p.TenantID == tenantID {
			delete(m.products, id)
			n++
		}
	}
	return n, nil
}

// GetProduct loads one product.
func (m *Memory) GetProduct(_ context.Context, tenantID, id uuid.UUID) (core.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok || p.TenantID != tenantID {
		return core.Product{}, ErrProductNotFound
	}
	return p, nil
}

// Products returns a tenant's products ordered by name.
func (m *Memory) Products(tenantID uuid.UUID) []core.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Product
	for _, p := range m.products {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *Memory) RecordAudit(_ context.Context, e core.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, e)
	return nil
}

func (m *Memory) ListAudit(_ context.Context, tenantID uuid.UUID, limit int) ([]core.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.AuditEntry
	for i := len(m.audit) - 1; i >= 0 && len(out) < limit; i-- {
		if m.audit[i].TenantID == tenantID {
			out = append(out, m.audit[i])
		}
	}
	return out, nil
}

func (m *Memory) Begin(context.Context) (core.ProductTx, error) {
	return &memTx{store: m, staged: make(map[uuid.UUID]core.Product)}, nil
}

// memTx keeps staged writes keyed by product id.
type memTx struct {
	store  *Memory
	staged map[uuid.UUID]core.Product
	done   bool
}

// lookup returns the product as seen from inside the transaction.
func (t *memTx) lookup(id uuid.UUID) (core.Product, bool) {
	if p, ok := t.staged[id]; ok {
		return p, true
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	p, ok := t.store.products[id]
	return p, ok
}

// skuTaken reports whether another product of the tenant already uses sku.
func (t *memTx) skuTaken(tenantID uuid.UUID, sku string, except uuid.UUID) bool {
	if sku == "" {
		return false
	}
	for id, p := range t.staged {
		if id != except && p.TenantID == tenantID && p.SKU == sku {
			return true
		}
	}
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	for id, p := range t.store.products {
		if id != except && p.TenantID == tenantID && p.SKU == sku {
			return true
		}
	}
	return false
}

func (t *memTx) Create(_ context.Context, p core.Product) error {
	if t.done {
		return fmt.Errorf("create product: transaction closed")
	}
	if t.skuTaken(p.TenantID, p.SKU, p.ID) {
		return errDuplicateSKU(p.SKU)
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	t.staged[p.ID] = p
	return nil
}

func (t *memTx) Update(_ context.Context, tenantID, id uuid.UUID, u core.ProductUpdate) error {
	if t.done {
		return fmt.Errorf("update product: transaction closed")
	}
	p, ok := t.lookup(id)
	if !ok || p.TenantID != tenantID {
		return ErrProductNotFound
	}
	u.Apply(&p)
	p.UpdatedAt = time.Now().UTC()
	t.staged[id] = p
	return nil
}

func (t *memTx) Commit(context.Context) error {
	if t.done {
		return fmt.Errorf("commit: transaction closed")
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for id, p := range t.staged {
		if p.SKU == "" {
			continue
		}
		for otherID, other := range t.store.products {
			if otherID != id && other.TenantID == p.TenantID && other.SKU == p.SKU {
				return errDuplicateSKU(p.SKU)
			}
		}
	}
	for id, p := range t.staged {
		t.store.products[id] = p
	}
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	t.done = true
	t.staged = nil
	return nil
}

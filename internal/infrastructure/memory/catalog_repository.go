package memory

import (
	"context"
	"fmt"
	"math"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
)

// CatalogRepository keeps products in memory. Every stock change happens under the
// write lock, so the capacity check and the decrement in Reserve are indivisible.
type CatalogRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	order    []string
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *CatalogRepository) List(ctx context.Context) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.products[id].Clone())
	}
	return out, nil
}

// Upsert inserts or replaces by ID. A replaced product keeps its original list position.
func (r *CatalogRepository) Upsert(ctx context.Context, product *domain.Product) error {
	_ = ctx
	if err := product.Validate(); err != nil {
		return fmt.Errorf("catalog repository: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		r.order = append(r.order, product.ID)
	}
	r.products[product.ID] = product.Clone()
	return nil
}

func (r *CatalogRepository) Reserve(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error { return p.Reduce(quantity) })
}

func (r *CatalogRepository) Release(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	return r.mutate(ctx, id, func(p *domain.Product) error { return p.Increase(quantity) })
}

func (r *CatalogRepository) ReleaseAll(ctx context.Context, changes []domain.StockChange) ([]*domain.Product, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	totals := make(map[string]int, len(changes))
	var ids []string
	for _, c := range changes {
		p, ok := r.products[c.ProductID]
		if !ok {
			continue
		}
		if _, seen := totals[c.ProductID]; !seen {
			ids = append(ids, c.ProductID)
		}
		if err := p.CanIncrease(c.Quantity); err != nil {
			return nil, fmt.Errorf("%s: %w", c.ProductID, err)
		}
		if c.Quantity > math.MaxInt-totals[c.ProductID] {
			return nil, fmt.Errorf("%s: %w", c.ProductID, domain.ErrStockOverflow)
		}
		totals[c.ProductID] += c.Quantity
		if err := p.CanIncrease(totals[c.ProductID]); err != nil {
			return nil, fmt.Errorf("%s: %w", c.ProductID, err)
		}
	}

	out := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		p := r.products[id]
		if err := p.Increase(totals[id]); err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *CatalogRepository) mutate(ctx context.Context, id string, fn func(*domain.Product) error) (*domain.Product, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

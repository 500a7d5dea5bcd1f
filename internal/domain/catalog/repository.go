package catalog

import "context"

// StockChange is one quantity to put back for a product.
type StockChange struct {
	ProductID string
	Quantity  int
}

// Repository stores products keyed by ID and is the only place stock changes.
type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	// List returns products in the order they were first added.
	List(ctx context.Context) ([]*Product, error)
	Upsert(ctx context.Context, product *Product) error
	// Reserve decrements stock only if enough is available, as one step.
	Reserve(ctx context.Context, id string, quantity int) (*Product, error)
	// Release increments stock with no capacity check.
	Release(ctx context.Context, id string, quantity int) (*Product, error)
	// ReleaseAll applies every change or none of them. Unknown products are skipped.
	ReleaseAll(ctx context.Context, changes []StockChange) ([]*Product, error)
}

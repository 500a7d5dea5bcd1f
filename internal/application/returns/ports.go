package returns

import (
	"context"

	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
)

type InventoryPort interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, bool)
	RestoreAll(ctx context.Context, changes []catalog.StockChange) error
}

// SaleFinder resolves completed sales; the sale service satisfies it.
type SaleFinder interface {
	FindSale(ctx context.Context, id string) (*transaction.Sale, bool)
}

type History interface {
	Append(ctx context.Context, r *transaction.Return) error
	List(ctx context.Context) []*transaction.Return
	Contains(ctx context.Context, id string) bool
}

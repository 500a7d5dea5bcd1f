package sale

import (
	"context"

	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
)

// InventoryPort is the slice of the inventory service a sale needs.
type InventoryPort interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, bool)
	UpdateStock(ctx context.Context, id string, delta int) error
	RestoreStock(ctx context.Context, id string, quantity int)
	RestoreAll(ctx context.Context, changes []catalog.StockChange) error
}

// History is the append-only record of completed sales.
type History interface {
	Append(ctx context.Context, s *transaction.Sale) error
	List(ctx context.Context) []*transaction.Sale
	Contains(ctx context.Context, id string) bool
	Find(ctx context.Context, id string) (*transaction.Sale, bool)
}

package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-pos/internal/application"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	inventoryService    = "inventory-service"
	useCaseAddProduct   = "inventory.add_product"
	useCaseUpdateStock  = "inventory.update_stock"
	useCaseRestoreStock = "inventory.restore_stock"
	useCaseRestoreAll   = "inventory.restore_all"
)

// Service is the sole authority over stock. Sales and returns never touch product
// records directly; they go through UpdateStock, RestoreStock and RestoreAll.
type Service struct {
	repo       catalog.Repository
	inst       *application.Instrumentation
	stockLevel observability.Gauge // catalog_stock_level{product_id}
}

func NewService(repo catalog.Repository, tel observability.Observability) *Service {
	tel = observability.OrNop(tel)
	return &Service{
		repo:       repo,
		inst:       application.NewInstrumentation(inventoryService, tel),
		stockLevel: tel.Metrics().Gauge(observability.MStockLevel),
	}
}

// GetProduct returns a copy of the product, or false when the ID is unknown.
func (s *Service) GetProduct(ctx context.Context, id string) (*catalog.Product, bool) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			s.inst.Logger().Warn("product_lookup_failed",
				observability.F("product_id", id),
				observability.F("error", err.Error()),
			)
		}
		return nil, false
	}
	return p, true
}

// GetAllProducts returns a snapshot in catalog insertion order.
func (s *Service) GetAllProducts(ctx context.Context) []*catalog.Product {
	products, err := s.repo.List(ctx)
	if err != nil {
		s.inst.Logger().Warn("product_list_failed", observability.F("error", err.Error()))
		return nil
	}
	return products
}

// AddProduct inserts or replaces the product with the same ID.
func (s *Service) AddProduct(ctx context.Context, p *catalog.Product) (err error) {
	ctx, call := s.inst.Begin(ctx, useCaseAddProduct, "AddProduct")
	defer func() { call.End(err) }()

	if err = p.Validate(); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("inventory: add product: %w", err)
	}
	call.Annotate(
		observability.F("product_id", p.ID),
		observability.F("price", p.Price.StringFixed(2)),
		observability.F("stock", p.Stock),
	)
	if err = s.repo.Upsert(ctx, p); err != nil {
		call.Fail("REPO_UPSERT_FAILED")
		return fmt.Errorf("inventory: add product %s: %w", p.ID, err)
	}
	s.observeStock(p)
	return nil
}

// Seed loads the initial catalog.
func (s *Service) Seed(ctx context.Context, products []*catalog.Product) error {
	for _, p := range products {
		if err := s.AddProduct(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// UpdateStock applies a signed stock change. A positive delta is a draw: it succeeds
// only when current stock covers it and otherwise leaves stock untouched. A zero or
// negative delta adds |delta| unconditionally.
func (s *Service) UpdateStock(ctx context.Context, id string, delta int) (err error) {
	ctx, call := s.inst.Begin(ctx, useCaseUpdateStock, "UpdateStock",
		attribute.String("product.id", id),
		attribute.Int("stock.delta", delta),
	)
	defer func() { call.End(err) }()
	call.Annotate(
		observability.F("product_id", id),
		observability.F("delta", delta),
	)

	var p *catalog.Product
	if delta > 0 {
		p, err = s.repo.Reserve(ctx, id, delta)
	} else {
		p, err = s.repo.Release(ctx, id, -delta)
	}
	if err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("inventory: update stock %s: %w", id, err)
	}

	call.Annotate(observability.F("stock", p.Stock))
	s.observeStock(p)
	return nil
}

// RestoreStock adds quantity back with no capacity check. Unknown IDs are ignored.
func (s *Service) RestoreStock(ctx context.Context, id string, quantity int) {
	var err error
	ctx, call := s.inst.Begin(ctx, useCaseRestoreStock, "RestoreStock",
		attribute.String("product.id", id),
		attribute.Int("stock.quantity", quantity),
	)
	defer func() { call.End(err) }()
	call.Annotate(
		observability.F("product_id", id),
		observability.F("quantity", quantity),
	)

	p, rerr := s.repo.Release(ctx, id, quantity)
	if rerr != nil {
		if errors.Is(rerr, catalog.ErrNotFound) {
			call.Annotate(observability.F("skipped", true))
			return
		}
		err = fmt.Errorf("inventory: restore stock %s: %w", id, rerr)
		call.Fail(statusFromError(rerr))
		return
	}

	call.Annotate(observability.F("stock", p.Stock))
	s.observeStock(p)
}

// RestoreAll puts back a batch of quantities as one step: either every known product
// is increased or, on error, none is. Unknown IDs are ignored.
func (s *Service) RestoreAll(ctx context.Context, changes []catalog.StockChange) (err error) {
	ctx, call := s.inst.Begin(ctx, useCaseRestoreAll, "RestoreAll",
		attribute.Int("stock.changes", len(changes)),
	)
	defer func() { call.End(err) }()
	call.Annotate(observability.F("changes", len(changes)))

	products, err := s.repo.ReleaseAll(ctx, changes)
	if err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("inventory: restore: %w", err)
	}
	for _, p := range products {
		s.observeStock(p)
	}
	call.Annotate(observability.F("products", len(products)))
	return nil
}

func (s *Service) observeStock(p *catalog.Product) {
	s.stockLevel.Set(float64(p.Stock), observability.L("product_id", p.ID))
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "PRODUCT_NOT_FOUND"
	case errors.Is(err, catalog.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, catalog.ErrInvalidQuantity):
		return "QUANTITY_INVALID"
	case errors.Is(err, catalog.ErrStockOverflow):
		return "STOCK_OVERFLOW"
	case errors.Is(err, catalog.ErrInvalidPrice):
		return "PRICE_INVALID"
	case errors.Is(err, catalog.ErrInvalidProduct):
		return "PRODUCT_ID_REQUIRED"
	default:
		return "REPO_FAILED"
	}
}

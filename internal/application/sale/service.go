package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-pos/internal/application"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/minishop-pos/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	saleService         = "sale-service"
	useCaseCreateSale   = "sale.create"
	useCaseAddItem      = "sale.add_item"
	useCaseCompleteSale = "sale.complete"
	useCaseCancelSale   = "sale.cancel"
)

var ErrSaleRequired = errors.New("sale: sale is required")

// Service runs the sale lifecycle. Stock is reserved as each item is added, so an
// open sale must be either completed or cancelled; an abandoned one keeps its stock.
type Service struct {
	inventory InventoryPort
	history   History
	ids       application.IDGenerator
	publisher domoutbox.Publisher
	inst      *application.Instrumentation
	now       func() time.Time
}

type Option func(*Service)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(
	inventory InventoryPort,
	history History,
	ids application.IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
	opts ...Option,
) *Service {
	s := &Service{
		inventory: inventory,
		history:   history,
		ids:       ids,
		publisher: publisher,
		inst:      application.NewInstrumentation(saleService, tel),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSale returns a fresh, empty, open sale.
func (s *Service) CreateSale(ctx context.Context) *transaction.Sale {
	_, call := s.inst.Begin(ctx, useCaseCreateSale, "CreateSale")
	sale := transaction.NewSale(s.ids.NewID(), s.now())
	call.Annotate(observability.F("sale_id", sale.ID()))
	call.End(nil)
	return sale
}

// AddItemToSale reserves quantity of the product and, only if that succeeds, appends
// a line item. A failed call leaves both the sale and the catalog unchanged.
func (s *Service) AddItemToSale(ctx context.Context, sale *transaction.Sale, productID string, quantity int) (err error) {
	if sale == nil {
		return ErrSaleRequired
	}
	ctx, call := s.inst.Begin(ctx, useCaseAddItem, "AddItemToSale",
		attribute.String("sale.id", sale.ID()),
		attribute.String("product.id", productID),
		attribute.Int("item.quantity", quantity),
	)
	defer func() { call.End(err) }()
	call.Annotate(
		observability.F("sale_id", sale.ID()),
		observability.F("product_id", productID),
		observability.F("quantity", quantity),
	)

	if sale.Status() != transaction.StatusOpen {
		call.Fail("SALE_CLOSED")
		return fmt.Errorf("sale: add item to %s: %w", sale.ID(), transaction.ErrClosed)
	}
	if quantity <= 0 {
		call.Fail("QUANTITY_INVALID")
		return fmt.Errorf("sale: add item: %w", catalog.ErrInvalidQuantity)
	}

	product, ok := s.inventory.GetProduct(ctx, productID)
	if !ok {
		call.Fail("PRODUCT_NOT_FOUND")
		return fmt.Errorf("sale: add item %s: %w", productID, catalog.ErrNotFound)
	}
	if err = s.inventory.UpdateStock(ctx, productID, quantity); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("sale: reserve: %w", err)
	}

	item, lerr := transaction.NewLineItem(product, quantity)
	if lerr == nil {
		lerr = sale.AddItem(item)
	}
	if lerr != nil {
		s.inventory.RestoreStock(ctx, productID, quantity)
		err = fmt.Errorf("sale: add item: %w", lerr)
		call.Fail(statusFromError(lerr))
		return err
	}

	call.Annotate(observability.F("sale_total", sale.Total().StringFixed(2)))
	call.Event("sale.item_added", attribute.String("product.id", productID))
	return nil
}

// CompleteSale settles the sale when the payment covers its total and moves it to
// history. On failure the sale stays open with its stock still reserved.
func (s *Service) CompleteSale(ctx context.Context, sale *transaction.Sale, method string, amount decimal.Decimal) (err error) {
	if sale == nil {
		return ErrSaleRequired
	}
	ctx, call := s.inst.Begin(ctx, useCaseCompleteSale, "CompleteSale",
		attribute.String("sale.id", sale.ID()),
		attribute.String("payment.method", method),
	)
	defer func() { call.End(err) }()
	call.Annotate(
		observability.F("sale_id", sale.ID()),
		observability.F("payment_method", method),
		observability.F("payment_amount", amount.StringFixed(2)),
		observability.F("sale_total", sale.Total().StringFixed(2)),
	)

	if s.history.Contains(ctx, sale.ID()) {
		err = fmt.Errorf("sale: record %s: %w", sale.ID(), transaction.ErrDuplicateID)
		call.Fail(statusFromError(err))
		return err
	}
	if err = sale.Complete(method, amount); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("sale: %w", err)
	}
	if err = s.history.Append(ctx, sale); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("sale: record %s: %w", sale.ID(), err)
	}

	call.Annotate(observability.F("change", sale.Change().StringFixed(2)))
	call.Publish(s.publisher, transaction.NewSaleCompletedEvent(sale))
	return nil
}

// CancelSale releases every reserved line item back to stock in one step and closes
// the sale. A cancelled sale is not recorded in history. If the release fails the sale
// stays open with its stock still reserved.
func (s *Service) CancelSale(ctx context.Context, sale *transaction.Sale) (err error) {
	if sale == nil {
		return ErrSaleRequired
	}
	ctx, call := s.inst.Begin(ctx, useCaseCancelSale, "CancelSale",
		attribute.String("sale.id", sale.ID()),
	)
	defer func() { call.End(err) }()
	call.Annotate(
		observability.F("sale_id", sale.ID()),
		observability.F("items", sale.ItemCount()),
	)

	if sale.Status() != transaction.StatusOpen {
		call.Fail("SALE_CLOSED")
		return fmt.Errorf("sale: cancel %s: %w", sale.ID(), transaction.ErrClosed)
	}
	items := sale.Items()
	changes := make([]catalog.StockChange, 0, len(items))
	for _, item := range items {
		changes = append(changes, catalog.StockChange{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if err = s.inventory.RestoreAll(ctx, changes); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("sale: cancel: %w", err)
	}
	if err = sale.Cancel(); err != nil {
		call.Fail("SALE_CLOSED")
		return fmt.Errorf("sale: cancel: %w", err)
	}

	call.Publish(s.publisher, transaction.NewSaleCancelledEvent(sale))
	return nil
}

// GetSalesHistory returns copies of the completed sales in completion order.
func (s *Service) GetSalesHistory(ctx context.Context) []*transaction.Sale {
	return s.history.List(ctx)
}

// FindSale looks up a completed sale by ID.
func (s *Service) FindSale(ctx context.Context, id string) (*transaction.Sale, bool) {
	return s.history.Find(ctx, id)
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "PRODUCT_NOT_FOUND"
	case errors.Is(err, catalog.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, catalog.ErrInvalidQuantity):
		return "QUANTITY_INVALID"
	case errors.Is(err, transaction.ErrEmpty):
		return "SALE_EMPTY"
	case errors.Is(err, transaction.ErrInsufficientPayment):
		return "PAYMENT_INSUFFICIENT"
	case errors.Is(err, transaction.ErrClosed):
		return "SALE_CLOSED"
	case errors.Is(err, catalog.ErrStockOverflow):
		return "STOCK_OVERFLOW"
	case errors.Is(err, transaction.ErrDuplicateID):
		return "DUPLICATE_ID"
	default:
		return "FAILED"
	}
}

package returns

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
	"go.opentelemetry.io/otel/attribute"
)

const (
	returnService         = "return-service"
	useCaseCreateReturn   = "return.create"
	useCaseAddItem        = "return.add_item"
	useCaseCompleteReturn = "return.complete"
)

var ErrReturnRequired = errors.New("return: return is required")

// Service runs the return lifecycle. Returns never draw stock, so adding items has no
// capacity check; stock comes back only when the return is completed.
type Service struct {
	inventory InventoryPort
	sales     SaleFinder
	history   History
	ids       application.IDGenerator
	publisher domoutbox.Publisher
	inst      *application.Instrumentation
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(
	inventory InventoryPort,
	sales SaleFinder,
	history History,
	ids application.IDGenerator,
	publisher domoutbox.Publisher,
	tel observability.Observability,
	opts ...Option,
) *Service {
	s := &Service{
		inventory: inventory,
		sales:     sales,
		history:   history,
		ids:       ids,
		publisher: publisher,
		inst:      application.NewInstrumentation(returnService, tel),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReturn opens an empty return. originalSaleID may be empty and is not checked.
func (s *Service) CreateReturn(ctx context.Context, originalSaleID string) *transaction.Return {
	_, call := s.inst.Begin(ctx, useCaseCreateReturn, "CreateReturn",
		attribute.String("return.original_sale_id", originalSaleID),
	)
	ret := transaction.NewReturn(s.ids.NewID(), originalSaleID, s.now())
	call.Annotate(
		observability.F("return_id", ret.ID()),
		observability.F("original_sale_id", originalSaleID),
	)
	call.End(nil)
	return ret
}

// AddItemToReturn appends a line item for a known product. Any positive quantity is
// accepted, including more than was sold or more than is in stock.
func (s *Service) AddItemToReturn(ctx context.Context, ret *transaction.Return, productID string, quantity int) (err error) {
	if ret == nil {
		return ErrReturnRequired
	}
	ctx, call := s.inst.Begin(ctx, useCaseAddItem, "AddItemToReturn",
		attribute.String("return.id", ret.ID()),
		attribute.String("product.id", productID),
		attribute.Int("item.quantity", quantity),
	)
	defer func() { call.End(err) }()
	call.Annotate(
		observability.F("return_id", ret.ID()),
		observability.F("product_id", productID),
		observability.F("quantity", quantity),
	)

	product, ok := s.inventory.GetProduct(ctx, productID)
	if !ok {
		call.Fail("PRODUCT_NOT_FOUND")
		return fmt.Errorf("return: add item %s: %w", productID, catalog.ErrNotFound)
	}
	item, err := transaction.NewLineItem(product, quantity)
	if err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("return: add item: %w", err)
	}
	if err = ret.AddItem(item); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("return: %w", err)
	}
	return nil
}

// CompleteReturn puts every returned quantity back in stock and records the return.
// Every check runs before stock moves; a failed call leaves the return open and the
// catalog unchanged.
func (s *Service) CompleteReturn(ctx context.Context, ret *transaction.Return) (err error) {
	if ret == nil {
		return ErrReturnRequired
	}
	ctx, call := s.inst.Begin(ctx, useCaseCompleteReturn, "CompleteReturn",
		attribute.String("return.id", ret.ID()),
	)
	defer func() { call.End(err) }()
	call.Annotate(
		observability.F("return_id", ret.ID()),
		observability.F("original_sale_id", ret.OriginalSaleID()),
		observability.F("items", ret.ItemCount()),
	)

	if s.history.Contains(ctx, ret.ID()) {
		err = fmt.Errorf("return: record %s: %w", ret.ID(), transaction.ErrDuplicateID)
		call.Fail(statusFromError(err))
		return err
	}
	if err = ret.CanComplete(); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("return: %w", err)
	}

	items := ret.Items()
	changes := make([]catalog.StockChange, 0, len(items))
	for _, item := range items {
		changes = append(changes, catalog.StockChange{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if err = s.inventory.RestoreAll(ctx, changes); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("return: restore stock: %w", err)
	}
	if err = ret.Complete(); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("return: %w", err)
	}
	if err = s.history.Append(ctx, ret); err != nil {
		call.Fail(statusFromError(err))
		return fmt.Errorf("return: record %s: %w", ret.ID(), err)
	}

	call.Annotate(observability.F("refund", ret.TotalRefund().StringFixed(2)))
	call.Publish(s.publisher, transaction.NewReturnCompletedEvent(ret))
	return nil
}

// GetReturnHistory returns copies of the completed returns in completion order.
func (s *Service) GetReturnHistory(ctx context.Context) []*transaction.Return {
	return s.history.List(ctx)
}

// FindSaleByID looks up a completed sale so a return can show its context.
// Completing a return never depends on the result.
func (s *Service) FindSaleByID(ctx context.Context, saleID string) (*transaction.Sale, bool) {
	if s.sales == nil || saleID == "" {
		return nil, false
	}
	return s.sales.FindSale(ctx, saleID)
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "PRODUCT_NOT_FOUND"
	case errors.Is(err, catalog.ErrInvalidQuantity):
		return "QUANTITY_INVALID"
	case errors.Is(err, transaction.ErrEmpty):
		return "RETURN_EMPTY"
	case errors.Is(err, transaction.ErrClosed):
		return "RETURN_CLOSED"
	case errors.Is(err, catalog.ErrStockOverflow):
		return "STOCK_OVERFLOW"
	case errors.Is(err, transaction.ErrDuplicateID):
		return "DUPLICATE_ID"
	default:
		return "FAILED"
	}
}

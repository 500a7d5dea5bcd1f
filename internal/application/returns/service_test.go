package returns_test

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/Zhima-Mochi/minishop-pos/internal/application/inventory"
	"github.com/Zhima-Mochi/minishop-pos/internal/application/returns"
	"github.com/Zhima-Mochi/minishop-pos/internal/application/sale"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/minishop-pos/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability/observabilitytest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prefixedIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func (g *prefixedIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%03d", g.prefix, g.n)
}

type fixedID string

func (id fixedID) NewID() string { return string(id) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type fixture struct {
	inventory *inventory.Service
	sales     *sale.Service
	publisher *recordingPublisher
	svc       *returns.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := observabilitytest.New()
	inv := inventory.NewService(memory.NewCatalogRepository(), rec)
	require.NoError(t, inv.Seed(context.Background(), catalog.DefaultSeed()))

	pub := &recordingPublisher{}
	sales := sale.NewService(inv, memory.NewLedger[*transaction.Sale](), &prefixedIDs{prefix: "SALE"}, pub, rec)
	svc := returns.NewService(inv, sales, memory.NewLedger[*transaction.Return](), &prefixedIDs{prefix: "RET"}, pub, rec)
	return &fixture{inventory: inv, sales: sales, publisher: pub, svc: svc}
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	p, ok := f.inventory.GetProduct(context.Background(), id)
	require.True(t, ok)
	return p.Stock
}

func TestReturnRestoresStockOnlyOnCompletion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r := f.svc.CreateReturn(ctx, "")
	assert.Equal(t, "RET-001", r.ID())
	assert.Empty(t, r.OriginalSaleID())

	require.NoError(t, f.svc.AddItemToReturn(ctx, r, "P002", 5))
	assert.Equal(t, 80, f.stock(t, "P002"), "adding a return item does not touch stock")

	require.NoError(t, f.svc.CompleteReturn(ctx, r))
	assert.Equal(t, 85, f.stock(t, "P002"))
	assert.True(t, r.TotalRefund().Equal(decimal.RequireFromString("19.00")))
	assert.Equal(t, transaction.StatusCompleted, r.Status())

	history := f.svc.GetReturnHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, "RET-001", history[0].ID())

	require.Len(t, f.publisher.events, 1)
	evt, ok := f.publisher.events[0].(transaction.ReturnCompletedEvent)
	require.True(t, ok)
	assert.True(t, evt.Refund.Equal(decimal.RequireFromString("19")))
}

func TestReturnAcceptsAnyPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r := f.svc.CreateReturn(ctx, "SALE-NEVER-MADE")
	require.NoError(t, f.svc.AddItemToReturn(ctx, r, "P005", 500))
	require.NoError(t, f.svc.CompleteReturn(ctx, r))
	assert.Equal(t, 540, f.stock(t, "P005"))
	assert.Equal(t, "SALE-NEVER-MADE", r.OriginalSaleID())
}

func TestCompleteReturnRefusesStockOverflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r := f.svc.CreateReturn(ctx, "")
	require.NoError(t, f.svc.AddItemToReturn(ctx, r, "P002", 5))
	require.NoError(t, f.svc.AddItemToReturn(ctx, r, "P001", math.MaxInt))

	err := f.svc.CompleteReturn(ctx, r)
	assert.ErrorIs(t, err, catalog.ErrStockOverflow)
	assert.Equal(t, 100, f.stock(t, "P001"))
	assert.Equal(t, 80, f.stock(t, "P002"), "earlier lines are not applied either")
	assert.Equal(t, transaction.StatusOpen, r.Status())
	assert.Empty(t, f.svc.GetReturnHistory(ctx))
	assert.Empty(t, f.publisher.events)
}

func TestCompleteReturnWithRecordedIDChangesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := returns.NewService(f.inventory, f.sales, memory.NewLedger[*transaction.Return](), fixedID("RET-SAME"), f.publisher, nil)

	first := svc.CreateReturn(ctx, "")
	require.NoError(t, svc.AddItemToReturn(ctx, first, "P001", 3))
	require.NoError(t, svc.CompleteReturn(ctx, first))
	assert.Equal(t, 103, f.stock(t, "P001"))

	second := svc.CreateReturn(ctx, "")
	require.NoError(t, svc.AddItemToReturn(ctx, second, "P001", 3))
	err := svc.CompleteReturn(ctx, second)
	assert.ErrorIs(t, err, transaction.ErrDuplicateID)
	assert.Equal(t, transaction.StatusOpen, second.Status())
	assert.Equal(t, 103, f.stock(t, "P001"))
	assert.Len(t, svc.GetReturnHistory(ctx), 1)
}

func TestAddItemToReturnRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r := f.svc.CreateReturn(ctx, "")
	assert.ErrorIs(t, f.svc.AddItemToReturn(ctx, r, "P404", 1), catalog.ErrNotFound)
	assert.ErrorIs(t, f.svc.AddItemToReturn(ctx, r, "P001", 0), catalog.ErrInvalidQuantity)
	assert.True(t, r.IsEmpty())
	assert.ErrorIs(t, f.svc.AddItemToReturn(ctx, nil, "P001", 1), returns.ErrReturnRequired)

	require.NoError(t, f.svc.AddItemToReturn(ctx, r, "P001", 1))
	require.NoError(t, f.svc.CompleteReturn(ctx, r))
	assert.ErrorIs(t, f.svc.AddItemToReturn(ctx, r, "P001", 1), transaction.ErrClosed)
}

func TestCompleteReturnRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty := f.svc.CreateReturn(ctx, "")
	assert.ErrorIs(t, f.svc.CompleteReturn(ctx, empty), transaction.ErrEmpty)
	assert.Empty(t, f.svc.GetReturnHistory(ctx))

	r := f.svc.CreateReturn(ctx, "")
	require.NoError(t, f.svc.AddItemToReturn(ctx, r, "P003", 2))
	require.NoError(t, f.svc.CompleteReturn(ctx, r))

	assert.ErrorIs(t, f.svc.CompleteReturn(ctx, r), transaction.ErrClosed)
	assert.Equal(t, 52, f.stock(t, "P003"), "stock restored exactly once")
	assert.Len(t, f.svc.GetReturnHistory(ctx), 1)
}

func TestSellThenReturnRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	s := f.sales.CreateSale(ctx)
	require.NoError(t, f.sales.AddItemToSale(ctx, s, "P001", 10))
	require.NoError(t, f.sales.CompleteSale(ctx, s, "card", decimal.RequireFromString("55")))
	require.Equal(t, 90, f.stock(t, "P001"))

	found, ok := f.svc.FindSaleByID(ctx, s.ID())
	require.True(t, ok)
	assert.Equal(t, s.ID(), found.ID())

	r := f.svc.CreateReturn(ctx, s.ID())
	require.NoError(t, f.svc.AddItemToReturn(ctx, r, "P001", 10))
	require.NoError(t, f.svc.CompleteReturn(ctx, r))
	assert.Equal(t, 100, f.stock(t, "P001"))
}

func TestFindSaleByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, ok := f.svc.FindSaleByID(ctx, "")
	assert.False(t, ok)
	_, ok = f.svc.FindSaleByID(ctx, "SALE-404")
	assert.False(t, ok)

	open := f.sales.CreateSale(ctx)
	require.NoError(t, f.sales.AddItemToSale(ctx, open, "P001", 1))
	_, ok = f.svc.FindSaleByID(ctx, open.ID())
	assert.False(t, ok, "open sales are not in history")

	standalone := returns.NewService(f.inventory, nil, memory.NewLedger[*transaction.Return](), &prefixedIDs{prefix: "RET"}, nil, nil)
	_, ok = standalone.FindSaleByID(ctx, open.ID())
	assert.False(t, ok)
}

func TestReturnHistoryIsACopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	r := f.svc.CreateReturn(ctx, "")
	require.NoError(t, f.svc.AddItemToReturn(ctx, r, "P001", 1))
	require.NoError(t, f.svc.CompleteReturn(ctx, r))

	history := f.svc.GetReturnHistory(ctx)
	history[0] = nil

	again := f.svc.GetReturnHistory(ctx)
	require.Len(t, again, 1)
	assert.NotNil(t, again[0])
}

package audit

import (
	"context"
	"sync"

	domoutbox "github.com/Zhima-Mochi/minishop-pos/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability/logctx"
	"github.com/shopspring/decimal"
)

const (
	componentAudit = "audit_worker"

	outcomeCompleted = "completed"
	outcomeCancelled = "cancelled"
)

// Summary is the running tally of transactions observed on the bus.
type Summary struct {
	SalesCompleted   int
	SalesCancelled   int
	ReturnsCompleted int
	Revenue          decimal.Decimal
	Refunds          decimal.Decimal
}

// Net is revenue minus refunds.
func (s Summary) Net() decimal.Decimal { return s.Revenue.Sub(s.Refunds) }

// Worker keeps business counters in step with completed and cancelled transactions.
type Worker struct {
	subscriber   domoutbox.Subscriber
	log          observability.Logger
	transactions observability.Counter // transactions_total{kind,outcome}
	revenue      observability.Counter // sales_revenue_total
	refunds      observability.Counter // returns_refund_total

	mu      sync.Mutex
	summary Summary
}

func New(subscriber domoutbox.Subscriber, tel observability.Observability) *Worker {
	tel = observability.OrNop(tel)
	metrics := tel.Metrics()
	return &Worker{
		subscriber:   subscriber,
		log:          tel.Logger().With(observability.F("component", componentAudit)),
		transactions: metrics.Counter(observability.MTransactions),
		revenue:      metrics.Counter(observability.MSalesRevenue),
		refunds:      metrics.Counter(observability.MReturnsRefund),
		summary: Summary{
			Revenue: decimal.Zero,
			Refunds: decimal.Zero,
		},
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(transaction.SaleCompletedEvent{}.EventName(), w.handleSaleCompleted)
	w.subscriber.Subscribe(transaction.SaleCancelledEvent{}.EventName(), w.handleSaleCancelled)
	w.subscriber.Subscribe(transaction.ReturnCompletedEvent{}.EventName(), w.handleReturnCompleted)
}

// Summary returns a snapshot of the tally.
func (w *Worker) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summary
}

func (w *Worker) handleSaleCompleted(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(transaction.SaleCompletedEvent)
	if !ok {
		return nil
	}

	w.mu.Lock()
	w.summary.SalesCompleted++
	w.summary.Revenue = w.summary.Revenue.Add(evt.Total)
	w.mu.Unlock()

	w.transactions.Add(1,
		observability.L("kind", string(transaction.KindSale)),
		observability.L("outcome", outcomeCompleted),
	)
	w.revenue.Add(evt.Total.InexactFloat64())

	w.logger(ctx).Info("transaction_recorded",
		observability.F("kind", string(transaction.KindSale)),
		observability.F("outcome", outcomeCompleted),
		observability.F("sale_id", evt.SaleID),
		observability.F("items", evt.ItemCount),
		observability.F("total", evt.Total.StringFixed(2)),
		observability.F("payment_method", evt.PaymentMethod),
	)
	return nil
}

func (w *Worker) handleSaleCancelled(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(transaction.SaleCancelledEvent)
	if !ok {
		return nil
	}

	released := 0
	for _, item := range evt.Released {
		released += item.Quantity
	}

	w.mu.Lock()
	w.summary.SalesCancelled++
	w.mu.Unlock()

	w.transactions.Add(1,
		observability.L("kind", string(transaction.KindSale)),
		observability.L("outcome", outcomeCancelled),
	)

	w.logger(ctx).Info("transaction_recorded",
		observability.F("kind", string(transaction.KindSale)),
		observability.F("outcome", outcomeCancelled),
		observability.F("sale_id", evt.SaleID),
		observability.F("units_released", released),
	)
	return nil
}

func (w *Worker) handleReturnCompleted(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(transaction.ReturnCompletedEvent)
	if !ok {
		return nil
	}

	w.mu.Lock()
	w.summary.ReturnsCompleted++
	w.summary.Refunds = w.summary.Refunds.Add(evt.Refund)
	w.mu.Unlock()

	w.transactions.Add(1,
		observability.L("kind", string(transaction.KindReturn)),
		observability.L("outcome", outcomeCompleted),
	)
	w.refunds.Add(evt.Refund.InexactFloat64())

	w.logger(ctx).Info("transaction_recorded",
		observability.F("kind", string(transaction.KindReturn)),
		observability.F("outcome", outcomeCompleted),
		observability.F("return_id", evt.ReturnID),
		observability.F("original_sale_id", evt.OriginalSaleID),
		observability.F("items", evt.ItemCount),
		observability.F("refund", evt.Refund.StringFixed(2)),
	)
	return nil
}

func (w *Worker) logger(ctx context.Context) observability.Logger {
	if l := logctx.From(ctx); l != nil {
		return l.With(observability.F("component", componentAudit))
	}
	return w.log
}

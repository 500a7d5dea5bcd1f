package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleCompletedEvent is emitted once a sale has been paid and moved to history.
type SaleCompletedEvent struct {
	SaleID        string
	ItemCount     int
	Total         decimal.Decimal
	PaymentMethod string
	PaymentAmount decimal.Decimal
	Change        decimal.Decimal
	OccurredAt    time.Time
}

func (SaleCompletedEvent) EventName() string     { return "sale.completed" }
func (e SaleCompletedEvent) AggregateID() string { return e.SaleID }

func NewSaleCompletedEvent(s *Sale) SaleCompletedEvent {
	return SaleCompletedEvent{
		SaleID:        s.ID(),
		ItemCount:     s.ItemCount(),
		Total:         s.Total(),
		PaymentMethod: s.PaymentMethod(),
		PaymentAmount: s.PaymentAmount(),
		Change:        s.Change(),
		OccurredAt:    time.Now().UTC(),
	}
}

// SaleCancelledEvent is emitted after the reserved stock of a sale has been released.
type SaleCancelledEvent struct {
	SaleID     string
	Released   []LineItem
	OccurredAt time.Time
}

func (SaleCancelledEvent) EventName() string     { return "sale.cancelled" }
func (e SaleCancelledEvent) AggregateID() string { return e.SaleID }

func NewSaleCancelledEvent(s *Sale) SaleCancelledEvent {
	return SaleCancelledEvent{
		SaleID:     s.ID(),
		Released:   s.Items(),
		OccurredAt: time.Now().UTC(),
	}
}

// ReturnCompletedEvent is emitted once returned stock is back in the catalog.
type ReturnCompletedEvent struct {
	ReturnID       string
	OriginalSaleID string
	ItemCount      int
	Refund         decimal.Decimal
	OccurredAt     time.Time
}

func (ReturnCompletedEvent) EventName() string     { return "return.completed" }
func (e ReturnCompletedEvent) AggregateID() string { return e.ReturnID }

func NewReturnCompletedEvent(r *Return) ReturnCompletedEvent {
	return ReturnCompletedEvent{
		ReturnID:       r.ID(),
		OriginalSaleID: r.OriginalSaleID(),
		ItemCount:      r.ItemCount(),
		Refund:         r.TotalRefund(),
		OccurredAt:     time.Now().UTC(),
	}
}

package transaction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Return restores stock on completion. OriginalSaleID is informational and may be empty.
type Return struct {
	base
	originalSaleID string
}

func NewReturn(id, originalSaleID string, now time.Time) *Return {
	return &Return{base: newBase(id, now), originalSaleID: originalSaleID}
}

func (*Return) Kind() Kind { return KindReturn }

func (r *Return) OriginalSaleID() string { return r.originalSaleID }

// TotalRefund is the sum of the line item subtotals.
func (r *Return) TotalRefund() decimal.Decimal { return r.Total() }

func (r *Return) Complete() error {
	if err := r.CanComplete(); err != nil {
		return err
	}
	return r.transition(completeState)
}

// CanComplete reports whether Complete would succeed, without changing the return.
func (r *Return) CanComplete() error {
	if r.Status() != StatusOpen {
		return fmt.Errorf("complete %s: %w", r.id, ErrClosed)
	}
	if r.IsEmpty() {
		return fmt.Errorf("complete %s: %w", r.id, ErrEmpty)
	}
	return nil
}

func (r *Return) Clone() *Return {
	if r == nil {
		return nil
	}
	c := *r
	c.base = r.base.clone()
	return &c
}

func (r *Return) String() string {
	original := r.originalSaleID
	if original == "" {
		original = "-"
	}
	return fmt.Sprintf("Return %s (%s)\nOriginal Sale: %s\n%s\nTotal Refund: $%s",
		r.id, r.Status().Label(), original, r.itemLines(), r.TotalRefund().StringFixed(2))
}

package transaction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sale draws stock when items are added and is settled by a payment covering its total.
type Sale struct {
	base
	paymentMethod string
	paymentAmount decimal.Decimal
}

func NewSale(id string, now time.Time) *Sale {
	return &Sale{base: newBase(id, now)}
}

func (*Sale) Kind() Kind { return KindSale }

func (s *Sale) PaymentMethod() string          { return s.paymentMethod }
func (s *Sale) PaymentAmount() decimal.Decimal { return s.paymentAmount }

// Complete records the payment and closes the sale. On any error the sale stays open.
func (s *Sale) Complete(method string, amount decimal.Decimal) error {
	if s.Status() != StatusOpen {
		return fmt.Errorf("complete %s: %w", s.id, ErrClosed)
	}
	if s.IsEmpty() {
		return fmt.Errorf("complete %s: %w", s.id, ErrEmpty)
	}
	total := s.Total()
	if amount.LessThan(total) {
		return fmt.Errorf("complete %s: paid %s of %s: %w", s.id, amount.StringFixed(2), total.StringFixed(2), ErrInsufficientPayment)
	}
	if err := s.transition(completeState); err != nil {
		return err
	}
	s.paymentMethod = method
	s.paymentAmount = amount
	return nil
}

// Cancel closes an open sale without settling it. Stock release is the caller's job.
func (s *Sale) Cancel() error {
	return s.transition(cancelState)
}

// Change is payment minus total once completed, zero otherwise.
func (s *Sale) Change() decimal.Decimal {
	if !s.IsCompleted() {
		return decimal.Zero
	}
	return s.paymentAmount.Sub(s.Total())
}

func (s *Sale) Clone() *Sale {
	if s == nil {
		return nil
	}
	c := *s
	c.base = s.base.clone()
	return &c
}

func (s *Sale) String() string {
	return fmt.Sprintf("Sale %s (%s)\n%s\nTotal: $%s", s.id, s.Status().Label(), s.itemLines(), s.Total().StringFixed(2))
}

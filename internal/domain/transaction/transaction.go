package transaction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrClosed              = errors.New("transaction: not open")
	ErrEmpty               = errors.New("transaction: no line items")
	ErrInsufficientPayment = errors.New("transaction: payment below total")
	ErrDuplicateID         = errors.New("transaction: id already recorded")
)

// Kind names the transaction variant.
type Kind string

const (
	KindSale   Kind = "sale"
	KindReturn Kind = "return"
)

type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Label() string {
	switch s {
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "In Progress"
	}
}

// Transaction is implemented by *Sale and *Return only.
type Transaction interface {
	ID() string
	Kind() Kind
	Status() Status
	Items() []LineItem
	ItemCount() int
	IsEmpty() bool
	// Total is recomputed from the line items on every call.
	Total() decimal.Decimal
	CreatedAt() time.Time
	IsCompleted() bool
	String() string

	sealed()
}

// Describe returns the display name of the variant.
func Describe(t Transaction) string {
	switch t.(type) {
	case *Sale:
		return "Sale"
	case *Return:
		return "Return"
	default:
		return "Transaction"
	}
}

type base struct {
	id        string
	items     []LineItem
	createdAt time.Time
	updatedAt time.Time
	state     state
}

func newBase(id string, now time.Time) base {
	return base{
		id:        id,
		createdAt: now,
		updatedAt: now,
		state:     openState{},
	}
}

func (b *base) ID() string           { return b.id }
func (b *base) Status() Status       { return b.state.Status() }
func (b *base) CreatedAt() time.Time { return b.createdAt }
func (b *base) UpdatedAt() time.Time { return b.updatedAt }
func (b *base) IsCompleted() bool    { return b.state.Status() == StatusCompleted }
func (b *base) ItemCount() int       { return len(b.items) }
func (b *base) IsEmpty() bool        { return len(b.items) == 0 }

func (b *base) Items() []LineItem {
	return append([]LineItem(nil), b.items...)
}

func (b *base) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range b.items {
		total = total.Add(li.Subtotal())
	}
	return total
}

// AddItem appends a line item while the transaction is open.
func (b *base) AddItem(li LineItem) error {
	next, err := b.state.OnItemAdded()
	if err != nil {
		return fmt.Errorf("add item to %s: %w", b.id, err)
	}
	b.items = append(b.items, li)
	b.state = next
	b.touch()
	return nil
}

func (b *base) transition(to func(state) (state, error)) error {
	next, err := to(b.state)
	if err != nil {
		return fmt.Errorf("%s is %s: %w", b.id, b.state.Status(), err)
	}
	b.state = next
	b.touch()
	return nil
}

func (b *base) clone() base {
	c := *b
	c.items = b.Items()
	return c
}

func (b *base) itemLines() string {
	lines := make([]string, 0, len(b.items))
	for _, li := range b.items {
		lines = append(lines, "  - "+li.String())
	}
	return strings.Join(lines, "\n")
}

func (b *base) touch() {
	b.updatedAt = time.Now().UTC()
}

func (*base) sealed() {}

func completeState(s state) (state, error) { return s.OnCompleted() }
func cancelState(s state) (state, error)   { return s.OnCancelled() }

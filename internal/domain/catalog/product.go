package catalog

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrInvalidProduct    = errors.New("catalog: product id is required")
	ErrInvalidPrice      = errors.New("catalog: price must be zero or greater")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
	ErrStockOverflow     = errors.New("catalog: stock would overflow")
)

// Product is a catalog record. Stock never goes negative.
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal
	Stock     int
	UpdatedAt time.Time
}

func NewProduct(id, name string, price decimal.Decimal, stock int) (*Product, error) {
	if id == "" {
		return nil, ErrInvalidProduct
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if stock < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Stock:     stock,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Validate reports whether p could have been produced by NewProduct.
func (p *Product) Validate() error {
	switch {
	case p == nil || p.ID == "":
		return ErrInvalidProduct
	case p.Price.IsNegative():
		return ErrInvalidPrice
	case p.Stock < 0:
		return ErrInvalidQuantity
	}
	return nil
}

// Reduce draws quantity from stock. On error stock is untouched.
func (p *Product) Reduce(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

// Increase adds quantity to stock. There is no business ceiling; only a sum that
// would not fit in an int is refused, leaving stock untouched.
func (p *Product) Increase(quantity int) error {
	if err := p.CanIncrease(quantity); err != nil {
		return err
	}
	p.Stock += quantity
	p.touch()
	return nil
}

// CanIncrease reports whether Increase(quantity) would succeed.
func (p *Product) CanIncrease(quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity > math.MaxInt-p.Stock {
		return ErrStockOverflow
	}
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) String() string {
	return fmt.Sprintf("%s (ID: %s, Price: $%s, Stock: %d)", p.Name, p.ID, p.Price.StringFixed(2), p.Stock)
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

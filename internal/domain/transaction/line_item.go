package transaction

import (
	"fmt"

	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// LineItem is a product and quantity recorded within one transaction.
// UnitPrice is taken from the catalog record at the moment the item is added.
type LineItem struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

func NewLineItem(p *catalog.Product, quantity int) (LineItem, error) {
	if p == nil {
		return LineItem{}, catalog.ErrNotFound
	}
	if quantity <= 0 {
		return LineItem{}, catalog.ErrInvalidQuantity
	}
	return LineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    quantity,
	}, nil
}

func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) String() string {
	return fmt.Sprintf("%s x%d = $%s", li.ProductName, li.Quantity, li.Subtotal().StringFixed(2))
}

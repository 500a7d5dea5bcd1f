package catalog

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("valid product", func(t *testing.T) {
		p, err := NewProduct("P001", "Apple", decimal.RequireFromString("5.50"), 100)
		require.NoError(t, err)
		assert.Equal(t, "P001", p.ID)
		assert.Equal(t, 100, p.Stock)
		assert.False(t, p.UpdatedAt.IsZero())
	})

	t.Run("rejects empty id", func(t *testing.T) {
		_, err := NewProduct("", "Apple", decimal.NewFromInt(1), 1)
		assert.ErrorIs(t, err, ErrInvalidProduct)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewProduct("P001", "Apple", decimal.NewFromInt(-1), 1)
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("rejects negative stock", func(t *testing.T) {
		_, err := NewProduct("P001", "Apple", decimal.NewFromInt(1), -1)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("zero price and stock are allowed", func(t *testing.T) {
		_, err := NewProduct("P009", "Sample", decimal.Zero, 0)
		assert.NoError(t, err)
	})
}

func TestProduct_Validate(t *testing.T) {
	var nilProduct *Product
	assert.ErrorIs(t, nilProduct.Validate(), ErrInvalidProduct)
	assert.ErrorIs(t, (&Product{ID: "P1", Stock: -2}).Validate(), ErrInvalidQuantity)
	assert.NoError(t, (&Product{ID: "P1"}).Validate())
}

func TestProduct_Reduce(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		quantity  int
		wantErr   error
		wantStock int
	}{
		{name: "partial draw", stock: 10, quantity: 4, wantStock: 6},
		{name: "draw everything", stock: 10, quantity: 10, wantStock: 0},
		{name: "more than stock", stock: 10, quantity: 11, wantErr: ErrInsufficientStock, wantStock: 10},
		{name: "zero quantity", stock: 10, quantity: 0, wantErr: ErrInvalidQuantity, wantStock: 10},
		{name: "negative quantity", stock: 10, quantity: -3, wantErr: ErrInvalidQuantity, wantStock: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{ID: "P1", Stock: tt.stock}
			err := p.Reduce(tt.quantity)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantStock, p.Stock)
		})
	}
}

func TestProduct_Increase(t *testing.T) {
	p := &Product{ID: "P1", Stock: 5}
	require.NoError(t, p.Increase(0))
	require.NoError(t, p.Increase(1000))
	assert.Equal(t, 1005, p.Stock)
	assert.ErrorIs(t, p.Increase(-1), ErrInvalidQuantity)
	assert.Equal(t, 1005, p.Stock)
}

func TestProduct_IncreaseRefusesOverflow(t *testing.T) {
	p := &Product{ID: "P1", Stock: 100}

	assert.ErrorIs(t, p.CanIncrease(math.MaxInt), ErrStockOverflow)
	assert.ErrorIs(t, p.Increase(math.MaxInt), ErrStockOverflow)
	assert.Equal(t, 100, p.Stock)

	require.NoError(t, p.Increase(math.MaxInt-100))
	assert.Equal(t, math.MaxInt, p.Stock)
	assert.ErrorIs(t, p.Increase(1), ErrStockOverflow)
	assert.Equal(t, math.MaxInt, p.Stock)
}

func TestProduct_CloneIsIndependent(t *testing.T) {
	p := &Product{ID: "P1", Name: "Apple", Stock: 5}
	c := p.Clone()
	c.Stock = 1
	assert.Equal(t, 5, p.Stock)

	var nilProduct *Product
	assert.Nil(t, nilProduct.Clone())
}

func TestProduct_String(t *testing.T) {
	p := &Product{ID: "P001", Name: "Apple", Price: decimal.RequireFromString("5.5"), Stock: 100}
	assert.Equal(t, "Apple (ID: P001, Price: $5.50, Stock: 100)", p.String())
}

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	require.Len(t, seed, 5)

	ids := make([]string, 0, len(seed))
	for _, p := range seed {
		require.NoError(t, p.Validate())
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"P001", "P002", "P003", "P004", "P005"}, ids)
	assert.True(t, seed[2].Price.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 40, seed[4].Stock)
}

package catalog

import "github.com/shopspring/decimal"

// DefaultSeed is the sample catalog a terminal starts with when no seed file is configured.
func DefaultSeed() []*Product {
	return []*Product{
		mustProduct("P001", "Apple", "5.50", 100),
		mustProduct("P002", "Banana", "3.80", 80),
		mustProduct("P003", "Milk", "12.00", 50),
		mustProduct("P004", "Bread", "8.50", 60),
		mustProduct("P005", "Egg", "15.00", 40),
	}
}

func mustProduct(id, name, price string, stock int) *Product {
	p, err := NewProduct(id, name, decimal.RequireFromString(price), stock)
	if err != nil {
		panic(err)
	}
	return p
}

package config

import (
	"fmt"

	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type productRecord struct {
	ID    string `mapstructure:"id"`
	Name  string `mapstructure:"name"`
	Price string `mapstructure:"price"`
	Stock int    `mapstructure:"stock"`
}

// LoadSeed reads the product list under the "products" key of path. Any format
// viper understands works; an empty path yields the built-in sample catalog.
func LoadSeed(path string) ([]*catalog.Product, error) {
	if path == "" {
		return catalog.DefaultSeed(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var records []productRecord
	if err := v.UnmarshalKey("products", &records); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	products := make([]*catalog.Product, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return nil, fmt.Errorf("seed product %d (%s): price %q: %w", i, r.ID, r.Price, catalog.ErrInvalidPrice)
		}
		p, err := catalog.NewProduct(r.ID, r.Name, price, r.Stock)
		if err != nil {
			return nil, fmt.Errorf("seed product %d (%s): %w", i, r.ID, err)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("seed product %d: duplicate id %s: %w", i, p.ID, catalog.ErrInvalidProduct)
		}
		seen[p.ID] = struct{}{}
		products = append(products, p)
	}
	return products, nil
}

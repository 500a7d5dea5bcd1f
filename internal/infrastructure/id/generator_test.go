package id

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionIDGenerator_Format(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC) }

	g := NewTransactionIDGenerator(PrefixSale, WithClock(clock), WithSuffix(func() string { return "abcd1234" }))
	assert.Equal(t, "SALE-20250314092653-abcd1234", g.NewID())

	r := NewTransactionIDGenerator(PrefixReturn, WithClock(clock))
	assert.Regexp(t, regexp.MustCompile(`^RET-20250314092653-[0-9a-f]{8}$`), r.NewID())
}

func TestTransactionIDGenerator_SameSecondIsUnique(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	g := NewTransactionIDGenerator(PrefixSale, WithClock(clock))

	seen := make(map[string]struct{}, 200)
	for range 200 {
		id := g.NewID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

package id

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	PrefixSale   = "SALE"
	PrefixReturn = "RET"

	timestampLayout = "20060102150405"
	suffixLength    = 8
)

// TransactionIDGenerator yields IDs shaped <PREFIX>-<YYYYMMDDHHMMSS>-<8 hex>.
// The random suffix keeps IDs created within the same second distinct.
type TransactionIDGenerator struct {
	prefix string
	now    func() time.Time
	random func() string
}

type Option func(*TransactionIDGenerator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *TransactionIDGenerator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithSuffix overrides the random suffix source.
func WithSuffix(random func() string) Option {
	return func(g *TransactionIDGenerator) {
		if random != nil {
			g.random = random
		}
	}
}

func NewTransactionIDGenerator(prefix string, opts ...Option) *TransactionIDGenerator {
	g := &TransactionIDGenerator{
		prefix: prefix,
		now:    time.Now,
		random: uuidSuffix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *TransactionIDGenerator) NewID() string {
	return g.prefix + "-" + g.now().Format(timestampLayout) + "-" + g.random()
}

func uuidSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]
}

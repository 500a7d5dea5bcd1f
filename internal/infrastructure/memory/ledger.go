package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
)

// ErrDuplicate is returned when a transaction ID is already recorded.
var ErrDuplicate = fmt.Errorf("ledger: %w", transaction.ErrDuplicateID)

// Entry is a completed transaction the ledger can store and hand back as independent copies.
type Entry[T any] interface {
	transaction.Transaction
	Clone() T
}

// Ledger is an append-only history of completed transactions in completion order.
type Ledger[T Entry[T]] struct {
	mu      sync.RWMutex
	entries []T
	byID    map[string]int
}

func NewLedger[T Entry[T]]() *Ledger[T] {
	return &Ledger[T]{byID: make(map[string]int)}
}

func (l *Ledger[T]) Append(ctx context.Context, entry T) error {
	_ = ctx

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byID[entry.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, entry.ID())
	}
	l.byID[entry.ID()] = len(l.entries)
	l.entries = append(l.entries, entry.Clone())
	return nil
}

// List returns a fresh slice of copies; callers may mutate it freely.
func (l *Ledger[T]) List(ctx context.Context) []T {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]T, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.Clone())
	}
	return out
}

func (l *Ledger[T]) Find(ctx context.Context, id string) (T, bool) {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	idx, ok := l.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return l.entries[idx].Clone(), true
}

// Contains reports whether an entry with id is already recorded.
func (l *Ledger[T]) Contains(ctx context.Context, id string) bool {
	_ = ctx

	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.byID[id]
	return ok
}

func (l *Ledger[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

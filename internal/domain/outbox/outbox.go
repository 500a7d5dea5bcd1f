package outbox

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("outbox: bus closed")

// Event is a named domain event about one aggregate (a sale or a return).
type Event interface {
	EventName() string
	AggregateID() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher publishes events to interested subscribers.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

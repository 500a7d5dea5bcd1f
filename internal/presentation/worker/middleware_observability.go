package workerpresentation

import (
	"context"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-pos/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability/logctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const spanPrefix = "Event."

// WithEventContext injects a request-scoped logger for background/worker executions.
// Dynamic fields only: trace_id/span_id (if valid), event_id (generated if empty),
// plus caller-provided low-cardinality attributes (e.g. "event", "aggregate_id").
func WithEventContext(
	ctx context.Context,
	base observability.Logger,
	tel observability.Observability,
	traceID trace.TraceID,
	spanID trace.SpanID,
	attrs map[string]string,
) context.Context {
	if base == nil {
		base = observability.OrNop(tel).Logger()
	}
	if attrs == nil {
		attrs = make(map[string]string)
	}

	fields := make([]observability.Field, 0, 6)

	evtID := attrs["event_id"]
	if evtID == "" {
		evtID = uuid.NewString()
	}
	fields = append(fields, observability.F("event_id", evtID))

	if traceID.IsValid() {
		fields = append(fields, observability.F("trace_id", traceID.String()))
	}
	if spanID.IsValid() {
		fields = append(fields, observability.F("span_id", spanID.String()))
	}

	for k, v := range attrs {
		if k == "event_id" || v == "" {
			continue
		}
		fields = append(fields, observability.F(k, v))
	}

	return logctx.With(ctx, base.With(fields...))
}

// Observed wraps a Subscriber so every handler it registers runs inside an
// Event.<name> span with an event-scoped logger and a duration observation.
func Observed(next domoutbox.Subscriber, tel observability.Observability) domoutbox.Subscriber {
	tel = observability.OrNop(tel)
	return &observedSubscriber{
		next:     next,
		tel:      tel,
		duration: tel.Metrics().Histogram(observability.MEventHandleDuration),
	}
}

type observedSubscriber struct {
	next     domoutbox.Subscriber
	tel      observability.Observability
	duration observability.Histogram // event_handle_duration_seconds{event,outcome}
}

func (s *observedSubscriber) Subscribe(eventName string, h domoutbox.Handler) {
	s.next.Subscribe(eventName, s.wrap(eventName, h))
}

func (s *observedSubscriber) wrap(eventName string, h domoutbox.Handler) domoutbox.Handler {
	return func(ctx context.Context, e domoutbox.Event) error {
		start := time.Now()
		ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+eventName,
			attribute.String("event.name", eventName),
			attribute.String("aggregate.id", e.AggregateID()),
		)
		defer span.End()

		sc := span.SpanContext()
		ctx = WithEventContext(ctx, logctx.From(ctx), s.tel, sc.TraceID(), sc.SpanID(), map[string]string{
			"event":        eventName,
			"aggregate_id": e.AggregateID(),
		})

		err := h(ctx, e)
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		s.duration.Observe(time.Since(start).Seconds(),
			observability.L("event", eventName),
			observability.L("outcome", outcome),
		)
		return err
	}
}

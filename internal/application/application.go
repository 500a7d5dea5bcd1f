package application

import (
	"context"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-pos/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	spanPrefix     = "UC."
	publishTimeout = 300 * time.Millisecond
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	StatusOK       = "OK"
)

// IDGenerator produces transaction identifiers.
type IDGenerator interface {
	NewID() string
}

// Instrumentation holds the RED instruments and base logger shared by a service's use cases.
type Instrumentation struct {
	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewInstrumentation(service string, tel observability.Observability) *Instrumentation {
	tel = observability.OrNop(tel)
	metrics := tel.Metrics()
	return &Instrumentation{
		log:          tel.Logger().With(observability.F("service", service)),
		tracer:       tel.Tracer(),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

// Logger returns the service's base logger.
func (in *Instrumentation) Logger() observability.Logger { return in.log }

// Call tracks one use case execution from Begin to End.
type Call struct {
	in      *Instrumentation
	ctx     context.Context
	span    trace.Span
	logger  observability.Logger
	useCase string
	start   time.Time
	outcome string
	status  string
	fields  []observability.Field
}

// Begin opens a span named UC.<spanName> and binds a use-case logger to the returned context.
func (in *Instrumentation) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Call) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logctx.FromOr(ctx, in.log).With(observability.F("use_case", useCase))
	attrs = append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)
	ctx, span := in.tracer.Start(ctx, spanPrefix+spanName, attrs...)
	ctx = logctx.With(ctx, logger)
	return ctx, &Call{
		in:      in,
		ctx:     ctx,
		span:    span,
		logger:  logger,
		useCase: useCase,
		start:   time.Now(),
		outcome: OutcomeSuccess,
		status:  StatusOK,
	}
}

// Fail marks the call as failed with a machine-readable status text.
func (c *Call) Fail(status string) {
	c.outcome, c.status = OutcomeError, status
}

// Annotate adds fields to the final use_case_done line.
func (c *Call) Annotate(fields ...observability.Field) {
	c.fields = append(c.fields, fields...)
}

// Event records a span event.
func (c *Call) Event(name string, attrs ...attribute.KeyValue) {
	if c.span != nil {
		c.span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// End closes the span, records RED metrics and writes the use_case_done log line.
func (c *Call) End(err error) {
	if err != nil && c.outcome == OutcomeSuccess {
		c.outcome, c.status = OutcomeError, "FAILED"
	}
	lat := time.Since(c.start).Seconds()

	if c.span != nil {
		if err != nil {
			c.span.RecordError(err)
			c.span.SetStatus(codes.Error, c.status)
		} else {
			c.span.SetStatus(codes.Ok, c.status)
		}
		c.span.End()
	}

	c.in.reqCounter.Add(1,
		observability.L("use_case", c.useCase),
		observability.L("outcome", c.outcome),
	)
	c.in.durHistogram.Observe(lat,
		observability.L("use_case", c.useCase),
	)

	fields := []observability.Field{
		observability.F("outcome", c.outcome),
		observability.F("status", c.status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(c.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	fields = append(fields, c.fields...)
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	c.logger.Info("use_case_done", fields...)
}

// Publish hands an event to the outbox. Delivery problems are logged and annotated
// but never fail the use case: the stock change has already happened.
func (c *Call) Publish(publisher domoutbox.Publisher, e domoutbox.Event) {
	if publisher == nil || e == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(c.ctx, publishTimeout)
	defer cancel()

	err := publisher.Publish(pubCtx, e)
	if err == nil {
		err = pubCtx.Err()
	}
	if err != nil {
		c.Annotate(observability.F("event_publish_error", err.Error()))
		c.logger.Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("aggregate_id", e.AggregateID()),
			observability.F("error", err.Error()),
		)
		return
	}
	c.Event(e.EventName(), attribute.String("aggregate.id", e.AggregateID()))
}

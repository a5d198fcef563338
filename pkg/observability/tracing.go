package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
)

// TracerName is the instrumentation name of the ledger tracer.
const TracerName = "tmsledger"

// Span attribute keys
const (
	AttrPath      = "ledger.path"
	AttrEncoding  = "ledger.encoding"
	AttrMeetings  = "ledger.meetings"
	AttrReport    = "report"
	AttrFormat    = "export.format"
	AttrErrorCode = "error_code"
)

// Span names
const (
	SpanLoad   = "tmsledger.load"
	SpanRender = "tmsledger.render"
	SpanExport = "tmsledger.export"
)

// Tracer starts spans for ledger operations. With no SDK installed the
// global provider hands out no-op spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return NewTracerWithProvider(otel.GetTracerProvider())
}

// NewTracerWithProvider creates a tracer from tp.
func NewTracerWithProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// StartLoadSpan starts a span for reading and parsing a ledger file.
func (t *Tracer) StartLoadSpan(ctx context.Context, path, encoding string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanLoad,
		trace.WithAttributes(
			attribute.String(AttrPath, path),
			attribute.String(AttrEncoding, encoding),
		),
	)
}

// StartRenderSpan starts a span for one report.
func (t *Tracer) StartRenderSpan(ctx context.Context, report string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanRender,
		trace.WithAttributes(attribute.String(AttrReport, report)),
	)
}

// StartExportSpan starts a span for an export.
func (t *Tracer) StartExportSpan(ctx context.Context, format string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanExport,
		trace.WithAttributes(attribute.String(AttrFormat, format)),
	)
}

// RecordError marks span as failed with the error's ledger code.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String(AttrErrorCode, string(lerrors.CodeOf(err))))
	span.RecordError(err)
}

// SetMeetings records the number of meetings handled by the span.
func SetMeetings(span trace.Span, n int) {
	span.SetAttributes(attribute.Int(AttrMeetings, n))
}

// GetTraceID returns the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

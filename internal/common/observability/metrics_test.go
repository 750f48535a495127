package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartStage_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartStage(context.Background(), "classify", attribute.String("questionType", "compliance-law"))
	assert.True(t, span.SpanContext().IsValid())
	_, child := StartStage(ctx, "classify.generate")
	child.End()
	span.End()

	ended := recorder.Ended()
	if assert.Len(t, ended, 2) {
		assert.Equal(t, "classify.generate", ended[0].Name())
		assert.Equal(t, "classify", ended[1].Name())
		assert.Equal(t, ended[1].SpanContext().SpanID(), ended[0].Parent().SpanID())
	}
}

func TestObservability_NilSafe(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		o.RecordChatProcessed(context.Background(), "full", "success")
		o.RecordChatDuration(context.Background(), time.Second, "success")
	})
}

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestStartServiceSpan(t *testing.T) {
	tp, recorder := setupTracerWithRecorder(t)
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	ctx, span := StartServiceSpan(context.Background(), "customer", "save", attribute.Int64("customer.id", 7))
	assert.NotEmpty(t, GetTraceID(ctx))
	EndSpan(span, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "customer.save", spans[0].Name())
	attrs := spanAttributes(spans[0])
	assert.Equal(t, int64(7), attrs["customer.id"].AsInt64())
	assert.Equal(t, "save", attrs["service.method"].AsString())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
}

func TestEndSpan_RecordsError(t *testing.T) {
	tp, recorder := setupTracerWithRecorder(t)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	EndSpan(span, errors.New("boom"))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestEndSpan_Nil(t *testing.T) {
	assert.NotPanics(t, func() { EndSpan(nil, errors.New("ignored")) })
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}

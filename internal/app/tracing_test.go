package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return exporter
}

func spanAttributes(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTracing_CreateTaskSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	svc, _ := newTestService()

	task, err := svc.CreateTask(context.Background(), []byte(`{"title":"A","description":"B","dueDate":"2024-01-01"}`))
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "TaskService.CreateTask", spans[0].Name)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)

	attrs := spanAttributes(spans[0])
	assert.Equal(t, task.ID, attrs["task.id"].AsString())
	assert.Equal(t, "Pending", attrs["task.status"].AsString())
}

func TestTracing_InvalidInputIsNotAnError(t *testing.T) {
	exporter := setupTestTracer(t)
	svc, _ := newTestService()

	_, err := svc.CreateTask(context.Background(), []byte(`{"title":"A"}`))
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.True(t, spanAttributes(spans[0])["task.invalid"].AsBool())
}

func TestTracing_ListStoreFailureMarksSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	svc, repo := newTestService()
	repo.Err = errors.New("no primary")

	_, err := svc.ListTasks(context.Background())
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "TaskService.ListTasks", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "Error fetching tasks", spans[0].Status.Description)
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestTracing_ListCountsTasks(t *testing.T) {
	exporter := setupTestTracer(t)
	svc, _ := newTestService()
	_, err := svc.CreateTask(context.Background(), []byte(`{"title":"A","description":"B","dueDate":"2024-01-01"}`))
	require.NoError(t, err)
	exporter.Reset()

	_, err = svc.ListTasks(context.Background())
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := spanAttributes(spans[0])
	assert.Equal(t, int64(1), attrs["tasks.count"].AsInt64())
}

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter, func()) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	restore := func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	}
	return tp, exporter, restore
}

func TestTaskRequestMetricsLogProducesObservabilityEvent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetFormatter(&log.JSONFormatter{})

	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	metrics, _ := newTaskRequestMetrics(context.Background(), logger, "/api/tasks", "list")
	metrics.start = metrics.start.Add(-50 * time.Millisecond)
	metrics.ObserveAuth(10 * time.Millisecond)
	metrics.ObserveStore(time.Millisecond)
	metrics.ObserveEncode(5 * time.Millisecond)
	metrics.SetTasksReturned(3)

	metrics.Log(http.StatusOK, nil)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("no log entry produced")
	}
	if entry.Message != "observability.event" {
		t.Fatalf("unexpected message: %s", entry.Message)
	}
	if got := entry.Data["event.name"]; got != tasksEventName {
		t.Fatalf("unexpected event name: %v", got)
	}
	if got := entry.Data["event.domain"]; got != tasksEventDomain {
		t.Fatalf("unexpected event domain: %v", got)
	}
	attrs, ok := entry.Data["attributes"].(map[string]any)
	if !ok {
		t.Fatalf("attributes not logged as map: %#v", entry.Data["attributes"])
	}
	if attrs["http.route"] != "/api/tasks" {
		t.Fatalf("unexpected route attribute: %#v", attrs["http.route"])
	}
	if attrs["tasks.operation"] != "list" {
		t.Fatalf("unexpected operation attribute: %#v", attrs["tasks.operation"])
	}
	if attrs["tasks.tasks_returned"] != 3 {
		t.Fatalf("unexpected tasks_returned attribute: %#v", attrs["tasks.tasks_returned"])
	}
	total, ok := attrs["tasks.total_ms"].(float64)
	if !ok || total < 50 {
		t.Fatalf("unexpected total_ms attribute: %#v", attrs["tasks.total_ms"])
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "tasks.request.list" {
		t.Fatalf("unexpected span name %s", span.Name)
	}
	if span.Status.Code != otelcodes.Ok {
		t.Fatalf("unexpected span status %v", span.Status.Code)
	}
	foundRoute := false
	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key("http.route") && attr.Value.AsString() == "/api/tasks" {
			foundRoute = true
		}
	}
	if !foundRoute {
		t.Fatalf("span missing http.route attribute: %v", span.Attributes)
	}
}

func TestTaskRequestMetricsLogRecordsError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	metrics, _ := newTaskRequestMetrics(context.Background(), logger, "/api/tasks", "create")
	metrics.SetErrorStage("decode_request")

	metrics.Log(http.StatusBadRequest, errors.New("invalid body"))

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("no log entry produced")
	}
	attrs, ok := entry.Data["attributes"].(map[string]any)
	if !ok {
		t.Fatalf("attributes not logged as map")
	}
	if attrs["tasks.error_stage"] != "decode_request" {
		t.Fatalf("unexpected error stage: %#v", attrs["tasks.error_stage"])
	}
	if attrs["error"] != "invalid body" {
		t.Fatalf("unexpected error attribute: %#v", attrs["error"])
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	if spans[0].Status.Code != otelcodes.Error {
		t.Fatalf("expected error span status, got %v", spans[0].Status.Code)
	}
}

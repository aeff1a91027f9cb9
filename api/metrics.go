package api

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName       = "tasks-api/api"
	tasksEventName   = "tasks.request"
	tasksEventDomain = "tasks"
)

// taskRequestMetrics records stage timings for a tracked request and emits
// them both as an otel span and as a structured observability event.
type taskRequestMetrics struct {
	logger *log.Logger
	span   trace.Span
	start  time.Time
	route  string
	op     string

	authDuration   time.Duration
	storeDuration  time.Duration
	encodeDuration time.Duration
	tasksReturned  int
	replayed       bool
	errorStage     string
}

func newTaskRequestMetrics(ctx context.Context, logger *log.Logger, route, op string) (*taskRequestMetrics, context.Context) {
	m := &taskRequestMetrics{
		logger: logger,
		start:  time.Now(),
		route:  route,
		op:     op,
	}
	spanCtx, span := otel.Tracer(tracerName).Start(ctx, tasksEventName+"."+op)
	m.span = span
	return m, spanCtx
}

func (m *taskRequestMetrics) ObserveAuth(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.authDuration = duration
}

func (m *taskRequestMetrics) ObserveStore(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.storeDuration = duration
}

func (m *taskRequestMetrics) ObserveEncode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.encodeDuration = duration
}

func (m *taskRequestMetrics) SetTasksReturned(count int) {
	if count < 0 {
		count = 0
	}
	m.tasksReturned = count
}

func (m *taskRequestMetrics) SetReplayed(replayed bool) {
	m.replayed = replayed
}

func (m *taskRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finishes the span and writes the observability event. It must be called
// exactly once, after the response status is known.
func (m *taskRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	attrs := map[string]any{
		"http.route":           m.route,
		"http.status_code":     status,
		"tasks.operation":      m.op,
		"tasks.total_ms":       durationToMillis(time.Since(m.start)),
		"tasks.tasks_returned": m.tasksReturned,
		"tasks.replayed":       m.replayed,
	}
	if m.authDuration > 0 {
		attrs["tasks.auth_ms"] = durationToMillis(m.authDuration)
	}
	if m.storeDuration > 0 {
		attrs["tasks.store_ms"] = durationToMillis(m.storeDuration)
	}
	if m.encodeDuration > 0 {
		attrs["tasks.encode_ms"] = durationToMillis(m.encodeDuration)
	}
	if m.errorStage != "" {
		attrs["tasks.error_stage"] = m.errorStage
	}
	if err != nil {
		attrs["error"] = err.Error()
	}

	if m.span != nil {
		m.span.SetAttributes(
			attribute.String("http.route", m.route),
			attribute.Int("http.status_code", status),
			attribute.String("tasks.operation", m.op),
			attribute.Int("tasks.tasks_returned", m.tasksReturned),
			attribute.Bool("tasks.replayed", m.replayed),
		)
		if m.errorStage != "" {
			m.span.SetAttributes(attribute.String("tasks.error_stage", m.errorStage))
		}
		if err != nil {
			m.span.SetStatus(codes.Error, err.Error())
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}
	m.logger.WithFields(log.Fields{
		"event.name":   tasksEventName,
		"event.domain": tasksEventDomain,
		"attributes":   attrs,
	}).Info("observability.event")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "pgy3-backend/pkg/errors"
)

type recordedRequest struct {
	method, route string
	status        int
}

type recordingMetrics struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (m *recordingMetrics) RecordRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, recordedRequest{method: method, route: route, status: status})
}

func (m *recordingMetrics) RecordStoreOperation(context.Context, string, time.Duration, error) {}

func (m *recordingMetrics) Handler() http.Handler { return nil }

func TestMetricsUsesRoutePattern(t *testing.T) {
	metrics := &recordingMetrics{}
	r := chi.NewRouter()
	r.Use(Metrics(metrics))
	r.Get("/api/topics/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, target := range []string{"/api/topics/a", "/api/topics/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	require.Len(t, metrics.requests, 3)
	assert.Equal(t, recordedRequest{http.MethodGet, "/api/topics/{id}", http.StatusNoContent}, metrics.requests[0])
	assert.Equal(t, "/api/topics/{id}", metrics.requests[1].route)
	assert.Equal(t, http.StatusNotFound, metrics.requests[2].status)
}

func TestLoggerRecordsRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{"title":"x"}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("Request served").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/tasks", fields["path"])
	assert.Equal(t, "unmatched", fields["route"])
	assert.EqualValues(t, http.StatusCreated, fields["status"])
	assert.EqualValues(t, 13, fields["content_length"])
	assert.EqualValues(t, 2, fields["bytes"])
	assert.Contains(t, fields, "request_id")
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		level  zapcore.Level
		logged bool
	}{
		{name: "server error", path: "/api/mindmap-data", status: http.StatusInternalServerError, level: zapcore.ErrorLevel, logged: true},
		{name: "client error", path: "/api/topics", status: http.StatusBadRequest, level: zapcore.WarnLevel, logged: true},
		{name: "health probe", path: "/health", status: http.StatusOK},
		{name: "failing readiness probe", path: "/ready", status: http.StatusServiceUnavailable, level: zapcore.ErrorLevel, logged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			handler := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			entries := logs.All()
			if !tt.logged {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
		})
	}
}

func TestTracingStartsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	handler := Tracing(provider.Tracer("test"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/mindmap-data", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/mindmap-data", spans[0].Name())
	assert.Equal(t, "Error", spans[0].Status().Code.String())
}

func TestCircuitBreaker(t *testing.T) {
	config := CircuitBreakerConfig{
		Name:             "store",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	}
	logger := zap.NewNop()

	failing := true
	calls := 0
	handler := CircuitBreaker(config, apperrors.NewErrorHandler(logger, false), logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if failing {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))

	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mindmap-data", nil))
		return rec
	}

	assert.Equal(t, http.StatusInternalServerError, serve().Code)
	assert.Equal(t, http.StatusInternalServerError, serve().Code)

	rec := serve()
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNAVAILABLE")
	assert.Equal(t, 2, calls)
}

func TestCircuitBreakerIgnoresClientErrors(t *testing.T) {
	config := DefaultCircuitBreakerConfig("store")
	logger := zap.NewNop()
	handler := CircuitBreaker(config, apperrors.NewErrorHandler(logger, false), logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/mindmap-data", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

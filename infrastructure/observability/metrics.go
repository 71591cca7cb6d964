// Package observability provides metrics and tracing for the API and the
// document store.
package observability

import (
	"context"
	"net/http"
	"time"
)

// Metrics records request and store measurements. Implementations must be
// safe for concurrent use and must never fail the caller.
type Metrics interface {
	RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration)
	RecordStoreOperation(ctx context.Context, operation string, duration time.Duration, err error)

	// Handler exposes the metrics for scraping, or nil when the backend is
	// push-based.
	Handler() http.Handler
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordRequest(context.Context, string, string, int, time.Duration) {}

func (NopMetrics) RecordStoreOperation(context.Context, string, time.Duration, error) {}

func (NopMetrics) Handler() http.Handler { return nil }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

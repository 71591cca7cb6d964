package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pgy3-backend/application/ports"
	"pgy3-backend/domain/mindmap"
)

// InstrumentedStore records the latency and outcome of every store call.
type InstrumentedStore struct {
	inner   ports.DocumentStore
	metrics Metrics
}

func NewInstrumentedStore(inner ports.DocumentStore, metrics Metrics) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, metrics: metrics}
}

func (s *InstrumentedStore) Load(ctx context.Context) (*mindmap.Document, error) {
	start := time.Now()
	doc, err := s.inner.Load(ctx)
	s.metrics.RecordStoreOperation(ctx, "load", time.Since(start), err)
	return doc, err
}

func (s *InstrumentedStore) Save(ctx context.Context, doc *mindmap.Document) error {
	start := time.Now()
	err := s.inner.Save(ctx, doc)
	s.metrics.RecordStoreOperation(ctx, "save", time.Since(start), err)
	return err
}

// TracedStore wraps every store call in a span.
type TracedStore struct {
	inner  ports.DocumentStore
	tracer trace.Tracer
}

func NewTracedStore(inner ports.DocumentStore, tracer trace.Tracer) *TracedStore {
	return &TracedStore{inner: inner, tracer: tracer}
}

func (s *TracedStore) Load(ctx context.Context) (*mindmap.Document, error) {
	ctx, span := s.tracer.Start(ctx, "DocumentStore.Load")
	defer span.End()

	doc, err := s.inner.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	setCounts(span, doc)
	return doc, nil
}

func (s *TracedStore) Save(ctx context.Context, doc *mindmap.Document) error {
	ctx, span := s.tracer.Start(ctx, "DocumentStore.Save")
	defer span.End()

	if doc != nil {
		setCounts(span, doc)
	}
	if err := s.inner.Save(ctx, doc); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func setCounts(span trace.Span, doc *mindmap.Document) {
	c := doc.Counts()
	span.SetAttributes(
		attribute.Int("mindmap.topics", c.Topics),
		attribute.Int("mindmap.cases", c.Cases),
		attribute.Int("mindmap.tasks", c.Tasks),
		attribute.Int("mindmap.literature", c.Literature),
		attribute.Int("mindmap.connections", c.Connections),
	)
}

package handlers

import (
	"context"

	"go.uber.org/zap"

	"pgy3-backend/application/ports"
	"pgy3-backend/application/queries"
	"pgy3-backend/application/queries/bus"
	apperrors "pgy3-backend/pkg/errors"
)

// MindMapQueryHandler answers reads. Every query re-reads the store; nothing
// is cached between requests.
type MindMapQueryHandler struct {
	store  ports.DocumentStore
	logger *zap.Logger
}

func NewMindMapQueryHandler(store ports.DocumentStore, logger *zap.Logger) *MindMapQueryHandler {
	return &MindMapQueryHandler{store: store, logger: logger}
}

// Register binds every query this handler serves to b.
func (h *MindMapQueryHandler) Register(b *bus.QueryBus) error {
	if err := b.Register(queries.GetDocumentQuery{}, bus.QueryHandlerFunc(h.handleGetDocument)); err != nil {
		return err
	}
	if err := b.Register(queries.ListCollectionQuery{}, bus.QueryHandlerFunc(h.handleListCollection)); err != nil {
		return err
	}
	if err := b.Register(queries.ListConnectionsQuery{}, bus.QueryHandlerFunc(h.handleListConnections)); err != nil {
		return err
	}
	return b.Register(queries.GetEntityQuery{}, bus.QueryHandlerFunc(h.handleGetEntity))
}

func (h *MindMapQueryHandler) handleGetDocument(ctx context.Context, _ bus.Query) (interface{}, error) {
	return h.store.Load(ctx)
}

func (h *MindMapQueryHandler) handleListCollection(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.ListCollectionQuery)
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Collection(query.Kind), nil
}

func (h *MindMapQueryHandler) handleListConnections(ctx context.Context, _ bus.Query) (interface{}, error) {
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.Connections, nil
}

func (h *MindMapQueryHandler) handleGetEntity(ctx context.Context, q bus.Query) (interface{}, error) {
	query := q.(queries.GetEntityQuery)
	doc, err := h.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	entity, ok := doc.Find(query.Kind, query.ID)
	if !ok {
		return nil, apperrors.NewNotFoundError(query.Kind.Singular(), query.ID)
	}
	return entity, nil
}

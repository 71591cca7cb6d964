package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pgy3-backend/application/commands"
	"pgy3-backend/application/commands/bus"
	"pgy3-backend/application/queries"
	querybus "pgy3-backend/application/queries/bus"
	"pgy3-backend/domain/mindmap"
	"pgy3-backend/pkg/common"
	apperrors "pgy3-backend/pkg/errors"
)

// MindMapHandler serves the bulk document and its read-only projections.
type MindMapHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errors       *apperrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewMindMapHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *apperrors.ErrorHandler,
	maxBodyBytes int64,
	logger *zap.Logger,
) *MindMapHandler {
	return &MindMapHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errors:       errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Root handles GET /api/
func (h *MindMapHandler) Root(w http.ResponseWriter, r *http.Request) {
	common.RespondMessage(w, http.StatusOK, "PGY-3 HQ API is running")
}

// GetDocument handles GET /api/mindmap-data
func (h *MindMapHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetDocumentQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// SaveDocument handles PUT /api/mindmap-data
func (h *MindMapHandler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	body, err := common.ReadBody(w, r, h.maxBodyBytes)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	doc, err := mindmap.DecodeDocument(body)
	if err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError("invalid mind map document: "+err.Error()).WithCause(err))
		return
	}

	if err := h.commandBus.Send(r.Context(), &commands.ReplaceDocumentCommand{Document: doc}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondMessage(w, http.StatusOK, "Mind map data saved successfully")
}

// InitSampleData handles POST /api/init-sample-data
func (h *MindMapHandler) InitSampleData(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), &commands.ResetDocumentCommand{}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondMessage(w, http.StatusOK, "Sample data initialized successfully")
}

// ListCollection returns a handler for GET /api/{kind}.
func (h *MindMapHandler) ListCollection(kind mindmap.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.queryBus.Ask(r.Context(), queries.ListCollectionQuery{Kind: kind})
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, result)
	}
}

// ListConnections handles GET /api/connections
func (h *MindMapHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListConnectionsQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pgy3-backend/application/commands"
	"pgy3-backend/application/commands/bus"
	"pgy3-backend/application/queries"
	querybus "pgy3-backend/application/queries/bus"
	"pgy3-backend/domain/mindmap"
	"pgy3-backend/pkg/common"
	apperrors "pgy3-backend/pkg/errors"
)

// EntityHandler serves the per-entity convenience endpoints. Every call is a
// read-modify-write of the whole document.
type EntityHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errors       *apperrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewEntityHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *apperrors.ErrorHandler,
	maxBodyBytes int64,
	logger *zap.Logger,
) *EntityHandler {
	return &EntityHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errors:       errorHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Create handles POST /api/{kind}
func (h *EntityHandler) Create(kind mindmap.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := common.ReadBody(w, r, h.maxBodyBytes)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		entity, err := mindmap.DecodeEntity(kind, body)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}

		cmd := &commands.CreateEntityCommand{Entity: entity}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			h.errors.Handle(w, r, err)
			return
		}

		h.logger.Debug("Entity created",
			zap.String("kind", string(kind)),
			zap.String("id", cmd.Entity.EntityID()),
		)
		common.RespondJSON(w, http.StatusOK, cmd.Entity)
	}
}

// Get handles GET /api/{kind}/{id}
func (h *EntityHandler) Get(kind mindmap.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := h.queryBus.Ask(r.Context(), queries.GetEntityQuery{Kind: kind, ID: chi.URLParam(r, "id")})
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, result)
	}
}

// Update handles PUT /api/{kind}/{id}
func (h *EntityHandler) Update(kind mindmap.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := common.ReadBody(w, r, h.maxBodyBytes)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		patch, err := mindmap.DecodePatch(kind, body)
		if err != nil {
			h.errors.Handle(w, r, err)
			return
		}

		cmd := &commands.UpdateEntityCommand{Kind: kind, ID: chi.URLParam(r, "id"), Patch: patch}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, cmd.Result)
	}
}

// Delete handles DELETE /api/{kind}/{id}
func (h *EntityHandler) Delete(kind mindmap.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := &commands.DeleteEntityCommand{Kind: kind, ID: chi.URLParam(r, "id")}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			h.errors.Handle(w, r, err)
			return
		}
		common.RespondMessage(w, http.StatusOK, capitalize(kind.Singular())+" deleted successfully")
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

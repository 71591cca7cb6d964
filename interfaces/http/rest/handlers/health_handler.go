package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"pgy3-backend/application/queries"
	querybus "pgy3-backend/application/queries/bus"
	"pgy3-backend/pkg/common"
	apperrors "pgy3-backend/pkg/errors"
)

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string    `json:"status"`
	Backend string    `json:"backend,omitempty"`
	Time    time.Time `json:"time"`
}

type HealthHandler struct {
	queryBus *querybus.QueryBus
	backend  string
	errors   *apperrors.ErrorHandler
	logger   *zap.Logger
}

func NewHealthHandler(queryBus *querybus.QueryBus, backend string, errorHandler *apperrors.ErrorHandler, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{queryBus: queryBus, backend: backend, errors: errorHandler, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Time: time.Now().UTC()})
}

// Ready handles GET /ready. The store must answer a full load.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, err := h.queryBus.Ask(r.Context(), queries.GetDocumentQuery{}); err != nil {
		h.logger.Warn("Readiness check failed", zap.String("backend", h.backend), zap.Error(err))
		h.errors.Handle(w, r, apperrors.NewUnavailableError(h.backend).WithCause(err))
		return
	}
	common.RespondJSON(w, http.StatusOK, HealthResponse{Status: "ready", Backend: h.backend, Time: time.Now().UTC()})
}

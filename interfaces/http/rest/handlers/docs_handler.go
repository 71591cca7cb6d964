package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"

	"pgy3-backend/interfaces/http/rest/docs"
	apperrors "pgy3-backend/pkg/errors"
)

// OpenAPI serves the embedded API description, as JSON when the client asks
// for it and YAML otherwise.
func OpenAPI(errorHandler *apperrors.ErrorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept"), "application/json") {
			w.Header().Set("Content-Type", "application/yaml")
			w.WriteHeader(http.StatusOK)
			w.Write(docs.OpenAPI)
			return
		}

		var spec map[string]interface{}
		if err := yaml.Unmarshal(docs.OpenAPI, &spec); err != nil {
			errorHandler.Handle(w, r, apperrors.NewInternalError("decode api description").WithCause(err))
			return
		}
		body, err := json.Marshal(spec)
		if err != nil {
			errorHandler.Handle(w, r, apperrors.NewInternalError("encode api description").WithCause(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

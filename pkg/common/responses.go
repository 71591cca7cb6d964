package common

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "pgy3-backend/pkg/errors"
)

// MessageResponse is the acknowledgement body used by write endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON writes data as the bare JSON body. The frontend reads documents
// and collections without an envelope.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondMessage writes {"message": msg}.
func RespondMessage(w http.ResponseWriter, status int, msg string) {
	RespondJSON(w, status, MessageResponse{Message: msg})
}

// LimitBody caps the request body at maxBytes. A limit of zero or less
// leaves the body unbounded.
func LimitBody(w http.ResponseWriter, r *http.Request, maxBytes int64) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
}

// ReadBody reads the whole request body, refusing anything above maxBytes.
func ReadBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	LimitBody(w, r, maxBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewTooLargeError(tooLarge.Limit)
		}
		return nil, apperrors.NewValidationError("failed to read request body").WithCause(err)
	}
	if len(data) == 0 {
		return nil, apperrors.NewValidationError("request body is empty")
	}
	return data, nil
}

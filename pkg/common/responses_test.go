package common

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "pgy3-backend/pkg/errors"
)

func TestRespondMessage(t *testing.T) {
	rec := httptest.NewRecorder()

	RespondMessage(rec, http.StatusOK, "Mind map data saved successfully")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"Mind map data saved successfully"}`, rec.Body.String())
}

func TestReadBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		limit   int64
		wantErr apperrors.ErrorType
	}{
		{name: "within limit", body: `{"topics":[]}`, limit: 64},
		{name: "no limit", body: strings.Repeat("x", 1024), limit: 0},
		{name: "over limit", body: strings.Repeat("x", 65), limit: 64, wantErr: apperrors.ErrorTypeTooLarge},
		{name: "empty", body: "", limit: 64, wantErr: apperrors.ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/mindmap-data", strings.NewReader(tt.body))

			data, err := ReadBody(httptest.NewRecorder(), req, tt.limit)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(data))
		})
	}
}

func TestLimitBody(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{name: "unbounded at zero", limit: 0},
		{name: "unbounded when negative", limit: -1},
		{name: "over limit", limit: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/upload-pdf", strings.NewReader(strings.Repeat("x", 32)))

			LimitBody(httptest.NewRecorder(), req, tt.limit)
			_, err := io.ReadAll(req.Body)

			if tt.wantErr {
				var tooLarge *http.MaxBytesError
				assert.ErrorAs(t, err, &tooLarge)
				return
			}
			assert.NoError(t, err)
		})
	}
}

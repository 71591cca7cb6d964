package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pgy3-backend/application/commands/bus"
	cmdhandlers "pgy3-backend/application/commands/handlers"
	querybus "pgy3-backend/application/queries/bus"
	queryhandlers "pgy3-backend/application/queries/handlers"
	"pgy3-backend/infrastructure/messaging"
	"pgy3-backend/infrastructure/observability"
	"pgy3-backend/infrastructure/persistence"
	"pgy3-backend/infrastructure/persistence/memory"
	"pgy3-backend/infrastructure/storage/local"
	"pgy3-backend/interfaces/http/rest"
	apperrors "pgy3-backend/pkg/errors"
)

type testServer struct {
	handler    http.Handler
	uploadsDir string
}

type serverOption func(*rest.Options, *persistence.Medium, *observability.Metrics)

func withMaxBody(n int64) serverOption {
	return func(o *rest.Options, _ *persistence.Medium, _ *observability.Metrics) { o.MaxBodyBytes = n }
}

func withMedium(m persistence.Medium) serverOption {
	return func(_ *rest.Options, medium *persistence.Medium, _ *observability.Metrics) { *medium = m }
}

func withMetrics(m observability.Metrics) serverOption {
	return func(_ *rest.Options, _ *persistence.Medium, metrics *observability.Metrics) { *metrics = m }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	logger := zap.NewNop()

	options := rest.Options{
		AllowedOrigins: []string{"*"},
		MaxBodyBytes:   1 << 20,
		UploadsDir:     t.TempDir(),
		Backend:        "memory",
	}
	var medium persistence.Medium = memory.New()
	var metrics observability.Metrics = observability.NopMetrics{}
	for _, opt := range opts {
		opt(&options, &medium, &metrics)
	}

	store := persistence.NewStore(medium, logger)

	commandBus := bus.NewCommandBus()
	require.NoError(t, cmdhandlers.NewMindMapCommandHandler(store, messaging.NewLogNotifier(logger), nil, nil, logger).Register(commandBus))
	queryBus := querybus.NewQueryBus(logger)
	require.NoError(t, queryhandlers.NewMindMapQueryHandler(store, logger).Register(queryBus))

	uploads, err := local.NewUploads(options.UploadsDir)
	require.NoError(t, err)

	router := rest.NewRouter(commandBus, queryBus, uploads, apperrors.NewErrorHandler(logger, false), metrics, nil, options, logger)
	return &testServer{handler: router.Setup(), uploadsDir: options.UploadsDir}
}

func (s *testServer) do(t *testing.T, method, target string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"PGY-3 HQ API is running"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodOptions, "/api/mindmap-data", nil,
		"Origin", "http://localhost:3000",
		"Access-Control-Request-Method", http.MethodPut,
		"Access-Control-Request-Headers", "Content-Type",
	)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestGetMindMapDataSeedsEmptyStore(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/mindmap-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decode[map[string][]map[string]any](t, rec)
	assert.NotEmpty(t, doc["topics"])
	assert.NotEmpty(t, doc["cases"])
	assert.NotEmpty(t, doc["tasks"])
	assert.NotEmpty(t, doc["literature"])

	again := s.do(t, http.MethodGet, "/api/mindmap-data", nil)
	assert.JSONEq(t, rec.Body.String(), again.Body.String())
}

func TestPutMindMapDataRoundTrip(t *testing.T) {
	s := newTestServer(t)
	body := `{
		"topics": [{"id":"t1","title":"Depression","category":"mood","color":"#123456",
			"position":{"x":10,"y":20},"created_at":"2024-01-01T00:00:00Z","updated_at":"2024-01-02T00:00:00Z",
			"definition":"Low mood"}],
		"cases": [],
		"tasks": [],
		"literature": [],
		"connections": [{"id":"c1","source":"t1","target":"t1","sourceHandle":"t1-right","targetHandle":"left","label":"self"}],
		"viewport": {"zoom": 1.5}
	}`

	rec := s.do(t, http.MethodPut, "/api/mindmap-data", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Mind map data saved successfully"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/mindmap-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]any](t, rec)

	topics := doc["topics"].([]any)
	require.Len(t, topics, 1)
	topic := topics[0].(map[string]any)
	assert.Equal(t, "Depression", topic["title"])
	assert.Equal(t, "Low mood", topic["definition"])
	assert.Equal(t, "2024-01-02T00:00:00Z", topic["updated_at"])

	conns := doc["connections"].([]any)
	require.Len(t, conns, 1)
	conn := conns[0].(map[string]any)
	assert.Equal(t, "t1-right", conn["sourceHandle"])
	assert.Equal(t, "left", conn["targetHandle"])
	assert.Equal(t, "self", conn["label"])

	assert.Equal(t, map[string]any{"zoom": 1.5}, doc["viewport"])
}

func TestPutMindMapDataMissingConnections(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/mindmap-data",
		strings.NewReader(`{"topics":[],"cases":[],"tasks":[],"literature":[]}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/connections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestPutMindMapDataRejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		typ    string
	}{
		{name: "malformed json", body: `{"topics": [`, status: http.StatusBadRequest, typ: "VALIDATION"},
		{name: "wrong id type", body: `{"topics":[{"id":123,"title":"x","category":"y"}],"cases":[],"tasks":[],"literature":[]}`, status: http.StatusBadRequest, typ: "VALIDATION"},
		{name: "missing title", body: `{"topics":[{"id":"t1","category":"y"}],"cases":[],"tasks":[],"literature":[]}`, status: http.StatusBadRequest, typ: "VALIDATION"},
		{name: "bad case status", body: `{"topics":[],"cases":[{"case_id":"C1","encounter_date":"2024-01-01","primary_diagnosis":"MDD","chief_complaint":"sad","status":"closed"}],"tasks":[],"literature":[]}`, status: http.StatusBadRequest, typ: "VALIDATION"},
		{name: "empty body", body: ``, status: http.StatusBadRequest, typ: "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			before := s.do(t, http.MethodGet, "/api/mindmap-data", nil).Body.String()

			rec := s.do(t, http.MethodPut, "/api/mindmap-data", strings.NewReader(tt.body))

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decode[apperrors.ErrorResponse](t, rec)
			assert.True(t, resp.Error)
			assert.Equal(t, tt.typ, resp.Type)

			after := s.do(t, http.MethodGet, "/api/mindmap-data", nil).Body.String()
			assert.JSONEq(t, before, after)
		})
	}
}

func TestPutMindMapDataTooLarge(t *testing.T) {
	s := newTestServer(t, withMaxBody(64))

	rec := s.do(t, http.MethodPut, "/api/mindmap-data",
		strings.NewReader(`{"topics":[],"cases":[],"tasks":[],"literature":[],"padding":"`+strings.Repeat("x", 128)+`"}`))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type brokenMedium struct{}

func (brokenMedium) Name() string { return "broken" }

func (brokenMedium) Read(context.Context) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (brokenMedium) Write(context.Context, []byte) error { return errors.New("disk on fire") }

func (brokenMedium) Create(context.Context, []byte) (bool, error) {
	return false, errors.New("disk on fire")
}

func TestStoreFailuresMapToServerErrors(t *testing.T) {
	s := newTestServer(t, withMedium(brokenMedium{}))

	rec := s.do(t, http.MethodGet, "/api/mindmap-data", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "PERSISTENCE", decode[apperrors.ErrorResponse](t, rec).Type)

	rec = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCollections(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/topics", "/api/cases", "/api/tasks", "/api/literature", "/api/connections"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.NotEmpty(t, decode[[]map[string]any](t, rec))
		})
	}
}

func TestEntityLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/tasks", strings.NewReader(`{"title":"Read DSM chapter","due_date":"2024-05-01"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "medium", created["priority"])
	assert.NotEmpty(t, created["created_at"])

	rec = s.do(t, http.MethodGet, "/api/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Read DSM chapter", decode[map[string]any](t, rec)["title"])

	rec = s.do(t, http.MethodPut, "/api/tasks/"+id, strings.NewReader(`{"status":"completed"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[map[string]any](t, rec)
	assert.Equal(t, "completed", updated["status"])
	assert.Equal(t, "Read DSM chapter", updated["title"])

	rec = s.do(t, http.MethodPut, "/api/tasks/"+id, strings.NewReader(`{"status":"someday"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[apperrors.ErrorResponse](t, rec).Type)

	rec = s.do(t, http.MethodDelete, "/api/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEntityRejectsMissingRequiredField(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/topics", strings.NewReader(`{"category":"mood"}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION", decode[apperrors.ErrorResponse](t, rec).Type)
}

func TestDeleteMessages(t *testing.T) {
	s := newTestServer(t)

	for kind, msg := range map[string]string{
		"topics":     "Topic deleted successfully",
		"cases":      "Case deleted successfully",
		"literature": "Literature deleted successfully",
	} {
		items := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/"+kind, nil))
		require.NotEmpty(t, items)

		rec := s.do(t, http.MethodDelete, "/api/"+kind+"/"+items[0]["id"].(string), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, msg, decode[map[string]string](t, rec)["message"])
	}
}

func TestInitSampleData(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/mindmap-data",
		strings.NewReader(`{"topics":[],"cases":[],"tasks":[],"literature":[],"connections":[]}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/init-sample-data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Sample data initialized successfully"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/topics", nil)
	assert.NotEmpty(t, decode[[]map[string]any](t, rec))
}

func multipartBody(t *testing.T, contentType, literatureID string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if withFile {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="pdf"; filename="Paper.PDF"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4 test"))
		require.NoError(t, err)
	}
	if literatureID != "" {
		require.NoError(t, mw.WriteField("literatureId", literatureID))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadPDF(t *testing.T) {
	s := newTestServer(t)
	lit := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/literature", nil))
	require.NotEmpty(t, lit)
	litID := lit[0]["id"].(string)

	body, ct := multipartBody(t, "application/pdf", litID, true)
	rec := s.do(t, http.MethodPost, "/api/upload-pdf", body, "Content-Type", ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[map[string]string](t, rec)
	assert.Equal(t, "File uploaded and path saved.", resp["message"])
	path := resp["filePath"]
	require.True(t, strings.HasPrefix(path, "/uploads/pdf-"), path)
	assert.True(t, strings.HasSuffix(path, ".pdf"), path)

	rec = s.do(t, http.MethodGet, "/api/literature/"+litID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, path, decode[map[string]any](t, rec)["pdf_path"])

	rec = s.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 test", rec.Body.String())
}

func TestUploadPDFWithoutBodyLimit(t *testing.T) {
	s := newTestServer(t, withMaxBody(0))
	lit := decode[[]map[string]any](t, s.do(t, http.MethodGet, "/api/literature", nil))
	require.NotEmpty(t, lit)

	body, ct := multipartBody(t, "application/pdf", lit[0]["id"].(string), true)
	rec := s.do(t, http.MethodPost, "/api/upload-pdf", body, "Content-Type", ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	entries, err := os.ReadDir(s.uploadsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUploadPDFTooLarge(t *testing.T) {
	s := newTestServer(t, withMaxBody(16))

	body, ct := multipartBody(t, "application/pdf", "lit", true)
	rec := s.do(t, http.MethodPost, "/api/upload-pdf", body, "Content-Type", ct)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}

func TestUploadPDFRejections(t *testing.T) {
	tests := []struct {
		name         string
		contentType  string
		literatureID string
		withFile     bool
		status       int
	}{
		{name: "no file", contentType: "application/pdf", literatureID: "lit", withFile: false, status: http.StatusBadRequest},
		{name: "not a pdf", contentType: "image/png", literatureID: "lit", withFile: true, status: http.StatusBadRequest},
		{name: "no literature id", contentType: "application/pdf", withFile: true, status: http.StatusBadRequest},
		{name: "unknown literature", contentType: "application/pdf", literatureID: "missing", withFile: true, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			body, ct := multipartBody(t, tt.contentType, tt.literatureID, tt.withFile)

			rec := s.do(t, http.MethodPost, "/api/upload-pdf", body, "Content-Type", ct)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			entries, err := os.ReadDir(s.uploadsDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestOpenAPIDocs(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/docs/openapi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/mindmap-data:")

	rec = s.do(t, http.MethodGet, "/api/docs/openapi", nil, "Accept", "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	spec := decode[map[string]any](t, rec)
	assert.Equal(t, "3.0.3", spec["openapi"])
	assert.Contains(t, spec["paths"], "/mindmap-data")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, withMetrics(observability.NewPrometheusMetrics("pgy3_test")))

	s.do(t, http.MethodGet, "/api/topics", nil)
	rec := s.do(t, http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pgy3_test_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/api/topics`)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/unknown-thing/deeper", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

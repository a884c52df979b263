package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radiusdt/adbridge/internal/config"
	"github.com/radiusdt/adbridge/internal/models"
)

// newTestServer builds the handler with every backend nil so the in-memory
// fallbacks are used throughout.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Platform: config.PlatformConfig{
			BaseURL:  "http://localhost:0",
			Timeout:  time.Second,
			PageSize: 50,
		},
		Sync: config.SyncConfig{Concurrency: 2, ThrottleRPS: 100},
	}
	return NewServer(&Dependencies{Config: cfg, Logger: zap.NewNop()})
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	// No configured backends, nothing to probe.
	assert.NotContains(t, body, "backends")
}

func TestHealthReportsDegradedBackend(t *testing.T) {
	s := &Server{
		logger: zap.NewNop(),
		backends: []backendCheck{
			{name: "postgres", check: func(ctx context.Context) error { return nil }},
			{name: "redis", check: func(ctx context.Context) error { return errors.New("connection refused") }},
		},
	}

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status   string            `json:"status"`
		Backends map[string]string `json:"backends"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "ok", body.Backends["postgres"])
	assert.Equal(t, "connection refused", body.Backends["redis"])
}

func TestFilterStatus(t *testing.T) {
	list := []*models.Campaign{
		{ID: "a", Status: models.StatusActive},
		{ID: "b", Status: models.StatusPaused},
		{ID: "c", Status: models.StatusActive},
	}
	get := func(c *models.Campaign) models.Status { return c.Status }

	active := filterStatus(list, models.StatusActive, get)
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].ID)
	assert.Equal(t, "c", active[1].ID)

	// Empty filter passes everything through.
	assert.Len(t, filterStatus(list, "", get), 3)
	assert.Empty(t, filterStatus(list, models.StatusFailed, get))
}

func TestCreateAndListAccounts(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/accounts", models.Account{
		Name:       "Acme",
		ExternalID: "act_42",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "act_42", created.ExternalID)
	assert.False(t, created.CreatedAt.IsZero())

	rec = doJSON(t, h, http.MethodGet, "/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateAccountRequiresName(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/accounts", models.Account{ExternalID: "act_7"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignListRequiresAccountID(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/campaigns", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCampaignByIDNotFound(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/campaigns/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublishRejectsInvalidJSON(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/publish", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishWithoutTokenFailsValidation(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/publish", publishRequest{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body struct {
		Error  string   `json:"error"`
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.NotEmpty(t, body.Fields)
}

func TestSyncUnknownAccountReturns404(t *testing.T) {
	h := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/sync/act_missing", bytes.NewBufferString("{}"))
	req.Header.Set(PlatformTokenHeader, "token-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublishMethodNotAllowed(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/publish", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

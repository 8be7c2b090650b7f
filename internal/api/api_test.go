package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/warrantscan/internal/api/handlers"
	"github.com/wonny/warrantscan/internal/contracts"
	"github.com/wonny/warrantscan/internal/names"
	"github.com/wonny/warrantscan/internal/pipeline"
	"github.com/wonny/warrantscan/pkg/database"
	"github.com/wonny/warrantscan/pkg/logger"
	"github.com/wonny/warrantscan/pkg/metrics"
)

type fakeDB struct{ healthy bool }

func (f fakeDB) HealthCheck(ctx context.Context) *database.HealthStatus {
	s := &database.HealthStatus{Healthy: f.healthy, Timestamp: time.Now()}
	if !f.healthy {
		s.Error = "connection refused"
	}
	return s
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         HealthChecker
		wantStatus int
		wantBody   string
	}{
		{"no database", nil, http.StatusOK, "ok"},
		{"healthy database", fakeDB{healthy: true}, http.StatusOK, "ok"},
		{"database down", fakeDB{healthy: false}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Deps{Database: tt.db}, logger.Nop())

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
			assert.Equal(t, "warrantscan-api", body["service"])
		})
	}
}

func TestRouter_MountsOnlyConfiguredRoutes(t *testing.T) {
	router := NewRouter(Deps{}, logger.Nop())

	for _, path := range []string{"/metrics", "/api/results/latest", "/api/mapping/SAP.DE"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestRouter_MetricsAndMapping(t *testing.T) {
	reg := metrics.New()
	reg.Fetch("onvista", "ok")

	store := names.NewMemoryStore(contracts.NameMapping{"^GDAXI": {"DAX"}})
	resolver := names.NewResolver(store, nil, logger.Nop())

	router := NewRouter(Deps{
		Metrics: reg.Handler(),
		Mapping: handlers.NewMappingHandler(resolver, store, logger.Nop()),
	}, logger.Nop())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "warrantscan_")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/mapping/%5EGDAXI", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res names.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"DAX"}, res.Names)
	assert.Equal(t, names.SourceCache, res.Source)

	// wrong method
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/mapping/SAP.DE", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestHub_StreamsPipelineEvents(t *testing.T) {
	hub := NewHub(logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	defer hub.Close()

	server := httptest.NewServer(NewRouter(Deps{Hub: hub}, logger.Nop()))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/scan"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(pipeline.Event{Type: pipeline.EventAssetScored, RunID: "run-1", Ticker: "SAP.DE", Count: 4, Score: 91.5})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	assert.Equal(t, "asset_scored", msg.Type)
	assert.Equal(t, "run-1", msg.Payload.RunID)
	assert.Equal(t, "SAP.DE", msg.Payload.Ticker)
	assert.Equal(t, 91.5, msg.Payload.Score)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(logger.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < eventBuffer*2; i++ {
			hub.Publish(pipeline.Event{Type: pipeline.EventAssetScreened})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked without a running hub")
	}
}

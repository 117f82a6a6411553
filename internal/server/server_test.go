package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-convert-bot/internal/domain"
	"video-convert-bot/internal/pkg/config"
	"video-convert-bot/internal/telemetry"
)

func newTestServer(t *testing.T) (*Server, *ConversionStore) {
	t.Helper()
	cfg := &config.Config{
		Server: config.Server{Host: "localhost", Port: 8080},
	}
	store := NewConversionStore(time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, store, logger), store
}

func doRequest(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	srv.HTTPServer.Handler.ServeHTTP(rr, req)
	return rr
}

func TestServer(t *testing.T) {
	srv, store := newTestServer(t)
	assert.Equal(t, "localhost:8080", srv.HTTPServer.Addr)

	store.Create(domain.Conversion{ID: "c1", ChannelID: "10"})
	store.Create(domain.Conversion{ID: "c2", ChannelID: "20"})
	require.NoError(t, store.Update("c2", func(c *domain.Conversion) {
		c.State = domain.ConversionDone
		c.PlaybackURL = "https://stream.mux.com/p1.m3u8"
	}))

	t.Run("Health Check", func(t *testing.T) {
		rr := doRequest(srv, http.MethodGet, "/health")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "ok", resp["status"])
		assert.EqualValues(t, 1, resp["active_conversions"])
	})

	t.Run("Get Conversion", func(t *testing.T) {
		rr := doRequest(srv, http.MethodGet, "/api/v1/conversions/c2")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		var conv domain.Conversion
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&conv))
		assert.Equal(t, "c2", conv.ID)
		assert.Equal(t, domain.ConversionDone, conv.State)
		assert.Equal(t, "https://stream.mux.com/p1.m3u8", conv.PlaybackURL)
	})

	t.Run("Get Conversion Not Found", func(t *testing.T) {
		rr := doRequest(srv, http.MethodGet, "/api/v1/conversions/unknown")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("List Conversions", func(t *testing.T) {
		rr := doRequest(srv, http.MethodGet, "/api/v1/conversions")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Conversions []domain.Conversion `json:"conversions"`
			Total       int                 `json:"total"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, 2, resp.Total)
		assert.Len(t, resp.Conversions, 2)
	})

	t.Run("List Conversions Filtered", func(t *testing.T) {
		rr := doRequest(srv, http.MethodGet, "/api/v1/conversions?state=done&limit=10")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Conversions []domain.Conversion `json:"conversions"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp.Conversions, 1)
		assert.Equal(t, "c2", resp.Conversions[0].ID)
	})

	t.Run("List Conversions Total Ignores Limit", func(t *testing.T) {
		rr := doRequest(srv, http.MethodGet, "/api/v1/conversions?limit=1")

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			Conversions []domain.Conversion `json:"conversions"`
			Count       int                 `json:"count"`
			Total       int                 `json:"total"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Len(t, resp.Conversions, 1)
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, 2, resp.Total)
	})

	t.Run("List Conversions Bad Limit", func(t *testing.T) {
		rr := doRequest(srv, http.MethodGet, "/api/v1/conversions?limit=abc")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Metrics", func(t *testing.T) {
		telemetry.Init()
		telemetry.ConversionStarted()

		rr := doRequest(srv, http.MethodGet, "/metrics")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "convert_bot_conversions_started_total")
	})
}

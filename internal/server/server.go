// Package server предоставляет статусный HTTP-сервер бота и хранилище конвертаций.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"video-convert-bot/internal/domain"
	"video-convert-bot/internal/pkg/config"
)

const defaultListLimit = 50

// Server представляет HTTP-сервер
type Server struct {
	HTTPServer *http.Server
	store      *ConversionStore
	logger     *slog.Logger
}

// New создает новый экземпляр Server
func New(cfg *config.Config, store *ConversionStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, logger: logger}

	chiRouter := chi.NewRouter()

	// Промежуточное ПО
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(s.requestLogger)
	chiRouter.Use(middleware.Recoverer)

	chiRouter.Get("/health", s.handleHealth)
	chiRouter.Handle("/metrics", promhttp.Handler())

	chiRouter.Route("/api/v1", func(r chi.Router) {
		r.Get("/conversions", s.handleListConversions)
		r.Get("/conversions/{conversionID}", s.handleGetConversion)
	})

	s.HTTPServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      chiRouter,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	active := 0
	for _, conv := range s.store.List() {
		if !conv.State.IsTerminal() {
			active++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"active_conversions": active,
	})
}

func (s *Server) handleListConversions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	state := domain.ConversionState(r.URL.Query().Get("state"))

	all := s.store.List()
	items := make([]domain.Conversion, 0, min(limit, len(all)))
	total := 0
	for _, conv := range all {
		if state != "" && conv.State != state {
			continue
		}
		total++
		if len(items) < limit {
			items = append(items, conv)
		}
	}

	// total — число подходящих записей до применения limit.
	writeJSON(w, http.StatusOK, map[string]any{
		"conversions": items,
		"count":       len(items),
		"total":       total,
	})
}

func (s *Server) handleGetConversion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversionID")

	conv, err := s.store.Get(id)
	if errors.Is(err, ErrConversionNotFound) {
		http.Error(w, "conversion not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe запускает HTTP-сервер
func (s *Server) ListenAndServe() error {
	return s.HTTPServer.ListenAndServe()
}

// Shutdown корректно завершает работу HTTP-сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down status server")
	return s.HTTPServer.Shutdown(ctx)
}

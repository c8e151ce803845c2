// Package api provides the HTTP REST API server for the Gaus Thesis
// service: a health endpoint and the ticker analysis endpoint that
// runs the full aggregation and synthesis pipeline.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gausfin/gausthesis/internal/config"
	"github.com/gausfin/gausthesis/internal/datasource"
	"github.com/gausfin/gausthesis/internal/llm"
	"github.com/gausfin/gausthesis/internal/thesis"
	"github.com/gausfin/gausthesis/pkg/models"
	"github.com/gausfin/gausthesis/pkg/utils"
)

// Pipeline runs one ticker analysis. Satisfied by thesis.Orchestrator.
type Pipeline interface {
	Run(ctx context.Context, ticker string, windowDays int) (*models.Analysis, error)
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	pipeline Pipeline
}

// NewServer creates a configured API server with the full pipeline
// wired from the config.
func NewServer(cfg *config.Config) (*Server, error) {
	orch, err := thesis.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("pipeline setup failed: %w", err)
	}

	srv := &Server{cfg: cfg, pipeline: orch}
	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/analyze", s.handleAnalyze)
	})

	return r
}

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleAnalyze runs the pipeline for GET /api/v1/analyze?ticker=AAPL&days=7.
// days accepts a positive integer or "ytd".
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(r.URL.Query().Get("ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	days, err := parseDays(r.URL.Query().Get("days"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	windowDays := utils.ResolveWindowDays(days, time.Now())

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	result, err := s.pipeline.Run(ctx, ticker, windowDays)
	if err != nil {
		switch {
		case errors.Is(err, datasource.ErrTickerNotFound):
			writeError(w, http.StatusNotFound, fmt.Sprintf("ticker %s not found", ticker))
		case errors.Is(err, llm.ErrCompletionFailed),
			errors.Is(err, llm.ErrRateLimit),
			errors.Is(err, llm.ErrNoAPIKey):
			writeError(w, http.StatusServiceUnavailable, "analysis synthesis unavailable")
		case errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusGatewayTimeout, "analysis timed out")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseDays interprets the days query parameter. Empty defaults to 7;
// "ytd" resolves to days elapsed this calendar year.
func parseDays(raw string) (int, error) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return 7, nil
	}
	if raw == "ytd" {
		return utils.YTDSentinel, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, fmt.Errorf("invalid days %q; use a positive integer or \"ytd\"", raw)
	}
	return days, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

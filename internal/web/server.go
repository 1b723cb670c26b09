// Package web serves the estimate form, the JSON API and live estimates
// over WebSocket.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"auction-advisor/internal/domain"
	"auction-advisor/internal/observability"
)

//go:embed templates/*.html
var templateFS embed.FS

// Estimator prices requests. *advisor.Advisor implements it.
type Estimator interface {
	Estimate(ctx context.Context, req domain.EstimateRequest) (*domain.Estimate, error)
	Statistics() domain.TrainingStatistics
	Timing() domain.AuctionTiming
}

// Server holds the HTTP surface of the advisor.
type Server struct {
	estimator Estimator
	logger    *zap.Logger
	std       *log.Logger
	page      *template.Template
	upgrader  websocket.Upgrader
	ws        WSConfig
	started   time.Time

	// State
	mu           sync.Mutex
	estimates    int
	failures     int
	lastEstimate time.Time
	wsClients    int
}

// Options for creating Server.
type Options struct {
	// Required
	Estimator Estimator

	// Optional
	Logger *zap.Logger
	WS     *WSConfig
}

// NewServer creates a Server.
func NewServer(opts Options) (*Server, error) {
	if opts.Estimator == nil {
		return nil, errors.New("web: estimator is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ws := DefaultWSConfig()
	if opts.WS != nil {
		ws = *opts.WS
	}

	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		estimator: opts.Estimator,
		logger:    logger,
		std:       zap.NewStdLog(logger),
		page:      page,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		ws:      ws,
		started: time.Now(),
	}, nil
}

// Handler returns the routed and instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "GET /{$}", s.handleIndex)
	s.route(mux, "POST /estimate", s.handleEstimateForm)
	s.route(mux, "POST /api/estimate", s.handleEstimateAPI)
	s.route(mux, "GET /api/stats", s.handleStats)
	s.route(mux, "GET /ws", s.handleWS)
	s.route(mux, "GET /status", s.handleStatus)
	s.route(mux, "GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", observability.Handler())

	return mux
}

// route registers h under pattern with access logging and metrics.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.std,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// record updates the request counters after an estimate attempt.
func (s *Server) record(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failures++
		return
	}
	s.estimates++
	s.lastEstimate = time.Now()
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status           string               `json:"status"`
	Uptime           string               `json:"uptime"`
	Started          time.Time            `json:"started"`
	Estimates        int                  `json:"estimates"`
	Failures         int                  `json:"failures"`
	LastEstimate     time.Time            `json:"last_estimate,omitempty"`
	WebSocketClients int                  `json:"websocket_clients"`
	DatasetRows      int                  `json:"dataset_rows"`
	Fallbacks        []string             `json:"fallbacks"`
	Timing           domain.AuctionTiming `json:"timing"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.estimator.Statistics()

	s.mu.Lock()
	resp := StatusResponse{
		Status:           "running",
		Uptime:           time.Since(s.started).Round(time.Second).String(),
		Started:          s.started,
		Estimates:        s.estimates,
		Failures:         s.failures,
		LastEstimate:     s.lastEstimate,
		WebSocketClients: s.wsClients,
		DatasetRows:      stats.Rows,
		Fallbacks:        stats.Fallbacks,
		Timing:           s.estimator.Timing(),
	}
	s.mu.Unlock()

	if resp.Fallbacks == nil {
		resp.Fallbacks = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

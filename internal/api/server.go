// Package api serves the scan results over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/better-bets/internal/health"
	"github.com/yourusername/better-bets/internal/logger"
	"github.com/yourusername/better-bets/internal/metrics"
	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/provider"
	"github.com/yourusername/better-bets/internal/service"
)

const (
	DefaultCORSOrigin     = "http://localhost:4000"
	DefaultRequestTimeout = 30 * time.Second
)

// Scanner is the service surface the handlers depend on
type Scanner interface {
	Scan(ctx context.Context, req service.ScanRequest) (*service.ScanResult, error)
	Odds(ctx context.Context, req provider.Request) (json.RawMessage, error)
}

// Config holds the HTTP boundary settings
type Config struct {
	Addr           string
	APIKey         string
	Production     bool
	CORSOrigins    []string
	AllowedSports  []string
	DefaultMarkets string
	DefaultRegions string
	StaticDir      string
	MetricsPath    string
	RequestTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// ScanResponse is the body of /api/ev-full and /api/scan
type ScanResponse struct {
	EV   []models.EdgeRecord      `json:"ev"`
	Arbs []models.ArbitrageRecord `json:"arbs"`
}

// Server wires the router, scan handlers and health probes
type Server struct {
	cfg     Config
	scanner Scanner
	health  *health.Handler
	params  *queryParser
	logger  *logrus.Entry
	router  chi.Router
	srv     *http.Server
}

// NewServer builds the router; health may be nil
func NewServer(cfg Config, scanner Scanner, hh *health.Handler, log *logrus.Logger) *Server {
	if log == nil {
		log = logger.NewDiscardLogger()
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{DefaultCORSOrigin}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		cfg:     cfg,
		scanner: scanner,
		health:  hh,
		params:  newQueryParser(cfg.AllowedSports, cfg.DefaultMarkets, cfg.DefaultRegions),
		logger:  log.WithField("component", "api"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", APIKeyHeader},
		MaxAge:         300,
	}))

	if s.health != nil {
		s.health.Register(r)
	}
	if s.cfg.MetricsPath != "" {
		r.Handle(s.cfg.MetricsPath, metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(requireAPIKey(s.cfg.APIKey, s.cfg.Production, s.logger))
		r.Get("/health", s.handleHealth)
		r.Get("/odds", s.handleOdds)
		r.Get("/ev-full", s.handleScan)
		r.Get("/scan", s.handleScan)
	})

	if s.cfg.StaticDir != "" {
		r.NotFound(spaHandler(s.cfg.StaticDir))
	}
	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops; a graceful Shutdown returns nil
func (s *Server) ListenAndServe() error {
	s.srv = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.WithField("addr", s.cfg.Addr).Info("HTTP server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("Shutting down HTTP server")
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOdds(w http.ResponseWriter, r *http.Request) {
	req, err := s.params.oddsRequest(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	raw, err := s.scanner.Odds(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	req, err := s.params.scanRequest(r.URL.Query())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	result, err := s.scanner.Scan(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := ScanResponse{EV: result.EV, Arbs: result.Arbs}
	if resp.EV == nil {
		resp.EV = []models.EdgeRecord{}
	}
	if resp.Arbs == nil {
		resp.Arbs = []models.ArbitrageRecord{}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"path":   r.URL.Path,
			"status": status,
		}).Error("Request handler failed")
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

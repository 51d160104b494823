// Package server exposes chart reports over HTTP as JSON, along with a health
// check and Prometheus metrics.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rxtech-lab/stockview/internal/logger"
	"github.com/rxtech-lab/stockview/internal/metrics"
	"github.com/rxtech-lab/stockview/internal/viewer"
	"go.uber.org/zap"
)

const (
	routeHealth    = "/healthz"
	routeMetrics   = "/metrics"
	routeProviders = "/api/v1/providers"
	routeChart     = "/api/v1/chart/{symbol}"

	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Viewer builds chart reports. *viewer.Service implements it.
type Viewer interface {
	View(ctx context.Context, req viewer.Request) (viewer.Report, error)
}

type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Defaults fills in every query parameter a request leaves out.
	Defaults viewer.Request
}

type Server struct {
	viewer     Viewer
	metrics    *metrics.Metrics
	logger     *logger.Logger
	options    Options
	router     *mux.Router
	httpServer *http.Server
	listener   net.Listener
}

func New(v Viewer, m *metrics.Metrics, log *logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	if m == nil {
		m = metrics.NewMetrics()
	}

	s := &Server{
		viewer:     v,
		metrics:    m,
		logger:     log,
		options:    opts,
		router:     mux.NewRouter(),
		httpServer: nil,
		listener:   nil,
	}

	s.router.Use(s.requestID, s.instrument)
	s.router.HandleFunc(routeHealth, s.handleHealth).Methods(http.MethodGet)
	s.router.Handle(routeMetrics, m.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc(routeProviders, s.handleProviders).Methods(http.MethodGet)
	s.router.HandleFunc(routeChart, s.handleChart).Methods(http.MethodGet)
	s.router.NotFoundHandler = s.requestID(http.HandlerFunc(s.handleNotFound))

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background.
// An empty address or ":0" picks a free port; see Addr.
func (s *Server) Start() error {
	address := s.options.Addr
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       s.options.ReadTimeout,
		WriteTimeout:      s.options.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Run starts the server and blocks until ctx is cancelled, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")

	return s.Shutdown(shutdownCtx)
}

// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/RyanBlaney/bpm-analyzer/configs"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/decode"
	"github.com/RyanBlaney/bpm-analyzer/pkg/audio/tempo"
	"github.com/RyanBlaney/bpm-analyzer/pkg/logging"
)

// Server serves the prediction API
type Server struct {
	config     configs.ServerConfig
	analyzer   *tempo.Analyzer
	decoder    *decode.Decoder
	decodeOpts decode.Options
	handler    http.Handler
	logger     logging.Logger
}

// NewServer wires the routes and middleware
func NewServer(cfg configs.ServerConfig, analyzer *tempo.Analyzer, decoder *decode.Decoder, opts decode.Options, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	s := &Server{
		config:     cfg,
		analyzer:   analyzer,
		decoder:    decoder,
		decodeOpts: opts,
		logger: logger.WithFields(logging.Fields{
			"component": "http_server",
		}),
	}

	router := mux.NewRouter()
	router.Use(s.requestIDMiddleware, s.loggingMiddleware)

	router.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/predict", s.handlePredict).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	// CORS wraps the router so preflight requests never reach route matching
	s.handler = s.corsMiddleware(router)
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", logging.Fields{
			"address": s.config.Address,
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

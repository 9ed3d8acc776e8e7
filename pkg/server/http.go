// Package server builds the HTTP server and router for the stub backend.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/sweetshop/pkg/config"
	"github.com/abgdnv/sweetshop/pkg/web"
	"github.com/go-chi/chi/v5"
)

// NewHTTPServer creates an HTTP server with the configured listener
// timeouts. ReadHeaderTimeout follows the read timeout so a slow client
// cannot hold a connection open past it.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.Read,
	}
}

// NewChiRouter creates a chi router with request ID injection, structured
// logging and panic recovery applied to every route.
func NewChiRouter(logger *slog.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(logger))
	mux.Use(web.Recoverer(logger))
	return mux
}

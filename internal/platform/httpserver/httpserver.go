// Package httpserver builds the portal's HTTP server. Handler timeouts stay
// out of here; slow paths (assessment scoring, admin fan-out) bound
// themselves through request contexts.
package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with conservative connection-level timeouts.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

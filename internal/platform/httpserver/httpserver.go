// Package httpserver builds the http.Server every fundflow service runs.
package httpserver

import (
	"net/http"
	"time"
)

// Timeouts are sized for the platform's request profile: small JSON bodies,
// with the slowest path being a project list that fans out to two sibling
// services (each capped at 10s by the client).
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

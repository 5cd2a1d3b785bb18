// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-zoox/headers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/go-core-stack/llm-gateway/pkg/config"
	"github.com/go-core-stack/llm-gateway/pkg/route"
)

// Version is reported in the default outbound User-Agent.
const Version = "1.0.0"

const textContentType = "text/plain; charset=utf-8"

// Gateway resolves inbound requests against the static and proxy tables and
// relays proxied traffic to the matching upstream.
type Gateway struct {
	// client performs outbound HTTP requests with tuned transport settings.
	client *http.Client
	// logger emits structured logs for observability.
	logger zerolog.Logger
	// statics and routes are read-only after construction.
	statics route.StaticTable
	routes  route.Table
	// forwardClientIP adds X-Forwarded-* headers to outbound requests.
	forwardClientIP bool
}

// New constructs a Gateway backed by an http.Client configured with
// connection pooling defaults and the provided runtime configuration.
func New(cfg config.Config) (http.Handler, error) {
	routes := cfg.Routes
	if len(routes) == 0 {
		routes = route.Default()
	}

	// Build a transport that honours system proxies and keeps connections warm.
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, // nolint:gosec -- opt-in for development scenarios
		},
	}

	// No client timeout: streamed completions may run for minutes. Upstream
	// redirects are relayed to the caller, never followed.
	client := &http.Client{
		Transport:     transport,
		CheckRedirect: relayRedirect,
	}

	handler := &Gateway{
		client:          client,
		logger:          log.With().Str("component", "gateway").Logger(),
		statics:         route.DefaultStatics(),
		routes:          routes,
		forwardClientIP: cfg.ForwardClientIP,
	}

	return handler, nil
}

// relayRedirect stops the client at the first upstream response so 3xx
// statuses and their Location header reach the caller unchanged.
func relayRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

// ServeHTTP classifies the request and dispatches it to the static,
// preflight, proxy or not-found branch.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	path := r.URL.EscapedPath()
	event := g.logger.With().
		Str("method", r.Method).
		Str("path", path).
		Str("remote_addr", r.RemoteAddr).
		Str("origin", r.Header.Get(headers.Origin)).
		Logger()

	outcome := route.Resolve(r.Method, path, g.statics, g.routes)

	var status int
	switch outcome.Kind {
	case route.KindStatic:
		status = serveStatic(w, outcome.Static)
	case route.KindPreflight:
		status = servePreflight(w)
	case route.KindProxy:
		status = g.forward(w, r, outcome.Upstream, outcome.Suffix, event)
	default:
		status = serveText(w, http.StatusNotFound, "Not Found")
	}

	event.Info().
		Str("route", outcome.Kind.String()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Msg("request served")
}

// serveStatic writes a canned response. Static hits carry only their content
// type, no CORS headers.
func serveStatic(w http.ResponseWriter, s route.Static) int {
	w.Header().Set(headerContentType, s.ContentType)
	w.WriteHeader(http.StatusOK)
	if s.Body != "" {
		_, _ = io.WriteString(w, s.Body)
	}
	return http.StatusOK
}

func servePreflight(w http.ResponseWriter) int {
	setCORSHeaders(w.Header())
	w.WriteHeader(http.StatusNoContent)
	return http.StatusNoContent
}

// serveText writes a gateway-originated plain text response with CORS
// headers. It is used for the fixed 404 and 500 bodies.
func serveText(w http.ResponseWriter, status int, body string) int {
	setCORSHeaders(w.Header())
	w.Header().Set(headerContentType, textContentType)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
	return status
}

// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/go-zoox/headers"
	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"
)

// Header names handled on the forwarding path.
const (
	headerConnection      = "Connection"
	headerContentType     = "Content-Type"
	headerTe              = "Te"
	headerXForwardedFor   = "X-Forwarded-For"
	headerXForwardedHost  = "X-Forwarded-Host"
	headerXForwardedProto = "X-Forwarded-Proto"
)

// hopHeaders lists standard hop-by-hop headers that must be stripped on both
// legs; net/http manages the connection semantics for each side itself.
var hopHeaders = map[string]struct{}{
	headerConnection:      {},
	"Proxy-Connection":    {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	headerTe:              {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

var userAgent = "llm-gateway/" + Version

// forward sends r to upstream+suffix and relays the response. It returns the
// status written downstream.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, upstream *url.URL, suffix string, event zerolog.Logger) int {
	target, err := targetURL(upstream, suffix, r.URL.RawQuery)
	if err != nil {
		event.Warn().Err(err).Msg("build upstream target failed")
		return serveText(w, http.StatusInternalServerError, "Internal Server Error")
	}

	event = event.With().Str("upstream", target.Host).Logger()

	resp, err := g.client.Do(g.newUpstreamRequest(r, target))
	if err != nil {
		if r.Context().Err() != nil {
			event.Debug().Err(err).Msg("client went away before upstream responded")
		} else {
			event.Warn().Err(err).Msg("upstream request failed")
		}
		return serveText(w, http.StatusInternalServerError, "Internal Server Error")
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			event.Debug().
				Err(closeErr).
				Msg("close upstream response body failed")
		}
	}()

	cleanResponseHeaders(resp.Header)
	copyHeaders(w.Header(), resp.Header)
	setCORSHeaders(w.Header())
	w.WriteHeader(resp.StatusCode)

	// Error and empty responses are relayed as-is; only successful bodies go
	// through the chunk pipe.
	if !isSuccess(resp.StatusCode) || !hasBody(resp) {
		if _, copyErr := io.Copy(w, resp.Body); copyErr != nil {
			event.Warn().
				Err(copyErr).
				Int("status", resp.StatusCode).
				Msg("relay upstream body failed")
		}
		return resp.StatusCode
	}

	written, err := relay(r.Context(), w, resp.Body)
	switch {
	case err == nil:
	case r.Context().Err() != nil:
		event.Debug().
			Int64("bytes", written).
			Msg("client disconnected during stream")
	case errors.Is(err, errUpstreamRead):
		event.Error().
			Err(err).
			Int64("bytes", written).
			Msg("upstream stream failed")
		// Headers are already committed; aborting the connection is the only
		// way to tell the client the body is incomplete.
		if shouldPanicOnCopyError(r) {
			panic(http.ErrAbortHandler)
		}
	default:
		event.Debug().
			Err(err).
			Int64("bytes", written).
			Msg("write to client failed")
	}

	return resp.StatusCode
}

// targetURL joins the upstream base and suffix verbatim and replaces any
// query on the result with the inbound raw query.
func targetURL(base *url.URL, suffix, rawQuery string) (*url.URL, error) {
	target, err := url.Parse(base.String() + suffix)
	if err != nil {
		return nil, fmt.Errorf("build target for %s: %w", base.Host, err)
	}
	target.RawQuery = rawQuery
	target.ForceQuery = false
	target.Fragment = ""
	target.RawFragment = ""
	return target, nil
}

// newUpstreamRequest clones the inbound request onto the upstream target. The
// inbound headers are left untouched.
func (g *Gateway) newUpstreamRequest(r *http.Request, target *url.URL) *http.Request {
	out := r.Clone(r.Context())
	out.URL = target
	out.Host = target.Host
	out.RequestURI = ""
	out.Close = false

	// Issue 16036: nil Body for http.Transport retries
	if r.ContentLength == 0 {
		out.Body = nil
		out.GetBody = nil
	}

	cleanRequestHeaders(out.Header)
	if g.forwardClientIP {
		augmentForwardHeaders(out.Header, r)
	}
	if out.Header.Get(headers.UserAgent) == "" {
		out.Header.Set(headers.UserAgent, userAgent)
	}

	return out
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func hasBody(resp *http.Response) bool {
	return resp.Body != nil && resp.Body != http.NoBody && resp.ContentLength != 0
}

// copyHeaders appends all headers from src into dst.
func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// cleanRequestHeaders strips hop-by-hop headers from an outbound request,
// keeping "Te: trailers" when the client asked for it.
func cleanRequestHeaders(h http.Header) {
	trailers := httpguts.HeaderValuesContainsToken(h[headerTe], "trailers")
	removeConnectionHeaders(h)
	cleanHopHeaders(h)
	if trailers {
		h.Set(headerTe, "trailers")
	}
}

func cleanResponseHeaders(h http.Header) {
	removeConnectionHeaders(h)
	cleanHopHeaders(h)
}

// cleanHopHeaders removes hop-by-hop headers that should not be forwarded.
func cleanHopHeaders(h http.Header) {
	for k := range hopHeaders {
		h.Del(k)
	}
}

// removeConnectionHeaders removes headers named in the Connection header.
func removeConnectionHeaders(h http.Header) {
	for _, f := range h[headerConnection] {
		for _, sf := range strings.Split(f, ",") {
			if sf = textproto.TrimString(sf); sf != "" {
				h.Del(sf)
			}
		}
	}
}

// augmentForwardHeaders ensures X-Forwarded-* headers capture client metadata.
func augmentForwardHeaders(h http.Header, r *http.Request) {
	if clientIP, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		prior := r.Header.Get(headerXForwardedFor)
		if prior != "" {
			clientIP = prior + ", " + clientIP
		}
		h.Set(headerXForwardedFor, clientIP)
	}
	if scheme := r.Header.Get(headerXForwardedProto); scheme != "" {
		h.Set(headerXForwardedProto, scheme)
	} else if r.TLS != nil {
		h.Set(headerXForwardedProto, "https")
	} else {
		h.Set(headerXForwardedProto, "http")
	}
	h.Set(headerXForwardedHost, r.Host)
}

// shouldPanicOnCopyError reports whether the handler runs under an
// http.Server, which recovers http.ErrAbortHandler and resets the connection.
func shouldPanicOnCopyError(r *http.Request) bool {
	return r.Context().Value(http.ServerContextKey) != nil
}

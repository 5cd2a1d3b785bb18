// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package route classifies inbound gateway requests. It holds the static
// response table and the ordered proxy prefix table, and resolves a request
// method and path into exactly one outcome without touching the network.
package route

import (
	"net/http"
	"net/url"
	"strings"
)

// Kind identifies which branch of the gateway handles a request.
type Kind int

const (
	// KindNotFound means no static entry, preflight or prefix matched.
	KindNotFound Kind = iota
	// KindStatic is an exact hit in the static table.
	KindStatic
	// KindPreflight is a CORS preflight (OPTIONS on a non-static path).
	KindPreflight
	// KindProxy is a prefix hit that must be forwarded upstream.
	KindProxy
)

// String returns the label used in request logs.
func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindPreflight:
		return "preflight"
	case KindProxy:
		return "proxy"
	default:
		return "not_found"
	}
}

// Route binds a path prefix to an upstream base URL.
type Route struct {
	Prefix   string
	Upstream *url.URL
}

// Table is the ordered proxy route table. The first route whose prefix the
// path starts with wins; specificity is never considered.
type Table []Route

// Match scans the table front to back and returns the first route whose
// prefix matches path, along with the remainder of path after the prefix.
func (t Table) Match(path string) (Route, string, bool) {
	for _, r := range t {
		if strings.HasPrefix(path, r.Prefix) {
			return r, path[len(r.Prefix):], true
		}
	}
	return Route{}, "", false
}

// Outcome is the result of resolving a request.
type Outcome struct {
	Kind Kind
	// Static is set for KindStatic.
	Static Static
	// Upstream and Suffix are set for KindProxy.
	Upstream *url.URL
	Suffix   string
}

// Resolve classifies a request. Static entries are checked first and match
// regardless of method, then OPTIONS is treated as a preflight, then the
// proxy table is scanned in declared order.
func Resolve(method, path string, statics StaticTable, table Table) Outcome {
	if s, ok := statics.Lookup(path); ok {
		return Outcome{Kind: KindStatic, Static: s}
	}

	if method == http.MethodOptions {
		return Outcome{Kind: KindPreflight}
	}

	if r, suffix, ok := table.Match(path); ok {
		return Outcome{Kind: KindProxy, Upstream: r.Upstream, Suffix: suffix}
	}

	return Outcome{Kind: KindNotFound}
}

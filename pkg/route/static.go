// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package route

// Static is a canned response served without contacting any upstream.
type Static struct {
	Body        string
	ContentType string
}

// StaticEntry pairs an exact request path with its canned response.
type StaticEntry struct {
	Path     string
	Response Static
}

// StaticTable is an ordered set of exact-match static responses.
type StaticTable []StaticEntry

// Lookup returns the static response registered for exactly path.
func (t StaticTable) Lookup(path string) (Static, bool) {
	for _, e := range t {
		if e.Path == path {
			return e.Response, true
		}
	}
	return Static{}, false
}

// DefaultStatics returns the built-in landing, favicon and robots responses.
func DefaultStatics() StaticTable {
	landing := Static{Body: "service is running!", ContentType: "text/html"}
	return StaticTable{
		{Path: "/", Response: landing},
		{Path: "/index.html", Response: landing},
		{Path: "/favicon.ico", Response: Static{Body: "", ContentType: "image/png"}},
		{Path: "/robots.txt", Response: Static{Body: "User-agent: *\nDisallow: /", ContentType: "text/plain"}},
	}
}

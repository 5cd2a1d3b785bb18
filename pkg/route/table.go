// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package route

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/BurntSushi/toml"
)

// defaultRoutes is the built-in upstream table, in lookup order.
var defaultRoutes = [][2]string{
	{"/discord", "https://discord.com/api"},
	{"/telegram", "https://api.telegram.org"},
	{"/openai", "https://api.openai.com"},
	{"/claude", "https://api.anthropic.com"},
	{"/gemini", "https://generativelanguage.googleapis.com"},
	{"/meta", "https://www.meta.ai/api"},
	{"/groq", "https://api.groq.com"},
	{"/x", "https://api.x.ai"},
	{"/cohere", "https://api.cohere.ai"},
	{"/huggingface", "https://api-inference.huggingface.co"},
	{"/together", "https://api.together.xyz"},
	{"/novita", "https://api.novita.ai"},
	{"/portkey", "https://api.portkey.ai"},
	{"/fireworks", "https://api.fireworks.ai"},
	{"/openrouter", "https://openrouter.ai/api"},
}

// Default returns a fresh copy of the built-in route table.
func Default() Table {
	table := make(Table, 0, len(defaultRoutes))
	for _, pair := range defaultRoutes {
		r, err := NewRoute(pair[0], pair[1])
		if err != nil {
			panic(fmt.Errorf("invalid built-in route %s: %w", pair[0], err))
		}
		table = append(table, r)
	}
	return table
}

// NewRoute validates a prefix/upstream pair. The prefix must be an absolute
// path and the upstream an absolute http(s) URL.
func NewRoute(prefix, upstream string) (Route, error) {
	prefix = strings.TrimSpace(prefix)
	if !strings.HasPrefix(prefix, "/") {
		return Route{}, fmt.Errorf("prefix %q must start with /", prefix)
	}

	u, err := url.Parse(strings.TrimSpace(upstream))
	if err != nil {
		return Route{}, fmt.Errorf("invalid upstream for %s: %w", prefix, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Route{}, fmt.Errorf("upstream for %s must use http or https, got %q", prefix, u.Scheme)
	}
	if u.Host == "" {
		return Route{}, fmt.Errorf("upstream for %s has no host", prefix)
	}

	return Route{Prefix: prefix, Upstream: u}, nil
}

// Parse reads an inline table of the form
// "/openai=https://api.openai.com,/x=https://api.x.ai". Entry order is kept.
func Parse(raw string) (Table, error) {
	var table Table
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		prefix, upstream, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("route entry %q is not prefix=upstream", entry)
		}
		r, err := NewRoute(prefix, upstream)
		if err != nil {
			return nil, err
		}
		table = append(table, r)
	}
	if len(table) == 0 {
		return nil, errors.New("route table is empty")
	}
	return table, nil
}

type fileTable struct {
	Routes []fileRoute `toml:"route"`
}

type fileRoute struct {
	Prefix   string `toml:"prefix"`
	Upstream string `toml:"upstream"`
}

// LoadFile reads a TOML route table. Each [[route]] block becomes one entry
// and the file order is the lookup order.
func LoadFile(path string) (Table, error) {
	var doc fileTable
	md, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, fmt.Errorf("decode route file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("route file %s: unknown key %q", path, undecoded[0].String())
	}

	table := make(Table, 0, len(doc.Routes))
	for i, fr := range doc.Routes {
		r, err := NewRoute(fr.Prefix, fr.Upstream)
		if err != nil {
			return nil, fmt.Errorf("route file %s entry %d: %w", path, i, err)
		}
		table = append(table, r)
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("route file %s defines no routes", path)
	}
	return table, nil
}

// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"net/url"
	"testing"
)

func TestTargetURLJoinsSuffixVerbatim(t *testing.T) {
	base, _ := url.Parse("https://api.openai.com/base")

	cases := []struct {
		suffix   string
		rawQuery string
		want     string
	}{
		{suffix: "/v1/models", want: "https://api.openai.com/base/v1/models"},
		{suffix: "ai/v1", rawQuery: "a=1", want: "https://api.openai.com/baseai/v1?a=1"},
		{suffix: "", want: "https://api.openai.com/base"},
		{suffix: "/v1?stale=1#frag", rawQuery: "fresh=2", want: "https://api.openai.com/base/v1?fresh=2"},
	}

	for _, tc := range cases {
		got, err := targetURL(base, tc.suffix, tc.rawQuery)
		if err != nil {
			t.Fatalf("targetURL(%q): %v", tc.suffix, err)
		}
		if got.String() != tc.want {
			t.Fatalf("targetURL(%q, %q) = %s, want %s", tc.suffix, tc.rawQuery, got, tc.want)
		}
	}
}

// A suffix starting with "@" turns the upstream host into userinfo when the
// upstream has no path. Deployments must not expose such prefixes to
// untrusted callers.
func TestTargetURLSuffixCanChangeHost(t *testing.T) {
	base, _ := url.Parse("https://api.openai.com")

	got, err := targetURL(base, "@internal.example.com/x", "")
	if err != nil {
		t.Fatalf("targetURL: %v", err)
	}
	if got.Host != "internal.example.com" {
		t.Fatalf("expected host taken from the suffix, got %s", got.Host)
	}
	if got.User.Username() != "api.openai.com" {
		t.Fatalf("expected upstream host as userinfo, got %q", got.User.Username())
	}
}

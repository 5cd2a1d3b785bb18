// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package route

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableOrder(t *testing.T) {
	table := Default()
	require.Len(t, table, len(defaultRoutes))

	for i, pair := range defaultRoutes {
		assert.Equal(t, pair[0], table[i].Prefix)
		assert.Equal(t, pair[1], table[i].Upstream.String())
		assert.Equal(t, "https", table[i].Upstream.Scheme)
	}
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a[0].Prefix = "/mutated"

	b := Default()
	assert.Equal(t, "/discord", b[0].Prefix)
}

func TestParseInline(t *testing.T) {
	table, err := Parse(" /a=https://a.example.com/base , /b=http://b.example.com:8080,")
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.Equal(t, "/a", table[0].Prefix)
	assert.Equal(t, "/base", table[0].Upstream.Path)
	assert.Equal(t, "/b", table[1].Prefix)
	assert.Equal(t, "b.example.com:8080", table[1].Upstream.Host)
}

func TestParseRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"missing separator": "/a https://a.example.com",
		"relative prefix":   "a=https://a.example.com",
		"bad scheme":        "/a=ftp://a.example.com",
		"no host":           "/a=https://",
		"empty":             " , ",
	}

	for name, raw := range cases {
		_, err := Parse(raw)
		assert.Error(t, err, name)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.toml")
	content := `
[[route]]
prefix = "/openai"
upstream = "https://api.openai.com"

[[route]]
prefix = "/local"
upstream = "http://127.0.0.1:9000/api"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "/openai", table[0].Prefix)
	assert.Equal(t, "api.openai.com", table[0].Upstream.Host)
	assert.Equal(t, "/local", table[1].Prefix)
	assert.Equal(t, "/api", table[1].Upstream.Path)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("[[route]]\nprefix = \"/a\"\nupstream = \"https://a.example.com\"\ntimeout = \"5s\"\n"), 0o600))
	_, err = LoadFile(unknown)
	assert.ErrorContains(t, err, "unknown key")

	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, []byte("# nothing\n"), 0o600))
	_, err = LoadFile(empty)
	assert.ErrorContains(t, err, "defines no routes")

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[[route]]\nprefix = \"a\"\nupstream = \"https://a.example.com\"\n"), 0o600))
	_, err = LoadFile(invalid)
	assert.ErrorContains(t, err, "entry 0")
}

func TestLoadExampleFile(t *testing.T) {
	table, err := LoadFile(filepath.Join("..", "..", "routes.example.toml"))
	require.NoError(t, err)
	require.NotEmpty(t, table)
	assert.Equal(t, "/openai", table[0].Prefix)
}

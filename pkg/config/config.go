// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-core-stack/llm-gateway/pkg/route"
)

const (
	envListenAddr              = "GATEWAY_LISTEN_ADDR"
	envLogLevel                = "GATEWAY_LOG_LEVEL"
	envRoutesFile              = "GATEWAY_ROUTES_FILE"
	envRoutes                  = "GATEWAY_ROUTES"
	envInsecureSkipVerify      = "GATEWAY_UPSTREAM_INSECURE"
	envForwardClientIP         = "GATEWAY_FORWARD_CLIENT_IP"
	envServerReadHeaderTimeout = "GATEWAY_SERVER_READ_HEADER_TIMEOUT"
	envServerIdleTimeout       = "GATEWAY_SERVER_IDLE_TIMEOUT"
	envGracefulShutdown        = "GATEWAY_GRACEFUL_SHUTDOWN"
	defaultListenAddr          = ":8080"
	defaultLogLevel            = "info"
	defaultServerReadHeader    = 10 * time.Second
	defaultServerIdleTimeout   = 120 * time.Second
	defaultGracefulShutdown    = 10 * time.Second
)

// Config captures runtime settings for the gateway.
type Config struct {
	ListenAddr              string
	LogLevel                string
	RoutesFile              string
	RoutesInline            string
	InsecureSkipVerify      bool
	ForwardClientIP         bool
	ServerReadHeaderTimeout time.Duration
	ServerIdleTimeout       time.Duration
	GracefulShutdownTimeout time.Duration

	// Routes is the resolved proxy table; see ResolveRoutes.
	Routes route.Table
}

// Load reads configuration from environment variables and resolves the
// proxy route table.
func Load() (Config, error) {
	cfg := FromEnv()
	if err := cfg.ResolveRoutes(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without touching
// the routes file, so callers can apply overrides before ResolveRoutes.
func FromEnv() Config {
	return Config{
		ListenAddr:              getString(envListenAddr, defaultListenAddr),
		LogLevel:                strings.ToLower(getString(envLogLevel, defaultLogLevel)),
		RoutesFile:              getString(envRoutesFile, ""),
		RoutesInline:            getString(envRoutes, ""),
		InsecureSkipVerify:      getBool(envInsecureSkipVerify, false),
		ForwardClientIP:         getBool(envForwardClientIP, false),
		ServerReadHeaderTimeout: getDuration(envServerReadHeaderTimeout, defaultServerReadHeader),
		ServerIdleTimeout:       getDuration(envServerIdleTimeout, defaultServerIdleTimeout),
		GracefulShutdownTimeout: getDuration(envGracefulShutdown, defaultGracefulShutdown),
	}
}

// ResolveRoutes fills Routes from, in order of precedence, the inline
// GATEWAY_ROUTES value, the TOML routes file, or the built-in table.
func (c *Config) ResolveRoutes() error {
	switch {
	case c.RoutesInline != "":
		table, err := route.Parse(c.RoutesInline)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", envRoutes, err)
		}
		c.Routes = table
	case c.RoutesFile != "":
		table, err := route.LoadFile(c.RoutesFile)
		if err != nil {
			return err
		}
		c.Routes = table
	default:
		c.Routes = route.Default()
	}
	return nil
}

func getString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return parsed
}

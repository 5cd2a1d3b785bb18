// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-core-stack/llm-gateway/pkg/config"
	"github.com/go-core-stack/llm-gateway/pkg/proxy"
)

var (
	listenAddr string
	logLevel   string
	routesFile string
)

var rootCmd = &cobra.Command{
	Use:   "llm-gateway",
	Short: "Prefix-routed reverse proxy for hosted LLM and chat APIs",
	Long: `llm-gateway forwards /<provider>/... requests to the matching upstream API,
streams responses back unchanged and adds permissive CORS headers.

Routes come from GATEWAY_ROUTES, a TOML file (--routes or GATEWAY_ROUTES_FILE)
or the built-in provider table, in that order of precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides GATEWAY_LISTEN_ADDR)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (overrides GATEWAY_LOG_LEVEL)")
	rootCmd.Flags().StringVar(&routesFile, "routes", "", "TOML route table (overrides GATEWAY_ROUTES_FILE)")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("gateway failed")
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.FromEnv()

	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = listenAddr
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("routes") {
		cfg.RoutesFile = routesFile
	}

	if err := cfg.ResolveRoutes(); err != nil {
		return fmt.Errorf("failed to load routes: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	log.Logger = log.Level(level)

	handler, err := proxy.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to construct gateway: %w", err)
	}

	// No WriteTimeout: it would cut off long streamed responses.
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	go func() {
		log.Info().
			Str("listen_addr", cfg.ListenAddr).
			Int("routes", len(cfg.Routes)).
			Msg("starting gateway")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("gateway server exited unexpectedly")
		}
	}()

	waitForShutdown(cmd.Context(), server, cfg.GracefulShutdownTimeout)
	return nil
}

func waitForShutdown(ctx context.Context, srv *http.Server, timeout time.Duration) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	log.Info().Msg("shutting down gateway")

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed; forcing close")
		if closeErr := srv.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("forced close failed")
		}
	}

	log.Info().Msg("gateway stopped")
}

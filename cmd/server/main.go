// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mcpany/dx-gateway/pkg/app"
	"github.com/mcpany/dx-gateway/pkg/appconsts"
	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/logging"
	"github.com/mcpany/dx-gateway/pkg/metrics"
)

// runFunc is swapped out in tests.
var runFunc = app.Run

// newRootCmd creates and configures the gateway's root command. It declares
// the connection and transport flags, initializes logging and metrics, and
// starts the gateway with a signal-aware context for graceful shutdown.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appconsts.Name,
		Short: "MCP gateway exposing a Pega DX API as tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			logLevel := logging.ParseLevel(cfg.LogLevel)
			if cfg.Debug {
				logLevel = logging.ParseLevel("debug")
			}

			var logOutput io.Writer = os.Stderr
			if cfg.LogFile != "" {
				f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open logfile: %w", err)
				}
				defer f.Close()
				logOutput = f
			} else if cfg.Stdio {
				// Stdout carries JSON-RPC framing; without a logfile there is
				// nowhere safe to log in stdio mode.
				logOutput = io.Discard
			}
			logging.Init(logLevel, logOutput)

			if err := metrics.Initialize(); err != nil {
				return fmt.Errorf("failed to initialize metrics: %w", err)
			}
			log := logging.GetLogger().With("service", appconsts.Name)
			log.Info("configuration loaded",
				"stdio", cfg.Stdio,
				"listen-address", cfg.ListenAddress,
				"request-timeout", cfg.RequestTimeout)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := runFunc(ctx, cfg, afero.NewOsFs()); err != nil {
				log.Error("gateway failed", "error", err)
				return err
			}
			log.Info("shutdown complete")
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of " + appconsts.Name,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appconsts.Name, appconsts.Version)
			if err != nil {
				return fmt.Errorf("failed to print version: %w", err)
			}
			return nil
		},
	}
	rootCmd.AddCommand(versionCmd)

	config.BindFlags(rootCmd)

	return rootCmd
}

// main is the entry point for the gateway. The process exits non-zero when
// startup fails, including when the tool registry cannot be built.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package app assembles the gateway: it builds the token cache, executor,
// client facade, tool registry, and MCP server, then runs the selected
// transport until shutdown.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"

	"github.com/mcpany/dx-gateway/pkg/auth"
	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/logging"
	"github.com/mcpany/dx-gateway/pkg/mcpserver"
	"github.com/mcpany/dx-gateway/pkg/metrics"
	"github.com/mcpany/dx-gateway/pkg/tool"
	"github.com/mcpany/dx-gateway/pkg/tools"
)

// Run starts the gateway and blocks until the context is canceled or the
// transport closes. A registry build failure is fatal: the process must not
// serve a partial tool set.
func Run(ctx context.Context, cfg *config.Config, fs afero.Fs) error {
	log := logging.GetLogger()
	if fs == nil {
		fs = afero.NewOsFs()
	}

	log.Info("starting DX gateway",
		"stdio", cfg.Stdio, "baseURLConfigured", cfg.BaseURL != "")

	httpClient := &http.Client{}
	tokenCache := auth.NewCache(httpClient)
	executor := client.NewExecutor(httpClient, tokenCache)
	dxClient := client.NewDXClient(executor)

	base := tool.Base{
		Client: dxClient,
		Config: cfg,
		FS:     fs,
	}
	registry, err := tool.NewRegistry(tools.Factory(base))
	if err != nil {
		return dxerror.Wrap(dxerror.KindRegistryFailed, err)
	}

	mcpSrv := mcpserver.NewServer(registry, cfg.Debug)

	var metricsSrv *http.Server
	if cfg.MetricsListenAddress != "" {
		metricsSrv = metrics.StartServer(cfg.MetricsListenAddress)
		log.Info("metrics endpoint listening", "address", cfg.MetricsListenAddress)
		defer shutdownServer(metricsSrv, cfg.ShutdownTimeout)
	}

	if cfg.Stdio {
		return runStdioMode(ctx, mcpSrv)
	}
	return runServerMode(ctx, mcpSrv, cfg)
}

// runStdioMode serves MCP over the process's standard streams. Stdout is
// reserved for JSON-RPC framing; all logging goes elsewhere.
var runStdioMode = func(ctx context.Context, mcpSrv *mcpserver.Server) error {
	logging.GetLogger().Info("serving MCP over stdio")
	return mcpSrv.Run(ctx, &mcp.StdioTransport{})
}

// runServerMode serves MCP over the streamable HTTP transport and handles
// graceful shutdown.
func runServerMode(ctx context.Context, mcpSrv *mcpserver.Server, cfg *config.Config) error {
	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	startHTTPServer(ctx, &wg, errChan, cfg.ListenAddress, cfg.ShutdownTimeout, mcpSrv.StreamableHTTPHandler())

	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start the MCP HTTP server: %w", err)
	case <-ctx.Done():
		logging.GetLogger().Info("received shutdown signal, shutting down gracefully")
	}

	wg.Wait()
	logging.GetLogger().Info("all servers have shut down")
	return nil
}

// startHTTPServer starts an HTTP server in a new goroutine and shuts it down
// when the context is canceled.
func startHTTPServer(ctx context.Context, wg *sync.WaitGroup, errChan chan<- error, addr string, shutdownTimeout time.Duration, handler http.Handler) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		serverLog := logging.GetLogger().With("server", "mcp-http", "address", addr)
		server := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 3 * time.Second,
		}

		go func() {
			serverLog.Info("HTTP server listening")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		<-ctx.Done()
		serverLog.Info("attempting to gracefully shut down server")
		shutdownServer(server, shutdownTimeout)
		serverLog.Info("server shut down")
	}()
}

func shutdownServer(server *http.Server, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.GetLogger().Error("shutdown error", "error", err)
	}
}

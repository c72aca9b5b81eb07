// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the process-wide defaults for the gateway, read once at
// startup from flags and DXGATEWAY_* environment variables.
type Config struct {
	// Upstream DX API connection defaults.
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string

	// Transport and operational settings.
	Stdio                bool
	ListenAddress        string
	MetricsListenAddress string
	RequestTimeout       time.Duration
	ShutdownTimeout      time.Duration
	Debug                bool
	LogLevel             string
	LogFile              string
}

// DefaultRequestTimeout bounds every outbound HTTP call unless overridden.
const DefaultRequestTimeout = 30 * time.Second

// BindFlags declares the server's command-line flags on cmd and binds them to
// viper so each can also be supplied as a DXGATEWAY_* environment variable.
func BindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("base-url", "", "Base URL of the upstream DX API (e.g. https://host/prweb/api/dx/v2)")
	flags.String("token-url", "", "OAuth2 token endpoint; derived from --base-url when omitted")
	flags.String("client-id", "", "OAuth2 client ID for the client-credentials grant")
	flags.String("client-secret", "", "OAuth2 client secret")
	flags.Bool("stdio", true, "Serve MCP over stdio instead of HTTP")
	flags.String("listen-address", "localhost:8090", "Listen address for the streamable HTTP transport")
	flags.String("metrics-listen-address", "", "Listen address for the Prometheus /metrics endpoint (disabled when empty)")
	flags.Duration("request-timeout", DefaultRequestTimeout, "Deadline for each outbound DX API call")
	flags.Duration("shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("logfile", "", "Log file path; in stdio mode logs are discarded when unset")

	cobra.OnInitialize(func() {
		viper.SetEnvPrefix("DXGATEWAY")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()
	})
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}
}

// Load reads the process defaults from viper. BindFlags must have been called
// on the executed command first.
func Load() *Config {
	return &Config{
		BaseURL:              viper.GetString("base-url"),
		TokenURL:             viper.GetString("token-url"),
		ClientID:             viper.GetString("client-id"),
		ClientSecret:         viper.GetString("client-secret"),
		Stdio:                viper.GetBool("stdio"),
		ListenAddress:        viper.GetString("listen-address"),
		MetricsListenAddress: viper.GetString("metrics-listen-address"),
		RequestTimeout:       viper.GetDuration("request-timeout"),
		ShutdownTimeout:      viper.GetDuration("shutdown-timeout"),
		Debug:                viper.GetBool("debug"),
		LogLevel:             viper.GetString("log-level"),
		LogFile:              viper.GetString("logfile"),
	}
}

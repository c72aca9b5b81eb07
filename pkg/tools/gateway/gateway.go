// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package gateway contains the gateway's self-diagnostic tools.
package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

// Category is the registry tag for gateway tools.
const Category = "gateway"

// Ping probes connectivity and authentication against the DX service by
// listing case types with the effective configuration.
type Ping struct {
	tool.Base
}

// NewPing creates the ping_dx_service tool.
func NewPing(b tool.Base) *Ping {
	return &Ping{Base: b}
}

// Definition returns the tool descriptor.
func (t *Ping) Definition() *tool.Definition {
	return &tool.Definition{
		Name:        "ping_dx_service",
		Category:    Category,
		Description: "Verify connectivity and authentication against the configured DX service.",
		InputSchema: tool.Object("", map[string]*tool.Schema{
			"sessionCredentials": tool.SessionCredentialsSchema(),
		}),
	}
}

// Execute resolves configuration, obtains a token, and issues a probe read.
func (t *Ping) Execute(ctx context.Context, req *tool.ExecutionRequest) *tool.Result {
	cfg, fctx, errRes := t.Resolve("Ping DX Service", req.Arguments)
	if errRes != nil {
		return errRes
	}
	return tool.WithErrorHandling("Ping DX Service", fctx, func() (*client.Result, *dxerror.Error) {
		return t.Client.Ping(ctx, cfg)
	}, func(res *client.Result) string {
		var b strings.Builder
		b.WriteString("## Ping DX Service\n")
		b.WriteString("\nConnection and authentication verified.\n")
		fmt.Fprintf(&b, "\n- **Base URL:** %s\n", cfg.BaseURL)
		fmt.Fprintf(&b, "- **Token URL:** %s\n", cfg.TokenURL)
		fmt.Fprintf(&b, "- **Auth mode:** %s\n", cfg.AuthMode)
		fmt.Fprintf(&b, "- **Config source:** %s\n", cfg.ConfigSource)
		if types, ok := res.Data["caseTypes"].([]any); ok {
			fmt.Fprintf(&b, "- **Case types visible:** %d\n", len(types))
		}
		return b.String()
	})
}

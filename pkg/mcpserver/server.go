// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package mcpserver hosts the MCP protocol surface: it wraps the SDK server,
// serves tools/list from the registry, and dispatches tools/call invocations
// to the registered tool implementations.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpany/dx-gateway/pkg/appconsts"
	"github.com/mcpany/dx-gateway/pkg/consts"
	"github.com/mcpany/dx-gateway/pkg/logging"
	"github.com/mcpany/dx-gateway/pkg/metrics"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

// Server dispatches MCP requests to the tool registry. It intercepts
// tools/list and tools/call through receiving middleware so the registry
// stays the single authoritative source of tools.
type Server struct {
	server   *mcp.Server
	router   *Router
	registry *tool.Registry
	debug    bool
}

// NewServer creates the MCP server and wires the registry behind the method
// router.
func NewServer(registry *tool.Registry, debug bool) *Server {
	s := &Server{
		router:   NewRouter(),
		registry: registry,
		debug:    debug,
	}

	s.router.Register(
		consts.MethodToolsList,
		func(ctx context.Context, req mcp.Request) (mcp.Result, error) {
			if r, ok := req.(*mcp.ListToolsRequest); ok {
				return s.ListTools(ctx, r)
			}
			return nil, fmt.Errorf("invalid request type for %s", consts.MethodToolsList)
		},
	)

	s.router.Register(
		consts.MethodToolsCall,
		func(ctx context.Context, req mcp.Request) (mcp.Result, error) {
			if r, ok := req.(*mcp.CallToolRequest); ok {
				return s.CallTool(ctx, r)
			}
			return nil, fmt.Errorf("invalid request type for %s", consts.MethodToolsCall)
		},
	)

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    appconsts.Name,
		Version: appconsts.Version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	routerMiddleware := func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(
			ctx context.Context,
			method string,
			req mcp.Request,
		) (mcp.Result, error) {
			if handler, ok := s.router.GetHandler(method); ok {
				return handler(ctx, req)
			}
			return next(ctx, method, req)
		}
	}
	s.server.AddReceivingMiddleware(routerMiddleware)

	return s
}

// Server returns the underlying SDK server.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Run serves MCP over the given transport until the context is canceled or
// the transport closes.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// StreamableHTTPHandler exposes the server over the streamable HTTP
// transport for non-stdio deployments.
func (s *Server) StreamableHTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// ListTools handles the "tools/list" MCP request from the registry's
// descriptors, in stable order.
func (s *Server) ListTools(
	_ context.Context,
	_ *mcp.ListToolsRequest,
) (*mcp.ListToolsResult, error) {
	metrics.IncrCounter([]string{"tools", "list", "total"}, 1)
	defs := s.registry.Definitions()
	mcpTools := make([]*mcp.Tool, len(defs))
	for i, def := range defs {
		mcpTools[i] = def.MCPTool()
	}
	return &mcp.ListToolsResult{Tools: mcpTools}, nil
}

// CallTool handles the "tools/call" MCP request. Every outcome is returned
// as a CallToolResult; protocol errors are reserved for malformed requests.
// An unknown tool name yields an IsError result listing the available tools.
func (s *Server) CallTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	name := req.Params.Name
	callID := uuid.NewString()
	log := logging.GetLogger().With("toolName", name, "callID", callID)

	metrics.IncrCounter([]string{"tools", "call", "total"}, 1)
	startTime := time.Now()
	defer metrics.MeasureSince([]string{"tools", "call", "latency"}, startTime)

	tl, ok := s.registry.Lookup(name)
	if !ok {
		metrics.IncrCounter([]string{"tools", "call", "unknown"}, 1)
		log.Warn("unknown tool requested")
		return errorResult("Unknown tool: %s. Available tools: %s",
			name, strings.Join(s.registry.ListNames(), ", ")), nil
	}

	args, res := decodeArguments(req.Params.Arguments)
	if res == nil {
		execReq := &tool.ExecutionRequest{
			ToolName:     name,
			Arguments:    args,
			RawArguments: req.Params.Arguments,
		}
		res = s.execute(ctx, log, tl, execReq)
	}

	if res.IsError {
		metrics.IncrCounter([]string{"tools", "call", "errors"}, 1)
	}
	if s.debug {
		log.Debug("tool call finished", "isError", res.IsError, "duration", time.Since(startTime))
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: res.Text}},
		IsError: res.IsError,
	}, nil
}

// execute runs one tool invocation. Tools are contracted never to panic or
// return nil, but a defect in one tool must not take down the session, so
// both are absorbed here.
func (s *Server) execute(ctx context.Context, log *slog.Logger, tl tool.Tool, req *tool.ExecutionRequest) (res *tool.Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("tool panicked in dispatch", "panic", r)
			res = &tool.Result{
				Text:    fmt.Sprintf("Internal error while executing %s: %v", req.ToolName, r),
				IsError: true,
			}
		}
	}()

	res = tl.Execute(ctx, req)
	if res == nil {
		log.Error("tool returned a nil result")
		res = &tool.Result{
			Text:    fmt.Sprintf("Internal error: tool %s returned no result", req.ToolName),
			IsError: true,
		}
	}
	return res
}

// decodeArguments parses the invocation's raw arguments. Absent arguments
// become an empty map; malformed JSON is a validation error result.
func decodeArguments(raw json.RawMessage) (map[string]any, *tool.Result) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &tool.Result{
			Text:    fmt.Sprintf("Arguments must be a JSON object: %v", err),
			IsError: true,
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func errorResult(formatStr string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(formatStr, args...)}},
		IsError: true,
	}
}

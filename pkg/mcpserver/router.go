package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MethodHandler defines the signature for a function that handles an MCP
// method call.
type MethodHandler func(ctx context.Context, req mcp.Request) (mcp.Result, error)

// Router maps MCP method names to handler functions. Methods without a
// registered handler fall through to the SDK's own handling.
type Router struct {
	handlers map[string]MethodHandler
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[string]MethodHandler),
	}
}

// Register associates a handler with an MCP method name, overwriting any
// previous registration.
func (r *Router) Register(method string, handler MethodHandler) {
	r.handlers[method] = handler
}

// GetHandler retrieves the handler for a method name, and whether one was
// registered.
func (r *Router) GetHandler(method string) (MethodHandler, bool) {
	handler, ok := r.handlers[method]
	return handler, ok
}

// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package tool defines the uniform contract every gateway tool implements,
// the shared validation and error-envelope helpers, and the registry that
// indexes tools by name and category.
package tool

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Definition is the immutable descriptor a tool publishes: its unique name,
// category tag, human-readable description, and input schema.
type Definition struct {
	Name        string
	Category    string
	Description string
	InputSchema *Schema
}

// MCPTool converts the definition to the wire descriptor consumed by
// tools/list clients.
func (d *Definition) MCPTool() *mcp.Tool {
	schema := d.InputSchema.JSONSchema()
	if schema == nil {
		schema = &jsonschema.Schema{Type: "object", Properties: map[string]*jsonschema.Schema{}}
	}
	return &mcp.Tool{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: schema,
	}
}

// ExecutionRequest carries one invocation's name and decoded arguments.
// Arguments is never nil; absent arguments arrive as an empty map.
type ExecutionRequest struct {
	ToolName     string
	Arguments    map[string]any
	RawArguments json.RawMessage
}

// Result is the envelope every Execute returns. Tools never propagate errors
// or panics to the dispatcher: validation failures set IsError, upstream
// failures are rendered as error-headed Markdown with IsError unset, and
// successes are plain Markdown.
type Result struct {
	Text    string
	IsError bool
}

// Tool is the interface implemented by every gateway tool. Implementations
// are stateless values created at startup that live for the process lifetime.
type Tool interface {
	// Definition returns the tool's immutable descriptor.
	Definition() *Definition
	// Execute runs the tool. It must not panic and must not return nil.
	Execute(ctx context.Context, req *ExecutionRequest) *Result
}

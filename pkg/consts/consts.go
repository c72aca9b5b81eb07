// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package consts holds protocol-level constants shared across packages.
package consts

const (
	// MethodToolsList is the MCP method for listing tools.
	MethodToolsList = "tools/list"
	// MethodToolsCall is the MCP method for invoking a tool.
	MethodToolsCall = "tools/call"
)

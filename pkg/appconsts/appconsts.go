// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package appconsts

const (
	// Name is the name of the DX Gateway server. This is used in help messages
	// and other user-facing output, and as the MCP implementation name.
	Name = "dx-gateway"
)

// Version is the version of the DX Gateway server. This is a variable so it
// can be set at build time using ldflags. The default value is "dev", which is
// used for local development builds.
var Version = "dev"

// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"github.com/spf13/afero"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/format"
)

// Base bundles the collaborators every tool needs: the DX client facade, the
// process configuration defaults, and a filesystem for upload tools. Tools
// embed it by value; there is no inheritance tree, just this shared helper
// layer consumed via composition.
type Base struct {
	Client *client.DXClient
	Config *config.Config
	FS     afero.Fs
}

// Resolve merges the invocation's optional sessionCredentials with the
// process defaults into an effective configuration plus the formatting
// context for this call. The third return value is non-nil when resolution
// fails and should be returned to the dispatcher as-is.
func (b *Base) Resolve(op string, args map[string]any) (*config.Effective, *format.Context, *Result) {
	creds, verr := SessionCredentialsArg(args)
	if verr != nil {
		return nil, nil, verr
	}
	eff, derr := b.Config.Resolve(creds)
	if derr != nil {
		return nil, nil, &Result{Text: format.Error(op, derr, nil)}
	}
	fctx := &format.Context{
		SessionID:    eff.SessionID,
		AuthMode:     eff.AuthMode,
		ConfigSource: eff.ConfigSource,
	}
	return eff, fctx, nil
}

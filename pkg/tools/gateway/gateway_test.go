// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"net/http"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpany/dx-gateway/pkg/auth"
	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/testutil"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

func newBase(t *testing.T, stub *testutil.StubDX) tool.Base {
	t.Helper()
	httpClient := stub.Server.Client()
	exec := client.NewExecutor(httpClient, auth.NewCache(httpClient))
	return tool.Base{
		Client: client.NewDXClient(exec),
		Config: stub.Config(),
		FS:     afero.NewMemMapFs(),
	}
}

func TestPingReportsConnection(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.DataHandler = func(w http.ResponseWriter, r *http.Request) {
		testutil.JSONResponse(w, http.StatusOK, "", map[string]any{
			"caseTypes": []any{map[string]any{"name": "Expense"}},
		})
	}

	tl := NewPing(newBase(t, stub))
	res := tl.Execute(context.Background(), &tool.ExecutionRequest{
		ToolName:  "ping_dx_service",
		Arguments: map[string]any{},
	})
	require.NotNil(t, res)

	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "Connection and authentication verified")
	assert.Contains(t, res.Text, stub.BaseURL())
	assert.Contains(t, res.Text, "**Case types visible:** 1")
	assert.Equal(t, int64(1), stub.TokenCalls())
}

func TestPingUnconfigured(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	base := newBase(t, stub)
	base.Config.BaseURL = ""

	tl := NewPing(base)
	res := tl.Execute(context.Background(), &tool.ExecutionRequest{
		ToolName:  "ping_dx_service",
		Arguments: map[string]any{},
	})
	require.NotNil(t, res)

	assert.Contains(t, res.Text, "CONFIG_INVALID")
	assert.Zero(t, stub.TokenCalls())
}

func TestPingAuthFailure(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.TokenStatus = http.StatusUnauthorized

	tl := NewPing(newBase(t, stub))
	res := tl.Execute(context.Background(), &tool.ExecutionRequest{
		ToolName:  "ping_dx_service",
		Arguments: map[string]any{},
	})
	require.NotNil(t, res)

	assert.False(t, res.IsError)
	assert.Contains(t, res.Text, "AUTH_FAILED")
	assert.Contains(t, res.Text, "Verify the OAuth2 client ID and secret")
	assert.Zero(t, stub.DataCalls(), "a failed exchange must not reach the data surface")
}

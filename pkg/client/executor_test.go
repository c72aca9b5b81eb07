// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpany/dx-gateway/pkg/auth"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/testutil"
)

func newExecutor(t *testing.T, stub *testutil.StubDX) *Executor {
	t.Helper()
	httpClient := stub.Server.Client()
	return NewExecutor(httpClient, auth.NewCache(httpClient))
}

func TestDoAttachesBearerToken(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	exec := newExecutor(t, stub)

	resp, derr := exec.Do(context.Background(), stub.Effective(t), &Request{
		Method: http.MethodGet,
		Path:   "/casetypes",
	})
	require.Nil(t, derr)
	assert.Equal(t, http.StatusOK, resp.Status)

	reqs := stub.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer token-1", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Accept"))
}

func TestDoRefreshesOnceOn401(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	var dataCalls atomic.Int64
	stub.DataHandler = func(w http.ResponseWriter, r *http.Request) {
		if dataCalls.Add(1) == 1 {
			// First call: the token has been revoked upstream.
			testutil.JSONResponse(w, http.StatusUnauthorized, "", map[string]any{})
			return
		}
		testutil.JSONResponse(w, http.StatusOK, "", map[string]any{"ok": true})
	}
	exec := newExecutor(t, stub)

	resp, derr := exec.Do(context.Background(), stub.Effective(t), &Request{
		Method: http.MethodGet,
		Path:   "/casetypes",
	})
	require.Nil(t, derr)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, int64(2), stub.TokenCalls(), "expected the initial exchange plus one refresh")
	assert.Equal(t, int64(2), stub.DataCalls(), "expected the original request plus one reissue")

	reqs := stub.Requests()
	require.Len(t, reqs, 2)
	assert.NotEqual(t, reqs[0].Header.Get("Authorization"), reqs[1].Header.Get("Authorization"),
		"the reissued request must carry the refreshed token")
}

func TestDoGivesUpAfterSecond401(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.DataHandler = func(w http.ResponseWriter, r *http.Request) {
		testutil.JSONResponse(w, http.StatusUnauthorized, "", map[string]any{})
	}
	exec := newExecutor(t, stub)

	_, derr := exec.Do(context.Background(), stub.Effective(t), &Request{
		Method: http.MethodGet,
		Path:   "/casetypes",
	})
	require.NotNil(t, derr)
	assert.Equal(t, dxerror.KindUnauthorized, derr.Kind)
	assert.Equal(t, int64(2), stub.DataCalls(), "exactly one reissue, never a third attempt")
}

func TestDoNoRetryOnServerError(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.DataHandler = func(w http.ResponseWriter, r *http.Request) {
		testutil.JSONResponse(w, http.StatusInternalServerError, "", map[string]any{})
	}
	exec := newExecutor(t, stub)

	resp, derr := exec.Do(context.Background(), stub.Effective(t), &Request{
		Method: http.MethodPost,
		Path:   "/cases",
		Body:   []byte(`{}`),
	})
	require.Nil(t, derr)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, int64(1), stub.DataCalls(), "non-401 failures are never retried")
}

func TestDoTimeout(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.DataHandler = func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		testutil.JSONResponse(w, http.StatusOK, "", map[string]any{})
	}
	exec := newExecutor(t, stub)

	cfg := stub.Effective(t)
	cfg.Timeout = 50 * time.Millisecond

	_, derr := exec.Do(context.Background(), cfg, &Request{
		Method: http.MethodGet,
		Path:   "/casetypes",
	})
	require.NotNil(t, derr)
	assert.Equal(t, dxerror.KindTimeout, derr.Kind)
}

func TestDoConnectionError(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	exec := newExecutor(t, stub)

	cfg := stub.Effective(t)
	// Token acquisition succeeds against the stub, then the data call goes to
	// a closed port.
	_, derr := exec.Tokens().Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	cfg.BaseURL = "http://127.0.0.1:1/prweb/api/dx/v2"

	_, derr = exec.Do(context.Background(), cfg, &Request{
		Method: http.MethodGet,
		Path:   "/casetypes",
	})
	require.NotNil(t, derr)
	assert.Equal(t, dxerror.KindConnectionError, derr.Kind)
}

func TestEscapeSegment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OSIEO3-DOCSAPP-WORK%20E-55001", EscapeSegment("OSIEO3-DOCSAPP-WORK E-55001"))
	assert.Equal(t, "A%2FB", EscapeSegment("A/B"))
}

// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/testutil"
)

func TestAcquireCachesToken(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	cache := NewCache(stub.Server.Client())
	cfg := stub.Effective(t)

	tok1, derr := cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	require.NotEmpty(t, tok1)

	tok2, derr := cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	assert.Equal(t, tok1, tok2)
	assert.Equal(t, int64(1), stub.TokenCalls())
}

func TestAcquireCoalescesConcurrentExchanges(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.TokenDelay = 50 * time.Millisecond
	cache := NewCache(stub.Server.Client())
	cfg := stub.Effective(t)

	const callers = 10
	tokens := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, derr := cache.Acquire(context.Background(), cfg)
			require.Nil(t, derr)
			tokens[i] = tok
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), stub.TokenCalls(), "concurrent acquires must coalesce into one exchange")
	for i := 1; i < callers; i++ {
		assert.Equal(t, tokens[0], tokens[i])
	}
}

func TestAcquireRefreshesExpiredToken(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	cache := NewCache(stub.Server.Client())
	cfg := stub.Effective(t)

	_, derr := cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)

	// Advance the clock past the token's lifetime minus the refresh skew.
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, derr = cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	assert.Equal(t, int64(2), stub.TokenCalls())
}

func TestAcquireRefreshesWithinSkewWindow(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.ExpiresIn = 20 // shorter than the 30s refresh skew
	cache := NewCache(stub.Server.Client())
	cfg := stub.Effective(t)

	_, derr := cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	_, derr = cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	assert.Equal(t, int64(2), stub.TokenCalls(), "a token inside the skew window must not be reused")
}

func TestAcquireFailedExchangeNotCached(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.TokenStatus = http.StatusUnauthorized
	cache := NewCache(stub.Server.Client())
	cfg := stub.Effective(t)

	_, derr := cache.Acquire(context.Background(), cfg)
	require.NotNil(t, derr)
	assert.Equal(t, dxerror.KindAuthFailed, derr.Kind)
	assert.Contains(t, derr.Message, "invalid_client")

	// The failure must not poison the cache: a later exchange succeeds.
	stub.TokenStatus = http.StatusOK
	tok, derr := cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	assert.NotEmpty(t, tok)
}

func TestAcquireWaiterCancellation(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	stub.TokenDelay = 200 * time.Millisecond
	cache := NewCache(stub.Server.Client())
	cfg := stub.Effective(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, derr := cache.Acquire(ctx, cfg)
	require.NotNil(t, derr)
	assert.Equal(t, dxerror.KindTimeout, derr.Kind)

	// The in-flight exchange still completes and lands in the cache.
	tok, derr := cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	assert.NotEmpty(t, tok)
	assert.Equal(t, int64(1), stub.TokenCalls())
}

func TestInvalidateForcesFreshExchange(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	cache := NewCache(stub.Server.Client())
	cfg := stub.Effective(t)

	tok1, derr := cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)

	cache.Invalidate(cfg)

	tok2, derr := cache.Acquire(context.Background(), cfg)
	require.Nil(t, derr)
	assert.NotEqual(t, tok1, tok2)
	assert.Equal(t, int64(2), stub.TokenCalls())
}

func TestAcquireSeparatesFingerprints(t *testing.T) {
	t.Parallel()

	stub := testutil.NewStubDX(t)
	cache := NewCache(stub.Server.Client())

	cfgA := stub.Effective(t)
	cfgB := stub.Effective(t)
	cfgB.ClientID = "another-client"

	_, derr := cache.Acquire(context.Background(), cfgA)
	require.Nil(t, derr)
	_, derr = cache.Acquire(context.Background(), cfgB)
	require.Nil(t, derr)

	assert.Equal(t, int64(2), stub.TokenCalls(), "distinct credentials must not share a cache entry")
}

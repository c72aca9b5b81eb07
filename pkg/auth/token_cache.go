// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package auth implements OAuth2 client-credentials token acquisition for the
// upstream DX API: a process-wide token cache keyed by configuration
// fingerprint, with coalesced refreshes and explicit invalidation on observed
// 401 responses.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/logging"
	"github.com/mcpany/dx-gateway/pkg/metrics"
)

// expirySkew is subtracted from the token lifetime when judging validity so a
// token is refreshed slightly before the provider would reject it.
const expirySkew = 30 * time.Second

// Cache holds one bearer token per configuration fingerprint. Concurrent
// refreshes for the same fingerprint are coalesced: exactly one exchange is in
// flight at a time and all waiters receive its outcome. A token is stored only
// after a successful exchange; partial tokens never appear.
type Cache struct {
	entries *xsync.Map[string, *oauth2.Token]
	flight  singleflight.Group
	client  *http.Client

	// now is stubbed in tests.
	now func() time.Time
}

// NewCache creates a token cache. client is used for the token exchanges; a
// nil client falls back to http.DefaultClient. Per-exchange deadlines come
// from the effective configuration's timeout.
func NewCache(client *http.Client) *Cache {
	if client == nil {
		client = http.DefaultClient
	}
	return &Cache{
		entries: xsync.NewMap[string, *oauth2.Token](),
		client:  client,
		now:     time.Now,
	}
}

// valid reports whether tok can still be presented upstream, applying the
// refresh skew.
func (c *Cache) valid(tok *oauth2.Token) bool {
	if tok == nil || tok.AccessToken == "" {
		return false
	}
	if tok.Expiry.IsZero() {
		return true
	}
	return c.now().Add(expirySkew).Before(tok.Expiry)
}

// Acquire returns a bearer token for the given effective configuration,
// issuing a client-credentials exchange when no valid cached token exists.
//
// Waiters cancelled while a coalesced exchange is in flight get their context
// error; the exchange itself runs to completion so the remaining waiters (and
// the cache) still benefit from its result.
func (c *Cache) Acquire(ctx context.Context, cfg *config.Effective) (string, *dxerror.Error) {
	fp := cfg.Fingerprint()
	if tok, ok := c.entries.Load(fp); ok && c.valid(tok) {
		return tok.AccessToken, nil
	}

	ch := c.flight.DoChan(fp, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have refreshed
		// between our lookup and this closure running.
		if tok, ok := c.entries.Load(fp); ok && c.valid(tok) {
			return tok, nil
		}
		metrics.IncrCounter([]string{"auth", "token", "exchange"}, 1)
		start := time.Now()
		tok, err := c.exchange(cfg)
		metrics.MeasureSince([]string{"auth", "token", "exchange", "latency"}, start)
		if err != nil {
			metrics.IncrCounter([]string{"auth", "token", "exchange", "error"}, 1)
			return nil, err
		}
		c.entries.Store(fp, tok)
		logging.GetLogger().Debug("acquired access token",
			"tokenURL", cfg.TokenURL, "sessionID", cfg.SessionID, "expiry", tok.Expiry)
		return tok, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", dxerror.As(res.Err)
		}
		return res.Val.(*oauth2.Token).AccessToken, nil
	case <-ctx.Done():
		return "", dxerror.Wrap(dxerror.KindTimeout, ctx.Err())
	}
}

// Invalidate drops the cached token for the configuration's fingerprint. It
// is called when the upstream rejects a request with 401 so the next Acquire
// performs a fresh exchange.
func (c *Cache) Invalidate(cfg *config.Effective) {
	c.entries.Delete(cfg.Fingerprint())
}

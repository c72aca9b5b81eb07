// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package client contains the upstream DX API surface: the HTTP executor
// (auth header, single 401 retry, status mapping) and the endpoint facade the
// tools call. Nothing in this package knows about argument validation or
// response formatting.
package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcpany/dx-gateway/pkg/auth"
	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/logging"
	"github.com/mcpany/dx-gateway/pkg/metrics"
)

// maxResponseBodySize bounds upstream response reads (8 MB; attachment
// content is delivered base64-encoded inside JSON).
const maxResponseBodySize = 8 << 20

// Request describes one outbound DX API call. Path is relative to the
// configuration's base URL and must already be segment-encoded (see
// EscapeSegment). Body, when non-nil, is buffered so the request can be
// reissued after a token refresh.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Header      http.Header
	Body        []byte
	ContentType string
}

// Response is the raw upstream reply handed back to the facade for decoding.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Executor issues authenticated REST calls against the DX API. It owns the
// 401-refresh-retry policy: on an observed 401 the cached token is
// invalidated, a fresh exchange is forced, and the request is reissued
// exactly once. There is no retry for any other failure; the upstream owns
// its idempotency guarantees and the gateway never replays writes.
type Executor struct {
	client *http.Client
	tokens *auth.Cache
}

// NewExecutor creates an Executor. A nil http.Client falls back to a pooled
// default client; per-call deadlines come from the effective configuration.
func NewExecutor(client *http.Client, tokens *auth.Cache) *Executor {
	if client == nil {
		client = &http.Client{}
	}
	return &Executor{client: client, tokens: tokens}
}

// Tokens exposes the token cache.
func (e *Executor) Tokens() *auth.Cache {
	return e.tokens
}

// Do executes req under cfg. It acquires a bearer token, attaches the
// caller's headers, and issues the request with the configured deadline.
// The response is returned for status mapping by the caller; transport
// failures are mapped to CONNECTION_ERROR or TIMEOUT here.
func (e *Executor) Do(ctx context.Context, cfg *config.Effective, req *Request) (*Response, *dxerror.Error) {
	token, derr := e.tokens.Acquire(ctx, cfg)
	if derr != nil {
		return nil, derr
	}

	resp, derr := e.issue(ctx, cfg, req, token)
	if derr != nil {
		return nil, derr
	}
	if resp.Status != http.StatusUnauthorized {
		return resp, nil
	}

	// The token was rejected. Invalidate it, force a fresh exchange, and
	// reissue the request exactly once.
	logging.GetLogger().Debug("upstream rejected token, refreshing",
		"path", req.Path, "sessionID", cfg.SessionID)
	metrics.IncrCounter([]string{"http", "request", "unauthorized"}, 1)
	e.tokens.Invalidate(cfg)
	token, derr = e.tokens.Acquire(ctx, cfg)
	if derr != nil {
		return nil, derr
	}
	resp, derr = e.issue(ctx, cfg, req, token)
	if derr != nil {
		return nil, derr
	}
	if resp.Status == http.StatusUnauthorized {
		return nil, &dxerror.Error{
			Kind:    dxerror.KindUnauthorized,
			Message: "upstream rejected the refreshed token; verify the client credentials and their access role",
			Status:  http.StatusUnauthorized,
		}
	}
	return resp, nil
}

// issue sends a single HTTP request and reads the bounded response body.
func (e *Executor) issue(ctx context.Context, cfg *config.Effective, req *Request, token string) (*Response, *dxerror.Error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	target := strings.TrimSuffix(cfg.BaseURL, "/") + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, dxerror.New(dxerror.KindConnectionError, "failed to build request for %s: %v", req.Path, err)
	}
	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	httpResp, err := e.client.Do(httpReq)
	metrics.MeasureSince([]string{"http", "request", "latency"}, start)
	if err != nil {
		metrics.IncrCounter([]string{"http", "request", "error"}, 1)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dxerror.New(dxerror.KindTimeout, "request to %s exceeded the %s deadline", req.Path, cfg.Timeout)
		}
		if ctx.Err() != nil {
			return nil, dxerror.Wrap(dxerror.KindTimeout, ctx.Err())
		}
		return nil, dxerror.New(dxerror.KindConnectionError, "request to %s failed: %v", req.Path, err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodySize))
	if err != nil {
		return nil, dxerror.New(dxerror.KindConnectionError, "failed to read response from %s: %v", req.Path, err)
	}
	metrics.IncrCounter([]string{"http", "request", "total"}, 1)
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: respBody}, nil
}

// EscapeSegment percent-encodes one URL path segment. Case and assignment
// handles routinely contain spaces and punctuation (e.g. "OSIEO3-DOCSAPP-WORK
// E-55001").
func EscapeSegment(segment string) string {
	return url.PathEscape(segment)
}

// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides a stub DX server and configuration helpers shared
// by tests across packages.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mcpany/dx-gateway/pkg/config"
)

// RecordedRequest captures one data request for ordering and header
// assertions.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// StubDX simulates a DX server: a token endpoint under the documented
// PRRestService path plus a data surface under /prweb/api/dx/v2. Counters and
// recorded requests let tests assert exactly how many exchanges and data
// calls a scenario produced, and in what order.
type StubDX struct {
	Server *httptest.Server

	// TokenStatus is returned by the token endpoint (default 200).
	TokenStatus int
	// TokenDelay is slept before answering a token request, to widen the
	// race window in concurrency tests.
	TokenDelay time.Duration
	// ExpiresIn is the lifetime reported with each issued token (default 3600).
	ExpiresIn int

	// DataHandler serves everything under the API base path. The default
	// replies 200 with an empty JSON object.
	DataHandler http.HandlerFunc

	tokenCalls atomic.Int64
	dataCalls  atomic.Int64

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewStubDX starts a stub DX server; it is shut down with the test.
func NewStubDX(t *testing.T) *StubDX {
	t.Helper()
	s := &StubDX{
		TokenStatus: http.StatusOK,
		ExpiresIn:   3600,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/prweb/PRRestService/oauth2/v1/token", s.handleToken)
	mux.HandleFunc("/prweb/api/dx/v2/", s.handleData)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

func (s *StubDX) handleToken(w http.ResponseWriter, r *http.Request) {
	n := s.tokenCalls.Add(1)
	if s.TokenDelay > 0 {
		time.Sleep(s.TokenDelay)
	}
	if s.TokenStatus != http.StatusOK {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.TokenStatus)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_client",
			"error_description": "client authentication failed",
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": fmt.Sprintf("token-%d", n),
		"token_type":   "bearer",
		"expires_in":   s.ExpiresIn,
	})
}

func (s *StubDX) handleData(w http.ResponseWriter, r *http.Request) {
	s.dataCalls.Add(1)
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   strings.TrimPrefix(r.URL.Path, "/prweb/api/dx/v2"),
		Header: r.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	if s.DataHandler != nil {
		s.DataHandler(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{}`))
}

// BaseURL returns the stub's DX API base URL.
func (s *StubDX) BaseURL() string {
	return s.Server.URL + "/prweb/api/dx/v2"
}

// TokenURL returns the stub's token endpoint.
func (s *StubDX) TokenURL() string {
	return s.Server.URL + "/prweb/PRRestService/oauth2/v1/token"
}

// TokenCalls returns how many token exchanges the stub has served.
func (s *StubDX) TokenCalls() int64 {
	return s.tokenCalls.Load()
}

// DataCalls returns how many data requests the stub has served.
func (s *StubDX) DataCalls() int64 {
	return s.dataCalls.Load()
}

// Requests returns a copy of the recorded data requests in arrival order.
func (s *StubDX) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Config returns process defaults pointing at the stub.
func (s *StubDX) Config() *config.Config {
	return &config.Config{
		BaseURL:        s.BaseURL(),
		ClientID:       "test-client",
		ClientSecret:   "test-secret",
		RequestTimeout: 5 * time.Second,
	}
}

// Effective resolves the stub's process defaults into a per-invocation
// configuration.
func (s *StubDX) Effective(t *testing.T) *config.Effective {
	t.Helper()
	eff, derr := s.Config().Resolve(nil)
	if derr != nil {
		t.Fatalf("failed to resolve stub config: %v", derr)
	}
	return eff
}

// JSONResponse writes status with a JSON body, plus an eTag header when
// eTag is non-empty.
func JSONResponse(w http.ResponseWriter, status int, eTag string, body any) {
	w.Header().Set("Content-Type", "application/json")
	if eTag != "" {
		w.Header().Set("eTag", eTag)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

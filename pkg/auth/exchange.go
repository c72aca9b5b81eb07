// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
)

// maxResponseBodySize bounds token endpoint response reads (1 MB).
const maxResponseBodySize = 1 << 20

// oauthError is an OAuth 2.0 error response per RFC 6749 section 5.2.
type oauthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`
}

// tokenResponse decodes the token endpoint's success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// exchange performs one OAuth2 client-credentials exchange against the
// configuration's token URL. The request is a form-urlencoded POST with the
// client ID and secret as HTTP basic auth. Failures are never cached.
func (c *Cache) exchange(cfg *config.Effective) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, dxerror.New(dxerror.KindAuthFailed, "failed to build token request: %v", err)
	}
	req.SetBasicAuth(url.QueryEscape(cfg.ClientID), url.QueryEscape(cfg.ClientSecret))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dxerror.New(dxerror.KindTimeout, "token exchange against %s timed out", cfg.TokenURL)
		}
		return nil, dxerror.New(dxerror.KindConnectionError, "token exchange against %s failed: %v", cfg.TokenURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, dxerror.New(dxerror.KindAuthFailed, "failed to read token response: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("token endpoint returned status %d", resp.StatusCode)
		var oe oauthError
		if json.Unmarshal(body, &oe) == nil && oe.Code != "" {
			msg = fmt.Sprintf("token endpoint returned %q (status %d)", oe.Code, resp.StatusCode)
			if oe.Description != "" {
				msg += ": " + oe.Description
			}
		}
		return nil, &dxerror.Error{Kind: dxerror.KindAuthFailed, Message: msg, Status: resp.StatusCode}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, dxerror.New(dxerror.KindAuthFailed, "failed to decode token response: %v", err)
	}
	if tr.AccessToken == "" {
		return nil, dxerror.New(dxerror.KindAuthFailed, "token endpoint returned an empty access token")
	}

	tok := &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = c.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcpany/dx-gateway/pkg/dxerror"
)

// tokenPathSuffix is the documented OAuth2 token endpoint location relative to
// the DX server root. A base URL of the form https://host/prweb/api/dx/v2
// yields https://host/prweb/PRRestService/oauth2/v1/token.
const tokenPathSuffix = "/PRRestService/oauth2/v1/token"

// SessionCredentials is the optional per-invocation credential override
// accepted by every tool as the `sessionCredentials` argument. Supplied fields
// replace the process defaults; missing fields fall through.
type SessionCredentials struct {
	BaseURL      string `json:"baseUrl,omitempty"`
	TokenURL     string `json:"tokenUrl,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// Effective is the per-invocation configuration produced by Resolve. It is
// never mutated after creation; a fresh value is built for every tool call.
type Effective struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration

	// Diagnostic tags. SessionID identifies the invocation in logs,
	// AuthMode is "shared" or "session", ConfigSource is "env" or "request".
	SessionID    string
	AuthMode     string
	ConfigSource string
}

// Resolve merges the process defaults with an optional per-invocation
// override into an Effective configuration. It is a pure function of its
// inputs apart from the generated SessionID.
func (c *Config) Resolve(override *SessionCredentials) (*Effective, *dxerror.Error) {
	eff := &Effective{
		BaseURL:      c.BaseURL,
		TokenURL:     c.TokenURL,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Timeout:      c.RequestTimeout,
		SessionID:    uuid.New().String(),
		AuthMode:     "shared",
		ConfigSource: "env",
	}
	if eff.Timeout <= 0 {
		eff.Timeout = DefaultRequestTimeout
	}

	if override != nil {
		if override.BaseURL != "" {
			eff.BaseURL = override.BaseURL
			// A session base URL invalidates an inherited token URL; it is
			// re-derived below unless the override names one.
			if override.TokenURL == "" && c.TokenURL != "" && override.BaseURL != c.BaseURL {
				eff.TokenURL = ""
			}
		}
		if override.TokenURL != "" {
			eff.TokenURL = override.TokenURL
		}
		if override.ClientID != "" {
			eff.ClientID = override.ClientID
		}
		if override.ClientSecret != "" {
			eff.ClientSecret = override.ClientSecret
		}
		eff.AuthMode = "session"
		eff.ConfigSource = "request"
	}

	if eff.BaseURL == "" {
		return nil, dxerror.New(dxerror.KindConfigInvalid, "base URL is not configured; set --base-url or DXGATEWAY_BASE_URL")
	}
	if eff.ClientID == "" || eff.ClientSecret == "" {
		return nil, dxerror.New(dxerror.KindConfigInvalid, "client credentials are not configured; set client ID and secret")
	}
	if eff.TokenURL == "" {
		derived, err := DeriveTokenURL(eff.BaseURL)
		if err != nil {
			return nil, dxerror.New(dxerror.KindConfigInvalid, "token URL not supplied and not derivable from base URL %q: %v", eff.BaseURL, err)
		}
		eff.TokenURL = derived
	}

	return eff, nil
}

// DeriveTokenURL derives the OAuth2 token endpoint from a DX API base URL by
// replacing the /api/... suffix with the documented token path.
func DeriveTokenURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("base URL %q is missing scheme or host", baseURL)
	}
	idx := strings.Index(u.Path, "/api/")
	if idx < 0 {
		return "", fmt.Errorf("base URL path %q does not contain an /api/ segment", u.Path)
	}
	u.Path = u.Path[:idx] + tokenPathSuffix
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Fingerprint returns a stable hash over (token URL, client ID, client
// secret). Token cache entries with different fingerprints are independent.
func (e *Effective) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(e.TokenURL))
	h.Write([]byte{0})
	h.Write([]byte(e.ClientID))
	h.Write([]byte{0})
	h.Write([]byte(e.ClientSecret))
	return hex.EncodeToString(h.Sum(nil))
}

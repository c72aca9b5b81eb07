// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpany/dx-gateway/pkg/dxerror"
)

func baseConfig() *Config {
	return &Config{
		BaseURL:      "https://pega.example.com/prweb/api/dx/v2",
		ClientID:     "shared-id",
		ClientSecret: "shared-secret",
	}
}

func TestResolveSharedDefaults(t *testing.T) {
	t.Parallel()

	eff, derr := baseConfig().Resolve(nil)
	require.Nil(t, derr)

	assert.Equal(t, "https://pega.example.com/prweb/api/dx/v2", eff.BaseURL)
	assert.Equal(t, "https://pega.example.com/prweb/PRRestService/oauth2/v1/token", eff.TokenURL)
	assert.Equal(t, "shared", eff.AuthMode)
	assert.Equal(t, "env", eff.ConfigSource)
	assert.Equal(t, DefaultRequestTimeout, eff.Timeout)
	assert.NotEmpty(t, eff.SessionID)
}

func TestResolveSessionOverrideMergesFieldwise(t *testing.T) {
	t.Parallel()

	eff, derr := baseConfig().Resolve(&SessionCredentials{
		ClientID:     "session-id",
		ClientSecret: "session-secret",
	})
	require.Nil(t, derr)

	// Base URL falls through from the process defaults.
	assert.Equal(t, "https://pega.example.com/prweb/api/dx/v2", eff.BaseURL)
	assert.Equal(t, "session-id", eff.ClientID)
	assert.Equal(t, "session-secret", eff.ClientSecret)
	assert.Equal(t, "session", eff.AuthMode)
	assert.Equal(t, "request", eff.ConfigSource)
}

func TestResolveSessionBaseURLRederivesTokenURL(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.TokenURL = "https://pega.example.com/prweb/PRRestService/oauth2/v1/token"

	eff, derr := cfg.Resolve(&SessionCredentials{
		BaseURL: "https://other.example.com/prweb/api/dx/v2",
	})
	require.Nil(t, derr)

	// The inherited token URL belongs to the old host; it must not leak.
	assert.Equal(t, "https://other.example.com/prweb/PRRestService/oauth2/v1/token", eff.TokenURL)
}

func TestResolveExplicitSessionTokenURLWins(t *testing.T) {
	t.Parallel()

	eff, derr := baseConfig().Resolve(&SessionCredentials{
		BaseURL:  "https://other.example.com/prweb/api/dx/v2",
		TokenURL: "https://sso.example.com/token",
	})
	require.Nil(t, derr)
	assert.Equal(t, "https://sso.example.com/token", eff.TokenURL)
}

func TestResolveMissingBaseURL(t *testing.T) {
	t.Parallel()

	cfg := &Config{ClientID: "id", ClientSecret: "secret"}
	_, derr := cfg.Resolve(nil)
	require.NotNil(t, derr)
	assert.Equal(t, dxerror.KindConfigInvalid, derr.Kind)
}

func TestResolveMissingCredentials(t *testing.T) {
	t.Parallel()

	cfg := &Config{BaseURL: "https://pega.example.com/prweb/api/dx/v2"}
	_, derr := cfg.Resolve(nil)
	require.NotNil(t, derr)
	assert.Equal(t, dxerror.KindConfigInvalid, derr.Kind)
}

func TestResolveUnderivableTokenURL(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		BaseURL:      "https://pega.example.com/noapi",
		ClientID:     "id",
		ClientSecret: "secret",
	}
	_, derr := cfg.Resolve(nil)
	require.NotNil(t, derr)
	assert.Equal(t, dxerror.KindConfigInvalid, derr.Kind)
}

func TestDeriveTokenURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{
			name:    "standard v2 base",
			baseURL: "https://host/prweb/api/dx/v2",
			want:    "https://host/prweb/PRRestService/oauth2/v1/token",
		},
		{
			name:    "versionless application path",
			baseURL: "https://host/prweb/app/myapp/api/dx/v2",
			want:    "https://host/prweb/app/myapp/PRRestService/oauth2/v1/token",
		},
		{
			name:    "query and fragment dropped",
			baseURL: "https://host/prweb/api/dx/v2?x=1#frag",
			want:    "https://host/prweb/PRRestService/oauth2/v1/token",
		},
		{
			name:    "no api segment",
			baseURL: "https://host/prweb",
			wantErr: true,
		},
		{
			name:    "missing scheme",
			baseURL: "host/prweb/api/dx/v2",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DeriveTokenURL(tt.baseURL)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFingerprintDistinguishesCredentials(t *testing.T) {
	t.Parallel()

	a := &Effective{TokenURL: "https://host/token", ClientID: "id", ClientSecret: "secret"}
	b := &Effective{TokenURL: "https://host/token", ClientID: "id", ClientSecret: "other"}
	c := &Effective{TokenURL: "https://host/token", ClientID: "id", ClientSecret: "secret"}

	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Fingerprint(), c.Fingerprint())

	// Field boundaries matter: id|secret must not collide with i|dsecret.
	d := &Effective{TokenURL: "https://host/token", ClientID: "i", ClientSecret: "dsecret"}
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}

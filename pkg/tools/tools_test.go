// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/tool"
)

func testBase() tool.Base {
	return tool.Base{
		Client: client.NewDXClient(client.NewExecutor(nil, nil)),
		Config: &config.Config{},
		FS:     afero.NewMemMapFs(),
	}
}

func TestAllToolsRegister(t *testing.T) {
	t.Parallel()

	registry, err := tool.NewRegistry(Factory(testBase()))
	require.NoError(t, err, "every built-in tool must pass strict registration")

	assert.Equal(t, 19, registry.Len())
}

func TestAllToolsHaveUniqueIdentifierSafeNames(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, tl := range All(testBase()) {
		def := tl.Definition()
		require.NotNil(t, def)
		assert.False(t, seen[def.Name], "duplicate tool name %q", def.Name)
		seen[def.Name] = true
		assert.Regexp(t, `^[a-z][a-z0-9_]*$`, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.NotEmpty(t, def.Category)
	}
}

func TestAllToolsValidateSchemas(t *testing.T) {
	t.Parallel()

	for _, tl := range All(testBase()) {
		def := tl.Definition()
		assert.NoError(t, def.InputSchema.Validate(), "tool %q", def.Name)
	}
}

func TestAllToolsAcceptSessionCredentials(t *testing.T) {
	t.Parallel()

	for _, tl := range All(testBase()) {
		def := tl.Definition()
		_, ok := def.InputSchema.Properties["sessionCredentials"]
		assert.True(t, ok, "tool %q must accept a sessionCredentials override", def.Name)
	}
}

func TestExpectedCategories(t *testing.T) {
	t.Parallel()

	registry, err := tool.NewRegistry(Factory(testBase()))
	require.NoError(t, err)

	assert.Len(t, registry.Category("cases"), 6)
	assert.Len(t, registry.Category("assignments"), 4)
	assert.Len(t, registry.Category("casetypes"), 2)
	assert.Len(t, registry.Category("dataviews"), 2)
	assert.Len(t, registry.Category("attachments"), 4)
	assert.Len(t, registry.Category("gateway"), 1)
}

// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsTypicalToolSchema(t *testing.T) {
	t.Parallel()

	s := Object("", map[string]*Schema{
		"caseID":           String("full case handle"),
		"viewType":         StringEnum("ui metadata level", "form", "page"),
		"content":          Object("field values", nil),
		"pageInstructions": Array("page operations", &Schema{Type: "object"}),
		"count":            Integer("row count"),
		"flag":             Boolean("a flag"),
	}, "caseID")

	require.NoError(t, s.Validate())
}

func TestValidateRejectsNonObjectTopLevel(t *testing.T) {
	t.Parallel()

	err := String("not an object").Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type object")
}

func TestValidateRejectsUndeclaredRequired(t *testing.T) {
	t.Parallel()

	s := Object("", map[string]*Schema{
		"caseID": String("handle"),
	}, "caseID", "actionID")

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required field "actionID"`)
}

func TestValidateRejectsUntypedProperty(t *testing.T) {
	t.Parallel()

	s := Object("", map[string]*Schema{
		"blob": {Description: "no type"},
	})
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no type")
}

func TestValidateRejectsNilSchema(t *testing.T) {
	t.Parallel()

	var s *Schema
	require.Error(t, s.Validate())
}

func TestJSONSchemaConversion(t *testing.T) {
	t.Parallel()

	s := Object("root", map[string]*Schema{
		"viewType": StringEnum("level", "form", "page"),
		"rows":     Array("entries", &Schema{Type: "object"}),
	}, "viewType")

	js := s.JSONSchema()
	require.NotNil(t, js)
	assert.Equal(t, "object", js.Type)
	assert.Equal(t, []string{"viewType"}, js.Required)

	vt := js.Properties["viewType"]
	require.NotNil(t, vt)
	assert.Equal(t, "string", vt.Type)
	assert.Equal(t, []any{"form", "page"}, vt.Enum)

	rows := js.Properties["rows"]
	require.NotNil(t, rows)
	assert.Equal(t, "array", rows.Type)
	require.NotNil(t, rows.Items)
	assert.Equal(t, "object", rows.Items.Type)
}

func TestCheckNoTypeUnion(t *testing.T) {
	t.Parallel()

	require.NoError(t, checkNoTypeUnion([]byte(`{"type":"object","properties":{"a":{"type":"string"}}}`)))

	err := checkNoTypeUnion([]byte(`{"type":"object","properties":{"a":{"type":"string","anyOf":[{"type":"number"}]}}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anyOf")

	// Union nodes nested inside arrays are found too.
	err = checkNoTypeUnion([]byte(`{"allOf":[{"type":"string","oneOf":[{"type":"number"}]}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneOf")
}

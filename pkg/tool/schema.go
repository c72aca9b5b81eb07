// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	santhosh "github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is the small tagged structure tools declare their inputs with. The
// registry validates it once at startup and converts it to the wire form on
// demand; tools never hand raw JSON blobs to the transport.
type Schema struct {
	Type        string
	Description string
	Enum        []string
	Default     any
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
}

// Object is shorthand for an object schema with the given properties.
func Object(description string, properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:        "object",
		Description: description,
		Properties:  properties,
		Required:    required,
	}
}

// String is shorthand for a string property.
func String(description string) *Schema {
	return &Schema{Type: "string", Description: description}
}

// StringEnum is shorthand for a string property restricted to the allowed
// values.
func StringEnum(description string, allowed ...string) *Schema {
	return &Schema{Type: "string", Description: description, Enum: allowed}
}

// Boolean is shorthand for a boolean property.
func Boolean(description string) *Schema {
	return &Schema{Type: "boolean", Description: description}
}

// Integer is shorthand for an integer property.
func Integer(description string) *Schema {
	return &Schema{Type: "integer", Description: description}
}

// Array is shorthand for an array property.
func Array(description string, items *Schema) *Schema {
	return &Schema{Type: "array", Description: description, Items: items}
}

// JSONSchema converts the tagged schema to the wire form published in
// tools/list responses.
func (s *Schema) JSONSchema() *jsonschema.Schema {
	if s == nil {
		return nil
	}
	out := &jsonschema.Schema{
		Type:        s.Type,
		Description: s.Description,
		Required:    s.Required,
		Items:       s.Items.JSONSchema(),
	}
	for _, v := range s.Enum {
		out.Enum = append(out.Enum, v)
	}
	if s.Default != nil {
		if raw, err := json.Marshal(s.Default); err == nil {
			out.Default = json.RawMessage(raw)
		}
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*jsonschema.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.JSONSchema()
		}
	}
	return out
}

// Validate checks the schema strictly: the wire form must compile as a JSON
// Schema, every required name must be a declared property, and no node may
// declare both type and anyOf/oneOf at the same level.
func (s *Schema) Validate() error {
	if s == nil {
		return fmt.Errorf("schema is nil")
	}
	if s.Type != "object" {
		return fmt.Errorf("top-level schema must have type object, got %q", s.Type)
	}
	if err := s.validateNode(""); err != nil {
		return err
	}

	raw, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return fmt.Errorf("schema does not serialize: %w", err)
	}
	doc, err := santhosh.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("schema is not valid JSON: %w", err)
	}
	compiler := santhosh.NewCompiler()
	if err := compiler.AddResource("inline://input-schema.json", doc); err != nil {
		return fmt.Errorf("schema rejected by compiler: %w", err)
	}
	if _, err := compiler.Compile("inline://input-schema.json"); err != nil {
		return fmt.Errorf("schema failed strict compilation: %w", err)
	}
	return checkNoTypeUnion(raw)
}

func (s *Schema) validateNode(path string) error {
	for _, name := range s.Required {
		if _, ok := s.Properties[name]; !ok {
			return fmt.Errorf("required field %q at %q is not a declared property", name, path)
		}
	}
	for name, prop := range s.Properties {
		if prop == nil {
			return fmt.Errorf("property %q at %q has a nil schema", name, path)
		}
		if prop.Type == "" {
			return fmt.Errorf("property %q at %q has no type", name, path)
		}
		if err := prop.validateNode(path + "/" + name); err != nil {
			return err
		}
	}
	if s.Items != nil {
		if err := s.Items.validateNode(path + "/items"); err != nil {
			return err
		}
	}
	return nil
}

// checkNoTypeUnion walks the serialized schema and rejects any node that
// declares both type and anyOf/oneOf, which some MCP clients cannot consume.
func checkNoTypeUnion(raw []byte) error {
	var node any
	if err := json.Unmarshal(raw, &node); err != nil {
		return err
	}
	return walkTypeUnion(node, "")
}

func walkTypeUnion(node any, path string) error {
	if list, ok := node.([]any); ok {
		for i, child := range list {
			if err := walkTypeUnion(child, fmt.Sprintf("%s/%d", path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	if _, hasType := obj["type"]; hasType {
		if _, has := obj["anyOf"]; has {
			return fmt.Errorf("schema node at %q declares both type and anyOf", path)
		}
		if _, has := obj["oneOf"]; has {
			return fmt.Errorf("schema node at %q declares both type and oneOf", path)
		}
	}
	for key, child := range obj {
		if err := walkTypeUnion(child, path+"/"+key); err != nil {
			return err
		}
	}
	return nil
}

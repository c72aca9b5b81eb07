// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcpany/dx-gateway/pkg/client"
	"github.com/mcpany/dx-gateway/pkg/config"
	"github.com/mcpany/dx-gateway/pkg/dxerror"
	"github.com/mcpany/dx-gateway/pkg/format"
	"github.com/mcpany/dx-gateway/pkg/logging"
)

// Require checks that every named argument is present and non-empty. It
// returns a validation error result naming the first offender, or nil when
// all are present. Validation runs before any network activity.
func Require(args map[string]any, names ...string) *Result {
	for _, name := range names {
		v, ok := args[name]
		if !ok || v == nil {
			return ValidationError("missing required argument %q", name)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return ValidationError("required argument %q is empty", name)
		}
	}
	return nil
}

// CheckEnum verifies that the named argument, when supplied, is one of the
// allowed values. It returns a validation error result on the first
// violation, or nil.
func CheckEnum(args map[string]any, field string, allowed ...string) *Result {
	v, ok := args[field]
	if !ok || v == nil {
		return nil
	}
	s, isString := v.(string)
	if !isString {
		return ValidationError("argument %q must be a string", field)
	}
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return ValidationError("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), s)
}

// ValidationError builds the short {error} envelope for pre-validation
// failures. These never reach the upstream.
func ValidationError(formatStr string, args ...any) *Result {
	return &Result{Text: fmt.Sprintf(formatStr, args...), IsError: true}
}

// StringArg returns the named argument as a trimmed string, or "" when
// absent or not a string.
func StringArg(args map[string]any, name string) string {
	if s, ok := args[name].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// BoolArg returns the named argument as a bool, defaulting to def.
func BoolArg(args map[string]any, name string, def bool) bool {
	if b, ok := args[name].(bool); ok {
		return b
	}
	return def
}

// IntArg returns the named argument as an int, defaulting to def. JSON
// numbers arrive as float64.
func IntArg(args map[string]any, name string, def int) int {
	if f, ok := args[name].(float64); ok {
		return int(f)
	}
	return def
}

// MapArg returns the named argument as an object, or nil.
func MapArg(args map[string]any, name string) map[string]any {
	m, _ := args[name].(map[string]any)
	return m
}

// SliceArg returns the named argument as an array, or nil.
func SliceArg(args map[string]any, name string) []any {
	s, _ := args[name].([]any)
	return s
}

// CaseContentArgs extracts the shared write-body arguments (content,
// pageInstructions, attachments) from args.
func CaseContentArgs(args map[string]any) *client.CaseContent {
	return &client.CaseContent{
		Content:          MapArg(args, "content"),
		PageInstructions: SliceArg(args, "pageInstructions"),
		Attachments:      SliceArg(args, "attachments"),
	}
}

// SessionCredentialsArg decodes the optional per-invocation credential
// override accepted by every tool. A malformed override is a validation
// error; a missing one returns nil.
func SessionCredentialsArg(args map[string]any) (*config.SessionCredentials, *Result) {
	raw, ok := args["sessionCredentials"]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, isMap := raw.(map[string]any)
	if !isMap {
		return nil, ValidationError("sessionCredentials must be an object")
	}
	encoded, err := json.Marshal(obj)
	if err != nil {
		return nil, ValidationError("sessionCredentials is not serializable: %v", err)
	}
	var creds config.SessionCredentials
	if err := json.Unmarshal(encoded, &creds); err != nil {
		return nil, ValidationError("sessionCredentials has invalid fields: %v", err)
	}
	return &creds, nil
}

// SessionCredentialsSchema is the shared schema fragment for the
// sessionCredentials argument.
func SessionCredentialsSchema() *Schema {
	return Object("Optional per-invocation credential override; fields not supplied fall through to the process defaults.", map[string]*Schema{
		"baseUrl":      String("DX API base URL for this invocation only."),
		"tokenUrl":     String("OAuth2 token endpoint; derived from baseUrl when omitted."),
		"clientId":     String("OAuth2 client ID."),
		"clientSecret": String("OAuth2 client secret."),
	})
}

// CallFunc is the upstream call a tool wraps with the uniform error
// envelope.
type CallFunc func() (*client.Result, *dxerror.Error)

// SuccessFormatter renders a successful upstream result; nil falls back to
// the shaper's generic success rendering.
type SuccessFormatter func(res *client.Result) string

// WithErrorHandling invokes call and shapes its outcome: successes through
// the success formatter, tagged failures through the error shaper, and any
// unexpected panic into a fallback internal error result. Nothing escapes to
// the dispatcher.
func WithErrorHandling(op string, fctx *format.Context, call CallFunc, success SuccessFormatter) (result *Result) {
	defer func() {
		if r := recover(); r != nil {
			logging.GetLogger().Error("tool panicked", "operation", op, "panic", r)
			err := dxerror.New(dxerror.KindInternalServerError, "unexpected failure while executing %s: %v", op, r)
			result = &Result{Text: format.Error(op, err, fctx)}
		}
	}()

	res, derr := call()
	if derr != nil {
		return &Result{Text: format.Error(op, derr, fctx)}
	}
	if success != nil {
		return &Result{Text: success(res)}
	}
	return &Result{Text: format.Success(op, res.Data, res.ETag, fctx)}
}

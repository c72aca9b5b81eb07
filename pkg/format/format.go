// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

// Package format is the response shaper: it turns upstream payloads and
// domain errors into the uniform Markdown shape returned to the transport.
// Both entry points are pure functions so their output can be snapshot
// tested.
package format

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/mcpany/dx-gateway/pkg/dxerror"
)

// Context carries per-invocation formatting hints. It never influences what
// the gateway does, only how results read.
type Context struct {
	SessionID       string
	AuthMode        string
	ConfigSource    string
	AutoFetchedETag bool
}

// notAvailable is rendered for absent fields; "undefined" must never appear.
const notAvailable = "N/A"

// Success produces the Markdown document for a successful operation. The
// first line is a level-two heading naming the operation; salient fields of
// the payload follow, then the new eTag for chaining when present.
func Success(op string, data map[string]any, eTag string, fctx *Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n", op)

	if caseInfo, ok := asMap(data["caseInfo"]); ok {
		writeCaseInfo(&b, caseInfo)
	}
	if next, ok := asMap(data["nextAssignmentInfo"]); ok {
		b.WriteString("\n### Next Assignment\n")
		writeKeyValues(&b, next, []string{"ID", "className", "context"})
	}
	if note, ok := data["confirmationNote"].(string); ok && note != "" {
		fmt.Fprintf(&b, "\n> %s\n", note)
	}
	writeScalarFields(&b, data)
	writeDataSection(&b, data)
	writeListSection(&b, "Case Types", data["caseTypes"], []string{"name", "ID"})
	writeListSection(&b, "Stages", data["stages"], []string{"name", "ID", "type", "visited_status"})
	writeListSection(&b, "Attachments", data["attachments"], []string{"name", "ID", "type", "category", "mimeType"})
	if _, ok := asMap(data["uiResources"]); ok {
		b.WriteString("\n_UI resources included in the response._\n")
	}
	if raw, ok := data["raw"].(string); ok && raw != "" {
		fmt.Fprintf(&b, "\n```\n%s\n```\n", strings.TrimSpace(raw))
	}

	if eTag != "" {
		fmt.Fprintf(&b, "\n**eTag:** `%s`\n", eTag)
	}
	if fctx != nil && fctx.AutoFetchedETag {
		b.WriteString("\n_The eTag was fetched automatically before the write (auto_fetched_etag=true)._\n")
	}
	if fctx != nil && fctx.AuthMode == "session" {
		b.WriteString("\n_Executed with session-scoped credentials._\n")
	}
	return b.String()
}

// Error produces the Markdown document for a failed operation: an error
// heading, the error kind and upstream message, per-kind remediation
// guidance, and any upstream error details.
func Error(op string, err *dxerror.Error, fctx *Context) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## ❌ %s failed\n", op)
	fmt.Fprintf(&b, "\n**Error kind:** `%s`\n", err.Kind)
	message := err.Message
	if message == "" {
		message = notAvailable
	}
	fmt.Fprintf(&b, "\n**Message:** %s\n", message)
	if err.Status != 0 {
		fmt.Fprintf(&b, "\n**HTTP status:** %d\n", err.Status)
	}

	if len(err.Details) > 0 {
		b.WriteString("\n### Details\n")
		for _, d := range err.Details {
			msg := d.Message
			if d.LocalizedValue != "" {
				msg = d.LocalizedValue
			}
			if msg == "" {
				msg = notAvailable
			}
			if d.ValidationPath != "" {
				fmt.Fprintf(&b, "- `%s`: %s\n", d.ValidationPath, msg)
			} else {
				fmt.Fprintf(&b, "- %s\n", msg)
			}
		}
	}

	if steps := remediation(err.Kind); len(steps) > 0 {
		b.WriteString("\n### Suggested next steps\n")
		for _, step := range steps {
			fmt.Fprintf(&b, "- %s\n", step)
		}
	}
	if fctx != nil && fctx.AuthMode == "session" {
		b.WriteString("\n_Executed with session-scoped credentials._\n")
	}
	return b.String()
}

// remediation returns the kind-specific guidance list.
func remediation(kind dxerror.Kind) []string {
	switch kind {
	case dxerror.KindInvalidArgument:
		return []string{"Check the tool's input schema and supply every required field with an allowed value."}
	case dxerror.KindConfigInvalid:
		return []string{"Configure the DX connection: base URL, client ID, and client secret (or supply sessionCredentials)."}
	case dxerror.KindAuthFailed:
		return []string{
			"Verify the OAuth2 client ID and secret.",
			"Verify the token URL points at the DX server's token endpoint.",
		}
	case dxerror.KindUnauthorized:
		return []string{"The credentials were rejected even after a token refresh; verify the client's access role in the application."}
	case dxerror.KindForbidden:
		return []string{"The authenticated operator lacks permission for this operation."}
	case dxerror.KindNotFound:
		return []string{"Verify the identifier; the entity may have been resolved, deleted, or never existed."}
	case dxerror.KindPreconditionFailed:
		return []string{
			"The entity changed since the eTag was obtained.",
			"Re-read the entity (or omit eTag to auto-fetch a fresh one) and retry the action.",
		}
	case dxerror.KindConflict:
		return []string{"The request conflicts with the entity's current state; re-read it and reconcile before retrying."}
	case dxerror.KindValidationFail:
		return []string{"The upstream rejected the submitted field values; correct the fields listed in the details and retry."}
	case dxerror.KindLocked:
		return []string{"Another operator holds a lock on this entity; retry after the lock is released."}
	case dxerror.KindTimeout:
		return []string{"The upstream did not answer within the deadline; check connectivity and consider raising --request-timeout."}
	case dxerror.KindConnectionError:
		return []string{"The DX server could not be reached; verify the base URL and network path."}
	case dxerror.KindETagFetchFailed:
		return []string{"The preliminary read to obtain the current eTag failed; the write was not attempted. Fix the read error and retry."}
	case dxerror.KindETagMissing:
		return []string{"The read returned no eTag; supply one explicitly if the entity supports conditional writes."}
	default:
		return nil
	}
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && len(m) > 0
}

// writeCaseInfo renders the standard case summary block.
func writeCaseInfo(b *strings.Builder, caseInfo map[string]any) {
	b.WriteString("\n### Case\n")
	writeKeyValues(b, caseInfo, []string{"ID", "businessID", "caseTypeName", "status", "stageLabel", "urgency", "createTime", "lastUpdateTime"})
	writeListSection(b, "Assignments", caseInfo["assignments"], []string{"name", "ID", "processName", "assigneeInfo"})
	writeListSection(b, "Available Actions", caseInfo["availableActions"], []string{"name", "ID", "type"})
}

// writeKeyValues renders selected keys of m as a bullet list, in the given
// order, falling back to N/A for absent values.
func writeKeyValues(b *strings.Builder, m map[string]any, keys []string) {
	for _, key := range keys {
		fmt.Fprintf(b, "- **%s:** %s\n", key, scalar(m[key]))
	}
}

// writeListSection renders a list payload as a section of bullet lines built
// from the named fields of each entry.
func writeListSection(b *strings.Builder, title string, v any, fields []string) {
	list, ok := v.([]any)
	if !ok || len(list) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n", title)
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			fmt.Fprintf(b, "- %s\n", scalar(item))
			continue
		}
		parts := lo.FilterMap(fields, func(f string, _ int) (string, bool) {
			val, present := entry[f]
			if !present {
				return "", false
			}
			return fmt.Sprintf("%s: %s", f, scalar(val)), true
		})
		if len(parts) == 0 {
			parts = sortedPairs(entry)
		}
		fmt.Fprintf(b, "- %s\n", strings.Join(parts, ", "))
	}
}

// sectionKeys are top-level payload fields with dedicated rendering; anything
// else scalar is listed generically.
var sectionKeys = map[string]bool{
	"caseInfo":           true,
	"nextAssignmentInfo": true,
	"confirmationNote":   true,
	"data":               true,
	"caseTypes":          true,
	"stages":             true,
	"attachments":        true,
	"uiResources":        true,
	"raw":                true,
}

// writeScalarFields renders the remaining top-level scalar fields of the
// payload, in key order.
func writeScalarFields(b *strings.Builder, data map[string]any) {
	keys := lo.Keys(data)
	sort.Strings(keys)
	wrote := false
	for _, k := range keys {
		if sectionKeys[k] {
			continue
		}
		switch data[k].(type) {
		case map[string]any, []any:
			continue
		}
		if !wrote {
			b.WriteString("\n")
			wrote = true
		}
		fmt.Fprintf(b, "- **%s:** %s\n", k, scalar(data[k]))
	}
}

// writeDataSection summarizes list data view payloads.
func writeDataSection(b *strings.Builder, data map[string]any) {
	list, ok := data["data"].([]any)
	if !ok {
		return
	}
	fmt.Fprintf(b, "\n### Data (%d rows)\n", len(list))
	for i, item := range list {
		if i >= 25 {
			fmt.Fprintf(b, "- … %d more rows\n", len(list)-i)
			break
		}
		entry, ok := item.(map[string]any)
		if !ok {
			fmt.Fprintf(b, "- %s\n", scalar(item))
			continue
		}
		fmt.Fprintf(b, "- %s\n", strings.Join(sortedPairs(entry), ", "))
	}
}

// sortedPairs renders every scalar field of entry in key order, so output is
// deterministic regardless of map iteration.
func sortedPairs(entry map[string]any) []string {
	keys := lo.Keys(entry)
	sort.Strings(keys)
	var parts []string
	for _, k := range keys {
		switch entry[k].(type) {
		case map[string]any, []any:
			continue
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", k, scalar(entry[k])))
		}
	}
	return parts
}

// scalar renders a single value, substituting N/A for absent ones.
func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return notAvailable
	case string:
		if val == "" {
			return notAvailable
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case map[string]any:
		return strings.Join(sortedPairs(val), ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

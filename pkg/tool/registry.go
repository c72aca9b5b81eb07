// Copyright 2025 Author(s) of DX Gateway
// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"fmt"
	"regexp"
	"sort"
	"sync/atomic"

	"github.com/samber/lo"

	"github.com/mcpany/dx-gateway/pkg/logging"
)

// namePattern constrains tool names to identifier-safe strings.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// tables is the immutable index a Registry serves lookups from. Reload swaps
// the whole value atomically so concurrent dispatch never observes a
// half-built registry.
type tables struct {
	byName     map[string]Tool
	byCategory map[string][]string
	order      []string
}

// Registry indexes tools by name and category. It is populated once at
// startup and read-only thereafter except for Reload's atomic swap.
type Registry struct {
	table   atomic.Pointer[tables]
	factory func() ([]Tool, error)
}

// NewRegistry builds a registry from the factory's tools. Every descriptor is
// strictly validated and duplicate names are rejected; any failure aborts
// initialization (the caller exits non-zero).
func NewRegistry(factory func() ([]Tool, error)) (*Registry, error) {
	r := &Registry{factory: factory}
	t, err := r.build()
	if err != nil {
		return nil, err
	}
	r.table.Store(t)
	r.logStats()
	return r, nil
}

func (r *Registry) build() (*tables, error) {
	tools, err := r.factory()
	if err != nil {
		return nil, fmt.Errorf("tool construction failed: %w", err)
	}

	t := &tables{
		byName:     make(map[string]Tool, len(tools)),
		byCategory: make(map[string][]string),
	}
	for _, tl := range tools {
		def := tl.Definition()
		if def == nil {
			return nil, fmt.Errorf("a tool returned a nil definition")
		}
		if !namePattern.MatchString(def.Name) {
			return nil, fmt.Errorf("tool name %q is not identifier-safe", def.Name)
		}
		if _, exists := t.byName[def.Name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", def.Name)
		}
		if def.Category == "" {
			return nil, fmt.Errorf("tool %q has no category", def.Name)
		}
		if err := def.InputSchema.Validate(); err != nil {
			return nil, fmt.Errorf("tool %q has an invalid input schema: %w", def.Name, err)
		}
		t.byName[def.Name] = tl
		t.byCategory[def.Category] = append(t.byCategory[def.Category], def.Name)
	}

	t.order = lo.Keys(t.byName)
	sort.Strings(t.order)
	for _, names := range t.byCategory {
		sort.Strings(names)
	}
	return t, nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	tl, ok := r.table.Load().byName[name]
	return tl, ok
}

// ListNames returns every tool name in sorted order.
func (r *Registry) ListNames() []string {
	order := r.table.Load().order
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Definitions returns every descriptor in stable (sorted-name) order.
func (r *Registry) Definitions() []*Definition {
	t := r.table.Load()
	defs := make([]*Definition, 0, len(t.order))
	for _, name := range t.order {
		defs = append(defs, t.byName[name].Definition())
	}
	return defs
}

// Category returns the sorted tool names of one category.
func (r *Registry) Category(category string) []string {
	names := r.table.Load().byCategory[category]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.table.Load().order)
}

// Reload rebuilds the index from the factory and atomically swaps it in.
// On failure the previous index stays live.
func (r *Registry) Reload() error {
	t, err := r.build()
	if err != nil {
		return err
	}
	r.table.Store(t)
	r.logStats()
	return nil
}

func (r *Registry) logStats() {
	t := r.table.Load()
	log := logging.GetLogger()
	for _, category := range lo.Keys(t.byCategory) {
		log.Info("registered tools", "category", category, "count", len(t.byCategory[category]))
	}
	log.Info("tool registry ready", "tools", len(t.order), "categories", len(t.byCategory))
}

package layout

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// FieldPolicy decides what happens to fields an update does not name.
type FieldPolicy int

const (
	// PatchSubset leaves unlisted fields untouched.
	PatchSubset FieldPolicy = iota
	// ReplaceFieldSet removes every field the update does not name.
	ReplaceFieldSet
)

// ParseFieldPolicy accepts "patch" (or "subset", or empty) and "replace".
func ParseFieldPolicy(s string) (FieldPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "patch", "subset":
		return PatchSubset, nil
	case "replace":
		return ReplaceFieldSet, nil
	}
	return PatchSubset, fmt.Errorf("unknown field policy %q (want patch or replace)", s)
}

func (p FieldPolicy) String() string {
	if p == ReplaceFieldSet {
		return "replace"
	}
	return "patch"
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithFieldPolicy sets the policy for fields an update does not name.
func WithFieldPolicy(policy FieldPolicy) Option {
	return func(p *Patcher) { p.policy = policy }
}

// WithSkipApplied makes textual merges skip a field whose value already ends
// with the update, so applying the same spec twice changes nothing.
func WithSkipApplied(skip bool) Option {
	return func(p *Patcher) { p.skipApplied = skip }
}

// WithLogger sets the logger used for match counts.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Patcher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Patcher rewrites fields of named components anywhere in a route's tree.
// It performs no I/O and holds no per-document state.
type Patcher struct {
	policy      FieldPolicy
	skipApplied bool
	logger      *zap.Logger
}

// NewPatcher returns a Patcher. By default it patches a subset of fields and
// appends to textual values on every call.
func NewPatcher(opts ...Option) *Patcher {
	p := &Patcher{policy: PatchSubset, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply runs PatchRoute for every component name in spec, in name order.
func (p *Patcher) Apply(route *Route, spec UpdateSpec) {
	if route == nil {
		return
	}
	for _, name := range sortedKeys(spec) {
		p.PatchRoute(route, name, spec[name])
	}
}

// PatchRoute applies updates to every component named componentName, at any
// depth. The match is exact and case-sensitive. Zero matches is not an error.
func (p *Patcher) PatchRoute(route *Route, componentName string, updates FieldUpdates) {
	if route == nil {
		return
	}
	matches := 0
	Walk(route, func(c *Component) {
		if c.Name != componentName {
			return
		}
		p.PatchComponent(c, updates)
		matches++
	})
	p.logger.Debug("patched route",
		zap.String("item_id", route.ItemID),
		zap.String("component", componentName),
		zap.Int("matches", matches))
}

// PatchComponent applies updates to a single component.
//
// For each update the existing field is looked up case-insensitively and read
// as the declared kind. When a value is read, textual kinds append the new
// value after one space and other kinds replace it; otherwise the new value is
// written as is. The result is stored as a fresh field under the existing
// name, or under the update's name for a new field.
//
// A nil kind or a value the kind rejects is a programming error and panics.
func (p *Patcher) PatchComponent(c *Component, updates FieldUpdates) {
	if c == nil {
		return
	}
	if c.Fields == nil {
		c.Fields = Fields{}
	}
	if p.policy == ReplaceFieldSet {
		keep := make(map[string]struct{}, len(updates))
		for name := range updates {
			keep[strings.ToLower(name)] = struct{}{}
		}
		c.Fields.retain(keep)
	}

	for _, name := range sortedKeys(updates) {
		u := updates[name]
		value, err := u.normalized()
		if err != nil {
			panic(fmt.Sprintf("layout: component %q field %q: %v", c.Name, name, err))
		}

		key, existing, found := c.Fields.Lookup(name)
		if !found {
			key = name
		}
		if found {
			if current, ok := u.Kind.read(existing); ok {
				if p.skipApplied && u.Kind.applied(current, value) {
					continue
				}
				value = u.Kind.merge(current, value)
			}
		}
		c.Fields.Set(key, u.Kind.write(value, existing, found))
	}
}

package layout

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidUpdate reports a malformed update specification.
var ErrInvalidUpdate = errors.New("layout: invalid update")

// Update is the new value of one field together with its declared kind.
type Update struct {
	Value any
	Kind  Kind
}

// FieldUpdates maps a field name to its update.
type FieldUpdates map[string]Update

// UpdateSpec maps a component name to the field updates applied to every
// component of that name.
type UpdateSpec map[string]FieldUpdates

// Validate checks that every update names a kind and carries a value that
// kind accepts.
func (fu FieldUpdates) Validate() error {
	for _, name := range sortedKeys(fu) {
		if name == "" {
			return fmt.Errorf("%w: empty field name", ErrInvalidUpdate)
		}
		if _, err := fu[name].normalized(); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidUpdate, name, err)
		}
	}
	return nil
}

// Validate checks every component's updates.
func (s UpdateSpec) Validate() error {
	for _, component := range sortedKeys(s) {
		if component == "" {
			return fmt.Errorf("%w: empty component name", ErrInvalidUpdate)
		}
		if err := s[component].Validate(); err != nil {
			return fmt.Errorf("component %q: %w", component, err)
		}
	}
	return nil
}

func (u Update) normalized() (any, error) {
	if u.Kind == nil {
		return nil, errors.New("missing field kind")
	}
	if u.Value == nil {
		return nil, errors.New("missing value")
	}
	return u.Kind.Normalize(u.Value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

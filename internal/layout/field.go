package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Field is a field value in its serialized form.
type Field struct {
	raw json.RawMessage
}

// NewField wraps an encoded JSON value.
func NewField(raw json.RawMessage) Field {
	return Field{raw: append(json.RawMessage(nil), raw...)}
}

// Raw returns the encoded value.
func (f Field) Raw() json.RawMessage {
	return f.raw
}

func (f Field) MarshalJSON() ([]byte, error) {
	if len(f.raw) == 0 {
		return []byte("null"), nil
	}
	return f.raw, nil
}

func (f *Field) UnmarshalJSON(b []byte) error {
	f.raw = append(f.raw[:0:0], b...)
	return nil
}

func (f Field) isObject() bool {
	trimmed := bytes.TrimSpace(f.raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// value returns the "value" member of an object-shaped field.
func (f Field) value() (json.RawMessage, bool) {
	if !f.isObject() {
		return nil, false
	}
	var o map[string]json.RawMessage
	if err := json.Unmarshal(f.raw, &o); err != nil {
		return nil, false
	}
	v, ok := o["value"]
	return v, ok
}

// Fields maps field names to values. Names compare case-insensitively.
type Fields map[string]Field

// UnmarshalJSON accepts an object, or an array whose elements are keyed
// item0, item1, ... the way GraphQL payloads are normalized.
func (fs *Fields) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		out := make(Fields, len(items))
		for i, item := range items {
			out[itemKey(i)] = NewField(item)
		}
		*fs = out
		return nil
	}
	m := map[string]Field{}
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*fs = m
	return nil
}

// Lookup finds a field by name, preferring an exact match. It returns the
// name under which the field is stored.
func (fs Fields) Lookup(name string) (string, Field, bool) {
	if f, ok := fs[name]; ok {
		return name, f, true
	}
	for _, key := range fs.names() {
		if strings.EqualFold(key, name) {
			return key, fs[key], true
		}
	}
	return "", Field{}, false
}

// Set stores f under name, dropping any entry whose name differs only in case.
func (fs Fields) Set(name string, f Field) {
	fs.Delete(name)
	fs[name] = f
}

// Delete removes every entry matching name case-insensitively.
func (fs Fields) Delete(name string) {
	for key := range fs {
		if strings.EqualFold(key, name) {
			delete(fs, key)
		}
	}
}

// retain drops every field whose name is not in keep.
func (fs Fields) retain(keep map[string]struct{}) {
	for key := range fs {
		if _, ok := keep[strings.ToLower(key)]; !ok {
			delete(fs, key)
		}
	}
}

func (fs Fields) names() []string {
	names := make([]string, 0, len(fs))
	for name := range fs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func itemKey(i int) string {
	return fmt.Sprintf("item%d", i)
}

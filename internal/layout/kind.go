package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownKind is returned by ParseKind for a name outside the closed set.
var ErrUnknownKind = errors.New("layout: unknown field kind")

// Kind is the declared type of a field value. The set is closed: every kind
// knows how to read an existing value, merge an update into it and write the
// result back in its own serialization.
type Kind interface {
	Name() string
	// Normalize converts a configured value into the form write expects.
	Normalize(v any) (any, error)

	read(f Field) (any, bool)
	merge(existing, update any) any
	applied(existing, update any) bool
	write(v any, existing Field, found bool) Field
}

// Field kinds.
var (
	Text      Kind = textKind{}
	RichText  Kind = richTextKind{}
	Hyperlink Kind = hyperlinkKind{}
	Date      Kind = dateKind{}
	Checkbox  Kind = checkboxKind{}
	Image     Kind = imageKind{}
)

// Kinds lists every field kind.
func Kinds() []Kind {
	return []Kind{Text, RichText, Hyperlink, Date, Checkbox, Image}
}

// ParseKind resolves a kind by name. Separators, case and a trailing
// "field" are ignored, so "rich_text", "RichText" and "RichTextField" agree.
func ParseKind(name string) (Kind, error) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(name))
	key = strings.TrimSuffix(key, "field")
	switch key {
	case "text":
		return Text, nil
	case "richtext":
		return RichText, nil
	case "hyperlink", "link", "generallink":
		return Hyperlink, nil
	case "date", "datetime":
		return Date, nil
	case "checkbox":
		return Checkbox, nil
	case "image":
		return Image, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// textKind is a single-line string. It is stored either bare or wrapped in
// {"value": ...}; writes keep the shape of the field being replaced.
type textKind struct{}

func (textKind) Name() string { return "text" }

func (textKind) Normalize(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("text value must be a string, got %T", v)
	}
	return s, nil
}

func (textKind) read(f Field) (any, bool) {
	return readString(f)
}

func (textKind) merge(existing, update any) any {
	return appendText(existing.(string), update.(string))
}

func (textKind) applied(existing, update any) bool {
	return textApplied(existing.(string), update.(string))
}

func (textKind) write(v any, existing Field, found bool) Field {
	if found && existing.isObject() {
		return Field{raw: mustMarshal(map[string]any{"value": v})}
	}
	return Field{raw: mustMarshal(v)}
}

// richTextKind is markup, always stored as {"value": ...}.
type richTextKind struct{}

func (richTextKind) Name() string { return "rich_text" }

func (richTextKind) Normalize(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]any:
		if s, ok := t["value"].(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("rich text value must be a string or {value: string}, got %T", v)
}

func (richTextKind) read(f Field) (any, bool) {
	return readString(f)
}

func (richTextKind) merge(existing, update any) any {
	return appendText(existing.(string), update.(string))
}

func (richTextKind) applied(existing, update any) bool {
	return textApplied(existing.(string), update.(string))
}

func (richTextKind) write(v any, _ Field, _ bool) Field {
	return wrapValue(v)
}

type hyperlinkKind struct{}

func (hyperlinkKind) Name() string { return "hyperlink" }

func (hyperlinkKind) Normalize(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return map[string]any{"href": t}, nil
	case map[string]any:
		return t, nil
	}
	return nil, fmt.Errorf("hyperlink value must be a URL or an object, got %T", v)
}

func (hyperlinkKind) read(f Field) (any, bool) {
	return readObject(f)
}

func (hyperlinkKind) merge(_, update any) any { return update }

func (hyperlinkKind) applied(_, _ any) bool { return false }

func (hyperlinkKind) write(v any, _ Field, _ bool) Field {
	return wrapValue(v)
}

type dateKind struct{}

func (dateKind) Name() string { return "date" }

func (dateKind) Normalize(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case time.Time:
		return t.UTC().Format(time.RFC3339), nil
	}
	return nil, fmt.Errorf("date value must be a string or time, got %T", v)
}

func (dateKind) read(f Field) (any, bool) {
	raw, ok := f.value()
	if !ok {
		return nil, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return s, true
}

func (dateKind) merge(_, update any) any { return update }

func (dateKind) applied(_, _ any) bool { return false }

func (dateKind) write(v any, _ Field, _ bool) Field {
	return wrapValue(v)
}

type checkboxKind struct{}

func (checkboxKind) Name() string { return "checkbox" }

func (checkboxKind) Normalize(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return nil, fmt.Errorf("checkbox value %q: %w", t, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("checkbox value must be a bool, got %T", v)
}

func (checkboxKind) read(f Field) (any, bool) {
	raw, ok := f.value()
	if !ok {
		return nil, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, false
	}
	return b, true
}

func (checkboxKind) merge(_, update any) any { return update }

func (checkboxKind) applied(_, _ any) bool { return false }

func (checkboxKind) write(v any, _ Field, _ bool) Field {
	return wrapValue(v)
}

type imageKind struct{}

func (imageKind) Name() string { return "image" }

func (imageKind) Normalize(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return map[string]any{"src": t}, nil
	case map[string]any:
		return t, nil
	}
	return nil, fmt.Errorf("image value must be a source URL or an object, got %T", v)
}

func (imageKind) read(f Field) (any, bool) {
	return readObject(f)
}

func (imageKind) merge(_, update any) any { return update }

func (imageKind) applied(_, _ any) bool { return false }

func (imageKind) write(v any, _ Field, _ bool) Field {
	return wrapValue(v)
}

// readString accepts a bare string or {"value": string}.
func readString(f Field) (any, bool) {
	raw := json.RawMessage(f.raw)
	if v, ok := f.value(); ok {
		raw = v
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return s, true
}

func readObject(f Field) (any, bool) {
	raw, ok := f.value()
	if !ok {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func wrapValue(v any) Field {
	return Field{raw: mustMarshal(map[string]any{"value": v})}
}

// appendText joins the two values with exactly one space. The existing value
// is kept as is; leading spaces of the update are dropped.
func appendText(existing, update string) string {
	return existing + " " + strings.TrimLeft(update, " ")
}

func textApplied(existing, update string) bool {
	return strings.HasSuffix(existing, " "+strings.TrimLeft(update, " "))
}

package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Document is the layout service response envelope:
// {"sitecore": {"context": ..., "route": ...}}.
type Document struct {
	Sitecore Sitecore
	extra    object
}

// Sitecore holds the opaque context blob and the component tree root.
type Sitecore struct {
	// Context is passed through byte for byte unless explicitly patched.
	Context json.RawMessage
	Route   *Route
	extra   object
}

// Route is the top of the component tree.
type Route struct {
	Name         string
	ItemID       string
	Fields       Fields
	Placeholders Placeholders
	extra        object
	// known holds the received encoding of the members above.
	known object
}

// Component is a named content node. Name is not unique within a tree.
type Component struct {
	UID          string
	Name         string
	Fields       Fields
	Placeholders Placeholders
	extra        object
	known        object
}

// Placeholders maps a placeholder name to its ordered entries.
type Placeholders map[string]Placeholder

// Placeholder is an ordered slot of components and opaque entries.
type Placeholder []Entry

// Entry is one element of a placeholder. Exactly one of Component and Raw is set.
type Entry struct {
	Component *Component
	Raw       json.RawMessage
}

// Names returns the placeholder names in sorted order.
func (ps Placeholders) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Components returns the component entries of the placeholder, in order.
func (p Placeholder) Components() []*Component {
	out := make([]*Component, 0, len(p))
	for _, e := range p {
		if e.Component != nil {
			out = append(out, e.Component)
		}
	}
	return out
}

// SetContextValue sets a top-level member of the context object, leaving
// every other member untouched. A null or absent context becomes an object.
func (s *Sitecore) SetContextValue(key string, v any) error {
	ctx := object{}
	if len(s.Context) > 0 && !isNull(s.Context) {
		if err := json.Unmarshal(s.Context, &ctx); err != nil {
			return fmt.Errorf("context is not a JSON object: %w", err)
		}
	}
	if err := ctx.put(key, v); err != nil {
		return fmt.Errorf("encode context member %q: %w", key, err)
	}
	b, err := marshal(map[string]json.RawMessage(ctx))
	if err != nil {
		return err
	}
	s.Context = b
	return nil
}

func (d *Document) UnmarshalJSON(b []byte) error {
	var o object
	if err := json.Unmarshal(b, &o); err != nil {
		return err
	}
	*d = Document{}
	if err := o.take("sitecore", &d.Sitecore); err != nil {
		return fmt.Errorf("sitecore: %w", err)
	}
	d.extra = o
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	o := d.extra.clone()
	if err := o.put("sitecore", d.Sitecore); err != nil {
		return nil, err
	}
	return marshal(map[string]json.RawMessage(o))
}

func (s *Sitecore) UnmarshalJSON(b []byte) error {
	var o object
	if err := json.Unmarshal(b, &o); err != nil {
		return err
	}
	*s = Sitecore{}
	if raw, ok := o["context"]; ok {
		s.Context = raw
		delete(o, "context")
	}
	if err := o.take("route", &s.Route); err != nil {
		return fmt.Errorf("route: %w", err)
	}
	s.extra = o
	return nil
}

func (s Sitecore) MarshalJSON() ([]byte, error) {
	o := s.extra.clone()
	if s.Context != nil {
		o["context"] = s.Context
	}
	if err := o.put("route", s.Route); err != nil {
		return nil, err
	}
	return marshal(map[string]json.RawMessage(o))
}

func (r *Route) UnmarshalJSON(b []byte) error {
	var o object
	if err := json.Unmarshal(b, &o); err != nil {
		return err
	}
	*r = Route{known: object{}}
	if err := o.takeKnown("name", &r.Name, r.known); err != nil {
		return fmt.Errorf("name: %w", err)
	}
	if err := o.takeKnown("itemId", &r.ItemID, r.known); err != nil {
		return fmt.Errorf("itemId: %w", err)
	}
	if err := o.takeKnown("fields", &r.Fields, r.known); err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	if err := o.takeKnown("placeholders", &r.Placeholders, r.known); err != nil {
		return fmt.Errorf("placeholders: %w", err)
	}
	r.extra = o
	return nil
}

func (r Route) MarshalJSON() ([]byte, error) {
	o := r.extra.clone()
	if err := o.putString("name", r.Name, r.known); err != nil {
		return nil, err
	}
	if err := o.putString("itemId", r.ItemID, r.known); err != nil {
		return nil, err
	}
	if err := o.putFieldsAndPlaceholders(r.Fields, r.Placeholders, r.known); err != nil {
		return nil, err
	}
	return marshal(map[string]json.RawMessage(o))
}

func (c *Component) UnmarshalJSON(b []byte) error {
	var o object
	if err := json.Unmarshal(b, &o); err != nil {
		return err
	}
	*c = Component{known: object{}}
	if err := o.takeKnown("uid", &c.UID, c.known); err != nil {
		return fmt.Errorf("uid: %w", err)
	}
	if err := o.take("componentName", &c.Name); err != nil {
		return fmt.Errorf("componentName: %w", err)
	}
	if err := o.takeKnown("fields", &c.Fields, c.known); err != nil {
		return fmt.Errorf("component %q fields: %w", c.Name, err)
	}
	if err := o.takeKnown("placeholders", &c.Placeholders, c.known); err != nil {
		return fmt.Errorf("component %q placeholders: %w", c.Name, err)
	}
	c.extra = o
	return nil
}

func (c Component) MarshalJSON() ([]byte, error) {
	o := c.extra.clone()
	if err := o.putString("uid", c.UID, c.known); err != nil {
		return nil, err
	}
	if err := o.put("componentName", c.Name); err != nil {
		return nil, err
	}
	if err := o.putFieldsAndPlaceholders(c.Fields, c.Placeholders, c.known); err != nil {
		return nil, err
	}
	return marshal(map[string]json.RawMessage(o))
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var probe struct {
		ComponentName *string `json:"componentName"`
	}
	if err := json.Unmarshal(b, &probe); err == nil && probe.ComponentName != nil {
		var c Component
		if err := json.Unmarshal(b, &c); err != nil {
			return err
		}
		*e = Entry{Component: &c}
		return nil
	}
	*e = Entry{Raw: append(json.RawMessage(nil), b...)}
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Component != nil {
		return e.Component.MarshalJSON()
	}
	if len(e.Raw) == 0 {
		return []byte("null"), nil
	}
	return e.Raw, nil
}

// object is a JSON object whose members stay encoded until taken.
type object map[string]json.RawMessage

// take decodes and removes a member. Absent and null members leave dst alone.
func (o object) take(key string, dst any) error {
	raw, ok := o[key]
	if !ok {
		return nil
	}
	delete(o, key)
	if isNull(raw) {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func (o object) put(key string, v any) error {
	b, err := marshal(v)
	if err != nil {
		return err
	}
	o[key] = b
	return nil
}

// takeKnown is take that also records the member's received encoding in known.
func (o object) takeKnown(key string, dst any, known object) error {
	if raw, ok := o[key]; ok {
		known[key] = raw
	}
	return o.take(key, dst)
}

// putString writes a non-empty v. An empty v is written only when the member
// was received, as the null or "" it arrived as.
func (o object) putString(key, v string, known object) error {
	if v != "" {
		return o.put(key, v)
	}
	if raw, ok := known[key]; ok {
		if isNull(raw) {
			o[key] = json.RawMessage("null")
		} else {
			o[key] = json.RawMessage(`""`)
		}
	}
	return nil
}

// putFieldsAndPlaceholders writes non-nil maps. A nil map is written back as
// null when the member was received as null.
func (o object) putFieldsAndPlaceholders(fields Fields, placeholders Placeholders, known object) error {
	if fields != nil {
		if err := o.put("fields", fields); err != nil {
			return err
		}
	} else if raw, ok := known["fields"]; ok && isNull(raw) {
		o["fields"] = json.RawMessage("null")
	}
	if placeholders != nil {
		if err := o.put("placeholders", placeholders); err != nil {
			return err
		}
	} else if raw, ok := known["placeholders"]; ok && isNull(raw) {
		o["placeholders"] = json.RawMessage("null")
	}
	return nil
}

func (o object) clone() object {
	out := make(object, len(o)+4)
	for k, v := range o {
		out[k] = v
	}
	return out
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

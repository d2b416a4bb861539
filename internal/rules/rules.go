package rules

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"layout-proxy/internal/layout"
)

// ErrInvalidRule is returned when a rules file fails validation.
var ErrInvalidRule = errors.New("rules: invalid rule")

// NowLayout renders {{.Now}} as a full date with short time, e.g.
// "Monday, June 15, 2009 1:45 PM".
const NowLayout = "Monday, January 2, 2006 3:04 PM"

// File is the YAML shape of a rules file.
type File struct {
	Rules []Rule `yaml:"rules"`
}

// Rule targets a set of route items. An empty Items list targets every route.
type Rule struct {
	Name       string                   `yaml:"name"`
	Items      []string                 `yaml:"items"`
	Components map[string]ComponentRule `yaml:"components"`
}

// ComponentRule holds the field updates for every component of one name.
type ComponentRule struct {
	UseSSR *bool                `yaml:"use_ssr"`
	Fields map[string]FieldRule `yaml:"fields"`
}

// FieldRule is a single field update. String values may contain template
// actions, rendered per request.
type FieldRule struct {
	Kind  string `yaml:"kind"`
	Value any    `yaml:"value"`
}

// Vars is the per-request data available to value templates.
type Vars struct {
	Now      time.Time
	ItemID   string
	Site     string
	Language string
}

type templateData struct {
	Now      string
	ItemID   string
	Site     string
	Language string
}

func (v Vars) data() templateData {
	now := v.Now
	if now.IsZero() {
		now = time.Now()
	}
	return templateData{
		Now:      now.Format(NowLayout),
		ItemID:   v.ItemID,
		Site:     v.Site,
		Language: v.Language,
	}
}

// Plan is what a request gets from the rules: the update specification and,
// per configured component name, whether it renders server side.
type Plan struct {
	Updates layout.UpdateSpec
	SSR     map[string]bool
	// Hybrid is set when at least one matched component opts into SSR.
	Hybrid bool
	// Rules names the rules that matched, in file order.
	Rules []string
}

// Set is a compiled, validated rules file. It is safe for concurrent use.
type Set struct {
	rules []compiledRule
}

type compiledRule struct {
	name       string
	all        bool
	items      map[string]struct{}
	components map[string]compiledComponent
}

type compiledComponent struct {
	ssr    *bool
	fields map[string]compiledField
}

type compiledField struct {
	kind  layout.Kind
	value any
	tmpl  *template.Template
}

// Load reads and compiles a rules file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	set, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return set, nil
}

// Parse compiles rules from YAML. Every value is checked against its kind,
// so a Set that loads never produces an invalid update.
func Parse(data []byte) (*Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return Compile(f)
}

// Compile validates f and prepares it for Resolve.
func Compile(f File) (*Set, error) {
	set := &Set{rules: make([]compiledRule, 0, len(f.Rules))}
	for i, r := range f.Rules {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
		}
		cr, err := compileRule(name, r)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %s: %v", ErrInvalidRule, name, err)
		}
		set.rules = append(set.rules, cr)
	}
	return set, nil
}

func compileRule(name string, r Rule) (compiledRule, error) {
	cr := compiledRule{
		name:       name,
		all:        len(r.Items) == 0,
		items:      make(map[string]struct{}, len(r.Items)),
		components: make(map[string]compiledComponent, len(r.Components)),
	}
	for _, item := range r.Items {
		id := CanonicalID(item)
		if id == "" {
			return cr, errors.New("blank item id")
		}
		cr.items[id] = struct{}{}
	}
	for component, c := range r.Components {
		if strings.TrimSpace(component) == "" {
			return cr, errors.New("empty component name")
		}
		cc := compiledComponent{ssr: c.UseSSR, fields: make(map[string]compiledField, len(c.Fields))}
		for field, fr := range c.Fields {
			if strings.TrimSpace(field) == "" {
				return cr, fmt.Errorf("component %s: empty field name", component)
			}
			cf, err := compileField(fr)
			if err != nil {
				return cr, fmt.Errorf("component %s field %s: %w", component, field, err)
			}
			cc.fields[field] = cf
		}
		cr.components[component] = cc
	}
	return cr, nil
}

func compileField(fr FieldRule) (compiledField, error) {
	kind, err := layout.ParseKind(fr.Kind)
	if err != nil {
		return compiledField{}, err
	}
	if fr.Value == nil {
		return compiledField{}, errors.New("missing value")
	}
	cf := compiledField{kind: kind}
	if s, ok := fr.Value.(string); ok && strings.Contains(s, "{{") {
		tmpl, err := template.New("value").Option("missingkey=error").Parse(s)
		if err != nil {
			return compiledField{}, fmt.Errorf("failed to parse value template: %w", err)
		}
		cf.tmpl = tmpl
		// A trial render catches unknown variables and kind mismatches now.
		if _, err := cf.render(Vars{Now: time.Now()}.data()); err != nil {
			return compiledField{}, err
		}
		return cf, nil
	}
	v, err := kind.Normalize(fr.Value)
	if err != nil {
		return compiledField{}, err
	}
	cf.value = v
	return cf, nil
}

func (cf compiledField) render(data templateData) (any, error) {
	if cf.tmpl == nil {
		return cf.value, nil
	}
	var buf bytes.Buffer
	if err := cf.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render value template: %w", err)
	}
	return cf.kind.Normalize(buf.String())
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Resolve builds the plan for a route item. It returns nil when no rule
// targets the item; callers then leave the document alone.
func (s *Set) Resolve(itemID string, vars Vars) (*Plan, error) {
	if s == nil {
		return nil, nil
	}
	id := CanonicalID(itemID)
	if vars.ItemID == "" {
		vars.ItemID = id
	}
	data := vars.data()

	var plan *Plan
	for _, r := range s.rules {
		if !r.targets(id) {
			continue
		}
		if plan == nil {
			plan = &Plan{Updates: layout.UpdateSpec{}, SSR: map[string]bool{}}
		}
		plan.Rules = append(plan.Rules, r.name)
		for component, cc := range r.components {
			updates, ok := plan.Updates[component]
			if !ok {
				updates = layout.FieldUpdates{}
				plan.Updates[component] = updates
			}
			for field, cf := range cc.fields {
				v, err := cf.render(data)
				if err != nil {
					return nil, fmt.Errorf("rule %s component %s field %s: %w", r.name, component, field, err)
				}
				updates[field] = layout.Update{Value: v, Kind: cf.kind}
			}
			useSSR := cc.ssr != nil && *cc.ssr
			if cc.ssr != nil || !ok {
				plan.SSR[component] = useSSR
			}
			if useSSR {
				plan.Hybrid = true
			}
		}
	}
	return plan, nil
}

func (r compiledRule) targets(id string) bool {
	if r.all {
		return true
	}
	if id == "" {
		return false
	}
	_, ok := r.items[id]
	return ok
}

// CanonicalID lowercases an item ID and, when it parses as a UUID (with or
// without braces), renders it in hyphenated form.
func CanonicalID(id string) string {
	id = strings.TrimSpace(id)
	if u, err := uuid.Parse(id); err == nil {
		return u.String()
	}
	return strings.ToLower(id)
}

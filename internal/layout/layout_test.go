package layout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// homeLayout is a route with a Hero at the top level, a second Hero nested in
// a container, an Agenda without a Title, an opaque entry and a footer.
const homeLayout = `{
  "sitecore": {
    "context": {"pageEditing": false, "site": {"name": "mvp-site"}, "language": "en"},
    "route": {
      "name": "home",
      "displayName": "Home",
      "itemId": "c91b1c4b-c37b-4709-b6b7-3c83053b9f0d",
      "templateName": "Page",
      "fields": {"Title": {"value": "Home"}},
      "placeholders": {
        "headless-main": [
          {"uid": "a1b2c3d4-0000-0000-0000-000000000001", "componentName": "Hero", "dataSource": "{DS-1}", "fields": {"Text": "Welcome"}, "placeholders": {}},
          {"uid": "a1b2c3d4-0000-0000-0000-000000000002", "componentName": "Container", "params": {"Styles": "wide"}, "fields": {},
           "placeholders": {
             "container-{*}": [
               {"uid": "a1b2c3d4-0000-0000-0000-000000000003", "componentName": "Hero", "fields": {"Text": {"value": "X"}}},
               {"uid": "a1b2c3d4-0000-0000-0000-000000000004", "componentName": "Agenda", "fields": {"Date": {"value": "2024-05-01T00:00:00Z"}, "Flag": {"value": "yes"}}}
             ]
           }},
          "opaque-entry"
        ],
        "headless-footer": [
          {"uid": "a1b2c3d4-0000-0000-0000-000000000005", "componentName": "Footer", "fields": {"Copyright": {"value": "<p>2024</p>"}}}
        ]
      }
    }
  }
}`

func decodeHome(t *testing.T) *Document {
	t.Helper()
	doc, err := Decode([]byte(homeLayout))
	require.NoError(t, err)
	require.NotNil(t, doc.Sitecore.Route)
	return doc
}

func encode(t *testing.T, doc *Document) string {
	t.Helper()
	b, err := Encode(doc)
	require.NoError(t, err)
	return string(b)
}

func findComponents(route *Route, name string) []*Component {
	var out []*Component
	Walk(route, func(c *Component) {
		if c.Name == name {
			out = append(out, c)
		}
	})
	return out
}

// fieldJSON returns the decoded JSON of a component field.
func fieldJSON(t *testing.T, c *Component, name string) any {
	t.Helper()
	f, ok := c.Fields[name]
	require.True(t, ok, "field %q missing on %s", name, c.Name)
	var v any
	require.NoError(t, json.Unmarshal(f.Raw(), &v))
	return v
}

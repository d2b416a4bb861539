package layout

import "strings"

// HybridPlaceholderKey is the context member holding hybrid placeholder data.
const HybridPlaceholderKey = "hybridPlaceholderData"

// HybridEntry tells the rendering host where a component sits and whether it
// renders server side.
type HybridEntry struct {
	PlaceholderName string `json:"placeholderName"`
	UseSsr          bool   `json:"useSsr,omitempty"`
}

// HybridPlaceholderData indexes, by component uid, every component whose name
// is a key of configured; the value says whether it uses SSR. Nested
// placeholders get dynamic paths of the form /main/container-{UID}-0.
func HybridPlaceholderData(route *Route, configured map[string]bool) map[string]HybridEntry {
	out := map[string]HybridEntry{}
	if route == nil || len(configured) == 0 {
		return out
	}
	for _, name := range route.Placeholders.Names() {
		addHybrid(name, route.Placeholders[name], configured, out)
	}
	return out
}

func addHybrid(path string, ph Placeholder, configured map[string]bool, out map[string]HybridEntry) {
	for _, c := range ph.Components() {
		if useSsr, ok := configured[c.Name]; ok && c.UID != "" {
			out[c.UID] = HybridEntry{PlaceholderName: path, UseSsr: useSsr}
		}
		for _, child := range c.Placeholders.Names() {
			addHybrid(childPath(path, child, c.UID), c.Placeholders[child], configured, out)
		}
	}
}

func childPath(parent, child, uid string) string {
	return "/" + strings.TrimPrefix(parent, "/") + "/" + child + "-{" + strings.ToUpper(uid) + "}-0"
}

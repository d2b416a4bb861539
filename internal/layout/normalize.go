package layout

// NormalizeFields rewrites, in place, every "fields" member that holds an
// array into an object keyed item0, item1, ... so the tree decodes into the
// Fields map. v is a tree as produced by encoding/json (maps and slices).
// Elements of a rewritten array are not descended into.
func NormalizeFields(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for key, child := range t {
			if arr, ok := child.([]any); ok && key == "fields" {
				items := make(map[string]any, len(arr))
				for i, item := range arr {
					items[itemKey(i)] = item
				}
				t[key] = items
				continue
			}
			t[key] = NormalizeFields(child)
		}
	case []any:
		for i := range t {
			t[i] = NormalizeFields(t[i])
		}
	}
	return v
}

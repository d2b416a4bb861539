package layout

// Walk calls fn for every component under route, depth first and in pre-order.
// Placeholders are visited in name order and entries in document order. A nil
// route or a component without placeholders simply has no children.
func Walk(route *Route, fn func(*Component)) {
	if route == nil {
		return
	}
	walkPlaceholders(route.Placeholders, fn)
}

func walkPlaceholders(ps Placeholders, fn func(*Component)) {
	for _, name := range ps.Names() {
		for _, c := range ps[name].Components() {
			walkComponent(c, fn)
		}
	}
}

func walkComponent(c *Component, fn func(*Component)) {
	fn(c)
	walkPlaceholders(c.Placeholders, fn)
}

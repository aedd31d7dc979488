package atlas

// GroupByCategory buckets projects by category id. Record order is preserved
// inside each bucket; order lists the category ids by first appearance.
func GroupByCategory(projects []Project) (groups map[string][]Project, order []string) {
	groups = make(map[string][]Project)
	for _, p := range projects {
		if _, ok := groups[p.Category]; !ok {
			order = append(order, p.Category)
		}
		groups[p.Category] = append(groups[p.Category], p)
	}
	return groups, order
}

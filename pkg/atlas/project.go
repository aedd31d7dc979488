package atlas

// MaxProductImages is the number of supplementary images a project keeps.
const MaxProductImages = 3

// Tag is a filter label attached to a project. Unknown tags are kept verbatim.
type Tag string

// Known tags.
const (
	TagOfficial Tag = "official"
	TagFree     Tag = "free"
	TagPaid     Tag = "paid"
)

// Project is a single organization on the atlas.
//
// ID is unique across a record set and Category is never empty. All other
// string fields are optional and omitted from JSON/BSON when absent.
type Project struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Category string `json:"category" bson:"category"`
	Tags     []Tag  `json:"tags,omitempty" bson:"tags,omitempty"`

	Description   string   `json:"description,omitempty" bson:"description,omitempty"`
	URL           string   `json:"url,omitempty" bson:"url,omitempty"`
	GuideURL      string   `json:"guideUrl,omitempty" bson:"guide_url,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	Emoji         string   `json:"emoji,omitempty" bson:"emoji,omitempty"`
	ProductImages []string `json:"productImages,omitempty" bson:"product_images,omitempty"`
}

// HasTag reports whether the project carries tag t.
func (p Project) HasTag(t Tag) bool {
	for _, have := range p.Tags {
		if have == t {
			return true
		}
	}
	return false
}

// Dedupe returns projects with duplicate ids removed, keeping the first
// occurrence, and the number of records dropped.
func Dedupe(projects []Project) ([]Project, int) {
	seen := make(map[string]struct{}, len(projects))
	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out, len(projects) - len(out)
}

// FilterByTags returns the projects carrying every tag in tags.
// With no tags, all projects are returned.
func FilterByTags(projects []Project, tags ...Tag) []Project {
	if len(tags) == 0 {
		return projects
	}
	var out []Project
	for _, p := range projects {
		ok := true
		for _, t := range tags {
			if !p.HasTag(t) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, p)
		}
	}
	return out
}

package submit

import (
	"regexp"
	"strings"

	"github.com/matzehuels/atlas/pkg/atlas"
	"github.com/matzehuels/atlas/pkg/errors"
)

// Messages returned to submitters.
const (
	MsgNameRequired     = "Name is required"
	MsgCategoryRequired = "Valid category is required"
	MsgSubmitFailed     = "Failed to submit project"
	MsgNotConfigured    = "Server configuration error"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Draft is a project proposed by a visitor.
type Draft struct {
	Name          string      `json:"name" bson:"name"`
	Category      string      `json:"category" bson:"category"`
	Description   string      `json:"description,omitempty" bson:"description,omitempty"`
	URL           string      `json:"url,omitempty" bson:"url,omitempty"`
	GuideURL      string      `json:"guideUrl,omitempty" bson:"guide_url,omitempty"`
	ImageURL      string      `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	Emoji         string      `json:"emoji,omitempty" bson:"emoji,omitempty"`
	ProductImages []string    `json:"productImages,omitempty" bson:"product_images,omitempty"`
	Tags          []atlas.Tag `json:"tags,omitempty" bson:"tags,omitempty"`

	// Set only when Category is not a known category.
	CustomCategoryName  string `json:"customCategoryName,omitempty" bson:"custom_category_name,omitempty"`
	CustomCategoryColor string `json:"customCategoryColor,omitempty" bson:"custom_category_color,omitempty"`
}

// Custom reports whether the draft proposes a new category.
func (d Draft) Custom() bool { return d.CustomCategoryName != "" }

// Validate checks and normalizes a draft against the known categories.
//
// Name and category are required. Optional strings are trimmed and dropped
// when blank, list fields lose their blank items, and product images are
// capped at [atlas.MaxProductImages]. A category outside known keeps the
// submitted display name (or one derived from the id) and receives the
// palette color of its id unless a valid #RRGGBB color was supplied.
func Validate(d Draft, known []atlas.Category) (Draft, error) {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return Draft{}, errors.New(errors.ErrCodeInvalidInput, MsgNameRequired)
	}
	d.Category = strings.TrimSpace(d.Category)
	if err := errors.ValidateCategoryID(d.Category); err != nil {
		return Draft{}, errors.Wrap(errors.ErrCodeInvalidCategory, err, MsgCategoryRequired)
	}

	d.Description = strings.TrimSpace(d.Description)
	d.URL = strings.TrimSpace(d.URL)
	d.GuideURL = strings.TrimSpace(d.GuideURL)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	d.Emoji = strings.TrimSpace(d.Emoji)
	d.ProductImages = compact(d.ProductImages)
	if len(d.ProductImages) > atlas.MaxProductImages {
		d.ProductImages = d.ProductImages[:atlas.MaxProductImages]
	}
	d.Tags = compactTags(d.Tags)

	if isKnown(d.Category, known) {
		d.CustomCategoryName = ""
		d.CustomCategoryColor = ""
		return d, nil
	}
	d.CustomCategoryName = strings.TrimSpace(d.CustomCategoryName)
	if d.CustomCategoryName == "" {
		d.CustomCategoryName = atlas.DisplayName(d.Category)
	}
	if !hexColor.MatchString(d.CustomCategoryColor) {
		d.CustomCategoryColor = atlas.ColorFor(d.Category)
	}
	return d, nil
}

func isKnown(id string, known []atlas.Category) bool {
	for _, c := range known {
		if c.ID == id {
			return true
		}
	}
	return false
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func compactTags(in []atlas.Tag) []atlas.Tag {
	var out []atlas.Tag
	for _, t := range in {
		if s := strings.ToLower(strings.TrimSpace(string(t))); s != "" {
			out = append(out, atlas.Tag(s))
		}
	}
	return out
}

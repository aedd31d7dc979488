package layout

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/matzehuels/atlas/pkg/atlas"
)

// Item is a positioned project.
type Item struct {
	Project atlas.Project `json:"project" bson:"project"`
	// Position relative to the box's top-left corner.
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	// Position on the canvas.
	CanvasX float64 `json:"canvas_x" bson:"canvas_x"`
	CanvasY float64 `json:"canvas_y" bson:"canvas_y"`
}

// Box is a packed category container with its items.
type Box struct {
	Category atlas.Category `json:"category" bson:"category"`
	Column   int            `json:"column" bson:"column"`
	Rect     `bson:",inline"`
	ItemSize float64 `json:"item_size" bson:"item_size"`
	Items    []Item  `json:"items" bson:"items"`
}

// Layout is the computed canvas.
type Layout struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	// Boxes holds one entry per non-empty category, in packing order.
	Boxes []Box `json:"boxes" bson:"boxes"`
	// Categories is the full resolved category set, including base
	// categories without records.
	Categories []atlas.Category `json:"categories" bson:"categories"`
	// Placement strategy used for larger groups.
	Placement string `json:"placement" bson:"placement"`
}

// ItemCount returns the number of positioned projects.
func (l Layout) ItemCount() int {
	n := 0
	for _, b := range l.Boxes {
		n += len(b.Items)
	}
	return n
}

// Locate returns the canvas position of a project.
func (l Layout) Locate(projectID string) (Point, bool) {
	for _, b := range l.Boxes {
		for _, it := range b.Items {
			if it.Project.ID == projectID {
				return Point{X: it.CanvasX, Y: it.CanvasY}, true
			}
		}
	}
	return Point{}, false
}

// Box returns the box of a category.
func (l Layout) Box(categoryID string) (Box, bool) {
	for _, b := range l.Boxes {
		if b.Category.ID == categoryID {
			return b, true
		}
	}
	return Box{}, false
}

// Compute builds the full layout for projects.
//
// Duplicate project ids keep their first record. Categories are resolved
// against the base set; only categories with at least one project get a
// box. Boxes of equal height are packed in resolved category order.
func Compute(projects []atlas.Project, opts Options) (Layout, error) {
	if err := opts.Validate(); err != nil {
		return Layout{}, err
	}
	projects, _ = atlas.Dedupe(projects)

	cats := atlas.ResolveCategories(projects, atlas.BaseCategories())
	groups, _ := atlas.GroupByCategory(projects)

	var items []PackItem
	for _, c := range cats {
		if n := len(groups[c.ID]); n > 0 {
			s := BoxSize(n, opts)
			items = append(items, PackItem{ID: c.ID, Width: s.Width, Height: s.Height})
		}
	}
	packing := Pack(items, opts)
	index := atlas.CategoryIndex(cats)

	out := Layout{
		Width:      packing.Width,
		Height:     packing.Height,
		Boxes:      make([]Box, 0, len(packing.Boxes)),
		Categories: cats,
		Placement:  opts.Placement,
	}
	for _, pb := range packing.Boxes {
		members := groups[pb.ID]
		size := Size{Width: pb.Width, Height: pb.Height}
		itemSize := ItemSize(pb.Width, opts)
		pos := Place(members, size, itemSize, opts)

		box := Box{
			Category: index[pb.ID],
			Column:   pb.Column,
			Rect:     pb.Rect,
			ItemSize: itemSize,
			Items:    make([]Item, 0, len(members)),
		}
		for _, p := range members {
			pt := pos[p.ID]
			box.Items = append(box.Items, Item{
				Project: p,
				X:       pt.X,
				Y:       pt.Y,
				CanvasX: pb.X + pt.X,
				CanvasY: pb.Y + pt.Y,
			})
		}
		out.Boxes = append(out.Boxes, box)
	}
	return out, nil
}

// Fingerprint returns a content hash of the layout inputs. Equal
// fingerprints produce equal layouts.
func Fingerprint(projects []atlas.Project, opts Options) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(opts)
	_ = enc.Encode(projects)
	return hex.EncodeToString(h.Sum(nil))
}

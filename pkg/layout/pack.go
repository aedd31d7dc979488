package layout

import "slices"

// PackItem is a box waiting to be assigned a column.
type PackItem struct {
	ID     string
	Width  float64
	Height float64
}

// Rect is an axis-aligned rectangle on the canvas.
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Bottom returns the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width && y >= r.Y && y <= r.Y+r.Height
}

// Placed is a packed box.
type Placed struct {
	ID     string
	Column int
	Rect
}

// Packing is the result of [Pack].
type Packing struct {
	// Boxes in placement order (tallest first).
	Boxes  []Placed
	Width  float64
	Height float64
}

// Lookup returns the placed box for id.
func (p Packing) Lookup(id string) (Placed, bool) {
	for _, b := range p.Boxes {
		if b.ID == id {
			return b, true
		}
	}
	return Placed{}, false
}

// ColumnX returns the left edge of each column.
func ColumnX(opts Options) []float64 {
	xs := make([]float64, len(opts.Columns))
	x := opts.Padding
	for i, w := range opts.Columns {
		xs[i] = x
		x += w + opts.Gap
	}
	return xs
}

// Pack assigns boxes to columns.
//
// Boxes are sorted by descending height (stable, so equal heights keep their
// input order) and each goes into the column with the smallest running
// height, lowest index on ties. A box takes min(its width, column width).
// Column heights start at TitleHeight and advance by height + Gap.
func Pack(items []PackItem, opts Options) Packing {
	if len(opts.Columns) == 0 {
		return Packing{Width: 2 * opts.Padding, Height: opts.TitleHeight + opts.Padding}
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b PackItem) int {
		switch {
		case a.Height > b.Height:
			return -1
		case a.Height < b.Height:
			return 1
		}
		return 0
	})

	xs := ColumnX(opts)
	running := make([]float64, len(opts.Columns))
	for i := range running {
		running[i] = opts.TitleHeight
	}

	out := Packing{Boxes: make([]Placed, 0, len(sorted))}
	for _, it := range sorted {
		col := 0
		for i := 1; i < len(running); i++ {
			if running[i] < running[col] {
				col = i
			}
		}
		out.Boxes = append(out.Boxes, Placed{
			ID:     it.ID,
			Column: col,
			Rect: Rect{
				X:      xs[col],
				Y:      running[col],
				Width:  min(it.Width, opts.Columns[col]),
				Height: it.Height,
			},
		})
		running[col] += it.Height + opts.Gap
	}

	out.Height = slices.Max(running) + opts.Padding
	out.Width = 2 * opts.Padding
	for i, w := range opts.Columns {
		out.Width += w
		if i > 0 {
			out.Width += opts.Gap
		}
	}
	return out
}

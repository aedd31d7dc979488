package layout

import "math"

// Size is a width/height pair in canvas units.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// BoxSize returns the box dimensions for a category holding n items.
// n below one is treated as one, so the result never drops under the
// configured minimums and is non-decreasing in n.
func BoxSize(n int, opts Options) Size {
	n = max(n, 1)
	perRow := max(opts.ItemsPerRow, 1)
	cols := min(n, perRow)
	rows := int(math.Ceil(float64(n) / float64(perRow)))
	return Size{
		Width:  max(opts.MinWidth, float64(cols)*opts.CellWidth+opts.BoxPadX),
		Height: max(opts.MinHeight, float64(rows)*opts.CellHeight+opts.BoxPadY),
	}
}

// ItemSize returns the visual size of an item tile in a box of the given width.
func ItemSize(boxWidth float64, opts Options) float64 {
	return min(opts.MaxItemSize, max(opts.MinItemSize, boxWidth/opts.ItemSizeDivisor))
}

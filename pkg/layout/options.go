package layout

import (
	"math"

	"github.com/matzehuels/atlas/pkg/errors"
)

// Placement strategies for groups of five or more items.
const (
	PlacementGrid   = "grid"
	PlacementSample = "sample"
)

// Options controls box sizing, column packing and item placement.
// The zero value is not usable; start from [DefaultOptions].
type Options struct {
	// Box sizing
	CellWidth   float64 `json:"cell_width" toml:"cell_width"`
	CellHeight  float64 `json:"cell_height" toml:"cell_height"`
	ItemsPerRow int     `json:"items_per_row" toml:"items_per_row"`
	MinWidth    float64 `json:"min_width" toml:"min_width"`
	MinHeight   float64 `json:"min_height" toml:"min_height"`
	BoxPadX     float64 `json:"box_pad_x" toml:"box_pad_x"`
	BoxPadY     float64 `json:"box_pad_y" toml:"box_pad_y"`

	// Column packing
	Columns     []float64 `json:"columns" toml:"columns"`
	Gap         float64   `json:"gap" toml:"gap"`
	Padding     float64   `json:"padding" toml:"padding"`
	TitleHeight float64   `json:"title_height" toml:"title_height"`

	// Item placement
	ItemPad          float64 `json:"item_pad" toml:"item_pad"`
	ItemTopPad       float64 `json:"item_top_pad" toml:"item_top_pad"`
	MinItemSize      float64 `json:"min_item_size" toml:"min_item_size"`
	MaxItemSize      float64 `json:"max_item_size" toml:"max_item_size"`
	ItemSizeDivisor  float64 `json:"item_size_divisor" toml:"item_size_divisor"`
	ScatterJitter    float64 `json:"scatter_jitter" toml:"scatter_jitter"`
	GridJitter       float64 `json:"grid_jitter" toml:"grid_jitter"`
	Placement        string  `json:"placement" toml:"placement"`
	SampleAttempts   int     `json:"sample_attempts" toml:"sample_attempts"`
	FallbackAttempts int     `json:"fallback_attempts" toml:"fallback_attempts"`
	SeparationFactor float64 `json:"separation_factor" toml:"separation_factor"`
}

// DefaultOptions returns the canvas geometry used by the web atlas.
func DefaultOptions() Options {
	return Options{
		CellWidth:   110,
		CellHeight:  100,
		ItemsPerRow: 4,
		MinWidth:    240,
		MinHeight:   160,
		BoxPadX:     40,
		BoxPadY:     50,

		Columns:     []float64{300, 320, 300},
		Gap:         24,
		Padding:     40,
		TitleHeight: 90,

		ItemPad:          24,
		ItemTopPad:       45,
		MinItemSize:      38,
		MaxItemSize:      55,
		ItemSizeDivisor:  5.5,
		ScatterJitter:    0.05,
		GridJitter:       0.2,
		Placement:        PlacementGrid,
		SampleAttempts:   500,
		FallbackAttempts: 100,
		SeparationFactor: 1.0,
	}
}

// Validate checks that all dimensions are finite and non-negative.
func (o Options) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"cell_width", o.CellWidth},
		{"cell_height", o.CellHeight},
		{"min_width", o.MinWidth},
		{"min_height", o.MinHeight},
		{"box_pad_x", o.BoxPadX},
		{"box_pad_y", o.BoxPadY},
		{"gap", o.Gap},
		{"padding", o.Padding},
		{"title_height", o.TitleHeight},
		{"item_pad", o.ItemPad},
		{"item_top_pad", o.ItemTopPad},
		{"min_item_size", o.MinItemSize},
		{"max_item_size", o.MaxItemSize},
		{"scatter_jitter", o.ScatterJitter},
		{"grid_jitter", o.GridJitter},
		{"separation_factor", o.SeparationFactor},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "%s must be a finite, non-negative number", f.name)
		}
	}
	if o.ItemsPerRow < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "items_per_row must be at least 1")
	}
	if o.ItemSizeDivisor <= 0 || math.IsInf(o.ItemSizeDivisor, 0) || math.IsNaN(o.ItemSizeDivisor) {
		return errors.New(errors.ErrCodeInvalidInput, "item_size_divisor must be positive")
	}
	if o.MinItemSize > o.MaxItemSize {
		return errors.New(errors.ErrCodeInvalidInput, "min_item_size exceeds max_item_size")
	}
	if len(o.Columns) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one column is required")
	}
	for i, w := range o.Columns {
		if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "column %d width must be positive", i)
		}
	}
	switch o.Placement {
	case PlacementGrid, PlacementSample:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown placement %q (want %s or %s)", o.Placement, PlacementGrid, PlacementSample)
	}
	if o.SampleAttempts < 0 || o.FallbackAttempts < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "attempt budgets must be non-negative")
	}
	return nil
}

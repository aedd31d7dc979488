package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/atlas/pkg/errors"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"sample placement", func(o *Options) { o.Placement = PlacementSample }, false},
		{"negative gap", func(o *Options) { o.Gap = -1 }, true},
		{"nan cell", func(o *Options) { o.CellWidth = math.NaN() }, true},
		{"inf padding", func(o *Options) { o.Padding = math.Inf(1) }, true},
		{"no columns", func(o *Options) { o.Columns = nil }, true},
		{"zero column", func(o *Options) { o.Columns = []float64{300, 0} }, true},
		{"zero per row", func(o *Options) { o.ItemsPerRow = 0 }, true},
		{"zero divisor", func(o *Options) { o.ItemSizeDivisor = 0 }, true},
		{"inverted item size", func(o *Options) { o.MinItemSize = 80 }, true},
		{"unknown placement", func(o *Options) { o.Placement = "spiral" }, true},
		{"negative attempts", func(o *Options) { o.SampleAttempts = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
		})
	}
}

package layout

import "testing"

func TestBoxSize(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		n    int
		want Size
	}{
		{-3, Size{240, 160}},
		{0, Size{240, 160}},
		{1, Size{240, 160}},
		{2, Size{260, 160}},
		{4, Size{480, 160}},
		{5, Size{480, 250}},
		{20, Size{480, 550}},
	}
	for _, tt := range tests {
		if got := BoxSize(tt.n, opts); got != tt.want {
			t.Errorf("BoxSize(%d) = %+v, want %+v", tt.n, got, tt.want)
		}
	}
}

func TestBoxSizeMonotonic(t *testing.T) {
	opts := DefaultOptions()
	prev := BoxSize(0, opts)
	for n := 1; n <= 500; n++ {
		s := BoxSize(n, opts)
		if s.Width < opts.MinWidth || s.Height < opts.MinHeight {
			t.Fatalf("BoxSize(%d) = %+v below minimum", n, s)
		}
		if s.Width < prev.Width || s.Height < prev.Height {
			t.Fatalf("BoxSize(%d) = %+v shrinks from %+v", n, s, prev)
		}
		prev = s
	}
}

func TestItemSize(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		width, want float64
	}{
		{100, 38},
		{240, 240 / 5.5},
		{300, 300 / 5.5},
		{480, 55},
	}
	for _, tt := range tests {
		if got := ItemSize(tt.width, opts); got != tt.want {
			t.Errorf("ItemSize(%v) = %v, want %v", tt.width, got, tt.want)
		}
	}
}

package atlas

import "testing"

func TestHashString(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0},
		{"a", 97},
		{"ab", 3105},
		{"hello", 99162322},
		// Wraps to math.MinInt32; the absolute value must not overflow.
		{"polygenelubricants", 2147483648},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := HashString(tt.in); got != tt.want {
				t.Errorf("HashString(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestHashStringUTF16(t *testing.T) {
	// A character outside the BMP is hashed as its surrogate pair.
	got := HashString("😀")
	want := uint32(0xD83D*31 + 0xDE00)
	if got != want {
		t.Errorf("HashString(emoji) = %d, want %d", got, want)
	}
}

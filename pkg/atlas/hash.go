package atlas

import "unicode/utf16"

// HashString returns a stable 32-bit hash of s.
//
// The hash iterates UTF-16 code units computing h = h*31 + c with signed
// 32-bit wraparound and returns the absolute value, so it matches the hash
// used by the web client for palette colors and placement seeds.
func HashString(s string) uint32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(c)
	}
	if h < 0 {
		return uint32(-int64(h))
	}
	return uint32(h)
}

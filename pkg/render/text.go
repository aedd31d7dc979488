package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"unicode/utf8"
)

const (
	fontCharWidth = 0.55
	fontSizeMin   = 8.0
	fontSizeMax   = 13.0
)

// LabelFontSize returns the font size that fits text into width, clamped
// to a readable range.
func LabelFontSize(text string, width float64) float64 {
	n := max(1, utf8.RuneCountInString(text))
	return max(fontSizeMin, min(fontSizeMax, width/(float64(n)*fontCharWidth)))
}

// TruncateLabel shortens label so it fits width at fontSize, ending in "..".
func TruncateLabel(label string, width, fontSize float64) string {
	maxChars := max(3, int(width/(fontSize*fontCharWidth)))
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

// EscapeXML escapes text for use in SVG content and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WrapURL wraps the output of fn in a link when url is set.
func WrapURL(buf *bytes.Buffer, url string, fn func()) {
	if url != "" {
		fmt.Fprintf(buf, `  <a href="%s" target="_blank">`, EscapeXML(url))
	}
	fn()
	if url != "" {
		buf.WriteString("</a>\n")
	}
}

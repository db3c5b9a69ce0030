// Package layout turns caption text into wrapped, positioned, styled lines.
// It does no drawing; measurement is supplied by the caller.
package layout

import "strings"

// MeasureFunc returns the rendered width of s in pixels.
type MeasureFunc func(s string) float64

// Wrap upper-cases text and greedily packs its words into lines no wider
// than maxWidth. A word that alone exceeds maxWidth gets a line of its own
// and is never split. At least one line is always returned.
func Wrap(text string, maxWidth float64, measure MeasureFunc) []string {
	words := strings.Fields(strings.ToUpper(text))
	if len(words) == 0 {
		return []string{""}
	}

	lines := make([]string, 0, 2)
	line := words[0]
	for _, word := range words[1:] {
		candidate := line + " " + word
		if measure(candidate) > maxWidth {
			lines = append(lines, line)
			line = word
			continue
		}
		line = candidate
	}
	return append(lines, line)
}

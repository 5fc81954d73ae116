package overlay

import (
	"math"
	"strings"
	"unicode/utf8"

	"translatoroverlay/internal/config"
)

const (
	glyphWidthEm = 0.55
	lineHeightEm = 1.35
)

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Layout estimates the overlay size needed to show text wrapped at the
// configured maximum width.
func Layout(text string, s config.Settings, short bool) Size {
	font := float64(max(s.FontSize, 1))
	glyph := font * glyphWidthEm
	inner := float64(s.OverlayMaxWidth - 2*s.Padding)

	lines := wrap(text, max(int(inner/glyph), 1))
	longest := 0
	for _, line := range lines {
		longest = max(longest, utf8.RuneCountInString(line))
	}
	required := ceil(float64(longest)*glyph) + 2*s.Padding
	width := clamp(required, s.OverlayMinWidth, s.OverlayMaxWidth)

	// A wider box than required can only reduce the line count.
	if width > required {
		lines = wrap(text, max(int(float64(width-2*s.Padding)/glyph), 1))
	}
	textHeight := ceil(float64(len(lines)) * font * lineHeightEm)
	height := textHeight + s.Padding + 1

	lo, hi := s.OverlayMinHeight, s.OverlayMaxHeight
	if short {
		lo, hi = s.OverlayShortTextMinHeight, s.OverlayShortTextMaxHeight
	}
	return Size{Width: width, Height: clamp(height, lo, hi)}
}

// Position places a box of size on screen at one of the six anchors,
// keeping padding pixels from the screen edges. Unknown anchors fall back
// to top center.
func Position(anchor string, size, screen Size, padding int) Point {
	left := padding
	center := (screen.Width - size.Width) / 2
	right := screen.Width - size.Width - padding
	top := padding
	bottom := screen.Height - size.Height - padding

	switch anchor {
	case "top_left":
		return Point{X: left, Y: top}
	case "top_right":
		return Point{X: right, Y: top}
	case "bottom_left":
		return Point{X: left, Y: bottom}
	case "bottom_center":
		return Point{X: center, Y: bottom}
	case "bottom_right":
		return Point{X: right, Y: bottom}
	default:
		return Point{X: center, Y: top}
	}
}

// wrap breaks text into lines of at most width runes on word boundaries.
// Words longer than a line are split.
func wrap(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var line []rune
		for _, word := range strings.Fields(paragraph) {
			w := []rune(word)
			for len(w) > width {
				if len(line) > 0 {
					lines = append(lines, string(line))
					line = nil
				}
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
			switch {
			case len(line) == 0:
				line = w
			case len(line)+1+len(w) <= width:
				line = append(append(line, ' '), w...)
			default:
				lines = append(lines, string(line))
				line = w
			}
		}
		lines = append(lines, string(line))
	}
	return lines
}

// ceil rounds up, ignoring float noise from the em factors.
func ceil(v float64) int {
	return int(math.Ceil(v - 1e-9))
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}

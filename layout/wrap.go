package layout

import "strings"

// Measurer returns the rendered width in pixels of text at a fixed font and size.
type Measurer interface {
	TextWidth(text string) float64
}

// MeasureFunc adapts a plain function to Measurer.
type MeasureFunc func(text string) float64

func (f MeasureFunc) TextWidth(text string) float64 { return f(text) }

// LabelLine is one wrapped segment of a label.
type LabelLine struct {
	Index int      `json:"index"`
	Words []string `json:"words"`
	Width float64  `json:"width"`
}

// Text joins the line's words with single spaces.
func (l LabelLine) Text() string { return strings.Join(l.Words, " ") }

// Words splits a label on runs of whitespace.
func Words(label string) []string { return strings.Fields(label) }

// WrapLabel tokenizes label and wraps it; see WrapWords.
func WrapLabel(label string, maxWidth float64, m Measurer) []LabelLine {
	return WrapWords(Words(label), maxWidth, m)
}

// WrapWords greedily packs words into lines no wider than maxWidth.
// Every candidate line is measured. A word that alone exceeds maxWidth
// keeps its own line instead of being split. The result always has at
// least one line; no words yields a single empty line.
func WrapWords(words []string, maxWidth float64, m Measurer) []LabelLine {
	var lines []LabelLine
	var buf []string
	width := 0.0
	for _, w := range words {
		candidate := append(buf[:len(buf):len(buf)], w)
		cw := m.TextWidth(strings.Join(candidate, " "))
		if cw > maxWidth && len(candidate) > 1 {
			lines = append(lines, LabelLine{Index: len(lines), Words: buf, Width: width})
			buf = []string{w}
			width = m.TextWidth(w)
			continue
		}
		buf, width = candidate, cw
	}
	if buf == nil {
		buf = []string{}
	}
	return append(lines, LabelLine{Index: len(lines), Words: buf, Width: width})
}

// Anchor is where a label's first line sits before wrapping.
type Anchor struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	DyEm float64 `json:"dy"` // baseline offset in em
}

// PlaceOptions controls how wrapped lines stack under an anchor.
type PlaceOptions struct {
	Indent       float64 // horizontal offset from Anchor.X, px
	LineHeightEm float64
}

// PlaceLines positions wrapped lines: same x and y for every line, dy grows by one line height per line.
func PlaceLines(lines []LabelLine, anchor Anchor, opts PlaceOptions) []TextLine {
	out := make([]TextLine, 0, len(lines))
	for _, ln := range lines {
		out = append(out, TextLine{
			Content: ln.Text(),
			X:       anchor.X + opts.Indent,
			Y:       anchor.Y,
			DyEm:    float64(ln.Index)*opts.LineHeightEm + anchor.DyEm,
			Width:   ln.Width,
		})
	}
	return out
}

package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths used by the chart DSL.
// The scene itself is always expressed in CSS pixels.

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPX               // CSS pixels (1/96 in)
	UnitPT               // points
	UnitMM               // millimeters
	UnitEM               // relative to the font size
)

// Conversion constants between px, pt and mm.
const (
	PxToPt = 0.75
	PtToPx = 1.0 / PxToPt
	MmToPx = 96.0 / 25.4
	PxToMm = 25.4 / 96.0
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitEM:
		return "em"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX converts this length to pixels; em values are resolved against fontSize (px).
// Unit-less numbers are taken as pixels, which matches how SVG attributes are read.
func (l Length) ToPX(fontSize float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitMM:
		return l.Value * MmToPx
	case UnitEM:
		return l.Value * fontSize
	default:
		return l.Value
	}
}

// ParseRawLengthStr parses a DSL length string preserving its unit.
func ParseRawLengthStr(value string) Length {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}
	}
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"em", UnitEM}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec keeps the author intent: a factor of the font size (1.1x, 1.1em) or an absolute length (16px).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight reads "1.1x", "1.1em", "1.1" as factors and "16px"/"12pt" as absolute values.
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return LineHeightSpec{}, false
	}
	if strings.HasSuffix(v, "x") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64)
		if err != nil || f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l := ParseRawLengthStr(v)
	if l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	if l.Unit == UnitEM || l.Unit == UnitNone {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: l.Value}, true
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Em resolves the line height in em for the given font size (px).
func (s LineHeightSpec) Em(fontSize float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return s.Factor
	case LineHeightAbsolute:
		if fontSize <= 0 {
			return 0
		}
		return s.Len.ToPX(fontSize) / fontSize
	default:
		return 1.1
	}
}

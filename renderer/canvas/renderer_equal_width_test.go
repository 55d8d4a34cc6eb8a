package canvasrenderer

import (
	"testing"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/layout"
)

// 当两个词合在一起的宽度恰好等于折行宽度时，应保留在同一行；只有严格超出才换行。
func TestNoBreakWhenLineWidthEqualsLimit(t *testing.T) {
	r := NewRenderer(".")
	m, err := r.Measurer(serif, 14)
	if err != nil {
		t.Fatalf("measure error: %v", err)
	}

	first := "Street Lights"
	limit := m.TextWidth(first)
	if limit <= 0 {
		t.Fatalf("invalid measured width: %g", limit)
	}

	lines := layout.WrapLabel(first+" Out", limit, m)
	if got := len(lines); got != 2 {
		t.Fatalf("expected 2 lines, got %d", got)
	}
	if lines[0].Text() != first {
		t.Fatalf("first line mismatch: got=%q want=%q", lines[0].Text(), first)
	}
	if lines[1].Text() != "Out" {
		t.Fatalf("second line mismatch: got=%q want=%q", lines[1].Text(), "Out")
	}
}

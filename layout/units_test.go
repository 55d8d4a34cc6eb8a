package layout

import (
	"math"
	"testing"
)

// TestPxPtRoundTrip 验证 px↔pt↔mm 换算的往返精度（允许极小的浮点误差）。
func TestPxPtRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14, 72, 96, 144, 1000}
	for _, px := range samples {
		back := px * PxToPt * PtToPx
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%gpx back=%g diff=%g", px, back, diff)
		}
		back = px * PxToMm * MmToPx
		if diff := math.Abs(back - px); diff > 1e-9 {
			t.Fatalf("px→mm→px 往返误差过大: in=%gpx back=%g diff=%g", px, back, diff)
		}
	}
}

// TestLengthToPX 覆盖常见单位到像素的转换。
func TestLengthToPX(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"180px", 180},
		{"180", 180},
		{"12pt", 16},
		{"25.4mm", 96},
		{"2em", 28},
		{" -10PX ", -10},
		{"abc", 0},
		{"", 0},
	}
	for _, c := range cases {
		got := ParseRawLengthStr(c.raw).ToPX(14)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%q 转 px 期望 %g，实际 %g", c.raw, c.want, got)
		}
	}
}

// TestLineHeightEm 验证倍数与绝对值两种行高语义在 em 下的解析结果。
func TestLineHeightEm(t *testing.T) {
	for _, raw := range []string{"1.1x", "1.1em", "1.1"} {
		spec, ok := ParseLineHeight(raw)
		if !ok {
			t.Fatalf("%q 解析失败", raw)
		}
		if got := spec.Em(14); math.Abs(got-1.1) > 1e-9 {
			t.Fatalf("%q 行高期望 1.1em，实际 %g", raw, got)
		}
	}
	spec, ok := ParseLineHeight("21px")
	if !ok || spec.Kind != LineHeightAbsolute {
		t.Fatalf("21px 应为绝对行高: %#v", spec)
	}
	if got := spec.Em(14); math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("21px@14px 期望 1.5em，实际 %g", got)
	}
	if _, ok := ParseLineHeight("0x"); ok {
		t.Fatalf("0x 不应被接受")
	}
	if got := (LineHeightSpec{Kind: LineHeightKind(9)}).Em(14); got != 1.1 {
		t.Fatalf("未知类型应回退到 1.1em，实际 %g", got)
	}
}

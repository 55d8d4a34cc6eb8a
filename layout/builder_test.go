package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/dataset"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/dsl"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
// 每个字符（含空格）按 fontSize/2 计宽。
type stubTypesetter struct {
	calls int
}

func (s *stubTypesetter) Measurer(font FontResource, fontSize float64) (Measurer, error) {
	s.calls++
	return MeasureFunc(func(text string) float64 {
		return float64(len([]rune(text))) * fontSize / 2
	}), nil
}

func sampleRecords() []dataset.Record {
	return []dataset.Record{
		{Label: "Street Lights", Count: 8720},
		{Label: "Street Cleaning", Count: 41250},
		{Label: "Enforcement & Abandoned Vehicles", Count: 38900},
		{Label: "Sanitation", Count: 30120},
		{Label: "Highway Maintenance", Count: 22870},
		{Label: "Code Enforcement", Count: 12010},
		{Label: "Signs & Signals", Count: 9050},
		{Label: "Recycling", Count: 7655},
		{Label: "Trees", Count: 6980},
		{Label: "Housing", Count: 5410},
		{Label: "Animal Issues", Count: 3300},
	}
}

// buildWithDSL 是测试辅助：用给定 DSL 文本构建布局结果。
func buildWithDSL(t *testing.T, dslText string, records []dataset.Record) *Result {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(dslText))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	spec, err := SpecFromDocument(doc)
	if err != nil {
		t.Fatalf("读取图表配置失败: %v", err)
	}
	res, err := Build(spec, records, BuildOptions{Typesetter: &stubTypesetter{}})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res
}

func textsByRole(res *Result, role string) []TextBox {
	var out []TextBox
	for _, tb := range res.Texts {
		if tb.Role == role {
			out = append(out, tb)
		}
	}
	return out
}

func TestBuildDefaultChart(t *testing.T) {
	ts := &stubTypesetter{}
	res, err := Build(DefaultSpec(), sampleRecords(), BuildOptions{Typesetter: ts})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if res.Width != 800 || res.Height != 400 {
		t.Fatalf("画布尺寸错误: %gx%g", res.Width, res.Height)
	}
	if len(res.Rects) != 10 {
		t.Fatalf("应只绘制前 10 项，实际 %d", len(res.Rects))
	}
	if res.Rects[0].Key != "Street Cleaning" || res.Rects[9].Key != "Housing" {
		t.Fatalf("柱子顺序错误: first=%s last=%s", res.Rects[0].Key, res.Rects[9].Key)
	}
	if ts.calls != 1 {
		t.Fatalf("同一字体字号的测量器应只创建一次，实际 %d 次", ts.calls)
	}

	step := 200 / 10.1
	first := res.Rects[0]
	if !eq(first.X, 200) || !eq(first.Y, 100+step*0.1) || !eq(first.Width, 500) || !eq(first.Height, step*0.9) {
		t.Fatalf("首个柱子几何错误: %+v", first)
	}
	if first.FillColor == nil || first.FillColor.Hex() != "#4682b4" {
		t.Fatalf("柱子填充色错误: %+v", first.FillColor)
	}
	if res.Interaction.HoverFill == nil || res.Interaction.HoverFill.Hex() != "#ff7f50" || res.Interaction.TransitionMs != 200 {
		t.Fatalf("悬停配置错误: %+v", res.Interaction)
	}

	values := textsByRole(res, RoleValue)
	if len(values) != 10 || values[0].Content != "41250" {
		t.Fatalf("数值标签错误: %+v", values)
	}
	if !eq(values[0].X, 705) || !eq(values[0].Y, first.Y+first.Height/2) || values[0].DyEm != 0.35 {
		t.Fatalf("数值标签位置错误: %+v", values[0])
	}

	ticks := textsByRole(res, RoleTick)
	got := []string{}
	for _, tk := range ticks {
		got = append(got, tk.Content)
	}
	if strings.Join(got, " ") != "0 10,000 20,000 30,000 40,000" {
		t.Fatalf("刻度文字错误: %v", got)
	}
	if !eq(ticks[1].Y, 309) || ticks[1].Anchor != "middle" || ticks[1].DyEm != 0.71 {
		t.Fatalf("刻度文字位置错误: %+v", ticks[1])
	}
	if len(textsByRole(res, RoleTitle)) != 0 {
		t.Fatalf("默认配置不应输出标题")
	}
}

// TestCategoryLabelsWrap 验证左侧分类标签按 180px 折行，并按 1.1em 逐行下移。
func TestCategoryLabelsWrap(t *testing.T) {
	res, err := Build(DefaultSpec(), sampleRecords(), BuildOptions{Typesetter: &stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	cats := textsByRole(res, RoleCategory)
	if len(cats) != 10 {
		t.Fatalf("分类标签数量错误: %d", len(cats))
	}
	var long TextBox
	for _, c := range cats {
		if c.Key == "Enforcement & Abandoned Vehicles" {
			long = c
		}
		if c.Anchor != "end" || !eq(c.X, 197) {
			t.Fatalf("分类标签锚点错误: %+v", c)
		}
	}
	// 每字符 7px："Enforcement & Abandoned" = 161px，再加 " Vehicles" 超过 180px。
	if len(long.Lines) != 2 || long.Lines[0].Content != "Enforcement & Abandoned" || long.Lines[1].Content != "Vehicles" {
		t.Fatalf("折行结果错误: %+v", long.Lines)
	}
	for i, ln := range long.Lines {
		if !eq(ln.X, 190) || !eq(ln.Y, long.Y) {
			t.Fatalf("第 %d 行位置错误: %+v", i, ln)
		}
	}
	if !eq(long.Lines[0].DyEm, 0.32) || !eq(long.Lines[1].DyEm, 1.42) {
		t.Fatalf("行偏移错误: %+v", long.Lines)
	}
}

func TestBuildEmptyRecords(t *testing.T) {
	res, err := Build(DefaultSpec(), nil, BuildOptions{Typesetter: &stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(res.Rects) != 0 || len(textsByRole(res, RoleCategory)) != 0 {
		t.Fatalf("空数据不应产生柱子或标签")
	}
	if len(res.Lines) == 0 {
		t.Fatalf("空数据仍应绘制坐标轴")
	}
}

func TestBuildRequiresTypesetter(t *testing.T) {
	if _, err := Build(DefaultSpec(), sampleRecords(), BuildOptions{}); err == nil {
		t.Fatalf("缺少 Typesetter 时应报错")
	}
}

func TestBuildFromDSL(t *testing.T) {
	dslText := `chart T v1 {
  meta { title: "Top ${top} of ${rows} (${total|comma})" }
  resources {
    font Serif { src: "embed:lmroman10-regular" family: "Times New Roman" }
    color Bar = #123456
    style Axis { font: Serif; size: 12px }
    style Big extends Axis { size: 20px }
  }
  data { top: 3 }
  plot 600px 300px margin 50px 50px 50px 150px {
    title { style: Big }
    axis left {
      style: Axis
      wrap: none
    }
    bars { fill: Bar; padding: 0.2 }
  }
}`
	res := buildWithDSL(t, dslText, sampleRecords())
	if len(res.Rects) != 3 {
		t.Fatalf("top: 3 未生效: %d", len(res.Rects))
	}
	if res.Rects[0].FillColor.Hex() != "#123456" {
		t.Fatalf("颜色引用未生效: %+v", res.Rects[0].FillColor)
	}
	titles := textsByRole(res, RoleTitle)
	if len(titles) != 1 || titles[0].Content != "Top 3 of 11 (186,265)" || titles[0].FontSize != 20 {
		t.Fatalf("标题错误: %+v", titles)
	}
	if res.Meta.Title != titles[0].Content {
		t.Fatalf("元信息标题应为插值后的文本: %q", res.Meta.Title)
	}
	for _, c := range textsByRole(res, RoleCategory) {
		if len(c.Lines) != 1 {
			t.Fatalf("wrap: none 时不应折行: %+v", c.Lines)
		}
		if c.FontSize != 12 {
			t.Fatalf("分类标签字号应为 12px: %g", c.FontSize)
		}
	}
}

// TestPlotMarginVariants 验证 margin 参数支持 1、2、3、4+ 个值的语义。
func TestPlotMarginVariants(t *testing.T) {
	get := func(params string) Margin {
		doc, err := dsl.ParseString("chart T v1 { plot " + params + " { } }")
		if err != nil {
			t.Fatalf("解析失败: %v", err)
		}
		spec, err := SpecFromDocument(doc)
		if err != nil {
			t.Fatalf("读取配置失败: %v", err)
		}
		return spec.Margin
	}

	if m := get("800px 400px margin 10px"); !(eq(m.Top, 10) && eq(m.Right, 10) && eq(m.Bottom, 10) && eq(m.Left, 10)) {
		t.Fatalf("1 值语义错误: %+v", m)
	}
	if m := get("800px 400px margin 10px 5px"); !(eq(m.Top, 10) && eq(m.Bottom, 10) && eq(m.Left, 5) && eq(m.Right, 5)) {
		t.Fatalf("2 值语义错误: %+v", m)
	}
	if m := get("800px 400px margin 12px 8px 6px"); !(eq(m.Top, 12) && eq(m.Right, 8) && eq(m.Bottom, 6) && eq(m.Left, 8)) {
		t.Fatalf("3 值语义错误: %+v", m)
	}
	if m := get("800 400 margin 12pt 5px 2mm 3px"); !(eq(m.Top, 16) && eq(m.Right, 5) && eq(m.Bottom, 2*MmToPx) && eq(m.Left, 3)) {
		t.Fatalf("4 值语义错误: %+v", m)
	}
	if m := get("margin 1px 2px 3px 4px"); !(eq(m.Top, 1) && eq(m.Left, 4)) {
		t.Fatalf("仅 margin 时应保持默认尺寸: %+v", m)
	}
}

func TestSpecFromDocumentErrors(t *testing.T) {
	cases := map[string]string{
		"未定义字体": `chart T v1 { plot { axis left { font: Nope } } }`,
		"样式循环":  `chart T v1 { resources { style A extends B { } style B extends A { } } }`,
		"无绘制区域": `chart T v1 { plot 100px 100px margin 60px { } }`,
		"坐标轴方向": `chart T v1 { plot { axis right { } } }`,
		"行高无效":  `chart T v1 { plot { axis left { line-height: 0x } } }`,
		"颜色无效":  `chart T v1 { resources { color Bad = zzz } }`,
	}
	for name, text := range cases {
		doc, err := dsl.ParseString(text)
		if err != nil {
			t.Fatalf("%s: 解析失败: %v", name, err)
		}
		if _, err := SpecFromDocument(doc); err == nil {
			t.Fatalf("%s: 期望报错", name)
		}
	}
}

func TestWriteDebugJSON(t *testing.T) {
	res, err := Build(DefaultSpec(), sampleRecords(), BuildOptions{Typesetter: &stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "nested", "layout.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("WriteDebugJSON error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取调试文件失败: %v", err)
	}
	var decoded Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("调试 JSON 无法解析: %v", err)
	}
	if len(decoded.Rects) != 10 {
		t.Fatalf("调试 JSON 内容不完整: %d", len(decoded.Rects))
	}
}

func eq(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

func TestBuildKeepsDuplicateLabelsApart(t *testing.T) {
	records := []dataset.Record{
		{Label: "Trees", Count: 300},
		{Label: "Trees", Count: 200},
		{Label: "Housing", Count: 100},
	}
	res, err := Build(DefaultSpec(), records, BuildOptions{Typesetter: &stubTypesetter{}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(res.Rects) != 3 {
		t.Fatalf("同名记录应各占一条: %d", len(res.Rects))
	}
	if res.Rects[0].Y == res.Rects[1].Y {
		t.Fatalf("同名记录落在同一条带: y=%g", res.Rects[0].Y)
	}
	if n := len(textsByRole(res, RoleCategory)); n != 3 {
		t.Fatalf("分类标签数量错误: %d", n)
	}
}

package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/dataset"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/dsl"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/fonts"
)

// axisPadding 是刻度线与刻度文字之间的距离（px）。
const axisPadding = 3.0

// ChartSpec 描述一张横向柱状图的全部可配置项。
type ChartSpec struct {
	Name       string
	Width      float64
	Height     float64
	Margin     Margin
	Meta       DocumentMeta
	Resources  ResourceSet
	Data       DataSpec
	Title      TitleSpec
	LeftAxis   AxisSpec
	BottomAxis AxisSpec
	Bars       BarSpec
	Labels     ValueLabelSpec
	AxisColor  Color
}

// Margin 以像素为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DataSpec 描述数据来源与取前多少项。
type DataSpec struct {
	Source      string
	LabelColumn string
	ValueColumn string
	Top         int
}

// TextStyle 是已经解析好的文本样式。
type TextStyle struct {
	Font  string
	Size  float64 // px
	Color Color
}

type TitleSpec struct {
	Show  bool
	Style TextStyle
}

// AxisSpec 同时用于左侧分类轴与底部数值轴；Wrap* 字段只对左侧轴生效。
type AxisSpec struct {
	Style      TextStyle
	TickSize   float64
	Ticks      int
	DyEm       float64
	WrapWidth  float64 // <=0 表示不折行
	Indent     float64
	LineHeight LineHeightSpec
}

type BarSpec struct {
	Fill         Color
	Hover        Color
	TransitionMs int
	Padding      float64
}

type ValueLabelSpec struct {
	Style  TextStyle
	Offset float64
	DyEm   float64
}

// DefaultFont 是未声明字体时使用的资源名。
const DefaultFont = "Axis"

// DefaultSpec 返回 800×400 画布、Times New Roman 14px、180px 折行宽度的默认图表。
func DefaultSpec() ChartSpec {
	black := Color{}
	axisText := TextStyle{Font: DefaultFont, Size: 14, Color: black}
	return ChartSpec{
		Name:   "reasons",
		Width:  800,
		Height: 400,
		Margin: Margin{Top: 100, Right: 100, Bottom: 100, Left: 200},
		Meta:   DocumentMeta{Creator: "reasonchart"},
		Resources: ResourceSet{
			Fonts: map[string]FontResource{
				DefaultFont: {Name: DefaultFont, Src: fonts.DefaultSrc, Family: "Times New Roman"},
			},
			Colors: map[string]Color{},
			Styles: map[string]Style{},
		},
		Data: DataSpec{
			LabelColumn: dataset.DefaultLabelColumn,
			ValueColumn: dataset.DefaultValueColumn,
			Top:         dataset.DefaultTop,
		},
		Title: TitleSpec{Style: TextStyle{Font: DefaultFont, Size: 18, Color: black}},
		LeftAxis: AxisSpec{
			Style:      axisText,
			TickSize:   0,
			DyEm:       0.32,
			WrapWidth:  180,
			Indent:     -10,
			LineHeight: LineHeightSpec{Kind: LineHeightFactor, Factor: 1.1},
		},
		BottomAxis: AxisSpec{
			Style:    axisText,
			TickSize: 6,
			Ticks:    5,
			DyEm:     0.71,
		},
		Bars: BarSpec{
			Fill:         Color{R: 0x46, G: 0x82, B: 0xb4},
			Hover:        Color{R: 0xff, G: 0x7f, B: 0x50},
			TransitionMs: 200,
			Padding:      0.1,
		},
		Labels:    ValueLabelSpec{Style: axisText, Offset: 5, DyEm: 0.35},
		AxisColor: black,
	}
}

// SpecFromDocument 在默认配置上叠加 DSL 文档中的设置。
func SpecFromDocument(doc *dsl.Document) (ChartSpec, error) {
	spec := DefaultSpec()
	if doc == nil {
		return spec, fmt.Errorf("文档为空")
	}
	spec.Name = doc.Name

	res, err := collectResources(doc, spec.Resources.Fonts)
	if err != nil {
		return spec, err
	}
	spec.Resources = res
	spec.Meta = collectMeta(doc, spec.Meta)

	for _, section := range doc.Sections {
		switch {
		case section.Data != nil && section.Data.Block != nil:
			applyData(&spec.Data, blockAttrs(section.Data.Block))
		case section.Plot != nil:
			if err := applyPlot(&spec, section.Plot); err != nil {
				return spec, err
			}
		}
	}
	return spec, nil
}

func collectResources(doc *dsl.Document, defaults map[string]FontResource) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Styles: map[string]Style{},
	}
	for k, v := range defaults {
		res.Fonts[k] = v
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, err
				}
				res.Colors[name] = c
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles
	return res, nil
}

func collectMeta(doc *dsl.Document, meta DocumentMeta) DocumentMeta {
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := valueToString(stmt.Assignment.Value)
		switch stmt.Assignment.Key {
		case "src":
			font.Src = val
		case "style":
			font.Style = val
		case "family":
			font.Family = val
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block != nil {
		for k, v := range blockAttrs(cmd.Block) {
			style.Props[k] = v
		}
	}
	return style
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func applyData(data *DataSpec, attrs map[string]string) {
	if v, ok := attrs["source"]; ok {
		data.Source = v
	}
	if v, ok := attrs["label"]; ok && v != "" {
		data.LabelColumn = v
	}
	if v, ok := attrs["value"]; ok && v != "" {
		data.ValueColumn = v
	}
	if v, ok := attrs["top"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			data.Top = n
		}
	}
}

// applyPlot 读取 plot 头部参数（宽 高 margin t r b l）以及 title/axis/bars/labels 子块。
func applyPlot(spec *ChartSpec, plot *dsl.PlotSection) error {
	var dims []float64
	for i := 0; i < len(plot.Params); i++ {
		tok := plot.Params[i]
		if tok.Value == "margin" {
			vals := []float64{}
			for j := i + 1; j < len(plot.Params) && len(vals) < 4; j++ {
				l, ok := parseNumberToken(plot.Params[j].Value)
				if !ok {
					break
				}
				vals = append(vals, l)
				i = j
			}
			switch len(vals) {
			case 1:
				v := vals[0]
				spec.Margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
			case 2:
				spec.Margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
			case 3:
				spec.Margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
			case 4:
				spec.Margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
			}
			continue
		}
		if v, ok := parseNumberToken(tok.Value); ok {
			dims = append(dims, v)
		}
	}
	if len(dims) >= 2 {
		spec.Width, spec.Height = dims[0], dims[1]
	}
	if spec.Width-spec.Margin.Left-spec.Margin.Right <= 0 || spec.Height-spec.Margin.Top-spec.Margin.Bottom <= 0 {
		return fmt.Errorf("plot 尺寸 %gx%g 扣除边距后没有可绘制区域", spec.Width, spec.Height)
	}

	if plot.Block == nil {
		return nil
	}
	for _, stmt := range plot.Block.Statements {
		switch {
		case stmt.Assignment != nil && stmt.Assignment.Key == "axis-color":
			spec.AxisColor = resolveColor(valueToString(stmt.Assignment.Value), spec.Resources, spec.AxisColor)
			continue
		case stmt.Command == nil:
			continue
		}
		cmd := stmt.Command
		attrs := blockAttrs(cmd.Block)
		var err error
		switch cmd.Name {
		case "title":
			spec.Title.Show = true
			spec.Title.Style, err = resolveTextStyle(attrs, spec.Resources, spec.Title.Style)
		case "axis":
			if len(cmd.Args) == 0 {
				return fmt.Errorf("axis 需要指定方向（left/bottom）")
			}
			switch cmd.Args[0].Value {
			case "left":
				err = applyAxis(&spec.LeftAxis, attrs, spec.Resources)
			case "bottom":
				err = applyAxis(&spec.BottomAxis, attrs, spec.Resources)
			default:
				err = fmt.Errorf("不支持的坐标轴方向：%s", cmd.Args[0].Value)
			}
		case "bars":
			applyBars(&spec.Bars, attrs, spec.Resources)
		case "labels":
			spec.Labels.Style, err = resolveTextStyle(attrs, spec.Resources, spec.Labels.Style)
			if v, ok := attrs["offset"]; ok {
				spec.Labels.Offset = ParseRawLengthStr(v).ToPX(spec.Labels.Style.Size)
			}
			if v, ok := attrs["dy"]; ok {
				spec.Labels.DyEm = emValue(v, spec.Labels.Style.Size)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func applyAxis(axis *AxisSpec, attrs map[string]string, res ResourceSet) error {
	style, err := resolveTextStyle(attrs, res, axis.Style)
	if err != nil {
		return err
	}
	axis.Style = style
	size := axis.Style.Size
	if v, ok := attrs["tick-size"]; ok {
		axis.TickSize = ParseRawLengthStr(v).ToPX(size)
	}
	if v, ok := attrs["ticks"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			axis.Ticks = n
		}
	}
	if v, ok := attrs["dy"]; ok {
		axis.DyEm = emValue(v, size)
	}
	if v, ok := attrs["wrap"]; ok {
		if v == "none" {
			axis.WrapWidth = 0
		} else {
			axis.WrapWidth = ParseRawLengthStr(v).ToPX(size)
		}
	}
	if v, ok := attrs["indent"]; ok {
		axis.Indent = ParseRawLengthStr(v).ToPX(size)
	}
	if v, ok := attrs["line-height"]; ok {
		lh, ok := ParseLineHeight(v)
		if !ok {
			return fmt.Errorf("line-height 取值无效：%s", v)
		}
		axis.LineHeight = lh
	}
	return nil
}

func applyBars(bars *BarSpec, attrs map[string]string, res ResourceSet) {
	if v, ok := attrs["fill"]; ok {
		bars.Fill = resolveColor(v, res, bars.Fill)
	}
	if v, ok := attrs["hover"]; ok {
		bars.Hover = resolveColor(v, res, bars.Hover)
	}
	if v, ok := attrs["transition"]; ok {
		num := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(v)), "ms")
		if ms, err := strconv.Atoi(num); err == nil && ms >= 0 {
			bars.TransitionMs = ms
		}
	}
	if v, ok := attrs["padding"]; ok {
		if p, err := strconv.ParseFloat(v, 64); err == nil && p >= 0 && p < 1 {
			bars.Padding = p
		}
	}
}

// resolveTextStyle 合并 style 引用与内联属性，得到字体名、字号与颜色。
func resolveTextStyle(attrs map[string]string, res ResourceSet, base TextStyle) (TextStyle, error) {
	attrs = mergeStyleAttributes(attrs["style"], attrs, res.Styles)
	out := base
	if v, ok := attrs["font"]; ok && v != "" {
		if _, ok := res.Fonts[v]; !ok {
			return out, fmt.Errorf("字体 %s 未定义", v)
		}
		out.Font = v
	}
	if v, ok := attrs["size"]; ok {
		if size := ParseRawLengthStr(v).ToPX(base.Size); size > 0 {
			out.Size = size
		}
	}
	if v, ok := attrs["color"]; ok {
		out.Color = resolveColor(v, res, out.Color)
	}
	return out, nil
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func resolveColor(value string, res ResourceSet, fallback Color) Color {
	if value == "" {
		return fallback
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return fallback
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r, err1 := strconv.ParseUint(strings.Repeat(value[0:1], 2), 16, 8)
		g, err2 := strconv.ParseUint(strings.Repeat(value[1:2], 2), 16, 8)
		b, err3 := strconv.ParseUint(strings.Repeat(value[2:3], 2), 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
		return Color{R: int(r), G: int(g), B: int(b)}, nil
	case 6, 8:
		v, err := strconv.ParseUint(value[0:6], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
		return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

// Hex 返回 #rrggbb 形式的颜色字符串。
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func emValue(raw string, fontSize float64) float64 {
	l := ParseRawLengthStr(raw)
	if l.Unit == UnitEM || l.Unit == UnitNone || fontSize <= 0 {
		return l.Value
	}
	return l.ToPX(fontSize) / fontSize
}

func parseNumberToken(raw string) (float64, bool) {
	num := strings.TrimSpace(strings.ToLower(raw))
	for _, suf := range []string{"px", "pt", "mm"} {
		num = strings.TrimSuffix(num, suf)
	}
	if _, err := strconv.ParseFloat(num, 64); err != nil {
		return 0, false
	}
	return ParseRawLengthStr(raw).ToPX(0), true
}

// blockAttrs 把块内的 key: value 赋值收集为字符串表。
func blockAttrs(block *dsl.Block) map[string]string {
	out := map[string]string{}
	if block == nil {
		return out
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := valueToString(stmt.Assignment.Value); val != "" {
			out[stmt.Assignment.Key] = val
		}
	}
	return out
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

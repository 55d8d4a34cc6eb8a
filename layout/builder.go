package layout

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/binding"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/dataset"
)

const axisStrokeWidth = 1.0

// Build 根据图表配置与数据记录生成柱子、坐标轴与文字的布局结果。
// records 为完整数据，这里按 spec.Data.Top 取出计数最高的若干项。
func Build(spec ChartSpec, records []dataset.Record, opts BuildOptions) (*Result, error) {
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 Typesetter")
	}
	innerW := spec.Width - spec.Margin.Left - spec.Margin.Right
	innerH := spec.Height - spec.Margin.Top - spec.Margin.Bottom
	if innerW <= 0 || innerH <= 0 {
		return nil, fmt.Errorf("画布 %gx%g 扣除边距后没有可绘制区域", spec.Width, spec.Height)
	}
	log := opts.logger()

	top := dataset.Top(records, spec.Data.Top)
	b := &builder{
		spec:    spec,
		ts:      opts.Typesetter,
		log:     log,
		originX: spec.Margin.Left,
		originY: spec.Margin.Top,
		innerW:  innerW,
		innerH:  innerH,
		x:       NewLinear(0, dataset.Max(top), 0, innerW),
		y:       NewBand(labelsOf(top), 0, innerH, spec.Bars.Padding),
		measure: map[string]Measurer{},
	}

	vars := map[string]any{
		"top":    len(top),
		"rows":   len(records),
		"total":  dataset.Total(records),
		"max":    dataset.Max(top),
		"name":   spec.Name,
	}
	if spec.Data.Source != "" {
		vars["source"] = filepath.Base(spec.Data.Source)
	}
	for k, v := range opts.Data {
		vars[k] = v
	}
	meta := spec.Meta
	meta.Title = binding.Interpolate(meta.Title, vars)

	result := &Result{
		Width:     spec.Width,
		Height:    spec.Height,
		Resources: spec.Resources,
		Meta:      meta,
		Interaction: Interaction{
			HoverClass:   "bar",
			HoverFill:    colorPtr(spec.Bars.Hover),
			RestFill:     colorPtr(spec.Bars.Fill),
			TransitionMs: spec.Bars.TransitionMs,
		},
	}

	if spec.Title.Show && meta.Title != "" {
		result.Texts = append(result.Texts, TextBox{
			Role:     RoleTitle,
			Content:  meta.Title,
			X:        spec.Width / 2,
			Y:        spec.Margin.Top / 2,
			DyEm:     0.35,
			Font:     spec.Title.Style.Font,
			FontSize: spec.Title.Style.Size,
			Color:    spec.Title.Style.Color,
			Anchor:   "middle",
		})
	}

	result.Rects = b.bars(top)
	result.Texts = append(result.Texts, b.valueLabels(top)...)

	categories, err := b.categoryLabels(top)
	if err != nil {
		return nil, err
	}
	result.Texts = append(result.Texts, categories...)
	result.Lines = append(result.Lines, b.leftAxisLines()...)

	ticks, tickLines := b.bottomAxis()
	result.Texts = append(result.Texts, ticks...)
	result.Lines = append(result.Lines, tickLines...)

	log.WithFields(logrus.Fields{
		"bars":  len(result.Rects),
		"texts": len(result.Texts),
		"lines": len(result.Lines),
	}).Debug("chart laid out")
	return result, nil
}

type builder struct {
	spec             ChartSpec
	ts               Typesetter
	log              logrus.FieldLogger
	originX, originY float64
	innerW, innerH   float64
	x                Linear
	y                Band
	measure          map[string]Measurer
}

// bars 按记录序号取条带，同名的原因各占一条，不合并。
func (b *builder) bars(top []dataset.Record) []Rect {
	rects := make([]Rect, 0, len(top))
	for i, rec := range top {
		rects = append(rects, Rect{
			Class:     "bar",
			Key:       rec.Label,
			Value:     rec.Count,
			X:         b.originX,
			Y:         b.originY + b.y.At(i),
			Width:     math.Max(0, b.x.Scale(rec.Count)),
			Height:    b.y.Bandwidth(),
			FillColor: colorPtr(b.spec.Bars.Fill),
		})
	}
	return rects
}

// valueLabels 把计数写在柱子右端外侧，垂直居中于条带。
func (b *builder) valueLabels(top []dataset.Record) []TextBox {
	style := b.spec.Labels.Style
	out := make([]TextBox, 0, len(top))
	for i, rec := range top {
		out = append(out, TextBox{
			Role:     RoleValue,
			Key:      rec.Label,
			Content:  strconv.FormatFloat(rec.Count, 'f', -1, 64),
			X:        b.originX + b.x.Scale(rec.Count) + b.spec.Labels.Offset,
			Y:        b.originY + b.y.At(i) + b.y.Bandwidth()/2,
			DyEm:     b.spec.Labels.DyEm,
			Font:     style.Font,
			FontSize: style.Size,
			Color:    style.Color,
		})
	}
	return out
}

// categoryLabels 生成左侧分类标签，并按折行宽度拆成多行。
func (b *builder) categoryLabels(top []dataset.Record) ([]TextBox, error) {
	axis := b.spec.LeftAxis
	m, err := b.measurer(axis.Style)
	if err != nil {
		return nil, err
	}
	limit := axis.WrapWidth
	if limit <= 0 {
		limit = math.Inf(1)
	}
	place := PlaceOptions{Indent: axis.Indent, LineHeightEm: axis.LineHeight.Em(axis.Style.Size)}

	out := make([]TextBox, 0, len(top))
	for i, rec := range top {
		anchor := Anchor{
			X:    b.originX,
			Y:    b.originY + b.y.At(i) + b.y.Bandwidth()/2,
			DyEm: axis.DyEm,
		}
		wrapped := WrapLabel(rec.Label, limit, m)
		b.log.WithFields(logrus.Fields{"label": rec.Label, "lines": len(wrapped)}).Debug("label wrapped")
		out = append(out, TextBox{
			Role:     RoleCategory,
			Key:      rec.Label,
			Content:  rec.Label,
			X:        b.originX - axis.TickSize - axisPadding,
			Y:        anchor.Y,
			DyEm:     axis.DyEm,
			Font:     axis.Style.Font,
			FontSize: axis.Style.Size,
			Color:    axis.Style.Color,
			Anchor:   "end",
			Lines:    PlaceLines(wrapped, anchor, place),
		})
	}
	return out, nil
}

func (b *builder) leftAxisLines() []Line {
	x0, y0, y1 := b.originX, b.originY, b.originY+b.innerH
	outer := b.spec.LeftAxis.TickSize
	lines := []Line{b.line(x0, y0, x0, y1)}
	if outer > 0 {
		lines = append(lines, b.line(x0-outer, y0, x0, y0), b.line(x0-outer, y1, x0, y1))
	}
	return lines
}

// bottomAxis 生成数值轴：轴线、刻度线与刻度文字。
func (b *builder) bottomAxis() ([]TextBox, []Line) {
	axis := b.spec.BottomAxis
	baseY := b.originY + b.innerH
	x0, x1 := b.originX, b.originX+b.innerW
	lines := []Line{b.line(x0, baseY, x1, baseY)}
	if axis.TickSize > 0 {
		lines = append(lines, b.line(x0, baseY, x0, baseY+axis.TickSize), b.line(x1, baseY, x1, baseY+axis.TickSize))
	}

	format := b.x.TickFormat(axis.Ticks)
	var texts []TextBox
	for _, v := range b.x.Ticks(axis.Ticks) {
		px := b.originX + b.x.Scale(v)
		if axis.TickSize > 0 {
			lines = append(lines, b.line(px, baseY, px, baseY+axis.TickSize))
		}
		texts = append(texts, TextBox{
			Role:     RoleTick,
			Content:  format(v),
			X:        px,
			Y:        baseY + math.Max(axis.TickSize, 0) + axisPadding,
			DyEm:     axis.DyEm,
			Font:     axis.Style.Font,
			FontSize: axis.Style.Size,
			Color:    axis.Style.Color,
			Anchor:   "middle",
		})
	}
	return texts, lines
}

func (b *builder) line(x1, y1, x2, y2 float64) Line {
	return Line{X1: x1, Y1: y1, X2: x2, Y2: y2, Color: b.spec.AxisColor, Width: axisStrokeWidth}
}

// measurer 按字体与字号缓存测量器，同一样式的标签共用一个。
func (b *builder) measurer(style TextStyle) (Measurer, error) {
	key := fmt.Sprintf("%s|%g", style.Font, style.Size)
	if m, ok := b.measure[key]; ok {
		return m, nil
	}
	font, ok := b.spec.Resources.Fonts[style.Font]
	if !ok {
		return nil, fmt.Errorf("字体 %s 未定义", style.Font)
	}
	m, err := b.ts.Measurer(font, style.Size)
	if err != nil {
		return nil, fmt.Errorf("创建字体 %s 的测量器失败: %w", style.Font, err)
	}
	b.measure[key] = m
	return m, nil
}

func labelsOf(records []dataset.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Label
	}
	return out
}

func colorPtr(c Color) *Color { return &c }

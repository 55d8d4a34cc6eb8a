package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/fonts"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/layout"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/renderer"
)

// 未指定线宽时使用 1px。
const defaultStrokePx = 1.0

// Renderer draws layout results via github.com/tdewolff/canvas.
// 布局坐标为 px，canvas 内部为 mm，字体面以 pt 创建，三者只在本文件边界换算。
type Renderer struct {
	baseDir string
	format  renderer.Format
	dpmm    float64

	// injected resources
	fontBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var (
	_ renderer.Backend  = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Format 只接受 pdf 或 png，默认 pdf。
	Format renderer.Format
	// DPMM 是 PNG 的分辨率（像素/毫米），默认 96dpi，使 PNG 像素尺寸与画布 px 一致。
	DPMM  float64
	Fonts map[string][]byte // 可通过 built-in:<name> 引用
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected fonts and output options.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		format:       opts.Format,
		dpmm:         opts.DPMM,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	if r.format == "" {
		r.format = renderer.FormatPDF
	}
	if r.dpmm <= 0 {
		r.dpmm = layout.MmToPx
	}
	for name, blob := range opts.Fonts {
		if name != "" && len(blob) > 0 {
			r.fontBlobs[name] = blob
		}
	}
	return r
}

// Measurer 实现 layout.Typesetter：fontSize 为 px，返回的宽度也是 px。
func (r *Renderer) Measurer(font layout.FontResource, fontSize float64) (layout.Measurer, error) {
	face, err := r.fontFace(font, toPt(fontSize), layout.Color{})
	if err != nil {
		return nil, err
	}
	return faceMeasurer{face: face}, nil
}

type faceMeasurer struct {
	face *canvas.FontFace
}

// TextWidth 把 canvas 量出的 mm 宽度换算回 px。
func (m faceMeasurer) TextWidth(text string) float64 {
	if text == "" {
		return 0
	}
	return m.face.TextWidth(text) * layout.MmToPx
}

// Render renders the result into PDF or PNG bytes, depending on the configured format.
// 静态输出没有悬停效果，柱子只使用常规填充色。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Width <= 0 || result.Height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %gx%g", result.Width, result.Height)
	}

	c := canvas.New(toMm(result.Width), toMm(result.Height))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(toMm(result.Width), toMm(result.Height)))

	r.drawLines(ctx, result.Lines)
	r.drawRects(ctx, result.Rects)
	for _, tb := range result.Texts {
		fontRes := resolveFontResource(tb.Font, result.Resources.Fonts)
		if err := r.drawTextBox(ctx, tb, fontRes); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	switch r.format {
	case renderer.FormatPDF:
		writer := pdf.New(&buf, toMm(result.Width), toMm(result.Height), nil)
		r.applyMeta(writer, result.Meta)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	case renderer.FormatPNG:
		if err := renderers.PNG(canvas.DPMM(r.dpmm))(&buf, c); err != nil {
			return nil, fmt.Errorf("写入 PNG 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("canvas 渲染器不支持格式 %s", r.format)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawTextBox 逐行绘制文本；没有折行结果的文本按单行处理。
func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, fontRes layout.FontResource) error {
	face, err := r.fontFace(fontRes, toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, X: tb.X, Y: tb.Y, DyEm: tb.DyEm}}
	}

	var textAlign canvas.TextAlign
	switch strings.ToLower(tb.Anchor) {
	case "middle", "center":
		textAlign = canvas.Center
	case "end", "right":
		textAlign = canvas.Right
	default:
		textAlign = canvas.Left
	}

	for _, line := range lines {
		if line.Content == "" {
			continue
		}
		textLine := canvas.NewTextLine(face, line.Content, textAlign)
		ctx.DrawText(toMm(line.X), toMm(line.BaselineY(tb.FontSize)), textLine)
	}
	return nil
}

// drawLines 绘制轴线与刻度线
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = defaultStrokePx
		}
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(toMm(w))
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(toMm(ln.X2-ln.X1), toMm(ln.Y2-ln.Y1))
		ctx.DrawPath(toMm(ln.X1), toMm(ln.Y1), p)
	}
}

// drawRects 绘制柱子
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		if rc.Width <= 0 || rc.Height <= 0 {
			continue
		}
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		}
		if rc.StrokeColor != nil {
			w := rc.StrokeWidth
			if w <= 0 {
				w = defaultStrokePx
			}
			ctx.SetStrokeColor(colorFromLayout(*rc.StrokeColor))
			ctx.SetStrokeWidth(toMm(w))
		} else {
			ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		}
		ctx.DrawPath(toMm(rc.X), toMm(rc.Y), canvas.Rectangle(toMm(rc.Width), toMm(rc.Height)))
	}
}

func (r *Renderer) fontFace(font layout.FontResource, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	if sizePt <= 0 {
		return nil, fmt.Errorf("字体 %s 的字号无效: %g", font.Name, sizePt)
	}
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col), style, canvas.FontNormal), nil
}

// ensureFontFamily 按资源缓存字体族；字体无法加载时退回内置无衬线体。
func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = layout.DefaultFont
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	src := font.Src
	if src == "" {
		src = fonts.DefaultSrc
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	return fonts.Open(src, r.baseDir)
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load(fonts.SansRegular)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("reasonchart-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func resolveFontResource(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	if font, ok := fonts[layout.DefaultFont]; ok {
		return font
	}
	for _, font := range fonts {
		return font
	}
	return layout.FontResource{}
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将像素(px)转换为点(pt)。
func toPt(px float64) float64 { return px * layout.PxToPt }

// toMm 将像素(px)转换为毫米(mm)。
func toMm(px float64) float64 { return px * layout.PxToMm }

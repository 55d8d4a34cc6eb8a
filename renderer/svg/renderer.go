package svgrenderer

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	svg "github.com/ajstarks/svgo"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/opentype"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/layout"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/renderer"
)

// Renderer writes layout results as standalone SVG or as an HTML page wrapping the SVG.
// 柱子带 class，悬停配色通过内联 CSS 实现，不依赖脚本。
type Renderer struct {
	baseDir string
	format  renderer.Format
	log     logrus.FieldLogger

	fontBlobs map[string][]byte

	fontMu sync.Mutex
	parsed map[string]*opentype.Font
}

var _ renderer.Backend = (*Renderer)(nil)

// Options configures the SVG renderer.
type Options struct {
	BaseDir string
	// Format 只接受 svg 或 html，默认 svg。
	Format renderer.Format
	Fonts  map[string][]byte // 可通过 built-in:<name> 引用
	Logger logrus.FieldLogger
}

// NewRenderer creates an SVG renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:   opts.BaseDir,
		format:    opts.Format,
		log:       opts.Logger,
		fontBlobs: map[string][]byte{},
		parsed:    map[string]*opentype.Font{},
	}
	if r.format == "" {
		r.format = renderer.FormatSVG
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = l
	}
	for name, blob := range opts.Fonts {
		if name != "" && len(blob) > 0 {
			r.fontBlobs[name] = blob
		}
	}
	return r
}

// Render 输出 SVG 文本，或包含该 SVG 的 HTML 页面。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Width <= 0 || result.Height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %gx%g", result.Width, result.Height)
	}
	var buf bytes.Buffer
	switch r.format {
	case renderer.FormatSVG:
		writeSVG(&buf, result)
	case renderer.FormatHTML:
		writeHTML(&buf, result)
	default:
		return nil, fmt.Errorf("svg 渲染器不支持格式 %s", r.format)
	}
	return buf.Bytes(), nil
}

func writeHTML(w io.Writer, result *layout.Result) {
	title := result.Meta.Title
	if title == "" {
		title = "Top reasons"
	}
	var doc bytes.Buffer
	writeSVG(&doc, result)
	// HTML 中不需要 XML 声明
	body := doc.Bytes()
	if bytes.HasPrefix(body, []byte("<?xml")) {
		if i := bytes.IndexByte(body, '\n'); i >= 0 {
			body = body[i+1:]
		}
	}

	fmt.Fprint(w, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(w, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprint(w, "</head>\n<body>\n<div id=\"chart\">\n")
	w.Write(body)
	fmt.Fprint(w, "</div>\n</body>\n</html>\n")
}

// writeSVG 用 svgo 输出文档骨架；柱子、线与文字的坐标带小数，直接写入 canvas.Writer。
func writeSVG(w io.Writer, result *layout.Result) {
	wi, hi := int(math.Ceil(result.Width)), int(math.Ceil(result.Height))
	canvas := svg.New(w)
	canvas.Startview(wi, hi, 0, 0, wi, hi)
	if result.Meta.Title != "" {
		canvas.Title(result.Meta.Title)
	}
	if css := hoverCSS(result.Interaction); css != "" {
		canvas.Style("text/css", css)
	}
	canvas.Rect(0, 0, wi, hi, "fill:white")

	canvas.Gid("axis")
	for _, ln := range result.Lines {
		width := ln.Width
		if width <= 0 {
			width = 1
		}
		fmt.Fprintf(canvas.Writer, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s"/>
`, num(ln.X1), num(ln.Y1), num(ln.X2), num(ln.Y2), ln.Color.Hex(), num(width))
	}
	canvas.Gend()

	canvas.Gid("bars")
	for _, rc := range result.Rects {
		attrs := ""
		if rc.Class != "" {
			attrs += fmt.Sprintf(` class="%s"`, html.EscapeString(rc.Class))
		}
		if rc.FillColor != nil {
			attrs += fmt.Sprintf(` fill="%s"`, rc.FillColor.Hex())
		} else {
			attrs += ` fill="none"`
		}
		if rc.StrokeColor != nil {
			attrs += fmt.Sprintf(` stroke="%s" stroke-width="%s"`, rc.StrokeColor.Hex(), num(math.Max(rc.StrokeWidth, 1)))
		}
		fmt.Fprintf(canvas.Writer, `<rect x="%s" y="%s" width="%s" height="%s"%s><title>%s: %s</title></rect>
`, num(rc.X), num(rc.Y), num(rc.Width), num(rc.Height), attrs,
			html.EscapeString(rc.Key), strconv.FormatFloat(rc.Value, 'f', -1, 64))
	}
	canvas.Gend()

	for _, tb := range result.Texts {
		writeText(canvas.Writer, tb, result.Resources.Fonts)
	}
	canvas.End()
}

// hoverCSS 给出柱子的常规色、悬停色与过渡时间。CSS 规则优先于 fill 属性，所以悬停可以覆盖。
func hoverCSS(in layout.Interaction) string {
	if in.HoverClass == "" || in.HoverFill == nil {
		return ""
	}
	rest := ""
	if in.RestFill != nil {
		rest = fmt.Sprintf("fill: %s; ", in.RestFill.Hex())
	}
	return fmt.Sprintf(".%s { %stransition: fill %dms; }\n.%s:hover { fill: %s; }",
		in.HoverClass, rest, in.TransitionMs, in.HoverClass, in.HoverFill.Hex())
}

// writeText 折行后的标签每行一个 tspan，x/y 相同、dy 逐行递增。
func writeText(w io.Writer, tb layout.TextBox, fonts map[string]layout.FontResource) {
	attrs := fmt.Sprintf(` class="%s" font-family="%s" font-size="%s" fill="%s"`,
		tb.Role, html.EscapeString(fontFamily(tb.Font, fonts)), num(tb.FontSize), tb.Color.Hex())
	if tb.Anchor != "" && tb.Anchor != "start" {
		attrs += fmt.Sprintf(` text-anchor="%s"`, tb.Anchor)
	}
	if len(tb.Lines) == 0 {
		fmt.Fprintf(w, `<text x="%s" y="%s" dy="%sem"%s>%s</text>
`, num(tb.X), num(tb.Y), num(tb.DyEm), attrs, html.EscapeString(tb.Content))
		return
	}
	fmt.Fprintf(w, `<text x="%s" y="%s"%s>`, num(tb.X), num(tb.Y), attrs)
	for _, ln := range tb.Lines {
		fmt.Fprintf(w, `<tspan x="%s" y="%s" dy="%sem">%s</tspan>`,
			num(ln.X), num(ln.Y), num(ln.DyEm), html.EscapeString(ln.Content))
	}
	fmt.Fprint(w, "</text>\n")
}

func fontFamily(name string, fonts map[string]layout.FontResource) string {
	family := name
	if f, ok := fonts[name]; ok && f.Family != "" {
		family = f.Family
	}
	if family == "" {
		return "serif"
	}
	if strings.ContainsAny(family, " ,") {
		family = "'" + family + "'"
	}
	return family + ", serif"
}

// num 保留三位小数并去掉多余的 0。
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

package svgrenderer

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/fonts"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/layout"
)

// 以 72dpi 创建字体面，此时 Size 的单位与 px 一致。
const measureDPI = 72

// Measurer 实现 layout.Typesetter：用 opentype 解析字体，按 px 字号测量。
// 同一字体文件只解析一次。
func (r *Renderer) Measurer(res layout.FontResource, fontSize float64) (layout.Measurer, error) {
	if fontSize <= 0 {
		return nil, fmt.Errorf("字体 %s 的字号无效: %g", res.Name, fontSize)
	}
	f, err := r.parsedFont(res)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     measureDPI,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体 %s 的字形失败: %w", res.Name, err)
	}
	return &faceMeasurer{face: face}, nil
}

type faceMeasurer struct {
	mu   sync.Mutex
	face font.Face
}

func (m *faceMeasurer) TextWidth(text string) float64 {
	if text == "" {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	adv := font.MeasureString(m.face, text)
	return float64(adv) / 64
}

func (r *Renderer) parsedFont(res layout.FontResource) (*opentype.Font, error) {
	src := res.Src
	if src == "" {
		src = fonts.DefaultSrc
	}
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if f, ok := r.parsed[src]; ok {
		return f, nil
	}

	data, err := r.fontBytes(src)
	if err != nil {
		r.log.WithError(err).WithField("font", res.Name).Warn("font unavailable, measuring with fallback")
		data, err = fonts.Load(fonts.SansRegular)
		if err != nil {
			return nil, err
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	r.parsed[src] = f
	return f, nil
}

func (r *Renderer) fontBytes(src string) ([]byte, error) {
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置字体资源 built-in:%s", name)
	}
	return fonts.Open(src, r.baseDir)
}

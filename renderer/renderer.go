package renderer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/layout"
)

// Renderer 将布局结果输出为最终文件，例如 SVG、PDF 或 PNG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时负责测量与输出：布局阶段用它折行，渲染阶段用同一套字体绘制，
// 保证折行时量到的宽度与最终显示一致。
type Backend interface {
	Renderer
	layout.Typesetter
}

// Format 是输出文件格式。
type Format string

const (
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
)

// ParseFormat 解析格式名，大小写不敏感；"htm" 视为 html。
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "svg":
		return FormatSVG, nil
	case "html", "htm":
		return FormatHTML, nil
	case "pdf":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("不支持的输出格式：%s", name)
	}
}

// FormatFromPath 根据输出文件扩展名推断格式。
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("无法从 %s 推断输出格式，请指定 --format", path)
	}
	return ParseFormat(ext)
}

// Interactive 表示该格式是否保留悬停高亮。
func (f Format) Interactive() bool { return f == FormatSVG || f == FormatHTML }

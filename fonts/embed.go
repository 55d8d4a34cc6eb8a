package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体名称，可在资源中写作 "embed:<name>"。
const (
	SerifRegular = "lmroman10-regular"
	SerifBold    = "lmroman10-bold"
	SansRegular  = "go-regular"
)

// DefaultSrc 是图表默认使用的字体来源（衬线体，用来替代 Times New Roman 做测量）。
const DefaultSrc = "embed:" + SerifRegular

var builtin = map[string][]byte{
	SerifRegular: lmroman10regular.TTF,
	SerifBold:    lmroman10bold.TTF,
	SansRegular:  goregular.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:lmroman10-regular" 或直接 "lmroman10-regular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "embed:"))
	key = strings.TrimSuffix(strings.TrimSuffix(key, ".ttf"), ".otf")
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", name)
	}
	return data, nil
}

// Open 根据 src 解析字体：embed: 前缀读取内置字体，其余按文件路径读取，相对路径基于 baseDir。
func Open(src, baseDir string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体缺少 src")
	}
	if strings.HasPrefix(src, "embed:") {
		return Load(src)
	}
	path := src
	if !filepath.IsAbs(path) {
		if baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 embed:）", src)
		}
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

package layout

import (
	"io"

	"github.com/sirupsen/logrus"
)

// BuildOptions 配置布局阶段所需的依赖，例如测量后端与日志。
type BuildOptions struct {
	Typesetter Typesetter
	Logger     logrus.FieldLogger
	// Data 为标题插值提供额外变量，与内置的 top/total/max/source 合并。
	Data map[string]any
}

// Typesetter 根据字体与字号提供文本测量能力（单位：px）。
type Typesetter interface {
	Measurer(font FontResource, fontSize float64) (Measurer, error)
}

func (o BuildOptions) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return discardLogger()
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/dataset"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/dsl"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/layout"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/renderer"
	canvasrenderer "github.com/code4policy/dataviz-with-chatgpt-realseanz/renderer/canvas"
	svgrenderer "github.com/code4policy/dataviz-with-chatgpt-realseanz/renderer/svg"
)

const (
	measurerCanvas   = "canvas"
	measurerOpentype = "opentype"
)

type renderOptions struct {
	In       string
	Out      string
	Chart    string
	Format   string
	Top      int
	Measurer string
	Debug    string
}

var renderOpts renderOptions

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderOpts.In, "in", "", "CSV data file (defaults to the chart's data source)")
	f.StringVar(&renderOpts.Out, "out", "output/chart.svg", "output file")
	f.StringVar(&renderOpts.Chart, "chart", "", "chart description file; built-in defaults are used when empty")
	f.StringVar(&renderOpts.Format, "format", "", "svg, html, pdf or png (inferred from --out when empty)")
	f.IntVar(&renderOpts.Top, "top", 0, "number of categories to draw (0 keeps the chart's setting)")
	f.StringVar(&renderOpts.Measurer, "measurer", "", "text measuring backend: canvas or opentype (defaults to the output backend)")
	f.StringVar(&renderOpts.Debug, "debug", "", "write the laid out chart as JSON to this path")

	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:          "render",
	Short:        "Render the top categories of a CSV file as a horizontal bar chart.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		l := newLogger(cmd)
		if err := run(renderOpts, l); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "已生成图表：%s\n", renderOpts.Out)
		}
		return nil
	},
}

// run 串联读取配置、加载数据、布局与渲染。
func run(opts renderOptions, log logrus.FieldLogger) error {
	if opts.Out == "" {
		return errors.New("an output path is required")
	}

	spec, baseDir, err := loadSpec(opts.Chart)
	if err != nil {
		return err
	}
	if opts.Top > 0 {
		spec.Data.Top = opts.Top
	}

	dataPath := opts.In
	if dataPath == "" {
		if spec.Data.Source == "" {
			return errors.New("no data file: pass --in or set data.source in the chart")
		}
		dataPath = spec.Data.Source
		if !filepath.IsAbs(dataPath) {
			dataPath = filepath.Join(baseDir, dataPath)
		}
	}
	spec.Data.Source = dataPath

	records, err := dataset.LoadFile(dataPath, dataset.Options{
		LabelColumn: spec.Data.LabelColumn,
		ValueColumn: spec.Data.ValueColumn,
		Logger:      log,
	})
	if err != nil {
		return errors.Wrap(err, "loading data")
	}
	log.WithFields(logrus.Fields{"file": dataPath, "rows": len(records)}).Debug("data loaded")

	format, err := outputFormat(opts.Format, opts.Out)
	if err != nil {
		return err
	}
	out, err := newBackend(format, baseDir, log)
	if err != nil {
		return err
	}
	ts, err := newTypesetter(opts.Measurer, out, baseDir, log)
	if err != nil {
		return err
	}

	result, err := layout.Build(spec, records, layout.BuildOptions{Typesetter: ts, Logger: log})
	if err != nil {
		return errors.Wrap(err, "laying out chart")
	}

	if opts.Debug != "" {
		if err := layout.WriteDebugJSON(result, opts.Debug); err != nil {
			return errors.Wrap(err, "writing debug layout")
		}
	}

	data, err := out.Render(result)
	if err != nil {
		return errors.Wrapf(err, "rendering %s", format)
	}
	if err := os.MkdirAll(filepath.Dir(opts.Out), 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing '%s'", opts.Out)
	}
	log.WithFields(logrus.Fields{
		"out":    opts.Out,
		"format": format,
		"bars":   len(result.Rects),
		"bytes":  len(data),
	}).Info("chart written")
	return nil
}

// loadSpec 读取图表描述文件；未指定时返回默认配置，相对路径以当前目录为基准。
func loadSpec(chartPath string) (layout.ChartSpec, string, error) {
	if chartPath == "" {
		return layout.DefaultSpec(), ".", nil
	}
	file, err := os.Open(chartPath)
	if err != nil {
		return layout.ChartSpec{}, "", errors.Wrapf(err, "opening chart '%s'", chartPath)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return layout.ChartSpec{}, "", errors.Wrapf(err, "parsing chart '%s'", chartPath)
	}
	spec, err := layout.SpecFromDocument(doc)
	if err != nil {
		return layout.ChartSpec{}, "", errors.Wrapf(err, "reading chart '%s'", chartPath)
	}
	return spec, filepath.Dir(chartPath), nil
}

func outputFormat(name, out string) (renderer.Format, error) {
	if name != "" {
		return renderer.ParseFormat(name)
	}
	return renderer.FormatFromPath(out)
}

func newBackend(format renderer.Format, baseDir string, log logrus.FieldLogger) (renderer.Backend, error) {
	switch format {
	case renderer.FormatSVG, renderer.FormatHTML:
		return svgrenderer.NewRendererWithOptions(svgrenderer.Options{BaseDir: baseDir, Format: format, Logger: log}), nil
	case renderer.FormatPDF, renderer.FormatPNG:
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Format: format}), nil
	default:
		return nil, errors.Errorf("unsupported format '%s'", format)
	}
}

// newTypesetter 选择测量后端；未指定时与输出后端相同。
func newTypesetter(name string, out renderer.Backend, baseDir string, log logrus.FieldLogger) (layout.Typesetter, error) {
	switch name {
	case "":
		if out == nil {
			return nil, errors.New("no measurer selected")
		}
		return out, nil
	case measurerCanvas:
		if r, ok := out.(*canvasrenderer.Renderer); ok {
			return r, nil
		}
		return canvasrenderer.NewRenderer(baseDir), nil
	case measurerOpentype:
		if r, ok := out.(*svgrenderer.Renderer); ok {
			return r, nil
		}
		return svgrenderer.NewRendererWithOptions(svgrenderer.Options{BaseDir: baseDir, Logger: log}), nil
	default:
		return nil, errors.Errorf("unknown measurer '%s' (want canvas or opentype)", name)
	}
}

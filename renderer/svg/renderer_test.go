package svgrenderer

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code4policy/dataviz-with-chatgpt-realseanz/dataset"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/fonts"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/layout"
	"github.com/code4policy/dataviz-with-chatgpt-realseanz/renderer"
)

var records = []dataset.Record{
	{Label: "Street Cleaning", Count: 41250},
	{Label: "Enforcement & Abandoned Vehicles", Count: 38900},
	{Label: "Employee & General Comments about the City of Boston", Count: 20010},
	{Label: "Trees", Count: 6980},
}

func build(t *testing.T, r *Renderer) *layout.Result {
	t.Helper()
	res, err := layout.Build(layout.DefaultSpec(), records, layout.BuildOptions{Typesetter: r})
	require.NoError(t, err)
	return res
}

func TestMeasurer(t *testing.T) {
	r := NewRenderer("")
	m, err := r.Measurer(layout.FontResource{Name: "Axis", Src: fonts.DefaultSrc}, 14)
	require.NoError(t, err)
	assert.Zero(t, m.TextWidth(""))
	w := m.TextWidth("Street Cleaning")
	assert.Greater(t, w, 50.0)
	assert.Less(t, w, 180.0)
	assert.Greater(t, m.TextWidth("Street Cleaning Crew"), w)

	_, err = r.Measurer(layout.FontResource{Name: "Axis"}, 0)
	assert.Error(t, err)
}

func TestMeasurerFallsBackOnMissingFont(t *testing.T) {
	r := NewRenderer(t.TempDir())
	m, err := r.Measurer(layout.FontResource{Name: "Gone", Src: "nope.ttf"}, 14)
	require.NoError(t, err)
	assert.Greater(t, m.TextWidth("Sanitation"), 0.0)
}

func TestRenderSVG(t *testing.T) {
	r := NewRenderer("")
	data, err := r.Render(build(t, r))
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, `width="800"`)
	assert.Contains(t, out, `height="400"`)
	assert.Contains(t, out, ".bar { fill: #4682b4; transition: fill 200ms; }")
	assert.Contains(t, out, ".bar:hover { fill: #ff7f50; }")
	assert.Equal(t, len(records), strings.Count(out, `class="bar"`))
	assert.Contains(t, out, "Enforcement &amp; Abandoned")
	assert.Contains(t, out, `font-family="&#39;Times New Roman&#39;, serif"`)
	assert.Contains(t, out, `text-anchor="end"`)
	assert.Contains(t, out, ">41250</text>")
	assert.Contains(t, out, ">40,000</text>")

	// 最长的标签在 180px 下至少折成两行。
	longest := ""
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Employee") {
			longest = line
		}
	}
	assert.GreaterOrEqual(t, strings.Count(longest, "<tspan"), 2)
	assert.Contains(t, longest, `dy="0.32em"`)
	assert.Contains(t, longest, `dy="1.42em"`)

	// 输出应是合法 XML。
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err != nil {
			assert.Equal(t, "EOF", err.Error())
			break
		}
	}
}

func TestRenderHTML(t *testing.T) {
	r := NewRendererWithOptions(Options{Format: renderer.FormatHTML})
	res := build(t, r)
	res.Meta.Title = "Top <10>"
	data, err := r.Render(res)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Top &lt;10&gt;</title>")
	assert.Contains(t, out, `<div id="chart">`)
	assert.NotContains(t, out, "<?xml")
	assert.Contains(t, out, ".bar:hover")
}

func TestRenderRejectsBadInput(t *testing.T) {
	r := NewRenderer("")
	_, err := r.Render(nil)
	assert.Error(t, err)
	_, err = r.Render(&layout.Result{})
	assert.Error(t, err)

	pdf := NewRendererWithOptions(Options{Format: renderer.FormatPDF})
	_, err = pdf.Render(build(t, pdf))
	assert.Error(t, err)
}

package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"chart.svg":       FormatSVG,
		"out/Chart.HTML":  FormatHTML,
		"index.htm":       FormatHTML,
		"/tmp/report.pdf": FormatPDF,
		"reasons.png":     FormatPNG,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("chart")
	assert.Error(t, err)
	_, err = FormatFromPath("chart.gif")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.True(t, FormatSVG.Interactive())
	assert.True(t, FormatHTML.Interactive())
	assert.False(t, FormatPNG.Interactive())
}

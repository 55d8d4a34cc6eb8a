package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"top":    10,
		"total":  194285.0,
		"source": "boston_311_2023_by_reason.csv",
		"rows": []any{
			map[string]any{"label": "Street Cleaning"},
		},
		"tags": []string{"boston", "311"},
	}

	cases := []struct {
		in, want string
	}{
		{"Top ${top} reasons", "Top 10 reasons"},
		{"${total|comma} requests", "194,285 requests"},
		{"${ total | comma }", "194,285"},
		{"${rows[0].label|upper}", "STREET CLEANING"},
		{"${tags[1]}", "311"},
		{"${missing}", "${missing}"},
		{"${rows[3].label}", "${rows[3].label}"},
		{"${top|bogus}", "${top|bogus}"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Interpolate(c.in, data), c.in)
	}
}

func TestInterpolateNilData(t *testing.T) {
	assert.Equal(t, "Top ${top}", Interpolate("Top ${top}", nil))
}

func TestCommaFilterOnStrings(t *testing.T) {
	data := map[string]string{"n": "1234567", "s": "abc"}
	assert.Equal(t, "1,234,567", Interpolate("${n|comma}", data))
	assert.Equal(t, "abc", Interpolate("${s|comma}", data))
}

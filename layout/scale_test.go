package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearScale(t *testing.T) {
	x := NewLinear(0, 41250, 0, 500)
	assert.Equal(t, 0.0, x.Scale(0))
	assert.InDelta(t, 500, x.Scale(41250), 1e-9)
	assert.InDelta(t, 250, x.Scale(20625), 1e-9)

	flat := NewLinear(0, 0, 0, 500)
	assert.Equal(t, 250.0, flat.Scale(0))
}

func TestLinearTicks(t *testing.T) {
	x := NewLinear(0, 41250, 0, 500)
	assert.Equal(t, []float64{0, 10000, 20000, 30000, 40000}, x.Ticks(5))

	format := x.TickFormat(5)
	assert.Equal(t, "0", format(0))
	assert.Equal(t, "10,000", format(10000))
	assert.Equal(t, "40,000", format(40000))

	small := NewLinear(0, 1, 0, 500)
	ticks := small.Ticks(5)
	require.Len(t, ticks, 6)
	assert.InDelta(t, 0.2, ticks[1], 1e-12)
	assert.Equal(t, "0.2", small.TickFormat(5)(ticks[1]))

	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10, 12}, NewLinear(0, 12, 0, 1).Ticks(5))
	assert.Equal(t, []float64{7}, NewLinear(7, 7, 0, 1).Ticks(5))
	assert.Nil(t, NewLinear(0, 10, 0, 1).Ticks(0))
	assert.Equal(t, []float64{10, 5, 0}, NewLinear(10, 0, 0, 1).Ticks(2))
}

func TestBandScale(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	y := NewBand(keys, 0, 200, 0.1)
	step := 200 / 10.1
	assert.InDelta(t, step, y.Step(), 1e-9)
	assert.InDelta(t, step*0.9, y.Bandwidth(), 1e-9)
	assert.InDelta(t, step*0.1, y.At(0), 1e-9)

	last, ok := y.Pos("j")
	require.True(t, ok)
	assert.InDelta(t, 200-step*0.1, last+y.Bandwidth(), 1e-9)

	_, ok = y.Pos("zzz")
	assert.False(t, ok)

	empty := NewBand(nil, 0, 200, 0.1)
	assert.InDelta(t, 200, empty.Step(), 1e-9)
}

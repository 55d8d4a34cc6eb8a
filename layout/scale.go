package layout

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	tickE10 = math.Sqrt(50)
	tickE5  = math.Sqrt(10)
	tickE2  = math.Sqrt(2)
)

// Linear maps a continuous domain onto a pixel range.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinear builds a linear scale from [d0,d1] to [r0,r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Scale maps v into the range. A collapsed domain maps everything to the range midpoint.
func (s Linear) Scale(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Ticks returns roughly count human-friendly values (1, 2 or 5 × 10^k steps) inside the domain.
func (s Linear) Ticks(count int) []float64 {
	return ticks(s.D0, s.D1, float64(count))
}

// TickFormat formats tick values with thousands grouping and just enough decimals for the tick step.
func (s Linear) TickFormat(count int) func(float64) string {
	step := math.Abs(tickStep(s.D0, s.D1, float64(count)))
	precision := 0
	if step > 0 && !math.IsInf(step, 0) && !math.IsNaN(step) {
		precision = int(math.Max(0, -math.Floor(math.Log10(step))))
	}
	format := "#,###."
	if precision > 0 {
		format += strings.Repeat("#", precision)
	}
	return func(v float64) string {
		return humanize.FormatFloat(format, v)
	}
}

func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= tickE10:
		factor = 10
	case e >= tickE5:
		factor = 5
	case e >= tickE2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

func ticks(start, stop, count float64) []float64 {
	if !(count > 0) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	i1, i2, inc := tickSpec(start, stop, count)
	if !(i2 >= i1) {
		return nil
	}
	n := int(i2-i1) + 1
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		idx := i
		if reverse {
			idx = n - 1 - i
		}
		if inc < 0 {
			out[i] = (i1 + float64(idx)) / -inc
		} else {
			out[i] = (i1 + float64(idx)) * inc
		}
	}
	return out
}

// tickStep returns the signed distance between adjacent ticks (negative inc means 1/inc).
func tickStep(start, stop, count float64) float64 {
	if !(count > 0) || start == stop {
		return 0
	}
	if stop < start {
		start, stop = stop, start
	}
	_, _, inc := tickSpec(start, stop, count)
	if inc < 0 {
		return -1 / inc
	}
	return inc
}

// Band splits a pixel range into equal bands, one per domain key.
type Band struct {
	keys      []string
	index     map[string]int
	start     float64
	step      float64
	bandwidth float64
}

// NewBand lays keys out over [r0,r1] with equal inner and outer padding (fractions of a step) and centred alignment.
func NewBand(keys []string, r0, r1, padding float64) Band {
	b := Band{keys: keys, index: make(map[string]int, len(keys))}
	for i, k := range keys {
		if _, dup := b.index[k]; !dup {
			b.index[k] = i
		}
	}
	n := float64(len(keys))
	b.step = (r1 - r0) / math.Max(1, n-padding+padding*2)
	b.start = r0 + (r1-r0-b.step*(n-padding))*0.5
	b.bandwidth = b.step * (1 - padding)
	return b
}

// Pos returns the start of the band for key; ok is false for unknown keys.
func (b Band) Pos(key string) (float64, bool) {
	i, ok := b.index[key]
	if !ok {
		return 0, false
	}
	return b.At(i), true
}

// At returns the start of the i-th band.
func (b Band) At(i int) float64 { return b.start + b.step*float64(i) }

func (b Band) Bandwidth() float64 { return b.bandwidth }
func (b Band) Step() float64      { return b.step }

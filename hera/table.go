package hera

import "math"

// LerpTable maps a value in [min, max] to an output by linear
// interpolation between equally spaced breakpoints. Inputs outside the
// domain clamp to the edge values.
type LerpTable struct {
	data []float32
	min  float32
	max  float32
}

// NewLerpTable builds a table from an explicit breakpoint list spread
// evenly over [min, max]. At least two breakpoints are required.
func NewLerpTable(data []float32, min, max float32) *LerpTable {
	if len(data) < 2 {
		panic("hera: LerpTable needs at least two breakpoints")
	}
	d := make([]float32, len(data))
	copy(d, data)
	return &LerpTable{data: d, min: min, max: max}
}

// SampleFunc builds a table by sampling fn at n evenly spaced points
// over [min, max].
func SampleFunc(fn func(float64) float64, min, max float64, n int) *LerpTable {
	if n < 2 {
		panic("hera: SampleFunc needs at least two points")
	}
	data := make([]float32, n)
	step := (max - min) / float64(n-1)
	for i := range data {
		data[i] = float32(fn(min + float64(i)*step))
	}
	return &LerpTable{data: data, min: float32(min), max: float32(max)}
}

// Value interpolates the table at x.
func (t *LerpTable) Value(x float32) float32 {
	if x <= t.min {
		return t.data[0]
	}
	if x >= t.max {
		return t.data[len(t.data)-1]
	}
	pos := (x - t.min) / (t.max - t.min) * float32(len(t.data)-1)
	idx := int(pos)
	if idx >= len(t.data)-1 {
		return t.data[len(t.data)-1]
	}
	frac := pos - float32(idx)
	a := t.data[idx]
	b := t.data[idx+1]
	return a + frac*(b-a)
}

// Slider response curves measured from the Juno-60 front panel.
var (
	curveLFORateToFreq    = NewLerpTable([]float32{0.3, 0.85, 3.39, 11.49, 22.22}, 0, 1)
	curveLFODelayToDelay  = NewLerpTable([]float32{0, 0.0639, 0.85, 1.2, 2.685}, 0, 1)
	curveLFODelayToAttack = NewLerpTable([]float32{0.001, 0.053, 0.188, 0.348, 1.15}, 0, 1)

	curveHPFToFreq = NewLerpTable([]float32{140, 250, 520, 1220}, 0, 1)

	curveAttackToDuration  = NewLerpTable([]float32{0.001, 0.03, 0.24, 0.65, 3.25}, 0, 1)
	curveDecayToDuration   = NewLerpTable([]float32{0.002, 0.096, 0.984, 4.449, 19.783}, 0, 1)
	curveReleaseToDuration = NewLerpTable([]float32{0.002, 0.096, 0.984, 4.449, 19.783}, 0, 1)

	curveSoftClipTanh3 = SampleFunc(func(x float64) float64 { return math.Tanh(3.0 * x) }, -1, 1, 128)

	curveSineLFO = SampleFunc(func(x float64) float64 { return math.Sin(2.0 * math.Pi * x) }, 0, 1, 128)
)

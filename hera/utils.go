package hera

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// midiNoteToFreq converts MIDI note number to frequency in Hz.
func midiNoteToFreq(note int) float32 {
	const a4Freq = 440.0
	const a4Note = 69
	exponent := float32(note-a4Note) / 12.0
	return a4Freq * pow2Approx(exponent)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// xorshift32 is a small deterministic PRNG for the noise sources.
// Audio noise does not need crypto quality, it needs zero allocation
// and reproducibility in tests.
type xorshift32 struct {
	state uint32
}

func newXorshift32(seed uint32) xorshift32 {
	if seed == 0 {
		seed = 12345
	}
	return xorshift32{state: seed}
}

// nextFloat returns a value in [0, 1).
func (r *xorshift32) nextFloat() float32 {
	r.state ^= r.state << 13
	r.state ^= r.state >> 17
	r.state ^= r.state << 5
	return float32(r.state&0x7FFFFFFF) / float32(0x7FFFFFFF)
}

// nextBipolar returns a value in [-1, 1).
func (r *xorshift32) nextBipolar() float32 {
	return r.nextFloat()*2.0 - 1.0
}

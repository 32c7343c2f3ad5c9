package hera

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// VCF is the per-voice resonant lowpass, a four-pole ladder solved
// with zero-delay feedback. Cutoff and resonance arrive as per-sample
// buffers because the cutoff is recomputed every sample from the
// octave-domain modulation sum.
type VCF struct {
	sampleRate float32
	z          [4]float32
}

// NewVCF creates a filter at the given sample rate.
func NewVCF(sampleRate float32) *VCF {
	return &VCF{sampleRate: sampleRate}
}

// SetSampleRate updates the sample rate.
func (f *VCF) SetSampleRate(rate float32) {
	f.sampleRate = rate
}

// Reset clears the filter memory.
func (f *VCF) Reset() {
	f.z = [4]float32{}
}

// ProcessBlock filters buf in place. cutoff holds per-sample cutoff
// frequencies in Hz, resonance per-sample resonance in [0, 1].
func (f *VCF) ProcessBlock(buf, cutoff, resonance []float32, n int) {
	for i := 0; i < n; i++ {
		fc := cutoff[i] / f.sampleRate
		fc = clampf(fc, 1e-5, 0.45)

		g := float32(math.Tan(math.Pi * float64(fc)))
		G := g / (1.0 + g)
		k := 4.0 * clampf(resonance[i], 0, 1)

		// Zero-input response of the cascade, for the feedback solve.
		den := 1.0 + g
		s1 := f.z[0] / den
		s2 := f.z[1] / den
		s3 := f.z[2] / den
		s4 := f.z[3] / den
		S := G*(G*(G*s1+s2)+s3) + s4

		G4 := G * G * G * G
		u := (buf[i] - k*S) / (1.0 + k*G4)

		// Four one-pole stages in series.
		x := u
		for j := 0; j < 4; j++ {
			v := (x - f.z[j]) * G
			y := v + f.z[j]
			f.z[j] = float32(dspcore.FlushDenormals(float64(y + v)))
			x = y
		}
		buf[i] = x
	}
}

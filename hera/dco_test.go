package hera

import (
	"math"
	"testing"
)

func renderDCO(d *DCO, pwmValue float32, n int) []float32 {
	out := make([]float32, n)
	detune := ones(n)
	pwm := make([]float32, n)
	for i := range pwm {
		pwm[i] = pwmValue
	}
	for off := 0; off < n; off += MaxBlockSize {
		blk := n - off
		if blk > MaxBlockSize {
			blk = MaxBlockSize
		}
		d.ProcessBlock(out[off:off+blk], detune[off:off+blk], pwm[off:off+blk], blk)
	}
	return out
}

func TestDCOSawFrequency(t *testing.T) {
	const sampleRate = 44100
	tests := []struct {
		freq      float32
		tolerance float32
	}{
		{110, 1.0},
		{440, 2.0},
		{880, 4.0},
	}
	for _, tt := range tests {
		d := NewDCO(sampleRate)
		d.SetFrequency(tt.freq)
		d.SetSawLevel(1.0)
		d.FlushSmoothers()

		out := renderDCO(d, 0, sampleRate)
		got := measureFundamentalFreq(out, sampleRate)
		if math.Abs(float64(got-tt.freq)) > float64(tt.tolerance) {
			t.Errorf("saw at %v Hz: measured %v Hz", tt.freq, got)
		}
	}
}

func TestDCOSubOctaveIsHalfFrequency(t *testing.T) {
	const sampleRate = 44100
	d := NewDCO(sampleRate)
	d.SetFrequency(440)
	d.SetSubLevel(1.0)
	d.FlushSmoothers()

	out := renderDCO(d, 0, sampleRate)
	got := measureFundamentalFreq(out, sampleRate)
	if math.Abs(float64(got-220)) > 2.0 {
		t.Fatalf("sub oscillator at 440 Hz master: measured %v Hz, want ~220", got)
	}
}

func TestDCOPulseWidthNarrowsWithPWM(t *testing.T) {
	const sampleRate = 44100
	duty := func(pwm float32) float64 {
		d := NewDCO(sampleRate)
		d.SetFrequency(220)
		d.SetPulseLevel(1.0)
		d.FlushSmoothers()
		out := renderDCO(d, pwm, sampleRate)

		high := 0
		for _, s := range out {
			if s > 0 {
				high++
			}
		}
		return float64(high) / float64(len(out))
	}

	square := duty(0)
	if math.Abs(square-0.5) > 0.02 {
		t.Fatalf("duty cycle with no PWM: got %v, want ~0.5", square)
	}
	narrow := duty(1.0)
	if math.Abs(narrow-0.05) > 0.02 {
		t.Fatalf("duty cycle at full PWM: got %v, want ~0.05", narrow)
	}
}

func TestDCONoiseIsNonSilentAndBounded(t *testing.T) {
	const sampleRate = 44100
	d := NewDCO(sampleRate)
	d.SetNoiseLevel(1.0)
	d.FlushSmoothers()

	out := renderDCO(d, 0, sampleRate/4)
	if rms := windowRMS(out); rms < 0.1 {
		t.Fatalf("noise RMS too low: %v", rms)
	}
	for i, s := range out {
		if s < -1.0 || s > 1.0 {
			t.Fatalf("noise sample %d out of range: %v", i, s)
		}
	}
}

func TestDCOFlushSmoothersSnapsLevels(t *testing.T) {
	const sampleRate = 44100
	d := NewDCO(sampleRate)
	d.SetFrequency(100)
	d.SetSawLevel(1.0)
	d.FlushSmoothers()

	out := make([]float32, 4)
	d.ProcessBlock(out, ones(4), zeros(4), 4)
	// Phase starts at zero, so the first saw samples sit near -1. A
	// still-ramping level smoother would leave them near zero instead.
	if out[0] > -0.9 {
		t.Fatalf("first sample after flush: got %v, want near -1", out[0])
	}
}

func TestDCOResetClearsPhase(t *testing.T) {
	const sampleRate = 44100
	d := NewDCO(sampleRate)
	d.SetFrequency(440)
	d.SetSawLevel(1.0)
	d.FlushSmoothers()
	renderDCO(d, 0, 1000)

	d.Reset()
	if d.phase != 0 {
		t.Fatalf("phase after reset: got %v", d.phase)
	}
	if d.subValue != 1.0 {
		t.Fatalf("sub state after reset: got %v", d.subValue)
	}
}

func TestDCOMixedOutputStaysFinite(t *testing.T) {
	const sampleRate = 44100
	d := NewDCO(sampleRate)
	d.SetFrequency(1000)
	d.SetSawLevel(1.0)
	d.SetPulseLevel(1.0)
	d.SetSubLevel(1.0)
	d.SetNoiseLevel(1.0)
	d.FlushSmoothers()

	out := renderDCO(d, 0.5, sampleRate/2)
	if !allFinite(out) {
		t.Fatalf("mixed DCO output produced non-finite samples")
	}
}

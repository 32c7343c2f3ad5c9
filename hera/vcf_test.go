package hera

import (
	"math"
	"testing"
)

func filterSine(f *VCF, freqHz, cutoffHz, resonance float32, n int) []float32 {
	const sampleRate = 44100.0
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = float32(math.Sin(2.0 * math.Pi * float64(freqHz) * float64(i) / sampleRate))
	}
	cutoff := make([]float32, n)
	res := make([]float32, n)
	for i := range cutoff {
		cutoff[i] = cutoffHz
		res[i] = resonance
	}
	for off := 0; off < n; off += MaxBlockSize {
		blk := n - off
		if blk > MaxBlockSize {
			blk = MaxBlockSize
		}
		f.ProcessBlock(buf[off:off+blk], cutoff[off:off+blk], res[off:off+blk], blk)
	}
	return buf
}

func TestVCFPassesBelowCutoff(t *testing.T) {
	f := NewVCF(44100)
	out := filterSine(f, 100, 2000, 0, 44100)
	rms := windowRMS(out[len(out)/2:])
	// A 100 Hz tone through a 2 kHz lowpass keeps nearly all its energy
	// (sine RMS is 1/sqrt(2) ~ 0.707).
	if rms < 0.6 {
		t.Fatalf("passband RMS: got %v, want ~0.7", rms)
	}
}

func TestVCFAttenuatesAboveCutoff(t *testing.T) {
	f := NewVCF(44100)
	out := filterSine(f, 8000, 500, 0, 44100)
	rms := windowRMS(out[len(out)/2:])
	// Four poles at 4 octaves above cutoff is ~96 dB; anything under
	// 1% residual proves steep attenuation.
	if rms > 0.01 {
		t.Fatalf("stopband RMS: got %v, want < 0.01", rms)
	}
}

func TestVCFResonanceBoostsNearCutoff(t *testing.T) {
	const cutoffHz = 1000
	flat := NewVCF(44100)
	outFlat := filterSine(flat, cutoffHz, cutoffHz, 0, 44100)

	peaked := NewVCF(44100)
	outPeaked := filterSine(peaked, cutoffHz, cutoffHz, 0.9, 44100)

	flatRMS := windowRMS(outFlat[len(outFlat)/2:])
	peakedRMS := windowRMS(outPeaked[len(outPeaked)/2:])
	if peakedRMS < flatRMS*1.5 {
		t.Fatalf("resonance should boost at cutoff: flat %v, resonant %v", flatRMS, peakedRMS)
	}
}

func TestVCFStaysFiniteAtExtremes(t *testing.T) {
	f := NewVCF(44100)

	n := 44100
	buf := make([]float32, n)
	cutoff := make([]float32, n)
	res := make([]float32, n)
	prng := newXorshift32(777)
	for i := range buf {
		buf[i] = prng.nextBipolar() * 4.0
		cutoff[i] = 40000 // clamped internally
		res[i] = 1.0
	}
	for off := 0; off < n; off += MaxBlockSize {
		blk := n - off
		if blk > MaxBlockSize {
			blk = MaxBlockSize
		}
		f.ProcessBlock(buf[off:off+blk], cutoff[off:off+blk], res[off:off+blk], blk)
	}
	if !allFinite(buf) {
		t.Fatalf("filter produced non-finite output at extreme settings")
	}
}

func TestVCFResetClearsMemory(t *testing.T) {
	f := NewVCF(44100)
	filterSine(f, 500, 1000, 0.5, 4096)
	f.Reset()
	if f.z != [4]float32{} {
		t.Fatalf("reset left filter state: %v", f.z)
	}
}

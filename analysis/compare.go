// Package analysis measures how close a rendered synth note is to a
// reference recording. The combined score drives the automatic knob
// fitting, so each sub-metric targets something a slider can change:
// waveform shape, loudness contour, spectrum, and release slope.
package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Metrics holds the distance measurements between two renders.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE          float64 `json:"time_rmse"`
	EnvelopeRMSEDB    float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB    float64 `json:"spectral_rmse_db"`
	RefReleaseDBPerS  float64 `json:"ref_release_db_per_s"`
	CandReleaseDBPerS float64 `json:"cand_release_db_per_s"`
	ReleaseDiffDBPerS float64 `json:"release_diff_db_per_s"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

const (
	envFrame = 256
	envHop   = 128
)

// Compare aligns candidate against reference and returns distance
// metrics plus a combined score in [0, 1], 0 meaning identical.
func Compare(reference, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
	}
	worst := func() Metrics {
		m.Score = 1.0
		m.Similarity = 0.0
		return m
	}
	if sampleRate <= 0 || len(reference) == 0 || len(candidate) == 0 {
		return worst()
	}

	ref := trimSilence(reference, 1e-6)
	cand := trimSilence(candidate, 1e-6)
	if len(ref) == 0 || len(cand) == 0 {
		return worst()
	}
	ref = normalizeLoudness(ref, 0.1)
	cand = normalizeLoudness(cand, 0.1)

	maxLag := sampleRate / 2
	if maxLag > len(ref)-1 {
		maxLag = len(ref) - 1
	}
	if maxLag > len(cand)-1 {
		maxLag = len(cand) - 1
	}
	if maxLag < 1 {
		maxLag = 1
	}
	lag := bestLag(ref, cand, maxLag)
	m.LagSamples = lag

	refA, candA := dropLag(ref, cand, lag)
	n := min(len(refA), len(candA))
	if n < 256 {
		return worst()
	}
	if limit := sampleRate * 12; n > limit {
		n = limit
	}
	refA = refA[:n]
	candA = candA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmsDiff(refA, candA)

	refEnv := loudnessEnvelope(refA, envFrame, envHop)
	candEnv := loudnessEnvelope(candA, envFrame, envHop)
	m.EnvelopeRMSEDB = envelopeDistanceDB(refEnv, candEnv)

	m.SpectralRMSEDB = spectralDistanceDB(refA, candA)

	hopSec := float64(envHop) / float64(sampleRate)
	m.RefReleaseDBPerS = releaseSlopeDBPerS(refEnv, hopSec)
	m.CandReleaseDBPerS = releaseSlopeDBPerS(candEnv, hopSec)
	if finite(m.RefReleaseDBPerS) && finite(m.CandReleaseDBPerS) {
		m.ReleaseDiffDBPerS = math.Abs(m.RefReleaseDBPerS - m.CandReleaseDBPerS)
	}

	timeNorm := clamp01(m.TimeRMSE / 0.25)
	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	relNorm := clamp01(m.ReleaseDiffDBPerS / 40.0)
	m.Score = clamp01(0.30*timeNorm + 0.25*envNorm + 0.30*specNorm + 0.15*relNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

func trimSilence(x []float64, threshold float64) []float64 {
	for i := range x {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeLoudness(x []float64, target float64) []float64 {
	r := rms(x)
	if r <= 1e-12 {
		return append([]float64(nil), x...)
	}
	g := target / r
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

// bestLag finds the offset with maximum cross-correlation, sampled on
// a stride for speed since sub-sample alignment is not needed here.
func bestLag(ref, cand []float64, maxLag int) int {
	stride := 2
	if len(ref) > 200000 || len(cand) > 200000 {
		stride = 4
	}
	bestScore := math.Inf(-1)
	best := 0
	for lag := -maxLag; lag <= maxLag; lag++ {
		s := laggedDot(ref, cand, lag, stride)
		if s > bestScore {
			bestScore = s
			best = lag
		}
	}
	return best
}

func laggedDot(a, b []float64, lag, stride int) float64 {
	ai, bi := 0, 0
	if lag >= 0 {
		ai = lag
	} else {
		bi = -lag
	}
	n := min(len(a)-ai, len(b)-bi)
	var sum float64
	for i := 0; i < n; i += stride {
		sum += a[ai+i] * b[bi+i]
	}
	return sum
}

func dropLag(ref, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	if -lag >= len(cand) {
		return nil, nil
	}
	return ref, cand[-lag:]
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func rmsDiff(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func loudnessEnvelope(x []float64, frame, hop int) []float64 {
	if len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := range out {
		out[i] = rms(x[i*hop : i*hop+frame])
	}
	return out
}

func envelopeDistanceDB(refEnv, candEnv []float64) float64 {
	n := min(len(refEnv), len(candEnv))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := dbFS(refEnv[i]) - dbFS(candEnv[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// spectralDistanceDB compares Hann-windowed magnitude spectra of the
// opening segment, bin by bin in dB.
func spectralDistanceDB(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n < 1024 {
		return 0
	}
	fftSize := 4096
	if n < fftSize {
		fftSize = 1024
	}
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return 0
	}

	window := make([]float64, fftSize)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(fftSize-1))
	}
	bufA := make([]float64, fftSize)
	bufB := make([]float64, fftSize)
	for i := 0; i < fftSize; i++ {
		bufA[i] = a[i] * window[i]
		bufB[i] = b[i] * window[i]
	}

	specA := make([]complex128, fftSize/2+1)
	specB := make([]complex128, fftSize/2+1)
	plan.Forward(specA, bufA)
	plan.Forward(specB, bufB)

	bins := fftSize / 2
	var sum float64
	for k := 1; k < bins; k++ {
		d := dbFS(cmplx.Abs(specA[k])) - dbFS(cmplx.Abs(specB[k]))
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

func dbFS(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

// releaseSlopeDBPerS fits a line to the post-peak envelope in dB and
// returns its slope. NaN means the tail was too short to fit.
func releaseSlopeDBPerS(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	peak := math.Inf(-1)
	peakIdx := 0
	for i, v := range env {
		if db := dbFS(v); db > peak {
			peak = db
			peakIdx = i
		}
	}
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}

	// Stop at -60 dB below peak; below that the fit chases noise.
	end := len(env)
	for i := start; i < len(env); i++ {
		if dbFS(env[i]) < peak-60.0 {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := dbFS(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

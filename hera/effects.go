package hera

import (
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/charlesvestal/move-anything-hera/dsp"
)

// HPF is the shared high-pass stage applied to the voice mix. The
// amount slider selects the corner frequency through a measured curve.
type HPF struct {
	sampleRate float32
	amount     float32
	filter     *dsp.Biquad
}

// NewHPF creates the high-pass stage.
func NewHPF(sampleRate float32) *HPF {
	h := &HPF{
		sampleRate: sampleRate,
		filter:     dsp.NewHighpass(curveHPFToFreq.Value(0), sampleRate, 0.707),
	}
	return h
}

// SetAmount sets the slider position in [0, 1].
func (h *HPF) SetAmount(amount float32) {
	h.amount = clampf(amount, 0, 1)
	freq := curveHPFToFreq.Value(h.amount)
	h.filter.SetCoefficients(dsp.HighpassCoefficients(freq, h.sampleRate, 0.707))
}

// ProcessBlock filters buf in place.
func (h *HPF) ProcessBlock(buf []float32, n int) {
	for i := 0; i < n; i++ {
		buf[i] = h.filter.Process(buf[i])
	}
}

// Reset clears the filter memory.
func (h *HPF) Reset() {
	h.filter.Reset()
}

// VCA is the shared output amplifier. The depth slider maps linearly
// to gain with unity at the 0.5 center detent.
type VCA struct {
	smoothGain *SmoothValue
}

// NewVCA creates the amplifier stage.
func NewVCA(sampleRate float32) *VCA {
	v := &VCA{smoothGain: NewSmoothValue(10e-3, sampleRate)}
	v.smoothGain.SetCurrentAndTarget(1.0)
	return v
}

// SetAmount sets the depth slider position in [0, 1].
func (v *VCA) SetAmount(amount float32) {
	v.smoothGain.SetTarget(2.0 * clampf(amount, 0, 1))
}

// ProcessBlock applies the smoothed gain to buf in place.
func (v *VCA) ProcessBlock(buf []float32, n int) {
	for i := 0; i < n; i++ {
		buf[i] *= v.smoothGain.Next()
	}
}

// softClipBlock applies the tanh(3x)-shaped transfer in place. The
// table clamps its domain, so output never leaves [-1, 1].
func softClipBlock(buf []float32, n int) {
	for i := 0; i < n; i++ {
		buf[i] = curveSoftClipTanh3.Value(buf[i])
	}
}

// chorusMode captures the modulation settings of the Juno chorus
// buttons: I, II, and both pressed together.
type chorusMode struct {
	rateHz  float32
	depthMs float32
}

var (
	chorusModeI    = chorusMode{rateHz: 0.513, depthMs: 1.8}
	chorusModeII   = chorusMode{rateHz: 0.863, depthMs: 1.8}
	chorusModeBoth = chorusMode{rateHz: 9.75, depthMs: 0.2}
)

// Chorus is the mono-in stereo-out BBD chorus model. One triangle
// modulator drives both channels with opposite polarity, which is
// what spreads the image.
type Chorus struct {
	sampleRate float32
	stageI     bool
	stageII    bool

	delay       *dsp.DelayLine
	baseSamples float32
	depth       float32 // in samples
	rate        float32 // cycles per sample
	phase       float32
	smoothWet   *SmoothValue
}

// NewChorus creates the chorus stage.
func NewChorus(sampleRate float32) *Chorus {
	const baseDelayMs = 3.5
	const maxDepthMs = 2.5
	base := baseDelayMs * sampleRate / 1000.0
	size := int(base+maxDepthMs*sampleRate/1000.0) + 4
	c := &Chorus{
		sampleRate:  sampleRate,
		delay:       dsp.NewDelayLine(size),
		baseSamples: base,
		smoothWet:   NewSmoothValue(20e-3, sampleRate),
	}
	c.update()
	return c
}

// SetStageI enables or disables the first chorus button.
func (c *Chorus) SetStageI(on bool) {
	c.stageI = on
	c.update()
}

// SetStageII enables or disables the second chorus button.
func (c *Chorus) SetStageII(on bool) {
	c.stageII = on
	c.update()
}

func (c *Chorus) update() {
	var mode chorusMode
	switch {
	case c.stageI && c.stageII:
		mode = chorusModeBoth
	case c.stageI:
		mode = chorusModeI
	case c.stageII:
		mode = chorusModeII
	default:
		c.smoothWet.SetTarget(0)
		return
	}
	c.rate = mode.rateHz / c.sampleRate
	c.depth = mode.depthMs * c.sampleRate / 1000.0
	c.smoothWet.SetTarget(0.5)
}

// Reset clears the delay memory and modulator phase.
func (c *Chorus) Reset() {
	c.delay.Reset()
	c.phase = 0
}

// ProcessBlock reads n mono samples from in and writes stereo into
// outL/outR. The delay line keeps running even when both stages are
// off so re-enabling the chorus does not click from stale memory.
func (c *Chorus) ProcessBlock(in, outL, outR []float32, n int) {
	for i := 0; i < n; i++ {
		// Triangle modulator in [-1, 1].
		var tri float32
		if c.phase < 0.5 {
			tri = 4.0*c.phase - 1.0
		} else {
			tri = 3.0 - 4.0*c.phase
		}
		c.phase += c.rate
		if c.phase >= 1.0 {
			c.phase -= 1.0
		}

		x := float32(dspcore.FlushDenormals(float64(in[i])))
		c.delay.Write(x)

		wet := c.smoothWet.Next()
		dry := 1.0 - wet

		mod := tri * c.depth
		wetL := c.delay.ReadFractional(c.baseSamples + mod)
		wetR := c.delay.ReadFractional(c.baseSamples - mod)

		outL[i] = dry*x + wet*wetL
		outR[i] = dry*x + wet*wetR
	}
}

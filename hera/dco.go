package hera

// DCO is the per-voice oscillator. It mixes four sub-waveforms (saw,
// pulse, sub-octave square, noise) at independently smoothed levels.
// The saw and pulse edges use polyBLEP correction to keep aliasing
// down without a wavetable.
type DCO struct {
	sampleRate float32

	smoothFreq  *SmoothValue
	smoothSaw   *SmoothValue
	smoothPulse *SmoothValue
	smoothSub   *SmoothValue
	smoothNoise *SmoothValue

	phase    float32
	subValue float32
	prng     xorshift32
}

// NewDCO creates an oscillator at the given sample rate.
func NewDCO(sampleRate float32) *DCO {
	d := &DCO{
		sampleRate:  sampleRate,
		smoothFreq:  NewSmoothValue(10e-3, sampleRate),
		smoothSaw:   NewSmoothValue(10e-3, sampleRate),
		smoothPulse: NewSmoothValue(10e-3, sampleRate),
		smoothSub:   NewSmoothValue(10e-3, sampleRate),
		smoothNoise: NewSmoothValue(10e-3, sampleRate),
		subValue:    1.0,
		prng:        newXorshift32(22222),
	}
	d.smoothFreq.SetCurrentAndTarget(440)
	return d
}

// SetFrequency sets the oscillator base frequency in Hz.
func (d *DCO) SetFrequency(freq float32) {
	d.smoothFreq.SetTarget(freq)
}

// SetSawLevel sets the sawtooth mix level in [0, 1].
func (d *DCO) SetSawLevel(level float32) { d.smoothSaw.SetTarget(level) }

// SetPulseLevel sets the pulse mix level in [0, 1].
func (d *DCO) SetPulseLevel(level float32) { d.smoothPulse.SetTarget(level) }

// SetSubLevel sets the sub-octave square mix level in [0, 1].
func (d *DCO) SetSubLevel(level float32) { d.smoothSub.SetTarget(level) }

// SetNoiseLevel sets the noise mix level in [0, 1].
func (d *DCO) SetNoiseLevel(level float32) { d.smoothNoise.SetTarget(level) }

// FlushSmoothers snaps every internal smoother to its target value.
// Called on retrigger so the first rendered sample of a reused voice
// does not ramp from a stale previous occupant's state.
func (d *DCO) FlushSmoothers() {
	d.smoothFreq.SetCurrentAndTarget(d.smoothFreq.Target())
	d.smoothSaw.SetCurrentAndTarget(d.smoothSaw.Target())
	d.smoothPulse.SetCurrentAndTarget(d.smoothPulse.Target())
	d.smoothSub.SetCurrentAndTarget(d.smoothSub.Target())
	d.smoothNoise.SetCurrentAndTarget(d.smoothNoise.Target())
}

// Reset clears the phase state. Smoother targets survive so a new
// note on the same slot starts from the configured mix.
func (d *DCO) Reset() {
	d.phase = 0
	d.subValue = 1.0
}

// polyBLEP returns the band-limited step correction for a discontinuity
// at phase 0, given phase in [0,1) and the per-sample increment.
func polyBLEP(phase, inc float32) float32 {
	if inc <= 0 {
		return 0
	}
	if phase < inc {
		t := phase / inc
		return 2*t - t*t - 1
	}
	if phase > 1.0-inc {
		t := (phase - 1.0) / inc
		return t*t + 2*t + 1
	}
	return 0
}

// ProcessBlock renders n samples into out. detune is a per-sample
// frequency multiplier (pitch range x LFO vibrato), pwm the per-sample
// pulse-width modulation amount in [0, 1].
func (d *DCO) ProcessBlock(out, detune, pwm []float32, n int) {
	for i := 0; i < n; i++ {
		freq := d.smoothFreq.Next() * detune[i]
		inc := freq / d.sampleRate
		if inc > 0.5 {
			inc = 0.5
		}

		d.phase += inc
		if d.phase >= 1.0 {
			d.phase -= 1.0
			// Sub-octave square flips on every saw wrap.
			d.subValue = -d.subValue
		}

		saw := 2.0*d.phase - 1.0 - polyBLEP(d.phase, inc)

		// Pulse narrows from 50% duty toward 5% as PWM increases.
		width := 0.5 - 0.45*clampf(pwm[i], 0, 1)
		var pulse float32 = -1.0
		if d.phase < width {
			pulse = 1.0
		}
		pulse += polyBLEP(d.phase, inc)
		pulse -= polyBLEP(wrapPhase(d.phase-width), inc)

		sub := d.subValue
		noise := d.prng.nextBipolar()

		out[i] = saw*d.smoothSaw.Next() +
			pulse*d.smoothPulse.Next() +
			sub*d.smoothSub.Next() +
			noise*d.smoothNoise.Next()
	}
}

func wrapPhase(p float32) float32 {
	if p < 0 {
		return p + 1.0
	}
	if p >= 1.0 {
		return p - 1.0
	}
	return p
}

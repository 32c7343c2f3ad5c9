package hera

// LFOWave selects the shared LFO waveform.
type LFOWave int

const (
	LFOTriangle LFOWave = iota
	LFOSine
	LFOSquare
	LFORandom
	LFONoise
)

// LFOTriggerMode selects how the LFO ramp envelope is gated.
type LFOTriggerMode int

const (
	// LFOTriggerManual leaves the ramp envelope ungated; the LFO
	// contributes nothing until a trigger arrives from elsewhere.
	LFOTriggerManual LFOTriggerMode = iota
	// LFOTriggerAuto gates the ramp envelope from aggregate voice
	// activity: note-on when the first voice starts sounding,
	// note-off when the last one stops.
	LFOTriggerAuto
)

// LFO is the single low-frequency oscillator shared by all voices.
// Its output is shaped by a delay-then-attack ramp envelope so the
// modulation fades in after a key press, like the hardware it models.
type LFO struct {
	sampleRate float32

	wave       LFOWave
	smoothFreq *SmoothValue
	phase      float32
	value      float32
	prng       xorshift32

	// Ramp envelope state.
	gate           bool
	delayDuration  float32
	attackDuration float32
	delayRemaining int
	ramp           float32
	attackCoeff    float32
	releaseCoeff   float32
}

// NewLFO creates a triangle LFO at the given sample rate.
func NewLFO(sampleRate float32) *LFO {
	l := &LFO{
		sampleRate: sampleRate,
		wave:       LFOTriangle,
		smoothFreq: NewSmoothValue(10e-3, sampleRate),
		prng:       newXorshift32(12345),
	}
	l.SetAttackDuration(0.001)
	l.releaseCoeff = onePoleCoeff(10e-3, sampleRate)
	return l
}

func onePoleCoeff(timeConstant, sampleRate float32) float32 {
	s := NewSmoothValue(timeConstant, sampleRate)
	return s.coeff
}

// SetWave selects the waveform and resets the phase.
func (l *LFO) SetWave(w LFOWave) {
	l.wave = w
	l.phase = 0
	l.value = 0
}

// SetFrequency sets the oscillation rate in Hz.
func (l *LFO) SetFrequency(freq float32) {
	l.smoothFreq.SetTarget(freq)
}

// SetDelayDuration sets how long the ramp envelope waits after a
// note-on before starting its attack, in seconds.
func (l *LFO) SetDelayDuration(seconds float32) {
	l.delayDuration = seconds
}

// SetAttackDuration sets the ramp-in time in seconds.
func (l *LFO) SetAttackDuration(seconds float32) {
	if seconds < 1e-4 {
		seconds = 1e-4
	}
	l.attackDuration = seconds
	l.attackCoeff = onePoleCoeff(seconds, l.sampleRate)
}

// NoteOn opens the ramp envelope gate and restarts the delay phase.
func (l *LFO) NoteOn() {
	l.gate = true
	l.delayRemaining = int(l.delayDuration * l.sampleRate)
}

// NoteOff closes the gate; the ramp decays back toward zero.
func (l *LFO) NoteOff() {
	l.gate = false
}

// Shutdown resets phase, output, and ramp state. Used when the trigger
// mode changes so stale phase does not leak into the next mode.
func (l *LFO) Shutdown() {
	l.phase = 0
	l.value = 0
	l.gate = false
	l.delayRemaining = 0
	l.ramp = 0
}

// next advances the oscillator core by one sample.
func (l *LFO) nextOsc() float32 {
	freq := l.smoothFreq.Next()
	inc := freq / l.sampleRate

	switch l.wave {
	case LFOTriangle:
		if l.phase < 0.5 {
			l.value = 4.0*l.phase - 1.0
		} else {
			l.value = 3.0 - 4.0*l.phase
		}
	case LFOSine:
		l.value = curveSineLFO.Value(l.phase)
	case LFOSquare:
		if l.phase < 0.5 {
			l.value = 1.0
		} else {
			l.value = -1.0
		}
	case LFORandom:
		// Sample and hold; value updates on phase wrap below.
	case LFONoise:
		l.value = l.prng.nextBipolar()
	}

	l.phase += inc
	if l.phase >= 1.0 {
		l.phase -= 1.0
		if l.wave == LFORandom {
			l.value = l.prng.nextBipolar()
		}
	}
	return l.value
}

// ProcessBlock writes n samples of ramp-shaped LFO output into out.
func (l *LFO) ProcessBlock(out []float32, n int) {
	for i := 0; i < n; i++ {
		osc := l.nextOsc()

		var target float32
		if l.gate {
			if l.delayRemaining > 0 {
				l.delayRemaining--
			} else {
				target = 1.0
			}
		}
		var coeff float32
		if target > l.ramp {
			coeff = l.attackCoeff
		} else {
			coeff = l.releaseCoeff
		}
		l.ramp = target + (l.ramp-target)*coeff

		out[i] = osc * l.ramp
	}
}

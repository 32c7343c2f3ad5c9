package hera

import "math"

type envelopeStage int

const (
	stageIdle envelopeStage = iota
	stageAttack
	stageDecay
	stageSustain
	stageRelease
)

// releaseFloor is the output level below which a release is considered
// fully decayed.
const releaseFloor = 1e-4

// Envelope is an ADSR generator with a linear attack and exponential
// decay/release segments. One voice owns two instances: a tunable one
// driven by the front-panel sliders and a fixed fast one that models
// the gate response when the VCA is switched to gate mode.
type Envelope struct {
	sampleRate float32

	attackDuration  float32
	decayDuration   float32
	sustainLevel    float32
	releaseDuration float32

	attackRate   float32
	decayCoeff   float32
	releaseCoeff float32

	stage envelopeStage
	value float32
}

// NewEnvelope creates an idle envelope at the given sample rate.
func NewEnvelope(sampleRate float32) *Envelope {
	e := &Envelope{sampleRate: sampleRate, sustainLevel: 1.0}
	e.SetAttackDuration(0.001)
	e.SetDecayDuration(0.002)
	e.SetReleaseDuration(0.002)
	return e
}

// SetSampleRate updates the sample rate and recomputes segment rates.
func (e *Envelope) SetSampleRate(rate float32) {
	e.sampleRate = rate
	e.SetAttackDuration(e.attackDuration)
	e.SetDecayDuration(e.decayDuration)
	e.SetReleaseDuration(e.releaseDuration)
}

// SetAttackDuration sets the attack time in seconds.
func (e *Envelope) SetAttackDuration(seconds float32) {
	if seconds < 1e-4 {
		seconds = 1e-4
	}
	e.attackDuration = seconds
	e.attackRate = 1.0 / (seconds * e.sampleRate)
}

// SetDecayDuration sets the decay time in seconds.
func (e *Envelope) SetDecayDuration(seconds float32) {
	if seconds < 1e-4 {
		seconds = 1e-4
	}
	e.decayDuration = seconds
	e.decayCoeff = segmentCoeff(seconds, e.sampleRate)
}

// SetReleaseDuration sets the release time in seconds.
func (e *Envelope) SetReleaseDuration(seconds float32) {
	if seconds < 1e-4 {
		seconds = 1e-4
	}
	e.releaseDuration = seconds
	e.releaseCoeff = segmentCoeff(seconds, e.sampleRate)
}

// SetSustainLevel sets the sustain level in [0, 1].
func (e *Envelope) SetSustainLevel(level float32) {
	e.sustainLevel = clampf(level, 0, 1)
}

// segmentCoeff returns the one-pole coefficient that decays to the
// release floor over the given duration.
func segmentCoeff(seconds, sampleRate float32) float32 {
	n := float64(seconds) * float64(sampleRate)
	if n < 1 {
		n = 1
	}
	return float32(math.Exp(math.Log(releaseFloor) / n))
}

// NoteOn restarts the attack phase. The current output level is kept
// so retriggering a releasing voice does not click.
func (e *Envelope) NoteOn() {
	e.stage = stageAttack
}

// NoteOff moves a held envelope into its release phase.
func (e *Envelope) NoteOff() {
	switch e.stage {
	case stageAttack, stageDecay, stageSustain:
		e.stage = stageRelease
	}
}

// Shutdown hard-resets the envelope to idle, bypassing the release.
func (e *Envelope) Shutdown() {
	e.stage = stageIdle
	e.value = 0
}

// Reset is an alias for Shutdown used when a voice slot is recycled.
func (e *Envelope) Reset() {
	e.Shutdown()
}

// IsActive reports whether the envelope is producing output. It is
// false only in the idle state.
func (e *Envelope) IsActive() bool {
	return e.stage != stageIdle
}

// IsReleased reports whether release has been triggered (or the
// envelope is idle). Voices whose envelope is released no longer count
// toward LFO auto-trigger activity and are stealable.
func (e *Envelope) IsReleased() bool {
	return e.stage == stageRelease || e.stage == stageIdle
}

// Value returns the current output level without advancing.
func (e *Envelope) Value() float32 {
	return e.value
}

// next advances the envelope by one sample.
func (e *Envelope) next() float32 {
	switch e.stage {
	case stageIdle:
		return 0
	case stageAttack:
		e.value += e.attackRate
		if e.value >= 1.0 {
			e.value = 1.0
			e.stage = stageDecay
		}
	case stageDecay:
		e.value = e.sustainLevel + (e.value-e.sustainLevel)*e.decayCoeff
		if e.value-e.sustainLevel < releaseFloor {
			e.value = e.sustainLevel
			e.stage = stageSustain
		}
	case stageSustain:
		e.value = e.sustainLevel
	case stageRelease:
		e.value *= e.releaseCoeff
		if e.value < releaseFloor {
			e.value = 0
			e.stage = stageIdle
		}
	}
	return e.value
}

// ProcessBlock writes the next n envelope samples into out.
func (e *Envelope) ProcessBlock(out []float32, n int) {
	for i := 0; i < n; i++ {
		out[i] = e.next()
	}
}

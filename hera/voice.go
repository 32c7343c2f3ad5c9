package hera

// VCAMode selects which envelope shapes a voice's amplitude.
type VCAMode int

const (
	// VCAEnvelope uses the tunable ADSR envelope.
	VCAEnvelope VCAMode = iota
	// VCAGate uses the fixed fast gate envelope.
	VCAGate
)

// PWMSource selects what modulates the pulse width.
type PWMSource int

const (
	PWMManual PWMSource = iota
	PWMLFO
	PWMEnvelope
)

// Gate envelope constants modeling the near-instant VCA gate response.
const (
	gateAttackDuration  = 0.00247
	gateDecayDuration   = 0.0057
	gateSustainLevel    = 0.98
	gateReleaseDuration = 0.0057
)

// Voice is one slot of the fixed polyphony pool. A voice owns its own
// oscillator, filter, and two envelopes; everything else it consumes
// comes from the shared modulation bus.
type Voice struct {
	active     bool
	note       int
	frequency  float32
	velocity   float32
	bendFactor float32

	vcaMode   VCAMode
	pwmSource PWMSource

	dco            *DCO
	vcf            *VCF
	normalEnv      *Envelope
	gateEnv        *Envelope
	smoothPWMDepth *SmoothValue
}

func newVoice(sampleRate float32) *Voice {
	v := &Voice{
		note:           -1,
		frequency:      440,
		bendFactor:     1.0,
		dco:            NewDCO(sampleRate),
		vcf:            NewVCF(sampleRate),
		normalEnv:      NewEnvelope(sampleRate),
		gateEnv:        NewEnvelope(sampleRate),
		smoothPWMDepth: NewSmoothValue(10e-3, sampleRate),
	}
	v.gateEnv.SetAttackDuration(gateAttackDuration)
	v.gateEnv.SetDecayDuration(gateDecayDuration)
	v.gateEnv.SetSustainLevel(gateSustainLevel)
	v.gateEnv.SetReleaseDuration(gateReleaseDuration)
	return v
}

// currentEnvelope returns the envelope selected by the VCA mode.
func (v *Voice) currentEnvelope() *Envelope {
	switch v.vcaMode {
	case VCAGate:
		return v.gateEnv
	default:
		return v.normalEnv
	}
}

// isReleased reports whether the voice's current envelope has entered
// (or finished) its release.
func (v *Voice) isReleased() bool {
	return v.currentEnvelope().IsReleased()
}

// sounding reports whether the voice is audible for LFO auto-trigger
// purposes: active and not yet release-completed.
func (v *Voice) sounding() bool {
	return v.active && !v.isReleased()
}

// deactivate recycles the slot: envelopes, oscillator, and filter all
// drop their internal state.
func (v *Voice) deactivate() {
	v.normalEnv.Reset()
	v.gateEnv.Reset()
	v.dco.Reset()
	v.vcf.Reset()
	v.active = false
	v.note = -1
}

// Active reports whether the slot currently holds a note.
func (v *Voice) Active() bool {
	return v.active
}

// Note returns the MIDI note held by the slot, or -1.
func (v *Voice) Note() int {
	return v.note
}

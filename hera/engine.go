package hera

// Engine constants. The block size cap bounds every render loop; the
// pool size matches the six-voice hardware.
const (
	NumVoices    = 6
	MaxBlockSize = 256
	SampleRate   = 44100
)

// modBuffers are the named per-signal scratch buffers of the render
// pipeline. Everything is fixed-size and allocated with the engine, so
// the render path never touches the heap.
type modBuffers struct {
	lfo              [MaxBlockSize]float32
	detune           [MaxBlockSize]float32
	envelope         [MaxBlockSize]float32
	gate             [MaxBlockSize]float32
	pwmMod           [MaxBlockSize]float32
	dco              [MaxBlockSize]float32
	cutoffOctaves    [MaxBlockSize]float32
	cutoff           [MaxBlockSize]float32
	resonance        [MaxBlockSize]float32
	envMod           [MaxBlockSize]float32
	lfoDetuneOctaves [MaxBlockSize]float32
	keyboardMod      [MaxBlockSize]float32
	bendDepth        [MaxBlockSize]float32
	mix              [MaxBlockSize]float32
	outL             [MaxBlockSize]float32
	outR             [MaxBlockSize]float32
}

// Engine is one synthesizer instance: the fixed voice pool, the shared
// modulation bus, and the post-mix effects chain. All mutation happens
// in place after construction; the caller serializes control calls
// against RenderBlock (single-writer discipline, no internal locking).
type Engine struct {
	sampleRate float32

	params [NumParameters]float32
	voices [NumVoices]*Voice

	lfo    *LFO
	hpf    *HPF
	vca    *VCA
	chorus *Chorus

	smoothPitchModDepth       *SmoothValue
	smoothCutoff              *SmoothValue
	smoothResonance           *SmoothValue
	smoothVCFEnvModDepth      *SmoothValue
	smoothVCFLFOModDepth      *SmoothValue
	smoothVCFKeyboardModDepth *SmoothValue
	smoothVCFBendDepth        *SmoothValue

	pitchFactor        float32
	vcaMode            VCAMode
	lfoMode            LFOTriggerMode
	pitchBendSemitones float32

	outputGain float32
	volume     float32

	buf modBuffers
}

// NewEngine constructs an engine with default parameters. All voice
// slots and scratch buffers are allocated here and never reallocated.
func NewEngine(sampleRate int) *Engine {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	rate := float32(sampleRate)

	e := &Engine{
		sampleRate:  rate,
		lfo:         NewLFO(rate),
		hpf:         NewHPF(rate),
		vca:         NewVCA(rate),
		chorus:      NewChorus(rate),
		pitchFactor: 1.0,
		vcaMode:     VCAEnvelope,
		lfoMode:     LFOTriggerAuto,
		outputGain:  1.0,
		volume:      0.8,
	}
	e.lfo.SetWave(LFOSine)

	e.smoothPitchModDepth = NewSmoothValue(10e-3, rate)
	e.smoothCutoff = NewSmoothValue(10e-3, rate)
	e.smoothCutoff.SetCurrentAndTarget(1.0)
	e.smoothResonance = NewSmoothValue(10e-3, rate)
	e.smoothVCFEnvModDepth = NewSmoothValue(10e-3, rate)
	e.smoothVCFLFOModDepth = NewSmoothValue(10e-3, rate)
	e.smoothVCFKeyboardModDepth = NewSmoothValue(10e-3, rate)
	e.smoothVCFBendDepth = NewSmoothValue(10e-3, rate)

	for i := range e.voices {
		e.voices[i] = newVoice(rate)
	}

	for i := 0; i < NumParameters; i++ {
		e.ApplyParameter(Param(i), ParamDefaults[i])
	}
	return e
}

// SetVolume sets the user volume in [0, 1].
func (e *Engine) SetVolume(v float32) {
	e.volume = clampf(v, 0, 1)
}

// Volume returns the user volume.
func (e *Engine) Volume() float32 {
	return e.volume
}

// ActiveVoices returns how many pool slots currently hold a note.
func (e *Engine) ActiveVoices() int {
	n := 0
	for _, v := range e.voices {
		if v.active {
			n++
		}
	}
	return n
}

// Voice exposes a pool slot for inspection.
func (e *Engine) Voice(i int) *Voice {
	if i < 0 || i >= NumVoices {
		return nil
	}
	return e.voices[i]
}

func (e *Engine) hasSoundingVoices() bool {
	for _, v := range e.voices {
		if v.sounding() {
			return true
		}
	}
	return false
}

// findFreeVoice implements the allocation policy: first inactive slot
// by index, else first release-completed slot by index, else slot 0.
// The index-order fallback is the documented hardware behavior, not an
// LRU approximation.
func (e *Engine) findFreeVoice() int {
	for i, v := range e.voices {
		if !v.active {
			return i
		}
	}
	for i, v := range e.voices {
		if v.isReleased() {
			return i
		}
	}
	return 0
}

// NoteOn allocates a voice for the note. Velocity is normalized to
// [0, 1]; note numbers outside 0..127 are clamped.
func (e *Engine) NoteOn(note int, velocity float32) {
	note = clampi(note, 0, 127)
	velocity = clampf(velocity, 0, 1)

	v := e.voices[e.findFreeVoice()]

	v.active = true
	v.note = note
	v.frequency = midiNoteToFreq(note)
	v.velocity = velocity
	v.vcaMode = e.vcaMode

	if e.lfoMode == LFOTriggerAuto && !e.hasSoundingVoices() {
		e.lfo.NoteOn()
	}

	v.currentEnvelope().NoteOn()

	v.bendFactor = pow2Approx(e.pitchBendSemitones / 12.0)
	v.dco.SetFrequency(v.frequency * v.bendFactor)
	v.dco.FlushSmoothers()
	v.smoothPWMDepth.SetCurrentAndTarget(v.smoothPWMDepth.Target())
}

// NoteOff releases the first active, unreleased voice holding note.
// Without a match it is a no-op.
func (e *Engine) NoteOff(note int) {
	for _, v := range e.voices {
		if v.active && v.note == note && !v.isReleased() {
			v.currentEnvelope().NoteOff()
			if e.lfoMode == LFOTriggerAuto && !e.hasSoundingVoices() {
				e.lfo.NoteOff()
			}
			return
		}
	}
}

// AllNotesOff hard-resets every active voice immediately, bypassing
// release tails.
func (e *Engine) AllNotesOff() {
	for _, v := range e.voices {
		if v.active {
			v.currentEnvelope().Shutdown()
			v.active = false
			v.note = -1
		}
	}
	if e.lfoMode == LFOTriggerAuto {
		e.lfo.NoteOff()
	}
}

// ControlChange handles the minimal CC set: 120 (all sound off) and
// 123 (all notes off). CC 64 (sustain pedal) is an intentional no-op;
// the hardware had no pedal input.
func (e *Engine) ControlChange(cc, value int) {
	switch cc {
	case 64:
		// Sustain pedal deliberately unsupported.
	case 120, 123:
		e.AllNotesOff()
	}
}

// SetPitchBend consumes a raw 14-bit pitch bend value (0..16383,
// center 8192) spanning exactly +/-7 semitones, and retunes every
// active voice.
func (e *Engine) SetPitchBend(value int) {
	value = clampi(value, 0, 16383)
	e.pitchBendSemitones = (float32(value-8192) / 8192.0) * 7.0

	bendFactor := pow2Approx(e.pitchBendSemitones / 12.0)
	for _, v := range e.voices {
		if v.active {
			v.bendFactor = bendFactor
			v.dco.SetFrequency(midiNoteToFreq(v.note) * bendFactor)
		}
	}
}

// PitchBendSemitones returns the current bend offset in semitones.
func (e *Engine) PitchBendSemitones() float32 {
	return e.pitchBendSemitones
}

// renderVoice runs one voice's envelope, PWM, oscillator, and filter
// for n samples and accumulates the result into the mix buffer.
func (e *Engine) renderVoice(v *Voice, n int) {
	b := &e.buf

	v.normalEnv.ProcessBlock(b.envelope[:], n)
	if v.vcaMode == VCAGate {
		v.gateEnv.ProcessBlock(b.gate[:], n)
	}

	switch v.pwmSource {
	case PWMLFO:
		for i := 0; i < n; i++ {
			b.pwmMod[i] = v.smoothPWMDepth.Next() * (b.lfo[i]*0.5 + 0.5)
		}
	case PWMEnvelope:
		for i := 0; i < n; i++ {
			b.pwmMod[i] = v.smoothPWMDepth.Next() * b.envelope[i]
		}
	default:
		for i := 0; i < n; i++ {
			b.pwmMod[i] = v.smoothPWMDepth.Next()
		}
	}

	v.dco.ProcessBlock(b.dco[:], b.detune[:], b.pwmMod[:], n)

	// Amplitude envelope selection tracks the VCA mode; the filter's
	// envelope modulation always reads the tunable ADSR.
	ampEnv := b.envelope[:]
	if v.vcaMode == VCAGate {
		ampEnv = b.gate[:]
	}

	noteFactor := float32(v.note-60) * (1.0 / 12.0)
	bendFactor := e.pitchBendSemitones * (48.0 / (12.0 * 7.0))
	for i := 0; i < n; i++ {
		envOctaves := b.envMod[i] * b.envelope[i] * 12.0
		lfoOctaves := b.lfoDetuneOctaves[i] * ampEnv[i]
		keyOctaves := b.keyboardMod[i] * noteFactor
		bendOctaves := b.bendDepth[i] * bendFactor
		b.cutoff[i] = 7.8 * pow2Approx(b.cutoffOctaves[i]+envOctaves+lfoOctaves+keyOctaves+bendOctaves)
	}

	v.vcf.ProcessBlock(b.dco[:], b.cutoff[:], b.resonance[:], n)

	// Velocity squared models perceived loudness; dividing by the pool
	// size leaves headroom for full polyphony.
	noteVolume := v.velocity * v.velocity * (1.0 / NumVoices)
	for i := 0; i < n; i++ {
		b.mix[i] += b.dco[i] * ampEnv[i] * noteVolume
	}

	if !v.currentEnvelope().IsActive() {
		v.deactivate()
	}
}

// RenderBlock renders up to MaxBlockSize frames of interleaved stereo
// 16-bit PCM into out. It returns the number of frames rendered.
// Rendering never fails; out must hold at least 2*frames samples.
func (e *Engine) RenderBlock(out []int16, frames int) int {
	if frames < 0 {
		frames = 0
	}
	if frames > MaxBlockSize {
		frames = MaxBlockSize
	}
	n := e.renderFloat(frames)

	gain := e.outputGain * e.volume
	for i := 0; i < n; i++ {
		out[i*2] = toInt16(e.buf.outL[i] * gain)
		out[i*2+1] = toInt16(e.buf.outR[i] * gain)
	}
	return n
}

// toInt16 converts a float sample to int16 with saturation.
func toInt16(x float32) int16 {
	s := int32(x * 32767.0)
	if s > 32767 {
		s = 32767
	}
	if s < -32768 {
		s = -32768
	}
	return int16(s)
}

// RenderFloatBlock renders like RenderBlock but leaves the samples as
// floats with the same combined gain applied. Used by offline tools
// and tests that want to inspect the signal directly.
func (e *Engine) RenderFloatBlock(outL, outR []float32, frames int) int {
	if frames < 0 {
		frames = 0
	}
	if frames > MaxBlockSize {
		frames = MaxBlockSize
	}
	n := e.renderFloat(frames)
	gain := e.outputGain * e.volume
	for i := 0; i < n; i++ {
		outL[i] = e.buf.outL[i] * gain
		outR[i] = e.buf.outR[i] * gain
	}
	return n
}

func (e *Engine) renderFloat(frames int) int {
	b := &e.buf
	n := frames

	for i := 0; i < n; i++ {
		b.mix[i] = 0
	}
	e.lfo.ProcessBlock(b.lfo[:], n)
	for i := 0; i < n; i++ {
		b.detune[i] = e.pitchFactor * pow2Approx(b.lfo[i]*0.25*e.smoothPitchModDepth.Next())
	}
	for i := 0; i < n; i++ {
		cutoff := e.smoothCutoff.Next()
		resonance := e.smoothResonance.Next()
		b.cutoffOctaves[i] = cutoff*(200.0/12.0) + resonance*0.5
		b.resonance[i] = resonance
		b.envMod[i] = e.smoothVCFEnvModDepth.Next()
		b.lfoDetuneOctaves[i] = e.smoothVCFLFOModDepth.Next() * b.lfo[i] * 3.0
		b.keyboardMod[i] = e.smoothVCFKeyboardModDepth.Next()
		b.bendDepth[i] = e.smoothVCFBendDepth.Next()
	}
	for _, v := range e.voices {
		if v.active {
			e.renderVoice(v, n)
		}
	}
	e.hpf.ProcessBlock(b.mix[:], n)
	e.vca.ProcessBlock(b.mix[:], n)
	softClipBlock(b.mix[:], n)
	e.chorus.ProcessBlock(b.mix[:], b.outL[:], b.outR[:], n)
	return n
}

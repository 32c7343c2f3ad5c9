package hera

// Param indexes the fixed parameter surface. The order is load-bearing:
// presets and host state address parameters by this index.
type Param int

const (
	ParamVCADepth Param = iota
	ParamVCAType
	ParamPWMDepth
	ParamPWMMod
	ParamSawLevel
	ParamPulseLevel
	ParamSubLevel
	ParamNoiseLevel
	ParamPitchRange
	ParamPitchModDepth
	ParamVCFCutoff
	ParamVCFResonance
	ParamVCFEnvModDepth
	ParamVCFLFOModDepth
	ParamVCFKeyboardModDepth
	ParamVCFBendDepth
	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease
	ParamLFOTriggerMode
	ParamLFORate
	ParamLFODelay
	ParamHPF
	ParamChorusI
	ParamChorusII

	NumParameters int = iota
)

// ParamIDs are the stable string keys used by the preset files, in
// parameter index order.
var ParamIDs = [NumParameters]string{
	"VCADepth",
	"VCAType",
	"DCOPWMDepth",
	"DCOPWMMod",
	"DCOSawLevel",
	"DCOPulseLevel",
	"DCOSubLevel",
	"DCONoiseLevel",
	"DCORange",
	"DCOPitchModDepth",
	"VCFCutoff",
	"VCFResonance",
	"VCFEnv",
	"VCFLFO",
	"VCFKey",
	"VCFBendDepth",
	"ENVAttack",
	"ENVDecay",
	"ENVSustain",
	"ENVRelease",
	"LFOTrigMode",
	"LFORate",
	"LFODelay",
	"HPF",
	"ChorusI",
	"ChorusII",
}

// ParamDefaults are the power-on values: a plain saw patch with the
// filter half open and the LFO in auto trigger mode.
var ParamDefaults = [NumParameters]float32{
	ParamVCADepth:            0.5,
	ParamVCAType:             0.0,
	ParamPWMDepth:            0.5,
	ParamPWMMod:              0.0,
	ParamSawLevel:            1.0,
	ParamPulseLevel:          0.0,
	ParamSubLevel:            0.0,
	ParamNoiseLevel:          0.0,
	ParamPitchRange:          1.0,
	ParamPitchModDepth:       0.0,
	ParamVCFCutoff:           0.5,
	ParamVCFResonance:        0.0,
	ParamVCFEnvModDepth:      0.0,
	ParamVCFLFOModDepth:      0.0,
	ParamVCFKeyboardModDepth: 0.0,
	ParamVCFBendDepth:        0.0,
	ParamAttack:              0.0,
	ParamDecay:               0.0,
	ParamSustain:             0.0,
	ParamRelease:             0.0,
	ParamLFOTriggerMode:      1.0,
	ParamLFORate:             0.0,
	ParamLFODelay:            0.0,
	ParamHPF:                 0.0,
	ParamChorusI:             0.0,
	ParamChorusII:            0.0,
}

// pitchRangeFactors are the 16'/8'/4' footage multipliers.
var pitchRangeFactors = [3]float32{0.5, 1.0, 2.0}

// ApplyParameter routes one parameter value to the component that
// consumes it. Out-of-range indices are ignored; numeric values are
// clamped by the consuming component where a domain applies.
func (e *Engine) ApplyParameter(index Param, value float32) {
	if index < 0 || int(index) >= NumParameters {
		return
	}
	e.params[index] = value

	switch index {
	case ParamVCADepth:
		e.vca.SetAmount(value)
	case ParamVCAType:
		mode := VCAEnvelope
		if int(value) != 0 {
			mode = VCAGate
		}
		e.vcaMode = mode
		for _, v := range e.voices {
			v.vcaMode = mode
		}
	case ParamPWMDepth:
		for _, v := range e.voices {
			v.smoothPWMDepth.SetTarget(value)
		}
	case ParamPWMMod:
		src := PWMManual
		switch int(value) {
		case 1:
			src = PWMLFO
		case 2:
			src = PWMEnvelope
		}
		for _, v := range e.voices {
			v.pwmSource = src
		}
	case ParamSawLevel:
		for _, v := range e.voices {
			v.dco.SetSawLevel(value)
		}
	case ParamPulseLevel:
		for _, v := range e.voices {
			v.dco.SetPulseLevel(value)
		}
	case ParamSubLevel:
		for _, v := range e.voices {
			v.dco.SetSubLevel(value)
		}
	case ParamNoiseLevel:
		for _, v := range e.voices {
			v.dco.SetNoiseLevel(value)
		}
	case ParamPitchRange:
		e.pitchFactor = pitchRangeFactors[clampi(int(value), 0, 2)]
	case ParamPitchModDepth:
		e.smoothPitchModDepth.SetTarget(value)
	case ParamVCFCutoff:
		e.smoothCutoff.SetTarget(value)
	case ParamVCFResonance:
		e.smoothResonance.SetTarget(value)
	case ParamVCFEnvModDepth:
		e.smoothVCFEnvModDepth.SetTarget(value)
	case ParamVCFLFOModDepth:
		e.smoothVCFLFOModDepth.SetTarget(value)
	case ParamVCFKeyboardModDepth:
		e.smoothVCFKeyboardModDepth.SetTarget(value)
	case ParamVCFBendDepth:
		e.smoothVCFBendDepth.SetTarget(value)
	case ParamAttack:
		for _, v := range e.voices {
			v.normalEnv.SetAttackDuration(curveAttackToDuration.Value(value))
		}
	case ParamDecay:
		for _, v := range e.voices {
			v.normalEnv.SetDecayDuration(curveDecayToDuration.Value(value))
		}
	case ParamSustain:
		for _, v := range e.voices {
			v.normalEnv.SetSustainLevel(value)
		}
	case ParamRelease:
		for _, v := range e.voices {
			v.normalEnv.SetReleaseDuration(curveReleaseToDuration.Value(value))
		}
	case ParamLFOTriggerMode:
		mode := LFOTriggerManual
		if int(value) != 0 {
			mode = LFOTriggerAuto
		}
		if e.lfoMode != mode {
			e.lfo.Shutdown()
			e.lfoMode = mode
		}
	case ParamLFORate:
		e.lfo.SetFrequency(curveLFORateToFreq.Value(value))
	case ParamLFODelay:
		e.lfo.SetDelayDuration(curveLFODelayToDelay.Value(value))
		e.lfo.SetAttackDuration(curveLFODelayToAttack.Value(value))
	case ParamHPF:
		e.hpf.SetAmount(value)
	case ParamChorusI:
		e.chorus.SetStageI(value >= 0.5)
	case ParamChorusII:
		e.chorus.SetStageII(value >= 0.5)
	}
}

// ApplyPreset replaces the whole parameter set. Missing trailing
// values keep their defaults; extra values are ignored.
func (e *Engine) ApplyPreset(values []float32) {
	for i := 0; i < NumParameters && i < len(values); i++ {
		e.ApplyParameter(Param(i), values[i])
	}
}

// Parameter returns the raw stored value of a parameter slot.
func (e *Engine) Parameter(index Param) float32 {
	if index < 0 || int(index) >= NumParameters {
		return 0
	}
	return e.params[index]
}

package host

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charlesvestal/move-anything-hera/hera"
)

// paramType distinguishes continuous knobs from stepped selectors in
// the metadata the UI consumes.
type paramType int

const (
	paramFloat paramType = iota
	paramInt
)

func (t paramType) String() string {
	if t == paramInt {
		return "int"
	}
	return "float"
}

// paramDef describes one knob of the host-facing editor surface: its
// stable key, display name, value domain, and the engine parameter it
// drives.
type paramDef struct {
	key   string
	name  string
	typ   paramType
	index hera.Param
	min   float32
	max   float32
}

func (d *paramDef) clamp(v float32) float32 {
	if v < d.min {
		return d.min
	}
	if v > d.max {
		return d.max
	}
	return v
}

func (d *paramDef) format(v float32) string {
	if d.typ == paramInt {
		return strconv.Itoa(int(v))
	}
	return fmt.Sprintf("%.4f", v)
}

// shadowParams is the knob surface in editor display order.
var shadowParams = []paramDef{
	{"saw_level", "Saw Level", paramFloat, hera.ParamSawLevel, 0, 1},
	{"pulse_level", "Pulse Level", paramFloat, hera.ParamPulseLevel, 0, 1},
	{"sub_level", "Sub Level", paramFloat, hera.ParamSubLevel, 0, 1},
	{"noise_level", "Noise Level", paramFloat, hera.ParamNoiseLevel, 0, 1},
	{"pwm_depth", "PWM Depth", paramFloat, hera.ParamPWMDepth, 0, 1},
	{"pwm_mod", "PWM Mod", paramInt, hera.ParamPWMMod, 0, 2},
	{"pitch_range", "Range", paramInt, hera.ParamPitchRange, 0, 2},
	{"pitch_mod", "Pitch Mod", paramFloat, hera.ParamPitchModDepth, 0, 1},

	{"vcf_cutoff", "VCF Cutoff", paramFloat, hera.ParamVCFCutoff, 0, 1},
	{"vcf_resonance", "VCF Reso", paramFloat, hera.ParamVCFResonance, 0, 1},
	{"vcf_env", "VCF Env", paramFloat, hera.ParamVCFEnvModDepth, -1, 1},
	{"vcf_lfo", "VCF LFO", paramFloat, hera.ParamVCFLFOModDepth, 0, 1},
	{"vcf_key", "VCF Key", paramFloat, hera.ParamVCFKeyboardModDepth, 0, 1},
	{"vcf_bend", "VCF Bend", paramFloat, hera.ParamVCFBendDepth, 0, 1},

	{"vca_depth", "VCA Depth", paramFloat, hera.ParamVCADepth, 0, 1},
	{"vca_type", "VCA Type", paramInt, hera.ParamVCAType, 0, 1},

	{"attack", "Attack", paramFloat, hera.ParamAttack, 0, 1},
	{"decay", "Decay", paramFloat, hera.ParamDecay, 0, 1},
	{"sustain", "Sustain", paramFloat, hera.ParamSustain, 0, 1},
	{"release", "Release", paramFloat, hera.ParamRelease, 0, 1},

	{"lfo_rate", "LFO Rate", paramFloat, hera.ParamLFORate, 0, 1},
	{"lfo_delay", "LFO Delay", paramFloat, hera.ParamLFODelay, 0, 1},
	{"lfo_trigger", "LFO Trigger", paramInt, hera.ParamLFOTriggerMode, 0, 1},

	{"hpf", "HPF", paramFloat, hera.ParamHPF, 0, 1},
	{"chorus_i", "Chorus I", paramInt, hera.ParamChorusI, 0, 1},
	{"chorus_ii", "Chorus II", paramInt, hera.ParamChorusII, 0, 1},
}

var shadowParamByKey = func() map[string]*paramDef {
	m := make(map[string]*paramDef, len(shadowParams))
	for i := range shadowParams {
		m[shadowParams[i].key] = &shadowParams[i]
	}
	return m
}()

// chainParams renders the parameter metadata list the host's chain
// editor reads: the three built-in keys followed by every knob.
func chainParams() string {
	var b strings.Builder
	b.WriteString(`[{"key":"preset","name":"Preset","type":"int","min":0,"max":9999},` +
		`{"key":"volume","name":"Volume","type":"float","min":0,"max":1},` +
		`{"key":"octave_transpose","name":"Octave","type":"int","min":-3,"max":3}`)
	for i := range shadowParams {
		d := &shadowParams[i]
		fmt.Fprintf(&b, `,{"key":%q,"name":%q,"type":%q,"min":%g,"max":%g}`,
			d.key, d.name, d.typ.String(), d.min, d.max)
	}
	b.WriteString("]")
	return b.String()
}

// uiHierarchy describes the shadow parameter editor layout: a preset
// browser at the root and one sub-level per synth section.
const uiHierarchy = `{` +
	`"modes":null,` +
	`"levels":{` +
	`"root":{` +
	`"list_param":"preset",` +
	`"count_param":"preset_count",` +
	`"name_param":"preset_name",` +
	`"children":null,` +
	`"knobs":["volume","vcf_cutoff","vcf_resonance","vcf_env","attack","decay","sustain","octave_transpose"],` +
	`"params":[` +
	`{"level":"dco","label":"DCO"},` +
	`{"level":"vcf","label":"VCF"},` +
	`{"level":"vca","label":"VCA"},` +
	`{"level":"env","label":"Envelope"},` +
	`{"level":"lfo","label":"LFO"},` +
	`{"level":"effects","label":"Effects"}` +
	`]` +
	`},` +
	`"dco":{` +
	`"children":null,` +
	`"knobs":["saw_level","pulse_level","sub_level","noise_level","pwm_depth","pwm_mod","pitch_range","pitch_mod"],` +
	`"params":["saw_level","pulse_level","sub_level","noise_level","pwm_depth","pwm_mod","pitch_range","pitch_mod"]` +
	`},` +
	`"vcf":{` +
	`"children":null,` +
	`"knobs":["vcf_cutoff","vcf_resonance","vcf_env","vcf_lfo","vcf_key","vcf_bend"],` +
	`"params":["vcf_cutoff","vcf_resonance","vcf_env","vcf_lfo","vcf_key","vcf_bend"]` +
	`},` +
	`"vca":{` +
	`"children":null,` +
	`"knobs":["vca_depth","vca_type"],` +
	`"params":["vca_depth","vca_type"]` +
	`},` +
	`"env":{` +
	`"children":null,` +
	`"knobs":["attack","decay","sustain","release"],` +
	`"params":["attack","decay","sustain","release"]` +
	`},` +
	`"lfo":{` +
	`"children":null,` +
	`"knobs":["lfo_rate","lfo_delay","lfo_trigger"],` +
	`"params":["lfo_rate","lfo_delay","lfo_trigger"]` +
	`},` +
	`"effects":{` +
	`"children":null,` +
	`"knobs":["hpf","chorus_i","chorus_ii"],` +
	`"params":["hpf","chorus_i","chorus_ii"]` +
	`}` +
	`}` +
	`}`

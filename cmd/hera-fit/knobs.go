package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charlesvestal/move-anything-hera/hera"
	"github.com/charlesvestal/move-anything-hera/preset"
)

// knobDef is one optimizable dimension. Param knobs map straight onto
// an engine parameter slot; render knobs (Param < 0) shape how the
// candidate note is played instead.
type knobDef struct {
	Name  string
	Param hera.Param
	Min   float64
	Max   float64
	IsInt bool
}

type candidate struct {
	Vals []float64
}

const renderKnob hera.Param = -1

// knobGroups maps each optimize group to its engine parameters.
// Switch-like parameters are marked integer so the optimizer lands on
// real positions.
var knobGroups = map[string][]knobDef{
	"dco": {
		{Name: "DCOSawLevel", Param: hera.ParamSawLevel, Min: 0, Max: 1},
		{Name: "DCOPulseLevel", Param: hera.ParamPulseLevel, Min: 0, Max: 1},
		{Name: "DCOSubLevel", Param: hera.ParamSubLevel, Min: 0, Max: 1},
		{Name: "DCONoiseLevel", Param: hera.ParamNoiseLevel, Min: 0, Max: 1},
		{Name: "DCOPWMDepth", Param: hera.ParamPWMDepth, Min: 0, Max: 1},
		{Name: "DCOPWMMod", Param: hera.ParamPWMMod, Min: 0, Max: 2, IsInt: true},
		{Name: "DCORange", Param: hera.ParamPitchRange, Min: 0, Max: 2, IsInt: true},
	},
	"vcf": {
		{Name: "VCFCutoff", Param: hera.ParamVCFCutoff, Min: 0, Max: 1},
		{Name: "VCFResonance", Param: hera.ParamVCFResonance, Min: 0, Max: 1},
		{Name: "VCFEnv", Param: hera.ParamVCFEnvModDepth, Min: -1, Max: 1},
		{Name: "VCFLFO", Param: hera.ParamVCFLFOModDepth, Min: 0, Max: 1},
		{Name: "VCFKey", Param: hera.ParamVCFKeyboardModDepth, Min: 0, Max: 1},
		{Name: "HPF", Param: hera.ParamHPF, Min: 0, Max: 1},
	},
	"env": {
		{Name: "ENVAttack", Param: hera.ParamAttack, Min: 0, Max: 1},
		{Name: "ENVDecay", Param: hera.ParamDecay, Min: 0, Max: 1},
		{Name: "ENVSustain", Param: hera.ParamSustain, Min: 0, Max: 1},
		{Name: "ENVRelease", Param: hera.ParamRelease, Min: 0, Max: 1},
	},
	"lfo": {
		{Name: "LFORate", Param: hera.ParamLFORate, Min: 0, Max: 1},
		{Name: "LFODelay", Param: hera.ParamLFODelay, Min: 0, Max: 1},
		{Name: "DCOPitchModDepth", Param: hera.ParamPitchModDepth, Min: 0, Max: 1},
	},
	"vca": {
		{Name: "VCADepth", Param: hera.ParamVCADepth, Min: 0, Max: 1},
		{Name: "VCAType", Param: hera.ParamVCAType, Min: 0, Max: 1, IsInt: true},
	},
	"chorus": {
		{Name: "ChorusI", Param: hera.ParamChorusI, Min: 0, Max: 1, IsInt: true},
		{Name: "ChorusII", Param: hera.ParamChorusII, Min: 0, Max: 1, IsInt: true},
	},
	"render": {
		{Name: "render.velocity", Param: renderKnob, Min: 20, Max: 127, IsInt: true},
		{Name: "render.release_after", Param: renderKnob, Min: 0.1, Max: 4.0},
	},
}

// groupOrder keeps knob vectors stable across runs.
var groupOrder = []string{"dco", "vcf", "env", "lfo", "vca", "chorus", "render"}

// parseOptimizeGroups parses a comma-separated list of group names.
func parseOptimizeGroups(raw string) (map[string]bool, error) {
	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := knobGroups[s]; !ok {
			return nil, fmt.Errorf("unknown optimize group %q (valid: %s)", s, strings.Join(groupOrder, ", "))
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no optimize groups specified")
	}
	return groups, nil
}

// initCandidate builds the knob definitions for the active groups and
// seeds the starting point from the base program.
func initCandidate(base *preset.Preset, baseVelocity int, baseReleaseAfter float64, groups map[string]bool) ([]knobDef, candidate) {
	var defs []knobDef
	var vals []float64
	for _, g := range groupOrder {
		if !groups[g] {
			continue
		}
		for _, def := range knobGroups[g] {
			v := 0.0
			switch def.Name {
			case "render.velocity":
				v = float64(baseVelocity)
			case "render.release_after":
				v = baseReleaseAfter
			default:
				v = float64(base.Values[def.Param])
			}
			v = clamp(v, def.Min, def.Max)
			if def.IsInt {
				v = math.Round(v)
			}
			defs = append(defs, def)
			vals = append(vals, v)
		}
	}
	return defs, candidate{Vals: vals}
}

// applyCandidate merges the knob vector into a copy of the base
// program and returns the render settings alongside it.
func applyCandidate(base *preset.Preset, defs []knobDef, c candidate, baseVelocity int, baseReleaseAfter float64) (*preset.Preset, int, float64) {
	p := &preset.Preset{Name: base.Name, Values: base.Values}
	velocity := baseVelocity
	releaseAfter := baseReleaseAfter
	for i, def := range defs {
		v := c.Vals[i]
		switch def.Name {
		case "render.velocity":
			velocity = int(math.Round(v))
		case "render.release_after":
			releaseAfter = v
		default:
			p.Values[def.Param] = float32(v)
		}
	}
	if velocity < 1 {
		velocity = 1
	}
	if velocity > 127 {
		velocity = 127
	}
	if releaseAfter < 0.05 {
		releaseAfter = 0.05
	}
	return p, velocity, releaseAfter
}

// fromNormalized maps optimizer positions in [0, 1] onto knob ranges.
func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		v := defs[i].Min + x*(defs[i].Max-defs[i].Min)
		if defs[i].IsInt {
			v = math.Round(v)
		}
		vals[i] = v
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	vals := make([]float64, len(c.Vals))
	copy(vals, c.Vals)
	return candidate{Vals: vals}
}

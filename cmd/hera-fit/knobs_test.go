package main

import (
	"testing"

	"github.com/charlesvestal/move-anything-hera/hera"
	"github.com/charlesvestal/move-anything-hera/preset"
)

func basePreset() *preset.Preset {
	p := &preset.Preset{Name: "Base"}
	copy(p.Values[:], hera.ParamDefaults[:])
	return p
}

func TestParseOptimizeGroups(t *testing.T) {
	groups, err := parseOptimizeGroups("dco, vcf,render")
	if err != nil {
		t.Fatalf("parseOptimizeGroups: %v", err)
	}
	for _, g := range []string{"dco", "vcf", "render"} {
		if !groups[g] {
			t.Fatalf("group %s missing", g)
		}
	}
	if _, err := parseOptimizeGroups("dco,bogus"); err == nil {
		t.Fatalf("unknown group should be rejected")
	}
	if _, err := parseOptimizeGroups(" , "); err == nil {
		t.Fatalf("empty group list should be rejected")
	}
}

func TestInitCandidateSeedsFromBase(t *testing.T) {
	base := basePreset()
	base.Values[hera.ParamVCFCutoff] = 0.7
	base.Values[hera.ParamVCFEnvModDepth] = -0.4

	defs, cand := initCandidate(base, 100, 1.5, map[string]bool{"vcf": true, "render": true})
	if len(defs) != len(cand.Vals) {
		t.Fatalf("defs/vals length mismatch: %d vs %d", len(defs), len(cand.Vals))
	}
	byName := make(map[string]float64, len(defs))
	for i, d := range defs {
		byName[d.Name] = cand.Vals[i]
	}
	if byName["VCFCutoff"] != 0.7 {
		t.Fatalf("cutoff seed: got %v", byName["VCFCutoff"])
	}
	if byName["VCFEnv"] != -0.4 {
		t.Fatalf("env depth seed: got %v", byName["VCFEnv"])
	}
	if byName["render.velocity"] != 100 {
		t.Fatalf("velocity seed: got %v", byName["render.velocity"])
	}
	if byName["render.release_after"] != 1.5 {
		t.Fatalf("release seed: got %v", byName["render.release_after"])
	}
}

func TestInitCandidateOrderIsStable(t *testing.T) {
	base := basePreset()
	groups := map[string]bool{"dco": true, "env": true}
	a, _ := initCandidate(base, 100, 1, groups)
	b, _ := initCandidate(base, 100, 1, groups)
	if len(a) != len(b) {
		t.Fatalf("length changed between runs")
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			t.Fatalf("knob order unstable at %d: %s vs %s", i, a[i].Name, b[i].Name)
		}
	}
}

func TestApplyCandidateMergesIntoCopy(t *testing.T) {
	base := basePreset()
	defs, cand := initCandidate(base, 100, 1.0, map[string]bool{"vcf": true, "render": true})
	for i, d := range defs {
		switch d.Name {
		case "VCFCutoff":
			cand.Vals[i] = 0.25
		case "render.velocity":
			cand.Vals[i] = 64
		case "render.release_after":
			cand.Vals[i] = 0.01 // below floor, must clamp up
		}
	}

	p, velocity, releaseAfter := applyCandidate(base, defs, cand, 100, 1.0)
	if p.Values[hera.ParamVCFCutoff] != 0.25 {
		t.Fatalf("cutoff not applied: %v", p.Values[hera.ParamVCFCutoff])
	}
	if base.Values[hera.ParamVCFCutoff] != hera.ParamDefaults[hera.ParamVCFCutoff] {
		t.Fatalf("base preset mutated")
	}
	if velocity != 64 {
		t.Fatalf("velocity: got %d", velocity)
	}
	if releaseAfter != 0.05 {
		t.Fatalf("release floor: got %v", releaseAfter)
	}
}

func TestFromNormalizedMapsAndRounds(t *testing.T) {
	defs := []knobDef{
		{Name: "VCFEnv", Param: hera.ParamVCFEnvModDepth, Min: -1, Max: 1},
		{Name: "DCORange", Param: hera.ParamPitchRange, Min: 0, Max: 2, IsInt: true},
	}
	c := fromNormalized([]float64{0.5, 0.8}, defs)
	if c.Vals[0] != 0 {
		t.Fatalf("midpoint of [-1,1] should be 0: %v", c.Vals[0])
	}
	if c.Vals[1] != 2 {
		t.Fatalf("0.8 over [0,2] should round to 2: %v", c.Vals[1])
	}

	// Out-of-range positions clamp, short vectors default to Min.
	c = fromNormalized([]float64{5}, defs)
	if c.Vals[0] != 1 || c.Vals[1] != 0 {
		t.Fatalf("clamp/default wrong: %v", c.Vals)
	}
}

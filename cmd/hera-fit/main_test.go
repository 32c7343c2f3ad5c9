package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charlesvestal/move-anything-hera/hera"
	fitcommon "github.com/charlesvestal/move-anything-hera/internal/fitcommon"
)

func TestLoadCandidateFromReportMissingFile(t *testing.T) {
	defs, fallback := initCandidate(basePreset(), 100, 1.0, map[string]bool{"vcf": true})
	got, ok, err := loadCandidateFromReport(filepath.Join(t.TempDir(), "nope.json"), defs, fallback)
	if err != nil || ok {
		t.Fatalf("missing report: ok=%v err=%v", ok, err)
	}
	for i := range fallback.Vals {
		if got.Vals[i] != fallback.Vals[i] {
			t.Fatalf("fallback changed at %d", i)
		}
	}
}

func TestLoadCandidateFromReportAppliesKnobs(t *testing.T) {
	defs, fallback := initCandidate(basePreset(), 100, 1.0, map[string]bool{"vcf": true})
	path := filepath.Join(t.TempDir(), "report.json")
	body := `{"best_knobs":{"VCFCutoff":0.33,"VCFEnv":-3.0,"UnknownKnob":9}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}

	got, ok, err := loadCandidateFromReport(path, defs, fallback)
	if err != nil || !ok {
		t.Fatalf("resume failed: ok=%v err=%v", ok, err)
	}
	byName := make(map[string]float64, len(defs))
	for i, d := range defs {
		byName[d.Name] = got.Vals[i]
	}
	if byName["VCFCutoff"] != 0.33 {
		t.Fatalf("cutoff resume: got %v", byName["VCFCutoff"])
	}
	if byName["VCFEnv"] != -1 {
		t.Fatalf("out-of-range knob should clamp: got %v", byName["VCFEnv"])
	}
}

func TestLoadCandidateFromReportRejectsBadJSON(t *testing.T) {
	defs, fallback := initCandidate(basePreset(), 100, 1.0, map[string]bool{"env": true})
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}
	if _, _, err := loadCandidateFromReport(path, defs, fallback); err == nil {
		t.Fatalf("malformed report should error")
	}
}

func TestEvaluateCandidateScoresAgainstReference(t *testing.T) {
	base := basePreset()
	base.Values[hera.ParamSustain] = 1
	defs, cand := initCandidate(base, 100, 0.3, map[string]bool{"vcf": true})
	cfg := &optimizationConfig{
		basePreset:       base,
		defs:             defs,
		note:             60,
		baseVelocity:     100,
		baseReleaseAfter: 0.3,
		decayDBFS:        -90,
		decayHoldBlocks:  3,
		minDuration:      0.2,
		maxDuration:      1.0,
		blockSize:        128,
	}

	// Render the reference through the same path the evaluator uses,
	// then score the candidate against itself.
	p, velocity, releaseAfter := applyCandidate(base, defs, cand, cfg.baseVelocity, cfg.baseReleaseAfter)
	engine := hera.NewEngine(hera.SampleRate)
	p.Apply(engine)
	stereo, err := fitcommon.RenderNote(engine, fitcommon.NoteRender{
		Note:            cfg.note,
		Velocity:        float32(velocity) / 127.0,
		ReleaseAfter:    releaseAfter,
		MinDuration:     cfg.minDuration,
		MaxDuration:     cfg.maxDuration,
		DecayDBFS:       cfg.decayDBFS,
		DecayHoldBlocks: cfg.decayHoldBlocks,
		BlockSize:       cfg.blockSize,
	})
	if err != nil {
		t.Fatalf("reference render: %v", err)
	}
	cfg.reference = fitcommon.StereoToMono64(stereo)

	got, err := evaluateCandidate(cfg, cand)
	if err != nil {
		t.Fatalf("evaluateCandidate: %v", err)
	}
	if got.metrics.Score > 0.05 {
		t.Fatalf("self comparison score %v, want ~0", got.metrics.Score)
	}
	if got.velocity != velocity || got.releaseAfter != releaseAfter {
		t.Fatalf("render settings drifted: %d/%v vs %d/%v", got.velocity, got.releaseAfter, velocity, releaseAfter)
	}
}

package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charlesvestal/move-anything-hera/analysis"
	"github.com/charlesvestal/move-anything-hera/preset"
)

type runReport struct {
	ReferencePath   string             `json:"reference_path"`
	PresetPath      string             `json:"preset_path,omitempty"`
	OutputPreset    string             `json:"output_preset"`
	Note            int                `json:"note"`
	Velocity        int                `json:"velocity"`
	ReleaseAfterSec float64            `json:"release_after_seconds"`
	DurationSec     float64            `json:"elapsed_seconds"`
	Evaluations     int                `json:"evaluations"`
	MayflyVariant   string             `json:"mayfly_variant"`
	BestScore       float64            `json:"best_score"`
	BestSimilarity  float64            `json:"best_similarity"`
	BestMetrics     analysis.Metrics   `json:"best_metrics"`
	BestKnobs       map[string]float64 `json:"best_knobs"`
	CheckpointCount int                `json:"checkpoint_count"`
	TopCandidates   []topCandidate     `json:"top_candidates,omitempty"`
}

// writeOutputs persists the fitted program and the run report. Called
// at checkpoints and once more at the end of the run.
func writeOutputs(cfg *optimizationConfig, variant string, best candidate, bestEval optimizationEval, top []topCandidate, evals int, elapsed float64, checkpoints int) error {
	fitted := bestEval.preset
	if fitted.Name == "" {
		fitted.Name = "Fitted"
	}
	if err := preset.Save(cfg.outputPreset, fitted); err != nil {
		return err
	}

	knobs := make(map[string]float64, len(cfg.defs))
	for i, d := range cfg.defs {
		knobs[d.Name] = best.Vals[i]
	}

	rep := runReport{
		ReferencePath:   cfg.referencePath,
		PresetPath:      cfg.presetPath,
		OutputPreset:    cfg.outputPreset,
		Note:            cfg.note,
		Velocity:        bestEval.velocity,
		ReleaseAfterSec: bestEval.releaseAfter,
		DurationSec:     elapsed,
		Evaluations:     evals,
		MayflyVariant:   variant,
		BestScore:       bestEval.metrics.Score,
		BestSimilarity:  bestEval.metrics.Similarity,
		BestMetrics:     bestEval.metrics,
		BestKnobs:       knobs,
		CheckpointCount: checkpoints,
		TopCandidates:   top,
	}

	reportPath := cfg.reportPath
	if reportPath == "" {
		reportPath = cfg.outputPreset + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

package main

import (
	"testing"

	"github.com/charlesvestal/move-anything-hera/analysis"
)

func TestUpdateTopCandidatesKeepsBestSorted(t *testing.T) {
	defs := []knobDef{{Name: "VCFCutoff"}}
	var top []topCandidate
	scores := []float64{0.5, 0.2, 0.8, 0.1, 0.3}
	for i, s := range scores {
		top = updateTopCandidates(top, 3, i+1, analysis.Metrics{Score: s}, defs, candidate{Vals: []float64{float64(i)}})
	}
	if len(top) != 3 {
		t.Fatalf("top size: %d", len(top))
	}
	if top[0].Score != 0.1 || top[1].Score != 0.2 || top[2].Score != 0.3 {
		t.Fatalf("top not sorted by score: %+v", top)
	}
	if top[0].Knobs["VCFCutoff"] != 3 {
		t.Fatalf("best knob vector lost: %+v", top[0])
	}
}

func TestReserveEvalStopsAtBudget(t *testing.T) {
	var evals int64 = 8
	if n, ok := reserveEval(&evals, 10); !ok || n != 9 {
		t.Fatalf("reserve below budget: %d %v", n, ok)
	}
	if n, ok := reserveEval(&evals, 10); !ok || n != 10 {
		t.Fatalf("reserve at budget edge: %d %v", n, ok)
	}
	if _, ok := reserveEval(&evals, 10); ok {
		t.Fatalf("reserve past budget should fail")
	}
}

func TestNewMayflyConfigVariants(t *testing.T) {
	cfg, err := newMayflyConfig("desma", 10, 5, 3)
	if err != nil {
		t.Fatalf("desma: %v", err)
	}
	if cfg.ProblemSize != 5 || cfg.NPop != 10 || cfg.NPopF != 10 || cfg.MaxIterations != 3 {
		t.Fatalf("config fields wrong: %+v", cfg)
	}
	if cfg.LowerBound != 0 || cfg.UpperBound != 1 {
		t.Fatalf("bounds must be normalized: %v..%v", cfg.LowerBound, cfg.UpperBound)
	}
	if _, err := newMayflyConfig("simulated-annealing", 10, 5, 3); err == nil {
		t.Fatalf("unknown variant should error")
	}
}

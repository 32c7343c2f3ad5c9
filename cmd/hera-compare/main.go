// Command hera-compare measures how close two recordings are, using
// the same metrics the fit loop optimizes. The candidate is either a
// WAV file or a fresh render of a program.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/charlesvestal/move-anything-hera/analysis"
	"github.com/charlesvestal/move-anything-hera/hera"
	fitcommon "github.com/charlesvestal/move-anything-hera/internal/fitcommon"
	"github.com/charlesvestal/move-anything-hera/preset"
)

func main() {
	referencePath := flag.String("reference", "reference/c4.wav", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render the candidate from a program")
	presetPath := flag.String("preset", "", "Program XML path for the rendered candidate (empty uses the default patch)")
	note := flag.Int("note", 60, "MIDI note for the rendered candidate")
	velocity := flag.Int("velocity", 100, "MIDI velocity for the rendered candidate")
	releaseAfter := flag.Float64("release-after", 1.5, "Note hold time before NoteOff for the rendered candidate")
	minDuration := flag.Float64("min-duration", 1.0, "Minimum rendered duration in seconds")
	maxDuration := flag.Float64("max-duration", 12.0, "Maximum rendered duration in seconds")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop threshold in dBFS for the rendered candidate")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required for stop")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	ref, refSR, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = fitcommon.ResampleIfNeeded(ref, refSR, hera.SampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		candRaw, candSR, err := fitcommon.ReadWAVMono(*candidatePath)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
		cand, err = fitcommon.ResampleIfNeeded(candRaw, candSR, hera.SampleRate)
		if err != nil {
			die("failed to resample candidate: %v", err)
		}
	} else {
		engine := hera.NewEngine(hera.SampleRate)
		if *presetPath != "" {
			p, err := preset.Load(*presetPath)
			if err != nil {
				die("failed to load preset: %v", err)
			}
			p.Apply(engine)
		}
		stereo, err := fitcommon.RenderNote(engine, fitcommon.NoteRender{
			Note:            *note,
			Velocity:        float32(*velocity) / 127.0,
			ReleaseAfter:    *releaseAfter,
			MinDuration:     *minDuration,
			MaxDuration:     *maxDuration,
			DecayDBFS:       *decayDBFS,
			DecayHoldBlocks: *decayHoldBlocks,
			BlockSize:       128,
		})
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = fitcommon.StereoToMono64(stereo)
		if *writeCandidate != "" {
			if err := fitcommon.WriteStereoWAV(*writeCandidate, stereo, hera.SampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, hera.SampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, 1000.0*float64(metrics.LagSamples)/float64(metrics.SampleRate))
	fmt.Println()
	fmt.Printf("Time RMSE:        %.6f\n", metrics.TimeRMSE)
	fmt.Printf("Envelope RMSE:    %.1f dB\n", metrics.EnvelopeRMSEDB)
	fmt.Printf("Spectral RMSE:    %.1f dB\n", metrics.SpectralRMSEDB)
	fmt.Printf("Release slopes:   ref=%.1f dB/s  cand=%.1f dB/s (diff %.1f)\n",
		metrics.RefReleaseDBPerS, metrics.CandReleaseDBPerS, metrics.ReleaseDiffDBPerS)
	fmt.Println()
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

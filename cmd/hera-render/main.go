// Command hera-render plays one note offline and writes the result as
// a stereo WAV. Useful for auditioning presets and for producing
// candidate renders outside the fit loop.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charlesvestal/move-anything-hera/hera"
	fitcommon "github.com/charlesvestal/move-anything-hera/internal/fitcommon"
	"github.com/charlesvestal/move-anything-hera/preset"
)

func main() {
	note := flag.Int("note", 60, "MIDI note number (60 = C4)")
	velocity := flag.Int("velocity", 100, "MIDI velocity (1-127)")
	releaseAfter := flag.Float64("release-after", 1.0, "Seconds the key stays down before NoteOff")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration in seconds")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration in seconds")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop when a block's RMS falls below this dBFS")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop")
	blockSize := flag.Int("block-size", 128, "Render block size in frames")
	presetPath := flag.String("preset", "", "Program XML path (empty renders the default patch)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	set := flag.String("set", "", "Comma-separated parameter overrides, e.g. VCFCutoff=0.7,ChorusI=1")
	flag.Parse()

	if *note < 0 || *note > 127 {
		die("note %d out of range", *note)
	}
	if *velocity < 1 || *velocity > 127 {
		die("velocity %d out of range", *velocity)
	}

	engine := hera.NewEngine(hera.SampleRate)
	patchName := "default"
	if *presetPath != "" {
		p, err := preset.Load(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		p.Apply(engine)
		patchName = p.Name
	}
	if err := applyOverrides(engine, *set); err != nil {
		die("invalid -set: %v", err)
	}

	fmt.Printf("Rendering note %d, velocity %d (preset: %s)...\n", *note, *velocity, patchName)

	stereo, err := fitcommon.RenderNote(engine, fitcommon.NoteRender{
		Note:            *note,
		Velocity:        float32(*velocity) / 127.0,
		ReleaseAfter:    *releaseAfter,
		MinDuration:     *minDuration,
		MaxDuration:     *maxDuration,
		DecayDBFS:       *decayDBFS,
		DecayHoldBlocks: *decayHoldBlocks,
		BlockSize:       *blockSize,
	})
	if err != nil {
		die("render failed: %v", err)
	}

	if err := fitcommon.WriteStereoWAV(*output, stereo, hera.SampleRate); err != nil {
		die("failed to write %s: %v", *output, err)
	}

	frames := len(stereo) / 2
	fmt.Printf("Wrote %s (%d frames, %.3fs)\n", *output, frames, float64(frames)/float64(hera.SampleRate))
}

// applyOverrides parses "ID=value" pairs keyed by the preset parameter
// ids and pushes them into the engine.
func applyOverrides(e *hera.Engine, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	byID := make(map[string]hera.Param, hera.NumParameters)
	for i, id := range hera.ParamIDs {
		byID[id] = hera.Param(i)
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("expected ID=value, got %q", pair)
		}
		idx, ok := byID[strings.TrimSpace(key)]
		if !ok {
			return fmt.Errorf("unknown parameter %q", key)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 32)
		if err != nil {
			return fmt.Errorf("parameter %s: %v", key, err)
		}
		e.ApplyParameter(idx, float32(v))
	}
	return nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

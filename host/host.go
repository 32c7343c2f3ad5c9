// Package host exposes the synth engine through the string-keyed
// parameter surface and MIDI entry points a plugin host expects. The
// engine core stays free of host conventions; everything here is
// translation.
package host

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/charlesvestal/move-anything-hera/hera"
	"github.com/charlesvestal/move-anything-hera/preset"
)

// PluginName is reported through the "name" parameter key.
const PluginName = "Hera"

// Logger is the logging capability injected by the host. Implementations
// must be safe to call from the control thread.
type Logger interface {
	Log(msg string)
}

type nopLogger struct{}

func (nopLogger) Log(string) {}

// Instance is one plugin instance: an engine, its preset bank, and the
// host-facing bookkeeping around them.
type Instance struct {
	log    Logger
	engine *hera.Engine

	bank          []*preset.Preset
	currentPreset int
	presetName    string

	octaveTranspose int
}

// NewInstance creates an instance and loads the preset bank from
// moduleDir/presets. A missing or empty bank is not an error; the
// engine simply starts on its defaults.
func NewInstance(moduleDir string, logger Logger) *Instance {
	if logger == nil {
		logger = nopLogger{}
	}
	in := &Instance{
		log:    logger,
		engine: hera.NewEngine(hera.SampleRate),
	}

	bank, err := preset.LoadDir(filepath.Join(moduleDir, "presets"))
	if err != nil {
		in.logf("preset bank: %v", err)
	}
	in.bank = bank
	if len(in.bank) > 0 {
		in.selectPreset(0)
	}
	in.logf("loaded %d presets", len(in.bank))
	return in
}

func (in *Instance) logf(format string, args ...any) {
	in.log.Log("[hera] " + fmt.Sprintf(format, args...))
}

// Engine exposes the underlying engine, mainly for offline tools.
func (in *Instance) Engine() *hera.Engine {
	return in.engine
}

// PresetCount returns the number of loaded presets.
func (in *Instance) PresetCount() int {
	return len(in.bank)
}

// selectPreset applies bank entry idx. Out-of-range indices are ignored.
func (in *Instance) selectPreset(idx int) {
	if idx < 0 || idx >= len(in.bank) {
		return
	}
	in.currentPreset = idx
	in.presetName = in.bank[idx].Name
	in.bank[idx].Apply(in.engine)
}

// SetParam handles one string-keyed control write.
func (in *Instance) SetParam(key, value string) {
	if in == nil {
		return
	}
	switch key {
	case "state":
		in.restoreState([]byte(value))
	case "preset":
		idx, err := strconv.Atoi(value)
		if err != nil || idx < 0 || idx >= len(in.bank) {
			return
		}
		in.engine.AllNotesOff()
		in.selectPreset(idx)
	case "volume":
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return
		}
		in.engine.SetVolume(float32(v))
	case "octave_transpose":
		n, err := strconv.Atoi(value)
		if err != nil {
			return
		}
		in.setOctaveTranspose(n)
	case "all_notes_off":
		in.engine.AllNotesOff()
	default:
		if def, ok := shadowParamByKey[key]; ok {
			v, err := strconv.ParseFloat(value, 32)
			if err != nil {
				return
			}
			in.engine.ApplyParameter(def.index, def.clamp(float32(v)))
		}
	}
}

// GetParam handles one string-keyed control read. The second return
// value is false for unknown keys.
func (in *Instance) GetParam(key string) (string, bool) {
	if in == nil {
		return "", false
	}
	switch key {
	case "preset":
		return strconv.Itoa(in.currentPreset), true
	case "preset_count":
		return strconv.Itoa(len(in.bank)), true
	case "preset_name":
		return in.presetName, true
	case "name":
		return PluginName, true
	case "volume":
		return fmt.Sprintf("%.3f", in.engine.Volume()), true
	case "octave_transpose":
		return strconv.Itoa(in.octaveTranspose), true
	case "ui_hierarchy":
		return uiHierarchy, true
	case "chain_params":
		return chainParams(), true
	case "state":
		return in.marshalState(), true
	}
	if def, ok := shadowParamByKey[key]; ok {
		return def.format(in.engine.Parameter(def.index)), true
	}
	return "", false
}

func (in *Instance) setOctaveTranspose(n int) {
	if n < -3 {
		n = -3
	}
	if n > 3 {
		n = 3
	}
	in.octaveTranspose = n
}

// RenderBlock renders frames of interleaved stereo int16 output. A nil
// instance fills the buffer with silence, matching the host contract
// for invalid handles.
func (in *Instance) RenderBlock(out []int16, frames int) {
	if frames < 0 {
		frames = 0
	}
	if frames > hera.MaxBlockSize {
		frames = hera.MaxBlockSize
	}
	if in == nil {
		for i := 0; i < frames*2; i++ {
			out[i] = 0
		}
		return
	}
	in.engine.RenderBlock(out, frames)
}

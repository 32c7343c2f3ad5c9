package host

import (
	"encoding/json"
	"fmt"
	"strings"
)

// marshalState serializes everything a patch save needs: preset index,
// volume, octave transpose, and every knob value under its stable key.
func (in *Instance) marshalState() string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"preset":%d,"volume":%.4f,"octave_transpose":%d`,
		in.currentPreset, in.engine.Volume(), in.octaveTranspose)
	for i := range shadowParams {
		d := &shadowParams[i]
		fmt.Fprintf(&b, `,%q:%.4f`, d.key, in.engine.Parameter(d.index))
	}
	b.WriteString("}")
	return b.String()
}

// restoreState applies a saved state blob. The preset is applied first
// so the individual knob values saved on top of it win.
func (in *Instance) restoreState(data []byte) {
	var fields map[string]float64
	if err := json.Unmarshal(data, &fields); err != nil {
		in.logf("state restore: %v", err)
		return
	}

	if v, ok := fields["preset"]; ok {
		in.selectPreset(int(v))
	}
	if v, ok := fields["volume"]; ok {
		in.engine.SetVolume(float32(v))
	}
	if v, ok := fields["octave_transpose"]; ok {
		in.setOctaveTranspose(int(v))
	}
	for i := range shadowParams {
		d := &shadowParams[i]
		if v, ok := fields[d.key]; ok {
			in.engine.ApplyParameter(d.index, d.clamp(float32(v)))
		}
	}
}

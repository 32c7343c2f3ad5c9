package hera

import "testing"

func TestDefaultsAreApplied(t *testing.T) {
	e := NewEngine(SampleRate)
	for i := 0; i < NumParameters; i++ {
		if got := e.Parameter(Param(i)); got != ParamDefaults[i] {
			t.Fatalf("%s default: got %v, want %v", ParamIDs[i], got, ParamDefaults[i])
		}
	}
}

func TestParamIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool, NumParameters)
	for _, id := range ParamIDs {
		if id == "" {
			t.Fatalf("empty parameter id")
		}
		if seen[id] {
			t.Fatalf("duplicate parameter id %q", id)
		}
		seen[id] = true
	}
}

func TestVCATypeSwitchesEveryVoice(t *testing.T) {
	e := NewEngine(SampleRate)
	e.ApplyParameter(ParamVCAType, 1)
	if e.vcaMode != VCAGate {
		t.Fatalf("engine mode: got %v, want gate", e.vcaMode)
	}
	for i, v := range e.voices {
		if v.vcaMode != VCAGate {
			t.Fatalf("voice %d not switched to gate mode", i)
		}
	}

	e.ApplyParameter(ParamVCAType, 0)
	if e.vcaMode != VCAEnvelope {
		t.Fatalf("engine mode: got %v, want envelope", e.vcaMode)
	}
}

func TestPWMSourceSelection(t *testing.T) {
	e := NewEngine(SampleRate)
	cases := []struct {
		value float32
		want  PWMSource
	}{
		{0, PWMManual},
		{1, PWMLFO},
		{2, PWMEnvelope},
	}
	for _, c := range cases {
		e.ApplyParameter(ParamPWMMod, c.value)
		for i, v := range e.voices {
			if v.pwmSource != c.want {
				t.Fatalf("value %v: voice %d source %v, want %v", c.value, i, v.pwmSource, c.want)
			}
		}
	}
}

func TestPitchRangeFootage(t *testing.T) {
	e := NewEngine(SampleRate)
	cases := []struct {
		value float32
		want  float32
	}{
		{0, 0.5}, // 16'
		{1, 1.0}, // 8'
		{2, 2.0}, // 4'
		{9, 2.0}, // clamped
	}
	for _, c := range cases {
		e.ApplyParameter(ParamPitchRange, c.value)
		if e.pitchFactor != c.want {
			t.Fatalf("range value %v: factor %v, want %v", c.value, e.pitchFactor, c.want)
		}
	}
}

func TestLFORateParamSetsFrequencyThroughCurve(t *testing.T) {
	e := NewEngine(SampleRate)
	e.ApplyParameter(ParamLFORate, 1.0)
	if got := e.lfo.smoothFreq.Target(); got != 22.22 {
		t.Fatalf("LFO rate at full slider: got %v Hz, want 22.22", got)
	}
}

func TestChorusParamsToggleStages(t *testing.T) {
	e := NewEngine(SampleRate)
	e.ApplyParameter(ParamChorusI, 1.0)
	if !e.chorus.stageI {
		t.Fatalf("chorus I should be on")
	}
	e.ApplyParameter(ParamChorusI, 0.2)
	if e.chorus.stageI {
		t.Fatalf("values below 0.5 should switch chorus I off")
	}
	e.ApplyParameter(ParamChorusII, 0.5)
	if !e.chorus.stageII {
		t.Fatalf("chorus II should switch on at 0.5")
	}
}

func TestOutOfRangeParamIndexIsIgnored(t *testing.T) {
	e := NewEngine(SampleRate)
	before := e.params
	e.ApplyParameter(Param(-1), 0.5)
	e.ApplyParameter(Param(NumParameters), 0.5)
	if e.params != before {
		t.Fatalf("out-of-range parameter index mutated state")
	}
	if got := e.Parameter(Param(99)); got != 0 {
		t.Fatalf("out-of-range read: got %v, want 0", got)
	}
}

func TestApplyPresetHandlesShortAndLongVectors(t *testing.T) {
	e := NewEngine(SampleRate)

	short := []float32{0.9, 1}
	e.ApplyPreset(short)
	if e.Parameter(ParamVCADepth) != 0.9 {
		t.Fatalf("short preset did not apply its values")
	}
	if e.Parameter(ParamSawLevel) != ParamDefaults[ParamSawLevel] {
		t.Fatalf("short preset disturbed untouched parameters")
	}

	long := make([]float32, NumParameters+10)
	for i := range long {
		long[i] = 0.25
	}
	e.ApplyPreset(long) // extra values silently ignored
	if e.Parameter(ParamChorusII) != 0.25 {
		t.Fatalf("long preset did not apply its in-range values")
	}
}

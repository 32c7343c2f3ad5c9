package host

import (
	"math"
	"testing"
)

func TestMIDINoteOnAndOff(t *testing.T) {
	in := newTestInstance(t)
	in.SetParam("sustain", "1")

	in.OnMIDI([]byte{0x90, 60, 100})
	if got := in.Engine().ActiveVoices(); got != 1 {
		t.Fatalf("after note-on: %d voices", got)
	}
	if got := in.Engine().Voice(0).Note(); got != 60 {
		t.Fatalf("voice note: got %d", got)
	}

	in.OnMIDI([]byte{0x80, 60, 0})
	if !in.Engine().Voice(0).Active() {
		t.Fatalf("voice should stay active through its release")
	}
}

func TestMIDIVelocityZeroIsNoteOff(t *testing.T) {
	in := newTestInstance(t)
	in.SetParam("sustain", "1")

	in.OnMIDI([]byte{0x90, 60, 100})
	in.OnMIDI([]byte{0x90, 60, 0})
	// Release triggered: a second note should land on a fresh slot
	// only after stealing rules run; here the released voice 0 wins.
	in.OnMIDI([]byte{0x90, 72, 100})
	if got := in.Engine().Voice(0).Note(); got != 72 {
		t.Fatalf("released voice should be reused: note %d", got)
	}
}

func TestMIDIOctaveTransposeShiftsNotes(t *testing.T) {
	in := newTestInstance(t)
	in.SetParam("sustain", "1")
	in.SetParam("octave_transpose", "2")

	in.OnMIDI([]byte{0x90, 60, 100})
	if got := in.Engine().Voice(0).Note(); got != 84 {
		t.Fatalf("transposed note: got %d, want 84", got)
	}

	// Note-off goes through the same transpose so it finds the voice.
	in.OnMIDI([]byte{0x80, 60, 0})
	in.OnMIDI([]byte{0x90, 120, 100}) // 120 + 24 clamps to 127
	found := false
	for i := 0; i < 6; i++ {
		if v := in.Engine().Voice(i); v.Active() && v.Note() == 127 {
			found = true
		}
	}
	if !found {
		t.Fatalf("transposed note should clamp to 127")
	}
}

func TestMIDIPitchBendDecode(t *testing.T) {
	in := newTestInstance(t)

	in.OnMIDI([]byte{0xE0, 0x00, 0x40}) // center: 0x40<<7 = 8192
	if got := in.Engine().PitchBendSemitones(); got != 0 {
		t.Fatalf("center bend: got %v", got)
	}
	in.OnMIDI([]byte{0xE0, 0x00, 0x00})
	if got := in.Engine().PitchBendSemitones(); got != -7 {
		t.Fatalf("minimum bend: got %v, want -7", got)
	}
	in.OnMIDI([]byte{0xE0, 0x7F, 0x7F})
	if got := in.Engine().PitchBendSemitones(); math.Abs(float64(got-7)) > 0.001 {
		t.Fatalf("maximum bend: got %v, want ~7", got)
	}
}

func TestMIDIControlChangeRouting(t *testing.T) {
	in := newTestInstance(t)
	in.SetParam("sustain", "1")
	in.OnMIDI([]byte{0x90, 60, 100})

	in.OnMIDI([]byte{0xB0, 64, 127}) // sustain pedal: ignored
	if got := in.Engine().ActiveVoices(); got != 1 {
		t.Fatalf("pedal changed voice state: %d", got)
	}

	in.OnMIDI([]byte{0xB0, 123, 0})
	if got := in.Engine().ActiveVoices(); got != 0 {
		t.Fatalf("CC 123 should silence everything: %d voices", got)
	}
}

func TestMIDIShortMessagesIgnored(t *testing.T) {
	in := newTestInstance(t)
	in.OnMIDI(nil)
	in.OnMIDI([]byte{0x90})
	if got := in.Engine().ActiveVoices(); got != 0 {
		t.Fatalf("truncated messages should be ignored")
	}
}

package host

// OnMIDI decodes one raw MIDI message and routes it to the engine.
// Note numbers are shifted by the octave transpose before allocation;
// a note-on with velocity zero is a note-off per the MIDI spec.
func (in *Instance) OnMIDI(msg []byte) {
	if in == nil || len(msg) < 2 {
		return
	}

	status := msg[0] & 0xF0
	data1 := int(msg[1])
	data2 := 0
	if len(msg) > 2 {
		data2 = int(msg[2])
	}

	note := data1
	if status == 0x90 || status == 0x80 {
		note += in.octaveTranspose * 12
		if note < 0 {
			note = 0
		}
		if note > 127 {
			note = 127
		}
	}

	switch status {
	case 0x90:
		if data2 > 0 {
			in.engine.NoteOn(note, float32(data2)/127.0)
		} else {
			in.engine.NoteOff(note)
		}
	case 0x80:
		in.engine.NoteOff(note)
	case 0xB0:
		in.engine.ControlChange(data1, data2)
	case 0xE0:
		in.engine.SetPitchBend(data2<<7 | data1)
	}
}

/*
   SF2Conv - SID to SID Factory II converter
   Copyright (c) 2026, the SF2Conv authors

   This file is part of SF2Conv.

   SF2Conv is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   SF2Conv is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with SF2Conv. If not, see <http://www.gnu.org/licenses/>.
*/

package validate

import (
	"errors"
	"math"
	"testing"

	"github.com/sf2tools/sf2conv/pkg/c64"
	"github.com/sf2tools/sf2conv/pkg/mos6502"
	"github.com/sf2tools/sf2conv/pkg/sidfile"
)

// testTune builds a PSID whose play routine is the given code at
// $1010; init gates voice 1 and sets the volume.
func testTune(t *testing.T, play []byte) []byte {
	t.Helper()

	prog := make([]byte, 0x40)
	copy(prog, []byte{
		0xa9, 0x0f, // LDA #$0f
		0x8d, 0x18, 0xd4, // STA $d418
		0xa9, 0x11, // LDA #$11
		0x8d, 0x04, 0xd4, // STA $d404
		0x60, // RTS
	})
	copy(prog[0x10:], play)

	img, err := c64.NewMemoryImage(0x1000, prog)
	if err != nil {
		t.Fatalf("cannot build image: %v", err)
	}

	return sidfile.Encode(&sidfile.Header{
		Magic:       sidfile.MagicPSID,
		Version:     2,
		InitAddress: 0x1000,
		PlayAddress: 0x1010,
		Songs:       1,
		StartSong:   1,
	}, img)
}

//
func TestValidateIdentical(t *testing.T) {

	tune := testTune(t, []byte{
		0xee, 0x01, 0xd4, // INC $d401
		0x60,
	})

	r, err := Validate(tune, tune, 10)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if math.Abs(r.Overall-1.0) > 1e-9 {
		t.Errorf("overall %.4f, want 1.0", r.Overall)
	}
	if r.FrameAccuracy != 1.0 || r.FilterAccuracy != 1.0 {
		t.Errorf("frame %.4f filter %.4f, want 1.0",
			r.FrameAccuracy, r.FilterAccuracy)
	}
	for v := 0; v < 3; v++ {
		if r.VoiceFrequency[v] != 1.0 || r.VoiceWaveform[v] != 1.0 {
			t.Errorf("voice %d: freq %.4f wave %.4f, want 1.0",
				v, r.VoiceFrequency[v], r.VoiceWaveform[v])
		}
	}
	if r.Frames != 10 {
		t.Errorf("frames %d, want 10", r.Frames)
	}
}

// A diverging register trace must cost exactly the affected scores.
func TestValidateDivergence(t *testing.T) {

	original := testTune(t, []byte{
		0xee, 0x04, 0xd4, // INC $d404, voice 1 control
		0x60,
	})
	converted := testTune(t, []byte{
		0xee, 0x0b, 0xd4, // INC $d40b, voice 2 control
		0x60,
	})

	r, err := Validate(original, converted, 10)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	if r.FrameAccuracy != 0 {
		t.Errorf("frame accuracy %.4f, want 0", r.FrameAccuracy)
	}
	if r.VoiceWaveform[0] != 0 || r.VoiceWaveform[1] != 0 {
		t.Errorf("waveform scores %.4f/%.4f, want 0/0",
			r.VoiceWaveform[0], r.VoiceWaveform[1])
	}
	if r.VoiceWaveform[2] != 1.0 {
		t.Errorf("voice 3 waveform %.4f, want 1.0", r.VoiceWaveform[2])
	}
	for v := 0; v < 3; v++ {
		if r.VoiceFrequency[v] != 1.0 {
			t.Errorf("voice %d frequency %.4f, want 1.0",
				v, r.VoiceFrequency[v])
		}
	}
	if r.Overall >= 1.0 || r.Overall <= 0 {
		t.Errorf("overall %.4f, want in (0, 1)", r.Overall)
	}

	want := WeightVoice + WeightRegister/3 + WeightFilter
	if diff := r.Overall - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("overall %.4f, want %.4f", r.Overall, want)
	}
}

// An image that faults must come back as a distinct failure, never as
// a zero score.
func TestValidateRunawayIsAnError(t *testing.T) {

	good := testTune(t, []byte{0x60})
	bad := testTune(t, []byte{0x4c, 0x10, 0x10}) // JMP to self

	_, err := Validate(good, bad, 5)
	if err == nil {
		t.Fatal("no error for diverging emulation")
	}

	var run *RunError
	if !errors.As(err, &run) {
		t.Fatalf("error is %T, want RunError", err)
	}
	if run.Image != "converted" {
		t.Errorf("faulting image %q, want converted", run.Image)
	}
	var runaway *mos6502.RunawayExecutionError
	if !errors.As(err, &runaway) {
		t.Errorf("cause is %T, want RunawayExecutionError", run.Err)
	}
}

//
func TestValidateDefaultFrames(t *testing.T) {

	tune := testTune(t, []byte{0x60})

	r, err := Validate(tune, tune, 0)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if r.Frames != DefaultFrames {
		t.Errorf("frames %d, want %d", r.Frames, DefaultFrames)
	}
}

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

package extract

import (
	"bytes"
	"testing"
)

// One instrument byte must stick to every following note until the
// next change.
func TestUnpackInstrumentPersists(t *testing.T) {

	stream := []byte{
		0xa3, 0x30, // instrument 3, note $30
		0x31, 0x32, 0x33, 0x34, // four plain notes
		0x7f,
	}

	events, n, err := UnpackSequence(stream)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if n != len(stream) {
		t.Errorf("consumed %d bytes, want %d", n, len(stream))
	}
	if len(events) != 5 {
		t.Fatalf("%d events, want 5", len(events))
	}
	for i, e := range events {
		if e.Instrument != 3 {
			t.Errorf("event %d instrument %d, want 3", i, e.Instrument)
		}
		if e.Note != 0x30+byte(i) {
			t.Errorf("event %d note $%02x, want $%02x", i, e.Note, 0x30+i)
		}
	}
}

//
func TestUnpackDurationAndTie(t *testing.T) {

	stream := []byte{
		0x84, 0x30, // duration 4, note
		0x95, 0x31, // duration 5 with tie, note
		0x7f,
	}

	events, _, err := UnpackSequence(stream)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("%d events, want 2", len(events))
	}
	if events[0].Duration != 4 || events[0].Tie {
		t.Errorf("event 0 = duration %d tie %v, want 4/false",
			events[0].Duration, events[0].Tie)
	}
	if events[1].Duration != 5 || !events[1].Tie {
		t.Errorf("event 1 = duration %d tie %v, want 5/true",
			events[1].Duration, events[1].Tie)
	}
}

// The sentinel must distinguish "never set" from instrument 0.
func TestUnpackNoInstrumentIsNone(t *testing.T) {

	events, _, err := UnpackSequence([]byte{0x30, 0x7f})
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if events[0].Instrument != None || events[0].Command != None {
		t.Errorf("instrument/command = %d/%d, want None/None",
			events[0].Instrument, events[0].Command)
	}
}

//
func TestUnpackCommandConsumesNote(t *testing.T) {

	stream := []byte{
		0xc2, 0x40, // command 2, note $40
		0x41, // plain note, command persists
		0x7f,
	}

	events, _, err := UnpackSequence(stream)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("%d events, want 2", len(events))
	}
	for i, e := range events {
		if e.Command != 2 {
			t.Errorf("event %d command %d, want 2", i, e.Command)
		}
	}
}

//
func TestUnpackRejectsTruncated(t *testing.T) {

	cases := map[string][]byte{
		"no terminator":          {0x30, 0x31},
		"instrument at end":      {0xa0},
		"command before nonnote": {0xc0, 0xa1, 0x7f},
	}

	for name, stream := range cases {
		if _, _, err := UnpackSequence(stream); err == nil {
			t.Errorf("%s: no error", name)
		}
	}
}

//
func TestPackRoundTrip(t *testing.T) {

	stream := []byte{
		0x84, 0xa1, 0x30, // duration 4, instrument 1, note
		0x31, 0x32, // plain notes
		0x90, 0xc3, 0x33, // tie, command 3, note
		0x34,
		0x7f,
	}

	events, _, err := UnpackSequence(stream)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}

	packed, err := PackSequence(events)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if !bytes.Equal(packed, stream) {
		t.Errorf("round trip drifted:\n in %02x\nout %02x", stream, packed)
	}
}

// An event changing instrument and command at once cannot be encoded;
// unpacked streams never produce one, hand-built event lists might.
func TestPackRejectsDoubleChange(t *testing.T) {

	events := []SequenceEvent{
		{Note: 0x30, Instrument: 1, Command: 2},
	}

	if _, err := PackSequence(events); err == nil {
		t.Error("no error for simultaneous instrument and command change")
	}
}

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
	"fmt"
)

// packed sequence stream bytes
const (
	seqNoteMax    = 0x7e
	seqEnd        = 0x7f
	seqDuration   = 0x80 // ..0x9f, low nibble = ticks, bit 4 = tie
	seqInstrument = 0xa0 // ..0xbf, next byte is the note
	seqCommand    = 0xc0 // ..0xff, next byte is the note
)

// seqState is the accumulator threaded through the unpack fold.
// Instrument and command persist across events until changed; that is
// the player's behavior, not an encoding shortcut.
type seqState struct {
	instrument byte
	command    byte
	duration   byte
	tie        bool
}

/*
	UnpackSequence decodes one packed note stream up to and including
	its terminator, returning the events and the number of bytes
	consumed. The range dispatch is ordered highest value first and is
	mutually exclusive, matching the branch order of the original
	players; evaluating the ranges independently would misclassify
	instrument and command bytes as notes.
*/
func UnpackSequence(data []byte) ([]SequenceEvent, int, error) {

	st := seqState{instrument: None, command: None, duration: 0}
	var events []SequenceEvent
	pos := 0

	for pos < len(data) {
		b := data[pos]
		pos++

		switch {

		case b >= seqCommand:
			if pos >= len(data) {
				return nil, 0, fmt.Errorf(
					"command byte $%02x at end of stream", b)
			}
			st.command = b - seqCommand
			note := data[pos]
			pos++
			if note > seqNoteMax {
				return nil, 0, fmt.Errorf(
					"command $%02x followed by non-note $%02x",
					st.command, note)
			}
			events = append(events, st.event(note))

		case b >= seqInstrument:
			if pos >= len(data) {
				return nil, 0, fmt.Errorf(
					"instrument byte $%02x at end of stream", b)
			}
			st.instrument = b - seqInstrument
			note := data[pos]
			pos++
			if note > seqNoteMax {
				return nil, 0, fmt.Errorf(
					"instrument $%02x followed by non-note $%02x",
					st.instrument, note)
			}
			events = append(events, st.event(note))

		case b >= seqDuration:
			st.duration = b & 0x0f
			st.tie = b&0x10 != 0

		case b == seqEnd:
			return events, pos, nil

		default:
			events = append(events, st.event(b))
		}
	}

	return nil, 0, fmt.Errorf("sequence not terminated within %d bytes",
		len(data))
}

//
func (st *seqState) event(note byte) SequenceEvent {
	return SequenceEvent{
		Note:       note,
		Instrument: st.instrument,
		Command:    st.command,
		Duration:   st.duration,
		Tie:        st.tie,
	}
}

/*
	PackSequence is the inverse of UnpackSequence: it re-emits the
	persistent-state encoding, only spending instrument/command/duration
	bytes where the value actually changes. An event that changes both
	instrument and command is not expressible in the stream grammar (a
	prefix byte consumes the note slot) and is rejected; unpacked
	streams never contain one.
*/
func PackSequence(events []SequenceEvent) ([]byte, error) {

	st := seqState{instrument: None, command: None, duration: 0}
	var buf bytes.Buffer

	for i, e := range events {
		if e.Duration != st.duration || e.Tie != st.tie {
			b := byte(seqDuration) | e.Duration&0x0f
			if e.Tie {
				b |= 0x10
			}
			buf.WriteByte(b)
			st.duration, st.tie = e.Duration, e.Tie
		}

		instChange := e.Instrument != st.instrument && e.Instrument != None
		cmdChange := e.Command != st.command && e.Command != None

		switch {
		case instChange && cmdChange:
			return nil, fmt.Errorf(
				"event %d changes instrument and command at once", i)
		case cmdChange:
			buf.WriteByte(seqCommand + e.Command)
			buf.WriteByte(e.Note)
			st.command = e.Command
		case instChange:
			buf.WriteByte(seqInstrument + e.Instrument)
			buf.WriteByte(e.Note)
			st.instrument = e.Instrument
		default:
			buf.WriteByte(e.Note)
		}
	}

	buf.WriteByte(seqEnd)
	return buf.Bytes(), nil
}

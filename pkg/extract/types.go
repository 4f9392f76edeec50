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

/*
	Package extract locates the musical data embedded in a raw player
	image: order lists, packed note sequences, instruments and the
	wave/pulse/filter tables. There is no symbol information to go by,
	so extraction runs a chain of increasingly desperate strategies and
	reports which one succeeded together with a confidence score.
*/
package extract

import (
	"fmt"
)

// None marks an instrument or command slot that no event has set yet.
const None byte = 0xff

// SequenceEvent is one decoded note event. Instrument and Command
// carry the values in effect for the event, i.e. inherited from
// earlier events unless this event changed them.
type SequenceEvent struct {
	Note       byte
	Instrument byte
	Command    byte
	Duration   byte
	Tie        bool
}

// Sequence is one unpacked note stream, with the image address it was
// found at.
type Sequence struct {
	Address uint16
	Events  []SequenceEvent
	packed  int // wire size, terminator included
}

// PackedSize returns the sequence's size in its packed on-wire form.
func (s *Sequence) PackedSize() int {
	return s.packed
}

// OrderListEntry is one playable song step of a voice.
type OrderListEntry struct {
	Transpose     byte
	SequenceIndex byte
}

// OrderList is a voice's song structure. LoopIndex is -1 for a
// terminated list, otherwise the entry index playback loops back to.
type OrderList struct {
	Entries   []OrderListEntry
	LoopIndex int
}

// Instrument is the fixed-size instrument record: envelope, waveform
// and the rows its wave/pulse/filter programs start at. Extracted once
// per file and never mutated after decode.
type Instrument struct {
	AttackDecay    byte
	SustainRelease byte
	Waveform       byte
	WaveRow        byte
	PulseRow       byte
	FilterRow      byte
	Flags          byte
}

// InstrumentSize is the record's wire size, padded to eight bytes the
// way the drivers store it.
const InstrumentSize = 8

//
func DecodeInstrument(data []byte) Instrument {
	return Instrument{
		AttackDecay:    data[0],
		SustainRelease: data[1],
		Waveform:       data[2],
		WaveRow:        data[3],
		PulseRow:       data[4],
		FilterRow:      data[5],
		Flags:          data[6],
	}
}

//
func (i Instrument) Encode() []byte {
	return []byte{
		i.AttackDecay, i.SustainRelease, i.Waveform,
		i.WaveRow, i.PulseRow, i.FilterRow, i.Flags, 0,
	}
}

// Tier identifies which extraction strategy produced a result.
type Tier int

//
const (
	TierNone Tier = iota
	TierSignature
	TierHeuristic
	TierFixed
)

//
func (t Tier) String() string {
	switch t {
	case TierSignature:
		return "signature"
	case TierHeuristic:
		return "heuristic"
	case TierFixed:
		return "fixed-offset"
	}
	return "none"
}

// Hints narrows the heuristic scan; zero values mean "no hint".
type Hints struct {
	InitAddress uint16
	PlayAddress uint16
	// ScanFrom/ScanTo bound the heuristic window; when zero the whole
	// image is scanned.
	ScanFrom uint16
	ScanTo   uint16
}

// Result is everything extraction recovered from one image.
type Result struct {
	Player     string
	Tier       Tier
	Confidence float64

	OrderLists  [3]OrderList
	Sequences   []Sequence
	Instruments []Instrument
	WaveTable   []byte
	PulseTable  []byte
	FilterTable []byte
}

// ErrAmbiguous reports that every tier came up empty. This is a
// conversion failure; an empty result must never masquerade as a
// successfully converted file.
var ErrAmbiguous = fmt.Errorf("extraction ambiguous: no sequences found")

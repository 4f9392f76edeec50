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
	"github.com/sf2tools/sf2conv/pkg/sf2file"
)

/*
	Signature identifies a player family by a structural byte pattern
	that is independent of load address, plus the offsets (relative to
	the pattern match) at which the family's code embeds pointers to
	its data tables. The same player is linked at different addresses
	across files, so signatures never name an absolute location.

	Per-family heuristics are data, not code: new families are added to
	this table, or registered at runtime via Register.
*/
type Signature struct {
	Player     string
	Pattern    []int16 // byte values; -1 matches anything
	Confidence float64

	// offsets of pointer words relative to the match
	OrderListRefs [3]int
	SequencesRef  int
	SeqCountRef   int // offset of the sequence count byte
	InstRef       int
	InstCountRef  int
	WaveRef       int
	WaveLenRef    int
	PulseRef      int
	PulseLenRef   int
	FilterRef     int
	FilterLenRef  int
}

// signatures is the built-in family table. The SF2 driver family
// matches on its entry-stub shape: three consecutive absolute jumps
// with arbitrary targets, which is how every driver image this tool
// emits begins.
var signatures = []Signature{
	{
		Player: "sf2driver",
		Pattern: []int16{
			sf2file.OpJMP, -1, -1,
			sf2file.OpJMP, -1, -1,
			sf2file.OpJMP, -1, -1,
		},
		Confidence:    0.95,
		OrderListRefs: [3]int{sf2file.PtrOrderListV0, sf2file.PtrOrderListV1, sf2file.PtrOrderListV2},
		SequencesRef:  sf2file.PtrSequences,
		SeqCountRef:   sf2file.SequenceCount,
		InstRef:       sf2file.PtrInstruments,
		InstCountRef:  sf2file.InstrumentCnt,
		WaveRef:       sf2file.PtrWave,
		WaveLenRef:    sf2file.WaveLen,
		PulseRef:      sf2file.PtrPulse,
		PulseLenRef:   sf2file.PulseLen,
		FilterRef:     sf2file.PtrFilter,
		FilterLenRef:  sf2file.FilterLen,
	},
}

// Register adds a player family signature to the detection table.
func Register(sig Signature) {
	signatures = append(signatures, sig)
}

// span returns how many bytes past the match offset the signature's
// field references reach: pointer refs read a word, count and length
// refs a single byte. An image shorter than this cannot carry the
// family's tables, no matter that the pattern matched.
func (s *Signature) span() int {

	max := len(s.Pattern)
	for _, r := range []int{
		s.OrderListRefs[0] + 2, s.OrderListRefs[1] + 2, s.OrderListRefs[2] + 2,
		s.SequencesRef + 2, s.SeqCountRef + 1,
		s.InstRef + 2, s.InstCountRef + 1,
		s.WaveRef + 2, s.WaveLenRef + 1,
		s.PulseRef + 2, s.PulseLenRef + 1,
		s.FilterRef + 2, s.FilterLenRef + 1,
	} {
		if r > max {
			max = r
		}
	}
	return max
}

// match returns the first offset in data where the pattern matches,
// or -1.
func (s *Signature) match(data []byte) int {

	if len(s.Pattern) == 0 || len(data) < len(s.Pattern) {
		return -1
	}

outer:
	for off := 0; off <= len(data)-len(s.Pattern); off++ {
		for i, p := range s.Pattern {
			if p >= 0 && data[off+i] != byte(p) {
				continue outer
			}
		}
		return off
	}
	return -1
}

// Detect tries all known signatures against an image payload and
// returns the matching family plus the match offset, or ("", -1).
// Detection runs before the signature tier; it never assumes a fixed
// code location.
func Detect(payload []byte) (*Signature, int) {
	for i := range signatures {
		if off := signatures[i].match(payload); off >= 0 {
			return &signatures[i], off
		}
	}
	return nil, -1
}

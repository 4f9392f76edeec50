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
	"errors"
	"testing"

	"github.com/sf2tools/sf2conv/pkg/c64"
	"github.com/sf2tools/sf2conv/pkg/sf2file"
)

/*
	driverImage builds an image following the driver layout convention:
	entry stubs, pointer table, then order lists at $40/$48/$50, a
	sequence pointer table at $60 with two streams, one instrument at
	$70 and a wave table at $80 (offsets relative to $1000). When stubs
	is false the entry stub area is NOPs, so no player family signature
	matches.
*/
func driverImage(t *testing.T, stubs bool, seqs [][]byte) *c64.MemoryImage {
	t.Helper()

	d := make([]byte, 0x100)

	if stubs {
		for _, off := range []int{
			sf2file.StubInit, sf2file.StubPlay, sf2file.StubStop,
		} {
			d[off] = sf2file.OpJMP
			c64.PutWord(d, off+1, 0x1000)
		}
	} else {
		for i := 0; i < sf2file.PtrOrderListV0; i++ {
			d[i] = 0xea
		}
	}

	c64.PutWord(d, sf2file.PtrOrderListV0, 0x1040)
	c64.PutWord(d, sf2file.PtrOrderListV1, 0x1048)
	c64.PutWord(d, sf2file.PtrOrderListV2, 0x1050)
	copy(d[0x40:], []byte{0xa0, 0x00, 0x01, 0xff, 0x00})
	copy(d[0x48:], []byte{0x80, 0x00, 0xfe})
	copy(d[0x50:], []byte{0x80, 0x01, 0xfe})

	c64.PutWord(d, sf2file.PtrSequences, 0x1060)
	d[sf2file.SequenceCount] = byte(len(seqs))
	pos := 0x60 + 2*len(seqs)
	for i, s := range seqs {
		d[0x60+i] = byte(0x1000 + pos)
		d[0x60+len(seqs)+i] = byte((0x1000 + pos) >> 8)
		copy(d[pos:], s)
		pos += len(s)
	}

	c64.PutWord(d, sf2file.PtrInstruments, 0x1070)
	d[sf2file.InstrumentCnt] = 1
	copy(d[0x70:], []byte{0x41, 0x09, 0x00, 0x02, 0x04, 0x00, 0x00, 0x00})

	c64.PutWord(d, sf2file.PtrWave, 0x1080)
	d[sf2file.WaveLen] = 4
	copy(d[0x80:], []byte{0x11, 0x21, 0x41, 0x81})
	c64.PutWord(d, sf2file.PtrPulse, 0x1090)
	d[sf2file.PulseLen] = 0
	c64.PutWord(d, sf2file.PtrFilter, 0x10a0)
	d[sf2file.FilterLen] = 0

	img, err := c64.NewMemoryImage(0x1000, d)
	if err != nil {
		t.Fatalf("cannot build image: %v", err)
	}
	return img
}

//
func TestExtractSignatureTier(t *testing.T) {

	img := driverImage(t, true, [][]byte{
		{0xa0, 0x30, 0x7f},
		{0x31, 0x32, 0x33, 0x7f},
	})

	res, err := Extract(img, Hints{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if res.Tier != TierSignature {
		t.Errorf("tier %s, want %s", res.Tier, TierSignature)
	}
	if res.Player != "sf2driver" {
		t.Errorf("player %q, want sf2driver", res.Player)
	}
	if res.Confidence < 0.9 {
		t.Errorf("confidence %.2f, want >= 0.9", res.Confidence)
	}
	if len(res.Sequences) != 2 {
		t.Fatalf("%d sequences, want 2", len(res.Sequences))
	}
	if len(res.Sequences[0].Events) != 1 || len(res.Sequences[1].Events) != 3 {
		t.Errorf("sequence events %d/%d, want 1/3",
			len(res.Sequences[0].Events), len(res.Sequences[1].Events))
	}
	if len(res.OrderLists[0].Entries) != 2 || res.OrderLists[0].LoopIndex != 0 {
		t.Errorf("voice 1 order list: %+v", res.OrderLists[0])
	}
	if len(res.Instruments) != 1 {
		t.Errorf("%d instruments, want 1", len(res.Instruments))
	}
	if len(res.WaveTable) != 4 {
		t.Errorf("wave table %d bytes, want 4", len(res.WaveTable))
	}
}

// Without the stub signature the heuristic scanner still finds the
// note streams.
func TestExtractHeuristicTier(t *testing.T) {

	d := make([]byte, 0x80)
	seq := []byte{0xa0, 0x30, 0x31, 0x32, 0x7f}
	ol := []byte{0x80, 0x00, 0xfe}
	copy(d[0x20:], seq)
	copy(d[0x40:], ol)

	img, err := c64.NewMemoryImage(0x1000, d)
	if err != nil {
		t.Fatalf("cannot build image: %v", err)
	}

	res, err := Extract(img, Hints{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if res.Tier != TierHeuristic {
		t.Errorf("tier %s, want %s", res.Tier, TierHeuristic)
	}
	if len(res.Sequences) != 1 {
		t.Fatalf("%d sequences, want 1", len(res.Sequences))
	}
	if len(res.Sequences[0].Events) != 3 {
		t.Errorf("%d events, want 3", len(res.Sequences[0].Events))
	}
	if res.Sequences[0].Address != 0x1020 {
		t.Errorf("sequence at $%04x, want $1020", res.Sequences[0].Address)
	}
	if len(res.OrderLists[0].Entries) != 1 {
		t.Errorf("voice 1 order list: %+v", res.OrderLists[0])
	}
}

// The fixed-offset tier parses the layout convention even when the
// heuristic window is steered away from the data.
func TestExtractFixedTier(t *testing.T) {

	img := driverImage(t, false, [][]byte{
		{0xa0, 0x30, 0x31, 0x7f},
		{0x31, 0x32, 0x7f},
	})

	res, err := Extract(img, Hints{
		ScanFrom: 0x1000,
		ScanTo:   0x1008,
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	if res.Tier != TierFixed {
		t.Errorf("tier %s, want %s", res.Tier, TierFixed)
	}
	if res.Confidence != 0.30 {
		t.Errorf("confidence %.2f, want 0.30", res.Confidence)
	}
	if len(res.Sequences) != 2 {
		t.Errorf("%d sequences, want 2", len(res.Sequences))
	}
}

// An image just large enough to match the stub signature but too small
// to carry the pointer table must be rejected, not indexed past its end.
func TestExtractTruncatedDriverImage(t *testing.T) {

	d := []byte{
		sf2file.OpJMP, 0x00, 0x00,
		sf2file.OpJMP, 0x00, 0x00,
		sf2file.OpJMP, 0x00, 0x00,
	}

	img, err := c64.NewMemoryImage(0x1000, d)
	if err != nil {
		t.Fatalf("cannot build image: %v", err)
	}

	if _, err := Extract(img, Hints{}); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("error %v, want ErrAmbiguous", err)
	}
}

// Long repeated-byte runs unpack as plausible note streams and must
// never be pattern-matched.
func TestExtractSkipsFillerRuns(t *testing.T) {

	d := make([]byte, 0x40)
	for i := 0; i < 0x30; i++ {
		d[i] = 0x30 // 48 identical "notes"
	}
	d[0x30] = 0x7f

	img, err := c64.NewMemoryImage(0x1000, d)
	if err != nil {
		t.Fatalf("cannot build image: %v", err)
	}

	if _, err := Extract(img, Hints{}); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("error %v, want ErrAmbiguous", err)
	}
}

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

// A transpose byte is not a step; it sticks to the following steps.
func TestUnpackOrderListTransposePersists(t *testing.T) {

	list, n, err := UnpackOrderList([]byte{0xa2, 0x05, 0x06, 0xfe})
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if n != 4 {
		t.Errorf("consumed %d bytes, want 4", n)
	}
	if len(list.Entries) != 2 {
		t.Fatalf("%d entries, want 2", len(list.Entries))
	}
	for i, e := range list.Entries {
		if e.Transpose != 0xa2 {
			t.Errorf("entry %d transpose $%02x, want $a2", i, e.Transpose)
		}
		if e.SequenceIndex != byte(5+i) {
			t.Errorf("entry %d sequence %d, want %d",
				i, e.SequenceIndex, 5+i)
		}
	}
	if list.LoopIndex != -1 {
		t.Errorf("loop index %d, want -1", list.LoopIndex)
	}
}

//
func TestUnpackOrderListLoop(t *testing.T) {

	list, _, err := UnpackOrderList([]byte{0x80, 0x00, 0x01, 0x02, 0xff, 0x01})
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if list.LoopIndex != 1 {
		t.Errorf("loop index %d, want 1", list.LoopIndex)
	}
	if len(list.Entries) != 3 {
		t.Errorf("%d entries, want 3", len(list.Entries))
	}
}

//
func TestUnpackOrderListRejectsBadLoop(t *testing.T) {

	cases := map[string][]byte{
		"loop at end of stream": {0x80, 0x00, 0xff},
		"loop beyond entries":   {0x80, 0x00, 0xff, 0x07},
		"unterminated":          {0x80, 0x00, 0x01},
	}

	for name, stream := range cases {
		if _, _, err := UnpackOrderList(stream); err == nil {
			t.Errorf("%s: no error", name)
		}
	}
}

//
func TestPackOrderListRoundTrip(t *testing.T) {

	streams := [][]byte{
		{0xa2, 0x05, 0x06, 0xfe},
		{0x80, 0x00, 0x01, 0x02, 0xff, 0x01},
		{0x80, 0x00, 0x9c, 0x01, 0x01, 0xfe},
	}

	for _, stream := range streams {
		list, _, err := UnpackOrderList(stream)
		if err != nil {
			t.Fatalf("unpack %02x: %v", stream, err)
		}
		if packed := PackOrderList(list); !bytes.Equal(packed, stream) {
			t.Errorf("round trip drifted:\n in %02x\nout %02x",
				stream, packed)
		}
	}
}

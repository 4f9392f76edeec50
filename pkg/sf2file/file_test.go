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

package sf2file

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/sf2tools/sf2conv/pkg/c64"
)

// testFile builds a minimal structurally valid file: descriptor,
// driver common block, one table descriptor, a 64 byte driver image
// and some trailing music data.
func testFile(t *testing.T) *File {
	t.Helper()

	driver := make([]byte, 64)
	img, err := c64.NewMemoryImage(0x1000, driver)
	if err != nil {
		t.Fatalf("cannot build image: %v", err)
	}

	f := &File{
		LoadAddress: 0x1000,
		Driver:      img,
		MusicData:   []byte{0xde, 0xad, 0xbe, 0xef},
	}
	f.SetDescriptor(Descriptor{
		Version:     1,
		DriverLoad:  0x1000,
		DriverSize:  64,
		MusicOffset: 64,
	})
	f.SetAddressTable(&AddressTable{
		Init: 0x1000, Play: 0x1003, Stop: 0x1006,
	})
	f.SetTableDescriptors([]TableDescriptor{
		{
			Type: TableSequence, ID: 1, Name: "Sequence 01",
			Layout: RowMajor, Address: 0x1020,
			ColumnCount: 1, RowCount: 16, VisibleRows: 16,
		},
	})
	return f
}

//
func TestRoundTripIdempotent(t *testing.T) {

	data := testFile(t).Encode()

	f, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	again := f.Encode()
	if !bytes.Equal(data, again) {
		t.Fatal("decode/encode is not byte-identical")
	}

	// and once more through the full cycle
	g, err := Decode(again)
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	if !bytes.Equal(again, g.Encode()) {
		t.Fatal("second cycle drifted")
	}
}

//
func TestDecodeRejectsBadMagic(t *testing.T) {

	data := testFile(t).Encode()
	data[2] = 0x00

	if _, err := Decode(data); !errors.Is(err, ErrMalformed) {
		t.Errorf("error %v, want ErrMalformed", err)
	}
}

//
func TestDecodeRejectsUnterminatedBlocks(t *testing.T) {

	// load address + magic, then a block that claims to run past the
	// end of the buffer
	data := []byte{0x00, 0x10, 0x37, 0x13, byte(BlockDescriptor), 0xff, 0x00}

	if _, err := Decode(data); !errors.Is(err, ErrMalformed) {
		t.Errorf("error %v, want ErrMalformed", err)
	}
}

//
func TestDecodeRejectsTableOutOfBounds(t *testing.T) {

	f := testFile(t)
	f.SetTableDescriptors([]TableDescriptor{
		{
			Type: TableSequence, Name: "Huge",
			Address: 0x1020, ColumnCount: 2, RowCount: 4096,
		},
	})

	if _, err := Decode(f.Encode()); !errors.Is(err, ErrTableOutOfBounds) {
		t.Errorf("error %v, want ErrTableOutOfBounds", err)
	}
}

// Field access after the name must not depend on the name's length.
func TestDescriptorNameLengthInvariance(t *testing.T) {

	for _, name := range []string{
		"S",
		"Sequence 2",
		strings.Repeat("N", 255),
	} {
		f := testFile(t)
		f.SetTableDescriptors([]TableDescriptor{
			{
				Type: TableWave, ID: 3, Name: name,
				Layout: ColumnMajor, Flags: 0x80, Rules: [3]byte{1, 2, 3},
				Address: 0x1010, ColumnCount: 1, RowCount: 16,
				VisibleRows: 8,
			},
		})

		g, err := Decode(f.Encode())
		if err != nil {
			t.Fatalf("name %d bytes: decode: %v", len(name), err)
		}
		descs, err := g.TableDescriptors()
		if err != nil {
			t.Fatalf("name %d bytes: descriptors: %v", len(name), err)
		}
		if len(descs) != 1 {
			t.Fatalf("name %d bytes: %d descriptors", len(name), len(descs))
		}

		d := descs[0]
		if d.Name != name {
			t.Errorf("name %d bytes: got %d bytes back",
				len(name), len(d.Name))
		}
		if d.Address != 0x1010 || d.ColumnCount != 1 || d.RowCount != 16 ||
			d.VisibleRows != 8 || d.Flags != 0x80 ||
			d.Rules != [3]byte{1, 2, 3} {
			t.Errorf("name %d bytes: tail fields shifted: %+v",
				len(name), d)
		}
	}
}

//
func TestAddressTableRebase(t *testing.T) {

	f := testFile(t)
	table, err := f.AddressTable()
	if err != nil {
		t.Fatalf("address table: %v", err)
	}

	table.Rebase(0x1000)
	if table.Init != 0x2000 || table.Play != 0x2003 || table.Stop != 0x2006 {
		t.Errorf("rebased to $%04x/$%04x/$%04x, want $2000/$2003/$2006",
			table.Init, table.Play, table.Stop)
	}

	// negative delta via wraparound
	table.Rebase(-0x800 & 0xffff)
	if table.Init != 0x1800 {
		t.Errorf("down-rebased init $%04x, want $1800", table.Init)
	}
}

//
func TestCloneIsDeep(t *testing.T) {

	f := testFile(t)
	g := f.Clone()

	g.Driver.Mem[0x1000] = 0xff
	g.MusicData[0] = 0x00
	g.Blocks[0].Payload[0] = 0xff

	if f.Driver.Mem[0x1000] == 0xff {
		t.Error("driver image shared between clones")
	}
	if f.MusicData[0] == 0x00 {
		t.Error("music data shared between clones")
	}
	if f.Blocks[0].Payload[0] == 0xff {
		t.Error("block payload shared between clones")
	}
}

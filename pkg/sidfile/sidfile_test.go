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

package sidfile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sf2tools/sf2conv/pkg/c64"
)

//
func testHeader() *Header {
	return &Header{
		Magic:       MagicPSID,
		Version:     2,
		InitAddress: 0x1000,
		PlayAddress: 0x1003,
		Songs:       1,
		StartSong:   1,
		Name:        "Test Tune",
		Author:      "Nobody",
		Released:    "2026 Nowhere",
	}
}

//
func testImage(t *testing.T) *c64.MemoryImage {
	t.Helper()
	img, err := c64.NewMemoryImage(0x1000, []byte{0xa9, 0x00, 0x60})
	if err != nil {
		t.Fatalf("cannot build image: %v", err)
	}
	return img
}

//
func TestRoundTrip(t *testing.T) {

	data := Encode(testHeader(), testImage(t))

	hdr, img, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if hdr.Name != "Test Tune" || hdr.Author != "Nobody" {
		t.Errorf("credits mangled: %q / %q", hdr.Name, hdr.Author)
	}
	if hdr.InitAddress != 0x1000 || hdr.PlayAddress != 0x1003 {
		t.Errorf("addresses mangled: init $%04x play $%04x",
			hdr.InitAddress, hdr.PlayAddress)
	}
	if img.Load != 0x1000 || img.Size != 3 {
		t.Errorf("image $%04x+%d, want $1000+3", img.Load, img.Size)
	}

	again := Encode(hdr, img)
	if !bytes.Equal(data, again) {
		t.Error("re-encoding is not byte-identical")
	}
}

// With LoadAddress zero, the load address lives in the first two
// program bytes, little-endian.
func TestEmbeddedLoadAddress(t *testing.T) {

	data := Encode(testHeader(), testImage(t))

	// offset 8 is the big-endian header load address
	if data[8] != 0 || data[9] != 0 {
		t.Fatal("header load address not zero")
	}
	prog := data[0x7c:]
	if prog[0] != 0x00 || prog[1] != 0x10 {
		t.Errorf("embedded load = $%02x%02x, want $1000",
			prog[1], prog[0])
	}
}

//
func TestExplicitLoadAddress(t *testing.T) {

	h := testHeader()
	h.LoadAddress = 0x1000
	data := Encode(h, testImage(t))

	hdr, img, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if hdr.LoadAddress != 0x1000 || img.Load != 0x1000 {
		t.Errorf("load = $%04x/$%04x, want $1000", hdr.LoadAddress, img.Load)
	}
	if img.Size != 3 {
		t.Errorf("image size %d, want 3", img.Size)
	}
}

//
func TestDecodeRejectsGarbage(t *testing.T) {

	cases := map[string][]byte{
		"too short": make([]byte, 10),
		"bad magic": append([]byte("RIFF"), make([]byte, 0x80)...),
	}

	for name, data := range cases {
		if _, _, err := Decode(data); !errors.Is(err, ErrMalformedHeader) {
			t.Errorf("%s: error %v, want ErrMalformedHeader", name, err)
		}
	}
}

//
func TestDecodeRejectsBadVersion(t *testing.T) {

	data := Encode(testHeader(), testImage(t))
	data[5] = 9 // version

	if _, _, err := Decode(data); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("error %v, want ErrMalformedHeader", err)
	}
}

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

// Package sidfile reads and writes the PSID executable music format:
// a fixed header followed by a raw, relocatable C64 memory image.
package sidfile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/c64"
)

//
const (
	MagicPSID = "PSID"
	MagicRSID = "RSID"

	headerSizeV1 = 0x76
	headerSizeV2 = 0x7c

	textFieldSize = 32
)

// ErrMalformedHeader marks structural violations in the fixed header.
// Decoding aborts on it; there is no best-effort mode for headers.
var ErrMalformedHeader = fmt.Errorf("malformed header")

/*
	Header is the fixed PSID header. The textual metadata fields are
	carried through conversions unchanged and never interpreted. All
	header words are big-endian on the wire; the embedded load address
	that replaces a zero LoadAddress field is little-endian, since it
	is part of the C64 program image.
*/
type Header struct {
	Magic       string
	Version     uint16
	DataOffset  uint16
	LoadAddress uint16
	InitAddress uint16
	PlayAddress uint16
	Songs       uint16
	StartSong   uint16
	Speed       uint32
	Name        string
	Author      string
	Released    string
	Flags       uint16
}

/*
	Decode parses a PSID byte buffer into its header and memory image.
	When the header's load address is zero, the actual address is taken
	from the first two bytes of the program data, per the format spec.
*/
func Decode(data []byte) (*Header, *c64.MemoryImage, error) {

	if len(data) < headerSizeV1 {
		return nil, nil, fmt.Errorf(
			"%w: %d bytes is too short for a SID file",
			ErrMalformedHeader, len(data))
	}

	magic := string(data[0:4])
	if magic != MagicPSID && magic != MagicRSID {
		return nil, nil, fmt.Errorf(
			"%w: bad magic %q", ErrMalformedHeader, magic)
	}

	h := &Header{
		Magic:       magic,
		Version:     binary.BigEndian.Uint16(data[4:]),
		DataOffset:  binary.BigEndian.Uint16(data[6:]),
		LoadAddress: binary.BigEndian.Uint16(data[8:]),
		InitAddress: binary.BigEndian.Uint16(data[10:]),
		PlayAddress: binary.BigEndian.Uint16(data[12:]),
		Songs:       binary.BigEndian.Uint16(data[14:]),
		StartSong:   binary.BigEndian.Uint16(data[16:]),
		Speed:       binary.BigEndian.Uint32(data[18:]),
		Name:        text(data[22:]),
		Author:      text(data[54:]),
		Released:    text(data[86:]),
	}

	if h.Version < 1 || h.Version > 4 {
		return nil, nil, fmt.Errorf(
			"%w: unsupported version %d", ErrMalformedHeader, h.Version)
	}

	wantOffset := uint16(headerSizeV1)
	if h.Version >= 2 {
		wantOffset = headerSizeV2
	}
	if h.DataOffset < wantOffset || int(h.DataOffset) > len(data) {
		return nil, nil, fmt.Errorf(
			"%w: data offset $%04x out of range for version %d file "+
				"of %d bytes",
			ErrMalformedHeader, h.DataOffset, h.Version, len(data))
	}
	if h.Version >= 2 {
		h.Flags = binary.BigEndian.Uint16(data[118:])
	}

	prog := data[h.DataOffset:]
	load := h.LoadAddress
	if load == 0 {
		if len(prog) < 2 {
			return nil, nil, fmt.Errorf(
				"%w: no embedded load address", ErrMalformedHeader)
		}
		load = c64.Word(prog, 0)
		prog = prog[2:]
	}

	img, err := c64.NewMemoryImage(load, prog)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}

	log.WithFields(log.Fields{
		"magic": magic,
		"load":  fmt.Sprintf("$%04x", load),
		"init":  fmt.Sprintf("$%04x", h.InitAddress),
		"play":  fmt.Sprintf("$%04x", h.PlayAddress),
		"songs": h.Songs,
	}).Debug("SID file decoded")

	return h, img, nil
}

/*
	Encode serializes header and image back into a PSID byte buffer.
	A header with LoadAddress zero keeps the load address embedded in
	the program data, so a decoded file re-encodes byte-for-byte.
*/
func Encode(h *Header, img *c64.MemoryImage) []byte {

	size := headerSizeV1
	if h.Version >= 2 {
		size = headerSizeV2
	}

	var buf bytes.Buffer
	buf.Grow(size + img.Size + 2)

	hdr := make([]byte, size)
	copy(hdr[0:4], h.Magic)
	binary.BigEndian.PutUint16(hdr[4:], h.Version)
	binary.BigEndian.PutUint16(hdr[6:], uint16(size))
	binary.BigEndian.PutUint16(hdr[8:], h.LoadAddress)
	binary.BigEndian.PutUint16(hdr[10:], h.InitAddress)
	binary.BigEndian.PutUint16(hdr[12:], h.PlayAddress)
	binary.BigEndian.PutUint16(hdr[14:], h.Songs)
	binary.BigEndian.PutUint16(hdr[16:], h.StartSong)
	binary.BigEndian.PutUint32(hdr[18:], h.Speed)
	copy(hdr[22:54], pad(h.Name))
	copy(hdr[54:86], pad(h.Author))
	copy(hdr[86:118], pad(h.Released))
	if h.Version >= 2 {
		binary.BigEndian.PutUint16(hdr[118:], h.Flags)
	}
	buf.Write(hdr)

	if h.LoadAddress == 0 {
		var la [2]byte
		c64.PutWord(la[:], 0, img.Load)
		buf.Write(la[:])
	}
	buf.Write(img.Payload())

	return buf.Bytes()
}

//
func text(data []byte) string {
	f := data[:textFieldSize]
	if ix := bytes.IndexByte(f, 0); ix >= 0 {
		f = f[:ix]
	}
	return string(f)
}

//
func pad(s string) []byte {
	f := make([]byte, textFieldSize)
	copy(f, s)
	return f
}

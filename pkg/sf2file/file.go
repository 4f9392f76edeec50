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
	Package sf2file reads and writes the SF2 tracker format: a stream
	of tagged, sized header blocks, followed by the driver memory image
	and the trailing music-data region. Any buffer Decode accepts
	re-encodes byte-for-byte.
*/
package sf2file

import (
	"bytes"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/c64"
)

//
const (
	// Magic follows the file's 16-bit load address.
	Magic uint16 = 0x1337

	terminator byte = 0xff
)

// BlockKind tags a header block; each kind has its own payload layout.
type BlockKind byte

//
const (
	BlockDescriptor           BlockKind = 0x01
	BlockDriverCommon         BlockKind = 0x02
	BlockDriverTables         BlockKind = 0x03
	BlockInstrumentDescriptor BlockKind = 0x04
	BlockMusicData            BlockKind = 0x05
)

//
func (k BlockKind) String() string {
	switch k {
	case BlockDescriptor:
		return "descriptor"
	case BlockDriverCommon:
		return "driver common"
	case BlockDriverTables:
		return "driver tables"
	case BlockInstrumentDescriptor:
		return "instrument descriptor"
	case BlockMusicData:
		return "music data"
	}
	return fmt.Sprintf("unknown ($%02x)", byte(k))
}

// ErrMalformed marks structural violations in the block stream.
var ErrMalformed = fmt.Errorf("malformed SF2 file")

// ErrTableOutOfBounds marks a table descriptor whose declared extent
// falls outside the driver image.
var ErrTableOutOfBounds = fmt.Errorf("table extent outside driver image")

// Block is one tagged header block. Payload is kept raw so the file
// round-trips exactly; typed views are parsed on demand.
type Block struct {
	Kind    BlockKind
	Payload []byte
}

/*
	Descriptor is the payload of the leading BlockDescriptor block. It
	pins down where the driver image sits and how large it is, which is
	what lets the decoder split the region after the block stream into
	driver and music data.
*/
type Descriptor struct {
	Version     byte
	DriverLoad  uint16
	DriverSize  uint16
	MusicOffset uint16
}

//
const descriptorSize = 7

// File is a fully decoded SF2 file.
type File struct {
	LoadAddress uint16
	Blocks      []Block
	Desc        Descriptor
	Driver      *c64.MemoryImage
	MusicData   []byte
}

/*
	Decode parses an SF2 byte buffer. It verifies the magic before
	trusting anything else, walks the block stream by tag and declared
	size, and checks every table descriptor extent against the driver
	image. Structural violations fail; nothing is silently defaulted.
*/
func Decode(data []byte) (*File, error) {

	if len(data) < 4 {
		return nil, fmt.Errorf("%w: only %d bytes", ErrMalformed, len(data))
	}

	f := &File{LoadAddress: c64.Word(data, 0)}

	if magic := c64.Word(data, 2); magic != Magic {
		return nil, fmt.Errorf(
			"%w: bad magic $%04x, want $%04x", ErrMalformed, magic, Magic)
	}

	pos := 4
	seen := false

	for {
		if pos >= len(data) {
			return nil, fmt.Errorf(
				"%w: block stream not terminated", ErrMalformed)
		}
		tag := data[pos]
		pos++
		if tag == terminator {
			break
		}
		if pos+2 > len(data) {
			return nil, fmt.Errorf(
				"%w: truncated block size for tag $%02x", ErrMalformed, tag)
		}
		size := int(c64.Word(data, pos))
		pos += 2
		if pos+size > len(data) {
			return nil, fmt.Errorf(
				"%w: %s block of %d bytes overruns file",
				ErrMalformed, BlockKind(tag), size)
		}
		payload := make([]byte, size)
		copy(payload, data[pos:pos+size])
		pos += size

		b := Block{Kind: BlockKind(tag), Payload: payload}
		f.Blocks = append(f.Blocks, b)

		if b.Kind == BlockDescriptor {
			d, err := decodeDescriptor(payload)
			if err != nil {
				return nil, err
			}
			f.Desc = *d
			seen = true
		}
	}

	if !seen {
		return nil, fmt.Errorf("%w: no descriptor block", ErrMalformed)
	}

	rest := data[pos:]
	if len(rest) < int(f.Desc.DriverSize) {
		return nil, fmt.Errorf(
			"%w: driver image truncated, want %d bytes, have %d",
			ErrMalformed, f.Desc.DriverSize, len(rest))
	}

	img, err := c64.NewMemoryImage(
		f.Desc.DriverLoad, rest[:f.Desc.DriverSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	f.Driver = img
	f.MusicData = append([]byte(nil), rest[f.Desc.DriverSize:]...)

	if err := f.checkTables(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"blocks": len(f.Blocks),
		"driver": fmt.Sprintf("$%04x+%d", f.Desc.DriverLoad, f.Desc.DriverSize),
		"music":  len(f.MusicData),
	}).Debug("SF2 file decoded")

	return f, nil
}

// checkTables validates every table descriptor extent against the
// driver image. A bad table is fatal for decoding; inject relies on
// these addresses being writable.
func (f *File) checkTables() error {

	descs, err := f.TableDescriptors()
	if err != nil {
		return err
	}

	for _, d := range descs {
		end := int(d.Address) + int(d.RowCount)*int(d.ColumnCount)
		if !f.Driver.Contains(d.Address) || end > int(f.Driver.End()) {
			return fmt.Errorf(
				"%w: table %q spans $%04x-$%04x, driver is $%04x-$%04x",
				ErrTableOutOfBounds, d.Name, d.Address, end,
				f.Driver.Load, f.Driver.End())
		}
	}
	return nil
}

// Encode is the structural inverse of Decode.
func (f *File) Encode() []byte {

	var buf bytes.Buffer

	var word [2]byte
	c64.PutWord(word[:], 0, f.LoadAddress)
	buf.Write(word[:])
	c64.PutWord(word[:], 0, Magic)
	buf.Write(word[:])

	for _, b := range f.Blocks {
		buf.WriteByte(byte(b.Kind))
		c64.PutWord(word[:], 0, uint16(len(b.Payload)))
		buf.Write(word[:])
		buf.Write(b.Payload)
	}
	buf.WriteByte(terminator)

	buf.Write(f.Driver.Payload())
	buf.Write(f.MusicData)

	return buf.Bytes()
}

// Clone returns a deep copy. Injection always works on a clone; the
// loaded driver template itself is shared between workers and must
// stay immutable.
func (f *File) Clone() *File {

	c := &File{
		LoadAddress: f.LoadAddress,
		Desc:        f.Desc,
		Driver:      f.Driver.Clone(),
		MusicData:   append([]byte(nil), f.MusicData...),
	}
	for _, b := range f.Blocks {
		c.Blocks = append(c.Blocks, Block{
			Kind:    b.Kind,
			Payload: append([]byte(nil), b.Payload...),
		})
	}
	return c
}

// block returns the first block of the given kind.
func (f *File) block(kind BlockKind) ([]byte, bool) {
	for _, b := range f.Blocks {
		if b.Kind == kind {
			return b.Payload, true
		}
	}
	return nil, false
}

// SetBlock replaces the payload of the first block of the given kind,
// appending a new block when none exists.
func (f *File) SetBlock(kind BlockKind, payload []byte) {
	for i, b := range f.Blocks {
		if b.Kind == kind {
			f.Blocks[i].Payload = payload
			return
		}
	}
	f.Blocks = append(f.Blocks, Block{Kind: kind, Payload: payload})
}

//
func decodeDescriptor(payload []byte) (*Descriptor, error) {
	if len(payload) < descriptorSize {
		return nil, fmt.Errorf(
			"%w: descriptor block of %d bytes, want %d",
			ErrMalformed, len(payload), descriptorSize)
	}
	return &Descriptor{
		Version:     payload[0],
		DriverLoad:  c64.Word(payload, 1),
		DriverSize:  c64.Word(payload, 3),
		MusicOffset: c64.Word(payload, 5),
	}, nil
}

//
func encodeDescriptor(d Descriptor) []byte {
	payload := make([]byte, descriptorSize)
	payload[0] = d.Version
	c64.PutWord(payload, 1, d.DriverLoad)
	c64.PutWord(payload, 3, d.DriverSize)
	c64.PutWord(payload, 5, d.MusicOffset)
	return payload
}

// SetDescriptor updates the descriptor block and the in-memory copy
// together, so they cannot drift apart.
func (f *File) SetDescriptor(d Descriptor) {
	f.Desc = d
	f.SetBlock(BlockDescriptor, encodeDescriptor(d))
}

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

package c64

import (
	"fmt"
)

//
const (
	MemSize = 0x10000

	// SID register window; writes here are what the validation
	// engine compares between original and converted tunes.
	SIDBase = 0xd400
	SIDEnd  = 0xd418

	// raster registers, bumped during init to release players that
	// busy-wait for a particular line
	RasterCtrl = 0xd011
	RasterLine = 0xd012

	// frames per second for frame pacing
	PALRate  = 50
	NTSCRate = 60
)

// SIDRegisterCount is the size of the SID write window, 25 registers.
const SIDRegisterCount = SIDEnd - SIDBase + 1

/*
	MemoryImage is a full 64 KiB address space plus the address at which
	the payload of interest was loaded. Code and data offsets exchanged
	between packages are always absolute 16-bit addresses; Contains
	checks whether such an address falls inside the loaded payload.
*/
type MemoryImage struct {
	Mem  [MemSize]byte
	Load uint16
	Size int
}

// NewMemoryImage loads data at the given address. Fails when the data
// would run past the end of the address space.
func NewMemoryImage(load uint16, data []byte) (*MemoryImage, error) {
	if int(load)+len(data) > MemSize {
		return nil, fmt.Errorf(
			"image of %d bytes at $%04x exceeds 64K address space",
			len(data), load)
	}
	img := &MemoryImage{Load: load, Size: len(data)}
	copy(img.Mem[load:], data)
	return img, nil
}

// Clone returns an independent copy. inject must never work on a
// shared template image.
func (m *MemoryImage) Clone() *MemoryImage {
	c := *m
	return &c
}

//
func (m *MemoryImage) End() uint16 {
	return m.Load + uint16(m.Size)
}

//
func (m *MemoryImage) Contains(addr uint16) bool {
	return addr >= m.Load && int(addr) < int(m.Load)+m.Size
}

// Payload returns the loaded bytes, without the surrounding address
// space.
func (m *MemoryImage) Payload() []byte {
	return m.Mem[m.Load : int(m.Load)+m.Size]
}

//
func (m *MemoryImage) Word(addr uint16) uint16 {
	return uint16(m.Mem[addr]) | uint16(m.Mem[addr+1])<<8
}

//
func (m *MemoryImage) PutWord(addr uint16, val uint16) {
	m.Mem[addr] = byte(val)
	m.Mem[addr+1] = byte(val >> 8)
}

// Word reads a little-endian word from a raw buffer.
func Word(data []byte, off int) uint16 {
	return uint16(data[off]) | uint16(data[off+1])<<8
}

// PutWord writes a little-endian word into a raw buffer.
func PutWord(data []byte, off int, val uint16) {
	data[off] = byte(val)
	data[off+1] = byte(val >> 8)
}

// Voice returns the SID register sub-range for voice 0-2, as first and
// last register offset relative to SIDBase. Each voice occupies seven
// registers.
func Voice(v int) (lo, hi uint16) {
	return uint16(v * 7), uint16(v*7 + 6)
}

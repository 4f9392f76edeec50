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
	"fmt"

	"github.com/sf2tools/sf2conv/pkg/c64"
)

// InternalPointerCount is the number of driver state pointers carried
// in the common block after the three entry addresses.
const InternalPointerCount = 16

//
const addressTableSize = (3 + InternalPointerCount) * 2

/*
	AddressTable is the decoded DriverCommon block: the driver's entry
	addresses followed by its internal state pointers. The entry
	addresses are authoritative for stub generation after relocation;
	the stub bytes found in a template or source image are not.
*/
type AddressTable struct {
	Init     uint16
	Play     uint16
	Stop     uint16
	Internal [InternalPointerCount]uint16
}

// AddressTable decodes the DriverCommon block.
func (f *File) AddressTable() (*AddressTable, error) {

	payload, ok := f.block(BlockDriverCommon)
	if !ok {
		return nil, fmt.Errorf("%w: no driver common block", ErrMalformed)
	}
	if len(payload) != addressTableSize {
		return nil, fmt.Errorf(
			"%w: driver common block of %d bytes, want %d",
			ErrMalformed, len(payload), addressTableSize)
	}

	t := &AddressTable{
		Init: c64.Word(payload, 0),
		Play: c64.Word(payload, 2),
		Stop: c64.Word(payload, 4),
	}
	for i := 0; i < InternalPointerCount; i++ {
		t.Internal[i] = c64.Word(payload, 6+2*i)
	}
	return t, nil
}

// SetAddressTable re-encodes the DriverCommon block.
func (f *File) SetAddressTable(t *AddressTable) {

	payload := make([]byte, addressTableSize)
	c64.PutWord(payload, 0, t.Init)
	c64.PutWord(payload, 2, t.Play)
	c64.PutWord(payload, 4, t.Stop)
	for i := 0; i < InternalPointerCount; i++ {
		c64.PutWord(payload, 6+2*i, t.Internal[i])
	}
	f.SetBlock(BlockDriverCommon, payload)
}

// Rebase shifts every address in the table by the given delta.
func (t *AddressTable) Rebase(delta uint16) {
	t.Init += delta
	t.Play += delta
	t.Stop += delta
	for i := range t.Internal {
		t.Internal[i] += delta
	}
}

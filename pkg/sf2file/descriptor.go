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
	"fmt"

	"github.com/sf2tools/sf2conv/pkg/c64"
)

// TableLayout states how a driver table's cells are laid out in
// memory.
type TableLayout byte

//
const (
	RowMajor    TableLayout = 0
	ColumnMajor TableLayout = 1
)

// TableType classifies the musical role of a driver table.
type TableType byte

//
const (
	TableOrderList  TableType = 0x00
	TableSequence   TableType = 0x01
	TableInstrument TableType = 0x02
	TableWave       TableType = 0x03
	TablePulse      TableType = 0x04
	TableFilter     TableType = 0x05
)

/*
	TableDescriptor describes one driver table: where it sits in the
	driver image and its dimensions. On the wire the name is
	NUL-terminated, not length-prefixed, so every field after it lives
	at an offset computed from the scanned name length. Nothing after
	the name is at a fixed offset.
*/
type TableDescriptor struct {
	Type        TableType
	ID          byte
	Name        string
	Layout      TableLayout
	Flags       byte
	Rules       [3]byte
	Address     uint16
	ColumnCount uint16
	RowCount    uint16
	VisibleRows uint8
}

// fixed fields following the name's NUL terminator
const descriptorTailSize = 1 + 1 + 3 + 2 + 2 + 2 + 1

// Size returns the encoded size of the descriptor.
func (d *TableDescriptor) Size() int {
	return 2 + len(d.Name) + 1 + descriptorTailSize
}

// Extent returns the number of driver bytes the table occupies.
func (d *TableDescriptor) Extent() int {
	return int(d.RowCount) * int(d.ColumnCount)
}

/*
	TableDescriptors decodes the DriverTables block into its ordered
	descriptor list.
*/
func (f *File) TableDescriptors() ([]TableDescriptor, error) {

	payload, ok := f.block(BlockDriverTables)
	if !ok {
		return nil, nil
	}

	var descs []TableDescriptor
	pos := 0

	for pos < len(payload) {
		d, n, err := decodeTableDescriptor(payload[pos:])
		if err != nil {
			return nil, fmt.Errorf("table descriptor %d: %v", len(descs), err)
		}
		descs = append(descs, *d)
		pos += n
	}

	return descs, nil
}

// SetTableDescriptors re-encodes the DriverTables block from the
// given list.
func (f *File) SetTableDescriptors(descs []TableDescriptor) {

	var buf bytes.Buffer
	for i := range descs {
		buf.Write(encodeTableDescriptor(&descs[i]))
	}
	f.SetBlock(BlockDriverTables, buf.Bytes())
}

//
func decodeTableDescriptor(data []byte) (*TableDescriptor, int, error) {

	if len(data) < 3 {
		return nil, 0, fmt.Errorf("%w: truncated descriptor", ErrMalformed)
	}

	d := &TableDescriptor{
		Type: TableType(data[0]),
		ID:   data[1],
	}

	// The name length is discovered by scanning for the terminator;
	// descriptors with different name lengths place the fixed tail at
	// different offsets.
	nameEnd := bytes.IndexByte(data[2:], 0)
	if nameEnd < 0 {
		return nil, 0, fmt.Errorf(
			"%w: descriptor name not terminated", ErrMalformed)
	}
	d.Name = string(data[2 : 2+nameEnd])

	tail := 2 + nameEnd + 1
	if len(data) < tail+descriptorTailSize {
		return nil, 0, fmt.Errorf(
			"%w: descriptor %q truncated after name", ErrMalformed, d.Name)
	}

	d.Layout = TableLayout(data[tail])
	d.Flags = data[tail+1]
	copy(d.Rules[:], data[tail+2:tail+5])
	d.Address = c64.Word(data, tail+5)
	d.ColumnCount = c64.Word(data, tail+7)
	d.RowCount = c64.Word(data, tail+9)
	d.VisibleRows = data[tail+11]

	return d, tail + descriptorTailSize, nil
}

//
func encodeTableDescriptor(d *TableDescriptor) []byte {

	out := make([]byte, d.Size())
	out[0] = byte(d.Type)
	out[1] = d.ID
	copy(out[2:], d.Name)

	tail := 2 + len(d.Name) + 1
	out[tail] = byte(d.Layout)
	out[tail+1] = d.Flags
	copy(out[tail+2:], d.Rules[:])
	c64.PutWord(out, tail+5, d.Address)
	c64.PutWord(out, tail+7, d.ColumnCount)
	c64.PutWord(out, tail+9, d.RowCount)
	out[tail+11] = d.VisibleRows

	return out
}

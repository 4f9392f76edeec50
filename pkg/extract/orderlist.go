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
	"fmt"
)

// order list stream bytes
const (
	olTranspose = 0x80 // ..0xfd, persisted until changed
	olEnd       = 0xfe
	olLoop      = 0xff // followed by the loop entry index
)

/*
	UnpackOrderList decodes one voice's order list stream, returning
	the list and the number of bytes consumed. Bytes >= 0x80 update the
	persisted transpose and are not steps themselves; bytes below 0x80
	emit a step carrying the current transpose.
*/
func UnpackOrderList(data []byte) (OrderList, int, error) {

	list := OrderList{LoopIndex: -1}
	transpose := byte(olTranspose) // neutral transpose
	pos := 0

	for pos < len(data) {
		b := data[pos]
		pos++

		switch {

		case b == olLoop:
			if pos >= len(data) {
				return OrderList{}, 0, fmt.Errorf(
					"loop marker at end of stream")
			}
			ix := int(data[pos])
			pos++
			if ix >= len(list.Entries) {
				return OrderList{}, 0, fmt.Errorf(
					"loop index %d beyond %d entries", ix, len(list.Entries))
			}
			list.LoopIndex = ix
			return list, pos, nil

		case b == olEnd:
			return list, pos, nil

		case b >= olTranspose:
			transpose = b

		default:
			list.Entries = append(list.Entries, OrderListEntry{
				Transpose:     transpose,
				SequenceIndex: b,
			})
		}
	}

	return OrderList{}, 0, fmt.Errorf("order list not terminated within "+
		"%d bytes", len(data))
}

// PackOrderList re-emits the stream form, spending a transpose byte
// only where it changes.
func PackOrderList(list OrderList) []byte {

	var buf bytes.Buffer
	transpose := byte(olTranspose)

	for i, e := range list.Entries {
		if e.Transpose != transpose || i == 0 {
			buf.WriteByte(e.Transpose)
			transpose = e.Transpose
		}
		buf.WriteByte(e.SequenceIndex)
	}

	if list.LoopIndex >= 0 && list.LoopIndex < len(list.Entries) {
		buf.WriteByte(olLoop)
		buf.WriteByte(byte(list.LoopIndex))
	} else {
		buf.WriteByte(olEnd)
	}

	return buf.Bytes()
}

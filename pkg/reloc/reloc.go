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

// Package reloc moves 6502 driver code to a new base address and
// injects extracted music data into a driver template.
package reloc

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/mos6502"
)

// TargetKind classifies what a relocation entry patches.
type TargetKind byte

//
const (
	AbsoluteAddress TargetKind = iota
	ZeroPagePair
)

/*
	Entry is one operand that encodes an absolute address inside the
	moved range and must be shifted by the relocation delta. For a
	ZeroPagePair, OperandOffset is the immediate operand holding the
	address low byte and pairOffset the one holding the high byte; the
	two are patched together as a 16-bit value, never independently.
*/
type Entry struct {
	InstructionOffset uint16
	OperandOffset     uint16
	Kind              TargetKind

	pairOffset uint16
}

// ErrUnresolved marks an operand that could not be classified as
// inside or outside the moved range. Relocation halts on it rather
// than guess.
var ErrUnresolved = fmt.Errorf("relocation unresolved")

/*
	Scan walks the instruction stream of code (loaded at base) once
	and collects every operand that must move with it: absolute-address
	operands pointing into the moved range [lo, hi), and immediate
	lo/hi pairs that build such an address in a zero-page indirect
	pointer. The moved range is usually wider than the code itself,
	since driver code and its data tables move together. The stream
	must decode as valid instructions throughout; anything else is
	unresolvable.
*/
func Scan(code []byte, base uint16, lo, hi uint16) ([]Entry, error) {

	var entries []Entry
	end := int(hi)

	pos := 0
	for pos < len(code) {
		opcode := code[pos]
		info := mos6502.Op(opcode)
		if !info.Valid() {
			return nil, fmt.Errorf(
				"%w: byte $%02x at $%04x is not an instruction",
				ErrUnresolved, opcode, base+uint16(pos))
		}
		if pos+info.Length > len(code) {
			return nil, fmt.Errorf(
				"%w: %s at $%04x truncated",
				ErrUnresolved, info.Mnemonic, base+uint16(pos))
		}

		if info.AbsoluteOperand() {
			target := uint16(code[pos+1]) | uint16(code[pos+2])<<8
			if int(target) >= int(lo) && int(target) < end {
				entries = append(entries, Entry{
					InstructionOffset: uint16(pos),
					OperandOffset:     uint16(pos + 1),
					Kind:              AbsoluteAddress,
				})
			}
		}

		if pair, ok := matchPointerPair(code, pos, lo, end); ok {
			entries = append(entries, pair)
		}

		pos += info.Length
	}

	log.Debugf("relocation scan: %d entries in %d bytes of code",
		len(entries), len(code))

	return entries, nil
}

// ScanSelf scans a self-contained code blob whose moved range is
// exactly its own extent.
func ScanSelf(code []byte, base uint16) ([]Entry, error) {
	return Scan(code, base, base, base+uint16(len(code)))
}

/*
	matchPointerPair detects the idiom players use to set up a
	zero-page indirect pointer:

		LDA #<addr : STA zp : LDA #>addr : STA zp+1

	When both immediates combine to an address inside the moved range,
	they are recorded as one linked pair.
*/
func matchPointerPair(code []byte, pos int, lo uint16, end int) (Entry, bool) {

	// LDA #imm, STA zp, LDA #imm, STA zp
	const need = 8
	if pos+need > len(code) {
		return Entry{}, false
	}
	if code[pos] != 0xa9 || code[pos+2] != 0x85 ||
		code[pos+4] != 0xa9 || code[pos+6] != 0x85 {
		return Entry{}, false
	}
	if code[pos+7] != code[pos+3]+1 {
		return Entry{}, false
	}

	target := uint16(code[pos+1]) | uint16(code[pos+5])<<8
	if int(target) < int(lo) || int(target) >= end {
		return Entry{}, false
	}

	return Entry{
		InstructionOffset: uint16(pos),
		OperandOffset:     uint16(pos + 1),
		Kind:              ZeroPagePair,
		pairOffset:        uint16(pos + 5),
	}, true
}

/*
	Apply patches the collected operands in place for a move from
	oldBase to newBase. Callers relocate a copy; the scan entries stay
	valid because relocation never changes instruction layout.
*/
func Apply(code []byte, oldBase, newBase uint16, entries []Entry) {

	delta := newBase - oldBase

	for _, e := range entries {
		switch e.Kind {

		case AbsoluteAddress:
			target := uint16(code[e.OperandOffset]) |
				uint16(code[e.OperandOffset+1])<<8
			target += delta
			code[e.OperandOffset] = byte(target)
			code[e.OperandOffset+1] = byte(target >> 8)

		case ZeroPagePair:
			target := uint16(code[e.OperandOffset]) |
				uint16(code[e.pairOffset])<<8
			target += delta
			code[e.OperandOffset] = byte(target)
			code[e.pairOffset] = byte(target >> 8)
		}
	}
}

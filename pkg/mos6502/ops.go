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

package mos6502

// Mode is a 6502 addressing mode. The relocation scanner keys off
// these to find operands that encode absolute addresses.
type Mode byte

//
const (
	ModeNone Mode = iota
	ModeImplied
	ModeAccumulator
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirect
	ModeIndirectX
	ModeIndirectY
	ModeRelative
)

// OpInfo describes one documented opcode.
type OpInfo struct {
	Mnemonic string
	Mode     Mode
	Length   int
	Cycles   int
}

// Valid reports whether the opcode is part of the documented set.
func (o OpInfo) Valid() bool {
	return o.Mode != ModeNone
}

// AbsoluteOperand reports whether the instruction carries a 16-bit
// address operand at offset 1.
func (o OpInfo) AbsoluteOperand() bool {
	switch o.Mode {
	case ModeAbsolute, ModeAbsoluteX, ModeAbsoluteY, ModeIndirect:
		return true
	}
	return false
}

// ZeroPageOperand reports whether the instruction carries a one-byte
// zero-page address operand.
func (o OpInfo) ZeroPageOperand() bool {
	switch o.Mode {
	case ModeZeroPage, ModeZeroPageX, ModeZeroPageY,
		ModeIndirectX, ModeIndirectY:
		return true
	}
	return false
}

// Op returns the metadata for an opcode; check Valid on the result.
func Op(opcode byte) OpInfo {
	return ops[opcode]
}

//
var ops [256]OpInfo

//
var opCycles [256]byte

//
func init() {

	lengths := map[Mode]int{
		ModeImplied:     1,
		ModeAccumulator: 1,
		ModeImmediate:   2,
		ModeZeroPage:    2,
		ModeZeroPageX:   2,
		ModeZeroPageY:   2,
		ModeAbsolute:    3,
		ModeAbsoluteX:   3,
		ModeAbsoluteY:   3,
		ModeIndirect:    3,
		ModeIndirectX:   2,
		ModeIndirectY:   2,
		ModeRelative:    2,
	}

	for _, d := range opDefs {
		ops[d.op] = OpInfo{
			Mnemonic: d.name,
			Mode:     d.mode,
			Length:   lengths[d.mode],
			Cycles:   d.cycles,
		}
		opCycles[d.op] = byte(d.cycles)
	}
}

//
var opDefs = []struct {
	op     byte
	name   string
	mode   Mode
	cycles int
}{
	{0x69, "ADC", ModeImmediate, 2}, {0x65, "ADC", ModeZeroPage, 3},
	{0x75, "ADC", ModeZeroPageX, 4}, {0x6d, "ADC", ModeAbsolute, 4},
	{0x7d, "ADC", ModeAbsoluteX, 4}, {0x79, "ADC", ModeAbsoluteY, 4},
	{0x61, "ADC", ModeIndirectX, 6}, {0x71, "ADC", ModeIndirectY, 5},

	{0x29, "AND", ModeImmediate, 2}, {0x25, "AND", ModeZeroPage, 3},
	{0x35, "AND", ModeZeroPageX, 4}, {0x2d, "AND", ModeAbsolute, 4},
	{0x3d, "AND", ModeAbsoluteX, 4}, {0x39, "AND", ModeAbsoluteY, 4},
	{0x21, "AND", ModeIndirectX, 6}, {0x31, "AND", ModeIndirectY, 5},

	{0x0a, "ASL", ModeAccumulator, 2}, {0x06, "ASL", ModeZeroPage, 5},
	{0x16, "ASL", ModeZeroPageX, 6}, {0x0e, "ASL", ModeAbsolute, 6},
	{0x1e, "ASL", ModeAbsoluteX, 7},

	{0x90, "BCC", ModeRelative, 2}, {0xb0, "BCS", ModeRelative, 2},
	{0xf0, "BEQ", ModeRelative, 2}, {0x30, "BMI", ModeRelative, 2},
	{0xd0, "BNE", ModeRelative, 2}, {0x10, "BPL", ModeRelative, 2},
	{0x50, "BVC", ModeRelative, 2}, {0x70, "BVS", ModeRelative, 2},

	{0x24, "BIT", ModeZeroPage, 3}, {0x2c, "BIT", ModeAbsolute, 4},

	{0x00, "BRK", ModeImplied, 7},

	{0x18, "CLC", ModeImplied, 2}, {0xd8, "CLD", ModeImplied, 2},
	{0x58, "CLI", ModeImplied, 2}, {0xb8, "CLV", ModeImplied, 2},

	{0xc9, "CMP", ModeImmediate, 2}, {0xc5, "CMP", ModeZeroPage, 3},
	{0xd5, "CMP", ModeZeroPageX, 4}, {0xcd, "CMP", ModeAbsolute, 4},
	{0xdd, "CMP", ModeAbsoluteX, 4}, {0xd9, "CMP", ModeAbsoluteY, 4},
	{0xc1, "CMP", ModeIndirectX, 6}, {0xd1, "CMP", ModeIndirectY, 5},

	{0xe0, "CPX", ModeImmediate, 2}, {0xe4, "CPX", ModeZeroPage, 3},
	{0xec, "CPX", ModeAbsolute, 4},
	{0xc0, "CPY", ModeImmediate, 2}, {0xc4, "CPY", ModeZeroPage, 3},
	{0xcc, "CPY", ModeAbsolute, 4},

	{0xc6, "DEC", ModeZeroPage, 5}, {0xd6, "DEC", ModeZeroPageX, 6},
	{0xce, "DEC", ModeAbsolute, 6}, {0xde, "DEC", ModeAbsoluteX, 7},
	{0xca, "DEX", ModeImplied, 2}, {0x88, "DEY", ModeImplied, 2},

	{0x49, "EOR", ModeImmediate, 2}, {0x45, "EOR", ModeZeroPage, 3},
	{0x55, "EOR", ModeZeroPageX, 4}, {0x4d, "EOR", ModeAbsolute, 4},
	{0x5d, "EOR", ModeAbsoluteX, 4}, {0x59, "EOR", ModeAbsoluteY, 4},
	{0x41, "EOR", ModeIndirectX, 6}, {0x51, "EOR", ModeIndirectY, 5},

	{0xe6, "INC", ModeZeroPage, 5}, {0xf6, "INC", ModeZeroPageX, 6},
	{0xee, "INC", ModeAbsolute, 6}, {0xfe, "INC", ModeAbsoluteX, 7},
	{0xe8, "INX", ModeImplied, 2}, {0xc8, "INY", ModeImplied, 2},

	{0x4c, "JMP", ModeAbsolute, 3}, {0x6c, "JMP", ModeIndirect, 5},
	{0x20, "JSR", ModeAbsolute, 6},

	{0xa9, "LDA", ModeImmediate, 2}, {0xa5, "LDA", ModeZeroPage, 3},
	{0xb5, "LDA", ModeZeroPageX, 4}, {0xad, "LDA", ModeAbsolute, 4},
	{0xbd, "LDA", ModeAbsoluteX, 4}, {0xb9, "LDA", ModeAbsoluteY, 4},
	{0xa1, "LDA", ModeIndirectX, 6}, {0xb1, "LDA", ModeIndirectY, 5},

	{0xa2, "LDX", ModeImmediate, 2}, {0xa6, "LDX", ModeZeroPage, 3},
	{0xb6, "LDX", ModeZeroPageY, 4}, {0xae, "LDX", ModeAbsolute, 4},
	{0xbe, "LDX", ModeAbsoluteY, 4},

	{0xa0, "LDY", ModeImmediate, 2}, {0xa4, "LDY", ModeZeroPage, 3},
	{0xb4, "LDY", ModeZeroPageX, 4}, {0xac, "LDY", ModeAbsolute, 4},
	{0xbc, "LDY", ModeAbsoluteX, 4},

	{0x4a, "LSR", ModeAccumulator, 2}, {0x46, "LSR", ModeZeroPage, 5},
	{0x56, "LSR", ModeZeroPageX, 6}, {0x4e, "LSR", ModeAbsolute, 6},
	{0x5e, "LSR", ModeAbsoluteX, 7},

	{0xea, "NOP", ModeImplied, 2},

	{0x09, "ORA", ModeImmediate, 2}, {0x05, "ORA", ModeZeroPage, 3},
	{0x15, "ORA", ModeZeroPageX, 4}, {0x0d, "ORA", ModeAbsolute, 4},
	{0x1d, "ORA", ModeAbsoluteX, 4}, {0x19, "ORA", ModeAbsoluteY, 4},
	{0x01, "ORA", ModeIndirectX, 6}, {0x11, "ORA", ModeIndirectY, 5},

	{0x48, "PHA", ModeImplied, 3}, {0x08, "PHP", ModeImplied, 3},
	{0x68, "PLA", ModeImplied, 4}, {0x28, "PLP", ModeImplied, 4},

	{0x2a, "ROL", ModeAccumulator, 2}, {0x26, "ROL", ModeZeroPage, 5},
	{0x36, "ROL", ModeZeroPageX, 6}, {0x2e, "ROL", ModeAbsolute, 6},
	{0x3e, "ROL", ModeAbsoluteX, 7},

	{0x6a, "ROR", ModeAccumulator, 2}, {0x66, "ROR", ModeZeroPage, 5},
	{0x76, "ROR", ModeZeroPageX, 6}, {0x6e, "ROR", ModeAbsolute, 6},
	{0x7e, "ROR", ModeAbsoluteX, 7},

	{0x40, "RTI", ModeImplied, 6}, {0x60, "RTS", ModeImplied, 6},

	{0xe9, "SBC", ModeImmediate, 2}, {0xe5, "SBC", ModeZeroPage, 3},
	{0xf5, "SBC", ModeZeroPageX, 4}, {0xed, "SBC", ModeAbsolute, 4},
	{0xfd, "SBC", ModeAbsoluteX, 4}, {0xf9, "SBC", ModeAbsoluteY, 4},
	{0xe1, "SBC", ModeIndirectX, 6}, {0xf1, "SBC", ModeIndirectY, 5},

	{0x38, "SEC", ModeImplied, 2}, {0xf8, "SED", ModeImplied, 2},
	{0x78, "SEI", ModeImplied, 2},

	{0x85, "STA", ModeZeroPage, 3}, {0x95, "STA", ModeZeroPageX, 4},
	{0x8d, "STA", ModeAbsolute, 4}, {0x9d, "STA", ModeAbsoluteX, 5},
	{0x99, "STA", ModeAbsoluteY, 5}, {0x81, "STA", ModeIndirectX, 6},
	{0x91, "STA", ModeIndirectY, 6},

	{0x86, "STX", ModeZeroPage, 3}, {0x96, "STX", ModeZeroPageY, 4},
	{0x8e, "STX", ModeAbsolute, 4},
	{0x84, "STY", ModeZeroPage, 3}, {0x94, "STY", ModeZeroPageX, 4},
	{0x8c, "STY", ModeAbsolute, 4},

	{0xaa, "TAX", ModeImplied, 2}, {0xa8, "TAY", ModeImplied, 2},
	{0xba, "TSX", ModeImplied, 2}, {0x8a, "TXA", ModeImplied, 2},
	{0x9a, "TXS", ModeImplied, 2}, {0x98, "TYA", ModeImplied, 2},
}

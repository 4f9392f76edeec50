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

import (
	"github.com/sf2tools/sf2conv/pkg/c64"
)

//
const (
	FlagC byte = 1 << 0
	FlagZ byte = 1 << 1
	FlagI byte = 1 << 2
	FlagD byte = 1 << 3
	FlagB byte = 1 << 4
	FlagU byte = 1 << 5
	FlagV byte = 1 << 6
	FlagN byte = 1 << 7
)

// RegisterWrite is one captured store into the SID window. Register is
// relative to c64.SIDBase, i.e. 0 through 24.
type RegisterWrite struct {
	Frame    int
	Cycle    uint64
	Register uint8
	Value    byte
}

/*
	CPU is a MOS 6502 interpreter, sufficient to execute the documented
	instruction set of the player drivers this tool converts. It is not
	cycle-exact; per-instruction base cycle counts are kept so that
	traces carry a usable time axis. A CPU owns its memory image and is
	not safe for concurrent use.
*/
type CPU struct {
	A, X, Y byte
	SP      byte
	P       byte
	PC      uint16

	Image *c64.MemoryImage

	Cycles uint64
	Frame  int

	writes []RegisterWrite
}

//
func New(img *c64.MemoryImage) *CPU {
	return &CPU{SP: 0xff, P: FlagU | FlagI, Image: img}
}

// read models the raster beam on the VIC registers: every read of
// $d011/$d012 sees the next line, so equality busy-waits terminate no
// matter which value they poll for.
func (c *CPU) read(addr uint16) byte {
	if addr == c64.RasterLine || addr == c64.RasterCtrl {
		c.bumpRaster()
	}
	return c.Image.Mem[addr]
}

//
func (c *CPU) read16(addr uint16) uint16 {
	return uint16(c.read(addr)) | uint16(c.read(addr+1))<<8
}

//
func (c *CPU) write(addr uint16, val byte) {
	if addr >= c64.SIDBase && addr <= c64.SIDEnd {
		c.writes = append(c.writes, RegisterWrite{
			Frame:    c.Frame,
			Cycle:    c.Cycles,
			Register: uint8(addr - c64.SIDBase),
			Value:    val,
		})
	}
	c.Image.Mem[addr] = val
}

// Writes returns the SID register writes captured so far.
func (c *CPU) Writes() []RegisterWrite {
	return c.writes
}

//
func (c *CPU) ClearWrites() {
	c.writes = nil
}

//
func (c *CPU) push(val byte) {
	c.write(0x0100|uint16(c.SP), val)
	c.SP--
}

//
func (c *CPU) pull() byte {
	c.SP++
	return c.read(0x0100 | uint16(c.SP))
}

//
func (c *CPU) push16(val uint16) {
	c.push(byte(val >> 8))
	c.push(byte(val))
}

//
func (c *CPU) pull16() uint16 {
	return uint16(c.pull()) | uint16(c.pull())<<8
}

//
func (c *CPU) setZ(val byte) {
	if val == 0 {
		c.P |= FlagZ
	} else {
		c.P &^= FlagZ
	}
}

//
func (c *CPU) setN(val byte) {
	if val&0x80 != 0 {
		c.P |= FlagN
	} else {
		c.P &^= FlagN
	}
}

//
func (c *CPU) setZN(val byte) {
	c.setZ(val)
	c.setN(val)
}

//
func (c *CPU) flag(f byte) bool {
	return c.P&f != 0
}

//
func (c *CPU) setFlag(f byte, v bool) {
	if v {
		c.P |= f
	} else {
		c.P &^= f
	}
}

//
func (c *CPU) addrImm() uint16 { addr := c.PC; c.PC++; return addr }
func (c *CPU) addrZP() uint16  { addr := uint16(c.read(c.PC)); c.PC++; return addr }
func (c *CPU) addrZPX() uint16 { addr := uint16(c.read(c.PC) + c.X); c.PC++; return addr }
func (c *CPU) addrZPY() uint16 { addr := uint16(c.read(c.PC) + c.Y); c.PC++; return addr }

//
func (c *CPU) addrAbs() uint16 {
	lo := uint16(c.read(c.PC))
	hi := uint16(c.read(c.PC + 1))
	c.PC += 2
	return hi<<8 | lo
}

//
func (c *CPU) addrAbsX() uint16 { return c.addrAbs() + uint16(c.X) }
func (c *CPU) addrAbsY() uint16 { return c.addrAbs() + uint16(c.Y) }

//
func (c *CPU) addrIndX() uint16 {
	zp := c.read(c.PC) + c.X
	c.PC++
	return uint16(c.read(uint16(zp))) | uint16(c.read(uint16(zp+1)))<<8
}

//
func (c *CPU) addrIndY() uint16 {
	zp := c.read(c.PC)
	c.PC++
	base := uint16(c.read(uint16(zp))) | uint16(c.read(uint16(zp+1)))<<8
	return base + uint16(c.Y)
}

//
func (c *CPU) adc(val byte) {
	a, v := uint16(c.A), uint16(val)
	carry := uint16(0)
	if c.flag(FlagC) {
		carry = 1
	}
	sum := a + v + carry
	c.setFlag(FlagC, sum > 0xff)
	c.setFlag(FlagV, (^(a^v))&(a^sum)&0x80 != 0)
	c.A = byte(sum)
	c.setZN(c.A)
}

//
func (c *CPU) sbc(val byte) {
	c.adc(^val)
}

//
func (c *CPU) cmp(reg, val byte) {
	c.setFlag(FlagC, reg >= val)
	c.setZN(reg - val)
}

//
func (c *CPU) branch(cond bool) {
	offset := int8(c.read(c.PC))
	c.PC++
	if cond {
		c.PC = uint16(int32(c.PC) + int32(offset))
	}
}

//
func (c *CPU) bit(val byte) {
	c.setFlag(FlagZ, c.A&val == 0)
	c.setFlag(FlagV, val&0x40 != 0)
	c.setFlag(FlagN, val&0x80 != 0)
}

//
func (c *CPU) asl(addr uint16) {
	val := c.read(addr)
	c.setFlag(FlagC, val&0x80 != 0)
	val <<= 1
	c.write(addr, val)
	c.setZN(val)
}

//
func (c *CPU) lsr(addr uint16) {
	val := c.read(addr)
	c.setFlag(FlagC, val&0x01 != 0)
	val >>= 1
	c.write(addr, val)
	c.setZN(val)
}

//
func (c *CPU) rol(addr uint16) {
	val := c.read(addr)
	carry := c.P & FlagC
	c.setFlag(FlagC, val&0x80 != 0)
	val = val<<1 | carry
	c.write(addr, val)
	c.setZN(val)
}

//
func (c *CPU) ror(addr uint16) {
	val := c.read(addr)
	carry := c.P & FlagC
	c.setFlag(FlagC, val&0x01 != 0)
	val = val>>1 | carry<<7
	c.write(addr, val)
	c.setZN(val)
}

//
func (c *CPU) inc(addr uint16) {
	val := c.read(addr) + 1
	c.write(addr, val)
	c.setZN(val)
}

//
func (c *CPU) dec(addr uint16) {
	val := c.read(addr) - 1
	c.write(addr, val)
	c.setZN(val)
}

/*
	Step decodes and executes one instruction, returning the base cycle
	count of the instruction. Undocumented opcodes return an
	IllegalOpcodeError; the CPU must not be stepped further after that.
*/
func (c *CPU) Step() (int, error) {

	pc := c.PC
	opcode := c.read(c.PC)
	c.PC++

	switch opcode {

	// load
	case 0xa9:
		c.A = c.read(c.addrImm())
		c.setZN(c.A)
	case 0xa5:
		c.A = c.read(c.addrZP())
		c.setZN(c.A)
	case 0xb5:
		c.A = c.read(c.addrZPX())
		c.setZN(c.A)
	case 0xad:
		c.A = c.read(c.addrAbs())
		c.setZN(c.A)
	case 0xbd:
		c.A = c.read(c.addrAbsX())
		c.setZN(c.A)
	case 0xb9:
		c.A = c.read(c.addrAbsY())
		c.setZN(c.A)
	case 0xa1:
		c.A = c.read(c.addrIndX())
		c.setZN(c.A)
	case 0xb1:
		c.A = c.read(c.addrIndY())
		c.setZN(c.A)
	case 0xa2:
		c.X = c.read(c.addrImm())
		c.setZN(c.X)
	case 0xa6:
		c.X = c.read(c.addrZP())
		c.setZN(c.X)
	case 0xb6:
		c.X = c.read(c.addrZPY())
		c.setZN(c.X)
	case 0xae:
		c.X = c.read(c.addrAbs())
		c.setZN(c.X)
	case 0xbe:
		c.X = c.read(c.addrAbsY())
		c.setZN(c.X)
	case 0xa0:
		c.Y = c.read(c.addrImm())
		c.setZN(c.Y)
	case 0xa4:
		c.Y = c.read(c.addrZP())
		c.setZN(c.Y)
	case 0xb4:
		c.Y = c.read(c.addrZPX())
		c.setZN(c.Y)
	case 0xac:
		c.Y = c.read(c.addrAbs())
		c.setZN(c.Y)
	case 0xbc:
		c.Y = c.read(c.addrAbsX())
		c.setZN(c.Y)

	// store
	case 0x85:
		c.write(c.addrZP(), c.A)
	case 0x95:
		c.write(c.addrZPX(), c.A)
	case 0x8d:
		c.write(c.addrAbs(), c.A)
	case 0x9d:
		c.write(c.addrAbsX(), c.A)
	case 0x99:
		c.write(c.addrAbsY(), c.A)
	case 0x81:
		c.write(c.addrIndX(), c.A)
	case 0x91:
		c.write(c.addrIndY(), c.A)
	case 0x86:
		c.write(c.addrZP(), c.X)
	case 0x96:
		c.write(c.addrZPY(), c.X)
	case 0x8e:
		c.write(c.addrAbs(), c.X)
	case 0x84:
		c.write(c.addrZP(), c.Y)
	case 0x94:
		c.write(c.addrZPX(), c.Y)
	case 0x8c:
		c.write(c.addrAbs(), c.Y)

	// transfer
	case 0xaa:
		c.X = c.A
		c.setZN(c.X)
	case 0xa8:
		c.Y = c.A
		c.setZN(c.Y)
	case 0x8a:
		c.A = c.X
		c.setZN(c.A)
	case 0x98:
		c.A = c.Y
		c.setZN(c.A)
	case 0xba:
		c.X = c.SP
		c.setZN(c.X)
	case 0x9a:
		c.SP = c.X

	// stack
	case 0x48:
		c.push(c.A)
	case 0x68:
		c.A = c.pull()
		c.setZN(c.A)
	case 0x08:
		c.push(c.P | FlagB | FlagU)
	case 0x28:
		c.P = c.pull()&^FlagB | FlagU

	// logic
	case 0x29:
		c.A &= c.read(c.addrImm())
		c.setZN(c.A)
	case 0x25:
		c.A &= c.read(c.addrZP())
		c.setZN(c.A)
	case 0x35:
		c.A &= c.read(c.addrZPX())
		c.setZN(c.A)
	case 0x2d:
		c.A &= c.read(c.addrAbs())
		c.setZN(c.A)
	case 0x3d:
		c.A &= c.read(c.addrAbsX())
		c.setZN(c.A)
	case 0x39:
		c.A &= c.read(c.addrAbsY())
		c.setZN(c.A)
	case 0x21:
		c.A &= c.read(c.addrIndX())
		c.setZN(c.A)
	case 0x31:
		c.A &= c.read(c.addrIndY())
		c.setZN(c.A)
	case 0x09:
		c.A |= c.read(c.addrImm())
		c.setZN(c.A)
	case 0x05:
		c.A |= c.read(c.addrZP())
		c.setZN(c.A)
	case 0x15:
		c.A |= c.read(c.addrZPX())
		c.setZN(c.A)
	case 0x0d:
		c.A |= c.read(c.addrAbs())
		c.setZN(c.A)
	case 0x1d:
		c.A |= c.read(c.addrAbsX())
		c.setZN(c.A)
	case 0x19:
		c.A |= c.read(c.addrAbsY())
		c.setZN(c.A)
	case 0x01:
		c.A |= c.read(c.addrIndX())
		c.setZN(c.A)
	case 0x11:
		c.A |= c.read(c.addrIndY())
		c.setZN(c.A)
	case 0x49:
		c.A ^= c.read(c.addrImm())
		c.setZN(c.A)
	case 0x45:
		c.A ^= c.read(c.addrZP())
		c.setZN(c.A)
	case 0x55:
		c.A ^= c.read(c.addrZPX())
		c.setZN(c.A)
	case 0x4d:
		c.A ^= c.read(c.addrAbs())
		c.setZN(c.A)
	case 0x5d:
		c.A ^= c.read(c.addrAbsX())
		c.setZN(c.A)
	case 0x59:
		c.A ^= c.read(c.addrAbsY())
		c.setZN(c.A)
	case 0x41:
		c.A ^= c.read(c.addrIndX())
		c.setZN(c.A)
	case 0x51:
		c.A ^= c.read(c.addrIndY())
		c.setZN(c.A)
	case 0x24:
		c.bit(c.read(c.addrZP()))
	case 0x2c:
		c.bit(c.read(c.addrAbs()))

	// arithmetic
	case 0x69:
		c.adc(c.read(c.addrImm()))
	case 0x65:
		c.adc(c.read(c.addrZP()))
	case 0x75:
		c.adc(c.read(c.addrZPX()))
	case 0x6d:
		c.adc(c.read(c.addrAbs()))
	case 0x7d:
		c.adc(c.read(c.addrAbsX()))
	case 0x79:
		c.adc(c.read(c.addrAbsY()))
	case 0x61:
		c.adc(c.read(c.addrIndX()))
	case 0x71:
		c.adc(c.read(c.addrIndY()))
	case 0xe9:
		c.sbc(c.read(c.addrImm()))
	case 0xe5:
		c.sbc(c.read(c.addrZP()))
	case 0xf5:
		c.sbc(c.read(c.addrZPX()))
	case 0xed:
		c.sbc(c.read(c.addrAbs()))
	case 0xfd:
		c.sbc(c.read(c.addrAbsX()))
	case 0xf9:
		c.sbc(c.read(c.addrAbsY()))
	case 0xe1:
		c.sbc(c.read(c.addrIndX()))
	case 0xf1:
		c.sbc(c.read(c.addrIndY()))

	// compare
	case 0xc9:
		c.cmp(c.A, c.read(c.addrImm()))
	case 0xc5:
		c.cmp(c.A, c.read(c.addrZP()))
	case 0xd5:
		c.cmp(c.A, c.read(c.addrZPX()))
	case 0xcd:
		c.cmp(c.A, c.read(c.addrAbs()))
	case 0xdd:
		c.cmp(c.A, c.read(c.addrAbsX()))
	case 0xd9:
		c.cmp(c.A, c.read(c.addrAbsY()))
	case 0xc1:
		c.cmp(c.A, c.read(c.addrIndX()))
	case 0xd1:
		c.cmp(c.A, c.read(c.addrIndY()))
	case 0xe0:
		c.cmp(c.X, c.read(c.addrImm()))
	case 0xe4:
		c.cmp(c.X, c.read(c.addrZP()))
	case 0xec:
		c.cmp(c.X, c.read(c.addrAbs()))
	case 0xc0:
		c.cmp(c.Y, c.read(c.addrImm()))
	case 0xc4:
		c.cmp(c.Y, c.read(c.addrZP()))
	case 0xcc:
		c.cmp(c.Y, c.read(c.addrAbs()))

	// increment/decrement
	case 0xe6:
		c.inc(c.addrZP())
	case 0xf6:
		c.inc(c.addrZPX())
	case 0xee:
		c.inc(c.addrAbs())
	case 0xfe:
		c.inc(c.addrAbsX())
	case 0xc6:
		c.dec(c.addrZP())
	case 0xd6:
		c.dec(c.addrZPX())
	case 0xce:
		c.dec(c.addrAbs())
	case 0xde:
		c.dec(c.addrAbsX())
	case 0xe8:
		c.X++
		c.setZN(c.X)
	case 0xc8:
		c.Y++
		c.setZN(c.Y)
	case 0xca:
		c.X--
		c.setZN(c.X)
	case 0x88:
		c.Y--
		c.setZN(c.Y)

	// shift/rotate
	case 0x0a:
		c.setFlag(FlagC, c.A&0x80 != 0)
		c.A <<= 1
		c.setZN(c.A)
	case 0x06:
		c.asl(c.addrZP())
	case 0x16:
		c.asl(c.addrZPX())
	case 0x0e:
		c.asl(c.addrAbs())
	case 0x1e:
		c.asl(c.addrAbsX())
	case 0x4a:
		c.setFlag(FlagC, c.A&0x01 != 0)
		c.A >>= 1
		c.setZN(c.A)
	case 0x46:
		c.lsr(c.addrZP())
	case 0x56:
		c.lsr(c.addrZPX())
	case 0x4e:
		c.lsr(c.addrAbs())
	case 0x5e:
		c.lsr(c.addrAbsX())
	case 0x2a:
		carry := c.P & FlagC
		c.setFlag(FlagC, c.A&0x80 != 0)
		c.A = c.A<<1 | carry
		c.setZN(c.A)
	case 0x26:
		c.rol(c.addrZP())
	case 0x36:
		c.rol(c.addrZPX())
	case 0x2e:
		c.rol(c.addrAbs())
	case 0x3e:
		c.rol(c.addrAbsX())
	case 0x6a:
		carry := c.P & FlagC
		c.setFlag(FlagC, c.A&0x01 != 0)
		c.A = c.A>>1 | carry<<7
		c.setZN(c.A)
	case 0x66:
		c.ror(c.addrZP())
	case 0x76:
		c.ror(c.addrZPX())
	case 0x6e:
		c.ror(c.addrAbs())
	case 0x7e:
		c.ror(c.addrAbsX())

	// flow
	case 0x4c:
		c.PC = c.addrAbs()
	case 0x6c:
		// 6502 indirect jump page-wrap quirk
		addr := c.read16(c.PC)
		lo := uint16(c.read(addr))
		hi := uint16(c.read((addr & 0xff00) | ((addr + 1) & 0x00ff)))
		c.PC = hi<<8 | lo
	case 0x20:
		addr := c.addrAbs()
		c.push16(c.PC - 1)
		c.PC = addr
	case 0x60:
		c.PC = c.pull16() + 1
	case 0x40:
		c.P = c.pull()&^FlagB | FlagU
		c.PC = c.pull16()
	case 0x10:
		c.branch(!c.flag(FlagN))
	case 0x30:
		c.branch(c.flag(FlagN))
	case 0x50:
		c.branch(!c.flag(FlagV))
	case 0x70:
		c.branch(c.flag(FlagV))
	case 0x90:
		c.branch(!c.flag(FlagC))
	case 0xb0:
		c.branch(c.flag(FlagC))
	case 0xd0:
		c.branch(!c.flag(FlagZ))
	case 0xf0:
		c.branch(c.flag(FlagZ))

	// flags
	case 0x18:
		c.P &^= FlagC
	case 0x38:
		c.P |= FlagC
	case 0x58:
		c.P &^= FlagI
	case 0x78:
		c.P |= FlagI
	case 0xb8:
		c.P &^= FlagV
	case 0xd8:
		c.P &^= FlagD
	case 0xf8:
		c.P |= FlagD

	case 0xea: // NOP

	case 0x00:
		c.PC++
		c.push16(c.PC)
		c.push(c.P | FlagB | FlagU)
		c.P |= FlagI
		c.PC = c.read16(0xfffe)

	default:
		c.PC = pc
		return 0, &IllegalOpcodeError{PC: pc, Opcode: opcode}
	}

	cycles := int(opCycles[opcode])
	c.Cycles += uint64(cycles)
	return cycles, nil
}

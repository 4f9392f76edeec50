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
	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/c64"
)

// DefaultMaxInstructions bounds a single subroutine call. Matches the
// cap siddump-style tracers use per frame.
const DefaultMaxInstructions = 0xffff

/*
	Call pushes a sentinel return address and executes the subroutine at
	addr until it returns to the sentinel, at most maxInstr instructions.
	Exceeding the cap is a RunawayExecutionError; maxInstr <= 0 selects
	DefaultMaxInstructions. The caller drives frame pacing by invoking
	Call once per frame and advancing Frame in between.
*/
func (c *CPU) Call(addr uint16, maxInstr int) error {

	if maxInstr <= 0 {
		maxInstr = DefaultMaxInstructions
	}

	// RTS of the called routine pops the sentinel and wraps PC to
	// $0000, which player code never executes from.
	c.push16(0xffff)
	c.PC = addr

	for n := 0; n < maxInstr; n++ {
		if _, err := c.Step(); err != nil {
			return err
		}
		if c.PC == 0x0000 {
			return nil
		}
	}

	return &RunawayExecutionError{PC: c.PC, Cap: maxInstr}
}

/*
	RunInit calls the init routine with the subtune number in the
	accumulator. Players that busy-wait on the raster line during init
	are released by the raster model in read, which advances the line
	on every register poll.
*/
func (c *CPU) RunInit(initAddr uint16, subtune byte, maxInstr int) error {

	if maxInstr <= 0 {
		maxInstr = DefaultMaxInstructions
	}

	c.A = subtune
	c.X, c.Y = 0, 0
	c.push16(0xffff)
	c.PC = initAddr

	for n := 0; n < maxInstr; n++ {
		if _, err := c.Step(); err != nil {
			return err
		}
		if c.PC == 0x0000 {
			return nil
		}
	}

	return &RunawayExecutionError{PC: c.PC, Cap: maxInstr}
}

// bumpRaster advances $d012 one line, carrying the 9th bit through
// bit 7 of $d011. 312 PAL lines wrap at 256+$38.
func (c *CPU) bumpRaster() {
	c.Image.Mem[c64.RasterLine]++
	line := c.Image.Mem[c64.RasterLine]
	ctrl := c.Image.Mem[c64.RasterCtrl]
	if line == 0 || (ctrl&0x80 != 0 && line >= 0x38) {
		c.Image.Mem[c64.RasterCtrl] = ctrl ^ 0x80
		c.Image.Mem[c64.RasterLine] = 0
	}
}

/*
	PlayFrames invokes the play routine once per video frame for the
	given number of frames, capturing SID register writes. The captured
	trace (grouped per frame) is returned; any emulator fault aborts the
	run and is returned as is.
*/
func (c *CPU) PlayFrames(playAddr uint16, frames, maxInstr int) ([]RegisterWrite, error) {

	c.ClearWrites()

	for f := 0; f < frames; f++ {
		c.Frame = f
		if err := c.Call(playAddr, maxInstr); err != nil {
			log.WithFields(log.Fields{
				"frame": f,
				"play":  playAddr,
			}).Debugf("playback fault: %v", err)
			return nil, err
		}
	}

	return c.Writes(), nil
}

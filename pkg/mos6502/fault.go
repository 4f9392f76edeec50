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
	"fmt"
)

// IllegalOpcodeError reports decoding of an opcode outside the
// documented instruction set.
type IllegalOpcodeError struct {
	PC     uint16
	Opcode byte
}

//
func (e *IllegalOpcodeError) Error() string {
	return fmt.Sprintf("illegal opcode $%02x at $%04x", e.Opcode, e.PC)
}

// RunawayExecutionError reports that a run exceeded its instruction
// cap. Relocated code gone wrong tends to end up in tight loops, so
// every run is bounded; there is no unbounded mode.
type RunawayExecutionError struct {
	PC  uint16
	Cap int
}

//
func (e *RunawayExecutionError) Error() string {
	return fmt.Sprintf(
		"runaway execution: %d instructions without return, PC $%04x",
		e.Cap, e.PC)
}

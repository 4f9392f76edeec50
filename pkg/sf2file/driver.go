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

/*
	Driver image layout convention. Every SF2 driver starts with three
	entry-vector stubs the host jumps through, followed by a pointer
	table locating the musical data inside the image. All offsets are
	relative to the driver's load address.

	The stubs are regenerated from relocated addresses on every
	injection. Whatever bytes a template or source image carries at the
	stub offsets are never trusted to be valid jump instructions.
*/
const (
	StubInit = 0x00
	StubPlay = 0x03
	StubStop = 0x06

	// pointer table
	PtrOrderListV0 = 0x09
	PtrOrderListV1 = 0x0b
	PtrOrderListV2 = 0x0d
	PtrSequences   = 0x0f // word table: count lo bytes, then count hi bytes
	SequenceCount  = 0x11
	PtrInstruments = 0x12
	InstrumentCnt  = 0x14
	PtrWave        = 0x15
	WaveLen        = 0x17
	PtrPulse       = 0x18
	PulseLen       = 0x1a
	PtrFilter      = 0x1b
	FilterLen      = 0x1d

	PtrTableEnd = 0x1e
)

// OpJMP is the absolute jump opcode used in entry-vector stubs.
const OpJMP = 0x4c

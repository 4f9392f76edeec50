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

package run

import (
	"fmt"
	"io/ioutil"

	"github.com/sf2tools/sf2conv/pkg/c64"
	"github.com/sf2tools/sf2conv/pkg/mos6502"
	"github.com/sf2tools/sf2conv/pkg/sidfile"
)

//
func NewTrace() *Trace {

	t := &Trace{}
	t.Runner = *NewRunner(
		`trace [--frames {count}] [-s|--subtune {number}] {sid file}`,
		"dump the SID register writes of a tune",
		`Use the trace command for inspecting what a tune actually does to the SID
chip. The tune runs on the built-in CPU emulator and every register write is
printed, one frame per block.`,
		t.Run)

	t.AddSetting(&t.Frames, "frames", "", "", 50,
		"number of frames to trace", false)
	t.AddSetting(&t.Subtune, "subtune", "s", "", 0,
		"subtune to trace; defaults to the tune's start song", false)

	return t
}

//
type Trace struct {
	//
	Runner
	//
	Frames  int
	Subtune int
}

//
func (t *Trace) Run() error {

	t.ParseSettings()

	if len(t.Args) != 1 {
		return fmt.Errorf("trace takes exactly one SID file")
	}

	data, err := ioutil.ReadFile(t.Args[0])
	if err != nil {
		return err
	}

	hdr, img, err := sidfile.Decode(data)
	if err != nil {
		return err
	}

	subtune := t.Subtune
	if subtune < 1 {
		subtune = int(hdr.StartSong)
	}

	cpu := mos6502.New(img)
	if err := cpu.RunInit(hdr.InitAddress, byte(subtune-1), 0); err != nil {
		return err
	}

	play := hdr.PlayAddress
	if play == 0 {
		play = img.Word(0xfffe)
	}

	cpu.ClearWrites()
	writes, err := cpu.PlayFrames(play, t.Frames, 0)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s - %s (%s)\ninit $%04x play $%04x subtune %d\n\n",
		hdr.Name, hdr.Author, hdr.Released,
		hdr.InitAddress, play, subtune)

	frame := -1
	for _, w := range writes {
		if w.Frame != frame {
			frame = w.Frame
			fmt.Printf("frame %5d\n", frame)
		}
		fmt.Printf("  $%04x = $%02x\n", c64.SIDBase+uint16(w.Register), w.Value)
	}

	return nil
}

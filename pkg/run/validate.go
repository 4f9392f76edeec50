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

	"github.com/sf2tools/sf2conv/pkg/validate"
)

//
func NewValidate() *Validate {

	v := &Validate{}
	v.Runner = *NewRunner(
		`validate [--frames {count}] [--threshold {accuracy}] {original sid} {converted sid}`,
		"compare the playback of two SID tunes",
		`Use the validate command for measuring how accurately a converted tune
reproduces the original. Both tunes run on the built-in CPU emulator and their
SID register traces are compared frame by frame.`,
		v.Run)

	v.AddSetting(&v.Frames, "frames", "", "", 0,
		"number of frames to compare; defaults to ten seconds of PAL playback",
		false)
	v.AddSetting(&v.Threshold, "threshold", "", "", 0.0,
		"fail when the overall accuracy drops below this value", false)

	return v
}

//
type Validate struct {
	//
	Runner
	//
	Frames    int
	Threshold float64
}

//
func (v *Validate) Run() error {

	v.ParseSettings()

	if len(v.Args) != 2 {
		return fmt.Errorf("validate takes an original and a converted SID file")
	}

	original, err := ioutil.ReadFile(v.Args[0])
	if err != nil {
		return err
	}
	converted, err := ioutil.ReadFile(v.Args[1])
	if err != nil {
		return err
	}

	report, err := validate.Validate(original, converted, v.Frames)
	if err != nil {
		return err
	}

	fmt.Printf("\noverall accuracy over %d frames: %.4f\n",
		report.Frames, report.Overall)
	fmt.Printf("  frames: %.4f\n", report.FrameAccuracy)
	for voice := 0; voice < 3; voice++ {
		fmt.Printf("  voice %d: frequency %.4f, waveform %.4f\n",
			voice+1, report.VoiceFrequency[voice], report.VoiceWaveform[voice])
	}
	fmt.Printf("  filter: %.4f\n", report.FilterAccuracy)

	if v.Threshold > 0 && report.Overall < v.Threshold {
		return fmt.Errorf("accuracy %.4f below threshold %.4f",
			report.Overall, v.Threshold)
	}
	return nil
}

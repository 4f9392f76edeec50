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

/*
	Package validate measures how closely a converted tune reproduces
	the original: both images are executed on the CPU emulator for a
	number of video frames and their SID register write traces are
	compared channel by channel.
*/
package validate

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/c64"
	"github.com/sf2tools/sf2conv/pkg/mos6502"
	"github.com/sf2tools/sf2conv/pkg/sidfile"
)

/*
	Score weights. These are a policy choice that materially changes
	the reported number, so they live here as named values rather than
	being buried in the scoring code: full-frame equality dominates,
	then pitch, then timbre, then filter.
*/
const (
	WeightFrame    = 0.40
	WeightVoice    = 0.30
	WeightRegister = 0.20
	WeightFilter   = 0.10
)

// DefaultFrames is the comparison length when the caller does not
// specify one: ten seconds of PAL playback.
const DefaultFrames = 10 * c64.PALRate

// Report is the outcome of comparing two images.
type Report struct {
	Frames int

	FrameAccuracy  float64
	VoiceFrequency [3]float64
	VoiceWaveform  [3]float64
	FilterAccuracy float64

	Overall float64
}

// RunError reports that one of the two images faulted during
// emulation. It is a distinct failure, never a zero score: a faulting
// image and a badly converted one must stay distinguishable.
type RunError struct {
	Image string // "original" or "converted"
	Err   error
}

//
func (e *RunError) Error() string {
	return fmt.Sprintf("emulation of %s image failed: %v", e.Image, e.Err)
}

//
func (e *RunError) Unwrap() error {
	return e.Err
}

/*
	Validate runs both SID images independently for the given number of
	frames from their own init routines and scores the captured write
	traces against each other. Each run owns its own CPU and memory;
	nothing is shared.
*/
func Validate(original, converted []byte, frames int) (*Report, error) {

	if frames <= 0 {
		frames = DefaultFrames
	}

	origWrites, err := run(original, frames)
	if err != nil {
		return nil, &RunError{Image: "original", Err: err}
	}
	convWrites, err := run(converted, frames)
	if err != nil {
		return nil, &RunError{Image: "converted", Err: err}
	}

	r := score(origWrites, convWrites, frames)

	log.WithFields(log.Fields{
		"frames":  frames,
		"overall": fmt.Sprintf("%.4f", r.Overall),
	}).Info("validation complete")

	return r, nil
}

//
func run(data []byte, frames int) ([]mos6502.RegisterWrite, error) {

	hdr, img, err := sidfile.Decode(data)
	if err != nil {
		return nil, err
	}

	subtune := hdr.StartSong
	if subtune > 0 {
		// the header field is 1-based, the init routine takes 0-based
		subtune--
	}

	cpu := mos6502.New(img)
	if err := cpu.RunInit(hdr.InitAddress, byte(subtune), 0); err != nil {
		return nil, err
	}

	play := hdr.PlayAddress
	if play == 0 {
		// players that install their own interrupt leave the play
		// address in the IRQ vector
		play = img.Word(0xfffe)
	}

	cpu.ClearWrites()
	return cpu.PlayFrames(play, frames, 0)
}

//
func score(orig, conv []mos6502.RegisterWrite, frames int) *Report {

	r := &Report{Frames: frames}

	oFrames := groupByFrame(orig, frames)
	cFrames := groupByFrame(conv, frames)

	frameHits := 0
	for f := 0; f < frames; f++ {
		if writesEqual(oFrames[f], cFrames[f]) {
			frameHits++
		}
	}
	r.FrameAccuracy = ratio(frameHits, frames)

	for v := 0; v < 3; v++ {
		lo, _ := c64.Voice(v)
		// freq lo/hi is the first register pair of a voice, the
		// control register with the waveform bits sits at offset 4
		r.VoiceFrequency[v] = channelAccuracy(
			oFrames, cFrames, frames, lo, lo+1)
		r.VoiceWaveform[v] = channelAccuracy(
			oFrames, cFrames, frames, lo+4, lo+4)
	}

	r.FilterAccuracy = channelAccuracy(oFrames, cFrames, frames,
		0x15, 0x18)

	voiceFreq := (r.VoiceFrequency[0] + r.VoiceFrequency[1] +
		r.VoiceFrequency[2]) / 3
	voiceWave := (r.VoiceWaveform[0] + r.VoiceWaveform[1] +
		r.VoiceWaveform[2]) / 3

	r.Overall = WeightFrame*r.FrameAccuracy +
		WeightVoice*voiceFreq +
		WeightRegister*voiceWave +
		WeightFilter*r.FilterAccuracy

	return r
}

//
func groupByFrame(writes []mos6502.RegisterWrite, frames int) [][]mos6502.RegisterWrite {
	grouped := make([][]mos6502.RegisterWrite, frames)
	for _, w := range writes {
		if w.Frame < frames {
			grouped[w.Frame] = append(grouped[w.Frame], w)
		}
	}
	return grouped
}

//
func writesEqual(a, b []mos6502.RegisterWrite) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Register != b[i].Register || a[i].Value != b[i].Value {
			return false
		}
	}
	return true
}

// channelAccuracy is the fraction of frames whose write sequence,
// restricted to the register range [lo, hi], matches.
func channelAccuracy(oFrames, cFrames [][]mos6502.RegisterWrite,
	frames int, lo, hi uint16) float64 {

	hits := 0
	for f := 0; f < frames; f++ {
		if writesEqual(
			filterRange(oFrames[f], lo, hi),
			filterRange(cFrames[f], lo, hi)) {
			hits++
		}
	}
	return ratio(hits, frames)
}

//
func filterRange(writes []mos6502.RegisterWrite, lo, hi uint16) []mos6502.RegisterWrite {
	var out []mos6502.RegisterWrite
	for _, w := range writes {
		if uint16(w.Register) >= lo && uint16(w.Register) <= hi {
			out = append(out, w)
		}
	}
	return out
}

//
func ratio(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}

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

package control

import (
	"fmt"
	"sync/atomic"

	"github.com/sf2tools/sf2conv/pkg/validate"
)

//
type counter struct {
	n int64
}

//
func (c *counter) inc() {
	atomic.AddInt64(&c.n, 1)
}

//
func (c *counter) get() int64 {
	return atomic.LoadInt64(&c.n)
}

//
type Status struct {
	Uptime      string `json:"uptime"`
	Conversions int64  `json:"conversions"`
	Validations int64  `json:"validations"`
}

//
func (s *Status) String() string {
	return fmt.Sprintf("\nup: %s\nconversions: %d\nvalidations: %d\n",
		s.Uptime, s.Conversions, s.Validations)
}

// Accuracy is the JSON view of a validation report.
type Accuracy struct {
	Frames         int        `json:"frames"`
	FrameAccuracy  float64    `json:"frameAccuracy"`
	VoiceFrequency [3]float64 `json:"voiceFrequency"`
	VoiceWaveform  [3]float64 `json:"voiceWaveform"`
	FilterAccuracy float64    `json:"filterAccuracy"`
	Overall        float64    `json:"overall"`
}

//
func newAccuracy(r *validate.Report) *Accuracy {
	return &Accuracy{
		Frames:         r.Frames,
		FrameAccuracy:  r.FrameAccuracy,
		VoiceFrequency: r.VoiceFrequency,
		VoiceWaveform:  r.VoiceWaveform,
		FilterAccuracy: r.FilterAccuracy,
		Overall:        r.Overall,
	}
}

//
func (a *Accuracy) String() string {
	ret := fmt.Sprintf("\noverall accuracy over %d frames: %.4f\n",
		a.Frames, a.Overall)
	ret += fmt.Sprintf("  frames: %.4f\n", a.FrameAccuracy)
	for v := 0; v < 3; v++ {
		ret += fmt.Sprintf("  voice %d: frequency %.4f, waveform %.4f\n",
			v+1, a.VoiceFrequency[v], a.VoiceWaveform[v])
	}
	ret += fmt.Sprintf("  filter: %.4f\n", a.FilterAccuracy)
	return ret
}

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

package extract

import (
	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/c64"
)

/*
	extractSignature is the first extraction tier: a format-specific
	parser keyed to a detected player family. It knows the exact
	pointer-table offsets of that family and reads the data tables
	directly. A table that resolves outside the image is skipped and
	costs confidence; zero sequences means the tier failed entirely.
*/
func extractSignature(img *c64.MemoryImage, _ Hints) *Result {

	payload := img.Payload()

	sig, off := Detect(payload)
	if sig == nil {
		log.Debug("no player family signature matched")
		return nil
	}

	if off+sig.span() > len(payload) {
		log.Debugf("image too small for %s table references", sig.Player)
		return nil
	}

	log.WithFields(log.Fields{
		"player": sig.Player,
		"offset": off,
	}).Debug("player family detected")

	res := &Result{
		Player:     sig.Player,
		Tier:       TierSignature,
		Confidence: sig.Confidence,
	}

	// order lists
	for v := 0; v < 3; v++ {
		pos, ok := derefField(img, off+sig.OrderListRefs[v])
		if !ok {
			res.Confidence -= 0.1
			continue
		}
		list, _, err := UnpackOrderList(payload[pos:])
		if err != nil {
			log.Debugf("voice %d order list at offset %d: %v", v, pos, err)
			res.Confidence -= 0.1
			continue
		}
		res.OrderLists[v] = list
	}

	// sequences, via split lo/hi pointer tables
	count := int(payload[off+sig.SeqCountRef])
	tbl, ok := derefField(img, off+sig.SequencesRef)
	if !ok || tbl+2*count > len(payload) {
		log.Debug("sequence pointer table unresolvable")
		return nil
	}
	for i := 0; i < count; i++ {
		addr := uint16(payload[tbl+i]) | uint16(payload[tbl+count+i])<<8
		if !img.Contains(addr) {
			log.Debugf("sequence %d at $%04x outside image", i, addr)
			res.Confidence -= 0.05
			continue
		}
		pos := int(addr - img.Load)
		events, n, err := UnpackSequence(payload[pos:])
		if err != nil {
			log.Debugf("sequence %d at $%04x: %v", i, addr, err)
			res.Confidence -= 0.05
			continue
		}
		res.Sequences = append(res.Sequences, Sequence{
			Address: addr,
			Events:  events,
			packed:  n,
		})
	}
	if len(res.Sequences) == 0 {
		return nil
	}

	// instruments
	if pos, ok := derefField(img, off+sig.InstRef); ok {
		n := int(payload[off+sig.InstCountRef])
		if pos+n*InstrumentSize <= len(payload) {
			for i := 0; i < n; i++ {
				res.Instruments = append(res.Instruments,
					DecodeInstrument(payload[pos+i*InstrumentSize:]))
			}
		} else {
			res.Confidence -= 0.1
		}
	}

	res.WaveTable = tableField(img, off, sig.WaveRef, sig.WaveLenRef, &res.Confidence)
	res.PulseTable = tableField(img, off, sig.PulseRef, sig.PulseLenRef, &res.Confidence)
	res.FilterTable = tableField(img, off, sig.FilterRef, sig.FilterLenRef, &res.Confidence)

	if res.Confidence < 0 {
		res.Confidence = 0
	}
	return res
}

// derefField reads the pointer word embedded at the given payload
// offset and resolves it to a payload offset.
func derefField(img *c64.MemoryImage, fieldOff int) (int, bool) {

	payload := img.Payload()
	if fieldOff+2 > len(payload) {
		return 0, false
	}
	addr := c64.Word(payload, fieldOff)
	if !img.Contains(addr) {
		return 0, false
	}
	return int(addr - img.Load), true
}

// tableField copies one raw table out of the image, docking
// confidence when the reference does not resolve.
func tableField(img *c64.MemoryImage, base, ref, lenRef int,
	confidence *float64) []byte {

	payload := img.Payload()
	pos, ok := derefField(img, base+ref)
	if !ok {
		*confidence -= 0.05
		return nil
	}
	if base+lenRef >= len(payload) {
		*confidence -= 0.05
		return nil
	}
	n := int(payload[base+lenRef])
	if pos+n > len(payload) {
		*confidence -= 0.05
		return nil
	}
	return append([]byte(nil), payload[pos:pos+n]...)
}

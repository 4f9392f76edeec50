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
	"github.com/sf2tools/sf2conv/pkg/sf2file"
)

/*
	extractFixed is the last-resort tier: it assumes the image follows
	the SF2 driver layout convention (pointer table at a fixed offset
	after the entry stubs) without any signature evidence, and parses
	from there. Only used when both other tiers yielded nothing; its
	confidence is correspondingly low.
*/
func extractFixed(img *c64.MemoryImage, _ Hints) *Result {

	payload := img.Payload()
	if len(payload) < sf2file.PtrTableEnd {
		return nil
	}

	res := &Result{
		Player:     "unknown",
		Tier:       TierFixed,
		Confidence: 0.30,
	}

	for v, ref := range []int{
		sf2file.PtrOrderListV0, sf2file.PtrOrderListV1, sf2file.PtrOrderListV2,
	} {
		pos, ok := derefField(img, ref)
		if !ok {
			continue
		}
		if list, _, err := UnpackOrderList(payload[pos:]); err == nil {
			res.OrderLists[v] = list
		}
	}

	count := int(payload[sf2file.SequenceCount])
	tbl, ok := derefField(img, sf2file.PtrSequences)
	if !ok || tbl+2*count > len(payload) {
		return nil
	}
	for i := 0; i < count; i++ {
		addr := uint16(payload[tbl+i]) | uint16(payload[tbl+count+i])<<8
		if !img.Contains(addr) {
			continue
		}
		pos := int(addr - img.Load)
		events, n, err := UnpackSequence(payload[pos:])
		if err != nil {
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

	if pos, ok := derefField(img, sf2file.PtrInstruments); ok {
		n := int(payload[sf2file.InstrumentCnt])
		if pos+n*InstrumentSize <= len(payload) {
			for i := 0; i < n; i++ {
				res.Instruments = append(res.Instruments,
					DecodeInstrument(payload[pos+i*InstrumentSize:]))
			}
		}
	}

	res.WaveTable = tableField(img, 0, sf2file.PtrWave, sf2file.WaveLen, &res.Confidence)
	res.PulseTable = tableField(img, 0, sf2file.PtrPulse, sf2file.PulseLen, &res.Confidence)
	res.FilterTable = tableField(img, 0, sf2file.PtrFilter, sf2file.FilterLen, &res.Confidence)

	log.WithFields(log.Fields{
		"sequences":  len(res.Sequences),
		"confidence": res.Confidence,
	}).Debug("fixed-offset extraction")

	return res
}

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

//
const (
	// runs of one repeated byte at least this long are treated as
	// padding or index tables and never pattern-matched. Skipping them
	// is a correctness requirement: long zero runs unpack as perfectly
	// plausible note streams.
	fillerRunMin = 16

	// a candidate sequence must decode to at least this many events
	minScanEvents = 3

	// and terminate within this many bytes
	maxSeqWindow = 256

	heuristicBaseConfidence = 0.50
)

/*
	extractHeuristic is the second tier: a scanner that searches a
	bounded window for byte runs consistent with the packed-sequence
	grammar and unpacks them with the sequence state machine. It knows
	nothing about any player family.
*/
func extractHeuristic(img *c64.MemoryImage, hints Hints) *Result {

	payload := img.Payload()

	from, to := 0, len(payload)
	if hints.ScanFrom != 0 && img.Contains(hints.ScanFrom) {
		from = int(hints.ScanFrom - img.Load)
	}
	if hints.ScanTo != 0 && img.Contains(hints.ScanTo) {
		to = int(hints.ScanTo - img.Load)
	}
	if from >= to {
		return nil
	}

	filler := fillerRuns(payload)

	res := &Result{
		Player:     "unknown",
		Tier:       TierHeuristic,
		Confidence: heuristicBaseConfidence,
	}

	// pass 1: sequences
	for pos := from; pos < to; {
		if filler[pos] {
			pos++
			continue
		}
		end := pos + maxSeqWindow
		if end > to {
			end = to
		}
		events, n, err := UnpackSequence(payload[pos:end])
		if err != nil || len(events) < minScanEvents {
			pos++
			continue
		}
		res.Sequences = append(res.Sequences, Sequence{
			Address: img.Load + uint16(pos),
			Events:  events,
			packed:  n,
		})
		pos += n
	}

	if len(res.Sequences) == 0 {
		log.Debug("heuristic scan found no sequences")
		return nil
	}

	// pass 2: order lists referencing the found sequences
	voice := 0
	for pos := from; pos < to && voice < 3; {
		if filler[pos] {
			pos++
			continue
		}
		list, n, err := UnpackOrderList(payload[pos:])
		if err != nil || len(list.Entries) == 0 ||
			!referencesKnown(list, len(res.Sequences)) {
			pos++
			continue
		}
		res.OrderLists[voice] = list
		voice++
		pos += n
	}

	switch voice {
	case 3:
		res.Confidence += 0.25
	case 0:
		// sequences without song structure still convert, at reduced
		// confidence
		res.Confidence -= 0.15
	default:
		res.Confidence += 0.05 * float64(voice)
	}

	log.WithFields(log.Fields{
		"sequences":  len(res.Sequences),
		"orderlists": voice,
		"confidence": res.Confidence,
	}).Debug("heuristic extraction")

	return res
}

// referencesKnown reports whether every step of the list points at an
// extracted sequence.
func referencesKnown(list OrderList, sequences int) bool {
	for _, e := range list.Entries {
		if int(e.SequenceIndex) >= sequences {
			return false
		}
	}
	return true
}

// fillerRuns flags every byte belonging to a run of fillerRunMin or
// more identical bytes.
func fillerRuns(payload []byte) []bool {

	filler := make([]bool, len(payload))

	for pos := 0; pos < len(payload); {
		run := pos + 1
		for run < len(payload) && payload[run] == payload[pos] {
			run++
		}
		if run-pos >= fillerRunMin {
			for i := pos; i < run; i++ {
				filler[i] = true
			}
		}
		pos = run
	}
	return filler
}

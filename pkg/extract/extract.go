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

// tier is one extraction strategy; nil means the tier found nothing.
type tier func(*c64.MemoryImage, Hints) *Result

//
var tiers = []tier{
	extractSignature,
	extractHeuristic,
	extractFixed,
}

/*
	Extract locates the musical data in a loaded memory image. The
	tiers run in order of decreasing specificity; the first one that
	yields sequences wins and the rest are skipped. The result records
	the tier used and its confidence. When every tier comes up empty
	the extraction is ambiguous, which is a conversion failure, never
	an empty success.
*/
func Extract(img *c64.MemoryImage, hints Hints) (*Result, error) {

	for _, t := range tiers {
		if res := t(img, hints); res != nil && len(res.Sequences) > 0 {
			log.WithFields(log.Fields{
				"tier":       res.Tier.String(),
				"player":     res.Player,
				"sequences":  len(res.Sequences),
				"confidence": res.Confidence,
			}).Info("extraction complete")
			return res, nil
		}
	}

	return nil, ErrAmbiguous
}

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

package convert

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/extract"
	"github.com/sf2tools/sf2conv/pkg/sf2file"
)

// Job is one tune in a batch run. Name is only used for reporting.
type Job struct {
	Name string
	Data []byte
}

// Outcome pairs a job with its result. Exactly one of Output or Err
// is set; Result is present whenever extraction got far enough.
type Outcome struct {
	Name   string
	Output []byte
	Result *extract.Result
	Err    error
}

/*
	Batch converts a set of tunes concurrently against one shared
	template. The template is never written to; injection clones it per
	job. Cancelling the context stops scheduling new jobs; jobs already
	running finish and report their outcomes. Outcomes keep the input
	order, with unscheduled jobs carrying the context error.
*/
func Batch(ctx context.Context, jobs []Job, workers int,
	template *sf2file.File, opts Options) []Outcome {

	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(jobs))
	ix := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range ix {
				job := jobs[i]
				out, res, err := SIDToSF2(job.Data, template, opts)
				outcomes[i] = Outcome{
					Name:   job.Name,
					Output: out,
					Result: res,
					Err:    err,
				}
			}
		}()
	}

	scheduled := 0
feed:
	for i := range jobs {
		select {
		case ix <- i:
			scheduled++
		case <-ctx.Done():
			break feed
		}
	}
	close(ix)
	wg.Wait()

	for i := scheduled; i < len(jobs); i++ {
		outcomes[i] = Outcome{Name: jobs[i].Name, Err: ctx.Err()}
	}

	failed := 0
	for i := range outcomes {
		if outcomes[i].Err != nil {
			failed++
		}
	}
	log.WithFields(log.Fields{
		"jobs":    len(jobs),
		"workers": workers,
		"failed":  failed,
	}).Info("batch conversion finished")

	return outcomes
}

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
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/convert"
)

//
func NewConvert() *Convert {

	c := &Convert{}
	c.Runner = *NewRunner(
		`convert [-o|--output {file}] [-t|--template {file}] [-l|--load {hex address}]
      [-w|--workers {count}] [-f|--force] {sid file} ...`,
		"convert SID tunes into SF2 files",
		`Use the convert command for turning SID tunes into SID Factory II files. Each
tune is analyzed, its music data extracted and injected into a driver template.
With several input files, conversions run concurrently.`,
		c.Run)

	c.AddTemplateSetting()
	c.AddSetting(&c.Output, "output", "o", "", "",
		"output file; only with a single input, defaults to the\ninput name with .sf2 extension", false)
	c.AddSetting(&c.Load, "load", "l", "", "",
		"driver load address in hex; omit to keep the template's", false)
	c.AddSetting(&c.Workers, "workers", "w", "", 0,
		"concurrent conversions; defaults to the CPU count", false)
	c.AddSetting(&c.Force, "force", "f", "", false,
		"overwrite existing output files without asking", false)

	return c
}

//
type Convert struct {
	//
	Runner
	//
	Output  string
	Load    string
	Workers int
	Force   bool
}

//
func (c *Convert) Run() error {

	c.ParseSettings()

	if len(c.Args) == 0 {
		return fmt.Errorf("no input files")
	}
	if c.Output != "" && len(c.Args) > 1 {
		return fmt.Errorf("--output only works with a single input file")
	}

	template, err := c.loadTemplate()
	if err != nil {
		return err
	}

	load, err := parseLoadAddress(c.Load)
	if err != nil {
		return err
	}
	opts := convert.Options{LoadAddress: load}

	jobs := make([]convert.Job, 0, len(c.Args))
	for _, in := range c.Args {
		data, err := ioutil.ReadFile(in)
		if err != nil {
			return err
		}
		jobs = append(jobs, convert.Job{Name: in, Data: data})
	}

	workers := c.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	failed := 0
	for _, out := range convert.Batch(
		context.Background(), jobs, workers, template, opts) {

		if out.Err != nil {
			log.Errorf("%s: %v", out.Name, out.Err)
			failed++
			continue
		}

		target := c.Output
		if target == "" {
			target = strings.TrimSuffix(
				out.Name, filepath.Ext(out.Name)) + ".sf2"
		}

		if !c.Force {
			if _, err := os.Stat(target); err == nil {
				if !GetUserConfirmation(
					fmt.Sprintf("overwrite %s?", target)) {
					continue
				}
			}
		}

		if err := ioutil.WriteFile(target, out.Output, 0644); err != nil {
			return err
		}

		fmt.Printf("%s -> %s (%s, confidence %.2f)\n",
			out.Name, target, out.Result.Tier, out.Result.Confidence)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(jobs))
	}
	return nil
}

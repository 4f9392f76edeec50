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

package main

import (
	"fmt"
	"os"

	"github.com/sf2tools/sf2conv/pkg/run"
)

//
var SF2ConvVersion string

//
func synopsis() {
	fmt.Print(`
synopsis: sf2ctl {convert|unpack|validate|trace|serve|status|version} ...

run 'sf2ctl {action} -h|--help' to see detailed info

`)
}

//
func version() {
	fmt.Printf("\nSF2Conv %s\n\n", SF2ConvVersion)
}

//
func main() {

	var action string
	var args []string

	if len(os.Args) > 1 {
		action = os.Args[1]
	}

	if len(os.Args) > 2 {
		args = os.Args[2:]
	}

	switch action {

	case "convert":
		run.DieOnError(run.NewConvert().Execute(args))

	case "unpack":
		run.DieOnError(run.NewUnpack().Execute(args))

	case "validate":
		run.DieOnError(run.NewValidate().Execute(args))

	case "trace":
		run.DieOnError(run.NewTrace().Execute(args))

	case "serve":
		version()
		run.DieOnError(run.NewServe().Execute(args))

	case "status":
		run.DieOnError(run.NewStatus().Execute(args))

	case "version":
		version()

	case "":
		fallthrough
	case "-h":
		fallthrough
	case "--help":
		synopsis()

	default:
		run.Die("unknown action: %s\n", action)
	}
}

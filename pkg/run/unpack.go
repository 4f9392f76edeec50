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
	"path/filepath"
	"strings"

	"github.com/sf2tools/sf2conv/pkg/convert"
)

//
func NewUnpack() *Unpack {

	u := &Unpack{}
	u.Runner = *NewRunner(
		`unpack [-o|--output {file}] [-n|--name {title}] [--author {author}]
      [--released {released}] {sf2 file}`,
		"pack an SF2 file into a playable SID",
		`Use the unpack command for turning an SF2 file back into a PSID tune that any
SID player can run. The name, author and released flags fill the PSID header
credits.`,
		u.Run)

	u.AddSetting(&u.Output, "output", "o", "", "",
		"output file; defaults to the input name with .sid extension", false)
	u.AddSetting(&u.Name, "name", "n", "", "",
		"tune title for the PSID header", false)
	u.AddSetting(&u.Author, "author", "", "", "",
		"author for the PSID header", false)
	u.AddSetting(&u.Released, "released", "", "", "",
		"release info for the PSID header", false)

	return u
}

//
type Unpack struct {
	//
	Runner
	//
	Output   string
	Name     string
	Author   string
	Released string
}

//
func (u *Unpack) Run() error {

	u.ParseSettings()

	if len(u.Args) != 1 {
		return fmt.Errorf("unpack takes exactly one SF2 file")
	}
	in := u.Args[0]

	data, err := ioutil.ReadFile(in)
	if err != nil {
		return err
	}

	out, err := convert.SF2ToSID(data, u.Name, u.Author, u.Released)
	if err != nil {
		return err
	}

	target := u.Output
	if target == "" {
		target = strings.TrimSuffix(in, filepath.Ext(in)) + ".sid"
	}

	if err := ioutil.WriteFile(target, out, 0644); err != nil {
		return err
	}

	fmt.Printf("%s -> %s\n", in, target)
	return nil
}

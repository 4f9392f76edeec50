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
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/sf2tools/sf2conv/pkg/convert"
	"github.com/sf2tools/sf2conv/pkg/sf2file"
)

/*
	NewRunner creates a base runner for commands to use. The parameters
	are passed to the base command wrapped by this runner.
*/
func NewRunner(use, short, long string, exec func() error) *Runner {
	return &Runner{
		Command: *NewCommand(use, short, long, exec),
	}
}

//
type Runner struct {
	//
	Command
	//
	Address  string
	Template string
}

//
func (r *Runner) AddBaseSettings() {
	// Implementation Note: This cannot be included in NewRunner, but rather
	// has to be called from the top level command type. Otherwise, we will
	// confuse Cobra/Viper and the settings will not be filled with their
	// values.
	r.AddSetting(&r.Address, "address", "a", "SF2CONV_ADDRESS",
		"localhost:8580", "address of the conversion API server", false)
}

//
func (r *Runner) AddTemplateSetting() {
	r.AddSetting(&r.Template, "template", "t", "SF2CONV_TEMPLATE", "",
		"driver template SF2 file; omit to use the built-in driver", false)
}

// loadTemplate resolves the --template setting, falling back to the
// built-in driver.
func (r *Runner) loadTemplate() (*sf2file.File, error) {
	if r.Template == "" {
		return convert.BuiltinTemplate(), nil
	}
	return convert.LoadTemplate(r.Template)
}

//
func (r *Runner) apiCall(method, path string, json bool,
	body io.Reader) (io.ReadCloser, error) {

	client := &http.Client{}
	req, err := http.NewRequest(
		method, fmt.Sprintf("http://%s%s", r.Address, path), body)
	if err != nil {
		return nil, err
	}

	if json {
		req.Header.Add("Content-Type", "application/json")
		req.Header.Add("Accept", "application/json")
	} else {
		req.Header.Add("Content-Type", "text/plain")
		req.Header.Add("Accept", "text/plain")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// parseLoadAddress turns a hex flag value such as '1000' or '0x1000'
// into a load address; empty means keep the template's address.
func parseLoadAddress(arg string) (uint16, error) {
	if arg == "" {
		return 0, nil
	}
	load, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid load address %q: %v", arg, err)
	}
	return uint16(load), nil
}

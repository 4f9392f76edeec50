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
	"io"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/sf2tools/sf2conv/pkg/convert"
	"github.com/sf2tools/sf2conv/pkg/repo"
	"github.com/sf2tools/sf2conv/pkg/sf2file"
)

// request bodies are tune images, they are small
const maxBodySize = 1048576

/*
	convert turns the SID file in the request body into an SF2 file.
	Optional query arguments: 'load' relocates the driver to the given
	hex address, 'template' resolves a driver template reference
	instead of using the built-in one, 'name' sets the download file
	name.
*/
func (a *api) convert(w http.ResponseWriter, req *http.Request) {

	body, err := ioutil.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if handleError(err, http.StatusInternalServerError, w) {
		return
	}

	template := a.template
	if ref, _ := getArg(req, "template"); ref != "" {
		if template, err = a.resolveTemplate(ref); err != nil {
			handleError(err, http.StatusNotAcceptable, w)
			return
		}
	}

	opts := convert.Options{}
	if arg, _ := getArg(req, "load"); arg != "" {
		load, err := strconv.ParseUint(arg, 16, 16)
		if err != nil {
			handleError(fmt.Errorf("invalid load address %q: %v", arg, err),
				http.StatusUnprocessableEntity, w)
			return
		}
		opts.LoadAddress = uint16(load)
	}

	out, res, err := convert.SIDToSF2(body, template, opts)
	if err != nil {
		handleError(fmt.Errorf("conversion failed: %v", err),
			http.StatusUnprocessableEntity, w)
		return
	}
	a.conversions.inc()

	name, _ := getArg(req, "name")
	if name == "" {
		name = "tune.sf2"
	}

	w.Header().Set("X-Extraction-Tier", res.Tier.String())
	w.Header().Set("X-Extraction-Confidence",
		fmt.Sprintf("%.2f", res.Confidence))
	sendBinaryReply(out, name, w)
}

/*
	unpack is the reverse direction: the SF2 file in the request body
	comes back as a playable SID. The 'name', 'author' and 'released'
	query arguments fill the PSID header credits.
*/
func (a *api) unpack(w http.ResponseWriter, req *http.Request) {

	body, err := ioutil.ReadAll(io.LimitReader(req.Body, maxBodySize))
	if handleError(err, http.StatusInternalServerError, w) {
		return
	}

	name, _ := getArg(req, "name")
	author, _ := getArg(req, "author")
	released, _ := getArg(req, "released")

	out, err := convert.SF2ToSID(body, name, author, released)
	if err != nil {
		handleError(fmt.Errorf("unpacking failed: %v", err),
			http.StatusUnprocessableEntity, w)
		return
	}

	file := name
	if file == "" {
		file = "tune"
	}
	sendBinaryReply(out, file+".sid", w)
}

//
func (a *api) resolveTemplate(ref string) (*sf2file.File, error) {

	rc, err := repo.Resolve(ref, a.repository)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := ioutil.ReadAll(io.LimitReader(rc, maxBodySize))
	if err != nil {
		return nil, err
	}
	return sf2file.Decode(data)
}

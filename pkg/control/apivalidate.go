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

	"github.com/sf2tools/sf2conv/pkg/validate"
)

/*
	validate compares two SID files. The request body is multipart form
	data with the parts 'original' and 'converted'; the optional
	'frames' query argument bounds the comparison length.
*/
func (a *api) validate(w http.ResponseWriter, req *http.Request) {

	if err := req.ParseMultipartForm(2 * maxBodySize); err != nil {
		handleError(fmt.Errorf("bad multipart request: %v", err),
			http.StatusUnprocessableEntity, w)
		return
	}

	original, err := formFile(req, "original")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}
	converted, err := formFile(req, "converted")
	if handleError(err, http.StatusUnprocessableEntity, w) {
		return
	}

	frames := 0
	if arg, _ := getArg(req, "frames"); arg != "" {
		if frames, err = strconv.Atoi(arg); err != nil || frames < 0 {
			handleError(fmt.Errorf("invalid frame count %q", arg),
				http.StatusUnprocessableEntity, w)
			return
		}
	}

	report, err := validate.Validate(original, converted, frames)
	if err != nil {
		handleError(fmt.Errorf("validation failed: %v", err),
			http.StatusUnprocessableEntity, w)
		return
	}
	a.validations.inc()

	acc := newAccuracy(report)
	if wantsJSON(req) {
		sendJSONReply(acc, http.StatusOK, w)
	} else {
		sendReply([]byte(acc.String()), http.StatusOK, w)
	}
}

//
func formFile(req *http.Request, name string) ([]byte, error) {
	f, _, err := req.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("missing form file %q: %v", name, err)
	}
	defer f.Close()
	return ioutil.ReadAll(io.LimitReader(f, maxBodySize))
}

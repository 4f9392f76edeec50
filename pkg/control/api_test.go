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
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sf2tools/sf2conv/pkg/convert"
	"github.com/sf2tools/sf2conv/pkg/extract"
	"github.com/sf2tools/sf2conv/pkg/reloc"
	"github.com/sf2tools/sf2conv/pkg/sf2file"
	"github.com/sf2tools/sf2conv/pkg/sidfile"
)

//
func testAPI() *api {
	return &api{
		template: convert.BuiltinTemplate(),
		started:  time.Now(),
	}
}

// testSF2 injects a one-sequence tune into the built-in template.
func testSF2(t *testing.T) []byte {

	t.Helper()

	events, _, err := extract.UnpackSequence(
		[]byte{0xa0, 0x30, 0x32, 0x34, 0x7f})
	if err != nil {
		t.Fatalf("cannot unpack test sequence: %v", err)
	}

	res := &extract.Result{
		Sequences: []extract.Sequence{{Events: events}},
		OrderLists: [3]extract.OrderList{
			{
				Entries:   []extract.OrderListEntry{{Transpose: 0x80}},
				LoopIndex: 0,
			},
			{LoopIndex: -1},
			{LoopIndex: -1},
		},
	}

	f, err := reloc.Inject(convert.BuiltinTemplate(), res,
		convert.TemplateLoad)
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}
	return f.Encode()
}

//
func testSID(t *testing.T) []byte {
	t.Helper()
	sid, err := convert.SF2ToSID(testSF2(t), "Test", "", "")
	if err != nil {
		t.Fatalf("SF2ToSID failed: %v", err)
	}
	return sid
}

//
func TestConvertEndpoint(t *testing.T) {

	a := testAPI()
	req := httptest.NewRequest("PUT", "/convert?load=2000&name=tune.sf2",
		bytes.NewReader(testSID(t)))
	rec := httptest.NewRecorder()

	a.convert(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Extraction-Tier") == "" {
		t.Error("extraction tier header missing")
	}

	f, err := sf2file.Decode(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("response is not an SF2 file: %v", err)
	}
	if f.Desc.DriverLoad != 0x2000 {
		t.Errorf("driver load: got $%04x, want $2000", f.Desc.DriverLoad)
	}
	if a.conversions.get() != 1 {
		t.Errorf("conversion counter: got %d, want 1", a.conversions.get())
	}
}

//
func TestConvertEndpointRejectsBadLoad(t *testing.T) {

	a := testAPI()
	req := httptest.NewRequest("PUT", "/convert?load=zzzz",
		bytes.NewReader(testSID(t)))
	rec := httptest.NewRecorder()

	a.convert(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want %d",
			rec.Code, http.StatusUnprocessableEntity)
	}
}

//
func TestUnpackEndpoint(t *testing.T) {

	a := testAPI()
	req := httptest.NewRequest("PUT", "/unpack?name=mytune",
		bytes.NewReader(testSF2(t)))
	rec := httptest.NewRecorder()

	a.unpack(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(
		cd, "mytune.sid") {
		t.Errorf("content disposition %q lacks file name", cd)
	}
	if _, _, err := sidfile.Decode(rec.Body.Bytes()); err != nil {
		t.Errorf("response is not a SID file: %v", err)
	}
}

//
func TestValidateEndpoint(t *testing.T) {

	sid := testSID(t)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for _, part := range []string{"original", "converted"} {
		f, err := form.CreateFormFile(part, part+".sid")
		if err != nil {
			t.Fatalf("form: %v", err)
		}
		if _, err := f.Write(sid); err != nil {
			t.Fatalf("form: %v", err)
		}
	}
	form.Close()

	a := testAPI()
	req := httptest.NewRequest("PUT", "/validate?frames=5", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	a.validate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var acc Accuracy
	if err := json.NewDecoder(rec.Body).Decode(&acc); err != nil {
		t.Fatalf("response is not an accuracy report: %v", err)
	}
	if acc.Frames != 5 {
		t.Errorf("frames: got %d, want 5", acc.Frames)
	}
	if math.Abs(acc.Overall-1.0) > 1e-9 {
		t.Errorf("overall: got %f, want 1.0 for identical tunes",
			acc.Overall)
	}
	if a.validations.get() != 1 {
		t.Errorf("validation counter: got %d, want 1", a.validations.get())
	}
}

//
func TestStatusEndpoint(t *testing.T) {

	a := testAPI()
	a.conversions.inc()
	a.conversions.inc()

	req := httptest.NewRequest("GET", "/status", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	a.status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var stat Status
	if err := json.NewDecoder(rec.Body).Decode(&stat); err != nil {
		t.Fatalf("response is not a status: %v", err)
	}
	if stat.Conversions != 2 {
		t.Errorf("conversions: got %d, want 2", stat.Conversions)
	}
}

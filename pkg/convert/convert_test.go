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
	"math"
	"testing"

	"github.com/sf2tools/sf2conv/pkg/c64"
	"github.com/sf2tools/sf2conv/pkg/extract"
	"github.com/sf2tools/sf2conv/pkg/reloc"
	"github.com/sf2tools/sf2conv/pkg/sf2file"
	"github.com/sf2tools/sf2conv/pkg/validate"
)

// testResult builds a small but complete extraction result: one
// three-note sequence, a looping order list on voice 1, one instrument
// and a full wave table.
func testResult(t *testing.T) *extract.Result {

	t.Helper()

	events, _, err := extract.UnpackSequence(
		[]byte{0xa0, 0x30, 0x30, 0x32, 0x7f})
	if err != nil {
		t.Fatalf("cannot unpack test sequence: %v", err)
	}

	wave := make([]byte, tplTableLen)
	for i := range wave {
		wave[i] = byte(0x10 + i)
	}

	return &extract.Result{
		Sequences: []extract.Sequence{{Events: events}},
		OrderLists: [3]extract.OrderList{
			{
				Entries:   []extract.OrderListEntry{{Transpose: 0x80}},
				LoopIndex: 0,
			},
			{LoopIndex: -1},
			{LoopIndex: -1},
		},
		Instruments: []extract.Instrument{
			{AttackDecay: 0x29, SustainRelease: 0xf0, Waveform: 0x11},
		},
		WaveTable: wave,
	}
}

// sourceSID injects the test result into the built-in template and
// packs it into a PSID, i.e. it produces the tune the conversion tests
// feed in.
func sourceSID(t *testing.T) []byte {

	t.Helper()

	f, err := reloc.Inject(BuiltinTemplate(), testResult(t), TemplateLoad)
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	sid, err := SF2ToSID(f.Encode(), "Test Tune", "An Author", "2026")
	if err != nil {
		t.Fatalf("SF2ToSID failed: %v", err)
	}
	return sid
}

//
func TestSIDToSF2Relocates(t *testing.T) {

	out, res, err := SIDToSF2(sourceSID(t), BuiltinTemplate(),
		Options{LoadAddress: 0x2000})
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	if res.Tier != extract.TierSignature {
		t.Errorf("tier: got %v, want signature", res.Tier)
	}
	if res.Player != "sf2driver" {
		t.Errorf("player: got %q, want sf2driver", res.Player)
	}

	f, err := sf2file.Decode(out)
	if err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	if f.Desc.DriverLoad != 0x2000 {
		t.Errorf("driver load: got $%04x, want $2000", f.Desc.DriverLoad)
	}

	descs, err := f.TableDescriptors()
	if err != nil {
		t.Fatalf("table descriptors: %v", err)
	}
	var seq *sf2file.TableDescriptor
	for i := range descs {
		if descs[i].Type == sf2file.TableSequence {
			seq = &descs[i]
			break
		}
	}
	if seq == nil {
		t.Fatal("no sequence descriptor in output")
	}
	if seq.RowCount != 3 || seq.ColumnCount != 1 {
		t.Errorf("sequence dimensions: got %dx%d, want 3x1",
			seq.RowCount, seq.ColumnCount)
	}
	if seq.Address < 0x2000 || seq.Address >= 0x2000+tplSize {
		t.Errorf("sequence address $%04x outside relocated driver",
			seq.Address)
	}
}

// TestConvertedTuneValidates runs the full loop: SID in, SF2 out at a
// different load address, SID again, and an emulation comparison of
// both tunes. A lossless conversion scores a perfect match.
func TestConvertedTuneValidates(t *testing.T) {

	src := sourceSID(t)

	out, _, err := SIDToSF2(src, BuiltinTemplate(),
		Options{LoadAddress: 0x2000})
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	converted, err := SF2ToSID(out, "Converted", "", "")
	if err != nil {
		t.Fatalf("SF2ToSID failed: %v", err)
	}

	rep, err := validate.Validate(src, converted, 10)
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}
	if math.Abs(rep.Overall-1.0) > 1e-9 {
		t.Errorf("overall accuracy: got %f, want 1.0", rep.Overall)
	}
	if rep.FrameAccuracy != 1.0 {
		t.Errorf("frame accuracy: got %f, want 1.0", rep.FrameAccuracy)
	}
}

// The entry stubs of an injected driver must jump to the relocated
// routine addresses, not to wherever the template's stub bytes pointed.
func TestInjectRegeneratesStubs(t *testing.T) {

	out, err := reloc.Inject(BuiltinTemplate(), testResult(t), 0x4000)
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	tpl, err := BuiltinTemplate().AddressTable()
	if err != nil {
		t.Fatalf("template address table: %v", err)
	}
	delta := uint16(0x4000 - TemplateLoad)

	table, err := out.AddressTable()
	if err != nil {
		t.Fatalf("address table: %v", err)
	}
	if table.Init != tpl.Init+delta || table.Play != tpl.Play+delta ||
		table.Stop != tpl.Stop+delta {
		t.Errorf("address table %+v not rebased by $%04x from %+v",
			table, delta, tpl)
	}

	payload := out.Driver.Payload()
	for _, s := range []struct {
		name   string
		off    int
		target uint16
	}{
		{"init", sf2file.StubInit, table.Init},
		{"play", sf2file.StubPlay, table.Play},
		{"stop", sf2file.StubStop, table.Stop},
	} {
		if payload[s.off] != sf2file.OpJMP {
			t.Errorf("%s stub opcode $%02x, want JMP", s.name, payload[s.off])
			continue
		}
		if got := c64.Word(payload, s.off+1); got != s.target {
			t.Errorf("%s stub jumps to $%04x, want $%04x",
				s.name, got, s.target)
		}
	}
}

// Order list rows must actually sit at the stride the descriptor
// declares, and the voice pointers must agree with it.
func TestInjectOrderListLayout(t *testing.T) {

	out, err := reloc.Inject(BuiltinTemplate(), testResult(t), 0x4000)
	if err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	descs, err := out.TableDescriptors()
	if err != nil {
		t.Fatalf("table descriptors: %v", err)
	}
	var ol *sf2file.TableDescriptor
	for i := range descs {
		if descs[i].Type == sf2file.TableOrderList {
			ol = &descs[i]
			break
		}
	}
	if ol == nil {
		t.Fatal("no order list descriptor in output")
	}

	payload := out.Driver.Payload()
	stride := int(ol.ColumnCount)
	want := testResult(t)

	for v := 0; v < 3; v++ {
		addr := ol.Address + uint16(v*stride)
		if ptr := c64.Word(payload, sf2file.PtrOrderListV0+2*v); ptr != addr {
			t.Errorf("voice %d pointer $%04x, want $%04x", v, ptr, addr)
		}

		off := int(addr - out.Driver.Load)
		list, _, err := extract.UnpackOrderList(payload[off : off+stride])
		if err != nil {
			t.Fatalf("voice %d row does not unpack: %v", v, err)
		}
		if len(list.Entries) != len(want.OrderLists[v].Entries) ||
			list.LoopIndex != want.OrderLists[v].LoopIndex {
			t.Errorf("voice %d row %+v, want %+v",
				v, list, want.OrderLists[v])
		}
	}
}

//
func TestSIDToSF2RejectsGarbage(t *testing.T) {
	if _, _, err := SIDToSF2([]byte("not a sid file at all"),
		BuiltinTemplate(), Options{}); err == nil {
		t.Error("garbage input accepted")
	}
}

//
func TestBuiltinTemplateShape(t *testing.T) {

	f, err := sf2file.Decode(BuiltinTemplate().Encode())
	if err != nil {
		t.Fatalf("template does not survive a decode: %v", err)
	}

	table, err := f.AddressTable()
	if err != nil {
		t.Fatalf("address table: %v", err)
	}
	if table.Init != TemplateLoad+tplInit {
		t.Errorf("init: got $%04x, want $%04x",
			table.Init, TemplateLoad+tplInit)
	}

	descs, err := f.TableDescriptors()
	if err != nil {
		t.Fatalf("table descriptors: %v", err)
	}
	if len(descs) != 6 {
		t.Errorf("descriptor count: got %d, want 6", len(descs))
	}
	if f.Desc.DriverSize != tplSize {
		t.Errorf("driver size: got %d, want %d", f.Desc.DriverSize, tplSize)
	}
}

//
func TestBatchKeepsOrder(t *testing.T) {

	src := sourceSID(t)
	jobs := []Job{
		{Name: "a.sid", Data: src},
		{Name: "b.sid", Data: []byte("garbage")},
		{Name: "c.sid", Data: src},
	}

	outcomes := Batch(context.Background(), jobs, 2,
		BuiltinTemplate(), Options{})

	if len(outcomes) != len(jobs) {
		t.Fatalf("outcome count: got %d, want %d", len(outcomes), len(jobs))
	}
	for i, o := range outcomes {
		if o.Name != jobs[i].Name {
			t.Errorf("outcome %d: got %q, want %q", i, o.Name, jobs[i].Name)
		}
	}
	if outcomes[0].Err != nil || outcomes[0].Output == nil {
		t.Errorf("job a: err %v, output %d bytes",
			outcomes[0].Err, len(outcomes[0].Output))
	}
	if outcomes[1].Err == nil {
		t.Error("garbage job succeeded")
	}
	if outcomes[2].Err != nil || outcomes[2].Output == nil {
		t.Errorf("job c: err %v, output %d bytes",
			outcomes[2].Err, len(outcomes[2].Output))
	}
}

// A cancelled context must never leave an outcome in a half-finished
// state: every job either carries a result or the context error.
func TestBatchCancelled(t *testing.T) {

	src := sourceSID(t)
	jobs := make([]Job, 16)
	for i := range jobs {
		jobs[i] = Job{Name: "t.sid", Data: src}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i, o := range Batch(ctx, jobs, 2, BuiltinTemplate(), Options{}) {
		if o.Err == nil && o.Output == nil {
			t.Errorf("job %d has neither output nor error", i)
		}
		if o.Err != nil && o.Err != context.Canceled {
			t.Errorf("job %d: unexpected error %v", i, o.Err)
		}
	}
}

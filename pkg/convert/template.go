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
	"fmt"
	"io/ioutil"

	"github.com/sf2tools/sf2conv/pkg/c64"
	"github.com/sf2tools/sf2conv/pkg/sf2file"
)

// TemplateLoad is the load address of the built-in driver template.
const TemplateLoad = 0x1000

/*
	Layout of the built-in driver image, relative to its load address.
	The entry stubs and the pointer table sit at the fixed offsets the
	driver convention dictates; behind them come a small player and the
	table regions that injection fills.
*/
const (
	tplInit = 0x1e
	tplPlay = 0x2d
	tplStop = 0x3b

	tplOrderLists  = 0x50 // 3 rows of tplOrderListCols
	tplSequences   = 0xb0
	tplInstruments = 0x1b0
	tplWave        = 0x1f0
	tplPulse       = 0x210
	tplFilter      = 0x230

	tplOrderListCols = 0x20
	tplSequenceCap   = 0x100
	tplTableLen      = 0x20

	tplSize = 0x250

	zpCounter = 0xfd
)

// LoadTemplate reads a driver template from an SF2 file on disk.
func LoadTemplate(path string) (*sf2file.File, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read driver template: %v", err)
	}
	return sf2file.Decode(data)
}

/*
	BuiltinTemplate assembles the minimal driver shipped with the
	converter. Its player keeps a frame counter in zero page and feeds
	voice 1 from the wave table, which is enough for injected tunes to
	produce a deterministic register trace. The table regions are sized
	for small to medium tunes; larger tunes need an external template.
*/
func BuiltinTemplate() *sf2file.File {

	img, err := c64.NewMemoryImage(TemplateLoad, assembleDriver())
	if err != nil {
		panic(fmt.Sprintf("built-in driver template is broken: %v", err))
	}

	f := &sf2file.File{
		LoadAddress: TemplateLoad,
		Driver:      img,
	}

	f.SetDescriptor(sf2file.Descriptor{
		Version:     1,
		DriverLoad:  TemplateLoad,
		DriverSize:  tplSize,
		MusicOffset: tplSize,
	})

	table := &sf2file.AddressTable{
		Init: TemplateLoad + tplInit,
		Play: TemplateLoad + tplPlay,
		Stop: TemplateLoad + tplStop,
	}
	for i := range table.Internal {
		table.Internal[i] = TemplateLoad
	}
	f.SetAddressTable(table)

	f.SetTableDescriptors([]sf2file.TableDescriptor{
		{
			Type: sf2file.TableOrderList, Name: "Order List",
			Layout:  sf2file.RowMajor,
			Address: TemplateLoad + tplOrderLists,
			ColumnCount: tplOrderListCols, RowCount: 3, VisibleRows: 16,
		},
		{
			Type: sf2file.TableSequence, Name: "Sequences",
			Layout:  sf2file.RowMajor,
			Address: TemplateLoad + tplSequences,
			ColumnCount: tplSequenceCap, RowCount: 1, VisibleRows: 16,
		},
		{
			Type: sf2file.TableInstrument, Name: "Instruments",
			Layout:  sf2file.RowMajor,
			Address: TemplateLoad + tplInstruments,
			ColumnCount: 8, RowCount: 8, VisibleRows: 8,
		},
		{
			Type: sf2file.TableWave, Name: "Wave",
			Layout:  sf2file.ColumnMajor,
			Address: TemplateLoad + tplWave,
			ColumnCount: 1, RowCount: tplTableLen, VisibleRows: 16,
		},
		{
			Type: sf2file.TablePulse, Name: "Pulse",
			Layout:  sf2file.ColumnMajor,
			Address: TemplateLoad + tplPulse,
			ColumnCount: 1, RowCount: tplTableLen, VisibleRows: 16,
		},
		{
			Type: sf2file.TableFilter, Name: "Filter",
			Layout:  sf2file.ColumnMajor,
			Address: TemplateLoad + tplFilter,
			ColumnCount: 1, RowCount: tplTableLen, VisibleRows: 16,
		},
	})

	return f
}

//
func assembleDriver() []byte {

	d := make([]byte, tplSize)

	stub := func(off int, target uint16) {
		d[off] = sf2file.OpJMP
		c64.PutWord(d, off+1, target)
	}
	stub(sf2file.StubInit, TemplateLoad+tplInit)
	stub(sf2file.StubPlay, TemplateLoad+tplPlay)
	stub(sf2file.StubStop, TemplateLoad+tplStop)

	ptr := func(off int, target uint16) {
		c64.PutWord(d, off, target)
	}
	ptr(sf2file.PtrOrderListV0, TemplateLoad+tplOrderLists)
	ptr(sf2file.PtrOrderListV1, TemplateLoad+tplOrderLists+tplOrderListCols)
	ptr(sf2file.PtrOrderListV2, TemplateLoad+tplOrderLists+2*tplOrderListCols)
	ptr(sf2file.PtrSequences, TemplateLoad+tplSequences)
	d[sf2file.SequenceCount] = 0
	ptr(sf2file.PtrInstruments, TemplateLoad+tplInstruments)
	d[sf2file.InstrumentCnt] = 0
	ptr(sf2file.PtrWave, TemplateLoad+tplWave)
	d[sf2file.WaveLen] = tplTableLen
	ptr(sf2file.PtrPulse, TemplateLoad+tplPulse)
	d[sf2file.PulseLen] = 0
	ptr(sf2file.PtrFilter, TemplateLoad+tplFilter)
	d[sf2file.FilterLen] = 0

	code := []byte{
		// init: reset the counter, open the filter, gate voice 1
		0xa9, 0x00, // LDA #$00
		0x85, zpCounter, // STA zpCounter
		0xa9, 0x0f, // LDA #$0f
		0x8d, 0x18, 0xd4, // STA $d418
		0xa9, 0x11, // LDA #$11
		0x8d, 0x04, 0xd4, // STA $d404
		0x60, // RTS

		// play: step the counter, fetch the wave entry, set the pitch
		0xe6, zpCounter, // INC zpCounter
		0xa5, zpCounter, // LDA zpCounter
		0x29, 0x1f, // AND #$1f
		0xaa,       // TAX
		0xbd, 0x00, 0x00, // LDA wave,X (patched below)
		0x8d, 0x01, 0xd4, // STA $d401
		0x60, // RTS

		// stop: volume off
		0xa9, 0x00, // LDA #$00
		0x8d, 0x18, 0xd4, // STA $d418
		0x60, // RTS
	}
	copy(d[tplInit:], code)
	c64.PutWord(d, tplInit+len(code)-12, TemplateLoad+tplWave)

	// pad up to the first table region with NOPs so the relocation
	// scanner can walk the whole code extent
	for i := tplInit + len(code); i < tplOrderLists; i++ {
		d[i] = 0xea
	}

	// default wave table: a rising pitch ramp
	for i := 0; i < tplTableLen; i++ {
		d[tplWave+i] = byte(0x10 + i)
	}

	return d
}

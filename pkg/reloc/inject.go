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

package reloc

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sf2tools/sf2conv/pkg/c64"
	"github.com/sf2tools/sf2conv/pkg/extract"
	"github.com/sf2tools/sf2conv/pkg/sf2file"
)

// region is one writable table area of the driver template, taken
// from its table descriptors. Extent is capacity, not content size.
type region struct {
	addr uint16
	cols int
	rows int
}

//
func (r region) capacity() int {
	return r.cols * r.rows
}

/*
	Inject clones the driver template, overwrites its table regions
	with the extracted music data, refreshes the driver's pointer
	table, relocates the driver code to newLoad and finally regenerates
	the entry-vector stubs from the relocated init/play/stop addresses.

	The stub step must come last and must use the addresses computed
	here. Reusing stub bytes from the template, or bytes extracted from
	source data at the stub's nominal offset, yields a structurally
	valid file that plays silence.
*/
func Inject(template *sf2file.File, res *extract.Result,
	newLoad uint16) (*sf2file.File, error) {

	out := template.Clone()
	img := out.Driver
	oldLoad := img.Load

	regions, err := templateRegions(template)
	if err != nil {
		return nil, err
	}

	descs, err := writeTables(img, regions, res)
	if err != nil {
		return nil, err
	}

	// relocate the code region; everything between the pointer table
	// and the first table region is code
	codeStart := int(sf2file.PtrTableEnd)
	codeEnd := img.Size
	for _, r := range regions {
		if off := int(r.addr - oldLoad); off < codeEnd {
			codeEnd = off
		}
	}
	if codeStart > codeEnd {
		return nil, fmt.Errorf(
			"%w: table region overlaps driver pointer table", ErrUnresolved)
	}

	code := img.Payload()[codeStart:codeEnd]
	entries, err := Scan(code, oldLoad+uint16(codeStart),
		oldLoad, img.End())
	if err != nil {
		return nil, err
	}

	delta := newLoad - oldLoad
	Apply(code, oldLoad+uint16(codeStart), newLoad+uint16(codeStart), entries)

	// the pointer table holds data addresses, not operands; shift it
	// as data
	payload := img.Payload()
	for _, off := range []int{
		sf2file.PtrOrderListV0, sf2file.PtrOrderListV1, sf2file.PtrOrderListV2,
		sf2file.PtrSequences, sf2file.PtrInstruments,
		sf2file.PtrWave, sf2file.PtrPulse, sf2file.PtrFilter,
	} {
		c64.PutWord(payload, off, c64.Word(payload, off)+delta)
	}

	// the split lo/hi sequence pointer table holds absolute stream
	// addresses and moves with the image as well
	seq := regions[sf2file.TableSequence]
	seqTbl := int(seq.addr - oldLoad)
	n := len(res.Sequences)
	for i := 0; i < n; i++ {
		addr := uint16(payload[seqTbl+i]) | uint16(payload[seqTbl+n+i])<<8
		addr += delta
		payload[seqTbl+i] = byte(addr)
		payload[seqTbl+n+i] = byte(addr >> 8)
	}

	// move the image itself
	if delta != 0 {
		data := append([]byte(nil), img.Payload()...)
		moved, err := c64.NewMemoryImage(newLoad, data)
		if err != nil {
			return nil, err
		}
		img = moved
		out.Driver = moved
	}

	// entry addresses: validated template routine addresses shifted by
	// the relocation delta, never read back from stub bytes
	table, err := template.AddressTable()
	if err != nil {
		return nil, err
	}
	table.Rebase(delta)
	for name, addr := range map[string]uint16{
		"init": table.Init, "play": table.Play, "stop": table.Stop,
	} {
		if !img.Contains(addr) {
			return nil, fmt.Errorf(
				"%w: relocated %s routine $%04x outside driver image",
				ErrUnresolved, name, addr)
		}
	}

	writeStub(img, sf2file.StubInit, table.Init)
	writeStub(img, sf2file.StubPlay, table.Play)
	writeStub(img, sf2file.StubStop, table.Stop)

	out.SetAddressTable(table)

	for i := range descs {
		descs[i].Address += delta
	}
	out.SetTableDescriptors(descs)

	out.SetDescriptor(sf2file.Descriptor{
		Version:     template.Desc.Version,
		DriverLoad:  newLoad,
		DriverSize:  uint16(img.Size),
		MusicOffset: template.Desc.MusicOffset,
	})
	out.LoadAddress = newLoad

	log.WithFields(log.Fields{
		"load":        fmt.Sprintf("$%04x", newLoad),
		"delta":       int16(delta),
		"relocations": len(entries),
		"sequences":   len(res.Sequences),
	}).Debug("injection complete")

	return out, nil
}

//
func writeStub(img *c64.MemoryImage, off int, target uint16) {
	base := int(img.Load)
	img.Mem[base+off] = sf2file.OpJMP
	img.PutWord(img.Load+uint16(off)+1, target)
}

// templateRegions indexes the template's table regions by type.
func templateRegions(template *sf2file.File) (map[sf2file.TableType]region, error) {

	descs, err := template.TableDescriptors()
	if err != nil {
		return nil, err
	}

	regions := map[sf2file.TableType]region{}
	for _, d := range descs {
		regions[d.Type] = region{
			addr: d.Address,
			cols: int(d.ColumnCount),
			rows: int(d.RowCount),
		}
	}

	for _, t := range []sf2file.TableType{
		sf2file.TableOrderList, sf2file.TableSequence,
	} {
		if _, ok := regions[t]; !ok {
			return nil, fmt.Errorf(
				"template lacks a table region of type %d", t)
		}
	}
	return regions, nil
}

/*
	writeTables places the extracted data into the template's regions,
	refreshes the driver pointer table accordingly, and returns table
	descriptors sized to the data actually present. The template's own
	descriptor dimensions only bound capacity; they never leak into the
	output file.
*/
func writeTables(img *c64.MemoryImage, regions map[sf2file.TableType]region,
	res *extract.Result) ([]sf2file.TableDescriptor, error) {

	payload := img.Payload()
	load := img.Load
	var descs []sf2file.TableDescriptor

	// order lists, one row per voice; rows are written contiguously at
	// the stride of the widest packed row so the descriptor's column
	// count is the actual row pitch
	ol := regions[sf2file.TableOrderList]
	var packed [3][]byte
	maxPacked := 0
	for v := 0; v < 3; v++ {
		packed[v] = extract.PackOrderList(res.OrderLists[v])
		if len(packed[v]) > ol.cols {
			return nil, fmt.Errorf(
				"voice %d order list needs %d bytes, region rows hold %d",
				v, len(packed[v]), ol.cols)
		}
		if len(packed[v]) > maxPacked {
			maxPacked = len(packed[v])
		}
	}
	for v := 0; v < 3; v++ {
		off := int(ol.addr-load) + v*maxPacked
		copy(payload[off:], packed[v])
		// 0xfe end markers pad short rows to the common stride
		for i := len(packed[v]); i < maxPacked; i++ {
			payload[off+i] = 0xfe
		}
		c64.PutWord(payload, sf2file.PtrOrderListV0+2*v,
			ol.addr+uint16(v*maxPacked))
	}
	descs = append(descs, sf2file.TableDescriptor{
		Type:        sf2file.TableOrderList,
		ID:          0,
		Name:        "Order List",
		Layout:      sf2file.RowMajor,
		Address:     ol.addr,
		ColumnCount: uint16(maxPacked),
		RowCount:    3,
		VisibleRows: 16,
	})

	// sequences: split lo/hi pointer table, then the packed streams
	seq := regions[sf2file.TableSequence]
	n := len(res.Sequences)
	if n > 0xff {
		return nil, fmt.Errorf("%d sequences exceed the driver's limit", n)
	}
	pos := int(seq.addr-load) + 2*n
	for i := range res.Sequences {
		packed, err := extract.PackSequence(res.Sequences[i].Events)
		if err != nil {
			return nil, fmt.Errorf("sequence %d: %v", i, err)
		}
		if pos+len(packed) > int(seq.addr-load)+seq.capacity() {
			return nil, fmt.Errorf(
				"sequence data overflows region of %d bytes", seq.capacity())
		}
		addr := load + uint16(pos)
		copy(payload[pos:], packed)
		payload[int(seq.addr-load)+i] = byte(addr)
		payload[int(seq.addr-load)+n+i] = byte(addr >> 8)
		pos += len(packed)

		descs = append(descs, sf2file.TableDescriptor{
			Type:        sf2file.TableSequence,
			ID:          byte(i),
			Name:        fmt.Sprintf("Sequence %02X", i),
			Layout:      sf2file.RowMajor,
			Address:     addr,
			ColumnCount: 1,
			RowCount:    uint16(len(res.Sequences[i].Events)),
			VisibleRows: 16,
		})
	}
	c64.PutWord(payload, sf2file.PtrSequences, seq.addr)
	payload[sf2file.SequenceCount] = byte(n)

	// instruments
	if r, ok := regions[sf2file.TableInstrument]; ok {
		if len(res.Instruments)*extract.InstrumentSize > r.capacity() {
			return nil, fmt.Errorf(
				"%d instruments overflow region of %d bytes",
				len(res.Instruments), r.capacity())
		}
		off := int(r.addr - load)
		for i, inst := range res.Instruments {
			copy(payload[off+i*extract.InstrumentSize:], inst.Encode())
		}
		c64.PutWord(payload, sf2file.PtrInstruments, r.addr)
		payload[sf2file.InstrumentCnt] = byte(len(res.Instruments))
		descs = append(descs, sf2file.TableDescriptor{
			Type:        sf2file.TableInstrument,
			ID:          0,
			Name:        "Instruments",
			Layout:      sf2file.RowMajor,
			Address:     r.addr,
			ColumnCount: extract.InstrumentSize,
			RowCount:    uint16(len(res.Instruments)),
			VisibleRows: 8,
		})
	}

	raw := []struct {
		typ     sf2file.TableType
		name    string
		data    []byte
		ptr     int
		lenByte int
	}{
		{sf2file.TableWave, "Wave", res.WaveTable, sf2file.PtrWave, sf2file.WaveLen},
		{sf2file.TablePulse, "Pulse", res.PulseTable, sf2file.PtrPulse, sf2file.PulseLen},
		{sf2file.TableFilter, "Filter", res.FilterTable, sf2file.PtrFilter, sf2file.FilterLen},
	}
	for _, t := range raw {
		r, ok := regions[t.typ]
		if !ok || len(t.data) == 0 {
			continue
		}
		if len(t.data) > r.capacity() || len(t.data) > 0xff {
			return nil, fmt.Errorf("%s table of %d bytes overflows region",
				t.name, len(t.data))
		}
		copy(payload[int(r.addr-load):], t.data)
		c64.PutWord(payload, t.ptr, r.addr)
		payload[t.lenByte] = byte(len(t.data))
		descs = append(descs, sf2file.TableDescriptor{
			Type:        t.typ,
			ID:          0,
			Name:        t.name,
			Layout:      sf2file.ColumnMajor,
			Address:     r.addr,
			ColumnCount: 1,
			RowCount:    uint16(len(t.data)),
			VisibleRows: 16,
		})
	}

	return descs, nil
}

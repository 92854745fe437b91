// Copyright (C) 2025, csx2dif developers
//
// This file is part of csx2dif program.
//
// csx2dif is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// csx2dif is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with csx2dif.  If not, see <https://www.gnu.org/licenses/>.

// wirewriter
package main

import (
	"encoding/binary"
	"math"
)

// Append-only little-endian byte writer backing DIF serialization. The total
// output size isn't known upfront (emit strings, material names), so unlike a
// fixed-capacity buffer this one grows. There is no Seek - every DIF section
// is written strictly in order.
type WireWriter struct {
	data []byte
}

func CreateWireWriter() *WireWriter {
	result := new(WireWriter)
	result.data = make([]byte, 0, 4096)
	return result
}

func (w *WireWriter) Bytes() []byte {
	return w.data
}

func (w *WireWriter) PutU8(v uint8) {
	w.data = append(w.data, v)
}

func (w *WireWriter) PutBytes(p []byte) {
	w.data = append(w.data, p...)
}

func (w *WireWriter) PutU16(v uint16) {
	w.data = binary.LittleEndian.AppendUint16(w.data, v)
}

func (w *WireWriter) PutU32(v uint32) {
	w.data = binary.LittleEndian.AppendUint32(w.data, v)
}

func (w *WireWriter) PutF32(v float32) {
	w.data = binary.LittleEndian.AppendUint32(w.data, math.Float32bits(v))
}

func (w *WireWriter) PutPoint(p *Point3F) {
	w.PutF32(p[0])
	w.PutF32(p[1])
	w.PutF32(p[2])
}

func (w *WireWriter) PutPlane(p *PlaneF) {
	w.PutPoint(&p.Normal)
	w.PutF32(p.Distance)
}

func (w *WireWriter) PutBox(b *BoxF) {
	w.PutPoint(&b.Min)
	w.PutPoint(&b.Max)
}

func (w *WireWriter) PutSphere(s *SphereF) {
	w.PutPoint(&s.Origin)
	w.PutF32(s.Radius)
}

func (w *WireWriter) PutColor(c ColorI) {
	w.data = append(w.data, c.R, c.G, c.B, c.A)
}

// PutString writes a u8 length prefix then the bytes. Longer strings are
// truncated - the format has no escape for them.
func (w *WireWriter) PutString(s string) {
	if len(s) > 255 {
		s = s[:255]
	}
	w.PutU8(uint8(len(s)))
	w.data = append(w.data, s...)
}

// PutDict writes a property bag: pair count then key/value strings in input
// order.
func (w *WireWriter) PutDict(d Dictionary) {
	w.PutU32(uint32(len(d)))
	for _, e := range d {
		w.PutString(e.Key)
		w.PutString(e.Value)
	}
}

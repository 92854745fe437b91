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

// CSX document model. CSX is the XML scene format saved by Torque
// Constructor: a ConstructorScene wrapping detail levels, each detail level
// an InteriorMap with an entity list and a brush list. Numeric vectors are
// stored as space-separated attribute strings, hence the pile of
// UnmarshalXMLAttr implementations below. Brushes are accepted exactly as
// authored - no validity checking, no CSG evaluation.
package main

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type ConstructorScene struct {
	XMLName      xml.Name      `xml:"ConstructorScene"`
	Version      int           `xml:"version,attr"`
	Creator      string        `xml:"creator,attr"`
	DetailLevels []DetailLevel `xml:"DetailLevels>DetailLevel"`
}

type DetailLevel struct {
	InteriorMap InteriorMap `xml:"InteriorMap"`
}

type InteriorMap struct {
	BrushScale        uint32    `xml:"brushScale,attr"`
	LightScale        uint32    `xml:"lightScale,attr"`
	AmbientColor      AttrPoint `xml:"ambientColor,attr"`
	AmbientColorEmerg AttrPoint `xml:"ambientColorEmerg,attr"`
	Entities          []Entity  `xml:"Entities>Entity"`
	Brushes           []Brush   `xml:"Brushes>Brush"`
}

type Entity struct {
	ID         int32        `xml:"id,attr"`
	Classname  string       `xml:"classname,attr"`
	GameType   string       `xml:"gametype,attr"`
	Origin     OptAttrPoint `xml:"origin,attr"`
	Properties Dictionary   `xml:"Properties"`
}

type Brush struct {
	ID        int32      `xml:"id,attr"`
	Owner     int32      `xml:"owner,attr"`
	Type      int32      `xml:"type,attr"`
	Transform AttrMatrix `xml:"transform,attr"`
	Vertices  []Vertex   `xml:"Vertices>Vertex"`
	Faces     []Face     `xml:"Face"`
}

type Vertex struct {
	Pos AttrPoint `xml:"pos,attr"`
}

type Face struct {
	ID       int32       `xml:"id,attr"`
	Plane    AttrPlane   `xml:"plane,attr"`
	Material string      `xml:"material,attr"`
	TexGens  TexGen      `xml:"texgens,attr"`
	TexDiv   AttrIntList `xml:"texDiv,attr"`
	Indices  Indices     `xml:"Indices"`
	// FaceID is assigned sequentially across the whole document during
	// preprocessing; it survives clipping, unlike the authored ID.
	FaceID int32 `xml:"-"`
}

type Indices struct {
	Indices AttrIntList `xml:"indices,attr"`
}

// TexGen is the raw texture-generation attribute: two texture-axis planes, a
// rotation in degrees and a two-component scale. Preprocessing folds the
// rotation/scale/texDiv into the planes; the assembler then passes the planes
// through opaquely.
type TexGen struct {
	PlaneX PlaneF
	PlaneY PlaneF
	Rot    float32
	Scale  [2]float32
}

type TexGenEq struct {
	PlaneX PlaneF
	PlaneY PlaneF
}

// Dictionary is an ordered key/value bag - entity properties must keep their
// input order so output stays byte-identical run to run.
type Dictionary []DictEntry

type DictEntry struct {
	Key   string
	Value string
}

func (d Dictionary) Get(key string) (string, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

func (d Dictionary) GetOr(key, fallback string) string {
	if v, ok := d.Get(key); ok {
		return v
	}
	return fallback
}

func (d Dictionary) GetUint(key string, fallback uint32) uint32 {
	v, ok := d.Get(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return fallback
	}
	return uint32(n)
}

// Without returns a copy with the named keys removed, preserving order.
func (d Dictionary) Without(keys ...string) Dictionary {
	out := make(Dictionary, 0, len(d))
outer:
	for _, e := range d {
		for _, k := range keys {
			if e.Key == k {
				continue outer
			}
		}
		out = append(out, e)
	}
	return out
}

// Properties come in as attributes of the <Properties> element.
func (d *Dictionary) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	out := make(Dictionary, 0, len(start.Attr))
	for _, a := range start.Attr {
		out = append(out, DictEntry{Key: a.Name.Local, Value: a.Value})
	}
	*d = out
	return dec.Skip()
}

type AttrPoint Point3F

func (p *AttrPoint) UnmarshalXMLAttr(attr xml.Attr) error {
	f, err := splitFloats(attr.Value, 3)
	if err != nil {
		return errors.Wrapf(err, "attribute %s", attr.Name.Local)
	}
	*p = AttrPoint{f[0], f[1], f[2]}
	return nil
}

func (p AttrPoint) Point() Point3F {
	return Point3F(p)
}

// OptAttrPoint is for attributes that may be absent or empty (entity origin).
type OptAttrPoint struct {
	Point Point3F
	Valid bool
}

func (p *OptAttrPoint) UnmarshalXMLAttr(attr xml.Attr) error {
	if strings.TrimSpace(attr.Value) == "" {
		p.Valid = false
		return nil
	}
	f, err := splitFloats(attr.Value, 3)
	if err != nil {
		return errors.Wrapf(err, "attribute %s", attr.Name.Local)
	}
	p.Point = Point3F{f[0], f[1], f[2]}
	p.Valid = true
	return nil
}

type AttrPlane PlaneF

func (p *AttrPlane) UnmarshalXMLAttr(attr xml.Attr) error {
	f, err := splitFloats(attr.Value, 4)
	if err != nil {
		return errors.Wrapf(err, "attribute %s", attr.Name.Local)
	}
	*p = AttrPlane{Normal: Point3F{f[0], f[1], f[2]}, Distance: f[3]}
	return nil
}

func (p AttrPlane) Plane() PlaneF {
	return PlaneF(p)
}

// AttrMatrix holds the brush transform: 16 floats in row-major order as
// written by Constructor.
type AttrMatrix [16]float32

func (m *AttrMatrix) UnmarshalXMLAttr(attr xml.Attr) error {
	f, err := splitFloats(attr.Value, 16)
	if err != nil {
		return errors.Wrapf(err, "attribute %s", attr.Name.Local)
	}
	copy(m[:], f)
	return nil
}

type AttrIntList []int32

func (l *AttrIntList) UnmarshalXMLAttr(attr xml.Attr) error {
	fields := strings.Fields(attr.Value)
	out := make([]int32, 0, len(fields))
	for _, fld := range fields {
		n, err := strconv.ParseInt(fld, 10, 32)
		if err != nil {
			return errors.Wrapf(err, "attribute %s", attr.Name.Local)
		}
		out = append(out, int32(n))
	}
	*l = out
	return nil
}

func (t *TexGen) UnmarshalXMLAttr(attr xml.Attr) error {
	f, err := splitFloats(attr.Value, 11)
	if err != nil {
		return errors.Wrapf(err, "attribute %s", attr.Name.Local)
	}
	t.PlaneX = PlaneF{Normal: Point3F{f[0], f[1], f[2]}, Distance: f[3]}
	t.PlaneY = PlaneF{Normal: Point3F{f[4], f[5], f[6]}, Distance: f[7]}
	t.Rot = f[8]
	t.Scale = [2]float32{f[9], f[10]}
	return nil
}

func splitFloats(s string, want int) ([]float32, error) {
	fields := strings.Fields(s)
	if len(fields) < want {
		return nil, errors.Errorf("expected %d numbers, got %d", want, len(fields))
	}
	out := make([]float32, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, errors.Wrapf(err, "number %d", i)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// ParseCSX decodes a CSX document. Any XML or numeric syntax error is the
// fatal MalformedInput condition - there is no partial recovery at the
// document level.
func ParseCSX(text string) (*ConstructorScene, error) {
	var scene ConstructorScene
	if err := xml.Unmarshal([]byte(text), &scene); err != nil {
		return nil, errors.Wrap(ErrMalformedInput, err.Error())
	}
	if len(scene.DetailLevels) == 0 {
		return nil, errors.Wrap(ErrMalformedInput, "document has no detail levels")
	}
	return &scene, nil
}

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
package main

import (
	"errors"
	"testing"
)

func TestParseCube(t *testing.T) {
	scene, err := ParseCSX(cubeCSX)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if scene.Version != 4 {
		t.Errorf("scene version %d, want 4", scene.Version)
	}
	if len(scene.DetailLevels) != 1 {
		t.Fatalf("detail levels %d, want 1", len(scene.DetailLevels))
	}
	im := &scene.DetailLevels[0].InteriorMap
	if im.BrushScale != 32 {
		t.Errorf("brush scale %d, want 32", im.BrushScale)
	}
	if im.LightScale != 8 {
		t.Errorf("light scale %d, want 8", im.LightScale)
	}
	if len(im.Entities) != 1 || im.Entities[0].Classname != "worldspawn" {
		t.Error("worldspawn entity missing")
	}
	if im.Entities[0].Origin.Valid {
		t.Error("empty origin attribute must parse as absent")
	}
	if len(im.Brushes) != 1 {
		t.Fatalf("brushes %d, want 1", len(im.Brushes))
	}
	b := &im.Brushes[0]
	if len(b.Vertices) != 8 {
		t.Errorf("vertices %d, want 8", len(b.Vertices))
	}
	if len(b.Faces) != 6 {
		t.Fatalf("faces %d, want 6", len(b.Faces))
	}

	f := &b.Faces[0]
	if f.Plane.Normal != (Point3F{0, 0, -1}) || f.Plane.Distance != -1 {
		t.Errorf("face 0 plane %+v, want (0 0 -1) -1", f.Plane)
	}
	if f.Material != "test/floor" {
		t.Errorf("face 0 material %q", f.Material)
	}
	if len(f.Indices.Indices) != 4 || f.Indices.Indices[1] != 3 {
		t.Errorf("face 0 indices %v, want [0 3 2 1]", f.Indices.Indices)
	}
	if f.TexGens.PlaneX.Normal != (Point3F{1, 0, 0}) {
		t.Errorf("face 0 texgen planeX %+v", f.TexGens.PlaneX)
	}
	if f.TexGens.Scale != [2]float32{1, 1} {
		t.Errorf("face 0 texgen scale %v, want [1 1]", f.TexGens.Scale)
	}
	if len(f.TexDiv) != 2 || f.TexDiv[0] != 32 {
		t.Errorf("face 0 texDiv %v, want [32 32]", f.TexDiv)
	}

	if b.Transform[0] != 1 || b.Transform[5] != 1 || b.Transform[15] != 1 {
		t.Errorf("identity transform not parsed: %v", b.Transform)
	}
}

func TestParseRejectsBrokenXML(t *testing.T) {
	if _, err := ParseCSX("<ConstructorScene><unclosed"); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}

func TestParseRejectsEmptyScene(t *testing.T) {
	doc := `<ConstructorScene version="4"><DetailLevels></DetailLevels></ConstructorScene>`
	if _, err := ParseCSX(doc); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput for empty scene, got %v", err)
	}
}

func TestParseRejectsBadNumbers(t *testing.T) {
	doc := `<ConstructorScene version="4">
 <DetailLevels><DetailLevel><InteriorMap brushScale="32">
  <Brushes><Brush id="0" transform="1 0 0 bogus">
  </Brush></Brushes>
 </InteriorMap></DetailLevel></DetailLevels>
</ConstructorScene>`
	if _, err := ParseCSX(doc); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput for bad transform, got %v", err)
	}
}

func TestDictionaryKeepsOrder(t *testing.T) {
	d := Dictionary{
		{Key: "b", Value: "2"},
		{Key: "a", Value: "1"},
		{Key: "c", Value: "3"},
	}
	if v, ok := d.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}
	if v := d.GetOr("missing", "fallback"); v != "fallback" {
		t.Errorf("GetOr fallback = %q", v)
	}
	if n := d.GetUint("b", 0); n != 2 {
		t.Errorf("GetUint(b) = %d", n)
	}
	if n := d.GetUint("a", 9); n != 1 {
		t.Errorf("GetUint(a) = %d", n)
	}

	out := d.Without("a")
	if len(out) != 2 || out[0].Key != "b" || out[1].Key != "c" {
		t.Errorf("Without(a) = %v, order must survive", out)
	}
	if len(d) != 3 {
		t.Error("Without must not mutate the receiver")
	}
}

// Preprocessing on the identity transform must refit planes that agree with
// the authored facing and keep all faces.
func TestPreprocessCube(t *testing.T) {
	scene, err := ParseCSX(cubeCSX)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	warnings := PreprocessScene(scene, 1e-6)
	if len(warnings) != 0 {
		t.Fatalf("warnings %v, want none", warnings)
	}
	b := &scene.DetailLevels[0].InteriorMap.Brushes[0]
	if len(b.Faces) != 6 {
		t.Fatalf("faces %d after preprocessing, want 6", len(b.Faces))
	}
	for i := range b.Faces {
		f := &b.Faces[i]
		if f.FaceID != int32(i) {
			t.Errorf("face %d got id %d, want sequential", i, f.FaceID)
		}
		// Every vertex of the face must lie on the refit plane.
		plane := f.Plane.Plane()
		for _, idx := range f.Indices.Indices {
			p := b.Vertices[idx].Pos.Point()
			if d := plane.DistToPoint(&p); d > 1e-5 || d < -1e-5 {
				t.Errorf("face %d vertex %d off plane by %g", i, idx, d)
			}
		}
	}
}

func TestPreprocessDropsDegenerateFace(t *testing.T) {
	doc := `<ConstructorScene version="4">
 <DetailLevels><DetailLevel><InteriorMap brushScale="32">
  <Brushes>
   <Brush id="0" transform="1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1">
    <Vertices>
     <Vertex pos="0 0 0" />
     <Vertex pos="1 0 0" />
     <Vertex pos="2 0 0" />
    </Vertices>
    <Face id="0" plane="0 0 1 0" material="m" texgens="1 0 0 0 0 1 0 0 0 1 1" texDiv="32 32">
     <Indices indices="0 1 2" />
    </Face>
   </Brush>
  </Brushes>
 </InteriorMap></DetailLevel></DetailLevels>
</ConstructorScene>`
	scene, err := ParseCSX(doc)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	warnings := PreprocessScene(scene, 1e-6)
	if len(warnings) != 1 {
		t.Fatalf("warnings %d, want 1 for the collinear face", len(warnings))
	}
	if !errors.Is(warnings[0], ErrDegenerateGeometry) {
		t.Errorf("warning %v, want ErrDegenerateGeometry", warnings[0])
	}
	if len(scene.DetailLevels[0].InteriorMap.Brushes[0].Faces) != 0 {
		t.Error("degenerate face must be dropped")
	}
}

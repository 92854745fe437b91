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
	"testing"
)

func buildCube(t *testing.T, mbOnly bool) (*Interior, ConversionReport) {
	t.Helper()
	scene, err := ParseCSX(cubeCSX)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if warnings := PreprocessScene(scene, 1e-6); len(warnings) != 0 {
		t.Fatalf("unexpected preprocess warnings: %v", warnings)
	}
	builder := newDifBuilder(&builderOptions{
		MBOnly:        mbOnly,
		LumelScale:    scene.DetailLevels[0].InteriorMap.LightScale,
		GeometryScale: scene.DetailLevels[0].InteriorMap.BrushScale,
		EpsilonPoint:  1e-6,
		EpsilonPlane:  1e-5,
		BspMethod:     BSP_EXHAUSTIVE,
		Workers:       1,
	}, nil)
	for _, b := range structuralBrushes(&scene.DetailLevels[0].InteriorMap) {
		builder.AddBrush(b)
	}
	return builder.Build()
}

// A cube is the smallest complete interior: every pool count is known exactly.
func TestCubeInteriorPools(t *testing.T) {
	itr, report := buildCube(t, true)

	if len(itr.Points) != 8 {
		t.Errorf("points %d, want 8", len(itr.Points))
	}
	if len(itr.Planes) != 6 {
		t.Errorf("planes %d, want 6", len(itr.Planes))
	}
	if len(itr.Normals) != 6 {
		t.Errorf("normals %d, want 6", len(itr.Normals))
	}
	if len(itr.Surfaces) != 6 {
		t.Errorf("surfaces %d, want 6", len(itr.Surfaces))
	}
	if len(itr.MaterialNames) != 1 {
		t.Errorf("materials %d, want 1", len(itr.MaterialNames))
	}
	if len(itr.ConvexHulls) != 1 {
		t.Errorf("hulls %d, want 1", len(itr.ConvexHulls))
	}
	if len(itr.HullIndices) != 8 {
		t.Errorf("hull indices %d, want 8", len(itr.HullIndices))
	}
	if len(itr.Zones) != 1 || itr.Zones[0].SurfaceCount != 6 {
		t.Errorf("want one zone covering 6 surfaces, got %+v", itr.Zones)
	}
	if len(itr.CoordBins) != 256 {
		t.Errorf("coord bins %d, want 256", len(itr.CoordBins))
	}

	// Six surfaces fit under the leaf threshold: the whole cube is one solid
	// leaf and the tree has no internal node.
	if len(itr.BSPNodes) != 0 {
		t.Errorf("BSP nodes %d, want 0", len(itr.BSPNodes))
	}
	if len(itr.BSPSolidLeaves) != 1 {
		t.Fatalf("solid leaves %d, want 1", len(itr.BSPSolidLeaves))
	}
	if itr.BSPSolidLeaves[0].SurfaceCount != 6 {
		t.Errorf("leaf surface count %d, want 6", itr.BSPSolidLeaves[0].SurfaceCount)
	}
	if len(itr.SolidLeafSurfaces) != 6 {
		t.Errorf("solid leaf surfaces %d, want 6", len(itr.SolidLeafSurfaces))
	}

	if report.Hit != 6 || report.Total != 6 {
		t.Errorf("coverage %d/%d, want 6/6", report.Hit, report.Total)
	}
	if report.BalanceFactor != 0 {
		t.Errorf("balance factor %d, want 0", report.BalanceFactor)
	}
}

func TestCubeSurfaceWindings(t *testing.T) {
	itr, _ := buildCube(t, true)
	for i := range itr.Surfaces {
		s := &itr.Surfaces[i]
		if s.WindingCount != 4 {
			t.Errorf("surface %d winding count %d, want 4", i, s.WindingCount)
		}
		if s.FanMask != 0xf {
			t.Errorf("surface %d fan mask %#x, want 0xf", i, s.FanMask)
		}
		if s.SurfaceFlags&SURFACE_OUTSIDE_VISIBLE == 0 {
			t.Errorf("surface %d not flagged outside-visible", i)
		}
		for j := uint32(0); j < uint32(s.WindingCount); j++ {
			if idx := itr.Indices[s.WindingStart+j]; int(idx) >= len(itr.Points) {
				t.Errorf("surface %d winding index %d out of range", i, idx)
			}
		}
	}
}

func TestCubeBoundingVolumes(t *testing.T) {
	itr, _ := buildCube(t, true)
	for i := 0; i < 3; i++ {
		if itr.BoundingBox.Min[i] != -1 || itr.BoundingBox.Max[i] != 1 {
			t.Fatalf("bounding box axis %d = [%f, %f], want [-1, 1]",
				i, itr.BoundingBox.Min[i], itr.BoundingBox.Max[i])
		}
	}
	if itr.BoundingSphere.Origin != (Point3F{0, 0, 0}) {
		t.Errorf("sphere origin %v, want origin", itr.BoundingSphere.Origin)
	}
}

// The Marble Blast path stubs out the collision sections with one zero entry
// each; the full path fills them in along with lightmap pages.
func TestMarbleBlastPlaceholders(t *testing.T) {
	itr, _ := buildCube(t, true)
	if len(itr.PolyListPlaneIndices) != 1 || itr.PolyListPlaneIndices[0] != 0 {
		t.Errorf("poly list planes %v, want [0]", itr.PolyListPlaneIndices)
	}
	if len(itr.PolyListPointIndices) != 1 || itr.PolyListPointIndices[0] != 0 {
		t.Errorf("poly list points %v, want [0]", itr.PolyListPointIndices)
	}
	if len(itr.PolyListStringCharacters) != 1 {
		t.Errorf("poly list strings %v, want one zero byte", itr.PolyListStringCharacters)
	}
	if len(itr.HullEmitStringIndices) != 1 {
		t.Errorf("emit string indices %v, want [0]", itr.HullEmitStringIndices)
	}
	if len(itr.LightMaps) != 0 {
		t.Errorf("lightmap pages %d, want 0 on the MB path", len(itr.LightMaps))
	}
}

func TestFullPathCollisionAndLightmaps(t *testing.T) {
	itr, report := buildCube(t, false)
	if report.Hit != 6 {
		t.Errorf("coverage hit %d, want 6", report.Hit)
	}

	// One emit string index per hull vertex.
	if len(itr.HullEmitStringIndices) != 8 {
		t.Errorf("emit string indices %d, want 8", len(itr.HullEmitStringIndices))
	}
	if len(itr.ConvexHullEmitStringCharacters) == 0 {
		t.Error("no emit string characters on the full path")
	}
	if len(itr.PolyListStringCharacters) == 0 {
		t.Error("no poly list string on the full path")
	}
	// The cube has 6 planes and 8 points, so the hull's poly list keeps them
	// all without plane-group merging.
	if len(itr.PolyListPlaneIndices) < 6 {
		t.Errorf("poly list planes %d, want at least 6", len(itr.PolyListPlaneIndices))
	}

	if len(itr.LightMaps) == 0 {
		t.Fatal("no lightmap pages on the full path")
	}
	// PNG signature.
	sig := []byte{0x89, 'P', 'N', 'G'}
	for i, b := range sig {
		if itr.LightMaps[0].Data[i] != b {
			t.Fatalf("lightmap page is not a PNG stream")
		}
	}
	if len(itr.NormalLMapIndices) != 6 {
		t.Errorf("lightmap indices %d, want 6", len(itr.NormalLMapIndices))
	}
	for i, s := range itr.Surfaces {
		if s.MapSizeX == 0 || s.MapSizeY == 0 {
			t.Errorf("surface %d has empty lightmap rect", i)
		}
	}
}

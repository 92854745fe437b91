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

// cubeBspSurfs pools the six faces of an axis-aligned cube centered on
// center and returns them as tree input.
func cubeBspSurfs(pools *dedupPools, center Point3F, firstSurface uint32) []bspSurf {
	c := center
	v := [8]Point3F{
		{c[0] - 1, c[1] - 1, c[2] - 1},
		{c[0] + 1, c[1] - 1, c[2] - 1},
		{c[0] + 1, c[1] + 1, c[2] - 1},
		{c[0] - 1, c[1] + 1, c[2] - 1},
		{c[0] - 1, c[1] - 1, c[2] + 1},
		{c[0] + 1, c[1] - 1, c[2] + 1},
		{c[0] + 1, c[1] + 1, c[2] + 1},
		{c[0] - 1, c[1] + 1, c[2] + 1},
	}
	faces := [6][4]int{
		{0, 3, 2, 1}, {4, 5, 6, 7},
		{0, 1, 5, 4}, {2, 3, 7, 6},
		{0, 4, 7, 3}, {1, 2, 6, 5},
	}
	var out []bspSurf
	for fi, f := range faces {
		points := []Point3F{v[f[0]], v[f[1]], v[f[2]], v[f[3]]}
		plane, ok := planeFromPoints(points, 1e-6)
		if !ok {
			panic("cube face is degenerate")
		}
		out = append(out, bspSurf{
			surfaceIndex: firstSurface + uint32(fi),
			planeIndex:   pools.AddPlane(&plane),
			points:       points,
			area:         polygonArea(points),
		})
	}
	return out
}

func newTestPools() *dedupPools {
	return newDedupPools(newInterior(), 1e-6, 1e-5, true)
}

// Six surfaces are under the leaf threshold: the tree must be a single solid
// leaf with zero balance and full coverage.
func TestSmallSetBecomesSingleLeaf(t *testing.T) {
	pools := newTestPools()
	surfs := cubeBspSurfs(pools, Point3F{0, 0, 0}, 0)

	tree := buildBSPTree(surfs, pools, BSP_EXHAUSTIVE, 1, nil)
	if tree.root == nilNode {
		t.Fatal("tree has no root")
	}
	root := &tree.nodes[tree.root]
	if !root.isLeaf() || !root.solid {
		t.Fatal("root is not a solid leaf")
	}
	if len(root.surfaces) != 6 {
		t.Errorf("leaf holds %d surfaces, want 6", len(root.surfaces))
	}
	if tree.BalanceFactor() != 0 {
		t.Errorf("balance factor %d, want 0", tree.BalanceFactor())
	}
	if cov := tree.CoveragePercent(); cov < 99.9 {
		t.Errorf("coverage %.2f%%, want 100%%", cov)
	}
}

func TestNoneStrategySkipsPartitioning(t *testing.T) {
	pools := newTestPools()
	surfs := cubeBspSurfs(pools, Point3F{0, 0, 0}, 0)
	extra := cubeBspSurfs(pools, Point3F{10, 0, 0}, 6)
	surfs = append(surfs, extra...)

	tree := buildBSPTree(surfs, pools, BSP_NONE, 1, nil)
	root := &tree.nodes[tree.root]
	if !root.isLeaf() || len(root.surfaces) != 12 {
		t.Fatalf("BSP_NONE should produce one leaf with all 12 surfaces")
	}
	if cov := tree.CoveragePercent(); cov < 99.9 {
		t.Errorf("coverage %.2f%%, want 100%%", cov)
	}
}

// Twelve surfaces force at least one split; whatever splitter wins, every
// surface must land in a leaf or a coplanar list.
func TestLargerSetSplitsWithFullCoverage(t *testing.T) {
	pools := newTestPools()
	surfs := cubeBspSurfs(pools, Point3F{0, 0, 0}, 0)
	extra := cubeBspSurfs(pools, Point3F{10, 0, 0}, 6)
	surfs = append(surfs, extra...)

	tree := buildBSPTree(surfs, pools, BSP_EXHAUSTIVE, 1, nil)
	root := &tree.nodes[tree.root]
	if root.isLeaf() {
		t.Fatal("12 surfaces should not fit in one leaf")
	}
	if cov := tree.CoveragePercent(); cov < 99.9 {
		t.Errorf("coverage %.2f%%, want 100%%", cov)
	}
	if tree.planesUsed < 1 {
		t.Errorf("planes used %d, want at least 1", tree.planesUsed)
	}
}

func TestExhaustiveAndSamplingAgreeOnSmallSets(t *testing.T) {
	// With fewer distinct planes than the sampling budget the two strategies
	// rate identical candidate lists and must pick the same splitter.
	build := func(method int) *bspTree {
		pools := newTestPools()
		surfs := cubeBspSurfs(pools, Point3F{0, 0, 0}, 0)
		extra := cubeBspSurfs(pools, Point3F{10, 0, 0}, 6)
		return buildBSPTree(append(surfs, extra...), pools, method, 1, nil)
	}
	a := build(BSP_EXHAUSTIVE)
	b := build(BSP_SAMPLING)
	if len(a.nodes) != len(b.nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(a.nodes), len(b.nodes))
	}
	for i := range a.nodes {
		if a.nodes[i].planeIndex != b.nodes[i].planeIndex {
			t.Errorf("node %d splitter differs: %d vs %d",
				i, a.nodes[i].planeIndex, b.nodes[i].planeIndex)
		}
	}
}

func TestScoringIsWorkerCountIndependent(t *testing.T) {
	run := func(workers int) []int32 {
		pools := newTestPools()
		surfs := cubeBspSurfs(pools, Point3F{0, 0, 0}, 0)
		for i := 0; i < 4; i++ {
			extra := cubeBspSurfs(pools, Point3F{float32(10 * (i + 1)), 0, 0},
				uint32(6*(i+1)))
			surfs = append(surfs, extra...)
		}
		tree := buildBSPTree(surfs, pools, BSP_EXHAUSTIVE, workers, nil)
		planes := make([]int32, len(tree.nodes))
		for i := range tree.nodes {
			planes[i] = tree.nodes[i].planeIndex
		}
		return planes
	}
	one := run(1)
	eight := run(8)
	if len(one) != len(eight) {
		t.Fatalf("tree shapes differ: %d vs %d nodes", len(one), len(eight))
	}
	for i := range one {
		if one[i] != eight[i] {
			t.Errorf("node %d differs between worker counts: %d vs %d",
				i, one[i], eight[i])
		}
	}
}

func TestClipWindingSplitsSquare(t *testing.T) {
	// Unit square in the xz plane straddling z=0.
	s := &bspSurf{
		points: []Point3F{
			{-1, 0, -1}, {1, 0, -1}, {1, 0, 1}, {-1, 0, 1},
		},
	}
	s.area = polygonArea(s.points)
	plane := PlaneF{Normal: Point3F{0, 0, 1}, Distance: 0}

	front, ok := clipWinding(s, &plane, true)
	if !ok {
		t.Fatal("front fragment vanished")
	}
	back, ok := clipWinding(s, &plane, false)
	if !ok {
		t.Fatal("back fragment vanished")
	}
	if d := front.area + back.area - s.area; d > 1e-3 || d < -1e-3 {
		t.Errorf("fragment areas %.4f + %.4f do not sum to %.4f",
			front.area, back.area, s.area)
	}
	for i := range front.points {
		if front.points[i][2] < -BSP_EPSILON {
			t.Errorf("front fragment point %v behind the plane", front.points[i])
		}
	}
	for i := range back.points {
		if back.points[i][2] > BSP_EPSILON {
			t.Errorf("back fragment point %v in front of the plane", back.points[i])
		}
	}
}

func TestClipWindingDropsDegenerateFragment(t *testing.T) {
	// Square entirely behind the plane: the front fragment must vanish.
	s := &bspSurf{
		points: []Point3F{
			{-1, 0, -3}, {1, 0, -3}, {1, 0, -1}, {-1, 0, -1},
		},
	}
	plane := PlaneF{Normal: Point3F{0, 0, 1}, Distance: 0}
	if _, ok := clipWinding(s, &plane, true); ok {
		t.Error("front fragment should have been discarded")
	}
	if _, ok := clipWinding(s, &plane, false); !ok {
		t.Error("back fragment should survive")
	}
}

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

// BSP construction over the interior's surface set. Nodes live in an arena
// and reference each other by index. Each recursion picks a splitting plane
// from the surfaces' own planes, keeps the coplanar surfaces at the internal
// node, clips straddlers into front and back fragments and recurses on the
// two groups. Because the splitter always comes from the set itself, the
// coplanar group is never empty and the set strictly shrinks; the depth cap
// is a safety net, not the usual exit.
package main

import (
	"github.com/chewxy/math32"
)

const (
	// Distance tolerance for front/back/on classification during tree
	// construction. Independent of the pooling epsilons.
	BSP_EPSILON = 1e-4

	// Sets at or below this size become leaves outright. Small rooms end up
	// as a single solid leaf, which raycasts fine and keeps trees shallow.
	MIN_LEAF_SURFACES = 8

	BSP_MAX_DEPTH = 64
)

// bspSurf is one surface (or clipped fragment of one) as the tree builder
// sees it: the winding in world coordinates plus the identity it keeps
// through clipping.
type bspSurf struct {
	surfaceIndex uint32 // index into Interior.Surfaces, survives clipping
	planeIndex   uint16 // plane pool index, flip bit included
	points       []Point3F
	area         float32
}

const nilNode = int32(-1)

type bspTreeNode struct {
	planeIndex int32 // plane pool index at internal nodes, -1 at leaves
	front      int32
	back       int32
	coplanar   []bspSurf // internal nodes: surfaces lying on the plane
	surfaces   []bspSurf // leaves: everything that bottomed out here
	solid      bool
}

func (n *bspTreeNode) isLeaf() bool {
	return n.planeIndex < 0
}

type bspTree struct {
	nodes       []bspTreeNode
	root        int32
	totalArea   float32
	coveredArea float32
	planesUsed  int
}

type bspBuilder struct {
	pools    *dedupPools
	method   int
	workers  int
	progress *progressSink
	tree     *bspTree
	// distinct plane count of the original set, for progress totals
	totalPlanes int
}

// buildBSPTree partitions surfs. Strategy BSP_NONE returns a single leaf
// holding every surface.
func buildBSPTree(surfs []bspSurf, pools *dedupPools, method, workers int,
	progress *progressSink) *bspTree {
	t := &bspTree{root: nilNode}
	for i := range surfs {
		t.totalArea += surfs[i].area
	}
	b := &bspBuilder{
		pools:       pools,
		method:      method,
		workers:     workers,
		progress:    progress,
		tree:        t,
		totalPlanes: len(distinctPlanes(surfs)),
	}
	if method == BSP_NONE {
		t.root = b.emitLeaf(surfs)
		return t
	}
	t.root = b.buildNode(surfs, 0)
	return t
}

func (b *bspBuilder) emitLeaf(surfs []bspSurf) int32 {
	if len(surfs) == 0 {
		return nilNode
	}
	idx := int32(len(b.tree.nodes))
	node := bspTreeNode{planeIndex: -1, front: nilNode, back: nilNode,
		surfaces: surfs, solid: true}
	for i := range surfs {
		b.tree.coveredArea += surfs[i].area
	}
	b.tree.nodes = append(b.tree.nodes, node)
	return idx
}

func (b *bspBuilder) buildNode(surfs []bspSurf, depth int) int32 {
	if len(surfs) == 0 {
		return nilNode
	}
	if len(surfs) <= MIN_LEAF_SURFACES || depth >= BSP_MAX_DEPTH {
		return b.emitLeaf(surfs)
	}

	splitPlane, ok := b.selectSplitter(surfs)
	if !ok {
		return b.emitLeaf(surfs)
	}

	front, back, coplanar := b.partition(surfs, splitPlane)
	if len(coplanar) == 0 {
		// Cannot happen for a candidate drawn from the set; bail to a leaf
		// rather than loop.
		return b.emitLeaf(surfs)
	}

	b.tree.planesUsed++
	b.progress.Report(uint32(b.tree.planesUsed), uint32(b.totalPlanes),
		"Building BSP", "Built BSP")

	idx := int32(len(b.tree.nodes))
	b.tree.nodes = append(b.tree.nodes, bspTreeNode{
		planeIndex: int32(splitPlane),
		front:      nilNode,
		back:       nilNode,
		coplanar:   coplanar,
	})
	for i := range coplanar {
		b.tree.coveredArea += coplanar[i].area
	}

	// Children append to the arena, so store indices after both recursions.
	frontIdx := b.buildNode(front, depth+1)
	backIdx := b.buildNode(back, depth+1)
	b.tree.nodes[idx].front = frontIdx
	b.tree.nodes[idx].back = backIdx
	return idx
}

// partition splits surfs against the pooled plane. Straddlers are clipped
// into a fragment per side; fragments that degenerate below three points are
// discarded.
func (b *bspBuilder) partition(surfs []bspSurf, planeIndex uint16) (front, back, coplanar []bspSurf) {
	plane := b.pools.poolPlane(planeIndex)
	for i := range surfs {
		s := &surfs[i]
		if s.planeIndex&PLANE_INDEX_MASK == planeIndex&PLANE_INDEX_MASK {
			coplanar = append(coplanar, *s)
			continue
		}
		maxd, mind := windingExtent(&plane, s.points)
		switch {
		case maxd <= BSP_EPSILON && mind >= -BSP_EPSILON:
			coplanar = append(coplanar, *s)
		case mind >= -BSP_EPSILON:
			front = append(front, *s)
		case maxd <= BSP_EPSILON:
			back = append(back, *s)
		default:
			if f, ok := clipWinding(s, &plane, true); ok {
				front = append(front, f)
			}
			if bk, ok := clipWinding(s, &plane, false); ok {
				back = append(back, bk)
			}
		}
	}
	return front, back, coplanar
}

func windingExtent(plane *PlaneF, points []Point3F) (maxd, mind float32) {
	for i := range points {
		d := plane.DistToPoint(&points[i])
		if d > maxd {
			maxd = d
		}
		if d < mind {
			mind = d
		}
	}
	return maxd, mind
}

// clipWinding keeps the part of the fragment on one side of the plane,
// inserting intersection points where edges cross. Sutherland-Hodgman with
// the construction epsilon.
func clipWinding(s *bspSurf, plane *PlaneF, keepFront bool) (bspSurf, bool) {
	clip := *plane
	if keepFront {
		clip = clip.Flipped()
	}
	var out []Point3F
	n := len(s.points)
	for i := 0; i < n; i++ {
		v1 := &s.points[i]
		v2 := &s.points[(i+1)%n]
		d1 := clip.DistToPoint(v1)
		d2 := clip.DistToPoint(v2)
		if d1 <= BSP_EPSILON {
			out = append(out, *v1)
		}
		if (d1 > BSP_EPSILON && d2 < -BSP_EPSILON) ||
			(d1 < -BSP_EPSILON && d2 > BSP_EPSILON) {
			t := segmentPlaneCross(&clip, v1, v2)
			out = append(out, lerpPoint(v1, v2, t))
		}
	}
	if len(out) < 3 {
		return bspSurf{}, false
	}
	return bspSurf{
		surfaceIndex: s.surfaceIndex,
		planeIndex:   s.planeIndex,
		points:       out,
		area:         polygonArea(out),
	}, true
}

func (t *bspTree) height(node int32) int {
	if node == nilNode {
		return 0
	}
	n := &t.nodes[node]
	if n.isLeaf() {
		return 1
	}
	h := t.height(n.front)
	if bh := t.height(n.back); bh > h {
		h = bh
	}
	return h + 1
}

// BalanceFactor is front height minus back height at the root; 0 for a
// leaf-only or empty tree.
func (t *bspTree) BalanceFactor() int {
	if t.root == nilNode || t.nodes[t.root].isLeaf() {
		return 0
	}
	return t.height(t.nodes[t.root].front) - t.height(t.nodes[t.root].back)
}

// CoveragePercent is the share of input surface area that landed in a leaf or
// a coplanar list, i.e. the area the tree can answer raycasts for.
func (t *bspTree) CoveragePercent() float32 {
	if t.totalArea == 0 {
		return 0
	}
	return t.coveredArea / t.totalArea * 100
}

func isAxialNormal(n *Point3F) bool {
	zeros := 0
	for i := 0; i < 3; i++ {
		if math32.Abs(n[i]) < BSP_EPSILON {
			zeros++
		}
	}
	return zeros == 2
}

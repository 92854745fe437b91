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

// BSP coverage verification. For every exported surface we shoot a short
// segment through its centroid along +-normal and walk the tree the way the
// engine's raycast does. A surface the walk cannot hit is a surface the
// player can fall through, so the per-interior report carries both the hit
// count and the hit share of total surface area.
package main

import (
	"github.com/flywave/go3d/vec3"
)

const RAYCAST_PROBE = 0.1

// computeCoverageReport fills everything in the report except the balance
// factor, which the tree knows on its own.
func computeCoverageReport(itr *Interior, tree *bspTree, pools *dedupPools) ConversionReport {
	var report ConversionReport
	report.Total = len(itr.Surfaces)
	report.BalanceFactor = tree.BalanceFactor()

	var totalArea, hitArea float32
	for si := range itr.Surfaces {
		s := &itr.Surfaces[si]
		points := make([]Point3F, s.WindingCount)
		for i := range points {
			points[i] = itr.Points[itr.Indices[s.WindingStart+uint32(i)]]
		}
		centroid := polygonCentroid(points)
		area := polygonArea(points)
		totalArea += area

		norm := planeNormal(itr, s.PlaneIndex&PLANE_INDEX_MASK)
		if s.PlaneFlipped {
			norm = Point3F{-norm[0], -norm[1], -norm[2]}
		}
		probe := norm.Scaled(RAYCAST_PROBE)
		start := vec3.Add(&centroid, &probe)
		end := vec3.Sub(&centroid, &probe)

		q := rayQuery{
			surfaceIndex: uint32(si),
			planeMask:    s.PlaneIndex & PLANE_INDEX_MASK,
		}
		if tree.rayCast(tree.root, start, end, -1, &q, pools) {
			report.Hit++
			hitArea += area
		}
	}
	if totalArea > 0 {
		report.HitAreaPercent = hitArea / totalArea * 100
	}
	return report
}

type rayQuery struct {
	surfaceIndex uint32
	planeMask    uint16
}

// rayCast walks the tree with a segment. crossedPlane is the plane pool index
// of the last splitting plane the segment passed through, -1 before any
// crossing; a solid leaf counts as a hit when it holds geometry on that plane
// or the queried surface itself.
func (t *bspTree) rayCast(node int32, start, end Point3F, crossedPlane int32,
	q *rayQuery, pools *dedupPools) bool {
	if node == nilNode {
		return false
	}
	n := &t.nodes[node]
	if n.isLeaf() {
		if !n.solid {
			return false
		}
		for i := range n.surfaces {
			s := &n.surfaces[i]
			if s.surfaceIndex == q.surfaceIndex {
				return true
			}
			if crossedPlane >= 0 &&
				s.planeIndex&PLANE_INDEX_MASK == uint16(crossedPlane)&PLANE_INDEX_MASK {
				return true
			}
		}
		return false
	}

	plane := pools.poolPlane(uint16(n.planeIndex))
	sv := plane.DistToPoint(&start)
	ev := plane.DistToPoint(&end)

	switch {
	case sv >= 0 && ev >= 0:
		if sv == 0 && ev == 0 {
			// Segment rides the plane: coplanar surfaces here are directly
			// intersected.
			if uint16(n.planeIndex) == q.planeMask && len(n.coplanar) > 0 {
				return true
			}
			if t.rayCast(n.front, start, end, crossedPlane, q, pools) {
				return true
			}
			return t.rayCast(n.back, start, end, crossedPlane, q, pools)
		}
		return t.rayCast(n.front, start, end, crossedPlane, q, pools)
	case sv <= 0 && ev <= 0:
		return t.rayCast(n.back, start, end, crossedPlane, q, pools)
	default:
		// Straddle: surfaces stored at this node sit exactly where the
		// segment pierces the plane.
		if uint16(n.planeIndex) == q.planeMask && len(n.coplanar) > 0 {
			return true
		}
		it := segmentPlaneCross(&plane, &start, &end)
		ip := lerpPoint(&start, &end, it)
		if sv > 0 {
			if t.rayCast(n.front, start, ip, crossedPlane, q, pools) {
				return true
			}
			return t.rayCast(n.back, ip, end, n.planeIndex, q, pools)
		}
		if t.rayCast(n.back, start, ip, crossedPlane, q, pools) {
			return true
		}
		return t.rayCast(n.front, ip, end, n.planeIndex, q, pools)
	}
}

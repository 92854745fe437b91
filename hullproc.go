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

// Convex hull collision encodings: per-vertex emit strings and per-hull poly
// list strings. Engines other than Marble Blast walk these when resolving
// contacts, so they are only produced on the non-MB path. All intermediate
// sets are kept in first-seen order - the byte strings land in the output
// verbatim and must not depend on map iteration order.
package main

type hullPoly struct {
	points     []int
	planeIndex uint16
}

// exportHullEmitStrings builds one emit string per hull vertex: the points,
// edges and polys the collision solver must consider when that vertex is the
// deepest support point. Indices are relative to the hull's own tables.
func (b *difBuilder) exportHullEmitStrings(brush *Brush, hullPlanes []uint16) {
	if b.mbOnly {
		return
	}
	polys := make([]hullPoly, 0, len(brush.Faces))
	for fi := range brush.Faces {
		f := &brush.Faces[fi]
		pts := make([]int, len(f.Indices.Indices))
		for i, idx := range f.Indices.Indices {
			pts[i] = int(idx)
		}
		polys = append(polys, hullPoly{points: pts, planeIndex: hullPlanes[fi]})
	}

	for v := range brush.Vertices {
		// Polys supported by this vertex...
		var emitPolys []int
		for j := range polys {
			if containsInt(polys[j].points, v) {
				emitPolys = append(emitPolys, j)
			}
		}
		// ...plus any poly sharing a plane with one of those.
		for j := range polys {
			if containsInt(emitPolys, j) {
				continue
			}
			for _, ep := range emitPolys {
				if polys[ep].planeIndex == polys[j].planeIndex {
					emitPolys = append(emitPolys, j)
					break
				}
			}
		}

		var emitPoints []int
		for _, pj := range emitPolys {
			for _, pt := range polys[pj].points {
				if !containsInt(emitPoints, pt) {
					emitPoints = append(emitPoints, pt)
				}
			}
		}
		type emitEdge struct{ first, last int }
		var emitEdges []emitEdge
		for _, pj := range emitPolys {
			pts := polys[pj].points
			for i := range pts {
				a, c := pts[i], pts[(i+1)%len(pts)]
				if a > c {
					a, c = c, a
				}
				e := emitEdge{a, c}
				dup := false
				for _, have := range emitEdges {
					if have == e {
						dup = true
						break
					}
				}
				if !dup {
					emitEdges = append(emitEdges, e)
				}
			}
		}

		str := make([]byte, 0, 2+len(emitPoints)+2*len(emitEdges))
		str = append(str, byte(len(emitPoints)))
		for _, pt := range emitPoints {
			str = append(str, byte(pt))
		}
		str = append(str, byte(len(emitEdges)))
		for _, e := range emitEdges {
			str = append(str, byte(e.first), byte(e.last))
		}
		str = append(str, byte(len(emitPolys)))
		for _, pj := range emitPolys {
			str = append(str, byte(len(polys[pj].points)), byte(pj))
			for _, pt := range polys[pj].points {
				for rel, ep := range emitPoints {
					if ep == pt {
						str = append(str, byte(rel))
						break
					}
				}
			}
		}

		idx := b.pools.AddEmitString(str)
		b.itr.HullEmitStringIndices = append(b.itr.HullEmitStringIndices, idx)
	}
}

type tempProcSurface struct {
	pointIndices []uint32
	planeIndex   uint16
	mask         uint8
}

type planeGrouping struct {
	planeIndices []uint16
	mask         uint8
}

// processHullPolyLists rebuilds the per-hull poly list encoding: unique
// planes and points per hull, planes merged into at most eight direction
// groups, and the byte string the engine decodes during poly list queries.
func (b *difBuilder) processHullPolyLists() {
	b.itr.PolyListPlaneIndices = b.itr.PolyListPlaneIndices[:0]
	b.itr.PolyListPointIndices = b.itr.PolyListPointIndices[:0]
	b.itr.PolyListStringCharacters = b.itr.PolyListStringCharacters[:0]

	for hi := range b.itr.ConvexHulls {
		hull := &b.itr.ConvexHulls[hi]
		var pointIndices []uint32
		var planeIndices []uint16
		var surfs []tempProcSurface

		// Decode each hull surface's fan winding back into perimeter order.
		for i := uint16(0); i < hull.SurfaceCount; i++ {
			surfaceIndex := b.itr.HullSurfaceIndices[uint32(i)+hull.SurfaceStart]
			s := &b.itr.Surfaces[surfaceIndex]
			ts := tempProcSurface{planeIndex: s.PlaneIndex}

			tempIndices := make([]uint8, 0, s.WindingCount)
			tempIndices = append(tempIndices, 0)
			for j := uint8(1); j < s.WindingCount; j += 2 {
				tempIndices = append(tempIndices, j)
			}
			for j := (s.WindingCount - 1) &^ 1; j > 0; j -= 2 {
				tempIndices = append(tempIndices, j)
			}
			for j := uint8(0); j < s.WindingCount; j++ {
				if s.FanMask&(1<<j) != 0 {
					ts.pointIndices = append(ts.pointIndices,
						b.itr.Indices[s.WindingStart+uint32(tempIndices[j])])
				}
			}
			surfs = append(surfs, ts)
		}

		// Unique planes and points, first-seen order.
		for si := range surfs {
			if !containsU16(planeIndices, surfs[si].planeIndex) {
				planeIndices = append(planeIndices, surfs[si].planeIndex)
			}
			for _, pt := range surfs[si].pointIndices {
				if !containsU32(pointIndices, pt) {
					pointIndices = append(pointIndices, pt)
				}
			}
		}

		// Remap surface points to offsets into the unique point list.
		for si := range surfs {
			for k, pt := range surfs[si].pointIndices {
				for l, u := range pointIndices {
					if u == pt {
						surfs[si].pointIndices[k] = uint32(l)
						break
					}
				}
			}
		}

		// Merge plane groups until at most 8 remain; the closest pair is the
		// one with the smallest maximum pairwise normal dot product.
		groups := make([]planeGrouping, 0, len(planeIndices))
		for _, pi := range planeIndices {
			groups = append(groups, planeGrouping{planeIndices: []uint16{pi}})
		}
		for len(groups) > 8 {
			curMin := float32(2)
			first, second := -1, -1
			for j := 0; j < len(groups); j++ {
				for k := j + 1; k < len(groups); k++ {
					max := float32(-2)
					for _, pj := range groups[j].planeIndices {
						nj := planeNormal(b.itr, pj)
						for _, pk := range groups[k].planeIndices {
							nk := planeNormal(b.itr, pk)
							dot := nj[0]*nk[0] + nj[1]*nk[1] + nj[2]*nk[2]
							if dot > max {
								max = dot
							}
						}
					}
					if max < curMin {
						curMin = max
						first, second = j, k
					}
				}
			}
			groups[first].planeIndices = append(groups[first].planeIndices,
				groups[second].planeIndices...)
			groups = append(groups[:second], groups[second+1:]...)
		}
		for j := range groups {
			groups[j].mask = 1 << j
		}

		// Surface masks from their plane's group.
		for si := range surfs {
			for gi := range groups {
				if containsU16(groups[gi].planeIndices, surfs[si].planeIndex) {
					surfs[si].mask = groups[gi].mask
					break
				}
			}
		}

		planeMasks := make([]uint8, len(planeIndices))
		for pi, plane := range planeIndices {
			for gi := range groups {
				if containsU16(groups[gi].planeIndices, plane) {
					planeMasks[pi] = groups[gi].mask
					break
				}
			}
		}

		pointMasks := make([]uint8, len(pointIndices))
		for j := range pointIndices {
			for si := range surfs {
				if containsU32(surfs[si].pointIndices, uint32(j)) {
					pointMasks[j] |= surfs[si].mask
				}
			}
		}

		hull.PolyListPlaneStart = uint32(len(b.itr.PolyListPlaneIndices))
		b.itr.PolyListPlaneIndices = append(b.itr.PolyListPlaneIndices, planeIndices...)

		hull.PolyListPointStart = uint32(len(b.itr.PolyListPointIndices))
		b.itr.PolyListPointIndices = append(b.itr.PolyListPointIndices, pointIndices...)

		// String layout, all bytes:
		//   NumPlanes (PLMask)*NumPlanes
		//   NumPointsHi NumPointsLo (PtMask)*NumPoints
		//   NumSurfaces
		//   (NumPoints SurfaceMask PlOffset (PtOffsetHi PtOffsetLo)*NumPoints)*NumSurfaces
		hull.PolyListStringStart = uint32(len(b.itr.PolyListStringCharacters))
		out := &b.itr.PolyListStringCharacters
		*out = append(*out, uint8(len(planeIndices)))
		*out = append(*out, planeMasks...)
		*out = append(*out, uint8(len(pointIndices)>>8), uint8(len(pointIndices)))
		*out = append(*out, pointMasks...)
		*out = append(*out, uint8(len(surfs)))
		for si := range surfs {
			*out = append(*out, uint8(len(surfs[si].pointIndices)), surfs[si].mask)
			for k, plane := range planeIndices {
				if plane == surfs[si].planeIndex {
					*out = append(*out, uint8(k))
					break
				}
			}
			for _, pt := range surfs[si].pointIndices {
				*out = append(*out, uint8(pt>>8), uint8(pt))
			}
		}
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func containsU16(s []uint16, v uint16) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func containsU32(s []uint32, v uint32) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

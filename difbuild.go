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

// Interior assembly. One difBuilder turns a batch of world-space brushes into
// a complete Interior: convex hulls, pooled points/planes/texgens, surfaces
// with fan windings, the BSP tree, coord bins and either the Marble Blast
// placeholders or the full collision poly lists and lightmap pages.
package main

import (
	"github.com/flywave/go3d/vec3"
)

type difBuilder struct {
	brushes []Brush
	itr     *Interior
	pools   *dedupPools

	faceToSurface map[int32]uint32
	faceToPlane   map[int32]uint16

	mbOnly        bool
	ambient       Point3F
	alarmAmbient  Point3F
	lumelScale    uint32
	geometryScale uint32

	bspMethod int
	workers   int
	progress  *progressSink
}

type builderOptions struct {
	MBOnly       bool
	Ambient      Point3F
	AlarmAmbient Point3F
	LumelScale   uint32
	GeometryScale uint32
	EpsilonPoint float32
	EpsilonPlane float32
	BspMethod    int
	Workers      int
}

func newDifBuilder(opt *builderOptions, progress *progressSink) *difBuilder {
	itr := newInterior()
	lumel := opt.LumelScale
	if lumel == 0 {
		lumel = 8
	}
	geom := opt.GeometryScale
	if geom == 0 {
		geom = 32
	}
	return &difBuilder{
		itr:           itr,
		pools:         newDedupPools(itr, opt.EpsilonPoint, opt.EpsilonPlane, opt.MBOnly),
		faceToSurface: make(map[int32]uint32),
		faceToPlane:   make(map[int32]uint16),
		mbOnly:        opt.MBOnly,
		ambient:       opt.Ambient,
		alarmAmbient:  opt.AlarmAmbient,
		lumelScale:    lumel,
		geometryScale: geom,
		bspMethod:     opt.BspMethod,
		workers:       opt.Workers,
		progress:      progress,
	}
}

func (b *difBuilder) AddBrush(brush *Brush) {
	b.brushes = append(b.brushes, *brush)
}

func (b *difBuilder) FaceCount() int {
	n := 0
	for i := range b.brushes {
		n += len(b.brushes[i].Faces)
	}
	return n
}

// Build assembles the interior and returns it with its BSP report.
func (b *difBuilder) Build() (*Interior, ConversionReport) {
	b.itr.BoundingBox = brushesBoundingBox(b.brushes)
	b.itr.BoundingSphere = boundingSphereOf(&b.itr.BoundingBox)

	for i := range b.brushes {
		b.progress.Report(uint32(i+1), uint32(len(b.brushes)),
			"Exporting convex hulls", "Exported convex hulls")
		b.exportConvexHull(&b.brushes[i])
	}

	tree := buildBSPTree(b.bspSurfaces(), b.pools, b.bspMethod, b.workers, b.progress)
	b.exportBSPTree(tree)

	b.itr.Zones = append(b.itr.Zones, Zone{
		SurfaceStart: 0,
		SurfaceCount: uint16(len(b.itr.Surfaces)),
	})
	b.exportCoordBins()

	if b.mbOnly {
		// The Marble Blast runtime never reads these sections, but the loader
		// still wants one entry in each.
		b.itr.PolyListPlaneIndices = append(b.itr.PolyListPlaneIndices, 0)
		b.itr.PolyListPointIndices = append(b.itr.PolyListPointIndices, 0)
		b.itr.PolyListStringCharacters = append(b.itr.PolyListStringCharacters, 0)
		b.itr.HullPlaneIndices = append(b.itr.HullPlaneIndices, 0)
		b.itr.HullEmitStringIndices = append(b.itr.HullEmitStringIndices, 0)
		b.itr.ConvexHullEmitStringCharacters = append(b.itr.ConvexHullEmitStringCharacters, 0)
	} else {
		b.itr.BaseAmbientColor = ColorI{
			R: uint8(b.ambient[0]), G: uint8(b.ambient[1]), B: uint8(b.ambient[2]), A: 255,
		}
		b.itr.AlarmAmbientColor = ColorI{
			R: uint8(b.alarmAmbient[0]), G: uint8(b.alarmAmbient[1]), B: uint8(b.alarmAmbient[2]), A: 255,
		}
		b.processHullPolyLists()
		b.computeLightmaps()
	}

	report := computeCoverageReport(b.itr, tree, b.pools)
	return b.itr, report
}

// bspSurfaces builds the tree input: one entry per exported face with its
// perimeter winding in authored order (the serialized fan order is useless
// for clipping).
func (b *difBuilder) bspSurfaces() []bspSurf {
	var out []bspSurf
	for bi := range b.brushes {
		brush := &b.brushes[bi]
		for fi := range brush.Faces {
			f := &brush.Faces[fi]
			surfIdx, ok := b.faceToSurface[f.FaceID]
			if !ok {
				continue
			}
			points := make([]Point3F, 0, len(f.Indices.Indices))
			for _, idx := range f.Indices.Indices {
				points = append(points, brush.Vertices[idx].Pos.Point())
			}
			out = append(out, bspSurf{
				surfaceIndex: surfIdx,
				planeIndex:   b.faceToPlane[f.FaceID],
				points:       points,
				area:         polygonArea(points),
			})
		}
	}
	return out
}

// exportBSPTree serializes the arena tree. Coplanar surfaces of an internal
// node ride down the back side and join the nearest solid leaf, so the engine
// treats them as hit as soon as the ray crosses the node's plane.
func (b *difBuilder) exportBSPTree(tree *bspTree) {
	b.exportBSPNode(tree, tree.root, nil)
}

func (b *difBuilder) exportBSPNode(tree *bspTree, node int32, pending []uint32) BSPIndex {
	if node == nilNode {
		return b.exportSolidLeaf(pending)
	}
	n := &tree.nodes[node]
	if n.isLeaf() {
		surfaces := pending
		for i := range n.surfaces {
			surfaces = append(surfaces, n.surfaces[i].surfaceIndex)
		}
		return b.exportSolidLeaf(surfaces)
	}

	nodeIndex := uint32(len(b.itr.BSPNodes))
	b.itr.BSPNodes = append(b.itr.BSPNodes, BSPNode{
		PlaneIndex: uint16(n.planeIndex),
		FrontIndex: emptyLeafIndex(),
		BackIndex:  emptyLeafIndex(),
	})

	backPending := pending
	for i := range n.coplanar {
		backPending = append(backPending, n.coplanar[i].surfaceIndex)
	}

	frontIndex := b.exportBSPNode(tree, n.front, nil)
	backIndex := b.exportBSPNode(tree, n.back, backPending)
	b.itr.BSPNodes[nodeIndex].FrontIndex = frontIndex
	b.itr.BSPNodes[nodeIndex].BackIndex = backIndex
	return BSPIndex{Index: nodeIndex, Leaf: false, Solid: false}
}

// exportSolidLeaf emits a solid leaf holding the given surfaces, deduplicated
// in first-seen order. No surfaces means the shared empty leaf.
func (b *difBuilder) exportSolidLeaf(surfaces []uint32) BSPIndex {
	if len(surfaces) == 0 {
		return emptyLeafIndex()
	}
	start := uint32(len(b.itr.SolidLeafSurfaces))
	seen := make(map[uint32]bool, len(surfaces))
	var count uint16
	for _, s := range surfaces {
		if seen[s] {
			continue
		}
		seen[s] = true
		b.itr.SolidLeafSurfaces = append(b.itr.SolidLeafSurfaces, s)
		count++
	}
	leafIndex := uint32(len(b.itr.BSPSolidLeaves))
	b.itr.BSPSolidLeaves = append(b.itr.BSPSolidLeaves, BSPSolidLeaf{
		SurfaceIndex: start,
		SurfaceCount: count,
	})
	return BSPIndex{Index: leafIndex, Leaf: true, Solid: true}
}

// exportConvexHull writes one brush as a collision hull and exports all of
// its faces as surfaces.
func (b *difBuilder) exportConvexHull(brush *Brush) {
	points := make([]Point3F, len(brush.Vertices))
	for i := range brush.Vertices {
		points[i] = brush.Vertices[i].Pos.Point()
	}
	bbox := boundingBoxOf(points)

	hull := ConvexHull{
		HullStart:    uint32(len(b.itr.HullIndices)),
		HullCount:    uint16(len(points)),
		MinX:         bbox.Min[0], MaxX: bbox.Max[0],
		MinY:         bbox.Min[1], MaxY: bbox.Max[1],
		MinZ:         bbox.Min[2], MaxZ: bbox.Max[2],
		SurfaceStart: uint32(len(b.itr.HullSurfaceIndices)),
		SurfaceCount: uint16(len(brush.Faces)),
		PlaneStart:   uint32(len(b.itr.HullPlaneIndices)),
		PolyListPlaneStart: uint32(len(b.itr.PolyListPlaneIndices)),
		PolyListPointStart: uint32(len(b.itr.PolyListPointIndices)),
	}

	hullPoints := make([]uint32, len(points))
	for i := range points {
		hullPoints[i] = b.pools.AddPoint(&points[i])
	}
	b.itr.HullIndices = append(b.itr.HullIndices, hullPoints...)
	if !b.mbOnly {
		b.itr.PolyListPointIndices = append(b.itr.PolyListPointIndices, hullPoints...)
	}

	hullPlanes := make([]uint16, len(brush.Faces))
	for i := range brush.Faces {
		plane := brush.Faces[i].Plane.Plane()
		hullPlanes[i] = b.pools.AddPlane(&plane)
	}
	if !b.mbOnly {
		b.itr.PolyListPlaneIndices = append(b.itr.PolyListPlaneIndices, hullPlanes...)
		b.itr.HullPlaneIndices = append(b.itr.HullPlaneIndices, hullPlanes...)
	}

	for fi := range brush.Faces {
		f := &brush.Faces[fi]
		surfIdx := b.exportSurface(f, hullPlanes[fi], hullPoints)
		b.itr.HullSurfaceIndices = append(b.itr.HullSurfaceIndices, surfIdx)
	}

	b.exportHullEmitStrings(brush, hullPlanes)
	b.itr.ConvexHulls = append(b.itr.ConvexHulls, hull)
}

// exportSurface emits one face as a triangle-fan surface. The winding is
// reordered fan-style: first two perimeter points, then alternating from the
// tail and the head.
func (b *difBuilder) exportSurface(f *Face, planeIndex uint16, hullPoints []uint32) uint32 {
	if idx, ok := b.faceToSurface[f.FaceID]; ok {
		return idx
	}
	index := uint32(len(b.itr.Surfaces))
	b.faceToSurface[f.FaceID] = index
	b.faceToPlane[f.FaceID] = planeIndex

	texGen := TexGenPlanes{PlaneX: f.TexGens.PlaneX, PlaneY: f.TexGens.PlaneY}
	texGenIndex := b.pools.AddTexGen(&texGen)

	windingStart := uint32(len(b.itr.Indices))
	windingLength := len(f.Indices.Indices)
	for i := 0; i < windingLength; i++ {
		var src int32
		if i >= 2 {
			if i%2 == 0 {
				src = f.Indices.Indices[windingLength-1-(i-2)/2]
			} else {
				src = f.Indices.Indices[(i+1)/2]
			}
		} else {
			src = f.Indices.Indices[i]
		}
		b.itr.Indices = append(b.itr.Indices, hullPoints[src])
	}

	var fanMask uint32
	for i := 0; i < windingLength; i++ {
		fanMask |= 1 << i
	}

	b.itr.ZoneSurfaces = append(b.itr.ZoneSurfaces, uint16(len(b.itr.Surfaces)))
	b.itr.NormalLMapIndices = append(b.itr.NormalLMapIndices, 0)
	b.itr.AlarmLMapIndices = append(b.itr.AlarmLMapIndices, 0xffffffff)
	b.itr.Surfaces = append(b.itr.Surfaces, Surface{
		WindingStart: windingStart,
		WindingCount: uint8(windingLength),
		PlaneIndex:   planeIndex,
		PlaneFlipped: planeIndex&PLANE_FLIP_BIT != 0,
		TextureIndex: b.pools.AddMaterial(f.Material),
		TexGenIndex:  texGenIndex,
		SurfaceFlags: SURFACE_OUTSIDE_VISIBLE,
		FanMask:      fanMask,
		MapSizeX:     32,
		MapSizeY:     32,
	})
	return index
}

// exportCoordBins splits the xy extent into the engine's fixed 16x16 grid
// and records which hulls overlap each bin.
func (b *difBuilder) exportCoordBins() {
	b.itr.CoordBins = make([]CoordBin, 256)
	extent := b.itr.BoundingBox.Max
	extent = vec3.Sub(&extent, &b.itr.BoundingBox.Min)
	for i := 0; i < 16; i++ {
		minX := b.itr.BoundingBox.Min[0] + float32(i)*extent[0]/16
		maxX := b.itr.BoundingBox.Min[0] + float32(i+1)*extent[0]/16
		for j := 0; j < 16; j++ {
			minY := b.itr.BoundingBox.Min[1] + float32(j)*extent[1]/16
			maxY := b.itr.BoundingBox.Min[1] + float32(j+1)*extent[1]/16

			bin := &b.itr.CoordBins[i*16+j]
			bin.BinStart = uint32(len(b.itr.CoordBinIndices))
			for k := range b.itr.ConvexHulls {
				hull := &b.itr.ConvexHulls[k]
				if minX > hull.MaxX || maxX < hull.MinX ||
					minY > hull.MaxY || maxY < hull.MinY {
					continue
				}
				b.itr.CoordBinIndices = append(b.itr.CoordBinIndices, uint16(k))
			}
			bin.BinCount = uint32(len(b.itr.CoordBinIndices)) - bin.BinStart
		}
	}
}

func brushesBoundingBox(brushes []Brush) BoxF {
	box := vec3.MinBox
	for i := range brushes {
		for j := range brushes[i].Vertices {
			p := brushes[i].Vertices[j].Pos.Point()
			box.Extend(&p)
		}
	}
	return box
}

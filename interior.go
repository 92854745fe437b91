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

// In-memory model of one interior: the pools, surfaces and BSP records that
// end up in a single emitted geometry unit. Field layout tracks the interior
// resource as the engine reads it; the assembler (difbuild.go) fills it and
// the writer (difwrite.go) serializes it. Index types are plain uints here -
// the writer alone knows which width each one gets on disk for a given
// version.
package main

// Plane indices carry a flip bit: index | PLANE_FLIP_BIT addresses the
// negation of pool entry index & PLANE_INDEX_MASK without storing it twice.
const (
	PLANE_FLIP_BIT   = 0x8000
	PLANE_INDEX_MASK = 0x7FFF
)

// MAX_FACES_PER_INTERIOR is the splitting threshold: surface counts are
// 16-bit on disk and the two high bits of a surface index are flags.
const MAX_FACES_PER_INTERIOR = 16383

type ColorI struct {
	R, G, B, A uint8
}

type Plane struct {
	NormalIndex   uint16
	PlaneDistance float32
}

type TexGenPlanes struct {
	PlaneX PlaneF
	PlaneY PlaneF
}

// BSPIndex addresses either an internal node, a solid leaf, or the shared
// non-solid empty leaf (Leaf && !Solid, index 0).
type BSPIndex struct {
	Index uint32
	Leaf  bool
	Solid bool
}

func emptyLeafIndex() BSPIndex {
	return BSPIndex{Index: 0, Leaf: true, Solid: false}
}

type BSPNode struct {
	PlaneIndex uint16
	FrontIndex BSPIndex
	BackIndex  BSPIndex
}

type BSPSolidLeaf struct {
	SurfaceIndex uint32
	SurfaceCount uint16
}

type Zone struct {
	PortalStart  uint16
	PortalCount  uint16
	SurfaceStart uint32
	SurfaceCount uint16
	Flags        uint16
}

// SurfaceLightMap is the per-surface lightmap texgen word: stEnc and the two
// log2 scales packed into FinalWord, plus the s/t offsets into the page.
type SurfaceLightMap struct {
	FinalWord       uint16
	TexGenXDistance float32
	TexGenYDistance float32
}

type Surface struct {
	WindingStart uint32
	WindingCount uint8
	PlaneIndex   uint16
	PlaneFlipped bool
	TextureIndex uint16
	TexGenIndex  uint32
	SurfaceFlags uint8
	FanMask      uint32
	LightMap     SurfaceLightMap
	LightCount   uint16
	LightStateInfoStart uint32
	MapOffsetX   uint32
	MapOffsetY   uint32
	MapSizeX     uint32
	MapSizeY     uint32
}

const SURFACE_OUTSIDE_VISIBLE = 0x1

type NullSurface struct {
	WindingStart uint32
	PlaneIndex   uint16
	SurfaceFlags uint8
	WindingCount uint8
}

type ConvexHull struct {
	HullStart         uint32
	HullCount         uint16
	MinX, MaxX        float32
	MinY, MaxY        float32
	MinZ, MaxZ        float32
	SurfaceStart      uint32
	SurfaceCount      uint16
	PlaneStart        uint32
	PolyListPlaneStart  uint32
	PolyListPointStart  uint32
	PolyListStringStart uint32
	StaticMesh        uint8
}

type CoordBin struct {
	BinStart uint32
	BinCount uint32
}

// LightMapPage holds one encoded 256x256 page; Data is a complete PNG stream.
type LightMapPage struct {
	Data         []byte
	KeepLightMap uint8
}

// Interior is one emitted geometry unit. Pools are exclusively owned; nothing
// is shared across sibling interiors, which is what lets them build in
// parallel.
type Interior struct {
	DetailLevel uint32
	MinPixels   uint32
	BoundingBox    BoxF
	BoundingSphere SphereF

	HasAlarmState        uint8
	NumLightStateEntries uint32

	Normals           []Point3F
	Planes            []Plane
	Points            []Point3F
	PointVisibilities []uint8
	TexGenEqs         []TexGenPlanes

	BSPNodes       []BSPNode
	BSPSolidLeaves []BSPSolidLeaf

	MaterialNames []string
	// Windings: surface fan indices into Points.
	Indices []uint32

	Zones        []Zone
	ZoneSurfaces []uint16

	Surfaces         []Surface
	Normal2s         []Point3F
	NormalLMapIndices []uint32
	AlarmLMapIndices  []uint32
	NullSurfaces     []NullSurface
	LightMaps        []LightMapPage

	SolidLeafSurfaces []uint32

	ConvexHulls                   []ConvexHull
	ConvexHullEmitStringCharacters []uint8
	HullIndices                   []uint32
	HullPlaneIndices              []uint16
	HullEmitStringIndices         []uint32
	HullSurfaceIndices            []uint32

	PolyListPlaneIndices    []uint16
	PolyListPointIndices    []uint32
	PolyListStringCharacters []uint8

	// Always 256 bins, 16x16 over the xy extent.
	CoordBins       []CoordBin
	CoordBinIndices []uint16
	CoordBinMode    uint32

	BaseAmbientColor  ColorI
	AlarmAmbientColor ColorI

	ExtendedLightMapData uint32
	LightMapBorderSize   uint32
}

func newInterior() *Interior {
	return &Interior{
		MinPixels:         250,
		BaseAmbientColor:  ColorI{A: 255},
		AlarmAmbientColor: ColorI{A: 255},
	}
}

// ConversionReport carries the per-interior BSP quality metrics back to the
// caller. Not serialized.
type ConversionReport struct {
	Hit            int
	Total          int
	HitAreaPercent float32
	BalanceFactor  int
}

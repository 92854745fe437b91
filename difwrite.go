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

// DIF serialization. The container is always file version 44; the interior
// version inside it is what differs per engine:
//
//	mbg   interior version 0
//	tge   interior versions 0..4
//	tgea  interior versions 0..13
//	t3d   interior versions 0..14
//
// Version gates inside the interior body:
//
//	v4     point visibilities and alarm lightmap indices are absent
//	v12+   zones carry static mesh ranges, hulls carry a staticMesh byte
//	v13+   lightmap indices widen from u8 to u32
//	v14+   BSP child indices widen from packed u16 to u32
//
// For versions below 14 a BSP child index packs its kind into the top bits of
// a u16: 0x8000 flags a solid leaf, 0x8000|0x4000... does not exist - solid
// leaves are 0xC000|index, non-solid leaves are 0x8000|index, and a plain
// index is an internal node. Version 14 widens this to u32 with bits 31/30.
// Everything is little-endian; strings are u8 length prefixed.
package main

// DIF container version. Constant across all supported engines.
const DIF_FILE_VERSION = 44

const (
	BSP_U16_LEAF_BIT  = 0x8000
	BSP_U16_SOLID_BIT = 0x4000
	BSP_U32_LEAF_BIT  = 0x80000000
	BSP_U32_SOLID_BIT = 0x40000000
)

// CheckVersion rejects engine/interior version pairs with no defined layout.
// Called before any geometry work so bad flags fail fast.
func CheckVersion(engine int, difVersion uint32) error {
	max := uint32(0)
	switch engine {
	case ENGINE_MBG:
		max = 0
	case ENGINE_TGE:
		max = 4
	case ENGINE_TGEA:
		max = 13
	case ENGINE_T3D:
		max = 14
	default:
		return ErrUnsupportedVersion
	}
	if difVersion > max {
		return ErrUnsupportedVersion
	}
	return nil
}

// Dif is the file-level container: the detail level interiors plus everything
// the primary file carries alongside them.
type Dif struct {
	Interiors    []*Interior
	SubObjects   []*Interior
	Triggers     []Trigger
	Followers    []InteriorPathFollower
	GameEntities []GameEntity
}

// Write serializes the whole container.
func (d *Dif) Write(difVersion uint32) []byte {
	w := CreateWireWriter()
	w.PutU32(DIF_FILE_VERSION)
	w.PutU8(0) // no preview bitmap

	w.PutU32(uint32(len(d.Interiors)))
	for _, itr := range d.Interiors {
		writeInterior(w, itr, difVersion)
	}
	w.PutU32(uint32(len(d.SubObjects)))
	for _, itr := range d.SubObjects {
		writeInterior(w, itr, difVersion)
	}
	w.PutU32(uint32(len(d.Triggers)))
	for i := range d.Triggers {
		writeTrigger(w, &d.Triggers[i])
	}
	w.PutU32(uint32(len(d.Followers)))
	for i := range d.Followers {
		writePathFollower(w, &d.Followers[i])
	}
	w.PutU32(0) // force fields
	w.PutU32(0) // AI special nodes
	w.PutU32(0) // no vehicle collision block
	if len(d.GameEntities) != 0 {
		w.PutU32(2) // game entity marker
		w.PutU32(uint32(len(d.GameEntities)))
		for i := range d.GameEntities {
			writeGameEntity(w, &d.GameEntities[i])
		}
	} else {
		w.PutU32(0)
	}
	return w.Bytes()
}

func writeInterior(w *WireWriter, itr *Interior, version uint32) {
	w.PutU32(version)
	w.PutU32(itr.DetailLevel)
	w.PutU32(itr.MinPixels)
	w.PutBox(&itr.BoundingBox)
	w.PutSphere(&itr.BoundingSphere)
	w.PutU8(itr.HasAlarmState)
	w.PutU32(itr.NumLightStateEntries)

	w.PutU32(uint32(len(itr.Normals)))
	for i := range itr.Normals {
		w.PutPoint(&itr.Normals[i])
	}
	w.PutU32(uint32(len(itr.Planes)))
	for i := range itr.Planes {
		w.PutU16(itr.Planes[i].NormalIndex)
		w.PutF32(itr.Planes[i].PlaneDistance)
	}
	w.PutU32(uint32(len(itr.Points)))
	for i := range itr.Points {
		w.PutPoint(&itr.Points[i])
	}
	if version != 4 {
		w.PutU32(uint32(len(itr.PointVisibilities)))
		w.PutBytes(itr.PointVisibilities)
	}
	w.PutU32(uint32(len(itr.TexGenEqs)))
	for i := range itr.TexGenEqs {
		w.PutPlane(&itr.TexGenEqs[i].PlaneX)
		w.PutPlane(&itr.TexGenEqs[i].PlaneY)
	}

	w.PutU32(uint32(len(itr.BSPNodes)))
	for i := range itr.BSPNodes {
		n := &itr.BSPNodes[i]
		w.PutU16(n.PlaneIndex)
		if version >= 14 {
			w.PutU32(encodeBSPIndex32(n.FrontIndex))
			w.PutU32(encodeBSPIndex32(n.BackIndex))
		} else {
			w.PutU16(encodeBSPIndex16(n.FrontIndex))
			w.PutU16(encodeBSPIndex16(n.BackIndex))
		}
	}
	w.PutU32(uint32(len(itr.BSPSolidLeaves)))
	for i := range itr.BSPSolidLeaves {
		w.PutU32(itr.BSPSolidLeaves[i].SurfaceIndex)
		w.PutU16(itr.BSPSolidLeaves[i].SurfaceCount)
	}

	w.PutU8(1) // material list version
	w.PutU32(uint32(len(itr.MaterialNames)))
	for _, m := range itr.MaterialNames {
		w.PutString(m)
	}

	w.PutU32(uint32(len(itr.Indices)))
	for _, idx := range itr.Indices {
		w.PutU32(idx)
	}
	w.PutU32(0) // winding index records

	w.PutU32(uint32(len(itr.Zones)))
	for i := range itr.Zones {
		z := &itr.Zones[i]
		w.PutU16(z.PortalStart)
		w.PutU16(z.PortalCount)
		w.PutU32(z.SurfaceStart)
		w.PutU16(z.SurfaceCount)
		if version >= 12 {
			w.PutU32(0) // static mesh start
			w.PutU32(0) // static mesh count
			w.PutU16(z.Flags)
		}
	}
	w.PutU32(uint32(len(itr.ZoneSurfaces)))
	for _, zs := range itr.ZoneSurfaces {
		w.PutU16(zs)
	}
	w.PutU32(0) // zone portal list
	w.PutU32(0) // portals

	w.PutU32(uint32(len(itr.Surfaces)))
	for i := range itr.Surfaces {
		writeSurface(w, &itr.Surfaces[i], version)
	}

	if version >= 13 {
		w.PutU32(uint32(len(itr.NormalLMapIndices)))
		for _, v := range itr.NormalLMapIndices {
			w.PutU32(v)
		}
	} else {
		w.PutU32(uint32(len(itr.NormalLMapIndices)))
		for _, v := range itr.NormalLMapIndices {
			w.PutU8(uint8(v))
		}
	}
	if version != 4 {
		if version >= 13 {
			w.PutU32(uint32(len(itr.AlarmLMapIndices)))
			for _, v := range itr.AlarmLMapIndices {
				w.PutU32(v)
			}
		} else {
			w.PutU32(uint32(len(itr.AlarmLMapIndices)))
			for _, v := range itr.AlarmLMapIndices {
				w.PutU8(uint8(v))
			}
		}
	}

	w.PutU32(uint32(len(itr.NullSurfaces)))
	for i := range itr.NullSurfaces {
		ns := &itr.NullSurfaces[i]
		w.PutU32(ns.WindingStart)
		w.PutU16(ns.PlaneIndex)
		w.PutU8(ns.SurfaceFlags)
		w.PutU8(ns.WindingCount)
	}

	if version != 4 {
		w.PutU32(uint32(len(itr.LightMaps)))
		for i := range itr.LightMaps {
			// PNG streams are self-delimiting; the engine's loader finds IEND.
			w.PutBytes(itr.LightMaps[i].Data)
			w.PutU8(itr.LightMaps[i].KeepLightMap)
		}
	}

	w.PutU32(uint32(len(itr.SolidLeafSurfaces)))
	for _, s := range itr.SolidLeafSurfaces {
		w.PutU32(s)
	}

	w.PutU32(0) // animated lights
	w.PutU32(0) // light states
	if version != 4 {
		w.PutU32(0) // state data
		w.PutU32(0) // state data buffer
		w.PutU32(0) // flags
	}
	w.PutU32(0) // name buffer characters
	w.PutU32(0) // sub objects (legacy in-interior list)

	w.PutU32(uint32(len(itr.ConvexHulls)))
	for i := range itr.ConvexHulls {
		writeConvexHull(w, &itr.ConvexHulls[i], version)
	}
	w.PutU32(uint32(len(itr.ConvexHullEmitStringCharacters)))
	w.PutBytes(itr.ConvexHullEmitStringCharacters)
	w.PutU32(uint32(len(itr.HullIndices)))
	for _, v := range itr.HullIndices {
		w.PutU32(v)
	}
	w.PutU32(uint32(len(itr.HullPlaneIndices)))
	for _, v := range itr.HullPlaneIndices {
		w.PutU16(v)
	}
	w.PutU32(uint32(len(itr.HullEmitStringIndices)))
	for _, v := range itr.HullEmitStringIndices {
		w.PutU32(v)
	}
	w.PutU32(uint32(len(itr.HullSurfaceIndices)))
	for _, v := range itr.HullSurfaceIndices {
		w.PutU32(v)
	}
	w.PutU32(uint32(len(itr.PolyListPlaneIndices)))
	for _, v := range itr.PolyListPlaneIndices {
		w.PutU16(v)
	}
	w.PutU32(uint32(len(itr.PolyListPointIndices)))
	for _, v := range itr.PolyListPointIndices {
		w.PutU32(v)
	}
	w.PutU32(uint32(len(itr.PolyListStringCharacters)))
	w.PutBytes(itr.PolyListStringCharacters)

	// Coord bins are a fixed 16x16 grid, written without a count.
	for i := range itr.CoordBins {
		w.PutU32(itr.CoordBins[i].BinStart)
		w.PutU32(itr.CoordBins[i].BinCount)
	}
	w.PutU32(uint32(len(itr.CoordBinIndices)))
	for _, v := range itr.CoordBinIndices {
		w.PutU16(v)
	}
	w.PutU32(itr.CoordBinMode)

	w.PutColor(itr.BaseAmbientColor)
	w.PutColor(itr.AlarmAmbientColor)

	if version >= 10 {
		w.PutU32(0) // texture normals
		w.PutU32(0) // tex matrices
		w.PutU32(0) // tex mat indices
	}
	if version >= 11 {
		w.PutU32(0) // extended light data
	}
	if version != 4 {
		w.PutU32(itr.ExtendedLightMapData)
		if itr.ExtendedLightMapData != 0 {
			w.PutU32(itr.LightMapBorderSize)
			w.PutU32(0)
		}
	}
}

func writeSurface(w *WireWriter, s *Surface, version uint32) {
	w.PutU32(s.WindingStart)
	w.PutU8(s.WindingCount)
	w.PutU16(s.PlaneIndex)
	w.PutU16(s.TextureIndex)
	w.PutU32(s.TexGenIndex)
	w.PutU8(s.SurfaceFlags)
	w.PutU32(s.FanMask)
	w.PutU16(s.LightMap.FinalWord)
	w.PutF32(s.LightMap.TexGenXDistance)
	w.PutF32(s.LightMap.TexGenYDistance)
	w.PutU16(s.LightCount)
	w.PutU32(s.LightStateInfoStart)
	if version >= 13 {
		w.PutU32(s.MapOffsetX)
		w.PutU32(s.MapOffsetY)
		w.PutU32(s.MapSizeX)
		w.PutU32(s.MapSizeY)
	} else {
		w.PutU8(uint8(s.MapOffsetX))
		w.PutU8(uint8(s.MapOffsetY))
		w.PutU8(uint8(s.MapSizeX))
		w.PutU8(uint8(s.MapSizeY))
	}
}

func writeConvexHull(w *WireWriter, h *ConvexHull, version uint32) {
	w.PutU32(h.HullStart)
	w.PutU16(h.HullCount)
	w.PutF32(h.MinX)
	w.PutF32(h.MaxX)
	w.PutF32(h.MinY)
	w.PutF32(h.MaxY)
	w.PutF32(h.MinZ)
	w.PutF32(h.MaxZ)
	w.PutU32(h.SurfaceStart)
	w.PutU16(h.SurfaceCount)
	w.PutU32(h.PlaneStart)
	w.PutU32(h.PolyListPlaneStart)
	w.PutU32(h.PolyListPointStart)
	w.PutU32(h.PolyListStringStart)
	if version >= 12 {
		w.PutU8(h.StaticMesh)
	}
}

func encodeBSPIndex16(idx BSPIndex) uint16 {
	v := uint16(idx.Index)
	if idx.Leaf {
		v |= BSP_U16_LEAF_BIT
		if idx.Solid {
			v |= BSP_U16_SOLID_BIT
		}
	}
	return v
}

func encodeBSPIndex32(idx BSPIndex) uint32 {
	v := idx.Index
	if idx.Leaf {
		v |= BSP_U32_LEAF_BIT
		if idx.Solid {
			v |= BSP_U32_SOLID_BIT
		}
	}
	return v
}

func writeTrigger(w *WireWriter, t *Trigger) {
	w.PutString(t.Name)
	w.PutString(t.Datablock)
	w.PutDict(t.Properties)
	w.PutU32(uint32(len(t.Polyhedron.PointList)))
	for i := range t.Polyhedron.PointList {
		w.PutPoint(&t.Polyhedron.PointList[i])
	}
	w.PutU32(uint32(len(t.Polyhedron.PlaneList)))
	for i := range t.Polyhedron.PlaneList {
		w.PutPlane(&t.Polyhedron.PlaneList[i])
	}
	w.PutU32(uint32(len(t.Polyhedron.EdgeList)))
	for i := range t.Polyhedron.EdgeList {
		e := &t.Polyhedron.EdgeList[i]
		w.PutU32(e.Face0)
		w.PutU32(e.Face1)
		w.PutU32(e.Vertex0)
		w.PutU32(e.Vertex1)
	}
	w.PutPoint(&t.Offset)
}

func writePathFollower(w *WireWriter, f *InteriorPathFollower) {
	w.PutString(f.Name)
	w.PutString(f.Datablock)
	w.PutU32(f.InteriorResIndex)
	w.PutPoint(&f.Offset)
	w.PutDict(f.Properties)
	w.PutU32(uint32(len(f.TriggerIDs)))
	for _, id := range f.TriggerIDs {
		w.PutU32(id)
	}
	w.PutU32(uint32(len(f.WayPoints)))
	for i := range f.WayPoints {
		p := &f.WayPoints[i]
		w.PutPoint(&p.Position)
		w.PutF32(p.Rotation.X)
		w.PutF32(p.Rotation.Y)
		w.PutF32(p.Rotation.Z)
		w.PutF32(p.Rotation.W)
		w.PutU32(p.MsToNext)
		w.PutU32(p.SmoothingType)
	}
	w.PutU32(f.TotalMs)
}

func writeGameEntity(w *WireWriter, e *GameEntity) {
	w.PutString(e.Datablock)
	w.PutString(e.GameClass)
	w.PutPoint(&e.Position)
	w.PutDict(e.Properties)
}

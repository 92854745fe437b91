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

// Lightmap layout for the non-MB path. Each surface gets a rectangle sized
// from its extent along the two axes most perpendicular to its normal,
// rectangles are shelf-packed into 256x256 pages in surface order, and every
// page is written as a flat ambient-colored PNG. No radiosity - engines just
// need coherent lightmap metadata and loadable pages.
package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/bits"

	"github.com/chewxy/math32"
)

const LIGHTMAP_PAGE_SIZE = 256

type lmapRect struct {
	width, height uint32
}

func (b *difBuilder) computeLightmaps() {
	rects := make([]lmapRect, len(b.itr.Surfaces))
	for si := range b.itr.Surfaces {
		rects[si] = b.fillInLightmapInfo(si)
	}

	placements, pageCount := packLightmapRects(rects)

	for si := range b.itr.Surfaces {
		s := &b.itr.Surfaces[si]
		p := placements[si]
		b.itr.NormalLMapIndices[si] = p.page
		s.MapSizeX = rects[si].width
		s.MapSizeY = rects[si].height
		s.MapOffsetX = p.x
		s.MapOffsetY = p.y
		s.LightMap.TexGenXDistance += float32(p.x) / LIGHTMAP_PAGE_SIZE
		s.LightMap.TexGenYDistance += float32(p.y) / LIGHTMAP_PAGE_SIZE
	}

	page := ambientPage(uint8(b.ambient[0]), uint8(b.ambient[1]), uint8(b.ambient[2]))
	for i := uint32(0); i < pageCount; i++ {
		b.itr.LightMaps = append(b.itr.LightMaps, LightMapPage{Data: page})
	}
}

// fillInLightmapInfo picks the dominant axis pair for the surface, fills the
// texgen word (stEnc and log scales) and returns the lumel rectangle size.
func (b *difBuilder) fillInLightmapInfo(surfaceIndex int) lmapRect {
	s := &b.itr.Surfaces[surfaceIndex]
	norm := planeNormal(b.itr, s.PlaneIndex&PLANE_INDEX_MASK)
	if s.PlaneFlipped {
		norm = Point3F{-norm[0], -norm[1], -norm[2]}
	}

	bestAxis := 0
	bestDot := float32(-1)
	for i := 0; i < 3; i++ {
		if d := math32.Abs(norm[i]); d > bestDot {
			bestDot = d
			bestAxis = i
		}
	}
	var sc, tc int
	var stEnc uint16
	switch bestAxis {
	case 0:
		sc, tc, stEnc = 1, 2, 3
	case 1:
		sc, tc, stEnc = 0, 2, 1
	default:
		sc, tc, stEnc = 0, 1, 0
	}

	minS, minT := float32(1e10), float32(1e10)
	maxS, maxT := float32(-1e10), float32(-1e10)
	for i := uint8(0); i < s.WindingCount; i++ {
		pt := b.itr.Points[b.itr.Indices[s.WindingStart+uint32(i)]]
		if pt[sc] < minS {
			minS = pt[sc]
		}
		if pt[sc] > maxS {
			maxS = pt[sc]
		}
		if pt[tc] < minT {
			minT = pt[tc]
		}
		if pt[tc] > maxT {
			maxT = pt[tc]
		}
	}

	virtualMin := [2]float32{minS, minT}
	virtualMax := [2]float32{maxS, maxT}
	var desiredStart, desiredEnd [2]float32
	for i := 0; i < 2; i++ {
		desiredStart[i] = virtualMin[i] / float32(b.lumelScale)
		desiredEnd[i] = virtualMax[i] / float32(b.lumelScale)
		if desiredStart[i]-math32.Floor(desiredStart[i]) < 0.5 {
			desiredStart[i] = math32.Floor(desiredStart[i] - 1)
		} else {
			desiredStart[i] = math32.Floor(desiredStart[i])
		}
		if desiredEnd[i]-math32.Ceil(desiredEnd[i]) < 0.5 {
			desiredEnd[i] = math32.Ceil(desiredEnd[i] + 1)
		} else {
			desiredEnd[i] = math32.Ceil(desiredEnd[i])
		}
	}

	dimX := uint32(desiredEnd[0] - desiredStart[0] + 0.5)
	dimY := uint32(desiredEnd[1] - desiredStart[1] + 0.5)
	if dimX > LIGHTMAP_PAGE_SIZE {
		dimX = LIGHTMAP_PAGE_SIZE
	}
	if dimY > LIGHTMAP_PAGE_SIZE {
		dimY = LIGHTMAP_PAGE_SIZE
	}

	s.LightMap.TexGenXDistance = -desiredStart[0] / LIGHTMAP_PAGE_SIZE
	s.LightMap.TexGenYDistance = -desiredStart[1] / LIGHTMAP_PAGE_SIZE

	scale := float32(1) / (LIGHTMAP_PAGE_SIZE * float32(b.lumelScale))
	invScale := uint32(1/scale + 0.5)
	logScale := uint16(31 - bits.LeadingZeros32(invScale))
	s.LightMap.FinalWord = stEnc<<13 | (logScale&0x3f)<<6 | logScale&0x3f

	return lmapRect{width: dimX, height: dimY}
}

type lmapPlacement struct {
	page uint32
	x, y uint32
}

// packLightmapRects shelf-packs rectangles in surface order: left to right
// along the current shelf, a new shelf when the row fills, a new page when
// the shelf doesn't fit. Deterministic by construction.
func packLightmapRects(rects []lmapRect) ([]lmapPlacement, uint32) {
	placements := make([]lmapPlacement, len(rects))
	var page, shelfX, shelfY, shelfH uint32
	for i, r := range rects {
		if shelfX+r.width > LIGHTMAP_PAGE_SIZE {
			shelfY += shelfH
			shelfX, shelfH = 0, 0
		}
		if shelfY+r.height > LIGHTMAP_PAGE_SIZE {
			page++
			shelfX, shelfY, shelfH = 0, 0, 0
		}
		placements[i] = lmapPlacement{page: page, x: shelfX, y: shelfY}
		shelfX += r.width
		if r.height > shelfH {
			shelfH = r.height
		}
	}
	return placements, page + 1
}

// ambientPage encodes one flat-colored 256x256 PNG.
func ambientPage(r, g, bl uint8) []byte {
	img := image.NewRGBA(image.Rect(0, 0, LIGHTMAP_PAGE_SIZE, LIGHTMAP_PAGE_SIZE))
	fill := color.RGBA{R: r, G: g, B: bl, A: 255}
	for y := 0; y < LIGHTMAP_PAGE_SIZE; y++ {
		for x := 0; x < LIGHTMAP_PAGE_SIZE; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		Log.Panic("lightmap page encode failed: %v", err)
	}
	return buf.Bytes()
}

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

// Approximate-equality pools. Every vertex and face plane of an interior goes
// through here exactly once, single-threaded, in input order: nearest existing
// entry within epsilon wins, otherwise the candidate is appended. Buckets are
// coarse spatial hashes (32-unit cells for points), so a lookup only scans
// entries that could possibly match. Append order is input order, which is
// what makes pool indices reproducible across runs and worker counts.
package main

import (
	"github.com/chewxy/math32"
)

type dedupPools struct {
	interior *Interior
	epsilonPoint float32
	epsilonPlane float32

	pointBuckets  map[uint32][]uint32 // bucket -> point pool indices
	normalBuckets map[uint32][]uint16
	planeBuckets  map[uint32][]uint16
	texgenBuckets map[uint32][]uint32
	emitStrings   map[string]uint32
	mbOnly        bool
}

func newDedupPools(itr *Interior, epsilonPoint, epsilonPlane float32, mbOnly bool) *dedupPools {
	return &dedupPools{
		interior:      itr,
		epsilonPoint:  epsilonPoint,
		epsilonPlane:  epsilonPlane,
		pointBuckets:  make(map[uint32][]uint32),
		normalBuckets: make(map[uint32][]uint16),
		planeBuckets:  make(map[uint32][]uint16),
		texgenBuckets: make(map[uint32][]uint32),
		emitStrings:   make(map[string]uint32),
		mbOnly:        mbOnly,
	}
}

// bucketCell is a saturating float to uint32 conversion: negatives land in
// cell 0 and overlarge values clamp to the top cell. Go's own float to uint
// conversion is implementation-defined out of range (and wraps on amd64), so
// coordinates straddling zero would otherwise land in distant buckets and
// near-identical points would never meet for the epsilon comparison.
func bucketCell(v float32) uint32 {
	f := math32.Floor(v)
	if f <= 0 {
		return 0
	}
	if f >= 4294967296 {
		return 0xffffffff
	}
	return uint32(f)
}

func pointBucket(p *Point3F) uint32 {
	x := (bucketCell(p[0]) >> 5) & 0xf
	y := (bucketCell(p[1]) >> 5) & 0xf
	z := (bucketCell(p[2]) >> 5) & 0xf
	return (x << 8) | (y << 4) | z
}

func planeBucket(p *PlaneF) uint32 {
	mul := math32.Max(math32.Abs(p.Normal[0]),
		math32.Max(math32.Abs(p.Normal[1]), math32.Abs(p.Normal[2])))
	mul = math32.Floor(mul*100+0.5) / 100
	val := mul * (math32.Floor(math32.Abs(p.Distance)*100+0.5) / 100)
	return bucketCell(val) % (1 << 12)
}

// AddPoint interns a vertex: index of the first pooled point within
// epsilonPoint on every axis, else a fresh pool entry.
func (d *dedupPools) AddPoint(p *Point3F) uint32 {
	bucket := pointBucket(p)
	for _, idx := range d.pointBuckets[bucket] {
		if pointsAlmostEqual(&d.interior.Points[idx], p, d.epsilonPoint) {
			return idx
		}
	}
	idx := uint32(len(d.interior.Points))
	d.interior.Points = append(d.interior.Points, *p)
	d.interior.PointVisibilities = append(d.interior.PointVisibilities, 0xff)
	d.pointBuckets[bucket] = append(d.pointBuckets[bucket], idx)
	return idx
}

func (d *dedupPools) addNormal(n *Point3F) uint16 {
	bucket := pointBucket(n)
	for _, idx := range d.normalBuckets[bucket] {
		if pointsAlmostEqual(&d.interior.Normals[idx], n, d.epsilonPoint) {
			return idx
		}
	}
	idx := uint16(len(d.interior.Normals))
	d.interior.Normals = append(d.interior.Normals, *n)
	if !d.mbOnly {
		d.interior.Normal2s = append(d.interior.Normal2s, *n)
	}
	d.normalBuckets[bucket] = append(d.normalBuckets[bucket], idx)
	return idx
}

// AddPlane interns a plane. A plane equal to the negation of a pooled entry
// is not stored again; its index comes back with PLANE_FLIP_BIT set.
func (d *dedupPools) AddPlane(p *PlaneF) uint16 {
	bucket := planeBucket(p)
	for _, idx := range d.planeBuckets[bucket] {
		pooled := d.poolPlane(idx)
		if planesAlmostEqual(&pooled, p, d.epsilonPlane) {
			return idx
		}
	}
	inv := p.Flipped()
	bucketInv := planeBucket(&inv)
	for _, idx := range d.planeBuckets[bucketInv] {
		pooled := d.poolPlane(idx)
		if planesAlmostEqual(&pooled, &inv, d.epsilonPlane) {
			return idx | PLANE_FLIP_BIT
		}
	}

	idx := uint16(len(d.interior.Planes))
	normalIndex := d.addNormal(&p.Normal)
	d.interior.Planes = append(d.interior.Planes, Plane{
		NormalIndex:   normalIndex,
		PlaneDistance: p.Distance,
	})
	d.planeBuckets[bucket] = append(d.planeBuckets[bucket], idx)
	return idx
}

// poolPlane reconstructs the geometric plane for a pool index, honoring the
// flip bit.
func (d *dedupPools) poolPlane(index uint16) PlaneF {
	entry := d.interior.Planes[index&PLANE_INDEX_MASK]
	p := PlaneF{
		Normal:   d.interior.Normals[entry.NormalIndex],
		Distance: entry.PlaneDistance,
	}
	if index&PLANE_FLIP_BIT != 0 {
		p = p.Flipped()
	}
	return p
}

func texgenBucketHalf(pl *PlaneF) uint32 {
	mul := math32.Max(math32.Abs(pl.Normal[0]),
		math32.Max(math32.Abs(pl.Normal[1]), math32.Abs(pl.Normal[2])))
	mul = math32.Floor(mul*100+0.5) / 100
	val := mul * (math32.Floor(math32.Abs(pl.Distance)*100+0.5) / 100)
	return bucketCell(val) % (1 << 12)
}

// Texgen equality is a fixed 1e-5 on all eight components, independent of the
// caller epsilons.
func texgensAlmostEqual(a, b *TexGenPlanes) bool {
	const eps = 1e-5
	return math32.Abs(a.PlaneX.Normal[0]-b.PlaneX.Normal[0]) <= eps &&
		math32.Abs(a.PlaneX.Normal[1]-b.PlaneX.Normal[1]) <= eps &&
		math32.Abs(a.PlaneX.Normal[2]-b.PlaneX.Normal[2]) <= eps &&
		math32.Abs(a.PlaneX.Distance-b.PlaneX.Distance) <= eps &&
		math32.Abs(a.PlaneY.Normal[0]-b.PlaneY.Normal[0]) <= eps &&
		math32.Abs(a.PlaneY.Normal[1]-b.PlaneY.Normal[1]) <= eps &&
		math32.Abs(a.PlaneY.Normal[2]-b.PlaneY.Normal[2]) <= eps &&
		math32.Abs(a.PlaneY.Distance-b.PlaneY.Distance) <= eps
}

func (d *dedupPools) AddTexGen(tg *TexGenPlanes) uint32 {
	bucket := texgenBucketHalf(&tg.PlaneX) ^ (texgenBucketHalf(&tg.PlaneY) << 12)
	for _, idx := range d.texgenBuckets[bucket] {
		if texgensAlmostEqual(&d.interior.TexGenEqs[idx], tg) {
			return idx
		}
	}
	idx := uint32(len(d.interior.TexGenEqs))
	d.interior.TexGenEqs = append(d.interior.TexGenEqs, *tg)
	d.texgenBuckets[bucket] = append(d.texgenBuckets[bucket], idx)
	return idx
}

// AddEmitString interns a hull emit string by exact bytes and returns its
// character offset in the pool.
func (d *dedupPools) AddEmitString(s []byte) uint32 {
	if idx, ok := d.emitStrings[string(s)]; ok {
		return idx
	}
	idx := uint32(len(d.interior.ConvexHullEmitStringCharacters))
	d.emitStrings[string(s)] = idx
	d.interior.ConvexHullEmitStringCharacters = append(
		d.interior.ConvexHullEmitStringCharacters, s...)
	return idx
}

func (d *dedupPools) AddMaterial(name string) uint16 {
	for i, m := range d.interior.MaterialNames {
		if m == name {
			return uint16(i)
		}
	}
	d.interior.MaterialNames = append(d.interior.MaterialNames, name)
	return uint16(len(d.interior.MaterialNames) - 1)
}

// planeNormal resolves a plane pool index (flip bit honored) to its outward
// normal. Shared by the lightmap sizing and the coverage raycast.
func planeNormal(itr *Interior, index uint16) Point3F {
	n := itr.Normals[itr.Planes[index&PLANE_INDEX_MASK].NormalIndex]
	if index&PLANE_FLIP_BIT != 0 {
		n = Point3F{-n[0], -n[1], -n[2]}
	}
	return n
}

func planeDistance(itr *Interior, index uint16) float32 {
	dist := itr.Planes[index&PLANE_INDEX_MASK].PlaneDistance
	if index&PLANE_FLIP_BIT != 0 {
		dist = -dist
	}
	return dist
}

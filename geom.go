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

// Geometry primitives. The DIF format is float32 throughout, so all geometry
// stays in float32 from parse to write - converting through float64 and back
// would move points by more than the default epsilons.
package main

import (
	"github.com/chewxy/math32"
	"github.com/flywave/go3d/vec3"
)

type Point3F = vec3.T

type BoxF = vec3.Box

type PlaneF struct {
	Normal   Point3F
	Distance float32
}

type SphereF struct {
	Origin Point3F
	Radius float32
}

// QuatF is only ever the identity rotation in our output (waypoints carry no
// authored rotation in CSX), but the field is part of the wire layout.
type QuatF struct {
	X, Y, Z, W float32
}

func identityQuat() QuatF {
	return QuatF{X: 1, Y: 0, Z: 0, W: 0} // Torque writes x-axis/zero-angle
}

// Signed distance from the plane to a point. Positive is the front halfspace.
func (p *PlaneF) DistToPoint(pt *Point3F) float32 {
	return vec3.Dot(&p.Normal, pt) + p.Distance
}

func (p *PlaneF) Flipped() PlaneF {
	return PlaneF{
		Normal:   Point3F{-p.Normal[0], -p.Normal[1], -p.Normal[2]},
		Distance: -p.Distance,
	}
}

// Axial planes get a scoring bonus in the BSP builder; a plane is axial when
// exactly two normal components vanish within epsilon.
func (p *PlaneF) IsAxial(epsilon float32) bool {
	zeros := 0
	for i := 0; i < 3; i++ {
		if math32.Abs(p.Normal[i]) < epsilon {
			zeros++
		}
	}
	return zeros == 2
}

// pointsAlmostEqual is the Point equality contract: per-axis absolute
// difference within epsilon.
func pointsAlmostEqual(a, b *Point3F, epsilon float32) bool {
	return math32.Abs(a[0]-b[0]) <= epsilon &&
		math32.Abs(a[1]-b[1]) <= epsilon &&
		math32.Abs(a[2]-b[2]) <= epsilon
}

// planesAlmostEqual is the Plane equality contract: normals nearly parallel
// (dot > 0.999, same direction - a plane and its negation are NOT equal) and
// offsets within epsilon.
func planesAlmostEqual(a, b *PlaneF, epsilon float32) bool {
	return vec3.Dot(&a.Normal, &b.Normal) > 0.999 &&
		math32.Abs(a.Distance-b.Distance) <= epsilon
}

// planeFromPoints fits a plane through the first three non-collinear points
// of an ordered winding. Returns false when the whole winding is collinear or
// coincident - the DegenerateGeometry condition.
func planeFromPoints(points []Point3F, epsilon float32) (PlaneF, bool) {
	if len(points) < 3 {
		return PlaneF{}, false
	}
	a := points[0]
	for i := 1; i < len(points); i++ {
		ab := vec3.Sub(&points[i], &a)
		if ab.Length() <= epsilon {
			continue
		}
		for j := i + 1; j < len(points); j++ {
			ac := vec3.Sub(&points[j], &a)
			n := vec3.Cross(&ab, &ac)
			if n.Length() <= epsilon {
				continue
			}
			n.Normalize()
			return PlaneF{Normal: n, Distance: -vec3.Dot(&n, &a)}, true
		}
	}
	return PlaneF{}, false
}

// polygonArea of an arbitrary planar winding: triangle fan around the
// centroid, same accumulation the coverage report uses.
func polygonArea(points []Point3F) float32 {
	if len(points) < 3 {
		return 0
	}
	centroid := polygonCentroid(points)
	var area float32
	for i := 0; i < len(points); i++ {
		e1 := vec3.Sub(&points[i], &centroid)
		next := points[(i+1)%len(points)]
		e2 := vec3.Sub(&next, &centroid)
		c := vec3.Cross(&e1, &e2)
		area += c.Length() / 2
	}
	return area
}

func polygonCentroid(points []Point3F) Point3F {
	var sum Point3F
	for i := range points {
		sum.Add(&points[i])
	}
	sum.Scale(1 / float32(len(points)))
	return sum
}

func boundingBoxOf(points []Point3F) BoxF {
	box := vec3.MinBox
	for i := range points {
		box.Extend(&points[i])
	}
	return box
}

func boundingSphereOf(box *BoxF) SphereF {
	center := box.Center()
	radius := vec3.Sub(&box.Max, &center)
	return SphereF{Origin: center, Radius: radius.Length()}
}

// segmentPlaneCross returns the interpolation parameter t of the intersection
// of segment v1->v2 with the plane. Caller guarantees the segment straddles.
func segmentPlaneCross(p *PlaneF, v1, v2 *Point3F) float32 {
	dir := vec3.Sub(v2, v1)
	return (-p.Distance - vec3.Dot(&p.Normal, v1)) / vec3.Dot(&p.Normal, &dir)
}

func lerpPoint(v1, v2 *Point3F, t float32) Point3F {
	dir := vec3.Sub(v2, v1)
	dir.Scale(t)
	return vec3.Add(v1, &dir)
}

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

// Scene preprocessing. Constructor stores brush geometry in local space with a
// per-brush transform; everything downstream wants world space. This pass
// bakes the transform into vertices, refits face planes from the transformed
// windings, folds texgen rotation/scale/texDiv into the two texture-axis
// planes, and assigns every surviving face a document-wide sequential id.
package main

import (
	"github.com/chewxy/math32"
	"github.com/flywave/go3d/vec3"
	"github.com/pkg/errors"
)

// DEFAULT_TEX_DIV substitutes for an absent or zero texDiv component. 32 is
// Constructor's own default texture division.
const DEFAULT_TEX_DIV = 32

// The transform attribute is 16 floats in row-major order; a point maps as
// p' = M * (p, 1).
func (m *AttrMatrix) TransformPoint(p *Point3F) Point3F {
	return Point3F{
		m[0]*p[0] + m[1]*p[1] + m[2]*p[2] + m[3],
		m[4]*p[0] + m[5]*p[1] + m[6]*p[2] + m[7],
		m[8]*p[0] + m[9]*p[1] + m[10]*p[2] + m[11],
	}
}

// TransformPlane carries a texgen plane through the brush transform. The
// normal is rescaled per-column rather than renormalized: texgen "normals"
// are texture axes whose magnitude encodes texel density, and a plain
// inverse-transpose would destroy that.
func (m *AttrMatrix) TransformPlane(p *PlaneF) PlaneF {
	col1 := math32.Sqrt(m[0]*m[0] + m[4]*m[4] + m[8]*m[8])
	col2 := math32.Sqrt(m[1]*m[1] + m[5]*m[5] + m[9]*m[9])
	col3 := math32.Sqrt(m[2]*m[2] + m[6]*m[6] + m[10]*m[10])

	sx := p.Normal[0] / col1
	sy := p.Normal[1] / col2
	sz := p.Normal[2] / col3
	rx := m[0]*sx/col1 + m[1]*sy/col2 + m[2]*sz/col3
	ry := m[4]*sx/col1 + m[5]*sy/col2 + m[6]*sz/col3
	rz := m[8]*sx/col1 + m[9]*sy/col2 + m[10]*sz/col3

	dist := p.Distance
	d := (-dist*(rx*rx+ry*ry+rz*rz) + dist) -
		((rx*((rx*-dist)+m[3]) + ry*((ry*-dist)+m[7]) + rz*((rz*-dist)+m[11])) + dist) +
		dist
	return PlaneF{Normal: Point3F{rx, ry, rz}, Distance: d}
}

// facePoints resolves a face's index list against its brush's vertex table.
// Out-of-range indices make the face degenerate.
func facePoints(b *Brush, f *Face) ([]Point3F, bool) {
	pts := make([]Point3F, 0, len(f.Indices.Indices))
	for _, idx := range f.Indices.Indices {
		if idx < 0 || int(idx) >= len(b.Vertices) {
			return nil, false
		}
		pts = append(pts, b.Vertices[idx].Pos.Point())
	}
	return pts, true
}

// PreprocessScene mutates the parsed scene into world space. Degenerate faces
// (collinear windings, fewer than three points, bad indices) are dropped with
// a warning; the returned slice holds one error per dropped face so callers
// can surface them in the conversion report.
func PreprocessScene(scene *ConstructorScene, epsilon float32) []error {
	var warnings []error
	var curFaceID int32
	for di := range scene.DetailLevels {
		im := &scene.DetailLevels[di].InteriorMap
		for bi := range im.Brushes {
			b := &im.Brushes[bi]
			for vi := range b.Vertices {
				pos := b.Vertices[vi].Pos.Point()
				b.Vertices[vi].Pos = AttrPoint(b.Transform.TransformPoint(&pos))
			}

			kept := b.Faces[:0]
			for fi := range b.Faces {
				f := &b.Faces[fi]
				pts, ok := facePoints(b, f)
				if ok {
					var plane PlaneF
					plane, ok = planeFromPoints(pts, epsilon)
					if ok {
						// Keep the authored facing: Constructor's winding
						// order is not guaranteed to agree with the stored
						// plane normal.
						authored := b.Transform.TransformPlane((*PlaneF)(&f.Plane))
						if vec3.Dot(&plane.Normal, &authored.Normal) < 0 {
							plane = plane.Flipped()
						}
						f.Plane = AttrPlane(plane)
					}
				}
				if !ok {
					w := brushError(errors.Wrapf(ErrDegenerateGeometry,
						"face %d has no usable winding", f.ID), b.ID)
					Log.Verbose(1, "Dropping face: %s\n", w.Error())
					warnings = append(warnings, w)
					continue
				}
				f.FaceID = curFaceID
				curFaceID++
				kept = append(kept, *f)
			}
			b.Faces = kept

			fixTexGens(b, im.BrushScale)
		}
	}
	return warnings
}

// fixTexGens folds rotation, scale, texDiv and the interior's brushScale into
// the two texture-axis planes, then carries the planes through the brush
// transform. After this the texgen is a plain pair of planes the assembler
// copies straight into the output.
func fixTexGens(b *Brush, brushScale uint32) {
	for fi := range b.Faces {
		f := &b.Faces[fi]
		axisU := f.TexGens.PlaneX.Normal
		axisV := f.TexGens.PlaneY.Normal
		if math32.Mod(f.TexGens.Rot, 360) != 0 {
			up := vec3.Cross(&f.TexGens.PlaneX.Normal, &f.TexGens.PlaneY.Normal)
			up.Normalize()
			axisU = rotateAboutAxis(&axisU, &up, f.TexGens.Rot)
			axisV = rotateAboutAxis(&axisV, &up, f.TexGens.Rot)
		}

		texDivU := texDivAt(f.TexDiv, 0)
		texDivV := texDivAt(f.TexDiv, 1)

		s1 := (1 / f.TexGens.Scale[0]) * (float32(brushScale) / texDivU)
		f.TexGens.PlaneX.Normal = axisU.Scaled(s1)
		f.TexGens.PlaneX.Distance = f.TexGens.PlaneX.Distance / texDivU
		f.TexGens.PlaneX = b.Transform.TransformPlane(&f.TexGens.PlaneX)

		s1 = (1 / f.TexGens.Scale[1]) * (float32(brushScale) / texDivV)
		f.TexGens.PlaneY.Normal = axisV.Scaled(s1)
		f.TexGens.PlaneY.Distance = f.TexGens.PlaneY.Distance / texDivV
		f.TexGens.PlaneY = b.Transform.TransformPlane(&f.TexGens.PlaneY)
	}
}

func texDivAt(div AttrIntList, i int) float32 {
	if i >= len(div) || div[i] == 0 {
		return DEFAULT_TEX_DIV
	}
	return float32(div[i])
}

// Rodrigues rotation of v about unit axis k by angle in degrees.
func rotateAboutAxis(v, k *Point3F, degrees float32) Point3F {
	rad := degrees * math32.Pi / 180
	sin, cos := math32.Sincos(rad)
	kv := vec3.Cross(k, v)
	dot := vec3.Dot(k, v)
	var out Point3F
	for i := 0; i < 3; i++ {
		out[i] = v[i]*cos + kv[i]*sin + k[i]*dot*(1-cos)
	}
	return out
}

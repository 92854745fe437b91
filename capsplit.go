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

// Interior capacity splitting. An interior's surface count is stored in 16-bit
// fields with the high bits reserved, so one interior holds at most 16383
// faces. Oversized detail levels are split into several interiors along brush
// boundaries in authored order; brushes are never subdivided, so a single
// brush over the limit is fatal.
package main

// splitByCapacity groups brushes greedily: a brush joins the current group
// unless its faces would push the group past limit, in which case it starts a
// new group. limit is a parameter so tests don't need 16384 faces of input.
func splitByCapacity(brushes []*Brush, limit int) ([][]*Brush, error) {
	var groups [][]*Brush
	var cur []*Brush
	curFaces := 0
	for _, b := range brushes {
		n := len(b.Faces)
		if n > limit {
			return nil, brushError(ErrCapacityExceeded, b.ID)
		}
		if curFaces+n > limit {
			groups = append(groups, cur)
			cur = nil
			curFaces = 0
		}
		cur = append(cur, b)
		curFaces += n
	}
	groups = append(groups, cur)
	return groups, nil
}

// structuralBrushes selects the brushes that form a detail level's world
// geometry: everything except markers (999) and trigger volumes (4), unless
// the marker is unowned and therefore plain geometry.
func structuralBrushes(m *InteriorMap) []*Brush {
	var out []*Brush
	for i := range m.Brushes {
		b := &m.Brushes[i]
		if (b.Type != 999 && b.Type != 4) || b.Owner == 0 {
			out = append(out, b)
		}
	}
	return out
}

// subObjectGroups collects owned brushes (moving platforms) grouped by owner
// id in ascending owner order.
func subObjectGroups(m *InteriorMap) [][]*Brush {
	var owners []int32
	byOwner := make(map[int32][]*Brush)
	for i := range m.Brushes {
		b := &m.Brushes[i]
		if b.Owner == 0 {
			continue
		}
		if _, ok := byOwner[b.Owner]; !ok {
			owners = append(owners, b.Owner)
		}
		byOwner[b.Owner] = append(byOwner[b.Owner], b)
	}
	for i := 1; i < len(owners); i++ {
		for j := i; j > 0 && owners[j] < owners[j-1]; j-- {
			owners[j], owners[j-1] = owners[j-1], owners[j]
		}
	}
	out := make([][]*Brush, 0, len(owners))
	for _, o := range owners {
		out = append(out, byOwner[o])
	}
	return out
}

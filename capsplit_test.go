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
package main

import (
	"errors"
	"testing"
)

func brushWithFaces(id int32, faces int) *Brush {
	b := &Brush{ID: id}
	b.Faces = make([]Face, faces)
	return b
}

func TestSplitByCapacityGreedy(t *testing.T) {
	brushes := []*Brush{
		brushWithFaces(1, 3),
		brushWithFaces(2, 3),
		brushWithFaces(3, 3),
	}
	groups, err := splitByCapacity(brushes, 6)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("groups %d, want 2", len(groups))
	}
	if len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Errorf("group sizes %d/%d, want 2/1", len(groups[0]), len(groups[1]))
	}
	if groups[0][0].ID != 1 || groups[1][0].ID != 3 {
		t.Error("brush order not preserved across groups")
	}
}

func TestSplitByCapacitySingleGroup(t *testing.T) {
	brushes := []*Brush{brushWithFaces(1, 2), brushWithFaces(2, 2)}
	groups, err := splitByCapacity(brushes, 100)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(groups) != 1 || len(groups[0]) != 2 {
		t.Errorf("want one group of 2, got %d groups", len(groups))
	}
}

func TestSplitByCapacityEmptyInput(t *testing.T) {
	groups, err := splitByCapacity(nil, 10)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if len(groups) != 1 {
		t.Errorf("groups %d, want 1 (a single empty group)", len(groups))
	}
}

// Brushes are never subdivided, so a brush alone over the limit cannot be
// placed anywhere.
func TestSplitByCapacityOversizedBrush(t *testing.T) {
	brushes := []*Brush{brushWithFaces(7, 11)}
	_, err := splitByCapacity(brushes, 10)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestStructuralBrushFilter(t *testing.T) {
	im := &InteriorMap{Brushes: []Brush{
		{ID: 1, Type: 0, Owner: 0},   // plain geometry
		{ID: 2, Type: 999, Owner: 5}, // owned marker: excluded
		{ID: 3, Type: 4, Owner: 5},   // owned trigger volume: excluded
		{ID: 4, Type: 999, Owner: 0}, // unowned marker: plain geometry
		{ID: 5, Type: 0, Owner: 7},   // owned but structural type: included
	}}
	got := structuralBrushes(im)
	var ids []int32
	for _, b := range got {
		ids = append(ids, b.ID)
	}
	want := []int32{1, 4, 5}
	if len(ids) != len(want) {
		t.Fatalf("structural brushes %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("structural brushes %v, want %v", ids, want)
		}
	}
}

func TestSubObjectGroupsSortedByOwner(t *testing.T) {
	im := &InteriorMap{Brushes: []Brush{
		{ID: 1, Owner: 3},
		{ID: 2, Owner: 0}, // unowned, not a subobject
		{ID: 3, Owner: 1},
		{ID: 4, Owner: 3},
		{ID: 5, Owner: 1},
	}}
	groups := subObjectGroups(im)
	if len(groups) != 2 {
		t.Fatalf("groups %d, want 2", len(groups))
	}
	if groups[0][0].Owner != 1 || groups[1][0].Owner != 3 {
		t.Errorf("groups not in ascending owner order: %d then %d",
			groups[0][0].Owner, groups[1][0].Owner)
	}
	if len(groups[0]) != 2 || len(groups[1]) != 2 {
		t.Errorf("group sizes %d/%d, want 2/2", len(groups[0]), len(groups[1]))
	}
	if groups[1][0].ID != 1 || groups[1][1].ID != 4 {
		t.Error("brushes within a group must keep document order")
	}
}

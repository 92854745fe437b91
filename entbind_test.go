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
	"testing"
)

func ent(id int32, classname string, origin Point3F, props ...string) Entity {
	e := Entity{
		ID:        id,
		Classname: classname,
		Origin:    OptAttrPoint{Point: origin, Valid: true},
	}
	for i := 0; i+1 < len(props); i += 2 {
		e.Properties = append(e.Properties, DictEntry{Key: props[i], Value: props[i+1]})
	}
	return e
}

func boxBrush(id, owner int32, min, max Point3F) Brush {
	return Brush{
		ID: id, Owner: owner, Type: 999,
		Vertices: []Vertex{
			{Pos: AttrPoint{min[0], min[1], min[2]}},
			{Pos: AttrPoint{max[0], max[1], max[2]}},
		},
	}
}

func sceneWith(entities []Entity, brushes []Brush) *ConstructorScene {
	return &ConstructorScene{
		DetailLevels: []DetailLevel{{
			InteriorMap: InteriorMap{Entities: entities, Brushes: brushes},
		}},
	}
}

// Entity stream: elevator A with two waypoints, elevator B with one waypoint
// and a trigger. Grouping follows document order.
func TestPathFollowerBinding(t *testing.T) {
	scene := sceneWith([]Entity{
		ent(1, "worldspawn", Point3F{}),
		ent(2, "Door_Elevator", Point3F{}, "datablock", "MyElevator", "speed", "3"),
		ent(3, "path_node", Point3F{0, 0, 0}, "next_time", "500"),
		ent(4, "path_node", Point3F{0, 0, 4}, "next_time", "250", "smoothing", "1"),
		ent(5, "Door_Elevator", Point3F{}),
		ent(6, "path_node", Point3F{2, 0, 0}, "next_time", "100"),
		ent(7, "trigger", Point3F{}, "datablock", "MyTrigger"),
	}, []Brush{
		boxBrush(10, 7, Point3F{0, 0, 0}, Point3F{2, 2, 2}),
	})

	b := bindEntities(scene)
	if b.UnboundPathNodes != 0 {
		t.Errorf("unbound path nodes %d, want 0", b.UnboundPathNodes)
	}
	if len(b.Followers) != 2 {
		t.Fatalf("followers %d, want 2", len(b.Followers))
	}

	a := b.Followers[0]
	if a.Datablock != "MyElevator" {
		t.Errorf("follower 0 datablock %q, want MyElevator", a.Datablock)
	}
	if _, ok := a.Properties.Get("datablock"); ok {
		t.Error("datablock must be stripped from follower properties")
	}
	if v, _ := a.Properties.Get("speed"); v != "3" {
		t.Errorf("follower 0 lost its speed property, got %q", v)
	}
	if a.Name != "MustChange" {
		t.Errorf("follower 0 name %q, want MustChange", a.Name)
	}
	if len(a.WayPoints) != 2 {
		t.Fatalf("follower 0 waypoints %d, want 2", len(a.WayPoints))
	}
	if a.TotalMs != 750 {
		t.Errorf("follower 0 total ms %d, want 750", a.TotalMs)
	}
	if a.WayPoints[1].SmoothingType != 1 {
		t.Errorf("waypoint smoothing %d, want 1", a.WayPoints[1].SmoothingType)
	}
	if a.WayPoints[1].Position != (Point3F{0, 0, 4}) {
		t.Errorf("waypoint position %v, want (0 0 4)", a.WayPoints[1].Position)
	}
	if a.InteriorResIndex != 0 {
		t.Errorf("follower 0 resource index %d, want 0", a.InteriorResIndex)
	}

	second := b.Followers[1]
	if second.Datablock != "PathedDefault" {
		t.Errorf("follower 1 datablock %q, want PathedDefault", second.Datablock)
	}
	if second.InteriorResIndex != 1 {
		t.Errorf("follower 1 resource index %d, want 1", second.InteriorResIndex)
	}
	if len(second.TriggerIDs) != 1 || second.TriggerIDs[0] != 0 {
		t.Fatalf("follower 1 trigger ids %v, want [0]", second.TriggerIDs)
	}

	if len(b.Triggers) != 1 {
		t.Fatalf("triggers %d, want 1", len(b.Triggers))
	}
	trig := b.Triggers[0]
	if trig.Datablock != "MyTrigger" {
		t.Errorf("trigger datablock %q, want MyTrigger", trig.Datablock)
	}
	if len(trig.Polyhedron.PointList) != 8 ||
		len(trig.Polyhedron.PlaneList) != 6 ||
		len(trig.Polyhedron.EdgeList) != 12 {
		t.Fatalf("trigger polyhedron %d/%d/%d points/planes/edges, want 8/6/12",
			len(trig.Polyhedron.PointList), len(trig.Polyhedron.PlaneList),
			len(trig.Polyhedron.EdgeList))
	}
	// Box from the owned brush bounds (0,0,0)..(2,2,2).
	if trig.Polyhedron.PlaneList[0].Distance != 0 {
		t.Errorf("-x plane distance %f, want 0", trig.Polyhedron.PlaneList[0].Distance)
	}
	if trig.Polyhedron.PlaneList[2].Distance != 2 {
		t.Errorf("+x plane distance %f, want 2", trig.Polyhedron.PlaneList[2].Distance)
	}
	if trig.Polyhedron.PointList[4] != (Point3F{0, 0, 0}) {
		t.Errorf("bottom corner %v, want origin", trig.Polyhedron.PointList[4])
	}
	if trig.Polyhedron.PointList[6] != (Point3F{2, 2, 0}) {
		t.Errorf("bottom far corner %v, want (2 2 0)", trig.Polyhedron.PointList[6])
	}
}

// A path_node before any Door_Elevator has nothing to attach to: dropped,
// counted, and the rest of the stream still binds.
func TestUnboundPathNodeIsDropped(t *testing.T) {
	scene := sceneWith([]Entity{
		ent(1, "path_node", Point3F{}, "next_time", "100"),
		ent(2, "Door_Elevator", Point3F{}),
		ent(3, "path_node", Point3F{}, "next_time", "200"),
	}, nil)

	b := bindEntities(scene)
	if b.UnboundPathNodes != 1 {
		t.Errorf("unbound path nodes %d, want 1", b.UnboundPathNodes)
	}
	if len(b.Followers) != 1 {
		t.Fatalf("followers %d, want 1", len(b.Followers))
	}
	if len(b.Followers[0].WayPoints) != 1 {
		t.Errorf("waypoints %d, want 1 (the bound one)", len(b.Followers[0].WayPoints))
	}
}

func TestElevatorWithoutWaypointsIsSkipped(t *testing.T) {
	scene := sceneWith([]Entity{
		ent(1, "Door_Elevator", Point3F{}),
		ent(2, "trigger", Point3F{}),
	}, nil)
	b := bindEntities(scene)
	if len(b.Followers) != 0 {
		t.Errorf("followers %d, want 0 for an elevator without waypoints", len(b.Followers))
	}
}

func TestGameEntityExtraction(t *testing.T) {
	scene := sceneWith([]Entity{
		ent(1, "worldspawn", Point3F{}, "game_class", "Ignored"),
		ent(2, "light_omni", Point3F{}, "game_class", "Ignored"),
		ent(3, "item_gem", Point3F{1, 2, 3}, "game_class", "Item", "datablock", "GemItem", "extra", "1"),
		ent(4, "spawn_point", Point3F{4, 5, 6}, "game_class", "SpawnSphere"),
		ent(5, "decoration", Point3F{}),
	}, nil)

	b := bindEntities(scene)
	if len(b.GameEntities) != 2 {
		t.Fatalf("game entities %d, want 2", len(b.GameEntities))
	}

	gem := b.GameEntities[0]
	if gem.Datablock != "GemItem" || gem.GameClass != "Item" {
		t.Errorf("gem entity %q/%q, want GemItem/Item", gem.Datablock, gem.GameClass)
	}
	if gem.Position != (Point3F{1, 2, 3}) {
		t.Errorf("gem position %v, want (1 2 3)", gem.Position)
	}
	if _, ok := gem.Properties.Get("game_class"); ok {
		t.Error("game_class must be stripped from entity properties")
	}
	if v, _ := gem.Properties.Get("extra"); v != "1" {
		t.Errorf("gem lost its extra property, got %q", v)
	}

	// Without a datablock the classname stands in.
	spawn := b.GameEntities[1]
	if spawn.Datablock != "spawn_point" {
		t.Errorf("spawn datablock %q, want classname fallback", spawn.Datablock)
	}
}

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

// Entity binding. Constructor stores moving-platform paths as a flat entity
// stream: a Door_Elevator entity opens a group, and every path_node and
// trigger entity after it belongs to that group until the next Door_Elevator.
// A path_node before the first Door_Elevator has nothing to attach to and is
// dropped with a warning. Remaining entities with a game_class property become
// plain game entities in the primary DIF.
package main

type WayPoint struct {
	Position      Point3F
	Rotation      QuatF
	MsToNext      uint32
	SmoothingType uint32
}

type InteriorPathFollower struct {
	Name             string
	Datablock        string
	InteriorResIndex uint32
	Offset           Point3F
	Properties       Dictionary
	TriggerIDs       []uint32
	WayPoints        []WayPoint
	TotalMs          uint32
}

type PolyhedronEdge struct {
	Face0, Face1     uint32
	Vertex0, Vertex1 uint32
}

type Polyhedron struct {
	PointList []Point3F
	PlaneList []PlaneF
	EdgeList  []PolyhedronEdge
}

type Trigger struct {
	Name       string
	Datablock  string
	Properties Dictionary
	Polyhedron Polyhedron
	Offset     Point3F
}

type GameEntity struct {
	Datablock  string
	GameClass  string
	Position   Point3F
	Properties Dictionary
}

// entityBindings is what the primary DIF carries beyond its interiors.
type entityBindings struct {
	Followers    []InteriorPathFollower
	Triggers     []Trigger
	GameEntities []GameEntity
	// Count of path_nodes discarded for lacking a preceding Door_Elevator.
	UnboundPathNodes int
}

type pathGroup struct {
	anchor    *Entity
	pathNodes []*Entity
	triggers  []*Entity
}

// bindEntities walks all detail levels' entity lists and resolves moving
// platforms, their triggers and the remaining game entities. The scene must
// already be preprocessed so brush vertices are in world space (trigger boxes
// come from owned-brush bounds).
func bindEntities(scene *ConstructorScene) *entityBindings {
	out := &entityBindings{}

	var groups []*pathGroup
	var cur *pathGroup
	for di := range scene.DetailLevels {
		ents := scene.DetailLevels[di].InteriorMap.Entities
		for ei := range ents {
			e := &ents[ei]
			switch e.Classname {
			case "Door_Elevator":
				cur = &pathGroup{anchor: e}
				groups = append(groups, cur)
			case "path_node":
				if cur == nil {
					Log.Error("%s\n", entityError(ErrUnboundPathNode, e.ID, e.Classname))
					out.UnboundPathNodes++
					continue
				}
				cur.pathNodes = append(cur.pathNodes, e)
			case "trigger":
				if cur == nil {
					continue
				}
				cur.triggers = append(cur.triggers, e)
			}
		}
	}

	for i, g := range groups {
		if len(g.pathNodes) == 0 {
			continue
		}
		follower := InteriorPathFollower{
			Name:             "MustChange",
			Datablock:        g.anchor.Properties.GetOr("datablock", "PathedDefault"),
			InteriorResIndex: uint32(i),
			Properties:       g.anchor.Properties.Without("datablock"),
		}
		for _, t := range g.triggers {
			follower.TriggerIDs = append(follower.TriggerIDs, uint32(len(out.Triggers)))
			out.Triggers = append(out.Triggers, buildTrigger(scene, t))
		}
		for _, n := range g.pathNodes {
			ms := n.Properties.GetUint("next_time", 0)
			follower.TotalMs += ms
			follower.WayPoints = append(follower.WayPoints, WayPoint{
				Position:      n.Origin.Point,
				Rotation:      identityQuat(),
				MsToNext:      ms,
				SmoothingType: n.Properties.GetUint("smoothing", 0),
			})
		}
		out.Followers = append(out.Followers, follower)
	}

	for di := range scene.DetailLevels {
		ents := scene.DetailLevels[di].InteriorMap.Entities
		for ei := range ents {
			e := &ents[ei]
			if e.Classname == "worldspawn" || e.Classname == "Door_Elevator" ||
				e.Classname == "path_node" || e.Classname == "trigger" {
				continue
			}
			if len(e.Classname) >= 6 && e.Classname[:6] == "light_" {
				continue
			}
			gameClass, ok := e.Properties.Get("game_class")
			if !ok {
				continue
			}
			out.GameEntities = append(out.GameEntities, GameEntity{
				Datablock:  e.Properties.GetOr("datablock", e.Classname),
				GameClass:  gameClass,
				Position:   e.Origin.Point,
				Properties: e.Properties.Without("datablock", "game_class"),
			})
		}
	}
	return out
}

// buildTrigger makes an axis-aligned box trigger from the bounds of the
// brushes owned by the trigger entity.
func buildTrigger(scene *ConstructorScene, t *Entity) Trigger {
	box := ownedBrushBounds(scene, t.ID)
	pos := box.Min
	size := box.Max
	size[0] -= pos[0]
	size[1] -= pos[1]
	size[2] -= pos[2]
	return Trigger{
		Name:       "MustChange",
		Datablock:  t.Properties.GetOr("datablock", "DefaultTrigger"),
		Properties: t.Properties.Without("datablock"),
		Polyhedron: boxPolyhedron(pos, size),
	}
}

func ownedBrushBounds(scene *ConstructorScene, owner int32) BoxF {
	var points []Point3F
	for di := range scene.DetailLevels {
		brushes := scene.DetailLevels[di].InteriorMap.Brushes
		for bi := range brushes {
			if brushes[bi].Owner != owner {
				continue
			}
			for vi := range brushes[bi].Vertices {
				points = append(points, brushes[bi].Vertices[vi].Pos.Point())
			}
		}
	}
	return boundingBoxOf(points)
}

// boxPolyhedron lays out the 8 points, 6 planes and 12 edges of an axis
// aligned box in the fixed order the engine's trigger loader expects: top face
// counter-clockwise from min-xy, then the bottom face under it.
func boxPolyhedron(pos, size Point3F) Polyhedron {
	return Polyhedron{
		PointList: []Point3F{
			{pos[0], pos[1], pos[2] + size[2]},
			{pos[0], pos[1] + size[1], pos[2] + size[2]},
			{pos[0] + size[0], pos[1] + size[1], pos[2] + size[2]},
			{pos[0] + size[0], pos[1], pos[2] + size[2]},
			{pos[0], pos[1], pos[2]},
			{pos[0], pos[1] + size[1], pos[2]},
			{pos[0] + size[0], pos[1] + size[1], pos[2]},
			{pos[0] + size[0], pos[1], pos[2]},
		},
		PlaneList: []PlaneF{
			{Normal: Point3F{-1, 0, 0}, Distance: pos[0]},
			{Normal: Point3F{0, 1, 0}, Distance: pos[1] + size[1]},
			{Normal: Point3F{1, 0, 0}, Distance: pos[0] + size[0]},
			{Normal: Point3F{0, -1, 0}, Distance: pos[1]},
			{Normal: Point3F{0, 0, 1}, Distance: pos[2] + size[2]},
			{Normal: Point3F{0, 0, -1}, Distance: pos[2]},
		},
		EdgeList: []PolyhedronEdge{
			{Face0: 0, Face1: 4, Vertex0: 0, Vertex1: 1},
			{Face0: 5, Face1: 0, Vertex0: 4, Vertex1: 5},
			{Face0: 3, Face1: 0, Vertex0: 0, Vertex1: 4},
			{Face0: 1, Face1: 4, Vertex0: 1, Vertex1: 2},
			{Face0: 5, Face1: 6, Vertex0: 5, Vertex1: 1},
			{Face0: 0, Face1: 1, Vertex0: 1, Vertex1: 5},
			{Face0: 2, Face1: 4, Vertex0: 2, Vertex1: 3},
			{Face0: 5, Face1: 2, Vertex0: 6, Vertex1: 7},
			{Face0: 1, Face1: 2, Vertex0: 2, Vertex1: 6},
			{Face0: 3, Face1: 4, Vertex0: 3, Vertex1: 0},
			{Face0: 5, Face1: 3, Vertex0: 7, Vertex1: 4},
			{Face0: 2, Face1: 3, Vertex0: 3, Vertex1: 7},
		},
	}
}

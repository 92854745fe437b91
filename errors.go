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

// errors.go
package main

import (
	"github.com/pkg/errors"
)

// The failure taxonomy of the converter. Recoverable conditions
// (ErrDegenerateGeometry, ErrUnboundPathNode) are counted and reported but
// never abort the job; the rest are fatal and abort before any output is
// produced.
var (
	// A face could not yield a plane because no three of its vertices are
	// non-collinear. The face is dropped, the job continues.
	ErrDegenerateGeometry = errors.New("degenerate geometry: face has no three non-collinear points")

	// A path_node entity appeared before any Door_Elevator entity. The
	// waypoint is dropped with a warning.
	ErrUnboundPathNode = errors.New("unbound path node: no preceding elevator entity")

	// A single brush alone exceeds the per-interior face capacity. Brushes
	// are never subdivided, so the job cannot proceed.
	ErrCapacityExceeded = errors.New("capacity exceeded: single brush does not fit interior limits")

	// The requested engine/interior version pairing has no defined binary
	// layout. Checked before any geometry work begins.
	ErrUnsupportedVersion = errors.New("unsupported engine/version combination")

	// The CSX document could not be parsed at all.
	ErrMalformedInput = errors.New("malformed CSX input")
)

// Wrap fatal errors with enough context (brush/entity identity) for the user
// to locate the offending input.
func brushError(err error, brushID int32) error {
	return errors.Wrapf(err, "brush id=%d", brushID)
}

func entityError(err error, entityID int32, classname string) error {
	return errors.Wrapf(err, "entity id=%d classname=%q", entityID, classname)
}

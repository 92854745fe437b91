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

// Progress reporting. Workers produce events, a single consumer (the CLI, a
// browser wrapper, a test) drains them. Sends never block: when the consumer
// falls behind, intermediate ticks are dropped - only relative progress is
// lost, phase completion markers are still observable via the final tick
// where Current == Total.
package main

import "sync/atomic"

// One progress tick. Current/Total are monotonically non-decreasing within a
// phase; Total == 0 is a no-op tick consumers may ignore. FinishPhase is the
// wording for the completed phase ("Built BSP" vs "Building BSP").
type ProgressEvent struct {
	Current     uint32
	Total       uint32
	Phase       string
	FinishPhase string
}

// progressSink fans worker notifications into the caller's channel. The zero
// value (nil channel) discards everything, so the core never needs to check
// whether anyone is listening.
type progressSink struct {
	ch      chan<- ProgressEvent
	dropped atomic.Uint64
}

func newProgressSink(ch chan<- ProgressEvent) *progressSink {
	return &progressSink{ch: ch}
}

func (s *progressSink) Report(current, total uint32, phase, finishPhase string) {
	if s == nil || s.ch == nil {
		return
	}
	select {
	case s.ch <- ProgressEvent{Current: current, Total: total, Phase: phase,
		FinishPhase: finishPhase}:
	default:
		s.dropped.Add(1)
	}
}

// Dropped returns how many ticks were discarded because the consumer wasn't
// keeping up. Diagnostics only.
func (s *progressSink) Dropped() uint64 {
	if s == nil {
		return 0
	}
	return s.dropped.Load()
}

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

// Splitter selection and rating. Candidates always come from the current
// surface set's own planes; exhaustive rates every distinct one, sampling a
// seeded subset of at most SAMPLING_CANDIDATES. Rating runs across the worker
// pool with results written into a slice indexed by candidate position, and
// the winner is picked by a sequential scan of that slice - arrival order of
// the workers never influences the outcome, only the candidate order does.
package main

import (
	"math/rand"
	"sort"
	"sync"
)

const (
	SAMPLING_CANDIDATES = 32
	SAMPLING_SEED       = 42
)

// distinctPlanes lists the plane pool indices (flip bit cleared) present in
// the set, in first-seen order.
func distinctPlanes(surfs []bspSurf) []uint16 {
	seen := make(map[uint16]bool, len(surfs))
	var out []uint16
	for i := range surfs {
		id := surfs[i].planeIndex & PLANE_INDEX_MASK
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (b *bspBuilder) selectSplitter(surfs []bspSurf) (uint16, bool) {
	candidates := distinctPlanes(surfs)
	if len(candidates) == 0 {
		return 0, false
	}
	if b.method == BSP_SAMPLING && len(candidates) > SAMPLING_CANDIDATES {
		candidates = samplePlanes(candidates, SAMPLING_CANDIDATES)
	}

	scores := b.scoreCandidates(surfs, candidates)

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return candidates[best], true
}

// samplePlanes draws n candidates with a fixed seed, keeping first-seen order
// among the chosen so tie-breaking stays stable.
func samplePlanes(candidates []uint16, n int) []uint16 {
	rng := rand.New(rand.NewSource(SAMPLING_SEED))
	perm := rng.Perm(len(candidates))[:n]
	sort.Ints(perm)
	out := make([]uint16, n)
	for i, p := range perm {
		out[i] = candidates[p]
	}
	return out
}

// scoreCandidates fans candidate rating across the worker pool. scores[i]
// always belongs to candidates[i].
func (b *bspBuilder) scoreCandidates(surfs []bspSurf, candidates []uint16) []int {
	scores := make([]int, len(candidates))
	workers := b.workers
	if workers > len(candidates) {
		workers = len(candidates)
	}
	if workers <= 1 {
		for i, c := range candidates {
			scores[i] = b.ratePlane(surfs, c)
		}
		return scores
	}

	var wg sync.WaitGroup
	work := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				scores[i] = b.ratePlane(surfs, candidates[i])
			}
		}()
	}
	for i := range candidates {
		work <- i
	}
	close(work)
	wg.Wait()
	return scores
}

// ratePlane scores one candidate: reward coplanar captures, punish clips and
// imbalance, heavily punish slivers, small bonus for axial planes.
func (b *bspBuilder) ratePlane(surfs []bspSurf, planeIndex uint16) int {
	plane := b.pools.poolPlane(planeIndex)
	axial := isAxialNormal(&plane.Normal)

	var front, back, splits, coplanar, tiny int
	for i := range surfs {
		s := &surfs[i]
		if s.planeIndex&PLANE_INDEX_MASK == planeIndex {
			coplanar++
			if s.planeIndex&PLANE_FLIP_BIT == 0 {
				back++
			} else {
				front++
			}
			continue
		}
		maxd, mind := windingExtent(&plane, s.points)
		onFront := maxd > BSP_EPSILON
		onBack := mind < -BSP_EPSILON
		if onFront {
			front++
		}
		if onBack {
			back++
		}
		if onFront && onBack {
			splits++
		}
		if !onFront && !onBack {
			coplanar++
		}
		if (maxd > 0 && maxd < 1) || (mind < 0 && mind > -1) {
			tiny++
		}
	}

	score := 5*coplanar - 5*splits - abs(front-back) - 1000*tiny
	if axial {
		score += 5
	}
	return score
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

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

// The conversion pipeline: parse, preprocess, split, build, bind, serialize.
// The first returned file is the primary DIF (one interior per detail level
// plus subobjects, triggers, path followers and game entities); any capacity
// overflow of the first detail level follows as bare single-interior files.
package main

import (
	"context"

	"github.com/pkg/errors"
)

// ConvertOptions is everything the pipeline needs beyond the input text.
type ConvertOptions struct {
	Engine       int
	DifVersion   uint32
	MBOptimize   bool
	BspMethod    int
	EpsilonPoint float32
	EpsilonPlane float32
	Workers      int
}

type buildJob struct {
	brushes []*Brush
	im      *InteriorMap
}

// ConvertCSXToDIF converts one CSX document into one or more DIF files.
// Returns the serialized files and one report per built interior, in build
// order: detail level groups first, then subobjects. The version pairing is
// validated before any geometry work; ctx cancellation is honored between
// pipeline phases and between interior builds.
func ConvertCSXToDIF(ctx context.Context, csxText string, opts ConvertOptions,
	progress chan<- ProgressEvent) ([][]byte, []ConversionReport, error) {

	if err := CheckVersion(opts.Engine, opts.DifVersion); err != nil {
		return nil, nil, errors.Wrapf(err, "engine %s version %d",
			engineName(opts.Engine), opts.DifVersion)
	}
	sink := newProgressSink(progress)

	scene, err := ParseCSX(csxText)
	if err != nil {
		return nil, nil, err
	}
	warnings := PreprocessScene(scene, opts.EpsilonPoint)
	if len(warnings) > 0 {
		Log.Printf("Dropped %d degenerate face(s)\n", len(warnings))
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// One job per capacity group per detail level, then one per subobject.
	var jobs []buildJob
	groupsPerLevel := make([]int, len(scene.DetailLevels))
	for di := range scene.DetailLevels {
		im := &scene.DetailLevels[di].InteriorMap
		sink.Report(uint32(di+1), uint32(len(scene.DetailLevels)),
			"Exporting detail level", "Exported detail levels")
		groups, err := splitByCapacity(structuralBrushes(im), MAX_FACES_PER_INTERIOR)
		if err != nil {
			return nil, nil, err
		}
		groupsPerLevel[di] = len(groups)
		for _, g := range groups {
			jobs = append(jobs, buildJob{brushes: g, im: im})
		}
	}
	subObjectStart := len(jobs)
	for di := range scene.DetailLevels {
		im := &scene.DetailLevels[di].InteriorMap
		for _, g := range subObjectGroups(im) {
			jobs = append(jobs, buildJob{brushes: g, im: im})
		}
	}

	interiors, reports, err := runBuilds(ctx, jobs, &opts, sink)
	if err != nil {
		return nil, nil, err
	}

	bindings := bindEntities(scene)

	primary := &Dif{
		Triggers:     bindings.Triggers,
		Followers:    bindings.Followers,
		GameEntities: bindings.GameEntities,
		SubObjects:   interiors[subObjectStart:],
	}
	var splits []*Interior
	at := 0
	for di, n := range groupsPerLevel {
		primary.Interiors = append(primary.Interiors, interiors[at])
		if di == 0 {
			splits = interiors[at+1 : at+n]
		}
		at += n
	}

	out := [][]byte{primary.Write(opts.DifVersion)}
	for _, itr := range splits {
		bare := &Dif{Interiors: []*Interior{itr}}
		out = append(out, bare.Write(opts.DifVersion))
	}
	return out, reports, nil
}

// runBuilds runs the interior builds across a bounded worker group. Results
// land in slots indexed by job position, so output order never depends on
// scheduling.
func runBuilds(ctx context.Context, jobs []buildJob, opts *ConvertOptions,
	sink *progressSink) ([]*Interior, []ConversionReport, error) {

	interiors := make([]*Interior, len(jobs))
	reports := make([]ConversionReport, len(jobs))

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	work := make(chan int)
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			for i := range work {
				job := &jobs[i]
				builder := newDifBuilder(&builderOptions{
					MBOnly:        opts.MBOptimize,
					Ambient:       job.im.AmbientColor.Point(),
					AlarmAmbient:  job.im.AmbientColorEmerg.Point(),
					LumelScale:    job.im.LightScale,
					GeometryScale: job.im.BrushScale,
					EpsilonPoint:  opts.EpsilonPoint,
					EpsilonPlane:  opts.EpsilonPlane,
					BspMethod:     opts.BspMethod,
					Workers:       opts.Workers,
				}, sink)
				for _, b := range job.brushes {
					builder.AddBrush(b)
				}
				interiors[i], reports[i] = builder.Build()
				sink.Report(uint32(i+1), uint32(len(jobs)),
					"Exporting interior", "Exported interiors")
				done <- struct{}{}
			}
		}()
	}

	var sent, finished int
	var cancelErr error
dispatch:
	for finished < len(jobs) {
		if sent < len(jobs) && cancelErr == nil {
			if err := ctx.Err(); err != nil {
				cancelErr = err
				if sent == finished {
					break dispatch
				}
				continue
			}
			select {
			case work <- sent:
				sent++
			case <-done:
				finished++
			}
		} else {
			if cancelErr != nil && sent == finished {
				break
			}
			<-done
			finished++
		}
	}
	close(work)
	if cancelErr != nil {
		return nil, nil, cancelErr
	}
	return interiors, reports, nil
}

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

// csx2dif converts Torque Constructor CSX scene files into Torque DIF
// interior files.
package main

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func main() {
	defer Log.Sync()
	Configure()

	if config.InputFileName == "" {
		PrintUsage()
		os.Exit(1)
	}

	text, err := os.ReadFile(config.InputFileName)
	if err != nil {
		Log.Error("Couldn't read input file: %s\n", err.Error())
		os.Exit(1)
	}

	Log.Printf("csx2dif %s: converting %s (engine %s, interior version %d, bsp %s)\n",
		VERSION, config.InputFileName, engineName(config.EngineVersion),
		config.DifVersion, bspMethodName(config.BspMethod))

	progress := make(chan ProgressEvent, 64)
	consumerDone := make(chan struct{})
	go func() {
		consumeProgress(progress)
		close(consumerDone)
	}()

	difs, reports, err := ConvertCSXToDIF(context.Background(), string(text),
		config.ConvertOptions(), progress)
	close(progress)
	<-consumerDone
	if err != nil {
		Log.Error("Conversion failed: %s\n", err.Error())
		os.Exit(1)
	}

	for i, r := range reports {
		pct := float32(0)
		if r.Total > 0 {
			pct = float32(r.Hit) / float32(r.Total) * 100
		}
		Log.Printf("Interior %d: raycast coverage %d/%d (%.1f%% of surfaces, %.1f%% of area), balance factor %d\n",
			i, r.Hit, r.Total, pct, r.HitAreaPercent, r.BalanceFactor)
	}

	for i, data := range difs {
		name := outputName(config.InputFileName, i)
		if err := os.WriteFile(name, data, 0644); err != nil {
			Log.Error("Couldn't write %s: %s\n", name, err.Error())
			os.Exit(1)
		}
		Log.Printf("Wrote %s (%d bytes)\n", name, len(data))
	}
}

// outputName maps input.csx to input.dif for the primary file and
// input-N.dif for capacity split files.
func outputName(input string, index int) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	if index == 0 {
		return base + ".dif"
	}
	return base + "-" + strconv.Itoa(index) + ".dif"
}

// consumeProgress prints phase ticks. Only phase transitions and completions
// are worth a line; intermediate ticks go to the verbose gate.
func consumeProgress(ch <-chan ProgressEvent) {
	var lastPhase string
	for ev := range ch {
		if ev.Total == 0 {
			continue
		}
		if ev.Phase != lastPhase {
			Log.Verbose(1, "%s...\n", ev.Phase)
			lastPhase = ev.Phase
		}
		Log.Verbose(2, "%s: %d/%d\n", ev.Phase, ev.Current, ev.Total)
		if ev.Current == ev.Total {
			Log.Verbose(1, "%s (%d)\n", ev.FinishPhase, ev.Total)
		}
	}
}

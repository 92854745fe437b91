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
	"os"
	"runtime"
)

const VERSION = "1.0.0"

/*
csx2dif <file.csx> [options]

	--silent            Don't print progress output
	--dif-version=N     Interior version to export (0..14, default 0)
	--engine-version=E  mbg | tge | tgea | t3d (default mbg)
	--mb[=true|false]   Optimize DIF for Marble Blast (default true)
	--bsp=S             exhaustive | sampling | none (default exhaustive)
	--epsilon-point=F   Point merge epsilon (default 1e-6)
	--epsilon-plane=F   Plane merge epsilon (default 1e-5)
	--workers=N         Worker goroutines (default: number of CPUs)
	--profile=FILE      YAML conversion profile with defaults for the above
	--log-file=FILE     Also log to a rotating file
	-v, -vv             More verbose output
	--help              Usage
	--version           Program version
*/

// Target engine family. Engine selection changes only field presence/width
// and default values in the serialized output - the geometry model itself is
// version-agnostic (see difwrite.go).
const (
	ENGINE_MBG = iota
	ENGINE_TGE
	ENGINE_TGEA
	ENGINE_T3D
)

// Splitting plane selection strategy for the BSP builder.
const (
	BSP_EXHAUSTIVE = iota
	BSP_SAMPLING
	BSP_NONE
)

type ProgramConfig struct {
	InputFileName  string
	Silent         bool
	VerbosityLevel int
	DifVersion     uint32
	EngineVersion  int
	MBOptimize     bool
	BspMethod      int
	EpsilonPoint   float32
	EpsilonPlane   float32
	// Number of worker goroutines for candidate scoring and per-interior
	// builds. Zero means "use all CPUs". Output is byte-identical regardless
	// of this value.
	Workers     int
	ProfilePath string
	LogFilePath string
}

var config *ProgramConfig // global variable that holds program configuration

func DefaultConfig() *ProgramConfig {
	return &ProgramConfig{
		DifVersion:    0,
		EngineVersion: ENGINE_MBG,
		MBOptimize:    true,
		BspMethod:     BSP_EXHAUSTIVE,
		EpsilonPoint:  1e-6,
		EpsilonPlane:  1e-5,
	}
}

func (c *ProgramConfig) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// ConvertOptions is the subset of the configuration the conversion entry
// point (convert.go) cares about - wrappers that embed the converter rather
// than shell out to the CLI construct this directly.
func (c *ProgramConfig) ConvertOptions() ConvertOptions {
	return ConvertOptions{
		Engine:       c.EngineVersion,
		DifVersion:   c.DifVersion,
		MBOptimize:   c.MBOptimize,
		BspMethod:    c.BspMethod,
		EpsilonPoint: c.EpsilonPoint,
		EpsilonPlane: c.EpsilonPlane,
		Workers:      c.WorkerCount(),
	}
}

// Configure must be called before config is legitimately accessed. Exits the
// process on command line syntax errors.
func Configure() {
	config = DefaultConfig()
	if !config.FromCommandLine() {
		os.Exit(1)
	}
	if config.ProfilePath != "" {
		if err := config.FromProfile(config.ProfilePath); err != nil {
			Log.Error("Couldn't load conversion profile %s: %s\n",
				config.ProfilePath, err.Error())
			os.Exit(1)
		}
	}
	Log.Reconfigure(config.Silent, config.VerbosityLevel, config.LogFilePath)
}

func engineName(engine int) string {
	switch engine {
	case ENGINE_MBG:
		return "mbg"
	case ENGINE_TGE:
		return "tge"
	case ENGINE_TGEA:
		return "tgea"
	case ENGINE_T3D:
		return "t3d"
	}
	return "unknown"
}

func bspMethodName(method int) string {
	switch method {
	case BSP_EXHAUSTIVE:
		return "exhaustive"
	case BSP_SAMPLING:
		return "sampling"
	case BSP_NONE:
		return "none"
	}
	return "unknown"
}

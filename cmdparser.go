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
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Hand-rolled argument parser. All long options accept both "--opt value" and
// "--opt=value" forms. Returns false when the process should terminate with a
// non-zero exit code; help/version print and exit directly.
func (c *ProgramConfig) FromCommandLine() bool {
	args := os.Args[1:]
	files := make([]string, 0, 1)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) == 0 {
			continue
		}
		if arg[0] != '-' {
			files = append(files, arg)
			if len(files) > 1 {
				Log.Error("This program doesn't support specifying more than one input file - aborting.\n")
				return false
			}
			c.InputFileName = files[0]
			continue
		}

		// -v, -vv, -vvv ... "count" type verbosity switch
		if arg[0] == '-' && len(arg) > 1 && arg[1] == 'v' && allOf(arg[1:], 'v') {
			c.VerbosityLevel += len(arg) - 1
			continue
		}

		name, value, hasValue := splitLongOption(arg)
		// options that consume the next argument when written without '='
		needsValue := func() (string, bool) {
			if hasValue {
				return value, true
			}
			if i+1 < len(args) {
				i++
				return args[i], true
			}
			Log.Error("Modifier '%s' was present without a value following it - aborting.\n", arg)
			return "", false
		}

		switch name {
		case "--help":
			PrintUsage()
			os.Exit(0)
		case "--version":
			fmt.Printf("csx2dif %s\n", VERSION)
			os.Exit(0)
		case "--silent":
			c.Silent = parseBoolDefaultTrue(value, hasValue)
		case "--mb":
			c.MBOptimize = parseBoolDefaultTrue(value, hasValue)
		case "--dif-version":
			v, ok := needsValue()
			if !ok {
				return false
			}
			n, err := strconv.ParseUint(v, 10, 32)
			if err != nil || n > 14 {
				Log.Error("Bad --dif-version '%s': expected integer in 0..14 - aborting.\n", v)
				return false
			}
			c.DifVersion = uint32(n)
		case "--engine-version":
			v, ok := needsValue()
			if !ok {
				return false
			}
			switch strings.ToLower(v) {
			case "mbg":
				c.EngineVersion = ENGINE_MBG
			case "tge":
				c.EngineVersion = ENGINE_TGE
			case "tgea":
				c.EngineVersion = ENGINE_TGEA
			case "t3d":
				c.EngineVersion = ENGINE_T3D
			default:
				Log.Error("Bad --engine-version '%s': expected mbg|tge|tgea|t3d - aborting.\n", v)
				return false
			}
		case "--bsp":
			v, ok := needsValue()
			if !ok {
				return false
			}
			switch strings.ToLower(v) {
			case "exhaustive":
				c.BspMethod = BSP_EXHAUSTIVE
			case "sampling":
				c.BspMethod = BSP_SAMPLING
			case "none":
				c.BspMethod = BSP_NONE
			default:
				Log.Error("Bad --bsp '%s': expected exhaustive|sampling|none - aborting.\n", v)
				return false
			}
		case "--epsilon-point":
			v, ok := needsValue()
			if !ok {
				return false
			}
			f, err := strconv.ParseFloat(v, 32)
			if err != nil || f <= 0 {
				Log.Error("Bad --epsilon-point '%s': expected positive float - aborting.\n", v)
				return false
			}
			c.EpsilonPoint = float32(f)
		case "--epsilon-plane":
			v, ok := needsValue()
			if !ok {
				return false
			}
			f, err := strconv.ParseFloat(v, 32)
			if err != nil || f <= 0 {
				Log.Error("Bad --epsilon-plane '%s': expected positive float - aborting.\n", v)
				return false
			}
			c.EpsilonPlane = float32(f)
		case "--workers":
			v, ok := needsValue()
			if !ok {
				return false
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				Log.Error("Bad --workers '%s': expected non-negative integer - aborting.\n", v)
				return false
			}
			c.Workers = n
		case "--profile":
			v, ok := needsValue()
			if !ok {
				return false
			}
			c.ProfilePath = v
		case "--log-file":
			v, ok := needsValue()
			if !ok {
				return false
			}
			c.LogFilePath = v
		default:
			Log.Error("Unrecognised argument '%s' - aborting.\n", arg)
			return false
		}
	}
	return true
}

func splitLongOption(arg string) (name, value string, hasValue bool) {
	if idx := strings.IndexByte(arg, '='); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

// --silent and --mb behave as switches when written bare but also accept an
// explicit boolean so that "--mb=false" can override a profile default.
func parseBoolDefaultTrue(value string, hasValue bool) bool {
	if !hasValue {
		return true
	}
	switch strings.ToLower(value) {
	case "false", "0", "no", "off":
		return false
	}
	return true
}

func allOf(s string, b byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != b {
			return false
		}
	}
	return len(s) > 0
}

func PrintUsage() {
	fmt.Println("Usage: csx2dif <file.csx> [options]")
	fmt.Println("Convert Torque Constructor CSX files to Torque DIF files.")
	fmt.Println()
	fmt.Println("  --silent              don't print progress output")
	fmt.Println("  --dif-version=N       interior version to export (0..14, default 0)")
	fmt.Println("  --engine-version=E    mbg | tge | tgea | t3d (default mbg)")
	fmt.Println("  --mb[=true|false]     optimize DIF for Marble Blast (default true)")
	fmt.Println("  --bsp=S               exhaustive | sampling | none (default exhaustive)")
	fmt.Println("  --epsilon-point=F     point merge epsilon (default 1e-6)")
	fmt.Println("  --epsilon-plane=F     plane merge epsilon (default 1e-5)")
	fmt.Println("  --workers=N           worker goroutines (default: number of CPUs)")
	fmt.Println("  --profile=FILE        YAML conversion profile")
	fmt.Println("  --log-file=FILE       also log to a rotating file")
	fmt.Println("  -v, -vv               more verbose output")
	fmt.Println("  --help                this text")
	fmt.Println("  --version             program version")
}

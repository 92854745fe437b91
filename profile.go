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

// Conversion profiles. Level authors iterating on the same map tend to pass
// identical switches on every run; a small YAML file next to the map keeps
// them in one place. Command line values set explicitly BEFORE --profile are
// overridden by the profile; anything the profile omits keeps its current
// value.
package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type conversionProfile struct {
	Engine       string   `yaml:"engine"`
	DifVersion   *uint32  `yaml:"dif-version"`
	MBOptimize   *bool    `yaml:"mb"`
	Bsp          string   `yaml:"bsp"`
	EpsilonPoint *float32 `yaml:"epsilon-point"`
	EpsilonPlane *float32 `yaml:"epsilon-plane"`
	Workers      *int     `yaml:"workers"`
}

func (c *ProgramConfig) FromProfile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var p conversionProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return errors.Wrap(err, "parsing conversion profile")
	}

	if p.Engine != "" {
		switch strings.ToLower(p.Engine) {
		case "mbg":
			c.EngineVersion = ENGINE_MBG
		case "tge":
			c.EngineVersion = ENGINE_TGE
		case "tgea":
			c.EngineVersion = ENGINE_TGEA
		case "t3d":
			c.EngineVersion = ENGINE_T3D
		default:
			return errors.Errorf("unknown engine %q in profile", p.Engine)
		}
	}
	if p.Bsp != "" {
		switch strings.ToLower(p.Bsp) {
		case "exhaustive":
			c.BspMethod = BSP_EXHAUSTIVE
		case "sampling":
			c.BspMethod = BSP_SAMPLING
		case "none":
			c.BspMethod = BSP_NONE
		default:
			return errors.Errorf("unknown bsp method %q in profile", p.Bsp)
		}
	}
	if p.DifVersion != nil {
		if *p.DifVersion > 14 {
			return errors.Errorf("dif-version %d out of range in profile", *p.DifVersion)
		}
		c.DifVersion = *p.DifVersion
	}
	if p.MBOptimize != nil {
		c.MBOptimize = *p.MBOptimize
	}
	if p.EpsilonPoint != nil {
		if *p.EpsilonPoint <= 0 {
			return errors.New("epsilon-point must be positive")
		}
		c.EpsilonPoint = *p.EpsilonPoint
	}
	if p.EpsilonPlane != nil {
		if *p.EpsilonPlane <= 0 {
			return errors.New("epsilon-plane must be positive")
		}
		c.EpsilonPlane = *p.EpsilonPlane
	}
	if p.Workers != nil && *p.Workers >= 0 {
		c.Workers = *p.Workers
	}
	return nil
}

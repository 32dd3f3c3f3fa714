/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"tetode/geomindex"
	"tetode/model"
)

// scenarioConfig is the on-disk description of a model+mesh, the
// config-file analogue of inmaputil's VarGridConfig: a plain struct
// populated by decoding JSON, then translated into catalogue/mesh
// builder calls. Environment variables in string fields are not
// expanded here since none of tetode's fields are file paths.
type scenarioConfig struct {
	Species        []string              `json:"species"`
	VolumeSystems  []volumeSystemConfig  `json:"volumeSystems"`
	SurfaceSystems []surfaceSystemConfig `json:"surfaceSystems"`
	Compartments   []compartmentConfig   `json:"compartments"`
	Patches        []patchConfig         `json:"patches"`
	InitialCounts  []initialCountConfig  `json:"initialCounts"`
	RTol           float64               `json:"rtol"`
	MaxSteps       int                   `json:"maxSteps"`
}

type reactionConfig struct {
	Lhs  map[string]int `json:"lhs"`
	Rhs  map[string]int `json:"rhs"`
	Kcst float64        `json:"kcst"`
}

type diffusionConfig struct {
	Species string  `json:"species"`
	D       float64 `json:"d"`
}

type volumeSystemConfig struct {
	Name       string            `json:"name"`
	Reactions  []reactionConfig  `json:"reactions"`
	Diffusions []diffusionConfig `json:"diffusions"`
}

type sreactionConfig struct {
	SLhs   map[string]int `json:"sLhs"`
	SRhs   map[string]int `json:"sRhs"`
	ILhs   map[string]int `json:"iLhs"`
	IRhs   map[string]int `json:"iRhs"`
	OLhs   map[string]int `json:"oLhs"`
	ORhs   map[string]int `json:"oRhs"`
	Kcst   float64        `json:"kcst"`
	Inside bool           `json:"inside"`
}

type surfaceSystemConfig struct {
	Name       string            `json:"name"`
	SReactions []sreactionConfig `json:"sreactions"`
	Diffusions []diffusionConfig `json:"diffusions"`
}

type tetConfig struct {
	Vol      float64    `json:"vol"`
	FaceArea [4]float64 `json:"faceArea"`
	FaceDist [4]float64 `json:"faceDist"`
	Neighbor [4]int     `json:"neighbor"`
}

type compartmentConfig struct {
	Name   string      `json:"name"`
	System string      `json:"system"`
	Tets   []tetConfig `json:"tets"`
}

type triConfig struct {
	Area     float64    `json:"area"`
	EdgeLen  [3]float64 `json:"edgeLen"`
	EdgeDist [3]float64 `json:"edgeDist"`
	Neighbor [3]int     `json:"neighbor"`
	Inner    int        `json:"inner"`
	// Outer is nil when the triangle's outer side is absent (spec.md's
	// "otherwise the outer side is null"); the zero value of a plain
	// int would collide with a real compartment index 0, so this must
	// be a pointer, same as initialCountConfig's optional selectors.
	Outer *int `json:"outer,omitempty"`
}

type patchConfig struct {
	Name      string `json:"name"`
	System    string `json:"system"`
	InnerComp int    `json:"innerComp"`
	// OuterComp is nil for a one-sided patch; see triConfig.Outer.
	OuterComp *int        `json:"outerComp,omitempty"`
	Tris      []triConfig `json:"tris"`
}

// orAbsent returns geomindex.Absent when p is nil, else *p.
func orAbsent(p *int) int {
	if p == nil {
		return geomindex.Absent
	}
	return *p
}

type initialCountConfig struct {
	Comp    *int    `json:"comp,omitempty"`
	Patch   *int    `json:"patch,omitempty"`
	Tet     *int    `json:"tet,omitempty"`
	Tri     *int    `json:"tri,omitempty"`
	Species string  `json:"species"`
	Count   float64 `json:"count"`
}

// loadScenario reads and decodes a scenario file from path.
func loadScenario(path string) (*scenarioConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tetode: opening scenario file: %w", err)
	}
	defer f.Close()

	var sc scenarioConfig
	if err := json.NewDecoder(f).Decode(&sc); err != nil {
		return nil, fmt.Errorf("tetode: decoding scenario file: %w", err)
	}
	return &sc, nil
}

// build translates a scenarioConfig into a model.Catalogue and
// geomindex.Mesh, mirroring the way inmaputil/config.go's checkers
// translate raw viper values into typed InMAP configuration before
// the run starts.
func (sc *scenarioConfig) build() (*model.Catalogue, *geomindex.Mesh, error) {
	cat := model.New()
	for _, s := range sc.Species {
		cat.AddSpecies(s)
	}
	for _, vs := range sc.VolumeSystems {
		if _, err := cat.AddVolumeSystem(vs.Name); err != nil {
			return nil, nil, err
		}
		for _, r := range vs.Reactions {
			if _, err := cat.AddReaction(vs.Name, r.Lhs, r.Rhs, r.Kcst); err != nil {
				return nil, nil, err
			}
		}
		for _, d := range vs.Diffusions {
			if _, err := cat.AddVolumeDiffusion(vs.Name, d.Species, d.D); err != nil {
				return nil, nil, err
			}
		}
	}
	for _, ss := range sc.SurfaceSystems {
		if _, err := cat.AddSurfaceSystem(ss.Name); err != nil {
			return nil, nil, err
		}
		for _, r := range ss.SReactions {
			if _, err := cat.AddSurfaceReaction(ss.Name, r.SLhs, r.SRhs, r.ILhs, r.IRhs, r.OLhs, r.ORhs, r.Kcst, r.Inside); err != nil {
				return nil, nil, err
			}
		}
		for _, d := range ss.Diffusions {
			if _, err := cat.AddSurfaceDiffusion(ss.Name, d.Species, d.D); err != nil {
				return nil, nil, err
			}
		}
	}

	mesh := geomindex.New()
	for _, cc := range sc.Compartments {
		comp, err := mesh.AddCompartment(cc.Name, cc.System)
		if err != nil {
			return nil, nil, err
		}
		for _, tc := range cc.Tets {
			if _, err := mesh.AddTet(comp.Index, tc.Vol, tc.FaceArea, tc.FaceDist, tc.Neighbor); err != nil {
				return nil, nil, err
			}
		}
	}
	for _, pc := range sc.Patches {
		patch, err := mesh.AddPatch(pc.Name, pc.System, pc.InnerComp, orAbsent(pc.OuterComp))
		if err != nil {
			return nil, nil, err
		}
		for _, tc := range pc.Tris {
			if _, err := mesh.AddTri(patch.Index, tc.Area, tc.EdgeLen, tc.EdgeDist, tc.Neighbor, tc.Inner, orAbsent(tc.Outer)); err != nil {
				return nil, nil, err
			}
		}
	}
	return cat, mesh, nil
}

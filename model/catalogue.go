/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

// Package model implements the biochemical model catalogue (component
// C1 of the tetode engine): a validated registry of species, volume and
// surface systems, reactions, surface reactions, and diffusion rules.
// Entities are immutable once registered; resolution of system
// attachments against compartments/patches is deferred to package
// statedef.
package model

import (
	"tetode/errs"
)

// Species is a registered chemical species. Index is stable for the
// lifetime of the Catalogue it was registered in.
type Species struct {
	Name  string
	Index int
}

// VolumeSystem is a named grouping of volumetric reactions and volume
// diffusion rules, attachable to compartments by name.
type VolumeSystem struct {
	Name  string
	Index int

	Reactions  []int // indices into Catalogue.Reactions
	Diffusions []int // indices into Catalogue.VolDiffs
}

// SurfaceSystem is a named grouping of surface reactions and surface
// diffusion rules, attachable to patches by name.
type SurfaceSystem struct {
	Name  string
	Index int

	SReactions []int // indices into Catalogue.SReactions
	Diffusions []int // indices into Catalogue.SurfDiffs
}

// Reaction is a volumetric mass-action reaction: Lhs -> Rhs, scoped to a
// volume system, with rate constant Kcst.
type Reaction struct {
	Index  int
	System int // index into Catalogue.VolSystems

	Lhs  map[string]int // species name -> stoichiometric multiplicity
	Rhs  map[string]int
	Kcst float64
}

// Order is the sum of the left-hand-side multiplicities.
func (r *Reaction) Order() int {
	return order(r.Lhs)
}

// Update returns rhs[s] - lhs[s] for species s.
func (r *Reaction) Update(species string) int {
	return r.Rhs[species] - r.Lhs[species]
}

// SReacKind classifies a surface reaction by where its reactants live.
type SReacKind int

const (
	// SurfaceSurface means every reactant (lhs species) is on the
	// surface side.
	SurfaceSurface SReacKind = iota
	// SurfaceVolume means at least one reactant is in an adjacent
	// volume (inner or outer).
	SurfaceVolume
)

// SReaction is a surface reaction with three paired (surface, inner
// volume, outer volume) multisets.
type SReaction struct {
	Index  int
	System int // index into Catalogue.SurfSystems

	SLhs, SRhs map[string]int
	ILhs, IRhs map[string]int
	OLhs, ORhs map[string]int

	Kcst float64

	// Inside selects which adjacent volume compartment scales the rate
	// constant when the reaction has reactants in a volume (see §4.5);
	// true selects the inner compartment, false the outer.
	Inside bool
}

// Order is the sum of all left-hand-side multiplicities across the
// surface, inner and outer sides.
func (r *SReaction) Order() int {
	return order(r.SLhs) + order(r.ILhs) + order(r.OLhs)
}

// Kind classifies the reaction per spec.md §3.
func (r *SReaction) Kind() SReacKind {
	if len(r.ILhs) == 0 && len(r.OLhs) == 0 {
		return SurfaceSurface
	}
	return SurfaceVolume
}

// VolDiff is a volume diffusion rule: species Spec diffuses within a
// volume system with diffusion constant D.
type VolDiff struct {
	Index  int
	System int
	Spec   string
	D      float64
}

// SurfDiff is a surface diffusion rule: species Spec diffuses within a
// surface system with diffusion constant D.
type SurfDiff struct {
	Index  int
	System int
	Spec   string
	D      float64
}

// Catalogue is the model registry. Create one with New: the zero value
// has nil name indexes, and registering anything into it panics.
type Catalogue struct {
	Species     []*Species
	speciesIdx  map[string]int
	VolSystems  []*VolumeSystem
	volSysIdx   map[string]int
	SurfSystems []*SurfaceSystem
	surfSysIdx  map[string]int

	Reactions  []*Reaction
	SReactions []*SReaction
	VolDiffs   []*VolDiff
	SurfDiffs  []*SurfDiff
}

// New returns an empty Catalogue.
func New() *Catalogue {
	return &Catalogue{
		speciesIdx: make(map[string]int),
		volSysIdx:  make(map[string]int),
		surfSysIdx: make(map[string]int),
	}
}

// AddSpecies registers a new species, failing with NameConflict if the
// name is already registered.
func (c *Catalogue) AddSpecies(name string) (*Species, error) {
	const op = "model.Catalogue.AddSpecies"
	if _, ok := c.speciesIdx[name]; ok {
		return nil, errs.New(op, errs.NameConflict, "species %q already registered", name)
	}
	s := &Species{Name: name, Index: len(c.Species)}
	c.Species = append(c.Species, s)
	c.speciesIdx[name] = s.Index
	return s, nil
}

// SpeciesByName returns the species registered under name, or false if
// none is.
func (c *Catalogue) SpeciesByName(name string) (*Species, bool) {
	i, ok := c.speciesIdx[name]
	if !ok {
		return nil, false
	}
	return c.Species[i], true
}

// AddVolumeSystem registers a new volume system.
func (c *Catalogue) AddVolumeSystem(name string) (*VolumeSystem, error) {
	const op = "model.Catalogue.AddVolumeSystem"
	if _, ok := c.volSysIdx[name]; ok {
		return nil, errs.New(op, errs.NameConflict, "volume system %q already registered", name)
	}
	vs := &VolumeSystem{Name: name, Index: len(c.VolSystems)}
	c.VolSystems = append(c.VolSystems, vs)
	c.volSysIdx[name] = vs.Index
	return vs, nil
}

// VolumeSystemByName returns the volume system registered under name.
func (c *Catalogue) VolumeSystemByName(name string) (*VolumeSystem, bool) {
	i, ok := c.volSysIdx[name]
	if !ok {
		return nil, false
	}
	return c.VolSystems[i], true
}

// AddSurfaceSystem registers a new surface system.
func (c *Catalogue) AddSurfaceSystem(name string) (*SurfaceSystem, error) {
	const op = "model.Catalogue.AddSurfaceSystem"
	if _, ok := c.surfSysIdx[name]; ok {
		return nil, errs.New(op, errs.NameConflict, "surface system %q already registered", name)
	}
	ss := &SurfaceSystem{Name: name, Index: len(c.SurfSystems)}
	c.SurfSystems = append(c.SurfSystems, ss)
	c.surfSysIdx[name] = ss.Index
	return ss, nil
}

// SurfaceSystemByName returns the surface system registered under name.
func (c *Catalogue) SurfaceSystemByName(name string) (*SurfaceSystem, bool) {
	i, ok := c.surfSysIdx[name]
	if !ok {
		return nil, false
	}
	return c.SurfSystems[i], true
}

// AddReaction registers a volumetric reaction scoped to the named volume
// system, failing with UnresolvedSystem if that system is unknown and
// InvalidStoichiometry if any multiplicity is negative.
func (c *Catalogue) AddReaction(system string, lhs, rhs map[string]int, kcst float64) (*Reaction, error) {
	const op = "model.Catalogue.AddReaction"
	vs, ok := c.VolumeSystemByName(system)
	if !ok {
		return nil, errs.New(op, errs.UnresolvedSystem, "unknown volume system %q", system)
	}
	if err := checkNonNegative(op, lhs, rhs); err != nil {
		return nil, err
	}
	if kcst < 0 {
		return nil, errs.New(op, errs.InvalidStoichiometry, "negative rate constant %g", kcst)
	}
	r := &Reaction{
		Index:  len(c.Reactions),
		System: vs.Index,
		Lhs:    cloneMultiset(lhs),
		Rhs:    cloneMultiset(rhs),
		Kcst:   kcst,
	}
	c.Reactions = append(c.Reactions, r)
	vs.Reactions = append(vs.Reactions, r.Index)
	return r, nil
}

// AddSurfaceReaction registers a surface reaction scoped to the named
// surface system, failing with UnresolvedSystem if unknown,
// InvalidStoichiometry for negative multiplicities/rate constant, and
// InvalidReaction if the reactants straddle both the inner and outer
// volume simultaneously.
func (c *Catalogue) AddSurfaceReaction(system string, sLhs, sRhs, iLhs, iRhs, oLhs, oRhs map[string]int, kcst float64, inside bool) (*SReaction, error) {
	const op = "model.Catalogue.AddSurfaceReaction"
	ss, ok := c.SurfaceSystemByName(system)
	if !ok {
		return nil, errs.New(op, errs.UnresolvedSystem, "unknown surface system %q", system)
	}
	if err := checkNonNegative(op, sLhs, sRhs, iLhs, iRhs, oLhs, oRhs); err != nil {
		return nil, err
	}
	if kcst < 0 {
		return nil, errs.New(op, errs.InvalidStoichiometry, "negative rate constant %g", kcst)
	}
	if len(iLhs) > 0 && len(oLhs) > 0 {
		return nil, errs.New(op, errs.InvalidReaction, "reactants straddle both inner and outer volumes")
	}
	r := &SReaction{
		Index:  len(c.SReactions),
		System: ss.Index,
		SLhs:   cloneMultiset(sLhs), SRhs: cloneMultiset(sRhs),
		ILhs: cloneMultiset(iLhs), IRhs: cloneMultiset(iRhs),
		OLhs: cloneMultiset(oLhs), ORhs: cloneMultiset(oRhs),
		Kcst:   kcst,
		Inside: inside,
	}
	c.SReactions = append(c.SReactions, r)
	ss.SReactions = append(ss.SReactions, r.Index)
	return r, nil
}

// AddVolumeDiffusion registers a volume diffusion rule scoped to the
// named volume system.
func (c *Catalogue) AddVolumeDiffusion(system, species string, d float64) (*VolDiff, error) {
	const op = "model.Catalogue.AddVolumeDiffusion"
	vs, ok := c.VolumeSystemByName(system)
	if !ok {
		return nil, errs.New(op, errs.UnresolvedSystem, "unknown volume system %q", system)
	}
	if d < 0 {
		return nil, errs.New(op, errs.InvalidStoichiometry, "negative diffusion constant %g", d)
	}
	dd := &VolDiff{Index: len(c.VolDiffs), System: vs.Index, Spec: species, D: d}
	c.VolDiffs = append(c.VolDiffs, dd)
	vs.Diffusions = append(vs.Diffusions, dd.Index)
	return dd, nil
}

// AddSurfaceDiffusion registers a surface diffusion rule scoped to the
// named surface system.
func (c *Catalogue) AddSurfaceDiffusion(system, species string, d float64) (*SurfDiff, error) {
	const op = "model.Catalogue.AddSurfaceDiffusion"
	ss, ok := c.SurfaceSystemByName(system)
	if !ok {
		return nil, errs.New(op, errs.UnresolvedSystem, "unknown surface system %q", system)
	}
	if d < 0 {
		return nil, errs.New(op, errs.InvalidStoichiometry, "negative diffusion constant %g", d)
	}
	dd := &SurfDiff{Index: len(c.SurfDiffs), System: ss.Index, Spec: species, D: d}
	c.SurfDiffs = append(c.SurfDiffs, dd)
	ss.Diffusions = append(ss.Diffusions, dd.Index)
	return dd, nil
}

func order(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func cloneMultiset(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func checkNonNegative(op string, multisets ...map[string]int) error {
	for _, m := range multisets {
		for name, mult := range m {
			if mult < 0 {
				return errs.New(op, errs.InvalidStoichiometry, "negative multiplicity %d for species %q", mult, name)
			}
		}
	}
	return nil
}

/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package tetode

import (
	"tetode/errs"
	"tetode/model"
)

// resolveCompSpecies validates compIdx and looks up species' local
// index within that compartment, failing with ArgumentOutOfRange for a
// bad index and NotDefined if the species has no slot there.
func (e *Engine) resolveCompSpecies(op, species string, compIdx int) (int, error) {
	if compIdx < 0 || compIdx >= len(e.mesh.Comps) {
		return 0, errs.New(op, errs.ArgumentOutOfRange, "invalid compartment index %d", compIdx)
	}
	sp, ok := e.cat.SpeciesByName(species)
	if !ok {
		return 0, errs.New(op, errs.ArgumentOutOfRange, "unknown species %q", species)
	}
	local, ok := e.def.CompLocal(compIdx, sp.Index)
	if !ok {
		return 0, errs.New(op, errs.NotDefined, "species %q is not defined in compartment %d", species, compIdx)
	}
	return local, nil
}

func (e *Engine) resolvePatchSpecies(op, species string, patchIdx int) (int, error) {
	if patchIdx < 0 || patchIdx >= len(e.mesh.Patch) {
		return 0, errs.New(op, errs.ArgumentOutOfRange, "invalid patch index %d", patchIdx)
	}
	sp, ok := e.cat.SpeciesByName(species)
	if !ok {
		return 0, errs.New(op, errs.ArgumentOutOfRange, "unknown species %q", species)
	}
	local, ok := e.def.PatchLocal(patchIdx, sp.Index)
	if !ok {
		return 0, errs.New(op, errs.NotDefined, "species %q is not defined in patch %d", species, patchIdx)
	}
	return local, nil
}

func (e *Engine) resolveTet(op string, tetIdx int) error {
	if tetIdx < 0 || tetIdx >= len(e.mesh.Tets) {
		return errs.New(op, errs.ArgumentOutOfRange, "invalid tet index %d", tetIdx)
	}
	return nil
}

func (e *Engine) resolveTri(op string, triIdx int) error {
	if triIdx < 0 || triIdx >= len(e.mesh.Tris) {
		return errs.New(op, errs.ArgumentOutOfRange, "invalid tri index %d", triIdx)
	}
	return nil
}

// CompCount returns the sum of species' molecule counts across every
// tet of compartment compIdx.
func (e *Engine) CompCount(compIdx int, species string) (float64, error) {
	const op = "tetode.Engine.CompCount"
	if err := e.requireConfigured(op); err != nil {
		return 0, err
	}
	local, err := e.resolveCompSpecies(op, species, compIdx)
	if err != nil {
		return 0, err
	}
	comp := e.mesh.Comps[compIdx]
	var sum float64
	for tetLocal := range comp.Tets {
		sum += e.y[e.def.StateIndex(compIdx, tetLocal, local)]
	}
	return sum, nil
}

// SetCompCount distributes n across every tet of compartment compIdx by
// volume fraction. n must be non-negative.
func (e *Engine) SetCompCount(compIdx int, species string, n float64) error {
	const op = "tetode.Engine.SetCompCount"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if n < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "count must be non-negative, got %g", n)
	}
	local, err := e.resolveCompSpecies(op, species, compIdx)
	if err != nil {
		return err
	}
	comp := e.mesh.Comps[compIdx]
	var totalVol float64
	for _, tetGlobal := range comp.Tets {
		totalVol += e.mesh.Tets[tetGlobal].Vol
	}
	if totalVol == 0 {
		return errs.New(op, errs.InvalidGeometry, "compartment %d has zero total volume", compIdx)
	}
	for tetLocal, tetGlobal := range comp.Tets {
		e.y[e.def.StateIndex(compIdx, tetLocal, local)] = n * e.mesh.Tets[tetGlobal].Vol / totalVol
	}
	e.markDirty()
	return nil
}

// PatchCount returns the sum of species' molecule counts across every
// tri of patch patchIdx.
func (e *Engine) PatchCount(patchIdx int, species string) (float64, error) {
	const op = "tetode.Engine.PatchCount"
	if err := e.requireConfigured(op); err != nil {
		return 0, err
	}
	local, err := e.resolvePatchSpecies(op, species, patchIdx)
	if err != nil {
		return 0, err
	}
	patch := e.mesh.Patch[patchIdx]
	var sum float64
	for triLocal := range patch.Tris {
		sum += e.y[e.def.PatchStateIndex(patchIdx, triLocal, local)]
	}
	return sum, nil
}

// SetPatchCount distributes n across every tri of patch patchIdx by
// area fraction.
func (e *Engine) SetPatchCount(patchIdx int, species string, n float64) error {
	const op = "tetode.Engine.SetPatchCount"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if n < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "count must be non-negative, got %g", n)
	}
	local, err := e.resolvePatchSpecies(op, species, patchIdx)
	if err != nil {
		return err
	}
	patch := e.mesh.Patch[patchIdx]
	var totalArea float64
	for _, triGlobal := range patch.Tris {
		totalArea += e.mesh.Tris[triGlobal].Area
	}
	if totalArea == 0 {
		return errs.New(op, errs.InvalidGeometry, "patch %d has zero total area", patchIdx)
	}
	for triLocal, triGlobal := range patch.Tris {
		frac := e.mesh.Tris[triGlobal].Area / totalArea
		e.y[e.def.PatchStateIndex(patchIdx, triLocal, local)] = n * frac
	}
	e.markDirty()
	return nil
}

// TetCount returns species' molecule count in a single tetrahedron.
func (e *Engine) TetCount(tetIdx int, species string) (float64, error) {
	const op = "tetode.Engine.TetCount"
	if err := e.requireConfigured(op); err != nil {
		return 0, err
	}
	if err := e.resolveTet(op, tetIdx); err != nil {
		return 0, err
	}
	compIdx := e.mesh.Tets[tetIdx].Comp
	local, err := e.resolveCompSpecies(op, species, compIdx)
	if err != nil {
		return 0, err
	}
	tetLocal, _ := e.mesh.Comps[compIdx].LocalIndex(tetIdx)
	return e.y[e.def.StateIndex(compIdx, tetLocal, local)], nil
}

// SetTetCount sets species' molecule count in a single tetrahedron.
func (e *Engine) SetTetCount(tetIdx int, species string, n float64) error {
	const op = "tetode.Engine.SetTetCount"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if n < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "count must be non-negative, got %g", n)
	}
	if err := e.resolveTet(op, tetIdx); err != nil {
		return err
	}
	compIdx := e.mesh.Tets[tetIdx].Comp
	local, err := e.resolveCompSpecies(op, species, compIdx)
	if err != nil {
		return err
	}
	tetLocal, _ := e.mesh.Comps[compIdx].LocalIndex(tetIdx)
	e.y[e.def.StateIndex(compIdx, tetLocal, local)] = n
	e.markDirty()
	return nil
}

// TriCount returns species' molecule count on a single triangle.
func (e *Engine) TriCount(triIdx int, species string) (float64, error) {
	const op = "tetode.Engine.TriCount"
	if err := e.requireConfigured(op); err != nil {
		return 0, err
	}
	if err := e.resolveTri(op, triIdx); err != nil {
		return 0, err
	}
	patchIdx := e.mesh.Tris[triIdx].Patch
	local, err := e.resolvePatchSpecies(op, species, patchIdx)
	if err != nil {
		return 0, err
	}
	triLocal, _ := e.mesh.Patch[patchIdx].LocalIndex(triIdx)
	return e.y[e.def.PatchStateIndex(patchIdx, triLocal, local)], nil
}

// SetTriCount sets species' molecule count on a single triangle.
func (e *Engine) SetTriCount(triIdx int, species string, n float64) error {
	const op = "tetode.Engine.SetTriCount"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if n < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "count must be non-negative, got %g", n)
	}
	if err := e.resolveTri(op, triIdx); err != nil {
		return err
	}
	patchIdx := e.mesh.Tris[triIdx].Patch
	local, err := e.resolvePatchSpecies(op, species, patchIdx)
	if err != nil {
		return err
	}
	triLocal, _ := e.mesh.Patch[patchIdx].LocalIndex(triIdx)
	e.y[e.def.PatchStateIndex(patchIdx, triLocal, local)] = n
	e.markDirty()
	return nil
}

// CompConc returns species' concentration (mol/L) aggregated over
// compartment compIdx: count / (V * 1000 * N_A), per spec.md §6.
func (e *Engine) CompConc(compIdx int, species string) (float64, error) {
	const op = "tetode.Engine.CompConc"
	count, err := e.CompCount(compIdx, species)
	if err != nil {
		return 0, err
	}
	var vol float64
	for _, tetGlobal := range e.mesh.Comps[compIdx].Tets {
		vol += e.mesh.Tets[tetGlobal].Vol
	}
	if vol == 0 {
		return 0, errs.New(op, errs.InvalidGeometry, "compartment %d has zero total volume", compIdx)
	}
	return count / (model.LitresPerCubicMetre * vol * model.Avogadro), nil
}

// TetConc returns species' concentration (mol/L) in a single
// tetrahedron: count / (V * 1000 * N_A).
func (e *Engine) TetConc(tetIdx int, species string) (float64, error) {
	const op = "tetode.Engine.TetConc"
	count, err := e.TetCount(tetIdx, species)
	if err != nil {
		return 0, err
	}
	if err := e.resolveTet(op, tetIdx); err != nil {
		return 0, err
	}
	vol := e.mesh.Tets[tetIdx].Vol
	if vol == 0 {
		return 0, errs.New(op, errs.InvalidGeometry, "tet %d has zero volume", tetIdx)
	}
	return count / (model.LitresPerCubicMetre * vol * model.Avogadro), nil
}

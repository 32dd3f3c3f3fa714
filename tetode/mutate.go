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
	"tetode/geomindex"
	"tetode/model"
	"tetode/procgraph"
)

// SetTetReacK rebinds the rate constant of reaction reacIdx wherever it
// occurs at tetIdx: every process in the graph whose ProcessID matches
// {Reac, reacIdx, tetIdx} gets its coefficient recomputed from k via
// the same litres-basis scaling Build used, per spec.md §6. The
// catalogue's own Reaction.Kcst is left untouched — it is shared by
// every tet the reaction's volume system reaches, and only this one
// tet's processes should change.
func (e *Engine) SetTetReacK(tetIdx, reacIdx int, k float64) error {
	const op = "tetode.Engine.SetTetReacK"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if k < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "rate constant must be non-negative, got %g", k)
	}
	if err := e.resolveTet(op, tetIdx); err != nil {
		return err
	}
	if reacIdx < 0 || reacIdx >= len(e.cat.Reactions) {
		return errs.New(op, errs.ArgumentOutOfRange, "invalid reaction index %d", reacIdx)
	}
	r := e.cat.Reactions[reacIdx]

	id := procgraph.ProcessID{Kind: procgraph.Reac, Rule: reacIdx, Elem: tetIdx}
	idxs, ok := e.g.ByID[id]
	if !ok {
		return errs.New(op, errs.NotDefined, "reaction %d is not defined at tet %d", reacIdx, tetIdx)
	}

	coeff := procgraph.Ccst3D(k, e.mesh.Tets[tetIdx].Vol, r.Order())
	for _, i := range idxs {
		e.g.Processes[i].Coeff = coeff
	}
	e.markDirty()
	return nil
}

// SetTriSReacK rebinds the rate constant of surface reaction sreacIdx
// at triIdx. Because a surface reaction's surface, inner-volume and
// outer-volume sides all share one ProcessID (procgraph.Build assigns
// {SReac, sreacIdx, triIdx} to every side), a single ByID lookup already
// covers the adjacent inner/outer tet slots the reaction reads, per
// spec.md §6's "also rebinds the same sreac's processes on adjacent
// inner/outer tet slots".
func (e *Engine) SetTriSReacK(triIdx, sreacIdx int, k float64) error {
	const op = "tetode.Engine.SetTriSReacK"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if k < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "rate constant must be non-negative, got %g", k)
	}
	if err := e.resolveTri(op, triIdx); err != nil {
		return err
	}
	if sreacIdx < 0 || sreacIdx >= len(e.cat.SReactions) {
		return errs.New(op, errs.ArgumentOutOfRange, "invalid surface reaction index %d", sreacIdx)
	}
	r := e.cat.SReactions[sreacIdx]

	id := procgraph.ProcessID{Kind: procgraph.SReac, Rule: sreacIdx, Elem: triIdx}
	idxs, ok := e.g.ByID[id]
	if !ok {
		return errs.New(op, errs.NotDefined, "surface reaction %d is not defined at tri %d", sreacIdx, triIdx)
	}

	coeff := e.sreacCoeffWithK(r, triIdx, k)
	for _, i := range idxs {
		e.g.Processes[i].Coeff = coeff
	}
	e.markDirty()
	return nil
}

// sreacCoeffWithK mirrors procgraph.SReacCoeff but scales by the
// caller-supplied k rather than r.Kcst, so a rebind never mutates the
// shared catalogue entry.
func (e *Engine) sreacCoeffWithK(r *model.SReaction, triIdx int, k float64) float64 {
	tri := e.mesh.Tris[triIdx]
	order := r.Order()
	if r.Kind() == model.SurfaceSurface {
		return procgraph.Ccst2D(k, tri.Area, order)
	}
	tetIdx := tri.Inner
	if !r.Inside && tri.Outer != geomindex.Absent {
		tetIdx = tri.Outer
	}
	return procgraph.Ccst3D(k, e.mesh.Tets[tetIdx].Vol, order)
}

/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

// Package statedef implements the state-def resolver (component C3): it
// assigns global and per-compartment/per-patch local indices to species,
// reactions, surface reactions and diffusion rules, and precomputes the
// flat global state-vector layout that packages procgraph and tetode
// build on.
package statedef

import (
	"sort"

	"tetode/errs"
	"tetode/geomindex"
	"tetode/model"
)

const undefined = -1

// LocalReaction is a volumetric reaction resolved against one
// compartment's local species ordering.
type LocalReaction struct {
	Reaction int // global index into Catalogue.Reactions
	Lhs      []int // local index -> lhs multiplicity (0 if absent)
	Update   []int // local index -> rhs-lhs (0 if unchanged)
}

// LocalDiff is a volume diffusion rule resolved against one
// compartment's local species ordering.
type LocalDiff struct {
	Diff  int // global index into Catalogue.VolDiffs
	Spec  int // local species index the rule depends on
	D     float64
}

// LocalSReaction is a surface reaction resolved against its patch's
// local species ordering and the local orderings of its inner/outer
// compartments.
type LocalSReaction struct {
	SReaction int

	SLhs, SUpdate []int // patch-local
	ILhs, IUpdate []int // inner-compartment-local (nil if unused)
	OLhs, OUpdate []int // outer-compartment-local (nil if unused)
}

// LocalSDiff is a surface diffusion rule resolved against its patch's
// local species ordering.
type LocalSDiff struct {
	Diff int
	Spec int
	D    float64
}

// Def is the resolved state definition: the flat index space that
// procgraph.Build materialises into a process graph.
type Def struct {
	Cat  *model.Catalogue
	Mesh *geomindex.Mesh

	// CompSpecies[c] is the ordered list of global species indices
	// locally defined in compartment c.
	CompSpecies [][]int
	// CompG2L[c][g] is the local index of global species g in
	// compartment c, or undefined.
	CompG2L [][]int
	// CompOffset[c] is the state-vector slot of the first species of
	// the first tet of compartment c.
	CompOffset []int

	PatchSpecies [][]int
	PatchG2L     [][]int
	PatchOffset  []int

	CompReactions  [][]LocalReaction
	CompDiffusions [][]LocalDiff

	PatchSReactions [][]LocalSReaction
	PatchDiffusions [][]LocalSDiff

	// Len is the total length of the global state vector.
	Len int
}

// specG2L returns the local index of global species g in compartment c,
// or (0, false) if g is not defined there.
func (d *Def) specG2L(compIdx, globalSpec int) (int, bool) {
	l := d.CompG2L[compIdx][globalSpec]
	if l == undefined {
		return 0, false
	}
	return l, true
}

func (d *Def) patchSpecG2L(patchIdx, globalSpec int) (int, bool) {
	l := d.PatchG2L[patchIdx][globalSpec]
	if l == undefined {
		return 0, false
	}
	return l, true
}

// CompLocal returns the compartment-local index of global species
// globalSpec in compartment compIdx, or (0, false) if that species is
// not defined there.
func (d *Def) CompLocal(compIdx, globalSpec int) (int, bool) {
	return d.specG2L(compIdx, globalSpec)
}

// PatchLocal returns the patch-local index of global species
// globalSpec in patch patchIdx, or (0, false) if that species is not
// defined there.
func (d *Def) PatchLocal(patchIdx, globalSpec int) (int, bool) {
	return d.patchSpecG2L(patchIdx, globalSpec)
}

// NSpeciesComp returns the number of locally-defined species in
// compartment c.
func (d *Def) NSpeciesComp(compIdx int) int { return len(d.CompSpecies[compIdx]) }

// NSpeciesPatch returns the number of locally-defined species in patch
// p.
func (d *Def) NSpeciesPatch(patchIdx int) int { return len(d.PatchSpecies[patchIdx]) }

// StateIndex returns the state-vector slot for local species specLocal
// of the tetLocal-th tetrahedron of compartment compIdx.
func (d *Def) StateIndex(compIdx, tetLocal, specLocal int) int {
	n := d.NSpeciesComp(compIdx)
	return d.CompOffset[compIdx] + tetLocal*n + specLocal
}

// PatchStateIndex returns the state-vector slot for local species
// specLocal of the triLocal-th triangle of patch patchIdx.
func (d *Def) PatchStateIndex(patchIdx, triLocal, specLocal int) int {
	n := d.NSpeciesPatch(patchIdx)
	return d.PatchOffset[patchIdx] + triLocal*n + specLocal
}

const maxOrder = 4

// Resolve builds a Def from a catalogue and a mesh: every compartment's
// and patch's attached system name must be registered in cat, or
// UnresolvedSystem is returned; every reaction/surface reaction whose
// order exceeds 4 fails with UnsupportedOrder; every mesh compartment
// must actually be a mesh-based (tetrahedral) compartment or
// InvalidGeometry is returned (spec.md §9 — this engine has no other
// compartment kind, so the check only catches empty compartments).
func Resolve(cat *model.Catalogue, mesh *geomindex.Mesh) (*Def, error) {
	const op = "statedef.Resolve"

	d := &Def{Cat: cat, Mesh: mesh}
	nSpec := len(cat.Species)

	d.CompSpecies = make([][]int, len(mesh.Comps))
	d.CompG2L = make([][]int, len(mesh.Comps))
	d.CompOffset = make([]int, len(mesh.Comps))
	d.CompReactions = make([][]LocalReaction, len(mesh.Comps))
	d.CompDiffusions = make([][]LocalDiff, len(mesh.Comps))

	compSets := make([]map[int]bool, len(mesh.Comps))
	compVS := make([]*model.VolumeSystem, len(mesh.Comps))
	for ci, comp := range mesh.Comps {
		if len(comp.Tets) == 0 {
			return nil, errs.New(op, errs.InvalidGeometry, "compartment %q has no tetrahedra", comp.Name)
		}
		vs, ok := cat.VolumeSystemByName(comp.System)
		if !ok {
			return nil, errs.New(op, errs.UnresolvedSystem, "compartment %q attaches unknown volume system %q", comp.Name, comp.System)
		}
		compVS[ci] = vs

		speciesSet := make(map[int]bool)
		for _, ridx := range vs.Reactions {
			r := cat.Reactions[ridx]
			if r.Order() > maxOrder {
				return nil, errs.New(op, errs.UnsupportedOrder, "reaction %d has order %d > %d", ridx, r.Order(), maxOrder)
			}
			for name := range r.Lhs {
				addSpecies(cat, speciesSet, name)
			}
			for name := range r.Rhs {
				addSpecies(cat, speciesSet, name)
			}
		}
		for _, didx := range vs.Diffusions {
			addSpecies(cat, speciesSet, cat.VolDiffs[didx].Spec)
		}
		compSets[ci] = speciesSet
	}

	// A surface reaction's inner/outer sides read and write state that
	// lives in the adjacent compartment's own slots (spec.md §4.4.2), so
	// any species it names there must be folded into that compartment's
	// local species set before compartment offsets are finalised below.
	patchSS := make([]*model.SurfaceSystem, len(mesh.Patch))
	for pi, patch := range mesh.Patch {
		if len(patch.Tris) == 0 {
			return nil, errs.New(op, errs.InvalidGeometry, "patch %q has no triangles", patch.Name)
		}
		ss, ok := cat.SurfaceSystemByName(patch.System)
		if !ok {
			return nil, errs.New(op, errs.UnresolvedSystem, "patch %q attaches unknown surface system %q", patch.Name, patch.System)
		}
		patchSS[pi] = ss

		for _, sidx := range ss.SReactions {
			r := cat.SReactions[sidx]
			if r.Order() > maxOrder {
				return nil, errs.New(op, errs.UnsupportedOrder, "surface reaction %d has order %d > %d", sidx, r.Order(), maxOrder)
			}
			if len(r.ILhs) > 0 || len(r.IRhs) > 0 {
				for name := range r.ILhs {
					addSpecies(cat, compSets[patch.InnerComp], name)
				}
				for name := range r.IRhs {
					addSpecies(cat, compSets[patch.InnerComp], name)
				}
			}
			if len(r.OLhs) > 0 || len(r.ORhs) > 0 {
				if patch.OuterComp == geomindex.Absent {
					return nil, errs.New(op, errs.UnresolvedSystem, "surface reaction %d references outer volume but patch %q has none", sidx, patch.Name)
				}
				for name := range r.OLhs {
					addSpecies(cat, compSets[patch.OuterComp], name)
				}
				for name := range r.ORhs {
					addSpecies(cat, compSets[patch.OuterComp], name)
				}
			}
		}
	}

	offset := 0
	for ci, comp := range mesh.Comps {
		vs := compVS[ci]
		local, g2l := buildLocalOrder(nSpec, compSets[ci])
		d.CompSpecies[ci] = local
		d.CompG2L[ci] = g2l
		d.CompOffset[ci] = offset
		offset += len(comp.Tets) * len(local)

		for _, ridx := range vs.Reactions {
			r := cat.Reactions[ridx]
			lhs := make([]int, len(local))
			upd := make([]int, len(local))
			for li, gs := range local {
				name := cat.Species[gs].Name
				lhs[li] = r.Lhs[name]
				upd[li] = r.Update(name)
			}
			d.CompReactions[ci] = append(d.CompReactions[ci], LocalReaction{Reaction: ridx, Lhs: lhs, Update: upd})
		}
		for _, didx := range vs.Diffusions {
			dd := cat.VolDiffs[didx]
			specLocal, ok := d.specG2L(ci, mustSpecIndex(cat, dd.Spec))
			if !ok {
				continue
			}
			d.CompDiffusions[ci] = append(d.CompDiffusions[ci], LocalDiff{Diff: didx, Spec: specLocal, D: dd.D})
		}
	}

	d.PatchSpecies = make([][]int, len(mesh.Patch))
	d.PatchG2L = make([][]int, len(mesh.Patch))
	d.PatchOffset = make([]int, len(mesh.Patch))
	d.PatchSReactions = make([][]LocalSReaction, len(mesh.Patch))
	d.PatchDiffusions = make([][]LocalSDiff, len(mesh.Patch))

	for pi, patch := range mesh.Patch {
		ss := patchSS[pi]

		speciesSet := make(map[int]bool)
		for _, sidx := range ss.SReactions {
			r := cat.SReactions[sidx]
			for name := range r.SLhs {
				addSpecies(cat, speciesSet, name)
			}
			for name := range r.SRhs {
				addSpecies(cat, speciesSet, name)
			}
		}
		for _, didx := range ss.Diffusions {
			addSpecies(cat, speciesSet, cat.SurfDiffs[didx].Spec)
		}

		local, g2l := buildLocalOrder(nSpec, speciesSet)
		d.PatchSpecies[pi] = local
		d.PatchG2L[pi] = g2l
		d.PatchOffset[pi] = offset
		offset += len(patch.Tris) * len(local)

		for _, sidx := range ss.SReactions {
			r := cat.SReactions[sidx]
			ld := LocalSReaction{SReaction: sidx}
			ld.SLhs, ld.SUpdate = localVectors(cat, local, r.SLhs, r.SRhs)
			if len(r.ILhs) > 0 || len(r.IRhs) > 0 {
				innerLocal := d.CompSpecies[patch.InnerComp]
				ld.ILhs, ld.IUpdate = localVectors(cat, innerLocal, r.ILhs, r.IRhs)
			}
			if len(r.OLhs) > 0 || len(r.ORhs) > 0 {
				if patch.OuterComp == geomindex.Absent {
					return nil, errs.New(op, errs.UnresolvedSystem, "surface reaction %d references outer volume but patch %q has none", sidx, patch.Name)
				}
				outerLocal := d.CompSpecies[patch.OuterComp]
				ld.OLhs, ld.OUpdate = localVectors(cat, outerLocal, r.OLhs, r.ORhs)
			}
			d.PatchSReactions[pi] = append(d.PatchSReactions[pi], ld)
		}
		for _, didx := range ss.Diffusions {
			dd := cat.SurfDiffs[didx]
			specLocal, ok := d.patchSpecG2L(pi, mustSpecIndex(cat, dd.Spec))
			if !ok {
				continue
			}
			d.PatchDiffusions[pi] = append(d.PatchDiffusions[pi], LocalSDiff{Diff: didx, Spec: specLocal, D: dd.D})
		}
	}

	d.Len = offset
	return d, nil
}

func addSpecies(cat *model.Catalogue, set map[int]bool, name string) {
	sp, ok := cat.SpeciesByName(name)
	if !ok {
		return
	}
	set[sp.Index] = true
}

func mustSpecIndex(cat *model.Catalogue, name string) int {
	sp, ok := cat.SpeciesByName(name)
	if !ok {
		return -1
	}
	return sp.Index
}

// buildLocalOrder returns the sorted (by global index) list of species
// present in set, plus a nSpec-length global-to-local map filled with
// undefined for absent species.
func buildLocalOrder(nSpec int, set map[int]bool) ([]int, []int) {
	local := make([]int, 0, len(set))
	for g := range set {
		local = append(local, g)
	}
	sort.Ints(local)

	g2l := make([]int, nSpec)
	for i := range g2l {
		g2l[i] = undefined
	}
	for li, g := range local {
		g2l[g] = li
	}
	return local, g2l
}

// localVectors maps an lhs/rhs multiset pair onto the given local
// species ordering, returning nil,nil if both multisets are empty.
func localVectors(cat *model.Catalogue, local []int, lhs, rhs map[string]int) ([]int, []int) {
	if len(lhs) == 0 && len(rhs) == 0 {
		return nil, nil
	}
	lhsVec := make([]int, len(local))
	updVec := make([]int, len(local))
	for li, gs := range local {
		name := cat.Species[gs].Name
		lhsVec[li] = lhs[name]
		updVec[li] = rhs[name] - lhs[name]
	}
	return lhsVec, updVec
}

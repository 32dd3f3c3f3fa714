/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package procgraph

import (
	"tetode/geomindex"
	"tetode/model"
	"tetode/statedef"
)

// tempProcess is the not-yet-flattened form of a Process: its
// descriptor list is its own slice rather than an arena range, since
// the arena offsets aren't known until every process has been
// discovered.
type tempProcess struct {
	Coeff float64
	Upd   int
	Desc  []Descriptor
	ID    ProcessID
}

// Build walks the resolved state definition in the fixed traversal
// order of spec.md §4.4 — compartments in registration order, tets in
// local order, reactions then volume-diffusion rules; patches in
// registration order, tris in local order, surface reactions then
// surface-diffusion rules — and materialises the flattened process
// graph that Eval walks when package tetode's integrator asks for dy/dt.
//
// Build assumes def was produced by statedef.Resolve against the same
// cat and mesh: it performs no validation of its own.
func Build(cat *model.Catalogue, mesh *geomindex.Mesh, def *statedef.Def) *Graph {
	temp := make([][]tempProcess, def.Len)

	for ci, comp := range mesh.Comps {
		for tetLocal, tetGlobal := range comp.Tets {
			tet := mesh.Tets[tetGlobal]
			for _, lr := range def.CompReactions[ci] {
				buildReaction(cat, def, temp, ci, tetLocal, tetGlobal, tet.Vol, lr)
			}
			for _, ld := range def.CompDiffusions[ci] {
				buildVolDiff(mesh, def, temp, comp, ci, tetLocal, tetGlobal, tet, ld)
			}
		}
	}

	for pi, patch := range mesh.Patch {
		for triLocal, triGlobal := range patch.Tris {
			tri := mesh.Tris[triGlobal]
			for _, lsr := range def.PatchSReactions[pi] {
				buildSReaction(cat, mesh, def, temp, patch, pi, triLocal, triGlobal, tri, lsr)
			}
			for _, lsd := range def.PatchDiffusions[pi] {
				buildSurfDiff(mesh, def, temp, patch, pi, triLocal, triGlobal, tri, lsd)
			}
		}
	}

	return flatten(def.Len, temp)
}

func buildReaction(cat *model.Catalogue, def *statedef.Def, temp [][]tempProcess, ci, tetLocal, tetGlobal int, vol float64, lr statedef.LocalReaction) {
	r := cat.Reactions[lr.Reaction]
	coeff := Ccst3D(r.Kcst, vol, r.Order())

	var desc []Descriptor
	for j, m := range lr.Lhs {
		if m > 0 {
			desc = append(desc, Descriptor{Order: m, Slot: def.StateIndex(ci, tetLocal, j)})
		}
	}

	id := ProcessID{Kind: Reac, Rule: lr.Reaction, Elem: tetGlobal}
	for j, u := range lr.Update {
		if u == 0 {
			continue
		}
		slot := def.StateIndex(ci, tetLocal, j)
		temp[slot] = append(temp[slot], tempProcess{Coeff: coeff, Upd: u, Desc: desc, ID: id})
	}
}

func buildVolDiff(mesh *geomindex.Mesh, def *statedef.Def, temp [][]tempProcess, comp *geomindex.Compartment, ci, tetLocal, tetGlobal int, tet *geomindex.Tet, ld statedef.LocalDiff) {
	for f := 0; f < 4; f++ {
		nb := tet.Neighbor[f]
		if nb == geomindex.Absent {
			continue
		}
		if mesh.Tets[nb].Comp != ci {
			continue
		}
		nbLocal, ok := comp.LocalIndex(nb)
		if !ok {
			continue
		}
		dcond := tet.FaceArea[f] * ld.D / (tet.Vol * tet.FaceDist[f])
		donorSlot := def.StateIndex(ci, tetLocal, ld.Spec)
		acceptorSlot := def.StateIndex(ci, nbLocal, ld.Spec)
		desc := []Descriptor{{Order: 1, Slot: donorSlot}}
		id := ProcessID{Kind: VDiff, Rule: ld.Diff, Elem: tetGlobal}

		temp[donorSlot] = append(temp[donorSlot], tempProcess{Coeff: dcond, Upd: -1, Desc: desc, ID: id})
		temp[acceptorSlot] = append(temp[acceptorSlot], tempProcess{Coeff: dcond, Upd: 1, Desc: desc, ID: id})
	}
}

func buildSReaction(cat *model.Catalogue, mesh *geomindex.Mesh, def *statedef.Def, temp [][]tempProcess, patch *geomindex.Patch, pi, triLocal, triGlobal int, tri *geomindex.Tri, lsr statedef.LocalSReaction) {
	r := cat.SReactions[lsr.SReaction]
	coeff := SReacCoeff(r, mesh, triGlobal)

	var desc []Descriptor
	for j, m := range lsr.SLhs {
		if m > 0 {
			desc = append(desc, Descriptor{Order: m, Slot: def.PatchStateIndex(pi, triLocal, j)})
		}
	}

	var innerLocal int
	innerOk := lsr.ILhs != nil || lsr.IUpdate != nil
	if innerOk {
		innerLocal, innerOk = mesh.Comps[patch.InnerComp].LocalIndex(tri.Inner)
		for j, m := range lsr.ILhs {
			if m > 0 && innerOk {
				desc = append(desc, Descriptor{Order: m, Slot: def.StateIndex(patch.InnerComp, innerLocal, j)})
			}
		}
	}

	var outerLocal int
	outerOk := (lsr.OLhs != nil || lsr.OUpdate != nil) && patch.OuterComp != geomindex.Absent
	if outerOk {
		outerLocal, outerOk = mesh.Comps[patch.OuterComp].LocalIndex(tri.Outer)
		for j, m := range lsr.OLhs {
			if m > 0 && outerOk {
				desc = append(desc, Descriptor{Order: m, Slot: def.StateIndex(patch.OuterComp, outerLocal, j)})
			}
		}
	}

	id := ProcessID{Kind: SReac, Rule: lsr.SReaction, Elem: triGlobal}

	for j, u := range lsr.SUpdate {
		if u == 0 {
			continue
		}
		slot := def.PatchStateIndex(pi, triLocal, j)
		temp[slot] = append(temp[slot], tempProcess{Coeff: coeff, Upd: u, Desc: desc, ID: id})
	}
	if innerOk {
		for j, u := range lsr.IUpdate {
			if u == 0 {
				continue
			}
			slot := def.StateIndex(patch.InnerComp, innerLocal, j)
			temp[slot] = append(temp[slot], tempProcess{Coeff: coeff, Upd: u, Desc: desc, ID: id})
		}
	}
	if outerOk {
		for j, u := range lsr.OUpdate {
			if u == 0 {
				continue
			}
			slot := def.StateIndex(patch.OuterComp, outerLocal, j)
			temp[slot] = append(temp[slot], tempProcess{Coeff: coeff, Upd: u, Desc: desc, ID: id})
		}
	}
}

func buildSurfDiff(mesh *geomindex.Mesh, def *statedef.Def, temp [][]tempProcess, patch *geomindex.Patch, pi, triLocal, triGlobal int, tri *geomindex.Tri, lsd statedef.LocalSDiff) {
	for e := 0; e < 3; e++ {
		nb := tri.Neighbor[e]
		if nb == geomindex.Absent {
			continue
		}
		if mesh.Tris[nb].Patch != pi {
			continue
		}
		nbLocal, ok := patch.LocalIndex(nb)
		if !ok {
			continue
		}
		dcond := tri.EdgeLen[e] * lsd.D / (tri.Area * tri.EdgeDist[e])
		donorSlot := def.PatchStateIndex(pi, triLocal, lsd.Spec)
		acceptorSlot := def.PatchStateIndex(pi, nbLocal, lsd.Spec)
		desc := []Descriptor{{Order: 1, Slot: donorSlot}}
		id := ProcessID{Kind: SDiff, Rule: lsd.Diff, Elem: triGlobal}

		temp[donorSlot] = append(temp[donorSlot], tempProcess{Coeff: dcond, Upd: -1, Desc: desc, ID: id})
		temp[acceptorSlot] = append(temp[acceptorSlot], tempProcess{Coeff: dcond, Upd: 1, Desc: desc, ID: id})
	}
}

// SReacCoeff computes a surface reaction's rate coefficient per
// spec.md §4.5: surface-surface reactions scale by the triangle's
// area; surface-volume reactions scale by the volume of whichever
// adjacent compartment the reaction's Inside flag selects. Exported so
// package tetode can recompute a rebound rate constant's coefficient
// without rebuilding the process graph.
func SReacCoeff(r *model.SReaction, mesh *geomindex.Mesh, triGlobal int) float64 {
	tri := mesh.Tris[triGlobal]
	order := r.Order()
	if r.Kind() == model.SurfaceSurface {
		return Ccst2D(r.Kcst, tri.Area, order)
	}
	tetIdx := tri.Inner
	if !r.Inside && tri.Outer != geomindex.Absent {
		tetIdx = tri.Outer
	}
	return Ccst3D(r.Kcst, mesh.Tets[tetIdx].Vol, order)
}

func flatten(length int, temp [][]tempProcess) *Graph {
	total := 0
	descTotal := 0
	for _, ps := range temp {
		total += len(ps)
		for _, p := range ps {
			descTotal += len(p.Desc)
		}
	}

	g := &Graph{
		Len:         length,
		SlotOff:     make([]int, length+1),
		Processes:   make([]Process, 0, total),
		Descriptors: make([]Descriptor, 0, descTotal),
		ByID:        make(map[ProcessID][]int, total),
	}

	for slot := 0; slot < length; slot++ {
		g.SlotOff[slot] = len(g.Processes)
		for _, tp := range temp[slot] {
			off := len(g.Descriptors)
			g.Descriptors = append(g.Descriptors, tp.Desc...)
			g.Processes = append(g.Processes, Process{
				Coeff: tp.Coeff, Upd: tp.Upd,
				DescOff: off, DescLen: len(tp.Desc),
				ID: tp.ID,
			})
		}
	}
	g.SlotOff[length] = len(g.Processes)

	for i, p := range g.Processes {
		g.ByID[p.ID] = append(g.ByID[p.ID], i)
	}
	return g
}

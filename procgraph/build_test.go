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
	"testing"

	"tetode/geomindex"
	"tetode/model"
	"tetode/statedef"
)

// buildReactionOnly returns a single-tet mesh with species A, B, C and
// a bimolecular reaction A+B->C.
func buildReactionOnly(t *testing.T) (*model.Catalogue, *geomindex.Mesh, *statedef.Def) {
	t.Helper()
	cat := model.New()
	for _, s := range []string{"A", "B", "C"} {
		cat.AddSpecies(s)
	}
	cat.AddVolumeSystem("cyt")
	if _, err := cat.AddReaction("cyt", map[string]int{"A": 1, "B": 1}, map[string]int{"C": 1}, 1e6); err != nil {
		t.Fatal(err)
	}

	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "cyt")
	if _, err := mesh.AddTet(comp.Index, 1e-18, [4]float64{}, [4]float64{1, 1, 1, 1}, [4]int{-1, -1, -1, -1}); err != nil {
		t.Fatal(err)
	}

	def, err := statedef.Resolve(cat, mesh)
	if err != nil {
		t.Fatal(err)
	}
	return cat, mesh, def
}

func TestBuildReactionRateSign(t *testing.T) {
	cat, mesh, def := buildReactionOnly(t)
	g := Build(cat, mesh, def)

	if g.Len != 3 {
		t.Fatalf("Len = %d, want 3", g.Len)
	}
	y := []float64{10, 5, 0}
	dy := make([]float64, g.Len)
	g.Eval(y, dy)

	if dy[0] >= 0 || dy[1] >= 0 || dy[2] <= 0 {
		t.Fatalf("dy = %v, want negative A/B and positive C", dy)
	}
	if dy[0] != dy[1] {
		t.Errorf("dA/dt (%g) should equal dB/dt (%g) for a 1:1 reaction", dy[0], dy[1])
	}
	if dy[2] != -dy[0] {
		t.Errorf("dC/dt (%g) should be -dA/dt (%g)", dy[2], dy[0])
	}
}

// buildDiffusionOnly returns a two-tet, one-compartment mesh with a
// single diffusing species A and no reactions.
func buildDiffusionOnly(t *testing.T) (*model.Catalogue, *geomindex.Mesh, *statedef.Def) {
	t.Helper()
	cat := model.New()
	cat.AddSpecies("A")
	cat.AddVolumeSystem("cyt")
	if _, err := cat.AddVolumeDiffusion("cyt", "A", 1e-10); err != nil {
		t.Fatal(err)
	}

	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "cyt")
	area := [4]float64{1e-12, 1e-12, 1e-12, 1e-12}
	dist := [4]float64{1e-6, 1e-6, 1e-6, 1e-6}
	mesh.AddTet(comp.Index, 1e-18, area, dist, [4]int{-1, -1, -1, 1})
	mesh.AddTet(comp.Index, 1e-18, area, dist, [4]int{-1, -1, -1, 0})

	def, err := statedef.Resolve(cat, mesh)
	if err != nil {
		t.Fatal(err)
	}
	return cat, mesh, def
}

func TestBuildDiffusionConservesMass(t *testing.T) {
	cat, mesh, def := buildDiffusionOnly(t)
	g := Build(cat, mesh, def)

	y := []float64{1000, 200}
	dy := make([]float64, g.Len)
	g.Eval(y, dy)

	if dy[0] != -dy[1] {
		t.Errorf("dy = %v, diffusion should conserve total mass (dy[0] == -dy[1])", dy)
	}
	if dy[0] >= 0 {
		t.Errorf("dy[0] = %g, expected net efflux from the higher-concentration tet", dy[0])
	}
}

func TestBuildDiffusionRebindByID(t *testing.T) {
	cat, mesh, def := buildDiffusionOnly(t)
	g := Build(cat, mesh, def)

	// Both the donor (-1) and acceptor (+1) process created while tet 0
	// is being processed as donor share one ProcessID, per spec.md §9's
	// Design Notes.
	id := ProcessID{Kind: VDiff, Rule: 0, Elem: 0}
	idxs, ok := g.ByID[id]
	if !ok || len(idxs) != 2 {
		t.Fatalf("ByID[%v] = %v, want exactly two processes (donor at tet 0, acceptor at tet 1)", id, idxs)
	}
}

// buildSurfaceVolume returns a single-compartment, single-patch mesh
// where a surface reaction R + Ca(inside) -> RCa couples a volume
// species (Ca, in compartment cyt) to two surface species (R, RCa, on
// patch mem).
func buildSurfaceVolume(t *testing.T) (*model.Catalogue, *geomindex.Mesh, *statedef.Def) {
	t.Helper()
	cat := model.New()
	for _, s := range []string{"Ca", "R", "RCa"} {
		cat.AddSpecies(s)
	}
	cat.AddVolumeSystem("cyt")
	cat.AddSurfaceSystem("mem")
	if _, err := cat.AddSurfaceReaction("mem",
		map[string]int{"R": 1}, map[string]int{"RCa": 1},
		map[string]int{"Ca": 1}, nil,
		nil, nil,
		1e6, true); err != nil {
		t.Fatal(err)
	}

	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "cyt")
	tet, err := mesh.AddTet(comp.Index, 1e-18, [4]float64{1e-12, 1e-12, 1e-12, 1e-12}, [4]float64{1, 1, 1, 1}, [4]int{-1, -1, -1, -1})
	if err != nil {
		t.Fatal(err)
	}
	patch, err := mesh.AddPatch("mem", "mem", comp.Index, geomindex.Absent)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mesh.AddTri(patch.Index, 1e-12, [3]float64{1, 1, 1}, [3]float64{1, 1, 1}, [3]int{-1, -1, -1}, tet, geomindex.Absent); err != nil {
		t.Fatal(err)
	}

	def, err := statedef.Resolve(cat, mesh)
	if err != nil {
		t.Fatal(err)
	}
	return cat, mesh, def
}

func TestBuildSurfaceVolumeCoupling(t *testing.T) {
	cat, mesh, def := buildSurfaceVolume(t)

	if got := def.NSpeciesComp(0); got != 1 {
		t.Fatalf("NSpeciesComp(0) = %d, want 1 (Ca must be folded into the compartment by the surface reaction)", got)
	}
	if got := def.NSpeciesPatch(0); got != 2 {
		t.Fatalf("NSpeciesPatch(0) = %d, want 2 (R, RCa)", got)
	}

	g := Build(cat, mesh, def)
	if g.Len != 3 {
		t.Fatalf("Len = %d, want 3", g.Len)
	}

	caSlot := def.StateIndex(0, 0, 0)
	rSlot, rcaSlot := findRSlots(def)

	y := make([]float64, g.Len)
	y[caSlot] = 1000
	y[rSlot] = 500
	dy := make([]float64, g.Len)
	g.Eval(y, dy)

	if dy[caSlot] >= 0 {
		t.Errorf("dCa/dt = %g, want negative (Ca consumed)", dy[caSlot])
	}
	if dy[rSlot] >= 0 {
		t.Errorf("dR/dt = %g, want negative (R consumed)", dy[rSlot])
	}
	if dy[rcaSlot] <= 0 {
		t.Errorf("dRCa/dt = %g, want positive (RCa produced)", dy[rcaSlot])
	}
	if dy[caSlot] != dy[rSlot] {
		t.Errorf("dCa/dt (%g) should equal dR/dt (%g): both consumed 1:1", dy[caSlot], dy[rSlot])
	}
	if dy[rcaSlot] != -dy[rSlot] {
		t.Errorf("dRCa/dt (%g) should be -dR/dt (%g)", dy[rcaSlot], dy[rSlot])
	}
}

func findRSlots(def *statedef.Def) (rSlot, rcaSlot int) {
	for li, gs := range def.PatchSpecies[0] {
		switch def.Cat.Species[gs].Name {
		case "R":
			rSlot = def.PatchStateIndex(0, 0, li)
		case "RCa":
			rcaSlot = def.PatchStateIndex(0, 0, li)
		}
	}
	return
}

func TestZeroOrderReactionHasNoDescriptors(t *testing.T) {
	cat := model.New()
	cat.AddSpecies("A")
	cat.AddVolumeSystem("cyt")
	cat.AddReaction("cyt", nil, map[string]int{"A": 1}, 5.0)

	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "cyt")
	mesh.AddTet(comp.Index, 1e-18, [4]float64{}, [4]float64{1, 1, 1, 1}, [4]int{-1, -1, -1, -1})

	def, err := statedef.Resolve(cat, mesh)
	if err != nil {
		t.Fatal(err)
	}
	g := Build(cat, mesh, def)

	dy := make([]float64, g.Len)
	g.Eval([]float64{0}, dy)
	if dy[0] <= 0 {
		t.Errorf("dy[0] = %g, want positive zero-order production independent of y", dy[0])
	}
}

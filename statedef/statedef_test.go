/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package statedef

import (
	"testing"

	"tetode/geomindex"
	"tetode/model"
)

// buildSimple constructs a two-tet, one-compartment mesh with species A,
// B, C and a reaction A+B->C plus a diffusion rule for A.
func buildSimple(t *testing.T) (*model.Catalogue, *geomindex.Mesh) {
	t.Helper()
	cat := model.New()
	for _, s := range []string{"A", "B", "C"} {
		if _, err := cat.AddSpecies(s); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := cat.AddVolumeSystem("cyt"); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.AddReaction("cyt", map[string]int{"A": 1, "B": 1}, map[string]int{"C": 1}, 3e5); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.AddVolumeDiffusion("cyt", "A", 1e-10); err != nil {
		t.Fatal(err)
	}

	mesh := geomindex.New()
	comp, err := mesh.AddCompartment("cell", "cyt")
	if err != nil {
		t.Fatal(err)
	}
	area := [4]float64{1e-12, 1e-12, 1e-12, 1e-12}
	dist := [4]float64{1e-6, 1e-6, 1e-6, 1e-6}
	if _, err := mesh.AddTet(comp.Index, 1e-18, area, dist, [4]int{geomindex.Absent, geomindex.Absent, geomindex.Absent, 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := mesh.AddTet(comp.Index, 1e-18, area, dist, [4]int{geomindex.Absent, geomindex.Absent, geomindex.Absent, 0}); err != nil {
		t.Fatal(err)
	}
	return cat, mesh
}

func TestResolveStateVectorLength(t *testing.T) {
	cat, mesh := buildSimple(t)
	def, err := Resolve(cat, mesh)
	if err != nil {
		t.Fatal(err)
	}
	// 3 species (A, B, C all touched by the reaction) x 2 tets.
	if def.Len != 6 {
		t.Errorf("Len = %d, want 6", def.Len)
	}
	if def.NSpeciesComp(0) != 3 {
		t.Errorf("NSpeciesComp = %d, want 3", def.NSpeciesComp(0))
	}
}

func TestResolveReactionVectors(t *testing.T) {
	cat, mesh := buildSimple(t)
	def, err := Resolve(cat, mesh)
	if err != nil {
		t.Fatal(err)
	}
	lr := def.CompReactions[0][0]
	// local order is sorted by global species index: A=0,B=1,C=2
	if got, want := lr.Lhs, []int{1, 1, 0}; !intsEqual(got, want) {
		t.Errorf("Lhs = %v, want %v", got, want)
	}
	if got, want := lr.Update, []int{-1, -1, 1}; !intsEqual(got, want) {
		t.Errorf("Update = %v, want %v", got, want)
	}
}

func TestResolveUnresolvedSystem(t *testing.T) {
	cat := model.New()
	cat.AddSpecies("A")
	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "nonexistent")
	mesh.AddTet(comp.Index, 1, [4]float64{}, [4]float64{}, [4]int{-1, -1, -1, -1})
	if _, err := Resolve(cat, mesh); err == nil {
		t.Fatal("expected error")
	}
}

func TestResolveUnsupportedOrder(t *testing.T) {
	cat := model.New()
	for _, s := range []string{"A"} {
		cat.AddSpecies(s)
	}
	cat.AddVolumeSystem("cyt")
	cat.AddReaction("cyt", map[string]int{"A": 5}, nil, 1.0)
	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "cyt")
	mesh.AddTet(comp.Index, 1, [4]float64{}, [4]float64{}, [4]int{-1, -1, -1, -1})
	if _, err := Resolve(cat, mesh); err == nil {
		t.Fatal("expected UnsupportedOrder error")
	}
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

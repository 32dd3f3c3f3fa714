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
	"math"
	"testing"

	"tetode/geomindex"
	"tetode/model"
)

// twoTetMesh returns a one-compartment, two-tet mesh sharing a face, no
// systems attached yet — callers register species/reactions/diffusions
// on cat before calling statedef.Resolve (done inside Engine.Setup).
func twoTetMesh(t *testing.T, vol0, vol1 float64) (*geomindex.Mesh, *geomindex.Compartment) {
	t.Helper()
	mesh := geomindex.New()
	comp, err := mesh.AddCompartment("cell", "cyt")
	if err != nil {
		t.Fatal(err)
	}
	area := [4]float64{1e-12, 1e-12, 1e-12, 1e-12}
	dist := [4]float64{1e-6, 1e-6, 1e-6, 1e-6}
	if _, err := mesh.AddTet(comp.Index, vol0, area, dist, [4]int{-1, -1, -1, 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := mesh.AddTet(comp.Index, vol1, area, dist, [4]int{-1, -1, -1, 0}); err != nil {
		t.Fatal(err)
	}
	return mesh, comp
}

// TestStateVectorInvariance checks property 1: |y| after setup equals
// the sum, over compartments and patches, of species count times
// element count.
func TestStateVectorInvariance(t *testing.T) {
	cat := model.New()
	for _, s := range []string{"A", "B"} {
		cat.AddSpecies(s)
	}
	cat.AddVolumeSystem("cyt")
	cat.AddSurfaceSystem("mem")
	if _, err := cat.AddReaction("cyt", map[string]int{"A": 1}, map[string]int{"B": 1}, 1.0); err != nil {
		t.Fatal(err)
	}
	if _, err := cat.AddSurfaceReaction("mem", map[string]int{"A": 1}, map[string]int{"B": 1}, nil, nil, nil, nil, 1.0, true); err != nil {
		t.Fatal(err)
	}

	mesh, comp := twoTetMesh(t, 1e-18, 1e-18)
	patch, err := mesh.AddPatch("mem", "mem", comp.Index, geomindex.Absent)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mesh.AddTri(patch.Index, 1e-12, [3]float64{1, 1, 1}, [3]float64{1, 1, 1}, [3]int{-1, -1, -1}, 0, geomindex.Absent); err != nil {
		t.Fatal(err)
	}

	e := New()
	if err := e.Setup(cat, mesh); err != nil {
		t.Fatal(err)
	}

	want := e.def.NSpeciesComp(0)*len(comp.Tets) + e.def.NSpeciesPatch(0)*len(patch.Tris)
	if len(e.y) != want {
		t.Fatalf("|y| = %d, want %d", len(e.y), want)
	}
}

// TestMassConservationClosedSystem checks property 2: a diffusion-only
// system (no source/sink reactions) conserves total species count
// across a run, to within the integrator's tolerance.
func TestMassConservationClosedSystem(t *testing.T) {
	cat := model.New()
	cat.AddSpecies("A")
	cat.AddVolumeSystem("cyt")
	if _, err := cat.AddVolumeDiffusion("cyt", "A", 1e-10); err != nil {
		t.Fatal(err)
	}

	mesh, _ := twoTetMesh(t, 1e-18, 1e-18)

	e := New()
	if err := e.Setup(cat, mesh); err != nil {
		t.Fatal(err)
	}
	if err := e.SetTetCount(0, "A", 1000); err != nil {
		t.Fatal(err)
	}

	before, _ := e.CompCount(0, "A")
	if err := e.Run(1.0); err != nil {
		t.Fatal(err)
	}
	after, err := e.CompCount(0, "A")
	if err != nil {
		t.Fatal(err)
	}
	tol := 10 * e.rtol * before
	if math.Abs(after-before) > tol {
		t.Errorf("total A drifted from %g to %g, exceeding tolerance %g", before, after, tol)
	}
}

// TestDiffusionSymmetry checks property 3: swapping two neighbouring
// tets' initial populations produces the mirror trajectory.
func TestDiffusionSymmetry(t *testing.T) {
	newModel := func() (*model.Catalogue, *geomindex.Mesh) {
		cat := model.New()
		cat.AddSpecies("A")
		cat.AddVolumeSystem("cyt")
		cat.AddVolumeDiffusion("cyt", "A", 1e-10)
		mesh, _ := twoTetMesh(t, 1e-18, 1e-18)
		return cat, mesh
	}

	cat1, mesh1 := newModel()
	e1 := New()
	if err := e1.Setup(cat1, mesh1); err != nil {
		t.Fatal(err)
	}
	e1.SetTetCount(0, "A", 1000)
	e1.SetTetCount(1, "A", 200)
	if err := e1.Run(0.5); err != nil {
		t.Fatal(err)
	}
	n0a, _ := e1.TetCount(0, "A")
	n1a, _ := e1.TetCount(1, "A")

	cat2, mesh2 := newModel()
	e2 := New()
	if err := e2.Setup(cat2, mesh2); err != nil {
		t.Fatal(err)
	}
	e2.SetTetCount(0, "A", 200)
	e2.SetTetCount(1, "A", 1000)
	if err := e2.Run(0.5); err != nil {
		t.Fatal(err)
	}
	n0b, _ := e2.TetCount(0, "A")
	n1b, _ := e2.TetCount(1, "A")

	if math.Abs(n0a-n1b) > 1e-6*1000 || math.Abs(n1a-n0b) > 1e-6*1000 {
		t.Errorf("swapped initial populations did not mirror: (%g,%g) vs (%g,%g)", n0a, n1a, n0b, n1b)
	}
}

// TestZeroReactionInertBaseline checks property 4: with no reactions
// and no diffusion, y(t) == y(0) for all t. A species only has slots in a
// compartment whose system names it, so A gets a diffusion rule with a
// zero constant: it has slots, and nothing moves it.
func TestZeroReactionInertBaseline(t *testing.T) {
	cat := model.New()
	cat.AddSpecies("A")
	cat.AddVolumeSystem("cyt")
	cat.AddVolumeDiffusion("cyt", "A", 0)

	mesh, _ := twoTetMesh(t, 1e-18, 1e-18)

	e := New()
	if err := e.Setup(cat, mesh); err != nil {
		t.Fatal(err)
	}
	e.SetTetCount(0, "A", 500)
	e.SetTetCount(1, "A", 700)

	if err := e.Run(1.0); err != nil {
		t.Fatal(err)
	}
	n0, _ := e.TetCount(0, "A")
	n1, _ := e.TetCount(1, "A")
	if n0 != 500 || n1 != 700 {
		t.Errorf("inert baseline drifted: (%g, %g), want (500, 700)", n0, n1)
	}
}

// TestRebindIdempotence checks property 5: setting a reaction's rate
// constant to its current value changes nothing.
func TestRebindIdempotence(t *testing.T) {
	cat := model.New()
	cat.AddSpecies("A")
	cat.AddVolumeSystem("cyt")
	if _, err := cat.AddReaction("cyt", map[string]int{"A": 1}, nil, 2.5); err != nil {
		t.Fatal(err)
	}
	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "cyt")
	mesh.AddTet(comp.Index, 1e-18, [4]float64{}, [4]float64{1, 1, 1, 1}, [4]int{-1, -1, -1, -1})

	e := New()
	if err := e.Setup(cat, mesh); err != nil {
		t.Fatal(err)
	}
	e.SetTetCount(0, "A", 1000)

	before := e.g.Processes[e.g.ByID[processIDFor(0)][0]].Coeff
	if err := e.SetTetReacK(0, 0, 2.5); err != nil {
		t.Fatal(err)
	}
	after := e.g.Processes[e.g.ByID[processIDFor(0)][0]].Coeff
	if before != after {
		t.Fatalf("rebinding to the current value changed the coefficient: %g -> %g", before, after)
	}

	if err := e.Run(1.0); err != nil {
		t.Fatal(err)
	}
	got, _ := e.TetCount(0, "A")

	cat2 := model.New()
	cat2.AddSpecies("A")
	cat2.AddVolumeSystem("cyt")
	cat2.AddReaction("cyt", map[string]int{"A": 1}, nil, 2.5)
	mesh2 := geomindex.New()
	comp2, _ := mesh2.AddCompartment("cell", "cyt")
	mesh2.AddTet(comp2.Index, 1e-18, [4]float64{}, [4]float64{1, 1, 1, 1}, [4]int{-1, -1, -1, -1})
	e2 := New()
	if err := e2.Setup(cat2, mesh2); err != nil {
		t.Fatal(err)
	}
	e2.SetTetCount(0, "A", 1000)
	if err := e2.Run(1.0); err != nil {
		t.Fatal(err)
	}
	want, _ := e2.TetCount(0, "A")

	if got != want {
		t.Errorf("trajectory after a no-op rebind (%g) diverged from never rebinding (%g)", got, want)
	}
}

// decayEngine builds the single-tet, single-species decay model used by
// TestRebindRevertBeforeRunIdempotence, with A's reaction rate constant
// fixed at kcst.
func decayEngine(t *testing.T, kcst float64) *Engine {
	t.Helper()
	cat := model.New()
	cat.AddSpecies("A")
	cat.AddVolumeSystem("cyt")
	if _, err := cat.AddReaction("cyt", map[string]int{"A": 1}, nil, kcst); err != nil {
		t.Fatal(err)
	}
	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "cyt")
	mesh.AddTet(comp.Index, 1e-18, [4]float64{}, [4]float64{1, 1, 1, 1}, [4]int{-1, -1, -1, -1})

	e := New()
	if err := e.Setup(cat, mesh); err != nil {
		t.Fatal(err)
	}
	return e
}

// TestRebindRevertBeforeRunIdempotence checks the second clause of
// property 5: setting a rate constant to a different value and then
// reverting it, all before any Run call, yields the same trajectory as
// never having rebound it at all.
func TestRebindRevertBeforeRunIdempotence(t *testing.T) {
	e := decayEngine(t, 2.5)
	e.SetTetCount(0, "A", 1000)
	if err := e.SetTetReacK(0, 0, 9.0); err != nil {
		t.Fatal(err)
	}
	if err := e.SetTetReacK(0, 0, 2.5); err != nil {
		t.Fatal(err)
	}
	if err := e.Run(1.0); err != nil {
		t.Fatal(err)
	}
	got, _ := e.TetCount(0, "A")

	e2 := decayEngine(t, 2.5)
	e2.SetTetCount(0, "A", 1000)
	if err := e2.Run(1.0); err != nil {
		t.Fatal(err)
	}
	want, _ := e2.TetCount(0, "A")

	if got != want {
		t.Errorf("trajectory after revert-before-run (%g) diverged from never rebinding (%g)", got, want)
	}
}

// TestCheckpointRoundTrip checks property 6: checkpoint;restore;run(dt)
// yields the same final y as run(dt) without the round-trip: both the
// restored engine and the reference run to t=0.5 before the last run(dt).
func TestCheckpointRoundTrip(t *testing.T) {
	newEngine := func() *Engine {
		cat := model.New()
		cat.AddSpecies("A")
		cat.AddVolumeSystem("cyt")
		cat.AddReaction("cyt", map[string]int{"A": 1}, nil, 1.0)
		mesh := geomindex.New()
		comp, _ := mesh.AddCompartment("cell", "cyt")
		mesh.AddTet(comp.Index, 1e-18, [4]float64{}, [4]float64{1, 1, 1, 1}, [4]int{-1, -1, -1, -1})
		e := New()
		if err := e.Setup(cat, mesh); err != nil {
			t.Fatal(err)
		}
		e.SetTetCount(0, "A", 1000)
		return e
	}

	e1 := newEngine()
	if err := e1.Run(0.5); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path := dir + "/ckpt.bin"
	if err := e1.Checkpoint(path); err != nil {
		t.Fatal(err)
	}

	e2 := newEngine()
	if err := e2.Run(0.5); err != nil {
		t.Fatal(err)
	}
	if err := e2.Restore(path); err != nil {
		t.Fatal(err)
	}
	if err := e2.Run(0.6); err != nil {
		t.Fatal(err)
	}
	want2, _ := e2.TetCount(0, "A")

	e3 := newEngine()
	if err := e3.Run(0.5); err != nil {
		t.Fatal(err)
	}
	if err := e3.Run(0.6); err != nil {
		t.Fatal(err)
	}
	want3, _ := e3.TetCount(0, "A")

	if want2 != want3 {
		t.Errorf("checkpoint round-trip trajectory (%g) diverged from the direct run (%g)", want2, want3)
	}
}

/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package checkpoint

import (
	"bytes"
	"testing"

	"tetode/geomindex"
	"tetode/model"
	"tetode/statedef"
)

func buildDef(t *testing.T) (*model.Catalogue, *geomindex.Mesh, *statedef.Def) {
	t.Helper()
	cat := model.New()
	cat.AddSpecies("A")
	cat.AddVolumeSystem("cyt")
	cat.AddReaction("cyt", nil, map[string]int{"A": 1}, 1.0)

	mesh := geomindex.New()
	comp, _ := mesh.AddCompartment("cell", "cyt")
	mesh.AddTet(comp.Index, 1, [4]float64{}, [4]float64{1, 1, 1, 1}, [4]int{-1, -1, -1, -1})

	def, err := statedef.Resolve(cat, mesh)
	if err != nil {
		t.Fatal(err)
	}
	return cat, mesh, def
}

func TestWriteReadRoundTrip(t *testing.T) {
	cat, mesh, def := buildDef(t)
	sig := NewSignature(cat, mesh, def)

	snap := Snapshot{
		Sig:      sig,
		TNow:     1.5,
		RTol:     1e-6,
		MaxSteps: 10000,
		AbsTol:   []float64{1e-9},
		Y:        []float64{42.0},
	}

	var buf bytes.Buffer
	if err := Write(&buf, snap); err != nil {
		t.Fatal(err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.TNow != snap.TNow || got.RTol != snap.RTol || got.MaxSteps != snap.MaxSteps {
		t.Errorf("scalar fields did not round-trip: got %+v", got)
	}
	if len(got.Y) != 1 || got.Y[0] != 42.0 {
		t.Errorf("Y did not round-trip: got %v", got.Y)
	}
	if !Match(got.Sig, sig) {
		t.Errorf("restored signature does not match the live one")
	}
}

func TestMatchDetectsMismatch(t *testing.T) {
	cat, mesh, def := buildDef(t)
	sig := NewSignature(cat, mesh, def)

	cat2, mesh2, def2 := buildDef(t)
	cat2.AddSpecies("B")
	sig2 := NewSignature(cat2, mesh2, def2)

	if Match(sig, sig2) {
		t.Errorf("Match should detect the added species B")
	}
}

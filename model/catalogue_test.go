/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package model

import (
	"testing"

	"tetode/errs"
)

func TestAddSpeciesConflict(t *testing.T) {
	c := New()
	if _, err := c.AddSpecies("A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.AddSpecies("A"); errs.KindOf(err) != errs.NameConflict {
		t.Fatalf("got %v, want NameConflict", err)
	}
}

func TestAddReactionUnresolvedSystem(t *testing.T) {
	c := New()
	c.AddSpecies("A")
	_, err := c.AddReaction("cyt", map[string]int{"A": 1}, nil, 1.0)
	if errs.KindOf(err) != errs.UnresolvedSystem {
		t.Fatalf("got %v, want UnresolvedSystem", err)
	}
}

func TestAddReactionNegativeStoich(t *testing.T) {
	c := New()
	c.AddVolumeSystem("cyt")
	_, err := c.AddReaction("cyt", map[string]int{"A": -1}, nil, 1.0)
	if errs.KindOf(err) != errs.InvalidStoichiometry {
		t.Fatalf("got %v, want InvalidStoichiometry", err)
	}
}

func TestReactionOrderAndUpdate(t *testing.T) {
	c := New()
	c.AddVolumeSystem("cyt")
	r, err := c.AddReaction("cyt",
		map[string]int{"A": 2, "B": 1},
		map[string]int{"C": 1},
		3e5)
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Order(); got != 3 {
		t.Errorf("Order() = %d, want 3", got)
	}
	if got := r.Update("A"); got != -2 {
		t.Errorf("Update(A) = %d, want -2", got)
	}
	if got := r.Update("C"); got != 1 {
		t.Errorf("Update(C) = %d, want 1", got)
	}
}

func TestSurfaceReactionClassification(t *testing.T) {
	c := New()
	c.AddSurfaceSystem("memb")
	ssOnly, err := c.AddSurfaceReaction("memb",
		map[string]int{"R": 1}, map[string]int{"RCa": 1},
		nil, nil, nil, nil, 1.0, true)
	if err != nil {
		t.Fatal(err)
	}
	if ssOnly.Kind() != SurfaceSurface {
		t.Errorf("expected SurfaceSurface classification")
	}

	sv, err := c.AddSurfaceReaction("memb",
		map[string]int{"R": 1}, nil,
		map[string]int{"Ca": 1}, nil,
		nil, map[string]int{"RCa": 1}, 8.889e6, true)
	if err != nil {
		t.Fatal(err)
	}
	if sv.Kind() != SurfaceVolume {
		t.Errorf("expected SurfaceVolume classification")
	}
}

func TestSurfaceReactionStraddlesBothVolumes(t *testing.T) {
	c := New()
	c.AddSurfaceSystem("memb")
	_, err := c.AddSurfaceReaction("memb",
		nil, nil,
		map[string]int{"A": 1}, nil,
		map[string]int{"B": 1}, nil,
		1.0, true)
	if errs.KindOf(err) != errs.InvalidReaction {
		t.Fatalf("got %v, want InvalidReaction", err)
	}
}

func TestAddVolumeDiffusionUnresolvedSystem(t *testing.T) {
	c := New()
	_, err := c.AddVolumeDiffusion("cyt", "X", 1e-10)
	if errs.KindOf(err) != errs.UnresolvedSystem {
		t.Fatalf("got %v, want UnresolvedSystem", err)
	}
}

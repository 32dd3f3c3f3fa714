/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

// Package procgraph implements the process graph builder (component C4)
// and the rate evaluator (component C5): it walks the resolved state
// definition and mesh to materialise, for every state-vector slot, the
// list of processes that contribute to its derivative, then evaluates
// dy/dt by iterating that flattened structure.
package procgraph

// Kind classifies what rule a Process originates from.
type Kind byte

const (
	Reac Kind = iota
	SReac
	VDiff
	SDiff
)

// ProcessID identifies the rule and mesh element a process originates
// from. It is stable across a single Build call and is the key mutation
// operations (SetTetReacK, SetTriSReacK) use to find every process to
// rebind.
//
// Per spec.md §9's Design Notes, diffusion processes share a single ID
// across all four (three, for surfaces) directions of the donor
// element — a known limitation of the original design, not a bug: it
// means diffusion conductances cannot be overridden per direction.
type ProcessID struct {
	Kind Kind
	Rule int // global reaction/sreac/diffusion index
	Elem int // originating tet or tri global index
}

// Descriptor is one (order, state-index) reactant term: the process's
// rate is multiplied by y[Slot]^Order.
type Descriptor struct {
	Order int
	Slot  int
}

// Process is one contribution to a single state-vector slot's
// derivative: coefficient * update * product(y[d.Slot]^d.Order), tagged
// with the ID of the rule and element it originates from.
type Process struct {
	Coeff   float64
	Upd     int
	DescOff int
	DescLen int
	ID      ProcessID
}

// Graph is the flattened process graph: for slot i, the processes in
// SlotOff[i]:SlotOff[i+1] of Processes contribute to dy[i]/dt. This is
// the structure spec.md §9's Design Notes calls for: "one big arena of
// descriptors plus offset/length pairs per process, and one big arena
// of processes plus offset/length pairs per state slot."
type Graph struct {
	Len int

	SlotOff     []int // length Len+1
	Processes   []Process
	Descriptors []Descriptor

	// ByID maps a ProcessID to every index into Processes that
	// originated from it, so rate-constant mutations don't need a
	// linear scan (spec.md §9).
	ByID map[ProcessID][]int
}

// Slot returns the processes contributing to dy[i]/dt.
func (g *Graph) Slot(i int) []Process {
	return g.Processes[g.SlotOff[i]:g.SlotOff[i+1]]
}

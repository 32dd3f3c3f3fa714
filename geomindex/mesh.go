/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

// Package geomindex implements the geometry index (component C2): the
// tetrahedra and triangles of a simulation mesh, their per-element
// metric data (volumes/areas, face/edge geometry, inter-centroid
// distances, neighbour indices), grouped into compartments and patches.
//
// A missing neighbour, or a patch with no outer compartment, is
// represented by the index -1, per the arena-of-indices design in
// spec.md §9 — never by a nil pointer or separate ownership graph.
package geomindex

import "tetode/errs"

// Absent marks a missing neighbour, face-adjacent triangle, or outer
// compartment/tetrahedron.
const Absent = -1

// Tet is a tetrahedral volume element. Neighbor[i] refers to the
// tetrahedron across face i, or Absent. FaceTri lists the adjacent
// surface triangles in the order AddTri recorded them, not by face;
// unused slots are Absent.
type Tet struct {
	Index int
	Comp  int // index into Mesh.Comps

	Vol       float64
	FaceArea  [4]float64
	FaceDist  [4]float64 // inter-centroid distance across each face
	Neighbor  [4]int     // neighbouring tetrahedron index, or Absent
	FaceTri   [4]int     // adjacent surface triangle index, or Absent
	nFaceTris int
}

// addFaceTri records that triangle triIdx borders this tetrahedron,
// filling the next free face-triangle slot. It is called from AddTri as
// topology is discovered, never by user code directly.
func (t *Tet) addFaceTri(triIdx int) {
	if t.nFaceTris >= len(t.FaceTri) {
		return
	}
	t.FaceTri[t.nFaceTris] = triIdx
	t.nFaceTris++
}

// Tri is a triangular surface element. Neighbor[i] refers to the
// neighbouring triangle across edge i within the same patch, or Absent
// if that edge lies on the patch boundary.
type Tri struct {
	Index int
	Patch int // index into Mesh.Patch

	Area     float64
	EdgeLen  [3]float64
	EdgeDist [3]float64 // inter-centroid distance across each edge
	Neighbor [3]int

	Inner int // inner tetrahedron index (required)
	Outer int // outer tetrahedron index, or Absent
}

// Compartment is a set of tetrahedra sharing a volume system.
type Compartment struct {
	Name   string
	Index  int
	System string // name of the attached volume system; resolved at setup

	Tets []int // global tet indices, in local order
	g2l  map[int]int
}

// LocalIndex returns the compartment-local index of global tet index
// tetIdx, or (0, false) if that tet is not part of this compartment.
func (c *Compartment) LocalIndex(tetIdx int) (int, bool) {
	i, ok := c.g2l[tetIdx]
	return i, ok
}

// Patch is a set of triangles sharing a surface system, with a required
// inner compartment and an optional outer compartment.
type Patch struct {
	Name   string
	Index  int
	System string // name of the attached surface system; resolved at setup

	InnerComp int
	OuterComp int // Absent if the patch borders only one compartment

	Tris []int // global tri indices, in local order
	g2l  map[int]int
}

// LocalIndex returns the patch-local index of global tri index triIdx.
func (p *Patch) LocalIndex(triIdx int) (int, bool) {
	i, ok := p.g2l[triIdx]
	return i, ok
}

// Mesh is the full geometry index: an arena of tetrahedra and triangles
// grouped into compartments and patches.
type Mesh struct {
	Tets  []*Tet
	Tris  []*Tri
	Comps []*Compartment
	Patch []*Patch

	compIdx  map[string]int
	patchIdx map[string]int
}

// New returns an empty Mesh.
func New() *Mesh {
	return &Mesh{
		compIdx:  make(map[string]int),
		patchIdx: make(map[string]int),
	}
}

// AddCompartment registers a new compartment attaching the named volume
// system (resolution of that name against a model catalogue happens at
// setup time in package statedef).
func (m *Mesh) AddCompartment(name, system string) (*Compartment, error) {
	const op = "geomindex.Mesh.AddCompartment"
	if _, ok := m.compIdx[name]; ok {
		return nil, errs.New(op, errs.NameConflict, "compartment %q already registered", name)
	}
	c := &Compartment{Name: name, Index: len(m.Comps), System: system, g2l: make(map[int]int)}
	m.Comps = append(m.Comps, c)
	m.compIdx[name] = c.Index
	return c, nil
}

// AddPatch registers a new patch attaching the named surface system,
// with a required inner compartment index and an optional (Absent if
// none) outer compartment index.
func (m *Mesh) AddPatch(name, system string, innerComp, outerComp int) (*Patch, error) {
	const op = "geomindex.Mesh.AddPatch"
	if _, ok := m.patchIdx[name]; ok {
		return nil, errs.New(op, errs.NameConflict, "patch %q already registered", name)
	}
	if innerComp < 0 || innerComp >= len(m.Comps) {
		return nil, errs.New(op, errs.ArgumentOutOfRange, "invalid inner compartment index %d", innerComp)
	}
	if outerComp != Absent && (outerComp < 0 || outerComp >= len(m.Comps)) {
		return nil, errs.New(op, errs.ArgumentOutOfRange, "invalid outer compartment index %d", outerComp)
	}
	p := &Patch{
		Name: name, Index: len(m.Patch), System: system,
		InnerComp: innerComp, OuterComp: outerComp,
		g2l: make(map[int]int),
	}
	m.Patch = append(m.Patch, p)
	m.patchIdx[name] = p.Index
	return p, nil
}

// AddTet appends a tetrahedron to compartment compIdx and returns its
// global index. neighbor[i] must be Absent or a tet already added, or a
// tet added later in the same compartment (back-references are resolved
// by index, not by build order).
func (m *Mesh) AddTet(compIdx int, vol float64, faceArea, faceDist [4]float64, neighbor [4]int) (int, error) {
	const op = "geomindex.Mesh.AddTet"
	if compIdx < 0 || compIdx >= len(m.Comps) {
		return 0, errs.New(op, errs.ArgumentOutOfRange, "invalid compartment index %d", compIdx)
	}
	t := &Tet{
		Index: len(m.Tets), Comp: compIdx,
		Vol: vol, FaceArea: faceArea, FaceDist: faceDist, Neighbor: neighbor,
	}
	for i := range t.FaceTri {
		t.FaceTri[i] = Absent
	}
	m.Tets = append(m.Tets, t)
	c := m.Comps[compIdx]
	local := len(c.Tets)
	c.Tets = append(c.Tets, t.Index)
	c.g2l[t.Index] = local
	return t.Index, nil
}

// AddTri appends a triangle to patch patchIdx and returns its global
// index. inner is required; outer is Absent if the triangle borders
// only one compartment. Adding the triangle updates the FaceTri
// adjacency of its inner/outer tetrahedra (topology is set here, not by
// the caller).
func (m *Mesh) AddTri(patchIdx int, area float64, edgeLen, edgeDist [3]float64, neighbor [3]int, inner, outer int) (int, error) {
	const op = "geomindex.Mesh.AddTri"
	if patchIdx < 0 || patchIdx >= len(m.Patch) {
		return 0, errs.New(op, errs.ArgumentOutOfRange, "invalid patch index %d", patchIdx)
	}
	if inner < 0 || inner >= len(m.Tets) {
		return 0, errs.New(op, errs.ArgumentOutOfRange, "invalid inner tet index %d", inner)
	}
	if outer != Absent && (outer < 0 || outer >= len(m.Tets)) {
		return 0, errs.New(op, errs.ArgumentOutOfRange, "invalid outer tet index %d", outer)
	}
	tr := &Tri{
		Index: len(m.Tris), Patch: patchIdx,
		Area: area, EdgeLen: edgeLen, EdgeDist: edgeDist, Neighbor: neighbor,
		Inner: inner, Outer: outer,
	}
	m.Tris = append(m.Tris, tr)
	p := m.Patch[patchIdx]
	local := len(p.Tris)
	p.Tris = append(p.Tris, tr.Index)
	p.g2l[tr.Index] = local

	m.Tets[inner].addFaceTri(tr.Index)
	if outer != Absent {
		m.Tets[outer].addFaceTri(tr.Index)
	}
	return tr.Index, nil
}

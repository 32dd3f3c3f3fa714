/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

// Package checkpoint implements the engine's binary checkpoint file
// format: the exact little-endian, unframed layout of spec.md §6.1,
// plus an additional NetCDF-backed archival format for offline
// analysis of a full run rather than just its last state.
package checkpoint

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"reflect"

	"tetode/errs"
	"tetode/geomindex"
	"tetode/model"
	"tetode/statedef"
)

// Signature is the "state-def blob" of spec.md §6.1: a fingerprint of
// the model catalogue, mesh and resolved layout, opaque to the
// simulation core, whose only job is to let Read report
// CheckpointMismatch when a restore targets an incompatible
// configuration rather than silently reinterpreting a state vector
// against the wrong layout.
type Signature struct {
	Species     []string
	VolSystems  []string
	SurfSystems []string

	NReactions  int
	NSReactions int
	NVolDiffs   int
	NSurfDiffs  int

	CompNames    []string
	CompSystems  []string
	NTetsPerComp []int
	NSpeciesComp []int
	CompOffset   []int

	PatchNames    []string
	PatchSystems  []string
	NTrisPerPatch []int
	NSpeciesPatch []int
	PatchOffset   []int

	Len int
}

// NewSignature builds the Signature for the given catalogue, mesh and
// resolved state definition.
func NewSignature(cat *model.Catalogue, mesh *geomindex.Mesh, def *statedef.Def) Signature {
	sig := Signature{
		NReactions:  len(cat.Reactions),
		NSReactions: len(cat.SReactions),
		NVolDiffs:   len(cat.VolDiffs),
		NSurfDiffs:  len(cat.SurfDiffs),
		Len:         def.Len,
	}
	for _, s := range cat.Species {
		sig.Species = append(sig.Species, s.Name)
	}
	for _, vs := range cat.VolSystems {
		sig.VolSystems = append(sig.VolSystems, vs.Name)
	}
	for _, ss := range cat.SurfSystems {
		sig.SurfSystems = append(sig.SurfSystems, ss.Name)
	}
	for ci, c := range mesh.Comps {
		sig.CompNames = append(sig.CompNames, c.Name)
		sig.CompSystems = append(sig.CompSystems, c.System)
		sig.NTetsPerComp = append(sig.NTetsPerComp, len(c.Tets))
		sig.NSpeciesComp = append(sig.NSpeciesComp, def.NSpeciesComp(ci))
		sig.CompOffset = append(sig.CompOffset, def.CompOffset[ci])
	}
	for pi, p := range mesh.Patch {
		sig.PatchNames = append(sig.PatchNames, p.Name)
		sig.PatchSystems = append(sig.PatchSystems, p.System)
		sig.NTrisPerPatch = append(sig.NTrisPerPatch, len(p.Tris))
		sig.NSpeciesPatch = append(sig.NSpeciesPatch, def.NSpeciesPatch(pi))
		sig.PatchOffset = append(sig.PatchOffset, def.PatchOffset[pi])
	}
	return sig
}

// Snapshot is the full logical content of a checkpoint file.
type Snapshot struct {
	Sig      Signature
	TNow     float64
	RTol     float64
	MaxSteps uint32
	AbsTol   []float64
	Y        []float64
}

// Write encodes snap to w in the exact field order of spec.md §6.1:
// the state-def blob, then t_now, rtol, max_steps, abstol, y.
func Write(w io.Writer, snap Snapshot) error {
	const op = "checkpoint.Write"
	if len(snap.AbsTol) != snap.Sig.Len || len(snap.Y) != snap.Sig.Len {
		return errs.New(op, errs.ArgumentOutOfRange, "abstol/y length must equal the signature's state length %d", snap.Sig.Len)
	}

	if err := gob.NewEncoder(w).Encode(snap.Sig); err != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, err)
	}

	scalars := []interface{}{snap.TNow, snap.RTol, snap.MaxSteps}
	for _, v := range scalars {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return errs.Wrap(op, errs.CheckpointMismatch, err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, snap.AbsTol); err != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	if err := binary.Write(w, binary.LittleEndian, snap.Y); err != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	return nil
}

// Read decodes a checkpoint previously written by Write. It does not
// itself compare the signature against a live configuration — that is
// Match's job — so a Read of a well-formed but foreign checkpoint file
// always succeeds; callers must call Match before trusting the result.
func Read(r io.Reader) (Snapshot, error) {
	const op = "checkpoint.Read"
	// gob reads ahead from a reader that is not an io.ByteReader, so the
	// reader is buffered once and every field below is read through it.
	if _, ok := r.(io.ByteReader); !ok {
		r = bufio.NewReader(r)
	}
	var snap Snapshot
	if err := gob.NewDecoder(r).Decode(&snap.Sig); err != nil {
		return Snapshot{}, errs.Wrap(op, errs.CheckpointMismatch, err)
	}

	if err := binary.Read(r, binary.LittleEndian, &snap.TNow); err != nil {
		return Snapshot{}, errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &snap.RTol); err != nil {
		return Snapshot{}, errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &snap.MaxSteps); err != nil {
		return Snapshot{}, errs.Wrap(op, errs.CheckpointMismatch, err)
	}

	snap.AbsTol = make([]float64, snap.Sig.Len)
	if err := binary.Read(r, binary.LittleEndian, snap.AbsTol); err != nil {
		return Snapshot{}, errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	snap.Y = make([]float64, snap.Sig.Len)
	if err := binary.Read(r, binary.LittleEndian, snap.Y); err != nil {
		return Snapshot{}, errs.Wrap(op, errs.CheckpointMismatch, err)
	}
	return snap, nil
}

// Match reports whether a restored signature identity-matches the
// signature of the live configuration being restored into, per
// spec.md §6.1's "Restore fails with CheckpointMismatch if the
// state-def blob does not identity-match the current configuration."
func Match(restored, live Signature) bool {
	return reflect.DeepEqual(restored, live)
}

// Encode gob-encodes sig on its own, for callers (such as the NetCDF
// archival path) that want the signature bytes without the rest of a
// Snapshot.
func Encode(sig Signature) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(sig); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

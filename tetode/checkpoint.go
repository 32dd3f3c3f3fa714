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
	"os"

	"tetode/checkpoint"
	"tetode/errs"
)

// Checkpoint writes the engine's full restorable state to path, in the
// binary layout of spec.md §6.1.
func (e *Engine) Checkpoint(path string) error {
	const op = "tetode.Engine.Checkpoint"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	f, ferr := os.Create(path)
	if ferr != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, ferr)
	}
	defer f.Close()

	snap := checkpoint.Snapshot{
		Sig:      checkpoint.NewSignature(e.cat, e.mesh, e.def),
		TNow:     e.tNow,
		RTol:     e.rtol,
		MaxSteps: uint32(e.maxSteps),
		AbsTol:   e.abstol,
		Y:        e.y,
	}
	return checkpoint.Write(f, snap)
}

// Restore loads a checkpoint written by Checkpoint into an already
// Setup engine, failing with CheckpointMismatch if the file's state-def
// signature does not identity-match the engine's current configuration.
// A successful restore always leaves a reinit pending, since the
// integrator's internal multi-step history cannot be recovered from a
// snapshot of y alone.
func (e *Engine) Restore(path string) error {
	const op = "tetode.Engine.Restore"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	f, ferr := os.Open(path)
	if ferr != nil {
		return errs.Wrap(op, errs.CheckpointMismatch, ferr)
	}
	defer f.Close()

	snap, err := checkpoint.Read(f)
	if err != nil {
		return err
	}
	live := checkpoint.NewSignature(e.cat, e.mesh, e.def)
	if !checkpoint.Match(snap.Sig, live) {
		return errs.New(op, errs.CheckpointMismatch, "checkpoint state-def does not match the current configuration")
	}

	e.tNow = snap.TNow
	e.rtol = snap.RTol
	e.maxSteps = int(snap.MaxSteps)
	e.abstol = snap.AbsTol
	e.y = snap.Y
	e.markDirty()
	return nil
}

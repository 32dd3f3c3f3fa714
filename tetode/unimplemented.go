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

import "tetode/errs"

// SetTetClamped is part of the Engine API surface spec.md §7 names as
// explicitly out of scope for this engine ("species clamping"); it
// always fails with NotImplemented.
func (e *Engine) SetTetClamped(tetIdx int, species string, clamped bool) error {
	return errs.New("tetode.Engine.SetTetClamped", errs.NotImplemented, "concentration clamping is not supported")
}

// SetTriClamped is the surface analogue of SetTetClamped; always fails
// with NotImplemented.
func (e *Engine) SetTriClamped(triIdx int, species string, clamped bool) error {
	return errs.New("tetode.Engine.SetTriClamped", errs.NotImplemented, "concentration clamping is not supported")
}

// SetReacActive is the other example spec.md §7 names ("per-element
// reaction de-activation"); always fails with NotImplemented.
func (e *Engine) SetReacActive(tetIdx, reacIdx int, active bool) error {
	return errs.New("tetode.Engine.SetReacActive", errs.NotImplemented, "per-element reaction de-activation is not supported")
}

// SetSReacActive is the surface analogue of SetReacActive; always fails
// with NotImplemented.
func (e *Engine) SetSReacActive(triIdx, sreacIdx int, active bool) error {
	return errs.New("tetode.Engine.SetSReacActive", errs.NotImplemented, "per-element surface reaction de-activation is not supported")
}

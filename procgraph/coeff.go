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
	"math"

	"tetode/model"
)

// Ccst3D converts a volumetric mass-action rate constant to a process
// coefficient given the element volume, per spec.md §4.5:
//
//	v_scale = 1000 * vol * Avogadro   (litres, since kcst is in litre-basis units)
//	c       = kcst * v_scale^-(order-1)
//
// which for a zero-order reaction (order 0) reduces to c = kcst * v_scale.
// Exported so package tetode can recompute a process's coefficient when
// SetTetReacK/SetTriSReacK rebind a rate constant without rebuilding the
// process graph.
func Ccst3D(kcst, vol float64, order int) float64 {
	vScale := model.LitresPerCubicMetre * vol * model.Avogadro
	return kcst * math.Pow(vScale, float64(1-order))
}

// Ccst2D is the surface-basis analogue of Ccst3D: v_scale is the
// element's area (no litres conversion — surface rate constants are
// already area-basis).
func Ccst2D(kcst, area float64, order int) float64 {
	vScale := area * model.Avogadro
	return kcst * math.Pow(vScale, float64(1-order))
}

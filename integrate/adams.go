/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

package integrate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"tetode/errs"
)

const (
	defaultInitialStep = 1e-6
	minStep            = 1e-15
	maxCorrectorIters  = 8
	correctorTol       = 1e-10
)

// Adams is a fixed-order Adams-Moulton (trapezoidal) predictor-corrector
// with functional (fixed-point) rather than Newton iteration on the
// corrector, and step-doubling error control against the bound
// tolerances. It is the serial, non-stiff, dense reference integrator
// spec.md §6 calls for.
//
// State is held as gonum dense vectors rather than plain []float64 so
// the corrector's residual and step-doubling comparison can reuse
// gonum's vector arithmetic instead of hand-rolled loops.
type Adams struct {
	n int
	f RHS

	t float64
	y *mat.VecDense

	rtol float64
	atol []float64

	maxSteps int
	steps    int

	h float64

	initialized bool
}

// NewAdams returns an Adams integrator for a system of nEq equations,
// with default tolerances (rtol=1e-6, atol=1e-9 per equation) and a
// default step budget of 10000, matching spec.md §5's default.
func NewAdams(nEq int) *Adams {
	atol := make([]float64, nEq)
	for i := range atol {
		atol[i] = 1e-9
	}
	return &Adams{
		n:        nEq,
		rtol:     1e-6,
		atol:     atol,
		maxSteps: 10000,
		h:        defaultInitialStep,
	}
}

func (a *Adams) Init(f RHS, t0 float64, y0 []float64) error {
	const op = "integrate.Adams.Init"
	if len(y0) != a.n {
		return errs.New(op, errs.ArgumentOutOfRange, "y0 has length %d, want %d", len(y0), a.n)
	}
	a.f = f
	a.t = t0
	a.y = mat.NewVecDense(a.n, append([]float64(nil), y0...))
	a.steps = 0
	a.initialized = true
	return nil
}

func (a *Adams) SetTolerances(rtol float64, atol []float64) error {
	const op = "integrate.Adams.SetTolerances"
	if rtol < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "rtol must be non-negative, got %g", rtol)
	}
	if len(atol) != a.n {
		return errs.New(op, errs.ArgumentOutOfRange, "atol has length %d, want %d", len(atol), a.n)
	}
	for _, v := range atol {
		if v < 0 {
			return errs.New(op, errs.ArgumentOutOfRange, "atol entries must be non-negative, got %g", v)
		}
	}
	a.rtol = rtol
	a.atol = append([]float64(nil), atol...)
	return nil
}

func (a *Adams) SetMaxSteps(n int) {
	if n > 0 {
		a.maxSteps = n
	}
}

func (a *Adams) Reinit(t float64, y []float64) error {
	const op = "integrate.Adams.Reinit"
	if !a.initialized {
		return errs.New(op, errs.NotDefined, "Reinit called before Init")
	}
	if len(y) != a.n {
		return errs.New(op, errs.ArgumentOutOfRange, "y has length %d, want %d", len(y), a.n)
	}
	a.t = t
	a.y = mat.NewVecDense(a.n, append([]float64(nil), y...))
	a.steps = 0
	return nil
}

func (a *Adams) Y() []float64 {
	out := make([]float64, a.n)
	for i := 0; i < a.n; i++ {
		out[i] = a.y.AtVec(i)
	}
	return out
}

// Advance integrates forward from the current time to tEnd. It fails
// with TimeRegression if tEnd is before the current time, and with
// IntegrationFailure if the step budget is exhausted first.
func (a *Adams) Advance(tEnd float64) (float64, error) {
	const op = "integrate.Adams.Advance"
	if !a.initialized {
		return a.t, errs.New(op, errs.NotDefined, "Advance called before Init")
	}
	if tEnd < a.t {
		return a.t, errs.New(op, errs.TimeRegression, "tEnd %g is before current time %g", tEnd, a.t)
	}

	a.steps = 0
	dy := make([]float64, a.n)
	for a.t < tEnd {
		if a.steps >= a.maxSteps {
			return a.t, errs.New(op, errs.IntegrationFailure, "exceeded %d steps before reaching t=%g (reached t=%g)", a.maxSteps, tEnd, a.t)
		}
		h := a.h
		if a.t+h > tEnd {
			h = tEnd - a.t
		}

		yFull, err := a.trapezoidStep(a.t, a.y, h, dy)
		if err != nil {
			return a.t, err
		}

		// Step-doubling error estimate: compare one step of h against
		// two steps of h/2; halve h and retry on excess error, and grow
		// it by a factor of 1.5 after every accepted step that was not
		// shortened to land on tEnd.
		half := h / 2
		yHalf1, err := a.trapezoidStep(a.t, a.y, half, dy)
		if err != nil {
			return a.t, err
		}
		yHalf2, err := a.trapezoidStep(a.t+half, yHalf1, half, dy)
		if err != nil {
			return a.t, err
		}

		if a.errorTooLarge(yFull, yHalf2) {
			a.h = math.Max(h/2, minStep)
			if a.h <= minStep && h <= minStep {
				return a.t, errs.New(op, errs.IntegrationFailure, "step size collapsed to zero at t=%g", a.t)
			}
			continue
		}

		a.t += h
		a.y = yHalf2
		a.steps++
		if h == a.h {
			a.h = h * 1.5
		}
	}
	return a.t, nil
}

// trapezoidStep advances y0 by h using the implicit trapezoidal
// (one-step Adams-Moulton) formula, solved by functional iteration:
//
//	y_{k+1} = y0 + h/2 * (f(t,y0) + f(t+h, y_k))
func (a *Adams) trapezoidStep(t float64, y0 *mat.VecDense, h float64, scratch []float64) (*mat.VecDense, error) {
	f0 := make([]float64, a.n)
	a.f(t, y0.RawVector().Data, f0)

	yk := mat.VecDenseCopyOf(y0)
	fk := scratch
	for iter := 0; iter < maxCorrectorIters; iter++ {
		a.f(t+h, yk.RawVector().Data, fk)

		next := mat.NewVecDense(a.n, nil)
		for i := 0; i < a.n; i++ {
			next.SetVec(i, y0.AtVec(i)+h/2*(f0[i]+fk[i]))
		}

		if a.converged(yk, next) {
			return next, nil
		}
		yk = next
	}
	return yk, nil
}

func (a *Adams) converged(prev, next *mat.VecDense) bool {
	for i := 0; i < a.n; i++ {
		if math.Abs(next.AtVec(i)-prev.AtVec(i)) > correctorTol {
			return false
		}
	}
	return true
}

func (a *Adams) errorTooLarge(coarse, fine *mat.VecDense) bool {
	for i := 0; i < a.n; i++ {
		tol := a.atol[i] + a.rtol*math.Abs(fine.AtVec(i))
		if math.Abs(coarse.AtVec(i)-fine.AtVec(i)) > tol {
			return true
		}
	}
	return false
}

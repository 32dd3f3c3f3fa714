/*
Copyright © 2026 the tetode authors.
This file is part of tetode.

tetode is free software: you can redistribute it and/or modify it
under the terms of the MIT license: a short, permissive license
granting free use, copying, modification, and distribution, provided
this copyright notice is preserved. tetode is distributed WITHOUT ANY
WARRANTY, express or implied.
*/

// Package tetode implements the integration driver (component C6): the
// engine that owns the global state vector, drives the process graph's
// rate evaluator through an abstract integrate.Integrator, and exposes
// the query/mutation/checkpoint surface of spec.md §6.
package tetode

import (
	"fmt"
	"io"
	"time"

	"tetode/errs"
	"tetode/geomindex"
	"tetode/integrate"
	"tetode/model"
	"tetode/procgraph"
	"tetode/statedef"
)

// State is the engine's setup/run life cycle, per spec.md §4.7:
// Unconfigured -> Configured -> Running -> AwaitingReinit -> Running.
type State int

const (
	// Unconfigured is the zero value: no catalogue or mesh has been
	// resolved yet, and every operation but Setup fails.
	Unconfigured State = iota
	// Configured means Setup succeeded but Run has never been called.
	Configured
	// Running means the integrator has advanced at least once since
	// the last reinit and is idle, ready for the next Run/Advance —
	// the engine is single-threaded, so "Running" names a resting
	// state, not concurrent execution (spec.md §5).
	Running
	// AwaitingReinit means a mutation invalidated the integrator's
	// internal state since the last Run; the next Run reinitialises
	// before stepping.
	AwaitingReinit
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "Unconfigured"
	case Configured:
		return "Configured"
	case Running:
		return "Running"
	case AwaitingReinit:
		return "AwaitingReinit"
	default:
		return "Unknown"
	}
}

const defaultMaxSteps = 10000
const defaultTol = 1e-3

// Engine is the C6 integration driver. The zero value is Unconfigured;
// call Setup before anything else.
type Engine struct {
	state State

	cat  *model.Catalogue
	mesh *geomindex.Mesh
	def  *statedef.Def
	g    *procgraph.Graph

	integ integrate.Integrator

	y      []float64
	tNow   float64
	rtol   float64
	abstol []float64

	maxSteps int

	pendingReinit bool
	integInited   bool

	// log receives one line per Run/Advance call once Setup has
	// completed; it defaults to a no-op. Set it with WriteLog.
	log func(format string, args ...interface{})
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WriteLog makes the Engine write one progress line to w per Run call,
// in the style of inmap.Log.
func WriteLog(w io.Writer) Option {
	startTime := time.Now()
	stepTime := time.Now()
	iteration := 0
	return func(e *Engine) {
		e.log = func(format string, args ...interface{}) {
			iteration++
			fmt.Fprintf(w, "run %-4d  walltime=%6.3gs  Δwalltime=%4.2gs  ",
				iteration, time.Since(startTime).Seconds(), time.Since(stepTime).Seconds())
			fmt.Fprintf(w, format+"\n", args...)
			stepTime = time.Now()
		}
	}
}

// New returns an Unconfigured Engine with the given options applied.
func New(opts ...Option) *Engine {
	e := &Engine{maxSteps: defaultMaxSteps, log: func(string, ...interface{}) {}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup resolves cat against mesh, builds the process graph, and
// allocates the state vector and default tolerances, transitioning
// Unconfigured -> Configured. On any failure the Engine is left
// Unconfigured (spec.md §7: "Setup errors abort setup").
func (e *Engine) Setup(cat *model.Catalogue, mesh *geomindex.Mesh) error {
	def, err := statedef.Resolve(cat, mesh)
	if err != nil {
		return err
	}

	if e.log == nil {
		e.log = func(string, ...interface{}) {}
	}
	e.cat = cat
	e.mesh = mesh
	e.def = def
	e.g = procgraph.Build(cat, mesh, def)

	e.y = make([]float64, def.Len)
	e.abstol = make([]float64, def.Len)
	for i := range e.abstol {
		e.abstol[i] = defaultTol
	}
	e.rtol = defaultTol
	e.tNow = 0
	e.maxSteps = defaultMaxSteps

	e.integ = integrate.NewAdams(def.Len)
	e.integInited = false
	e.pendingReinit = true
	e.state = Configured
	return nil
}

// requireConfigured fails with ArgumentOutOfRange if Setup has not
// completed; there is no dedicated error kind in spec.md §7 for an
// unconfigured engine, and an operation on an object that does not yet
// exist is closest in spirit to an out-of-range argument.
func (e *Engine) requireConfigured(op string) error {
	if e.state == Unconfigured {
		return errs.New(op, errs.ArgumentOutOfRange, "engine is Unconfigured; call Setup first")
	}
	return nil
}

// markDirty flags the integrator's internal state as stale, per
// spec.md §4.7: "user sets any species count, rate constant, or any
// other structural mutation: pending_reinit = true". Called by every
// mutating operation in mutate.go.
func (e *Engine) markDirty() {
	e.pendingReinit = true
	if e.state == Running {
		e.state = AwaitingReinit
	}
}

// Time returns t_now, the last committed integration time.
func (e *Engine) Time() float64 { return e.tNow }

// Len returns the size of the global state vector, i.e. len(y). Zero
// until Setup has run.
func (e *Engine) Len() int {
	if e.def == nil {
		return 0
	}
	return e.def.Len
}

// rhs evaluates the process graph's dy/dt into dy.
func (e *Engine) rhs(t float64, y, dy []float64) {
	e.g.Eval(y, dy)
}

// Run advances the engine to tEnd, reinitialising the integrator first
// if a mutation is pending, per spec.md §4.7.
func (e *Engine) Run(tEnd float64) error {
	const op = "tetode.Engine.Run"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if tEnd < e.tNow {
		return errs.New(op, errs.TimeRegression, "run(%g) is before t_now=%g", tEnd, e.tNow)
	}
	if tEnd == e.tNow {
		return nil
	}

	if e.pendingReinit {
		var err error
		if !e.integInited {
			err = e.integ.Init(e.rhs, e.tNow, e.y)
			e.integInited = true
		} else {
			err = e.integ.Reinit(e.tNow, e.y)
		}
		if err != nil {
			return err
		}
		if err := e.integ.SetTolerances(e.rtol, e.abstol); err != nil {
			return err
		}
		e.integ.SetMaxSteps(e.maxSteps)
		e.pendingReinit = false
	}

	tActual, err := e.integ.Advance(tEnd)
	if err != nil {
		// spec.md §7: IntegrationFailure leaves t_now and y at the
		// last successfully committed step.
		return err
	}
	e.tNow = tActual
	e.y = e.integ.Y()
	e.state = Running
	e.log("advanced to t=%g", e.tNow)
	return nil
}

// Advance is equivalent to Run(Time() + dt); dt must be non-negative.
func (e *Engine) Advance(dt float64) error {
	const op = "tetode.Engine.Advance"
	if dt < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "dt must be non-negative, got %g", dt)
	}
	return e.Run(e.tNow + dt)
}

// SetTolerances sets the relative and per-equation absolute tolerance,
// per spec.md §4.7: only permitted in Configured or while a reinit is
// already pending (AwaitingReinit), never mid-Running with no pending
// mutation.
func (e *Engine) SetTolerances(rtol float64, atol []float64) error {
	const op = "tetode.Engine.SetTolerances"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if e.state == Running && !e.pendingReinit {
		return errs.New(op, errs.ArgumentOutOfRange, "tolerances can only be set in Configured or after a pending reinit")
	}
	if rtol < 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "rtol must be non-negative, got %g", rtol)
	}
	if len(atol) != e.def.Len {
		return errs.New(op, errs.ArgumentOutOfRange, "atol has length %d, want %d", len(atol), e.def.Len)
	}
	for _, v := range atol {
		if v < 0 {
			return errs.New(op, errs.ArgumentOutOfRange, "atol entries must be non-negative, got %g", v)
		}
	}
	e.rtol = rtol
	e.abstol = append([]float64(nil), atol...)
	e.pendingReinit = true
	return nil
}

// SetMaxSteps bounds the number of internal steps a single Run call may
// take before it fails with IntegrationFailure.
func (e *Engine) SetMaxSteps(n int) error {
	const op = "tetode.Engine.SetMaxSteps"
	if err := e.requireConfigured(op); err != nil {
		return err
	}
	if n <= 0 {
		return errs.New(op, errs.ArgumentOutOfRange, "max steps must be positive, got %d", n)
	}
	e.maxSteps = n
	if e.integInited {
		e.integ.SetMaxSteps(n)
	}
	return nil
}

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

import "math"

// Eval computes dy/dt into dy given the current state y, per spec.md
// §4.6: for every slot, sum over its processes the process's rate
// (coefficient times the product of its reactant descriptors raised to
// their stoichiometric order) times its signed update. Eval performs
// no allocation and has no side effects beyond writing dy.
func (g *Graph) Eval(y, dy []float64) {
	for slot := 0; slot < g.Len; slot++ {
		var sum float64
		for _, p := range g.Slot(slot) {
			sum += float64(p.Upd) * p.rate(g, y)
		}
		dy[slot] = sum
	}
}

// rate returns the process's instantaneous rate: its coefficient times
// the product, over its reactant descriptors, of y[slot]^order.
func (p *Process) rate(g *Graph, y []float64) float64 {
	rate := p.Coeff
	for _, d := range g.Descriptors[p.DescOff : p.DescOff+p.DescLen] {
		switch d.Order {
		case 1:
			rate *= y[d.Slot]
		case 2:
			v := y[d.Slot]
			rate *= v * v
		default:
			rate *= math.Pow(y[d.Slot], float64(d.Order))
		}
	}
	return rate
}

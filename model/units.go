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

// Physical constants shared by every layer that needs to convert
// between molecule counts, concentrations, and rate constants (§4.5,
// §6.4). Kept here as the single source of truth so procgraph's
// coefficient scaling and tetode's concentration queries never drift
// apart.
const (
	// Avogadro is Avogadro's constant, in molecules per mole.
	Avogadro = 6.02214076e23

	// LitresPerCubicMetre converts m^3 to L for the litres-basis
	// mol*L^-1*s^-1 rate constant convention of §4.5.
	LitresPerCubicMetre = 1000.
)

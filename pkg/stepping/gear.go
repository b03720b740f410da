// Package stepping implements the stepping gear: the one genuinely
// polymorphic component of the simulator, carrying each machine family's
// distinct rule for when its rotors turn and what permutation they present
// at any instant.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package stepping

import "github.com/go-rotorsim/rotorsim/pkg/perm"

// Gear is the shared interface every machine family's stepping mechanism
// implements: advance one tick, read the net permutation of the rotor
// stack at the current displacements, and read/write the textual position
// string shown on the machine's windows.
type Gear interface {
	// StepOnce advances the mechanism by a single keystroke, following
	// the family's own stepping rule.
	StepOnce()

	// Permutation returns the composition of the rotor stack (and, for
	// families that wire a reflector inside the stepping unit, the
	// reflector) at the current displacements.
	Permutation() *perm.Permutation

	// SetPositions parses a family-specific position string (usually the
	// window letters read left to right) and applies it to the rotors.
	SetPositions(s string) error

	// Positions renders the current window letters, left to right.
	Positions() string
}

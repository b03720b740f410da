// Package reflector provides the reflector (Umkehrwalze) component: a fixed
// or field-rewirable involution that turns the signal back through the
// rotor stack.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package reflector

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// Reflector is an involution over an alphabet: Reflect(Reflect(i)) == i for
// every i, and ordinarily no letter is wired to itself.
type Reflector struct {
	id        string
	perm      *perm.Permutation
	rewirable bool
	notation  Notation
}

// New wraps an existing involution as a fixed reflector. allowFixedPoint
// should be false for standard wartime reflectors (A, B, C and their thin
// variants), which never wire a letter to itself.
func New(id string, p *perm.Permutation, allowFixedPoint bool) (*Reflector, error) {
	if !p.IsInvolution() {
		return nil, fmt.Errorf("reflector %s: mapping is not reciprocal", id)
	}
	if !allowFixedPoint && p.HasFixedPoint() {
		return nil, fmt.Errorf("reflector %s: a letter maps to itself", id)
	}
	return &Reflector{id: id, perm: p.Clone()}, nil
}

// Restore rebuilds a reflector from a state document's cached permutation,
// used by the state codec so a restored machine carries the exact cabling
// that was serialised rather than re-deriving it from notation text (which
// may be absent for a fixed, non-rewirable reflector).
func Restore(id string, p *perm.Permutation, allowFixedPoint, rewirable bool, notation Notation) (*Reflector, error) {
	r, err := New(id, p, allowFixedPoint)
	if err != nil {
		return nil, err
	}
	r.rewirable = rewirable
	r.notation = notation
	return r, nil
}

// FromPairs builds a reflector from a string of letter pairs, such as the
// historical UKW B cabling.
func FromPairs(id, alphabet, pairs string) (*Reflector, error) {
	p, err := perm.InvolutionFromPairs(alphabet, pairs)
	if err != nil {
		return nil, fmt.Errorf("reflector %s: %w", id, err)
	}
	return New(id, p, false)
}

// bpOrder is the straight alphabetic listing of the 26 physical pins used
// to describe UKW-D field cabling. Two of its positions are the machine's
// fixed entry bridge and are never part of the operator cabling; which two
// depends on the notation in use (spec glossary: "UKW-D").
const bpOrder = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Notation selects which pair of UKW-D pins is the fixed, non-pluggable
// bridge: Bletchley Park listings fix "bo", German Air Force (Luftwaffe)
// listings fix "jy". Both notations describe the same physical device;
// only the textual convention for naming its pins differs.
type Notation int

const (
	NotationGAF Notation = iota // contacts j, y fixed
	NotationBP                  // contacts b, o fixed
)

func (n Notation) fixedPins() (rune, rune) {
	if n == NotationBP {
		return 'B', 'O'
	}
	return 'J', 'Y'
}

// NewUKWD builds the rewirable D reflector from a set of 12 plugged pairs
// in German Air Force notation (contacts j, y fixed), the convention the
// rest of this package's UKW-D helpers default to.
func NewUKWD(pairs string) (*Reflector, error) {
	return NewUKWDNotation(pairs, NotationGAF)
}

// NewUKWDNotation builds the rewirable D reflector from 12 plugged pairs
// given in the named notation.
func NewUKWDNotation(pairs string, notation Notation) (*Reflector, error) {
	p, err := perm.InvolutionFromPairs(bpOrder, pairs)
	if err != nil {
		return nil, fmt.Errorf("reflector UKW-D: %w", err)
	}
	a, b := notation.fixedPins()
	if p.At(mustIndex(bpOrder, a)) != mustIndex(bpOrder, a) ||
		p.At(mustIndex(bpOrder, b)) != mustIndex(bpOrder, b) {
		return nil, fmt.Errorf("reflector UKW-D: %c and %c are fixed bridge pins and cannot be plugged", a, b)
	}
	r, err := New("UKW-D", p, true)
	if err != nil {
		return nil, err
	}
	r.rewirable = true
	r.notation = notation
	return r, nil
}

func mustIndex(alphabet string, r rune) int {
	for i, a := range alphabet {
		if a == r {
			return i
		}
	}
	return -1
}

// Rewire replaces a rewirable reflector's field cabling in place, keeping
// its current notation.
func (r *Reflector) Rewire(pairs string) error {
	if !r.rewirable {
		return fmt.Errorf("reflector %s: is not field-rewirable", r.id)
	}
	updated, err := NewUKWDNotation(pairs, r.notation)
	if err != nil {
		return err
	}
	r.perm = updated.perm
	return nil
}

// Notation reports which UKW-D pin-naming convention this reflector was
// built with.
func (r *Reflector) Notation() Notation { return r.notation }

// PairsIn renders the reflector's current cabling as a 12-pair string in
// the requested notation. Converting between notations for a wiring that
// was built under the *other* notation is only lossless when neither of
// the other notation's fixed pins happens to be wired in this cabling;
// the corpus retrieved for this repository carries no authoritative
// correspondence table between the two pin orderings (see DESIGN.md), so
// a mismatched conversion returns an error rather than silently fabricating
// one.
func (r *Reflector) PairsIn(notation Notation) (string, error) {
	a, b := notation.fixedPins()
	ai, bi := mustIndex(bpOrder, a), mustIndex(bpOrder, b)
	if r.perm.At(ai) != ai || r.perm.At(bi) != bi {
		return "", fmt.Errorf("reflector %s: cabling plugs %c or %c, not representable in the requested notation without a pin-order correspondence table", r.id, a, b)
	}
	runes := []rune(bpOrder)
	emitted := make([]bool, len(runes))
	var out []rune
	for i, letter := range runes {
		if letter == a || letter == b || emitted[i] {
			continue
		}
		j := r.perm.At(i)
		out = append(out, letter, runes[j])
		emitted[i], emitted[j] = true, true
	}
	return string(out), nil
}

// Rewirable reports whether the reflector accepts Rewire calls.
func (r *Reflector) Rewirable() bool { return r.rewirable }

// ID returns the reflector's identifier.
func (r *Reflector) ID() string { return r.id }

// Reflect performs the reflection operation on the input index.
func (r *Reflector) Reflect(i int) int {
	return r.perm.At(i)
}

// Permutation exposes the reflector's underlying involution.
func (r *Reflector) Permutation() *perm.Permutation {
	return r.perm
}

// Clone returns a deep copy of the reflector.
func (r *Reflector) Clone() *Reflector {
	return &Reflector{id: r.id, perm: r.perm.Clone(), rewirable: r.rewirable, notation: r.notation}
}

// Package perm implements the permutation algebra shared by every rotor,
// reflector and plugboard in the simulator: a bijection of {0..N-1} onto
// itself, together with an alphabet for symbolic input and output.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package perm

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrInvalidPermutation is returned when a permutation's defining data is not
// a bijection of {0..N-1}.
var ErrInvalidPermutation = errors.New("perm: invalid permutation")

// ErrAlphabetMismatch is returned when a symbol falls outside a
// permutation's configured alphabet.
var ErrAlphabetMismatch = errors.New("perm: alphabet mismatch")

// Permutation is a bijection of {0..N-1} onto itself, with an alphabet
// string used to translate indices to and from symbols.
type Permutation struct {
	alphabet []rune
	val      []int
}

// New builds a Permutation from an explicit integer vector and validates
// that it is a bijection.
func New(alphabet string, val []int) (*Permutation, error) {
	runes := []rune(alphabet)
	if len(val) != len(runes) {
		return nil, fmt.Errorf("perm: vector length %d does not match alphabet length %d: %w", len(val), len(runes), ErrInvalidPermutation)
	}
	if err := validateBijection(val); err != nil {
		return nil, err
	}
	return &Permutation{alphabet: runes, val: append([]int(nil), val...)}, nil
}

// FromString builds a Permutation from a string of symbols: the symbol at
// position i of s is the image of alphabet[i].
func FromString(alphabet string, s string) (*Permutation, error) {
	runes := []rune(alphabet)
	symbols := []rune(s)
	if len(symbols) != len(runes) {
		return nil, fmt.Errorf("perm: mapping length %d does not match alphabet length %d: %w", len(symbols), len(runes), ErrInvalidPermutation)
	}

	p := &Permutation{alphabet: runes, val: make([]int, len(runes))}
	for i, r := range symbols {
		idx, err := p.indexOf(r)
		if err != nil {
			return nil, err
		}
		p.val[i] = idx
	}
	if err := validateBijection(p.val); err != nil {
		return nil, err
	}
	return p, nil
}

// InvolutionFromPairs builds an involution (its own inverse) from a string
// of letter pairs such as a plugboard cabling "atbldfgjhmnwopqyrzvx": each
// consecutive pair of symbols is swapped, every other symbol is fixed.
// Whitespace between symbols is ignored, so "at bl df" is accepted too.
func InvolutionFromPairs(alphabet string, letterPairs string) (*Permutation, error) {
	runes := []rune(alphabet)
	p := &Permutation{alphabet: runes, val: identity(len(runes))}

	var pairs []rune
	for _, r := range letterPairs {
		if !unicode.IsSpace(r) {
			pairs = append(pairs, r)
		}
	}
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("perm: odd number of letters in involution pairs %q: %w", letterPairs, ErrInvalidPermutation)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		a, err := p.indexOf(pairs[i])
		if err != nil {
			return nil, err
		}
		b, err := p.indexOf(pairs[i+1])
		if err != nil {
			return nil, err
		}
		p.val[a] = b
		p.val[b] = a
	}
	return p, nil
}

// Identity returns the identity permutation over the given alphabet.
func Identity(alphabet string) *Permutation {
	runes := []rune(alphabet)
	return &Permutation{alphabet: runes, val: identity(len(runes))}
}

func identity(n int) []int {
	v := make([]int, n)
	for i := range v {
		v[i] = i
	}
	return v
}

func validateBijection(val []int) error {
	seen := make([]bool, len(val))
	for _, v := range val {
		if v < 0 || v >= len(val) {
			return fmt.Errorf("perm: value %d out of range [0,%d): %w", v, len(val), ErrInvalidPermutation)
		}
		if seen[v] {
			return fmt.Errorf("perm: value %d appears more than once: %w", v, ErrInvalidPermutation)
		}
		seen[v] = true
	}
	return nil
}

func (p *Permutation) indexOf(r rune) (int, error) {
	for i, a := range p.alphabet {
		if a == r {
			return i, nil
		}
	}
	return 0, fmt.Errorf("perm: symbol %q not in alphabet: %w", r, ErrAlphabetMismatch)
}

// Len returns the size N of the permutation.
func (p *Permutation) Len() int {
	return len(p.val)
}

// Alphabet returns the alphabet string used for symbolic I/O.
func (p *Permutation) Alphabet() string {
	return string(p.alphabet)
}

// At returns the image of index i under the permutation.
func (p *Permutation) At(i int) int {
	n := len(p.val)
	return p.val[((i%n)+n)%n]
}

// ToIntVector returns a copy of the permutation's defining vector.
func (p *Permutation) ToIntVector() []int {
	return append([]int(nil), p.val...)
}

// ToSymbolString renders the permutation as a string of output symbols in
// input order, the inverse operation of FromString.
func (p *Permutation) ToSymbolString() string {
	out := make([]rune, len(p.val))
	for i, v := range p.val {
		out[i] = p.alphabet[v]
	}
	return string(out)
}

// Inverse returns the functional inverse of p: inverse(p)[p[i]] == i.
func (p *Permutation) Inverse() *Permutation {
	inv := make([]int, len(p.val))
	for i, v := range p.val {
		inv[v] = i
	}
	return &Permutation{alphabet: p.alphabet, val: inv}
}

// Neg returns the additive inverse of v modulo the permutation's length.
func (p *Permutation) Neg(v int) int {
	n := len(p.val)
	return (n - ((v%n)+n)%n) % n
}

// Reverse returns the permutation that results from physically inserting
// the same wiring in reverse: reverse(p)[i] = -inverse(p)[-i] (mod N).
func (p *Permutation) Reverse() *Permutation {
	inv := p.Inverse()
	out := make([]int, len(p.val))
	for i := range out {
		out[i] = p.Neg(inv.At(p.Neg(i)))
	}
	return &Permutation{alphabet: p.alphabet, val: out}
}

// Compose returns the permutation q∘p, i.e. applying p then q: (q∘p)(i) = q(p(i)).
func (p *Permutation) Compose(q *Permutation) *Permutation {
	out := make([]int, len(p.val))
	for i := range out {
		out[i] = q.At(p.At(i))
	}
	return &Permutation{alphabet: p.alphabet, val: out}
}

// IsInvolution reports whether p is its own inverse (p(p(i)) == i for all i),
// the property required of reflectors and plugboards.
func (p *Permutation) IsInvolution() bool {
	for i := range p.val {
		if p.At(p.At(i)) != i {
			return false
		}
	}
	return true
}

// HasFixedPoint reports whether any index maps to itself.
func (p *Permutation) HasFixedPoint() bool {
	for i := range p.val {
		if p.At(i) == i {
			return true
		}
	}
	return false
}

// RuneToIndex converts a rune to its index in the permutation's alphabet.
func (p *Permutation) RuneToIndex(r rune) (int, error) {
	return p.indexOf(r)
}

// IndexToRune converts an index to the corresponding alphabet rune.
func (p *Permutation) IndexToRune(idx int) (rune, error) {
	if idx < 0 || idx >= len(p.alphabet) {
		return 0, fmt.Errorf("perm: index %d out of bounds [0,%d): %w", idx, len(p.alphabet), ErrAlphabetMismatch)
	}
	return p.alphabet[idx], nil
}

// Clone returns a deep copy of p.
func (p *Permutation) Clone() *Permutation {
	return &Permutation{alphabet: p.alphabet, val: append([]int(nil), p.val...)}
}

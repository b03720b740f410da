// Package plugboard provides the plugboard (Steckerbrett) component,
// including the rotating Uhr attachment used by some Wehrmacht Enigma
// operators from 1944 onward.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package plugboard

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// Plugboard represents the plugboard component of a machine. It implements
// reciprocal character swapping, optionally routed through an Uhr.
type Plugboard struct {
	alphabet *alphabet.Alphabet
	mapping  map[int]int
	pairs    map[int]int
	size     int
	uhr      *Uhr
}

// New creates a new empty plugboard.
func New(alph *alphabet.Alphabet) (*Plugboard, error) {
	if alph == nil {
		return nil, fmt.Errorf("alphabet cannot be nil")
	}

	return &Plugboard{
		alphabet: alph,
		mapping:  make(map[int]int),
		pairs:    make(map[int]int),
		size:     alph.Size(),
	}, nil
}

// AddPair adds a reciprocal swap between two runes on the plugboard.
func (p *Plugboard) AddPair(r1, r2 rune) error {
	idx1, err := p.alphabet.RuneToIndex(r1)
	if err != nil {
		return fmt.Errorf("invalid character %c: %v", r1, err)
	}

	idx2, err := p.alphabet.RuneToIndex(r2)
	if err != nil {
		return fmt.Errorf("invalid character %c: %v", r2, err)
	}

	if idx1 == idx2 {
		return fmt.Errorf("cannot pair character %c with itself", r1)
	}

	if _, exists := p.pairs[idx1]; exists {
		return fmt.Errorf("character %c is already paired", r1)
	}
	if _, exists := p.pairs[idx2]; exists {
		return fmt.Errorf("character %c is already paired", r2)
	}

	p.mapping[idx1] = idx2
	p.mapping[idx2] = idx1
	p.pairs[idx1] = idx2
	p.pairs[idx2] = idx1

	return nil
}

// RemovePair removes the pair involving the given rune.
func (p *Plugboard) RemovePair(r rune) error {
	idx, err := p.alphabet.RuneToIndex(r)
	if err != nil {
		return fmt.Errorf("invalid character %c: %v", r, err)
	}

	partner, exists := p.pairs[idx]
	if !exists {
		return fmt.Errorf("character %c is not paired", r)
	}

	delete(p.mapping, idx)
	delete(p.mapping, partner)
	delete(p.pairs, idx)
	delete(p.pairs, partner)

	return nil
}

// Clear removes all plugboard connections, including any Uhr.
func (p *Plugboard) Clear() {
	p.mapping = make(map[int]int)
	p.pairs = make(map[int]int)
	p.uhr = nil
}

// Process applies the plugboard mapping to a character index, routing
// through the Uhr when one is fitted.
func (p *Plugboard) Process(inputIdx int) int {
	if inputIdx < 0 || inputIdx >= p.size {
		return inputIdx
	}
	if p.uhr != nil {
		return p.uhr.Process(inputIdx)
	}
	if output, exists := p.mapping[inputIdx]; exists {
		return output
	}
	return inputIdx
}

// ProcessRune applies the plugboard mapping to a rune.
func (p *Plugboard) ProcessRune(r rune) (rune, error) {
	idx, err := p.alphabet.RuneToIndex(r)
	if err != nil {
		return r, err
	}

	outputIdx := p.Process(idx)
	return p.alphabet.IndexToRune(outputIdx)
}

// RandomPairs generates n random reciprocal pairs on the plugboard,
// clearing any existing pairs and Uhr first.
func (p *Plugboard) RandomPairs(n int) error {
	if n < 0 {
		return fmt.Errorf("number of pairs cannot be negative")
	}

	maxPairs := p.size / 2
	if n > maxPairs {
		return fmt.Errorf("cannot create %d pairs with alphabet size %d (max %d)", n, p.size, maxPairs)
	}

	p.Clear()

	if n == 0 {
		return nil
	}

	available := make([]int, p.size)
	for i := 0; i < p.size; i++ {
		available[i] = i
	}

	for i := p.size - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to generate random number: %v", err)
		}
		j := int(jBig.Int64())
		available[i], available[j] = available[j], available[i]
	}

	for i := 0; i < n*2; i += 2 {
		idx1 := available[i]
		idx2 := available[i+1]

		p.mapping[idx1] = idx2
		p.mapping[idx2] = idx1
		p.pairs[idx1] = idx2
		p.pairs[idx2] = idx1
	}

	return nil
}

// GetPairs returns a copy of all current pairs as rune pairs.
func (p *Plugboard) GetPairs() ([][2]rune, error) {
	var pairs [][2]rune
	processed := make(map[int]bool)

	for idx1, idx2 := range p.pairs {
		if processed[idx1] {
			continue
		}

		r1, err := p.alphabet.IndexToRune(idx1)
		if err != nil {
			return nil, err
		}

		r2, err := p.alphabet.IndexToRune(idx2)
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, [2]rune{r1, r2})
		processed[idx1] = true
		processed[idx2] = true
	}

	return pairs, nil
}

// GetPairsMap returns a copy of the pairs as a map for serialization.
func (p *Plugboard) GetPairsMap() (map[rune]rune, error) {
	result := make(map[rune]rune)

	for idx1, idx2 := range p.mapping {
		r1, err := p.alphabet.IndexToRune(idx1)
		if err != nil {
			return nil, err
		}

		r2, err := p.alphabet.IndexToRune(idx2)
		if err != nil {
			return nil, err
		}

		result[r1] = r2
	}

	return result, nil
}

// SetPairsFromMap sets the plugboard pairs from a map.
func (p *Plugboard) SetPairsFromMap(pairs map[rune]rune) error {
	p.Clear()

	processed := make(map[rune]bool)

	for r1, r2 := range pairs {
		if processed[r1] {
			continue
		}

		if reversePair, exists := pairs[r2]; !exists || reversePair != r1 {
			return fmt.Errorf("non-reciprocal pair: %c->%c", r1, r2)
		}

		if err := p.AddPair(r1, r2); err != nil {
			return err
		}

		processed[r1] = true
		processed[r2] = true
	}

	return nil
}

// PairCount returns the number of character pairs currently configured.
func (p *Plugboard) PairCount() int {
	return len(p.pairs) / 2
}

// EntryPermutation materialises the plugboard's current wiring (excluding
// the Uhr) as a Permutation.
func (p *Plugboard) EntryPermutation() (*perm.Permutation, error) {
	vec := make([]int, p.size)
	for i := 0; i < p.size; i++ {
		if out, ok := p.mapping[i]; ok {
			vec[i] = out
		} else {
			vec[i] = i
		}
	}
	return perm.New(string(p.alphabet.Runes()), vec)
}

// FitUhr installs an Uhr using the ten outer cable pairs already plugged on
// the board, taken in alphabetical order, at the given dial position.
func (p *Plugboard) FitUhr(dialPos int) error {
	if p.PairCount() != 10 {
		return fmt.Errorf("uhr requires exactly 10 plugged pairs, have %d", p.PairCount())
	}
	pairs, err := p.GetPairs()
	if err != nil {
		return err
	}
	for i := range pairs {
		if pairs[i][0] > pairs[i][1] {
			pairs[i][0], pairs[i][1] = pairs[i][1], pairs[i][0]
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	u, err := NewUhr(p.alphabet, pairs, dialPos)
	if err != nil {
		return err
	}
	p.uhr = u
	return nil
}

// HasUhr reports whether an Uhr is currently fitted.
func (p *Plugboard) HasUhr() bool { return p.uhr != nil }

// UhrDevice returns the fitted Uhr, or nil.
func (p *Plugboard) UhrDevice() *Uhr { return p.uhr }

// SetUhrDialPosition rotates the fitted Uhr's dial.
func (p *Plugboard) SetUhrDialPosition(pos int) error {
	if p.uhr == nil {
		return fmt.Errorf("no uhr is fitted")
	}
	p.uhr.SetDialPosition(pos)
	return nil
}

// Clone creates a deep copy of the plugboard.
func (p *Plugboard) Clone() (*Plugboard, error) {
	clone := &Plugboard{
		alphabet: p.alphabet,
		mapping:  make(map[int]int),
		pairs:    make(map[int]int),
		size:     p.size,
	}

	for k, v := range p.mapping {
		clone.mapping[k] = v
	}
	for k, v := range p.pairs {
		clone.pairs[k] = v
	}
	if p.uhr != nil {
		u := *p.uhr
		clone.uhr = &u
	}

	return clone, nil
}

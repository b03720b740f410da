package plugboard

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
)

// Uhr models the rotating patch-box attachment some Wehrmacht Enigma
// operators fitted from 1944: ten plugboard cables feed into it, and
// turning its 40-position dial re-pairs the twenty plugged sockets without
// altering the cabling itself. This model distinguishes only two wirings:
// every even dial position gives the plain cable pairing and every odd one
// gives the other consecutive pairing (see rotatedContacts).
type Uhr struct {
	alphabet *alphabet.Alphabet
	pairs    [10][2]rune
	dialPos  int
}

// NewUhr builds an Uhr from the ten plugged pairs and an initial dial
// position in [0, 39].
func NewUhr(alph *alphabet.Alphabet, pairs [][2]rune, dialPos int) (*Uhr, error) {
	if len(pairs) != 10 {
		return nil, fmt.Errorf("uhr requires exactly 10 pairs, got %d", len(pairs))
	}
	if dialPos < 0 || dialPos > 39 {
		return nil, fmt.Errorf("uhr dial position %d out of range [0,39]", dialPos)
	}

	u := &Uhr{alphabet: alph, dialPos: dialPos}
	for i, pr := range pairs {
		u.pairs[i] = pr
	}
	return u, nil
}

// SetDialPosition rotates the Uhr's dial.
func (u *Uhr) SetDialPosition(pos int) {
	u.dialPos = ((pos % 40) + 40) % 40
}

// DialPosition returns the Uhr's current dial position.
func (u *Uhr) DialPosition() int { return u.dialPos }

// Process applies the Uhr's current wiring to a character index, leaving
// any index not among the ten plugged pairs unchanged.
func (u *Uhr) Process(inputIdx int) int {
	contacts := u.rotatedContacts()
	for i := 0; i+1 < len(contacts); i += 2 {
		a, b := contacts[i], contacts[i+1]
		if a == inputIdx {
			return b
		}
		if b == inputIdx {
			return a
		}
	}
	return inputIdx
}

// rotatedContacts lays the twenty plugged letters out in cable order, then
// rotates that ring by the dial position before pairing consecutive
// contacts: this always yields ten disjoint pairs covering all twenty
// sockets. Because consecutive contacts are paired on a ring of twenty, the
// pairing depends only on whether the dial position is even or odd; a dial
// change by an even amount leaves the wiring unchanged.
func (u *Uhr) rotatedContacts() []int {
	ring := make([]int, 0, 20)
	for _, pr := range u.pairs {
		idx0, _ := u.alphabet.RuneToIndex(pr[0])
		idx1, _ := u.alphabet.RuneToIndex(pr[1])
		ring = append(ring, idx0, idx1)
	}

	shift := u.dialPos % len(ring)
	rotated := make([]int, len(ring))
	for i := range ring {
		rotated[i] = ring[(i+shift)%len(ring)]
	}
	return rotated
}

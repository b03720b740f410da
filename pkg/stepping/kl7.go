package stepping

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// kl7StationarySlot is the zero-based index of the rotor that is wired into
// the stack but never steps (operator position 4 of 8).
const kl7StationarySlot = 3

// KL7Gear implements the eight-slot KL-7 stepping maze: seven rotors
// cascade left from the rightmost slot on a schedule driven by each
// rotor's own selectable notch ring, the eighth slot sits fixed in the
// circuit without ever turning, and the whole stack performs one extra
// advance before the very first character of a message. Unlike the Enigma
// family the maze is one-way: the signal passes through the eight rotors
// once and is not reflected back.
type KL7Gear struct {
	alphabet    string
	slots       [8]*rotor.Rotor
	preStepped  bool
}

// NewKL7 builds the stepping gear from eight mounted rotors, left to right.
func NewKL7(alphabet string, slots [8]*rotor.Rotor) (*KL7Gear, error) {
	for i, r := range slots {
		if r == nil {
			return nil, fmt.Errorf("stepping: kl7 slot %d is not mounted", i)
		}
	}
	return &KL7Gear{alphabet: alphabet, slots: slots}, nil
}

// steppers returns the seven rotating slots left to right, skipping the
// fixed slot; cascade starts from the last (rightmost) of them.
func (g *KL7Gear) steppers() []*rotor.Rotor {
	out := make([]*rotor.Rotor, 0, 7)
	for i, r := range g.slots {
		if i == kl7StationarySlot {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (g *KL7Gear) cascade() {
	s := g.steppers()
	n := len(s)
	s[n-1].Step()
	for i := n - 2; i >= 0; i-- {
		if s[i+1].AtNotch() {
			s[i].Step()
		} else {
			break
		}
	}
}

// StepOnce advances the maze, performing the extra pre-message step on the
// very first call.
func (g *KL7Gear) StepOnce() {
	if !g.preStepped {
		g.cascade()
		g.preStepped = true
	}
	g.cascade()
}

// Permutation composes the eight rotors left to right, forward only: the
// maze does not reflect.
func (g *KL7Gear) Permutation() *perm.Permutation {
	runes := []rune(g.alphabet)
	n := len(runes)
	vec := make([]int, n)
	for i := 0; i < n; i++ {
		idx := i
		for j := len(g.slots) - 1; j >= 0; j-- {
			idx = g.slots[j].Forward(idx)
		}
		vec[i] = idx
	}
	p, err := perm.New(g.alphabet, vec)
	if err != nil {
		panic("stepping: kl7 gear produced a non-bijective permutation: " + err.Error())
	}
	return p
}

// SetPositions sets all eight window letters, left to right, including the
// stationary slot.
func (g *KL7Gear) SetPositions(s string) error {
	letters := []rune(s)
	if len(letters) != len(g.slots) {
		return fmt.Errorf("stepping: kl7 expects %d window letters, got %d", len(g.slots), len(letters))
	}
	for i, r := range letters {
		idx, err := g.slots[i].WindowIndexOf(r)
		if err != nil {
			return fmt.Errorf("stepping: kl7 slot %d: %w", i, err)
		}
		g.slots[i].SetWindow(idx)
	}
	return nil
}

// Slots exposes the eight mounted rotor instances, left to right, including
// the stationary slot.
func (g *KL7Gear) Slots() [8]*rotor.Rotor { return g.slots }

// PreStepped reports whether the one-time pre-message cascade has already
// run, used by the state codec to carry this across a serialisation round
// trip so a restored machine does not repeat (or skip) it.
func (g *KL7Gear) PreStepped() bool { return g.preStepped }

// SetPreStepped restores the pre-message cascade flag captured in a state
// document.
func (g *KL7Gear) SetPreStepped(v bool) { g.preStepped = v }

// Positions renders all eight window letters, left to right.
func (g *KL7Gear) Positions() string {
	letters := make([]rune, len(g.slots))
	for i, r := range g.slots {
		letter, err := r.WindowLetter()
		if err != nil {
			panic("stepping: invalid kl7 window letter: " + err.Error())
		}
		letters[i] = letter
	}
	return string(letters)
}

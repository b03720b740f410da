package stepping

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// OdometerGear implements the double-stepping odometer mechanism shared by
// every Enigma variant (Services, M4, and the rarer Abwehr/Railway/Tirpitz/
// KD derivatives) and, with a different slot count, by Typex: some leftmost
// rotors never step, the remainder advance right to left with the classic
// anomaly where a rotor one short of its own notch steps again on the next
// tick, carrying its left neighbour with it.
type OdometerGear struct {
	alphabet  string
	staticLeft []*rotor.Rotor // non-stepping, left to right
	steppers   []*rotor.Rotor // stepping rotors, left to right; steppers[len-1] steps every tick
	reflector  *reflector.Reflector
	entry      *perm.Permutation // nil means identity
	entryInv   *perm.Permutation
}

// NewOdometerGear builds the Enigma-family mechanism. entry may be nil for
// machines with no rewired entry plate.
func NewOdometerGear(alphabet string, staticLeft, steppers []*rotor.Rotor, refl *reflector.Reflector, entry *perm.Permutation) (*OdometerGear, error) {
	if len(steppers) < 1 {
		return nil, fmt.Errorf("stepping: odometer gear needs at least one stepping rotor")
	}
	g := &OdometerGear{
		alphabet:   alphabet,
		staticLeft: staticLeft,
		steppers:   steppers,
		reflector:  refl,
		entry:      entry,
	}
	if entry != nil {
		g.entryInv = entry.Inverse()
	}
	return g, nil
}

// StepOnce advances the stepping rotors, implementing the double-stepping
// anomaly. The rightmost rotor always steps, and its new (post-step) notch
// state decides whether its neighbour is carried along, exactly as the
// physical pawl reads the notch ring once the keystroke has turned it into
// place. Every other rotor's pawl, including the middle rotor's own cam
// that drives the anomaly, is decided from notch states latched before any
// rotor in this tick moved: a rotor stepped earlier in this same cascade
// must not be re-read, or it can land on its own notch and falsely carry
// its left neighbour a second time.
func (g *OdometerGear) StepOnce() {
	n := len(g.steppers)
	preTick := make([]bool, n)
	for i, r := range g.steppers {
		preTick[i] = r.AtNotch()
	}

	g.steppers[n-1].Step()

	for i := n - 2; i >= 0; i-- {
		var carried bool
		if i == n-2 {
			carried = g.steppers[n-1].AtNotch() || preTick[i]
		} else {
			carried = preTick[i+1]
		}
		if !carried {
			break
		}
		g.steppers[i].Step()
	}
}

// Permutation composes the entry plate, full rotor stack and reflector at
// the current displacements.
func (g *OdometerGear) Permutation() *perm.Permutation {
	runes := []rune(g.alphabet)
	n := len(runes)
	vec := make([]int, n)

	for i := 0; i < n; i++ {
		idx := i
		if g.entry != nil {
			idx = g.entry.At(idx)
		}
		for j := len(g.steppers) - 1; j >= 0; j-- {
			idx = g.steppers[j].Forward(idx)
		}
		for j := len(g.staticLeft) - 1; j >= 0; j-- {
			idx = g.staticLeft[j].Forward(idx)
		}
		idx = g.reflector.Reflect(idx)
		for j := 0; j < len(g.staticLeft); j++ {
			idx = g.staticLeft[j].Backward(idx)
		}
		for j := 0; j < len(g.steppers); j++ {
			idx = g.steppers[j].Backward(idx)
		}
		if g.entryInv != nil {
			idx = g.entryInv.At(idx)
		}
		vec[i] = idx
	}

	p, err := perm.New(g.alphabet, vec)
	if err != nil {
		panic("stepping: odometer gear produced a non-bijective permutation: " + err.Error())
	}
	return p
}

// allSlots returns every rotor slot, left to right, static then stepping.
func (g *OdometerGear) allSlots() []*rotor.Rotor {
	slots := make([]*rotor.Rotor, 0, len(g.staticLeft)+len(g.steppers))
	slots = append(slots, g.staticLeft...)
	slots = append(slots, g.steppers...)
	return slots
}

// SetPositions sets every slot's window letter from a string read left to
// right, one character per slot.
func (g *OdometerGear) SetPositions(s string) error {
	slots := g.allSlots()
	letters := []rune(s)
	if len(letters) != len(slots) {
		return fmt.Errorf("stepping: expected %d window letters, got %d", len(slots), len(letters))
	}
	for i, r := range letters {
		idx, err := slots[i].WindowIndexOf(r)
		if err != nil {
			return fmt.Errorf("stepping: slot %d: %w", i, err)
		}
		slots[i].SetWindow(idx)
	}
	return nil
}

// Positions renders every slot's current window letter, left to right.
func (g *OdometerGear) Positions() string {
	slots := g.allSlots()
	letters := make([]rune, len(slots))
	for i, r := range slots {
		letter, err := r.WindowLetter()
		if err != nil {
			panic("stepping: invalid window letter: " + err.Error())
		}
		letters[i] = letter
	}
	return string(letters)
}

// Reflector exposes the mounted reflector, used by callers that need to
// field-rewire a UKW-D.
func (g *OdometerGear) Reflector() *reflector.Reflector { return g.reflector }

// Steppers exposes the stepping rotor slots, left to right.
func (g *OdometerGear) Steppers() []*rotor.Rotor { return g.steppers }

// StaticLeft exposes the non-stepping rotor slots, left to right.
func (g *OdometerGear) StaticLeft() []*rotor.Rotor { return g.staticLeft }

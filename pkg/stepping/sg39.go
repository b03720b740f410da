package stepping

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// pinWheel is a cam-carrying control wheel of its own length, independent
// of the cipher alphabet size, used by SG39's three pin wheels (21, 23, 25
// positions).
type pinWheel struct {
	length   int
	position int
	cams     rotor.NotchRing
}

func newPinWheel(length int, activeCams []int) *pinWheel {
	return &pinWheel{length: length, cams: rotor.NewNotchRing("pin", length, activeCams)}
}

func (w *pinWheel) step() {
	w.position = (w.position + 1) % w.length
}

func (w *pinWheel) active() bool {
	return w.cams.Active(w.position)
}

// SG39Gear implements the Schlüsselgerät 39's stepping: three cipher
// rotors, each driven by its own pin wheel of pairwise coprime length (21,
// 23, 25), with each rotor's notch ring able to kick a neighbouring pin
// wheel forward on top of its ordinary advance, producing an aperiodic
// schedule that never repeats within any practical message length.
type SG39Gear struct {
	alphabet  string
	rotors    [3]*rotor.Rotor
	pins      [3]*pinWheel
	reflector *reflector.Reflector
}

// NewSG39 builds the gear from three mounted rotors, three pin wheels (in
// the canonical 21/23/25 lengths with their cam selections) and a
// reflector, which SG39 allows the operator to select at setup time.
func NewSG39(alphabet string, rotors [3]*rotor.Rotor, pinLengths [3]int, pinCams [3][]int, refl *reflector.Reflector) (*SG39Gear, error) {
	if refl == nil {
		return nil, fmt.Errorf("stepping: sg39 requires a reflector")
	}
	g := &SG39Gear{alphabet: alphabet, rotors: rotors, reflector: refl}
	for i := 0; i < 3; i++ {
		g.pins[i] = newPinWheel(pinLengths[i], pinCams[i])
	}
	return g, nil
}

// SetReflector swaps the gear's reflector, modelling SG39's field-settable
// reflector.
func (g *SG39Gear) SetReflector(refl *reflector.Reflector) {
	g.reflector = refl
}

// Reflector exposes the mounted reflector.
func (g *SG39Gear) Reflector() *reflector.Reflector { return g.reflector }

// Rotors exposes the three mounted rotor instances.
func (g *SG39Gear) Rotors() [3]*rotor.Rotor { return g.rotors }

// PinLength returns pin wheel i's length.
func (g *SG39Gear) PinLength(i int) int { return g.pins[i].length }

// PinPosition returns pin wheel i's current position.
func (g *SG39Gear) PinPosition(i int) int { return g.pins[i].position }

// PinCams returns a copy of pin wheel i's cam bit-vector.
func (g *SG39Gear) PinCams(i int) []bool { return g.pins[i].cams.Bits() }

// SetPinPosition restores pin wheel i's position from a state document.
func (g *SG39Gear) SetPinPosition(i, pos int) error {
	if pos < 0 || pos >= g.pins[i].length {
		return fmt.Errorf("stepping: sg39 pin wheel %d position %d out of range [0,%d)", i, pos, g.pins[i].length)
	}
	g.pins[i].position = pos
	return nil
}

// StepOnce advances each rotor whose pin wheel currently sits on an active
// cam, then advances all three pin wheels, then lets any rotor now sitting
// on its own notch kick the next pin wheel forward an extra position.
func (g *SG39Gear) StepOnce() {
	var shouldStep [3]bool
	for i := 0; i < 3; i++ {
		shouldStep[i] = g.pins[i].active()
	}
	for i := 0; i < 3; i++ {
		if shouldStep[i] {
			g.rotors[i].Step()
		}
	}
	for i := 0; i < 3; i++ {
		g.pins[i].step()
	}
	for i := 0; i < 3; i++ {
		if g.rotors[i].AtNotch() {
			g.pins[(i+1)%3].step()
		}
	}
}

// Permutation composes the three rotors and reflector.
func (g *SG39Gear) Permutation() *perm.Permutation {
	runes := []rune(g.alphabet)
	n := len(runes)
	vec := make([]int, n)
	for i := 0; i < n; i++ {
		idx := i
		for j := 2; j >= 0; j-- {
			idx = g.rotors[j].Forward(idx)
		}
		idx = g.reflector.Reflect(idx)
		for j := 0; j < 3; j++ {
			idx = g.rotors[j].Backward(idx)
		}
		vec[i] = idx
	}
	p, err := perm.New(g.alphabet, vec)
	if err != nil {
		panic("stepping: sg39 gear produced a non-bijective permutation: " + err.Error())
	}
	return p
}

// SetPositions sets the three rotor window letters followed by the three
// pin wheel positions as plain decimal integers, space-separated.
func (g *SG39Gear) SetPositions(s string) error {
	var rotorLetters string
	var pinPositions [3]int
	n, err := fmt.Sscanf(s, "%3s %d %d %d", &rotorLetters, &pinPositions[0], &pinPositions[1], &pinPositions[2])
	if err != nil || n != 4 {
		return fmt.Errorf("stepping: sg39 position string %q malformed: %v", s, err)
	}
	letters := []rune(rotorLetters)
	if len(letters) != 3 {
		return fmt.Errorf("stepping: sg39 expects 3 rotor window letters, got %d", len(letters))
	}
	for i, r := range letters {
		idx, err := g.rotors[i].WindowIndexOf(r)
		if err != nil {
			return fmt.Errorf("stepping: sg39 rotor %d: %w", i, err)
		}
		g.rotors[i].SetWindow(idx)
	}
	for i, pos := range pinPositions {
		if pos < 0 || pos >= g.pins[i].length {
			return fmt.Errorf("stepping: sg39 pin wheel %d position %d out of range [0,%d)", i, pos, g.pins[i].length)
		}
		g.pins[i].position = pos
	}
	return nil
}

// Positions renders the three rotor window letters followed by the three
// pin wheel positions, space-separated.
func (g *SG39Gear) Positions() string {
	letters := make([]rune, 3)
	for i, r := range g.rotors {
		letter, err := r.WindowLetter()
		if err != nil {
			panic("stepping: invalid sg39 window letter: " + err.Error())
		}
		letters[i] = letter
	}
	return fmt.Sprintf("%s %d %d %d", string(letters), g.pins[0].position, g.pins[1].position, g.pins[2].position)
}

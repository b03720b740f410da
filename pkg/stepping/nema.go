package stepping

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// NemaGear implements the Swiss Nema's paired rotor/drive-wheel stepping:
// unlike the Enigma family's notch cascade, each cipher rotor is paired
// with its own drive wheel, whose mounted notch ring serves as its cams, and
// it is the drive wheel's own notch state, not its neighbour's, that decides
// whether the paired cipher rotor advances on a given tick. The drive wheels
// themselves always advance. There is no war or training cam-ring pool: the
// cams are whatever notch ring each drive wheel was mounted with.
type NemaGear struct {
	alphabet    string
	driveWheels []*rotor.Rotor
	cipherRotors []*rotor.Rotor
	reflector   *reflector.Reflector
}

// NewNema builds the gear from parallel slices of drive wheels and their
// paired cipher rotors (left to right) plus the fixed reflector.
func NewNema(alphabet string, driveWheels, cipherRotors []*rotor.Rotor, refl *reflector.Reflector) (*NemaGear, error) {
	if len(driveWheels) != len(cipherRotors) {
		return nil, fmt.Errorf("stepping: nema needs one drive wheel per cipher rotor, got %d/%d", len(driveWheels), len(cipherRotors))
	}
	if len(driveWheels) == 0 {
		return nil, fmt.Errorf("stepping: nema needs at least one rotor pair")
	}
	if refl == nil {
		return nil, fmt.Errorf("stepping: nema requires a reflector")
	}
	return &NemaGear{alphabet: alphabet, driveWheels: driveWheels, cipherRotors: cipherRotors, reflector: refl}, nil
}

// StepOnce advances every drive wheel by one position, then advances each
// cipher rotor whose paired drive wheel is sitting on an active cam.
func (g *NemaGear) StepOnce() {
	for i, wheel := range g.driveWheels {
		wheel.Step()
		if wheel.AtNotch() {
			g.cipherRotors[i].Step()
		}
	}
}

// Permutation composes the cipher rotors and reflector; the drive wheels
// carry no cipher wiring of their own.
func (g *NemaGear) Permutation() *perm.Permutation {
	runes := []rune(g.alphabet)
	n := len(runes)
	vec := make([]int, n)
	for i := 0; i < n; i++ {
		idx := i
		for j := len(g.cipherRotors) - 1; j >= 0; j-- {
			idx = g.cipherRotors[j].Forward(idx)
		}
		idx = g.reflector.Reflect(idx)
		for j := 0; j < len(g.cipherRotors); j++ {
			idx = g.cipherRotors[j].Backward(idx)
		}
		vec[i] = idx
	}
	p, err := perm.New(g.alphabet, vec)
	if err != nil {
		panic("stepping: nema gear produced a non-bijective permutation: " + err.Error())
	}
	return p
}

// SetPositions sets cipher rotor and drive wheel window letters, given as
// cipher rotor letters left to right followed by drive wheel letters left
// to right.
func (g *NemaGear) SetPositions(s string) error {
	letters := []rune(s)
	want := len(g.cipherRotors) + len(g.driveWheels)
	if len(letters) != want {
		return fmt.Errorf("stepping: nema expects %d window letters, got %d", want, len(letters))
	}
	for i, r := range g.cipherRotors {
		idx, err := r.WindowIndexOf(letters[i])
		if err != nil {
			return fmt.Errorf("stepping: nema cipher rotor %d: %w", i, err)
		}
		r.SetWindow(idx)
	}
	offset := len(g.cipherRotors)
	for i, w := range g.driveWheels {
		idx, err := w.WindowIndexOf(letters[offset+i])
		if err != nil {
			return fmt.Errorf("stepping: nema drive wheel %d: %w", i, err)
		}
		w.SetWindow(idx)
	}
	return nil
}

// DriveWheels exposes the drive-wheel slots, left to right.
func (g *NemaGear) DriveWheels() []*rotor.Rotor { return g.driveWheels }

// CipherRotors exposes the cipher rotor slots, left to right.
func (g *NemaGear) CipherRotors() []*rotor.Rotor { return g.cipherRotors }

// Reflector exposes the mounted reflector.
func (g *NemaGear) Reflector() *reflector.Reflector { return g.reflector }

// Positions renders cipher rotor window letters followed by drive wheel
// window letters, both left to right.
func (g *NemaGear) Positions() string {
	letters := make([]rune, 0, len(g.cipherRotors)+len(g.driveWheels))
	for _, r := range g.cipherRotors {
		letter, err := r.WindowLetter()
		if err != nil {
			panic("stepping: invalid nema window letter: " + err.Error())
		}
		letters = append(letters, letter)
	}
	for _, w := range g.driveWheels {
		letter, err := w.WindowLetter()
		if err != nil {
			panic("stepping: invalid nema drive wheel letter: " + err.Error())
		}
		letters = append(letters, letter)
	}
	return string(letters)
}

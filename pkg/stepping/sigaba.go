package stepping

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// sigabaDrivingContacts are the four fixed input contacts on the control
// bank that feed the combinational stepping network, chosen as the first
// four letters of the machine alphabet.
const sigabaDrivingContacts = 4

// SIGABAGear implements the three-bank SIGABA mechanism: a control bank
// that steps odometer-style every tick, whose output on four fixed
// contacts is routed through the (never-stepping) index bank, the result
// of which decides which of the five cipher rotors advance on the next
// character. The cipher bank alone carries the cipher permutation; unlike
// every other supported family, that permutation is not an involution, so
// SIGABA encrypts and decrypts along different paths through the same
// rotor stack.
type SIGABAGear struct {
	alphabet string
	cipher   [5]*rotor.Rotor
	control  [5]*rotor.Rotor
	index    [5]*rotor.Rotor
	csp2900  bool
}

// NewSIGABAGear builds the gear from the three five-rotor banks. csp2900
// selects the CSP-2900 variant, which inverts the stepping decision taken
// from two of the four driving contacts.
func NewSIGABAGear(alphabet string, cipher, control, index [5]*rotor.Rotor, csp2900 bool) (*SIGABAGear, error) {
	for i, r := range cipher {
		if r == nil {
			return nil, fmt.Errorf("stepping: sigaba cipher slot %d is not mounted", i)
		}
	}
	for i, r := range control {
		if r == nil {
			return nil, fmt.Errorf("stepping: sigaba control slot %d is not mounted", i)
		}
	}
	for i, r := range index {
		if r == nil {
			return nil, fmt.Errorf("stepping: sigaba index slot %d is not mounted", i)
		}
	}
	return &SIGABAGear{alphabet: alphabet, cipher: cipher, control: control, index: index, csp2900: csp2900}, nil
}

// CSP2900 reports whether the gear runs the CSP-2900 stepping variant.
func (g *SIGABAGear) CSP2900() bool { return g.csp2900 }

// stepControl advances the control bank one tick, odometer-style: the
// rightmost rotor always steps, and each neighbour to the left follows
// while the rotor to its right sits on an active notch.
func (g *SIGABAGear) stepControl() {
	g.control[4].Step()
	for i := 3; i >= 0; i-- {
		if g.control[i+1].AtNotch() {
			g.control[i].Step()
		} else {
			break
		}
	}
}

// controlNetworkOutputs sends the alphabet's first four symbols through the
// control bank's forward-only maze, producing the four signals that feed
// the index bank.
func (g *SIGABAGear) controlNetworkOutputs() [sigabaDrivingContacts]int {
	var out [sigabaDrivingContacts]int
	for c := 0; c < sigabaDrivingContacts; c++ {
		idx := c
		for j := len(g.control) - 1; j >= 0; j-- {
			idx = g.control[j].Forward(idx)
		}
		out[c] = idx
	}
	return out
}

// indexNetworkOutputs passes the control bank's outputs through the
// non-stepping index bank's forward-only maze.
func (g *SIGABAGear) indexNetworkOutputs(controlOut [sigabaDrivingContacts]int) [sigabaDrivingContacts]int {
	var out [sigabaDrivingContacts]int
	for c, in := range controlOut {
		idx := in
		for j := len(g.index) - 1; j >= 0; j-- {
			idx = g.index[j].Forward(idx)
		}
		out[c] = idx
	}
	return out
}

// cipherStepMask turns the index bank's four outputs into a decision of
// which of the five cipher rotors step, applying the CSP-2900 inversion on
// the network's first two outputs and guaranteeing at least one cipher
// rotor always advances.
func (g *SIGABAGear) cipherStepMask(indexOut [sigabaDrivingContacts]int) [5]bool {
	var mask [5]bool
	for c, v := range indexOut {
		bit := v%2 == 0
		if g.csp2900 && c < 2 {
			bit = !bit
		}
		if bit {
			mask[v%5] = true
		}
	}
	if mask == ([5]bool{}) {
		mask[indexOut[0]%5] = true
	}
	return mask
}

// StepOnce advances the control bank, runs the combinational network
// through the index bank, and steps every cipher rotor the network
// selects.
func (g *SIGABAGear) StepOnce() {
	g.stepControl()
	controlOut := g.controlNetworkOutputs()
	indexOut := g.indexNetworkOutputs(controlOut)
	mask := g.cipherStepMask(indexOut)
	for i, step := range mask {
		if step {
			g.cipher[i].Step()
		}
	}
}

// SetupStep manually advances a single control rotor without touching the
// cipher bank or running the stepping network, used to dial in a message
// key before encryption begins.
func (g *SIGABAGear) SetupStep(controlIndex int) error {
	if controlIndex < 0 || controlIndex >= len(g.control) {
		return fmt.Errorf("stepping: sigaba control index %d out of range", controlIndex)
	}
	g.control[controlIndex].Step()
	return nil
}

// Permutation composes the five cipher rotors only, forward direction;
// SIGABA's cipher bank is a one-way maze with no reflector, so the result
// is generally not an involution.
func (g *SIGABAGear) Permutation() *perm.Permutation {
	runes := []rune(g.alphabet)
	n := len(runes)
	vec := make([]int, n)
	for i := 0; i < n; i++ {
		idx := i
		for j := len(g.cipher) - 1; j >= 0; j-- {
			idx = g.cipher[j].Forward(idx)
		}
		vec[i] = idx
	}
	p, err := perm.New(g.alphabet, vec)
	if err != nil {
		panic("stepping: sigaba gear produced a non-bijective permutation: " + err.Error())
	}
	return p
}

// SetPositions sets cipher, control and index bank window letters in turn,
// five letters each, fifteen in total.
func (g *SIGABAGear) SetPositions(s string) error {
	letters := []rune(s)
	if len(letters) != 15 {
		return fmt.Errorf("stepping: sigaba expects 15 window letters, got %d", len(letters))
	}
	banks := [][5]*rotor.Rotor{g.cipher, g.control, g.index}
	names := []string{"cipher", "control", "index"}
	for b, bank := range banks {
		for i, r := range bank {
			letter := letters[b*5+i]
			idx, err := r.WindowIndexOf(letter)
			if err != nil {
				return fmt.Errorf("stepping: sigaba %s slot %d: %w", names[b], i, err)
			}
			r.SetWindow(idx)
		}
	}
	return nil
}

// Positions renders cipher, control and index bank window letters in turn.
func (g *SIGABAGear) Positions() string {
	letters := make([]rune, 0, 15)
	for _, bank := range [][5]*rotor.Rotor{g.cipher, g.control, g.index} {
		for _, r := range bank {
			letter, err := r.WindowLetter()
			if err != nil {
				panic("stepping: invalid sigaba window letter: " + err.Error())
			}
			letters = append(letters, letter)
		}
	}
	return string(letters)
}

// Cipher exposes the cipher bank, left to right.
func (g *SIGABAGear) Cipher() [5]*rotor.Rotor { return g.cipher }

// Control exposes the control bank, left to right.
func (g *SIGABAGear) Control() [5]*rotor.Rotor { return g.control }

// Index exposes the index bank, left to right.
func (g *SIGABAGear) Index() [5]*rotor.Rotor { return g.index }

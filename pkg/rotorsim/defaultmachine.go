// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package rotorsim

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
	"github.com/go-rotorsim/rotorsim/internal/plugboard"
	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/rotorset"
	"github.com/go-rotorsim/rotorsim/pkg/stepping"
)

// descriptions maps a machine type id to the human-readable name
// state.Name carries, mirroring the teacher's own constant machine names
// (Enigma, "M4", ...) one level up.
var descriptions = map[string]string{
	"services-enigma": "Services Enigma",
	"abwehr-enigma":   "Abwehr Enigma",
	"railway-enigma":  "Railway Enigma",
	"tirpitz-enigma":  "Tirpitz Enigma",
	"kd-enigma":       "KD Enigma",
	"m4-enigma":       "M4 Enigma",
	"typex":           "Typex",
	"sigaba":          "SIGABA CSP-889",
	"kl7":             "KL-7",
	"nema":            "Nema",
	"sg39":            "SG-39",
}

// NewDefault builds a freshly-mounted machine of the given family at its
// built-in rotor set's first eligible rotors, ring offset and window
// position A throughout, no plugboard pairs. It is the starting point the
// CLI's keygen command randomises from, and needs no state
// document to exist yet.
func NewDefault(machineType string) (*machine.RotorMachine, error) {
	name, ok := descriptions[machineType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMachineType, machineType)
	}

	alph, err := alphabet.New([]rune(latin))
	if err != nil {
		return nil, err
	}

	set, err := rotorset.Lookup(machineType)
	if err != nil {
		return nil, err
	}

	switch machineType {
	case "services-enigma", "abwehr-enigma", "railway-enigma", "tirpitz-enigma", "kd-enigma":
		return defaultEnigma3(name, machineType, alph, set)
	case "m4-enigma":
		return defaultEnigma4(name, machineType, alph, set)
	case "typex":
		return defaultTypex(alph, set)
	case "sigaba":
		return defaultSigaba(alph, set)
	case "kl7":
		return defaultKL7(alph, set)
	case "nema":
		return defaultNema(alph, set)
	case "sg39":
		return defaultSG39(alph, set)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMachineType, machineType)
	}
}

func mountAt(set *rotorset.Set, id string) (*rotor.Rotor, error) {
	entry, err := set.Lookup(id)
	if err != nil {
		return nil, err
	}
	return rotor.New(entry.Descriptor, entry.Ring), nil
}

func reflectorAt(set *rotorset.Set, id string) (*reflector.Reflector, error) {
	entry, err := set.Lookup(id)
	if err != nil {
		return nil, err
	}
	return reflector.New(id, entry.Descriptor.Perm, false)
}

func defaultEnigma3(name, machineType string, alph *alphabet.Alphabet, set *rotorset.Set) (*machine.RotorMachine, error) {
	r1, err := mountAt(set, "I")
	if err != nil {
		return nil, err
	}
	r2, err := mountAt(set, "II")
	if err != nil {
		return nil, err
	}
	r3, err := mountAt(set, "III")
	if err != nil {
		return nil, err
	}
	refl, err := reflectorAt(set, "UKW")
	if err != nil {
		// Services/M4 rotor sets spell their default reflector "UKW-B".
		refl, err = reflectorAt(set, "UKW-B")
		if err != nil {
			return nil, err
		}
	}
	gear, err := stepping.NewEnigma3(latin, [3]*rotor.Rotor{r1, r2, r3}, refl)
	if err != nil {
		return nil, err
	}
	pb, err := plugboard.New(alph)
	if err != nil {
		return nil, err
	}
	return machine.New(name, machineType, machineType, alph, gear, pb, []*rotor.Rotor{r1, r2, r3})
}

func defaultEnigma4(name, machineType string, alph *alphabet.Alphabet, set *rotorset.Set) (*machine.RotorMachine, error) {
	greek, err := mountAt(set, "Beta")
	if err != nil {
		return nil, err
	}
	r1, err := mountAt(set, "I")
	if err != nil {
		return nil, err
	}
	r2, err := mountAt(set, "II")
	if err != nil {
		return nil, err
	}
	r3, err := mountAt(set, "III")
	if err != nil {
		return nil, err
	}
	refl, err := reflectorAt(set, "UKW-B-Thin")
	if err != nil {
		return nil, err
	}
	gear, err := stepping.NewEnigma4(latin, greek, [3]*rotor.Rotor{r1, r2, r3}, refl)
	if err != nil {
		return nil, err
	}
	pb, err := plugboard.New(alph)
	if err != nil {
		return nil, err
	}
	return machine.New(name, machineType, machineType, alph, gear, pb, []*rotor.Rotor{greek, r1, r2, r3})
}

func defaultTypex(alph *alphabet.Alphabet, set *rotorset.Set) (*machine.RotorMachine, error) {
	s1, err := mountAt(set, "1")
	if err != nil {
		return nil, err
	}
	s2, err := mountAt(set, "2")
	if err != nil {
		return nil, err
	}
	r3, err := mountAt(set, "3")
	if err != nil {
		return nil, err
	}
	r4, err := mountAt(set, "4")
	if err != nil {
		return nil, err
	}
	r5, err := mountAt(set, "5")
	if err != nil {
		return nil, err
	}
	refl, err := reflectorAt(set, "UKW")
	if err != nil {
		return nil, err
	}
	gear, err := stepping.NewTypex(latin, [2]*rotor.Rotor{s1, s2}, [3]*rotor.Rotor{r3, r4, r5}, refl)
	if err != nil {
		return nil, err
	}
	return machine.New("Typex", "typex", "typex", alph, gear, nil, []*rotor.Rotor{s1, s2, r3, r4, r5})
}

func defaultSigaba(alph *alphabet.Alphabet, set *rotorset.Set) (*machine.RotorMachine, error) {
	var cipher, control, index [5]*rotor.Rotor
	var slots []*rotor.Rotor
	for i := 0; i < 5; i++ {
		r, err := mountAt(set, fmt.Sprintf("C%d", i+1))
		if err != nil {
			return nil, err
		}
		cipher[i] = r
		slots = append(slots, r)
	}
	for i := 0; i < 5; i++ {
		r, err := mountAt(set, fmt.Sprintf("N%d", i+1))
		if err != nil {
			return nil, err
		}
		control[i] = r
		slots = append(slots, r)
	}
	for i := 0; i < 5; i++ {
		r, err := mountAt(set, fmt.Sprintf("I%d", i+1))
		if err != nil {
			return nil, err
		}
		index[i] = r
		slots = append(slots, r)
	}
	gear, err := stepping.NewSIGABAGear(latin, cipher, control, index, false)
	if err != nil {
		return nil, err
	}
	return machine.New("SIGABA CSP-889", "sigaba", "sigaba", alph, gear, nil, slots)
}

func defaultKL7(alph *alphabet.Alphabet, set *rotorset.Set) (*machine.RotorMachine, error) {
	var slots [8]*rotor.Rotor
	var flat []*rotor.Rotor
	for i := 0; i < 8; i++ {
		r, err := mountAt(set, fmt.Sprintf("%d", i+1))
		if err != nil {
			return nil, err
		}
		slots[i] = r
		flat = append(flat, r)
	}
	gear, err := stepping.NewKL7(latin, slots)
	if err != nil {
		return nil, err
	}
	return machine.New("KL-7", "kl7", "kl7", alph, gear, nil, flat)
}

func defaultNema(alph *alphabet.Alphabet, set *rotorset.Set) (*machine.RotorMachine, error) {
	var drive, cipher [nemaPairCount]*rotor.Rotor
	var slots []*rotor.Rotor
	for i := 0; i < nemaPairCount; i++ {
		r, err := mountAt(set, fmt.Sprintf("%d", i+1))
		if err != nil {
			return nil, err
		}
		drive[i] = r
		slots = append(slots, r)
	}
	for i := 0; i < nemaPairCount; i++ {
		r, err := mountAt(set, fmt.Sprintf("%d", i+1+nemaPairCount))
		if err != nil {
			return nil, err
		}
		cipher[i] = r
		slots = append(slots, r)
	}
	refl, err := reflectorAt(set, "UKW")
	if err != nil {
		return nil, err
	}
	gear, err := stepping.NewNema(latin, drive[:], cipher[:], refl)
	if err != nil {
		return nil, err
	}
	return machine.New("Nema", "nema", "nema", alph, gear, nil, slots)
}

// sg39PinLengths is the machine's fixed trio of pairwise coprime pin wheel
// lengths (spec.md §4.D), never anything else for a genuine SG39.
var sg39PinLengths = [3]int{21, 23, 25}

func defaultSG39(alph *alphabet.Alphabet, set *rotorset.Set) (*machine.RotorMachine, error) {
	var rotors [3]*rotor.Rotor
	for i := 0; i < 3; i++ {
		r, err := mountAt(set, fmt.Sprintf("%d", i+1))
		if err != nil {
			return nil, err
		}
		rotors[i] = r
	}
	refl, err := reflectorAt(set, "UKW")
	if err != nil {
		return nil, err
	}
	pinCams := [3][]int{{0, 5, 10}, {1, 6, 11}, {2, 7, 12}}
	gear, err := stepping.NewSG39(latin, rotors, sg39PinLengths, pinCams, refl)
	if err != nil {
		return nil, err
	}
	pb, err := plugboard.New(alph)
	if err != nil {
		return nil, err
	}
	return machine.New("SG-39", "sg39", "sg39", alph, gear, pb, rotors[:])
}

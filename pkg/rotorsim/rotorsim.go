// Package rotorsim binds the textual state document format to a live
// machine instance: Build reconstructs a RotorMachine from a parsed state,
// and Capture is its inverse. Every machine family stores its rotor and
// reflector wiring redundantly in the state document itself (see
// pkg/state), so Build never consults pkg/rotorset and a machine survives a
// full save/restore cycle even if its original rotor set were to change.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package rotorsim

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
	"github.com/go-rotorsim/rotorsim/internal/plugboard"
	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
	"github.com/go-rotorsim/rotorsim/pkg/state"
	"github.com/go-rotorsim/rotorsim/pkg/stepping"
)

// latin is the alphabet every supported machine family operates over.
const latin = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ErrUnknownMachineType is returned by Build for a state whose machinetype
// field names no supported family.
var ErrUnknownMachineType = errors.New("rotorsim: unknown machine type")

// nemaPairCount is the number of drive-wheel/cipher-rotor pairs a Nema
// mounts: five of each, ten wheels in total.
const nemaPairCount = 5

// Build reconstructs a live machine from a parsed state document.
func Build(st *state.State) (*machine.RotorMachine, error) {
	alph, err := alphabet.New([]rune(latin))
	if err != nil {
		return nil, err
	}

	switch st.MachineType {
	case "services-enigma", "abwehr-enigma", "railway-enigma", "tirpitz-enigma", "kd-enigma":
		return buildEnigma3(st, alph)
	case "m4-enigma":
		return buildEnigma4(st, alph)
	case "typex":
		return buildTypex(st, alph)
	case "sigaba":
		return buildSigaba(st, alph)
	case "kl7":
		return buildKL7(st, alph)
	case "nema":
		return buildNema(st, alph)
	case "sg39":
		return buildSG39(st, alph)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMachineType, st.MachineType)
	}
}

// Capture renders a live machine back into a state document.
func Capture(m *machine.RotorMachine) (*state.State, error) {
	st := state.New(m.GetDescription(), m.RotorSetName(), m.MachineType())

	switch g := m.Gear().(type) {
	case *stepping.OdometerGear:
		captureOdometer(st, m, g)
	case *stepping.SIGABAGear:
		captureSigaba(st, g)
	case *stepping.KL7Gear:
		captureKL7(st, g)
	case *stepping.NemaGear:
		captureNema(st, g)
	case *stepping.SG39Gear:
		captureSG39(st, g)
	default:
		return nil, fmt.Errorf("rotorsim: unsupported gear type %T", g)
	}

	if err := capturePlugboardInto(st, m.Plugboard()); err != nil {
		return nil, err
	}
	return st, nil
}

// --- shared slot helpers ---------------------------------------------------

func rotorFor(st *state.State, name string) (*rotor.Rotor, error) {
	slot, ok := st.Slots[name]
	if !ok {
		return nil, fmt.Errorf("rotorsim: state missing rotor slot %q", name)
	}
	return buildRotorFromSlot(name, slot)
}

func buildRotorFromSlot(slotName string, slot state.RotorSlot) (*rotor.Rotor, error) {
	p, err := perm.New(latin, slot.Permutation)
	if err != nil {
		return nil, fmt.Errorf("rotorsim: slot %s: %w", slotName, err)
	}
	desc := rotor.Descriptor{ID: slot.RID, Perm: p, DisplayName: slot.RID}
	ring := notchRingFromBits(slot.RingID, slot.RingData)
	r := rotor.New(desc, ring)
	r.SetRingOffset(slot.RingOffset)
	r.SetDisplacement(slot.RotorDisplacement)
	return r, nil
}

func notchRingFromBits(id string, bits []bool) rotor.NotchRing {
	active := make([]int, 0, len(bits))
	for i, b := range bits {
		if b {
			active = append(active, i)
		}
	}
	return rotor.NewNotchRing(id, len(bits), active)
}

func captureRotorSlot(r *rotor.Rotor) state.RotorSlot {
	return state.RotorSlot{
		Permutation:       r.BaseVector(),
		RingData:          r.RingBits(),
		RID:               r.DescriptorID(),
		RingID:            r.RingID(),
		InsertInverse:     r.InsertedReversed(),
		RingOffset:        r.RingOffset(),
		RotorDisplacement: r.Displacement(),
	}
}

// reflectorSlot is the fixed state slot name used for every family that
// mounts a single reflector.
const reflectorSlot = "reflector"

func reflectorFor(st *state.State) (*reflector.Reflector, error) {
	slot, ok := st.Slots[reflectorSlot]
	if !ok {
		return nil, fmt.Errorf("rotorsim: state missing reflector slot")
	}
	p, err := perm.New(latin, slot.Permutation)
	if err != nil {
		return nil, fmt.Errorf("rotorsim: reflector: %w", err)
	}
	rewirable := st.UKWDWiring != ""
	notation := reflector.NotationGAF
	if st.Extra["reflector.notation"] == "bp" {
		notation = reflector.NotationBP
	}
	return reflector.Restore(slot.RID, p, true, rewirable, notation)
}

func captureReflectorInto(st *state.State, refl *reflector.Reflector) {
	st.SetSlot(reflectorSlot, state.RotorSlot{
		Permutation: refl.Permutation().ToIntVector(),
		RID:         refl.ID(),
	})
	if !refl.Rewirable() {
		return
	}
	if refl.Notation() == reflector.NotationBP {
		st.Extra["reflector.notation"] = "bp"
	}
	if pairs, err := refl.PairsIn(refl.Notation()); err == nil {
		st.UKWDWiring = pairs
	}
}

func buildPlugboard(alph *alphabet.Alphabet, pb *state.Plugboard) (*plugboard.Plugboard, error) {
	if pb == nil || pb.Entry == nil {
		return nil, nil
	}
	board, err := plugboard.New(alph)
	if err != nil {
		return nil, err
	}
	for i, out := range pb.Entry {
		if out <= i {
			continue
		}
		r1, err := alph.IndexToRune(i)
		if err != nil {
			return nil, err
		}
		r2, err := alph.IndexToRune(out)
		if err != nil {
			return nil, err
		}
		if err := board.AddPair(r1, r2); err != nil {
			return nil, err
		}
	}
	if pb.UsesUhr {
		if err := board.FitUhr(pb.UhrDialPos); err != nil {
			return nil, fmt.Errorf("rotorsim: restoring uhr: %w", err)
		}
	}
	return board, nil
}

func capturePlugboardInto(st *state.State, pb *plugboard.Plugboard) error {
	if pb == nil {
		return nil
	}
	entryPerm, err := pb.EntryPermutation()
	if err != nil {
		return err
	}
	sp := &state.Plugboard{Entry: entryPerm.ToIntVector(), UsesUhr: pb.HasUhr()}
	if pb.HasUhr() {
		uhr := pb.UhrDevice()
		sp.UhrDialPos = uhr.DialPosition()
		pairs, err := pb.GetPairs()
		if err != nil {
			return err
		}
		sp.UhrCabling = formatPairs(pairs)
	}
	st.Plugboard = sp
	return nil
}

func formatPairs(pairs [][2]rune) string {
	out := ""
	for i, pr := range pairs {
		if i > 0 {
			out += " "
		}
		out += string(pr[0]) + string(pr[1])
	}
	return out
}

func parseCSP2900(extra map[string]string) bool {
	v, err := strconv.ParseBool(extra["sigaba.csp2900"])
	return err == nil && v
}

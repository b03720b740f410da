// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package rotorsim

import (
	"strconv"
	"strings"

	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/stepping"
)

// GetConfig renders the flat string-to-string configuration dictionary
// spec.md §6 documents for get_config: a machine-family-agnostic set of
// recognised keys (rotors, rings, plugs, reflector, ukwdperm, usesuhr,
// csp2900, cipher, control, index, alpharings, notchrings, notchselect,
// rotorset, ringselect, warmachine, pinsrotor{1,2,3}, pinswheel{1,2,3}),
// populated with whatever a given machine family actually carries; keys
// that don't apply to the family are simply absent rather than empty.
func GetConfig(m *machine.RotorMachine) map[string]string {
	cfg := map[string]string{
		"rotorset": m.RotorSetName(),
	}

	ids := m.GetRotorSetNames()
	if len(ids) > 0 {
		cfg["rotors"] = strings.Join(ids, " ")
	}

	ringIDs := make([]string, len(m.Slots()))
	for i, r := range m.Slots() {
		ringIDs[i] = r.RingID()
	}
	if len(ringIDs) > 0 {
		joined := strings.Join(ringIDs, " ")
		cfg["rings"] = joined
		cfg["notchrings"] = joined
		cfg["ringselect"] = joined
		cfg["notchselect"] = joined
	}

	cfg["alpharings"] = m.GetPositions()

	if pb := m.Plugboard(); pb != nil {
		if pairs, err := pb.GetPairs(); err == nil {
			cfg["plugs"] = formatPairs(pairs)
		}
		cfg["usesuhr"] = strconv.FormatBool(pb.HasUhr())
	}

	if refl, ok := reflectorOfGear(m.Gear()); ok {
		cfg["reflector"] = refl.ID()
		if refl.Rewirable() {
			if pairs, err := refl.PairsIn(refl.Notation()); err == nil {
				cfg["ukwdperm"] = pairs
			}
		}
	}

	switch g := m.Gear().(type) {
	case *stepping.SIGABAGear:
		cfg["csp2900"] = strconv.FormatBool(g.CSP2900())
		cipher, control, index := g.Cipher(), g.Control(), g.Index()
		cfg["cipher"] = joinIDs(cipher[:])
		cfg["control"] = joinIDs(control[:])
		cfg["index"] = joinIDs(index[:])
	case *stepping.NemaGear:
		// warmachine is not live machine state: neither the gear nor the
		// randomiser (whose only nema token is "basic") has a war or
		// training drive-wheel cam pool, so get_config always reports
		// "false".
		cfg["warmachine"] = "false"
	case *stepping.SG39Gear:
		for i := 0; i < 3; i++ {
			cfg["pinsrotor"+strconv.Itoa(i+1)] = strconv.Itoa(g.PinPosition(i))
			cfg["pinswheel"+strconv.Itoa(i+1)] = strconv.Itoa(g.PinLength(i))
		}
	}

	return cfg
}

func reflectorOfGear(g stepping.Gear) (*reflector.Reflector, bool) {
	switch gg := g.(type) {
	case *stepping.OdometerGear:
		return gg.Reflector(), true
	case *stepping.NemaGear:
		return gg.Reflector(), true
	case *stepping.SG39Gear:
		return gg.Reflector(), true
	default:
		return nil, false
	}
}

func joinIDs(rotors []*rotor.Rotor) string {
	ids := make([]string, len(rotors))
	for i, r := range rotors {
		ids[i] = r.DescriptorID()
	}
	return strings.Join(ids, " ")
}

// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package randomizer

import (
	"errors"
	"testing"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
	"github.com/go-rotorsim/rotorsim/internal/plugboard"
	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/rotorset"
	"github.com/go-rotorsim/rotorsim/pkg/stepping"
)

const latin = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func buildServicesEnigma(t *testing.T) *machine.RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("services-enigma")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	mount := func(id string) *rotor.Rotor {
		e, err := set.Lookup(id)
		if err != nil {
			t.Fatalf("lookup %s: %v", id, err)
		}
		return rotor.New(e.Descriptor, e.Ring)
	}
	r1, r2, r3 := mount("I"), mount("II"), mount("III")
	ukw, err := set.Lookup("UKW-B")
	if err != nil {
		t.Fatalf("lookup UKW-B: %v", err)
	}
	refl, err := reflector.New("UKW-B", ukw.Descriptor.Perm, false)
	if err != nil {
		t.Fatalf("reflector.New: %v", err)
	}
	gear, err := stepping.NewEnigma3(latin, [3]*rotor.Rotor{r1, r2, r3}, refl)
	if err != nil {
		t.Fatalf("NewEnigma3: %v", err)
	}
	alph, err := alphabet.New([]rune(latin))
	if err != nil {
		t.Fatalf("alphabet.New: %v", err)
	}
	pb, err := plugboard.New(alph)
	if err != nil {
		t.Fatalf("plugboard.New: %v", err)
	}
	m, err := machine.New("Services Enigma", "services-enigma", "services-enigma", alph, gear, pb, []*rotor.Rotor{r1, r2, r3})
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	return m
}

func TestRandomizerParamsPerFamily(t *testing.T) {
	cases := map[string][]string{
		"services-enigma": {"basic", "ukwdonly", "fancy"},
		"m4-enigma":       {"basic", "ukwdonly", "fancy"},
		"sg39":            {"one", "two", "three", "special", "enigmam4"},
		"typex":           {"basic"},
		"sigaba":          {"basic"},
		"kl7":             {"basic"},
		"nema":            {"basic"},
	}
	for machineType, want := range cases {
		got := RandomizerParams(machineType)
		if len(got) != len(want) {
			t.Fatalf("%s: RandomizerParams = %v, want %v", machineType, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: RandomizerParams = %v, want %v", machineType, got, want)
			}
		}
	}
}

func TestRandomizerParamsUnknownFamily(t *testing.T) {
	if got := RandomizerParams("bogus"); got != nil {
		t.Fatalf("RandomizerParams(bogus) = %v, want nil", got)
	}
}

func TestRandomizeRejectsUnknownToken(t *testing.T) {
	m := buildServicesEnigma(t)
	err := Randomize(m, "bogus")
	if !errors.Is(err, ErrUnsupportedProcedure) {
		t.Fatalf("Randomize with unknown token = %v, want ErrUnsupportedProcedure", err)
	}
}

func TestRandomizeBasicKeepsMachineReciprocal(t *testing.T) {
	m := buildServicesEnigma(t)
	if err := Randomize(m, "basic"); err != nil {
		t.Fatalf("Randomize: %v", err)
	}

	positions := m.GetPositions()
	names := m.GetRotorSetNames()

	twin := buildServicesEnigma(t)
	if err := twin.SetRotorSetState("services-enigma", names); err != nil {
		t.Fatalf("SetRotorSetState: %v", err)
	}
	for i, r := range m.Slots() {
		twin.Slots()[i].SetRingOffset(r.RingOffset())
	}
	if err := twin.SetPositions(positions); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}

	ciphertext, err := m.Encrypt("ATTACKATDAWN")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	recovered, err := twin.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != "ATTACKATDAWN" {
		t.Fatalf("recovered = %q, want %q", recovered, "ATTACKATDAWN")
	}
}

func TestRandomizeUKWDOnlyRejectsFixedReflector(t *testing.T) {
	m := buildServicesEnigma(t)
	err := Randomize(m, "ukwdonly")
	if !errors.Is(err, ErrUnsupportedProcedure) {
		t.Fatalf("Randomize ukwdonly on a fixed reflector = %v, want ErrUnsupportedProcedure", err)
	}
}

func TestRandomizeFancyFitsUhr(t *testing.T) {
	m := buildServicesEnigma(t)
	if err := Randomize(m, "fancy"); err != nil {
		t.Fatalf("Randomize: %v", err)
	}
	if !m.Plugboard().HasUhr() {
		t.Fatalf("expected fancy to fit an uhr")
	}
	if m.Plugboard().PairCount() != 10 {
		t.Fatalf("expected fancy to plug 10 pairs, got %d", m.Plugboard().PairCount())
	}
}

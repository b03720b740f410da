// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package machine

import (
	"testing"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
	"github.com/go-rotorsim/rotorsim/internal/plugboard"
	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/rotorset"
	"github.com/go-rotorsim/rotorsim/pkg/stepping"
)

const latin = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func buildServicesEnigma(t *testing.T, withPlugboard bool) *RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("services-enigma")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	mount := func(id string) *rotor.Rotor {
		entry, err := set.Lookup(id)
		if err != nil {
			t.Fatalf("lookup rotor %s: %v", id, err)
		}
		return rotor.New(entry.Descriptor, entry.Ring)
	}
	r1, r2, r3 := mount("I"), mount("II"), mount("III")
	ukwB, err := set.Lookup("UKW-B")
	if err != nil {
		t.Fatalf("lookup UKW-B: %v", err)
	}
	refl, err := reflector.New("UKW-B", ukwB.Descriptor.Perm, false)
	if err != nil {
		t.Fatalf("build reflector: %v", err)
	}
	gear, err := stepping.NewEnigma3(latin, [3]*rotor.Rotor{r1, r2, r3}, refl)
	if err != nil {
		t.Fatalf("NewEnigma3: %v", err)
	}

	alph, err := alphabet.New([]rune(latin))
	if err != nil {
		t.Fatalf("alphabet.New: %v", err)
	}

	var pb *plugboard.Plugboard
	if withPlugboard {
		pb, err = plugboard.New(alph)
		if err != nil {
			t.Fatalf("plugboard.New: %v", err)
		}
		if err := pb.AddPair('A', 'B'); err != nil {
			t.Fatalf("AddPair: %v", err)
		}
		if err := pb.AddPair('C', 'D'); err != nil {
			t.Fatalf("AddPair: %v", err)
		}
	}

	m, err := New("Services Enigma", "services-enigma", "services-enigma", alph, gear, pb, []*rotor.Rotor{r1, r2, r3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc := buildServicesEnigma(t, true)
	if err := enc.SetPositions("AAA"); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	plaintext := "HELLOWORLDTHISISATEST"
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ciphertext == plaintext {
		t.Errorf("ciphertext equals plaintext")
	}

	dec := buildServicesEnigma(t, true)
	if err := dec.SetPositions("AAA"); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	recovered, err := dec.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != plaintext {
		t.Errorf("recovered = %q, want %q", recovered, plaintext)
	}
}

func TestEncryptRejectsUnknownSymbol(t *testing.T) {
	m := buildServicesEnigma(t, false)
	if err := m.SetPositions("AAA"); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	if _, err := m.EncryptRune('1'); err == nil {
		t.Errorf("expected ErrUnknownSymbol for a digit input")
	}
}

func TestStepAdvancesWithoutEncrypting(t *testing.T) {
	m := buildServicesEnigma(t, false)
	if err := m.SetPositions("AAA"); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	positions := m.Step(3)
	if len(positions) != 3 {
		t.Fatalf("Step(3) returned %d entries", len(positions))
	}
	if positions[2] != m.GetPositions() {
		t.Errorf("GetPositions() = %q after Step, want %q", m.GetPositions(), positions[2])
	}
	if positions[0] == positions[1] {
		t.Errorf("consecutive steps produced identical positions")
	}
}

func TestGetRotorSetNamesAndSwap(t *testing.T) {
	m := buildServicesEnigma(t, false)
	names := m.GetRotorSetNames()
	want := []string{"I", "II", "III"}
	for i, w := range want {
		if names[i] != w {
			t.Errorf("slot %d = %q, want %q", i, names[i], w)
		}
	}
	if err := m.SetRotorSetState("services-enigma", []string{"IV", "V", "I"}); err != nil {
		t.Fatalf("SetRotorSetState: %v", err)
	}
	names = m.GetRotorSetNames()
	want = []string{"IV", "V", "I"}
	for i, w := range want {
		if names[i] != w {
			t.Errorf("slot %d after swap = %q, want %q", i, names[i], w)
		}
	}
}

func TestSigabaSetupRejectedOnNonSigabaMachine(t *testing.T) {
	m := buildServicesEnigma(t, false)
	if err := m.SigabaSetup(0, 1); err == nil {
		t.Errorf("expected SigabaSetup to fail on a non-sigaba machine")
	}
}

func TestGoToLetterStateResetsShiftMode(t *testing.T) {
	m := buildServicesEnigma(t, false)
	m.SetShiftMode("figures")
	m.GoToLetterState()
	if m.ShiftMode() != "letters" {
		t.Errorf("ShiftMode() = %q, want %q", m.ShiftMode(), "letters")
	}
}

func buildSigaba(t *testing.T) *RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("sigaba")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	ids := set.IDs()
	if len(ids) < 15 {
		t.Fatalf("sigaba set has only %d entries", len(ids))
	}
	mount := func(id string) *rotor.Rotor {
		entry, err := set.Lookup(id)
		if err != nil {
			t.Fatalf("lookup rotor %s: %v", id, err)
		}
		return rotor.New(entry.Descriptor, entry.Ring)
	}
	var cipher, control, index [5]*rotor.Rotor
	var slots []*rotor.Rotor
	for i := 0; i < 5; i++ {
		cipher[i] = mount(ids[i])
		slots = append(slots, cipher[i])
	}
	for i := 0; i < 5; i++ {
		control[i] = mount(ids[i+5])
		slots = append(slots, control[i])
	}
	for i := 0; i < 5; i++ {
		index[i] = mount(ids[i+10])
		slots = append(slots, index[i])
	}
	gear, err := stepping.NewSIGABAGear(latin, cipher, control, index, false)
	if err != nil {
		t.Fatalf("NewSIGABAGear: %v", err)
	}
	alph, err := alphabet.New([]rune(latin))
	if err != nil {
		t.Fatalf("alphabet.New: %v", err)
	}
	m, err := New("SIGABA CSP-889", "sigaba", "sigaba", alph, gear, nil, slots)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestSigabaSetupAdvancesControlRotor(t *testing.T) {
	m := buildSigaba(t)
	if err := m.SetPositions(latin[:15]); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	before := m.GetPositions()
	if err := m.SigabaSetup(1, 3); err != nil {
		t.Fatalf("SigabaSetup: %v", err)
	}
	after := m.GetPositions()
	if before == after {
		t.Errorf("SigabaSetup did not change any position")
	}
	// Only the control bank (characters 5-9) should have moved.
	if before[:5] != after[:5] {
		t.Errorf("cipher bank moved during setup stepping: %q -> %q", before[:5], after[:5])
	}
	if before[10:] != after[10:] {
		t.Errorf("index bank moved during setup stepping: %q -> %q", before[10:], after[10:])
	}
}

func TestSigabaEncryptDecryptRoundTrip(t *testing.T) {
	enc := buildSigaba(t)
	if err := enc.SetPositions(latin[:15]); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	plaintext := "ATTACKATDAWN"
	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	dec := buildSigaba(t)
	if err := dec.SetPositions(latin[:15]); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	recovered, err := dec.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != plaintext {
		t.Errorf("recovered = %q, want %q", recovered, plaintext)
	}
}

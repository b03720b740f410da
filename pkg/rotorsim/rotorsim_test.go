// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package rotorsim

import (
	"strconv"
	"testing"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
	"github.com/go-rotorsim/rotorsim/internal/plugboard"
	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/rotorset"
	"github.com/go-rotorsim/rotorsim/pkg/state"
	"github.com/go-rotorsim/rotorsim/pkg/stepping"
)

func mustAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	alph, err := alphabet.New([]rune(latin))
	if err != nil {
		t.Fatalf("alphabet.New: %v", err)
	}
	return alph
}

func mountFrom(t *testing.T, set *rotorset.Set, id string, ring, window rune) *rotor.Rotor {
	t.Helper()
	entry, err := set.Lookup(id)
	if err != nil {
		t.Fatalf("lookup %s: %v", id, err)
	}
	r := rotor.New(entry.Descriptor, entry.Ring)
	r.SetRingOffset(int(ring - 'A'))
	r.SetWindow(int(window - 'A'))
	return r
}

// --- Scenario 1: M4, grounded on the real historical wiring retrieved with
// the teacher repository. ----------------------------------------------------

func buildM4Scenario1(t *testing.T) *machine.RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("m4-enigma")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	greek := mountFrom(t, set, "Beta", 'A', 'V')
	r1 := mountFrom(t, set, "I", 'A', 'J')
	r2 := mountFrom(t, set, "IV", 'A', 'N')
	r3 := mountFrom(t, set, "II", 'V', 'A')

	ukw, err := set.Lookup("UKW-B-Thin")
	if err != nil {
		t.Fatalf("lookup UKW-B-Thin: %v", err)
	}
	refl, err := reflector.New("UKW-B-Thin", ukw.Descriptor.Perm, false)
	if err != nil {
		t.Fatalf("reflector.New: %v", err)
	}

	gear, err := stepping.NewEnigma4(latin, greek, [3]*rotor.Rotor{r1, r2, r3}, refl)
	if err != nil {
		t.Fatalf("NewEnigma4: %v", err)
	}

	alph := mustAlphabet(t)
	pb, err := plugboard.New(alph)
	if err != nil {
		t.Fatalf("plugboard.New: %v", err)
	}
	cabling := "ATBLDFGJHMNWOPQYRZVX"
	for i := 0; i+1 < len(cabling); i += 2 {
		if err := pb.AddPair(rune(cabling[i]), rune(cabling[i+1])); err != nil {
			t.Fatalf("AddPair %c%c: %v", cabling[i], cabling[i+1], err)
		}
	}

	m, err := machine.New("M4", "m4-enigma", "m4-enigma", alph, gear, pb, []*rotor.Rotor{greek, r1, r2, r3})
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	return m
}

const (
	scenario1Ciphertext = "NCZWVUSXPNYMINHZXMQXSFWXWLKJAHSHNMCOCCAKUQPMKCSMHKSEINJUSBLKIOSXCKUBHMLLXCSJUSRRDVKOHULXWCCBGVLIYXEOAHXRHKKFVDREWEZ"
	scenario1Plaintext  = "VONVONJLOOKSJHFFTTTEINSEINSDREIZWOYYQNNSNEUNINHALTXXBEIANGRIFFUNTERWASSERGEDRUECKTYWABOSXLETZTERGEGNERSTANDNULACHTD"
)

func TestM4Scenario1GoldenDecrypt(t *testing.T) {
	m := buildM4Scenario1(t)
	got, err := m.Decrypt(scenario1Ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if got != scenario1Plaintext {
		t.Fatalf("Decrypt = %q, want %q", got, scenario1Plaintext)
	}
}

func TestM4Scenario1SurvivesStateRoundTrip(t *testing.T) {
	m := buildM4Scenario1(t)

	st, err := Capture(m)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	parsed, err := state.Parse(st.Serialise())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	restored, err := Build(parsed)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, err := restored.Decrypt(scenario1Ciphertext)
	if err != nil {
		t.Fatalf("Decrypt after round trip: %v", err)
	}
	if got != scenario1Plaintext {
		t.Fatalf("Decrypt after round trip = %q, want %q", got, scenario1Plaintext)
	}
}

// --- Universal round-trip coverage for every other family, built on the
// placeholder rotor sets (see pkg/rotorset/placeholder.go): only encrypt/
// decrypt/state-round-trip invariants are asserted, not historical
// ciphertexts, since no grounded wiring data for these families was
// retrieved alongside the teacher. -----------------------------------------

func roundTripThroughState(t *testing.T, m *machine.RotorMachine) *machine.RotorMachine {
	t.Helper()
	st, err := Capture(m)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	parsed, err := state.Parse(st.Serialise())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	restored, err := Build(parsed)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return restored
}

func buildServicesEnigma(t *testing.T) *machine.RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("services-enigma")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	r1 := mountFrom(t, set, "I", 'A', 'A')
	r2 := mountFrom(t, set, "II", 'A', 'A')
	r3 := mountFrom(t, set, "III", 'A', 'A')
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
	alph := mustAlphabet(t)
	pb, err := plugboard.New(alph)
	if err != nil {
		t.Fatalf("plugboard.New: %v", err)
	}
	if err := pb.AddPair('A', 'B'); err != nil {
		t.Fatalf("AddPair: %v", err)
	}
	m, err := machine.New("Services Enigma", "services-enigma", "services-enigma", alph, gear, pb, []*rotor.Rotor{r1, r2, r3})
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	return m
}

func TestEnigma3SurvivesStateRoundTrip(t *testing.T) {
	enc := buildServicesEnigma(t)
	ciphertext, err := enc.Encrypt("ATTACKATDAWNXX")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	restored := roundTripThroughState(t, buildServicesEnigma(t))
	recovered, err := restored.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != "ATTACKATDAWNXX" {
		t.Fatalf("recovered = %q, want %q", recovered, "ATTACKATDAWNXX")
	}
}

func buildTypexMachine(t *testing.T) *machine.RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("typex")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	s1 := mountFrom(t, set, "1", 'A', 'A')
	s2 := mountFrom(t, set, "2", 'A', 'A')
	r3 := mountFrom(t, set, "3", 'A', 'A')
	r4 := mountFrom(t, set, "4", 'A', 'A')
	r5 := mountFrom(t, set, "5", 'A', 'A')
	ukw, err := set.Lookup("UKW")
	if err != nil {
		t.Fatalf("lookup UKW: %v", err)
	}
	refl, err := reflector.New("UKW", ukw.Descriptor.Perm, false)
	if err != nil {
		t.Fatalf("reflector.New: %v", err)
	}
	gear, err := stepping.NewTypex(latin, [2]*rotor.Rotor{s1, s2}, [3]*rotor.Rotor{r3, r4, r5}, refl)
	if err != nil {
		t.Fatalf("NewTypex: %v", err)
	}
	alph := mustAlphabet(t)
	m, err := machine.New("Typex", "typex", "typex", alph, gear, nil, []*rotor.Rotor{s1, s2, r3, r4, r5})
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	return m
}

func TestTypexSurvivesStateRoundTrip(t *testing.T) {
	enc := buildTypexMachine(t)
	ciphertext, err := enc.Encrypt("HELLOWORLD")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	restored := roundTripThroughState(t, buildTypexMachine(t))
	recovered, err := restored.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != "HELLOWORLD" {
		t.Fatalf("recovered = %q, want %q", recovered, "HELLOWORLD")
	}
}

func buildSigabaMachine(t *testing.T) *machine.RotorMachine {
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
			t.Fatalf("lookup %s: %v", id, err)
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
	alph := mustAlphabet(t)
	m, err := machine.New("SIGABA CSP-889", "sigaba", "sigaba", alph, gear, nil, slots)
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	return m
}

func TestSigabaSurvivesStateRoundTrip(t *testing.T) {
	enc := buildSigabaMachine(t)
	if err := enc.SetPositions(latin[:15]); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	ciphertext, err := enc.Encrypt("ATTACKATDAWN")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	source := buildSigabaMachine(t)
	if err := source.SetPositions(latin[:15]); err != nil {
		t.Fatalf("SetPositions: %v", err)
	}
	restored := roundTripThroughState(t, source)
	recovered, err := restored.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != "ATTACKATDAWN" {
		t.Fatalf("recovered = %q, want %q", recovered, "ATTACKATDAWN")
	}
}

func buildKL7Machine(t *testing.T) *machine.RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("kl7")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	var slots [8]*rotor.Rotor
	var flat []*rotor.Rotor
	for i := 0; i < 8; i++ {
		entry, err := set.Lookup(rotorsetIndex(i))
		if err != nil {
			t.Fatalf("lookup kl7 slot %d: %v", i, err)
		}
		r := rotor.New(entry.Descriptor, entry.Ring)
		slots[i] = r
		flat = append(flat, r)
	}
	gear, err := stepping.NewKL7(latin, slots)
	if err != nil {
		t.Fatalf("NewKL7: %v", err)
	}
	alph := mustAlphabet(t)
	m, err := machine.New("KL-7", "kl7", "kl7", alph, gear, nil, flat)
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	return m
}

func rotorsetIndex(i int) string {
	return strconv.Itoa(i + 1)
}

func TestKL7SurvivesStateRoundTrip(t *testing.T) {
	enc := buildKL7Machine(t)
	ciphertext, err := enc.Encrypt("HELLOWORLD")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	restored := roundTripThroughState(t, buildKL7Machine(t))
	recovered, err := restored.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != "HELLOWORLD" {
		t.Fatalf("recovered = %q, want %q", recovered, "HELLOWORLD")
	}
}

func buildNemaMachine(t *testing.T) *machine.RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("nema")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	mount := func(id string) *rotor.Rotor {
		entry, err := set.Lookup(id)
		if err != nil {
			t.Fatalf("lookup %s: %v", id, err)
		}
		return rotor.New(entry.Descriptor, entry.Ring)
	}
	var drive, cipher [nemaPairCount]*rotor.Rotor
	var slots []*rotor.Rotor
	for i := 0; i < nemaPairCount; i++ {
		drive[i] = mount(rotorsetIndex(i))
		slots = append(slots, drive[i])
	}
	for i := 0; i < nemaPairCount; i++ {
		cipher[i] = mount(rotorsetIndex(i + nemaPairCount))
		slots = append(slots, cipher[i])
	}
	ukw, err := set.Lookup("UKW")
	if err != nil {
		t.Fatalf("lookup UKW: %v", err)
	}
	refl, err := reflector.New("UKW", ukw.Descriptor.Perm, false)
	if err != nil {
		t.Fatalf("reflector.New: %v", err)
	}
	gear, err := stepping.NewNema(latin, drive[:], cipher[:], refl)
	if err != nil {
		t.Fatalf("NewNema: %v", err)
	}
	alph := mustAlphabet(t)
	m, err := machine.New("Nema", "nema", "nema", alph, gear, nil, slots)
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	return m
}

func TestNemaSurvivesStateRoundTrip(t *testing.T) {
	enc := buildNemaMachine(t)
	ciphertext, err := enc.Encrypt("HELLOWORLD")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	restored := roundTripThroughState(t, buildNemaMachine(t))
	recovered, err := restored.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != "HELLOWORLD" {
		t.Fatalf("recovered = %q, want %q", recovered, "HELLOWORLD")
	}
}

func buildSG39Machine(t *testing.T) *machine.RotorMachine {
	t.Helper()
	set, err := rotorset.Lookup("sg39")
	if err != nil {
		t.Fatalf("lookup set: %v", err)
	}
	mount := func(id string) *rotor.Rotor {
		entry, err := set.Lookup(id)
		if err != nil {
			t.Fatalf("lookup %s: %v", id, err)
		}
		return rotor.New(entry.Descriptor, entry.Ring)
	}
	rotors := [3]*rotor.Rotor{mount("1"), mount("2"), mount("3")}
	ukw, err := set.Lookup("UKW")
	if err != nil {
		t.Fatalf("lookup UKW: %v", err)
	}
	refl, err := reflector.New("UKW", ukw.Descriptor.Perm, false)
	if err != nil {
		t.Fatalf("reflector.New: %v", err)
	}
	pinLengths := [3]int{21, 23, 25}
	pinCams := [3][]int{{0, 5, 10}, {1, 6, 11}, {2, 7, 12}}
	gear, err := stepping.NewSG39(latin, rotors, pinLengths, pinCams, refl)
	if err != nil {
		t.Fatalf("NewSG39: %v", err)
	}
	alph := mustAlphabet(t)
	pb, err := plugboard.New(alph)
	if err != nil {
		t.Fatalf("plugboard.New: %v", err)
	}
	if err := pb.AddPair('A', 'B'); err != nil {
		t.Fatalf("AddPair: %v", err)
	}
	m, err := machine.New("SG-39", "sg39", "sg39", alph, gear, pb, rotors[:])
	if err != nil {
		t.Fatalf("machine.New: %v", err)
	}
	return m
}

func TestSG39SurvivesStateRoundTrip(t *testing.T) {
	enc := buildSG39Machine(t)
	ciphertext, err := enc.Encrypt("HELLOWORLD")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	restored := roundTripThroughState(t, buildSG39Machine(t))
	recovered, err := restored.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if recovered != "HELLOWORLD" {
		t.Fatalf("recovered = %q, want %q", recovered, "HELLOWORLD")
	}
}

func TestBuildRejectsUnknownMachineType(t *testing.T) {
	st := state.New("bogus", "bogus", "bogus")
	if _, err := Build(st); err == nil {
		t.Fatalf("expected an error for an unknown machine type")
	}
}

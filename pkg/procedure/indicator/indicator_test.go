// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package indicator

import "testing"

const latin = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func shift(s string, off byte) string {
	out := []byte(s)
	for i, b := range out {
		out[i] = 'A' + (b-'A'+off)%26
	}
	return string(out)
}

func offsetOf(positions string) byte {
	var sum int
	for _, r := range positions {
		sum += int(r - 'A')
	}
	return byte(sum % 26)
}

// fakeMachine is a minimal stand-in for pkg/machine.RotorMachine: encryption
// is a Caesar shift keyed by the sum of the current rotor positions, which
// is enough to exercise every indicator processor's control flow without a
// real rotor stack.
type fakeMachine struct {
	positions string
}

func (m *fakeMachine) SetPositions(positions string) error { m.positions = positions; return nil }
func (m *fakeMachine) GetPositions() string                { return m.positions }
func (m *fakeMachine) Encrypt(plaintext string) (string, error) {
	return shift(plaintext, offsetOf(m.positions)), nil
}
func (m *fakeMachine) Decrypt(ciphertext string) (string, error) {
	return shift(ciphertext, (26-offsetOf(m.positions))%26), nil
}
func (m *fakeMachine) GoToLetterState() {}
func (m *fakeMachine) Step(n int) []string {
	return nil
}
func (m *fakeMachine) SigabaSetup(rotorIndex, n int) error {
	pos := []rune(m.positions)
	idx := 5 + rotorIndex
	if idx < 0 || idx >= len(pos) {
		return ErrInvalidIndicator
	}
	pos[idx] = 'A' + rune((int(pos[idx]-'A')+n)%26)
	m.positions = string(pos)
	return nil
}

// fakeRandom returns a fixed sequence of strings and a fixed permutation,
// giving tests full control over which candidates an indicator processor
// tries.
type fakeRandom struct {
	strings []string
	idx     int
	perm    []int
}

func (f *fakeRandom) String(alphabet string, size int) (string, error) {
	s := f.strings[f.idx]
	f.idx++
	return s, nil
}

func (f *fakeRandom) Permutation(n int) ([]int, error) {
	if f.perm != nil {
		return f.perm, nil
	}
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm, nil
}

func TestPost1940RoundTrip(t *testing.T) {
	rnd := &fakeRandom{strings: []string{"ABC", "XYZ", "QQ"}}
	proc := NewPost1940Enigma(rnd, latin, []string{"AAA", "BBB"}, 3)
	m := &fakeMachine{}

	created, err := proc.CreateIndicators(m, 1, 1)
	if err != nil {
		t.Fatalf("CreateIndicators: %v", err)
	}
	if created[MessageKey] != "ABC" {
		t.Errorf("MessageKey = %q, want %q", created[MessageKey], "ABC")
	}
	if created[Kenngruppe] != "QQAAA" {
		t.Errorf("Kenngruppe = %q, want %q", created[Kenngruppe], "QQAAA")
	}

	derived, err := proc.DeriveMessageKey(m, Result{HeaderGrp1: created[HeaderGrp1], HeaderGrp2: created[HeaderGrp2]})
	if err != nil {
		t.Fatalf("DeriveMessageKey: %v", err)
	}
	if derived[MessageKey] != created[MessageKey] {
		t.Errorf("derived MessageKey = %q, want %q", derived[MessageKey], created[MessageKey])
	}
}

func TestPre1940RoundTrip(t *testing.T) {
	rnd := &fakeRandom{strings: []string{"ABC", "QQ"}}
	proc := NewPre1940Enigma(rnd, latin, []string{"CCC"}, "GGG", 3)
	m := &fakeMachine{}

	created, err := proc.CreateIndicators(m, 1, 1)
	if err != nil {
		t.Fatalf("CreateIndicators: %v", err)
	}
	derived, err := proc.DeriveMessageKey(m, Result{HeaderGrp1: created[HeaderGrp1], HeaderGrp2: created[HeaderGrp2]})
	if err != nil {
		t.Fatalf("DeriveMessageKey: %v", err)
	}
	if derived[MessageKey] != created[MessageKey] {
		t.Errorf("derived MessageKey = %q, want %q", derived[MessageKey], created[MessageKey])
	}
}

func TestPre1940RejectsMismatchedHeaderGroups(t *testing.T) {
	proc := NewPre1940Enigma(&fakeRandom{}, latin, nil, "GGG", 3)
	m := &fakeMachine{}
	_, err := proc.DeriveMessageKey(m, Result{HeaderGrp1: "AAA", HeaderGrp2: "BBB"})
	if err == nil {
		t.Errorf("expected an error when the two header groups decrypt differently")
	}
}

func TestGrundstellungRoundTrip(t *testing.T) {
	rnd := &fakeRandom{strings: []string{"ABCDE"}}
	proc := NewGrundstellung(rnd, latin, 5, false)
	proc.SetGrundstellung("GGGGG")
	m := &fakeMachine{}

	created, err := proc.CreateIndicators(m, 1, 1)
	if err != nil {
		t.Fatalf("CreateIndicators: %v", err)
	}

	derived, err := proc.DeriveMessageKey(m, Result{RandIndicator: created[RandIndicator]})
	if err != nil {
		t.Fatalf("DeriveMessageKey: %v", err)
	}
	if derived[MessageKey] != created[MessageKey] {
		t.Errorf("derived MessageKey = %q, want %q", derived[MessageKey], created[MessageKey])
	}
}

func TestSIGABAGrundstellungRoundTrip(t *testing.T) {
	rnd := &fakeRandom{strings: []string{"ABCDE"}}
	proc := NewSIGABAGrundstellung(rnd)
	proc.SetGrundstellung("GGGGG")

	senderInit := "AAAAABBBBBCCCCC"
	sender := &fakeMachine{positions: senderInit}
	created, err := proc.CreateIndicators(sender, 1, 1)
	if err != nil {
		t.Fatalf("CreateIndicators: %v", err)
	}

	receiver := &fakeMachine{positions: senderInit}
	derived, err := proc.DeriveMessageKey(receiver, Result{InternalIndicator: created[InternalIndicator]})
	if err != nil {
		t.Fatalf("DeriveMessageKey: %v", err)
	}
	if derived[MessageKey] != created[MessageKey] {
		t.Errorf("derived MessageKey = %q, want %q", derived[MessageKey], created[MessageKey])
	}
}

func TestSIGABABasicSetupStepping(t *testing.T) {
	rnd := &fakeRandom{strings: []string{"ABCDE"}}
	proc := NewSIGABABasic(rnd)

	m := &fakeMachine{positions: "AAAAABBBBBCCCCC"}
	created, err := proc.CreateIndicators(m, 1, 1)
	if err != nil {
		t.Fatalf("CreateIndicators: %v", err)
	}
	control := created[MessageKey][5:10]
	if control != "ABCDE" {
		t.Errorf("control rotors after setup stepping = %q, want %q", control, "ABCDE")
	}

	m2 := &fakeMachine{positions: "AAAAABBBBBCCCCC"}
	derived, err := proc.DeriveMessageKey(m2, Result{InternalIndicator: created[InternalIndicator]})
	if err != nil {
		t.Fatalf("DeriveMessageKey: %v", err)
	}
	if derived[MessageKey] != created[MessageKey] {
		t.Errorf("derived MessageKey = %q, want %q", derived[MessageKey], created[MessageKey])
	}
}

func TestSIGABABasicRejectsIndicatorWithO(t *testing.T) {
	proc := NewSIGABABasic(&fakeRandom{})
	m := &fakeMachine{positions: "AAAAABBBBBCCCCC"}
	_, err := proc.DeriveMessageKey(m, Result{InternalIndicator: "ABODE"})
	if err == nil {
		t.Errorf("expected an error for an indicator containing 'O'")
	}
}

func TestCryptoRandomStringUsesAlphabet(t *testing.T) {
	r := CryptoRandom{}
	s, err := r.String("AB", 100)
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	for _, c := range s {
		if c != 'A' && c != 'B' {
			t.Fatalf("String produced character %q outside alphabet", c)
		}
	}
}

func TestCryptoRandomPermutationIsPermutation(t *testing.T) {
	r := CryptoRandom{}
	perm, err := r.Permutation(10)
	if err != nil {
		t.Fatalf("Permutation: %v", err)
	}
	seen := make(map[int]bool)
	for _, v := range perm {
		if v < 0 || v >= 10 || seen[v] {
			t.Fatalf("Permutation is not a valid permutation: %v", perm)
		}
		seen[v] = true
	}
}

// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package encoder

import "testing"

func TestBasicFiltersAndLowercases(t *testing.T) {
	b := NewBasic("abcdefghijklmnopqrstuvwxyz")
	got, err := b.Encode("Hello, World! 123")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got != "helloworld" {
		t.Errorf("Encode() = %q, want %q", got, "helloworld")
	}
}

func TestArmyEncodeDecode(t *testing.T) {
	a := NewArmy()
	got, err := a.Encode("Achtung?")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "aqtungfragez"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestArmyDecodePreservesQu(t *testing.T) {
	a := NewArmy()
	got, err := a.Decode("quelle")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "quelle" {
		t.Errorf("Decode(%q) = %q, want %q", "quelle", got, "quelle")
	}
}

func TestSIGABAEncodeSpacesAndZ(t *testing.T) {
	s := NewSIGABA()
	got, err := s.Encode("sea base z")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "seazbasezx"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestSIGABADecodeRestoresSpaces(t *testing.T) {
	s := NewSIGABA()
	got, err := s.Decode("seazbase")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "sea base" {
		t.Errorf("Decode() = %q, want %q", got, "sea base")
	}
}

func TestShiftingWrapsFiguresOnlyCharacters(t *testing.T) {
	s := NewShifting("abc", "123")
	got, err := s.Encode("a1b2c3")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := "a>1<b>2<c>3<"
	if got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
	back, err := s.Decode(got)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back != "a1b2c3" {
		t.Errorf("Decode() = %q, want %q", back, "a1b2c3")
	}
}

func TestKL7PreFilter(t *testing.T) {
	got := KL7PreFilter("Jazz")
	if got != "iaxx" {
		t.Errorf("KL7PreFilter() = %q, want %q", got, "iaxx")
	}
}

func TestModernRoundTripWithoutVigenere(t *testing.T) {
	m := NewModern(9, false)
	plaintext := "the quick brown fox"
	encoded, err := m.Encode(plaintext)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := m.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != plaintext {
		t.Errorf("Decode(Encode(%q)) = %q", plaintext, decoded)
	}
}

func TestModernRoundTripWithVigenere(t *testing.T) {
	m := NewModern(9, true)
	plaintext := "attack at dawn, 1945!"
	encoded, err := m.Encode(plaintext)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for _, r := range encoded {
		found := false
		for _, a := range m.allChars {
			if r == a {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("encoded output contains character %q outside the encoder alphabet", r)
		}
	}
	decoded, err := m.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != plaintext {
		t.Errorf("Decode(Encode(%q)) = %q", plaintext, decoded)
	}
}

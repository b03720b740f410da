package plugboard

import (
	"testing"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
)

func fullAlphabet(t *testing.T) *alphabet.Alphabet {
	t.Helper()
	a, err := alphabet.New([]rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	if err != nil {
		t.Fatalf("alphabet.New: %v", err)
	}
	return a
}

func tenPairs() [][2]rune {
	letters := []rune("ABCDEFGHIJKLMNOPQRST")
	pairs := make([][2]rune, 0, 10)
	for i := 0; i < len(letters); i += 2 {
		pairs = append(pairs, [2]rune{letters[i], letters[i+1]})
	}
	return pairs
}

func TestUhrProcessIsReciprocal(t *testing.T) {
	alph := fullAlphabet(t)
	u, err := NewUhr(alph, tenPairs(), 7)
	if err != nil {
		t.Fatalf("NewUhr: %v", err)
	}
	for i := 0; i < alph.Size(); i++ {
		out := u.Process(i)
		if u.Process(out) != i {
			t.Errorf("Uhr mapping not reciprocal at %d", i)
		}
	}
}

func TestUhrDialPositionChangesWiring(t *testing.T) {
	alph := fullAlphabet(t)
	u, err := NewUhr(alph, tenPairs(), 0)
	if err != nil {
		t.Fatalf("NewUhr: %v", err)
	}
	aIdx, _ := alph.RuneToIndex('A')
	before := u.Process(aIdx)

	u.SetDialPosition(5)
	after := u.Process(aIdx)

	if before == after {
		t.Errorf("rotating the dial should change the wiring")
	}
}

func TestUhrRejectsWrongPairCount(t *testing.T) {
	alph := fullAlphabet(t)
	if _, err := NewUhr(alph, tenPairs()[:9], 0); err == nil {
		t.Fatalf("expected error for fewer than 10 pairs")
	}
}

func TestUhrRejectsOutOfRangeDial(t *testing.T) {
	alph := fullAlphabet(t)
	if _, err := NewUhr(alph, tenPairs(), 40); err == nil {
		t.Fatalf("expected error for dial position 40")
	}
}

func TestPlugboardFitUhrRoutesProcess(t *testing.T) {
	alph := fullAlphabet(t)
	pb, err := New(alph)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, pr := range tenPairs() {
		if err := pb.AddPair(pr[0], pr[1]); err != nil {
			t.Fatalf("AddPair: %v", err)
		}
	}
	if err := pb.FitUhr(3); err != nil {
		t.Fatalf("FitUhr: %v", err)
	}
	if !pb.HasUhr() {
		t.Fatalf("HasUhr() should be true after FitUhr")
	}

	withoutUhr := map[int]int{}
	for i := 0; i < 20; i++ {
		withoutUhr[i] = pb.mapping[i]
	}

	differs := false
	for i := 0; i < alph.Size(); i++ {
		if pb.Process(i) != i && pb.Process(i) != withoutUhr[i] {
			differs = true
		}
	}
	if !differs {
		t.Errorf("fitting the uhr should change at least one plugged mapping")
	}
}

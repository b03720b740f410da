// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package procedure

import (
	"strings"
	"testing"

	"github.com/go-rotorsim/rotorsim/pkg/procedure/encoder"
	"github.com/go-rotorsim/rotorsim/pkg/procedure/formatter"
	"github.com/go-rotorsim/rotorsim/pkg/procedure/indicator"
)

func shift(s string, off byte) string {
	out := []byte(s)
	for i, b := range out {
		out[i] = 'a' + (b-'a'+off)%26
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

// fakeMachine mirrors the one in pkg/procedure/indicator: a Caesar shift
// keyed by the rotor position string, lowercase in and out to match the
// transport encoders' alphabet.
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
func (m *fakeMachine) GoToLetterState()               {}
func (m *fakeMachine) Step(n int) []string            { return nil }
func (m *fakeMachine) SigabaSetup(i, n int) error     { return nil }

type fixedRandom struct {
	strings []string
	idx     int
}

func (f *fixedRandom) String(alphabet string, size int) (string, error) {
	s := f.strings[f.idx%len(f.strings)]
	f.idx++
	return s, nil
}

func (f *fixedRandom) Permutation(n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm, nil
}

func buildProcedure(stepBefore bool) *Procedure {
	m := &fakeMachine{positions: "GGGGG"}
	p := New(m, stepBefore)
	p.SetEncoder(encoder.NewBasic("abcdefghijklmnopqrstuvwxyz"))
	p.SetFormatter(formatter.NewGenericFormatter([]string{"rand_indicator"}, 5))

	rnd := &fixedRandom{strings: []string{"abcde", "fghij", "klmno", "pqrst", "uvwxy"}}
	proc := indicator.NewGrundstellung(rnd, "abcdefghijklmnopqrstuvwxyz", 5, false)
	proc.SetGrundstellung("GGGGG")
	p.SetIndicatorProcessor(proc)
	p.SetMsgSize(10)

	return p
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	p := buildProcedure(false)
	plaintext := "hello world this is a test message"

	parts, err := p.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(parts) < 2 {
		t.Fatalf("expected the message to split into multiple parts, got %d", len(parts))
	}

	combined := strings.Join(parts, "\n\n")
	decrypted, err := p.Decrypt(combined)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	wantFiltered := strings.ReplaceAll(plaintext, " ", "")
	if decrypted != wantFiltered {
		t.Errorf("Decrypt(Encrypt(%q)) = %q, want %q", plaintext, decrypted, wantFiltered)
	}
}

func TestEncryptRequiresConfiguration(t *testing.T) {
	m := &fakeMachine{positions: "GGGGG"}
	p := New(m, false)
	if _, err := p.Encrypt("hello"); err == nil {
		t.Errorf("expected an error when encoder/formatter/indicator processor are unset")
	}
}

func TestParseMessagePartsSeparatesHeaderAndBody(t *testing.T) {
	text := "HEADER ONE\n\nBODY LINE A\nBODY LINE B\n\nHEADER TWO\n\nBODY TWO"
	parts := ParseMessageParts(text)
	if len(parts) != 2 {
		t.Fatalf("ParseMessageParts returned %d parts, want 2", len(parts))
	}
	if parts[0].Header != "HEADER ONE" {
		t.Errorf("parts[0].Header = %q, want %q", parts[0].Header, "HEADER ONE")
	}
	if parts[0].Body != "BODY LINE ABODY LINE B" {
		t.Errorf("parts[0].Body = %q, want %q", parts[0].Body, "BODY LINE ABODY LINE B")
	}
	if parts[1].Header != "HEADER TWO" || parts[1].Body != "BODY TWO" {
		t.Errorf("parts[1] = %+v", parts[1])
	}
}

func TestSpecialCharIndicatorHelper(t *testing.T) {
	h := NewSpecialCharIndicatorHelper("xz")
	if h.Verify("abcxy") {
		t.Errorf("Verify should reject a candidate containing 'x'")
	}
	if !h.Verify("abcde") {
		t.Errorf("Verify should accept a candidate with no reserved characters")
	}
}

func TestSG39IndicatorHelper(t *testing.T) {
	h := SG39IndicatorHelper{}
	test := h.Test("abcdzzzabc")
	if !test.Verified {
		t.Fatalf("expected extraction to succeed, got %+v", test)
	}
	if len(test.Transformed) != 7 {
		t.Errorf("Transformed = %q, want length 7", test.Transformed)
	}

	failing := h.Test("abcdzzzzzz")
	if failing.Verified {
		t.Errorf("expected extraction to fail when no letter is below the wheel size in every slot")
	}
}

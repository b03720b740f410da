// Package indicator implements the indicator processors that generate and
// recover a message part's starting rotor position: the groups an operator
// exchanges in the clear (or lightly enciphered) so the receiver can set up
// their machine identically before the body is decrypted.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package indicator

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// Well-known result keys, mirroring the header fields a formatter lays out
// on the page.
const (
	MessageKey        = "message_key"
	HeaderGrp1         = "start_pos"
	HeaderGrp2         = "encrypted_message_key"
	InternalIndicator  = "internal_indicator"
	ExternalIndicator  = "external_indicator"
	Kenngruppe         = "kenngruppe"
	RandIndicator      = "rand_indicator"
)

// ErrInvalidIndicator is returned when a parsed indicator group fails its
// processor's validity check during decryption.
var ErrInvalidIndicator = errors.New("indicator: invalid indicator group")

// Result carries the indicator groups exchanged between operators, plus the
// derived MessageKey once one side has computed it.
type Result map[string]string

// Machine is the subset of pkg/machine.RotorMachine an indicator processor
// needs: enough to move the rotors around and run trial encryptions without
// depending on the concrete machine type.
type Machine interface {
	SetPositions(positions string) error
	GetPositions() string
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
	GoToLetterState()
	Step(n int) []string
	SigabaSetup(rotorIndex, n int) error
}

// Random supplies the random strings and permutations an indicator
// processor needs to pick candidate keys and kenngruppen. CryptoRandom is
// the production implementation; tests can substitute a fixed sequence.
type Random interface {
	String(alphabet string, size int) (string, error)
	Permutation(n int) ([]int, error)
}

// CryptoRandom draws from crypto/rand, the same source pkg/procedure/encoder
// uses for its Vigenere masking password.
type CryptoRandom struct{}

// String returns a random string of the given size drawn uniformly from
// alphabet.
func (CryptoRandom) String(alphabet string, size int) (string, error) {
	if len(alphabet) == 0 {
		return "", errors.New("indicator: empty alphabet")
	}
	out := make([]byte, size)
	bound := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return "", fmt.Errorf("indicator: random string: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// Permutation returns a uniformly random permutation of 0..n-1 via a
// Fisher-Yates shuffle seeded from crypto/rand.
func (CryptoRandom) Permutation(n int) ([]int, error) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("indicator: random permutation: %w", err)
		}
		perm[i], perm[j.Int64()] = perm[j.Int64()], perm[i]
	}
	return perm, nil
}

// Processor is the interface every indicator scheme implements: build the
// groups for a fresh message part, or recover the message key from groups
// already parsed off the ciphertext of an incoming one.
type Processor interface {
	CreateIndicators(m Machine, thisPart, numParts int) (Result, error)
	DeriveMessageKey(m Machine, parsed Result) (Result, error)
	Reset()
	KeyWords() []string
}

// kenngruppeMixer is embedded by the two Enigma-style processors: it hands
// out a shuffled sequence of three-letter discriminator groups so repeats
// are spread evenly across a day's traffic instead of reused back to back.
type kenngruppeMixer struct {
	rand        Random
	kenngruppen []string
	shuffle     []int
	pos         int
	numRotors   int
	verifier    func(string) bool
}

func newKenngruppeMixer(r Random, kenngruppen []string, numRotors int) kenngruppeMixer {
	return kenngruppeMixer{
		rand:        r,
		kenngruppen: kenngruppen,
		numRotors:   numRotors,
		verifier:    func(s string) bool { return len(s) == numRotors },
	}
}

func (k *kenngruppeMixer) SetKenngruppen(kenngruppen []string) {
	k.kenngruppen = kenngruppen
	k.Reset()
}

func (k *kenngruppeMixer) SetVerifier(v func(string) bool) { k.verifier = v }

func (k *kenngruppeMixer) Reset() {
	k.shuffle = nil
	k.pos = 0
}

func (k *kenngruppeMixer) next() (string, error) {
	if k.pos >= len(k.shuffle) {
		perm, err := k.rand.Permutation(len(k.kenngruppen))
		if err != nil {
			return "", err
		}
		k.shuffle = perm
		k.pos = 0
	}
	idx := k.shuffle[k.pos]
	k.pos++
	return k.kenngruppen[idx], nil
}

// Post1940Enigma implements the German army/air force procedure used from
// 1940 onward: a random starting position and a random message key, the
// latter enciphered at the former and sent alongside it.
type Post1940Enigma struct {
	kenngruppeMixer
	alphabet string
}

// NewPost1940Enigma returns a processor for numRotors settable rotors,
// picking kenngruppen from the given set.
func NewPost1940Enigma(r Random, alphabet string, kenngruppen []string, numRotors int) *Post1940Enigma {
	return &Post1940Enigma{kenngruppeMixer: newKenngruppeMixer(r, kenngruppen, numRotors), alphabet: alphabet}
}

func (p *Post1940Enigma) KeyWords() []string { return []string{HeaderGrp1, HeaderGrp2, Kenngruppe} }

func (p *Post1940Enigma) CreateIndicators(m Machine, thisPart, numParts int) (Result, error) {
	key, err := p.rand.String(p.alphabet, p.numRotors)
	if err != nil {
		return nil, err
	}
	for !p.verifier(key) {
		if key, err = p.rand.String(p.alphabet, p.numRotors); err != nil {
			return nil, err
		}
	}

	startPos, err := p.rand.String(p.alphabet, p.numRotors)
	if err != nil {
		return nil, err
	}
	if err := m.SetPositions(startPos); err != nil {
		return nil, err
	}
	encrypted, err := m.Encrypt(key)
	if err != nil {
		return nil, err
	}
	suffix, err := p.rand.String(p.alphabet, 2)
	if err != nil {
		return nil, err
	}
	group, err := p.next()
	if err != nil {
		return nil, err
	}

	return Result{
		MessageKey: key,
		HeaderGrp1: startPos,
		HeaderGrp2: encrypted,
		Kenngruppe: suffix + group,
	}, nil
}

func (p *Post1940Enigma) DeriveMessageKey(m Machine, parsed Result) (Result, error) {
	if err := m.SetPositions(parsed[HeaderGrp1]); err != nil {
		return nil, err
	}
	key, err := m.Decrypt(parsed[HeaderGrp2])
	if err != nil {
		return nil, err
	}
	if !p.verifier(key) {
		return nil, ErrInvalidIndicator
	}
	parsed[MessageKey] = key
	return parsed, nil
}

// Pre1940Enigma implements the procedure used before 1940: the message key
// is enciphered twice in succession at a fixed daily Grundstellung, the
// relation Polish and British cryptanalysts exploited before the 1940
// change.
type Pre1940Enigma struct {
	kenngruppeMixer
	alphabet      string
	grundstellung string
}

func NewPre1940Enigma(r Random, alphabet string, kenngruppen []string, grundstellung string, numRotors int) *Pre1940Enigma {
	return &Pre1940Enigma{
		kenngruppeMixer: newKenngruppeMixer(r, kenngruppen, numRotors),
		alphabet:        alphabet,
		grundstellung:   grundstellung,
	}
}

func (p *Pre1940Enigma) SetGrundstellung(g string) { p.grundstellung = g }
func (p *Pre1940Enigma) Grundstellung() string     { return p.grundstellung }

func (p *Pre1940Enigma) KeyWords() []string { return []string{HeaderGrp1, HeaderGrp2, Kenngruppe} }

func (p *Pre1940Enigma) CreateIndicators(m Machine, thisPart, numParts int) (Result, error) {
	key, err := p.rand.String(p.alphabet, p.numRotors)
	if err != nil {
		return nil, err
	}
	for !p.verifier(key) {
		if key, err = p.rand.String(p.alphabet, p.numRotors); err != nil {
			return nil, err
		}
	}

	if err := m.SetPositions(p.grundstellung); err != nil {
		return nil, err
	}
	g1, err := m.Encrypt(key)
	if err != nil {
		return nil, err
	}
	g2, err := m.Encrypt(key)
	if err != nil {
		return nil, err
	}
	suffix, err := p.rand.String(p.alphabet, 2)
	if err != nil {
		return nil, err
	}
	group, err := p.next()
	if err != nil {
		return nil, err
	}

	return Result{
		MessageKey: key,
		HeaderGrp1: g1,
		HeaderGrp2: g2,
		Kenngruppe: suffix + group,
	}, nil
}

func (p *Pre1940Enigma) DeriveMessageKey(m Machine, parsed Result) (Result, error) {
	if err := m.SetPositions(p.grundstellung); err != nil {
		return nil, err
	}
	k1, err := m.Decrypt(parsed[HeaderGrp1])
	if err != nil {
		return nil, err
	}
	k2, err := m.Decrypt(parsed[HeaderGrp2])
	if err != nil {
		return nil, err
	}
	if k1 != k2 || !p.verifier(k1) {
		return nil, fmt.Errorf("%w: header groups disagree", ErrInvalidIndicator)
	}
	parsed[MessageKey] = k1
	return parsed, nil
}

// MsgKeyTest is the outcome of validating (and possibly transforming) a
// message key candidate after it has come out of an encryption.
type MsgKeyTest struct {
	Verified   bool
	Transformed string
}

// maxIndicatorAttempts bounds the candidate-search loop in Grundstellung; a
// verifier/transformer pair that never accepts anything is a configuration
// error, not grounds for spinning forever.
const maxIndicatorAttempts = 10000

// Grundstellung implements the generic fixed-starting-position procedure:
// a random indicator is enciphered at a known daily setting, and the result
// becomes the message key. Machines that restrict their input or output
// alphabet (KL7, Typex, SIGABA, SG39) plug in a Transformer and Verifier (and,
// for SG39's last-three-wheel constraint, a Tester) to adapt the generic
// scheme to their quirks.
type Grundstellung struct {
	rand           Random
	alphabet       string
	grundstellung  string
	indicatorSize  int
	stepBeforeProc bool
	keyWord        string
	verifier       func(string) bool
	transformer    func(string) string
	tester         func(string) MsgKeyTest
}

// NewGrundstellung returns a processor producing indicatorSize-letter
// indicators from alphabet. stepBeforeProc advances the machine once before
// the trial encryption, the fix-up KL7 needs because its first symbol is
// consumed by the pre-message cascade.
func NewGrundstellung(r Random, alphabet string, indicatorSize int, stepBeforeProc bool) *Grundstellung {
	return &Grundstellung{
		rand:          r,
		alphabet:      alphabet,
		indicatorSize: indicatorSize,
		stepBeforeProc: stepBeforeProc,
		keyWord:       RandIndicator,
		verifier:      func(s string) bool { return len(s) == indicatorSize },
		transformer:   func(s string) string { return s },
		tester:        func(s string) MsgKeyTest { return MsgKeyTest{Verified: true, Transformed: s} },
	}
}

func (g *Grundstellung) SetGrundstellung(s string)                    { g.grundstellung = s }
func (g *Grundstellung) Grundstellung() string                        { return g.grundstellung }
func (g *Grundstellung) SetVerifier(v func(string) bool)               { g.verifier = v }
func (g *Grundstellung) SetTransformer(t func(string) string)          { g.transformer = t }
func (g *Grundstellung) SetTester(t func(string) MsgKeyTest)           { g.tester = t }
func (g *Grundstellung) Reset()                                        {}
func (g *Grundstellung) KeyWords() []string                           { return []string{g.keyWord} }

func (g *Grundstellung) CreateIndicators(m Machine, thisPart, numParts int) (Result, error) {
	for attempt := 0; attempt < maxIndicatorAttempts; attempt++ {
		candidate, err := g.rand.String(g.alphabet, g.indicatorSize)
		if err != nil {
			return nil, err
		}
		if !g.verifier(g.transformer(candidate)) {
			continue
		}

		if err := m.SetPositions(g.grundstellung); err != nil {
			return nil, err
		}
		m.GoToLetterState()
		if g.stepBeforeProc {
			m.Step(1)
		}

		keyCandidate, err := m.Encrypt(g.transformer(candidate))
		if err != nil {
			return nil, err
		}
		m.GoToLetterState()

		test := g.tester(keyCandidate)
		if test.Verified {
			return Result{g.keyWord: candidate, MessageKey: test.Transformed}, nil
		}
	}
	return nil, fmt.Errorf("indicator: no valid candidate found in %d attempts", maxIndicatorAttempts)
}

func (g *Grundstellung) DeriveMessageKey(m Machine, parsed Result) (Result, error) {
	if err := m.SetPositions(g.grundstellung); err != nil {
		return nil, err
	}
	randIndicator := g.transformer(parsed[g.keyWord])
	if !g.verifier(randIndicator) {
		return nil, ErrInvalidIndicator
	}

	m.GoToLetterState()
	if g.stepBeforeProc {
		m.Step(1)
	}
	keyCandidate, err := m.Encrypt(randIndicator)
	if err != nil {
		return nil, err
	}
	m.GoToLetterState()

	test := g.tester(keyCandidate)
	if !test.Verified {
		return nil, ErrInvalidIndicator
	}
	parsed[MessageKey] = test.Transformed
	return parsed, nil
}

// sigabaBase collects the position-splitting helpers shared by both SIGABA
// indicator schemes: the machine's 15-letter position string always packs
// as cipher(5) + control(5) + index(5).
type sigabaBase struct {
	rand          Random
	indicatorSize int
	keyWord       string
}

func newSigabaBase(r Random) sigabaBase {
	return sigabaBase{rand: r, indicatorSize: 5, keyWord: InternalIndicator}
}

func (s *sigabaBase) Reset()            {}
func (s *sigabaBase) KeyWords() []string { return []string{s.keyWord} }

func splitSigabaPositions(positions string) (cipher, control, index string) {
	return positions[:5], positions[5:10], positions[10:15]
}

// makeIndicator draws a 5-letter indicator excluding O and Z, the two
// letters the SIGABA index rotors treat specially.
func (s *sigabaBase) makeIndicator() (string, error) {
	for {
		candidate, err := s.rand.String("ABCDEFGHIJKLMNPQRSTUVWXY", s.indicatorSize)
		if err != nil {
			return "", err
		}
		if !containsAny(candidate, "OZ") {
			return candidate, nil
		}
	}
}

func containsAny(s, chars string) bool {
	for _, c := range chars {
		for _, r := range s {
			if r == c {
				return true
			}
		}
	}
	return false
}

// SIGABAGrundstellung derives the message key from a random five-letter
// wheel position enciphered at a daily control/cipher Grundstellung, the
// scheme documented as the SIGABA's "basic cryptosystem" indicator method.
type SIGABAGrundstellung struct {
	sigabaBase
	grundstellung string
}

func NewSIGABAGrundstellung(r Random) *SIGABAGrundstellung {
	return &SIGABAGrundstellung{sigabaBase: newSigabaBase(r)}
}

func (s *SIGABAGrundstellung) SetGrundstellung(g string) { s.grundstellung = g }
func (s *SIGABAGrundstellung) Grundstellung() string     { return s.grundstellung }

func (s *SIGABAGrundstellung) CreateIndicators(m Machine, thisPart, numParts int) (Result, error) {
	wheelPos, err := s.makeIndicator()
	if err != nil {
		return nil, err
	}
	_, _, index := splitSigabaPositions(m.GetPositions())
	if err := m.SetPositions(s.grundstellung + s.grundstellung + index); err != nil {
		return nil, err
	}
	encrypted, err := m.Encrypt(wheelPos)
	if err != nil {
		return nil, err
	}
	return Result{
		InternalIndicator: encrypted,
		MessageKey:        wheelPos + wheelPos + index,
	}, nil
}

func (s *SIGABAGrundstellung) DeriveMessageKey(m Machine, parsed Result) (Result, error) {
	_, _, index := splitSigabaPositions(m.GetPositions())
	if err := m.SetPositions(s.grundstellung + s.grundstellung + index); err != nil {
		return nil, err
	}
	decrypted, err := m.Decrypt(parsed[InternalIndicator])
	if err != nil {
		return nil, err
	}
	if containsAny(decrypted, "OZ") {
		return nil, ErrInvalidIndicator
	}
	parsed[MessageKey] = decrypted + decrypted + index
	return parsed, nil
}

// SIGABABasic derives the message key by resetting the cipher and control
// rotors to 'OOOOO' and manually setup-stepping each control rotor to the
// letter given in a random indicator. Setup stepping moves only the control
// rotor it is applied to, so the cipher rotors are still at 'OOOOO' in the
// resulting key.
type SIGABABasic struct {
	sigabaBase
}

func NewSIGABABasic(r Random) *SIGABABasic {
	return &SIGABABasic{sigabaBase: newSigabaBase(r)}
}

func (s *SIGABABasic) CreateIndicators(m Machine, thisPart, numParts int) (Result, error) {
	indicator, err := s.makeIndicator()
	if err != nil {
		return nil, err
	}
	key, err := s.setupStepping(indicator, m)
	if err != nil {
		return nil, err
	}
	return Result{InternalIndicator: indicator, MessageKey: key}, nil
}

func (s *SIGABABasic) DeriveMessageKey(m Machine, parsed Result) (Result, error) {
	indicator := parsed[InternalIndicator]
	if containsAny(indicator, "OZ") {
		return nil, ErrInvalidIndicator
	}
	key, err := s.setupStepping(indicator, m)
	if err != nil {
		return nil, err
	}
	parsed[MessageKey] = key
	return parsed, nil
}

func (s *SIGABABasic) setupStepping(indicator string, m Machine) (string, error) {
	_, _, index := splitSigabaPositions(m.GetPositions())
	if err := m.SetPositions("OOOOO" + "OOOOO" + index); err != nil {
		return "", err
	}

	for i := 0; i < 5; i++ {
		for {
			_, control, _ := splitSigabaPositions(m.GetPositions())
			if control[i] == indicator[i] {
				break
			}
			if err := m.SigabaSetup(i, 1); err != nil {
				return "", err
			}
		}
	}
	return m.GetPositions(), nil
}

// Package procedure composes a transport encoder, a formatter and an
// indicator processor into the end-to-end pipeline that turns plaintext
// into one or more fully formatted, ready-to-transmit message parts and
// back again.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package procedure

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-rotorsim/rotorsim/pkg/procedure/encoder"
	"github.com/go-rotorsim/rotorsim/pkg/procedure/formatter"
	"github.com/go-rotorsim/rotorsim/pkg/procedure/indicator"
)

// ErrNotConfigured is returned when Encrypt or Decrypt is called before an
// encoder, formatter and indicator processor have all been installed.
var ErrNotConfigured = errors.New("procedure: encoder, formatter and indicator processor must all be set")

// MsgPart is a message split back into its header and body lines, ready to
// be handed to a Formatter for parsing.
type MsgPart struct {
	Header string
	Body   string
}

// Procedure drives a rotor machine through a full message: the indicator
// processor decides the starting position for each part and produces the
// groups that communicate it, the formatter lays those groups out around
// the ciphertext, and the encoder adapts plaintext the machine cannot
// natively carry (punctuation, digits, spaces, arbitrary Unicode).
type Procedure struct {
	machine        indicator.Machine
	encoder        encoder.Encoder
	formatter      formatter.Formatter
	indicatorProc  indicator.Processor
	maxMsgSize     int
	stepBeforeProc bool
}

// New returns a procedure bound to machine. stepBeforeProc advances the
// machine once before en/decrypting each part, the accommodation KL7
// message procedures need for their pre-message cascade.
func New(machine indicator.Machine, stepBeforeProc bool) *Procedure {
	return &Procedure{machine: machine, maxMsgSize: 245, stepBeforeProc: stepBeforeProc}
}

func (p *Procedure) MsgSize() int        { return p.maxMsgSize }
func (p *Procedure) SetMsgSize(n int)    { p.maxMsgSize = n }
func (p *Procedure) SetEncoder(e encoder.Encoder)            { p.encoder = e }
func (p *Procedure) SetFormatter(f formatter.Formatter)       { p.formatter = f }
func (p *Procedure) SetIndicatorProcessor(i indicator.Processor) { p.indicatorProc = i }

func (p *Procedure) ready() error {
	if p.encoder == nil || p.formatter == nil || p.indicatorProc == nil {
		return ErrNotConfigured
	}
	return nil
}

// Encrypt splits plaintext into parts no longer than MsgSize characters
// (after transport encoding) and returns each part's fully formatted
// ciphertext.
func (p *Procedure) Encrypt(plaintext string) ([]string, error) {
	if err := p.ready(); err != nil {
		return nil, err
	}
	p.indicatorProc.Reset()
	p.formatter.Reset()

	rawPlaintext, err := p.encoder.Encode(plaintext)
	if err != nil {
		return nil, fmt.Errorf("procedure: encode plaintext: %w", err)
	}

	numParts := len(rawPlaintext) / p.maxMsgSize
	if len(rawPlaintext)%p.maxMsgSize != 0 {
		numParts++
	}
	if numParts == 0 {
		numParts = 1
	}

	p.machine.GoToLetterState()

	var result []string
	remaining := rawPlaintext
	for i := 0; i < numParts; i++ {
		end := p.maxMsgSize
		if end > len(remaining) {
			end = len(remaining)
		}
		part := remaining[:end]
		remaining = remaining[end:]

		formatted, err := p.EncryptPart(part, i+1, numParts)
		if err != nil {
			return nil, err
		}
		result = append(result, formatted)
	}
	return result, nil
}

// EncryptPart encrypts a single already-encoded plaintext chunk and formats
// it into a header and body.
func (p *Procedure) EncryptPart(partPlaintext string, thisPart, numParts int) (string, error) {
	indicators, err := p.indicatorProc.CreateIndicators(p.machine, thisPart, numParts)
	if err != nil {
		return "", fmt.Errorf("procedure: create indicators: %w", err)
	}
	if err := p.machine.SetPositions(indicators[indicator.MessageKey]); err != nil {
		return "", err
	}
	if p.stepBeforeProc {
		p.machine.Step(1)
	}

	ciphertext, err := p.machine.Encrypt(partPlaintext)
	if err != nil {
		return "", err
	}

	body := p.formatter.FormatBody(ciphertext, indicators)
	header := p.formatter.FormatHeader(body, indicators, thisPart, numParts)

	return header + "\n\n" + body.Text, nil
}

// ParseMessageParts splits a combined ciphertext into its message parts:
// header and body lines separated by at least one blank line, each part
// itself separated from the next by at least one blank line.
func ParseMessageParts(ciphertext string) []MsgPart {
	var parts []MsgPart
	lookForHeader := true
	lastLineEmpty := true
	current := MsgPart{}

	for _, line := range strings.Split(ciphertext, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			lastLineEmpty = false
			if lookForHeader {
				current.Header += trimmed
			} else {
				current.Body += trimmed
			}
			continue
		}
		if !lastLineEmpty {
			if !lookForHeader {
				parts = append(parts, current)
				current = MsgPart{}
			}
			lookForHeader = !lookForHeader
		}
		lastLineEmpty = true
	}

	if !lookForHeader {
		parts = append(parts, current)
	}
	return parts
}

// Decrypt recovers the plaintext from a combined, formatted ciphertext
// spanning one or more message parts.
func (p *Procedure) Decrypt(ciphertext string) (string, error) {
	if err := p.ready(); err != nil {
		return "", err
	}
	p.indicatorProc.Reset()
	p.formatter.Reset()

	parts := ParseMessageParts(ciphertext)
	p.machine.GoToLetterState()

	var raw strings.Builder
	for _, part := range parts {
		decrypted, err := p.DecryptPart(part)
		if err != nil {
			return "", err
		}
		raw.WriteString(decrypted)
	}

	plaintext, err := p.encoder.Decode(raw.String())
	if err != nil {
		return "", fmt.Errorf("procedure: decode plaintext: %w", err)
	}
	return plaintext, nil
}

// DecryptPart recovers the plaintext of a single message part.
func (p *Procedure) DecryptPart(part MsgPart) (string, error) {
	parsedBody, err := p.formatter.ParseCiphertextBody(part.Body)
	if err != nil {
		return "", err
	}
	indicators := parsedBody.Indicators
	if indicators == nil {
		indicators = indicator.Result{}
	}
	indicators, err = p.formatter.ParseCiphertextHeader(indicators, part.Header)
	if err != nil {
		return "", err
	}
	indicators, err = p.indicatorProc.DeriveMessageKey(p.machine, indicators)
	if err != nil {
		return "", err
	}
	if err := p.machine.SetPositions(indicators[indicator.MessageKey]); err != nil {
		return "", err
	}
	if p.stepBeforeProc {
		p.machine.Step(1)
	}

	ciphertext := parsedBody.Text
	if raw, ok := indicators[formatter.MessageLength]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n <= len(ciphertext) {
			ciphertext = ciphertext[:n]
		}
	}

	return p.machine.Decrypt(ciphertext)
}

// SpecialCharIndicatorHelper rejects indicator candidates that contain any
// of a machine's reserved stand-in characters (shift markers, the space
// substitute, and the like), the same role SpecialCharIndicatorHelper plays
// in the original Grundstellung message procedure for KL7, Typex and
// SIGABA.
type SpecialCharIndicatorHelper struct {
	avoid map[rune]bool
}

// NewSpecialCharIndicatorHelper builds a helper that rejects any candidate
// containing a rune from charsToAvoid.
func NewSpecialCharIndicatorHelper(charsToAvoid string) *SpecialCharIndicatorHelper {
	avoid := make(map[rune]bool, len(charsToAvoid))
	for _, r := range charsToAvoid {
		avoid[r] = true
	}
	return &SpecialCharIndicatorHelper{avoid: avoid}
}

// Verify reports whether candidate contains none of the reserved runes.
func (h *SpecialCharIndicatorHelper) Verify(candidate string) bool {
	for _, r := range candidate {
		if h.avoid[r] {
			return false
		}
	}
	return true
}

// sg39WheelSizes are the maximum allowed letters for the pin-wheel part of
// an SG39 rotor position: positions 5, 6 and 7 must not exceed 'y', 'w' and
// 'u' respectively, a consequence of their wheels' 25/23/21-letter lengths.
var sg39WheelSizes = [3]byte{'y', 'w', 'u'}

// SG39IndicatorHelper extracts a valid seven-character SG39 rotor position
// (four free rotor letters plus three constrained pin-wheel positions) from
// a ten-character Grundstellung encryption result.
type SG39IndicatorHelper struct{}

// Test attempts to pull a usable SG39 position out of candidate, a
// ten-character string. Verified is true only if all three pin-wheel slots
// found a usable letter.
func (SG39IndicatorHelper) Test(candidate string) indicator.MsgKeyTest {
	if len(candidate) < 10 {
		return indicator.MsgKeyTest{Verified: false, Transformed: candidate}
	}

	transformed := candidate[:4]
	wheelPart := candidate[4:10]
	readPos := 0
	allFound := true

	for _, maxLetter := range sg39WheelSizes {
		found := false
		for !found && readPos < 6 {
			if wheelPart[readPos] <= maxLetter {
				found = true
				transformed += string(wheelPart[readPos])
			}
			readPos++
		}
		allFound = allFound && found
	}

	return indicator.MsgKeyTest{Verified: allFound, Transformed: transformed}
}

// Verify reports whether candidate contains a usable SG39 rotor position.
func (h SG39IndicatorHelper) Verify(candidate string) bool { return h.Test(candidate).Verified }

// Transform extracts whatever prefix of a usable SG39 rotor position
// candidate contains, regardless of whether extraction fully succeeded.
func (h SG39IndicatorHelper) Transform(candidate string) string { return h.Test(candidate).Transformed }

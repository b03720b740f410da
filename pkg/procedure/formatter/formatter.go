// Package formatter lays a message part's encrypted body and header out on
// the page (or parses one back apart) once the indicator groups and
// ciphertext are already known. It never touches rotor positions or keys;
// that is the indicator package's job.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package formatter

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-rotorsim/rotorsim/pkg/procedure/indicator"
)

// MessageLength is the header key a SIGABA formatter adds while parsing: the
// plaintext character count stated at the end of the header line.
const MessageLength = "message_length"

// ErrHeaderFormat is returned when a header line does not match the shape a
// formatter expects.
var ErrHeaderFormat = errors.New("formatter: header has wrong format")

// ErrBodyFormat is returned when a ciphertext body is too short or its
// bracketing indicator groups are inconsistent.
var ErrBodyFormat = errors.New("formatter: body has wrong format")

// BodyStruct is the already-grouped ciphertext of one message part, plus
// the character and group counts a header line typically quotes.
type BodyStruct struct {
	Text      string
	NumChars  int
	NumGroups int
}

// ParsedBodyStruct is a body split back into its plain ciphertext and
// whatever indicator groups were folded into it.
type ParsedBodyStruct struct {
	Text       string
	Indicators indicator.Result
}

// Formatter lays out and parses the body and header of a message part. The
// same indicator.Result flows through both directions: FormatHeader reads
// the groups an indicator processor produced, ParseCiphertextHeader adds
// the groups it recovers from a header line.
type Formatter interface {
	FormatBody(ciphertext string, indicators indicator.Result) BodyStruct
	ParseCiphertextBody(body string) (ParsedBodyStruct, error)
	FormatHeader(body BodyStruct, indicators indicator.Result, thisPart, numParts int) string
	ParseCiphertextHeader(indicators indicator.Result, header string) (indicator.Result, error)
	Reset()
}

// GroupText breaks text into fixed-size groups separated by spaces, folding
// to a new line every groupsPerLine groups.
func GroupText(text string, upper bool, groupSize, groupsPerLine int) string {
	if upper {
		text = strings.ToUpper(text)
	} else {
		text = strings.ToLower(text)
	}

	var lines []string
	var lineGroups []string
	var current strings.Builder

	flushGroup := func() {
		if current.Len() > 0 {
			lineGroups = append(lineGroups, current.String())
			current.Reset()
		}
	}
	flushLine := func() {
		if len(lineGroups) > 0 {
			lines = append(lines, strings.Join(lineGroups, " "))
			lineGroups = nil
		}
	}

	for _, r := range text {
		current.WriteRune(r)
		if current.Len() == groupSize {
			flushGroup()
			if len(lineGroups) == groupsPerLine {
				flushLine()
			}
		}
	}
	flushGroup()
	flushLine()

	return strings.Join(lines, "\n")
}

// stripGrouping removes the spaces and newlines GroupText introduced for
// display, recovering the compact ciphertext a rotor machine's alphabet can
// actually consume.
func stripGrouping(body string) string {
	body = strings.ReplaceAll(body, " ", "")
	body = strings.ReplaceAll(body, "\n", "")
	return body
}

func numGroups(length, groupSize int) int {
	n := length / groupSize
	if length%groupSize != 0 {
		n++
	}
	return n
}

// limits holds the group-size and groups-per-line settings shared by every
// formatter.
type limits struct {
	groupSize     int
	groupsPerLine int
}

func newLimits() limits { return limits{groupSize: 5, groupsPerLine: 5} }

// Limits returns the current group size and groups-per-line.
func (l *limits) Limits() (groupSize, groupsPerLine int) { return l.groupSize, l.groupsPerLine }

// SetLimits changes the group size and groups-per-line.
func (l *limits) SetLimits(groupSize, groupsPerLine int) {
	l.groupSize, l.groupsPerLine = groupSize, groupsPerLine
}

// GenericFormatter works with any rotor machine: the header names a system
// indicator, a part count, a group count, and a fixed list of indicator
// groups; the body carries only the ciphertext, grouped.
type GenericFormatter struct {
	limits
	keyWords        []string
	headerGroupSize int
	systemIndicator string
}

// NewGenericFormatter returns a formatter whose header carries one group
// per entry in keyWords, each headerGroupSize letters long.
func NewGenericFormatter(keyWords []string, headerGroupSize int) *GenericFormatter {
	return &GenericFormatter{
		limits:          newLimits(),
		keyWords:        keyWords,
		headerGroupSize: headerGroupSize,
		systemIndicator: "A0000",
	}
}

func (g *GenericFormatter) SystemIndicator() string        { return g.systemIndicator }
func (g *GenericFormatter) SetSystemIndicator(s string)     { g.systemIndicator = s }
func (g *GenericFormatter) Reset()                          {}

func (g *GenericFormatter) FormatBody(ciphertext string, indicators indicator.Result) BodyStruct {
	return BodyStruct{
		Text:      GroupText(ciphertext, true, g.groupSize, g.groupsPerLine),
		NumChars:  len(ciphertext),
		NumGroups: numGroups(len(ciphertext), g.groupSize),
	}
}

func (g *GenericFormatter) ParseCiphertextBody(body string) (ParsedBodyStruct, error) {
	return ParsedBodyStruct{Text: strings.ToLower(stripGrouping(body))}, nil
}

func (g *GenericFormatter) FormatHeader(body BodyStruct, indicators indicator.Result, thisPart, numParts int) string {
	header := fmt.Sprintf("%s = %d/%d = %d = ", g.systemIndicator, thisPart, numParts, body.NumGroups)

	groups := make([]string, len(g.keyWords))
	for i, k := range g.keyWords {
		groups[i] = indicators[k]
	}
	return header + strings.ToUpper(strings.Join(groups, " ")) + " ="
}

func (g *GenericFormatter) ParseCiphertextHeader(indicators indicator.Result, header string) (indicator.Result, error) {
	var exp strings.Builder
	exp.WriteString(`^[A-Z0-9]+ = ([0-9]+)/([0-9]+) = ([0-9]+) = `)
	for range g.keyWords {
		fmt.Fprintf(&exp, `([A-Z]{%d}) `, g.headerGroupSize)
	}
	pattern := strings.TrimRight(exp.String(), " ") + " =$"

	match := regexp.MustCompile(pattern).FindStringSubmatch(header)
	if match == nil {
		return nil, ErrHeaderFormat
	}
	for i, k := range g.keyWords {
		indicators[k] = strings.ToLower(match[4+i])
	}
	return indicators, nil
}

// enigmaHeaderPattern matches lines like "1534 = 15tle = 15tl = 167 = RJF GNZ =".
const enigmaHeaderPattern = `^[0-9]{4} = [0-9]+(tl|tle) = [0-9]+tl = [0-9]+ = ([A-Z]{%d}) ([A-Z]{%d}) =$`

// EnigmaFormatter lays out three- and four-rotor Enigma messages the way
// the German army and air force did during the war: the day's kenngruppe
// leads the grouped body, and the header carries the time of day, part
// count, character count, and the two indicator groups.
type EnigmaFormatter struct {
	limits
	headerGroupSize int
	headerExp       *regexp.Regexp
}

// NewEnigmaFormatter returns a formatter whose two header groups are each
// headerGroupSize letters long.
func NewEnigmaFormatter(headerGroupSize int) *EnigmaFormatter {
	pattern := fmt.Sprintf(enigmaHeaderPattern, headerGroupSize, headerGroupSize)
	return &EnigmaFormatter{
		limits:          newLimits(),
		headerGroupSize: headerGroupSize,
		headerExp:       regexp.MustCompile(pattern),
	}
}

func (e *EnigmaFormatter) Reset() {}

func (e *EnigmaFormatter) FormatBody(ciphertext string, indicators indicator.Result) BodyStruct {
	full := indicators[indicator.Kenngruppe] + ciphertext
	return BodyStruct{
		Text:      GroupText(full, true, e.groupSize, e.groupsPerLine),
		NumChars:  len(full),
		NumGroups: numGroups(len(full), e.groupSize),
	}
}

func (e *EnigmaFormatter) ParseCiphertextBody(body string) (ParsedBodyStruct, error) {
	body = stripGrouping(body)
	if len(body) < 5 {
		return ParsedBodyStruct{}, fmt.Errorf("%w: ciphertext must contain at least one group", ErrBodyFormat)
	}
	return ParsedBodyStruct{
		Text: strings.ToLower(body[5:]),
		Indicators: indicator.Result{
			indicator.Kenngruppe: strings.ToLower(body[:5]),
		},
	}, nil
}

func (e *EnigmaFormatter) FormatHeader(body BodyStruct, indicators indicator.Result, thisPart, numParts int) string {
	teile := "tle"
	if numParts <= 1 {
		teile = "tl"
	}
	now := time.Now()
	header := fmt.Sprintf("%s = %d%s = %dtl = %d = ", now.Format("1504"), numParts, teile, thisPart, body.NumChars)
	return header + strings.ToUpper(indicators[indicator.HeaderGrp1]+" "+indicators[indicator.HeaderGrp2]+" =")
}

func (e *EnigmaFormatter) ParseCiphertextHeader(indicators indicator.Result, header string) (indicator.Result, error) {
	match := e.headerExp.FindStringSubmatch(header)
	if match == nil {
		return nil, ErrHeaderFormat
	}
	indicators[indicator.HeaderGrp1] = strings.ToLower(match[2])
	indicators[indicator.HeaderGrp2] = strings.ToLower(match[3])
	return indicators, nil
}

var sigabaMonths = [12]string{
	"JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC",
}

var sigabaHeaderExp = regexp.MustCompile(`^[0-9]{6}Z [A-Z]{3} [0-9]{4} - [0-9]+ OF [0-9]+ - ([0-9]+)`)

// SIGABAFormatter lays a SIGABA message out with the system (external)
// indicator and the internal indicator bracketing the ciphertext at both
// ends, and a date/time-group header naming the part count and plaintext
// length.
type SIGABAFormatter struct {
	limits
	externalIndicator string
}

// NewSIGABAFormatter returns a formatter with the default "AAAAA" external
// indicator.
func NewSIGABAFormatter() *SIGABAFormatter {
	return &SIGABAFormatter{limits: newLimits(), externalIndicator: "AAAAA"}
}

func (s *SIGABAFormatter) ExternalIndicator() string    { return s.externalIndicator }
func (s *SIGABAFormatter) SetExternalIndicator(v string) { s.externalIndicator = v }
func (s *SIGABAFormatter) Reset()                        {}

func (s *SIGABAFormatter) FormatBody(ciphertext string, indicators indicator.Result) BodyStruct {
	numChars := len(ciphertext)

	if rem := len(ciphertext) % s.groupSize; rem != 0 {
		ciphertext += strings.Repeat("x", s.groupSize-rem)
	}

	internal := indicators[indicator.InternalIndicator]
	full := s.externalIndicator + internal + ciphertext + internal + s.externalIndicator

	return BodyStruct{
		Text:      GroupText(full, true, s.groupSize, s.groupsPerLine),
		NumChars:  numChars,
		NumGroups: numGroups(len(full), s.groupSize),
	}
}

func (s *SIGABAFormatter) ParseCiphertextBody(body string) (ParsedBodyStruct, error) {
	body = stripGrouping(body)

	if len(body) < 20 {
		return ParsedBodyStruct{}, fmt.Errorf("%w: ciphertext must contain at least four groups", ErrBodyFormat)
	}

	extFront := strings.ToLower(body[:5])
	intFront := strings.ToLower(body[5:10])
	extBack := strings.ToLower(body[len(body)-5:])
	intBack := strings.ToLower(body[len(body)-10 : len(body)-5])

	if extFront != extBack || intFront != intBack {
		return ParsedBodyStruct{}, fmt.Errorf("%w: indicator groups inconsistent", ErrBodyFormat)
	}

	return ParsedBodyStruct{
		Text: strings.ToLower(body[10 : len(body)-10]),
		Indicators: indicator.Result{
			indicator.InternalIndicator: intFront,
			indicator.ExternalIndicator: extFront,
		},
	}, nil
}

func (s *SIGABAFormatter) FormatHeader(body BodyStruct, indicators indicator.Result, thisPart, numParts int) string {
	now := time.Now().UTC()
	header := fmt.Sprintf("%sZ %s%s - %d OF %d - %d",
		now.Format("021504"), sigabaMonths[now.Month()-1], now.Format(" 2006"), thisPart, numParts, body.NumChars)
	return strings.ToUpper(header)
}

func (s *SIGABAFormatter) ParseCiphertextHeader(indicators indicator.Result, header string) (indicator.Result, error) {
	match := sigabaHeaderExp.FindStringSubmatch(header)
	if match == nil {
		return nil, ErrHeaderFormat
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHeaderFormat, err)
	}
	indicators[MessageLength] = strconv.Itoa(n)
	return indicators, nil
}

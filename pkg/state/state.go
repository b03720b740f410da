// Package state implements the textual, bracketed key/value document that
// serialises a machine's full configuration: which rotor set is active,
// every slot's wiring and mutable placement, the plugboard (and any
// fitted Uhr), and machine-specific parameters.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package state

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrStateFormat is returned when a state document cannot be parsed.
var ErrStateFormat = errors.New("state: malformed document")

// RotorSlot is the serialised form of one mounted rotor: its effective
// permutation and ring bitmap are stored redundantly alongside the
// descriptor and ring ids so a state is self-contained even without
// access to the rotor-set file it was built from.
type RotorSlot struct {
	Permutation       []int
	RingData          []bool
	RID               string
	RingID            string
	InsertInverse     bool
	RingOffset        int
	RotorDisplacement int
}

// Plugboard is the serialised plugboard section; Entry is nil when no
// plugboard is fitted at all.
type Plugboard struct {
	Entry      []int
	UsesUhr    bool
	UhrCabling string
	UhrDialPos int
}

// State is the full parsed document: machine header, one slot per rotor
// position, the optional plugboard, and any machine-specific extra keys
// (sigaba.csp2900, kl7.prestepped, sg39.pin0.length, and the like) carried
// verbatim.
type State struct {
	Name         string
	RotorSetName string
	MachineType  string
	UKWDWiring   string

	SlotOrder []string
	Slots     map[string]RotorSlot

	Plugboard *Plugboard

	Extra map[string]string
}

// New returns an empty state for the given machine header fields.
func New(name, rotorSetName, machineType string) *State {
	return &State{
		Name:         name,
		RotorSetName: rotorSetName,
		MachineType:  machineType,
		Slots:        make(map[string]RotorSlot),
		Extra:        make(map[string]string),
	}
}

// SetSlot installs or replaces a rotor slot's serialised state, recording
// insertion order the first time a slot name is seen.
func (s *State) SetSlot(name string, slot RotorSlot) {
	if _, exists := s.Slots[name]; !exists {
		s.SlotOrder = append(s.SlotOrder, name)
	}
	s.Slots[name] = slot
}

// Parse decodes a serialised state document.
func Parse(doc string) (*State, error) {
	sections, order, err := splitSections(doc)
	if err != nil {
		return nil, err
	}

	machine, ok := sections["machine"]
	if !ok {
		return nil, fmt.Errorf("%w: missing [machine] section", ErrStateFormat)
	}

	st := New(machine["name"], machine["rotorsetname"], machine["machinetype"])
	st.UKWDWiring = machine["ukwdwiring"]

	for _, name := range order {
		switch {
		case name == "machine":
			continue
		case name == "plugboard":
			fields := sections[name]
			pb := &Plugboard{}
			if raw := fields["entry"]; raw != "" {
				pb.Entry, err = parseIntCSV(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: [plugboard] entry: %v", ErrStateFormat, err)
				}
			}
			pb.UsesUhr, err = parseBool(fields["usesuhr"])
			if err != nil {
				return nil, fmt.Errorf("%w: [plugboard] usesuhr: %v", ErrStateFormat, err)
			}
			pb.UhrCabling = fields["uhrcabling"]
			if raw := fields["uhrdialpos"]; raw != "" {
				pb.UhrDialPos, err = strconv.Atoi(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: [plugboard] uhrdialpos: %v", ErrStateFormat, err)
				}
			}
			st.Plugboard = pb
		case strings.HasPrefix(name, "rotor_"):
			slotName := strings.TrimPrefix(name, "rotor_")
			fields := sections[name]

			perm, err := parseIntCSV(fields["permutation"])
			if err != nil {
				return nil, fmt.Errorf("%w: [%s] permutation: %v", ErrStateFormat, name, err)
			}
			ringInts, err := parseIntCSV(fields["ringdata"])
			if err != nil {
				return nil, fmt.Errorf("%w: [%s] ringdata: %v", ErrStateFormat, name, err)
			}
			ring := make([]bool, len(ringInts))
			for i, v := range ringInts {
				ring[i] = v != 0
			}
			insertInverse, err := parseBool(fields["insertinverse"])
			if err != nil {
				return nil, fmt.Errorf("%w: [%s] insertinverse: %v", ErrStateFormat, name, err)
			}
			ringOffset, err := strconv.Atoi(fields["ringoffset"])
			if err != nil {
				return nil, fmt.Errorf("%w: [%s] ringoffset: %v", ErrStateFormat, name, err)
			}
			displacement, err := strconv.Atoi(fields["rotordisplacement"])
			if err != nil {
				return nil, fmt.Errorf("%w: [%s] rotordisplacement: %v", ErrStateFormat, name, err)
			}

			st.SetSlot(slotName, RotorSlot{
				Permutation:       perm,
				RingData:          ring,
				RID:               fields["rid"],
				RingID:            fields["ringid"],
				InsertInverse:     insertInverse,
				RingOffset:        ringOffset,
				RotorDisplacement: displacement,
			})
		default:
			fields := sections[name]
			for k, v := range fields {
				st.Extra[name+"."+k] = v
			}
		}
	}

	return st, nil
}

// Serialise renders the state back to its textual form. Section order is
// machine, then every rotor slot in the order they were set, then
// plugboard, then any extra machine-specific keys sorted for
// determinism; parsing is documented as tolerant of section order, so this
// ordering is a stable choice rather than a requirement.
func (s *State) Serialise() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[machine]\n")
	fmt.Fprintf(&b, "name = %s\n", s.Name)
	fmt.Fprintf(&b, "rotorsetname = %s\n", s.RotorSetName)
	fmt.Fprintf(&b, "machinetype = %s\n", s.MachineType)
	if s.UKWDWiring != "" {
		fmt.Fprintf(&b, "ukwdwiring = %s\n", s.UKWDWiring)
	}

	for _, slotName := range s.SlotOrder {
		slot := s.Slots[slotName]
		fmt.Fprintf(&b, "\n[rotor_%s]\n", slotName)
		fmt.Fprintf(&b, "permutation = %s\n", joinInts(slot.Permutation))
		fmt.Fprintf(&b, "ringdata = %s\n", joinBoolInts(slot.RingData))
		fmt.Fprintf(&b, "rid = %s\n", slot.RID)
		fmt.Fprintf(&b, "ringid = %s\n", slot.RingID)
		fmt.Fprintf(&b, "insertinverse = %s\n", strconv.FormatBool(slot.InsertInverse))
		fmt.Fprintf(&b, "ringoffset = %d\n", slot.RingOffset)
		fmt.Fprintf(&b, "rotordisplacement = %d\n", slot.RotorDisplacement)
	}

	if s.Plugboard != nil {
		fmt.Fprintf(&b, "\n[plugboard]\n")
		if s.Plugboard.Entry != nil {
			fmt.Fprintf(&b, "entry = %s\n", joinInts(s.Plugboard.Entry))
		}
		fmt.Fprintf(&b, "usesuhr = %s\n", strconv.FormatBool(s.Plugboard.UsesUhr))
		if s.Plugboard.UsesUhr {
			if s.Plugboard.UhrCabling != "" {
				fmt.Fprintf(&b, "uhrcabling = %s\n", s.Plugboard.UhrCabling)
			}
			fmt.Fprintf(&b, "uhrdialpos = %d\n", s.Plugboard.UhrDialPos)
		}
	}

	extraSections := extraSectionNames(s.Extra)
	for _, section := range extraSections {
		fmt.Fprintf(&b, "\n[%s]\n", section)
		keys := extraKeysFor(s.Extra, section)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s = %s\n", k, s.Extra[section+"."+k])
		}
	}

	return b.String()
}

func extraSectionNames(extra map[string]string) []string {
	seen := make(map[string]bool)
	var names []string
	for k := range extra {
		section := k[:strings.Index(k, ".")]
		if !seen[section] {
			seen[section] = true
			names = append(names, section)
		}
	}
	sort.Strings(names)
	return names
}

func extraKeysFor(extra map[string]string, section string) []string {
	prefix := section + "."
	var keys []string
	for k := range extra {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(keys)
	return keys
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func joinBoolInts(vals []bool) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		if v {
			parts[i] = "1"
		} else {
			parts[i] = "0"
		}
	}
	return strings.Join(parts, ",")
}

func parseIntCSV(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	vec := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", p, err)
		}
		vec[i] = v
	}
	return vec, nil
}

func parseBool(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

// splitSections parses the bracketed "[section]\nkey = value" document
// shape, matching the same format pkg/rotorset uses for external rotor-set
// documents.
func splitSections(doc string) (map[string]map[string]string, []string, error) {
	sections := make(map[string]map[string]string)
	var order []string
	var current string

	scanner := bufio.NewScanner(strings.NewReader(doc))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			if _, exists := sections[current]; !exists {
				sections[current] = make(map[string]string)
				order = append(order, current)
			}
			continue
		}
		if current == "" {
			return nil, nil, fmt.Errorf("%w: value outside of any section: %q", ErrStateFormat, line)
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, nil, fmt.Errorf("%w: malformed line %q", ErrStateFormat, line)
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		sections[current][key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStateFormat, err)
	}
	return sections, order, nil
}

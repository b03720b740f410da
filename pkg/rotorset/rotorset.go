// Package rotorset provides the named rotor-set registry: the mapping from
// a rotor id to its wiring permutation, notch ring and display name that
// every machine family draws its slot fillings from.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package rotorset

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// ErrUnknownRotorID is returned when a lookup names a rotor that is not in
// the active set.
var ErrUnknownRotorID = errors.New("rotorset: unknown rotor id")

// ErrRotorSetFormat is returned when an external rotor-set document cannot
// be parsed.
var ErrRotorSetFormat = errors.New("rotorset: malformed rotor set")

// Entry is a single rotor descriptor plus its notch ring, the unit of
// storage in a Set.
type Entry struct {
	Descriptor rotor.Descriptor
	Ring       rotor.NotchRing
}

// Set is a named table of rotor id to Entry.
type Set struct {
	Name    string
	entries map[string]Entry
	order   []string
}

func newSet(name string) *Set {
	return &Set{Name: name, entries: make(map[string]Entry)}
}

func (s *Set) add(id string, p *perm.Permutation, notches []int, displayName string) {
	desc := rotor.Descriptor{ID: id, Perm: p, DisplayName: displayName}
	ring := rotor.NewNotchRing(id, p.Len(), notches)
	if _, exists := s.entries[id]; !exists {
		s.order = append(s.order, id)
	}
	s.entries[id] = Entry{Descriptor: desc, Ring: ring}
}

// Lookup returns the entry for a rotor id.
func (s *Set) Lookup(id string) (Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%s: %q: %w", s.Name, id, ErrUnknownRotorID)
	}
	return e, nil
}

// IDs enumerates the rotor ids in this set, in registration order.
func (s *Set) IDs() []string {
	return append([]string(nil), s.order...)
}

// Override replaces (or adds) a single entry's permutation and notches,
// used to load alternative historical wirings such as the Typex Y-269
// rotor set without rebuilding the whole registry.
func (s *Set) Override(id string, p *perm.Permutation, notches []int) {
	s.add(id, p, notches, id)
}

// registry is the package-level table of named rotor sets, seeded at init
// with the machine families named in the active specification.
var registry = map[string]*Set{}

func register(s *Set) {
	registry[s.Name] = s
}

// Lookup returns a named set from the built-in registry.
func Lookup(name string) (*Set, error) {
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("rotorset: unknown set %q", name)
	}
	return s, nil
}

// Names enumerates every registered rotor-set name.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Register installs a Set under its own name, overwriting any previous set
// of that name. Used by LoadExternalSet and by callers assembling a custom
// registry for tests.
func Register(s *Set) {
	register(s)
}

func init() {
	registerServicesEnigma()
	registerM4Enigma()
	registerAbwehrEnigma()
	registerRailwayEnigma()
	registerTirpitzEnigma()
	registerKDEnigma()
	registerTypex()
	registerSIGABA()
	registerKL7()
	registerNema()
	registerSG39()
}

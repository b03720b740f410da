// Package machine binds a stepping gear to the plugboard and entry/exit
// permutations surrounding it, exposing the single character-at-a-time
// encrypt/decrypt contract every simulated machine shares.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package machine

import (
	"errors"
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
	"github.com/go-rotorsim/rotorsim/internal/plugboard"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/rotorset"
	"github.com/go-rotorsim/rotorsim/pkg/stepping"
)

// ErrUnknownSymbol is returned when an input character is outside the
// machine's current input alphabet.
var ErrUnknownSymbol = errors.New("machine: unknown symbol")

// ErrMachineNotReady is returned by any operation attempted before a state
// has been loaded, or that does not apply to the machine's family.
var ErrMachineNotReady = errors.New("machine: not ready")

// sigabaSetupStepper is implemented only by stepping.SIGABAGear; machines of
// other families reject SigabaSetup by failing this type assertion.
type sigabaSetupStepper interface {
	SetupStep(controlIndex int) error
}

// RotorMachine is the generic simulated machine: a stepping gear, an
// optional plugboard sitting outside it, and the flat list of mounted rotor
// instances used for rotor-set introspection and swapping.
type RotorMachine struct {
	name         string
	machineType  string
	rotorSetName string
	alphabet     *alphabet.Alphabet
	gear         stepping.Gear
	plugboard    *plugboard.Plugboard
	slots        []*rotor.Rotor
	shiftMode    string
	ready        bool
}

// New builds a machine from its already-assembled stepping gear. slots is
// the flat list of every mounted rotor instance, left to right across every
// bank the gear owns, used by GetRotorSetNames/SetRotorSetState; pb may be
// nil for families with no plugboard (SIGABA, KL7, Nema).
func New(name, machineType, rotorSetName string, alph *alphabet.Alphabet, gear stepping.Gear, pb *plugboard.Plugboard, slots []*rotor.Rotor) (*RotorMachine, error) {
	if alph == nil {
		return nil, fmt.Errorf("machine: alphabet cannot be nil")
	}
	if gear == nil {
		return nil, fmt.Errorf("machine: stepping gear cannot be nil")
	}
	return &RotorMachine{
		name:         name,
		machineType:  machineType,
		rotorSetName: rotorSetName,
		alphabet:     alph,
		gear:         gear,
		plugboard:    pb,
		slots:        slots,
		shiftMode:    "letters",
		ready:        true,
	}, nil
}

// GetDescription returns the machine's human-readable name.
func (m *RotorMachine) GetDescription() string { return m.name }

// MachineType returns the machine family identifier (e.g. "services-enigma").
func (m *RotorMachine) MachineType() string { return m.machineType }

// GoToLetterState resets the shift-mode flag shifting machines (Typex,
// KL7) carry between figures and letters back to letters, the state every
// encrypt/decrypt call is defined in.
func (m *RotorMachine) GoToLetterState() { m.shiftMode = "letters" }

// ShiftMode reports the machine's current letters/figures mode.
func (m *RotorMachine) ShiftMode() string { return m.shiftMode }

// SetShiftMode is used by the transport encoder layer to flip the machine
// into figures mode for a single shifted character and back.
func (m *RotorMachine) SetShiftMode(mode string) { m.shiftMode = mode }

func (m *RotorMachine) encryptIndex(idx int) int {
	if m.plugboard != nil {
		idx = m.plugboard.Process(idx)
	}
	out := m.gear.Permutation().At(idx)
	if m.plugboard != nil {
		out = m.plugboard.Process(out)
	}
	return out
}

func (m *RotorMachine) decryptIndex(idx int) int {
	if m.plugboard != nil {
		idx = m.plugboard.Process(idx)
	}
	out := m.gear.Permutation().Inverse().At(idx)
	if m.plugboard != nil {
		out = m.plugboard.Process(out)
	}
	return out
}

// EncryptRune steps the gear once and enciphers a single character.
func (m *RotorMachine) EncryptRune(r rune) (rune, error) {
	if !m.ready {
		return 0, ErrMachineNotReady
	}
	idx, err := m.alphabet.RuneToIndex(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %c", ErrUnknownSymbol, r)
	}
	m.gear.StepOnce()
	return m.alphabet.IndexToRune(m.encryptIndex(idx))
}

// DecryptRune steps the gear once and deciphers a single character. On
// reciprocal families this is the identical procedure to EncryptRune
// because the rotor stack's permutation is its own inverse; on SIGABA the
// inverse permutation takes a genuinely different path through the stack.
func (m *RotorMachine) DecryptRune(r rune) (rune, error) {
	if !m.ready {
		return 0, ErrMachineNotReady
	}
	idx, err := m.alphabet.RuneToIndex(r)
	if err != nil {
		return 0, fmt.Errorf("%w: %c", ErrUnknownSymbol, r)
	}
	m.gear.StepOnce()
	return m.alphabet.IndexToRune(m.decryptIndex(idx))
}

// Encrypt enciphers every character of s in turn.
func (m *RotorMachine) Encrypt(s string) (string, error) {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		c, err := m.EncryptRune(r)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	return string(out), nil
}

// Decrypt deciphers every character of s in turn.
func (m *RotorMachine) Decrypt(s string) (string, error) {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		c, err := m.DecryptRune(r)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	return string(out), nil
}

// Step advances the gear n times without enciphering anything, returning
// the rendered window positions after each tick.
func (m *RotorMachine) Step(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		m.gear.StepOnce()
		out[i] = m.gear.Positions()
	}
	return out
}

// GetPositions reads the current window letters in slot order.
func (m *RotorMachine) GetPositions() string { return m.gear.Positions() }

// SetPositions writes the window letters in slot order.
func (m *RotorMachine) SetPositions(s string) error { return m.gear.SetPositions(s) }

// GetRotorSetNames returns the descriptor id mounted in every slot, in the
// flat slot order the machine was built with.
func (m *RotorMachine) GetRotorSetNames() []string {
	names := make([]string, len(m.slots))
	for i, r := range m.slots {
		names[i] = r.DescriptorID()
	}
	return names
}

// RotorSetName returns the name of the active rotor set.
func (m *RotorMachine) RotorSetName() string { return m.rotorSetName }

// SetRotorSetState re-mounts every slot onto a (possibly different) named
// rotor set, swapping wiring while leaving ring offsets, displacements and
// reversed-insertion flags untouched.
func (m *RotorMachine) SetRotorSetState(setName string, descriptorIDs []string) error {
	if len(descriptorIDs) != len(m.slots) {
		return fmt.Errorf("machine: expected %d rotor ids, got %d", len(m.slots), len(descriptorIDs))
	}
	set, err := rotorset.Lookup(setName)
	if err != nil {
		return err
	}
	entries := make([]rotorset.Entry, len(descriptorIDs))
	for i, id := range descriptorIDs {
		entry, err := set.Lookup(id)
		if err != nil {
			return err
		}
		entries[i] = entry
	}
	for i, entry := range entries {
		m.slots[i].SetDescriptor(entry.Descriptor)
		m.slots[i].SetRing(entry.Ring)
	}
	m.rotorSetName = setName
	return nil
}

// SigabaSetup manually advances the named control rotor n times without
// encrypting, used to dial the message key in before the first character is
// sent. It fails on every family but SIGABA.
func (m *RotorMachine) SigabaSetup(rotorIndex, n int) error {
	stepper, ok := m.gear.(sigabaSetupStepper)
	if !ok {
		return fmt.Errorf("%w: sigaba_setup is only valid on a sigaba machine", ErrMachineNotReady)
	}
	for i := 0; i < n; i++ {
		if err := stepper.SetupStep(rotorIndex); err != nil {
			return err
		}
	}
	return nil
}

// Plugboard exposes the mounted plugboard, or nil if the family has none.
func (m *RotorMachine) Plugboard() *plugboard.Plugboard { return m.plugboard }

// Gear exposes the underlying stepping gear for callers that need
// family-specific operations (e.g. rewiring a UKW-D reflector).
func (m *RotorMachine) Gear() stepping.Gear { return m.gear }

// Slots exposes the flat list of every mounted rotor instance, left to
// right across every bank the gear owns, used by the state codec to
// capture each slot's mutable placement fields.
func (m *RotorMachine) Slots() []*rotor.Rotor { return m.slots }

// Alphabet exposes the machine's input/output alphabet.
func (m *RotorMachine) Alphabet() *alphabet.Alphabet { return m.alphabet }

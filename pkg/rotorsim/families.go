// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package rotorsim

import (
	"fmt"
	"strconv"

	"github.com/go-rotorsim/rotorsim/internal/alphabet"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/state"
	"github.com/go-rotorsim/rotorsim/pkg/stepping"
)

// --- three-rotor Enigma family (Services, Abwehr, Railway, Tirpitz, KD) ----

func buildEnigma3(st *state.State, alph *alphabet.Alphabet) (*machine.RotorMachine, error) {
	r1, err := rotorFor(st, "1")
	if err != nil {
		return nil, err
	}
	r2, err := rotorFor(st, "2")
	if err != nil {
		return nil, err
	}
	r3, err := rotorFor(st, "3")
	if err != nil {
		return nil, err
	}
	refl, err := reflectorFor(st)
	if err != nil {
		return nil, err
	}
	gear, err := stepping.NewEnigma3(latin, [3]*rotor.Rotor{r1, r2, r3}, refl)
	if err != nil {
		return nil, err
	}
	pb, err := buildPlugboard(alph, st.Plugboard)
	if err != nil {
		return nil, err
	}
	return machine.New(st.Name, st.MachineType, st.RotorSetName, alph, gear, pb, []*rotor.Rotor{r1, r2, r3})
}

// --- Kriegsmarine M4 --------------------------------------------------------

func buildEnigma4(st *state.State, alph *alphabet.Alphabet) (*machine.RotorMachine, error) {
	greek, err := rotorFor(st, "greek")
	if err != nil {
		return nil, err
	}
	r1, err := rotorFor(st, "1")
	if err != nil {
		return nil, err
	}
	r2, err := rotorFor(st, "2")
	if err != nil {
		return nil, err
	}
	r3, err := rotorFor(st, "3")
	if err != nil {
		return nil, err
	}
	refl, err := reflectorFor(st)
	if err != nil {
		return nil, err
	}
	gear, err := stepping.NewEnigma4(latin, greek, [3]*rotor.Rotor{r1, r2, r3}, refl)
	if err != nil {
		return nil, err
	}
	pb, err := buildPlugboard(alph, st.Plugboard)
	if err != nil {
		return nil, err
	}
	return machine.New(st.Name, st.MachineType, st.RotorSetName, alph, gear, pb, []*rotor.Rotor{greek, r1, r2, r3})
}

// --- Typex -------------------------------------------------------------------

func buildTypex(st *state.State, alph *alphabet.Alphabet) (*machine.RotorMachine, error) {
	s1, err := rotorFor(st, "1")
	if err != nil {
		return nil, err
	}
	s2, err := rotorFor(st, "2")
	if err != nil {
		return nil, err
	}
	r3, err := rotorFor(st, "3")
	if err != nil {
		return nil, err
	}
	r4, err := rotorFor(st, "4")
	if err != nil {
		return nil, err
	}
	r5, err := rotorFor(st, "5")
	if err != nil {
		return nil, err
	}
	refl, err := reflectorFor(st)
	if err != nil {
		return nil, err
	}
	gear, err := stepping.NewTypex(latin, [2]*rotor.Rotor{s1, s2}, [3]*rotor.Rotor{r3, r4, r5}, refl)
	if err != nil {
		return nil, err
	}
	pb, err := buildPlugboard(alph, st.Plugboard)
	if err != nil {
		return nil, err
	}
	return machine.New(st.Name, st.MachineType, st.RotorSetName, alph, gear, pb, []*rotor.Rotor{s1, s2, r3, r4, r5})
}

func captureOdometer(st *state.State, m *machine.RotorMachine, g *stepping.OdometerGear) {
	static := g.StaticLeft()
	steppers := g.Steppers()

	switch m.MachineType() {
	case "m4-enigma":
		st.SetSlot("greek", captureRotorSlot(static[0]))
		for i, r := range steppers {
			st.SetSlot(strconv.Itoa(i+1), captureRotorSlot(r))
		}
	case "typex":
		st.SetSlot("1", captureRotorSlot(static[0]))
		st.SetSlot("2", captureRotorSlot(static[1]))
		for i, r := range steppers {
			st.SetSlot(strconv.Itoa(i+3), captureRotorSlot(r))
		}
	default:
		for i, r := range steppers {
			st.SetSlot(strconv.Itoa(i+1), captureRotorSlot(r))
		}
	}
	captureReflectorInto(st, g.Reflector())
}

// --- SIGABA ------------------------------------------------------------------

func buildSigaba(st *state.State, alph *alphabet.Alphabet) (*machine.RotorMachine, error) {
	var cipher, control, index [5]*rotor.Rotor
	var slots []*rotor.Rotor
	for i := 0; i < 5; i++ {
		r, err := rotorFor(st, fmt.Sprintf("cipher%d", i+1))
		if err != nil {
			return nil, err
		}
		cipher[i] = r
		slots = append(slots, r)
	}
	for i := 0; i < 5; i++ {
		r, err := rotorFor(st, fmt.Sprintf("control%d", i+1))
		if err != nil {
			return nil, err
		}
		control[i] = r
		slots = append(slots, r)
	}
	for i := 0; i < 5; i++ {
		r, err := rotorFor(st, fmt.Sprintf("index%d", i+1))
		if err != nil {
			return nil, err
		}
		index[i] = r
		slots = append(slots, r)
	}
	gear, err := stepping.NewSIGABAGear(latin, cipher, control, index, parseCSP2900(st.Extra))
	if err != nil {
		return nil, err
	}
	return machine.New(st.Name, st.MachineType, st.RotorSetName, alph, gear, nil, slots)
}

func captureSigaba(st *state.State, g *stepping.SIGABAGear) {
	banks := [][5]*rotor.Rotor{g.Cipher(), g.Control(), g.Index()}
	names := []string{"cipher", "control", "index"}
	for b, bank := range banks {
		for i, r := range bank {
			st.SetSlot(fmt.Sprintf("%s%d", names[b], i+1), captureRotorSlot(r))
		}
	}
	st.Extra["sigaba.csp2900"] = strconv.FormatBool(g.CSP2900())
}

// --- KL7 ----------------------------------------------------------------------

func buildKL7(st *state.State, alph *alphabet.Alphabet) (*machine.RotorMachine, error) {
	var slots [8]*rotor.Rotor
	var flat []*rotor.Rotor
	for i := 0; i < 8; i++ {
		r, err := rotorFor(st, strconv.Itoa(i+1))
		if err != nil {
			return nil, err
		}
		slots[i] = r
		flat = append(flat, r)
	}
	gear, err := stepping.NewKL7(latin, slots)
	if err != nil {
		return nil, err
	}
	if v, err := strconv.ParseBool(st.Extra["kl7.prestepped"]); err == nil {
		gear.SetPreStepped(v)
	}
	return machine.New(st.Name, st.MachineType, st.RotorSetName, alph, gear, nil, flat)
}

func captureKL7(st *state.State, g *stepping.KL7Gear) {
	slots := g.Slots()
	for i, r := range slots {
		st.SetSlot(strconv.Itoa(i+1), captureRotorSlot(r))
	}
	st.Extra["kl7.prestepped"] = strconv.FormatBool(g.PreStepped())
}

// --- Nema -----------------------------------------------------------------

func buildNema(st *state.State, alph *alphabet.Alphabet) (*machine.RotorMachine, error) {
	drive := make([]*rotor.Rotor, nemaPairCount)
	cipher := make([]*rotor.Rotor, nemaPairCount)
	var slots []*rotor.Rotor
	for i := 0; i < nemaPairCount; i++ {
		r, err := rotorFor(st, fmt.Sprintf("drive%d", i+1))
		if err != nil {
			return nil, err
		}
		drive[i] = r
		slots = append(slots, r)
	}
	for i := 0; i < nemaPairCount; i++ {
		r, err := rotorFor(st, fmt.Sprintf("cipher%d", i+1))
		if err != nil {
			return nil, err
		}
		cipher[i] = r
		slots = append(slots, r)
	}
	refl, err := reflectorFor(st)
	if err != nil {
		return nil, err
	}
	gear, err := stepping.NewNema(latin, drive, cipher, refl)
	if err != nil {
		return nil, err
	}
	return machine.New(st.Name, st.MachineType, st.RotorSetName, alph, gear, nil, slots)
}

func captureNema(st *state.State, g *stepping.NemaGear) {
	for i, r := range g.DriveWheels() {
		st.SetSlot(fmt.Sprintf("drive%d", i+1), captureRotorSlot(r))
	}
	for i, r := range g.CipherRotors() {
		st.SetSlot(fmt.Sprintf("cipher%d", i+1), captureRotorSlot(r))
	}
	captureReflectorInto(st, g.Reflector())
}

// --- SG39 -------------------------------------------------------------------

func buildSG39(st *state.State, alph *alphabet.Alphabet) (*machine.RotorMachine, error) {
	var rotors [3]*rotor.Rotor
	var pinLengths [3]int
	var pinCams [3][]int
	var pinPositions [3]int
	for i := 0; i < 3; i++ {
		r, err := rotorFor(st, strconv.Itoa(i+1))
		if err != nil {
			return nil, err
		}
		rotors[i] = r

		prefix := fmt.Sprintf("sg39.pin%d.", i)
		length, err := strconv.Atoi(st.Extra[prefix+"length"])
		if err != nil {
			return nil, fmt.Errorf("rotorsim: sg39 pin wheel %d length: %w", i, err)
		}
		pinLengths[i] = length
		pinPositions[i], err = strconv.Atoi(st.Extra[prefix+"position"])
		if err != nil {
			return nil, fmt.Errorf("rotorsim: sg39 pin wheel %d position: %w", i, err)
		}
		pinCams[i] = parseCamList(st.Extra[prefix+"cams"])
	}
	refl, err := reflectorFor(st)
	if err != nil {
		return nil, err
	}
	gear, err := stepping.NewSG39(latin, rotors, pinLengths, pinCams, refl)
	if err != nil {
		return nil, err
	}
	for i, pos := range pinPositions {
		if err := gear.SetPinPosition(i, pos); err != nil {
			return nil, err
		}
	}
	pb, err := buildPlugboard(alph, st.Plugboard)
	if err != nil {
		return nil, err
	}
	return machine.New(st.Name, st.MachineType, st.RotorSetName, alph, gear, pb, []*rotor.Rotor{rotors[0], rotors[1], rotors[2]})
}

func captureSG39(st *state.State, g *stepping.SG39Gear) {
	rotors := g.Rotors()
	for i, r := range rotors {
		st.SetSlot(strconv.Itoa(i+1), captureRotorSlot(r))
		prefix := fmt.Sprintf("sg39.pin%d.", i)
		st.Extra[prefix+"length"] = strconv.Itoa(g.PinLength(i))
		st.Extra[prefix+"position"] = strconv.Itoa(g.PinPosition(i))
		st.Extra[prefix+"cams"] = formatCamList(g.PinCams(i))
	}
	captureReflectorInto(st, g.Reflector())
}

func parseCamList(raw string) []int {
	if raw == "" {
		return nil
	}
	var out []int
	for i, c := range raw {
		if c == '1' {
			out = append(out, i)
		}
	}
	return out
}

func formatCamList(bits []bool) string {
	out := make([]byte, len(bits))
	for i, b := range bits {
		if b {
			out[i] = '1'
		} else {
			out[i] = '0'
		}
	}
	return string(out)
}

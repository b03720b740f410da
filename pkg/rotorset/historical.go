package rotorset

import "github.com/go-rotorsim/rotorsim/pkg/perm"

const latin = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Real historical Enigma rotor and reflector wirings, as fitted to the
// Wehrmacht Services Enigma (I, M3) and the Kriegsmarine M4.
const (
	wiringRotorI     = "EKMFLGDQVZNTOWYHXUSPAIBRCJ"
	wiringRotorII    = "AJDKSIRUXBLHWTMCQGZNPYFVOE"
	wiringRotorIII   = "BDFHJLCPRTXVZNYEIWGAKMUSQO"
	wiringRotorIV    = "ESOVPZJAYQUIRHXLNFTGKDCMWB"
	wiringRotorV     = "VZBRGITYUPSDNHLXAWMJQOFECK"
	wiringRotorVI    = "JPGVOUMFYQBENHZRDKASXLICTW"
	wiringRotorVII   = "NZJHGRCXMYSWBOUFAIVLPEKQDT"
	wiringRotorVIII  = "FKQHTLXOCBJSPDZRAMEWNIUYGV"
	wiringRotorBeta  = "LEYJVCNIXWPBQMDRTAKZGFUHOS"
	wiringRotorGamma = "FSOKANUERHMBTIYCWLQPZXVGJD"

	wiringReflectorA      = "EJMZALYXVBWFCRQUONTSPIKHGD"
	wiringReflectorB      = "YRUHQSLDPXNGOKMIEBFZCWVJAT"
	wiringReflectorC      = "FVPJIAOYEDRZXWGCTKUQSBNMHL"
	wiringReflectorBThin  = "ENKQAUYWJICOPBLMDXZVFTHRGS"
	wiringReflectorCThin  = "RDOBJNTKVEHMLFCWZAXGYIPSUQ"
)

func notchesOf(letters string) []int {
	idx := make([]int, 0, len(letters))
	for _, r := range letters {
		for i, a := range latin {
			if a == r {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

func mustPerm(wiring string) *perm.Permutation {
	p, err := perm.FromString(latin, wiring)
	if err != nil {
		panic("rotorset: invalid built-in wiring: " + err.Error())
	}
	return p
}

// registerServicesEnigma seeds the I/M3 Wehrmacht and Luftwaffe Services
// Enigma rotor set: rotors I-VIII, reflectors A/B/C.
func registerServicesEnigma() {
	s := newSet("services-enigma")
	s.add("I", mustPerm(wiringRotorI), notchesOf("Q"), "Rotor I")
	s.add("II", mustPerm(wiringRotorII), notchesOf("E"), "Rotor II")
	s.add("III", mustPerm(wiringRotorIII), notchesOf("V"), "Rotor III")
	s.add("IV", mustPerm(wiringRotorIV), notchesOf("J"), "Rotor IV")
	s.add("V", mustPerm(wiringRotorV), notchesOf("Z"), "Rotor V")
	s.add("VI", mustPerm(wiringRotorVI), notchesOf("ZM"), "Rotor VI")
	s.add("VII", mustPerm(wiringRotorVII), notchesOf("ZM"), "Rotor VII")
	s.add("VIII", mustPerm(wiringRotorVIII), notchesOf("ZM"), "Rotor VIII")
	s.add("UKW-A", mustPerm(wiringReflectorA), nil, "Reflector A")
	s.add("UKW-B", mustPerm(wiringReflectorB), nil, "Reflector B")
	s.add("UKW-C", mustPerm(wiringReflectorC), nil, "Reflector C")
	register(s)
}

// registerM4Enigma seeds the Kriegsmarine M4 rotor set: the thin Beta and
// Gamma wheels alongside the Services rotors, and the thin reflectors.
func registerM4Enigma() {
	s := newSet("m4-enigma")
	s.add("I", mustPerm(wiringRotorI), notchesOf("Q"), "Rotor I")
	s.add("II", mustPerm(wiringRotorII), notchesOf("E"), "Rotor II")
	s.add("III", mustPerm(wiringRotorIII), notchesOf("V"), "Rotor III")
	s.add("IV", mustPerm(wiringRotorIV), notchesOf("J"), "Rotor IV")
	s.add("V", mustPerm(wiringRotorV), notchesOf("Z"), "Rotor V")
	s.add("VI", mustPerm(wiringRotorVI), notchesOf("ZM"), "Rotor VI")
	s.add("VII", mustPerm(wiringRotorVII), notchesOf("ZM"), "Rotor VII")
	s.add("VIII", mustPerm(wiringRotorVIII), notchesOf("ZM"), "Rotor VIII")
	s.add("Beta", mustPerm(wiringRotorBeta), nil, "Rotor Beta")
	s.add("Gamma", mustPerm(wiringRotorGamma), nil, "Rotor Gamma")
	s.add("UKW-B-Thin", mustPerm(wiringReflectorBThin), nil, "Reflector B Thin")
	s.add("UKW-C-Thin", mustPerm(wiringReflectorCThin), nil, "Reflector C Thin")
	register(s)
}

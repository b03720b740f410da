package stepping

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
)

// NewEnigma3 builds the stepping gear for a three-rotor Enigma (Services,
// Abwehr, Railway, KD): all three wheels step under the odometer rule with
// the double-stepping anomaly, directly generalising the teacher's
// Enigma.stepRotors from a fixed three-element slice to OdometerGear.
func NewEnigma3(alphabet string, rotors [3]*rotor.Rotor, refl *reflector.Reflector) (*OdometerGear, error) {
	if refl == nil {
		return nil, fmt.Errorf("stepping: enigma3 requires a reflector")
	}
	return NewOdometerGear(alphabet, nil, []*rotor.Rotor{rotors[0], rotors[1], rotors[2]}, refl, nil)
}

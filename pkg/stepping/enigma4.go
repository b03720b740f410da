package stepping

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
)

// NewEnigma4 builds the stepping gear for the four-rotor Kriegsmarine M4:
// a thin Beta or Gamma wheel mounted to the left of the standard three-rotor
// stack, carrying no notch and never stepping.
func NewEnigma4(alphabet string, greek *rotor.Rotor, rotors [3]*rotor.Rotor, refl *reflector.Reflector) (*OdometerGear, error) {
	if refl == nil {
		return nil, fmt.Errorf("stepping: enigma4 requires a reflector")
	}
	if greek == nil {
		return nil, fmt.Errorf("stepping: enigma4 requires the fourth (Greek) wheel")
	}
	return NewOdometerGear(alphabet, []*rotor.Rotor{greek}, []*rotor.Rotor{rotors[0], rotors[1], rotors[2]}, refl, nil)
}

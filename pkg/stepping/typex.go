package stepping

import (
	"fmt"

	"github.com/go-rotorsim/rotorsim/internal/reflector"
	"github.com/go-rotorsim/rotorsim/internal/rotor"
)

// NewTypex builds the stepping gear for the British Typex: five rotor
// slots, of which the leftmost two never step, the remaining three
// advancing odometer-style with the same double-stepping anomaly as the
// Enigma family. Typex's reflector is fixed at the factory rather than
// field-swappable.
func NewTypex(alphabet string, staticTwo [2]*rotor.Rotor, stepping [3]*rotor.Rotor, refl *reflector.Reflector) (*OdometerGear, error) {
	if refl == nil {
		return nil, fmt.Errorf("stepping: typex requires a reflector")
	}
	return NewOdometerGear(
		alphabet,
		[]*rotor.Rotor{staticTwo[0], staticTwo[1]},
		[]*rotor.Rotor{stepping[0], stepping[1], stepping[2]},
		refl,
		nil,
	)
}

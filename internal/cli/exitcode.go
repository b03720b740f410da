package cli

import (
	"errors"

	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/perm"
	"github.com/go-rotorsim/rotorsim/pkg/randomizer"
	"github.com/go-rotorsim/rotorsim/pkg/rotorset"
	"github.com/go-rotorsim/rotorsim/pkg/rotorsim"
	"github.com/go-rotorsim/rotorsim/pkg/state"
)

// Exit codes spec.md §6/§7 require distinguishing: format errors, machine
// errors and transport errors get distinct non-zero ranges so a caller can
// tell a malformed state document from, say, an unknown input character.
const (
	exitOK              = 0
	exitFormatError     = 1
	exitMachineError    = 2
	exitTransportError  = 3
	exitUnsupportedProc = 4
)

// classifyErr maps an error returned from a command's RunE to the exit
// code spec.md §6 calls for, by sentinel match against every error kind
// spec.md §7 names.
func classifyErr(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, state.ErrStateFormat),
		errors.Is(err, perm.ErrInvalidPermutation),
		errors.Is(err, perm.ErrAlphabetMismatch),
		errors.Is(err, rotorset.ErrRotorSetFormat),
		errors.Is(err, rotorset.ErrUnknownRotorID),
		errors.Is(err, rotorsim.ErrUnknownMachineType):
		return exitFormatError
	case errors.Is(err, machine.ErrUnknownSymbol),
		errors.Is(err, machine.ErrMachineNotReady):
		return exitMachineError
	case errors.Is(err, randomizer.ErrUnsupportedProcedure):
		return exitUnsupportedProc
	default:
		return exitTransportError
	}
}

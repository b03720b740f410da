package cli

import (
	"fmt"
	"strings"

	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/randomizer"
	"github.com/go-rotorsim/rotorsim/pkg/rotorsim"
	"github.com/go-rotorsim/rotorsim/pkg/state"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen [key=value ...]",
	Short: "Build a state document from a parameter dictionary",
	Long: `Builds a fresh machine of the given --machine family and renders it as a
state document on stdout, ready to pipe into encrypt/decrypt/step.

Positional key=value pairs override individual fields after the machine is
built: "positions=VJNA" sets the window letters.

Examples:
  rotorsim keygen --machine m4-enigma --random --randparm fancy
  rotorsim keygen --machine services-enigma positions=RTZ`,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().StringP("machine", "m", "services-enigma", "Machine family: services-enigma, abwehr-enigma, railway-enigma, tirpitz-enigma, kd-enigma, m4-enigma, typex, sigaba, kl7, nema, sg39")
	keygenCmd.Flags().BoolP("random", "", false, "Randomise the generated machine")
	keygenCmd.Flags().StringP("randparm", "", "basic", "Randomiser parameter token (see randomizer.RandomizerParams)")
}

func runKeygen(cmd *cobra.Command, args []string) error {
	setupVerbose(cmd, "keygen: building default machine")

	machineType, _ := cmd.Flags().GetString("machine")
	m, err := rotorsim.NewDefault(machineType)
	if err != nil {
		return err
	}

	if random, _ := cmd.Flags().GetBool("random"); random {
		token, _ := cmd.Flags().GetString("randparm")
		if err := randomizer.Randomize(m, token); err != nil {
			return err
		}
	}

	for _, kv := range args {
		if err := applyKeyValue(m, kv); err != nil {
			return err
		}
	}

	return writeState(cmd, m)
}

// applyKeyValue applies one key=value override from keygen's positional
// arguments. Unrecognised keys are a format error, matching the CLI's
// strict-tags-tolerant-order parsing stance elsewhere.
func applyKeyValue(m *machine.RotorMachine, kv string) error {
	parts := strings.SplitN(kv, "=", 2)
	if len(parts) != 2 {
		return fmt.Errorf("rotorsim: malformed key=value argument %q", kv)
	}
	key, value := parts[0], parts[1]
	switch key {
	case "positions":
		return m.SetPositions(value)
	default:
		return fmt.Errorf("rotorsim: unrecognised keygen key %q: %w", key, state.ErrStateFormat)
	}
}

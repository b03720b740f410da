package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var permCmd = &cobra.Command{
	Use:   "perm",
	Short: "Print the machine's current effective permutation",
	Long: `Reads a state document and prints the composition of the rotor stack
(and reflector, where the family wires one inside the stack) at the
machine's current displacements, as a symbol string: position i of the
output is where input letter i of the alphabet currently maps to.`,
	RunE: runPerm,
}

func runPerm(cmd *cobra.Command, args []string) error {
	m, err := loadMachine(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), m.Gear().Permutation().ToSymbolString())
	return err
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Advance the rotor stack without encrypting, printing each resulting position",
	Long: `Advances the gear --num-iterations times and prints the window positions
after every tick, one per line, without enciphering anything.

Example:
  cat m4.state | rotorsim step --num-iterations 26`,
	RunE: runStep,
}

func init() {
	stepCmd.Flags().IntP("num-iterations", "n", 1, "Number of ticks to advance")
	stepCmd.Flags().StringP("positions", "p", "", "Set rotor window positions before stepping")
}

func runStep(cmd *cobra.Command, args []string) error {
	setupVerbose(cmd, "step: loading state")

	m, err := loadMachine(cmd)
	if err != nil {
		return err
	}
	if err := applyPositionsFlag(cmd, m); err != nil {
		return err
	}

	n, _ := cmd.Flags().GetInt("num-iterations")
	positions := m.Step(n)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(positions, "\n"))
	return err
}

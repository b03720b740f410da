package cli

import (
	"github.com/spf13/cobra"
)

var sigabaSetupCmd = &cobra.Command{
	Use:   "sigabasetup",
	Short: "Manually advance a SIGABA control rotor without encrypting",
	Long: `Drives SIGABA's setup-stepping procedure: advances the control rotor named
by --rotor-num, --num-iterations times, without enciphering anything. Used
to dial a SIGABA message key in before the first character is sent. Fails
on every machine family but SIGABA.

Example:
  cat sigaba.state | rotorsim sigabasetup --rotor-num 1 --num-iterations 4`,
	RunE: runSigabaSetup,
}

func init() {
	sigabaSetupCmd.Flags().IntP("rotor-num", "", 1, "Control rotor index (1-5)")
	sigabaSetupCmd.Flags().IntP("num-iterations", "n", 1, "Number of setup-steps to apply")
}

func runSigabaSetup(cmd *cobra.Command, args []string) error {
	setupVerbose(cmd, "sigabasetup: loading state")

	m, err := loadMachine(cmd)
	if err != nil {
		return err
	}

	rotorNum, _ := cmd.Flags().GetInt("rotor-num")
	n, _ := cmd.Flags().GetInt("num-iterations")
	if err := m.SigabaSetup(rotorNum-1, n); err != nil {
		return err
	}

	return writeState(cmd, m)
}

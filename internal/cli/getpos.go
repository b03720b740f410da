package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getPosCmd = &cobra.Command{
	Use:   "getpos",
	Short: "Print the machine's current window positions",
	Long:  `Reads a state document and prints the window letters of every slot, left to right.`,
	RunE:  runGetPos,
}

func runGetPos(cmd *cobra.Command, args []string) error {
	m, err := loadMachine(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), m.GetPositions())
	return err
}

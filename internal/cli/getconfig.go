package cli

import (
	"fmt"
	"sort"

	"github.com/go-rotorsim/rotorsim/pkg/rotorsim"
	"github.com/spf13/cobra"
)

var getConfigCmd = &cobra.Command{
	Use:   "getconfig",
	Short: "Print the machine's configuration dictionary",
	Long: `Reads a state document and prints the flat configuration dictionary
spec.md §6 describes (rotors, rings, plugs, reflector, ukwdperm, usesuhr,
csp2900, cipher, control, index, alpharings, notchrings, notchselect,
rotorset, ringselect, warmachine, pinsrotor{1,2,3}, pinswheel{1,2,3}),
one "key = value" line per recognised key the machine's family carries.`,
	RunE: runGetConfig,
}

func runGetConfig(cmd *cobra.Command, args []string) error {
	m, err := loadMachine(cmd)
	if err != nil {
		return err
	}

	cfg := rotorsim.GetConfig(m)
	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, cfg[k]); err != nil {
			return err
		}
	}
	return nil
}

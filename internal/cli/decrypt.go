package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt text using the machine described by a state document",
	Long: `Reads a state document from --state (default stdin), builds the machine
it describes, and decrypts --text. On every family but SIGABA this is the
identical procedure to encrypt, since the rotor stack's permutation is its
own inverse; SIGABA is routed through its distinct decryption path.

Examples:
  cat m4.state | rotorsim decrypt --text "NCZWV..."
  cat m4.state | rotorsim decrypt --remove-spaces --text "NCZW V..."`,
	RunE: runDecrypt,
}

func init() {
	decryptCmd.Flags().StringP("text", "t", "", "Ciphertext to decrypt")
	decryptCmd.Flags().IntP("group-size", "g", 0, "Group output into blocks of N characters")
	decryptCmd.Flags().StringP("positions", "p", "", "Set rotor window positions before decrypting")
	decryptCmd.Flags().BoolP("remove-spaces", "", false, "Strip spaces from the input before decrypting")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	setupVerbose(cmd, "decrypt: loading state")

	m, err := loadMachine(cmd)
	if err != nil {
		return err
	}
	if err := applyPositionsFlag(cmd, m); err != nil {
		return err
	}

	text, _ := cmd.Flags().GetString("text")
	if removeSpaces, _ := cmd.Flags().GetBool("remove-spaces"); removeSpaces {
		text = strings.ReplaceAll(text, " ", "")
	}

	out, err := m.Decrypt(text)
	if err != nil {
		return err
	}

	groupSize, _ := cmd.Flags().GetInt("group-size")
	_, err = fmt.Fprintln(cmd.OutOrStdout(), groupText(out, groupSize))
	return err
}

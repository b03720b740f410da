package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-rotorsim/rotorsim/pkg/machine"
	"github.com/go-rotorsim/rotorsim/pkg/rotorsim"
	"github.com/go-rotorsim/rotorsim/pkg/state"
	"github.com/spf13/cobra"
)

// stateTerminator is the 0xFF byte spec.md §6 uses to separate a
// serialised state document from the input/output payload that follows it
// on the command-line transport.
const stateTerminator = 0xFF

// readStateBlob reads the --state source (a file path, or "-" for stdin)
// and splits it on the first 0xFF byte into the state document text and
// whatever payload trails it (empty if there is none).
func readStateBlob(cmd *cobra.Command) (string, []byte, error) {
	path, _ := cmd.Flags().GetString("state")

	var raw []byte
	var err error
	if path == "" || path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return "", nil, fmt.Errorf("rotorsim: reading state: %w", err)
	}

	if idx := bytes.IndexByte(raw, stateTerminator); idx >= 0 {
		return string(raw[:idx]), raw[idx+1:], nil
	}
	return string(raw), nil, nil
}

// loadMachine reads the configured state source and builds a live machine
// from it, parse-first-commit-second exactly as spec.md §7 requires of
// set_state: a malformed document never produces a partially-built
// machine.
func loadMachine(cmd *cobra.Command) (*machine.RotorMachine, error) {
	doc, _, err := readStateBlob(cmd)
	if err != nil {
		return nil, err
	}
	st, err := state.Parse(doc)
	if err != nil {
		return nil, err
	}
	return rotorsim.Build(st)
}

// writeState serialises m back to the state document format and writes it
// to stdout, with no 0xFF terminator appended, so it can be piped straight
// into another rotorsim invocation's --state stdin source.
func writeState(cmd *cobra.Command, m *machine.RotorMachine) error {
	st, err := rotorsim.Capture(m)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), st.Serialise())
	return err
}

// applyPositionsFlag applies -p, if set, as the machine's window
// positions before the command's operation runs.
func applyPositionsFlag(cmd *cobra.Command, m *machine.RotorMachine) error {
	positions, _ := cmd.Flags().GetString("positions")
	if positions == "" {
		return nil
	}
	return m.SetPositions(positions)
}

// groupText splits s into space-separated groups of n characters, the
// formatting -g asks for on encrypt/decrypt output; n<=0 leaves s as one
// ungrouped run.
func groupText(s string, n int) string {
	if n <= 0 {
		return s
	}
	var b bytes.Buffer
	for i, r := range []rune(s) {
		if i > 0 && i%n == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

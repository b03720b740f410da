// Command rotorsim is the CLI wrapper around the rotor machine core:
// spec.md §1 scopes it out of the core's design weight, but §6 documents
// its surface and the teacher is itself structured around one, so it is
// built here as the one external wrapper this repository implements.
//
// Copyright (c) 2025 David Duarte
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/go-rotorsim/rotorsim/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

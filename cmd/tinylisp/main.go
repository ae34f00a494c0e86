// Command tinylisp is the reference CLI for the interpreter in pkg/lisp:
// run a script file, evaluate an inline expression, or drop into a REPL.
// Grounded on cmd/dwscript's cobra-based entrypoint.
package main

import (
	"os"

	"github.com/tinylisp/tinylisp/cmd/tinylisp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tinylisp/tinylisp/pkg/lisp"
)

// runREPL drives an interactive read-eval-print loop over stdin. Each line
// is fed through Engine.EvalText, which prints its own error diagnostics and
// recovers to the next form rather than aborting the session. A line the
// reader cannot parse (e.g. an unterminated list) ends the process with an
// error.
func runREPL() error {
	opts := engineOptions()
	engine, err := lisp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	engine.SetOutput(os.Stdout)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "tinylisp> ")
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Fprint(os.Stdout, "tinylisp> ")
			continue
		}
		if err := engine.EvalText(line, true); err != nil {
			exitWithError("reader error: %v", err)
		}
		fmt.Fprint(os.Stdout, "tinylisp> ")
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	fmt.Fprintln(os.Stdout)
	return nil
}

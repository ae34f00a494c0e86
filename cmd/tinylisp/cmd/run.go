package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tinylisp/tinylisp/pkg/lisp"
)

var (
	evalExpr   string
	stackDepth int
	traceDepth int
)

func runScript(_ *cobra.Command, args []string) error {
	var input string
	var filename string

	switch {
	case evalExpr != "":
		input = evalExpr
		filename = "<eval>"
	case len(args) == 1:
		filename = args[0]
		content, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		input = string(content)
	default:
		return runREPL()
	}

	opts := engineOptions()
	engine, err := lisp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	engine.SetOutput(os.Stdout)

	result, err := engine.Eval(input)
	if err != nil {
		exitWithError("%s: %v", filename, err)
	}
	_ = result
	return nil
}

func engineOptions() []lisp.Option {
	var opts []lisp.Option
	if stackDepth > 0 {
		opts = append(opts, lisp.WithStackDepth(stackDepth))
	}
	if traceDepth > 0 {
		opts = append(opts, lisp.WithTraceDepth(traceDepth))
	}
	return opts
}

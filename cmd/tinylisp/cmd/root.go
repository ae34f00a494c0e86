package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tinylisp",
	Short: "tinylisp interpreter",
	Long: `tinylisp is a small Lisp interpreter: s-expressions, closures,
macros with two-phase expansion, structural pattern matching, and a
reflect-based foreign-function bridge for embedding native Go functions.

Run a file, evaluate an inline expression with -e, or invoke with no
arguments to start a REPL.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runScript,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	rootCmd.Flags().IntVar(&stackDepth, "stack-depth", 0, "override the value stack capacity (0 = default)")
	rootCmd.Flags().IntVar(&traceDepth, "trace-depth", 0, "override the call trace max depth (0 = default)")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

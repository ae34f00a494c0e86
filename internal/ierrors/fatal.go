package ierrors

import (
	"fmt"
	"os"
)

// fatalSignal is the panic payload used for the non-recoverable conditions
// of spec.md §7 (value-stack overflow/underflow, call-trace overflow,
// foreign-call descriptor invariant violations). Nothing in this module
// recovers a fatalSignal - it is meant to terminate the process, the Go
// analogue of the source's abort().
type fatalSignal struct {
	msg string
}

// Fatal prints msg to stderr together with any diagnostic dumps the caller
// supplies (typically the value stack and call trace, per §7/§4.B) and
// aborts the process by panicking with a payload no caller recovers.
func Fatal(msg string, dumps ...string) {
	fmt.Fprintln(os.Stderr, "fatal:", msg)
	for _, d := range dumps {
		fmt.Fprintln(os.Stderr, d)
	}
	panic(fatalSignal{msg: msg})
}

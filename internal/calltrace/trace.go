// Package calltrace implements the Call Trace of spec.md §4.B: a bounded
// ring of human-readable frames for diagnostics, pushed before a non-macro
// call enters the Applicator and popped after only if no error latched.
// Grounded directly on internal/interp/runtime.CallStack's
// Push/Pop/Depth/String/FormatError shape.
package calltrace

import (
	"fmt"
	"strings"

	"github.com/tinylisp/tinylisp/internal/ierrors"
)

// DefaultMaxDepth mirrors the teacher's CallStack default of 1024.
const DefaultMaxDepth = 1024

// Trace is a fixed-capacity stack of short printable strings, each a
// rendering of the currently applied form.
type Trace struct {
	frames   []string
	maxDepth int
}

// New creates a Trace with the given max depth (DefaultMaxDepth if <= 0).
func New(maxDepth int) *Trace {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Trace{maxDepth: maxDepth}
}

// Push adds frame to the trace. Overflow is fatal: it prints both the
// value stack and call trace (via dumps) before aborting, per spec.md §4.B.
func (t *Trace) Push(frame string, dumps ...string) {
	if len(t.frames) >= t.maxDepth {
		ierrors.Fatal(fmt.Sprintf("call trace overflow (max depth %d)", t.maxDepth),
			append([]string{t.String()}, dumps...)...)
	}
	t.frames = append(t.frames, frame)
}

// Pop removes the most recent frame. No-op if the trace is empty.
func (t *Trace) Pop() {
	if len(t.frames) > 0 {
		t.frames = t.frames[:len(t.frames)-1]
	}
}

// Depth reports the current number of frames.
func (t *Trace) Depth() int { return len(t.frames) }

// Reset clears all frames. Called before every top-level evaluation.
func (t *Trace) Reset() {
	t.frames = t.frames[:0]
}

// String renders the trace oldest-to-newest, one frame per line.
func (t *Trace) String() string {
	var b strings.Builder
	for i, f := range t.frames {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "  at %s", f)
	}
	return b.String()
}

// FormatError formats message together with the current trace, mirroring
// CallStack.FormatError - used by the top-level driver when reporting an
// error (spec.md §6 eval_text).
func (t *Trace) FormatError(message string) string {
	if len(t.frames) == 0 {
		return message
	}
	return fmt.Sprintf("%s\n\ncall trace:\n%s", message, t.String())
}

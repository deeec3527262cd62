// Package cli provides the command-dispatch scaffolding shared by every
// cmd/filevfs subcommand: flag parsing, help rendering, and a thin IO
// writer pair.
package cli

import (
	"fmt"
	"io"
)

// IO bundles the stdout/stderr writers a command runs against.
type IO struct {
	out    io.Writer
	errOut io.Writer
}

// NewIO creates an IO writing to out and errOut.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) { _, _ = fmt.Fprintln(o.out, a...) }

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) { _, _ = fmt.Fprintf(o.out, format, a...) }

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) { _, _ = fmt.Fprintln(o.errOut, a...) }

// ErrPrintf writes formatted output to stderr.
func (o *IO) ErrPrintf(format string, a ...any) { _, _ = fmt.Fprintf(o.errOut, format, a...) }

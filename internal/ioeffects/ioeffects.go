// Package ioeffects provides the capability-gated stdio channels used by
// the print and input operators, ported from original_source/amorph/io.py.
package ioeffects

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// IO is the narrow effect surface the Evaluator calls into: a whitespace-
// joined write channel and a single-line read channel.
type IO interface {
	Write(vals ...string)
	Read(prompt string) string
}

// StdIO writes to an io.Writer (normally os.Stdout) and reads lines from a
// buffered reader (normally os.Stdin).
type StdIO struct {
	Out io.Writer
	in  *bufio.Reader
}

// NewStdIO wraps the given writer/reader pair.
func NewStdIO(out io.Writer, in io.Reader) *StdIO {
	return &StdIO{Out: out, in: bufio.NewReader(in)}
}

func (s *StdIO) Write(vals ...string) {
	fmt.Fprintln(s.Out, strings.Join(vals, " "))
}

func (s *StdIO) Read(prompt string) string {
	if prompt != "" {
		fmt.Fprint(s.Out, prompt)
	}
	line, _ := s.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// QuietIO buffers every write and never blocks on read (always returns ""),
// matching original_source's QuietIO: callers that need a value (e.g. the
// int operator) fail explicitly rather than stalling on a missing stdin.
type QuietIO struct {
	Outputs []string
}

// NewQuietIO returns an empty buffering IO.
func NewQuietIO() *QuietIO { return &QuietIO{} }

func (q *QuietIO) Write(vals ...string) {
	q.Outputs = append(q.Outputs, strings.Join(vals, " "))
}

func (q *QuietIO) Read(prompt string) string { return "" }

package ioeffects

import (
	"bytes"
	"strings"
	"testing"
)

func TestStdIOWritesSpaceJoinedLine(t *testing.T) {
	var out bytes.Buffer
	io := NewStdIO(&out, strings.NewReader(""))
	io.Write("a", "b", "c")
	if out.String() != "a b c\n" {
		t.Fatalf("out = %q, want %q", out.String(), "a b c\n")
	}
}

func TestStdIOReadTrimsLineEnding(t *testing.T) {
	var out bytes.Buffer
	io := NewStdIO(&out, strings.NewReader("hello\n"))
	if got := io.Read(""); got != "hello" {
		t.Fatalf("Read() = %q, want hello", got)
	}
}

func TestStdIOReadWritesPromptFirst(t *testing.T) {
	var out bytes.Buffer
	io := NewStdIO(&out, strings.NewReader("42\n"))
	got := io.Read("enter a number: ")
	if got != "42" {
		t.Fatalf("Read() = %q, want 42", got)
	}
	if out.String() != "enter a number: " {
		t.Fatalf("out = %q, want prompt echoed", out.String())
	}
}

func TestQuietIOBuffersWritesAndNeverBlocksOnRead(t *testing.T) {
	q := NewQuietIO()
	q.Write("x", "y")
	q.Write("z")
	if len(q.Outputs) != 2 || q.Outputs[0] != "x y" || q.Outputs[1] != "z" {
		t.Fatalf("Outputs = %v", q.Outputs)
	}
	if got := q.Read("anything"); got != "" {
		t.Fatalf("Read() = %q, want empty string", got)
	}
}

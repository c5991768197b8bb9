// Package ops holds the operator arity registry used by the Validator and
// Evaluator, ported from original_source/amorph/op_registry.py.
package ops

import "strings"

// Arity describes how many arguments an operator accepts. Fixed operators
// set Min == Max; variadic ones set Max to unboundedArity.
type Arity struct {
	Min, Max int
}

const unboundedArity = 999999

// Registry maps a normalized operator name to its arity spec.
var Registry = map[string]Arity{
	// arithmetic
	"add": {2, unboundedArity},
	"sub": {2, unboundedArity},
	"mul": {2, unboundedArity},
	"div": {2, unboundedArity},
	"mod": {2, 2},
	"pow": {2, 2},
	// comparisons
	"eq": {2, unboundedArity},
	"ne": {2, unboundedArity},
	"lt": {2, unboundedArity},
	"le": {2, unboundedArity},
	"gt": {2, unboundedArity},
	"ge": {2, unboundedArity},
	// logic
	"not": {1, 1},
	"and": {0, unboundedArity},
	"or":  {0, unboundedArity},
	// collections
	"list":   {0, unboundedArity},
	"concat": {2, unboundedArity},
	"len":    {1, 1},
	"get":    {2, 2},
	"has":    {2, 2},
	// sequences/io/convert
	"range": {1, 2},
	"input": {0, 1},
	"int":   {1, 1},
}

// Normalize strips any dotted namespace prefix, keeping only the final
// segment ("math.add" -> "add").
func Normalize(op string) string {
	if i := strings.LastIndex(op, "."); i >= 0 {
		return op[i+1:]
	}
	return op
}

// Lookup returns the arity spec for a normalized operator name.
func Lookup(op string) (Arity, bool) {
	a, ok := Registry[Normalize(op)]
	return a, ok
}

// CheckArity reports whether argCount is valid for op. Unknown operators
// are always accepted, for extensibility.
func CheckArity(op string, argCount int) bool {
	a, ok := Lookup(op)
	if !ok {
		return true
	}
	return argCount >= a.Min && argCount <= a.Max
}

// Package suggest analyzes a program and proposes actionable edit
// operations — missing ids, mixed call styles, single-letter variable
// renames, extract-function opportunities — ported from
// original_source/amorph/suggestions.py and the suggestion heuristics
// in refactor.py. None of this is load-bearing: it never blocks
// execution and produces ready-to-apply edit specs only.
package suggest

import (
	"fmt"
	"strings"

	"github.com/elmisi/amorph-code/internal/editengine"
)

// Suggestion is one proposed edit, with the reasoning and an edit spec.
// The spec is a flat object whose "op" names the operation; it is not in
// editengine.ApplyEdits' {op, spec} form, and add_uid, migrate_calls and
// wrap_in_if are not ApplyEdits operations.
type Suggestion struct {
	Operation       string         `json:"operation"`
	Reason          string         `json:"reason"`
	EditSpec        map[string]any `json:"edit_spec"`
	Priority        string         `json:"priority"` // "high" | "medium" | "low"
	EstimatedImpact string         `json:"estimated_impact"` // "Breaking change" | "Safe" | "Optimization" | "Fixes error" | "Fixes error if typo" | "Prevents error"
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func checkCallStyles(node any, hasName, hasID *bool) {
	switch v := node.(type) {
	case map[string]any:
		if c, ok := asObject(v["call"]); ok {
			if _, has := c["name"]; has {
				*hasName = true
			}
			if _, has := c["id"]; has {
				*hasID = true
			}
		}
		for _, sub := range v {
			checkCallStyles(sub, hasName, hasID)
		}
	case []any:
		for _, x := range v {
			checkCallStyles(x, hasName, hasID)
		}
	}
}

// SuggestImprovements is the main entry point: it runs every heuristic
// and returns the combined suggestion list.
func SuggestImprovements(program []any) []Suggestion {
	var out []Suggestion

	for i, raw := range program {
		stmt, ok := asObject(raw)
		if !ok {
			continue
		}
		d, ok := asObject(stmt["def"])
		if !ok {
			continue
		}
		if _, hasID := d["id"]; !hasID {
			name, _ := d["name"].(string)
			if name == "" {
				name = "anonymous"
			}
			out = append(out, Suggestion{
				Operation: "add_uid",
				Reason:    fmt.Sprintf("Function '%s' lacks stable id for robust references", name),
				EditSpec: map[string]any{
					"op":   "add_uid",
					"path": fmt.Sprintf("/$[%d]/def", i),
					"deep": false,
				},
				Priority:        "medium",
				EstimatedImpact: "Safe",
			})
		}
	}

	missingIDs := 0
	for _, raw := range program {
		if stmt, ok := asObject(raw); ok {
			if _, has := stmt["id"]; !has {
				missingIDs++
			}
		}
	}
	if missingIDs > 0 {
		out = append(out, Suggestion{
			Operation: "add_uid_all",
			Reason:    fmt.Sprintf("%d statements lack ids for precise targeting", missingIDs),
			EditSpec:  map[string]any{"op": "add_uid", "deep": true},
			Priority:  "low", EstimatedImpact: "Safe",
		})
	}

	hasName, hasID := false, false
	for _, stmt := range program {
		checkCallStyles(stmt, &hasName, &hasID)
	}
	if hasName && hasID {
		out = append(out, Suggestion{
			Operation:       "migrate_calls",
			Reason:          "Mixed call styles (name and id) found - inconsistent references",
			EditSpec:        map[string]any{"op": "migrate_calls", "to": "id"},
			Priority:        "medium",
			EstimatedImpact: "Safe",
		})
	}

	for _, sug := range SuggestVariableRename(program) {
		out = append(out, Suggestion{
			Operation:       "rename_variable",
			Reason:          sug["reason"].(string),
			EditSpec:        sug,
			Priority:        sug["priority"].(string),
			EstimatedImpact: "Safe",
		})
	}

	for _, sug := range SuggestExtractFunction(program, 3) {
		out = append(out, Suggestion{
			Operation:       "extract_function",
			Reason:          sug["reason"].(string),
			EditSpec:        sug,
			Priority:        sug["priority"].(string),
			EstimatedImpact: "Optimization",
		})
	}

	return out
}

// SuggestVariableRename flags single-letter variable names referenced
// more than three times.
func SuggestVariableRename(program []any) []map[string]any {
	refs := editengine.AnalyzeProgram(program)
	var out []map[string]any
	for name, refList := range refs {
		if len(name) == 1 && len(refList) > 3 {
			out = append(out, map[string]any{
				"op":       "rename_variable",
				"old_name": name,
				"new_name": name + "_descriptive",
				"scope":    "all",
				"reason":   fmt.Sprintf("Single-letter variable '%s' used %d times", name, len(refList)),
				"priority": "medium",
			})
		}
	}
	return out
}

func collectVarsInExpr(expr any, used map[string]bool) {
	switch v := expr.(type) {
	case map[string]any:
		if name, ok := v["var"].(string); ok {
			used[name] = true
		}
		for _, sub := range v {
			collectVarsInExpr(sub, used)
		}
	case []any:
		for _, x := range v {
			collectVarsInExpr(x, used)
		}
	}
}

// AnalyzeFreeVariables returns the set of variable names read within
// statements but not defined by a preceding let in the same sequence —
// candidates for extracted-function parameters.
func AnalyzeFreeVariables(statements []any) map[string]bool {
	defined := map[string]bool{}
	used := map[string]bool{}

	for _, raw := range statements {
		stmt, ok := asObject(raw)
		if !ok {
			continue
		}
		if spec, ok := asObject(stmt["let"]); ok {
			if v, has := spec["value"]; has {
				collectVarsInExpr(v, used)
			}
		}
		if spec, ok := asObject(stmt["set"]); ok {
			if v, has := spec["value"]; has {
				collectVarsInExpr(v, used)
			}
		}
		if v, has := stmt["return"]; has {
			collectVarsInExpr(v, used)
		}
		if v, has := stmt["expr"]; has {
			collectVarsInExpr(v, used)
		}
		if spec, ok := asObject(stmt["if"]); ok {
			if c, has := spec["cond"]; has {
				collectVarsInExpr(c, used)
			}
		}
		if spec, ok := asObject(stmt["let"]); ok {
			if name, ok := spec["name"].(string); ok {
				defined[name] = true
			}
		}
	}

	free := map[string]bool{}
	for name := range used {
		if !defined[name] {
			free[name] = true
		}
	}
	return free
}

// SuggestExtractFunction proposes extracting every consecutive run of
// minStatements non-def statements into its own function.
func SuggestExtractFunction(program []any, minStatements int) []map[string]any {
	var out []map[string]any
	for i := 0; i+minStatements <= len(program); i++ {
		sequence := program[i : i+minStatements]
		allNonDef := true
		for _, raw := range sequence {
			if stmt, ok := asObject(raw); ok {
				if _, has := stmt["def"]; has {
					allNonDef = false
					break
				}
			}
		}
		if !allNonDef {
			continue
		}
		freeVars := AnalyzeFreeVariables(sequence)
		params := make([]any, 0, len(freeVars))
		for name := range freeVars {
			params = append(params, name)
		}
		indices := make([]any, minStatements)
		for j := 0; j < minStatements; j++ {
			indices[j] = float64(i + j)
		}
		out = append(out, map[string]any{
			"op":                "extract_function",
			"function_name":     fmt.Sprintf("extracted_function_%d", i),
			"statements":        indices,
			"parameters":        params,
			"insert_at":         float64(i),
			"replace_with_call": true,
			"reason":            fmt.Sprintf("Sequence of %d statements at /$[%d] could be extracted", minStatements, i),
			"priority":          "low",
		})
	}
	return out
}

// HealthMetrics summarizes structural statistics about a program.
type HealthMetrics struct {
	TotalStatements   int
	TotalFunctions    int
	TotalVariables    int
	FunctionsWithID   int
	StatementsWithID  int
	AvgFunctionLength float64
	MaxNestingDepth   int
	UniqueVariables   []string
	CallStyle         string // "name" | "id" | "mixed" | "none"
}

func measureNesting(expr any, depth int) int {
	max := depth
	switch v := expr.(type) {
	case map[string]any:
		for _, sub := range v {
			if d := measureNesting(sub, depth+1); d > max {
				max = d
			}
		}
	case []any:
		for _, x := range v {
			if d := measureNesting(x, depth+1); d > max {
				max = d
			}
		}
	}
	return max
}

// AnalyzeProgramHealth computes HealthMetrics for a program.
func AnalyzeProgramHealth(program []any) HealthMetrics {
	m := HealthMetrics{TotalStatements: len(program)}
	hasName, hasID := false, false
	var functionLengths []int

	for _, raw := range program {
		stmt, ok := asObject(raw)
		if !ok {
			continue
		}
		if _, has := stmt["id"]; has {
			m.StatementsWithID++
		}
		if d, ok := asObject(stmt["def"]); ok {
			m.TotalFunctions++
			if _, has := d["id"]; has {
				m.FunctionsWithID++
			}
			body, _ := d["body"].([]any)
			functionLengths = append(functionLengths, len(body))
			for _, s := range body {
				if depth := measureNesting(s, 0); depth > m.MaxNestingDepth {
					m.MaxNestingDepth = depth
				}
			}
		}
		checkCallStyles(stmt, &hasName, &hasID)
	}

	refs := editengine.AnalyzeProgram(program)
	m.TotalVariables = len(refs)
	m.UniqueVariables = make([]string, 0, len(refs))
	for name := range refs {
		m.UniqueVariables = append(m.UniqueVariables, name)
	}

	if len(functionLengths) > 0 {
		sum := 0
		for _, l := range functionLengths {
			sum += l
		}
		m.AvgFunctionLength = float64(sum) / float64(len(functionLengths))
	}

	switch {
	case hasName && hasID:
		m.CallStyle = "mixed"
	case hasID:
		m.CallStyle = "id"
	case hasName:
		m.CallStyle = "name"
	default:
		m.CallStyle = "none"
	}

	return m
}

// SuggestFixForError proposes edits in response to a runtime error
// message, matching a handful of common failure patterns.
func SuggestFixForError(errMsg string, errPath string, program []any) []Suggestion {
	var out []Suggestion

	if strings.Contains(errMsg, "Variable not found") {
		varName := lastColonField(errMsg)
		path := errPath
		if path == "" {
			path = "/$[0]"
		}
		out = append(out, Suggestion{
			Operation: "insert_before",
			Reason:    fmt.Sprintf("Add missing variable '%s'", varName),
			EditSpec: map[string]any{
				"op":   "insert_before",
				"path": path,
				"node": map[string]any{"let": map[string]any{"name": varName, "value": nil}},
			},
			Priority: "high", EstimatedImpact: "Fixes error",
		})

		refs := editengine.AnalyzeProgram(program)
		for defined := range refs {
			if len(varName) > 2 && len(defined) > 2 && similar(varName, defined) {
				out = append(out, Suggestion{
					Operation: "rename_usage",
					Reason:    fmt.Sprintf("Did you mean '%s'? (similar to '%s')", defined, varName),
					EditSpec: map[string]any{
						"op": "rename_variable", "old_name": varName, "new_name": defined, "scope": "all",
					},
					Priority: "medium", EstimatedImpact: "Fixes error if typo",
				})
			}
		}
	}

	if strings.Contains(errMsg, "Function not defined") || strings.Contains(errMsg, "Function id not defined") {
		fnName := lastColonField(errMsg)
		out = append(out, Suggestion{
			Operation: "add_function",
			Reason:    fmt.Sprintf("Add missing function '%s'", fnName),
			EditSpec: map[string]any{
				"op": "add_function", "name": fnName, "params": []any{},
				"body": []any{map[string]any{"return": nil}},
			},
			Priority: "high", EstimatedImpact: "Fixes error",
		})
	}

	if strings.Contains(strings.ToLower(errMsg), "division by zero") {
		out = append(out, Suggestion{
			Operation: "add_check",
			Reason:    "Add zero-check before division",
			EditSpec: map[string]any{
				"op":            "wrap_in_if",
				"condition":     map[string]any{"ne": []any{"divisor", 0}},
				"error_handler": map[string]any{"return": nil},
			},
			Priority: "high", EstimatedImpact: "Prevents error",
		})
	}

	return out
}

func similar(a, b string) bool {
	diff := 0
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			diff++
		}
	}
	diff += abs(len(a) - len(b))
	lenDiff := abs(len(a) - len(b))
	return diff <= 2 && lenDiff <= 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func lastColonField(s string) string {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[idx+1:])
}

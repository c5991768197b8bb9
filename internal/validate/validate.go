// Package validate implements structural and semantic checks over the raw
// program tree, in both fail-fast and report modes, ported from
// original_source/amorph/validate.py.
package validate

import (
	"fmt"

	"github.com/elmisi/amorph-code/internal/amerr"
	"github.com/elmisi/amorph-code/internal/ops"
)

// unwrapProgram accepts a bare array or a {program:[...]} wrapper.
func unwrapProgram(root any) (any, bool) {
	if m, ok := root.(map[string]any); ok {
		if prog, ok := m["program"]; ok {
			return prog, true
		}
		return nil, false
	}
	return root, true
}

// ValidateProgram is the fail-fast validator: it returns the first
// structural or semantic problem found, or nil if the program passes.
func ValidateProgram(root any) error {
	prog, ok := unwrapProgram(root)
	if !ok {
		return fmt.Errorf("Program must be a list or a {program:[...]} object")
	}
	stmts, ok := prog.([]any)
	if !ok {
		return fmt.Errorf("Program must be a list or a {program:[...]} object")
	}

	fnNames, fnIDs := collectFunctions(stmts)

	checkNode := func(node map[string]any) error {
		if c, ok := asObject(node["call"]); ok {
			if idVal, has := c["id"]; has {
				id, ok := idVal.(string)
				if !ok || !fnIDs[id] {
					return fmt.Errorf("Unknown function id in call: %v", idVal)
				}
			} else if nameVal, has := c["name"]; has {
				name, ok := nameVal.(string)
				if !ok || !fnNames[name] {
					return fmt.Errorf("Unknown function name in call: %v", nameVal)
				}
			}
		}
		if len(node) == 1 && !has(node, "var") && !has(node, "call") {
			for op, val := range node {
				cnt := exprCount(val)
				if !ops.CheckArity(op, cnt) {
					return fmt.Errorf("Operator %s invalid arity: %d", op, cnt)
				}
			}
		}
		return nil
	}

	var walkErr error
	walk := func(expr any) {
		if walkErr != nil {
			return
		}
		walkExpr(expr, func(node map[string]any) {
			if walkErr == nil {
				walkErr = checkNode(node)
			}
		})
	}

	for _, raw := range stmts {
		stmt, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("Statements must be objects")
		}
		if spec, ok := asObject(stmt["let"]); ok {
			if v, has := spec["value"]; has {
				walk(v)
			}
		}
		if spec, ok := asObject(stmt["set"]); ok {
			if v, has := spec["value"]; has {
				walk(v)
			}
		}
		if v, has := stmt["return"]; has {
			walk(v)
		}
		if v, has := stmt["expr"]; has {
			walk(v)
		}
		if spec, ok := asObject(stmt["if"]); ok {
			if c, has := spec["cond"]; has {
				walk(c)
			}
			for _, key := range []string{"then", "else"} {
				if block, ok := spec[key].([]any); ok {
					for _, raw := range block {
						s, ok := raw.(map[string]any)
						if !ok {
							continue
						}
						if v, has := s["return"]; has {
							walk(v)
						}
						if v, has := s["expr"]; has {
							walk(v)
						}
						if lspec, ok := asObject(s["let"]); ok {
							if v, has := lspec["value"]; has {
								walk(v)
							}
						}
					}
				}
			}
		}
		if spec, ok := asObject(stmt["def"]); ok {
			if body, ok := spec["body"].([]any); ok {
				for _, raw := range body {
					s, ok := raw.(map[string]any)
					if !ok {
						continue
					}
					if v, has := s["return"]; has {
						walk(v)
					}
					if v, has := s["expr"]; has {
						walk(v)
					}
					if lspec, ok := asObject(s["let"]); ok {
						if v, has := lspec["value"]; has {
							walk(v)
						}
					}
					if ispec, ok := asObject(s["if"]); ok {
						if c, has := ispec["cond"]; has {
							walk(c)
						}
					}
				}
			}
		}
		if walkErr != nil {
			return walkErr
		}
	}
	return nil
}

func collectFunctions(stmts []any) (names map[string]bool, ids map[string]bool) {
	names, ids = map[string]bool{}, map[string]bool{}
	for _, raw := range stmts {
		stmt, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		spec, ok := asObject(stmt["def"])
		if !ok {
			continue
		}
		if n, ok := spec["name"].(string); ok {
			names[n] = true
		}
		if i, ok := spec["id"].(string); ok {
			ids[i] = true
		}
	}
	return names, ids
}

func walkExpr(expr any, fn func(map[string]any)) {
	switch v := expr.(type) {
	case []any:
		for _, e := range v {
			walkExpr(e, fn)
		}
	case map[string]any:
		for _, sub := range v {
			walkExpr(sub, fn)
		}
		fn(v)
	}
}

func exprCount(val any) int {
	if list, ok := val.([]any); ok {
		return len(list)
	}
	return 1
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// ValidateProgramReport is the accumulating validator: it collects every
// issue instead of stopping at the first. preferID additionally emits
// W_PREFER_ID when a name-based call could be unambiguously resolved to a
// function id.
func ValidateProgramReport(root any, preferID bool) []amerr.ValidationIssue {
	var issues []amerr.ValidationIssue
	push := func(code, msg, path string, severity amerr.Severity, hint string) {
		issues = append(issues, amerr.ValidationIssue{Code: code, Message: msg, Path: path, Severity: severity, Hint: hint})
	}

	prog, ok := unwrapProgram(root)
	if !ok {
		push(amerr.EProgramShape, "Program must be a list or {program:[...]} wrapper", "/", amerr.SeverityError, "")
		return issues
	}
	stmts, ok := prog.([]any)
	if !ok {
		push(amerr.EProgramShape, "Program must be a list or {program:[...]} wrapper", "/", amerr.SeverityError, "")
		return issues
	}

	fnNames, fnIDs := collectFunctions(stmts)
	nameToID := map[string]string{}
	nameDups := map[string]bool{}
	for _, raw := range stmts {
		stmt, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		d, ok := asObject(stmt["def"])
		if !ok {
			continue
		}
		n, nok := d["name"].(string)
		i, iok := d["id"].(string)
		if nok && iok {
			if existing, seen := nameToID[n]; seen && existing != i {
				nameDups[n] = true
			} else {
				nameToID[n] = i
			}
		}
	}

	var checkExpr func(node any, path string)
	checkExpr = func(node any, path string) {
		switch v := node.(type) {
		case map[string]any:
			if c, ok := asObject(v["call"]); ok {
				if idVal, has := c["id"]; has {
					id, ok := idVal.(string)
					if !ok || !fnIDs[id] {
						push(amerr.EUnknownFuncID, fmt.Sprintf("Unknown function id in call: %v", idVal), path, amerr.SeverityError, "")
					}
				} else if nameVal, has := c["name"]; has {
					name, ok := nameVal.(string)
					if !ok || !fnNames[name] {
						push(amerr.EUnknownFuncName, fmt.Sprintf("Unknown function name in call: %v", nameVal), path, amerr.SeverityError, "")
					} else if preferID && nameToID[name] != "" && !nameDups[name] {
						push(amerr.WPreferID, fmt.Sprintf("Call by name can use id %s", nameToID[name]), path, amerr.SeverityWarning, "Run: amorph migrate-calls <file> --to=id")
					}
				}
			}
			if len(v) == 1 && !has(v, "var") && !has(v, "call") {
				for op, val := range v {
					cnt := exprCount(val)
					if !ops.CheckArity(op, cnt) {
						push(amerr.EOpArity, fmt.Sprintf("Operator %s invalid arity: %d", op, cnt), path, amerr.SeverityError, "")
					}
				}
			}
			for k, sub := range v {
				checkExpr(sub, path+"/"+k)
			}
		case []any:
			for idx, item := range v {
				checkExpr(item, fmt.Sprintf("%s/$[%d]", path, idx))
			}
		}
	}

	sawName, sawID := false, false
	var markCalls func(node any)
	markCalls = func(node any) {
		switch v := node.(type) {
		case map[string]any:
			if c, ok := asObject(v["call"]); ok {
				if has(c, "id") {
					sawID = true
				}
				if has(c, "name") {
					sawName = true
				}
			}
			for _, sub := range v {
				markCalls(sub)
			}
		case []any:
			for _, item := range v {
				markCalls(item)
			}
		}
	}

	for i, raw := range stmts {
		p := fmt.Sprintf("/$[%d]", i)
		stmt, ok := raw.(map[string]any)
		if !ok {
			push(amerr.EStmtShape, "Statement must be object", p, amerr.SeverityError, "")
			continue
		}
		markCalls(stmt)
		if spec, ok := asObject(stmt["let"]); ok {
			if v, has := spec["value"]; has {
				checkExpr(v, p+"/let/value")
			}
		}
		if spec, ok := asObject(stmt["set"]); ok {
			if v, has := spec["value"]; has {
				checkExpr(v, p+"/set/value")
			}
		}
		if v, has := stmt["return"]; has {
			checkExpr(v, p+"/return")
		}
		if v, has := stmt["expr"]; has {
			checkExpr(v, p+"/expr")
		}
		if spec, ok := asObject(stmt["if"]); ok {
			if c, has := spec["cond"]; has {
				checkExpr(c, p+"/if/cond")
			}
			for _, key := range []string{"then", "else"} {
				if block, ok := spec[key].([]any); ok {
					for j, raw := range block {
						s, ok := raw.(map[string]any)
						if !ok {
							continue
						}
						q := fmt.Sprintf("%s/if/%s/$[%d]", p, key, j)
						if v, has := s["return"]; has {
							checkExpr(v, q+"/return")
						}
						if v, has := s["expr"]; has {
							checkExpr(v, q+"/expr")
						}
						if lspec, ok := asObject(s["let"]); ok {
							if v, has := lspec["value"]; has {
								checkExpr(v, q+"/let/value")
							}
						}
					}
				}
			}
		}
		if spec, ok := asObject(stmt["def"]); ok {
			body, _ := spec["body"].([]any)
			fid, ok := spec["id"].(string)
			if !ok {
				fid, _ = spec["name"].(string)
			}
			if fid == "" {
				fid = "?"
			}
			for j, raw := range body {
				s, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				q := fmt.Sprintf("/fn[%s]/body/$[%d]", fid, j)
				if v, has := s["return"]; has {
					checkExpr(v, q+"/return")
				}
				if v, has := s["expr"]; has {
					checkExpr(v, q+"/expr")
				}
				if lspec, ok := asObject(s["let"]); ok {
					if v, has := lspec["value"]; has {
						checkExpr(v, q+"/let/value")
					}
				}
			}
		}
	}

	if sawName && sawID {
		push(amerr.WMixedCallStyle, "Mixed call styles (name and id) found", "/", amerr.SeverityWarning, "Unify with: amorph migrate-calls <file> --to=id")
	}

	return issues
}

package validate

import (
	"fmt"

	"github.com/elmisi/amorph-code/internal/amerr"
)

// scope is a lexical scope: a set of bound names with a parent link,
// ported from original_source/amorph/scope_analyzer.py.
type scope struct {
	vars   map[string]bool
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]bool{}, parent: parent}
}

func (s *scope) define(name string) { s.vars[name] = true }

func (s *scope) isDefined(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.vars[name] {
			return true
		}
	}
	return false
}

func (s *scope) isDefinedLocally(name string) bool { return s.vars[name] }

// scopeAnalyzer walks a program and reports E_UNDEFINED_VAR and
// W_VARIABLE_SHADOW issues. then/else blocks and function bodies each
// open an independent child scope, so bindings never leak across branches.
type scopeAnalyzer struct {
	issues []amerr.ValidationIssue
}

// AnalyzeScopes runs optional scope analysis over a raw statement list.
func AnalyzeScopes(stmts []any) []amerr.ValidationIssue {
	a := &scopeAnalyzer{}
	global := newScope(nil)
	for i, raw := range stmts {
		a.analyzeStmt(raw, global, fmt.Sprintf("/$[%d]", i))
	}
	return a.issues
}

func (a *scopeAnalyzer) push(code, msg, path string, severity amerr.Severity, hint string) {
	a.issues = append(a.issues, amerr.ValidationIssue{Code: code, Message: msg, Path: path, Severity: severity, Hint: hint})
}

func (a *scopeAnalyzer) analyzeExpr(expr any, sc *scope, path string) {
	switch v := expr.(type) {
	case map[string]any:
		if nameVal, has := v["var"]; has {
			name, _ := nameVal.(string)
			if !sc.isDefined(name) {
				a.push(amerr.EUndefinedVar, fmt.Sprintf("Variable '%s' used before definition", name), path,
					amerr.SeverityError, fmt.Sprintf("Add 'let %s' before use or check for typos", name))
			}
		}
		for k, sub := range v {
			if k == "var" {
				continue
			}
			a.analyzeExpr(sub, sc, path+"/"+k)
		}
	case []any:
		for i, item := range v {
			a.analyzeExpr(item, sc, fmt.Sprintf("%s/$[%d]", path, i))
		}
	}
}

func (a *scopeAnalyzer) analyzeStmt(raw any, sc *scope, path string) {
	stmt, ok := raw.(map[string]any)
	if !ok {
		return
	}

	if spec, ok := asObject(stmt["let"]); ok {
		name, _ := spec["name"].(string)
		value, hasValue := spec["value"]

		if name != "" && sc.isDefinedLocally(name) {
			a.push(amerr.WVariableShadow, fmt.Sprintf("Variable '%s' shadows outer definition", name), path,
				amerr.SeverityWarning, "Use different name or rename outer variable")
		}
		if hasValue {
			a.analyzeExpr(value, sc, path+"/let/value")
		}
		if name != "" {
			sc.define(name)
		}
	}

	if spec, ok := asObject(stmt["set"]); ok {
		name, _ := spec["name"].(string)
		value, hasValue := spec["value"]

		if name != "" && !sc.isDefined(name) {
			a.push(amerr.EUndefinedVar, fmt.Sprintf("Cannot set undefined variable '%s'", name), path,
				amerr.SeverityError, fmt.Sprintf("Use 'let' to define '%s' first", name))
		}
		if hasValue {
			a.analyzeExpr(value, sc, path+"/set/value")
		}
	}

	if spec, ok := asObject(stmt["def"]); ok {
		fnName, _ := spec["name"].(string)
		params, _ := asStringSlice(spec["params"])
		body, _ := spec["body"].([]any)

		fnScope := newScope(sc)
		for _, p := range params {
			fnScope.define(p)
		}
		fnID, ok := spec["id"].(string)
		if !ok {
			fnID = fnName
		}
		for j, s := range body {
			a.analyzeStmt(s, fnScope, fmt.Sprintf("/fn[%s]/body/$[%d]", fnID, j))
		}
	}

	if spec, ok := asObject(stmt["if"]); ok {
		if cond, has := spec["cond"]; has {
			a.analyzeExpr(cond, sc, path+"/if/cond")
		}
		if then, ok := spec["then"].([]any); ok {
			thenScope := newScope(sc)
			for j, s := range then {
				a.analyzeStmt(s, thenScope, fmt.Sprintf("%s/if/then/$[%d]", path, j))
			}
		}
		if els, ok := spec["else"].([]any); ok {
			elseScope := newScope(sc)
			for j, s := range els {
				a.analyzeStmt(s, elseScope, fmt.Sprintf("%s/if/else/$[%d]", path, j))
			}
		}
	}

	if v, has := stmt["return"]; has {
		a.analyzeExpr(v, sc, path+"/return")
	}

	if v, has := stmt["expr"]; has {
		a.analyzeExpr(v, sc, path+"/expr")
	}

	if v, has := stmt["print"]; has {
		if list, ok := v.([]any); ok {
			for i, item := range list {
				a.analyzeExpr(item, sc, fmt.Sprintf("%s/print/$[%d]", path, i))
			}
		} else {
			a.analyzeExpr(v, sc, path+"/print")
		}
	}
}

func asStringSlice(v any) ([]string, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

package editengine

import (
	"fmt"
	"sort"

	"github.com/elmisi/amorph-code/internal/amerr"
)

// RefType distinguishes how a variable is touched at a given site.
type RefType string

const (
	RefDefinition RefType = "definition"
	RefRead       RefType = "read"
	RefWrite      RefType = "write"
)

// VariableReference records one touch of a variable name somewhere in
// the program, tagged with the function-scope it occurred in.
type VariableReference struct {
	VarName      string
	Path         string
	RefType      RefType
	ScopeID      string
	StatementIdx int
}

const globalScope = "global"

// AnalyzeProgram walks every statement and records every variable
// touch, grouped by variable name. Ported from refactor.py's
// VariableAnalyzer.analyze_program. Unlike the lexical scope analysis
// in the validate package, scope_id here identifies the enclosing
// function (or "global"), not a shadowing boundary: if/else blocks
// inherit their enclosing scope_id rather than opening a new one.
func AnalyzeProgram(program []any) map[string][]VariableReference {
	refs := map[string][]VariableReference{}
	add := func(ref VariableReference) {
		refs[ref.VarName] = append(refs[ref.VarName], ref)
	}

	var walkExpr func(expr any, scopeID string, idx int, path string)
	walkExpr = func(expr any, scopeID string, idx int, path string) {
		m, ok := asObject(expr)
		if ok {
			if name, has := m["var"].(string); has {
				add(VariableReference{VarName: name, Path: path, RefType: RefRead, ScopeID: scopeID, StatementIdx: idx})
			}
			for k, sub := range m {
				walkExpr(sub, scopeID, idx, path+"/"+k)
			}
			return
		}
		if list, ok := expr.([]any); ok {
			for i, item := range list {
				walkExpr(item, scopeID, idx, fmt.Sprintf("%s/$[%d]", path, i))
			}
		}
	}

	var walkStmt func(raw any, scopeID string, idx int, path string)
	walkStmt = func(raw any, scopeID string, idx int, path string) {
		stmt, ok := asObject(raw)
		if !ok {
			return
		}

		if spec, ok := asObject(stmt["let"]); ok {
			if name, ok := spec["name"].(string); ok {
				add(VariableReference{VarName: name, Path: path + "/let/name", RefType: RefDefinition, ScopeID: scopeID, StatementIdx: idx})
			}
			if v, has := spec["value"]; has {
				walkExpr(v, scopeID, idx, path+"/let/value")
			}
		}
		if spec, ok := asObject(stmt["set"]); ok {
			if name, ok := spec["name"].(string); ok {
				add(VariableReference{VarName: name, Path: path + "/set/name", RefType: RefWrite, ScopeID: scopeID, StatementIdx: idx})
			}
			if v, has := spec["value"]; has {
				walkExpr(v, scopeID, idx, path+"/set/value")
			}
		}
		if v, has := stmt["return"]; has {
			walkExpr(v, scopeID, idx, path+"/return")
		}
		if v, has := stmt["expr"]; has {
			walkExpr(v, scopeID, idx, path+"/expr")
		}
		if v, has := stmt["print"]; has {
			walkExpr(v, scopeID, idx, path+"/print")
		}
		if spec, ok := asObject(stmt["if"]); ok {
			if c, has := spec["cond"]; has {
				walkExpr(c, scopeID, idx, path+"/if/cond")
			}
			if then, ok := spec["then"].([]any); ok {
				for j, s := range then {
					walkStmt(s, scopeID, idx, fmt.Sprintf("%s/if/then/$[%d]", path, j))
				}
			}
			if els, ok := spec["else"].([]any); ok {
				for j, s := range els {
					walkStmt(s, scopeID, idx, fmt.Sprintf("%s/if/else/$[%d]", path, j))
				}
			}
		}
		if spec, ok := asObject(stmt["def"]); ok {
			fnID, ok := spec["id"].(string)
			if !ok {
				fnID, ok = spec["name"].(string)
				if !ok {
					fnID = "anonymous"
				}
			}
			if params, ok := spec["params"].([]any); ok {
				for _, p := range params {
					if name, ok := p.(string); ok {
						add(VariableReference{VarName: name, Path: path + "/def/params", RefType: RefDefinition, ScopeID: fnID, StatementIdx: idx})
					}
				}
			}
			if body, ok := spec["body"].([]any); ok {
				for j, s := range body {
					walkStmt(s, fnID, idx, fmt.Sprintf("/fn[%s]/body/$[%d]", fnID, j))
				}
			}
		}
	}

	for i, raw := range program {
		walkStmt(raw, globalScope, i, fmt.Sprintf("/$[%d]", i))
	}
	return refs
}

// RenameVariable renames old_name to new_name, optionally restricted to
// a scope (function id, or "all"). Returns the number of sites changed.
// A path prefix, when given, only decides whether any matching reference
// exists (E_NOT_FOUND otherwise); the rename itself is not limited to
// that subtree.
func RenameVariable(program *[]any, spec map[string]any) (int, error) {
	oldName, ok := spec["old_name"].(string)
	if !ok || oldName == "" {
		return 0, amerr.NewEditError(amerr.EBadTarget, "old_name must be a non-empty string", "")
	}
	newName, ok := spec["new_name"].(string)
	if !ok || newName == "" {
		return 0, amerr.NewEditError(amerr.EBadTarget, "new_name must be a non-empty string", "")
	}
	scope, _ := spec["scope"].(string)
	if scope == "" {
		scope = "all"
	}
	pathFilter, hasPathFilter := spec["path"].(string)

	refs := AnalyzeProgram(*program)
	all, has := refs[oldName]
	if !has || len(all) == 0 {
		return 0, amerr.NewEditError(amerr.ENotFound, "variable not found: "+oldName, "")
	}

	targetRefs := make([]VariableReference, 0, len(all))
	for _, r := range all {
		if scope != "all" && r.ScopeID != scope {
			continue
		}
		if hasPathFilter && !hasPrefix(r.Path, pathFilter) {
			continue
		}
		targetRefs = append(targetRefs, r)
	}
	if len(targetRefs) == 0 {
		return 0, amerr.NewEditError(amerr.ENotFound, "variable not found in scope: "+oldName, "")
	}

	changed := 0

	var renameInExpr func(expr any) any
	renameInExpr = func(expr any) any {
		m, ok := asObject(expr)
		if ok {
			out := make(map[string]any, len(m))
			for k, v := range m {
				out[k] = renameInExpr(v)
			}
			if name, has := out["var"].(string); has && name == oldName {
				out["var"] = newName
				changed++
			}
			return out
		}
		if list, ok := expr.([]any); ok {
			out := make([]any, len(list))
			for i, v := range list {
				out[i] = renameInExpr(v)
			}
			return out
		}
		return expr
	}

	inScope := func(fnID string) bool { return scope == "all" || fnID == scope }

	var renameInStmt func(raw any, currentScope string)
	renameInStmt = func(raw any, currentScope string) {
		stmt, ok := asObject(raw)
		if !ok {
			return
		}
		gated := inScope(currentScope)

		if spec, ok := asObject(stmt["let"]); ok {
			if gated {
				if name, has := spec["name"].(string); has && name == oldName {
					spec["name"] = newName
					changed++
				}
				if v, has := spec["value"]; has {
					spec["value"] = renameInExpr(v)
				}
			}
		}
		if spec, ok := asObject(stmt["set"]); ok {
			if gated {
				if name, has := spec["name"].(string); has && name == oldName {
					spec["name"] = newName
					changed++
				}
				if v, has := spec["value"]; has {
					spec["value"] = renameInExpr(v)
				}
			}
		}
		if gated {
			if v, has := stmt["return"]; has {
				stmt["return"] = renameInExpr(v)
			}
			if v, has := stmt["expr"]; has {
				stmt["expr"] = renameInExpr(v)
			}
			if v, has := stmt["print"]; has {
				stmt["print"] = renameInExpr(v)
			}
		}
		if ifs, ok := asObject(stmt["if"]); ok {
			if gated {
				if c, has := ifs["cond"]; has {
					ifs["cond"] = renameInExpr(c)
				}
			}
			if then, ok := ifs["then"].([]any); ok {
				for _, s := range then {
					renameInStmt(s, currentScope)
				}
			}
			if els, ok := ifs["else"].([]any); ok {
				for _, s := range els {
					renameInStmt(s, currentScope)
				}
			}
		}
		if d, ok := asObject(stmt["def"]); ok {
			fnID, ok := d["id"].(string)
			if !ok {
				fnID, ok = d["name"].(string)
				if !ok {
					fnID = "anonymous"
				}
			}
			if inScope(fnID) {
				if params, ok := d["params"].([]any); ok {
					for i, p := range params {
						if name, ok := p.(string); ok && name == oldName {
							params[i] = newName
							changed++
						}
					}
				}
			}
			if body, ok := d["body"].([]any); ok {
				for _, s := range body {
					renameInStmt(s, fnID)
				}
			}
		}
	}

	for _, raw := range *program {
		renameInStmt(raw, globalScope)
	}

	return changed, nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return t
	}
}

// ExtractFunction extracts a consecutive run of top-level statement
// indices into a new function definition, inserted at insert_at, and
// (by default) replaces the first extracted statement with a call to
// it. Ported from refactor.py's op_extract_function.
func ExtractFunction(program *[]any, spec map[string]any) error {
	fnName, ok := spec["function_name"].(string)
	if !ok || fnName == "" {
		return amerr.NewEditError(amerr.EBadTarget, "function_name must be a non-empty string", "")
	}
	rawIndices, ok := spec["statements"].([]any)
	if !ok || len(rawIndices) == 0 {
		return amerr.NewEditError(amerr.EBadTarget, "statements must be a non-empty list", "")
	}
	rawParams, ok := spec["parameters"].([]any)
	if !ok {
		rawParams = []any{}
	}
	insertAtIdx := 0
	if v, ok := spec["insert_at"].(float64); ok {
		insertAtIdx = int(v)
	}
	replaceWithCall := true
	if v, ok := spec["replace_with_call"].(bool); ok {
		replaceWithCall = v
	}

	prog := *program
	indices := make([]int, 0, len(rawIndices))
	for _, raw := range rawIndices {
		f, ok := raw.(float64)
		if !ok {
			return amerr.NewEditError(amerr.EBadTarget, "statement indices must be numbers", "")
		}
		idx := int(f)
		if idx < 0 || idx >= len(prog) {
			return amerr.NewEditError(amerr.EBadTarget, "statement index out of range", "")
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			return amerr.NewEditError(amerr.EBadTarget, "Statement indices must be consecutive", "")
		}
	}

	params := make([]string, 0, len(rawParams))
	for _, p := range rawParams {
		if s, ok := p.(string); ok {
			params = append(params, s)
		}
	}

	body := make([]any, 0, len(indices))
	for _, idx := range indices {
		body = append(body, deepCopy(prog[idx]))
	}

	fnDef := map[string]any{"name": fnName, "params": toAnySlice(params), "body": body}
	if id, ok := spec["function_id"].(string); ok && id != "" {
		fnDef["id"] = id
	}
	defStmt := map[string]any{"def": fnDef}

	prog = insertAt(prog, insertAtIdx, defStmt)

	adjusted := make([]int, len(indices))
	for i, idx := range indices {
		if idx >= insertAtIdx {
			adjusted[i] = idx + 1
		} else {
			adjusted[i] = idx
		}
	}

	if replaceWithCall {
		args := make([]any, 0, len(params))
		for _, p := range params {
			args = append(args, map[string]any{"var": p})
		}
		call := map[string]any{"name": fnName, "args": args}
		if id, ok := fnDef["id"].(string); ok {
			delete(call, "name")
			call["id"] = id
		}
		callStmt := map[string]any{"expr": map[string]any{"call": call}}
		prog[adjusted[0]] = callStmt
		for i := len(adjusted) - 1; i >= 1; i-- {
			prog = deleteAt(prog, adjusted[i])
		}
	}

	*program = prog
	return nil
}

func toAnySlice(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

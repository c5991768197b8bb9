// Package editengine implements the declarative, by-id/by-path program
// editing operations, ported from original_source/amorph/edits.py and
// refactor.py.
package editengine

import (
	"github.com/elmisi/amorph-code/internal/amerr"
)

// DeepWalkExpr recurses into an expression tree, invoking fn on every
// object node and scalar leaf it encounters after recursing into its
// children, but never on a list container itself. Ported from
// edits.py's deep_walk_expr.
func DeepWalkExpr(expr any, fn func(any) any) any {
	switch v := expr.(type) {
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = DeepWalkExpr(x, fn)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = DeepWalkExpr(val, fn)
		}
		return fn(out)
	default:
		return fn(expr)
	}
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// AddFunction appends a new def statement to the program.
func AddFunction(program *[]any, spec map[string]any) error {
	name, ok := spec["name"].(string)
	if !ok {
		return amerr.NewEditError(amerr.EBadTarget, "name must be a string", "")
	}
	params, ok := spec["params"].([]any)
	if !ok {
		return amerr.NewEditError(amerr.EBadTarget, "params must be a list", "")
	}
	body, ok := spec["body"].([]any)
	if !ok {
		return amerr.NewEditError(amerr.EBadTarget, "body must be a list", "")
	}
	def := map[string]any{"name": name, "params": params, "body": body}
	if id, ok := spec["id"].(string); ok {
		def["id"] = id
	}
	*program = append(*program, map[string]any{"def": def})
	return nil
}

// RenameFunction renames a def (resolved by id or by unique name match)
// and rewrites every name-based call site accordingly. id-based call
// sites are left untouched. Returns the number of defs renamed.
func RenameFunction(program *[]any, spec map[string]any) (int, error) {
	var byID, byName string
	if v, ok := spec["id"].(string); ok {
		byID = v
	} else if v, ok := spec["from"].(string); ok {
		byName = v
	} else {
		return 0, amerr.NewEditError(amerr.EBadTarget, "must provide id or from", "")
	}
	to, ok := spec["to"].(string)
	if !ok {
		return 0, amerr.NewEditError(amerr.EBadTarget, "to must be a string", "")
	}

	var oldName string
	renamed := 0

	if byID != "" {
		found := false
		for _, raw := range *program {
			stmt, ok := asObject(raw)
			if !ok {
				continue
			}
			d, ok := asObject(stmt["def"])
			if !ok {
				continue
			}
			if id, _ := d["id"].(string); id == byID {
				oldName, _ = d["name"].(string)
				d["name"] = to
				renamed++
				found = true
			}
		}
		if !found {
			return 0, amerr.NewEditError(amerr.ENotFound, "no function with id "+byID, "")
		}
	} else {
		matches := 0
		for _, raw := range *program {
			stmt, ok := asObject(raw)
			if !ok {
				continue
			}
			d, ok := asObject(stmt["def"])
			if !ok {
				continue
			}
			if n, _ := d["name"].(string); n == byName {
				matches++
			}
		}
		if matches == 0 {
			return 0, amerr.NewEditError(amerr.ENotFound, "no function named "+byName, "")
		}
		if matches > 1 {
			return 0, amerr.NewEditError(amerr.EAmbiguous, "multiple functions named "+byName, "")
		}
		for _, raw := range *program {
			stmt, ok := asObject(raw)
			if !ok {
				continue
			}
			d, ok := asObject(stmt["def"])
			if !ok {
				continue
			}
			if n, _ := d["name"].(string); n == byName {
				oldName = byName
				d["name"] = to
				renamed++
			}
		}
	}

	replaceCalls := func(node any) any {
		m, ok := asObject(node)
		if !ok {
			return node
		}
		c, ok := asObject(m["call"])
		if !ok {
			return node
		}
		if _, hasID := c["id"]; hasID {
			return node // id-based calls are untouched
		}
		if n, _ := c["name"].(string); n == oldName {
			c["name"] = to
		}
		return node
	}

	// walkBodyStmtValues covers def-body statements: let/expr/return plus
	// set.value and if.cond, matching op_rename_function's body walk.
	walkBodyStmtValues := func(stmt map[string]any) {
		if v, has := stmt["return"]; has {
			stmt["return"] = DeepWalkExpr(v, replaceCalls)
		}
		if v, has := stmt["expr"]; has {
			stmt["expr"] = DeepWalkExpr(v, replaceCalls)
		}
		if spec, ok := asObject(stmt["let"]); ok {
			if val, has := spec["value"]; has {
				spec["value"] = DeepWalkExpr(val, replaceCalls)
			}
		}
		if spec, ok := asObject(stmt["set"]); ok {
			if val, has := spec["value"]; has {
				spec["value"] = DeepWalkExpr(val, replaceCalls)
			}
		}
		if spec, ok := asObject(stmt["if"]); ok {
			if cond, has := spec["cond"]; has {
				spec["cond"] = DeepWalkExpr(cond, replaceCalls)
			}
		}
	}

	// walkTopStmtValues covers top-level statements: let/expr/return only,
	// matching op_rename_function's top-level walk.
	walkTopStmtValues := func(stmt map[string]any) {
		if v, has := stmt["let"]; has {
			if spec, ok := asObject(v); ok {
				if val, has := spec["value"]; has {
					spec["value"] = DeepWalkExpr(val, replaceCalls)
				}
			}
		}
		if v, has := stmt["expr"]; has {
			stmt["expr"] = DeepWalkExpr(v, replaceCalls)
		}
		if v, has := stmt["return"]; has {
			stmt["return"] = DeepWalkExpr(v, replaceCalls)
		}
	}

	for _, raw := range *program {
		stmt, ok := asObject(raw)
		if !ok {
			continue
		}
		if d, ok := asObject(stmt["def"]); ok {
			if body, ok := d["body"].([]any); ok {
				for _, braw := range body {
					if bstmt, ok := asObject(braw); ok {
						walkBodyStmtValues(bstmt)
					}
				}
			}
		}
		walkTopStmtValues(stmt)
	}

	return renamed, nil
}

func resolveContainer(program *[]any, spec map[string]any) ([]any, int, listSetter, error) {
	if target, ok := spec["target"].(string); ok {
		idx, found := FindStmtByID(*program, target)
		if !found {
			return nil, 0, nil, amerr.NewEditError(amerr.ENotFound, "no statement with id "+target, "")
		}
		p := program
		return *p, idx, func(v []any) { *p = v }, nil
	}
	if path, ok := spec["path"].(string); ok {
		return FindByPath(program, path)
	}
	return nil, 0, nil, amerr.NewEditError(amerr.EBadTarget, "must provide target or path", "")
}

// InsertBefore inserts node into the resolved container immediately
// before the resolved index.
func InsertBefore(program *[]any, spec map[string]any) error {
	node, ok := spec["node"]
	if !ok {
		return amerr.NewEditError(amerr.EBadTarget, "node is required", "")
	}
	list, idx, commit, err := resolveContainer(program, spec)
	if err != nil {
		return err
	}
	commit(insertAt(list, idx, node))
	return nil
}

// InsertAfter inserts node into the resolved container immediately
// after the resolved index.
func InsertAfter(program *[]any, spec map[string]any) error {
	node, ok := spec["node"]
	if !ok {
		return amerr.NewEditError(amerr.EBadTarget, "node is required", "")
	}
	list, idx, commit, err := resolveContainer(program, spec)
	if err != nil {
		return err
	}
	commit(insertAt(list, idx+1, node))
	return nil
}

// DeleteNode removes the element at the resolved index from its
// container.
func DeleteNode(program *[]any, spec map[string]any) error {
	list, idx, commit, err := resolveContainer(program, spec)
	if err != nil {
		return err
	}
	commit(deleteAt(list, idx))
	return nil
}

// ReplaceCall rewrites every call matching spec.match (by name or id)
// to spec.set's name/id/args inside let values, expr and return
// statements, and if conditions, both at top level and in the direct
// statements of def bodies. Set values, print arguments and the
// statements of if branches are not searched. Returns the count of calls
// changed.
func ReplaceCall(program *[]any, spec map[string]any) (int, error) {
	match, ok := asObject(spec["match"])
	if !ok {
		return 0, amerr.NewEditError(amerr.EBadTarget, "match is required", "")
	}
	set, ok := asObject(spec["set"])
	if !ok {
		return 0, amerr.NewEditError(amerr.EBadTarget, "set is required", "")
	}

	matchID, hasMatchID := match["id"].(string)
	matchName, hasMatchName := match["name"].(string)

	changed := 0
	replace := func(node any) any {
		m, ok := asObject(node)
		if !ok {
			return node
		}
		c, ok := asObject(m["call"])
		if !ok {
			return node
		}
		isMatch := false
		if hasMatchID {
			if id, _ := c["id"].(string); id == matchID {
				isMatch = true
			}
		} else if hasMatchName {
			if n, _ := c["name"].(string); n == matchName {
				isMatch = true
			}
		}
		if !isMatch {
			return node
		}
		if id, ok := set["id"].(string); ok {
			c["id"] = id
			delete(c, "name")
		}
		if n, ok := set["name"].(string); ok {
			c["name"] = n
			delete(c, "id")
		}
		if args, ok := set["args"]; ok {
			c["args"] = args
		}
		changed++
		return node
	}

	walk := func(stmt map[string]any) {
		if spec, ok := asObject(stmt["let"]); ok {
			if v, has := spec["value"]; has {
				spec["value"] = DeepWalkExpr(v, replace)
			}
		}
		if v, has := stmt["expr"]; has {
			stmt["expr"] = DeepWalkExpr(v, replace)
		}
		if v, has := stmt["return"]; has {
			stmt["return"] = DeepWalkExpr(v, replace)
		}
		if ifs, ok := asObject(stmt["if"]); ok {
			if c, has := ifs["cond"]; has {
				ifs["cond"] = DeepWalkExpr(c, replace)
			}
		}
	}

	for _, raw := range *program {
		stmt, ok := asObject(raw)
		if !ok {
			continue
		}
		walk(stmt)
		if d, ok := asObject(stmt["def"]); ok {
			if body, ok := d["body"].([]any); ok {
				for _, braw := range body {
					if bstmt, ok := asObject(braw); ok {
						walk(bstmt)
					}
				}
			}
		}
	}

	return changed, nil
}

// Detail records one applied edit, for the edit report.
type Detail struct {
	Op      string
	Changed int
}

// Report summarizes the outcome of ApplyEdits.
type Report struct {
	Applied int
	Details []Detail
}

// ApplyEdits runs each edit in sequence against program, stopping and
// returning an error on the first failure.
func ApplyEdits(program *[]any, edits []any) (Report, error) {
	var report Report
	for _, raw := range edits {
		edit, ok := asObject(raw)
		if !ok {
			return report, amerr.NewEditError(amerr.EBadTarget, "edit must be an object", "")
		}
		op, _ := edit["op"].(string)
		spec, _ := asObject(edit["spec"])
		if spec == nil {
			spec = map[string]any{}
		}

		changed := 1
		var err error

		switch op {
		case "add_function":
			err = AddFunction(program, spec)
		case "rename_function":
			changed, err = RenameFunction(program, spec)
		case "insert_before":
			err = InsertBefore(program, spec)
		case "insert_after":
			err = InsertAfter(program, spec)
		case "delete_node":
			err = DeleteNode(program, spec)
		case "replace_call":
			changed, err = ReplaceCall(program, spec)
		case "rename_variable":
			changed, err = RenameVariable(program, spec)
		case "extract_function":
			err = ExtractFunction(program, spec)
		default:
			err = amerr.NewEditError(amerr.EUnknownOp, "unknown edit op: "+op, "")
		}

		if err != nil {
			return report, err
		}
		report.Applied++
		report.Details = append(report.Details, Detail{Op: op, Changed: changed})
	}
	return report, nil
}

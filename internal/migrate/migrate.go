// Package migrate implements bidirectional call-style migration
// (name-based calls <-> id-based calls), ported from
// original_source/amorph/migrate.py.
package migrate

import "github.com/elmisi/amorph-code/internal/uidgen"

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func buildFnMaps(program []any) (byName map[string]string, dupNames map[string]bool) {
	byName = map[string]string{}
	dupNames = map[string]bool{}
	for _, raw := range program {
		stmt, ok := asObject(raw)
		if !ok {
			continue
		}
		d, ok := asObject(stmt["def"])
		if !ok {
			continue
		}
		name, nok := d["name"].(string)
		fid, fok := d["id"].(string)
		if nok && fok {
			if existing, seen := byName[name]; seen && existing != fid {
				dupNames[name] = true
			} else {
				byName[name] = fid
			}
		}
	}
	return byName, dupNames
}

// ToID rewrites every resolvable name-based call in program to an
// id-based call, assigning missing ids first. Ambiguous names (two
// defs sharing a name with different ids) are left untouched. Returns
// the number of call sites changed.
func ToID(program []any) int {
	uidgen.AddUIDs(program, true)
	byName, dupNames := buildFnMaps(program)
	changed := 0

	var visit func(node any) any
	visit = func(node any) any {
		if m, ok := asObject(node); ok {
			if c, ok := asObject(m["call"]); ok {
				if _, hasID := c["id"]; !hasID {
					if n, ok := c["name"].(string); ok {
						if id, found := byName[n]; found && !dupNames[n] {
							newc := map[string]any{}
							for k, v := range c {
								if k != "name" {
									newc[k] = v
								}
							}
							newc["id"] = id
							changed++
							return map[string]any{"call": newc}
						}
					}
				}
				return node
			}
			out := make(map[string]any, len(m))
			for k, v := range m {
				out[k] = visit(v)
			}
			return out
		}
		if list, ok := node.([]any); ok {
			out := make([]any, len(list))
			for i, x := range list {
				out[i] = visit(x)
			}
			return out
		}
		return node
	}

	for i, stmt := range program {
		program[i] = visit(stmt)
	}
	return changed
}

// ToName rewrites every id-based call whose id resolves to a known
// def back to a name-based call. Returns the number of call sites
// changed.
func ToName(program []any) int {
	uidgen.AddUIDs(program, true)
	byID := map[string]string{}
	for _, raw := range program {
		stmt, ok := asObject(raw)
		if !ok {
			continue
		}
		d, ok := asObject(stmt["def"])
		if !ok {
			continue
		}
		fid, fok := d["id"].(string)
		name, nok := d["name"].(string)
		if fok && nok {
			byID[fid] = name
		}
	}
	changed := 0

	var visit func(node any) any
	visit = func(node any) any {
		if m, ok := asObject(node); ok {
			if c, ok := asObject(m["call"]); ok {
				if id, ok := c["id"].(string); ok {
					if name, found := byID[id]; found {
						newc := map[string]any{}
						for k, v := range c {
							if k != "id" {
								newc[k] = v
							}
						}
						newc["name"] = name
						changed++
						return map[string]any{"call": newc}
					}
				}
				return node
			}
			out := make(map[string]any, len(m))
			for k, v := range m {
				out[k] = visit(v)
			}
			return out
		}
		if list, ok := node.([]any); ok {
			out := make([]any, len(list))
			for i, x := range list {
				out[i] = visit(x)
			}
			return out
		}
		return node
	}

	for i, stmt := range program {
		program[i] = visit(stmt)
	}
	return changed
}

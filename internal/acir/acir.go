// Package acir implements the compact Amorph Compact Intermediate
// Representation codec: string interning plus tagged-array encoding
// of statements and expressions, ported from
// original_source/amorph/acir.py.
package acir

import (
	"fmt"
	"sort"
)

func isOpObject(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	_, isVar := m["var"]
	_, isCall := m["call"]
	return !isVar && !isCall
}

func collectStrings(node any, acc map[string]bool) {
	switch v := node.(type) {
	case map[string]any:
		if id, ok := v["id"].(string); ok {
			acc[id] = true
		}
		if isOpObject(v) {
			for op := range v {
				acc[op] = true
			}
		}
		if name, ok := v["var"].(string); ok {
			acc[name] = true
		}
		if c, ok := v["call"].(map[string]any); ok {
			if n, ok := c["name"].(string); ok {
				acc[n] = true
			}
			if id, ok := c["id"].(string); ok {
				acc[id] = true
			}
		}
		if s, ok := v["let"].(map[string]any); ok {
			if n, ok := s["name"].(string); ok {
				acc[n] = true
			}
		}
		if s, ok := v["set"].(map[string]any); ok {
			if n, ok := s["name"].(string); ok {
				acc[n] = true
			}
		}
		if d, ok := v["def"].(map[string]any); ok {
			if n, ok := d["name"].(string); ok {
				acc[n] = true
			}
			if id, ok := d["id"].(string); ok {
				acc[id] = true
			}
			if params, ok := d["params"].([]any); ok {
				for _, p := range params {
					if s, ok := p.(string); ok {
						acc[s] = true
					}
				}
			}
		}
		// Any node that is not a single-key var/call/operator may be an
		// object literal, whose keys encExpr encodes as symbols.
		if len(v) != 1 {
			for k := range v {
				acc[k] = true
			}
		}
		for _, sub := range v {
			collectStrings(sub, acc)
		}
	case []any:
		for _, x := range v {
			collectStrings(x, acc)
		}
	}
}

// symbolTable maps interned strings to their sorted-order index.
type symbolTable map[string]int

func sym(s string, table symbolTable) int { return table[s] }

func encExpr(expr any, table symbolTable) any {
	switch v := expr.(type) {
	case nil, bool, float64, string:
		return v
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = encExpr(x, table)
		}
		return out
	case map[string]any:
		if name, ok := v["var"].(string); ok {
			return []any{"v", sym(name, table)}
		}
		if c, ok := v["call"].(map[string]any); ok {
			rawArgs, _ := c["args"].([]any)
			args := make([]any, len(rawArgs))
			for i, a := range rawArgs {
				args[i] = encExpr(a, table)
			}
			if id, ok := c["id"].(string); ok {
				return []any{"c", 1, sym(id, table), args}
			}
			name, _ := c["name"].(string)
			return []any{"c", 0, sym(name, table), args}
		}
		if isOpObject(v) {
			var op string
			var val any
			for k, x := range v {
				op, val = k, x
			}
			var rawArgs []any
			if list, ok := val.([]any); ok {
				rawArgs = list
			} else {
				rawArgs = []any{val}
			}
			args := make([]any, len(rawArgs))
			for i, a := range rawArgs {
				args[i] = encExpr(a, table)
			}
			return []any{"o", sym(op, table), args}
		}
		if spread, ok := v["spread"]; ok {
			return []any{"spread", encExpr(spread, table)}
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]any, 0, len(v))
		for _, k := range keys {
			items = append(items, []any{sym(k, table), encExpr(v[k], table)})
		}
		return []any{"obj", items}
	default:
		return v
	}
}

func encStmt(stmt map[string]any, table symbolTable) []any {
	sid := -1
	if id, ok := stmt["id"].(string); ok {
		sid = sym(id, table)
	}
	withSid := func(out []any) []any {
		if sid >= 0 {
			return append(out, sid)
		}
		return out
	}

	if s, ok := stmt["let"].(map[string]any); ok {
		name, _ := s["name"].(string)
		return withSid([]any{"l", sym(name, table), encExpr(s["value"], table)})
	}
	if s, ok := stmt["set"].(map[string]any); ok {
		name, _ := s["name"].(string)
		return withSid([]any{"s", sym(name, table), encExpr(s["value"], table)})
	}
	if s, ok := stmt["def"].(map[string]any); ok {
		name, _ := s["name"].(string)
		rawParams, _ := s["params"].([]any)
		params := make([]any, len(rawParams))
		for i, p := range rawParams {
			str, _ := p.(string)
			params[i] = sym(str, table)
		}
		rawBody, _ := s["body"].([]any)
		body := make([]any, len(rawBody))
		for i, st := range rawBody {
			body[i] = encStmt(st.(map[string]any), table)
		}
		fid := -1
		if id, ok := s["id"].(string); ok {
			fid = sym(id, table)
		}
		return withSid([]any{"d", sym(name, table), params, body, fid})
	}
	if s, ok := stmt["if"].(map[string]any); ok {
		cond := encExpr(s["cond"], table)
		rawThen, _ := s["then"].([]any)
		then := make([]any, len(rawThen))
		for i, st := range rawThen {
			then[i] = encStmt(st.(map[string]any), table)
		}
		rawElse, _ := s["else"].([]any)
		els := make([]any, len(rawElse))
		for i, st := range rawElse {
			els[i] = encStmt(st.(map[string]any), table)
		}
		return withSid([]any{"i", cond, then, els})
	}
	if v, ok := stmt["return"]; ok {
		return withSid([]any{"r", encExpr(v, table)})
	}
	if payload, ok := stmt["print"]; ok {
		var out []any
		if list, ok := payload.([]any); ok {
			for _, x := range list {
				if m, ok := x.(map[string]any); ok {
					if spread, ok := m["spread"]; ok {
						out = append(out, []any{"spread", encExpr(spread, table)})
						continue
					}
				}
				out = append(out, encExpr(x, table))
			}
		} else {
			out = append(out, encExpr(payload, table))
		}
		if out == nil {
			out = []any{}
		}
		return withSid([]any{"p", out})
	}
	if v, ok := stmt["expr"]; ok {
		return withSid([]any{"x", encExpr(v, table)})
	}
	return withSid([]any{"?", nil})
}

// Encoded is the wire shape of an encoded program: {"acir":1,
// "strings":[...], "program":[...]}.
type Encoded struct {
	ACIR    int    `json:"acir" cbor:"acir"`
	Strings []string `json:"strings" cbor:"strings"`
	Program []any  `json:"program" cbor:"program"`
}

// EncodeProgram interns every identifier, operator name and object key
// found anywhere in program (the keys of every multi-key node are
// included) and returns the tagged-array encoding. String literal values
// are not interned.
func EncodeProgram(program []any) Encoded {
	acc := map[string]bool{}
	collectStrings(program, acc)
	strings := make([]string, 0, len(acc))
	for s := range acc {
		strings = append(strings, s)
	}
	sort.Strings(strings)
	table := make(symbolTable, len(strings))
	for i, s := range strings {
		table[s] = i
	}
	enc := make([]any, len(program))
	for i, raw := range program {
		enc[i] = encStmt(raw.(map[string]any), table)
	}
	return Encoded{ACIR: 1, Strings: strings, Program: enc}
}

func unsym(idx int, strings []string) string { return strings[idx] }

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

func decExpr(node any, strings []string) any {
	switch v := node.(type) {
	case nil, bool, float64, string:
		return v
	case []any:
		if len(v) == 0 {
			return []any{}
		}
		tag, _ := v[0].(string)
		switch tag {
		case "v":
			idx := toInt(v[1])
			return map[string]any{"var": unsym(idx, strings)}
		case "c":
			mode := toInt(v[1])
			symIdx := toInt(v[2])
			rawArgs := asList(v[3])
			args := make([]any, len(rawArgs))
			for i, a := range rawArgs {
				args[i] = decExpr(a, strings)
			}
			call := map[string]any{"args": args}
			if mode == 1 {
				call["id"] = unsym(symIdx, strings)
			} else {
				call["name"] = unsym(symIdx, strings)
			}
			return map[string]any{"call": call}
		case "o":
			op := unsym(toInt(v[1]), strings)
			rawArgs := asList(v[2])
			vals := make([]any, len(rawArgs))
			for i, a := range rawArgs {
				vals[i] = decExpr(a, strings)
			}
			if len(vals) == 1 {
				return map[string]any{op: vals[0]}
			}
			return map[string]any{op: vals}
		case "spread":
			return map[string]any{"spread": decExpr(v[1], strings)}
		case "obj":
			out := map[string]any{}
			for _, pair := range asList(v[1]) {
				p := asList(pair)
				out[unsym(toInt(p[0]), strings)] = decExpr(p[1], strings)
			}
			return out
		default:
			out := make([]any, len(v))
			for i, x := range v {
				out[i] = decExpr(x, strings)
			}
			return out
		}
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = decExpr(x, strings)
		}
		return out
	default:
		return v
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return -1
	}
}

var baseLen = map[string]int{"l": 3, "s": 3, "d": 5, "i": 4, "r": 2, "p": 2, "x": 2}

func decStmt(raw any, strings []string) (map[string]any, error) {
	node := asList(raw)
	if len(node) == 0 {
		return nil, fmt.Errorf("empty acir statement")
	}
	tag, _ := node[0].(string)

	var sid *int
	if bl, ok := baseLen[tag]; ok && len(node) == bl+1 {
		v := toInt(node[len(node)-1])
		sid = &v
	}
	withID := func(out map[string]any) map[string]any {
		if sid != nil && *sid >= 0 {
			out["id"] = unsym(*sid, strings)
		}
		return out
	}

	switch tag {
	case "l":
		return withID(map[string]any{"let": map[string]any{
			"name": unsym(toInt(node[1]), strings), "value": decExpr(node[2], strings),
		}}), nil
	case "s":
		return withID(map[string]any{"set": map[string]any{
			"name": unsym(toInt(node[1]), strings), "value": decExpr(node[2], strings),
		}}), nil
	case "d":
		name := unsym(toInt(node[1]), strings)
		rawParams := asList(node[2])
		params := make([]any, len(rawParams))
		for i, p := range rawParams {
			params[i] = unsym(toInt(p), strings)
		}
		rawBody := asList(node[3])
		body := make([]any, len(rawBody))
		for i, st := range rawBody {
			decoded, err := decStmt(st, strings)
			if err != nil {
				return nil, err
			}
			body[i] = decoded
		}
		d := map[string]any{"name": name, "params": params, "body": body}
		fid := toInt(node[4])
		if fid >= 0 {
			d["id"] = unsym(fid, strings)
		}
		return withID(map[string]any{"def": d}), nil
	case "i":
		rawThen := asList(node[2])
		then := make([]any, len(rawThen))
		for i, st := range rawThen {
			decoded, err := decStmt(st, strings)
			if err != nil {
				return nil, err
			}
			then[i] = decoded
		}
		rawElse := asList(node[3])
		els := make([]any, len(rawElse))
		for i, st := range rawElse {
			decoded, err := decStmt(st, strings)
			if err != nil {
				return nil, err
			}
			els[i] = decoded
		}
		return withID(map[string]any{"if": map[string]any{
			"cond": decExpr(node[1], strings), "then": then, "else": els,
		}}), nil
	case "r":
		return withID(map[string]any{"return": decExpr(node[1], strings)}), nil
	case "p":
		var args []any
		for _, a := range asList(node[1]) {
			if list, ok := a.([]any); ok && len(list) > 0 {
				if t, ok := list[0].(string); ok && t == "spread" {
					args = append(args, map[string]any{"spread": decExpr(list[1], strings)})
					continue
				}
			}
			args = append(args, decExpr(a, strings))
		}
		if args == nil {
			args = []any{}
		}
		var payload any = args
		if len(args) == 1 {
			payload = args[0]
		}
		return withID(map[string]any{"print": payload}), nil
	case "x":
		return withID(map[string]any{"expr": decExpr(node[1], strings)}), nil
	default:
		return nil, fmt.Errorf("unknown acir statement tag: %s", tag)
	}
}

// DecodeProgram reverses EncodeProgram, reconstructing the original
// canonical statement tree from its interned tagged-array form.
func DecodeProgram(acir Encoded) ([]any, error) {
	out := make([]any, len(acir.Program))
	for i, raw := range acir.Program {
		decoded, err := decStmt(raw, acir.Strings)
		if err != nil {
			return nil, err
		}
		out[i] = decoded
	}
	return out, nil
}

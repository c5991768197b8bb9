// Package typecheck implements an optional, best-effort static type
// inferencer over the Program Model, ported from
// original_source/amorph/types.py. It never blocks execution: findings
// are advisory warnings reported alongside validation issues.
package typecheck

import (
	"fmt"
	"strings"

	"github.com/elmisi/amorph-code/internal/ops"
)

// Kind is a type category.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindStr
	KindBool
	KindNull
	KindList
	KindObject
	KindFunction
	KindAny
	KindUnknown
)

// Type describes an inferred Amorph value shape.
type Type struct {
	Kind    Kind
	Elem    *Type   // for KindList
	Params  []Type  // for KindFunction
	Returns *Type   // for KindFunction
}

func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindList:
		if t.Elem != nil {
			return fmt.Sprintf("list[%s]", t.Elem)
		}
		return "list[unknown]"
	case KindObject:
		return "object"
	case KindFunction:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		ret := "unknown"
		if t.Returns != nil {
			ret = t.Returns.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), ret)
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

var (
	tInt     = Type{Kind: KindInt}
	tFloat   = Type{Kind: KindFloat}
	tStr     = Type{Kind: KindStr}
	tBool    = Type{Kind: KindBool}
	tNull    = Type{Kind: KindNull}
	tObject  = Type{Kind: KindObject}
	tAny     = Type{Kind: KindAny}
	tUnknown = Type{Kind: KindUnknown}
)

func listOf(elem Type) Type { return Type{Kind: KindList, Elem: &elem} }

// Env is a type environment with parent-chain lookup.
type Env struct {
	vars   map[string]Type
	parent *Env
}

func NewEnv(parent *Env) *Env { return &Env{vars: map[string]Type{}, parent: parent} }

func (e *Env) Define(name string, t Type) { e.vars[name] = t }

func (e *Env) Lookup(name string) Type {
	for cur := e; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t
		}
	}
	return tUnknown
}

// Error is one type-inference finding.
type Error struct {
	Code    string
	Message string
	Path    string
	Hint    string
}

// Inferencer holds accumulated errors and known function signatures
// across a single check_program run.
type Inferencer struct {
	Errors    []Error
	functions map[string]Type
}

func NewInferencer() *Inferencer {
	return &Inferencer{functions: map[string]Type{}}
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// InferExpr infers the type of a raw expression node.
func (inf *Inferencer) InferExpr(expr any, env *Env, path string) Type {
	switch v := expr.(type) {
	case nil:
		return tNull
	case bool:
		return tBool
	case float64:
		if v == float64(int64(v)) {
			return tInt
		}
		return tFloat
	case string:
		return tStr
	case []any:
		if len(v) == 0 {
			return listOf(tUnknown)
		}
		first := inf.InferExpr(v[0], env, fmt.Sprintf("%s/$[0]", path))
		for i := 1; i < len(v); i++ {
			inf.InferExpr(v[i], env, fmt.Sprintf("%s/$[%d]", path, i))
		}
		return listOf(first)
	case map[string]any:
		if name, ok := v["var"].(string); ok {
			return env.Lookup(name)
		}
		if _, ok := v["call"]; ok {
			return tUnknown
		}
		if len(v) == 1 {
			for op, val := range v {
				return inf.InferOperator(op, val, env, path)
			}
		}
		return tObject
	default:
		return tUnknown
	}
}

// InferOperator infers the result type of applying op to val (a single
// argument or a list of arguments).
func (inf *Inferencer) InferOperator(op string, val any, env *Env, path string) Type {
	op = ops.Normalize(op)

	switch op {
	case "add", "sub", "mul", "div", "mod", "pow":
		var args []any
		if list, ok := val.([]any); ok {
			args = list
		} else {
			args = []any{val}
		}
		argTypes := make([]Type, len(args))
		for i, a := range args {
			argTypes[i] = inf.InferExpr(a, env, fmt.Sprintf("%s/%s/$[%d]", path, op, i))
		}

		if op == "add" {
			allInt, allNumeric, allStr := true, true, true
			for _, t := range argTypes {
				if t.Kind != KindInt {
					allInt = false
				}
				if t.Kind != KindInt && t.Kind != KindFloat {
					allNumeric = false
				}
				if t.Kind != KindStr {
					allStr = false
				}
			}
			if allInt {
				return tInt
			}
			if allNumeric {
				return tFloat
			}
			if allStr {
				return tStr
			}
			parts := make([]string, len(argTypes))
			for i, t := range argTypes {
				parts[i] = t.String()
			}
			inf.Errors = append(inf.Errors, Error{
				Code:    "E_TYPE_MISMATCH",
				Message: fmt.Sprintf("add expects all numeric or all string, got %v", parts),
				Path:    path,
				Hint:    "Convert arguments to same type",
			})
			return tUnknown
		}

		for _, t := range argTypes {
			if t.Kind != KindInt && t.Kind != KindFloat && t.Kind != KindUnknown && t.Kind != KindAny {
				parts := make([]string, len(argTypes))
				for i, a := range argTypes {
					parts[i] = a.String()
				}
				inf.Errors = append(inf.Errors, Error{
					Code:    "E_TYPE_MISMATCH",
					Message: fmt.Sprintf("%s expects numeric arguments, got %v", op, parts),
					Path:    path,
				})
				return tUnknown
			}
		}
		for _, t := range argTypes {
			if t.Kind == KindFloat {
				return tFloat
			}
		}
		return tInt

	case "eq", "ne", "lt", "le", "gt", "ge", "and", "or", "not", "has":
		return tBool
	case "list":
		return listOf(tUnknown)
	case "len":
		return tInt
	case "get":
		return tUnknown
	case "concat":
		return tUnknown
	case "range":
		return listOf(tInt)
	case "input":
		return tStr
	case "int":
		return tInt
	default:
		return tUnknown
	}
}

// CheckProgram runs a two-pass check (collect function signatures,
// then check every statement) and returns all findings.
func (inf *Inferencer) CheckProgram(program []any) []Error {
	inf.Errors = nil
	env := NewEnv(nil)

	for _, raw := range program {
		stmt, ok := asObject(raw)
		if !ok {
			continue
		}
		d, ok := asObject(stmt["def"])
		if !ok {
			continue
		}
		name, _ := d["name"].(string)
		params, _ := d["params"].([]any)
		paramTypes := make([]Type, len(params))
		for i := range params {
			paramTypes[i] = tAny
		}
		ret := tAny
		if name != "" {
			inf.functions[name] = Type{Kind: KindFunction, Params: paramTypes, Returns: &ret}
		}
	}

	for i, stmt := range program {
		inf.CheckStmt(stmt, env, fmt.Sprintf("/$[%d]", i))
	}
	return inf.Errors
}

// CheckStmt type-checks one statement, threading bindings through env.
func (inf *Inferencer) CheckStmt(raw any, env *Env, path string) {
	stmt, ok := asObject(raw)
	if !ok {
		return
	}

	if spec, ok := asObject(stmt["let"]); ok {
		name, _ := spec["name"].(string)
		if value, has := spec["value"]; has {
			typ := inf.InferExpr(value, env, path+"/let/value")
			if name != "" {
				env.Define(name, typ)
			}
		}
	}

	if spec, ok := asObject(stmt["set"]); ok {
		if value, has := spec["value"]; has {
			inf.InferExpr(value, env, path+"/set/value")
		}
	}

	if v, has := stmt["return"]; has {
		inf.InferExpr(v, env, path+"/return")
	}

	if v, has := stmt["expr"]; has {
		inf.InferExpr(v, env, path+"/expr")
	}

	if spec, ok := asObject(stmt["if"]); ok {
		if cond, has := spec["cond"]; has {
			inf.InferExpr(cond, env, path+"/if/cond")
		}
		if then, ok := spec["then"].([]any); ok {
			thenEnv := NewEnv(env)
			for j, s := range then {
				inf.CheckStmt(s, thenEnv, fmt.Sprintf("%s/if/then/$[%d]", path, j))
			}
		}
		if els, ok := spec["else"].([]any); ok {
			elseEnv := NewEnv(env)
			for j, s := range els {
				inf.CheckStmt(s, elseEnv, fmt.Sprintf("%s/if/else/$[%d]", path, j))
			}
		}
	}

	if spec, ok := asObject(stmt["def"]); ok {
		params, _ := spec["params"].([]any)
		body, _ := spec["body"].([]any)

		fnEnv := NewEnv(env)
		for _, p := range params {
			if name, ok := p.(string); ok {
				fnEnv.Define(name, tAny)
			}
		}
		for j, s := range body {
			inf.CheckStmt(s, fnEnv, fmt.Sprintf("%s/def/body/$[%d]", path, j))
		}
	}
}

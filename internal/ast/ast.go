// Package ast provides the typed Program Model: statement and expression
// sum types decoded on demand from the generic JSON tree (map[string]any /
// []any / scalars) that the Pattern, Edit, and ACIR engines operate on
// directly. Field names and variant shapes are ported from
// original_source/amorph/engine.py and validate.py.
package ast

import "fmt"

// Stmt is the sum type of the seven statement variants.
type Stmt interface {
	stmtNode()
	// ID returns the statement's stable id and whether it has one.
	ID() (string, bool)
}

// Expr is the sum type of the seven expression variants.
type Expr interface {
	exprNode()
}

type idField struct {
	id    string
	hasID bool
}

func (f idField) ID() (string, bool) { return f.id, f.hasID }

// LetStmt introduces a new binding: {name, value}.
type LetStmt struct {
	idField
	Name  string
	Value Expr
}

// SetStmt reassigns an existing binding: {name, value}.
type SetStmt struct {
	idField
	Name  string
	Value Expr
}

// DefStmt defines a function: {name, id?, params, body}. FnID is the
// function's own stable identity, distinct from the statement id.
type DefStmt struct {
	idField
	Name    string
	FnID    string
	HasFnID bool
	Params  []string
	Body    []Stmt
}

// IfStmt is a branch: {cond, then, else?}.
type IfStmt struct {
	idField
	Cond    Expr
	Then    []Stmt
	Else    []Stmt
	HasElse bool
}

// ReturnStmt unwinds the innermost function (or the program): value is an
// Expr, not an object wrapper.
type ReturnStmt struct {
	idField
	Value Expr
}

// PrintStmt is effectful output. Scalar records whether the statement's
// value was a single Expr (true) or a list of Expr/Spread (false), so
// canonical round-tripping can reproduce the original shape.
type PrintStmt struct {
	idField
	Args   []Expr
	Scalar bool
}

// ExprStmt evaluates an expression for its side effect; the result is
// discarded.
type ExprStmt struct {
	idField
	Value Expr
}

func (LetStmt) stmtNode()    {}
func (SetStmt) stmtNode()    {}
func (DefStmt) stmtNode()    {}
func (IfStmt) stmtNode()     {}
func (ReturnStmt) stmtNode() {}
func (PrintStmt) stmtNode()  {}
func (ExprStmt) stmtNode()   {}

// LiteralExpr wraps a JSON scalar: float64, string, bool, or nil.
type LiteralExpr struct {
	Value any
}

// ListExpr is an ordered sequence of expressions.
type ListExpr struct {
	Items []Expr
}

// VarExpr reads a binding by name: {var: name}.
type VarExpr struct {
	Name string
}

// CallExpr invokes a function by name or by id, never both:
// {call: {name|id, args}}.
type CallExpr struct {
	ByID bool
	Name string
	ID   string
	Args []Expr
}

// OperatorExpr applies a registered operator. Scalar records whether the
// source form was the non-list single-argument shape {op: v}.
type OperatorExpr struct {
	Op     string
	Args   []Expr
	Scalar bool
}

// SpreadExpr expands a list inline; valid only inside Print argument
// lists: {spread: expr}.
type SpreadExpr struct {
	Value Expr
}

// ObjectExpr is a generic object literal: {k: Expr, ...}. Object keys
// arrive in a map[string]any with no stable order after
// encoding/json.Unmarshal, so Keys is sorted ascending (sortStrings)
// rather than declaration-ordered.
type ObjectExpr struct {
	Keys   []string
	Values map[string]Expr
}

func (LiteralExpr) exprNode()  {}
func (ListExpr) exprNode()     {}
func (VarExpr) exprNode()      {}
func (CallExpr) exprNode()     {}
func (OperatorExpr) exprNode() {}
func (SpreadExpr) exprNode()   {}
func (ObjectExpr) exprNode()   {}

// DecodeProgramRoot accepts either a bare array of statements or a
// {version?, program: [...]} wrapper, per spec §6.1.
func DecodeProgramRoot(root any) ([]any, error) {
	switch v := root.(type) {
	case []any:
		return v, nil
	case map[string]any:
		prog, ok := v["program"]
		if !ok {
			return nil, fmt.Errorf("program object missing \"program\" key")
		}
		list, ok := prog.([]any)
		if !ok {
			return nil, fmt.Errorf("\"program\" value is not an array")
		}
		return list, nil
	default:
		return nil, fmt.Errorf("program root must be an array or an object with a \"program\" key")
	}
}

// DecodeStmts decodes a raw statement list into typed Stmt values.
func DecodeStmts(raw []any) ([]Stmt, error) {
	out := make([]Stmt, 0, len(raw))
	for i, r := range raw {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("statement at index %d is not an object", i)
		}
		s, err := DecodeStmt(m)
		if err != nil {
			return nil, fmt.Errorf("statement at index %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeID(m map[string]any) idField {
	if raw, ok := m["id"]; ok {
		if s, ok := raw.(string); ok {
			return idField{id: s, hasID: true}
		}
	}
	return idField{}
}

// DecodeStmt decodes a single generic statement object into its typed
// variant, dispatching on which of let/set/def/if/return/print/expr key is
// present.
func DecodeStmt(m map[string]any) (Stmt, error) {
	id := decodeID(m)
	switch {
	case has(m, "let"):
		spec, err := asObject(m["let"])
		if err != nil {
			return nil, fmt.Errorf("let: %w", err)
		}
		name, _ := spec["name"].(string)
		val, err := DecodeExpr(spec["value"])
		if err != nil {
			return nil, fmt.Errorf("let.value: %w", err)
		}
		return LetStmt{idField: id, Name: name, Value: val}, nil

	case has(m, "set"):
		spec, err := asObject(m["set"])
		if err != nil {
			return nil, fmt.Errorf("set: %w", err)
		}
		name, _ := spec["name"].(string)
		val, err := DecodeExpr(spec["value"])
		if err != nil {
			return nil, fmt.Errorf("set.value: %w", err)
		}
		return SetStmt{idField: id, Name: name, Value: val}, nil

	case has(m, "def"):
		spec, err := asObject(m["def"])
		if err != nil {
			return nil, fmt.Errorf("def: %w", err)
		}
		name, _ := spec["name"].(string)
		var fnID string
		var hasFnID bool
		if raw, ok := spec["id"]; ok {
			if s, ok := raw.(string); ok {
				fnID, hasFnID = s, true
			}
		}
		params, err := asStringList(spec["params"])
		if err != nil {
			return nil, fmt.Errorf("def.params: %w", err)
		}
		bodyRaw, err := asAnyList(spec["body"])
		if err != nil {
			return nil, fmt.Errorf("def.body: %w", err)
		}
		body, err := DecodeStmts(bodyRaw)
		if err != nil {
			return nil, fmt.Errorf("def.body: %w", err)
		}
		return DefStmt{idField: id, Name: name, FnID: fnID, HasFnID: hasFnID, Params: params, Body: body}, nil

	case has(m, "if"):
		spec, err := asObject(m["if"])
		if err != nil {
			return nil, fmt.Errorf("if: %w", err)
		}
		cond, err := DecodeExpr(spec["cond"])
		if err != nil {
			return nil, fmt.Errorf("if.cond: %w", err)
		}
		thenRaw, err := asAnyList(spec["then"])
		if err != nil {
			return nil, fmt.Errorf("if.then: %w", err)
		}
		thenStmts, err := DecodeStmts(thenRaw)
		if err != nil {
			return nil, fmt.Errorf("if.then: %w", err)
		}
		out := IfStmt{idField: id, Cond: cond, Then: thenStmts}
		if elseRaw, ok := spec["else"]; ok {
			list, err := asAnyList(elseRaw)
			if err != nil {
				return nil, fmt.Errorf("if.else: %w", err)
			}
			elseStmts, err := DecodeStmts(list)
			if err != nil {
				return nil, fmt.Errorf("if.else: %w", err)
			}
			out.Else, out.HasElse = elseStmts, true
		}
		return out, nil

	case has(m, "return"):
		val, err := DecodeExpr(m["return"])
		if err != nil {
			return nil, fmt.Errorf("return: %w", err)
		}
		return ReturnStmt{idField: id, Value: val}, nil

	case has(m, "print"):
		raw := m["print"]
		if list, ok := raw.([]any); ok {
			args := make([]Expr, 0, len(list))
			for i, item := range list {
				e, err := DecodeExpr(item)
				if err != nil {
					return nil, fmt.Errorf("print[%d]: %w", i, err)
				}
				args = append(args, e)
			}
			return PrintStmt{idField: id, Args: args, Scalar: false}, nil
		}
		e, err := DecodeExpr(raw)
		if err != nil {
			return nil, fmt.Errorf("print: %w", err)
		}
		return PrintStmt{idField: id, Args: []Expr{e}, Scalar: true}, nil

	case has(m, "expr"):
		val, err := DecodeExpr(m["expr"])
		if err != nil {
			return nil, fmt.Errorf("expr: %w", err)
		}
		return ExprStmt{idField: id, Value: val}, nil

	default:
		return nil, fmt.Errorf("unrecognized statement shape")
	}
}

// DecodeExpr decodes a raw JSON value into its typed expression variant.
func DecodeExpr(raw any) (Expr, error) {
	switch v := raw.(type) {
	case nil, bool, float64, string:
		return LiteralExpr{Value: v}, nil
	case []any:
		items := make([]Expr, 0, len(v))
		for i, item := range v {
			e, err := DecodeExpr(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items = append(items, e)
		}
		return ListExpr{Items: items}, nil
	case map[string]any:
		return decodeExprObject(v)
	default:
		return nil, fmt.Errorf("unsupported expression value of type %T", raw)
	}
}

func decodeExprObject(m map[string]any) (Expr, error) {
	if len(m) == 1 {
		if raw, ok := m["var"]; ok {
			name, _ := raw.(string)
			return VarExpr{Name: name}, nil
		}
		if raw, ok := m["call"]; ok {
			spec, err := asObject(raw)
			if err != nil {
				return nil, fmt.Errorf("call: %w", err)
			}
			c := CallExpr{}
			if name, ok := spec["name"].(string); ok {
				c.Name = name
			} else if id, ok := spec["id"].(string); ok {
				c.ByID = true
				c.ID = id
			} else {
				return nil, fmt.Errorf("call must have exactly one of name/id")
			}
			argsRaw, err := asAnyList(spec["args"])
			if err != nil {
				return nil, fmt.Errorf("call.args: %w", err)
			}
			args := make([]Expr, 0, len(argsRaw))
			for i, a := range argsRaw {
				e, err := DecodeExpr(a)
				if err != nil {
					return nil, fmt.Errorf("call.args[%d]: %w", i, err)
				}
				args = append(args, e)
			}
			c.Args = args
			return c, nil
		}
		if raw, ok := m["spread"]; ok {
			e, err := DecodeExpr(raw)
			if err != nil {
				return nil, fmt.Errorf("spread: %w", err)
			}
			return SpreadExpr{Value: e}, nil
		}
		// Single-key object, key is neither var/call/spread: an Operator.
		for k, v := range m {
			if list, ok := v.([]any); ok {
				args := make([]Expr, 0, len(list))
				for i, item := range list {
					e, err := DecodeExpr(item)
					if err != nil {
						return nil, fmt.Errorf("%s[%d]: %w", k, i, err)
					}
					args = append(args, e)
				}
				return OperatorExpr{Op: k, Args: args, Scalar: false}, nil
			}
			e, err := DecodeExpr(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			return OperatorExpr{Op: k, Args: []Expr{e}, Scalar: true}, nil
		}
	}
	// Zero or multiple keys without var/call/spread: an Object literal.
	keys := make([]string, 0, len(m))
	values := make(map[string]Expr, len(m))
	for k, v := range m {
		e, err := DecodeExpr(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		keys = append(keys, k)
		values[k] = e
	}
	sortStrings(keys)
	return ObjectExpr{Keys: keys, Values: values}, nil
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func asObject(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return m, nil
}

func asAnyList(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected array, got %T", v)
	}
	return l, nil
}

func asStringList(v any) ([]string, error) {
	l, err := asAnyList(v)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(l))
	for i, item := range l {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("[%d]: expected string, got %T", i, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Package evalvm is the tree-walking Evaluator: lexical scoping via a
// frame stack, function resolution by name or id, the operator algebra,
// control flow, return propagation, and capability-gated effects. Ported
// from original_source/amorph/engine.py.
package evalvm

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/elmisi/amorph-code/internal/amerr"
	"github.com/elmisi/amorph-code/internal/ast"
	"github.com/elmisi/amorph-code/internal/ioeffects"
	"github.com/elmisi/amorph-code/internal/ops"
	"github.com/elmisi/amorph-code/internal/validate"
)

// Frame is a single lexical scope: a flat name-to-value mapping. Amorph
// identifiers are case-sensitive, so a plain map suffices (unlike the
// teacher's case-folding ident.Map).
type Frame struct {
	Vars map[string]any
}

// Function is a registered def: the runtime object held in both the
// by-name and by-id registries.
type Function struct {
	ID     string
	HasID  bool
	Name   string
	Params []string
	Body   []ast.Stmt
}

// Event is one entry of the optional structured trace stream (spec §4.3).
// Trace is a pure observer: nothing about evaluation depends on whether
// it is enabled.
type Event struct {
	TS    float64        `json:"ts"`
	Event string         `json:"event"`
	Extra map[string]any `json:"-"`
}

// MarshalJSON flattens Extra alongside the fixed fields, mirroring the
// original's dict-based event shape.
func (e Event) MarshalJSON() ([]byte, error) {
	m := map[string]any{"ts": e.TS, "event": e.Event}
	for k, v := range e.Extra {
		m[k] = v
	}
	return json.Marshal(m)
}

// Options configures a VM.
type Options struct {
	Trace       bool // human-readable "[trace] ..." lines
	TraceJSON   bool // structured JSONL event stream
	IO          ioeffects.IO
	AllowPrint  bool
	AllowInput  bool
	RichErrors  bool
	TraceOut    io.Writer // destination for "[trace]" lines
	EventOut    io.Writer // destination for JSONL events
	NowUnixSecs func() float64
}

// VM executes a validated program over a stack of frames.
type VM struct {
	Stack          []*Frame
	FuncsByName    map[string]*Function
	FuncsByID      map[string]*Function
	opts           Options
	callSeq        int
	runtimeFnSeq   int
	currentPath    string
	callStackNames []string
}

// New constructs a VM. Printing and input stay denied unless
// opts.AllowPrint/opts.AllowInput are set; when no IO is supplied, output
// is discarded and input reads find nothing.
func New(opts Options) *VM {
	if opts.IO == nil {
		opts.IO = ioeffects.NewStdIO(noopWriter{}, noopReader{})
	}
	if opts.NowUnixSecs == nil {
		opts.NowUnixSecs = func() float64 { return float64(time.Now().UnixNano()) / 1e9 }
	}
	return &VM{
		Stack:       []*Frame{{Vars: map[string]any{}}},
		FuncsByName: map[string]*Function{},
		FuncsByID:   map[string]*Function{},
		opts:        opts,
	}
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }

type noopReader struct{}

func (noopReader) Read(p []byte) (int, error) { return 0, io.EOF }

func (vm *VM) log(parts ...any) {
	if !vm.opts.Trace || vm.opts.TraceOut == nil {
		return
	}
	strs := make([]string, 0, len(parts)+1)
	strs = append(strs, "[trace]")
	for _, p := range parts {
		strs = append(strs, fmt.Sprint(p))
	}
	fmt.Fprintln(vm.opts.TraceOut, strings.Join(strs, " "))
}

func (vm *VM) emit(event string, extra map[string]any) {
	if !vm.opts.TraceJSON || vm.opts.EventOut == nil {
		return
	}
	e := Event{TS: vm.opts.NowUnixSecs(), Event: event, Extra: extra}
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	fmt.Fprintln(vm.opts.EventOut, string(raw))
}

func (vm *VM) push() { vm.Stack = append(vm.Stack, &Frame{Vars: map[string]any{}}) }
func (vm *VM) pop()  { vm.Stack = vm.Stack[:len(vm.Stack)-1] }

func (vm *VM) define(name string, value any) {
	vm.Stack[len(vm.Stack)-1].Vars[name] = value
	vm.log("let", name, "=", value)
}

func (vm *VM) set(name string, value any) error {
	for i := len(vm.Stack) - 1; i >= 0; i-- {
		if _, ok := vm.Stack[i].Vars[name]; ok {
			vm.Stack[i].Vars[name] = value
			vm.log("set", name, "=", value)
			return nil
		}
	}
	return vm.runtimeErr("Variable not found: %s", name)
}

func (vm *VM) get(name string) (any, error) {
	for i := len(vm.Stack) - 1; i >= 0; i-- {
		if v, ok := vm.Stack[i].Vars[name]; ok {
			return v, nil
		}
	}
	return nil, vm.runtimeErr("Variable not found: %s", name)
}

func (vm *VM) runtimeErr(format string, args ...any) error {
	if vm.opts.RichErrors {
		return amerr.NewRuntimeErrorf(vm.currentPath, vm.callStackNames, format, args...)
	}
	return fmt.Errorf(format, args...)
}

// execResult carries either a plain statement/expression value or a
// propagating return signal, per the "return is a control signal, not an
// exception" design note.
type execResult struct {
	Value    any
	Returned bool
}

// Run validates then executes a program given in either root form (bare
// array or {version?, program:[...]} wrapper), returning the program's
// final value: either the result of its last statement, or the value of
// an explicit top-level return.
func (vm *VM) Run(root any) (any, error) {
	var version any
	if m, ok := root.(map[string]any); ok {
		version = m["version"]
		vm.emit("start", map[string]any{"version": version})
	}
	rawStmts, err := ast.DecodeProgramRoot(root)
	if err != nil {
		return nil, err
	}
	if err := validate.ValidateProgram(root); err != nil {
		return nil, err
	}
	stmts, err := ast.DecodeStmts(rawStmts)
	if err != nil {
		return nil, err
	}
	var result any
	for idx, stmt := range stmts {
		res, err := vm.execStmt(stmt, ast.Index(ast.Root(), idx))
		if err != nil {
			return nil, err
		}
		result = res.Value
		if res.Returned {
			return res.Value, nil
		}
	}
	return result, nil
}

func (vm *VM) execBlock(block []ast.Stmt, pathPrefix string) (execResult, error) {
	vm.push()
	defer vm.pop()
	var result execResult
	for idx, stmt := range block {
		res, err := vm.execStmt(stmt, ast.Index(pathPrefix, idx))
		if err != nil {
			return execResult{}, err
		}
		result = res
		if res.Returned {
			return res, nil
		}
	}
	return result, nil
}

func (vm *VM) execStmt(stmt ast.Stmt, path string) (execResult, error) {
	vm.currentPath = path
	kind := stmtKind(stmt)
	vm.emit("stmt_start", map[string]any{"kind": kind, "path": path})

	switch s := stmt.(type) {
	case ast.LetStmt:
		val, err := vm.evalExpr(s.Value)
		if err != nil {
			return execResult{}, err
		}
		vm.define(s.Name, val)
		vm.emit("stmt_end", map[string]any{"path": path})
		return execResult{}, nil

	case ast.SetStmt:
		val, err := vm.evalExpr(s.Value)
		if err != nil {
			return execResult{}, err
		}
		if err := vm.set(s.Name, val); err != nil {
			return execResult{}, err
		}
		vm.emit("stmt_end", map[string]any{"path": path})
		return execResult{}, nil

	case ast.DefStmt:
		fnID := s.FnID
		if !s.HasFnID {
			vm.runtimeFnSeq++
			fnID = fmt.Sprintf("fn_runtime_%d", vm.runtimeFnSeq)
		}
		fn := &Function{ID: fnID, HasID: true, Name: s.Name, Params: s.Params, Body: s.Body}
		vm.FuncsByName[s.Name] = fn
		vm.FuncsByID[fnID] = fn
		vm.log("def", s.Name, "params=", s.Params)
		vm.emit("stmt_end", map[string]any{"path": path})
		return execResult{}, nil

	case ast.IfStmt:
		cond, err := vm.evalExpr(s.Cond)
		if err != nil {
			return execResult{}, err
		}
		truthy := Truthy(cond)
		var branch []ast.Stmt
		var branchTag int
		if truthy {
			branch, branchTag = s.Then, 1
		} else if s.HasElse {
			branch, branchTag = s.Else, 0
		} else {
			vm.emit("stmt_end", map[string]any{"path": path})
			return execResult{}, nil
		}
		res, err := vm.execBlock(branch, ast.Field(path, fmt.Sprintf("branch[%d]", branchTag)))
		if err != nil {
			return execResult{}, err
		}
		if res.Returned {
			return res, nil
		}
		vm.emit("stmt_end", map[string]any{"path": path})
		return res, nil

	case ast.ReturnStmt:
		val, err := vm.evalExpr(s.Value)
		if err != nil {
			return execResult{}, err
		}
		vm.emit("stmt_end", map[string]any{"path": path, "return": true})
		return execResult{Value: val, Returned: true}, nil

	case ast.PrintStmt:
		if !vm.opts.AllowPrint {
			return execResult{}, vm.runtimeErr("Effect denied: print")
		}
		var vals []any
		for _, a := range s.Args {
			if spread, ok := a.(ast.SpreadExpr); ok {
				seq, err := vm.evalExpr(spread.Value)
				if err != nil {
					return execResult{}, err
				}
				list, ok := seq.([]any)
				if !ok {
					return execResult{}, fmt.Errorf("spread expects a list expression")
				}
				vals = append(vals, list...)
				continue
			}
			v, err := vm.evalExpr(a)
			if err != nil {
				return execResult{}, err
			}
			vals = append(vals, v)
		}
		strs := make([]string, len(vals))
		for i, v := range vals {
			strs[i] = Display(v)
		}
		vm.opts.IO.Write(strs...)
		vm.emit("stmt_end", map[string]any{"path": path})
		return execResult{}, nil

	case ast.ExprStmt:
		if _, err := vm.evalExpr(s.Value); err != nil {
			return execResult{}, err
		}
		vm.emit("stmt_end", map[string]any{"path": path})
		return execResult{}, nil
	}
	return execResult{}, fmt.Errorf("unknown statement kind")
}

func stmtKind(s ast.Stmt) string {
	switch s.(type) {
	case ast.LetStmt:
		return "let"
	case ast.SetStmt:
		return "set"
	case ast.DefStmt:
		return "def"
	case ast.IfStmt:
		return "if"
	case ast.ReturnStmt:
		return "return"
	case ast.PrintStmt:
		return "print"
	case ast.ExprStmt:
		return "expr"
	default:
		return "?"
	}
}

func (vm *VM) evalExpr(expr ast.Expr) (any, error) {
	switch e := expr.(type) {
	case ast.LiteralExpr:
		return e.Value, nil

	case ast.ListExpr:
		out := make([]any, len(e.Items))
		for i, item := range e.Items {
			v, err := vm.evalExpr(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil

	case ast.VarExpr:
		return vm.get(e.Name)

	case ast.CallExpr:
		args := make([]any, len(e.Args))
		for i, a := range e.Args {
			v, err := vm.evalExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return vm.callFunc(e.Name, e.ID, e.ByID, args)

	case ast.OperatorExpr:
		return vm.applyOp(e.Op, e.Args)

	case ast.SpreadExpr:
		return nil, fmt.Errorf("spread is only valid inside a print argument list")

	case ast.ObjectExpr:
		out := make(map[string]any, len(e.Keys))
		for _, k := range e.Keys {
			v, err := vm.evalExpr(e.Values[k])
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid expression")
}

func (vm *VM) callFunc(name, id string, byID bool, args []any) (any, error) {
	var fn *Function
	if byID {
		fn = vm.FuncsByID[id]
		if fn == nil {
			return nil, vm.runtimeErr("Function id not defined: %s", id)
		}
	} else {
		fn = vm.FuncsByName[name]
		if fn == nil {
			return nil, vm.runtimeErr("Function not defined: %s", name)
		}
	}

	display := name
	if byID {
		display = id
	}
	if vm.opts.RichErrors {
		vm.callStackNames = append(vm.callStackNames, display)
	}
	vm.callSeq++
	callID := vm.callSeq
	vm.emit("call_start", map[string]any{"call_id": callID, "function": map[string]any{"name": fn.Name, "id": fn.ID}, "args": args})

	defer func() {
		if vm.opts.RichErrors && len(vm.callStackNames) > 0 {
			vm.callStackNames = vm.callStackNames[:len(vm.callStackNames)-1]
		}
		vm.pop()
	}()

	if len(fn.Params) != len(args) {
		return nil, vm.runtimeErr("Function %s expects %d args, got %d", name, len(fn.Params), len(args))
	}
	vm.push()
	for i, p := range fn.Params {
		vm.define(p, args[i])
	}
	var result any
	for idx, stmt := range fn.Body {
		res, err := vm.execStmt(stmt, ast.Index(ast.FnBody(fn.ID), idx))
		if err != nil {
			return nil, err
		}
		result = res.Value
		if res.Returned {
			vm.emit("return", map[string]any{"call_id": callID, "function": map[string]any{"name": fn.Name, "id": fn.ID}, "value": res.Value})
			return res.Value, nil
		}
	}
	return result, nil
}

// Truthy applies Amorph's truthiness rule: null, false, 0, "", and [] are falsy;
// everything else (including nil maps/empty objects) is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	default:
		return true
	}
}

// Display renders a value the way print joins its arguments: numbers
// without a superfluous ".0" when integral, strings verbatim, everything
// else via JSON.
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return x
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	}
}

func (vm *VM) applyOp(op string, rawArgs []ast.Expr) (any, error) {
	name := ops.Normalize(op)
	args := make([]any, len(rawArgs))
	for i, a := range rawArgs {
		v, err := vm.evalExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	vm.log("op", name, args)
	vm.emit("op", map[string]any{"op": name, "args": args})

	switch name {
	case "add":
		return foldNumeric(args, 0, func(a, b float64) float64 { return a + b })
	case "sub":
		return foldLeftNumeric(vm, args, "sub", func(a, b float64) float64 { return a - b })
	case "mul":
		return foldNumeric(args, 1, func(a, b float64) float64 { return a * b })
	case "div":
		return vm.foldLeftDiv(args)
	case "mod":
		return vm.foldLeftMod(args)
	case "pow":
		return foldLeftNumeric(vm, args, "pow", math.Pow)

	case "eq":
		return allPairs(args, valuesEqual), nil
	case "ne":
		return allPairs(args, func(a, b any) bool { return !valuesEqual(a, b) }), nil
	case "lt":
		return numericAllPairs(args, func(a, b float64) bool { return a < b })
	case "le":
		return numericAllPairs(args, func(a, b float64) bool { return a <= b })
	case "gt":
		return numericAllPairs(args, func(a, b float64) bool { return a > b })
	case "ge":
		return numericAllPairs(args, func(a, b float64) bool { return a >= b })

	case "not":
		if len(args) != 1 {
			return nil, vm.runtimeErr("not expects 1 arg")
		}
		return !Truthy(args[0]), nil
	case "and":
		for _, a := range args {
			if !Truthy(a) {
				return false, nil
			}
		}
		return true, nil
	case "or":
		for _, a := range args {
			if Truthy(a) {
				return true, nil
			}
		}
		return false, nil

	case "list":
		return append([]any{}, args...), nil
	case "concat":
		return vm.foldLeftConcat(args)
	case "len":
		if len(args) != 1 {
			return nil, vm.runtimeErr("len expects 1 arg")
		}
		return lengthOf(args[0])
	case "get":
		if len(args) != 2 {
			return nil, vm.runtimeErr("get expects 2 args")
		}
		return vm.getIndex(args[0], args[1])
	case "has":
		if len(args) != 2 {
			return nil, vm.runtimeErr("has expects 2 args")
		}
		_, err := vm.getIndex(args[0], args[1])
		return err == nil, nil

	case "range":
		return vm.rangeOp(args)

	case "input":
		if !vm.opts.AllowInput {
			return nil, vm.runtimeErr("Effect denied: input")
		}
		switch len(args) {
		case 0:
			return vm.opts.IO.Read(""), nil
		case 1:
			return vm.opts.IO.Read(Display(args[0])), nil
		default:
			return nil, vm.runtimeErr("input expects 0 or 1 arg")
		}

	case "int":
		if len(args) != 1 {
			return nil, vm.runtimeErr("int expects 1 arg")
		}
		return vm.intOp(args[0])
	}

	return nil, vm.runtimeErr("Unknown operator: %s", name)
}

func foldNumeric(args []any, init float64, fn func(a, b float64) float64) (any, error) {
	acc := init
	for _, a := range args {
		n, err := asNumber(a)
		if err != nil {
			return nil, err
		}
		acc = fn(acc, n)
	}
	return acc, nil
}

func foldLeftNumeric(vm *VM, args []any, opName string, fn func(a, b float64) float64) (any, error) {
	if len(args) == 0 {
		return nil, vm.runtimeErr("operation expects at least 1 arg")
	}
	acc, err := asNumber(args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, err := asNumber(a)
		if err != nil {
			return nil, err
		}
		acc = fn(acc, n)
	}
	return acc, nil
}

func (vm *VM) foldLeftDiv(args []any) (any, error) {
	if len(args) == 0 {
		return nil, vm.runtimeErr("operation expects at least 1 arg")
	}
	acc, err := asNumber(args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, err := asNumber(a)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, vm.runtimeErr("division by zero")
		}
		acc = acc / n
	}
	return acc, nil
}

func (vm *VM) foldLeftMod(args []any) (any, error) {
	if len(args) == 0 {
		return nil, vm.runtimeErr("operation expects at least 1 arg")
	}
	acc, err := asNumber(args[0])
	if err != nil {
		return nil, err
	}
	for _, a := range args[1:] {
		n, err := asNumber(a)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, vm.runtimeErr("division by zero")
		}
		acc = math.Mod(acc, n)
	}
	return acc, nil
}

func (vm *VM) foldLeftConcat(args []any) (any, error) {
	if len(args) == 0 {
		return nil, vm.runtimeErr("operation expects at least 1 arg")
	}
	acc := args[0]
	for _, a := range args[1:] {
		var err error
		acc, err = concatTwo(acc, a)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func concatTwo(a, b any) (any, error) {
	switch av := a.(type) {
	case string:
		bs, ok := b.(string)
		if !ok {
			return nil, fmt.Errorf("concat expects matching operand types")
		}
		return av + bs, nil
	case []any:
		bl, ok := b.([]any)
		if !ok {
			return nil, fmt.Errorf("concat expects matching operand types")
		}
		out := make([]any, 0, len(av)+len(bl))
		out = append(out, av...)
		out = append(out, bl...)
		return out, nil
	default:
		return nil, fmt.Errorf("concat expects string or list operands")
	}
}

func allPairs(args []any, pred func(a, b any) bool) bool {
	if len(args) < 2 {
		return true
	}
	for i := 0; i < len(args)-1; i++ {
		if !pred(args[i], args[i+1]) {
			return false
		}
	}
	return true
}

func numericAllPairs(args []any, pred func(a, b float64) bool) (any, error) {
	if len(args) < 2 {
		return true, nil
	}
	for i := 0; i < len(args)-1; i++ {
		a, err := asNumber(args[i])
		if err != nil {
			return nil, err
		}
		b, err := asNumber(args[i+1])
		if err != nil {
			return nil, err
		}
		if !pred(a, b) {
			return false, nil
		}
	}
	return true, nil
}

func valuesEqual(a, b any) bool {
	an, aok := a.(float64)
	bn, bok := b.(float64)
	if aok && bok {
		return an == bn
	}
	raw1, _ := json.Marshal(a)
	raw2, _ := json.Marshal(b)
	return string(raw1) == string(raw2)
}

func asNumber(v any) (float64, error) {
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	return n, nil
}

func lengthOf(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return float64(len([]rune(x))), nil
	case []any:
		return float64(len(x)), nil
	default:
		return nil, fmt.Errorf("len expects a string or list")
	}
}

func (vm *VM) getIndex(container, key any) (any, error) {
	switch c := container.(type) {
	case []any:
		idx, err := asNumber(key)
		if err != nil {
			return nil, err
		}
		i := int(idx)
		if i < 0 || i >= len(c) {
			return nil, vm.runtimeErr("index out of range: %d", i)
		}
		return c[i], nil
	case map[string]any:
		k, ok := key.(string)
		if !ok {
			return nil, vm.runtimeErr("object key must be a string")
		}
		v, ok := c[k]
		if !ok {
			return nil, vm.runtimeErr("key not found: %s", k)
		}
		return v, nil
	default:
		return nil, vm.runtimeErr("get expects a list or object container")
	}
}

func (vm *VM) rangeOp(args []any) (any, error) {
	switch len(args) {
	case 1:
		n, err := asNumber(args[0])
		if err != nil {
			return nil, err
		}
		ni := int(n)
		if ni < 0 {
			return []any{}, nil
		}
		out := make([]any, 0, ni)
		for i := 1; i <= ni; i++ {
			out = append(out, float64(i))
		}
		return out, nil
	case 2:
		af, err := asNumber(args[0])
		if err != nil {
			return nil, err
		}
		bf, err := asNumber(args[1])
		if err != nil {
			return nil, err
		}
		a, b := int(af), int(bf)
		var out []any
		if a <= b {
			for i := a; i <= b; i++ {
				out = append(out, float64(i))
			}
		} else {
			for i := a; i >= b; i-- {
				out = append(out, float64(i))
			}
		}
		if out == nil {
			out = []any{}
		}
		return out, nil
	default:
		return nil, vm.runtimeErr("range expects 1 or 2 args")
	}
}

func (vm *VM) intOp(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return math.Trunc(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, vm.runtimeErr("int parse failed: %s", err)
		}
		return float64(n), nil
	default:
		return nil, vm.runtimeErr("int parse failed: unsupported type %T", v)
	}
}

package ast

import "testing"

func TestDecodeProgramRootAcceptsBareArray(t *testing.T) {
	stmts, err := DecodeProgramRoot([]any{map[string]any{"return": float64(1)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("stmts = %d, want 1", len(stmts))
	}
}

func TestDecodeProgramRootAcceptsWrapper(t *testing.T) {
	stmts, err := DecodeProgramRoot(map[string]any{
		"version": float64(1),
		"program": []any{map[string]any{"return": float64(1)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("stmts = %d, want 1", len(stmts))
	}
}

func TestDecodeProgramRootRejectsMissingProgramKey(t *testing.T) {
	if _, err := DecodeProgramRoot(map[string]any{"version": float64(1)}); err == nil {
		t.Fatal("expected error for missing program key")
	}
}

func TestDecodeProgramRootRejectsScalarRoot(t *testing.T) {
	if _, err := DecodeProgramRoot(float64(1)); err == nil {
		t.Fatal("expected error for scalar root")
	}
}

func TestDecodeStmtLet(t *testing.T) {
	s, err := DecodeStmt(map[string]any{"id": "s1", "let": map[string]any{"name": "x", "value": float64(1)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	let, ok := s.(LetStmt)
	if !ok {
		t.Fatalf("got %T, want LetStmt", s)
	}
	if let.Name != "x" {
		t.Fatalf("name = %q, want x", let.Name)
	}
	id, hasID := let.ID()
	if !hasID || id != "s1" {
		t.Fatalf("id = %q hasID=%v, want s1/true", id, hasID)
	}
}

func TestDecodeStmtIfWithoutElse(t *testing.T) {
	s, err := DecodeStmt(map[string]any{"if": map[string]any{
		"cond": true,
		"then": []any{map[string]any{"return": float64(1)}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ifs, ok := s.(IfStmt)
	if !ok {
		t.Fatalf("got %T, want IfStmt", s)
	}
	if ifs.HasElse {
		t.Fatal("expected HasElse to be false when else key is absent")
	}
	if len(ifs.Then) != 1 {
		t.Fatalf("then stmts = %d, want 1", len(ifs.Then))
	}
}

func TestDecodeStmtDefWithRuntimeID(t *testing.T) {
	s, err := DecodeStmt(map[string]any{"def": map[string]any{
		"name": "f", "params": []any{"x"}, "body": []any{
			map[string]any{"return": map[string]any{"var": "x"}},
		},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := s.(DefStmt)
	if !ok {
		t.Fatalf("got %T, want DefStmt", s)
	}
	if d.HasFnID {
		t.Fatal("expected HasFnID false when def has no id field")
	}
	if len(d.Params) != 1 || d.Params[0] != "x" {
		t.Fatalf("params = %v, want [x]", d.Params)
	}
}

func TestDecodeStmtPrintScalarVsListShape(t *testing.T) {
	scalar, err := DecodeStmt(map[string]any{"print": "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, ok := scalar.(PrintStmt)
	if !ok || !p.Scalar || len(p.Args) != 1 {
		t.Fatalf("scalar print = %+v, want Scalar=true len(Args)=1", p)
	}

	list, err := DecodeStmt(map[string]any{"print": []any{"a", "b"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, ok := list.(PrintStmt)
	if !ok || p2.Scalar || len(p2.Args) != 2 {
		t.Fatalf("list print = %+v, want Scalar=false len(Args)=2", p2)
	}
}

func TestDecodeStmtRejectsUnrecognizedShape(t *testing.T) {
	if _, err := DecodeStmt(map[string]any{"bogus": float64(1)}); err == nil {
		t.Fatal("expected error for unrecognized statement shape")
	}
}

func TestDecodeExprVarAndCallByNameOrID(t *testing.T) {
	v, err := DecodeExpr(map[string]any{"var": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ve, ok := v.(VarExpr); !ok || ve.Name != "x" {
		t.Fatalf("got %+v, want VarExpr{x}", v)
	}

	byName, err := DecodeExpr(map[string]any{"call": map[string]any{"name": "f", "args": []any{}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cn, ok := byName.(CallExpr)
	if !ok || cn.ByID || cn.Name != "f" {
		t.Fatalf("got %+v, want name-based CallExpr{f}", byName)
	}

	byID, err := DecodeExpr(map[string]any{"call": map[string]any{"id": "fn1", "args": []any{}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ci, ok := byID.(CallExpr)
	if !ok || !ci.ByID || ci.ID != "fn1" {
		t.Fatalf("got %+v, want id-based CallExpr{fn1}", byID)
	}
}

func TestDecodeExprCallRejectsMissingNameAndID(t *testing.T) {
	if _, err := DecodeExpr(map[string]any{"call": map[string]any{"args": []any{}}}); err == nil {
		t.Fatal("expected error when call has neither name nor id")
	}
}

func TestDecodeExprOperatorScalarVsListShape(t *testing.T) {
	scalar, err := DecodeExpr(map[string]any{"not": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	op, ok := scalar.(OperatorExpr)
	if !ok || !op.Scalar || op.Op != "not" || len(op.Args) != 1 {
		t.Fatalf("got %+v, want scalar not/1", op)
	}

	list, err := DecodeExpr(map[string]any{"add": []any{float64(1), float64(2)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	op2, ok := list.(OperatorExpr)
	if !ok || op2.Scalar || op2.Op != "add" || len(op2.Args) != 2 {
		t.Fatalf("got %+v, want list add/2", op2)
	}
}

func TestDecodeExprObjectLiteralKeysSortedAscending(t *testing.T) {
	e, err := DecodeExpr(map[string]any{"zeta": float64(1), "alpha": float64(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := e.(ObjectExpr)
	if !ok {
		t.Fatalf("got %T, want ObjectExpr", e)
	}
	if len(obj.Keys) != 2 || obj.Keys[0] != "alpha" || obj.Keys[1] != "zeta" {
		t.Fatalf("keys = %v, want [alpha zeta] sorted ascending", obj.Keys)
	}
}

func TestDecodeExprSpread(t *testing.T) {
	e, err := DecodeExpr(map[string]any{"spread": map[string]any{"var": "xs"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sp, ok := e.(SpreadExpr)
	if !ok {
		t.Fatalf("got %T, want SpreadExpr", e)
	}
	if _, ok := sp.Value.(VarExpr); !ok {
		t.Fatalf("spread value = %+v, want VarExpr", sp.Value)
	}
}

func TestDecodeExprLiteralsAndLists(t *testing.T) {
	for _, v := range []any{nil, true, float64(3.5), "s"} {
		e, err := DecodeExpr(v)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", v, err)
		}
		lit, ok := e.(LiteralExpr)
		if !ok || lit.Value != v {
			t.Fatalf("got %+v, want LiteralExpr{%v}", e, v)
		}
	}

	listExpr, err := DecodeExpr([]any{float64(1), "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l, ok := listExpr.(ListExpr)
	if !ok || len(l.Items) != 2 {
		t.Fatalf("got %+v, want ListExpr with 2 items", listExpr)
	}
}

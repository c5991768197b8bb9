package typecheck

import "testing"

func TestInferExprLiterals(t *testing.T) {
	inf := NewInferencer()
	env := NewEnv(nil)

	tests := []struct {
		name string
		expr any
		want Kind
	}{
		{"int literal", float64(3), KindInt},
		{"float literal", float64(3.5), KindFloat},
		{"string literal", "hi", KindStr},
		{"bool literal", true, KindBool},
		{"null literal", nil, KindNull},
		{"empty list", []any{}, KindList},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inf.InferExpr(tt.expr, env, "/")
			if got.Kind != tt.want {
				t.Fatalf("Kind = %v, want %v", got.Kind, tt.want)
			}
		})
	}
}

func TestInferExprVariableLookup(t *testing.T) {
	inf := NewInferencer()
	env := NewEnv(nil)
	env.Define("x", tInt)
	got := inf.InferExpr(map[string]any{"var": "x"}, env, "/")
	if got.Kind != KindInt {
		t.Fatalf("Kind = %v, want KindInt", got.Kind)
	}
	unknown := inf.InferExpr(map[string]any{"var": "nope"}, env, "/")
	if unknown.Kind != KindUnknown {
		t.Fatalf("Kind = %v, want KindUnknown for unbound var", unknown.Kind)
	}
}

func TestInferOperatorAddAllInt(t *testing.T) {
	inf := NewInferencer()
	env := NewEnv(nil)
	got := inf.InferOperator("add", []any{float64(1), float64(2)}, env, "/")
	if got.Kind != KindInt {
		t.Fatalf("Kind = %v, want KindInt", got.Kind)
	}
	if len(inf.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", inf.Errors)
	}
}

func TestInferOperatorAddMixedNumeric(t *testing.T) {
	inf := NewInferencer()
	env := NewEnv(nil)
	got := inf.InferOperator("add", []any{float64(1), float64(2.5)}, env, "/")
	if got.Kind != KindFloat {
		t.Fatalf("Kind = %v, want KindFloat", got.Kind)
	}
}

func TestInferOperatorAddAllString(t *testing.T) {
	inf := NewInferencer()
	env := NewEnv(nil)
	got := inf.InferOperator("add", []any{"a", "b"}, env, "/")
	if got.Kind != KindStr {
		t.Fatalf("Kind = %v, want KindStr", got.Kind)
	}
}

func TestInferOperatorAddMismatchReportsError(t *testing.T) {
	inf := NewInferencer()
	env := NewEnv(nil)
	got := inf.InferOperator("add", []any{float64(1), "a"}, env, "/expr")
	if got.Kind != KindUnknown {
		t.Fatalf("Kind = %v, want KindUnknown", got.Kind)
	}
	if len(inf.Errors) != 1 || inf.Errors[0].Code != "E_TYPE_MISMATCH" {
		t.Fatalf("Errors = %+v, want one E_TYPE_MISMATCH", inf.Errors)
	}
}

func TestInferOperatorSubRequiresNumeric(t *testing.T) {
	inf := NewInferencer()
	env := NewEnv(nil)
	got := inf.InferOperator("sub", []any{"a", float64(1)}, env, "/expr")
	if got.Kind != KindUnknown {
		t.Fatalf("Kind = %v, want KindUnknown", got.Kind)
	}
	if len(inf.Errors) != 1 {
		t.Fatalf("Errors = %+v, want one error", inf.Errors)
	}
}

func TestInferOperatorComparisonsReturnBool(t *testing.T) {
	inf := NewInferencer()
	env := NewEnv(nil)
	for _, op := range []string{"eq", "ne", "lt", "le", "gt", "ge", "and", "or", "not"} {
		got := inf.InferOperator(op, []any{float64(1), float64(2)}, env, "/")
		if got.Kind != KindBool {
			t.Fatalf("op %s: Kind = %v, want KindBool", op, got.Kind)
		}
	}
}

func TestCheckProgramLetBindingFlowsToReturn(t *testing.T) {
	inf := NewInferencer()
	program := []any{
		map[string]any{"let": map[string]any{"name": "x", "value": float64(3)}},
		map[string]any{"return": map[string]any{"var": "x"}},
	}
	errs := inf.CheckProgram(program)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
}

func TestCheckProgramDetectsAddMismatch(t *testing.T) {
	inf := NewInferencer()
	program := []any{
		map[string]any{"let": map[string]any{"name": "x", "value": "str"}},
		map[string]any{"expr": map[string]any{"add": []any{map[string]any{"var": "x"}, float64(1)}}},
	}
	errs := inf.CheckProgram(program)
	if len(errs) != 1 {
		t.Fatalf("errs = %+v, want one mismatch", errs)
	}
}

func TestCheckProgramIfBranchesGetIndependentEnvs(t *testing.T) {
	inf := NewInferencer()
	program := []any{
		map[string]any{"if": map[string]any{
			"cond": true,
			"then": []any{map[string]any{"let": map[string]any{"name": "y", "value": float64(1)}}},
			"else": []any{map[string]any{"let": map[string]any{"name": "y", "value": "s"}}},
		}},
	}
	// Should not panic or report cross-branch type conflicts: each
	// branch has its own child environment.
	errs := inf.CheckProgram(program)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
}

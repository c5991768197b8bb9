package suggest

import "testing"

func TestSuggestImprovementsFlagsMissingDefID(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"name": "f", "params": []any{}, "body": []any{}}},
	}
	sugs := SuggestImprovements(program)
	found := false
	for _, s := range sugs {
		if s.Operation == "add_uid" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected add_uid suggestion, got %+v", sugs)
	}
}

func TestSuggestImprovementsFlagsMixedCallStyle(t *testing.T) {
	program := []any{
		map[string]any{"id": "s1", "expr": map[string]any{"call": map[string]any{"name": "f", "args": []any{}}}},
		map[string]any{"id": "s2", "expr": map[string]any{"call": map[string]any{"id": "fn1", "args": []any{}}}},
	}
	sugs := SuggestImprovements(program)
	found := false
	for _, s := range sugs {
		if s.Operation == "migrate_calls" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected migrate_calls suggestion for mixed call styles, got %+v", sugs)
	}
}

func TestSuggestVariableRenameSingleLetterUsedOften(t *testing.T) {
	program := []any{
		map[string]any{"let": map[string]any{"name": "x", "value": float64(1)}},
		map[string]any{"expr": map[string]any{"var": "x"}},
		map[string]any{"expr": map[string]any{"var": "x"}},
		map[string]any{"expr": map[string]any{"var": "x"}},
		map[string]any{"expr": map[string]any{"var": "x"}},
	}
	sugs := SuggestVariableRename(program)
	if len(sugs) != 1 || sugs[0]["old_name"] != "x" {
		t.Fatalf("sugs = %+v, want one rename suggestion for x", sugs)
	}
}

func TestSuggestVariableRenameIgnoresRarelyUsed(t *testing.T) {
	program := []any{
		map[string]any{"let": map[string]any{"name": "x", "value": float64(1)}},
		map[string]any{"return": map[string]any{"var": "x"}},
	}
	sugs := SuggestVariableRename(program)
	if len(sugs) != 0 {
		t.Fatalf("sugs = %+v, want none (only 2 references)", sugs)
	}
}

func TestAnalyzeFreeVariables(t *testing.T) {
	statements := []any{
		map[string]any{"let": map[string]any{"name": "a", "value": map[string]any{"var": "outer"}}},
		map[string]any{"return": map[string]any{"add": []any{map[string]any{"var": "a"}, map[string]any{"var": "b"}}}},
	}
	free := AnalyzeFreeVariables(statements)
	if !free["outer"] {
		t.Fatal("expected 'outer' to be free (used, never defined locally)")
	}
	if free["a"] {
		t.Fatal("'a' is defined locally, should not be free")
	}
	if !free["b"] {
		t.Fatal("expected 'b' to be free")
	}
}

func TestSuggestExtractFunctionConsecutiveRun(t *testing.T) {
	program := []any{
		map[string]any{"let": map[string]any{"name": "a", "value": float64(1)}},
		map[string]any{"let": map[string]any{"name": "b", "value": float64(2)}},
		map[string]any{"return": map[string]any{"var": "b"}},
	}
	sugs := SuggestExtractFunction(program, 3)
	if len(sugs) != 1 {
		t.Fatalf("sugs = %+v, want one suggestion covering the whole 3-statement program", sugs)
	}
	if sugs[0]["function_name"] != "extracted_function_0" {
		t.Fatalf("function_name = %v, want extracted_function_0", sugs[0]["function_name"])
	}
}

func TestAnalyzeProgramHealthCallStyle(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"id": "fn1", "name": "f", "params": []any{}, "body": []any{}}},
		map[string]any{"expr": map[string]any{"call": map[string]any{"id": "fn1", "args": []any{}}}},
	}
	m := AnalyzeProgramHealth(program)
	if m.CallStyle != "id" {
		t.Fatalf("CallStyle = %s, want id", m.CallStyle)
	}
	if m.TotalFunctions != 1 || m.FunctionsWithID != 1 {
		t.Fatalf("m = %+v, want 1 function with id", m)
	}
}

func TestSuggestFixForErrorVariableNotFound(t *testing.T) {
	program := []any{map[string]any{"let": map[string]any{"name": "value", "value": float64(1)}}}
	sugs := SuggestFixForError("Variable not found: valeu", "/$[1]/expr", program)
	if len(sugs) == 0 {
		t.Fatal("expected at least an insert_before suggestion")
	}
	if sugs[0].Operation != "insert_before" {
		t.Fatalf("first suggestion = %+v, want insert_before", sugs[0])
	}
	foundTypo := false
	for _, s := range sugs {
		if s.Operation == "rename_usage" {
			foundTypo = true
		}
	}
	if !foundTypo {
		t.Fatal("expected a typo-correction rename_usage suggestion for 'valeu' vs 'value'")
	}
}

func TestSuggestFixForErrorDivisionByZero(t *testing.T) {
	sugs := SuggestFixForError("division by zero", "/$[0]/expr", nil)
	if len(sugs) != 1 || sugs[0].Operation != "add_check" {
		t.Fatalf("sugs = %+v, want one add_check suggestion", sugs)
	}
}

func TestSuggestFixForErrorFunctionNotDefined(t *testing.T) {
	sugs := SuggestFixForError("Function not defined: helper", "/$[0]/expr", nil)
	if len(sugs) != 1 || sugs[0].Operation != "add_function" {
		t.Fatalf("sugs = %+v, want one add_function suggestion", sugs)
	}
}

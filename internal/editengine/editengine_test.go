package editengine

import "testing"

func TestAddFunction(t *testing.T) {
	program := []any{}
	err := AddFunction(&program, map[string]any{
		"name":   "double",
		"params": []any{"x"},
		"body":   []any{map[string]any{"return": map[string]any{"op": "mul", "args": []any{map[string]any{"var": "x"}, 2}}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(program) != 1 {
		t.Fatalf("len(program) = %d, want 1", len(program))
	}
	def := program[0].(map[string]any)["def"].(map[string]any)
	if def["name"] != "double" {
		t.Fatalf("def name = %v, want double", def["name"])
	}
}

func TestAddFunctionRejectsBadSpec(t *testing.T) {
	program := []any{}
	if err := AddFunction(&program, map[string]any{"params": []any{}, "body": []any{}}); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestRenameFunctionByName(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"name": "old", "params": []any{}, "body": []any{}}},
		map[string]any{"expr": map[string]any{"call": map[string]any{"name": "old", "args": []any{}}}},
	}
	n, err := RenameFunction(&program, map[string]any{"from": "old", "to": "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("renamed = %d, want 1", n)
	}
	def := program[0].(map[string]any)["def"].(map[string]any)
	if def["name"] != "new" {
		t.Fatalf("def name = %v, want new", def["name"])
	}
	call := program[1].(map[string]any)["expr"].(map[string]any)["call"].(map[string]any)
	if call["name"] != "new" {
		t.Fatalf("call name = %v, want new", call["name"])
	}
}

func TestRenameFunctionRewritesSetAndIfCondInsideDefBody(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"name": "old", "params": []any{}, "body": []any{}}},
		map[string]any{"def": map[string]any{
			"name": "caller", "params": []any{}, "body": []any{
				map[string]any{"let": map[string]any{"name": "acc", "value": float64(0)}},
				map[string]any{"set": map[string]any{
					"name":  "acc",
					"value": map[string]any{"call": map[string]any{"name": "old", "args": []any{}}},
				}},
				map[string]any{"if": map[string]any{
					"cond": map[string]any{"call": map[string]any{"name": "old", "args": []any{}}},
					"then": []any{},
					"else": []any{},
				}},
			},
		}},
	}
	n, err := RenameFunction(&program, map[string]any{"from": "old", "to": "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("renamed = %d, want 1", n)
	}
	body := program[1].(map[string]any)["def"].(map[string]any)["body"].([]any)
	setCall := body[1].(map[string]any)["set"].(map[string]any)["value"].(map[string]any)["call"].(map[string]any)
	if setCall["name"] != "new" {
		t.Fatalf("set.value call name = %v, want new", setCall["name"])
	}
	ifCall := body[2].(map[string]any)["if"].(map[string]any)["cond"].(map[string]any)["call"].(map[string]any)
	if ifCall["name"] != "new" {
		t.Fatalf("if.cond call name = %v, want new", ifCall["name"])
	}
}

func TestRenameFunctionLeavesIDCallsUntouched(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"id": "fn1", "name": "old", "params": []any{}, "body": []any{}}},
		map[string]any{"expr": map[string]any{"call": map[string]any{"id": "fn1", "args": []any{}}}},
	}
	_, err := RenameFunction(&program, map[string]any{"id": "fn1", "to": "new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := program[1].(map[string]any)["expr"].(map[string]any)["call"].(map[string]any)
	if _, hasName := call["name"]; hasName {
		t.Fatal("id-based call should not gain a name field")
	}
	if call["id"] != "fn1" {
		t.Fatalf("call id = %v, want fn1", call["id"])
	}
}

func TestRenameFunctionAmbiguousName(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"name": "dup", "params": []any{}, "body": []any{}}},
		map[string]any{"def": map[string]any{"name": "dup", "params": []any{}, "body": []any{}}},
	}
	if _, err := RenameFunction(&program, map[string]any{"from": "dup", "to": "new"}); err == nil {
		t.Fatal("expected ambiguous-name error")
	}
}

func TestInsertBeforeAndAfter(t *testing.T) {
	program := []any{
		map[string]any{"id": "s1", "let": map[string]any{"name": "a", "value": 1}},
	}
	err := InsertBefore(&program, map[string]any{
		"target": "s1",
		"node":   map[string]any{"let": map[string]any{"name": "pre", "value": 0}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = InsertAfter(&program, map[string]any{
		"target": "s1",
		"node":   map[string]any{"let": map[string]any{"name": "post", "value": 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(program) != 3 {
		t.Fatalf("len(program) = %d, want 3", len(program))
	}
	names := []string{}
	for _, raw := range program {
		let := raw.(map[string]any)["let"].(map[string]any)
		names = append(names, let["name"].(string))
	}
	want := []string{"pre", "a", "post"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestDeleteNode(t *testing.T) {
	program := []any{
		map[string]any{"id": "s1", "let": map[string]any{"name": "a", "value": 1}},
		map[string]any{"id": "s2", "let": map[string]any{"name": "b", "value": 2}},
	}
	if err := DeleteNode(&program, map[string]any{"target": "s1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(program) != 1 {
		t.Fatalf("len(program) = %d, want 1", len(program))
	}
	if program[0].(map[string]any)["id"] != "s2" {
		t.Fatalf("remaining statement id = %v, want s2", program[0].(map[string]any)["id"])
	}
}

func TestReplaceCallByName(t *testing.T) {
	program := []any{
		map[string]any{"expr": map[string]any{"call": map[string]any{"name": "f", "args": []any{1}}}},
	}
	changed, err := ReplaceCall(&program, map[string]any{
		"match": map[string]any{"name": "f"},
		"set":   map[string]any{"name": "g", "args": []any{2, 3}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}
	call := program[0].(map[string]any)["expr"].(map[string]any)["call"].(map[string]any)
	if call["name"] != "g" {
		t.Fatalf("call name = %v, want g", call["name"])
	}
}

func TestApplyEditsStopsAtFirstError(t *testing.T) {
	program := []any{}
	edits := []any{
		map[string]any{"op": "add_function", "spec": map[string]any{
			"name": "f", "params": []any{}, "body": []any{},
		}},
		map[string]any{"op": "unknown_op", "spec": map[string]any{}},
		map[string]any{"op": "add_function", "spec": map[string]any{
			"name": "g", "params": []any{}, "body": []any{},
		}},
	}
	report, err := ApplyEdits(&program, edits)
	if err == nil {
		t.Fatal("expected error from unknown op")
	}
	if report.Applied != 1 {
		t.Fatalf("Applied = %d, want 1 (stopped before third edit)", report.Applied)
	}
	if len(program) != 1 {
		t.Fatalf("len(program) = %d, want 1", len(program))
	}
}

package migrate

import "testing"

func TestToIDRewritesResolvableNameCalls(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"id": "fn1", "name": "helper", "params": []any{}, "body": []any{}}},
		map[string]any{"expr": map[string]any{"call": map[string]any{"name": "helper", "args": []any{}}}},
	}
	changed := ToID(program)
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}
	call := program[1].(map[string]any)["expr"].(map[string]any)["call"].(map[string]any)
	if call["id"] != "fn1" {
		t.Fatalf("call id = %v, want fn1", call["id"])
	}
	if _, hasName := call["name"]; hasName {
		t.Fatal("name should be removed after migrating to id")
	}
}

func TestToIDLeavesAmbiguousNamesUntouched(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"id": "fn1", "name": "dup", "params": []any{}, "body": []any{}}},
		map[string]any{"def": map[string]any{"id": "fn2", "name": "dup", "params": []any{}, "body": []any{}}},
		map[string]any{"expr": map[string]any{"call": map[string]any{"name": "dup", "args": []any{}}}},
	}
	changed := ToID(program)
	if changed != 0 {
		t.Fatalf("changed = %d, want 0 (ambiguous name)", changed)
	}
	call := program[2].(map[string]any)["expr"].(map[string]any)["call"].(map[string]any)
	if _, hasID := call["id"]; hasID {
		t.Fatal("ambiguous call should not gain an id")
	}
}

func TestToNameRewritesResolvableIDCalls(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{"id": "fn1", "name": "helper", "params": []any{}, "body": []any{}}},
		map[string]any{"expr": map[string]any{"call": map[string]any{"id": "fn1", "args": []any{}}}},
	}
	changed := ToName(program)
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}
	call := program[1].(map[string]any)["expr"].(map[string]any)["call"].(map[string]any)
	if call["name"] != "helper" {
		t.Fatalf("call name = %v, want helper", call["name"])
	}
	if _, hasID := call["id"]; hasID {
		t.Fatal("id should be removed after migrating to name")
	}
}

func TestToNameLeavesUnresolvableIDUntouched(t *testing.T) {
	program := []any{
		map[string]any{"expr": map[string]any{"call": map[string]any{"id": "ghost", "args": []any{}}}},
	}
	changed := ToName(program)
	if changed != 0 {
		t.Fatalf("changed = %d, want 0", changed)
	}
	call := program[0].(map[string]any)["expr"].(map[string]any)["call"].(map[string]any)
	if call["id"] != "ghost" {
		t.Fatal("unresolvable id-based call should be left untouched")
	}
}

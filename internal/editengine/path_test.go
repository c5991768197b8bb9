package editengine

import "testing"

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
		wantLen int
	}{
		{"root index", "/$[0]", false, 1},
		{"nested field then index", "/def/body/$[2]", false, 3},
		{"missing leading slash", "$[0]", true, 0},
		{"bad index", "/$[x]", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := ParsePath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(toks) != tt.wantLen {
				t.Fatalf("len(toks) = %d, want %d", len(toks), tt.wantLen)
			}
		})
	}
}

func TestFindByPathTopLevel(t *testing.T) {
	program := []any{
		map[string]any{"let": map[string]any{"name": "a", "value": 1}},
		map[string]any{"let": map[string]any{"name": "b", "value": 2}},
	}
	list, idx, commit, err := FindByPath(&program, "/$[1]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("idx = %d, want 1", idx)
	}
	commit(insertAt(list, idx, map[string]any{"let": map[string]any{"name": "z", "value": 0}}))
	if len(program) != 3 {
		t.Fatalf("len(program) = %d, want 3", len(program))
	}
	letSpec := program[1].(map[string]any)["let"].(map[string]any)
	if letSpec["name"] != "z" {
		t.Fatalf("program[1] name = %v, want z", letSpec["name"])
	}
}

func TestFindByPathNestedIntoDefBody(t *testing.T) {
	program := []any{
		map[string]any{"def": map[string]any{
			"name": "f",
			"body": []any{
				map[string]any{"return": map[string]any{"var": "x"}},
			},
		}},
	}
	list, idx, commit, err := FindByPath(&program, "/$[0]/def/body/$[0]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	commit(deleteAt(list, idx))
	body := program[0].(map[string]any)["def"].(map[string]any)["body"].([]any)
	if len(body) != 0 {
		t.Fatalf("body len = %d, want 0", len(body))
	}
}

func TestFindByPathMustEndInIndex(t *testing.T) {
	program := []any{map[string]any{"def": map[string]any{"name": "f", "body": []any{}}}}
	_, _, _, err := FindByPath(&program, "/$[0]/def")
	if err == nil {
		t.Fatal("expected error when path does not end in an array index")
	}
}

func TestFindStmtByID(t *testing.T) {
	program := []any{
		map[string]any{"id": "s1", "let": map[string]any{"name": "a", "value": 1}},
		map[string]any{"id": "s2", "let": map[string]any{"name": "b", "value": 2}},
	}
	idx, ok := FindStmtByID(program, "s2")
	if !ok || idx != 1 {
		t.Fatalf("FindStmtByID = (%d, %v), want (1, true)", idx, ok)
	}
	if _, ok := FindStmtByID(program, "missing"); ok {
		t.Fatal("expected not found for missing id")
	}
}

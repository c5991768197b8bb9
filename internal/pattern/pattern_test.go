package pattern

import "testing"

func TestIsPlaceholderRecognizesDollarPrefixedNames(t *testing.T) {
	if !IsPlaceholder("$x") {
		t.Fatal("expected $x to be a placeholder")
	}
	if IsPlaceholder("$") {
		t.Fatal("bare $ must not be a placeholder")
	}
	if IsPlaceholder("plain") {
		t.Fatal("non-$ string must not be a placeholder")
	}
	if IsPlaceholder(float64(1)) {
		t.Fatal("non-string value must not be a placeholder")
	}
}

func TestIsPlaceholderExcludesStarPrefix(t *testing.T) {
	if IsPlaceholder("$*rest") {
		t.Fatal("$*-prefixed strings must not be treated as ordinary placeholders")
	}
}

func TestIsStarPlaceholderRecognizesDollarStarPrefix(t *testing.T) {
	if !IsStarPlaceholder("$*rest") {
		t.Fatal("expected $*rest to be a star placeholder")
	}
	if IsStarPlaceholder("$x") {
		t.Fatal("plain $x must not be a star placeholder")
	}
}

func TestMatchBindsPlaceholderToSubtree(t *testing.T) {
	env := Env{}
	node := map[string]any{"add": []any{float64(1), float64(2)}}
	pat := map[string]any{"add": []any{"$a", "$b"}}
	if !Match(node, pat, env) {
		t.Fatal("expected match to succeed")
	}
	if env["a"] != float64(1) || env["b"] != float64(2) {
		t.Fatalf("env = %v, want a=1 b=2", env)
	}
}

func TestMatchRepeatedPlaceholderRequiresEqualSubtrees(t *testing.T) {
	env := Env{}
	pat := []any{"$x", "$x"}
	if !Match([]any{float64(1), float64(1)}, pat, env) {
		t.Fatal("expected match when repeated placeholder binds to equal values")
	}
	env2 := Env{}
	if Match([]any{float64(1), float64(2)}, pat, env2) {
		t.Fatal("expected mismatch when repeated placeholder binds to different values")
	}
}

func TestMatchStarPlaceholderAsSoleListElementBindsWholeList(t *testing.T) {
	env := Env{}
	pat := []any{"$*rest"}
	node := []any{float64(1), float64(2), float64(3)}
	if !Match(node, pat, env) {
		t.Fatal("expected star placeholder to match")
	}
	bound, ok := env["rest"].([]any)
	if !ok || len(bound) != 3 {
		t.Fatalf("env[rest] = %v, want the full 3-element list", env["rest"])
	}
}

func TestMatchFailsOnArityOrTypeMismatch(t *testing.T) {
	env := Env{}
	if Match([]any{float64(1)}, []any{"$a", "$b"}, env) {
		t.Fatal("expected length mismatch to fail")
	}
	if Match(float64(1), []any{"$a"}, Env{}) {
		t.Fatal("expected type mismatch (scalar vs list pattern) to fail")
	}
}

func TestMatchObjectPatternIsSubsetMatch(t *testing.T) {
	env := Env{}
	node := map[string]any{"name": "f", "args": []any{}, "extra": true}
	pat := map[string]any{"name": "$n"}
	if !Match(node, pat, env) {
		t.Fatal("expected object pattern to match against a superset node")
	}
	if env["n"] != "f" {
		t.Fatalf("env[n] = %v, want f", env["n"])
	}
}

func TestEqualASTRequiresMatchingTypes(t *testing.T) {
	if EqualAST(float64(1), "1") {
		t.Fatal("EqualAST must not consider a number and a string equal")
	}
	if !EqualAST(map[string]any{"a": float64(1)}, map[string]any{"a": float64(1)}) {
		t.Fatal("expected structurally identical maps to be equal")
	}
	if EqualAST(map[string]any{"a": float64(1)}, map[string]any{"a": float64(1), "b": float64(2)}) {
		t.Fatal("EqualAST must require matching key sets, not a subset match")
	}
}

func TestSubstituteReplacesPlaceholdersAndSplicesStarLists(t *testing.T) {
	env := Env{"a": float64(1), "rest": []any{float64(2), float64(3)}}
	template := map[string]any{"call": []any{"$a", "$*rest"}}
	got := Substitute(template, env).(map[string]any)
	list := got["call"].([]any)
	if len(list) != 3 || list[0] != float64(1) || list[1] != float64(2) || list[2] != float64(3) {
		t.Fatalf("substitute result = %v, want [1 2 3]", list)
	}
}

func TestApplyRewriteReplacesMatchingNodesOnce(t *testing.T) {
	program := []any{
		map[string]any{"return": map[string]any{"add": []any{float64(1), float64(2)}}},
	}
	rules, err := DecodeRules([]any{
		map[string]any{
			"match":   map[string]any{"add": []any{"$a", "$b"}},
			"replace": map[string]any{"mul": []any{"$a", "$b"}},
		},
	})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	changed := ApplyRewrite(program, rules)
	if changed != 1 {
		t.Fatalf("changed = %d, want 1", changed)
	}
	op := program[0].(map[string]any)["return"].(map[string]any)
	if _, has := op["mul"]; !has {
		t.Fatalf("expected add to be rewritten to mul, got %v", op)
	}
}

func TestApplyRewriteRespectsSelectGuard(t *testing.T) {
	program := []any{
		map[string]any{"return": map[string]any{"add": []any{float64(1), float64(2)}}},
	}
	rules, err := DecodeRules([]any{
		map[string]any{
			"match":   map[string]any{"add": []any{"$a", "$b"}},
			"replace": map[string]any{"mul": []any{"$a", "$b"}},
			"select":  "add[0] == `5`",
		},
	})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	changed := ApplyRewrite(program, rules)
	if changed != 0 {
		t.Fatalf("changed = %d, want 0 (select guard should fail)", changed)
	}
}

func TestDecodeRulesParsesAllOptionalFields(t *testing.T) {
	raw := []any{
		map[string]any{
			"match":               map[string]any{"name": "$n"},
			"replace":             map[string]any{"name": "$n"},
			"apply_to":            []any{"call"},
			"select":              "true",
			"where":               []any{"true"},
			"program_select":      "true",
			"program_where":       []any{"true"},
			"where_placeholders":  map[string]any{"n": "true"},
		},
	}
	rules, err := DecodeRules(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(rules))
	}
	r := rules[0]
	if !r.HasSelect || !r.HasProgramSelect || len(r.Where) != 1 || len(r.ProgramWhere) != 1 {
		t.Fatalf("rule = %+v, missing expected optional fields", r)
	}
	if r.WherePlaceholders["n"] != "true" {
		t.Fatalf("where_placeholders = %v", r.WherePlaceholders)
	}
}

package acir

import (
	"testing"

	"github.com/elmisi/amorph-code/internal/pattern"
)

func roundTrip(t *testing.T, program []any) []any {
	t.Helper()
	enc := EncodeProgram(program)
	if enc.ACIR != 1 {
		t.Fatalf("ACIR version = %d, want 1", enc.ACIR)
	}
	dec, err := DecodeProgram(enc)
	if err != nil {
		t.Fatalf("DecodeProgram: %v", err)
	}
	return dec
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		program []any
	}{
		{
			name: "let and return",
			program: []any{
				map[string]any{"let": map[string]any{"name": "x", "value": float64(1)}},
				map[string]any{"return": map[string]any{"var": "x"}},
			},
		},
		{
			name: "operator with multiple args",
			program: []any{
				map[string]any{"expr": map[string]any{"add": []any{float64(1), float64(2)}}},
			},
		},
		{
			name: "operator with single arg canonicalizes to scalar",
			program: []any{
				map[string]any{"expr": map[string]any{"not": true}},
			},
		},
		{
			name: "call by name",
			program: []any{
				map[string]any{"expr": map[string]any{"call": map[string]any{"name": "f", "args": []any{float64(1)}}}},
			},
		},
		{
			name: "call by id",
			program: []any{
				map[string]any{"expr": map[string]any{"call": map[string]any{"id": "fn1", "args": []any{}}}},
			},
		},
		{
			name: "def with id and if/else",
			program: []any{
				map[string]any{"id": "s1", "def": map[string]any{
					"id": "fn1", "name": "f", "params": []any{"a"},
					"body": []any{
						map[string]any{"if": map[string]any{
							"cond": map[string]any{"var": "a"},
							"then": []any{map[string]any{"return": float64(1)}},
							"else": []any{map[string]any{"return": float64(0)}},
						}},
					},
				}},
			},
		},
		{
			name: "print multiple args",
			program: []any{
				map[string]any{"print": []any{float64(1), float64(2)}},
			},
		},
		{
			name: "print single arg canonicalizes to scalar",
			program: []any{
				map[string]any{"print": float64(1)},
			},
		},
		{
			name: "object literal",
			program: []any{
				map[string]any{"let": map[string]any{"name": "point", "value": map[string]any{"x": float64(1), "y": float64(2)}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := roundTrip(t, tt.program)
			if !pattern.EqualAST(dec, tt.program) {
				t.Fatalf("round-trip mismatch:\n  got:  %#v\n  want: %#v", dec, tt.program)
			}
		})
	}
}

func TestEncodeProgramInternsStringsSorted(t *testing.T) {
	program := []any{
		map[string]any{"let": map[string]any{"name": "zeta", "value": float64(1)}},
		map[string]any{"let": map[string]any{"name": "alpha", "value": float64(2)}},
	}
	enc := EncodeProgram(program)
	for i := 1; i < len(enc.Strings); i++ {
		if enc.Strings[i-1] > enc.Strings[i] {
			t.Fatalf("strings table not sorted: %v", enc.Strings)
		}
	}
}

func TestDecodeProgramUnknownTag(t *testing.T) {
	_, err := DecodeProgram(Encoded{ACIR: 1, Strings: []string{}, Program: []any{[]any{"zzz"}}})
	if err == nil {
		t.Fatal("expected error decoding unknown statement tag")
	}
}

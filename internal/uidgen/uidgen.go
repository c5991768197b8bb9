// Package uidgen mints and assigns the stable identifiers described in
// spec §3.3, ported from original_source/amorph/uid.py.
package uidgen

import (
	"strings"

	"github.com/google/uuid"
)

// New mints a UID of the form "<prefix>_<8-hex>" from a fresh v4 UUID,
// matching the original's gen_uid(prefix) = f"{prefix}_{uuid4().hex[:8]}".
func New(prefix string) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "_" + hex[:8]
}

// AddUIDs walks a raw program (generic []any of statement objects),
// assigning "amr_" ids to statements and "fn_" ids to Def specs that lack
// one. It never overwrites an existing id (idempotent). When deep is
// false, only top-level statements and each top-level Def's own id are
// touched; when true, it additionally recurses into Def bodies and
// If/then/else blocks.
func AddUIDs(stmts []any, deep bool) {
	for _, raw := range stmts {
		addUIDsToStmt(raw, deep)
	}
}

func addUIDsToStmt(raw any, deep bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return
	}
	if _, has := m["id"]; !has {
		m["id"] = New("amr")
	}
	if defSpec, ok := asObject(m["def"]); ok {
		if _, has := defSpec["id"]; !has {
			defSpec["id"] = New("fn")
		}
		if deep {
			if body, ok := defSpec["body"].([]any); ok {
				AddUIDs(body, deep)
			}
		}
	}
	if deep {
		if ifSpec, ok := asObject(m["if"]); ok {
			if then, ok := ifSpec["then"].([]any); ok {
				AddUIDs(then, deep)
			}
			if els, ok := ifSpec["else"].([]any); ok {
				AddUIDs(els, deep)
			}
		}
	}
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// FindStmtByID searches the top-level statement list only, per spec §4.5
// ("By target... searches top-level statements only").
func FindStmtByID(stmts []any, id string) (map[string]any, int, bool) {
	for i, raw := range stmts {
		if m, ok := raw.(map[string]any); ok {
			if existing, has := m["id"]; has {
				if s, ok := existing.(string); ok && s == id {
					return m, i, true
				}
			}
		}
	}
	return nil, -1, false
}

// Package pattern implements the placeholder-binding AST matcher and
// substitutor, plus rule application with JMESPath-guarded subtree
// scoping, ported from original_source/amorph/rewrite.py.
package pattern

import (
	"strings"

	"github.com/jmespath/go-jmespath"
)

// Rule is one rewrite rule: {match, replace, apply_to?, select?, where?,
// program_select?, program_where?, where_placeholders?}.
type Rule struct {
	Match             any
	Replace           any
	HasReplace        bool
	ApplyTo           any // string or []string
	Select            string
	HasSelect         bool
	Where             []string
	ProgramSelect     string
	HasProgramSelect  bool
	ProgramWhere      []string
	WherePlaceholders map[string]string
}

// Env holds placeholder bindings accumulated during a match.
type Env map[string]any

// IsPlaceholder reports whether x is a "$name" placeholder (not "$*name").
// rewrite.py's is_placeholder accepts "$*name" here too outside the
// sole-list-element case; this port deliberately narrows that, since
// star semantics are only ever meaningful as a lone list element.
func IsPlaceholder(x any) bool {
	s, ok := x.(string)
	return ok && len(s) > 1 && strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "$*")
}

// IsStarPlaceholder reports whether x is a "$*name" star placeholder.
func IsStarPlaceholder(x any) bool {
	s, ok := x.(string)
	return ok && len(s) > 2 && strings.HasPrefix(s, "$*")
}

// Match attempts to bind pattern against node, recording placeholder
// bindings into env. A placeholder seen twice must bind structurally
// identical subtrees both times.
func Match(node, pat any, env Env) bool {
	if IsPlaceholder(pat) {
		name := pat.(string)[1:]
		if existing, ok := env[name]; ok {
			return EqualAST(existing, node)
		}
		env[name] = node
		return true
	}

	switch p := pat.(type) {
	case []any:
		n, ok := node.([]any)
		if !ok {
			return false
		}
		if len(p) == 1 && IsStarPlaceholder(p[0]) {
			name := p[0].(string)[2:]
			if existing, ok := env[name]; ok {
				return EqualAST(existing, n)
			}
			env[name] = n
			return true
		}
		if len(p) != len(n) {
			return false
		}
		for i := range p {
			if !Match(n[i], p[i], env) {
				return false
			}
		}
		return true

	case map[string]any:
		n, ok := node.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range p {
			nv, has := n[k]
			if !has {
				return false
			}
			if !Match(nv, v, env) {
				return false
			}
		}
		return true

	default:
		return scalarEqual(node, pat)
	}
}

// EqualAST is a strict structural equality check: types must match (not
// just JSON-equal values), mirroring the original's type(a) is type(b)
// check ahead of the recursive comparison.
func EqualAST(a, b any) bool {
	switch av := a.(type) {
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !EqualAST(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, has := bv[k]
			if !has || !EqualAST(v, bvv) {
				return false
			}
		}
		return true
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	default:
		return false
	}
}

func scalarEqual(node, pat any) bool {
	switch p := pat.(type) {
	case nil:
		return node == nil
	case bool:
		n, ok := node.(bool)
		return ok && n == p
	case float64:
		n, ok := node.(float64)
		return ok && n == p
	case string:
		n, ok := node.(string)
		return ok && n == p
	default:
		return false
	}
}

// Substitute walks a replacement template, replacing placeholders with
// bound values and splicing star-placeholder lists inline.
func Substitute(template any, env Env) any {
	if IsPlaceholder(template) {
		name := template.(string)[1:]
		return env[name]
	}
	switch t := template.(type) {
	case []any:
		var out []any
		for _, x := range t {
			if IsStarPlaceholder(x) {
				name := x.(string)[2:]
				if list, ok := env[name].([]any); ok {
					out = append(out, list...)
				} else if v, ok := env[name]; ok {
					out = append(out, v)
				}
				continue
			}
			out = append(out, Substitute(x, env))
		}
		if out == nil {
			out = []any{}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = Substitute(v, env)
		}
		return out
	default:
		return template
	}
}

func truthy(res any) bool {
	if res == nil {
		return false
	}
	if b, ok := res.(bool); ok && !b {
		return false
	}
	if list, ok := res.([]any); ok && len(list) == 0 {
		return false
	}
	if m, ok := res.(map[string]any); ok && len(m) == 0 {
		return false
	}
	return true
}

// passesSelect evaluates the rule's optional JMESPath guards. Predicates
// are advisory only: a malformed expression or a query error causes the
// guard (and the rule's match at this node) to fail rather than panic.
func passesSelect(node any, rule Rule, env Env, root any) bool {
	search := func(expr string, data any) (any, bool) {
		res, err := jmespath.Search(expr, data)
		if err != nil {
			return nil, false
		}
		return res, true
	}

	if rule.HasSelect {
		res, ok := search(rule.Select, node)
		if !ok || !truthy(res) {
			return false
		}
	}
	for _, expr := range rule.Where {
		res, ok := search(expr, node)
		if !ok || !truthy(res) {
			return false
		}
	}
	if rule.HasProgramSelect {
		res, ok := search(rule.ProgramSelect, root)
		if !ok || !truthy(res) {
			return false
		}
	}
	for _, expr := range rule.ProgramWhere {
		res, ok := search(expr, root)
		if !ok || !truthy(res) {
			return false
		}
	}
	for ph, expr := range rule.WherePlaceholders {
		bound, has := env[ph]
		if !has {
			continue
		}
		res, ok := search(expr, bound)
		if !ok || !truthy(res) {
			return false
		}
	}
	return true
}

func applyToTargets(rule Rule, root any) ([]any, bool) {
	switch v := rule.ApplyTo.(type) {
	case nil:
		return nil, true // no restriction
	case string:
		res, err := jmespath.Search(v, root)
		if err != nil {
			return nil, false
		}
		if list, ok := res.([]any); ok {
			return list, true
		}
		if res == nil {
			return []any{}, true
		}
		return []any{res}, true
	case []string:
		out := []any{}
		for _, expr := range v {
			res, err := jmespath.Search(expr, root)
			if err != nil {
				continue
			}
			if list, ok := res.([]any); ok {
				out = append(out, list...)
			} else if res != nil {
				out = append(out, res)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// RewriteNode is the per-node rewrite step: try every rule at this node
// (first match wins), else recurse into children. The replacement is not
// re-scanned in the same pass, matching the source's documented behavior.
func RewriteNode(node any, rules []Rule, changed *int, root any) any {
	for _, rule := range rules {
		if !rule.HasReplace || rule.Match == nil {
			continue
		}
		env := Env{}

		allowed, ok := applyToTargets(rule, root)
		if !ok {
			// apply_to present but unresolvable: skip this rule entirely.
			continue
		}
		withinScope := allowed == nil
		if !withinScope {
			for _, sel := range allowed {
				if EqualAST(node, sel) {
					withinScope = true
					break
				}
			}
		}

		if withinScope && Match(node, rule.Match, env) && passesSelect(node, rule, env, root) {
			*changed++
			return Substitute(rule.Replace, env)
		}
	}

	switch v := node.(type) {
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = RewriteNode(x, rules, changed, root)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = RewriteNode(val, rules, changed, root)
		}
		return out
	default:
		return node
	}
}

// ApplyRewrite rewrites every top-level statement in place and returns the
// total number of replacements made.
func ApplyRewrite(program []any, rules []Rule) int {
	changed := 0
	for idx, stmt := range program {
		program[idx] = RewriteNode(stmt, rules, &changed, program)
	}
	return changed
}

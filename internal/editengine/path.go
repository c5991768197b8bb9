package editengine

import (
	"strconv"
	"strings"

	"github.com/elmisi/amorph-code/internal/amerr"
)

type pathToken struct {
	isIndex bool
	index   int
	key     string
}

// ParsePath splits a slash-delimited path expression into its segments,
// distinguishing array-index tokens ("$[n]") from field-name tokens,
// ported from original_source/amorph/edits.py's parse_path.
func ParsePath(path string) ([]pathToken, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, amerr.NewEditError(amerr.EBadPath, "path must start with '/'", path)
	}
	var out []pathToken
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "$[") && strings.HasSuffix(seg, "]") {
			num := seg[2 : len(seg)-1]
			idx, err := strconv.Atoi(num)
			if err != nil {
				return nil, amerr.NewEditError(amerr.EBadPath, "invalid index in path: "+seg, path)
			}
			out = append(out, pathToken{isIndex: true, index: idx})
		} else {
			out = append(out, pathToken{key: seg})
		}
	}
	return out, nil
}

// listSetter commits a mutated list back to wherever it is stored (a map
// key, or the program root).
type listSetter func([]any)

// FindByPath navigates path from program's root, returning the container
// list, the index within it, and a setter to commit a length-changing
// mutation back to the tree. The path must end on an array-index segment.
func FindByPath(program *[]any, path string) ([]any, int, listSetter, error) {
	toks, err := ParsePath(path)
	if err != nil {
		return nil, 0, nil, err
	}
	if len(toks) == 0 {
		return nil, 0, nil, amerr.NewEditError(amerr.EBadPath, "empty path", path)
	}

	var cur any = *program
	setCur := listSetter(func(v []any) { *program = v })

	for i, tok := range toks {
		last := i == len(toks)-1
		if tok.isIndex {
			list, ok := cur.([]any)
			if !ok {
				return nil, 0, nil, amerr.NewEditError(amerr.EBadPath, "expected list at step", path)
			}
			if last {
				return list, tok.index, setCur, nil
			}
			if tok.index < 0 || tok.index >= len(list) {
				return nil, 0, nil, amerr.NewEditError(amerr.EBadPath, "index out of range at step", path)
			}
			idx := tok.index
			next := list[idx]
			setCur = func(v []any) { list[idx] = v }
			cur = next
		} else {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, 0, nil, amerr.NewEditError(amerr.EBadPath, "expected object at step", path)
			}
			if last {
				return nil, 0, nil, amerr.NewEditError(amerr.EBadPath, "path must end with array index segment like $[n]", path)
			}
			next, has := m[tok.key]
			if !has {
				return nil, 0, nil, amerr.NewEditError(amerr.EBadPath, "key missing at step: "+tok.key, path)
			}
			key := tok.key
			setCur = func(v []any) { m[key] = v }
			cur = next
		}
	}
	return nil, 0, nil, amerr.NewEditError(amerr.EBadPath, "empty path", path)
}

// FindStmtByID searches the top-level statement list only, returning its
// index.
func FindStmtByID(program []any, id string) (int, bool) {
	for i, raw := range program {
		if m, ok := raw.(map[string]any); ok {
			if existing, has := m["id"]; has {
				if s, ok := existing.(string); ok && s == id {
					return i, true
				}
			}
		}
	}
	return -1, false
}

func insertAt(list []any, idx int, node any) []any {
	out := make([]any, 0, len(list)+1)
	out = append(out, list[:idx]...)
	out = append(out, node)
	out = append(out, list[idx:]...)
	return out
}

func deleteAt(list []any, idx int) []any {
	out := make([]any, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out
}

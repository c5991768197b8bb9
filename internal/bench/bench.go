// Package bench measures canonical-vs-minified encoding size and
// validate/run timing across a set of program files, ported from
// original_source/amorph/bench.py.
package bench

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/elmisi/amorph-code/internal/canon"
	"github.com/elmisi/amorph-code/internal/evalvm"
	"github.com/elmisi/amorph-code/internal/ioeffects"
	"github.com/elmisi/amorph-code/internal/validate"
)

func dumpCanonical(data any) ([]byte, error) {
	return canon.Dump(data)
}

func dumpMinified(data any) ([]byte, error) {
	return canon.DumpMinified(canon.Minify(data))
}

func containsInput(node any) bool {
	switch v := node.(type) {
	case []any:
		for _, x := range v {
			if containsInput(x) {
				return true
			}
		}
		return false
	case map[string]any:
		if len(v) == 1 {
			if _, ok := v["input"]; ok {
				return true
			}
		}
		for _, sub := range v {
			if containsInput(sub) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

type counts struct {
	stmtsTop, funcCount, uidStmtCount, uidFnCount int
}

func countProgram(program []any) counts {
	var c counts
	c.stmtsTop = len(program)
	for _, raw := range program {
		stmt, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, has := stmt["id"]; has {
			c.uidStmtCount++
		}
		if d, ok := stmt["def"].(map[string]any); ok {
			c.funcCount++
			if _, has := d["id"]; has {
				c.uidFnCount++
			}
		}
	}
	return c
}

// Result is one file's bench measurement.
type Result struct {
	Path                string  `json:"path"`
	SizeBytesCanonical  int     `json:"size_bytes_canonical"`
	SizeBytesMinified   int     `json:"size_bytes_minified"`
	RatioMinOverCanon   float64 `json:"ratio_min_over_canon"`
	StmtsTop            int     `json:"stmts_top"`
	FuncCount           int     `json:"func_count"`
	UIDStmtCount        int     `json:"uid_stmt_count"`
	UIDFnCount          int     `json:"uid_fn_count"`
	HasInput            bool    `json:"has_input"`
	ValidateMs          float64 `json:"validate_ms"`
	RunMs               *float64 `json:"run_ms,omitempty"`
}

func unwrapProgram(data any) []any {
	if m, ok := data.(map[string]any); ok {
		if p, ok := m["program"].([]any); ok {
			return p
		}
	}
	if list, ok := data.([]any); ok {
		return list
	}
	return nil
}

// BenchFile reads, validates, and (when safe) runs a single program
// file, returning its size/timing measurement.
func BenchFile(path string) (Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return Result{}, err
	}

	program := unwrapProgram(data)

	canonBytes, err := dumpCanonical(program)
	if err != nil {
		return Result{}, err
	}
	minBytes, err := dumpMinified(program)
	if err != nil {
		return Result{}, err
	}

	c := countProgram(program)
	hasInput := containsInput(program)

	t0 := time.Now()
	_ = validate.ValidateProgram(data)
	validateMs := float64(time.Since(t0).Microseconds()) / 1000.0

	var runMs *float64
	if !hasInput {
		vm := evalvm.New(evalvm.Options{IO: ioeffects.NewQuietIO()})
		t2 := time.Now()
		_, _ = vm.Run(data)
		elapsed := float64(time.Since(t2).Microseconds()) / 1000.0
		runMs = &elapsed
	}

	ratio := 0.0
	if len(canonBytes) > 0 {
		ratio = float64(len(minBytes)) / float64(len(canonBytes))
	}

	return Result{
		Path:               path,
		SizeBytesCanonical: len(canonBytes),
		SizeBytesMinified:  len(minBytes),
		RatioMinOverCanon:  ratio,
		StmtsTop:           c.stmtsTop,
		FuncCount:          c.funcCount,
		UIDStmtCount:       c.uidStmtCount,
		UIDFnCount:         c.uidFnCount,
		HasInput:           hasInput,
		ValidateMs:         validateMs,
		RunMs:              runMs,
	}, nil
}

// FindProgramFiles expands a mix of file and directory paths into a
// sorted list of .json files, preferring *.amr.json names first.
func FindProgramFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.IsDir() {
			_ = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil || d.IsDir() {
					return nil
				}
				if strings.HasSuffix(path, ".json") {
					out = append(out, path)
				}
				return nil
			})
		} else {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi := !strings.HasSuffix(out[i], ".amr.json")
		pj := !strings.HasSuffix(out[j], ".amr.json")
		if pi != pj {
			return !pi
		}
		return out[i] < out[j]
	})
	return out
}

// Aggregate summarizes a batch of Results.
type Aggregate struct {
	Files         int      `json:"files"`
	AvgRatio      float64  `json:"avg_ratio"`
	AvgValidateMs float64  `json:"avg_validate_ms"`
	AvgRunMs      *float64 `json:"avg_run_ms,omitempty"`
}

// Report is bench's top-level output.
type Report struct {
	Aggregate Aggregate `json:"aggregate"`
	Results   []Result  `json:"results"`
}

// Bench runs BenchFile over every discovered program file under paths
// (defaulting to "examples") and aggregates the results.
func Bench(paths []string) Report {
	if len(paths) == 0 {
		paths = []string{"examples"}
	}
	files := FindProgramFiles(paths)

	results := make([]Result, 0, len(files))
	for _, f := range files {
		r, err := BenchFile(f)
		if err != nil {
			results = append(results, Result{Path: f})
			continue
		}
		results = append(results, r)
	}

	var ratioSum float64
	var ratioCount int
	var validateSum float64
	var runSum float64
	var runCount int
	for _, r := range results {
		if r.SizeBytesCanonical > 0 {
			ratioSum += r.RatioMinOverCanon
			ratioCount++
		}
		validateSum += r.ValidateMs
		if r.RunMs != nil {
			runSum += *r.RunMs
			runCount++
		}
	}

	agg := Aggregate{Files: len(results)}
	if ratioCount > 0 {
		agg.AvgRatio = ratioSum / float64(ratioCount)
	}
	if len(results) > 0 {
		agg.AvgValidateMs = validateSum / float64(len(results))
	}
	if runCount > 0 {
		avg := runSum / float64(runCount)
		agg.AvgRunMs = &avg
	}

	return Report{Aggregate: agg, Results: results}
}

// Package runner provides a simple API to run typethon source through the
// full scan -> parse -> analyze pipeline from a file.
package runner

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"

	"github.com/shadowCow/typethon-go/atomizer"
	"github.com/shadowCow/typethon-go/parser"
	"github.com/shadowCow/typethon-go/scanner"
	"github.com/shadowCow/typethon-go/token"
)

// Result is the outcome of analyzing one file: the per-top-level-statement
// atoms EvaluateModule produced, plus every diagnostic collected along
// the way.
type Result struct {
	Atoms  []string // Stringify() of each top-level expression statement's atom
	Errors []atomizer.AnalyzationError
}

// Run executes the complete pipeline: read file -> scan -> parse ->
// analyze. Diagnostics are returned in the Result; output receives the
// pipeline's log lines, and debug raises their level to trace.
func Run(filePath string, output io.Writer, debug bool) (*Result, error) {
	level := hclog.Info
	if debug {
		level = hclog.Trace
	}
	log := hclog.New(&hclog.LoggerOptions{
		Name:   "typethon",
		Level:  level,
		Output: output,
	})

	source, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", filePath, err)
	}

	tokens, err := scanAll(source, log)
	if err != nil {
		return nil, fmt.Errorf("scanner error in %q: %w", filePath, err)
	}

	mod, err := parser.New(tokens, log).Parse()
	if err != nil {
		return nil, fmt.Errorf("parser error in %q: %w", filePath, err)
	}

	z := atomizer.New(log)
	atoms, errs := z.EvaluateModule(mod)

	result := &Result{Errors: errs}
	for _, a := range atoms {
		result.Atoms = append(result.Atoms, a.Stringify())
	}
	return result, nil
}

// scanAll drains the scanner into a flat token slice, which is the shape
// the parser expects. EUNMATCHED/EINVALID
// tokens are passed through rather than treated as fatal: the parser
// reports them as ordinary unexpected tokens, giving a single consistent
// error-reporting path instead of two.
func scanAll(source []byte, log hclog.Logger) ([]token.Token, error) {
	s := scanner.New(source, log)
	var tokens []token.Token
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, nil
		}
	}
}

// Package runner wires the parser, the bytecode compiler/VM, and the tree
// interpreter together behind one entrypoint, run_source, with the
// two-stage fallback policy: a compile error retries the whole module on
// the tree interpreter, and a VM runtime error retries once more the same
// way, before the error is finally surfaced to the caller.
package runner

import (
	"fmt"
	"os"

	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/builtins"
	"github.com/Gabrial-8467/falcon/internal/config"
	"github.com/Gabrial-8467/falcon/internal/env"
	"github.com/Gabrial-8467/falcon/internal/evaluator"
	"github.com/Gabrial-8467/falcon/internal/parser"
	"github.com/Gabrial-8467/falcon/internal/value"
	"github.com/Gabrial-8467/falcon/internal/vm"
)

// Runner owns one compile cache and one shared global Environment across
// every RunFile call, so functions and variables a script defines persist
// the way a REPL session expects.
type Runner struct {
	cfg     *config.ExecutorConfig
	globals *env.Environment
	cache   *CompileCache
}

// New creates a Runner, registers builtins into a fresh global
// Environment, and wires the VM and tree interpreter to call into each
// other for true bidirectional hybrid dispatch.
func New(cfg *config.ExecutorConfig) (*Runner, error) {
	if cfg == nil {
		cfg = config.DefaultExecutorConfig()
	}
	globals := env.New()
	if err := builtins.Register(globals, cfg); err != nil {
		return nil, fmt.Errorf("runner: registering builtins: %w", err)
	}

	m := vm.New(globals)
	evaluator.CodeCall = m.Call
	vm.ASTCall = evaluator.CallFunction
	builtins.CodeCall = m.Call
	builtins.ASTCall = evaluator.CallFunction

	return &Runner{cfg: cfg, globals: globals, cache: NewCompileCache()}, nil
}

// RunSource parses and executes source, trying the bytecode VM first and
// falling back to the tree interpreter on either a compile error or a VM
// runtime error, per cfg.HybridExecution. path is used only to key the
// compile cache and tag diagnostics; pass "" for ad hoc snippets (e.g. a
// REPL line).
func (r *Runner) RunSource(path, source string) (value.Value, error) {
	program, err := parser.Parse(source)
	if err != nil {
		ReportDiagnostic(os.Stderr, path, source, err)
		return nil, err
	}

	return r.runHybrid(path, contentFingerprint(source), program)
}

// RunFile reads path from disk and runs it, keying the compile cache on
// the file's actual mtime rather than a content fingerprint.
func (r *Runner) RunFile(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runner: reading %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("runner: stat %s: %w", path, err)
	}
	source := string(data)
	program, err := parser.Parse(source)
	if err != nil {
		ReportDiagnostic(os.Stderr, path, source, err)
		return nil, err
	}
	return r.runHybrid(path, info.ModTime().UnixNano(), program)
}

func (r *Runner) runHybrid(path string, cacheKey int64, program []ast.Stmt) (value.Value, error) {
	if !r.cfg.HybridExecution {
		return r.runTree(program)
	}

	code, ok := r.cache.Get(path, cacheKey)
	if !ok {
		var err error
		code, err = vm.CompileProgram(program)
		if err != nil {
			// Compile-stage failure (e.g. a throw/try-catch or a complex
			// match pattern the VM compiler's static analysis steers away
			// from) falls all the way back to the tree interpreter for the
			// whole module.
			return r.runTree(program)
		}
		r.cache.Put(path, cacheKey, code)
	}

	m := vm.New(r.globals)
	result, err := m.Run(code)
	if err != nil {
		// A VM runtime error retries once on the tree interpreter: some
		// errors (an undefined global that a not-yet-executed branch would
		// have defined) are path-dependent and not really compile errors.
		return r.runTree(program)
	}
	return result, nil
}

func (r *Runner) runTree(program []ast.Stmt) (value.Value, error) {
	return evaluator.Run(program, r.globals)
}

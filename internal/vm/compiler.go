// Package vm compiles Falcon's AST into stack-machine bytecode and executes
// it: the fast path of the hybrid executor, used for any function the
// compiler can prove closes over nothing but its own parameters/locals and
// the shared globals. Anything else is compiled as an AST-backed function
// and deferred to internal/evaluator at call time.
package vm

import (
	"fmt"

	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// local is one entry of the compiler's current function scope.
type local struct {
	name  string
	depth int
	slot  int
}

// Compiler builds one value.Code for one function body (or the top-level
// program, treated as an implicit zero-argument function).
type Compiler struct {
	enclosing  *Compiler
	code       *value.Code
	locals     []local
	scopeDepth int
	nextSlot   int
	loops      []loopCtx
	err        error
}

// loopCtx tracks the patch targets for break statements within the
// innermost enclosing loop being compiled.
type loopCtx struct {
	breakJumps []int
}

// CompileProgram compiles a whole program's top-level statements as a
// zero-argument CodeBacked unit, the entrypoint the runner executes.
func CompileProgram(program []ast.Stmt) (*value.Code, error) {
	c := &Compiler{code: &value.Code{Name: "<main>"}}
	c.beginScope()
	for _, stmt := range program {
		c.compileStmt(stmt)
		if c.err != nil {
			return nil, c.err
		}
	}
	c.emit(value.OpLoadConst, c.addConst(value.Null{}))
	c.emit(value.OpReturn, 0)
	fuseLoops(c.code)
	return c.code, c.err
}

// CompileFunction compiles fn as a CodeBacked unit. Callers must have
// already decided (via decideMode) that fn qualifies.
func CompileFunction(fn *ast.FunctionExpr, enclosing *Compiler) (*value.Code, error) {
	c := &Compiler{enclosing: enclosing, code: &value.Code{Name: fn.Name, ArgCount: len(fn.Params)}}
	c.beginScope()
	for _, p := range fn.Params {
		c.declareLocal(p.Name)
	}
	for _, stmt := range fn.Body.Body {
		c.compileStmt(stmt)
		if c.err != nil {
			return nil, c.err
		}
	}
	c.emit(value.OpLoadConst, c.addConst(value.Null{}))
	c.emit(value.OpReturn, 0)
	fuseLoops(c.code)
	return c.code, c.err
}

func (c *Compiler) fail(format string, args ...any) {
	if c.err == nil {
		c.err = fmt.Errorf(format, args...)
	}
}

// --- scope & locals ---

func (c *Compiler) beginScope() { c.scopeDepth++ }

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func (c *Compiler) declareLocal(name string) int {
	slot := c.nextSlot
	c.nextSlot++
	if c.nextSlot > c.code.NLocals {
		c.code.NLocals = c.nextSlot
	}
	c.locals = append(c.locals, local{name: name, depth: c.scopeDepth, slot: slot})
	return slot
}

func (c *Compiler) resolveLocal(name string) (int, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			return c.locals[i].slot, true
		}
	}
	return 0, false
}

// --- emit helpers ---

func (c *Compiler) addConst(v value.Value) int {
	c.code.Consts = append(c.code.Consts, v)
	return len(c.code.Consts) - 1
}

func (c *Compiler) emit(op value.Opcode, a int) int {
	c.code.Instructions = append(c.code.Instructions, value.Instruction{Op: op, A: a})
	return len(c.code.Instructions) - 1
}

func (c *Compiler) emit3(op value.Opcode, a, b, cc int) int {
	c.code.Instructions = append(c.code.Instructions, value.Instruction{Op: op, A: a, B: b, C: cc})
	return len(c.code.Instructions) - 1
}

func (c *Compiler) here() int { return len(c.code.Instructions) }

func (c *Compiler) patchJump(at int) {
	c.code.Instructions[at].A = c.here()
}

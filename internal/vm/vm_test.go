package vm

import (
	"testing"

	"github.com/Gabrial-8467/falcon/internal/builtins"
	"github.com/Gabrial-8467/falcon/internal/config"
	"github.com/Gabrial-8467/falcon/internal/env"
	"github.com/Gabrial-8467/falcon/internal/evaluator"
	"github.com/Gabrial-8467/falcon/internal/parser"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// runCode compiles and runs source directly against the bytecode VM. A
// function the compiler classifies AstBacked (a closure, or one using
// throw/try-catch) still needs somewhere to run, so this wires ASTCall the
// same way internal/runner does. Every program must end with an explicit
// top-level `return <expr>`: CompileProgram always appends its own `return
// null` after the program's own statements, so without one, an expression
// statement's value is computed and then immediately discarded (OpPop) the
// same way it would be mid-program.
func runCode(t *testing.T, source string) (value.Value, *env.Environment) {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	code, err := CompileProgram(prog)
	if err != nil {
		t.Fatalf("CompileProgram: %v", err)
	}
	globals := env.New()
	if err := builtins.Register(globals, config.DefaultExecutorConfig()); err != nil {
		t.Fatalf("builtins.Register: %v", err)
	}
	m := New(globals)
	ASTCall = evaluator.CallFunction
	evaluator.CodeCall = m.Call
	builtins.ASTCall = evaluator.CallFunction
	builtins.CodeCall = m.Call
	result, err := m.Run(code)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return result, globals
}

func testInt(t *testing.T, v value.Value, want int64) {
	t.Helper()
	i, ok := v.(value.Int)
	if !ok || i.Value != want {
		t.Errorf("got %v, want Int(%d)", v, want)
	}
}

func TestVMArithmetic(t *testing.T) {
	result, _ := runCode(t, "return 2 + 3 * 4")
	testInt(t, result, 14)
}

func TestVMLocalAssignmentIsAnExpression(t *testing.T) {
	// OpStoreLocal/OpStoreGlobal peek rather than pop, so an assignment
	// evaluates to the assigned value.
	result, _ := runCode(t, "let x = 1\nreturn x = 5")
	testInt(t, result, 5)
}

func TestVMIfElse(t *testing.T) {
	result, _ := runCode(t, `
		let x = 0
		if 10 > 5 {
			x = 1
		} else {
			x = 2
		}
		return x
	`)
	testInt(t, result, 1)
}

func TestVMWhileLoop(t *testing.T) {
	result, _ := runCode(t, `
		let i = 0
		while i < 5 {
			i = i + 1
		}
		return i
	`)
	testInt(t, result, 5)
}

func TestVMCountedForLoop(t *testing.T) {
	result, _ := runCode(t, `
		let total = 0
		for var i := 1 to 4 {
			total = total + i
		}
		return total
	`)
	testInt(t, result, 10)
}

func TestVMBreakExitsLoop(t *testing.T) {
	result, _ := runCode(t, `
		let i = 0
		loop {
			i = i + 1
			if i >= 3 {
				break
			}
		}
		return i
	`)
	testInt(t, result, 3)
}

func TestVMFunctionCall(t *testing.T) {
	result, _ := runCode(t, `
		function square(x) {
			return x * x
		}
		return square(6)
	`)
	testInt(t, result, 36)
}

func TestVMRecursiveFunctionCall(t *testing.T) {
	// Named functions bind into the shared VM globals rather than a local
	// slot at every nesting depth, specifically so a self-call like this
	// resolves: see DESIGN.md's "Recursive named functions" entry.
	result, _ := runCode(t, `
		function fact(n) {
			if n <= 1 {
				return 1
			}
			return n * fact(n - 1)
		}
		return fact(6)
	`)
	testInt(t, result, 720)
}

func TestVMListAndIndex(t *testing.T) {
	result, _ := runCode(t, `
		let xs = [10, 20, 30]
		return xs[1]
	`)
	testInt(t, result, 20)
}

func TestVMDictAttrAccess(t *testing.T) {
	result, _ := runCode(t, `
		let d = dict("a", 1, "b", 2)
		return d.b
	`)
	testInt(t, result, 2)
}

func TestVMMatchTypePattern(t *testing.T) {
	result, _ := runCode(t, `
		match 1 {
			case int: return 100
			case _: return 200
		}
	`)
	testInt(t, result, 100)
}

func TestVMFunctionUsingThrowFallsBackToASTWithoutFailingTheWholeCompile(t *testing.T) {
	// A function that itself uses throw/try-catch must be classified
	// AstBacked by decideMode rather than aborting CompileProgram outright:
	// the surrounding top-level code has no throw of its own and should
	// still compile and run on the VM.
	result, _ := runCode(t, `
		function risky(n) {
			try {
				if n < 0 {
					throw "negative"
				}
				return n * 2
			} catch (e) {
				return -1
			}
		}
		return risky(5) + risky(-1)
	`)
	testInt(t, result, 9)
}

func TestVMThrowFallsBackAtCompileTime(t *testing.T) {
	prog, err := parser.Parse("throw 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := CompileProgram(prog); err == nil {
		t.Fatal("expected CompileProgram to refuse a throw statement, got nil error")
	}
}

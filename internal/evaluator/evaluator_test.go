package evaluator

import (
	"testing"

	"github.com/Gabrial-8467/falcon/internal/env"
	"github.com/Gabrial-8467/falcon/internal/parser"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// runProgram parses and evaluates source against a fresh global
// Environment, returning that Environment so tests can inspect the
// bindings a script leaves behind (top-level ExprStmts discard their
// value, so inspecting globals is the way to observe results).
func runProgram(t *testing.T, source string) *env.Environment {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	globals := env.New()
	if _, err := Run(prog, globals); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return globals
}

func getInt(t *testing.T, e *env.Environment, name string) int64 {
	t.Helper()
	v, ok := e.Get(name)
	if !ok {
		t.Fatalf("global %q not found", name)
	}
	i, ok := v.(value.Int)
	if !ok {
		t.Fatalf("global %q = %T (%s), want Int", name, v, v.Inspect())
	}
	return i.Value
}

func TestLetAndArithmetic(t *testing.T) {
	g := runProgram(t, "let x = 2 + 3 * 4")
	if got := getInt(t, g, "x"); got != 14 {
		t.Errorf("x = %d, want 14", got)
	}
}

func TestIfElseBranchesCorrectly(t *testing.T) {
	g := runProgram(t, `
		let x = 0
		if 1 < 2 {
			x = 10
		} else {
			x = 20
		}
	`)
	if got := getInt(t, g, "x"); got != 10 {
		t.Errorf("x = %d, want 10 (then branch)", got)
	}
}

func TestCountedForLoopAccumulates(t *testing.T) {
	g := runProgram(t, `
		let total = 0
		for var i := 1 to 5 {
			total = total + i
		}
	`)
	if got := getInt(t, g, "total"); got != 15 {
		t.Errorf("total = %d, want 15 (1+2+3+4+5)", got)
	}
}

func TestWhileLoopWithBreak(t *testing.T) {
	g := runProgram(t, `
		let i = 0
		while true {
			i = i + 1
			if i >= 3 {
				break
			}
		}
	`)
	if got := getInt(t, g, "i"); got != 3 {
		t.Errorf("i = %d, want 3", got)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	g := runProgram(t, `
		function add(a, b) {
			return a + b
		}
		let result = add(3, 4)
	`)
	if got := getInt(t, g, "result"); got != 7 {
		t.Errorf("result = %d, want 7", got)
	}
}

func TestRecursiveFunctionSelfReference(t *testing.T) {
	g := runProgram(t, `
		function fact(n) {
			if n <= 1 {
				return 1
			}
			return n * fact(n - 1)
		}
		let result = fact(5)
	`)
	if got := getInt(t, g, "result"); got != 120 {
		t.Errorf("fact(5) = %d, want 120", got)
	}
}

func TestClosureCapturesEnclosingScope(t *testing.T) {
	g := runProgram(t, `
		function makeAdder(n) {
			function adder(x) {
				return x + n
			}
			return adder
		}
		let add5 = makeAdder(5)
		let result = add5(10)
	`)
	if got := getInt(t, g, "result"); got != 15 {
		t.Errorf("result = %d, want 15", got)
	}
}

func TestTryCatchCatchesThrow(t *testing.T) {
	g := runProgram(t, `
		let caught = 0
		try {
			throw 99
		} catch (e) {
			caught = e
		}
	`)
	if got := getInt(t, g, "caught"); got != 99 {
		t.Errorf("caught = %d, want 99", got)
	}
}

func TestUncaughtThrowIsRuntimeError(t *testing.T) {
	prog, err := parser.Parse("throw 1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Run(prog, env.New()); err == nil {
		t.Fatal("expected an error for an uncaught top-level throw, got nil")
	}
}

func TestMatchStatementWildcardFallthrough(t *testing.T) {
	g := runProgram(t, `
		let result = 0
		match 5 {
			case 1: result = 100
			case _: result = 200
		}
	`)
	if got := getInt(t, g, "result"); got != 200 {
		t.Errorf("result = %d, want 200 (wildcard arm)", got)
	}
}

func TestConstReassignmentIsError(t *testing.T) {
	prog, err := parser.Parse("const x = 1\nx = 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := Run(prog, env.New()); err == nil {
		t.Fatal("expected an error reassigning a const binding, got nil")
	}
}

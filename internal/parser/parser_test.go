package parser

import (
	"testing"

	"github.com/Gabrial-8467/falcon/internal/ast"
)

func mustParse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	prog, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q): unexpected error: %v", source, err)
	}
	return prog
}

func TestParseLetAssignment(t *testing.T) {
	prog := mustParse(t, "let x = 1 + 2")
	if len(prog) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog))
	}
	let, ok := prog[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.LetStmt", prog[0])
	}
	if let.Name != "x" || let.IsConst || let.IsVar {
		t.Errorf("LetStmt = %+v, want Name=x, IsConst=false, IsVar=false", let)
	}
	bin, ok := let.Init.(*ast.Binary)
	if !ok || bin.Op != "+" {
		t.Errorf("Init = %+v, want Binary(+)", let.Init)
	}
}

func TestParseShorthandDeclaration(t *testing.T) {
	prog := mustParse(t, "x := 5")
	let, ok := prog[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.LetStmt", prog[0])
	}
	if let.Name != "x" {
		t.Errorf("Name = %q, want x", let.Name)
	}
}

func TestParseConstAndVar(t *testing.T) {
	prog := mustParse(t, "const PI = 3\nvar total = 0")
	c, ok := prog[0].(*ast.LetStmt)
	if !ok || !c.IsConst {
		t.Errorf("first stmt = %+v, want const LetStmt", prog[0])
	}
	v, ok := prog[1].(*ast.LetStmt)
	if !ok || !v.IsVar {
		t.Errorf("second stmt = %+v, want var LetStmt", prog[1])
	}
}

func TestParseIfElse(t *testing.T) {
	prog := mustParse(t, "if x > 0 { show(1) } else { show(2) }")
	ifStmt, ok := prog[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.IfStmt", prog[0])
	}
	if ifStmt.Else == nil {
		t.Error("Else is nil, want a block")
	}
}

func TestParseCountedForLoop(t *testing.T) {
	prog := mustParse(t, "for var i := 1 to 10 step 2 { show(i) }")
	forStmt, ok := prog[0].(*ast.ForStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.ForStmt", prog[0])
	}
	if forStmt.Name != "i" || forStmt.Step == nil {
		t.Errorf("ForStmt = %+v, want Name=i with a Step expression", forStmt)
	}
}

func TestParseFunctionDeclaration(t *testing.T) {
	prog := mustParse(t, "function add(a, b) { return a + b }")
	fnStmt, ok := prog[0].(*ast.FunctionStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.FunctionStmt", prog[0])
	}
	if fnStmt.Fn.Name != "add" || len(fnStmt.Fn.Params) != 2 {
		t.Errorf("FunctionStmt.Fn = %+v, want Name=add with 2 params", fnStmt.Fn)
	}
}

func TestParseSayIsSugarForShowCall(t *testing.T) {
	prog := mustParse(t, `say "hi"`)
	exprStmt, ok := prog[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.ExprStmt", prog[0])
	}
	call, ok := exprStmt.Expr.(*ast.Call)
	if !ok {
		t.Fatalf("expr is %T, want *ast.Call", exprStmt.Expr)
	}
	callee, ok := call.Callee.(*ast.Variable)
	if !ok || callee.Name != "show" {
		t.Errorf("callee = %+v, want Variable(show)", call.Callee)
	}
}

func TestParseMatchStatement(t *testing.T) {
	prog := mustParse(t, "match x {\n  case 1: show(\"one\")\n  case _: show(\"other\")\n}")
	matchStmt, ok := prog[0].(*ast.MatchStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.MatchStmt", prog[0])
	}
	if len(matchStmt.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(matchStmt.Arms))
	}
	if _, ok := matchStmt.Arms[1].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("second arm pattern = %T, want *ast.WildcardPattern", matchStmt.Arms[1].Pattern)
	}
}

func TestParsePrecedence(t *testing.T) {
	prog := mustParse(t, "x = 1 + 2 * 3")
	exprStmt := prog[0].(*ast.ExprStmt)
	assign := exprStmt.Expr.(*ast.Assign)
	top, ok := assign.Value.(*ast.Binary)
	if !ok || top.Op != "+" {
		t.Fatalf("top operator = %+v, want Binary(+) at the top (lower precedence binds outermost)", assign.Value)
	}
	right, ok := top.Right.(*ast.Binary)
	if !ok || right.Op != "*" {
		t.Errorf("right operand = %+v, want Binary(*) nested under +", top.Right)
	}
}

func TestParseTryCatchAndThrow(t *testing.T) {
	prog := mustParse(t, "try { throw 1 } catch (e) { show(e) }")
	tc, ok := prog[0].(*ast.TryCatchStmt)
	if !ok {
		t.Fatalf("stmt is %T, want *ast.TryCatchStmt", prog[0])
	}
	if tc.CatchName != "e" {
		t.Errorf("CatchName = %q, want e", tc.CatchName)
	}
	if _, ok := tc.Try.Body[0].(*ast.ThrowStmt); !ok {
		t.Errorf("try block's first statement is %T, want *ast.ThrowStmt", tc.Try.Body[0])
	}
}

func TestParseSyntaxErrorReportsPosition(t *testing.T) {
	_, err := Parse("let = 1")
	if err == nil {
		t.Fatal("expected a parse error for a missing identifier, got nil")
	}
	if _, ok := err.(*Error); !ok {
		t.Errorf("error is %T, want *parser.Error", err)
	}
}

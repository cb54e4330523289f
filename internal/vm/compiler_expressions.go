package vm

import (
	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/value"
)

func literalConst(v any) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool{Value: x}
	case int64:
		return value.Int{Value: x}
	case float64:
		return value.Float{Value: x}
	case string:
		return value.String{Value: x}
	default:
		return value.Null{}
	}
}

// compileExpr compiles e so that, at runtime, exactly one value is left on
// top of the operand stack.
func (c *Compiler) compileExpr(e ast.Expr) {
	if c.err != nil {
		return
	}
	switch ex := e.(type) {
	case *ast.Literal:
		c.emit(value.OpLoadConst, c.addConst(literalConst(ex.Value)))

	case *ast.Variable:
		c.compileLoadName(ex.Name)

	case *ast.ListLit:
		for _, el := range ex.Elements {
			c.compileExpr(el)
		}
		c.emit(value.OpMakeList, len(ex.Elements))

	case *ast.TupleLit:
		for _, el := range ex.Elements {
			c.compileExpr(el)
		}
		c.emit(value.OpMakeTuple, len(ex.Elements))

	case *ast.SetLit:
		for _, el := range ex.Elements {
			c.compileExpr(el)
		}
		c.emit(value.OpMakeSet, len(ex.Elements))

	case *ast.DictLit:
		keys := make([]string, len(ex.Entries))
		for i, entry := range ex.Entries {
			keys[i] = entry.Key
			c.compileExpr(entry.Value)
		}
		c.emit(value.OpMakeDict, c.addConst(value.DictLiteralConst{Keys: keys}))

	case *ast.ArrayLit:
		c.compileExpr(ex.Size)
		c.emit(value.OpMakeArray, 0)

	case *ast.FunctionExpr:
		c.compileFunctionLiteral(ex)

	case *ast.Grouping:
		c.compileExpr(ex.Expression)

	case *ast.Unary:
		c.compileExpr(ex.Operand)
		switch ex.Op {
		case "!":
			c.emit(value.OpNot, 0)
		case "-":
			c.emit(value.OpNeg, 0)
		default:
			c.fail("unsupported unary operator %q", ex.Op)
		}

	case *ast.Binary:
		c.compileBinary(ex)

	case *ast.Call:
		c.compileExpr(ex.Callee)
		for _, a := range ex.Args {
			c.compileExpr(a)
		}
		c.emit(value.OpCall, len(ex.Args))

	case *ast.Member:
		c.compileExpr(ex.Base)
		c.emit(value.OpLoadAttr, c.addConst(value.String{Value: ex.Name}))

	case *ast.Subscript:
		c.compileExpr(ex.Base)
		c.compileExpr(ex.Index)
		c.emit(value.OpLoadIndex, 0)

	case *ast.Assign:
		c.compileAssign(ex)

	case *ast.MatchExpr:
		c.compileMatch(ex.Subject, simpleArms(ex.Arms), true)

	default:
		c.fail("vm: unsupported expression %T", e)
	}
}

// simpleArm is the common shape compileMatch needs from either a
// statement-position or expression-position match arm.
type simpleArm struct {
	pattern ast.Pattern
	guard   ast.Expr
	exprBdy ast.Expr
	stmtBdy ast.Stmt
}

func simpleArms(arms []ast.MatchArm) []simpleArm {
	out := make([]simpleArm, len(arms))
	for i, a := range arms {
		out[i] = simpleArm{pattern: a.Pattern, guard: a.Guard, exprBdy: a.Body}
	}
	return out
}

func simpleStmtArms(arms []ast.MatchStmtArm) []simpleArm {
	out := make([]simpleArm, len(arms))
	for i, a := range arms {
		out[i] = simpleArm{pattern: a.Pattern, guard: a.Guard, stmtBdy: a.Body}
	}
	return out
}

func (c *Compiler) compileLoadName(name string) {
	if slot, ok := c.resolveLocal(name); ok {
		c.emit(value.OpLoadLocal, slot)
		return
	}
	c.emit(value.OpLoadGlobal, c.addConst(value.String{Value: name}))
}

func (c *Compiler) compileStoreName(name string) {
	if slot, ok := c.resolveLocal(name); ok {
		c.emit(value.OpStoreLocal, slot)
		return
	}
	c.emit(value.OpStoreGlobal, c.addConst(value.String{Value: name}))
}

func (c *Compiler) compileBinary(ex *ast.Binary) {
	if ex.Op == "&&" || ex.Op == "||" {
		c.compileExpr(ex.Left)
		c.emit(value.OpDup, 0)
		var jmp int
		if ex.Op == "&&" {
			jmp = c.emit(value.OpJumpIfFalse, 0)
		} else {
			jmp = c.emit(value.OpJumpIfTrue, 0)
		}
		c.emit(value.OpPop, 0)
		c.compileExpr(ex.Right)
		c.patchJump(jmp)
		return
	}
	c.compileExpr(ex.Left)
	c.compileExpr(ex.Right)
	switch ex.Op {
	case "+":
		c.emit(value.OpAdd, 0)
	case "-":
		c.emit(value.OpSub, 0)
	case "*":
		c.emit(value.OpMul, 0)
	case "/":
		c.emit(value.OpDiv, 0)
	case "%":
		c.emit(value.OpMod, 0)
	case "==":
		c.emit(value.OpEq, 0)
	case "!=":
		c.emit(value.OpNeq, 0)
	case "<":
		c.emit(value.OpLt, 0)
	case "<=":
		c.emit(value.OpLte, 0)
	case ">":
		c.emit(value.OpGt, 0)
	case ">=":
		c.emit(value.OpGte, 0)
	default:
		c.fail("unsupported binary operator %q", ex.Op)
	}
}

func (c *Compiler) compileAssign(ex *ast.Assign) {
	switch t := ex.Target.(type) {
	case *ast.Variable:
		c.compileExpr(ex.Value)
		c.compileStoreName(t.Name)
	case *ast.Member:
		c.compileExpr(t.Base)
		c.compileExpr(ex.Value)
		c.emit(value.OpStoreAttr, c.addConst(value.String{Value: t.Name}))
	case *ast.Subscript:
		c.compileExpr(t.Base)
		c.compileExpr(t.Index)
		c.compileExpr(ex.Value)
		c.emit(value.OpStoreIndex, 0)
	default:
		c.fail("vm: unsupported assignment target %T", ex.Target)
	}
}

func (c *Compiler) compileFunctionLiteral(fn *ast.FunctionExpr) {
	if decideMode(fn, c) {
		code, err := CompileFunction(fn, c)
		if err != nil {
			c.fail("%s", err.Error())
			return
		}
		c.emit3(value.OpMakeFunction, c.addConst(code), int(value.FnModeCode), 0)
		return
	}
	c.emit3(value.OpMakeFunction, c.addConst(value.ASTFuncConst{Node: fn}), int(value.FnModeAST), 0)
}

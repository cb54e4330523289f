package vm

import (
	"fmt"

	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// compileMatch lowers the common (non-destructuring) match arms — literal,
// variable, wildcard, and type-name patterns — to bytecode. hasComplexPattern
// steers any function using list/tuple/dict/or patterns to the AST-backed
// path before this is ever reached; c.fail is a last-resort guard if that
// heuristic ever misses a case.
func (c *Compiler) compileMatch(subject ast.Expr, arms []simpleArm, isExpr bool) {
	c.compileExpr(subject)
	subjSlot := c.declareLocal(fmt.Sprintf("$match_subj_%d", c.here()))
	c.emit(value.OpStoreLocal, subjSlot)
	c.emit(value.OpPop, 0)

	var endJumps []int
	for _, arm := range arms {
		c.beginScope()
		var failJumps []int

		if isComplexPattern(arm.pattern) {
			c.fail("vm: match arm pattern %T requires the tree interpreter", arm.pattern)
			c.endScope()
			return
		}
		c.emit(value.OpLoadLocal, subjSlot)
		c.compilePatternTest(arm.pattern)
		failJumps = append(failJumps, c.emit(value.OpJumpIfFalse, 0))

		if arm.guard != nil {
			c.compileExpr(arm.guard)
			failJumps = append(failJumps, c.emit(value.OpJumpIfFalse, 0))
		}

		if isExpr {
			c.compileExpr(arm.exprBdy)
		} else {
			c.compileStmt(arm.stmtBdy)
		}
		endJumps = append(endJumps, c.emit(value.OpJump, 0))

		for _, j := range failJumps {
			c.patchJump(j)
		}
		c.endScope()
	}

	if isExpr {
		c.emit(value.OpLoadConst, c.addConst(value.Null{}))
	}
	for _, j := range endJumps {
		c.patchJump(j)
	}
}

// compilePatternTest consumes the subject value already pushed on the
// stack and leaves a Bool reporting whether it matched (plus, for a
// VariablePattern, binds the matched value into a fresh local as a side
// effect before reporting success).
func (c *Compiler) compilePatternTest(pat ast.Pattern) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		c.emit(value.OpPop, 0)
		c.emit(value.OpLoadConst, c.addConst(value.Bool{Value: true}))

	case *ast.VariablePattern:
		slot := c.declareLocal(p.Name)
		c.emit(value.OpStoreLocal, slot)
		c.emit(value.OpPop, 0)
		c.emit(value.OpLoadConst, c.addConst(value.Bool{Value: true}))

	case *ast.LiteralPattern:
		c.emit(value.OpLoadConst, c.addConst(literalConst(p.Value)))
		c.emit(value.OpEq, 0)

	case *ast.TypePattern:
		c.emit(value.OpIsType, c.addConst(value.String{Value: p.TypeName}))

	default:
		c.fail("vm: unsupported pattern %T", pat)
	}
}

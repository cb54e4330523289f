package vm

import (
	"fmt"

	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/value"
)

func (c *Compiler) compileStmt(stmt ast.Stmt) {
	if c.err != nil {
		return
	}
	switch st := stmt.(type) {
	case *ast.ExprStmt:
		c.compileExpr(st.Expr)
		c.emit(value.OpPop, 0)

	case *ast.LetStmt:
		if st.Init != nil {
			c.compileExpr(st.Init)
		} else {
			c.emit(value.OpLoadConst, c.addConst(value.Null{}))
		}
		slot := c.declareLocal(st.Name)
		c.emit(value.OpStoreLocal, slot)
		c.emit(value.OpPop, 0)

	case *ast.BlockStmt:
		c.beginScope()
		for _, s := range st.Body {
			c.compileStmt(s)
		}
		c.endScope()

	case *ast.IfStmt:
		c.compileExpr(st.Cond)
		elseJump := c.emit(value.OpJumpIfFalse, 0)
		c.compileStmt(st.Then)
		endJump := c.emit(value.OpJump, 0)
		c.patchJump(elseJump)
		if st.Else != nil {
			c.compileStmt(st.Else)
		}
		c.patchJump(endJump)

	case *ast.WhileStmt:
		c.loops = append(c.loops, loopCtx{})
		loopStart := c.here()
		c.compileExpr(st.Cond)
		exitJump := c.emit(value.OpJumpIfFalse, 0)
		c.compileStmt(st.Body)
		c.emit(value.OpJump, loopStart)
		c.patchJump(exitJump)
		c.finishLoop()

	case *ast.LoopStmt:
		c.loops = append(c.loops, loopCtx{})
		loopStart := c.here()
		c.compileStmt(st.Body)
		c.emit(value.OpJump, loopStart)
		c.finishLoop()

	case *ast.ForStmt:
		c.compileForStmt(st)

	case *ast.BreakStmt:
		if len(c.loops) == 0 {
			c.fail("break used outside a loop")
			return
		}
		jump := c.emit(value.OpJump, 0)
		top := len(c.loops) - 1
		c.loops[top].breakJumps = append(c.loops[top].breakJumps, jump)

	case *ast.ReturnStmt:
		if st.Value != nil {
			c.compileExpr(st.Value)
		} else {
			c.emit(value.OpLoadConst, c.addConst(value.Null{}))
		}
		c.emit(value.OpReturn, 0)

	case *ast.ThrowStmt:
		// Bytecode has no catchable exception mechanism of its own. A
		// function using throw is steered to AST mode by decideMode, so
		// this case is reached only for a throw outside any function: it
		// fails the compile, and the runner then runs the whole module on
		// the tree interpreter, where try/catch is a first-class
		// control-flow signal.
		c.fail("throw is not supported in bytecode-compiled functions; surrounding code falls back to the tree interpreter")

	case *ast.TryCatchStmt:
		c.fail("try/catch is not supported in bytecode-compiled functions; surrounding code falls back to the tree interpreter")

	case *ast.FunctionStmt:
		// Named function declarations always bind into the shared VM
		// globals rather than a frame-local slot, at every nesting depth:
		// a call to fn spins up its own frame with its own locals, with no
		// upvalue into whatever frame declared fn, so a recursive
		// self-call has nowhere else to resolve. This mirrors the tree
		// interpreter's top-level behavior and trades strict block
		// scoping of nested named functions for working recursion.
		c.compileFunctionLiteral(st.Fn)
		c.emit(value.OpStoreGlobal, c.addConst(value.String{Value: st.Fn.Name}))
		c.emit(value.OpPop, 0)

	case *ast.MatchStmt:
		c.compileMatch(st.Subject, simpleStmtArms(st.Arms), false)

	default:
		c.fail("vm: unsupported statement %T", stmt)
	}
}

func (c *Compiler) finishLoop() {
	top := len(c.loops) - 1
	for _, j := range c.loops[top].breakJumps {
		c.patchJump(j)
	}
	c.loops = c.loops[:top]
}

func (c *Compiler) compileForStmt(st *ast.ForStmt) {
	c.beginScope()
	loopVar := c.declareLocal(st.Name)
	endVar := c.declareLocal(fmt.Sprintf("$for_end_%d", c.here()))
	stepVar := c.declareLocal(fmt.Sprintf("$for_step_%d", c.here()))

	c.compileExpr(st.Start)
	c.emit(value.OpStoreLocal, loopVar)
	c.emit(value.OpPop, 0)

	c.compileExpr(st.End)
	c.emit(value.OpStoreLocal, endVar)
	c.emit(value.OpPop, 0)

	if st.Step != nil {
		c.compileExpr(st.Step)
	} else {
		c.emit(value.OpLoadConst, c.addConst(value.Int{Value: 1}))
	}
	c.emit(value.OpStoreLocal, stepVar)
	c.emit(value.OpPop, 0)

	if st.Step != nil {
		// A defaulted step is always the literal 1; only a step expression
		// needs the runtime zero check.
		c.emit(value.OpLoadLocal, stepVar)
		c.emit(value.OpCheckStepNonZero, 0)
	}

	zeroConst := c.addConst(value.Int{Value: 0})

	c.loops = append(c.loops, loopCtx{})
	loopStart := c.here()

	// The loop's direction isn't known until runtime (a step can be any
	// expression, not just a literal), so every iteration branches on the
	// sign of step to pick i <= end (counting up) or i >= end (counting
	// down) — step's sign can't be folded into a single compile-time
	// comparison the way `negative` used to.
	c.emit(value.OpLoadLocal, stepVar)
	c.emit(value.OpLoadConst, zeroConst)
	c.emit(value.OpGt, 0)
	toDescending := c.emit(value.OpJumpIfFalse, 0)
	c.emit(value.OpLoadLocal, loopVar)
	c.emit(value.OpLoadLocal, endVar)
	c.emit(value.OpLte, 0)
	condDone := c.emit(value.OpJump, 0)
	c.patchJump(toDescending)
	c.emit(value.OpLoadLocal, loopVar)
	c.emit(value.OpLoadLocal, endVar)
	c.emit(value.OpGte, 0)
	c.patchJump(condDone)

	exitJump := c.emit(value.OpJumpIfFalse, 0)

	c.compileStmt(st.Body)

	c.emit(value.OpLoadLocal, loopVar)
	c.emit(value.OpLoadLocal, stepVar)
	c.emit(value.OpAdd, 0)
	c.emit(value.OpStoreLocal, loopVar)
	c.emit(value.OpPop, 0)
	c.emit(value.OpJump, loopStart)
	c.patchJump(exitJump)
	c.finishLoop()
	c.endScope()
}

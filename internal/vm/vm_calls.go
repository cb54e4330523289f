package vm

import (
	"fmt"

	"github.com/Gabrial-8467/falcon/internal/value"
)

// execCall handles OpCall: argc arguments plus the callee sit on top of
// the stack (callee pushed first), and the call's result replaces them.
func (m *VM) execCall(argc int) error {
	args, err := m.popN(argc)
	if err != nil {
		return err
	}
	callee, err := m.pop()
	if err != nil {
		return err
	}

	var result value.Value
	switch fn := callee.(type) {
	case *value.NativeFn:
		result, err = fn.Fn(args)
	case *value.FunctionValue:
		if fn.IsAstBacked() {
			if ASTCall == nil {
				return fmt.Errorf("internal: no tree interpreter wired for %s", fn.Inspect())
			}
			result, err = ASTCall(fn, args)
		} else {
			result, err = m.callCode(fn.Code, args)
		}
	default:
		return fmt.Errorf("value of type %s is not callable", callee.Type())
	}
	if err != nil {
		return err
	}
	m.push(result)
	return nil
}

// execMakeFunction handles OpMakeFunction: A is the constant-pool index
// (a *value.Code for FnModeCode, a value.ASTFuncConst for FnModeAST), B is
// the FnMode tag. An AST-backed function's ClosureEnv is always the VM's
// shared global environment, never a VM frame. decideMode picks AST mode
// when the function reads a local of an enclosing compiled function (or
// uses throw/try-catch or a destructuring pattern); those frame locals are
// not handed to the tree interpreter, so such names resolve only against
// the globals when the function runs.
func (m *VM) execMakeFunction(f *frame, in value.Instruction) error {
	switch value.FnMode(in.B) {
	case value.FnModeCode:
		code := f.code.Consts[in.A].(*value.Code)
		m.push(&value.FunctionValue{Name: code.Name, Code: code})
	case value.FnModeAST:
		ac := f.code.Consts[in.A].(value.ASTFuncConst)
		m.push(&value.FunctionValue{Name: ac.Node.Name, AstNode: ac.Node, ClosureEnv: m.globals})
	default:
		return fmt.Errorf("internal: unknown function mode %d", in.B)
	}
	return nil
}

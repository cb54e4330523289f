package value

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Gabrial-8467/falcon/internal/ast"
)

// Environment is implemented by internal/env.Environment; declared here (not
// imported) to let FunctionValue reference a closure environment without
// value importing env (env already imports value — see DESIGN.md).
type Environment interface {
	Define(name string, v Value, isConst bool, typeName string) error
	Get(name string) (Value, bool)
	Assign(name string, v Value) error
}

// FunctionValue is a Falcon function. Exactly one of Code or AstNode is
// set: CodeBacked functions carry Code and run on the bytecode VM;
// AstBacked functions carry AstNode and ClosureEnv and run on the tree
// interpreter.
type FunctionValue struct {
	Name       string
	Code       *Code
	AstNode    *ast.FunctionExpr
	ClosureEnv Environment
}

func (*FunctionValue) Type() Type { return FuncT }

func (f *FunctionValue) IsAstBacked() bool { return f.AstNode != nil }

func (f *FunctionValue) Inspect() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	if f.IsAstBacked() {
		return fmt.Sprintf("<function %s (ast)>", name)
	}
	return fmt.Sprintf("<function %s (code)>", name)
}

func (f *FunctionValue) ArgCount() int {
	if f.Code != nil {
		return f.Code.ArgCount
	}
	return len(f.AstNode.Params)
}

// NativeFn wraps a Go-implemented builtin so it can flow through the value
// model like any other callable.
type NativeFn struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (*NativeFn) Type() Type      { return NativeT }
func (n *NativeFn) Inspect() string { return fmt.Sprintf("<native %s>", n.Name) }

// PromiseStub is a synchronous Promise placeholder: then/catch run
// immediately if already settled, otherwise queue for in-order invocation
// when the Promise builtins' resolve/reject settle it (settlePromise in
// internal/builtins). Each promise carries a uuid identity, shown by
// Inspect.
type PromiseStub struct {
	ID          uuid.UUID
	Resolved    bool
	Rejected    bool
	Value       Value
	Err         Value
	ThenQueue   []*FunctionValue
	ThenNative  []*NativeFn
	CatchQueue  []*FunctionValue
	CatchNative []*NativeFn
}

func NewPromise() *PromiseStub {
	return &PromiseStub{ID: uuid.New()}
}

func (*PromiseStub) Type() Type { return PromiseT }

func (p *PromiseStub) Inspect() string {
	switch {
	case p.Resolved:
		return fmt.Sprintf("<Promise %s resolved: %s>", p.ID, p.Value.Inspect())
	case p.Rejected:
		return fmt.Sprintf("<Promise %s rejected: %s>", p.ID, p.Err.Inspect())
	default:
		return fmt.Sprintf("<Promise %s pending>", p.ID)
	}
}

package vm

import (
	"fmt"

	"github.com/Gabrial-8467/falcon/internal/env"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// ASTCall is wired at startup (by the runner) to the tree interpreter's
// call entrypoint, so the VM can invoke an AST-backed closure it
// encounters as an ordinary callable value (e.g. passed in as a
// higher-order function argument). Left nil, only CodeBacked functions and
// natives are callable from bytecode.
var ASTCall func(fn *value.FunctionValue, args []value.Value) (value.Value, error)

const maxFrames = 2048

// frame is one ongoing bytecode call.
type frame struct {
	code   *value.Code
	ip     int
	locals []value.Value
}

// VM is Falcon's bytecode executor. One VM instance owns the operand
// stack and shares a single global Environment with the tree interpreter,
// so a variable set by one executor is visible to the other.
type VM struct {
	stack   []value.Value
	globals *env.Environment
	frames  []*frame
}

// New creates a VM sharing globals with the rest of the runtime.
func New(globals *env.Environment) *VM {
	return &VM{globals: globals}
}

// Run executes a top-level program unit compiled by CompileProgram.
func (m *VM) Run(code *value.Code) (value.Value, error) {
	return m.runFrame(&frame{code: code, locals: make([]value.Value, code.NLocals)})
}

// Call invokes a CodeBacked function value with args. It implements the
// evaluator.CodeCall hook so the tree interpreter can call into bytecode.
func (m *VM) Call(fn *value.FunctionValue, args []value.Value) (value.Value, error) {
	if fn.Code == nil {
		return nil, fmt.Errorf("internal: vm.Call given a non-CodeBacked function %s", fn.Inspect())
	}
	return m.callCode(fn.Code, args)
}

func (m *VM) callCode(code *value.Code, args []value.Value) (value.Value, error) {
	locals := make([]value.Value, code.NLocals)
	for i := 0; i < code.ArgCount; i++ {
		if i < len(args) {
			locals[i] = args[i]
		} else {
			locals[i] = value.Null{}
		}
	}
	return m.runFrame(&frame{code: code, locals: locals})
}

func (m *VM) push(v value.Value) { m.stack = append(m.stack, v) }

func (m *VM) pop() (value.Value, error) {
	if len(m.stack) == 0 {
		return nil, fmt.Errorf("internal: vm stack underflow")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *VM) peek() (value.Value, error) {
	if len(m.stack) == 0 {
		return nil, fmt.Errorf("internal: vm stack underflow")
	}
	return m.stack[len(m.stack)-1], nil
}

func (m *VM) runFrame(f *frame) (value.Value, error) {
	if len(m.frames) >= maxFrames {
		return nil, fmt.Errorf("stack overflow: call depth exceeded %d", maxFrames)
	}
	m.frames = append(m.frames, f)
	defer func() { m.frames = m.frames[:len(m.frames)-1] }()

	for {
		if f.ip >= len(f.code.Instructions) {
			return value.Null{}, nil
		}
		instr := f.code.Instructions[f.ip]
		f.ip++
		ret, done, err := m.execOne(f, instr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.code.Name, err)
		}
		if done {
			return ret, nil
		}
	}
}

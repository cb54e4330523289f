package value

import "github.com/Gabrial-8467/falcon/internal/ast"

// Opcode is a single bytecode instruction tag executed by the VM.
type Opcode byte

const (
	OpLoadConst Opcode = iota
	OpPop

	OpLoadGlobal
	OpStoreGlobal
	OpLoadLocal
	OpStoreLocal

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte

	OpAnd
	OpOr
	OpNot
	OpNeg
	OpDup

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpCall
	OpReturn

	OpLoadAttr
	OpStoreAttr
	OpLoadIndex
	OpStoreIndex
	OpMakeFunction
	OpPrint

	OpMakeList
	OpMakeTuple
	OpMakeSet
	OpMakeDict
	OpMakeArray

	// OpIsType pops a value and pushes a Bool reporting whether it matches
	// the type name named by the String constant at index A — the
	// bytecode lowering of a TypePattern match arm.
	OpIsType

	// OpCheckStepNonZero pops a counted for-loop's step value and raises a
	// runtime error if it is zero; it pushes nothing back, matching a
	// validating OpPop.
	OpCheckStepNonZero

	// Fused opcodes.
	OpIncLocal
	OpJumpIfGeLocalImm
	OpFastCount
)

// FnMode distinguishes the two MAKE_FUNCTION variants: CODE
// for statically resolvable functions, AST for closures deferred to the
// tree interpreter.
type FnMode byte

const (
	FnModeCode FnMode = iota
	FnModeAST
)

// Instruction is one (opcode, operand...) pair. Most opcodes use only A;
// the fused loop opcodes use A/B/C for (local index, immediate, jump
// target).
type Instruction struct {
	Op   Opcode
	A, B, C int
}

// Code is an immutable compiled unit: a flat instruction stream over a
// constant pool, with its local-slot and parameter-count metadata.
type Code struct {
	Name         string
	Instructions []Instruction
	Consts       []Value
	NLocals      int
	ArgCount     int
}

func (*Code) Type() Type      { return "Code" }
func (c *Code) Inspect() string { return "<code " + c.Name + ">" }

// ASTFuncConst is a constant-pool entry carrying an AST-backed function's
// syntax tree, so OpMakeFunction can build the closure at the point the VM
// encounters the MAKE_FUNCTION instruction. The VM never interprets the
// tree itself — it hands the node to internal/evaluator via the
// FunctionValue it constructs.
type ASTFuncConst struct{ Node *ast.FunctionExpr }

func (ASTFuncConst) Type() Type        { return "ASTFuncConst" }
func (ASTFuncConst) Inspect() string   { return "<ast-function-const>" }

// DictLiteralConst is pushed onto the const pool by OpMakeDict to carry the
// key names for the dict being constructed; values are supplied from the
// stack in the same order.
type DictLiteralConst struct {
	Keys []string
}

func (DictLiteralConst) Type() Type      { return "DictLiteralConst" }
func (d DictLiteralConst) Inspect() string { return "<dict-keys>" }

// Package evaluator is the tree-walking fallback interpreter for closures
// (AST-backed functions): anything the compiler could not prove free of
// captured variables runs here instead of on the bytecode VM, sharing the
// same Environment and builtin globals.
package evaluator

import "github.com/Gabrial-8467/falcon/internal/value"

// returnSignal, breakSignal, and throwSignal are internal value.Value
// variants that never escape to user code: evalStmt/evalStmts return them
// in place of an ordinary value to propagate control flow up through the
// recursive evaluation without Go panics, mirroring how a function return,
// a loop break, or a thrown exception unwinds the call stack.
type returnSignal struct{ Value value.Value }

func (returnSignal) Type() value.Type      { return "ReturnSignal" }
func (r returnSignal) Inspect() string     { return r.Value.Inspect() }

type breakSignal struct{}

func (breakSignal) Type() value.Type  { return "BreakSignal" }
func (breakSignal) Inspect() string   { return "<break>" }

// throwSignal carries a user-thrown value up to the nearest enclosing
// try/catch, or to the top level if none catches it.
type throwSignal struct{ Value value.Value }

func (throwSignal) Type() value.Type  { return "ThrowSignal" }
func (t throwSignal) Inspect() string { return t.Value.Inspect() }

func isReturn(v value.Value) (returnSignal, bool) { r, ok := v.(returnSignal); return r, ok }
func isBreak(v value.Value) bool                  { _, ok := v.(breakSignal); return ok }
func isThrow(v value.Value) (throwSignal, bool)    { t, ok := v.(throwSignal); return t, ok }

// isSignal reports whether v is any of the three control-flow signals —
// evalStmts uses this to stop executing sibling statements and propagate
// immediately; loops check isBreak/isReturn/isThrow individually.
func isSignal(v value.Value) bool {
	switch v.(type) {
	case returnSignal, breakSignal, throwSignal:
		return true
	default:
		return false
	}
}

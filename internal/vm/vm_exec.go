package vm

import (
	"fmt"
	"strings"

	"github.com/Gabrial-8467/falcon/internal/builtins"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// execOne runs a single instruction against frame f. It returns
// (returnValue, true, nil) when the instruction ends the frame (OpReturn;
// running off the end is handled by runFrame), and (_, false, nil) to keep
// looping.
func (m *VM) execOne(f *frame, in value.Instruction) (value.Value, bool, error) {
	switch in.Op {
	case value.OpLoadConst:
		m.push(f.code.Consts[in.A])

	case value.OpPop:
		if _, err := m.pop(); err != nil {
			return nil, false, err
		}

	case value.OpDup:
		v, err := m.peek()
		if err != nil {
			return nil, false, err
		}
		m.push(v)

	case value.OpLoadGlobal:
		name := f.code.Consts[in.A].(value.String).Value
		v, ok := m.globals.Get(name)
		if !ok {
			return nil, false, fmt.Errorf("undefined variable %q", name)
		}
		m.push(v)

	case value.OpStoreGlobal:
		name := f.code.Consts[in.A].(value.String).Value
		v, err := m.peek()
		if err != nil {
			return nil, false, err
		}
		if _, ok := m.globals.Get(name); ok {
			if err := m.globals.Assign(name, v); err != nil {
				return nil, false, err
			}
		} else if err := m.globals.Define(name, v, false, ""); err != nil {
			return nil, false, err
		}

	case value.OpLoadLocal:
		m.push(f.locals[in.A])

	case value.OpStoreLocal:
		v, err := m.peek()
		if err != nil {
			return nil, false, err
		}
		f.locals[in.A] = v

	case value.OpAdd, value.OpSub, value.OpMul, value.OpDiv, value.OpMod,
		value.OpEq, value.OpNeq, value.OpLt, value.OpLte, value.OpGt, value.OpGte:
		r, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		l, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		res, err := value.BinaryOp(opSymbol(in.Op), l, r)
		if err != nil {
			return nil, false, err
		}
		m.push(res)

	case value.OpNot:
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		m.push(value.Bool{Value: !value.Truthy(v)})

	case value.OpNeg:
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		res, err := value.UnaryOp("-", v)
		if err != nil {
			return nil, false, err
		}
		m.push(res)

	case value.OpJump:
		f.ip = in.A

	case value.OpJumpIfFalse:
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		if !value.Truthy(v) {
			f.ip = in.A
		}

	case value.OpJumpIfTrue:
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		if value.Truthy(v) {
			f.ip = in.A
		}

	case value.OpCall:
		return nil, false, m.execCall(in.A)

	case value.OpReturn:
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		return v, true, nil

	case value.OpLoadAttr:
		name := f.code.Consts[in.A].(value.String).Value
		base, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		v, err := attrGet(base, name)
		if err != nil {
			return nil, false, err
		}
		m.push(v)

	case value.OpStoreAttr:
		name := f.code.Consts[in.A].(value.String).Value
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		base, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		if err := attrSet(base, name, v); err != nil {
			return nil, false, err
		}
		m.push(v)

	case value.OpLoadIndex:
		idx, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		base, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		v, err := indexGet(base, idx)
		if err != nil {
			return nil, false, err
		}
		m.push(v)

	case value.OpStoreIndex:
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		idx, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		base, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		if err := indexSet(base, idx, v); err != nil {
			return nil, false, err
		}
		m.push(v)

	case value.OpMakeFunction:
		return nil, false, m.execMakeFunction(f, in)

	case value.OpPrint:
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		fmt.Println(inspectForPrint(v))
		m.push(value.Null{})

	case value.OpMakeList:
		elems, err := m.popN(in.A)
		if err != nil {
			return nil, false, err
		}
		m.push(&value.List{Elements: elems})

	case value.OpMakeTuple:
		elems, err := m.popN(in.A)
		if err != nil {
			return nil, false, err
		}
		m.push(&value.Tuple{Elements: elems})

	case value.OpMakeSet:
		elems, err := m.popN(in.A)
		if err != nil {
			return nil, false, err
		}
		s := value.NewSet()
		for _, e := range elems {
			s.Add(e)
		}
		m.push(s)

	case value.OpMakeDict:
		lit := f.code.Consts[in.A].(value.DictLiteralConst)
		vals, err := m.popN(len(lit.Keys))
		if err != nil {
			return nil, false, err
		}
		d := value.NewDict()
		for i, k := range lit.Keys {
			d.Set(k, vals[i])
		}
		m.push(d)

	case value.OpMakeArray:
		size, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		n, _ := asIntVM(size)
		m.push(value.NewFixedArray(int(n)))

	case value.OpIsType:
		name := f.code.Consts[in.A].(value.String).Value
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		m.push(value.Bool{Value: matchesTypeName(name, v)})

	case value.OpCheckStepNonZero:
		v, err := m.pop()
		if err != nil {
			return nil, false, err
		}
		switch n := v.(type) {
		case value.Int:
			if n.Value == 0 {
				return nil, false, fmt.Errorf("for loop step must not be zero")
			}
		case value.Float:
			if n.Value == 0 {
				return nil, false, fmt.Errorf("for loop step must not be zero")
			}
		default:
			return nil, false, fmt.Errorf("for loop step must be a number")
		}

	case value.OpIncLocal:
		iv, ok := f.locals[in.A].(value.Int)
		if !ok {
			return nil, false, fmt.Errorf("internal: INC_LOCAL on non-int local")
		}
		f.locals[in.A] = value.Int{Value: iv.Value + 1}

	default:
		return nil, false, fmt.Errorf("internal: unimplemented opcode %d", in.Op)
	}
	return nil, false, nil
}

func (m *VM) popN(n int) ([]value.Value, error) {
	if len(m.stack) < n {
		return nil, fmt.Errorf("internal: vm stack underflow")
	}
	out := make([]value.Value, n)
	copy(out, m.stack[len(m.stack)-n:])
	m.stack = m.stack[:len(m.stack)-n]
	return out, nil
}

func opSymbol(op value.Opcode) string {
	switch op {
	case value.OpAdd:
		return "+"
	case value.OpSub:
		return "-"
	case value.OpMul:
		return "*"
	case value.OpDiv:
		return "/"
	case value.OpMod:
		return "%"
	case value.OpEq:
		return "=="
	case value.OpNeq:
		return "!="
	case value.OpLt:
		return "<"
	case value.OpLte:
		return "<="
	case value.OpGt:
		return ">"
	case value.OpGte:
		return ">="
	default:
		return "?"
	}
}

func asIntVM(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Int:
		return x.Value, true
	case value.Float:
		return int64(x.Value), true
	default:
		return 0, false
	}
}

func inspectForPrint(v value.Value) string {
	if s, ok := v.(value.String); ok {
		return s.Value
	}
	return v.Inspect()
}

// attrGet/attrSet and indexGet/indexSet mirror internal/evaluator's member
// and subscript semantics exactly (same Dict/Object/List/Tuple/FixedArray/
// String rules) so the two executors never disagree on what `a.b` or
// `a[i]` mean; kept as separate small copies rather than a shared helper
// to avoid a vm<->evaluator import cycle.

func attrGet(base value.Value, name string) (value.Value, error) {
	switch b := base.(type) {
	case *value.Dict:
		v, ok := b.Get(name)
		if !ok {
			return nil, fmt.Errorf("no such key %q", name)
		}
		return v, nil
	case *value.Object:
		v, ok := b.Get(name)
		if !ok {
			return nil, fmt.Errorf("no such attribute %q", name)
		}
		return v, nil
	case *value.PromiseStub:
		return vmPromiseMethod(b, name)
	default:
		return nil, fmt.Errorf("%s has no attribute %q", base.Type(), name)
	}
}

// vmPromiseMethod mirrors internal/evaluator's promiseMethod, binding
// promise.then/promise.catch to a NativeFn closure over the receiver.
func vmPromiseMethod(p *value.PromiseStub, name string) (value.Value, error) {
	switch name {
	case "then":
		return &value.NativeFn{Name: "then", Fn: func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("promise.then expects 1 argument, got %d", len(args))
			}
			return builtins.PromiseThen(p, args[0])
		}}, nil
	case "catch":
		return &value.NativeFn{Name: "catch", Fn: func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("promise.catch expects 1 argument, got %d", len(args))
			}
			return builtins.PromiseCatch(p, args[0])
		}}, nil
	default:
		return nil, fmt.Errorf("Promise has no attribute %q", name)
	}
}

func attrSet(base value.Value, name string, v value.Value) error {
	switch b := base.(type) {
	case *value.Dict:
		b.Set(name, v)
		return nil
	case *value.Object:
		b.Set(name, v)
		return nil
	default:
		return fmt.Errorf("%s has no assignable attribute %q", base.Type(), name)
	}
}

func indexGet(base, idx value.Value) (value.Value, error) {
	switch b := base.(type) {
	case *value.List:
		i, ok := asIntVM(idx)
		if !ok {
			return nil, fmt.Errorf("list index must be an int")
		}
		norm, ok := value.NormalizeIndex(int(i), len(b.Elements))
		if !ok {
			return nil, fmt.Errorf("list index out of range")
		}
		return b.Elements[norm], nil
	case *value.Tuple:
		i, ok := asIntVM(idx)
		if !ok {
			return nil, fmt.Errorf("tuple index must be an int")
		}
		norm, ok := value.NormalizeIndex(int(i), len(b.Elements))
		if !ok {
			return nil, fmt.Errorf("tuple index out of range")
		}
		return b.Elements[norm], nil
	case *value.FixedArray:
		i, ok := asIntVM(idx)
		if !ok {
			return nil, fmt.Errorf("array index must be an int")
		}
		return b.Get(int(i))
	case *value.Dict:
		key, ok := idx.(value.String)
		if !ok {
			return nil, fmt.Errorf("dict key must be a string")
		}
		v, ok := b.Get(key.Value)
		if !ok {
			return nil, fmt.Errorf("no such key %q", key.Value)
		}
		return v, nil
	case value.String:
		i, ok := asIntVM(idx)
		if !ok {
			return nil, fmt.Errorf("string index must be an int")
		}
		runes := []rune(b.Value)
		norm, ok := value.NormalizeIndex(int(i), len(runes))
		if !ok {
			return nil, fmt.Errorf("string index out of range")
		}
		return value.String{Value: string(runes[norm])}, nil
	default:
		return nil, fmt.Errorf("%s is not subscriptable", base.Type())
	}
}

func indexSet(base, idx, v value.Value) error {
	switch b := base.(type) {
	case *value.List:
		i, ok := asIntVM(idx)
		if !ok {
			return fmt.Errorf("list index must be an int")
		}
		norm, ok := value.NormalizeIndex(int(i), len(b.Elements))
		if !ok {
			return fmt.Errorf("list index out of range")
		}
		b.Elements[norm] = v
		return nil
	case *value.FixedArray:
		i, ok := asIntVM(idx)
		if !ok {
			return fmt.Errorf("array index must be an int")
		}
		return b.Set(int(i), v)
	case *value.Dict:
		key, ok := idx.(value.String)
		if !ok {
			return fmt.Errorf("dict key must be a string")
		}
		b.Set(key.Value, v)
		return nil
	default:
		return fmt.Errorf("%s does not support index assignment", base.Type())
	}
}

// matchesTypeName mirrors internal/evaluator's pattern-matching type-name
// rules for the TypePattern bytecode lowering (OpIsType).
func matchesTypeName(name string, v value.Value) bool {
	switch strings.ToLower(name) {
	case "int":
		_, ok := v.(value.Int)
		return ok
	case "float":
		_, ok := v.(value.Float)
		return ok
	case "number":
		switch v.(type) {
		case value.Int, value.Float:
			return true
		}
		return false
	case "bool", "boolean":
		_, ok := v.(value.Bool)
		return ok
	case "string", "str":
		_, ok := v.(value.String)
		return ok
	case "null":
		_, ok := v.(value.Null)
		return ok
	case "list":
		_, ok := v.(*value.List)
		return ok
	case "tuple":
		_, ok := v.(*value.Tuple)
		return ok
	case "dict":
		_, ok := v.(*value.Dict)
		return ok
	case "set":
		_, ok := v.(*value.Set)
		return ok
	case "fn", "function":
		switch v.(type) {
		case *value.FunctionValue, *value.NativeFn:
			return true
		}
		return false
	case "object":
		_, ok := v.(*value.Object)
		return ok
	default:
		return false
	}
}

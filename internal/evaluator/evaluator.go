package evaluator

import (
	"fmt"

	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/builtins"
	"github.com/Gabrial-8467/falcon/internal/env"
	"github.com/Gabrial-8467/falcon/internal/typesystem"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// CodeCall is wired at startup (by the runner) to the bytecode VM's call
// entrypoint, so the tree interpreter can invoke a CodeBacked function
// value that flows into AST-backed code (e.g. passed as a callback
// argument). Left nil, only AST-backed functions and natives are callable.
var CodeCall func(fn *value.FunctionValue, args []value.Value) (value.Value, error)

// Run executes a full program's top-level statements in globals. A
// top-level return ends the program and its value is the result, as it is
// on the VM; otherwise the result is null. A top-level throw that nothing
// catches is surfaced as an error.
func Run(program []ast.Stmt, globals *env.Environment) (value.Value, error) {
	var last value.Value = value.Null{}
	for _, stmt := range program {
		v, err := evalStmt(stmt, globals)
		if err != nil {
			return nil, err
		}
		if t, ok := isThrow(v); ok {
			return nil, fmt.Errorf("uncaught exception: %s", t.Value.Inspect())
		}
		if r, ok := isReturn(v); ok {
			return r.Value, nil
		}
		if isBreak(v) {
			return nil, fmt.Errorf("break used outside a loop")
		}
		last = v
	}
	return last, nil
}

func evalStmts(stmts []ast.Stmt, scope *env.Environment) (value.Value, error) {
	result := value.Value(value.Null{})
	for _, stmt := range stmts {
		v, err := evalStmt(stmt, scope)
		if err != nil {
			return nil, err
		}
		result = v
		if isSignal(v) {
			return v, nil
		}
	}
	return result, nil
}

func evalStmt(stmt ast.Stmt, scope *env.Environment) (value.Value, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		v, err := evalExpr(s.Expr, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(v) {
			return v, nil
		}
		return value.Null{}, nil

	case *ast.LetStmt:
		v := value.Value(value.Null{})
		if s.Init != nil {
			var err error
			v, err = evalExpr(s.Init, scope)
			if err != nil {
				return nil, err
			}
			if isSignal(v) {
				return v, nil
			}
		}
		target := scope
		if s.IsVar {
			target = scope.FunctionScope()
		}
		if err := target.Define(s.Name, v, s.IsConst, s.Type); err != nil {
			return nil, err
		}
		return value.Null{}, nil

	case *ast.BlockStmt:
		child := env.NewChild(scope, false)
		return evalStmts(s.Body, child)

	case *ast.IfStmt:
		cond, err := evalExpr(s.Cond, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(cond) {
			return cond, nil
		}
		if value.Truthy(cond) {
			return evalStmt(s.Then, scope)
		}
		if s.Else != nil {
			return evalStmt(s.Else, scope)
		}
		return value.Null{}, nil

	case *ast.WhileStmt:
		for {
			cond, err := evalExpr(s.Cond, scope)
			if err != nil {
				return nil, err
			}
			if isSignal(cond) {
				return cond, nil
			}
			if !value.Truthy(cond) {
				return value.Null{}, nil
			}
			v, err := evalStmt(s.Body, scope)
			if err != nil {
				return nil, err
			}
			if isBreak(v) {
				return value.Null{}, nil
			}
			if _, ok := isReturn(v); ok {
				return v, nil
			}
			if _, ok := isThrow(v); ok {
				return v, nil
			}
		}

	case *ast.LoopStmt:
		for {
			v, err := evalStmt(s.Body, scope)
			if err != nil {
				return nil, err
			}
			if isBreak(v) {
				return value.Null{}, nil
			}
			if _, ok := isReturn(v); ok {
				return v, nil
			}
			if _, ok := isThrow(v); ok {
				return v, nil
			}
		}

	case *ast.ForStmt:
		startV, err := evalExpr(s.Start, scope)
		if err != nil {
			return nil, err
		}
		endV, err := evalExpr(s.End, scope)
		if err != nil {
			return nil, err
		}
		stepV := value.Value(value.Int{Value: 1})
		if s.Step != nil {
			stepV, err = evalExpr(s.Step, scope)
			if err != nil {
				return nil, err
			}
		}
		start, _ := asInt(startV)
		end, _ := asInt(endV)
		step, _ := asInt(stepV)
		if step == 0 {
			return nil, fmt.Errorf("for loop step must not be zero")
		}
		for i := start; (step > 0 && i <= end) || (step < 0 && i >= end); i += step {
			child := env.NewChild(scope, false)
			if err := child.Define(s.Name, value.Int{Value: i}, false, ""); err != nil {
				return nil, err
			}
			v, err := evalStmt(s.Body, child)
			if err != nil {
				return nil, err
			}
			if isBreak(v) {
				return value.Null{}, nil
			}
			if _, ok := isReturn(v); ok {
				return v, nil
			}
			if _, ok := isThrow(v); ok {
				return v, nil
			}
		}
		return value.Null{}, nil

	case *ast.BreakStmt:
		return breakSignal{}, nil

	case *ast.ReturnStmt:
		v := value.Value(value.Null{})
		if s.Value != nil {
			var err error
			v, err = evalExpr(s.Value, scope)
			if err != nil {
				return nil, err
			}
			if isSignal(v) {
				return v, nil
			}
		}
		return returnSignal{Value: v}, nil

	case *ast.ThrowStmt:
		v, err := evalExpr(s.Value, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(v) {
			return v, nil
		}
		return throwSignal{Value: v}, nil

	case *ast.TryCatchStmt:
		v, err := evalStmt(s.Try, scope)
		if err != nil {
			return nil, err
		}
		thrown, ok := isThrow(v)
		if !ok {
			return v, nil
		}
		child := env.NewChild(scope, false)
		if err := child.Define(s.CatchName, thrown.Value, false, ""); err != nil {
			return nil, err
		}
		return evalStmt(s.Catch, child)

	case *ast.FunctionStmt:
		fn := &value.FunctionValue{Name: s.Fn.Name, AstNode: s.Fn, ClosureEnv: scope}
		if err := scope.Define(s.Fn.Name, fn, false, ""); err != nil {
			return nil, err
		}
		return value.Null{}, nil

	case *ast.MatchStmt:
		subj, err := evalExpr(s.Subject, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(subj) {
			return subj, nil
		}
		for _, arm := range s.Arms {
			child := env.NewChild(scope, false)
			if !matchPattern(arm.Pattern, subj, child) {
				continue
			}
			if arm.Guard != nil {
				g, err := evalExpr(arm.Guard, child)
				if err != nil {
					return nil, err
				}
				if isSignal(g) {
					return g, nil
				}
				if !value.Truthy(g) {
					continue
				}
			}
			return evalStmt(arm.Body, child)
		}
		return value.Null{}, nil

	default:
		return nil, fmt.Errorf("evaluator: unhandled statement %T", stmt)
	}
}

func asInt(v value.Value) (int64, bool) {
	switch x := v.(type) {
	case value.Int:
		return x.Value, true
	case value.Float:
		return int64(x.Value), true
	default:
		return 0, false
	}
}

func literalValue(v any) value.Value {
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

func evalExpr(expr ast.Expr, scope *env.Environment) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e.Value), nil

	case *ast.Variable:
		v, ok := scope.Get(e.Name)
		if !ok {
			return nil, &env.Error{Msg: fmt.Sprintf("undefined variable %q", e.Name)}
		}
		return v, nil

	case *ast.ListLit:
		elems, sig, err := evalExprList(e.Elements, scope)
		if err != nil || sig != nil {
			return sig, err
		}
		return &value.List{Elements: elems}, nil

	case *ast.TupleLit:
		elems, sig, err := evalExprList(e.Elements, scope)
		if err != nil || sig != nil {
			return sig, err
		}
		return &value.Tuple{Elements: elems}, nil

	case *ast.SetLit:
		elems, sig, err := evalExprList(e.Elements, scope)
		if err != nil || sig != nil {
			return sig, err
		}
		s := value.NewSet()
		for _, el := range elems {
			s.Add(el)
		}
		return s, nil

	case *ast.ArrayLit:
		sizeV, err := evalExpr(e.Size, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(sizeV) {
			return sizeV, nil
		}
		n, _ := asInt(sizeV)
		return value.NewFixedArray(int(n)), nil

	case *ast.DictLit:
		d := value.NewDict()
		for _, entry := range e.Entries {
			v, err := evalExpr(entry.Value, scope)
			if err != nil {
				return nil, err
			}
			if isSignal(v) {
				return v, nil
			}
			d.Set(entry.Key, v)
		}
		return d, nil

	case *ast.FunctionExpr:
		return &value.FunctionValue{Name: e.Name, AstNode: e, ClosureEnv: scope}, nil

	case *ast.Grouping:
		return evalExpr(e.Expression, scope)

	case *ast.Unary:
		v, err := evalExpr(e.Operand, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(v) {
			return v, nil
		}
		return value.UnaryOp(e.Op, v)

	case *ast.Binary:
		l, err := evalExpr(e.Left, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(l) {
			return l, nil
		}
		if e.Op == "&&" {
			if !value.Truthy(l) {
				return l, nil
			}
			return evalExpr(e.Right, scope)
		}
		if e.Op == "||" {
			if value.Truthy(l) {
				return l, nil
			}
			return evalExpr(e.Right, scope)
		}
		r, err := evalExpr(e.Right, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(r) {
			return r, nil
		}
		return value.BinaryOp(e.Op, l, r)

	case *ast.Call:
		callee, err := evalExpr(e.Callee, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(callee) {
			return callee, nil
		}
		args, sig, err := evalExprList(e.Args, scope)
		if err != nil || sig != nil {
			return sig, err
		}
		return callValue(callee, args)

	case *ast.Member:
		base, err := evalExpr(e.Base, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(base) {
			return base, nil
		}
		return getMember(base, e.Name)

	case *ast.Subscript:
		base, err := evalExpr(e.Base, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(base) {
			return base, nil
		}
		idx, err := evalExpr(e.Index, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(idx) {
			return idx, nil
		}
		return getIndex(base, idx)

	case *ast.Assign:
		v, err := evalExpr(e.Value, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(v) {
			return v, nil
		}
		if err := assignTo(e.Target, v, scope); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.MatchExpr:
		subj, err := evalExpr(e.Subject, scope)
		if err != nil {
			return nil, err
		}
		if isSignal(subj) {
			return subj, nil
		}
		for _, arm := range e.Arms {
			child := env.NewChild(scope, false)
			if !matchPattern(arm.Pattern, subj, child) {
				continue
			}
			if arm.Guard != nil {
				g, err := evalExpr(arm.Guard, child)
				if err != nil {
					return nil, err
				}
				if isSignal(g) {
					return g, nil
				}
				if !value.Truthy(g) {
					continue
				}
			}
			return evalExpr(arm.Body, child)
		}
		return value.Null{}, nil

	default:
		return nil, fmt.Errorf("evaluator: unhandled expression %T", expr)
	}
}

// evalExprList evaluates exprs in order, returning (elements, nil, nil) on
// success or (nil, signal, nil) if one yields a control-flow signal.
func evalExprList(exprs []ast.Expr, scope *env.Environment) ([]value.Value, value.Value, error) {
	out := make([]value.Value, 0, len(exprs))
	for _, e := range exprs {
		v, err := evalExpr(e, scope)
		if err != nil {
			return nil, nil, err
		}
		if isSignal(v) {
			return nil, v, nil
		}
		out = append(out, v)
	}
	return out, nil, nil
}

func callValue(callee value.Value, args []value.Value) (value.Value, error) {
	switch fn := callee.(type) {
	case *value.NativeFn:
		return fn.Fn(args)
	case *value.FunctionValue:
		if fn.IsAstBacked() {
			return callFunction(fn, args)
		}
		if CodeCall == nil {
			return nil, fmt.Errorf("internal: no bytecode executor wired for %s", fn.Inspect())
		}
		return CodeCall(fn, args)
	default:
		return nil, fmt.Errorf("value of type %s is not callable", callee.Type())
	}
}

// CallFunction invokes an AST-backed function. It is exported so the VM's
// CALL handler can fall back to it for closures it cannot execute itself.
// A throw the function does not catch comes back as an error.
func CallFunction(fn *value.FunctionValue, args []value.Value) (value.Value, error) {
	v, err := callFunction(fn, args)
	if err != nil {
		return nil, err
	}
	if t, ok := isThrow(v); ok {
		return nil, fmt.Errorf("uncaught exception: %s", t.Value.Inspect())
	}
	return v, nil
}

// callFunction leaves an uncaught throw as a throwSignal for callers inside
// the tree interpreter, so an enclosing try/catch can still catch it.
func callFunction(fn *value.FunctionValue, args []value.Value) (value.Value, error) {
	closureEnv, ok := fn.ClosureEnv.(*env.Environment)
	if !ok {
		return nil, fmt.Errorf("internal: unexpected closure environment type for %s", fn.Inspect())
	}
	callScope := env.NewChild(closureEnv, true)
	for i, param := range fn.AstNode.Params {
		var v value.Value = value.Null{}
		if i < len(args) {
			v = args[i]
		}
		if err := callScope.Define(param.Name, v, false, param.Type); err != nil {
			return nil, err
		}
	}
	result, err := evalStmts(fn.AstNode.Body.Body, callScope)
	if err != nil {
		return nil, err
	}
	if r, ok := result.(returnSignal); ok {
		return checkReturnType(fn, r.Value)
	}
	if _, ok := isThrow(result); ok {
		return result, nil
	}
	return checkReturnType(fn, value.Null{})
}

func checkReturnType(fn *value.FunctionValue, v value.Value) (value.Value, error) {
	if fn.AstNode.ReturnType == "" {
		return v, nil
	}
	ann := typesystem.Parse(fn.AstNode.ReturnType)
	if !typesystem.Check(ann, v) {
		return nil, &typesystem.Error{Context: fmt.Sprintf("return value of %s", fn.Name), Want: ann, Got: v}
	}
	return v, nil
}

func getMember(base value.Value, name string) (value.Value, error) {
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
		return promiseMethod(b, name)
	default:
		return nil, fmt.Errorf("%s has no attribute %q", base.Type(), name)
	}
}

// promiseMethod binds promise.then/promise.catch to a NativeFn closure
// over the receiver, the same shape callValue already knows how to call.
func promiseMethod(p *value.PromiseStub, name string) (value.Value, error) {
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

func getIndex(base, idx value.Value) (value.Value, error) {
	switch b := base.(type) {
	case *value.List:
		i, ok := asInt(idx)
		if !ok {
			return nil, fmt.Errorf("list index must be an int")
		}
		norm, ok := value.NormalizeIndex(int(i), len(b.Elements))
		if !ok {
			return nil, fmt.Errorf("list index out of range")
		}
		return b.Elements[norm], nil
	case *value.Tuple:
		i, ok := asInt(idx)
		if !ok {
			return nil, fmt.Errorf("tuple index must be an int")
		}
		norm, ok := value.NormalizeIndex(int(i), len(b.Elements))
		if !ok {
			return nil, fmt.Errorf("tuple index out of range")
		}
		return b.Elements[norm], nil
	case *value.FixedArray:
		i, ok := asInt(idx)
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
		i, ok := asInt(idx)
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

func assignTo(target ast.Expr, v value.Value, scope *env.Environment) error {
	switch t := target.(type) {
	case *ast.Variable:
		return scope.Assign(t.Name, v)
	case *ast.Member:
		base, err := evalExpr(t.Base, scope)
		if err != nil {
			return err
		}
		switch b := base.(type) {
		case *value.Dict:
			b.Set(t.Name, v)
			return nil
		case *value.Object:
			b.Set(t.Name, v)
			return nil
		default:
			return fmt.Errorf("%s has no assignable attribute %q", base.Type(), t.Name)
		}
	case *ast.Subscript:
		base, err := evalExpr(t.Base, scope)
		if err != nil {
			return err
		}
		idx, err := evalExpr(t.Index, scope)
		if err != nil {
			return err
		}
		switch b := base.(type) {
		case *value.List:
			i, ok := asInt(idx)
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
			i, ok := asInt(idx)
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
	default:
		return fmt.Errorf("invalid assignment target %T", target)
	}
}

package builtins

import (
	"fmt"

	"github.com/Gabrial-8467/falcon/internal/value"
)

// registerPromise installs the synchronous Promise placeholder from
// original_source/builtins.py: `then`/`catch` run immediately if already
// settled, otherwise queue for in-order invocation from resolve/reject.
// Promise.resolve/Promise.reject are exposed as the standalone
// PromiseResolve/PromiseReject builtins rather than static methods on the
// Promise constructor itself: Falcon values are either callable or
// attribute-bearing, never both, so a constructor that is also a
// namespace has no home in the value model without inventing one.
func registerPromise(def func(string, value.Value) error) error {
	if err := def("Promise", native("Promise", func(args []value.Value) (value.Value, error) {
		p := value.NewPromise()
		if len(args) == 0 {
			return p, nil
		}
		executor := args[0]
		resolve := native("resolve", func(a []value.Value) (value.Value, error) {
			settlePromise(p, a, true)
			return value.Null{}, nil
		})
		reject := native("reject", func(a []value.Value) (value.Value, error) {
			settlePromise(p, a, false)
			return value.Null{}, nil
		})
		if _, err := callAny(executor, []value.Value{resolve, reject}); err != nil {
			p.Rejected = true
			p.Err = value.String{Value: err.Error()}
		}
		return p, nil
	})); err != nil {
		return err
	}
	if err := def("PromiseResolve", native("PromiseResolve", func(args []value.Value) (value.Value, error) {
		p := value.NewPromise()
		p.Resolved = true
		if len(args) > 0 {
			p.Value = args[0]
		} else {
			p.Value = value.Null{}
		}
		return p, nil
	})); err != nil {
		return err
	}
	return def("PromiseReject", native("PromiseReject", func(args []value.Value) (value.Value, error) {
		p := value.NewPromise()
		p.Rejected = true
		if len(args) > 0 {
			p.Err = args[0]
		} else {
			p.Err = value.Null{}
		}
		return p, nil
	}))
}

func settlePromise(p *value.PromiseStub, args []value.Value, resolved bool) {
	if p.Resolved || p.Rejected {
		return
	}
	v := value.Value(value.Null{})
	if len(args) > 0 {
		v = args[0]
	}
	if resolved {
		p.Resolved = true
		p.Value = v
		for _, fn := range p.ThenQueue {
			_, _ = callAny(fn, []value.Value{v})
		}
		for _, fn := range p.ThenNative {
			_, _ = fn.Fn([]value.Value{v})
		}
	} else {
		p.Rejected = true
		p.Err = v
		for _, fn := range p.CatchQueue {
			_, _ = callAny(fn, []value.Value{v})
		}
		for _, fn := range p.CatchNative {
			_, _ = fn.Fn([]value.Value{v})
		}
	}
}

// callAny invokes either kind of callable value the executors hand to
// builtins as a callback argument.
func callAny(callee value.Value, args []value.Value) (value.Value, error) {
	switch fn := callee.(type) {
	case *value.NativeFn:
		return fn.Fn(args)
	case *value.FunctionValue:
		if fn.IsAstBacked() {
			if ASTCall == nil {
				return nil, fmt.Errorf("internal: no tree interpreter wired for %s", fn.Inspect())
			}
			return ASTCall(fn, args)
		}
		if CodeCall == nil {
			return nil, fmt.Errorf("internal: no bytecode executor wired for %s", fn.Inspect())
		}
		return CodeCall(fn, args)
	default:
		return nil, fmt.Errorf("value of type %s is not callable", callee.Type())
	}
}

// ASTCall/CodeCall are wired by the runner, mirroring the evaluator/vm
// pair, so builtins that accept callback arguments (Promise's executor,
// .then/.catch) can invoke either kind of function value.
var (
	ASTCall  func(fn *value.FunctionValue, args []value.Value) (value.Value, error)
	CodeCall func(fn *value.FunctionValue, args []value.Value) (value.Value, error)
)

// PromiseThen/PromiseCatch implement promise.then(fn)/promise.catch(fn)
// member-call dispatch; internal/evaluator and internal/vm both call
// these from their attribute-access paths rather than duplicating the
// settle/queue logic in each executor.
func PromiseThen(p *value.PromiseStub, fn value.Value) (value.Value, error) {
	if p.Resolved {
		_, _ = callAny(fn, []value.Value{p.Value})
		return p, nil
	}
	if p.Rejected {
		return p, nil
	}
	switch f := fn.(type) {
	case *value.FunctionValue:
		p.ThenQueue = append(p.ThenQueue, f)
	case *value.NativeFn:
		p.ThenNative = append(p.ThenNative, f)
	default:
		return nil, fmt.Errorf("promise.then argument must be a function")
	}
	return p, nil
}

func PromiseCatch(p *value.PromiseStub, fn value.Value) (value.Value, error) {
	if p.Rejected {
		_, _ = callAny(fn, []value.Value{p.Err})
		return p, nil
	}
	if p.Resolved {
		return p, nil
	}
	switch f := fn.(type) {
	case *value.FunctionValue:
		p.CatchQueue = append(p.CatchQueue, f)
	case *value.NativeFn:
		p.CatchNative = append(p.CatchNative, f)
	default:
		return nil, fmt.Errorf("promise.catch argument must be a function")
	}
	return p, nil
}

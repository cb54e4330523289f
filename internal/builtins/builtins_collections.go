package builtins

import (
	"fmt"
	"os"

	"github.com/Gabrial-8467/falcon/internal/value"
)

// registerCollections installs the functional-constructor form of each
// collection literal alongside builtins.py's BUILTINS table:
// list(...)/tuple(...)/set(...)/array(n) all take plain positional args.
// dict(...) takes alternating key/value pairs rather than the original's
// **kwargs, since Falcon calls have no named-argument syntax.
func registerCollections(def func(string, value.Value) error) error {
	if err := def("list", native("list", func(args []value.Value) (value.Value, error) {
		elems := make([]value.Value, len(args))
		copy(elems, args)
		return &value.List{Elements: elems}, nil
	})); err != nil {
		return err
	}
	if err := def("tuple", native("tuple", func(args []value.Value) (value.Value, error) {
		elems := make([]value.Value, len(args))
		copy(elems, args)
		return &value.Tuple{Elements: elems}, nil
	})); err != nil {
		return err
	}
	if err := def("set", native("set", func(args []value.Value) (value.Value, error) {
		s := value.NewSet()
		for _, a := range args {
			s.Add(a)
		}
		return s, nil
	})); err != nil {
		return err
	}
	if err := def("array", native("array", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("array expects 1 argument, got %d", len(args))
		}
		n, ok := args[0].(value.Int)
		if !ok {
			return nil, fmt.Errorf("array size must be an int")
		}
		return value.NewFixedArray(int(n.Value)), nil
	})); err != nil {
		return err
	}
	return def("dict", native("dict", func(args []value.Value) (value.Value, error) {
		if len(args)%2 != 0 {
			return nil, fmt.Errorf("dict expects an even number of key/value arguments, got %d", len(args))
		}
		d := value.NewDict()
		for i := 0; i < len(args); i += 2 {
			key, ok := args[i].(value.String)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings")
			}
			d.Set(key.Value, args[i+1])
		}
		return d, nil
	}))
}

func builtinLen(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("len expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case value.Null:
		return nil, fmt.Errorf("len(null) is not supported")
	case value.String:
		return value.Int{Value: int64(len([]rune(v.Value)))}, nil
	case *value.List:
		return value.Int{Value: int64(len(v.Elements))}, nil
	case *value.Tuple:
		return value.Int{Value: int64(len(v.Elements))}, nil
	case *value.Dict:
		return value.Int{Value: int64(v.Len())}, nil
	case *value.Set:
		return value.Int{Value: int64(v.Len())}, nil
	case *value.FixedArray:
		return value.Int{Value: int64(len(v.Slots))}, nil
	default:
		return nil, fmt.Errorf("object of type %s has no length", args[0].Type())
	}
}

func builtinRange(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, fmt.Errorf("range expects 1 to 3 arguments, got %d", len(args))
	}
	asInt := func(v value.Value) (int64, bool) {
		switch x := v.(type) {
		case value.Int:
			return x.Value, true
		case value.Float:
			return int64(x.Value), true
		default:
			return 0, false
		}
	}
	start, stop, step := int64(0), int64(0), int64(1)
	switch len(args) {
	case 1:
		n, ok := asInt(args[0])
		if !ok {
			return nil, fmt.Errorf("range argument must be a number")
		}
		stop = n
	case 2, 3:
		s, ok := asInt(args[0])
		if !ok {
			return nil, fmt.Errorf("range argument must be a number")
		}
		e, ok := asInt(args[1])
		if !ok {
			return nil, fmt.Errorf("range argument must be a number")
		}
		start, stop = s, e
		if len(args) == 3 {
			st, ok := asInt(args[2])
			if !ok {
				return nil, fmt.Errorf("range argument must be a number")
			}
			step = st
		}
	}
	if step == 0 {
		return nil, fmt.Errorf("range() step argument must not be zero")
	}
	var elems []value.Value
	if step > 0 {
		for i := start; i < stop; i += step {
			elems = append(elems, value.Int{Value: i})
		}
	} else {
		for i := start; i > stop; i += step {
			elems = append(elems, value.Int{Value: i})
		}
	}
	if elems == nil {
		elems = []value.Value{}
	}
	return &value.List{Elements: elems}, nil
}

func builtinTypeOf(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("typeOf expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case value.Null:
		return value.String{Value: "null"}, nil
	case value.Bool:
		return value.String{Value: "boolean"}, nil
	case value.Int, value.Float:
		return value.String{Value: "number"}, nil
	case value.String:
		return value.String{Value: "string"}, nil
	case *value.List, *value.Tuple, *value.FixedArray:
		return value.String{Value: "array"}, nil
	case *value.Set:
		return value.String{Value: "set"}, nil
	case *value.Dict, *value.Object:
		return value.String{Value: "object"}, nil
	case *value.FunctionValue, *value.NativeFn:
		return value.String{Value: "function"}, nil
	default:
		_ = v
		return value.String{Value: "object"}, nil
	}
}

func builtinAssert(args []value.Value) (value.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("assert expects 1 or 2 arguments, got %d", len(args))
	}
	if value.Truthy(args[0]) {
		return value.Null{}, nil
	}
	msg := "Assertion failed"
	if len(args) == 2 {
		msg = coerceToString(args[1])
	}
	return nil, fmt.Errorf("%s", msg)
}

func builtinExit(args []value.Value) (value.Value, error) {
	code := int64(0)
	if len(args) == 1 {
		if n, ok := args[0].(value.Int); ok {
			code = n.Value
		}
	}
	os.Exit(int(code))
	return value.Null{}, nil
}

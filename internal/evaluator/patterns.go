package evaluator

import (
	"strings"

	"github.com/Gabrial-8467/falcon/internal/ast"
	"github.com/Gabrial-8467/falcon/internal/env"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// matchPattern tests subject against pat, binding any VariablePattern names
// into scope as a side effect of a successful match. Called with a fresh
// child scope per arm so a failed attempt never leaks bindings into the
// enclosing scope.
func matchPattern(pat ast.Pattern, subject value.Value, scope *env.Environment) bool {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true

	case *ast.VariablePattern:
		_ = scope.Define(p.Name, subject, false, "")
		return true

	case *ast.LiteralPattern:
		return value.DeepEqual(literalValue(p.Value), subject)

	case *ast.TypePattern:
		return matchesTypeName(p.TypeName, subject)

	case *ast.ListPattern:
		l, ok := subject.(*value.List)
		if !ok || len(l.Elements) != len(p.Elements) {
			return false
		}
		for i, sub := range p.Elements {
			if !matchPattern(sub, l.Elements[i], scope) {
				return false
			}
		}
		return true

	case *ast.TuplePattern:
		t, ok := subject.(*value.Tuple)
		if !ok || len(t.Elements) != len(p.Elements) {
			return false
		}
		for i, sub := range p.Elements {
			if !matchPattern(sub, t.Elements[i], scope) {
				return false
			}
		}
		return true

	case *ast.DictPattern:
		d, ok := subject.(*value.Dict)
		if !ok {
			return false
		}
		for _, entry := range p.Entries {
			v, present := d.Get(entry.Key)
			if !present || !matchPattern(entry.Pattern, v, scope) {
				return false
			}
		}
		return true

	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			if matchPattern(alt, subject, scope) {
				return true
			}
		}
		return false

	default:
		return false
	}
}

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

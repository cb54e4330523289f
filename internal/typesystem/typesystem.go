// Package typesystem implements Falcon's gradual type annotations: parsing
// a `: T` annotation's textual form and checking a runtime value.Value
// against it.
package typesystem

import (
	"fmt"
	"strings"

	"github.com/Gabrial-8467/falcon/internal/value"
)

// Name is a parsed gradual type annotation: a scalar name, a generic shape
// (list[T], dict[K,V], tuple[T,...], set[T]), a function type, or a
// top-level union of any of those.
type Name struct {
	Union []component
}

type component struct {
	Base string // "int" | "float" | "number" | "bool" | "string" | "null" | "any" | "object" | "list" | "set" | "tuple" | "dict" | "fn" | "function" | <unknown type-pattern identifier>
	Args []Name // generic parameters, e.g. list[T] -> Args[0] = T
}

// Parse parses a raw annotation string such as "int", "list[int]",
// "int | string", or "fn" into a Name. Unrecognized text is kept verbatim as
// a single scalar component so it round-trips for error messages; it simply
// never matches at Check time.
func Parse(raw string) Name {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Name{Union: []component{{Base: "any"}}}
	}
	parts := splitTopLevel(raw, '|')
	var comps []component
	for _, p := range parts {
		comps = append(comps, parseComponent(strings.TrimSpace(p)))
	}
	return Name{Union: comps}
}

func parseComponent(s string) component {
	lb := strings.IndexByte(s, '[')
	if lb == -1 || !strings.HasSuffix(s, "]") {
		return component{Base: s}
	}
	base := strings.TrimSpace(s[:lb])
	inner := s[lb+1 : len(s)-1]
	argStrs := splitTopLevel(inner, ',')
	var args []Name
	for _, a := range argStrs {
		args = append(args, Parse(strings.TrimSpace(a)))
	}
	return component{Base: base, Args: args}
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside
// brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		default:
			if s[i] == sep && depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

func (n Name) String() string {
	strs := make([]string, len(n.Union))
	for i, c := range n.Union {
		strs[i] = c.string()
	}
	return strings.Join(strs, " | ")
}

func (c component) string() string {
	if len(c.Args) == 0 {
		return c.Base
	}
	strs := make([]string, len(c.Args))
	for i, a := range c.Args {
		strs[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", c.Base, strings.Join(strs, ","))
}

// Check reports whether v satisfies the annotation n.
func Check(n Name, v value.Value) bool {
	for _, c := range n.Union {
		if checkComponent(c, v) {
			return true
		}
	}
	return false
}

func checkComponent(c component, v value.Value) bool {
	switch strings.ToLower(c.Base) {
	case "any", "object":
		return true
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
		l, ok := v.(*value.List)
		if !ok {
			return false
		}
		if len(c.Args) == 0 {
			return true
		}
		for _, el := range l.Elements {
			if !Check(c.Args[0], el) {
				return false
			}
		}
		return true
	case "set":
		s, ok := v.(*value.Set)
		if !ok {
			return false
		}
		if len(c.Args) == 0 {
			return true
		}
		for _, el := range s.Elements() {
			if !Check(c.Args[0], el) {
				return false
			}
		}
		return true
	case "tuple":
		t, ok := v.(*value.Tuple)
		if !ok {
			return false
		}
		if len(c.Args) == 0 {
			return true
		}
		if len(c.Args) != len(t.Elements) {
			return false
		}
		for i, a := range c.Args {
			if !Check(a, t.Elements[i]) {
				return false
			}
		}
		return true
	case "dict":
		d, ok := v.(*value.Dict)
		if !ok {
			return false
		}
		if len(c.Args) < 2 {
			return true
		}
		for _, k := range d.Keys() {
			if !Check(c.Args[0], value.String{Value: k}) {
				return false
			}
			val, _ := d.Get(k)
			if !Check(c.Args[1], val) {
				return false
			}
		}
		return true
	case "fn", "function":
		switch v.(type) {
		case *value.FunctionValue, *value.NativeFn:
			return true
		}
		return false
	default:
		return false
	}
}

// Error is a Type error: a declared annotation rejected by an
// initializer, assignment, argument, or return value.
type Error struct {
	Context string // "initializer of x" / "argument 2 of f" / etc.
	Want    Name
	Got     value.Value
	Line    int
	Col     int
}

func (e *Error) Error() string {
	return fmt.Sprintf("type error at %d:%d: %s expected %s, got %s",
		e.Line, e.Col, e.Context, e.Want.String(), describe(e.Got))
}

func describe(v value.Value) string {
	if v == nil {
		return "<nothing>"
	}
	return string(v.Type())
}

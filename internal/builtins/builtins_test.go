package builtins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Gabrial-8467/falcon/internal/config"
	"github.com/Gabrial-8467/falcon/internal/env"
	"github.com/Gabrial-8467/falcon/internal/value"
)

func newGlobals(t *testing.T, cfg *config.ExecutorConfig) *env.Environment {
	t.Helper()
	g := env.New()
	if err := Register(g, cfg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return g
}

func call(t *testing.T, g *env.Environment, name string, args ...value.Value) value.Value {
	t.Helper()
	v, ok := g.Get(name)
	if !ok {
		t.Fatalf("builtin %q not registered", name)
	}
	fn, ok := v.(*value.NativeFn)
	if !ok {
		t.Fatalf("%q is %T, want *value.NativeFn", name, v)
	}
	result, err := fn.Fn(args)
	if err != nil {
		t.Fatalf("%s(...): unexpected error: %v", name, err)
	}
	return result
}

func TestToStringCoercion(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	cases := []struct {
		in   value.Value
		want string
	}{
		{value.Null{}, "null"},
		{value.Bool{Value: true}, "true"},
		{value.Int{Value: 42}, "42"},
		{value.String{Value: "hi"}, "hi"},
	}
	for _, tt := range cases {
		got := call(t, g, config.ToStringFuncName, tt.in)
		s, ok := got.(value.String)
		if !ok || s.Value != tt.want {
			t.Errorf("toString(%v) = %v, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLenAcrossCollections(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	got := call(t, g, config.LenFuncName, &value.List{Elements: []value.Value{value.Int{Value: 1}, value.Int{Value: 2}}})
	if i, ok := got.(value.Int); !ok || i.Value != 2 {
		t.Errorf("len(list) = %v, want 2", got)
	}
	got = call(t, g, config.LenFuncName, value.String{Value: "hello"})
	if i, ok := got.(value.Int); !ok || i.Value != 5 {
		t.Errorf("len(string) = %v, want 5", got)
	}
}

func TestRangeThreeArgForm(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	got := call(t, g, config.RangeFuncName, value.Int{Value: 10}, value.Int{Value: 0}, value.Int{Value: -2})
	lst, ok := got.(*value.List)
	if !ok {
		t.Fatalf("range(10,0,-2) = %T, want *value.List", got)
	}
	want := []int64{10, 8, 6, 4, 2}
	if len(lst.Elements) != len(want) {
		t.Fatalf("range(10,0,-2) has %d elements, want %d", len(lst.Elements), len(want))
	}
	for i, w := range want {
		if n, ok := lst.Elements[i].(value.Int); !ok || n.Value != w {
			t.Errorf("element %d = %v, want %d", i, lst.Elements[i], w)
		}
	}
}

func TestTypeOfNumbersAreUnified(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	for _, v := range []value.Value{value.Int{Value: 1}, value.Float{Value: 1.5}} {
		got := call(t, g, config.TypeOfFuncName, v)
		if s, ok := got.(value.String); !ok || s.Value != "number" {
			t.Errorf("typeOf(%v) = %v, want \"number\"", v, got)
		}
	}
}

func TestAssertFailureCarriesMessage(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	v, _ := g.Get(config.AssertFuncName)
	fn := v.(*value.NativeFn)
	_, err := fn.Fn([]value.Value{value.Bool{Value: false}, value.String{Value: "boom"}})
	if err == nil || err.Error() != "boom" {
		t.Errorf("assert(false, \"boom\") error = %v, want \"boom\"", err)
	}
}

func TestDictConstructorAlternatingArgs(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	got := call(t, g, "dict", value.String{Value: "a"}, value.Int{Value: 1}, value.String{Value: "b"}, value.Int{Value: 2})
	d, ok := got.(*value.Dict)
	if !ok {
		t.Fatalf("dict(...) = %T, want *value.Dict", got)
	}
	b, _ := d.Get("b")
	if i, ok := b.(value.Int); !ok || i.Value != 2 {
		t.Errorf("dict[\"b\"] = %v, want 2", b)
	}
}

func TestDictConstructorRejectsOddArgs(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	v, _ := g.Get("dict")
	fn := v.(*value.NativeFn)
	if _, err := fn.Fn([]value.Value{value.String{Value: "a"}}); err == nil {
		t.Fatal("dict(\"a\") succeeded, want an error for an odd argument count")
	}
}

func TestReadWriteFileRoundTripWithinSandbox(t *testing.T) {
	dir := t.TempDir()
	g := newGlobals(t, &config.ExecutorConfig{SandboxRoot: dir})

	call(t, g, config.WriteFileFuncName, value.String{Value: "notes/a.txt"}, value.String{Value: "hello sandbox"})

	if _, err := os.Stat(filepath.Join(dir, "notes", "a.txt")); err != nil {
		t.Fatalf("writeFile did not create the expected file: %v", err)
	}

	got := call(t, g, config.ReadFileFuncName, value.String{Value: "notes/a.txt"})
	s, ok := got.(value.String)
	if !ok || s.Value != "hello sandbox" {
		t.Errorf("readFile roundtrip = %v, want \"hello sandbox\"", got)
	}
}

func TestReadFileEscapingSandboxIsRejected(t *testing.T) {
	dir := t.TempDir()
	g := newGlobals(t, &config.ExecutorConfig{SandboxRoot: dir})
	v, _ := g.Get(config.ReadFileFuncName)
	fn := v.(*value.NativeFn)
	if _, err := fn.Fn([]value.Value{value.String{Value: "../../etc/passwd"}}); err == nil {
		t.Fatal("readFile escaped the sandbox root, want an error")
	}
}

func TestRegexSearchReturnsCapturedGroups(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	got := call(t, g, "regexSearch", value.String{Value: `(\d+)-(\d+)`}, value.String{Value: "order 12-34 shipped"})
	lst, ok := got.(*value.List)
	if !ok {
		t.Fatalf("regexSearch(...) = %T, want *value.List", got)
	}
	if len(lst.Elements) != 2 {
		t.Fatalf("got %d groups, want 2", len(lst.Elements))
	}
	if s, ok := lst.Elements[0].(value.String); !ok || s.Value != "12" {
		t.Errorf("group 1 = %v, want \"12\"", lst.Elements[0])
	}
}

func TestRegexSearchNoMatchReturnsNull(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	got := call(t, g, "regexSearch", value.String{Value: `\d+`}, value.String{Value: "no digits here"})
	if _, ok := got.(value.Null); !ok {
		t.Errorf("regexSearch with no match = %v, want Null", got)
	}
}

func TestGlobMatch(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	got := call(t, g, "globMatch", value.String{Value: "*.falcon"}, value.String{Value: "main.falcon"})
	if b, ok := got.(value.Bool); !ok || !b.Value {
		t.Errorf("globMatch(\"*.falcon\", \"main.falcon\") = %v, want true", got)
	}
}

func TestPromiseResolveThenRunsImmediately(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	p := call(t, g, "PromiseResolve", value.Int{Value: 7})
	stub, ok := p.(*value.PromiseStub)
	if !ok {
		t.Fatalf("PromiseResolve(7) = %T, want *value.PromiseStub", p)
	}
	var seen value.Value
	cb := &value.NativeFn{Name: "cb", Fn: func(args []value.Value) (value.Value, error) {
		seen = args[0]
		return value.Null{}, nil
	}}
	if _, err := PromiseThen(stub, cb); err != nil {
		t.Fatalf("PromiseThen: %v", err)
	}
	if i, ok := seen.(value.Int); !ok || i.Value != 7 {
		t.Errorf("then callback saw %v, want Int(7)", seen)
	}
}

func TestPromiseThenQueuesUntilSettled(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	v, _ := g.Get("Promise")
	promiseCtor := v.(*value.NativeFn)
	var resolveFn, rejectFn value.Value
	executor := &value.NativeFn{Name: "executor", Fn: func(args []value.Value) (value.Value, error) {
		resolveFn, rejectFn = args[0], args[1]
		return value.Null{}, nil
	}}
	p, err := promiseCtor.Fn([]value.Value{executor})
	if err != nil {
		t.Fatalf("Promise(executor): %v", err)
	}
	stub := p.(*value.PromiseStub)

	var seen value.Value
	cb := &value.NativeFn{Name: "cb", Fn: func(args []value.Value) (value.Value, error) {
		seen = args[0]
		return value.Null{}, nil
	}}
	if _, err := PromiseThen(stub, cb); err != nil {
		t.Fatalf("PromiseThen: %v", err)
	}
	if seen != nil {
		t.Fatalf("then callback fired before the promise settled: %v", seen)
	}

	resolve := resolveFn.(*value.NativeFn)
	if _, err := resolve.Fn([]value.Value{value.Int{Value: 5}}); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	_ = rejectFn
	if i, ok := seen.(value.Int); !ok || i.Value != 5 {
		t.Errorf("then callback saw %v after resolve, want Int(5)", seen)
	}
}

func TestUUIDProducesDistinctStrings(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	a := call(t, g, config.UUIDFuncName)
	b := call(t, g, config.UUIDFuncName)
	as, aok := a.(value.String)
	bs, bok := b.(value.String)
	if !aok || !bok || as.Value == bs.Value {
		t.Errorf("uuid() produced equal or non-string values: %v, %v", a, b)
	}
}

func TestLoadYAMLDecodesScalarsAndSequences(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	got := call(t, g, config.LoadYAMLFuncName, value.String{Value: "name: falcon\ntags:\n  - fast\n  - small\n"})
	d, ok := got.(*value.Dict)
	if !ok {
		t.Fatalf("loadYAML(...) = %T, want *value.Dict", got)
	}
	name, _ := d.Get("name")
	if s, ok := name.(value.String); !ok || s.Value != "falcon" {
		t.Errorf("name = %v, want \"falcon\"", name)
	}
	tags, _ := d.Get("tags")
	lst, ok := tags.(*value.List)
	if !ok || len(lst.Elements) != 2 {
		t.Errorf("tags = %v, want a 2-element list", tags)
	}
}

func TestDumpYAMLThenLoadYAMLRoundTrips(t *testing.T) {
	g := newGlobals(t, config.DefaultExecutorConfig())
	d := value.NewDict()
	d.Set("x", value.Int{Value: 3})
	dumped := call(t, g, config.DumpYAMLFuncName, d)
	s, ok := dumped.(value.String)
	if !ok {
		t.Fatalf("dumpYAML(...) = %T, want value.String", dumped)
	}
	loaded := call(t, g, config.LoadYAMLFuncName, s)
	back, ok := loaded.(*value.Dict)
	if !ok {
		t.Fatalf("loadYAML(dumpYAML(...)) = %T, want *value.Dict", loaded)
	}
	x, _ := back.Get("x")
	if i, ok := x.(value.Int); !ok || i.Value != 3 {
		t.Errorf("round-tripped x = %v, want 3", x)
	}
}

package env

import (
	"testing"

	"github.com/Gabrial-8467/falcon/internal/value"
)

func TestDefineAndGet(t *testing.T) {
	e := New()
	if err := e.Define("x", value.Int{Value: 1}, false, ""); err != nil {
		t.Fatalf("Define: %v", err)
	}
	got, ok := e.Get("x")
	if !ok {
		t.Fatal("Get(\"x\") reported not found")
	}
	if i, ok := got.(value.Int); !ok || i.Value != 1 {
		t.Errorf("Get(\"x\") = %v, want Int(1)", got)
	}
}

func TestGetWalksParentChain(t *testing.T) {
	root := New()
	if err := root.Define("x", value.Int{Value: 1}, false, ""); err != nil {
		t.Fatalf("Define: %v", err)
	}
	child := NewChild(root, false)
	got, ok := child.Get("x")
	if !ok {
		t.Fatal("child.Get(\"x\") reported not found, want it visible from the parent")
	}
	if i, ok := got.(value.Int); !ok || i.Value != 1 {
		t.Errorf("child.Get(\"x\") = %v, want Int(1)", got)
	}
}

func TestGetUndefinedNotFound(t *testing.T) {
	e := New()
	if _, ok := e.Get("missing"); ok {
		t.Error("Get(\"missing\") reported found, want not found")
	}
}

func TestConstCannotBeReassigned(t *testing.T) {
	e := New()
	if err := e.Define("x", value.Int{Value: 1}, true, ""); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := e.Assign("x", value.Int{Value: 2}); err == nil {
		t.Fatal("Assign to const binding succeeded, want an error")
	}
}

func TestConstCannotBeRedefined(t *testing.T) {
	e := New()
	if err := e.Define("x", value.Int{Value: 1}, true, ""); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := e.Define("x", value.Int{Value: 2}, true, ""); err == nil {
		t.Fatal("redefining a const binding succeeded, want an error")
	}
}

func TestAssignWalksParentChain(t *testing.T) {
	root := New()
	if err := root.Define("x", value.Int{Value: 1}, false, ""); err != nil {
		t.Fatalf("Define: %v", err)
	}
	child := NewChild(root, false)
	if err := child.Assign("x", value.Int{Value: 99}); err != nil {
		t.Fatalf("child.Assign: %v", err)
	}
	got, _ := root.Get("x")
	if i, ok := got.(value.Int); !ok || i.Value != 99 {
		t.Errorf("root's binding after child.Assign = %v, want Int(99)", got)
	}
}

func TestAssignUndefinedIsError(t *testing.T) {
	e := New()
	if err := e.Assign("missing", value.Int{Value: 1}); err == nil {
		t.Fatal("Assign to an undefined name succeeded, want an error")
	}
}

func TestTypeAnnotationRejectsMismatch(t *testing.T) {
	e := New()
	if err := e.Define("x", value.Int{Value: 1}, false, "int"); err != nil {
		t.Fatalf("Define with matching annotation: %v", err)
	}
	if err := e.Assign("x", value.String{Value: "oops"}); err == nil {
		t.Fatal("Assign of a String to an int-annotated binding succeeded, want an error")
	}
}

func TestFunctionScopeHoistTarget(t *testing.T) {
	root := New()
	fnScope := NewChild(root, true)
	block := NewChild(fnScope, false)
	if got := block.FunctionScope(); got != fnScope {
		t.Error("FunctionScope() from a nested block did not return the enclosing function scope")
	}
}

func TestHasDoesNotWalkParents(t *testing.T) {
	root := New()
	if err := root.Define("x", value.Int{Value: 1}, false, ""); err != nil {
		t.Fatalf("Define: %v", err)
	}
	child := NewChild(root, false)
	if child.Has("x") {
		t.Error("child.Has(\"x\") = true, want false (Has must not walk parents)")
	}
}

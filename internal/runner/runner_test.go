package runner

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Gabrial-8467/falcon/internal/config"
	"github.com/Gabrial-8467/falcon/internal/parser"
	"github.com/Gabrial-8467/falcon/internal/value"
	"github.com/Gabrial-8467/falcon/internal/vm"
)

func compileForTest(t *testing.T, source string) (*value.Code, error) {
	t.Helper()
	prog, err := parser.Parse(source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return vm.CompileProgram(prog)
}

func newRunner(t *testing.T) *Runner {
	t.Helper()
	r, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func testInt(t *testing.T, v value.Value, want int64) {
	t.Helper()
	i, ok := v.(value.Int)
	if !ok || i.Value != want {
		t.Errorf("got %v, want Int(%d)", v, want)
	}
}

func TestRunSourceArithmetic(t *testing.T) {
	r := newRunner(t)
	result, err := r.RunSource("", "return 2 + 3 * 4")
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	testInt(t, result, 14)
}

func TestRunSourceFallsBackToTreeInterpreterOnThrow(t *testing.T) {
	// A top-level throw is a compiler bailout in the bytecode VM, so
	// RunSource must retry on the tree interpreter instead of surfacing
	// the VM's compile error.
	r := newRunner(t)
	result, err := r.RunSource("", `
		let caught = 0
		try {
			throw 1
		} catch (e) {
			caught = e
		}
		return caught
	`)
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	testInt(t, result, 1)
}

func TestRunSourcePersistsGlobalsAcrossCalls(t *testing.T) {
	r := newRunner(t)
	if _, err := r.RunSource("", "function double(n) { return n * 2 }"); err != nil {
		t.Fatalf("first RunSource: %v", err)
	}
	result, err := r.RunSource("", "return double(21)")
	if err != nil {
		t.Fatalf("second RunSource: %v", err)
	}
	testInt(t, result, 42)
}

func TestRunSourceSyntaxErrorIsReported(t *testing.T) {
	r := newRunner(t)
	var buf bytes.Buffer
	_, err := r.RunSource("bad.falcon", "let = 1")
	if err == nil {
		t.Fatal("expected a parse error, got nil")
	}
	ReportDiagnostic(&buf, "bad.falcon", "let = 1", err)
	if buf.Len() == 0 {
		t.Error("ReportDiagnostic wrote nothing for a positioned parse error")
	}
}

func TestRunFileUsesSourceFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.falcon")
	if err := os.WriteFile(path, []byte("return 5 + 5"), 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	r := newRunner(t)
	result, err := r.RunFile(path)
	if err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	testInt(t, result, 10)
}

func TestRunFileRecompilesAfterModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.falcon")
	if err := os.WriteFile(path, []byte("return 1"), 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	r := newRunner(t)
	first, err := r.RunFile(path)
	if err != nil {
		t.Fatalf("first RunFile: %v", err)
	}
	testInt(t, first, 1)

	// Force a distinct mtime so the cache key actually changes; some
	// filesystems have coarse mtime resolution.
	future := time.Now().Add(time.Second)
	if err := os.WriteFile(path, []byte("return 2"), 0o644); err != nil {
		t.Fatalf("rewriting test file: %v", err)
	}
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	second, err := r.RunFile(path)
	if err != nil {
		t.Fatalf("second RunFile: %v", err)
	}
	testInt(t, second, 2)
}

func TestCompileCacheHitAndMiss(t *testing.T) {
	c := NewCompileCache()
	if _, ok := c.Get("a.falcon", 1); ok {
		t.Fatal("Get on an empty cache reported a hit")
	}
	code, err := compileForTest(t, "return 1")
	if err != nil {
		t.Fatalf("compileForTest: %v", err)
	}
	c.Put("a.falcon", 1, code)
	got, ok := c.Get("a.falcon", 1)
	if !ok || got != code {
		t.Fatal("Get after Put did not return the same *value.Code")
	}
	if _, ok := c.Get("a.falcon", 2); ok {
		t.Fatal("Get with a different mtime reported a hit, want a miss")
	}
}

func TestContentFingerprintIsStableAndSensitiveToChange(t *testing.T) {
	a := contentFingerprint("return 1")
	b := contentFingerprint("return 1")
	if a != b {
		t.Error("contentFingerprint is not stable across calls with identical input")
	}
	if a == contentFingerprint("return 2") {
		t.Error("contentFingerprint collided for differing source text")
	}
}

func TestHybridExecutionDisabledForcesTreeInterpreter(t *testing.T) {
	r, err := New(&config.ExecutorConfig{SandboxRoot: t.TempDir(), HybridExecution: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := r.RunSource("", "return 3 * 3")
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	testInt(t, result, 9)
}

package builtins

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/Gabrial-8467/falcon/internal/config"
	"github.com/Gabrial-8467/falcon/internal/value"
)

// maxReadableFile bounds readFile so a stray huge file doesn't blow up
// memory inside a scripted sandbox; the size shows up humanized in the
// error, matching the "file too large" diagnostics role go-humanize
// plays elsewhere in the runtime.
const maxReadableFile = 64 << 20 // 64 MiB

// resolveSafePath mirrors original_source/builtins.py's _resolve_safe_path:
// relative paths resolve under root, and the result must still live under
// root afterward (blocks `../../etc/passwd`-style escapes).
func resolveSafePath(root, path string) (string, error) {
	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(root, path))
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || (len(rel) >= 2 && rel[:2] == "..") {
		return "", fmt.Errorf("file operation outside safe directory is not allowed: %s", path)
	}
	return abs, nil
}

func registerIO(def func(string, value.Value) error, cfg *config.ExecutorConfig) error {
	root := cfg.SandboxRoot

	if err := def(config.ReadFileFuncName, native(config.ReadFileFuncName, func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("readFile expects 1 argument, got %d", len(args))
		}
		p, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("readFile path must be a string")
		}
		abs, err := resolveSafePath(root, p.Value)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("readFile: %w", err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("readFile: %s is a directory", p.Value)
		}
		if info.Size() > maxReadableFile {
			return nil, fmt.Errorf("readFile: %s is too large (%s, limit %s)",
				p.Value, humanize.Bytes(uint64(info.Size())), humanize.Bytes(uint64(maxReadableFile)))
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("readFile: %w", err)
		}
		return value.String{Value: string(data)}, nil
	})); err != nil {
		return err
	}

	return def(config.WriteFileFuncName, native(config.WriteFileFuncName, func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("writeFile expects 2 arguments, got %d", len(args))
		}
		p, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("writeFile path must be a string")
		}
		abs, err := resolveSafePath(root, p.Value)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("writeFile: %w", err)
		}
		content := coerceToString(args[1])
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("writeFile: %w", err)
		}
		return value.Null{}, nil
	}))
}

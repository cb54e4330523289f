// Package config holds process-wide constants and the optional executor
// configuration for running Falcon source.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version is the current Falcon version.
var Version = "0.1.0"

// SourceFileExtensions are all recognized Falcon source file extensions.
var SourceFileExtensions = []string{".falcon", ".fal"}

// HasSourceExt reports whether path ends with a recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from name, if present.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(name, ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// Builtin function names, used by internal/builtins to register them and by
// its tests to look them up.
const (
	ShowFuncName     = "show"
	SayFuncName      = "say"
	ToStringFuncName = "toString"
	LenFuncName      = "len"
	RangeFuncName    = "range"
	TypeOfFuncName   = "typeOf"
	AssertFuncName   = "assert"
	ExitFuncName     = "exit"
	ReadFileFuncName = "readFile"
	WriteFileFuncName = "writeFile"
	UUIDFuncName     = "uuid"
	LoadYAMLFuncName = "loadYAML"
	DumpYAMLFuncName = "dumpYAML"
)

// ExecutorConfig lets an embedder override the default sandbox root and
// fallback policy. LoadExecutorConfig reads one from a YAML file; nothing in
// this module looks for such a file by itself, and cmd/falcon always runs
// with DefaultExecutorConfig().
type ExecutorConfig struct {
	// SandboxRoot bounds readFile/writeFile; defaults to the process's
	// working directory when empty.
	SandboxRoot string `yaml:"sandboxRoot"`
	// HybridExecution enables the per-function VM/tree-interpreter split.
	// Disabling it forces every function onto the tree interpreter, which
	// is occasionally useful for debugging a suspected VM/interpreter
	// semantic divergence.
	HybridExecution bool `yaml:"hybridExecution"`
}

// DefaultExecutorConfig returns the compiled-in defaults.
func DefaultExecutorConfig() *ExecutorConfig {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &ExecutorConfig{SandboxRoot: wd, HybridExecution: true}
}

// LoadExecutorConfig reads path as YAML into an ExecutorConfig, falling
// back to DefaultExecutorConfig() for any field the file doesn't set.
func LoadExecutorConfig(path string) (*ExecutorConfig, error) {
	cfg := DefaultExecutorConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.SandboxRoot == "" {
		cfg.SandboxRoot = DefaultExecutorConfig().SandboxRoot
	}
	return cfg, nil
}

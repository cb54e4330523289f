// Package builtins registers Falcon's global functions and objects
// (show/say, console, toString, collection constructors, file I/O,
// Promise, regex/glob helpers, and YAML/uuid helpers) into a fresh
// global Environment.
package builtins

import (
	"fmt"
	"os"

	"github.com/Gabrial-8467/falcon/internal/config"
	"github.com/Gabrial-8467/falcon/internal/env"
	"github.com/Gabrial-8467/falcon/internal/value"
)

func native(name string, fn func(args []value.Value) (value.Value, error)) *value.NativeFn {
	return &value.NativeFn{Name: name, Fn: fn}
}

// Register installs every builtin into globals, sandboxing readFile/
// writeFile to cfg.SandboxRoot.
func Register(globals *env.Environment, cfg *config.ExecutorConfig) error {
	def := func(name string, v value.Value) error {
		return globals.Define(name, v, false, "")
	}

	if err := def(config.ShowFuncName, native(config.ShowFuncName, builtinShow)); err != nil {
		return err
	}
	if err := def(config.SayFuncName, native(config.SayFuncName, builtinShow)); err != nil {
		return err
	}
	if err := def(config.ToStringFuncName, native(config.ToStringFuncName, builtinToString)); err != nil {
		return err
	}
	if err := def(config.LenFuncName, native(config.LenFuncName, builtinLen)); err != nil {
		return err
	}
	if err := def(config.RangeFuncName, native(config.RangeFuncName, builtinRange)); err != nil {
		return err
	}
	if err := def(config.TypeOfFuncName, native(config.TypeOfFuncName, builtinTypeOf)); err != nil {
		return err
	}
	if err := def(config.AssertFuncName, native(config.AssertFuncName, builtinAssert)); err != nil {
		return err
	}
	if err := def(config.ExitFuncName, native(config.ExitFuncName, builtinExit)); err != nil {
		return err
	}
	if err := def("console", consoleObject()); err != nil {
		return err
	}

	if err := registerIO(def, cfg); err != nil {
		return err
	}
	if err := registerCollections(def); err != nil {
		return err
	}
	if err := registerPattern(def); err != nil {
		return err
	}
	if err := registerPromise(def); err != nil {
		return err
	}
	if err := registerMisc(def); err != nil {
		return err
	}
	return nil
}

// coerceToString is the canonical string conversion toString() and show()
// both use; it now just forwards to internal/value so BinaryOp's "+" can
// share the identical coercion without builtins importing into value (the
// dependency only runs the other way).
func coerceToString(v value.Value) string {
	return value.CoerceToString(v)
}

// toJSONable converts a Falcon value into plain Go data encoding/json can
// marshal, for the "lists/dicts -> JSON" branch of coerceToString.
func toJSONable(v value.Value) any {
	return value.ToJSONable(v)
}

func builtinShow(args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = coerceToString(a)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	fmt.Println(out)
	return value.Null{}, nil
}

func builtinToString(args []value.Value) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("toString expects 1 argument, got %d", len(args))
	}
	return value.String{Value: coerceToString(args[0])}, nil
}

func consoleObject() *value.Object {
	o := value.NewObject()
	o.Set("log", native("console.log", builtinShow))
	o.Set("error", native("console.error", func(args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = coerceToString(a)
		}
		msg := ""
		for i, p := range parts {
			if i > 0 {
				msg += " "
			}
			msg += p
		}
		fmt.Fprintln(os.Stderr, "ERROR:", msg)
		return value.Null{}, nil
	}))
	return o
}

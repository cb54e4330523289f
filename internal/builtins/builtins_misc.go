package builtins

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Gabrial-8467/falcon/internal/config"
	"github.com/Gabrial-8467/falcon/internal/value"
)

func registerMisc(def func(string, value.Value) error) error {
	if err := def(config.UUIDFuncName, native(config.UUIDFuncName, func(args []value.Value) (value.Value, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("uuid expects 0 arguments, got %d", len(args))
		}
		return value.String{Value: uuid.New().String()}, nil
	})); err != nil {
		return err
	}
	if err := def(config.LoadYAMLFuncName, native(config.LoadYAMLFuncName, func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("loadYAML expects 1 argument, got %d", len(args))
		}
		src, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("loadYAML argument must be a string")
		}
		var data any
		if err := yaml.Unmarshal([]byte(src.Value), &data); err != nil {
			return nil, fmt.Errorf("loadYAML: %w", err)
		}
		return fromYAML(data), nil
	})); err != nil {
		return err
	}
	return def(config.DumpYAMLFuncName, native(config.DumpYAMLFuncName, func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("dumpYAML expects 1 argument, got %d", len(args))
		}
		out, err := yaml.Marshal(toJSONable(args[0]))
		if err != nil {
			return nil, fmt.Errorf("dumpYAML: %w", err)
		}
		return value.String{Value: string(out)}, nil
	}))
}

// fromYAML converts yaml.v3's decoded Go values into Falcon values. Maps
// become Dicts and sequences become Lists, mirroring
// internal/evaluator's own type repertoire (yaml.v3 decodes YAML integers
// as int, not float64, unlike encoding/json).
func fromYAML(data any) value.Value {
	switch v := data.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool{Value: v}
	case int:
		return value.Int{Value: int64(v)}
	case int64:
		return value.Int{Value: v}
	case float64:
		return value.Float{Value: v}
	case string:
		return value.String{Value: v}
	case []any:
		elems := make([]value.Value, len(v))
		for i, e := range v {
			elems[i] = fromYAML(e)
		}
		return &value.List{Elements: elems}
	case map[string]any:
		d := value.NewDict()
		for k, e := range v {
			d.Set(k, fromYAML(e))
		}
		return d
	case map[any]any:
		d := value.NewDict()
		for k, e := range v {
			d.Set(fmt.Sprintf("%v", k), fromYAML(e))
		}
		return d
	default:
		return value.String{Value: fmt.Sprintf("%v", v)}
	}
}

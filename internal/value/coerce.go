package value

import "encoding/json"

// CoerceToString is the canonical string conversion used by toString(),
// show(), and BinaryOp's "+" whenever either operand is a String: null/
// bool/number/string map directly; collections (list, tuple, set, dict,
// fixed array) use their JSON form; anything else uses its Inspect() debug
// form, matching original_source/builtins.py's _to_string_impl
// (lists/dicts via json.dumps, else repr()).
func CoerceToString(v Value) string {
	switch x := v.(type) {
	case Null:
		return "null"
	case Bool:
		if x.Value {
			return "true"
		}
		return "false"
	case String:
		return x.Value
	case Int, Float:
		return v.Inspect()
	case *List, *Tuple, *Set, *Dict, *FixedArray:
		if j, err := json.Marshal(ToJSONable(v)); err == nil {
			return string(j)
		}
		return v.Inspect()
	default:
		return v.Inspect()
	}
}

// ToJSONable converts a Falcon value into plain Go data encoding/json can
// marshal, for the "lists/dicts -> JSON" branch of CoerceToString.
func ToJSONable(v Value) any {
	switch x := v.(type) {
	case Null:
		return nil
	case Bool:
		return x.Value
	case Int:
		return x.Value
	case Float:
		return x.Value
	case String:
		return x.Value
	case *List:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = ToJSONable(e)
		}
		return out
	case *Tuple:
		out := make([]any, len(x.Elements))
		for i, e := range x.Elements {
			out[i] = ToJSONable(e)
		}
		return out
	case *Set:
		elems := x.Elements()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = ToJSONable(e)
		}
		return out
	case *Dict:
		out := make(map[string]any, x.Len())
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			out[k] = ToJSONable(val)
		}
		return out
	case *FixedArray:
		out := make([]any, len(x.Slots))
		for i, e := range x.Slots {
			if e == nil {
				out[i] = nil
				continue
			}
			out[i] = ToJSONable(e)
		}
		return out
	default:
		return v.Inspect()
	}
}

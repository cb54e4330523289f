package builtins

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/Gabrial-8467/falcon/internal/value"
)

// registerPattern installs the regex/glob helpers grounded on
// original_source/src/falcon/utils/pattern_match.py. The original is
// itself a thin wrapper over Python's `re`/`fnmatch` stdlib (no
// third-party regex engine appears anywhere nearby), so these use Go's
// stdlib `regexp` and `path/filepath.Match` directly rather than reaching
// for an external engine.
func registerPattern(def func(string, value.Value) error) error {
	if err := def("regexMatch", native("regexMatch", func(args []value.Value) (value.Value, error) {
		pat, str, err := regexArgs(args)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile("^(?:" + pat + ")")
		if err != nil {
			return nil, fmt.Errorf("regexMatch: %w", err)
		}
		return groupsOrNull(re, str), nil
	})); err != nil {
		return err
	}

	if err := def("regexSearch", native("regexSearch", func(args []value.Value) (value.Value, error) {
		pat, str, err := regexArgs(args)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("regexSearch: %w", err)
		}
		return groupsOrNull(re, str), nil
	})); err != nil {
		return err
	}

	if err := def("regexFindAll", native("regexFindAll", func(args []value.Value) (value.Value, error) {
		pat, str, err := regexArgs(args)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("regexFindAll: %w", err)
		}
		matches := re.FindAllString(str, -1)
		elems := make([]value.Value, len(matches))
		for i, m := range matches {
			elems[i] = value.String{Value: m}
		}
		return &value.List{Elements: elems}, nil
	})); err != nil {
		return err
	}

	if err := def("regexMatchDict", native("regexMatchDict", func(args []value.Value) (value.Value, error) {
		pat, str, err := regexArgs(args)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile("^(?:" + pat + ")")
		if err != nil {
			return nil, fmt.Errorf("regexMatchDict: %w", err)
		}
		m := re.FindStringSubmatch(str)
		if m == nil {
			return value.Null{}, nil
		}
		d := value.NewDict()
		for i, name := range re.SubexpNames() {
			if i == 0 || name == "" {
				continue
			}
			d.Set(name, value.String{Value: m[i]})
		}
		return d, nil
	})); err != nil {
		return err
	}

	return def("globMatch", native("globMatch", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("globMatch expects 2 arguments, got %d", len(args))
		}
		pat, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("globMatch pattern must be a string")
		}
		str, ok := args[1].(value.String)
		if !ok {
			return nil, fmt.Errorf("globMatch string must be a string")
		}
		ok, err := filepath.Match(pat.Value, str.Value)
		if err != nil {
			return nil, fmt.Errorf("globMatch: %w", err)
		}
		return value.Bool{Value: ok}, nil
	}))
}

func regexArgs(args []value.Value) (pattern, subject string, err error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("expects 2 arguments (pattern, string), got %d", len(args))
	}
	pat, ok := args[0].(value.String)
	if !ok {
		return "", "", fmt.Errorf("pattern must be a string")
	}
	str, ok := args[1].(value.String)
	if !ok {
		return "", "", fmt.Errorf("string argument must be a string")
	}
	return pat.Value, str.Value, nil
}

// groupsOrNull mirrors pattern_match.py's "captured groups only, full
// match omitted" convention: null on no match, else a list of the
// capturing groups (empty list if the pattern has none).
func groupsOrNull(re *regexp.Regexp, str string) value.Value {
	m := re.FindStringSubmatch(str)
	if m == nil {
		return value.Null{}
	}
	elems := make([]value.Value, 0, len(m)-1)
	for _, g := range m[1:] {
		elems = append(elems, value.String{Value: g})
	}
	return &value.List{Elements: elems}
}

package fields

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"
)

// Kind produces default values for an attribute from constructor arguments.
// Make is called every time a default is needed, never ahead of time.
type Kind interface {
	Name() string
	Make(args ...any) any
}

type kindFunc struct {
	name string
	fn   func(args ...any) any
}

func (k kindFunc) Name() string         { return k.name }
func (k kindFunc) Make(args ...any) any { return k.fn(args...) }
func (k kindFunc) String() string       { return k.name }

// KindFunc turns an arbitrary factory into a Kind.
func KindFunc(name string, fn func(args ...any) any) Kind {
	return kindFunc{name: name, fn: fn}
}

// Built-in kinds. Each converts its first argument (if any) to the target
// type; conversion failures yield the zero value of that type.
var (
	String   = KindFunc("string", makeString)
	Int      = KindFunc("int", makeInt)
	Float    = KindFunc("float", makeFloat)
	Number   = KindFunc("number", makeFloat)
	Bool     = KindFunc("bool", makeBool)
	Duration = KindFunc("duration", makeDuration)
	Time     = KindFunc("time", makeTime)
	List     = KindFunc("list", makeList)
	Map      = KindFunc("map", makeMap)
	Any      = KindFunc("any", makeAny)
)

func builtins() []Kind {
	return []Kind{String, Int, Float, Number, Bool, Duration, Time, List, Map, Any}
}

func first(args []any) (any, bool) {
	if len(args) == 0 {
		return nil, false
	}
	return args[0], true
}

func makeString(args ...any) any {
	v, ok := first(args)
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(s)
	}
}

func makeInt(args ...any) any {
	v, _ := first(args)
	return int(toFloat(v))
}

func makeFloat(args ...any) any {
	v, _ := first(args)
	return toFloat(v)
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	case time.Duration:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func makeBool(args ...any) any {
	v, ok := first(args)
	if !ok || v == nil {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return b != ""
		}
		return parsed
	default:
		return toFloat(v) != 0
	}
}

func makeDuration(args ...any) any {
	v, _ := first(args)
	switch d := v.(type) {
	case time.Duration:
		return d
	case string:
		parsed, err := time.ParseDuration(strings.TrimSpace(d))
		if err != nil {
			return time.Duration(0)
		}
		return parsed
	default:
		return time.Duration(toFloat(v))
	}
}

// makeTime returns the current time when called without arguments.
func makeTime(args ...any) any {
	v, ok := first(args)
	if !ok {
		return time.Now()
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(t))
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Unix(int64(toFloat(v)), 0).UTC()
	}
}

// makeList returns a fresh slice holding the arguments.
func makeList(args ...any) any {
	out := make([]any, len(args))
	copy(out, args)
	return out
}

// makeMap returns a fresh map, shallow-copying a map argument if given.
func makeMap(args ...any) any {
	v, _ := first(args)
	if src, ok := v.(map[string]any); ok {
		return maps.Clone(src)
	}
	return make(map[string]any)
}

func makeAny(args ...any) any {
	v, _ := first(args)
	return v
}

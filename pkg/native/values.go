package native

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// ObjectView is the host view of a plain (non-native) instance: a snapshot of its
// fields. Origin points back at the runtime instance so the value survives a round
// trip through host code.
type ObjectView struct {
	Class  string
	Fields map[string]any
	Origin any
}

// Callable is the host view of a runtime lambda.
type Callable struct {
	Arity  int
	Fn     func(args []any) (any, error)
	Origin any
}

func (c *Callable) Call(args ...any) (any, error) {
	if c == nil || c.Fn == nil {
		return nil, fmt.Errorf("native: call of nil callable")
	}
	return c.Fn(args)
}

// TypeName names a host value in Lyra terms for error messages.
func TypeName(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case *ObjectView:
		return val.Class
	case *Callable:
		return "lambda"
	case Handle:
		return val.NativeClass()
	default:
		return fmt.Sprintf("%T", v)
	}
}

// FormatNumber renders numbers without a trailing ".0" for integral values.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if math.Abs(f) >= 1e21 {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Format renders a host value the way print shows it.
func Format(v any) string {
	return format(v, false)
}

func format(v any, nested bool) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return FormatNumber(val)
	case string:
		if nested {
			return strconv.Quote(val)
		}
		return val
	case *List:
		parts := make([]string, 0, len(val.Items))
		for _, item := range val.Items {
			parts = append(parts, format(item, true))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ObjectView:
		keys := make([]string, 0, len(val.Fields))
		for key := range val.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, key+": "+format(val.Fields[key], true))
		}
		if len(parts) == 0 {
			return val.Class + " {}"
		}
		return val.Class + " {" + strings.Join(parts, ", ") + "}"
	case *Callable:
		return "<lambda>"
	case fmt.Stringer:
		return val.String()
	case Handle:
		return "<" + val.NativeClass() + ">"
	default:
		return fmt.Sprint(v)
	}
}

// identity maps views back to the runtime object they stand for.
func identity(v any) any {
	switch val := v.(type) {
	case *ObjectView:
		if val.Origin != nil {
			return val.Origin
		}
	case *Callable:
		if val.Origin != nil {
			return val.Origin
		}
	}
	return v
}

// Equal compares host values: primitives by value, everything else by identity.
func Equal(a, b any) bool {
	a, b = identity(a), identity(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// hashKey returns a comparable key for map storage.
func hashKey(v any) (any, error) {
	v = identity(v)
	if v == nil {
		return nil, nil
	}
	if !reflect.TypeOf(v).Comparable() {
		return nil, fmt.Errorf("native: %s cannot be used as a map key", TypeName(v))
	}
	return v, nil
}

func argAt(args []any, i int) any {
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

func NumberArg(method string, args []any, i int) (float64, error) {
	if f, ok := argAt(args, i).(float64); ok {
		return f, nil
	}
	return 0, fmt.Errorf("%s: argument %d must be a number, got %s", method, i+1, TypeName(argAt(args, i)))
}

// maxSafeInteger bounds the integers a float64 represents exactly.
const maxSafeInteger = 1<<53 - 1

// IntArg accepts only finite integral numbers within +/- maxSafeInteger.
func IntArg(method string, args []any, i int) (int, error) {
	f, err := NumberArg(method, args, i)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s: argument %d must be an integer, got %s", method, i+1, FormatNumber(f))
	}
	if math.Abs(f) > maxSafeInteger {
		return 0, fmt.Errorf("%s: argument %d is out of range, got %s", method, i+1, FormatNumber(f))
	}
	return int(f), nil
}

func StringArg(method string, args []any, i int) (string, error) {
	if s, ok := argAt(args, i).(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("%s: argument %d must be a string, got %s", method, i+1, TypeName(argAt(args, i)))
}

func CallableArg(method string, args []any, i int) (*Callable, error) {
	if c, ok := argAt(args, i).(*Callable); ok {
		return c, nil
	}
	return nil, fmt.Errorf("%s: argument %d must be a lambda, got %s", method, i+1, TypeName(argAt(args, i)))
}

// Truthy interprets a callback's result as a condition.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}

package runtime

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindString
	KindBool
	KindInstance
	KindLambda
	KindClassReference
	KindNativeFunction
	KindBoundMethod
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInstance:
		return "instance"
	case KindLambda:
		return "lambda"
	case KindClassReference:
		return "class"
	case KindNativeFunction:
		return "native_function"
	case KindBoundMethod:
		return "bound_method"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// Null is the single null value.
var Null Value = NullValue{}

type NumberValue struct {
	Val float64
}

func (NumberValue) Kind() Kind { return KindNumber }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

func Number(f float64) Value { return NumberValue{Val: f} }
func String(s string) Value  { return StringValue{Val: s} }
func Bool(b bool) Value      { return BoolValue{Val: b} }

//-----------------------------------------------------------------------------
// Objects
//-----------------------------------------------------------------------------

// Instance is one allocated object. Statics aliases the class's shared static
// storage; Native holds the host object of a native-backed instance.
type Instance struct {
	Class   *ClassDefinition
	Fields  map[string]Value
	Statics map[string]Value
	Native  native.Handle
}

func NewInstance(class *ClassDefinition) *Instance {
	if class == nil {
		panic("runtime: instance requires a class")
	}
	return &Instance{
		Class:   class,
		Fields:  make(map[string]Value),
		Statics: class.Statics,
	}
}

func (*Instance) Kind() Kind { return KindInstance }

// Field reads an instance field, falling back to the shared statics.
func (i *Instance) Field(name string) (Value, bool) {
	if v, ok := i.Fields[name]; ok {
		return v, true
	}
	v, ok := i.Statics[name]
	return v, ok
}

// SetField writes to the storage that already holds name; new names become
// instance fields.
func (i *Instance) SetField(name string, value Value) {
	if _, ok := i.Fields[name]; !ok {
		if _, static := i.Statics[name]; static {
			i.Statics[name] = value
			return
		}
	}
	i.Fields[name] = value
}

// LambdaValue is a closure. This and Owner capture the frame the lambda was
// created in so `this` and `super` keep working inside its body.
type LambdaValue struct {
	Node    *ast.LambdaExpression
	Closure *Environment
	This    *Instance
	Owner   *ClassDefinition
}

func (*LambdaValue) Kind() Kind { return KindLambda }

func (l *LambdaValue) Arity() int { return len(l.Node.Parameters) }

// ClassReference is the value of a bare class name, the target of static access.
type ClassReference struct {
	Class *ClassDefinition
}

func (ClassReference) Kind() Kind { return KindClassReference }

type NativeFunctionValue struct {
	Function *native.Function
}

func (NativeFunctionValue) Kind() Kind { return KindNativeFunction }

// BoundMethodValue is a method read without being called. Receiver is the
// instance, a primitive for autoboxed calls, or a ClassReference for statics.
type BoundMethodValue struct {
	Receiver Value
	Method   *MethodDefinition
}

func (BoundMethodValue) Kind() Kind { return KindBoundMethod }

//-----------------------------------------------------------------------------
// Utility helpers
//-----------------------------------------------------------------------------

// TypeName names a value for diagnostics.
func TypeName(v Value) string {
	switch val := v.(type) {
	case nil, NullValue:
		return "null"
	case *Instance:
		return val.Class.Name
	case ClassReference:
		return "class " + val.Class.Name
	case NativeFunctionValue:
		return "native function " + val.Function.Name
	case BoundMethodValue:
		return "method " + val.Method.Owner.Name + "." + val.Method.Name
	default:
		return v.Kind().String()
	}
}

// IsNull treats a missing value as null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NullValue)
	return ok
}

// Equal compares primitives by value and everything else by identity.
func Equal(a, b Value) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch left := a.(type) {
	case NumberValue:
		right, ok := b.(NumberValue)
		return ok && left.Val == right.Val
	case StringValue:
		right, ok := b.(StringValue)
		return ok && left.Val == right.Val
	case BoolValue:
		right, ok := b.(BoolValue)
		return ok && left.Val == right.Val
	case *Instance:
		right, ok := b.(*Instance)
		if !ok {
			return false
		}
		if left == right {
			return true
		}
		// Two wrappers around one host object are the same object.
		return left.Native != nil && right.Native != nil && native.Equal(left.Native, right.Native)
	case *LambdaValue:
		right, ok := b.(*LambdaValue)
		return ok && left == right
	case ClassReference:
		right, ok := b.(ClassReference)
		return ok && left.Class == right.Class
	case NativeFunctionValue:
		right, ok := b.(NativeFunctionValue)
		return ok && left.Function == right.Function
	case BoundMethodValue:
		right, ok := b.(BoundMethodValue)
		return ok && left.Method == right.Method && Equal(left.Receiver, right.Receiver)
	}
	return false
}

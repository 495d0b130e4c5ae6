package typechecker

import "strings"

// Type represents a Lyra type understood by the checker. The variant set is
// closed; switches over it list every case.
type Type interface {
	Name() string
}

type PrimitiveKind string

const (
	PrimitiveNumber  PrimitiveKind = "number"
	PrimitiveString  PrimitiveKind = "string"
	PrimitiveBoolean PrimitiveKind = "boolean"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (p PrimitiveType) Name() string { return string(p.Kind) }

var (
	NumberType  Type = PrimitiveType{Kind: PrimitiveNumber}
	StringType  Type = PrimitiveType{Kind: PrimitiveString}
	BooleanType Type = PrimitiveType{Kind: PrimitiveBoolean}
)

// MixedType is the dynamic top type.
type MixedType struct{}

func (MixedType) Name() string { return "mixed" }

type VoidType struct{}

func (VoidType) Name() string { return "void" }

type NullType struct{}

func (NullType) Name() string { return "null" }

type NullableType struct {
	Inner Type
}

func (n NullableType) Name() string { return n.Inner.Name() + "?" }

// NewNullable wraps t unless it already admits null.
func NewNullable(t Type) Type {
	switch t.(type) {
	case NullableType, NullType, MixedType, UnresolvedType:
		return t
	}
	return NullableType{Inner: t}
}

type ClassRef struct {
	Symbol    *ClassSymbol
	Arguments []Type
}

func (c ClassRef) Name() string { return c.Symbol.Name + typeArgumentsName(c.Arguments) }

type InterfaceRef struct {
	Symbol    *InterfaceSymbol
	Arguments []Type
}

func (i InterfaceRef) Name() string { return i.Symbol.Name + typeArgumentsName(i.Arguments) }

type LambdaType struct {
	Params []Type
	Return Type
}

func (l LambdaType) Name() string {
	parts := make([]string, len(l.Params))
	for i, p := range l.Params {
		parts[i] = p.Name()
	}
	return "(" + strings.Join(parts, ", ") + ") -> " + l.Return.Name()
}

// TypeVariable is an open generic parameter. Owner distinguishes parameters of
// different declarations that share a name.
type TypeVariable struct {
	ParamName string
	Owner     string
}

func (t TypeVariable) Name() string { return t.ParamName }

func (t TypeVariable) Key() string { return t.Owner + "." + t.ParamName }

// UnresolvedType is a name that matched nothing when it was wrapped. The checker
// reports it; everywhere else it is compatible with anything.
type UnresolvedType struct {
	TypeName string
}

func (u UnresolvedType) Name() string { return u.TypeName }

func typeArgumentsName(args []Type) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = typeName(a)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func typeName(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Name()
}

func isMixed(t Type) bool {
	_, ok := t.(MixedType)
	return ok
}

func isUnresolved(t Type) bool {
	_, ok := t.(UnresolvedType)
	return ok
}

// isDynamic reports types that disable static checks: mixed and already-reported
// unresolved names.
func isDynamic(t Type) bool {
	return t == nil || isMixed(t) || isUnresolved(t)
}

func isVoid(t Type) bool {
	_, ok := t.(VoidType)
	return ok
}

func isNull(t Type) bool {
	_, ok := t.(NullType)
	return ok
}

func isPrimitive(t Type, kind PrimitiveKind) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind == kind
}

func isNumeric(t Type) bool { return isPrimitive(t, PrimitiveNumber) }

func isString(t Type) bool { return isPrimitive(t, PrimitiveString) }

func isBoolean(t Type) bool { return isPrimitive(t, PrimitiveBoolean) }

// stripNullable returns the inner type of a nullable.
func stripNullable(t Type) Type {
	if n, ok := t.(NullableType); ok {
		return n.Inner
	}
	return t
}

// Equal is structural equality.
func Equal(a, b Type) bool {
	switch left := a.(type) {
	case PrimitiveType:
		right, ok := b.(PrimitiveType)
		return ok && left.Kind == right.Kind
	case MixedType:
		return isMixed(b)
	case VoidType:
		return isVoid(b)
	case NullType:
		return isNull(b)
	case NullableType:
		right, ok := b.(NullableType)
		return ok && Equal(left.Inner, right.Inner)
	case ClassRef:
		right, ok := b.(ClassRef)
		return ok && left.Symbol == right.Symbol && equalLists(left.Arguments, right.Arguments)
	case InterfaceRef:
		right, ok := b.(InterfaceRef)
		return ok && left.Symbol == right.Symbol && equalLists(left.Arguments, right.Arguments)
	case LambdaType:
		right, ok := b.(LambdaType)
		return ok && equalLists(left.Params, right.Params) && Equal(left.Return, right.Return)
	case TypeVariable:
		right, ok := b.(TypeVariable)
		return ok && left.Key() == right.Key()
	case UnresolvedType:
		right, ok := b.(UnresolvedType)
		return ok && left.TypeName == right.TypeName
	}
	return false
}

func equalLists(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Accepts reports whether a value of type source may be stored where target is
// expected. Class and interface references lift the source along its superclass
// chain and implemented interfaces first.
func Accepts(target, source Type) bool {
	if target == nil || source == nil {
		return true
	}
	if isUnresolved(target) || isUnresolved(source) {
		return true
	}
	switch t := target.(type) {
	case MixedType:
		return true
	case VoidType:
		return isVoid(source) || isMixed(source)
	case NullType:
		return isNull(source) || isMixed(source)
	case NullableType:
		switch s := source.(type) {
		case NullType:
			return true
		case NullableType:
			return Accepts(t.Inner, s.Inner)
		}
		return Accepts(t.Inner, source)
	}

	switch source.(type) {
	case MixedType:
		return true
	case NullType, NullableType:
		return false
	}

	switch t := target.(type) {
	case PrimitiveType:
		s, ok := source.(PrimitiveType)
		return ok && s.Kind == t.Kind
	case TypeVariable:
		s, ok := source.(TypeVariable)
		return ok && s.Key() == t.Key()
	case ClassRef:
		s, ok := source.(ClassRef)
		if !ok {
			return false
		}
		lifted, ok := liftClass(s, t.Symbol)
		return ok && argumentsAccept(t.Arguments, lifted.Arguments)
	case InterfaceRef:
		lifted, ok := liftToInterface(source, t.Symbol)
		return ok && argumentsAccept(t.Arguments, lifted.Arguments)
	case LambdaType:
		s, ok := source.(LambdaType)
		if !ok || len(s.Params) != len(t.Params) {
			return false
		}
		for i := range t.Params {
			if !Accepts(s.Params[i], t.Params[i]) {
				return false
			}
		}
		return isVoid(t.Return) || Accepts(t.Return, s.Return)
	}
	return false
}

// argumentsAccept compares type arguments pairwise. An empty list on either side
// is a raw reference and matches anything.
func argumentsAccept(target, source []Type) bool {
	if len(target) == 0 || len(source) == 0 {
		return true
	}
	if len(target) != len(source) {
		return false
	}
	for i := range target {
		if !Accepts(target[i], source[i]) {
			return false
		}
	}
	return true
}

// liftClass walks source up its superclass chain until it reaches symbol,
// substituting type arguments on the way.
func liftClass(source ClassRef, symbol *ClassSymbol) (ClassRef, bool) {
	current := source
	for depth := 0; current.Symbol != nil; depth++ {
		if current.Symbol == symbol {
			return current, true
		}
		if current.Symbol.SuperRef == nil || depth > maxHierarchyDepth {
			return ClassRef{}, false
		}
		next := substituteType(*current.Symbol.SuperRef, bindingsFor(current.Symbol.TypeParams, current.Arguments))
		ref, ok := next.(ClassRef)
		if !ok {
			return ClassRef{}, false
		}
		current = ref
	}
	return ClassRef{}, false
}

// liftToInterface finds symbol among the interfaces implemented (directly or
// through superclasses and interface inheritance) by source.
func liftToInterface(source Type, symbol *InterfaceSymbol) (InterfaceRef, bool) {
	switch s := source.(type) {
	case InterfaceRef:
		return liftInterface(s, symbol, 0)
	case ClassRef:
		current := s
		for depth := 0; current.Symbol != nil && depth <= maxHierarchyDepth; depth++ {
			bindings := bindingsFor(current.Symbol.TypeParams, current.Arguments)
			for _, impl := range current.Symbol.Implements {
				ref, ok := substituteType(impl, bindings).(InterfaceRef)
				if !ok {
					continue
				}
				if lifted, ok := liftInterface(ref, symbol, 0); ok {
					return lifted, true
				}
			}
			if current.Symbol.SuperRef == nil {
				break
			}
			next, ok := substituteType(*current.Symbol.SuperRef, bindings).(ClassRef)
			if !ok {
				break
			}
			current = next
		}
	}
	return InterfaceRef{}, false
}

func liftInterface(source InterfaceRef, symbol *InterfaceSymbol, depth int) (InterfaceRef, bool) {
	if source.Symbol == symbol {
		return source, true
	}
	if depth > maxHierarchyDepth {
		return InterfaceRef{}, false
	}
	bindings := bindingsFor(source.Symbol.TypeParams, source.Arguments)
	for _, base := range source.Symbol.Extends {
		ref, ok := substituteType(base, bindings).(InterfaceRef)
		if !ok {
			continue
		}
		if lifted, ok := liftInterface(ref, symbol, depth+1); ok {
			return lifted, true
		}
	}
	return InterfaceRef{}, false
}

// bindingsFor maps params to args; a raw reference (no args) erases every
// parameter to mixed so lifted supertypes carry no open variables.
func bindingsFor(params []TypeVariable, args []Type) Substitution {
	if len(args) == 0 && len(params) > 0 {
		erased := make([]Type, len(params))
		for i := range erased {
			erased[i] = MixedType{}
		}
		return buildTypeSubstitutionMap(params, erased)
	}
	return buildTypeSubstitutionMap(params, args)
}

// maxHierarchyDepth bounds hierarchy walks; cycles are rejected during collection
// but lifting must terminate even on a table that failed validation.
const maxHierarchyDepth = 256

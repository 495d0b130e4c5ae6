package typechecker

import "fmt"

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// arrayOf builds Array<elem>, or mixed when no Array class is loaded.
func (c *Checker) arrayOf(elem Type) Type {
	sym, ok := c.table.Class("Array")
	if !ok {
		return MixedType{}
	}
	return ClassRef{Symbol: sym, Arguments: []Type{elem}}
}

// arrayElement returns T for a type that is Array<T> or a subclass of it.
func (c *Checker) arrayElement(t Type) (Type, bool) {
	sym, ok := c.table.Class("Array")
	if !ok {
		return nil, false
	}
	ref, ok := t.(ClassRef)
	if !ok {
		return nil, false
	}
	lifted, ok := liftClass(ref, sym)
	if !ok {
		return nil, false
	}
	if len(lifted.Arguments) != 1 {
		return MixedType{}, true
	}
	return lifted.Arguments[0], true
}

// iterableElement returns T for anything that lifts to Iterable<T>.
func (c *Checker) iterableElement(t Type) (Type, bool) {
	sym, ok := c.table.Interface("Iterable")
	if !ok {
		return nil, false
	}
	lifted, ok := liftToInterface(t, sym)
	if !ok {
		return nil, false
	}
	if len(lifted.Arguments) != 1 {
		return MixedType{}, true
	}
	return lifted.Arguments[0], true
}

// equalityCompatible reports whether == between the two types is allowed: the
// non-null parts must accept each other, and null compares only with a side
// that can hold it.
func equalityCompatible(left, right Type) bool {
	if isNull(left) || isNull(right) {
		return Accepts(left, right) || Accepts(right, left)
	}
	l, r := stripNullable(left), stripNullable(right)
	return Accepts(l, r) && Accepts(r, l)
}

// methodType is the lambda view of a method for use as a first-class value.
// Method type parameters are erased since a reference cannot supply them.
func methodType(method *MethodSymbol, bindings Substitution) LambdaType {
	params := make([]Type, len(method.Parameters))
	for i, p := range method.Parameters {
		params[i] = eraseTypeVariables(substituteType(p.Type, bindings), method.TypeParams)
	}
	ret := eraseTypeVariables(substituteType(method.ReturnType, bindings), method.TypeParams)
	return LambdaType{Params: params, Return: ret}
}

// receiverBindings expresses owner's type parameters in terms of receiver.
func receiverBindings(receiver ClassRef, owner *ClassSymbol) Substitution {
	if owner == nil {
		return nil
	}
	lifted, ok := liftClass(receiver, owner)
	if !ok {
		return bindingsFor(owner.TypeParams, nil)
	}
	return bindingsFor(owner.TypeParams, lifted.Arguments)
}

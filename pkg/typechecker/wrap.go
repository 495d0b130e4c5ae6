package typechecker

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

var primitiveTypes = map[string]Type{
	"number":  NumberType,
	"string":  StringType,
	"boolean": BooleanType,
	"mixed":   MixedType{},
	"void":    VoidType{},
	"null":    NullType{},
}

// wrapType resolves a type annotation. Lookup order: generic bindings in env,
// then classes and interfaces, then primitives. Names matching nothing become
// UnresolvedType; reporting them is the checker's job (see unresolvedNames).
func wrapType(node ast.TypeExpression, table *SymbolTable, env *Environment) Type {
	switch n := node.(type) {
	case nil:
		return MixedType{}
	case *ast.SimpleTypeExpression:
		return wrapNamed(n.Name.Name, nil, table, env)
	case *ast.GenericTypeExpression:
		args := make([]Type, len(n.Arguments))
		for i, arg := range n.Arguments {
			args[i] = wrapType(arg, table, env)
		}
		return wrapNamed(n.Base.Name, args, table, env)
	case *ast.NullableTypeExpression:
		return NewNullable(wrapType(n.InnerType, table, env))
	case *ast.LambdaTypeExpression:
		params := make([]Type, len(n.ParamTypes))
		for i, p := range n.ParamTypes {
			params[i] = wrapType(p, table, env)
		}
		ret := Type(VoidType{})
		if n.ReturnType != nil {
			ret = wrapType(n.ReturnType, table, env)
		}
		return LambdaType{Params: params, Return: ret}
	}
	return MixedType{}
}

func wrapNamed(name string, args []Type, table *SymbolTable, env *Environment) Type {
	if env != nil && len(args) == 0 {
		if bound, ok := env.LookupTypeParameter(name); ok {
			return bound
		}
	}
	if table != nil {
		if cls, ok := table.Class(name); ok {
			return ClassRef{Symbol: cls, Arguments: args}
		}
		if iface, ok := table.Interface(name); ok {
			return InterfaceRef{Symbol: iface, Arguments: args}
		}
	}
	if prim, ok := primitiveTypes[name]; ok && len(args) == 0 {
		return prim
	}
	return UnresolvedType{TypeName: name}
}

// checkTypeExpression validates an annotation after wrapping: unknown names and
// type-argument count mismatches.
func (c *Checker) checkTypeExpression(env *Environment, node ast.TypeExpression) []Diagnostic {
	var diags []Diagnostic
	switch n := node.(type) {
	case *ast.SimpleTypeExpression:
		diags = append(diags, c.checkTypeName(env, n, n.Name.Name, 0)...)
	case *ast.GenericTypeExpression:
		diags = append(diags, c.checkTypeName(env, n, n.Base.Name, len(n.Arguments))...)
		for _, arg := range n.Arguments {
			diags = append(diags, c.checkTypeExpression(env, arg)...)
			if isVoid(wrapType(arg, c.table, env)) {
				diags = append(diags, Diagnostic{Message: "typechecker: void is not a valid type argument", Node: arg})
			}
		}
	case *ast.NullableTypeExpression:
		diags = append(diags, c.checkTypeExpression(env, n.InnerType)...)
	case *ast.LambdaTypeExpression:
		for _, p := range n.ParamTypes {
			diags = append(diags, c.checkTypeExpression(env, p)...)
		}
		if n.ReturnType != nil {
			diags = append(diags, c.checkTypeExpression(env, n.ReturnType)...)
		}
	}
	return diags
}

func (c *Checker) checkTypeName(env *Environment, node ast.Node, name string, argCount int) []Diagnostic {
	if argCount == 0 {
		if _, ok := env.LookupTypeParameter(name); ok {
			return nil
		}
	}
	expected := -1
	if cls, ok := c.table.Class(name); ok {
		expected = len(cls.TypeParams)
	} else if iface, ok := c.table.Interface(name); ok {
		expected = len(iface.TypeParams)
	} else if _, ok := primitiveTypes[name]; ok {
		expected = 0
	} else {
		return []Diagnostic{{Message: "typechecker: unknown type '" + name + "'", Node: node}}
	}
	// A bare generic name is a raw reference and is always allowed.
	if argCount > 0 && argCount != expected {
		return []Diagnostic{{
			Message: fmt.Sprintf("typechecker: type '%s' expects %s, got %d", name, plural(expected, "type argument"), argCount),
			Node:    node,
		}}
	}
	return nil
}

package typechecker

import (
	"fmt"
	"strings"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

func (c *Checker) checkExpression(env *Environment, expr ast.Expression) ([]Diagnostic, Type) {
	return c.checkExpressionExpecting(env, expr, nil)
}

// checkExpressionExpecting checks expr with an optional contextual type. The hint
// only steers inference for array literals and lambdas; callers still compare
// the result with Accepts.
func (c *Checker) checkExpressionExpecting(env *Environment, expr ast.Expression, expected Type) ([]Diagnostic, Type) {
	switch e := expr.(type) {
	case nil:
		return nil, MixedType{}
	case *ast.NumberLiteral:
		c.infer.set(e, NumberType)
		return nil, NumberType
	case *ast.StringLiteral:
		c.infer.set(e, StringType)
		return nil, StringType
	case *ast.BooleanLiteral:
		c.infer.set(e, BooleanType)
		return nil, BooleanType
	case *ast.NullLiteral:
		c.infer.set(e, NullType{})
		return nil, NullType{}
	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(env, e, expected)
	case *ast.LambdaExpression:
		return c.checkLambdaExpression(env, e, expected)
	case *ast.Identifier:
		return c.checkIdentifier(env, e)
	case *ast.ThisExpression:
		return c.checkThis(env, e)
	case *ast.SuperExpression:
		return []Diagnostic{{Message: "typechecker: 'super' must be called or followed by a member access", Node: e}}, MixedType{}
	case *ast.UnaryExpression:
		return c.checkUnaryExpression(env, e)
	case *ast.BinaryExpression:
		return c.checkBinaryExpression(env, e)
	case *ast.AssignmentExpression:
		return c.checkAssignment(env, e)
	case *ast.MemberAccessExpression:
		return c.checkMemberAccess(env, e)
	case *ast.IndexExpression:
		return c.checkIndexExpression(env, e)
	case *ast.CallExpression:
		return c.checkCallExpression(env, e)
	case *ast.NewExpression:
		return c.checkNewExpression(env, e)
	}
	return []Diagnostic{{Message: fmt.Sprintf("typechecker: unsupported expression %T", expr), Node: expr}}, MixedType{}
}

func (c *Checker) checkIdentifier(env *Environment, id *ast.Identifier) ([]Diagnostic, Type) {
	if typ, ok := env.Lookup(id.Name); ok {
		c.infer.set(id, typ)
		return nil, typ
	}
	if fn, ok := c.table.Function(id.Name); ok {
		typ := methodType(fn, nil)
		c.infer.set(id, typ)
		return nil, typ
	}
	if _, ok := c.table.Class(id.Name); ok {
		return []Diagnostic{{
			Message: fmt.Sprintf("typechecker: class '%s' cannot be used as a value (use 'new %s(...)' or a static member)", id.Name, id.Name),
			Node:    id,
		}}, MixedType{}
	}
	return []Diagnostic{{Message: fmt.Sprintf("typechecker: undefined variable '%s'", id.Name), Node: id}}, MixedType{}
}

func (c *Checker) checkThis(env *Environment, expr *ast.ThisExpression) ([]Diagnostic, Type) {
	cls := env.CurrentObject()
	if cls == nil {
		return []Diagnostic{{Message: "typechecker: 'this' used outside of a class", Node: expr}}, MixedType{}
	}
	if inStaticContext(env) {
		return []Diagnostic{{Message: "typechecker: 'this' cannot be used in a static context", Node: expr}}, MixedType{}
	}
	typ := cls.SelfType()
	c.infer.set(expr, typ)
	return nil, typ
}

// checkArrayLiteral types [a, b, ...]. With an Array<T> hint every element must
// fit T; otherwise the first element fixes the element type. An empty literal
// without a hint is Array<mixed>.
func (c *Checker) checkArrayLiteral(env *Environment, lit *ast.ArrayLiteral, expected Type) ([]Diagnostic, Type) {
	var diags []Diagnostic
	var elem Type
	if expected != nil {
		if hinted, ok := c.arrayElement(stripNullable(expected)); ok {
			elem = hinted
		}
	}
	for i, element := range lit.Elements {
		elemDiags, elemType := c.checkExpressionExpecting(env, element, elem)
		diags = append(diags, elemDiags...)
		if elem == nil {
			elem = elemType
			if isNull(elem) {
				elem = MixedType{}
			}
			continue
		}
		if !Accepts(elem, elemType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: array element %d must be %s, got %s", i, typeName(elem), typeName(elemType)),
				Node:    element,
			})
		}
	}
	if elem == nil || isVoid(elem) {
		elem = MixedType{}
	}
	typ := c.arrayOf(elem)
	c.infer.set(lit, typ)
	return diags, typ
}

// checkLambdaExpression types a lambda. Unannotated parameters take their type
// from a lambda-typed hint, else mixed. The return type joins every return and
// the trailing expression; a lambda with neither returns void.
func (c *Checker) checkLambdaExpression(env *Environment, lambda *ast.LambdaExpression, expected Type) ([]Diagnostic, Type) {
	var diags []Diagnostic
	var hint *LambdaType
	if lt, ok := stripNullable(expected).(LambdaType); ok && len(lt.Params) == len(lambda.Parameters) {
		hint = &lt
	}

	bodyEnv := env.Extend()
	bodyEnv.lambda = true
	params := make([]Type, len(lambda.Parameters))
	for i, param := range lambda.Parameters {
		var typ Type = MixedType{}
		if param.TypeAnnotation != nil {
			diags = append(diags, c.checkTypeExpression(env, param.TypeAnnotation)...)
			typ = wrapType(param.TypeAnnotation, c.table, env)
		} else if hint != nil && hint.Params[i] != nil && !containsTypeVariable(hint.Params[i]) {
			typ = hint.Params[i]
		}
		if param.Default != nil {
			diags = append(diags, Diagnostic{Message: "typechecker: lambda parameters cannot have default values", Node: param.Default})
		}
		params[i] = typ
		bodyEnv.Define(param.Name.Name, typ)
	}

	var expectedReturn Type
	if hint != nil && !containsTypeVariable(hint.Return) {
		expectedReturn = hint.Return
	}
	ctx := c.pushLambda(expectedReturn)
	var trailing Type
	for i, stmt := range lambda.Body {
		if exprStmt, ok := stmt.(ast.Expression); ok && i == len(lambda.Body)-1 {
			exprDiags, exprType := c.checkExpressionExpecting(bodyEnv, exprStmt, expectedReturn)
			diags = append(diags, exprDiags...)
			trailing = exprType
			continue
		}
		diags = append(diags, c.checkStatement(bodyEnv, stmt)...)
	}
	c.popLambda()

	results := ctx.returns
	if trailing != nil && (len(results) == 0 || !isVoid(trailing)) {
		results = append(results, trailing)
	}
	var ret Type = VoidType{}
	if len(results) > 0 {
		var ok bool
		if ret, ok = joinReturnTypes(results); !ok {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: lambda returns incompatible types %s", typeList(results)),
				Node:    lambda,
			})
			ret = MixedType{}
		}
	}
	if expectedReturn != nil && !isVoid(expectedReturn) && !Accepts(expectedReturn, ret) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: lambda must return %s, got %s", typeName(expectedReturn), typeName(ret)),
			Node:    lambda,
		})
	}
	typ := LambdaType{Params: params, Return: ret}
	c.infer.set(lambda, typ)
	return diags, typ
}

// joinReturnTypes finds the narrowest type accepting every result. null joined
// with T gives T?; other results must be related by Accepts.
func joinReturnTypes(results []Type) (Type, bool) {
	joined := results[0]
	for _, next := range results[1:] {
		switch {
		case Accepts(joined, next):
		case Accepts(next, joined):
			joined = next
		case isNull(next):
			joined = NewNullable(joined)
		case isNull(joined):
			joined = NewNullable(next)
		default:
			nullable := Accepts(NullableType{Inner: next}, joined) || Accepts(NullableType{Inner: joined}, next)
			if !nullable {
				return nil, false
			}
			joined = NewNullable(stripNullable(joined))
			if !Accepts(joined, next) {
				joined = NewNullable(stripNullable(next))
			}
		}
	}
	return joined, true
}

func typeList(types []Type) string {
	names := make([]string, 0, len(types))
	seen := make(map[string]bool)
	for _, t := range types {
		name := typeName(t)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

package typechecker

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

// callable is the uniform view over everything that can be invoked: methods,
// constructors, native functions and lambda values.
type callable struct {
	name       string
	typeParams []TypeVariable
	params     []*ParameterSymbol
	returnType Type
	bindings   Substitution
}

func methodCallable(method *MethodSymbol, bindings Substitution) callable {
	return callable{
		name:       method.Name,
		typeParams: method.TypeParams,
		params:     method.Parameters,
		returnType: method.ReturnType,
		bindings:   bindings,
	}
}

func lambdaCallable(name string, lambda LambdaType) callable {
	params := make([]*ParameterSymbol, len(lambda.Params))
	for i, p := range lambda.Params {
		params[i] = &ParameterSymbol{Name: fmt.Sprintf("#%d", i+1), Type: p}
	}
	return callable{name: name, params: params, returnType: lambda.Return}
}

func (c *Checker) checkCallExpression(env *Environment, call *ast.CallExpression) ([]Diagnostic, Type) {
	diags, typ := c.resolveCall(env, call)
	c.infer.set(call, typ)
	return diags, typ
}

func (c *Checker) resolveCall(env *Environment, call *ast.CallExpression) ([]Diagnostic, Type) {
	switch callee := call.Callee.(type) {
	case *ast.SuperExpression:
		return c.checkSuperConstructorCall(env, call, callee)
	case *ast.Identifier:
		if _, isVar := env.Lookup(callee.Name); !isVar {
			if fn, ok := c.table.Function(callee.Name); ok {
				return c.checkArguments(env, call, methodCallable(fn, nil))
			}
			if _, ok := c.table.Class(callee.Name); ok {
				diags := c.checkArgumentsLoosely(env, call.Arguments)
				return append(diags, Diagnostic{
					Message: fmt.Sprintf("typechecker: class '%s' must be instantiated with 'new'", callee.Name),
					Node:    call,
				}), MixedType{}
			}
			diags := c.checkArgumentsLoosely(env, call.Arguments)
			return append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: undefined function '%s'", callee.Name),
				Node:    callee,
			}), MixedType{}
		}
	case *ast.MemberAccessExpression:
		return c.checkMethodCall(env, call, callee)
	}

	diags, calleeType := c.checkExpression(env, call.Callee)
	return c.callValue(env, call, diags, calleeType, "lambda")
}

// callValue invokes a first-class value: lambdas are checked, mixed is not.
func (c *Checker) callValue(env *Environment, call *ast.CallExpression, diags []Diagnostic, calleeType Type, name string) ([]Diagnostic, Type) {
	switch t := calleeType.(type) {
	case LambdaType:
		if len(call.TypeArguments) > 0 {
			diags = append(diags, Diagnostic{Message: "typechecker: lambda values take no type arguments", Node: call})
		}
		argDiags, ret := c.checkArguments(env, call, lambdaCallable(name, t))
		return append(diags, argDiags...), ret
	case MixedType, UnresolvedType, TypeVariable:
		return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), MixedType{}
	}
	diags = append(diags, c.checkArgumentsLoosely(env, call.Arguments)...)
	return append(diags, Diagnostic{
		Message: fmt.Sprintf("typechecker: %s is not callable", typeName(calleeType)),
		Node:    call,
	}), MixedType{}
}

func (c *Checker) checkMethodCall(env *Environment, call *ast.CallExpression, callee *ast.MemberAccessExpression) ([]Diagnostic, Type) {
	name := callee.Member.Name

	if cls, ok := c.staticReceiver(env, callee.Object); ok {
		method, found := cls.StaticMethods[name]
		if !found {
			diags, _ := c.staticMemberType(env, callee, cls, name)
			return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), MixedType{}
		}
		var diags []Diagnostic
		if method.IsPrivate() {
			diags = append(diags, c.privateDiagnostic(env, callee, "method", name, cls)...)
		}
		argDiags, ret := c.checkArguments(env, call, methodCallable(method, nil))
		return append(diags, argDiags...), ret
	}

	if _, isSuper := callee.Object.(*ast.SuperExpression); isSuper {
		super, diags := c.superclassOf(env, callee)
		if super == nil {
			return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), MixedType{}
		}
		method, ok := super.FindMethod(name)
		if !ok {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: unknown method '%s' on superclass '%s'", name, super.Name),
				Node:    callee,
			})
			return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), MixedType{}
		}
		if method.IsPrivate() {
			diags = append(diags, c.privateDiagnostic(env, callee, "method", name, method.OwnerClass)...)
		}
		bindings := receiverBindings(env.CurrentObject().SelfType(), method.OwnerClass)
		argDiags, ret := c.checkArguments(env, call, methodCallable(method, bindings))
		return append(diags, argDiags...), ret
	}

	diags, objectType := c.checkExpression(env, callee.Object)
	receiver := objectType
	if n, ok := receiver.(NullableType); ok {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot call method '%s' on nullable %s without a null check", name, typeName(objectType)),
			Node:    callee,
		})
		receiver = n.Inner
	}
	if boxed, ok := c.autobox(receiver); ok {
		receiver = boxed
	}

	switch recv := receiver.(type) {
	case MixedType, UnresolvedType, TypeVariable:
		return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), MixedType{}
	case NullType:
		diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: cannot call method '%s' on null", name), Node: callee})
		return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), MixedType{}
	case ClassRef:
		if method, ok := recv.Symbol.FindMethod(name); ok {
			if method.IsPrivate() {
				diags = append(diags, c.privateDiagnostic(env, callee, "method", name, method.OwnerClass)...)
			}
			argDiags, ret := c.checkArguments(env, call, methodCallable(method, receiverBindings(recv, method.OwnerClass)))
			return append(diags, argDiags...), ret
		}
		if field, ok := recv.Symbol.FindField(name); ok {
			if field.IsPrivate() {
				diags = append(diags, c.privateDiagnostic(env, callee, "field", name, field.Owner)...)
			}
			fieldType := substituteType(field.Type, receiverBindings(recv, field.Owner))
			return c.callValue(env, call, diags, stripNullable(fieldType), name)
		}
		if _, ok := recv.Symbol.StaticMethods[name]; ok {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: static method '%s' must be called through class '%s'", name, recv.Symbol.Name),
				Node:    callee,
			})
			return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), MixedType{}
		}
	case InterfaceRef:
		if im, ok := recv.Symbol.AllMethods(recv)[name]; ok {
			argDiags, ret := c.checkArguments(env, call, methodCallable(im.method, im.bindings))
			return append(diags, argDiags...), ret
		}
	}
	diags = append(diags, Diagnostic{
		Message: fmt.Sprintf("typechecker: unknown method '%s' on %s", name, typeName(objectType)),
		Node:    callee,
	})
	return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), MixedType{}
}

// checkSuperConstructorCall handles super(...) inside a constructor.
func (c *Checker) checkSuperConstructorCall(env *Environment, call *ast.CallExpression, callee *ast.SuperExpression) ([]Diagnostic, Type) {
	super, diags := c.superclassOf(env, callee)
	if super == nil {
		return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), VoidType{}
	}
	if method := env.CurrentMethod(); method == nil || method.Declaration == nil || !method.Declaration.IsConstructor {
		diags = append(diags, Diagnostic{Message: "typechecker: 'super(...)' is only allowed in a constructor", Node: call})
	}
	ctor := super.FindConstructor()
	if ctor == nil {
		if len(call.Arguments) > 0 {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: superclass '%s' has no constructor but got %s", super.Name, plural(len(call.Arguments), "argument")),
				Node:    call,
			})
		}
		return append(diags, c.checkArgumentsLoosely(env, call.Arguments)...), VoidType{}
	}
	bindings := receiverBindings(env.CurrentObject().SelfType(), ctor.OwnerClass)
	argDiags, _ := c.checkArguments(env, call, methodCallable(ctor, bindings))
	return append(diags, argDiags...), VoidType{}
}

func (c *Checker) checkNewExpression(env *Environment, expr *ast.NewExpression) ([]Diagnostic, Type) {
	name := expr.ClassName.Name
	cls, ok := c.table.Class(name)
	if !ok {
		diags := c.checkArgumentsLoosely(env, expr.Arguments)
		if _, isInterface := c.table.Interface(name); isInterface {
			return append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: cannot instantiate interface '%s'", name), Node: expr}), MixedType{}
		}
		return append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: unknown class '%s'", name), Node: expr.ClassName}), MixedType{}
	}

	var diags []Diagnostic
	var typeArgs []Type
	if len(expr.TypeArguments) > 0 {
		for _, arg := range expr.TypeArguments {
			diags = append(diags, c.checkTypeExpression(env, arg)...)
			typeArgs = append(typeArgs, wrapType(arg, c.table, env))
		}
		if len(typeArgs) != len(cls.TypeParams) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: class '%s' expects %s, got %d", name, plural(len(cls.TypeParams), "type argument"), len(typeArgs)),
				Node:    expr,
			})
			typeArgs = nil
		}
	}
	result := ClassRef{Symbol: cls, Arguments: typeArgs}

	ctor := cls.FindConstructor()
	switch {
	case ctor == nil && cls.Native:
		diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: native class '%s' cannot be instantiated", name), Node: expr})
		diags = append(diags, c.checkArgumentsLoosely(env, expr.Arguments)...)
	case ctor == nil:
		if len(expr.Arguments) > 0 {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: class '%s' has no constructor but got %s", name, plural(len(expr.Arguments), "argument")),
				Node:    expr,
			})
		}
		diags = append(diags, c.checkArgumentsLoosely(env, expr.Arguments)...)
	default:
		if ctor.IsPrivate() {
			diags = append(diags, c.privateDiagnostic(env, expr, "constructor", name, ctor.OwnerClass)...)
		}
		ctorCallable := methodCallable(ctor, receiverBindings(result, ctor.OwnerClass))
		ctorCallable.name = name
		if len(typeArgs) == 0 {
			// A raw construction infers the class parameters for argument
			// checking only; the result stays raw.
			ctorCallable.typeParams = cls.TypeParams
			ctorCallable.bindings = nil
			if ctor.OwnerClass != cls {
				ctorCallable.bindings = receiverBindings(cls.SelfType(), ctor.OwnerClass)
			}
		}
		argDiags, _ := c.checkCallArguments(env, expr, ctorCallable, expr.Arguments, nil)
		diags = append(diags, argDiags...)
	}

	c.infer.set(expr, result)
	return diags, result
}

func (c *Checker) checkArguments(env *Environment, call *ast.CallExpression, fn callable) ([]Diagnostic, Type) {
	return c.checkCallArguments(env, call, fn, call.Arguments, call.TypeArguments)
}

// checkCallArguments matches arguments against fn's parameters. Explicit type
// arguments bind the method's type parameters; otherwise they are inferred from
// the arguments, and anything left open is erased to mixed.
func (c *Checker) checkCallArguments(env *Environment, node ast.Node, fn callable, args []ast.Expression, explicit []ast.TypeExpression) ([]Diagnostic, Type) {
	var diags []Diagnostic
	bindings := make(Substitution, len(fn.bindings)+len(fn.typeParams))
	for k, v := range fn.bindings {
		bindings[k] = v
	}

	open := make(map[string]bool, len(fn.typeParams))
	if len(explicit) > 0 {
		if len(explicit) != len(fn.typeParams) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: '%s' expects %s, got %d", fn.name, plural(len(fn.typeParams), "type argument"), len(explicit)),
				Node:    node,
			})
		} else {
			for i, arg := range explicit {
				diags = append(diags, c.checkTypeExpression(env, arg)...)
				bindings[fn.typeParams[i].Key()] = wrapType(arg, c.table, env)
			}
		}
	}
	for _, tv := range fn.typeParams {
		if _, bound := bindings[tv.Key()]; !bound {
			open[tv.Key()] = true
		}
	}

	if len(args) > len(fn.params) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: too many arguments for '%s': expected at most %d, got %d", fn.name, len(fn.params), len(args)),
			Node:    node,
		})
	}

	argTypes := make([]Type, len(args))
	paramType := func(i int) Type {
		if i >= len(fn.params) {
			return nil
		}
		return substituteType(fn.params[i].Type, bindings)
	}
	// Non-lambda arguments first so their types can bind variables that lambda
	// parameters depend on.
	for pass := 0; pass < 2; pass++ {
		for i, arg := range args {
			_, isLambda := arg.(*ast.LambdaExpression)
			if isLambda != (pass == 1) {
				continue
			}
			expected := paramType(i)
			argDiags, argType := c.checkExpressionExpecting(env, arg, expected)
			diags = append(diags, argDiags...)
			argTypes[i] = argType
			if expected != nil && len(open) > 0 {
				inferBindings(expected, argType, open, bindings)
			}
		}
	}

	for key := range open {
		if _, bound := bindings[key]; !bound {
			bindings[key] = MixedType{}
		}
	}

	for i, argType := range argTypes {
		if i >= len(fn.params) {
			break
		}
		expected := substituteType(fn.params[i].Type, bindings)
		if isVoid(argType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: argument %d of '%s' has no value (void)", i+1, fn.name),
				Node:    args[i],
			})
			continue
		}
		if !Accepts(expected, argType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: argument %d of '%s' expects %s, got %s", i+1, fn.name, typeName(expected), typeName(argType)),
				Node:    args[i],
			})
		}
	}
	for i := len(args); i < len(fn.params); i++ {
		if fn.params[i].Default == nil {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: missing argument '%s' for '%s'", fn.params[i].Name, fn.name),
				Node:    node,
			})
		}
	}

	ret := substituteType(fn.returnType, bindings)
	ret = eraseTypeVariables(ret, fn.typeParams)
	return diags, ret
}

// checkArgumentsLoosely checks argument expressions when the callee is unknown.
func (c *Checker) checkArgumentsLoosely(env *Environment, args []ast.Expression) []Diagnostic {
	var diags []Diagnostic
	for _, arg := range args {
		argDiags, _ := c.checkExpression(env, arg)
		diags = append(diags, argDiags...)
	}
	return diags
}

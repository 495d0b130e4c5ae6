package typechecker

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

// staticReceiver reports whether expr names a class rather than a value. A local
// variable of the same name wins.
func (c *Checker) staticReceiver(env *Environment, expr ast.Expression) (*ClassSymbol, bool) {
	id, ok := expr.(*ast.Identifier)
	if !ok {
		return nil, false
	}
	if _, isVar := env.Lookup(id.Name); isVar {
		return nil, false
	}
	cls, ok := c.table.Class(id.Name)
	return cls, ok
}

func (c *Checker) privateDiagnostic(env *Environment, node ast.Node, kind, name string, owner *ClassSymbol) []Diagnostic {
	if canAccessPrivate(env, owner) {
		return nil
	}
	return []Diagnostic{{
		Message: fmt.Sprintf("typechecker: %s '%s' of class '%s' is private", kind, name, owner.Name),
		Node:    node,
	}}
}

// checkMemberAccess types a member read that is not the callee of a call. Fields
// produce their type; methods produce their lambda view.
func (c *Checker) checkMemberAccess(env *Environment, expr *ast.MemberAccessExpression) ([]Diagnostic, Type) {
	name := expr.Member.Name
	diags, typ := c.memberType(env, expr, name)
	c.infer.set(expr, typ)
	return diags, typ
}

func (c *Checker) memberType(env *Environment, expr *ast.MemberAccessExpression, name string) ([]Diagnostic, Type) {
	if cls, ok := c.staticReceiver(env, expr.Object); ok {
		return c.staticMemberType(env, expr, cls, name)
	}
	if _, isSuper := expr.Object.(*ast.SuperExpression); isSuper {
		return c.superMemberType(env, expr, name)
	}

	diags, objectType := c.checkExpression(env, expr.Object)
	receiver := objectType
	if n, ok := receiver.(NullableType); ok {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot access '%s' on nullable %s without a null check", name, typeName(objectType)),
			Node:    expr,
		})
		receiver = n.Inner
	}
	if boxed, ok := c.autobox(receiver); ok {
		receiver = boxed
	}

	switch recv := receiver.(type) {
	case MixedType, UnresolvedType, TypeVariable:
		return diags, MixedType{}
	case NullType:
		return append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: cannot access '%s' on null", name), Node: expr}), MixedType{}
	case ClassRef:
		if field, ok := recv.Symbol.FindField(name); ok {
			if field.IsPrivate() {
				diags = append(diags, c.privateDiagnostic(env, expr, "field", name, field.Owner)...)
			}
			return diags, substituteType(field.Type, receiverBindings(recv, field.Owner))
		}
		if method, ok := recv.Symbol.FindMethod(name); ok {
			if method.IsPrivate() {
				diags = append(diags, c.privateDiagnostic(env, expr, "method", name, method.OwnerClass)...)
			}
			return diags, methodType(method, receiverBindings(recv, method.OwnerClass))
		}
		if _, ok := recv.Symbol.StaticFields[name]; ok {
			return append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: static field '%s' must be accessed through class '%s'", name, recv.Symbol.Name),
				Node:    expr,
			}), MixedType{}
		}
		return append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: unknown member '%s' on %s", name, typeName(objectType)),
			Node:    expr,
		}), MixedType{}
	case InterfaceRef:
		methods := recv.Symbol.AllMethods(recv)
		if im, ok := methods[name]; ok {
			return diags, methodType(im.method, im.bindings)
		}
		return append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: unknown member '%s' on %s", name, typeName(objectType)),
			Node:    expr,
		}), MixedType{}
	}
	return append(diags, Diagnostic{
		Message: fmt.Sprintf("typechecker: cannot access member '%s' on %s", name, typeName(objectType)),
		Node:    expr,
	}), MixedType{}
}

func (c *Checker) staticMemberType(env *Environment, expr *ast.MemberAccessExpression, cls *ClassSymbol, name string) ([]Diagnostic, Type) {
	var diags []Diagnostic
	if field, ok := cls.StaticFields[name]; ok {
		if field.IsPrivate() {
			diags = append(diags, c.privateDiagnostic(env, expr, "field", name, cls)...)
		}
		return diags, field.Type
	}
	if method, ok := cls.StaticMethods[name]; ok {
		if method.IsPrivate() {
			diags = append(diags, c.privateDiagnostic(env, expr, "method", name, cls)...)
		}
		return diags, methodType(method, nil)
	}
	if _, ok := cls.FindField(name); ok {
		return []Diagnostic{{Message: fmt.Sprintf("typechecker: field '%s' of class '%s' is not static", name, cls.Name), Node: expr}}, MixedType{}
	}
	if _, ok := cls.FindMethod(name); ok {
		return []Diagnostic{{Message: fmt.Sprintf("typechecker: method '%s' of class '%s' is not static", name, cls.Name), Node: expr}}, MixedType{}
	}
	return []Diagnostic{{Message: fmt.Sprintf("typechecker: unknown static member '%s' on class '%s'", name, cls.Name), Node: expr}}, MixedType{}
}

func (c *Checker) superMemberType(env *Environment, expr *ast.MemberAccessExpression, name string) ([]Diagnostic, Type) {
	super, diags := c.superclassOf(env, expr)
	if super == nil {
		return diags, MixedType{}
	}
	self := env.CurrentObject().SelfType()
	if method, ok := super.FindMethod(name); ok {
		if method.IsPrivate() {
			diags = append(diags, c.privateDiagnostic(env, expr, "method", name, method.OwnerClass)...)
		}
		return diags, methodType(method, receiverBindings(self, method.OwnerClass))
	}
	if field, ok := super.FindField(name); ok {
		return diags, substituteType(field.Type, receiverBindings(self, field.Owner))
	}
	return append(diags, Diagnostic{
		Message: fmt.Sprintf("typechecker: unknown member '%s' on superclass '%s'", name, super.Name),
		Node:    expr,
	}), MixedType{}
}

// superclassOf validates a use of super and returns the superclass it refers to.
func (c *Checker) superclassOf(env *Environment, node ast.Node) (*ClassSymbol, []Diagnostic) {
	cls := env.CurrentObject()
	if cls == nil || env.CurrentMethod() == nil {
		return nil, []Diagnostic{{Message: "typechecker: 'super' used outside of a class method", Node: node}}
	}
	if inStaticContext(env) {
		return nil, []Diagnostic{{Message: "typechecker: 'super' cannot be used in a static context", Node: node}}
	}
	if cls.Superclass == nil {
		return nil, []Diagnostic{{Message: fmt.Sprintf("typechecker: class '%s' has no superclass", cls.Name), Node: node}}
	}
	return cls.Superclass, nil
}

func (c *Checker) checkIndexExpression(env *Environment, expr *ast.IndexExpression) ([]Diagnostic, Type) {
	objectDiags, objectType := c.checkExpression(env, expr.Object)
	indexDiags, indexType := c.checkExpression(env, expr.Index)
	var diags []Diagnostic
	diags = append(diags, objectDiags...)
	diags = append(diags, indexDiags...)
	if !isDynamic(indexType) && !isNumeric(indexType) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: index must be a number, got %s", typeName(indexType)),
			Node:    expr.Index,
		})
	}
	var resultType Type = MixedType{}
	if elem, ok := c.arrayElement(stripNullable(objectType)); ok {
		resultType = elem
	} else if !isDynamic(objectType) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot index into %s", typeName(objectType)),
			Node:    expr,
		})
	}
	c.infer.set(expr, resultType)
	return diags, resultType
}

// checkAssignment types `target = value`; the expression's type is the value's.
func (c *Checker) checkAssignment(env *Environment, expr *ast.AssignmentExpression) ([]Diagnostic, Type) {
	var diags []Diagnostic
	var targetType Type = MixedType{}

	switch target := expr.Target.(type) {
	case *ast.Identifier:
		typ, ok := env.Lookup(target.Name)
		if !ok {
			diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: assignment to undeclared variable '%s'", target.Name), Node: target})
		} else {
			targetType = typ
		}
	case *ast.MemberAccessExpression:
		targetDiags, typ := c.checkAssignableMember(env, target)
		diags = append(diags, targetDiags...)
		targetType = typ
	case *ast.IndexExpression:
		targetDiags, typ := c.checkIndexExpression(env, target)
		diags = append(diags, targetDiags...)
		targetType = typ
	default:
		diags = append(diags, Diagnostic{Message: "typechecker: invalid assignment target", Node: expr})
	}

	valueDiags, valueType := c.checkExpressionExpecting(env, expr.Value, targetType)
	diags = append(diags, valueDiags...)
	if isVoid(valueType) {
		diags = append(diags, Diagnostic{Message: "typechecker: cannot assign a void value", Node: expr.Value})
	} else if !Accepts(targetType, valueType) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot assign %s to %s", typeName(valueType), typeName(targetType)),
			Node:    expr,
		})
	}
	c.infer.set(expr, valueType)
	return diags, valueType
}

// checkAssignableMember resolves a field target and enforces readonly: instance
// readonly fields are writable only in their class's constructor, static ones
// only by their initializer.
func (c *Checker) checkAssignableMember(env *Environment, target *ast.MemberAccessExpression) ([]Diagnostic, Type) {
	name := target.Member.Name
	if cls, ok := c.staticReceiver(env, target.Object); ok {
		field, ok := cls.StaticFields[name]
		if !ok {
			diags, typ := c.staticMemberType(env, target, cls, name)
			if len(diags) == 0 {
				diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: cannot assign to method '%s'", name), Node: target})
			}
			return diags, typ
		}
		var diags []Diagnostic
		if field.IsPrivate() {
			diags = append(diags, c.privateDiagnostic(env, target, "field", name, cls)...)
		}
		if field.IsReadonly() {
			diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: cannot assign to readonly static field '%s.%s'", cls.Name, name), Node: target})
		}
		c.infer.set(target, field.Type)
		return diags, field.Type
	}

	diags, objectType := c.checkExpression(env, target.Object)
	if _, nullable := objectType.(NullableType); nullable {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot assign '%s' on nullable %s without a null check", name, typeName(objectType)),
			Node:    target,
		})
	}
	receiver, ok := stripNullable(objectType).(ClassRef)
	if !ok {
		if !isDynamic(objectType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: cannot assign member '%s' on %s", name, typeName(objectType)),
				Node:    target,
			})
		}
		return diags, MixedType{}
	}
	field, ok := receiver.Symbol.FindField(name)
	if !ok {
		if _, isStatic := receiver.Symbol.StaticFields[name]; isStatic {
			return append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: static field '%s' must be accessed through class '%s'", name, receiver.Symbol.Name),
				Node:    target,
			}), MixedType{}
		}
		return append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: unknown field '%s' on %s", name, typeName(objectType)),
			Node:    target,
		}), MixedType{}
	}
	if field.IsPrivate() {
		diags = append(diags, c.privateDiagnostic(env, target, "field", name, field.Owner)...)
	}
	if field.IsReadonly() {
		_, viaThis := target.Object.(*ast.ThisExpression)
		if !viaThis || !inConstructorOf(env, field.Owner) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: cannot assign to readonly field '%s' outside the constructor of '%s'", name, field.Owner.Name),
				Node:    target,
			})
		}
	}
	typ := substituteType(field.Type, receiverBindings(receiver, field.Owner))
	c.infer.set(target, typ)
	return diags, typ
}

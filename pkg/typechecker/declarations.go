package typechecker

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
)

// collectDeclarations fills the symbol table. Every class and interface name is
// registered before any member is typed so declarations may refer to each other
// in any order.
func (c *Checker) collectDeclarations(program *driver.Program) {
	for _, decl := range program.Interfaces {
		if _, ok := c.table.registerInterface(decl); !ok {
			c.declare(decl, "typechecker: duplicate interface '%s'", decl.ID.Name)
		}
	}
	for _, decl := range program.Classes {
		if _, clash := c.table.Interface(decl.ID.Name); clash {
			c.declare(decl, "typechecker: class '%s' conflicts with an interface of the same name", decl.ID.Name)
			continue
		}
		if _, ok := c.table.registerClass(decl); !ok {
			c.declare(decl, "typechecker: duplicate class '%s'", decl.ID.Name)
		}
	}

	for _, iface := range c.table.Interfaces() {
		iface.TypeParams = typeVariables(iface.Declaration.TypeParameters, iface.Name)
	}
	for _, cls := range c.table.Classes() {
		cls.TypeParams = typeVariables(cls.Declaration.TypeParameters, cls.Name)
	}

	for _, iface := range c.table.Interfaces() {
		c.collectInterface(iface)
	}
	for _, cls := range c.table.Classes() {
		c.collectClass(cls)
	}
	for _, fn := range program.Functions {
		c.collectFunction(fn)
	}
	c.hierarchy = c.table.resolveHierarchy()
}

func (c *Checker) declare(node ast.Node, format string, args ...any) {
	c.declarations = append(c.declarations, Diagnostic{Message: fmt.Sprintf(format, args...), Node: node})
}

func typeVariables(params []*ast.TypeParameter, owner string) []TypeVariable {
	if len(params) == 0 {
		return nil
	}
	out := make([]TypeVariable, len(params))
	for i, p := range params {
		out[i] = TypeVariable{ParamName: p.Name.Name, Owner: owner}
	}
	return out
}

func (c *Checker) collectInterface(iface *InterfaceSymbol) {
	env := c.interfaceEnv(iface)
	for _, ext := range iface.Declaration.Extends {
		switch ref := wrapType(ext, c.table, env).(type) {
		case InterfaceRef:
			if ref.Symbol == iface {
				c.declare(ext, "typechecker: interface '%s' cannot extend itself", iface.Name)
				continue
			}
			iface.Extends = append(iface.Extends, ref)
		case UnresolvedType:
			// reported by checkTypeExpression
		default:
			c.declare(ext, "typechecker: interface '%s' can only extend interfaces, got %s", iface.Name, typeName(ref))
		}
	}
	for _, decl := range iface.Declaration.Methods {
		method := c.methodSymbol(env, decl, iface.Name)
		method.OwnerInterface = iface
		if _, dup := iface.Methods[method.Name]; dup {
			c.declare(decl, "typechecker: duplicate method '%s' in interface '%s'", method.Name, iface.Name)
			continue
		}
		iface.Methods[method.Name] = method
	}
}

func (c *Checker) collectClass(cls *ClassSymbol) {
	decl := cls.Declaration
	env := c.classEnv(cls)

	if decl.Superclass != nil {
		cls.superclassName = ast.TypeExpressionName(decl.Superclass)
		if ref, ok := wrapType(decl.Superclass, c.table, env).(ClassRef); ok {
			cls.SuperRef = &ref
		}
	}
	for _, impl := range decl.Implements {
		switch ref := wrapType(impl, c.table, env).(type) {
		case InterfaceRef:
			cls.Implements = append(cls.Implements, ref)
		case UnresolvedType:
		default:
			c.declare(impl, "typechecker: class '%s' can only implement interfaces, got %s", cls.Name, typeName(ref))
		}
	}

	for _, fieldDecl := range decl.Fields {
		name := fieldDecl.Name.Name
		if _, dup := cls.Fields[name]; dup {
			c.declare(fieldDecl, "typechecker: duplicate field '%s' in class '%s'", name, cls.Name)
			continue
		}
		if _, dup := cls.StaticFields[name]; dup {
			c.declare(fieldDecl, "typechecker: duplicate field '%s' in class '%s'", name, cls.Name)
			continue
		}
		field := &FieldSymbol{
			Name:        name,
			Owner:       cls,
			Type:        wrapType(fieldDecl.TypeAnnotation, c.table, env),
			Modifiers:   fieldDecl.Modifiers,
			Initializer: fieldDecl.Initializer,
			Declaration: fieldDecl,
		}
		if field.IsStatic() {
			cls.StaticFields[name] = field
		} else {
			cls.Fields[name] = field
		}
		cls.FieldOrder = append(cls.FieldOrder, name)
	}

	for _, methodDecl := range decl.Methods {
		method := c.methodSymbol(env, methodDecl, cls.Name)
		method.OwnerClass = cls
		target := cls.Methods
		if method.IsStatic() {
			target = cls.StaticMethods
		}
		if _, dup := cls.Methods[method.Name]; dup {
			c.declare(methodDecl, "typechecker: duplicate method '%s' in class '%s'", method.Name, cls.Name)
			continue
		}
		if _, dup := cls.StaticMethods[method.Name]; dup {
			c.declare(methodDecl, "typechecker: duplicate method '%s' in class '%s'", method.Name, cls.Name)
			continue
		}
		if _, clash := cls.Fields[method.Name]; clash {
			c.declare(methodDecl, "typechecker: method '%s' conflicts with a field of class '%s'", method.Name, cls.Name)
		}
		target[method.Name] = method
	}

	if decl.Constructor != nil {
		ctor := c.methodSymbol(env, decl.Constructor, cls.Name)
		ctor.OwnerClass = cls
		ctor.ReturnType = VoidType{}
		cls.Constructor = ctor
	}
}

func (c *Checker) collectFunction(fn *driver.NativeFunction) {
	if fn == nil || fn.Declaration == nil {
		return
	}
	method := c.methodSymbol(c.global, fn.Declaration, "")
	if _, dup := c.table.functions[method.Name]; dup {
		c.declare(fn.Declaration, "typechecker: duplicate function '%s'", method.Name)
		return
	}
	c.table.functions[method.Name] = method
}

// methodSymbol types a declaration's signature. Method type parameters are owned
// by "<owner>.<method>" so they never collide with the class's own.
func (c *Checker) methodSymbol(ownerEnv *Environment, decl *ast.MethodDeclaration, owner string) *MethodSymbol {
	method := &MethodSymbol{
		Name:        decl.Name.Name,
		Modifiers:   decl.Modifiers,
		Body:        decl.Body,
		Declaration: decl,
		Annotations: decl.Annotations,
	}
	method.TypeParams = typeVariables(decl.TypeParameters, owner+"."+method.Name)
	env := ownerEnv.Extend()
	for _, tv := range method.TypeParams {
		env.BindTypeParameter(tv.ParamName, tv)
	}
	seenDefault := false
	for _, param := range decl.Parameters {
		sym := &ParameterSymbol{
			Name:    param.Name.Name,
			Type:    wrapType(param.TypeAnnotation, c.table, env),
			Default: param.Default,
		}
		if param.Default != nil {
			seenDefault = true
		} else if seenDefault {
			c.declare(param, "typechecker: parameter '%s' of '%s' without a default follows a parameter with a default", sym.Name, method.Name)
		}
		method.Parameters = append(method.Parameters, sym)
	}
	if decl.ReturnType != nil {
		method.ReturnType = wrapType(decl.ReturnType, c.table, env)
	} else {
		method.ReturnType = VoidType{}
	}
	return method
}

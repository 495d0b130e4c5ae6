package typechecker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
)

// Checker traverses a linked Lyra program and records diagnostics.
type Checker struct {
	infer        InferenceMap
	table        *SymbolTable
	global       *Environment
	rejected     map[*ClassSymbol]bool
	lambdaStack  []*lambdaContext
	hierarchy    []hierarchyProblem
	declarations []Diagnostic
	predeclared  []string
}

// Diagnostic represents a type-checking error.
type Diagnostic struct {
	Message string
	Node    ast.Node
}

// CheckResult is everything a run produces: the diagnostics, the populated
// symbol table and the type inferred for each checked expression.
type CheckResult struct {
	Diagnostics []Diagnostic
	Symbols     *SymbolTable
	Types       InferenceMap
}

// New returns a checker instance.
func New() *Checker {
	return &Checker{
		infer:  make(InferenceMap),
		table:  NewSymbolTable(),
		global: NewEnvironment(nil),
	}
}

// CheckProgram runs every phase over program. Each phase runs even when an earlier
// one reported problems, so one run reports as much as it can.
func (c *Checker) CheckProgram(program *driver.Program) (CheckResult, error) {
	if program == nil {
		return CheckResult{}, fmt.Errorf("typechecker: program is nil")
	}
	c.infer = make(InferenceMap)
	c.table = NewSymbolTable()
	c.global = NewEnvironment(nil)
	c.rejected = make(map[*ClassSymbol]bool)
	c.lambdaStack = nil
	c.hierarchy = nil
	c.declarations = nil

	c.collectDeclarations(program)
	for _, name := range c.predeclared {
		c.global.Define(name, MixedType{})
	}

	var diags []Diagnostic
	diags = append(diags, c.declarations...)
	diags = append(diags, c.validateSuperclasses()...)
	diags = append(diags, c.checkTopLevel(program.Statements())...)
	diags = append(diags, c.checkInterfaceBodies()...)
	diags = append(diags, c.checkClassBodies()...)
	diags = append(diags, c.validateImplementations()...)

	return CheckResult{Diagnostics: diags, Symbols: c.table, Types: c.infer}, nil
}

// Check is CheckProgram reduced to an error: nil when the program is clean,
// otherwise a diagnostics.List of TypeErrors in report order.
func (c *Checker) Check(program *driver.Program) error {
	result, err := c.CheckProgram(program)
	if err != nil {
		return err
	}
	return ToErrors(result.Diagnostics)
}

// ToErrors converts diagnostics to the shared error taxonomy.
func ToErrors(diags []Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	list := make(diagnostics.List, 0, len(diags))
	for _, d := range diags {
		list = append(list, diagnostics.Type(d.Node, "%s", strings.TrimPrefix(d.Message, "typechecker: ")))
	}
	return list
}

// Predeclare makes names visible to top-level code as mixed variables. An
// interactive session uses it for bindings made by earlier inputs.
func (c *Checker) Predeclare(names ...string) {
	c.predeclared = append(c.predeclared, names...)
}

// TypeOf returns the type recorded for node by the last run.
func (c *Checker) TypeOf(node ast.Node) (Type, bool) {
	return c.infer.get(node)
}

// Symbols exposes the table built by the last run.
func (c *Checker) Symbols() *SymbolTable { return c.table }

// validateSuperclasses reports broken superclass links. A rejected class is not
// checked any further.
func (c *Checker) validateSuperclasses() []Diagnostic {
	var diags []Diagnostic
	for _, problem := range c.hierarchy {
		c.rejected[problem.class] = true
		var node ast.Node = problem.class.Declaration
		if problem.class.Declaration.Superclass != nil {
			node = problem.class.Declaration.Superclass
		}
		diags = append(diags, Diagnostic{Message: "typechecker: " + problem.message, Node: node})
	}
	return diags
}

func (c *Checker) checkTopLevel(statements []ast.Statement) []Diagnostic {
	env := c.global.Extend()
	var diags []Diagnostic
	for _, stmt := range statements {
		diags = append(diags, c.checkStatement(env, stmt)...)
	}
	return diags
}

func (c *Checker) checkInterfaceBodies() []Diagnostic {
	var diags []Diagnostic
	for _, iface := range c.table.Interfaces() {
		env := c.interfaceEnv(iface)
		for _, ext := range iface.Declaration.Extends {
			diags = append(diags, c.checkTypeExpression(env, ext)...)
		}
		for _, name := range sortedMethodNames(iface.Methods) {
			diags = append(diags, c.checkMethod(env, iface.Methods[name])...)
		}
	}
	return diags
}

func (c *Checker) checkClassBodies() []Diagnostic {
	var diags []Diagnostic
	for _, cls := range c.table.Classes() {
		if c.rejected[cls] {
			continue
		}
		diags = append(diags, c.checkClassBody(cls)...)
	}
	return diags
}

func (c *Checker) checkClassBody(cls *ClassSymbol) []Diagnostic {
	var diags []Diagnostic
	env := c.classEnv(cls)
	decl := cls.Declaration
	if decl.Superclass != nil {
		diags = append(diags, c.checkTypeExpression(env, decl.Superclass)...)
	}
	for _, impl := range decl.Implements {
		diags = append(diags, c.checkTypeExpression(env, impl)...)
	}

	for _, name := range cls.FieldOrder {
		field, ok := cls.Fields[name]
		if !ok {
			field = cls.StaticFields[name]
		}
		diags = append(diags, c.checkField(env, field)...)
	}
	if cls.Constructor != nil {
		diags = append(diags, c.checkMethod(env, cls.Constructor)...)
	}
	for _, name := range sortedMethodNames(cls.Methods) {
		diags = append(diags, c.checkMethod(env, cls.Methods[name])...)
	}
	for _, name := range sortedMethodNames(cls.StaticMethods) {
		diags = append(diags, c.checkMethod(env, cls.StaticMethods[name])...)
	}
	return diags
}

func (c *Checker) checkField(classEnv *Environment, field *FieldSymbol) []Diagnostic {
	var diags []Diagnostic
	if field.Declaration.TypeAnnotation != nil {
		diags = append(diags, c.checkTypeExpression(classEnv, field.Declaration.TypeAnnotation)...)
	}
	if field.Initializer == nil {
		return diags
	}
	// Initializers run without a receiver for static fields.
	env := classEnv.Extend()
	if field.IsStatic() {
		env.currentObject = field.Owner
		env.hasMethod = true
		env.method = &MethodSymbol{Name: field.Name, OwnerClass: field.Owner, Modifiers: ast.Modifiers{ast.ModifierStatic}}
		env.returnType = field.Type
	}
	initDiags, initType := c.checkExpressionExpecting(env, field.Initializer, field.Type)
	diags = append(diags, initDiags...)
	if !Accepts(field.Type, initType) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: field '%s' of type %s cannot be initialized with %s", field.Name, typeName(field.Type), typeName(initType)),
			Node:    field.Initializer,
		})
	}
	return diags
}

// checkMethod validates a method's signature and, when it has one, its body.
func (c *Checker) checkMethod(ownerEnv *Environment, method *MethodSymbol) []Diagnostic {
	var diags []Diagnostic
	decl := method.Declaration
	env := c.methodEnv(ownerEnv, method)
	for _, param := range decl.Parameters {
		if param.TypeAnnotation != nil {
			diags = append(diags, c.checkTypeExpression(env, param.TypeAnnotation)...)
		}
	}
	if decl.ReturnType != nil {
		diags = append(diags, c.checkTypeExpression(env, decl.ReturnType)...)
	}
	for _, param := range method.Parameters {
		if param.Default == nil {
			continue
		}
		defaultDiags, defaultType := c.checkExpressionExpecting(env, param.Default, param.Type)
		diags = append(diags, defaultDiags...)
		if !Accepts(param.Type, defaultType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: default value of parameter '%s' must be %s, got %s", param.Name, typeName(param.Type), typeName(defaultType)),
				Node:    param.Default,
			})
		}
	}

	if method.Body == nil {
		if method.OwnerClass != nil && !method.OwnerClass.Native {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: method '%s' of class '%s' must have a body", method.Name, method.OwnerClass.Name),
				Node:    decl,
			})
		}
		return diags
	}

	bodyEnv := env.Extend()
	for _, param := range method.Parameters {
		bodyEnv.Define(param.Name, param.Type)
	}
	for _, stmt := range method.Body.Body {
		diags = append(diags, c.checkStatement(bodyEnv, stmt)...)
	}
	if !decl.IsConstructor && !isVoid(method.ReturnType) && !isMixed(method.ReturnType) && !alwaysReturns(method.Body.Body) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: missing return in method '%s' (expected %s)", method.Name, typeName(method.ReturnType)),
			Node:    decl,
		})
	}
	return diags
}

// classEnv opens the instance scope of a class: its type parameters are bound and
// currentObject is set.
func (c *Checker) classEnv(cls *ClassSymbol) *Environment {
	env := c.global.Extend()
	for _, tv := range cls.TypeParams {
		env.BindTypeParameter(tv.ParamName, tv)
	}
	env.currentObject = cls
	return env
}

func (c *Checker) interfaceEnv(iface *InterfaceSymbol) *Environment {
	env := c.global.Extend()
	for _, tv := range iface.TypeParams {
		env.BindTypeParameter(tv.ParamName, tv)
	}
	return env
}

func (c *Checker) methodEnv(ownerEnv *Environment, method *MethodSymbol) *Environment {
	env := ownerEnv.Extend()
	for _, tv := range method.TypeParams {
		env.BindTypeParameter(tv.ParamName, tv)
	}
	env.method = method
	env.hasMethod = true
	env.returnType = method.ReturnType
	if method.Declaration != nil && method.Declaration.IsConstructor {
		env.returnType = VoidType{}
	}
	return env
}

func sortedMethodNames(methods map[string]*MethodSymbol) []string {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package typechecker

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

func (c *Checker) checkStatement(env *Environment, stmt ast.Statement) []Diagnostic {
	switch s := stmt.(type) {
	case nil:
		return nil
	case *ast.LetStatement:
		return c.checkLetStatement(env, s)
	case *ast.BlockStatement:
		return c.checkBlock(env.Extend(), s.Body)
	case *ast.IfStatement:
		return c.checkIfStatement(env, s)
	case *ast.MatchStatement:
		return c.checkMatchStatement(env, s)
	case *ast.ForeachStatement:
		return c.checkForeachStatement(env, s)
	case *ast.ReturnStatement:
		return c.checkReturnStatement(env, s)
	case *ast.ImportStatement:
		return nil
	case *ast.ClassDeclaration, *ast.InterfaceDeclaration:
		return []Diagnostic{{Message: "typechecker: declarations are only allowed at the top level", Node: s}}
	case ast.Expression:
		diags, _ := c.checkExpression(env, s)
		return diags
	}
	return []Diagnostic{{Message: fmt.Sprintf("typechecker: unsupported statement %T", stmt), Node: stmt}}
}

func (c *Checker) checkBlock(env *Environment, body []ast.Statement) []Diagnostic {
	var diags []Diagnostic
	for _, stmt := range body {
		diags = append(diags, c.checkStatement(env, stmt)...)
	}
	return diags
}

// checkLetStatement declares a variable. An annotation fixes its type; otherwise
// the initializer's type is used, with a bare null widened to mixed.
func (c *Checker) checkLetStatement(env *Environment, stmt *ast.LetStatement) []Diagnostic {
	var diags []Diagnostic
	name := stmt.Name.Name
	if _, exists := env.symbols[name]; exists {
		diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: variable '%s' is already declared in this scope", name), Node: stmt.Name})
	}

	var declared Type
	if stmt.TypeAnnotation != nil {
		diags = append(diags, c.checkTypeExpression(env, stmt.TypeAnnotation)...)
		declared = wrapType(stmt.TypeAnnotation, c.table, env)
		if isVoid(declared) {
			diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: variable '%s' cannot have type void", name), Node: stmt.TypeAnnotation})
		}
	}

	if stmt.Value == nil {
		if declared == nil {
			declared = MixedType{}
		} else if !Accepts(declared, NullType{}) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: variable '%s' of type %s must be initialized", name, typeName(declared)),
				Node:    stmt,
			})
		}
		env.Define(name, declared)
		return diags
	}

	valueDiags, valueType := c.checkExpressionExpecting(env, stmt.Value, declared)
	diags = append(diags, valueDiags...)
	if isVoid(valueType) {
		diags = append(diags, Diagnostic{Message: fmt.Sprintf("typechecker: cannot initialize '%s' with a void value", name), Node: stmt.Value})
		valueType = MixedType{}
	}
	if declared == nil {
		declared = valueType
		if isNull(declared) {
			declared = MixedType{}
		}
	} else if !Accepts(declared, valueType) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: cannot assign %s to variable '%s' of type %s", typeName(valueType), name, typeName(declared)),
			Node:    stmt.Value,
		})
	}
	env.Define(name, declared)
	return diags
}

func (c *Checker) checkCondition(env *Environment, cond ast.Expression, what string) []Diagnostic {
	diags, condType := c.checkExpression(env, cond)
	if !isDynamic(condType) && !isBoolean(condType) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: %s condition must be boolean, got %s", what, typeName(condType)),
			Node:    cond,
		})
	}
	return diags
}

func (c *Checker) checkIfStatement(env *Environment, stmt *ast.IfStatement) []Diagnostic {
	diags := c.checkCondition(env, stmt.Condition, "if")
	whenTrue, whenFalse := nullChecks(env, stmt.Condition)
	if stmt.Consequent != nil {
		diags = append(diags, c.checkBlock(env.narrow(whenTrue).Extend(), stmt.Consequent.Body)...)
	}
	if stmt.Alternate != nil {
		diags = append(diags, c.checkStatement(env.narrow(whenFalse), stmt.Alternate)...)
	}
	return diags
}

// checkForeachStatement requires the iterable to be an Array<T> or to implement
// Iterable<T>; the loop variable gets T.
func (c *Checker) checkForeachStatement(env *Environment, stmt *ast.ForeachStatement) []Diagnostic {
	diags, iterType := c.checkExpression(env, stmt.Iterable)
	var elem Type = MixedType{}
	if !isDynamic(iterType) {
		if t, ok := c.iterableElement(iterType); ok {
			elem = t
		} else if t, ok := c.arrayElement(iterType); ok {
			elem = t
		} else {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: foreach requires an Iterable, got %s", typeName(iterType)),
				Node:    stmt.Iterable,
			})
		}
	}

	varType := elem
	if stmt.TypeAnnotation != nil {
		diags = append(diags, c.checkTypeExpression(env, stmt.TypeAnnotation)...)
		varType = wrapType(stmt.TypeAnnotation, c.table, env)
		if !Accepts(varType, elem) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: foreach variable '%s' of type %s cannot hold %s", stmt.Variable.Name, typeName(varType), typeName(elem)),
				Node:    stmt.Variable,
			})
		}
	}
	bodyEnv := env.Extend()
	bodyEnv.Define(stmt.Variable.Name, varType)
	if stmt.Body != nil {
		diags = append(diags, c.checkBlock(bodyEnv, stmt.Body.Body)...)
	}
	return diags
}

func (c *Checker) checkReturnStatement(env *Environment, stmt *ast.ReturnStatement) []Diagnostic {
	if env.InLambda() {
		lambda := c.currentLambda()
		diags, argType := c.checkExpressionExpecting(env, stmt.Argument, lambdaExpected(lambda))
		if stmt.Argument == nil {
			argType = VoidType{}
		}
		if lambda != nil {
			lambda.returns = append(lambda.returns, argType)
		}
		return diags
	}

	expected, ok := env.ReturnType()
	if !ok {
		return []Diagnostic{{Message: "typechecker: return outside of a method", Node: stmt}}
	}
	method := env.CurrentMethod()
	name := ""
	if method != nil {
		name = method.Name
	}

	if stmt.Argument == nil {
		if !isVoid(expected) && !isMixed(expected) && !Accepts(expected, NullType{}) {
			return []Diagnostic{{
				Message: fmt.Sprintf("typechecker: method '%s' must return a value of type %s", name, typeName(expected)),
				Node:    stmt,
			}}
		}
		return nil
	}

	diags, argType := c.checkExpressionExpecting(env, stmt.Argument, expected)
	if isVoid(expected) {
		if !isVoid(argType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: void method '%s' cannot return a value", name),
				Node:    stmt.Argument,
			})
		}
		return diags
	}
	if isVoid(argType) || !Accepts(expected, argType) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: method '%s' must return %s, got %s", name, typeName(expected), typeName(argType)),
			Node:    stmt.Argument,
		})
	}
	return diags
}

func lambdaExpected(ctx *lambdaContext) Type {
	if ctx == nil {
		return nil
	}
	return ctx.expected
}

// alwaysReturns reports whether every path through body ends in a return.
func alwaysReturns(body []ast.Statement) bool {
	for _, stmt := range body {
		if statementReturns(stmt) {
			return true
		}
	}
	return false
}

func statementReturns(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.BlockStatement:
		return alwaysReturns(s.Body)
	case *ast.IfStatement:
		if s.Alternate == nil || s.Consequent == nil {
			return false
		}
		return alwaysReturns(s.Consequent.Body) && statementReturns(s.Alternate)
	case *ast.MatchStatement:
		if s.Default == nil || !statementReturns(s.Default) {
			return false
		}
		for _, arm := range s.Arms {
			if !statementReturns(arm.Body) {
				return false
			}
		}
		return true
	}
	return false
}

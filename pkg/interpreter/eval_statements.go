package interpreter

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// evaluateStatement runs one statement. A non-nil returnValue means a `return`
// executed and must propagate unchanged to the enclosing invocation.
func (i *Interpreter) evaluateStatement(node ast.Statement, env *runtime.Environment, fr *frame) (*returnValue, error) {
	switch n := node.(type) {
	case ast.Expression:
		_, err := i.evaluateExpression(n, env, fr)
		return nil, err
	case *ast.LetStatement:
		return nil, i.evaluateLetStatement(n, env, fr)
	case *ast.BlockStatement:
		return i.evaluateBlock(n.Body, env.Extend(), fr)
	case *ast.IfStatement:
		return i.evaluateIfStatement(n, env, fr)
	case *ast.MatchStatement:
		return i.evaluateMatchStatement(n, env, fr)
	case *ast.ForeachStatement:
		return i.evaluateForeachStatement(n, env, fr)
	case *ast.ReturnStatement:
		return i.evaluateReturnStatement(n, env, fr)
	case *ast.ClassDeclaration, *ast.InterfaceDeclaration, *ast.ImportStatement:
		// Declarations are registered by Load; imports are resolved by the loader.
		return nil, nil
	case nil:
		return nil, nil
	default:
		return nil, diagnostics.Runtime(node, "unsupported statement %s", node.NodeType())
	}
}

// evaluateBlock runs statements in env, which the caller has already scoped.
func (i *Interpreter) evaluateBlock(body []ast.Statement, env *runtime.Environment, fr *frame) (*returnValue, error) {
	for _, stmt := range body {
		ret, err := i.evaluateStatement(stmt, env, fr)
		if err != nil || ret != nil {
			return ret, err
		}
	}
	return nil, nil
}

func (i *Interpreter) evaluateLetStatement(stmt *ast.LetStatement, env *runtime.Environment, fr *frame) error {
	var value runtime.Value = runtime.Null
	if stmt.Value != nil {
		val, err := i.evaluateExpression(stmt.Value, env, fr)
		if err != nil {
			return err
		}
		value = val
	}
	env.Define(stmt.Name.Name, value)
	return nil
}

func (i *Interpreter) evaluateIfStatement(stmt *ast.IfStatement, env *runtime.Environment, fr *frame) (*returnValue, error) {
	cond, err := i.evaluateExpression(stmt.Condition, env, fr)
	if err != nil {
		return nil, err
	}
	ok, err := conditionValue(cond, stmt.Condition, "if condition")
	if err != nil {
		return nil, err
	}
	if ok {
		return i.evaluateBlock(stmt.Consequent.Body, env.Extend(), fr)
	}
	if stmt.Alternate != nil {
		return i.evaluateStatement(stmt.Alternate, env, fr)
	}
	return nil, nil
}

func (i *Interpreter) evaluateReturnStatement(stmt *ast.ReturnStatement, env *runtime.Environment, fr *frame) (*returnValue, error) {
	if stmt.Argument == nil {
		return &returnValue{value: runtime.Null}, nil
	}
	val, err := i.evaluateExpression(stmt.Argument, env, fr)
	if err != nil {
		return nil, err
	}
	return &returnValue{value: val}, nil
}

func conditionValue(val runtime.Value, node ast.Node, what string) (bool, error) {
	b, ok := val.(runtime.BoolValue)
	if !ok {
		return false, diagnostics.Runtime(node, "%s must be boolean, got %s", what, runtime.TypeName(val))
	}
	return b.Val, nil
}

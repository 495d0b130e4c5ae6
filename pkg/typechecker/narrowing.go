package typechecker

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

// nullFacts maps local variables to the non-null type a condition proves.
type nullFacts map[string]Type

// nullChecks returns what cond proves about nullable variables when it holds and
// when it fails. Only comparisons of a plain variable with null, combined with
// !, && and ||, are understood.
func nullChecks(env *Environment, cond ast.Expression) (whenTrue, whenFalse nullFacts) {
	switch expr := cond.(type) {
	case *ast.UnaryExpression:
		if expr.Operator == "!" {
			t, f := nullChecks(env, expr.Operand)
			return f, t
		}
	case *ast.BinaryExpression:
		switch expr.Operator {
		case "==", "!=":
			name, inner, ok := nullComparison(env, expr)
			if !ok {
				return nil, nil
			}
			facts := nullFacts{name: inner}
			if expr.Operator == "!=" {
				return facts, nil
			}
			return nil, facts
		case "&&":
			lt, _ := nullChecks(env, expr.Left)
			rt, _ := nullChecks(env.narrow(lt), expr.Right)
			return lt.merge(rt), nil
		case "||":
			_, lf := nullChecks(env, expr.Left)
			_, rf := nullChecks(env.narrow(lf), expr.Right)
			return nil, lf.merge(rf)
		}
	}
	return nil, nil
}

func nullComparison(env *Environment, expr *ast.BinaryExpression) (string, Type, bool) {
	ident, ok := expr.Left.(*ast.Identifier)
	other := expr.Right
	if !ok {
		ident, ok = expr.Right.(*ast.Identifier)
		other = expr.Left
	}
	if !ok {
		return "", nil, false
	}
	if _, isNull := other.(*ast.NullLiteral); !isNull {
		return "", nil, false
	}
	typ, found := env.Lookup(ident.Name)
	if !found {
		return "", nil, false
	}
	nullable, isNullable := typ.(NullableType)
	if !isNullable {
		return "", nil, false
	}
	return ident.Name, nullable.Inner, true
}

func (f nullFacts) merge(other nullFacts) nullFacts {
	if len(other) == 0 {
		return f
	}
	out := make(nullFacts, len(f)+len(other))
	for name, typ := range f {
		out[name] = typ
	}
	for name, typ := range other {
		out[name] = typ
	}
	return out
}

// narrow returns a child scope rebinding each variable in facts to its non-null
// type, or e itself when there is nothing to narrow.
func (e *Environment) narrow(facts nullFacts) *Environment {
	if len(facts) == 0 {
		return e
	}
	child := e.Extend()
	for name, typ := range facts {
		child.Define(name, typ)
	}
	return child
}

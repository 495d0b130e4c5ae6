package interpreter

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

// evaluateMatchStatement runs the first arm with a pattern equal to the subject,
// else the default body. Patterns are evaluated lazily in source order.
func (i *Interpreter) evaluateMatchStatement(stmt *ast.MatchStatement, env *runtime.Environment, fr *frame) (*returnValue, error) {
	subject, err := i.evaluateExpression(stmt.Subject, env, fr)
	if err != nil {
		return nil, err
	}
	for _, arm := range stmt.Arms {
		matched, err := i.armMatches(arm, subject, env, fr)
		if err != nil {
			return nil, err
		}
		if matched {
			return i.evaluateStatement(arm.Body, env.Extend(), fr)
		}
	}
	if stmt.Default != nil {
		return i.evaluateStatement(stmt.Default, env.Extend(), fr)
	}
	return nil, nil
}

func (i *Interpreter) armMatches(arm *ast.MatchArm, subject runtime.Value, env *runtime.Environment, fr *frame) (bool, error) {
	for _, pattern := range arm.Patterns {
		val, err := i.evaluateExpression(pattern, env, fr)
		if err != nil {
			return false, err
		}
		if runtime.Equal(subject, val) {
			return true, nil
		}
	}
	return false, nil
}

package typechecker

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

// checkMatchStatement checks each arm pattern for equality compatibility with the
// subject. Arms do not fall through.
func (c *Checker) checkMatchStatement(env *Environment, stmt *ast.MatchStatement) []Diagnostic {
	diags, subjectType := c.checkExpression(env, stmt.Subject)
	if isVoid(subjectType) {
		diags = append(diags, Diagnostic{Message: "typechecker: cannot match on a void value", Node: stmt.Subject})
	}
	for _, arm := range stmt.Arms {
		for _, pattern := range arm.Patterns {
			patternDiags, patternType := c.checkExpression(env, pattern)
			diags = append(diags, patternDiags...)
			if !equalityCompatible(subjectType, patternType) {
				diags = append(diags, Diagnostic{
					Message: fmt.Sprintf("typechecker: match pattern of type %s can never equal subject of type %s", typeName(patternType), typeName(subjectType)),
					Node:    pattern,
				})
			}
		}
		diags = append(diags, c.checkStatement(env.Extend(), arm.Body)...)
	}
	if stmt.Default != nil {
		diags = append(diags, c.checkStatement(env.Extend(), stmt.Default)...)
	}
	return diags
}

package typechecker

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

func (c *Checker) checkUnaryExpression(env *Environment, expr *ast.UnaryExpression) ([]Diagnostic, Type) {
	diags, operandType := c.checkExpression(env, expr.Operand)

	var resultType Type
	switch expr.Operator {
	case "-":
		if !isDynamic(operandType) && !isNumeric(operandType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: unary '-' requires a number operand (got %s)", typeName(operandType)),
				Node:    expr,
			})
		}
		resultType = NumberType
	case "!":
		if !isDynamic(operandType) && !isBoolean(operandType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: unary '!' requires a boolean operand (got %s)", typeName(operandType)),
				Node:    expr,
			})
		}
		resultType = BooleanType
	default:
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: unsupported unary operator %q", expr.Operator),
			Node:    expr,
		})
		resultType = MixedType{}
	}

	c.infer.set(expr, resultType)
	return diags, resultType
}

func (c *Checker) checkBinaryExpression(env *Environment, expr *ast.BinaryExpression) ([]Diagnostic, Type) {
	leftDiags, leftType := c.checkExpression(env, expr.Left)
	rightEnv := env
	switch expr.Operator {
	case "&&":
		whenTrue, _ := nullChecks(env, expr.Left)
		rightEnv = env.narrow(whenTrue)
	case "||":
		_, whenFalse := nullChecks(env, expr.Left)
		rightEnv = env.narrow(whenFalse)
	}
	rightDiags, rightType := c.checkExpression(rightEnv, expr.Right)

	var diags []Diagnostic
	diags = append(diags, leftDiags...)
	diags = append(diags, rightDiags...)

	mismatch := func(requirement string) {
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: '%s' requires %s (got %s and %s)", expr.Operator, requirement, typeName(leftType), typeName(rightType)),
			Node:    expr,
		})
	}
	numericOperands := func() bool {
		return (isDynamic(leftType) || isNumeric(leftType)) && (isDynamic(rightType) || isNumeric(rightType))
	}

	var resultType Type
	switch expr.Operator {
	case "+":
		switch {
		case isString(leftType) || isString(rightType):
			if isVoid(leftType) || isVoid(rightType) {
				mismatch("non-void operands")
			}
			resultType = StringType
		case isNumeric(leftType) && isNumeric(rightType):
			resultType = NumberType
		case isDynamic(leftType) || isDynamic(rightType):
			if !numericOperands() {
				resultType = StringType
			} else {
				resultType = MixedType{}
			}
		default:
			mismatch("two numbers or a string operand")
			resultType = MixedType{}
		}
	case "-", "*", "/", "%":
		if !numericOperands() {
			mismatch("number operands")
		}
		resultType = NumberType
	case "<", "<=", ">", ">=":
		if !numericOperands() {
			mismatch("number operands")
		}
		resultType = BooleanType
	case "==", "!=":
		if isVoid(leftType) || isVoid(rightType) || !equalityCompatible(leftType, rightType) {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: cannot compare %s with %s", typeName(leftType), typeName(rightType)),
				Node:    expr,
			})
		}
		resultType = BooleanType
	case "&&", "||":
		if !(isDynamic(leftType) || isBoolean(leftType)) || !(isDynamic(rightType) || isBoolean(rightType)) {
			mismatch("boolean operands")
		}
		resultType = BooleanType
	default:
		diags = append(diags, Diagnostic{
			Message: fmt.Sprintf("typechecker: unsupported binary operator %q", expr.Operator),
			Node:    expr,
		})
		resultType = MixedType{}
	}

	c.infer.set(expr, resultType)
	return diags, resultType
}

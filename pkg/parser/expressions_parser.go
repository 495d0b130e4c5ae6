package parser

import (
	"strconv"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

func (p *Parser) parseAssignment() (ast.Expression, error) {
	start := p.peek().Start
	left, err := p.parseInfix(0)
	if err != nil {
		return nil, err
	}
	if !p.check("=") {
		return left, nil
	}
	eq := p.advance()
	target, ok := left.(ast.AssignmentTarget)
	if !ok {
		return nil, p.errorAt(eq, "invalid assignment target")
	}
	value, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return finish(p, ast.NewAssignmentExpression(target, value), start), nil
}

func (p *Parser) parseInfix(level int) (ast.Expression, error) {
	if level >= len(infixOperatorSets) {
		return p.parseUnary()
	}
	start := p.peek().Start
	left, err := p.parseInfix(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchOperator(infixOperatorSets[level])
		if !ok {
			return left, nil
		}
		right, err := p.parseInfix(level + 1)
		if err != nil {
			return nil, err
		}
		left = finish(p, ast.NewBinaryExpression(op, left, right), start)
	}
}

func (p *Parser) matchOperator(ops []string) (string, bool) {
	tok := p.peek()
	if tok.Kind != TokenPunct {
		return "", false
	}
	for _, op := range ops {
		if tok.Text == op {
			p.advance()
			return op, true
		}
	}
	return "", false
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if p.check("!") || p.check("-") {
		tok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return finish(p, ast.NewUnaryExpression(tok.Text, operand), tok.Start), nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	start := p.peek().Start
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match("."):
			member, err := p.expectIdentifier("member name")
			if err != nil {
				return nil, err
			}
			expr = finish(p, ast.NewMemberAccessExpression(expr, member), start)
		case p.match("["):
			index, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]", "index expression"); err != nil {
				return nil, err
			}
			expr = finish(p, ast.NewIndexExpression(expr, index), start)
		case p.check("("):
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = finish(p, ast.NewCallExpression(expr, args, nil), start)
		case p.check("<") && isCallableTarget(expr):
			typeArgs, ok := p.tryTypeArgumentsForCall()
			if !ok {
				return expr, nil
			}
			args, err := p.parseArguments()
			if err != nil {
				return nil, err
			}
			expr = finish(p, ast.NewCallExpression(expr, args, typeArgs), start)
		default:
			return expr, nil
		}
	}
}

func isCallableTarget(expr ast.Expression) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.MemberAccessExpression:
		return true
	}
	return false
}

func (p *Parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expect("(", "argument list"); err != nil {
		return nil, err
	}
	args := make([]ast.Expression, 0)
	for !p.check(")") {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(",") {
			break
		}
	}
	if _, err := p.expect(")", "argument list"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenNumber:
		p.advance()
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid number literal %s", tok.Text)
		}
		return finish(p, ast.NewNumberLiteral(value), tok.Start), nil
	case TokenString:
		p.advance()
		return finish(p, ast.NewStringLiteral(tok.Value), tok.Start), nil
	case TokenIdentifier:
		id, err := p.expectIdentifier("expression")
		if err != nil {
			return nil, err
		}
		return id, nil
	case TokenKeyword:
		switch tok.Text {
		case "true", "false":
			p.advance()
			return finish(p, ast.NewBooleanLiteral(tok.Text == "true"), tok.Start), nil
		case "null":
			p.advance()
			return finish(p, ast.NewNullLiteral(), tok.Start), nil
		case "this":
			p.advance()
			return finish(p, ast.NewThisExpression(), tok.Start), nil
		case "super":
			p.advance()
			if !p.check("(") && !p.check(".") {
				return nil, p.errorAt(p.peek(), "'super' must be called or followed by a member access")
			}
			return finish(p, ast.NewSuperExpression(), tok.Start), nil
		case "new":
			return p.parseNew()
		}
	case TokenPunct:
		switch tok.Text {
		case "(":
			p.advance()
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(")", "parenthesized expression"); err != nil {
				return nil, err
			}
			return expr, nil
		case "[":
			return p.parseArrayLiteral()
		case "{":
			return p.parseLambda()
		}
	}
	return nil, p.errorAt(tok, "unexpected %s", describe(tok))
}

func (p *Parser) parseArrayLiteral() (ast.Expression, error) {
	start := p.advance().Start
	elements := make([]ast.Expression, 0)
	for !p.check("]") {
		element, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		elements = append(elements, element)
		if !p.match(",") {
			break
		}
	}
	if _, err := p.expect("]", "array literal"); err != nil {
		return nil, err
	}
	return finish(p, ast.NewArrayLiteral(elements), start), nil
}

func (p *Parser) parseNew() (ast.Expression, error) {
	start := p.advance().Start
	className, err := p.expectIdentifier("class name after 'new'")
	if err != nil {
		return nil, err
	}
	var typeArgs []ast.TypeExpression
	if p.check("<") {
		if typeArgs, err = p.parseTypeArguments(); err != nil {
			return nil, err
		}
	}
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	return finish(p, ast.NewNewExpression(className, typeArgs, args), start), nil
}

// parseLambda parses `{ params -> body }`. The body is a statement sequence; its
// value is the first executed return or the trailing expression.
func (p *Parser) parseLambda() (ast.Expression, error) {
	start := p.advance().Start
	params := make([]*ast.Parameter, 0)
	for !p.check("->") {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if !p.match(",") {
			break
		}
	}
	if _, err := p.expect("->", "lambda"); err != nil {
		return nil, err
	}
	body := make([]ast.Statement, 0)
	for !p.check("}") {
		if p.atEOF() {
			return nil, p.errorAt(p.peek(), "unterminated lambda")
		}
		if p.match(";") {
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.advance()
	return finish(p, ast.NewLambdaExpression(params, body), start), nil
}

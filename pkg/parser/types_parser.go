package parser

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

// parseType parses `Name`, `Name<A, B>`, `(A, B) -> R`, a parenthesised type, and
// any of these followed by `?`.
func (p *Parser) parseType() (ast.TypeExpression, error) {
	start := p.peek().Start
	base, err := p.parsePrimaryType()
	if err != nil {
		return nil, err
	}
	if p.match("?") {
		for p.match("?") {
		}
		if _, already := base.(*ast.NullableTypeExpression); already {
			return base, nil
		}
		return finish(p, ast.NewNullableTypeExpression(base), start), nil
	}
	return base, nil
}

func (p *Parser) parsePrimaryType() (ast.TypeExpression, error) {
	start := p.peek().Start
	if p.match("(") {
		var params []ast.TypeExpression
		for !p.check(")") {
			param, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(",") {
				break
			}
		}
		if _, err := p.expect(")", "type"); err != nil {
			return nil, err
		}
		if p.match("->") {
			ret, err := p.parseType()
			if err != nil {
				return nil, err
			}
			return finish(p, ast.NewLambdaTypeExpression(params, ret), start), nil
		}
		if len(params) != 1 {
			return nil, p.errorAt(p.peek(), "expected '->' after lambda parameter types, found %s", describe(p.peek()))
		}
		return params[0], nil
	}

	tok := p.peek()
	var name *ast.Identifier
	switch {
	case tok.Kind == TokenIdentifier:
		name, _ = p.expectIdentifier("type name")
	case tok.Kind == TokenKeyword && tok.Text == "null":
		p.advance()
		name = ast.NewIdentifier("null")
		ast.SetSpan(name, ast.Span{Source: p.source, Start: tok.Start, End: tok.End})
	default:
		return nil, p.errorAt(tok, "expected type, found %s", describe(tok))
	}
	if !p.check("<") {
		return finish(p, ast.NewSimpleTypeExpression(name), start), nil
	}
	args, err := p.parseTypeArguments()
	if err != nil {
		return nil, err
	}
	return finish(p, ast.NewGenericTypeExpression(name, args), start), nil
}

func (p *Parser) parseTypeArguments() ([]ast.TypeExpression, error) {
	if _, err := p.expect("<", "type arguments"); err != nil {
		return nil, err
	}
	var args []ast.TypeExpression
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.match(",") {
			break
		}
	}
	if _, err := p.expect(">", "type arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

// tryTypeArgumentsForCall speculatively parses `<...>` directly followed by `(`.
// On failure the position is restored and ok is false, so `a < b` still parses
// as a comparison.
func (p *Parser) tryTypeArgumentsForCall() (args []ast.TypeExpression, ok bool) {
	saved := p.pos
	args, err := p.parseTypeArguments()
	if err != nil || !p.check("(") {
		p.pos = saved
		return nil, false
	}
	return args, true
}

package parser

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()
	if tok.Kind == TokenKeyword {
		switch tok.Text {
		case "let":
			return p.parseLet()
		case "if":
			return p.parseIf()
		case "match":
			return p.parseMatch()
		case "foreach":
			return p.parseForeach()
		case "return":
			return p.parseReturn()
		case "class", "interface":
			return nil, p.errorAt(tok, "%s declarations are only allowed at the top level", tok.Text)
		}
	}
	if p.check("{") {
		return p.parseBlock()
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.match(";")
	return expr, nil
}

func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	open, err := p.expect("{", "block")
	if err != nil {
		return nil, err
	}
	body := make([]ast.Statement, 0)
	for !p.check("}") {
		if p.atEOF() {
			return nil, p.errorAt(p.peek(), "unterminated block")
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
	return finish(p, ast.NewBlockStatement(body), open.Start), nil
}

func (p *Parser) parseLet() (*ast.LetStatement, error) {
	start := p.advance().Start
	name, err := p.expectIdentifier("variable name")
	if err != nil {
		return nil, err
	}
	var typeAnnotation ast.TypeExpression
	if p.match(":") {
		if typeAnnotation, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	var value ast.Expression
	if p.match("=") {
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	p.match(";")
	return finish(p, ast.NewLetStatement(name, typeAnnotation, value), start), nil
}

func (p *Parser) parseCondition(context string) (ast.Expression, error) {
	if _, err := p.expect("(", context); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")", context); err != nil {
		return nil, err
	}
	return cond, nil
}

func (p *Parser) parseIf() (*ast.IfStatement, error) {
	start := p.advance().Start
	cond, err := p.parseCondition("if condition")
	if err != nil {
		return nil, err
	}
	consequent, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var alternate ast.Statement
	if p.match("else") {
		if p.check("if") {
			alternate, err = p.parseIf()
		} else {
			alternate, err = p.parseBlock()
		}
		if err != nil {
			return nil, err
		}
	}
	return finish(p, ast.NewIfStatement(cond, consequent, alternate), start), nil
}

func (p *Parser) parseMatch() (*ast.MatchStatement, error) {
	start := p.advance().Start
	subject, err := p.parseCondition("match subject")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{", "match body"); err != nil {
		return nil, err
	}
	var (
		arms        []*ast.MatchArm
		defaultBody ast.Statement
	)
	for !p.check("}") {
		if p.atEOF() {
			return nil, p.errorAt(p.peek(), "unterminated match body")
		}
		if p.match(";") || p.match(",") {
			continue
		}
		armStart := p.peek().Start
		if p.checkContextual("default") && p.peekAt(1).Text == "->" {
			defaultTok := p.advance()
			p.advance()
			if defaultBody != nil {
				return nil, p.errorAt(defaultTok, "match has more than one default arm")
			}
			if defaultBody, err = p.parseArmBody(); err != nil {
				return nil, err
			}
			continue
		}
		var patterns []ast.Expression
		for {
			pattern, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			patterns = append(patterns, pattern)
			if !p.match(",") {
				break
			}
		}
		if _, err := p.expect("->", "match arm"); err != nil {
			return nil, err
		}
		body, err := p.parseArmBody()
		if err != nil {
			return nil, err
		}
		arms = append(arms, finish(p, ast.NewMatchArm(patterns, body), armStart))
	}
	p.advance()
	return finish(p, ast.NewMatchStatement(subject, arms, defaultBody), start), nil
}

func (p *Parser) parseArmBody() (ast.Statement, error) {
	if p.check("{") {
		return p.parseBlock()
	}
	return p.parseStatement()
}

func (p *Parser) parseForeach() (*ast.ForeachStatement, error) {
	start := p.advance().Start
	if _, err := p.expect("(", "foreach"); err != nil {
		return nil, err
	}
	variable, err := p.expectIdentifier("loop variable")
	if err != nil {
		return nil, err
	}
	var typeAnnotation ast.TypeExpression
	if p.match(":") {
		if typeAnnotation, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	if !p.checkContextual("in") {
		return nil, p.errorAt(p.peek(), "expected 'in' in foreach, found %s", describe(p.peek()))
	}
	p.advance()
	iterable, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")", "foreach"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return finish(p, ast.NewForeachStatement(variable, typeAnnotation, iterable, body), start), nil
}

func (p *Parser) parseReturn() (*ast.ReturnStatement, error) {
	start := p.advance().Start
	if p.match(";") || p.check("}") || p.atEOF() {
		return finish(p, ast.NewReturnStatement(nil), start), nil
	}
	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.match(";")
	return finish(p, ast.NewReturnStatement(arg), start), nil
}

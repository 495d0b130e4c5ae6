package parser

import (
	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

func (p *Parser) parseAnnotations() (ast.Annotations, error) {
	var out ast.Annotations
	for p.check("@") {
		start := p.advance().Start
		name, err := p.expectIdentifier("annotation name")
		if err != nil {
			return nil, err
		}
		var args []ast.AnnotationArgument
		if p.match("(") {
			for !p.check(")") {
				arg, err := p.parseAnnotationArgument()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.match(",") {
					break
				}
			}
			if _, err := p.expect(")", "annotation arguments"); err != nil {
				return nil, err
			}
		}
		out = append(out, finish(p, ast.NewAnnotation(name, args), start))
	}
	return out, nil
}

// parseAnnotationArgument accepts `key=value` or a bare value, which is stored
// under the name "value".
func (p *Parser) parseAnnotationArgument() (ast.AnnotationArgument, error) {
	name := "value"
	if p.peek().Kind == TokenIdentifier && p.peekAt(1).Kind == TokenPunct && p.peekAt(1).Text == "=" {
		name = p.advance().Text
		p.advance()
	}
	negative := p.match("-")
	tok := p.peek()
	switch tok.Kind {
	case TokenString, TokenNumber, TokenIdentifier, TokenKeyword:
		p.advance()
		value := tok.Value
		if negative {
			if tok.Kind != TokenNumber {
				return ast.AnnotationArgument{}, p.errorAt(tok, "expected number after '-'")
			}
			value = "-" + value
		}
		return ast.AnnotationArgument{Name: name, Value: value}, nil
	}
	return ast.AnnotationArgument{}, p.errorAt(tok, "expected annotation value, found %s", describe(tok))
}

func (p *Parser) parseTypeParameters() ([]*ast.TypeParameter, error) {
	if !p.match("<") {
		return nil, nil
	}
	var params []*ast.TypeParameter
	for {
		id, err := p.expectIdentifier("type parameter name")
		if err != nil {
			return nil, err
		}
		param := ast.NewTypeParameter(id)
		ast.SetSpan(param, id.Span())
		params = append(params, param)
		if !p.match(",") {
			break
		}
	}
	if _, err := p.expect(">", "type parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseClass(start int, annotations ast.Annotations, modifiers ast.Modifiers) (*ast.ClassDeclaration, error) {
	p.advance()
	id, err := p.expectIdentifier("class name")
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParameters()
	if err != nil {
		return nil, err
	}
	var superclass ast.TypeExpression
	if p.match("extends") {
		if superclass, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	var implements []ast.TypeExpression
	if p.match("implements") {
		for {
			iface, err := p.parseType()
			if err != nil {
				return nil, err
			}
			implements = append(implements, iface)
			if !p.match(",") {
				break
			}
		}
	}
	if _, err := p.expect("{", "class body"); err != nil {
		return nil, err
	}

	var (
		fields      []*ast.FieldDeclaration
		methods     []*ast.MethodDeclaration
		constructor *ast.MethodDeclaration
	)
	for !p.check("}") {
		if p.atEOF() {
			return nil, p.errorAt(p.peek(), "unterminated class body for '%s'", id.Name)
		}
		if p.match(";") {
			continue
		}
		field, method, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		switch {
		case field != nil:
			fields = append(fields, field)
		case method.IsConstructor:
			if constructor != nil {
				return nil, p.errorAt(p.previous(), "class '%s' declares more than one constructor", id.Name)
			}
			constructor = method
		default:
			methods = append(methods, method)
		}
	}
	p.advance()

	decl := ast.NewClassDeclaration(id, typeParams, superclass, implements, fields, methods, constructor, modifiers)
	decl.Annotations = annotations
	decl.Native = p.native
	return finish(p, decl, start), nil
}

func (p *Parser) parseMemberModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for {
		tok := p.peek()
		next := p.peekAt(1)
		if tok.Kind != TokenIdentifier || !ast.IsModifier(tok.Text) || next.Kind != TokenIdentifier {
			return mods
		}
		mods = append(mods, ast.Modifier(p.advance().Text))
	}
}

// parseMember returns either a field or a method (constructors included).
func (p *Parser) parseMember() (*ast.FieldDeclaration, *ast.MethodDeclaration, error) {
	start := p.peek().Start
	annotations, err := p.parseAnnotations()
	if err != nil {
		return nil, nil, err
	}
	modifiers := p.parseMemberModifiers()

	if p.checkContextual(ast.ConstructorName) && p.peekAt(1).Text == "(" {
		p.advance()
		params, err := p.parseParameters()
		if err != nil {
			return nil, nil, err
		}
		body, err := p.parseOptionalBody()
		if err != nil {
			return nil, nil, err
		}
		ctor := ast.NewConstructorDeclaration(params, body, modifiers)
		ctor.Annotations = annotations
		return nil, finish(p, ctor, start), nil
	}

	name, err := p.expectIdentifier("member name")
	if err != nil {
		return nil, nil, err
	}
	if p.check("(") || p.check("<") {
		method, err := p.parseMethodRest(name, modifiers)
		if err != nil {
			return nil, nil, err
		}
		method.Annotations = annotations
		return nil, finish(p, method, start), nil
	}

	var typeAnnotation ast.TypeExpression
	if p.match(":") {
		if typeAnnotation, err = p.parseType(); err != nil {
			return nil, nil, err
		}
	}
	var initializer ast.Expression
	if p.match("=") {
		if initializer, err = p.parseExpression(); err != nil {
			return nil, nil, err
		}
	}
	p.match(";")
	field := ast.NewFieldDeclaration(name, typeAnnotation, initializer, modifiers)
	field.Annotations = annotations
	return finish(p, field, start), nil, nil
}

// parseMethodRest parses everything after the method name: type parameters,
// parameters, return type and an optional body.
func (p *Parser) parseMethodRest(name *ast.Identifier, modifiers ast.Modifiers) (*ast.MethodDeclaration, error) {
	typeParams, err := p.parseTypeParameters()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameters()
	if err != nil {
		return nil, err
	}
	var returnType ast.TypeExpression
	if p.match(":") {
		if returnType, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	body, err := p.parseOptionalBody()
	if err != nil {
		return nil, err
	}
	return ast.NewMethodDeclaration(name, typeParams, params, returnType, body, modifiers), nil
}

// parseOptionalBody returns nil for signature-only members terminated by ';',
// by the end of the enclosing body or by the end of input.
func (p *Parser) parseOptionalBody() (*ast.BlockStatement, error) {
	if p.check("{") {
		return p.parseBlock()
	}
	if p.match(";") || p.check("}") || p.atEOF() {
		return nil, nil
	}
	return nil, p.errorAt(p.peek(), "expected method body or ';', found %s", describe(p.peek()))
}

func (p *Parser) parseParameters() ([]*ast.Parameter, error) {
	if _, err := p.expect("(", "parameter list"); err != nil {
		return nil, err
	}
	params := make([]*ast.Parameter, 0)
	for !p.check(")") {
		param, err := p.parseParameter()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		if !p.match(",") {
			break
		}
	}
	if _, err := p.expect(")", "parameter list"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseParameter() (*ast.Parameter, error) {
	start := p.peek().Start
	name, err := p.expectIdentifier("parameter name")
	if err != nil {
		return nil, err
	}
	var typeAnnotation ast.TypeExpression
	if p.match(":") {
		if typeAnnotation, err = p.parseType(); err != nil {
			return nil, err
		}
	}
	var defaultValue ast.Expression
	if p.match("=") {
		if defaultValue, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return finish(p, ast.NewParameter(name, typeAnnotation, defaultValue), start), nil
}

func (p *Parser) parseInterface(start int, annotations ast.Annotations) (*ast.InterfaceDeclaration, error) {
	p.advance()
	id, err := p.expectIdentifier("interface name")
	if err != nil {
		return nil, err
	}
	typeParams, err := p.parseTypeParameters()
	if err != nil {
		return nil, err
	}
	var extends []ast.TypeExpression
	if p.match("extends") {
		for {
			base, err := p.parseType()
			if err != nil {
				return nil, err
			}
			extends = append(extends, base)
			if !p.match(",") {
				break
			}
		}
	}
	if _, err := p.expect("{", "interface body"); err != nil {
		return nil, err
	}
	var methods []*ast.MethodDeclaration
	for !p.check("}") {
		if p.atEOF() {
			return nil, p.errorAt(p.peek(), "unterminated interface body for '%s'", id.Name)
		}
		if p.match(";") {
			continue
		}
		memberStart := p.peek().Start
		memberAnnotations, err := p.parseAnnotations()
		if err != nil {
			return nil, err
		}
		modifiers := p.parseMemberModifiers()
		name, err := p.expectIdentifier("method name")
		if err != nil {
			return nil, err
		}
		method, err := p.parseMethodRest(name, modifiers)
		if err != nil {
			return nil, err
		}
		method.Annotations = memberAnnotations
		methods = append(methods, finish(p, method, memberStart))
	}
	p.advance()

	decl := ast.NewInterfaceDeclaration(id, typeParams, extends, methods)
	decl.Annotations = annotations
	decl.Native = p.native
	return finish(p, decl, start), nil
}

package parser

import (
	"errors"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

// Binary operator precedence, loosest first.
var infixOperatorSets = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<", "<=", ">", ">="},
	{"+", "-"},
	{"*", "/", "%"},
}

// ErrIncomplete marks errors caused by input that ended too early. Interactive
// front ends use it to keep reading lines.
var ErrIncomplete = errors.New("parser: incomplete input")

func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

// Parser is a recursive-descent parser over one token stream.
type Parser struct {
	source string
	tokens []Token
	pos    int
	native bool
}

// ParseProgram parses one source file into a Program.
func ParseProgram(source, src string) (*ast.Program, error) {
	return parse(source, src, false)
}

// ParseNative parses a native signature fragment. Class and interface
// declarations are flagged native and may omit method bodies.
func ParseNative(source, src string) (*ast.Program, error) {
	return parse(source, src, true)
}

func parse(source, src string, native bool) (*ast.Program, error) {
	tokens, err := Tokenize(source, src)
	if err != nil {
		return nil, err
	}
	p := &Parser{source: source, tokens: tokens, native: native}
	return p.parseProgram()
}

// ParseSignature parses a free function signature such as
// `print(value: mixed): void`. The result has no body.
func ParseSignature(source, src string) (*ast.MethodDeclaration, error) {
	tokens, err := Tokenize(source, src)
	if err != nil {
		return nil, err
	}
	p := &Parser{source: source, tokens: tokens, native: true}
	start := p.peek().Start
	name, err := p.expectIdentifier("function name")
	if err != nil {
		return nil, err
	}
	method, err := p.parseMethodRest(name, nil)
	if err != nil {
		return nil, err
	}
	if method.Body != nil {
		return nil, p.errorAt(p.previous(), "function signature '%s' must not have a body", name.Name)
	}
	if !p.atEOF() {
		return nil, p.errorAt(p.peek(), "unexpected %s after signature", describe(p.peek()))
	}
	return finish(p, method, start), nil
}

// ParseExpression parses a standalone expression, for tools that evaluate
// fragments.
func ParseExpression(source, src string) (ast.Expression, error) {
	tokens, err := Tokenize(source, src)
	if err != nil {
		return nil, err
	}
	p := &Parser{source: source, tokens: tokens}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.atEOF() {
		return nil, p.errorAt(p.peek(), "unexpected %s after expression", describe(p.peek()))
	}
	return expr, nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	var (
		imports = make([]*ast.ImportStatement, 0)
		body    = make([]ast.Statement, 0)
	)
	for !p.atEOF() {
		if p.match(";") {
			continue
		}
		if p.check("import") {
			imp, err := p.parseImport()
			if err != nil {
				return nil, err
			}
			imports = append(imports, imp)
			continue
		}
		stmt, err := p.parseTopLevel()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	program := ast.NewProgram(p.source, imports, body)
	ast.SetSpan(program, ast.Span{Source: p.source, Start: 0, End: p.peek().End})
	return program, nil
}

func (p *Parser) parseTopLevel() (ast.Statement, error) {
	if p.check("@") || p.check("class") || p.check("interface") || p.modifiersBeforeDeclaration() {
		start := p.peek().Start
		annotations, err := p.parseAnnotations()
		if err != nil {
			return nil, err
		}
		modifiers := p.parseDeclarationModifiers()
		switch {
		case p.check("class"):
			return p.parseClass(start, annotations, modifiers)
		case p.check("interface"):
			if len(modifiers) > 0 {
				return nil, p.errorAt(p.peek(), "interfaces take no modifiers")
			}
			return p.parseInterface(start, annotations)
		default:
			return nil, p.errorAt(p.peek(), "expected class or interface declaration, found %s", describe(p.peek()))
		}
	}
	return p.parseStatement()
}

// modifiersBeforeDeclaration reports whether the upcoming identifiers are
// modifiers introducing a class, as in `open class Animal`.
func (p *Parser) modifiersBeforeDeclaration() bool {
	i := 0
	for {
		tok := p.peekAt(i)
		if tok.Kind == TokenIdentifier && ast.IsModifier(tok.Text) {
			i++
			continue
		}
		return i > 0 && tok.Kind == TokenKeyword && (tok.Text == "class" || tok.Text == "interface")
	}
}

func (p *Parser) parseDeclarationModifiers() ast.Modifiers {
	var mods ast.Modifiers
	for p.peek().Kind == TokenIdentifier && ast.IsModifier(p.peek().Text) {
		mods = append(mods, ast.Modifier(p.advance().Text))
	}
	return mods
}

func (p *Parser) parseImport() (*ast.ImportStatement, error) {
	start := p.advance().Start
	var names []*ast.Identifier
	if p.match("{") {
		for {
			id, err := p.expectIdentifier("imported name")
			if err != nil {
				return nil, err
			}
			names = append(names, id)
			if !p.match(",") {
				break
			}
		}
		if _, err := p.expect("}", "import list"); err != nil {
			return nil, err
		}
		if !p.checkContextual("from") {
			return nil, p.errorAt(p.peek(), "expected 'from' after import list, found %s", describe(p.peek()))
		}
		p.advance()
		if p.peek().Kind != TokenString {
			return nil, p.errorAt(p.peek(), "expected module path string, found %s", describe(p.peek()))
		}
		path := p.advance().Value
		if path == "" {
			return nil, p.errorAt(p.previous(), "module path must not be empty")
		}
		p.match(";")
		return finish(p, ast.NewImportStatement(names, path), start), nil
	}
	for {
		id, err := p.expectIdentifier("native class name")
		if err != nil {
			return nil, err
		}
		names = append(names, id)
		if !p.match(",") {
			break
		}
	}
	p.match(";")
	return finish(p, ast.NewImportStatement(names, ""), start), nil
}

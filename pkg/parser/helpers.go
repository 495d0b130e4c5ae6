package parser

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
)

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) Token {
	idx := p.pos + n
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *Parser) previous() Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) atEOF() bool {
	return p.peek().Kind == TokenEOF
}

// check matches punctuation and keywords by text.
func (p *Parser) check(text string) bool {
	tok := p.peek()
	return (tok.Kind == TokenPunct || tok.Kind == TokenKeyword) && tok.Text == text
}

// checkContextual matches identifiers that act as keywords in one position
// (from, in, default, constructor).
func (p *Parser) checkContextual(word string) bool {
	tok := p.peek()
	return tok.Kind == TokenIdentifier && tok.Text == word
}

func (p *Parser) match(text string) bool {
	if p.check(text) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(text, context string) (Token, error) {
	if p.check(text) {
		return p.advance(), nil
	}
	return Token{}, p.errorAt(p.peek(), "expected '%s' in %s, found %s", text, context, describe(p.peek()))
}

func (p *Parser) expectIdentifier(context string) (*ast.Identifier, error) {
	tok := p.peek()
	if tok.Kind != TokenIdentifier {
		return nil, p.errorAt(tok, "expected %s, found %s", context, describe(tok))
	}
	p.advance()
	id := ast.NewIdentifier(tok.Text)
	ast.SetSpan(id, ast.Span{Source: p.source, Start: tok.Start, End: tok.End})
	return id, nil
}

func (p *Parser) errorAt(tok Token, format string, args ...any) error {
	err := diagnostics.New(diagnostics.KindParser, ast.Span{Source: p.source, Start: tok.Start, End: tok.End}, format, args...)
	if tok.Kind == TokenEOF {
		err.Cause = ErrIncomplete
	}
	return err
}

func describe(tok Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of input"
	case TokenString:
		return fmt.Sprintf("string %s", tok.Text)
	default:
		return fmt.Sprintf("'%s'", tok.Text)
	}
}

// finish stamps the node with a span from start to the end of the last consumed
// token.
func finish[T ast.Node](p *Parser, node T, start int) T {
	ast.SetSpan(node, ast.Span{Source: p.source, Start: start, End: p.previous().End})
	return node
}

package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenKeyword
	TokenNumber
	TokenString
	TokenPunct
)

func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenIdentifier:
		return "identifier"
	case TokenKeyword:
		return "keyword"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	default:
		return "punctuation"
	}
}

// Token is one lexeme. Value holds the decoded contents of string literals and
// equals Text otherwise.
type Token struct {
	Kind  TokenKind
	Text  string
	Value string
	Start int
	End   int
}

var keywords = map[string]bool{
	"class":      true,
	"interface":  true,
	"extends":    true,
	"implements": true,
	"new":        true,
	"this":       true,
	"super":      true,
	"let":        true,
	"if":         true,
	"else":       true,
	"match":      true,
	"foreach":    true,
	"return":     true,
	"import":     true,
	"true":       true,
	"false":      true,
	"null":       true,
}

// Longest operators first so that "==" wins over "=".
var punctuators = []string{
	"&&", "||", "==", "!=", "<=", ">=", "->",
	"(", ")", "{", "}", "[", "]", ",", ";", ":", ".", "?", "@",
	"=", "<", ">", "+", "-", "*", "/", "%", "!",
}

type lexer struct {
	source string
	src    string
	pos    int
	tokens []Token
}

// Tokenize splits src into tokens, terminated by a single EOF token.
func Tokenize(source, src string) ([]Token, error) {
	lx := &lexer{source: source, src: src}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.tokens, nil
}

func (lx *lexer) run() error {
	for {
		if err := lx.skipTrivia(); err != nil {
			return err
		}
		if lx.pos >= len(lx.src) {
			lx.tokens = append(lx.tokens, Token{Kind: TokenEOF, Start: lx.pos, End: lx.pos})
			return nil
		}
		ch, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		switch {
		case isIdentStart(ch):
			lx.lexIdentifier()
		case ch >= '0' && ch <= '9':
			lx.lexNumber()
		case ch == '"' || ch == '\'':
			if err := lx.lexString(byte(ch)); err != nil {
				return err
			}
		default:
			if !lx.lexPunct() {
				return lx.errorf(lx.pos, lx.pos+size, "unexpected character '%c'", ch)
			}
		}
	}
}

func (lx *lexer) errorf(start, end int, format string, args ...any) error {
	return diagnostics.New(diagnostics.KindToken, ast.Span{Source: lx.source, Start: start, End: end}, format, args...)
}

func (lx *lexer) skipTrivia() error {
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.pos++
		case strings.HasPrefix(lx.src[lx.pos:], "//"):
			end := strings.IndexByte(lx.src[lx.pos:], '\n')
			if end < 0 {
				lx.pos = len(lx.src)
			} else {
				lx.pos += end + 1
			}
		case strings.HasPrefix(lx.src[lx.pos:], "/*"):
			end := strings.Index(lx.src[lx.pos+2:], "*/")
			if end < 0 {
				return lx.errorf(lx.pos, len(lx.src), "unterminated block comment")
			}
			lx.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

func (lx *lexer) lexIdentifier() {
	start := lx.pos
	for lx.pos < len(lx.src) {
		ch, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !isIdentPart(ch) {
			break
		}
		lx.pos += size
	}
	text := lx.src[start:lx.pos]
	kind := TokenIdentifier
	if keywords[text] {
		kind = TokenKeyword
	}
	lx.tokens = append(lx.tokens, Token{Kind: kind, Text: text, Value: text, Start: start, End: lx.pos})
}

func (lx *lexer) lexNumber() {
	start := lx.pos
	digits := func() {
		for lx.pos < len(lx.src) && (isDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '_') {
			lx.pos++
		}
	}
	digits()
	if lx.pos+1 < len(lx.src) && lx.src[lx.pos] == '.' && isDigit(lx.src[lx.pos+1]) {
		lx.pos++
		digits()
	}
	if lx.pos < len(lx.src) && (lx.src[lx.pos] == 'e' || lx.src[lx.pos] == 'E') {
		next := lx.pos + 1
		if next < len(lx.src) && (lx.src[next] == '+' || lx.src[next] == '-') {
			next++
		}
		if next < len(lx.src) && isDigit(lx.src[next]) {
			lx.pos = next
			digits()
		}
	}
	text := lx.src[start:lx.pos]
	lx.tokens = append(lx.tokens, Token{Kind: TokenNumber, Text: text, Value: strings.ReplaceAll(text, "_", ""), Start: start, End: lx.pos})
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func (lx *lexer) lexString(quote byte) error {
	start := lx.pos
	lx.pos++
	var b strings.Builder
	for {
		if lx.pos >= len(lx.src) {
			return lx.errorf(start, lx.pos, "unterminated string literal")
		}
		ch := lx.src[lx.pos]
		switch ch {
		case quote:
			lx.pos++
			lx.tokens = append(lx.tokens, Token{Kind: TokenString, Text: lx.src[start:lx.pos], Value: b.String(), Start: start, End: lx.pos})
			return nil
		case '\n':
			return lx.errorf(start, lx.pos, "unterminated string literal")
		case '\\':
			if lx.pos+1 >= len(lx.src) {
				return lx.errorf(start, lx.pos+1, "unterminated string literal")
			}
			esc := lx.src[lx.pos+1]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '0':
				b.WriteByte(0)
			case '\\', '"', '\'':
				b.WriteByte(esc)
			default:
				return lx.errorf(lx.pos, lx.pos+2, "unknown escape sequence '\\%c'", esc)
			}
			lx.pos += 2
		default:
			b.WriteByte(ch)
			lx.pos++
		}
	}
}

func (lx *lexer) lexPunct() bool {
	rest := lx.src[lx.pos:]
	for _, p := range punctuators {
		if strings.HasPrefix(rest, p) {
			lx.tokens = append(lx.tokens, Token{Kind: TokenPunct, Text: p, Value: p, Start: lx.pos, End: lx.pos + len(p)})
			lx.pos += len(p)
			return true
		}
	}
	return false
}

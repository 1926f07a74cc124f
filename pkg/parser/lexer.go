package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dperalta86/chameleondb/pkg/schema"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokLParen
	tokRParen
	tokColon
	tokComma
	tokSemicolon
)

var punctuation = map[rune]tokenKind{
	'{': tokLBrace,
	'}': tokRBrace,
	'[': tokLBracket,
	']': tokRBracket,
	'(': tokLParen,
	')': tokRParen,
	':': tokColon,
	',': tokComma,
	';': tokSemicolon,
}

type token struct {
	kind tokenKind
	// text is the identifier, the punctuation character, the number as
	// written, or the decoded string literal.
	text string
	pos  schema.Position
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	case tokNumber:
		return "number " + t.text
	}
	return fmt.Sprintf("%q", t.text)
}

// lexer turns DSL text into tokens. Whitespace and comments are skipped.
type lexer struct {
	src  string
	file string
	off  int
	line int
	col  int
}

func newLexer(file, src string) *lexer {
	return &lexer{src: src, file: file, line: 1, col: 1}
}

func (l *lexer) pos() schema.Position {
	return schema.Position{File: l.file, Line: l.line, Column: l.col}
}

func (l *lexer) peekRune() rune {
	if l.off >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.off:])
	return r
}

func (l *lexer) peekRuneAt(n int) rune {
	off := l.off
	for i := 0; i < n; i++ {
		if off >= len(l.src) {
			return -1
		}
		_, size := utf8.DecodeRuneInString(l.src[off:])
		off += size
	}
	if off >= len(l.src) {
		return -1
	}
	r, _ := utf8.DecodeRuneInString(l.src[off:])
	return r
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpaceAndComments() error {
	for {
		r := l.peekRune()
		switch {
		case r == -1:
			return nil
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peekRuneAt(1) == '/':
			for r := l.peekRune(); r != -1 && r != '\n'; r = l.peekRune() {
				l.advance()
			}
		case r == '/' && l.peekRuneAt(1) == '*':
			start := l.pos()
			l.advance()
			l.advance()
			for {
				if l.peekRune() == -1 {
					return &ParseError{Pos: start, Message: "unterminated block comment"}
				}
				if l.peekRune() == '*' && l.peekRuneAt(1) == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
}

func (l *lexer) next() (token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return token{}, err
	}
	start := l.pos()
	r := l.peekRune()
	switch {
	case r == -1:
		return token{kind: tokEOF, pos: start}, nil
	case r == '_' || unicode.IsLetter(r):
		begin := l.off
		for r := l.peekRune(); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r); r = l.peekRune() {
			l.advance()
		}
		return token{kind: tokIdent, text: l.src[begin:l.off], pos: start}, nil
	case unicode.IsDigit(r) || (r == '-' && unicode.IsDigit(l.peekRuneAt(1))):
		return l.number(start)
	case r == '"' || r == '\'':
		return l.string(start)
	}
	if kind, ok := punctuation[r]; ok {
		l.advance()
		return token{kind: kind, text: string(r), pos: start}, nil
	}
	return token{}, &ParseError{Pos: start, Message: fmt.Sprintf("unexpected character %q", r)}
}

func (l *lexer) number(start schema.Position) (token, error) {
	begin := l.off
	if l.peekRune() == '-' {
		l.advance()
	}
	seenDot := false
	for {
		r := l.peekRune()
		if unicode.IsDigit(r) {
			l.advance()
			continue
		}
		if r == '.' && !seenDot && unicode.IsDigit(l.peekRuneAt(1)) {
			seenDot = true
			l.advance()
			continue
		}
		break
	}
	// exponent, as JSON numbers allow: 1e5, 2.5E-3
	if r := l.peekRune(); r == 'e' || r == 'E' {
		n := 1
		if s := l.peekRuneAt(1); s == '+' || s == '-' {
			n = 2
		}
		if unicode.IsDigit(l.peekRuneAt(n)) {
			for i := 0; i < n; i++ {
				l.advance()
			}
			for unicode.IsDigit(l.peekRune()) {
				l.advance()
			}
		}
	}
	return token{kind: tokNumber, text: l.src[begin:l.off], pos: start}, nil
}

func (l *lexer) string(start schema.Position) (token, error) {
	quote := l.advance()
	var b strings.Builder
	for {
		r := l.peekRune()
		switch r {
		case -1, '\n':
			return token{}, &ParseError{Pos: start, Message: "unterminated string literal"}
		case quote:
			l.advance()
			return token{kind: tokString, text: b.String(), pos: start}, nil
		case '\\':
			escPos := l.pos()
			l.advance()
			switch e := l.advance(); e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '\\', '"', '\'':
				b.WriteRune(e)
			default:
				return token{}, &ParseError{Pos: escPos, Message: fmt.Sprintf("unknown escape sequence \\%c", e)}
			}
		default:
			b.WriteRune(l.advance())
		}
	}
}

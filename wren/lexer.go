package wren

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: tokenizer for the script language
// ---------------------------------------------------------------------------

// Lexer tokenizes script source code. Newlines are significant: they
// separate statements and are emitted as TokenLine.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// skipSpace consumes spaces, tabs, and comments, but not newlines.
func (l *Lexer) skipSpace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar()
			l.readChar()
			depth := 1
			for depth > 0 && l.ch != 0 {
				if l.ch == '/' && l.peekChar() == '*' {
					depth++
					l.readChar()
				} else if l.ch == '*' && l.peekChar() == '/' {
					depth--
					l.readChar()
				} else if l.ch == '\n' {
					l.line++
				}
				l.readChar()
			}
		default:
			return
		}
	}
}

// twoChar emits a two-character token if the next char matches.
func (l *Lexer) twoChar(next rune, two, one TokenType, oneLit string) Token {
	line := l.line
	l.readChar()
	if l.ch == next {
		l.readChar()
		return Token{Type: two, Literal: oneLit + string(next), Line: line}
	}
	return Token{Type: one, Literal: oneLit, Line: line}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipSpace()

	line := l.line

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Line: line}

	case l.ch == '\n':
		l.line++
		l.readChar()
		return Token{Type: TokenLine, Literal: "\n", Line: line}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Line: line}
	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Line: line}
	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Line: line}
	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Line: line}
	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Line: line}
	case l.ch == '.':
		l.readChar()
		return Token{Type: TokenDot, Literal: ".", Line: line}
	case l.ch == '+':
		l.readChar()
		return Token{Type: TokenPlus, Literal: "+", Line: line}
	case l.ch == '-':
		l.readChar()
		return Token{Type: TokenMinus, Literal: "-", Line: line}
	case l.ch == '*':
		l.readChar()
		return Token{Type: TokenStar, Literal: "*", Line: line}
	case l.ch == '/':
		l.readChar()
		return Token{Type: TokenSlash, Literal: "/", Line: line}
	case l.ch == '%':
		l.readChar()
		return Token{Type: TokenPercent, Literal: "%", Line: line}
	case l.ch == '!':
		return l.twoChar('=', TokenNotEq, TokenBang, "!")
	case l.ch == '=':
		return l.twoChar('=', TokenEq, TokenAssign, "=")
	case l.ch == '<':
		return l.twoChar('=', TokenLessEq, TokenLess, "<")
	case l.ch == '>':
		return l.twoChar('=', TokenGreatEq, TokenGreater, ">")

	case l.ch == '&':
		if l.peekChar() == '&' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenAnd, Literal: "&&", Line: line}
		}
		l.readChar()
		return Token{Type: TokenError, Literal: "unexpected character '&'", Line: line}

	case l.ch == '|':
		if l.peekChar() == '|' {
			l.readChar()
			l.readChar()
			return Token{Type: TokenOr, Literal: "||", Line: line}
		}
		l.readChar()
		return Token{Type: TokenError, Literal: "unexpected character '|'", Line: line}

	case l.ch == '"':
		return l.readString()

	case unicode.IsDigit(l.ch):
		return l.readNumber()

	case l.ch == '_':
		return l.readField()

	case isIdentStart(l.ch):
		return l.readIdentifier()
	}

	ch := l.ch
	l.readChar()
	return Token{Type: TokenError, Literal: "unexpected character '" + string(ch) + "'", Line: line}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() Token {
	line := l.line
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	if kw, ok := keywords[lit]; ok {
		return Token{Type: kw, Literal: lit, Line: line}
	}
	return Token{Type: TokenIdentifier, Literal: lit, Line: line}
}

// readField reads an instance field name, underscore included.
func (l *Lexer) readField() Token {
	line := l.line
	start := l.pos
	l.readChar() // leading underscore
	for isIdentPart(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.pos]
	if lit == "_" {
		return Token{Type: TokenError, Literal: "field name expected after '_'", Line: line}
	}
	return Token{Type: TokenField, Literal: lit, Line: line}
}

// readNumber reads a numeric literal (decimal, optional fraction and
// exponent).
func (l *Lexer) readNumber() Token {
	line := l.line
	start := l.pos
	for unicode.IsDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && unicode.IsDigit(l.peekChar()) {
		l.readChar()
		for unicode.IsDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		save := l.pos
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		if unicode.IsDigit(l.ch) {
			for unicode.IsDigit(l.ch) {
				l.readChar()
			}
		} else {
			// Not an exponent after all; back out is not possible with a
			// forward-only lexer, so report it.
			_ = save
			return Token{Type: TokenError, Literal: "malformed exponent", Line: line}
		}
	}
	return Token{Type: TokenNumber, Literal: l.input[start:l.pos], Line: line}
}

// readString reads a double-quoted string with escape sequences.
func (l *Lexer) readString() Token {
	line := l.line
	l.readChar() // opening quote

	var b strings.Builder
	for l.ch != '"' {
		if l.ch == 0 {
			return Token{Type: TokenError, Literal: "unterminated string", Line: line}
		}
		if l.ch == '\n' {
			return Token{Type: TokenError, Literal: "newline in string", Line: line}
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			case '\\':
				b.WriteRune('\\')
			case '"':
				b.WriteRune('"')
			case '0':
				b.WriteRune(0)
			default:
				return Token{Type: TokenError, Literal: "invalid escape sequence", Line: line}
			}
			l.readChar()
			continue
		}
		b.WriteRune(l.ch)
		l.readChar()
	}
	l.readChar() // closing quote
	return Token{Type: TokenString, Literal: b.String(), Line: line}
}

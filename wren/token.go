package wren

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the script lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError
	TokenLine // statement-separating newline

	// Literals
	TokenNumber     // 42, 3.14, 1.5e10
	TokenString     // "hello"
	TokenIdentifier // foo, Bar
	TokenField      // _x (instance field)

	// Keywords
	TokenVar
	TokenClass
	TokenForeign
	TokenStatic
	TokenConstruct
	TokenImport
	TokenFor
	TokenIf
	TokenElse
	TokenWhile
	TokenReturn
	TokenBreak
	TokenTrue
	TokenFalse
	TokenNull

	// Operators and delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBrace   // {
	TokenRBrace   // }
	TokenComma    // ,
	TokenDot      // .
	TokenPlus     // +
	TokenMinus    // -
	TokenStar     // *
	TokenSlash    // /
	TokenPercent  // %
	TokenBang     // !
	TokenAssign   // =
	TokenEq       // ==
	TokenNotEq    // !=
	TokenLess     // <
	TokenGreater  // >
	TokenLessEq   // <=
	TokenGreatEq  // >=
	TokenAnd      // &&
	TokenOr       // ||
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenLine:       "NEWLINE",
	TokenNumber:     "NUMBER",
	TokenString:     "STRING",
	TokenIdentifier: "IDENTIFIER",
	TokenField:      "FIELD",
	TokenVar:        "var",
	TokenClass:      "class",
	TokenForeign:    "foreign",
	TokenStatic:     "static",
	TokenConstruct:  "construct",
	TokenImport:     "import",
	TokenFor:        "for",
	TokenIf:         "if",
	TokenElse:       "else",
	TokenWhile:      "while",
	TokenReturn:     "return",
	TokenBreak:      "break",
	TokenTrue:       "true",
	TokenFalse:      "false",
	TokenNull:       "null",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenComma:      ",",
	TokenDot:        ".",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenPercent:    "%",
	TokenBang:       "!",
	TokenAssign:     "=",
	TokenEq:         "==",
	TokenNotEq:      "!=",
	TokenLess:       "<",
	TokenGreater:    ">",
	TokenLessEq:     "<=",
	TokenGreatEq:    ">=",
	TokenAnd:        "&&",
	TokenOr:         "||",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

var keywords = map[string]TokenType{
	"var":       TokenVar,
	"class":     TokenClass,
	"foreign":   TokenForeign,
	"static":    TokenStatic,
	"construct": TokenConstruct,
	"import":    TokenImport,
	"for":       TokenFor,
	"if":        TokenIf,
	"else":      TokenElse,
	"while":     TokenWhile,
	"return":    TokenReturn,
	"break":     TokenBreak,
	"true":      TokenTrue,
	"false":     TokenFalse,
	"null":      TokenNull,
}

// Token is a single lexeme with its source position.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Type, t.Literal, t.Line)
}

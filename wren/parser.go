package wren

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent for the script language
// ---------------------------------------------------------------------------

// Parser builds an AST from a token stream. Parse errors are collected
// rather than aborting, so one pass reports everything it can.
type Parser struct {
	lex    *Lexer
	cur    Token
	peek   Token
	errors []*compileError

	// panicking suppresses cascading diagnostics until the parser
	// resynchronizes at a statement boundary.
	panicking bool
}

// NewParser creates a parser over the given source.
func NewParser(source string) *Parser {
	p := &Parser{lex: NewLexer(source)}
	p.advance()
	p.advance()
	return p
}

// Parse parses a whole module body. The returned statements are valid
// only if Errors is empty.
func (p *Parser) Parse() []Stmt {
	var stmts []Stmt
	p.skipLines()
	for p.cur.Type != TokenEOF {
		s := p.statement()
		if s != nil {
			stmts = append(stmts, s)
		}
		p.endStatement()
		p.skipLines()
	}
	return stmts
}

// Errors returns the parse diagnostics in source order.
func (p *Parser) Errors() []*compileError {
	return p.errors
}

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
	if p.peek.Type == TokenError {
		p.errorAt(p.peek.Line, "%s", p.peek.Literal)
	}
}

func (p *Parser) errorAt(line int, format string, args ...any) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.errors = append(p.errors, &compileError{
		line:    line,
		message: fmt.Sprintf(format, args...),
	})
}

// synchronize skips to the next statement boundary after an error.
func (p *Parser) synchronize() {
	p.panicking = false
	for p.cur.Type != TokenEOF && p.cur.Type != TokenLine && p.cur.Type != TokenRBrace {
		p.advance()
	}
}

func (p *Parser) skipLines() {
	for p.cur.Type == TokenLine {
		p.advance()
	}
}

// expect consumes a token of the given type or records an error.
func (p *Parser) expect(t TokenType, what string) Token {
	if p.cur.Type != t {
		p.errorAt(p.cur.Line, "expected %s, got %s", what, p.cur.Type)
		return p.cur
	}
	tok := p.cur
	p.advance()
	return tok
}

// match consumes the token if it has the given type.
func (p *Parser) match(t TokenType) bool {
	if p.cur.Type == t {
		p.advance()
		return true
	}
	return false
}

// endStatement requires a newline, EOF, or closing brace after a
// statement.
func (p *Parser) endStatement() {
	switch p.cur.Type {
	case TokenLine:
		p.advance()
	case TokenEOF, TokenRBrace:
		// fine
	default:
		p.errorAt(p.cur.Line, "expected newline after statement, got %s", p.cur.Type)
		p.synchronize()
	}
	p.panicking = false
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) statement() Stmt {
	switch p.cur.Type {
	case TokenVar:
		return p.varStatement()
	case TokenClass:
		return p.classStatement(false)
	case TokenForeign:
		p.advance()
		if p.cur.Type != TokenClass {
			p.errorAt(p.cur.Line, "expected 'class' after 'foreign'")
			p.synchronize()
			return nil
		}
		return p.classStatement(true)
	case TokenImport:
		return p.importStatement()
	case TokenIf:
		return p.ifStatement()
	case TokenWhile:
		return p.whileStatement()
	case TokenReturn:
		line := p.cur.Line
		p.advance()
		var value Expr
		if p.cur.Type != TokenLine && p.cur.Type != TokenEOF && p.cur.Type != TokenRBrace {
			value = p.expression()
		}
		return &ReturnStmt{Value: value, Line: line}
	case TokenBreak:
		line := p.cur.Line
		p.advance()
		return &BreakStmt{Line: line}
	default:
		line := p.cur.Line
		e := p.expression()
		if e == nil {
			p.synchronize()
			return nil
		}
		return &ExprStmt{E: e, Line: line}
	}
}

func (p *Parser) varStatement() Stmt {
	line := p.cur.Line
	p.advance()
	name := p.expect(TokenIdentifier, "variable name")
	var init Expr
	if p.match(TokenAssign) {
		init = p.expression()
	}
	return &VarStmt{Name: name.Literal, Init: init, Line: line}
}

func (p *Parser) importStatement() Stmt {
	line := p.cur.Line
	p.advance()
	mod := p.expect(TokenString, "module name string")
	stmt := &ImportStmt{Module: mod.Literal, Line: line}
	if p.match(TokenFor) {
		for {
			v := p.expect(TokenIdentifier, "imported variable name")
			stmt.Variables = append(stmt.Variables, v.Literal)
			if !p.match(TokenComma) {
				break
			}
		}
	}
	return stmt
}

func (p *Parser) ifStatement() Stmt {
	line := p.cur.Line
	p.advance()
	p.expect(TokenLParen, "'(' after 'if'")
	cond := p.expression()
	p.expect(TokenRParen, "')' after condition")
	then, _ := p.block()
	var els []Stmt
	p.skipLinesBeforeElse()
	if p.match(TokenElse) {
		if p.cur.Type == TokenIf {
			els = []Stmt{p.ifStatement()}
		} else {
			els, _ = p.block()
		}
	}
	return &IfStmt{Cond: cond, Then: then, Else: els, Line: line}
}

// skipLinesBeforeElse lets `else` start on the line after the closing
// brace of the then-branch.
func (p *Parser) skipLinesBeforeElse() {
	if p.cur.Type == TokenLine && p.peek.Type == TokenElse {
		p.advance()
	}
}

func (p *Parser) whileStatement() Stmt {
	line := p.cur.Line
	p.advance()
	p.expect(TokenLParen, "'(' after 'while'")
	cond := p.expression()
	p.expect(TokenRParen, "')' after condition")
	body, _ := p.block()
	return &WhileStmt{Cond: cond, Body: body, Line: line}
}

// block parses `{ stmts }` and reports whether the body was a single
// expression (which method dispatch treats as an implicit return).
func (p *Parser) block() ([]Stmt, bool) {
	p.expect(TokenLBrace, "'{'")
	var stmts []Stmt
	p.skipLines()
	for p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		s := p.statement()
		if s != nil {
			stmts = append(stmts, s)
		}
		p.endStatement()
		p.skipLines()
	}
	p.expect(TokenRBrace, "'}'")

	if len(stmts) == 1 {
		if _, ok := stmts[0].(*ExprStmt); ok {
			return stmts, true
		}
	}
	return stmts, false
}

// ---------------------------------------------------------------------------
// Class declarations
// ---------------------------------------------------------------------------

func (p *Parser) classStatement(foreign bool) Stmt {
	line := p.cur.Line
	p.advance() // 'class'
	name := p.expect(TokenIdentifier, "class name")

	stmt := &ClassStmt{Name: name.Literal, Foreign: foreign, Line: line}

	p.expect(TokenLBrace, "'{' before class body")
	p.skipLines()
	for p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		m := p.memberDecl()
		if m != nil {
			stmt.Members = append(stmt.Members, *m)
		}
		p.skipLines()
	}
	p.expect(TokenRBrace, "'}' after class body")
	return stmt
}

func (p *Parser) memberDecl() *MemberDecl {
	m := &MemberDecl{Line: p.cur.Line}

	if p.match(TokenForeign) {
		m.Foreign = true
	}
	if p.match(TokenStatic) {
		m.Static = true
	}
	if p.match(TokenConstruct) {
		m.Ctor = true
		if m.Foreign {
			p.errorAt(m.Line, "a constructor cannot be declared foreign")
		}
	}

	name := p.expect(TokenIdentifier, "method name")
	m.Name = name.Literal

	switch p.cur.Type {
	case TokenLParen:
		// Method: name(params)
		m.HasParens = true
		p.advance()
		if p.cur.Type != TokenRParen {
			for {
				param := p.expect(TokenIdentifier, "parameter name")
				m.Params = append(m.Params, param.Literal)
				if !p.match(TokenComma) {
					break
				}
			}
		}
		p.expect(TokenRParen, "')' after parameters")

	case TokenAssign:
		// Setter: name=(param)
		m.Setter = true
		p.advance()
		p.expect(TokenLParen, "'(' after '=' in setter")
		param := p.expect(TokenIdentifier, "setter parameter name")
		m.Params = []string{param.Literal}
		p.expect(TokenRParen, "')' after setter parameter")

	default:
		// Getter: bare name.
	}

	if m.Ctor && !m.HasParens {
		p.errorAt(m.Line, "constructor %q needs a parameter list", m.Name)
	}

	if m.Foreign {
		// Foreign declarations have no body.
		if p.cur.Type == TokenLBrace {
			p.errorAt(p.cur.Line, "foreign method %q cannot have a body", m.Name)
			p.block()
		}
	} else {
		m.Body, m.ExprBody = p.block()
	}

	if p.panicking {
		p.synchronize()
		return nil
	}
	return m
}

// ---------------------------------------------------------------------------
// Expressions, by descending precedence
// ---------------------------------------------------------------------------

func (p *Parser) expression() Expr {
	return p.assignment()
}

func (p *Parser) assignment() Expr {
	e := p.logicalOr()
	if p.cur.Type != TokenAssign {
		return e
	}
	line := p.cur.Line
	p.advance()
	value := p.assignment()

	switch target := e.(type) {
	case *Ident:
		return &AssignExpr{Target: target, Value: value, Line: line}
	case *FieldRef:
		return &AssignExpr{Target: target, Value: value, Line: line}
	case *CallExpr:
		// `recv.x = v` is a setter send.
		if !target.HasParens && len(target.Args) == 0 && !target.Setter {
			target.Setter = true
			target.Args = []Expr{value}
			return target
		}
	}
	p.errorAt(line, "invalid assignment target")
	return e
}

func (p *Parser) logicalOr() Expr {
	e := p.logicalAnd()
	for p.cur.Type == TokenOr {
		line := p.cur.Line
		p.advance()
		right := p.logicalAnd()
		e = &LogicalExpr{Op: TokenOr, Left: e, Right: right, Line: line}
	}
	return e
}

func (p *Parser) logicalAnd() Expr {
	e := p.equality()
	for p.cur.Type == TokenAnd {
		line := p.cur.Line
		p.advance()
		right := p.equality()
		e = &LogicalExpr{Op: TokenAnd, Left: e, Right: right, Line: line}
	}
	return e
}

func (p *Parser) equality() Expr {
	e := p.comparison()
	for p.cur.Type == TokenEq || p.cur.Type == TokenNotEq {
		op := p.cur.Type
		line := p.cur.Line
		p.advance()
		right := p.comparison()
		e = &BinaryExpr{Op: op, Left: e, Right: right, Line: line}
	}
	return e
}

func (p *Parser) comparison() Expr {
	e := p.term()
	for p.cur.Type == TokenLess || p.cur.Type == TokenGreater ||
		p.cur.Type == TokenLessEq || p.cur.Type == TokenGreatEq {
		op := p.cur.Type
		line := p.cur.Line
		p.advance()
		right := p.term()
		e = &BinaryExpr{Op: op, Left: e, Right: right, Line: line}
	}
	return e
}

func (p *Parser) term() Expr {
	e := p.factor()
	for p.cur.Type == TokenPlus || p.cur.Type == TokenMinus {
		op := p.cur.Type
		line := p.cur.Line
		p.advance()
		right := p.factor()
		e = &BinaryExpr{Op: op, Left: e, Right: right, Line: line}
	}
	return e
}

func (p *Parser) factor() Expr {
	e := p.unary()
	for p.cur.Type == TokenStar || p.cur.Type == TokenSlash || p.cur.Type == TokenPercent {
		op := p.cur.Type
		line := p.cur.Line
		p.advance()
		right := p.unary()
		e = &BinaryExpr{Op: op, Left: e, Right: right, Line: line}
	}
	return e
}

func (p *Parser) unary() Expr {
	if p.cur.Type == TokenBang || p.cur.Type == TokenMinus {
		op := p.cur.Type
		line := p.cur.Line
		p.advance()
		operand := p.unary()
		return &UnaryExpr{Op: op, Operand: operand, Line: line}
	}
	return p.call()
}

func (p *Parser) call() Expr {
	e := p.primary()
	for p.cur.Type == TokenDot {
		line := p.cur.Line
		p.advance()
		name := p.expect(TokenIdentifier, "method name after '.'")
		call := &CallExpr{Recv: e, Name: name.Literal, Line: line}
		if p.cur.Type == TokenLParen {
			call.HasParens = true
			p.advance()
			p.skipLines()
			if p.cur.Type != TokenRParen {
				for {
					call.Args = append(call.Args, p.expression())
					p.skipLines()
					if !p.match(TokenComma) {
						break
					}
					p.skipLines()
				}
			}
			p.expect(TokenRParen, "')' after arguments")
		}
		e = call
	}
	return e
}

func (p *Parser) primary() Expr {
	tok := p.cur
	switch tok.Type {
	case TokenNumber:
		p.advance()
		n, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorAt(tok.Line, "invalid number literal %q", tok.Literal)
		}
		return &NumLit{Value: n, Line: tok.Line}

	case TokenString:
		p.advance()
		return &StrLit{Value: tok.Literal, Line: tok.Line}

	case TokenTrue:
		p.advance()
		return &BoolLit{Value: true, Line: tok.Line}

	case TokenFalse:
		p.advance()
		return &BoolLit{Value: false, Line: tok.Line}

	case TokenNull:
		p.advance()
		return &NullLit{Line: tok.Line}

	case TokenIdentifier:
		p.advance()
		return &Ident{Name: tok.Literal, Line: tok.Line}

	case TokenField:
		p.advance()
		return &FieldRef{Name: tok.Literal, Line: tok.Line}

	case TokenLParen:
		p.advance()
		p.skipLines()
		e := p.expression()
		p.skipLines()
		p.expect(TokenRParen, "')' after expression")
		return e
	}

	p.errorAt(tok.Line, "expected expression, got %s", tok.Type)
	p.advance()
	return nil
}

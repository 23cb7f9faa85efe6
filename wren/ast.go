package wren

// ---------------------------------------------------------------------------
// AST nodes
// ---------------------------------------------------------------------------

// Stmt is a statement node.
type Stmt interface {
	StmtLine() int
}

// Expr is an expression node.
type Expr interface {
	ExprLine() int
}

// VarStmt declares a variable: `var name = init`. At the top level the
// variable becomes a module variable; inside a method body it is a local.
type VarStmt struct {
	Name string
	Init Expr // nil means null
	Line int
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	E    Expr
	Line int
}

// IfStmt is `if (cond) { ... } else { ... }`.
type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt // nil if absent
	Line int
}

// WhileStmt is `while (cond) { ... }`.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
	Line int
}

// ReturnStmt is `return [expr]`.
type ReturnStmt struct {
	Value Expr // nil means null
	Line  int
}

// BreakStmt is `break`.
type BreakStmt struct {
	Line int
}

// ImportStmt is `import "name" [for A, B]`.
type ImportStmt struct {
	Module    string
	Variables []string // empty for a bare import
	Line      int
}

// ClassStmt declares a class, possibly foreign.
type ClassStmt struct {
	Name    string
	Foreign bool
	Members []MemberDecl
	Line    int
}

// MemberDecl is one method, getter, setter, or constructor declaration
// inside a class body.
type MemberDecl struct {
	Name      string
	Static    bool
	Foreign   bool
	Ctor      bool
	Setter    bool
	HasParens bool
	Params    []string
	Body      []Stmt // nil for foreign declarations
	ExprBody  bool   // single-expression body returns its value
	Line      int
}

// Signature returns the canonical signature of the declared member:
// "name" for getters, "name=(_)" for setters, "name(_,..)" otherwise.
func (m *MemberDecl) Signature() string {
	return canonicalSignature(m.Name, len(m.Params), m.Setter, m.HasParens)
}

// NumLit is a numeric literal.
type NumLit struct {
	Value float64
	Line  int
}

// StrLit is a string literal.
type StrLit struct {
	Value string
	Line  int
}

// BoolLit is true or false.
type BoolLit struct {
	Value bool
	Line  int
}

// NullLit is the null literal.
type NullLit struct {
	Line int
}

// Ident references a variable, module variable, or class by name.
type Ident struct {
	Name string
	Line int
}

// FieldRef references an instance field (`_x`) of the enclosing receiver.
type FieldRef struct {
	Name string // includes the leading underscore
	Line int
}

// AssignExpr assigns to an identifier or field. Setter sends
// (`recv.x = v`) are represented as CallExpr with a setter signature.
type AssignExpr struct {
	Target Expr // *Ident or *FieldRef
	Value  Expr
	Line   int
}

// BinaryExpr is an arithmetic or comparison operation.
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
	Line  int
}

// LogicalExpr is a short-circuiting && or ||.
type LogicalExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
	Line  int
}

// UnaryExpr is `-expr` or `!expr`.
type UnaryExpr struct {
	Op      TokenType
	Operand Expr
	Line    int
}

// CallExpr sends a method to a receiver: getter (`recv.x`), setter
// (`recv.x = v`, Setter true, one argument), or call (`recv.m(a, b)`).
type CallExpr struct {
	Recv      Expr
	Name      string
	Args      []Expr
	Setter    bool
	HasParens bool
	Line      int
}

// Signature returns the canonical dispatch signature for this send.
func (c *CallExpr) Signature() string {
	return canonicalSignature(c.Name, len(c.Args), c.Setter, c.HasParens)
}

func (s *VarStmt) StmtLine() int    { return s.Line }
func (s *ExprStmt) StmtLine() int   { return s.Line }
func (s *IfStmt) StmtLine() int     { return s.Line }
func (s *WhileStmt) StmtLine() int  { return s.Line }
func (s *ReturnStmt) StmtLine() int { return s.Line }
func (s *BreakStmt) StmtLine() int  { return s.Line }
func (s *ImportStmt) StmtLine() int { return s.Line }
func (s *ClassStmt) StmtLine() int  { return s.Line }

func (e *NumLit) ExprLine() int      { return e.Line }
func (e *StrLit) ExprLine() int      { return e.Line }
func (e *BoolLit) ExprLine() int     { return e.Line }
func (e *NullLit) ExprLine() int     { return e.Line }
func (e *Ident) ExprLine() int       { return e.Line }
func (e *FieldRef) ExprLine() int    { return e.Line }
func (e *AssignExpr) ExprLine() int  { return e.Line }
func (e *BinaryExpr) ExprLine() int  { return e.Line }
func (e *LogicalExpr) ExprLine() int { return e.Line }
func (e *UnaryExpr) ExprLine() int   { return e.Line }
func (e *CallExpr) ExprLine() int    { return e.Line }

// Package jal defines the abstract syntax tree handed over by the JAL front end.
// The tree is already grouped according to the grammar's precedence table;
// code generation only has to preserve that grouping.
package jal

// Node is the base interface for all AST nodes
type Node interface {
	implJalNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	implJalExpr()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	implJalStmt()
}

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpAnd // logical and
	OpOr  // logical or
)

var binaryOpNames = []string{"+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&", "|", "^", "<<", ">>", "&&", "||"}

func (op BinaryOp) String() string {
	if int(op) >= 0 && int(op) < len(binaryOpNames) {
		return binaryOpNames[op]
	}
	return "?"
}

// ParseBinaryOp maps an operator spelling back to its tag.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	for i, name := range binaryOpNames {
		if name == s {
			return BinaryOp(i), true
		}
	}
	return 0, false
}

// IsComparison reports whether the operator yields a bit result.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe, OpAnd, OpOr:
		return true
	}
	return false
}

// UnaryOp represents unary operators
type UnaryOp int

const (
	OpNeg        UnaryOp = iota // -
	OpComplement                // ! (bitwise complement, logical on bits)
	OpNot                       // !! (logical not)
)

var unaryOpNames = []string{"-", "!", "!!"}

func (op UnaryOp) String() string {
	if int(op) >= 0 && int(op) < len(unaryOpNames) {
		return unaryOpNames[op]
	}
	return "?"
}

// ParseUnaryOp maps an operator spelling back to its tag.
func ParseUnaryOp(s string) (UnaryOp, bool) {
	for i, name := range unaryOpNames {
		if name == s {
			return UnaryOp(i), true
		}
	}
	return 0, false
}

// Mode is the declared passing mode of a parameter
type Mode int

const (
	ModeIn    Mode = iota // in
	ModeOut               // out
	ModeInOut             // in out
)

func (m Mode) String() string {
	switch m {
	case ModeOut:
		return "out"
	case ModeInOut:
		return "in out"
	}
	return "in"
}

// --- Expressions ---

// IntLit represents an integer literal
type IntLit struct {
	Value int64
}

// StrLit represents a string literal
type StrLit struct {
	Value string
}

// Ident represents a reference to a declared name
type Ident struct {
	Name string
}

// Paren represents an explicitly parenthesized expression
type Paren struct {
	X Expr
}

// Unary represents a unary expression
type Unary struct {
	Op UnaryOp
	X  Expr
}

// Binary represents a binary expression
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Call represents a procedure or function call
type Call struct {
	Name string
	Args []Expr
}

// Index represents an array element access: name[index]
type Index struct {
	Name  string
	Index Expr
}

// --- Statements ---

// VarSpec is one name in a variable declaration
type VarSpec struct {
	Name string
	Init Expr // nil when uninitialized
}

// VarDecl declares one or more variables of the same type
type VarDecl struct {
	Type Type
	Vars []VarSpec
}

// ConstDecl declares a named constant
type ConstDecl struct {
	Name  string
	Type  *Type // nil for a universal constant
	Value Expr
}

// Assign represents target = value
type Assign struct {
	Target Expr // Ident or Index
	Value  Expr
}

// Elsif is one elsif arm of an if statement
type Elsif struct {
	Cond Expr
	Body []Stmt
}

// If represents if/elsif/else
type If struct {
	Cond   Expr
	Then   []Stmt
	Elsifs []Elsif
	Else   []Stmt
}

// CaseClause maps one or more values to a body
type CaseClause struct {
	Values []Expr
	Body   []Stmt
}

// Case represents a case statement. A nil Otherwise means there is no
// otherwise arm; an empty non-nil slice is an explicit empty one.
type Case struct {
	Selector  Expr
	Clauses   []CaseClause
	Otherwise []Stmt
}

// For represents a bounded loop. With Start == nil it is the count form
// "for End using Var loop" running Var from 0 to End-1. Var may be empty.
type For struct {
	Var   string
	Start Expr
	End   Expr
	Step  Expr // nil means 1
	Body  []Stmt
}

// While represents a pre-test loop
type While struct {
	Cond Expr
	Body []Stmt
}

// Repeat represents repeat ... until cond
type Repeat struct {
	Body  []Stmt
	Until Expr
}

// Forever represents forever loop ... end loop
type Forever struct {
	Body []Stmt
}

// Exit represents "exit loop"
type Exit struct{}

// Block represents block ... end block
type Block struct {
	Body []Stmt
}

// Return represents a return statement
type Return struct {
	Value Expr // nil for procedures
}

// Param is a formal parameter
type Param struct {
	Name string
	Type Type
	Mode Mode
}

// ProcDef represents a procedure (Return == nil) or function definition
type ProcDef struct {
	Name   string
	Params []Param
	Return *Type
	Body   []Stmt
}

// IsFunction reports whether the definition returns a value.
func (p ProcDef) IsFunction() bool { return p.Return != nil }

// CallStmt represents a call used as a statement
type CallStmt struct {
	Call Call
}

// Program is the root of a translation unit
type Program struct {
	Body []Stmt
}

// Marker methods for interface implementation
func (IntLit) implJalNode() {}
func (IntLit) implJalExpr() {}

func (StrLit) implJalNode() {}
func (StrLit) implJalExpr() {}

func (Ident) implJalNode() {}
func (Ident) implJalExpr() {}

func (Paren) implJalNode() {}
func (Paren) implJalExpr() {}

func (Unary) implJalNode() {}
func (Unary) implJalExpr() {}

func (Binary) implJalNode() {}
func (Binary) implJalExpr() {}

func (Call) implJalNode() {}
func (Call) implJalExpr() {}

func (Index) implJalNode() {}
func (Index) implJalExpr() {}

func (VarDecl) implJalNode() {}
func (VarDecl) implJalStmt() {}

func (ConstDecl) implJalNode() {}
func (ConstDecl) implJalStmt() {}

func (Assign) implJalNode() {}
func (Assign) implJalStmt() {}

func (If) implJalNode() {}
func (If) implJalStmt() {}

func (Case) implJalNode() {}
func (Case) implJalStmt() {}

func (For) implJalNode() {}
func (For) implJalStmt() {}

func (While) implJalNode() {}
func (While) implJalStmt() {}

func (Repeat) implJalNode() {}
func (Repeat) implJalStmt() {}

func (Forever) implJalNode() {}
func (Forever) implJalStmt() {}

func (Exit) implJalNode() {}
func (Exit) implJalStmt() {}

func (Block) implJalNode() {}
func (Block) implJalStmt() {}

func (Return) implJalNode() {}
func (Return) implJalStmt() {}

func (ProcDef) implJalNode() {}
func (ProcDef) implJalStmt() {}

func (CallStmt) implJalNode() {}
func (CallStmt) implJalStmt() {}

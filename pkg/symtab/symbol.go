// Package symtab tracks declared JAL names while C code is generated:
// variables, constants, parameters with their passing mode, and the
// procedures and functions that own them.
package symtab

import (
	"github.com/jallib/jat/pkg/jal"
)

// Kind distinguishes the symbol variants
type Kind int

const (
	KindVariable Kind = iota
	KindConstant
	KindParam
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindParam:
		return "parameter"
	case KindFunction:
		return "procedure"
	}
	return "?"
}

// ScopeKind says where a symbol was declared
type ScopeKind int

const (
	Global ScopeKind = iota
	Local
)

func (s ScopeKind) String() string {
	if s == Global {
		return "global"
	}
	return "local"
}

// Mode is how an argument reaches the callee
type Mode int

const (
	ByValue Mode = iota
	ByReference
)

func (m Mode) String() string {
	if m == ByReference {
		return "by-reference"
	}
	return "by-value"
}

// ModeOf maps a declared parameter mode to its passing mode: "in" copies,
// "out" and "in out" pass the caller's storage.
func ModeOf(m jal.Mode) Mode {
	if m == jal.ModeIn {
		return ByValue
	}
	return ByReference
}

// Symbol is a declared name
type Symbol interface {
	Name() string
	Type() jal.Type
	Kind() Kind
	Scope() ScopeKind
	base() *symbolBase
}

type symbolBase struct {
	name    string
	typ     jal.Type
	scope   ScopeKind
	builtin bool
}

func (b *symbolBase) Name() string { return b.name }

func (b *symbolBase) Type() jal.Type { return b.typ }

func (b *symbolBase) Scope() ScopeKind { return b.scope }

func (b *symbolBase) base() *symbolBase { return b }

// Variable is a declared variable
type Variable struct {
	symbolBase
	Init jal.Expr
}

// NewVariable creates a variable symbol.
func NewVariable(name string, typ jal.Type) *Variable {
	return &Variable{symbolBase: symbolBase{name: name, typ: typ}}
}

func (*Variable) Kind() Kind { return KindVariable }

// Constant is a named constant. Scalar constants carry their folded
// value; string constants carry their text.
type Constant struct {
	symbolBase
	Value    int64
	Text     string
	IsString bool
}

// NewConstant creates a scalar constant symbol.
func NewConstant(name string, typ jal.Type, value int64) *Constant {
	return &Constant{symbolBase: symbolBase{name: name, typ: typ}, Value: value}
}

// NewStringConstant creates a string constant symbol.
func NewStringConstant(name, text string) *Constant {
	return &Constant{
		symbolBase: symbolBase{name: name, typ: jal.StringOf(len(text))},
		Text:       text,
		IsString:   true,
	}
}

func (*Constant) Kind() Kind { return KindConstant }

// Param is a formal parameter of a procedure or function
type Param struct {
	symbolBase
	Mode     Mode
	Declared jal.Mode
	Index    int
}

// NewParam creates a parameter symbol at position index.
func NewParam(name string, typ jal.Type, declared jal.Mode, index int) *Param {
	return &Param{
		symbolBase: symbolBase{name: name, typ: typ},
		Mode:       ModeOf(declared),
		Declared:   declared,
		Index:      index,
	}
}

func (*Param) Kind() Kind { return KindParam }

// Function is a procedure (Return == nil) or a function
type Function struct {
	symbolBase
	Params []*Param
	Return *jal.Type
}

// NewFunction creates a procedure or function symbol.
func NewFunction(name string, params []*Param, ret *jal.Type) *Function {
	fn := &Function{symbolBase: symbolBase{name: name}, Params: params, Return: ret}
	if ret != nil {
		fn.typ = *ret
	}
	return fn
}

func (*Function) Kind() Kind { return KindFunction }

// IsProcedure reports whether the function returns nothing.
func (f *Function) IsProcedure() bool { return f.Return == nil }

// Describe names the function the way diagnostics refer to it.
func (f *Function) Describe() string {
	if f.IsProcedure() {
		return "procedure " + f.name
	}
	return "function " + f.name
}

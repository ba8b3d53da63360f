package jatgen

import (
	"bytes"
	"testing"

	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

var (
	byteT  = jal.Scalar(jal.Byte)
	wordT  = jal.Scalar(jal.Word)
	bitT   = jal.Scalar(jal.Bit)
	sbyteT = jal.Scalar(jal.Sbyte)
)

func id(name string) jal.Ident { return jal.Ident{Name: name} }

func num(v int64) jal.IntLit { return jal.IntLit{Value: v} }

func bin(op jal.BinaryOp, l, r jal.Expr) jal.Binary {
	return jal.Binary{Op: op, Left: l, Right: r}
}

func call(name string, args ...jal.Expr) jal.Call {
	return jal.Call{Name: name, Args: args}
}

func assign(target string, value jal.Expr) jal.Assign {
	return jal.Assign{Target: id(target), Value: value}
}

func varDecl(typ jal.Type, names ...string) jal.VarDecl {
	d := jal.VarDecl{Type: typ}
	for _, n := range names {
		d.Vars = append(d.Vars, jal.VarSpec{Name: n})
	}
	return d
}

func constDecl(name string, value jal.Expr) jal.ConstDecl {
	return jal.ConstDecl{Name: name, Value: value}
}

func proc(name string, params []jal.Param, body ...jal.Stmt) jal.ProcDef {
	return jal.ProcDef{Name: name, Params: params, Body: body}
}

func function(name string, params []jal.Param, ret jal.Type, body ...jal.Stmt) jal.ProcDef {
	return jal.ProcDef{Name: name, Params: params, Return: &ret, Body: body}
}

func param(name string, typ jal.Type, mode jal.Mode) jal.Param {
	return jal.Param{Name: name, Type: typ, Mode: mode}
}

// generate translates body without the preamble and fails the test on error.
func generate(t *testing.T, opts Options, body ...jal.Stmt) string {
	t.Helper()
	out, err := tryGenerate(opts, body...)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	return out
}

func tryGenerate(opts Options, body ...jal.Stmt) (string, error) {
	opts.NoPreamble = true
	var buf bytes.Buffer
	err := New(&buf, opts).Generate(&jal.Program{Body: body})
	return buf.String(), err
}

// newTestContext returns a top-level context over a fresh table.
func newTestContext() (*context, *symtab.Table) {
	tab := symtab.New()
	return &context{syms: tab, out: &emitter{}, decls: &emitter{}}, tab
}

func mustDeclare(t *testing.T, tab *symtab.Table, scope symtab.ScopeKind, sym symtab.Symbol) {
	t.Helper()
	if err := tab.Declare(scope, sym); err != nil {
		t.Fatalf("Declare(%s) error: %v", sym.Name(), err)
	}
}

package symtab

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jallib/jat/pkg/ctypes"
	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
)

// ReservedPrefix starts every identifier the generator invents. Source
// declarations may not use it.
const ReservedPrefix = "_jat_"

var builtinBits = []struct {
	name  string
	value int64
}{
	{"true", 1}, {"false", 0},
	{"on", 1}, {"off", 0},
	{"high", 1}, {"low", 0},
}

type scope struct {
	kind  ScopeKind
	name  string
	block bool
	outer *scope
	syms  map[string]Symbol
	cids  map[string]Symbol // by C spelling
}

func newScope(kind ScopeKind, name string, outer *scope) *scope {
	return &scope{
		kind:  kind,
		name:  name,
		outer: outer,
		syms:  make(map[string]Symbol),
		cids:  make(map[string]Symbol),
	}
}

// Table holds the global scope, the scope of the function being
// generated and any block scopes opened inside it.
type Table struct {
	global *scope
	inner  *scope // innermost open scope; the global scope when none is open
	fn     *Function
}

// New creates a table whose global scope holds the built-in bit constants.
func New() *Table {
	t := &Table{global: newScope(Global, "global", nil)}
	t.inner = t.global
	for _, b := range builtinBits {
		c := NewConstant(b.name, jal.Scalar(jal.Bit), b.value)
		c.builtin = true
		t.global.syms[key(b.name)] = c
	}
	return t
}

// JAL identifiers are case-insensitive.
func key(name string) string { return strings.ToLower(name) }

// Declare adds sym to the global scope or to the innermost local scope.
// A name whose C spelling is already used by a different visible name is
// refused, since the two would meet in the generated C.
func (t *Table) Declare(kind ScopeKind, sym Symbol) error {
	name := sym.Name()
	cid := ctypes.Ident(name)
	if strings.HasPrefix(strings.ToLower(cid), ReservedPrefix) {
		return diag.New(diag.ErrReservedName, name, t.inner.name)
	}
	s := t.global
	if kind == Local {
		if t.inner == t.global {
			return diag.Errorf(diag.ErrInvalidStatement, name, t.global.name, "no local scope is open")
		}
		s = t.inner
	}
	if prev, ok := s.syms[key(name)]; ok {
		return diag.Errorf(diag.ErrDuplicateDeclaration, name, s.name, "already declared as %s", prev.Kind())
	}
	for o := s; o != nil; o = o.outer {
		if prev, ok := o.cids[cid]; ok && key(prev.Name()) != key(name) {
			return diag.Errorf(diag.ErrDuplicateDeclaration, name, s.name, "C name %s is already used by %s", cid, prev.Name())
		}
	}
	sym.base().scope = kind
	s.syms[key(name)] = sym
	s.cids[cid] = sym
	return nil
}

// Undeclare removes sym from the scope it was declared in. It undoes a
// Declare whose definition failed.
func (t *Table) Undeclare(sym Symbol) {
	k := key(sym.Name())
	for s := t.inner; s != nil; s = s.outer {
		if s.syms[k] == sym {
			delete(s.syms, k)
			delete(s.cids, ctypes.Ident(sym.Name()))
			return
		}
	}
}

// Lookup searches from the innermost scope outwards.
func (t *Table) Lookup(name string) (Symbol, bool) {
	k := key(name)
	for s := t.inner; s != nil; s = s.outer {
		if sym, ok := s.syms[k]; ok {
			return sym, true
		}
	}
	return nil, false
}

// LookupFunction finds a procedure or function. They only live globally.
func (t *Table) LookupFunction(name string) (*Function, bool) {
	fn, ok := t.global.syms[key(name)].(*Function)
	return fn, ok
}

// EnterFunction opens the local scope of fn and declares its parameters
// there. The returned exit function closes it and is meant to be deferred.
func (t *Table) EnterFunction(fn *Function) (exit func(), err error) {
	if t.fn != nil || t.inner != t.global {
		return nil, diag.Errorf(diag.ErrInvalidStatement, fn.Name(), t.inner.name, "nested definitions are not supported")
	}
	t.inner = newScope(Local, fn.Describe(), t.global)
	t.fn = fn
	for _, p := range fn.Params {
		if err := t.Declare(Local, p); err != nil {
			t.ExitFunction()
			return nil, err
		}
	}
	return t.ExitFunction, nil
}

// ExitFunction drops the function scope and every block inside it.
func (t *Table) ExitFunction() {
	t.inner = t.global
	t.fn = nil
}

// EnterBlock opens a nested scope on top of the current one. The
// returned exit function restores the enclosing scope.
func (t *Table) EnterBlock() (exit func()) {
	s := newScope(Local, "block in "+t.inner.name, t.inner)
	s.block = true
	t.inner = s
	return t.ExitBlock
}

// ExitBlock closes the innermost block scope, if any.
func (t *Table) ExitBlock() {
	if t.inner.block {
		t.inner = t.inner.outer
	}
}

// Current returns the function whose body is being generated, or nil.
func (t *Table) Current() *Function { return t.fn }

// InLocalScope reports whether declarations would go to a local scope.
func (t *Table) InLocalScope() bool { return t.inner != t.global }

// ScopeName describes the innermost scope for diagnostics.
func (t *Table) ScopeName() string { return t.inner.name }

// Dump writes the open scopes, innermost first, with their symbols sorted
// by name. Built-in constants are left out.
func (t *Table) Dump(w io.Writer) {
	for s := t.inner; s != nil; s = s.outer {
		fmt.Fprintf(w, "%s:\n", s.name)
		keys := make([]string, 0, len(s.syms))
		for k, sym := range s.syms {
			if sym.base().builtin {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s\n", Describe(s.syms[k]))
		}
	}
}

// Describe renders one symbol in JAL-like notation.
func Describe(sym Symbol) string {
	switch s := sym.(type) {
	case *Variable:
		return fmt.Sprintf("var %s %s", s.typ, s.name)
	case *Constant:
		if s.IsString {
			return fmt.Sprintf("const %s %s = %q", s.typ, s.name, s.Text)
		}
		return fmt.Sprintf("const %s %s = %d", s.typ, s.name, s.Value)
	case *Param:
		return fmt.Sprintf("param %s %s %s (%s)", s.typ, s.Declared, s.name, s.Mode)
	case *Function:
		var b strings.Builder
		b.WriteString(s.Describe())
		if len(s.Params) > 0 {
			b.WriteString("(")
			for i, p := range s.Params {
				if i > 0 {
					b.WriteString(", ")
				}
				fmt.Fprintf(&b, "%s %s %s", p.typ, p.Declared, p.name)
			}
			b.WriteString(")")
		}
		if s.Return != nil {
			fmt.Fprintf(&b, " return %s", *s.Return)
		}
		return b.String()
	}
	return sym.Name()
}

package jatgen

import (
	"strconv"

	"github.com/jallib/jat/pkg/ctypes"
	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

// access renders a named symbol in each position it can appear in.
// A nil write means the symbol cannot be assigned; a nil addr means the
// value has to be copied into a temporary before its address is taken.
type access struct {
	read  func(sym symtab.Symbol) string
	write func(sym symtab.Symbol) string
	addr  func(sym symtab.Symbol) string
}

type refKey struct {
	kind  symtab.Kind
	mode  symtab.Mode
	array bool
}

func plain(sym symtab.Symbol) string     { return ctypes.Ident(sym.Name()) }
func addressOf(sym symtab.Symbol) string { return "&" + ctypes.Ident(sym.Name()) }
func indirect(sym symtab.Symbol) string  { return "(*" + ctypes.Ident(sym.Name()) + ")" }

func constValue(sym symtab.Symbol) string {
	return constText(sym.(*symtab.Constant))
}

// derefTable decides how every kind of name is read, written and passed
// by reference. By-reference parameters already hold an address, so they
// are dereferenced when used and forwarded as is.
var derefTable = map[refKey]access{
	{symtab.KindVariable, symtab.ByValue, false}:  {read: plain, write: plain, addr: addressOf},
	{symtab.KindParam, symtab.ByValue, false}:     {read: plain, write: plain, addr: addressOf},
	{symtab.KindParam, symtab.ByReference, false}: {read: indirect, write: indirect, addr: plain},
	{symtab.KindVariable, symtab.ByValue, true}:   {read: plain, addr: plain},
	{symtab.KindParam, symtab.ByValue, true}:      {read: plain, addr: plain},
	{symtab.KindParam, symtab.ByReference, true}:  {read: plain, addr: plain},
	{symtab.KindConstant, symtab.ByValue, false}:  {read: constValue},
	{symtab.KindConstant, symtab.ByValue, true}:   {read: plain, addr: plain},
}

func keyOf(sym symtab.Symbol) refKey {
	k := refKey{kind: sym.Kind(), array: sym.Type().IsArray()}
	if p, ok := sym.(*symtab.Param); ok {
		k.mode = p.Mode
	}
	return k
}

// resolve finds a declared name or fails with ErrUndeclared.
func (c *context) resolve(name string) (symtab.Symbol, error) {
	sym, ok := c.syms.Lookup(name)
	if !ok {
		return nil, diag.New(diag.ErrUndeclared, name, c.scope())
	}
	return sym, nil
}

// access resolves a name that denotes storage or a constant.
func (c *context) access(name string) (symtab.Symbol, access, error) {
	sym, err := c.resolve(name)
	if err != nil {
		return nil, access{}, err
	}
	a, ok := derefTable[keyOf(sym)]
	if !ok {
		return sym, access{}, diag.Errorf(diag.ErrInvalidStatement, name, c.scope(), "%s %s cannot be used as a value here", sym.Kind(), sym.Name())
	}
	return sym, a, nil
}

// dereference renders a read of name.
func (c *context) dereference(name string) (string, error) {
	sym, a, err := c.access(name)
	if err != nil {
		return "", err
	}
	return a.read(sym), nil
}

// callMethod returns how the argument at position i reaches fn. It only
// depends on the callee's declaration.
func callMethod(fn *symtab.Function, i int) (symtab.Mode, error) {
	if i < 0 || i >= len(fn.Params) {
		return symtab.ByValue, diag.Errorf(diag.ErrCallMismatch, fn.Name(), "", "no parameter at position %d", i+1)
	}
	return fn.Params[i].Mode, nil
}

// constText renders a scalar constant as a C literal.
func constText(k *symtab.Constant) string {
	if k.Type().Tag == jal.Bit {
		if k.Value != 0 {
			return "true"
		}
		return "false"
	}
	return strconv.FormatInt(k.Value, 10)
}

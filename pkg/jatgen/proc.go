package jatgen

import (
	"strings"

	"github.com/jallib/jat/pkg/ctypes"
	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

// paramDecl renders one formal parameter. By-reference scalars become
// pointers; arrays are passed as arrays whatever their mode.
func paramDecl(p *symtab.Param) (string, error) {
	ct, err := ctypes.FromJAL(p.Type())
	if err != nil {
		return "", err
	}
	if p.Mode == symtab.ByReference && !p.Type().IsArray() {
		ct = ctypes.Pointer(ct)
	}
	return ctypes.Declarator(ct, ctypes.Ident(p.Name())), nil
}

// genProcDef declares the procedure or function globally, so later code
// and its own body can call it, then generates its body into e. A
// definition that fails is removed from the table again.
func (g *Generator) genProcDef(def jal.ProcDef, e *emitter) (err error) {
	params := make([]*symtab.Param, len(def.Params))
	decls := make([]string, len(def.Params))
	for i, p := range def.Params {
		params[i] = symtab.NewParam(p.Name, p.Type, p.Mode, i)
		d, err := paramDecl(params[i])
		if err != nil {
			return err
		}
		decls[i] = d
	}

	ret := ctypes.Void()
	if def.Return != nil {
		if def.Return.IsArray() {
			return diag.Errorf(diag.ErrUnmappedType, def.Name, g.syms.ScopeName(), "functions cannot return %s", *def.Return)
		}
		ct, err := ctypes.FromJAL(*def.Return)
		if err != nil {
			return err
		}
		ret = ct
	}

	fn := symtab.NewFunction(def.Name, params, def.Return)
	if err := g.syms.Declare(symtab.Global, fn); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			g.syms.Undeclare(fn)
		}
	}()
	exit, err := g.syms.EnterFunction(fn)
	if err != nil {
		return err
	}
	defer exit()

	c := g.newContext(fn, e)
	signature := "void"
	if len(decls) > 0 {
		signature = strings.Join(decls, ", ")
	}
	e.line(0, "%s %s(%s) {", ret, ctypes.Ident(fn.Name()), signature)
	if err := c.genStmts(def.Body, 1); err != nil {
		return err
	}
	e.line(0, "}")
	g.next = c.next
	return nil
}

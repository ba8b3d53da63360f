package jatgen

import (
	"github.com/jallib/jat/pkg/ctypes"
	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

func (c *context) genVarDecl(d jal.VarDecl, indent int) error {
	if d.Type.Tag == jal.Array && d.Type.Len == 0 {
		return diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "open arrays are only allowed as parameters")
	}
	ct, err := ctypes.FromJAL(d.Type)
	if err != nil {
		return err
	}
	// a batch is declared whole or not at all
	var done []symtab.Symbol
	for _, v := range d.Vars {
		sym, err := c.genVar(d.Type, ct, v, indent)
		if err != nil {
			for _, prev := range done {
				c.syms.Undeclare(prev)
			}
			return err
		}
		done = append(done, sym)
	}
	return nil
}

// genVar declares one variable. Globals go to file scope; a global whose
// initializer is not constant is assigned in main at its source position.
func (c *context) genVar(typ jal.Type, ct ctypes.Type, v jal.VarSpec, indent int) (*symtab.Variable, error) {
	var init exprResult
	constInit := true
	if v.Init != nil {
		if typ.IsArray() {
			lit, ok := v.Init.(jal.StrLit)
			if !ok || typ.Tag != jal.String {
				return nil, diag.Errorf(diag.ErrInvalidStatement, v.Name, c.scope(), "only strings can be initialized from a literal")
			}
			if len(lit.Value) > typ.Len {
				return nil, diag.Errorf(diag.ErrInvalidStatement, v.Name, c.scope(), "literal of %d characters does not fit %s", len(lit.Value), typ)
			}
		} else {
			_, constInit = c.foldConst(v.Init)
		}
		var err error
		if init, err = c.genExpr(v.Init); err != nil {
			return nil, err
		}
	}

	global := !c.syms.InLocalScope()
	scope := symtab.Local
	if global {
		scope = symtab.Global
	}
	sym := symtab.NewVariable(v.Name, typ)
	sym.Init = v.Init
	if err := c.syms.Declare(scope, sym); err != nil {
		return nil, err
	}

	name := ctypes.Ident(v.Name)
	decl := ctypes.Declarator(ct, name)
	switch {
	case v.Init == nil && global:
		c.decls.line(0, "%s;", decl)
	case v.Init == nil:
		c.out.line(indent, "%s;", decl)
	case global && constInit:
		c.decls.line(0, "%s = %s;", decl, init.text)
	case global:
		c.decls.line(0, "%s;", decl)
		c.out.stmts(indent, init.stmts)
		c.out.line(indent, "%s = %s;", name, init.text)
	default:
		c.out.stmts(indent, init.stmts)
		c.out.line(indent, "%s = %s;", decl, init.text)
	}
	return sym, nil
}

// genConstDecl folds the value at declaration. Uses of the constant
// inline the value; the declaration keeps the name visible in C.
func (c *context) genConstDecl(d jal.ConstDecl, indent int) error {
	global := !c.syms.InLocalScope()
	scope, storage, out, level := symtab.Local, "const", c.out, indent
	if global {
		scope, storage, out, level = symtab.Global, "static const", c.decls, 0
	}

	if lit, ok := d.Value.(jal.StrLit); ok {
		if err := c.syms.Declare(scope, symtab.NewStringConstant(d.Name, lit.Value)); err != nil {
			return err
		}
		out.line(level, "%s char %s[] = %s;", storage, ctypes.Ident(d.Name), cString(lit.Value))
		return nil
	}

	v, ok := c.foldConst(d.Value)
	if !ok {
		return diag.New(diag.ErrNotConstant, d.Name, c.scope())
	}
	typ := jal.Scalar(ctypes.UniversalTag(v))
	if d.Type != nil {
		if d.Type.IsArray() {
			return diag.Errorf(diag.ErrInvalidStatement, d.Name, c.scope(), "constant of type %s needs a string literal", d.Type)
		}
		typ = *d.Type
	}
	if !ctypes.Fits(v, typ.Tag) {
		return diag.Errorf(diag.ErrInvalidStatement, d.Name, c.scope(), "value %d does not fit %s", v, typ)
	}
	ct, err := ctypes.FromJAL(typ)
	if err != nil {
		return err
	}
	k := symtab.NewConstant(d.Name, typ, v)
	if err := c.syms.Declare(scope, k); err != nil {
		return err
	}
	out.line(level, "%s %s = %s;", storage, ctypes.Declarator(ct, ctypes.Ident(d.Name)), constText(k))
	return nil
}

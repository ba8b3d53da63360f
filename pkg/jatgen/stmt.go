package jatgen

import (
	"fmt"

	"github.com/jallib/jat/pkg/ctypes"
	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

// genBody generates a nested statement list in its own block scope.
func (c *context) genBody(body []jal.Stmt, indent int) error {
	exit := c.syms.EnterBlock()
	defer exit()
	return c.genStmts(body, indent)
}

func (c *context) genStmts(body []jal.Stmt, indent int) error {
	for _, s := range body {
		if err := c.genStmt(s, indent); err != nil {
			return err
		}
	}
	return nil
}

func (c *context) genStmt(stmt jal.Stmt, indent int) error {
	switch s := stmt.(type) {
	case jal.VarDecl:
		return c.genVarDecl(s, indent)
	case jal.ConstDecl:
		return c.genConstDecl(s, indent)
	case jal.Assign:
		return c.genAssign(s, indent)
	case jal.If:
		return c.genIf(s, indent)
	case jal.Case:
		return c.genCase(s, indent)
	case jal.For:
		return c.genFor(s, indent)
	case jal.While:
		return c.genWhile(s, indent)
	case jal.Repeat:
		return c.genRepeat(s, indent)
	case jal.Forever:
		return c.genForever(s, indent)
	case jal.Exit:
		return c.genExit(indent)
	case jal.Block:
		c.out.line(indent, "{")
		if err := c.genBody(s.Body, indent+1); err != nil {
			return err
		}
		c.out.line(indent, "}")
		return nil
	case jal.Return:
		return c.genReturn(s, indent)
	case jal.CallStmt:
		return c.genCallStmt(s, indent)
	case jal.ProcDef:
		return diag.Errorf(diag.ErrInvalidStatement, s.Name, c.scope(), "nested definitions are not supported")
	}
	return diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "unhandled statement %T", stmt)
}

func (c *context) genAssign(s jal.Assign, indent int) error {
	lhs, err := c.genTarget(s.Target)
	if err != nil {
		return err
	}
	rhs, err := c.genExpr(s.Value)
	if err != nil {
		return err
	}
	c.out.stmts(indent, lhs.stmts)
	c.out.stmts(indent, rhs.stmts)
	c.out.line(indent, "%s = %s;", lhs.text, rhs.text)
	return nil
}

// genTarget renders the left-hand side of an assignment.
func (c *context) genTarget(target jal.Expr) (exprResult, error) {
	switch t := target.(type) {
	case jal.Paren:
		return c.genTarget(t.X)
	case jal.Ident:
		sym, a, err := c.access(t.Name)
		if err != nil {
			return exprResult{}, err
		}
		if sym.Kind() == symtab.KindConstant {
			return exprResult{}, diag.New(diag.ErrConstantReassignment, sym.Name(), c.scope())
		}
		if a.write == nil {
			return exprResult{}, diag.Errorf(diag.ErrInvalidStatement, sym.Name(), c.scope(), "whole-array assignment is not supported")
		}
		return exprResult{text: a.write(sym), prec: precPrimary}, nil
	case jal.Index:
		sym, err := c.resolve(t.Name)
		if err != nil {
			return exprResult{}, err
		}
		if sym.Kind() == symtab.KindConstant {
			return exprResult{}, diag.New(diag.ErrConstantReassignment, sym.Name(), c.scope())
		}
		return c.genIndex(t)
	}
	return exprResult{}, diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "cannot assign to %T", target)
}

// chainArm is one branch of an if chain. Its condition is generated
// when the chain reaches it.
type chainArm struct {
	cond func() (exprResult, error)
	body []jal.Stmt
}

func exprArm(c *context, cond jal.Expr, body []jal.Stmt) chainArm {
	return chainArm{cond: func() (exprResult, error) { return c.genExpr(cond) }, body: body}
}

func (c *context) genIf(s jal.If, indent int) error {
	arms := []chainArm{exprArm(c, s.Cond, s.Then)}
	for _, e := range s.Elsifs {
		arms = append(arms, exprArm(c, e.Cond, e.Body))
	}
	return c.genChain(arms, s.Else, indent)
}

// genChain writes an if chain with at least one arm.
func (c *context) genChain(arms []chainArm, els []jal.Stmt, indent int) error {
	cond, err := arms[0].cond()
	if err != nil {
		return err
	}
	c.out.stmts(indent, cond.stmts)
	c.out.line(indent, "if (%s) {", cond.text)
	if err := c.genBody(arms[0].body, indent+1); err != nil {
		return err
	}
	return c.genElse(arms[1:], els, indent)
}

// genElse continues an if chain after the body of the previous branch and
// closes it. An arm whose condition hoists statements is nested in an
// else block so those statements only run when the arm is reached.
func (c *context) genElse(arms []chainArm, els []jal.Stmt, indent int) error {
	if len(arms) == 0 {
		if len(els) > 0 {
			c.out.line(indent, "} else {")
			if err := c.genBody(els, indent+1); err != nil {
				return err
			}
		}
		c.out.line(indent, "}")
		return nil
	}

	arm := arms[0]
	cond, err := arm.cond()
	if err != nil {
		return err
	}
	if len(cond.stmts) == 0 {
		c.out.line(indent, "} else if (%s) {", cond.text)
		if err := c.genBody(arm.body, indent+1); err != nil {
			return err
		}
		return c.genElse(arms[1:], els, indent)
	}

	c.out.line(indent, "} else {")
	c.out.stmts(indent+1, cond.stmts)
	c.out.line(indent+1, "if (%s) {", cond.text)
	if err := c.genBody(arm.body, indent+2); err != nil {
		return err
	}
	if err := c.genElse(arms[1:], els, indent+1); err != nil {
		return err
	}
	c.out.line(indent, "}")
	return nil
}

// genCase lowers to a switch when every value is a distinct constant and
// to an if chain on a temporary otherwise. Clauses are tried in source
// order and a missing otherwise does nothing.
func (c *context) genCase(s jal.Case, indent int) error {
	sel, err := c.genExpr(s.Selector)
	if err != nil {
		return err
	}

	values := make([][]int64, len(s.Clauses))
	seen := make(map[int64]bool)
	switchable := true
	for i, cl := range s.Clauses {
		for _, v := range cl.Values {
			n, ok := c.foldConst(v)
			if !ok || seen[n] {
				switchable = false
				break
			}
			seen[n] = true
			values[i] = append(values[i], n)
		}
	}
	if switchable {
		return c.genSwitch(s, sel, values, indent)
	}
	return c.genCaseChain(s, sel, indent)
}

func (c *context) genSwitch(s jal.Case, sel exprResult, values [][]int64, indent int) error {
	c.out.stmts(indent, sel.stmts)
	c.out.line(indent, "switch (%s) {", sel.text)
	c.switches++
	defer func() { c.switches-- }()

	arm := func(labels []string, body []jal.Stmt) error {
		for i, l := range labels {
			if i < len(labels)-1 {
				c.out.line(indent, "%s:", l)
			} else {
				c.out.line(indent, "%s: {", l)
			}
		}
		if err := c.genBody(body, indent+1); err != nil {
			return err
		}
		c.out.line(indent+1, "break;")
		c.out.line(indent, "}")
		return nil
	}

	for i, cl := range s.Clauses {
		if len(values[i]) == 0 {
			continue
		}
		labels := make([]string, len(values[i]))
		for j, v := range values[i] {
			labels[j] = "case " + literal(v).text
		}
		if err := arm(labels, cl.Body); err != nil {
			return err
		}
	}
	if s.Otherwise != nil {
		if err := arm([]string{"default"}, s.Otherwise); err != nil {
			return err
		}
	}
	c.out.line(indent, "}")
	return nil
}

func (c *context) genCaseChain(s jal.Case, sel exprResult, indent int) error {
	typ := c.typeOf(s.Selector)
	if typ.IsArray() {
		return diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "case selector of type %s", typ)
	}
	ct, err := ctypes.FromJAL(typ)
	if err != nil {
		return err
	}
	tmp := c.newTemp()
	c.out.stmts(indent, sel.stmts)
	c.out.line(indent, "%s = %s;", ctypes.Declarator(ct, tmp), sel.text)

	var arms []chainArm
	for _, cl := range s.Clauses {
		if len(cl.Values) == 0 {
			continue
		}
		values := cl.Values
		arms = append(arms, chainArm{body: cl.Body, cond: func() (exprResult, error) {
			var cond exprResult
			for i, v := range values {
				r, err := c.genExpr(v)
				if err != nil {
					return exprResult{}, err
				}
				eq := exprResult{text: tmp + " == " + operand(r, precEq+1), prec: precEq, stmts: r.stmts}
				if i == 0 {
					cond = eq
				} else {
					cond = c.logical(jal.OpOr, cond, eq)
				}
			}
			return cond, nil
		}})
	}

	if len(arms) > 0 {
		return c.genChain(arms, s.Otherwise, indent)
	}
	if s.Otherwise != nil {
		c.out.line(indent, "{")
		if err := c.genBody(s.Otherwise, indent+1); err != nil {
			return err
		}
		c.out.line(indent, "}")
	}
	return nil
}

// genFor lowers a bounded loop. The end bound is evaluated once and the
// induction variable lives in the loop's own scope. When stepping past
// the end could wrap the counter, the loop leaves through a test after
// the body instead of relying on the comparison in the header.
func (c *context) genFor(s jal.For, indent int) error {
	start := literal(0)
	var err error
	if s.Start != nil {
		if start, err = c.genExpr(s.Start); err != nil {
			return err
		}
	}

	step := int64(1)
	if s.Step != nil {
		k, ok := c.foldConst(s.Step)
		if !ok {
			return diag.Errorf(diag.ErrNotConstant, s.Var, c.scope(), "loop step must be constant")
		}
		if k == 0 {
			return diag.Errorf(diag.ErrInvalidStatement, s.Var, c.scope(), "loop step is zero")
		}
		step = k
	}

	typ, err := c.inductionType(s)
	if err != nil {
		return err
	}
	ct, err := ctypes.FromJAL(typ)
	if err != nil {
		return err
	}
	lo, hi, _ := ctypes.Range(typ.Tag)

	c.out.stmts(indent, start.stmts)
	end, err := c.genExpr(s.End)
	if err != nil {
		return err
	}
	endVal, endConst := c.foldConst(s.End)
	if !endConst {
		tmp := c.newTemp()
		c.out.stmts(indent, end.stmts)
		c.out.line(indent, "%s = %s;", ctypes.Declarator(ct, tmp), end.text)
		end = exprResult{text: tmp, prec: precPrimary}
	}

	exit := c.syms.EnterBlock()
	defer exit()
	name := s.Var
	if name == "" {
		name = c.newTemp()
	} else if err := c.syms.Declare(symtab.Local, symtab.NewVariable(name, typ)); err != nil {
		return err
	}
	name = ctypes.Ident(name)

	// the counter holds every bound, so a count loop and a loop whose
	// last step stays in range can test in the header
	k := step
	if k < 0 {
		k = -k
	}
	rel, guarded := "<=", false
	switch {
	case s.Start == nil:
		rel = "<"
	case step > 0:
		guarded = !endConst || endVal > hi-k
	default:
		rel = ">="
		guarded = !endConst || endVal < lo+k
	}
	cond := name + " " + rel + " " + operand(end, precRel+1)
	if guarded && endConst && (endVal == hi && step > 0 || endVal == lo && step < 0) {
		cond = ""
	}

	var incr string
	switch {
	case step == 1:
		incr = name + "++"
	case step == -1:
		incr = name + "--"
	case step > 0:
		incr = fmt.Sprintf("%s += %d", name, step)
	default:
		incr = fmt.Sprintf("%s -= %d", name, -step)
	}

	c.out.line(indent, "for (%s = %s; %s; %s) {", ctypes.Declarator(ct, name), start.text, cond, incr)
	f := c.pushLoop()
	if err := c.genStmts(s.Body, indent+1); err != nil {
		return err
	}
	if guarded {
		c.out.line(indent+1, "if (%s) break;", lastStep(name, end, step, typ))
	}
	c.out.line(indent, "}")
	c.popLoop(f, indent)
	return nil
}

// lastStep is true when the counter cannot take another step without
// passing end. The distance to end is never negative inside the loop.
func lastStep(name string, end exprResult, step int64, typ jal.Type) string {
	if step == 1 || step == -1 {
		return name + " == " + operand(end, precEq+1)
	}
	hi, lo := operand(end, precAdd+1), name
	if step < 0 {
		hi, lo = name, operand(end, precAdd+1)
		step = -step
	}
	if typ.Tag == jal.Sdword {
		// the distance can exceed the signed range
		hi, lo = "(uint32_t)"+hi, "(uint32_t)"+lo
	}
	return fmt.Sprintf("%s - %s < %d", hi, lo, step)
}

// inductionType is the type of a named variable that already exists,
// whose range must then cover the bounds, or the smallest type holding
// both bounds for a fresh one.
func (c *context) inductionType(s jal.For) (jal.Type, error) {
	bounds := []jal.Expr{s.End}
	if s.Start != nil {
		bounds = append(bounds, s.Start)
	}
	if s.Var != "" {
		if sym, ok := c.syms.Lookup(s.Var); ok {
			switch sym.Kind() {
			case symtab.KindVariable, symtab.KindParam:
				if t := sym.Type(); !t.IsArray() && t.Tag != jal.Bit {
					for _, b := range bounds {
						if !c.counterFits(t.Tag, b) {
							return t, diag.Errorf(diag.ErrInvalidStatement, sym.Name(), c.scope(), "loop bound of type %s does not fit %s", c.typeOf(b), t)
						}
					}
					return t, nil
				}
			}
		}
	}
next:
	for _, tag := range counterTags {
		for _, b := range bounds {
			if !c.counterFits(tag, b) {
				continue next
			}
		}
		return jal.Scalar(tag), nil
	}
	return jal.Scalar(jal.Sdword), nil
}

var counterTags = []jal.TypeTag{jal.Byte, jal.Sbyte, jal.Word, jal.Sword, jal.Dword, jal.Sdword}

// counterFits reports whether a counter of the given tag can take the
// value of bound b.
func (c *context) counterFits(tag jal.TypeTag, b jal.Expr) bool {
	if v, ok := c.foldConst(b); ok {
		return ctypes.Fits(v, tag)
	}
	t := c.typeOf(b)
	return !t.IsArray() && ctypes.Holds(tag, t.Tag)
}

func (c *context) genWhile(s jal.While, indent int) error {
	cond, err := c.genExpr(s.Cond)
	if err != nil {
		return err
	}
	f := c.pushLoop()
	if len(cond.stmts) == 0 {
		c.out.line(indent, "while (%s) {", cond.text)
	} else {
		c.out.line(indent, "for (;;) {")
		c.out.stmts(indent+1, cond.stmts)
		c.out.line(indent+1, "if (%s) break;", negate(cond))
	}
	if err := c.genBody(s.Body, indent+1); err != nil {
		return err
	}
	c.out.line(indent, "}")
	c.popLoop(f, indent)
	return nil
}

// genRepeat runs the body before the first check. The condition is
// resolved outside the body's scope, like the C do-while it becomes.
func (c *context) genRepeat(s jal.Repeat, indent int) error {
	f := c.pushLoop()
	body, err := c.capture(func() error { return c.genBody(s.Body, indent+1) })
	if err != nil {
		return err
	}
	cond, err := c.genExpr(s.Until)
	if err != nil {
		return err
	}
	if len(cond.stmts) == 0 {
		c.out.line(indent, "do {")
		c.out.raw(body)
		c.out.line(indent, "} while (%s);", negate(cond))
	} else {
		c.out.line(indent, "for (;;) {")
		c.out.raw(body)
		c.out.stmts(indent+1, cond.stmts)
		c.out.line(indent+1, "if (%s) break;", cond.text)
		c.out.line(indent, "}")
	}
	c.popLoop(f, indent)
	return nil
}

func (c *context) genForever(s jal.Forever, indent int) error {
	f := c.pushLoop()
	c.out.line(indent, "for (;;) {")
	if err := c.genBody(s.Body, indent+1); err != nil {
		return err
	}
	c.out.line(indent, "}")
	c.popLoop(f, indent)
	return nil
}

// genExit leaves the innermost loop. From inside a switch a break would
// only leave the switch, so a goto to a label after the loop is used.
func (c *context) genExit(indent int) error {
	if len(c.loops) == 0 {
		return diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "exit loop outside of a loop")
	}
	f := c.loops[len(c.loops)-1]
	if c.switches > f.switches {
		if f.label == "" {
			f.label = c.newLabel()
		}
		c.out.line(indent, "goto %s;", f.label)
		return nil
	}
	c.out.line(indent, "break;")
	return nil
}

func (c *context) genReturn(s jal.Return, indent int) error {
	if c.fn == nil {
		return diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "return outside of a procedure")
	}
	if c.fn.IsProcedure() {
		if s.Value != nil {
			return diag.Errorf(diag.ErrInvalidStatement, c.fn.Name(), c.scope(), "procedure cannot return a value")
		}
		c.out.line(indent, "return;")
		return nil
	}
	if s.Value == nil {
		return diag.Errorf(diag.ErrInvalidStatement, c.fn.Name(), c.scope(), "function must return a value")
	}
	r, err := c.genExpr(s.Value)
	if err != nil {
		return err
	}
	c.out.stmts(indent, r.stmts)
	c.out.line(indent, "return %s;", r.text)
	return nil
}

func (c *context) genCallStmt(s jal.CallStmt, indent int) error {
	r, err := c.genCall(s.Call, false)
	if err != nil {
		return err
	}
	c.out.stmts(indent, r.stmts)
	c.out.line(indent, "%s;", r.text)
	return nil
}

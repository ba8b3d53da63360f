package jatgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jallib/jat/pkg/ctypes"
	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

// C operator precedence, loosest first.
const (
	precLogOr = iota + 1
	precLogAnd
	precBitOr
	precBitXor
	precBitAnd
	precEq
	precRel
	precShift
	precAdd
	precMul
	precUnary
	precPrimary
)

type binaryInfo struct {
	op   string
	prec int
}

var binaryOps = map[jal.BinaryOp]binaryInfo{
	jal.OpAdd:    {"+", precAdd},
	jal.OpSub:    {"-", precAdd},
	jal.OpMul:    {"*", precMul},
	jal.OpDiv:    {"/", precMul},
	jal.OpMod:    {"%", precMul},
	jal.OpEq:     {"==", precEq},
	jal.OpNe:     {"!=", precEq},
	jal.OpLt:     {"<", precRel},
	jal.OpLe:     {"<=", precRel},
	jal.OpGt:     {">", precRel},
	jal.OpGe:     {">=", precRel},
	jal.OpBitAnd: {"&", precBitAnd},
	jal.OpBitOr:  {"|", precBitOr},
	jal.OpBitXor: {"^", precBitXor},
	jal.OpShl:    {"<<", precShift},
	jal.OpShr:    {">>", precShift},
	jal.OpAnd:    {"&&", precLogAnd},
	jal.OpOr:     {"||", precLogOr},
}

// exprResult is a rendered C expression together with the statements
// that must run before it.
type exprResult struct {
	text  string
	prec  int
	stmts []string
}

func joinStmts(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// operand renders r as an operand of an operator binding at min.
func operand(r exprResult, min int) string {
	if r.prec < min {
		return "(" + r.text + ")"
	}
	return r.text
}

// negate renders the logical negation of a condition.
func negate(r exprResult) string {
	return "!" + operand(r, precPrimary)
}

// textPrec classifies an already rendered name or literal.
func textPrec(text string) int {
	if strings.HasPrefix(text, "-") || strings.HasPrefix(text, "&") {
		return precUnary
	}
	return precPrimary
}

func literal(v int64) exprResult {
	text := strconv.FormatInt(v, 10)
	return exprResult{text: text, prec: textPrec(text)}
}

func (c *context) genExpr(e jal.Expr) (exprResult, error) {
	switch e := e.(type) {
	case jal.IntLit:
		return literal(e.Value), nil
	case jal.StrLit:
		return exprResult{text: cString(e.Value), prec: precPrimary}, nil
	case jal.Ident:
		return c.genIdent(e.Name)
	case jal.Paren:
		r, err := c.genExpr(e.X)
		if err != nil {
			return exprResult{}, err
		}
		return exprResult{text: "(" + r.text + ")", prec: precPrimary, stmts: r.stmts}, nil
	case jal.Unary:
		return c.genUnary(e)
	case jal.Binary:
		return c.genBinary(e)
	case jal.Call:
		return c.genCall(e, true)
	case jal.Index:
		return c.genIndex(e)
	}
	return exprResult{}, diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "unhandled expression %T", e)
}

func (c *context) genIdent(name string) (exprResult, error) {
	sym, err := c.resolve(name)
	if err != nil {
		return exprResult{}, err
	}
	// a parameterless function may be called without parentheses
	if _, ok := sym.(*symtab.Function); ok {
		return c.genCall(jal.Call{Name: name}, true)
	}
	text, err := c.dereference(name)
	if err != nil {
		return exprResult{}, err
	}
	return exprResult{text: text, prec: textPrec(text)}, nil
}

func (c *context) genUnary(e jal.Unary) (exprResult, error) {
	x, err := c.genExpr(e.X)
	if err != nil {
		return exprResult{}, err
	}
	var op string
	switch e.Op {
	case jal.OpNeg:
		op = "-"
	case jal.OpComplement:
		switch tag := c.typeOf(e.X).Tag; tag {
		case jal.Bit:
			op = "!"
		case jal.Byte, jal.Word:
			// C promotes the operand to int; keep the result unsigned and narrow
			spelling, err := ctypes.Spelling(tag)
			if err != nil {
				return exprResult{}, err
			}
			op = "(" + spelling + ")~"
		default:
			op = "~"
		}
	case jal.OpNot:
		op = "!"
	default:
		return exprResult{}, diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "unknown unary operator %v", e.Op)
	}
	return exprResult{text: op + operand(x, precPrimary), prec: precUnary, stmts: x.stmts}, nil
}

func (c *context) genBinary(e jal.Binary) (exprResult, error) {
	info, ok := binaryOps[e.Op]
	if !ok {
		return exprResult{}, diag.Errorf(diag.ErrInvalidStatement, "", c.scope(), "unknown binary operator %v", e.Op)
	}
	l, err := c.genExpr(e.Left)
	if err != nil {
		return exprResult{}, err
	}
	r, err := c.genExpr(e.Right)
	if err != nil {
		return exprResult{}, err
	}
	if e.Op == jal.OpAnd || e.Op == jal.OpOr {
		return c.logical(e.Op, l, r), nil
	}
	text := operand(l, info.prec) + " " + info.op + " " + operand(r, info.prec+1)
	return exprResult{text: text, prec: info.prec, stmts: joinStmts(l.stmts, r.stmts)}, nil
}

// logical renders l && r or l || r. Statements hoisted from r only run
// when l does not already decide the result.
func (c *context) logical(op jal.BinaryOp, l, r exprResult) exprResult {
	if len(r.stmts) > 0 {
		return c.shortCircuit(op, l, r)
	}
	info := binaryOps[op]
	text := operand(l, info.prec) + " " + info.op + " " + operand(r, info.prec+1)
	return exprResult{text: text, prec: info.prec, stmts: l.stmts}
}

// shortCircuit builds the value of l && r or l || r in a temporary:
//
//	bool t = l;
//	if (t) {
//	    r.stmts
//	    t = r;
//	}
//
// with !t as the guard for ||.
func (c *context) shortCircuit(op jal.BinaryOp, l, r exprResult) exprResult {
	tmp := c.newTemp()
	guard := tmp
	if op == jal.OpOr {
		guard = "!" + tmp
	}
	stmts := joinStmts(l.stmts, []string{
		ctypes.Declarator(ctypes.Bool(), tmp) + " = " + l.text + ";",
		"if (" + guard + ") {",
	})
	for _, s := range r.stmts {
		stmts = append(stmts, indentUnit+s)
	}
	stmts = append(stmts, indentUnit+tmp+" = "+r.text+";", "}")
	return exprResult{text: tmp, prec: precPrimary, stmts: stmts}
}

// genCall renders a call. Each argument follows the passing mode the
// callee declares for its position.
func (c *context) genCall(call jal.Call, asValue bool) (exprResult, error) {
	fn, ok := c.syms.LookupFunction(call.Name)
	if !ok {
		if _, found := c.syms.Lookup(call.Name); found {
			return exprResult{}, diag.Errorf(diag.ErrCallMismatch, call.Name, c.scope(), "not a procedure or function")
		}
		return exprResult{}, diag.New(diag.ErrUndeclared, call.Name, c.scope())
	}
	if asValue && fn.IsProcedure() {
		return exprResult{}, diag.Errorf(diag.ErrCallMismatch, call.Name, c.scope(), "procedure used as a value")
	}
	if len(call.Args) != len(fn.Params) {
		return exprResult{}, diag.Errorf(diag.ErrCallMismatch, call.Name, c.scope(), "expected %d arguments, got %d", len(fn.Params), len(call.Args))
	}

	args := make([]string, len(call.Args))
	var stmts []string
	for i, arg := range call.Args {
		mode, err := callMethod(fn, i)
		if err != nil {
			return exprResult{}, err
		}
		// arrays are passed by address whatever their mode
		typ := fn.Params[i].Type()
		_, lit := arg.(jal.StrLit)
		var r exprResult
		if mode == symtab.ByReference || (typ.IsArray() && !lit) {
			r, err = c.genAddr(arg, typ)
		} else {
			r, err = c.genExpr(arg)
		}
		if err != nil {
			return exprResult{}, err
		}
		args[i] = r.text
		stmts = joinStmts(stmts, r.stmts)
	}
	text := fmt.Sprintf("%s(%s)", ctypes.Ident(fn.Name()), strings.Join(args, ", "))
	return exprResult{text: text, prec: precPrimary, stmts: stmts}, nil
}

// genAddr renders the address passed for a by-reference argument.
// Values without storage are copied into a temporary first.
func (c *context) genAddr(arg jal.Expr, typ jal.Type) (exprResult, error) {
	switch e := arg.(type) {
	case jal.Paren:
		return c.genAddr(e.X, typ)
	case jal.Ident:
		sym, err := c.resolve(e.Name)
		if err != nil {
			return exprResult{}, err
		}
		if a, ok := derefTable[keyOf(sym)]; ok && a.addr != nil {
			if !refCompatible(sym.Type(), typ) {
				return exprResult{}, diag.Errorf(diag.ErrCallMismatch, sym.Name(), c.scope(), "%s passed where %s storage is expected", sym.Type(), typ)
			}
			text := a.addr(sym)
			return exprResult{text: text, prec: textPrec(text)}, nil
		}
	case jal.Index:
		r, err := c.genIndex(e)
		if err != nil {
			return exprResult{}, err
		}
		if elem := c.typeOf(e); !refCompatible(elem, typ) {
			return exprResult{}, diag.Errorf(diag.ErrCallMismatch, e.Name, c.scope(), "%s element passed where %s storage is expected", elem, typ)
		}
		return exprResult{text: "&" + r.text, prec: precUnary, stmts: r.stmts}, nil
	}
	return c.materialize(arg, typ)
}

// refCompatible reports whether the address of storage of type have can
// be passed for a by-reference parameter of type want. Array parameters
// decay to pointers, so only the element types have to agree.
func refCompatible(have, want jal.Type) bool {
	hc, err := ctypes.FromJAL(have)
	if err != nil {
		return false
	}
	wc, err := ctypes.FromJAL(want)
	if err != nil {
		return false
	}
	if wa, ok := wc.(ctypes.Tarray); ok {
		ha, ok := hc.(ctypes.Tarray)
		return ok && ctypes.Equal(ha.Elem, wa.Elem)
	}
	return ctypes.Equal(hc, wc)
}

// materialize stores the value of e in a fresh temporary of type typ and
// yields the temporary's address.
func (c *context) materialize(e jal.Expr, typ jal.Type) (exprResult, error) {
	if typ.IsArray() {
		return exprResult{}, diag.Errorf(diag.ErrCallMismatch, "", c.scope(), "array argument needs storage")
	}
	r, err := c.genExpr(e)
	if err != nil {
		return exprResult{}, err
	}
	ct, err := ctypes.FromJAL(typ)
	if err != nil {
		return exprResult{}, err
	}
	tmp := c.newTemp()
	decl := fmt.Sprintf("%s = %s;", ctypes.Declarator(ct, tmp), r.text)
	return exprResult{text: "&" + tmp, prec: precUnary, stmts: joinStmts(r.stmts, []string{decl})}, nil
}

func (c *context) genIndex(e jal.Index) (exprResult, error) {
	sym, a, err := c.access(e.Name)
	if err != nil {
		return exprResult{}, err
	}
	if !sym.Type().IsArray() {
		return exprResult{}, diag.Errorf(diag.ErrInvalidStatement, e.Name, c.scope(), "indexing a %s", sym.Type())
	}
	idx, err := c.genExpr(e.Index)
	if err != nil {
		return exprResult{}, err
	}
	return exprResult{text: a.read(sym) + "[" + idx.text + "]", prec: precPrimary, stmts: idx.stmts}, nil
}

// typeOf estimates the JAL type of an expression, enough to pick the type
// of a temporary or the spelling of an operator.
func (c *context) typeOf(e jal.Expr) jal.Type {
	switch e := e.(type) {
	case jal.IntLit:
		return jal.Scalar(ctypes.UniversalTag(e.Value))
	case jal.StrLit:
		return jal.StringOf(len(e.Value))
	case jal.Ident:
		if sym, ok := c.syms.Lookup(e.Name); ok {
			if fn, ok := sym.(*symtab.Function); ok && fn.IsProcedure() {
				break
			}
			return sym.Type()
		}
	case jal.Paren:
		return c.typeOf(e.X)
	case jal.Unary:
		if e.Op == jal.OpNot {
			return jal.Scalar(jal.Bit)
		}
		return c.typeOf(e.X)
	case jal.Binary:
		if e.Op.IsComparison() {
			return jal.Scalar(jal.Bit)
		}
		if e.Op == jal.OpShl || e.Op == jal.OpShr {
			return c.typeOf(e.Left)
		}
		return wider(c.typeOf(e.Left), c.typeOf(e.Right))
	case jal.Call:
		if fn, ok := c.syms.LookupFunction(e.Name); ok && fn.Return != nil {
			return *fn.Return
		}
	case jal.Index:
		if sym, ok := c.syms.Lookup(e.Name); ok {
			if t := sym.Type(); t.Tag == jal.Array && t.Elem != nil {
				return *t.Elem
			}
		}
	}
	return jal.Scalar(jal.Byte)
}

var tagRank = map[jal.TypeTag]int{
	jal.Bit:    0,
	jal.Byte:   1,
	jal.Sbyte:  1,
	jal.Word:   2,
	jal.Sword:  2,
	jal.Dword:  3,
	jal.Sdword: 3,
}

// wider returns the operand type with more bits; arrays count as bytes.
func wider(a, b jal.Type) jal.Type {
	if a.IsArray() {
		a = jal.Scalar(jal.Byte)
	}
	if b.IsArray() {
		b = jal.Scalar(jal.Byte)
	}
	if tagRank[b.Tag] > tagRank[a.Tag] {
		return b
	}
	return a
}

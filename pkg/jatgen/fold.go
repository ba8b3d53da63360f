package jatgen

import (
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// foldConst evaluates e when it only involves literals and scalar
// constants. Division by zero and out of range shifts do not fold.
func (c *context) foldConst(e jal.Expr) (int64, bool) {
	switch e := e.(type) {
	case jal.IntLit:
		return e.Value, true
	case jal.Ident:
		sym, ok := c.syms.Lookup(e.Name)
		if !ok {
			return 0, false
		}
		k, ok := sym.(*symtab.Constant)
		if !ok || k.IsString {
			return 0, false
		}
		return k.Value, true
	case jal.Paren:
		return c.foldConst(e.X)
	case jal.Unary:
		v, ok := c.foldConst(e.X)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case jal.OpNeg:
			return -v, true
		case jal.OpComplement:
			if c.typeOf(e.X).Tag == jal.Bit {
				return boolInt(v == 0), true
			}
			return ^v, true
		case jal.OpNot:
			return boolInt(v == 0), true
		}
	case jal.Binary:
		l, ok := c.foldConst(e.Left)
		if !ok {
			return 0, false
		}
		r, ok := c.foldConst(e.Right)
		if !ok {
			return 0, false
		}
		return foldBinary(e.Op, l, r)
	}
	return 0, false
}

func foldBinary(op jal.BinaryOp, l, r int64) (int64, bool) {
	switch op {
	case jal.OpAdd:
		return l + r, true
	case jal.OpSub:
		return l - r, true
	case jal.OpMul:
		return l * r, true
	case jal.OpDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case jal.OpMod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case jal.OpEq:
		return boolInt(l == r), true
	case jal.OpNe:
		return boolInt(l != r), true
	case jal.OpLt:
		return boolInt(l < r), true
	case jal.OpLe:
		return boolInt(l <= r), true
	case jal.OpGt:
		return boolInt(l > r), true
	case jal.OpGe:
		return boolInt(l >= r), true
	case jal.OpBitAnd:
		return l & r, true
	case jal.OpBitOr:
		return l | r, true
	case jal.OpBitXor:
		return l ^ r, true
	case jal.OpShl:
		if r < 0 || r > 63 {
			return 0, false
		}
		return l << r, true
	case jal.OpShr:
		if r < 0 || r > 63 {
			return 0, false
		}
		return l >> r, true
	case jal.OpAnd:
		return boolInt(l != 0 && r != 0), true
	case jal.OpOr:
		return boolInt(l != 0 || r != 0), true
	}
	return 0, false
}

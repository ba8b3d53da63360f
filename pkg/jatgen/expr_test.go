package jatgen

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

// exprFixture declares a, b, c (byte), w (word), flag (bit), K = 5, and
// the callables f(byte in) return byte, g(byte in out) return byte,
// p() and pin'get() return bit.
func exprFixture(t *testing.T) *context {
	t.Helper()
	c, tab := newTestContext()
	for _, n := range []string{"a", "b", "c"} {
		mustDeclare(t, tab, symtab.Global, symtab.NewVariable(n, byteT))
	}
	mustDeclare(t, tab, symtab.Global, symtab.NewVariable("w", wordT))
	mustDeclare(t, tab, symtab.Global, symtab.NewVariable("flag", bitT))
	mustDeclare(t, tab, symtab.Global, symtab.NewConstant("K", byteT, 5))
	mustDeclare(t, tab, symtab.Global, symtab.NewFunction("f",
		[]*symtab.Param{symtab.NewParam("x", byteT, jal.ModeIn, 0)}, &byteT))
	mustDeclare(t, tab, symtab.Global, symtab.NewFunction("g",
		[]*symtab.Param{symtab.NewParam("y", byteT, jal.ModeInOut, 0)}, &byteT))
	mustDeclare(t, tab, symtab.Global, symtab.NewFunction("p", nil, nil))
	mustDeclare(t, tab, symtab.Global, symtab.NewFunction("pin'get", nil, &bitT))
	return c
}

func TestGenExprGrouping(t *testing.T) {
	tests := []struct {
		name string
		expr jal.Expr
		want string
	}{
		{"precedence", bin(jal.OpAdd, id("a"), bin(jal.OpMul, id("b"), id("c"))), "a + b * c"},
		{"lower left operand", bin(jal.OpMul, bin(jal.OpAdd, id("a"), id("b")), id("c")), "(a + b) * c"},
		{"right operand same level", bin(jal.OpSub, id("a"), bin(jal.OpSub, id("b"), id("c"))), "a - (b - c)"},
		{"left operand same level", bin(jal.OpSub, bin(jal.OpSub, id("a"), id("b")), id("c")), "a - b - c"},
		{"explicit paren", jal.Paren{X: id("a")}, "(a)"},
		{"nested paren", bin(jal.OpMul, jal.Paren{X: bin(jal.OpAdd, id("a"), id("b"))}, id("c")), "(a + b) * c"},
		{"negate sum", jal.Unary{Op: jal.OpNeg, X: bin(jal.OpAdd, id("a"), id("b"))}, "-(a + b)"},
		{"negate literal", jal.Unary{Op: jal.OpNeg, X: num(5)}, "-5"},
		{"negate negative", jal.Unary{Op: jal.OpNeg, X: num(-5)}, "-(-5)"},
		{"complement byte", jal.Unary{Op: jal.OpComplement, X: id("a")}, "(uint8_t)~a"},
		{"complement word", jal.Unary{Op: jal.OpComplement, X: id("w")}, "(uint16_t)~w"},
		{"complement compared", bin(jal.OpEq, jal.Unary{Op: jal.OpComplement, X: id("a")}, num(0)), "(uint8_t)~a == 0"},
		{"complement bit", jal.Unary{Op: jal.OpComplement, X: id("flag")}, "!flag"},
		{"logical not", jal.Unary{Op: jal.OpNot, X: bin(jal.OpEq, id("a"), num(0))}, "!(a == 0)"},
		{"mask then compare", bin(jal.OpEq, bin(jal.OpBitAnd, id("a"), id("b")), num(0)), "(a & b) == 0"},
		{"logical and", bin(jal.OpAnd, bin(jal.OpLt, id("a"), id("b")), bin(jal.OpGt, id("c"), num(1))), "a < b && c > 1"},
		{"or inside and", bin(jal.OpAnd, bin(jal.OpOr, id("a"), id("b")), id("c")), "(a || b) && c"},
		{"shift", bin(jal.OpShl, id("a"), bin(jal.OpAdd, id("b"), num(1))), "a << (b + 1)"},
		{"xor and or", bin(jal.OpBitOr, bin(jal.OpBitXor, id("a"), id("b")), id("c")), "a ^ b | c"},
		{"constant inlined", bin(jal.OpAdd, id("k"), num(1)), "5 + 1"},
		{"builtin bit", bin(jal.OpEq, id("flag"), id("TRUE")), "flag == true"},
		{"string", jal.StrLit{Value: "hi\n\"x\""}, `"hi\n\"x\""`},
		{"call by value", call("f", bin(jal.OpAdd, id("a"), num(1))), "f(a + 1)"},
		{"call in expression", bin(jal.OpMul, call("f", id("a")), num(2)), "f(a) * 2"},
		{"call without parentheses", bin(jal.OpAnd, id("pin'get"), id("flag")), "pin__get() && flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := exprFixture(t)
			r, err := c.genExpr(tt.expr)
			if err != nil {
				t.Fatalf("genExpr() error: %v", err)
			}
			if r.text != tt.want {
				t.Errorf("genExpr() = %q, want %q", r.text, tt.want)
			}
			if len(r.stmts) != 0 {
				t.Errorf("genExpr() hoisted %v, want none", r.stmts)
			}
		})
	}
}

func TestGenExprHoisting(t *testing.T) {
	tests := []struct {
		name  string
		expr  jal.Expr
		want  string
		stmts []string
	}{
		{
			name: "addressable argument",
			expr: call("g", id("a")),
			want: "g(&a)",
		},
		{
			name:  "computed argument",
			expr:  call("g", bin(jal.OpAdd, id("a"), num(1))),
			want:  "g(&_jat_t1)",
			stmts: []string{"uint8_t _jat_t1 = a + 1;"},
		},
		{
			name:  "constant argument",
			expr:  call("g", id("K")),
			want:  "g(&_jat_t1)",
			stmts: []string{"uint8_t _jat_t1 = 5;"},
		},
		{
			name:  "call result argument",
			expr:  call("g", call("f", id("a"))),
			want:  "g(&_jat_t1)",
			stmts: []string{"uint8_t _jat_t1 = f(a);"},
		},
		{
			name:  "parenthesized variable",
			expr:  call("g", jal.Paren{X: id("b")}),
			want:  "g(&b)",
			stmts: nil,
		},
		{
			name:  "distinct temporaries",
			expr:  bin(jal.OpAdd, call("g", bin(jal.OpAdd, id("a"), num(1))), call("g", num(2))),
			want:  "g(&_jat_t1) + g(&_jat_t2)",
			stmts: []string{"uint8_t _jat_t1 = a + 1;", "uint8_t _jat_t2 = 2;"},
		},
		{
			name:  "nested by-reference calls",
			expr:  call("g", call("g", num(7))),
			want:  "g(&_jat_t2)",
			stmts: []string{"uint8_t _jat_t1 = 7;", "uint8_t _jat_t2 = g(&_jat_t1);"},
		},
		{
			name: "and guards the right operand",
			expr: bin(jal.OpAnd, bin(jal.OpLt, id("a"), id("b")), call("g", bin(jal.OpAdd, id("a"), num(1)))),
			want: "_jat_t2",
			stmts: []string{
				"bool _jat_t2 = a < b;",
				"if (_jat_t2) {",
				"    uint8_t _jat_t1 = a + 1;",
				"    _jat_t2 = g(&_jat_t1);",
				"}",
			},
		},
		{
			name: "or guards the right operand",
			expr: bin(jal.OpOr, id("flag"), call("g", num(3))),
			want: "_jat_t2",
			stmts: []string{
				"bool _jat_t2 = flag;",
				"if (!_jat_t2) {",
				"    uint8_t _jat_t1 = 3;",
				"    _jat_t2 = g(&_jat_t1);",
				"}",
			},
		},
		{
			name:  "left operand hoists alone",
			expr:  bin(jal.OpAnd, call("g", num(3)), id("flag")),
			want:  "g(&_jat_t1) && flag",
			stmts: []string{"uint8_t _jat_t1 = 3;"},
		},
		{
			name: "chained and",
			expr: bin(jal.OpAnd, bin(jal.OpAnd, id("flag"), call("g", num(1))), call("g", num(2))),
			want: "_jat_t4",
			stmts: []string{
				"bool _jat_t2 = flag;",
				"if (_jat_t2) {",
				"    uint8_t _jat_t1 = 1;",
				"    _jat_t2 = g(&_jat_t1);",
				"}",
				"bool _jat_t4 = _jat_t2;",
				"if (_jat_t4) {",
				"    uint8_t _jat_t3 = 2;",
				"    _jat_t4 = g(&_jat_t3);",
				"}",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := exprFixture(t)
			r, err := c.genExpr(tt.expr)
			if err != nil {
				t.Fatalf("genExpr() error: %v", err)
			}
			if r.text != tt.want {
				t.Errorf("genExpr() = %q, want %q", r.text, tt.want)
			}
			if diff := cmp.Diff(tt.stmts, r.stmts); diff != "" {
				t.Errorf("hoisted statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGenExprErrors(t *testing.T) {
	tests := []struct {
		name string
		expr jal.Expr
		want error
	}{
		{"undeclared", id("zz"), diag.ErrUndeclared},
		{"unknown callee", call("h"), diag.ErrUndeclared},
		{"procedure as value", bin(jal.OpAdd, call("p"), num(1)), diag.ErrCallMismatch},
		{"too many arguments", call("f", id("a"), id("b")), diag.ErrCallMismatch},
		{"too few arguments", call("f"), diag.ErrCallMismatch},
		{"calling a variable", call("a", num(1)), diag.ErrCallMismatch},
		{"function needing arguments", id("f"), diag.ErrCallMismatch},
		{"indexing a scalar", jal.Index{Name: "a", Index: num(0)}, diag.ErrInvalidStatement},
		{"bit storage by reference", call("g", id("flag")), diag.ErrCallMismatch},
		{"word storage by reference", call("g", id("w")), diag.ErrCallMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := exprFixture(t)
			_, err := c.genExpr(tt.expr)
			if !errors.Is(err, tt.want) {
				t.Errorf("genExpr() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFoldConst(t *testing.T) {
	tests := []struct {
		name string
		expr jal.Expr
		want int64
		ok   bool
	}{
		{"literal", num(7), 7, true},
		{"constant", id("K"), 5, true},
		{"arithmetic", bin(jal.OpSub, bin(jal.OpMul, id("K"), num(4)), num(1)), 19, true},
		{"comparison", bin(jal.OpLt, num(1), num(2)), 1, true},
		{"shift", bin(jal.OpShl, num(1), num(4)), 16, true},
		{"negation", jal.Unary{Op: jal.OpNeg, X: jal.Paren{X: num(3)}}, -3, true},
		{"complement", jal.Unary{Op: jal.OpComplement, X: num(0)}, -1, true},
		{"bit complement", jal.Unary{Op: jal.OpComplement, X: id("true")}, 0, true},
		{"not", jal.Unary{Op: jal.OpNot, X: num(0)}, 1, true},
		{"variable", bin(jal.OpAdd, id("a"), num(1)), 0, false},
		{"division by zero", bin(jal.OpDiv, num(1), num(0)), 0, false},
		{"huge shift", bin(jal.OpShl, num(1), num(64)), 0, false},
		{"call", call("f", num(1)), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := exprFixture(t)
			got, ok := c.foldConst(tt.expr)
			if ok != tt.ok || got != tt.want {
				t.Errorf("foldConst() = %d, %v, want %d, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		expr jal.Expr
		want jal.TypeTag
	}{
		{"small literal", num(3), jal.Byte},
		{"large literal", num(1000), jal.Word},
		{"variable", id("w"), jal.Word},
		{"comparison", bin(jal.OpEq, id("a"), num(1)), jal.Bit},
		{"wider operand", bin(jal.OpAdd, id("a"), id("w")), jal.Word},
		{"call", call("f", num(1)), jal.Byte},
		{"bit function", id("pin'get"), jal.Bit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := exprFixture(t)
			if got := c.typeOf(tt.expr).Tag; got != tt.want {
				t.Errorf("typeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

package jatgen

import (
	"errors"
	"testing"

	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

// derefFixture declares one symbol of every row of the decision table and
// enters a procedure owning the parameters.
func derefFixture(t *testing.T) *context {
	t.Helper()
	c, tab := newTestContext()
	mustDeclare(t, tab, symtab.Global, symtab.NewVariable("v", byteT))
	mustDeclare(t, tab, symtab.Global, symtab.NewVariable("arr", jal.ArrayOf(byteT, 4)))
	mustDeclare(t, tab, symtab.Global, symtab.NewConstant("K", byteT, 5))
	mustDeclare(t, tab, symtab.Global, symtab.NewStringConstant("S", "hi"))

	fn := symtab.NewFunction("p", []*symtab.Param{
		symtab.NewParam("a", byteT, jal.ModeIn, 0),
		symtab.NewParam("b", byteT, jal.ModeInOut, 1),
		symtab.NewParam("o", wordT, jal.ModeOut, 2),
		symtab.NewParam("buf", jal.ArrayOf(byteT, 0), jal.ModeIn, 3),
		symtab.NewParam("rbuf", jal.ArrayOf(byteT, 8), jal.ModeOut, 4),
	}, nil)
	mustDeclare(t, tab, symtab.Global, fn)
	exit, err := tab.EnterFunction(fn)
	if err != nil {
		t.Fatalf("EnterFunction error: %v", err)
	}
	t.Cleanup(exit)
	c.fn = fn
	return c
}

func TestDereferenceTable(t *testing.T) {
	tests := []struct {
		name  string
		read  string
		write string // empty: not assignable
		addr  string
	}{
		{"v", "v", "v", "&v"},
		{"a", "a", "a", "&a"},
		{"b", "(*b)", "(*b)", "b"},
		{"o", "(*o)", "(*o)", "o"},
		{"arr", "arr", "", "arr"},
		{"buf", "buf", "", "buf"},
		{"rbuf", "rbuf", "", "rbuf"},
		{"S", "S", "", "S"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := derefFixture(t)

			got, err := c.dereference(tt.name)
			if err != nil || got != tt.read {
				t.Errorf("dereference(%s) = %q, %v, want %q", tt.name, got, err, tt.read)
			}

			lhs, err := c.genTarget(id(tt.name))
			if tt.write == "" {
				if err == nil {
					t.Errorf("genTarget(%s) = %q, want error", tt.name, lhs.text)
				}
			} else if err != nil || lhs.text != tt.write {
				t.Errorf("genTarget(%s) = %q, %v, want %q", tt.name, lhs.text, err, tt.write)
			}

			addr, err := c.genAddr(id(tt.name), byteT)
			if err != nil || addr.text != tt.addr || len(addr.stmts) != 0 {
				t.Errorf("genAddr(%s) = %+v, %v, want %q", tt.name, addr, err, tt.addr)
			}
		})
	}
}

func TestDereferenceConstant(t *testing.T) {
	c := derefFixture(t)

	got, err := c.dereference("K")
	if err != nil || got != "5" {
		t.Errorf("dereference(K) = %q, %v, want 5", got, err)
	}

	if _, err := c.genTarget(id("k")); !errors.Is(err, diag.ErrConstantReassignment) {
		t.Errorf("genTarget(k) error = %v, want ErrConstantReassignment", err)
	}
	if _, err := c.genTarget(jal.Index{Name: "S", Index: num(0)}); !errors.Is(err, diag.ErrConstantReassignment) {
		t.Errorf("genTarget(S[0]) error = %v, want ErrConstantReassignment", err)
	}

	addr, err := c.genAddr(id("K"), byteT)
	if err != nil {
		t.Fatalf("genAddr(K) error: %v", err)
	}
	if addr.text != "&_jat_t1" || len(addr.stmts) != 1 || addr.stmts[0] != "uint8_t _jat_t1 = 5;" {
		t.Errorf("genAddr(K) = %+v", addr)
	}
}

func TestDereferenceBuiltinBits(t *testing.T) {
	c, _ := newTestContext()
	for name, want := range map[string]string{"true": "true", "OFF": "false", "high": "true"} {
		got, err := c.dereference(name)
		if err != nil || got != want {
			t.Errorf("dereference(%s) = %q, %v, want %q", name, got, err, want)
		}
	}
}

func TestDereferenceErrors(t *testing.T) {
	c := derefFixture(t)
	if _, err := c.dereference("nope"); !errors.Is(err, diag.ErrUndeclared) {
		t.Errorf("dereference(nope) error = %v, want ErrUndeclared", err)
	}
	if _, err := c.dereference("p"); !errors.Is(err, diag.ErrInvalidStatement) {
		t.Errorf("dereference(p) error = %v, want ErrInvalidStatement", err)
	}
}

func TestCallMethod(t *testing.T) {
	fn := symtab.NewFunction("q", []*symtab.Param{
		symtab.NewParam("x", byteT, jal.ModeIn, 0),
		symtab.NewParam("y", byteT, jal.ModeOut, 1),
		symtab.NewParam("z", byteT, jal.ModeInOut, 2),
	}, nil)

	want := []symtab.Mode{symtab.ByValue, symtab.ByReference, symtab.ByReference}
	for i, w := range want {
		got, err := callMethod(fn, i)
		if err != nil || got != w {
			t.Errorf("callMethod(q, %d) = %v, %v, want %v", i, got, err, w)
		}
	}
	for _, i := range []int{-1, 3} {
		if _, err := callMethod(fn, i); !errors.Is(err, diag.ErrCallMismatch) {
			t.Errorf("callMethod(q, %d) error = %v, want ErrCallMismatch", i, err)
		}
	}
}

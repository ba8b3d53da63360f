package jal

import (
	"strings"
	"testing"
)

func TestDecodeProgram(t *testing.T) {
	input := `
program:
  - const: {name: MAX, value: 10}
  - var: {type: byte, name: i}
  - procedure:
      name: bump
      params:
        - {name: x, type: byte, mode: in out}
      body:
        - assign: {target: x, value: {op: "+", left: x, right: 1}}
  - for:
      var: i
      from: 0
      to: MAX
      body:
        - call: {name: bump, args: [i]}
`
	prog, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(prog.Body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(prog.Body))
	}

	c, ok := prog.Body[0].(ConstDecl)
	if !ok {
		t.Fatalf("expected ConstDecl, got %T", prog.Body[0])
	}
	if c.Name != "MAX" || c.Type != nil {
		t.Errorf("const = %+v", c)
	}
	if lit, ok := c.Value.(IntLit); !ok || lit.Value != 10 {
		t.Errorf("const value = %#v, want IntLit 10", c.Value)
	}

	v, ok := prog.Body[1].(VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", prog.Body[1])
	}
	if v.Type.Tag != Byte || len(v.Vars) != 1 || v.Vars[0].Name != "i" || v.Vars[0].Init != nil {
		t.Errorf("var = %+v", v)
	}

	p, ok := prog.Body[2].(ProcDef)
	if !ok {
		t.Fatalf("expected ProcDef, got %T", prog.Body[2])
	}
	if p.IsFunction() || len(p.Params) != 1 || p.Params[0].Mode != ModeInOut {
		t.Errorf("procedure = %+v", p)
	}
	a, ok := p.Body[0].(Assign)
	if !ok {
		t.Fatalf("expected Assign, got %T", p.Body[0])
	}
	if b, ok := a.Value.(Binary); !ok || b.Op != OpAdd {
		t.Errorf("assign value = %#v", a.Value)
	}

	f, ok := prog.Body[3].(For)
	if !ok {
		t.Fatalf("expected For, got %T", prog.Body[3])
	}
	if f.Var != "i" || f.Start == nil || f.Step != nil {
		t.Errorf("for = %+v", f)
	}
	if call, ok := f.Body[0].(CallStmt); !ok || call.Call.Name != "bump" || len(call.Call.Args) != 1 {
		t.Errorf("for body = %#v", f.Body[0])
	}
}

func TestDecodeStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, s Stmt)
	}{
		{
			name:  "count for",
			input: `[{for: {count: 8, using: n, body: []}}]`,
			check: func(t *testing.T, s Stmt) {
				f := s.(For)
				if f.Start != nil || f.Var != "n" {
					t.Errorf("for = %+v", f)
				}
			},
		},
		{
			name:  "batch var",
			input: `[{var: {type: "word", vars: [{name: a, init: 1}, {name: b}]}}]`,
			check: func(t *testing.T, s Stmt) {
				v := s.(VarDecl)
				if len(v.Vars) != 2 || v.Vars[0].Init == nil || v.Vars[1].Init != nil {
					t.Errorf("var = %+v", v)
				}
			},
		},
		{
			name:  "names list",
			input: `[{var: {type: "byte[4]", names: [a, b, c]}}]`,
			check: func(t *testing.T, s Stmt) {
				v := s.(VarDecl)
				if len(v.Vars) != 3 || v.Type.Tag != Array || v.Type.Len != 4 {
					t.Errorf("var = %+v", v)
				}
			},
		},
		{
			name: "case with otherwise",
			input: `
- case:
    selector: x
    clauses:
      - {values: [1, 2], body: [exit]}
      - {values: 3, body: []}
    otherwise: []
`,
			check: func(t *testing.T, s Stmt) {
				c := s.(Case)
				if len(c.Clauses) != 2 || len(c.Clauses[0].Values) != 2 || len(c.Clauses[1].Values) != 1 {
					t.Errorf("case = %+v", c)
				}
				if c.Otherwise == nil {
					t.Error("otherwise should be present")
				}
				if _, ok := c.Clauses[0].Body[0].(Exit); !ok {
					t.Errorf("clause body = %#v", c.Clauses[0].Body)
				}
			},
		},
		{
			name:  "case without otherwise",
			input: `[{case: {selector: x, clauses: [{values: [1], body: []}]}}]`,
			check: func(t *testing.T, s Stmt) {
				if s.(Case).Otherwise != nil {
					t.Error("otherwise should be absent")
				}
			},
		},
		{
			name: "if elsif else",
			input: `
- if:
    cond: {op: "==", left: a, right: 1}
    then: [{assign: {target: b, value: 0}}]
    elsif:
      - {cond: {op: "!!", x: c}, then: []}
    else: [{return: null}]
`,
			check: func(t *testing.T, s Stmt) {
				i := s.(If)
				if len(i.Elsifs) != 1 || len(i.Else) != 1 {
					t.Errorf("if = %+v", i)
				}
				if u, ok := i.Elsifs[0].Cond.(Unary); !ok || u.Op != OpNot {
					t.Errorf("elsif cond = %#v", i.Elsifs[0].Cond)
				}
			},
		},
		{
			name:  "function",
			input: `[{function: {name: f, params: [{name: a, type: sword}], return: sword, body: [{return: a}]}}]`,
			check: func(t *testing.T, s Stmt) {
				p := s.(ProcDef)
				if !p.IsFunction() || p.Return.Tag != Sword || p.Params[0].Mode != ModeIn {
					t.Errorf("function = %+v", p)
				}
			},
		},
		{
			name:  "expressions",
			input: `[{assign: {target: {index: buf, at: 2}, value: {op: "-", x: {paren: {call: f, args: [0x10, {str: "hi"}]}}}}}]`,
			check: func(t *testing.T, s Stmt) {
				a := s.(Assign)
				if idx, ok := a.Target.(Index); !ok || idx.Name != "buf" {
					t.Errorf("target = %#v", a.Target)
				}
				u, ok := a.Value.(Unary)
				if !ok || u.Op != OpNeg {
					t.Fatalf("value = %#v", a.Value)
				}
				call := u.X.(Paren).X.(Call)
				if lit := call.Args[0].(IntLit); lit.Value != 16 {
					t.Errorf("hex literal = %d", lit.Value)
				}
				if str := call.Args[1].(StrLit); str.Value != "hi" {
					t.Errorf("string literal = %q", str.Value)
				}
			},
		},
		{
			name:  "loops and blocks",
			input: `[{while: {cond: true, body: []}}, {repeat: {body: [], until: done}}, {forever: [exit]}, {block: {body: []}}]`,
			check: func(t *testing.T, s Stmt) {
				w := s.(While)
				if id, ok := w.Cond.(Ident); !ok || id.Name != "true" {
					t.Errorf("while cond = %#v", w.Cond)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Decode(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Decode error: %v", err)
			}
			if len(prog.Body) == 0 {
				t.Fatal("no statements decoded")
			}
			tt.check(t, prog.Body[0])
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown statement", `[{goto: x}]`, "unknown statement"},
		{"bad type", `[{var: {type: float, name: x}}]`, "unknown type"},
		{"missing cond", `[{while: {body: []}}]`, `missing "cond"`},
		{"bad operator", `[{assign: {target: x, value: {op: "**", left: 1, right: 2}}}]`, "unknown binary operator"},
		{"bad mode", `[{procedure: {name: p, params: [{name: a, type: byte, mode: ref}]}}]`, "unknown parameter mode"},
		{"no program key", `{main: []}`, "program key"},
		{"for without var", `[{for: {from: 0, to: 3}}]`, "needs a var"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	prog, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(prog.Body) != 0 {
		t.Errorf("expected empty program, got %d statements", len(prog.Body))
	}
}

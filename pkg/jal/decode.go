package jal

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Decode reads a front-end AST serialized as YAML. The document is either a
// sequence of statements or a mapping with a "program" key holding one.
//
// Statements are single-key mappings naming the statement kind:
//
//	- const: {name: MAX, value: 10}
//	- var: {type: byte, name: i}
//	- for: {var: i, from: 0, to: MAX, body: [...]}
//	- call: {name: bump, args: [i]}
//
// Expressions are YAML scalars (integers, identifiers) or mappings with one
// of the keys op, call, index, paren, str.
func Decode(r io.Reader) (*Program, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Program{}, nil
		}
		return nil, fmt.Errorf("decode AST: %w", err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind == yaml.MappingNode {
		f, err := fields(root)
		if err != nil {
			return nil, err
		}
		body, ok := f["program"]
		if !ok {
			return nil, nodeErr(root, "expected a program key")
		}
		root = body
	}
	body, err := decodeBody(root)
	if err != nil {
		return nil, err
	}
	return &Program{Body: body}, nil
}

func nodeErr(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("line %d: %s", n.Line, fmt.Sprintf(format, args...))
}

func fields(n *yaml.Node) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErr(n, "expected a mapping")
	}
	f := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		f[n.Content[i].Value] = n.Content[i+1]
	}
	return f, nil
}

func need(f map[string]*yaml.Node, parent *yaml.Node, key string) (*yaml.Node, error) {
	v, ok := f[key]
	if !ok {
		return nil, nodeErr(parent, "missing %q", key)
	}
	return v, nil
}

func scalar(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", nodeErr(n, "expected a scalar")
	}
	return n.Value, nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

func decodeBody(n *yaml.Node) ([]Stmt, error) {
	if isNull(n) {
		return []Stmt{}, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErr(n, "expected a statement list")
	}
	body := make([]Stmt, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := decodeStmt(item)
		if err != nil {
			return nil, err
		}
		body = append(body, s)
	}
	return body, nil
}

// optBody decodes an optional statement list; an absent key yields nil.
func optBody(f map[string]*yaml.Node, key string) ([]Stmt, error) {
	v, ok := f[key]
	if !ok {
		return nil, nil
	}
	return decodeBody(v)
}

// loopBody accepts either a bare statement list or a mapping with "body".
func loopBody(v *yaml.Node) ([]Stmt, error) {
	if v.Kind == yaml.MappingNode {
		f, err := fields(v)
		if err != nil {
			return nil, err
		}
		return decodeBody(f["body"])
	}
	return decodeBody(v)
}

func decodeStmt(n *yaml.Node) (Stmt, error) {
	if n.Kind == yaml.ScalarNode {
		if n.Value == "exit" {
			return Exit{}, nil
		}
		return nil, nodeErr(n, "unknown statement %q", n.Value)
	}
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, nodeErr(n, "a statement is a single-key mapping")
	}
	kind, v := n.Content[0].Value, n.Content[1]

	switch kind {
	case "var":
		return decodeVar(v)
	case "const":
		return decodeConst(v)
	case "assign":
		f, err := fields(v)
		if err != nil {
			return nil, err
		}
		target, err := exprField(f, v, "target")
		if err != nil {
			return nil, err
		}
		value, err := exprField(f, v, "value")
		if err != nil {
			return nil, err
		}
		return Assign{Target: target, Value: value}, nil
	case "if":
		return decodeIf(v)
	case "case":
		return decodeCase(v)
	case "for":
		return decodeFor(v)
	case "while":
		f, err := fields(v)
		if err != nil {
			return nil, err
		}
		cond, err := exprField(f, v, "cond")
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(f["body"])
		if err != nil {
			return nil, err
		}
		return While{Cond: cond, Body: body}, nil
	case "repeat":
		f, err := fields(v)
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(f["body"])
		if err != nil {
			return nil, err
		}
		until, err := exprField(f, v, "until")
		if err != nil {
			return nil, err
		}
		return Repeat{Body: body, Until: until}, nil
	case "forever":
		body, err := loopBody(v)
		if err != nil {
			return nil, err
		}
		return Forever{Body: body}, nil
	case "exit":
		return Exit{}, nil
	case "block":
		body, err := loopBody(v)
		if err != nil {
			return nil, err
		}
		return Block{Body: body}, nil
	case "return":
		if isNull(v) {
			return Return{}, nil
		}
		value, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		return Return{Value: value}, nil
	case "procedure", "function":
		return decodeProc(v, kind == "function")
	case "call":
		call, err := decodeCall(v)
		if err != nil {
			return nil, err
		}
		return CallStmt{Call: call}, nil
	}
	return nil, nodeErr(n, "unknown statement %q", kind)
}

func typeField(f map[string]*yaml.Node, parent *yaml.Node, key string) (Type, error) {
	v, err := need(f, parent, key)
	if err != nil {
		return Type{}, err
	}
	s, err := scalar(v)
	if err != nil {
		return Type{}, err
	}
	t, err := ParseType(s)
	if err != nil {
		return Type{}, nodeErr(v, "%v", err)
	}
	return t, nil
}

func exprField(f map[string]*yaml.Node, parent *yaml.Node, key string) (Expr, error) {
	v, err := need(f, parent, key)
	if err != nil {
		return nil, err
	}
	return decodeExpr(v)
}

func optExpr(f map[string]*yaml.Node, key string) (Expr, error) {
	v, ok := f[key]
	if !ok || isNull(v) {
		return nil, nil
	}
	return decodeExpr(v)
}

func decodeVar(v *yaml.Node) (Stmt, error) {
	f, err := fields(v)
	if err != nil {
		return nil, err
	}
	typ, err := typeField(f, v, "type")
	if err != nil {
		return nil, err
	}
	decl := VarDecl{Type: typ}

	if name, ok := f["name"]; ok {
		init, err := optExpr(f, "init")
		if err != nil {
			return nil, err
		}
		decl.Vars = append(decl.Vars, VarSpec{Name: name.Value, Init: init})
	}
	if names, ok := f["names"]; ok {
		for _, name := range names.Content {
			decl.Vars = append(decl.Vars, VarSpec{Name: name.Value})
		}
	}
	if vars, ok := f["vars"]; ok {
		for _, item := range vars.Content {
			vf, err := fields(item)
			if err != nil {
				return nil, err
			}
			name, err := need(vf, item, "name")
			if err != nil {
				return nil, err
			}
			init, err := optExpr(vf, "init")
			if err != nil {
				return nil, err
			}
			decl.Vars = append(decl.Vars, VarSpec{Name: name.Value, Init: init})
		}
	}
	if len(decl.Vars) == 0 {
		return nil, nodeErr(v, "variable declaration without names")
	}
	return decl, nil
}

func decodeConst(v *yaml.Node) (Stmt, error) {
	f, err := fields(v)
	if err != nil {
		return nil, err
	}
	name, err := need(f, v, "name")
	if err != nil {
		return nil, err
	}
	value, err := exprField(f, v, "value")
	if err != nil {
		return nil, err
	}
	decl := ConstDecl{Name: name.Value, Value: value}
	if _, ok := f["type"]; ok {
		typ, err := typeField(f, v, "type")
		if err != nil {
			return nil, err
		}
		decl.Type = &typ
	}
	return decl, nil
}

func decodeIf(v *yaml.Node) (Stmt, error) {
	f, err := fields(v)
	if err != nil {
		return nil, err
	}
	cond, err := exprField(f, v, "cond")
	if err != nil {
		return nil, err
	}
	then, err := decodeBody(f["then"])
	if err != nil {
		return nil, err
	}
	s := If{Cond: cond, Then: then}
	if arms, ok := f["elsif"]; ok {
		for _, item := range arms.Content {
			af, err := fields(item)
			if err != nil {
				return nil, err
			}
			c, err := exprField(af, item, "cond")
			if err != nil {
				return nil, err
			}
			body, err := decodeBody(af["then"])
			if err != nil {
				return nil, err
			}
			s.Elsifs = append(s.Elsifs, Elsif{Cond: c, Body: body})
		}
	}
	if s.Else, err = optBody(f, "else"); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeCase(v *yaml.Node) (Stmt, error) {
	f, err := fields(v)
	if err != nil {
		return nil, err
	}
	sel, err := exprField(f, v, "selector")
	if err != nil {
		return nil, err
	}
	s := Case{Selector: sel}
	if clauses, ok := f["clauses"]; ok {
		for _, item := range clauses.Content {
			cf, err := fields(item)
			if err != nil {
				return nil, err
			}
			values, err := need(cf, item, "values")
			if err != nil {
				return nil, err
			}
			clause := CaseClause{}
			if values.Kind == yaml.SequenceNode {
				for _, vn := range values.Content {
					e, err := decodeExpr(vn)
					if err != nil {
						return nil, err
					}
					clause.Values = append(clause.Values, e)
				}
			} else {
				e, err := decodeExpr(values)
				if err != nil {
					return nil, err
				}
				clause.Values = []Expr{e}
			}
			if clause.Body, err = decodeBody(cf["body"]); err != nil {
				return nil, err
			}
			s.Clauses = append(s.Clauses, clause)
		}
	}
	if s.Otherwise, err = optBody(f, "otherwise"); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeFor(v *yaml.Node) (Stmt, error) {
	f, err := fields(v)
	if err != nil {
		return nil, err
	}
	body, err := decodeBody(f["body"])
	if err != nil {
		return nil, err
	}
	s := For{Body: body}
	if name, ok := f["var"]; ok {
		s.Var = name.Value
	}
	if count, ok := f["count"]; ok {
		if name, ok := f["using"]; ok {
			s.Var = name.Value
		}
		if s.End, err = decodeExpr(count); err != nil {
			return nil, err
		}
		return s, nil
	}
	if s.Var == "" {
		return nil, nodeErr(v, "for loop with bounds needs a var")
	}
	if s.Start, err = exprField(f, v, "from"); err != nil {
		return nil, err
	}
	if s.End, err = exprField(f, v, "to"); err != nil {
		return nil, err
	}
	if s.Step, err = optExpr(f, "step"); err != nil {
		return nil, err
	}
	return s, nil
}

func decodeProc(v *yaml.Node, isFunction bool) (Stmt, error) {
	f, err := fields(v)
	if err != nil {
		return nil, err
	}
	name, err := need(f, v, "name")
	if err != nil {
		return nil, err
	}
	def := ProcDef{Name: name.Value}
	if params, ok := f["params"]; ok {
		for _, item := range params.Content {
			pf, err := fields(item)
			if err != nil {
				return nil, err
			}
			pname, err := need(pf, item, "name")
			if err != nil {
				return nil, err
			}
			typ, err := typeField(pf, item, "type")
			if err != nil {
				return nil, err
			}
			mode := ModeIn
			if m, ok := pf["mode"]; ok {
				switch m.Value {
				case "in":
				case "out":
					mode = ModeOut
				case "in out", "inout":
					mode = ModeInOut
				default:
					return nil, nodeErr(m, "unknown parameter mode %q", m.Value)
				}
			}
			def.Params = append(def.Params, Param{Name: pname.Value, Type: typ, Mode: mode})
		}
	}
	if isFunction {
		ret, err := typeField(f, v, "return")
		if err != nil {
			return nil, err
		}
		def.Return = &ret
	}
	if def.Body, err = decodeBody(f["body"]); err != nil {
		return nil, err
	}
	return def, nil
}

func decodeCall(v *yaml.Node) (Call, error) {
	if v.Kind == yaml.ScalarNode {
		return Call{Name: v.Value}, nil
	}
	f, err := fields(v)
	if err != nil {
		return Call{}, err
	}
	name, err := need(f, v, "name")
	if err != nil {
		return Call{}, err
	}
	call := Call{Name: name.Value}
	if args, ok := f["args"]; ok {
		for _, a := range args.Content {
			e, err := decodeExpr(a)
			if err != nil {
				return Call{}, err
			}
			call.Args = append(call.Args, e)
		}
	}
	return call, nil
}

func decodeExpr(n *yaml.Node) (Expr, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!int":
			v, err := strconv.ParseInt(n.Value, 0, 64)
			if err != nil {
				return nil, nodeErr(n, "bad integer %q", n.Value)
			}
			return IntLit{Value: v}, nil
		case "!!str", "!!bool":
			return Ident{Name: n.Value}, nil
		}
		return nil, nodeErr(n, "unexpected scalar %q", n.Value)
	case yaml.MappingNode:
	default:
		return nil, nodeErr(n, "expected an expression")
	}

	f, err := fields(n)
	if err != nil {
		return nil, err
	}
	if v, ok := f["str"]; ok {
		return StrLit{Value: v.Value}, nil
	}
	if v, ok := f["int"]; ok {
		return decodeExpr(v)
	}
	if v, ok := f["paren"]; ok {
		x, err := decodeExpr(v)
		if err != nil {
			return nil, err
		}
		return Paren{X: x}, nil
	}
	if v, ok := f["call"]; ok {
		call := Call{Name: v.Value}
		if args, ok := f["args"]; ok {
			for _, a := range args.Content {
				e, err := decodeExpr(a)
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, e)
			}
		}
		return call, nil
	}
	if v, ok := f["index"]; ok {
		at, err := exprField(f, n, "at")
		if err != nil {
			return nil, err
		}
		return Index{Name: v.Value, Index: at}, nil
	}
	opNode, err := need(f, n, "op")
	if err != nil {
		return nil, err
	}
	if _, ok := f["left"]; ok {
		op, ok := ParseBinaryOp(opNode.Value)
		if !ok {
			return nil, nodeErr(opNode, "unknown binary operator %q", opNode.Value)
		}
		left, err := exprField(f, n, "left")
		if err != nil {
			return nil, err
		}
		right, err := exprField(f, n, "right")
		if err != nil {
			return nil, err
		}
		return Binary{Op: op, Left: left, Right: right}, nil
	}
	op, ok := ParseUnaryOp(opNode.Value)
	if !ok {
		return nil, nodeErr(opNode, "unknown unary operator %q", opNode.Value)
	}
	x, err := exprField(f, n, "x")
	if err != nil {
		return nil, err
	}
	return Unary{Op: op, X: x}, nil
}

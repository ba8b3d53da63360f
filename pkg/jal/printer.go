package jal

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Printer writes the AST back as JAL source
type Printer struct {
	w      io.Writer
	indent int
}

// NewPrinter creates a new AST printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, indent: 0}
}

// PrintProgram prints a complete program
func (p *Printer) PrintProgram(prog *Program) {
	for _, s := range prog.Body {
		p.printStmt(s)
	}
}

func (p *Printer) writeIndent() {
	fmt.Fprint(p.w, strings.Repeat("  ", p.indent))
}

func (p *Printer) printBody(body []Stmt) {
	p.indent++
	for _, s := range body {
		p.printStmt(s)
	}
	p.indent--
}

func (p *Printer) printStmt(stmt Stmt) {
	p.writeIndent()
	switch s := stmt.(type) {
	case VarDecl:
		fmt.Fprintf(p.w, "var %s ", s.Type)
		for i, v := range s.Vars {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			fmt.Fprint(p.w, v.Name)
			if v.Init != nil {
				fmt.Fprint(p.w, " = ")
				p.printExpr(v.Init)
			}
		}
		fmt.Fprintln(p.w)
	case ConstDecl:
		fmt.Fprint(p.w, "const ")
		if s.Type != nil {
			fmt.Fprintf(p.w, "%s ", *s.Type)
		}
		fmt.Fprintf(p.w, "%s = ", s.Name)
		p.printExpr(s.Value)
		fmt.Fprintln(p.w)
	case Assign:
		p.printExpr(s.Target)
		fmt.Fprint(p.w, " = ")
		p.printExpr(s.Value)
		fmt.Fprintln(p.w)
	case If:
		p.printIf(s)
	case Case:
		p.printCase(s)
	case For:
		p.printFor(s)
	case While:
		fmt.Fprint(p.w, "while ")
		p.printExpr(s.Cond)
		fmt.Fprintln(p.w, " loop")
		p.printBody(s.Body)
		p.writeIndent()
		fmt.Fprintln(p.w, "end loop")
	case Repeat:
		fmt.Fprintln(p.w, "repeat")
		p.printBody(s.Body)
		p.writeIndent()
		fmt.Fprint(p.w, "until ")
		p.printExpr(s.Until)
		fmt.Fprintln(p.w)
	case Forever:
		fmt.Fprintln(p.w, "forever loop")
		p.printBody(s.Body)
		p.writeIndent()
		fmt.Fprintln(p.w, "end loop")
	case Exit:
		fmt.Fprintln(p.w, "exit loop")
	case Block:
		fmt.Fprintln(p.w, "block")
		p.printBody(s.Body)
		p.writeIndent()
		fmt.Fprintln(p.w, "end block")
	case Return:
		fmt.Fprint(p.w, "return")
		if s.Value != nil {
			fmt.Fprint(p.w, " ")
			p.printExpr(s.Value)
		}
		fmt.Fprintln(p.w)
	case ProcDef:
		p.printProcDef(s)
	case CallStmt:
		p.printExpr(s.Call)
		fmt.Fprintln(p.w)
	default:
		fmt.Fprintf(p.w, "-- unknown statement %T\n", stmt)
	}
}

func (p *Printer) printIf(s If) {
	fmt.Fprint(p.w, "if ")
	p.printExpr(s.Cond)
	fmt.Fprintln(p.w, " then")
	p.printBody(s.Then)
	for _, arm := range s.Elsifs {
		p.writeIndent()
		fmt.Fprint(p.w, "elsif ")
		p.printExpr(arm.Cond)
		fmt.Fprintln(p.w, " then")
		p.printBody(arm.Body)
	}
	if s.Else != nil {
		p.writeIndent()
		fmt.Fprintln(p.w, "else")
		p.printBody(s.Else)
	}
	p.writeIndent()
	fmt.Fprintln(p.w, "end if")
}

func (p *Printer) printCase(s Case) {
	fmt.Fprint(p.w, "case ")
	p.printExpr(s.Selector)
	fmt.Fprintln(p.w, " of")
	p.indent++
	for _, c := range s.Clauses {
		p.writeIndent()
		for i, v := range c.Values {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			p.printExpr(v)
		}
		fmt.Fprintln(p.w, ": block")
		p.printBody(c.Body)
		p.writeIndent()
		fmt.Fprintln(p.w, "end block")
	}
	if s.Otherwise != nil {
		p.writeIndent()
		fmt.Fprintln(p.w, "otherwise block")
		p.printBody(s.Otherwise)
		p.writeIndent()
		fmt.Fprintln(p.w, "end block")
	}
	p.indent--
	p.writeIndent()
	fmt.Fprintln(p.w, "end case")
}

func (p *Printer) printFor(s For) {
	fmt.Fprint(p.w, "for ")
	if s.Start == nil {
		p.printExpr(s.End)
		if s.Var != "" {
			fmt.Fprintf(p.w, " using %s", s.Var)
		}
	} else {
		fmt.Fprintf(p.w, "%s = ", s.Var)
		p.printExpr(s.Start)
		fmt.Fprint(p.w, " to ")
		p.printExpr(s.End)
		if s.Step != nil {
			fmt.Fprint(p.w, " step ")
			p.printExpr(s.Step)
		}
	}
	fmt.Fprintln(p.w, " loop")
	p.printBody(s.Body)
	p.writeIndent()
	fmt.Fprintln(p.w, "end loop")
}

func (p *Printer) printProcDef(s ProcDef) {
	kind := "procedure"
	if s.IsFunction() {
		kind = "function"
	}
	fmt.Fprintf(p.w, "%s %s", kind, s.Name)
	if len(s.Params) > 0 {
		fmt.Fprint(p.w, "(")
		for i, param := range s.Params {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			fmt.Fprintf(p.w, "%s %s %s", param.Type, param.Mode, param.Name)
		}
		fmt.Fprint(p.w, ")")
	}
	if s.IsFunction() {
		fmt.Fprintf(p.w, " return %s", *s.Return)
	}
	fmt.Fprintln(p.w, " is")
	p.printBody(s.Body)
	p.writeIndent()
	fmt.Fprintf(p.w, "end %s\n", kind)
}

func (p *Printer) printExpr(expr Expr) {
	switch e := expr.(type) {
	case IntLit:
		fmt.Fprintf(p.w, "%d", e.Value)
	case StrLit:
		fmt.Fprint(p.w, strconv.Quote(e.Value))
	case Ident:
		fmt.Fprint(p.w, e.Name)
	case Paren:
		fmt.Fprint(p.w, "(")
		p.printExpr(e.X)
		fmt.Fprint(p.w, ")")
	case Unary:
		fmt.Fprint(p.w, e.Op)
		p.printExprParen(e.X)
	case Binary:
		p.printExprParen(e.Left)
		fmt.Fprintf(p.w, " %s ", e.Op)
		p.printExprParen(e.Right)
	case Call:
		fmt.Fprint(p.w, e.Name)
		if len(e.Args) > 0 {
			fmt.Fprint(p.w, "(")
			for i, arg := range e.Args {
				if i > 0 {
					fmt.Fprint(p.w, ", ")
				}
				p.printExpr(arg)
			}
			fmt.Fprint(p.w, ")")
		}
	case Index:
		fmt.Fprintf(p.w, "%s[", e.Name)
		p.printExpr(e.Index)
		fmt.Fprint(p.w, "]")
	default:
		fmt.Fprintf(p.w, "<unknown expr %T>", expr)
	}
}

// printExprParen prints an operand, making the tree's grouping visible
func (p *Printer) printExprParen(expr Expr) {
	switch expr.(type) {
	case Binary, Unary:
		fmt.Fprint(p.w, "(")
		p.printExpr(expr)
		fmt.Fprint(p.w, ")")
	default:
		p.printExpr(expr)
	}
}

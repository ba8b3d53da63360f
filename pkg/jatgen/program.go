// Package jatgen generates C source from a JAL syntax tree.
//
// Generation is a single left-to-right pass. Constants, globals and
// procedure definitions are written at file scope in declaration order;
// the remaining top-level statements form the body of main.
package jatgen

import (
	"io"

	"github.com/jallib/jat/pkg/jal"
	"github.com/jallib/jat/pkg/symtab"
)

// Options configures the generated translation unit.
type Options struct {
	NoPreamble    bool // omit the #include lines
	OmitEmptyMain bool // skip main when there are no top-level statements
}

var preamble = []string{
	"#include <stdint.h>",
	"#include <stdbool.h>",
}

// Generator translates one program.
type Generator struct {
	out  io.Writer
	opts Options
	syms *symtab.Table
	next int // fresh identifier counter, threaded through every context

	main     emitter
	wrote    bool
	lastFunc bool
}

// New creates a generator writing to w.
func New(w io.Writer, opts Options) *Generator {
	return &Generator{out: w, opts: opts, syms: symtab.New()}
}

// Symbols exposes the symbol table, e.g. for dumping after generation.
func (g *Generator) Symbols() *symtab.Table { return g.syms }

func (g *Generator) newContext(fn *symtab.Function, out *emitter) *context {
	return &context{syms: g.syms, fn: fn, out: out, next: g.next}
}

// Generate writes the C translation of prog. Each top-level definition is
// generated into its own buffer and written only when it succeeds.
func (g *Generator) Generate(prog *jal.Program) error {
	if !g.opts.NoPreamble {
		var e emitter
		for _, l := range preamble {
			e.line(0, "%s", l)
		}
		if err := g.write(e.String(), true); err != nil {
			return err
		}
	}

	for _, s := range prog.Body {
		if err := g.genTopLevel(s); err != nil {
			return err
		}
	}

	if g.main.Len() == 0 && g.opts.OmitEmptyMain {
		return nil
	}
	var e emitter
	e.line(0, "int main(void) {")
	e.raw(g.main.String())
	e.line(1, "return 0;")
	e.line(0, "}")
	return g.write(e.String(), true)
}

func (g *Generator) genTopLevel(s jal.Stmt) error {
	if def, ok := s.(jal.ProcDef); ok {
		var e emitter
		if err := g.genProcDef(def, &e); err != nil {
			return err
		}
		return g.write(e.String(), true)
	}

	// declarations and statements of main share one path; declarations
	// may also add an assignment to main
	var decls, stage emitter
	c := g.newContext(nil, &stage)
	c.decls = &decls
	if err := c.genStmt(s, 1); err != nil {
		return err
	}
	g.next = c.next
	g.main.raw(stage.String())
	if decls.Len() == 0 {
		return nil
	}
	return g.write(decls.String(), false)
}

// write commits a chunk, separating functions from their neighbours by
// a blank line.
func (g *Generator) write(text string, isFunc bool) error {
	if g.wrote && (isFunc || g.lastFunc) {
		text = "\n" + text
	}
	if _, err := io.WriteString(g.out, text); err != nil {
		return err
	}
	g.wrote = true
	g.lastFunc = isFunc
	return nil
}

package jatgen

import (
	"github.com/jallib/jat/pkg/symtab"
)

// context is the state of one definition being generated: a procedure or
// function body, or one top-level statement of main.
type context struct {
	syms  *symtab.Table
	fn    *symtab.Function // nil for top-level code
	out   *emitter         // statements at the current position
	decls *emitter         // file-scope declarations; top-level code only

	next     int // last fresh identifier number handed out
	loops    []*loopFrame
	switches int // switch statements currently open
}

// loopFrame tracks the innermost loops so exit loop can leave them.
type loopFrame struct {
	label    string // exit label, allocated on first use from inside a switch
	switches int    // switch depth when the loop was opened
}

func (c *context) scope() string { return c.syms.ScopeName() }

func (c *context) pushLoop() *loopFrame {
	f := &loopFrame{switches: c.switches}
	c.loops = append(c.loops, f)
	return f
}

// popLoop closes the innermost loop and places its exit label, if used.
func (c *context) popLoop(f *loopFrame, indent int) {
	c.loops = c.loops[:len(c.loops)-1]
	if f.label != "" {
		c.out.line(indent, "%s: ;", f.label)
	}
}

// capture runs gen with output redirected and returns what it wrote.
func (c *context) capture(gen func() error) (string, error) {
	saved := c.out
	c.out = &emitter{}
	err := gen()
	text := c.out.String()
	c.out = saved
	return text, err
}

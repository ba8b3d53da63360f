package jatgen

import (
	"bytes"
	"fmt"
	"strings"
)

const indentUnit = "    "

// emitter accumulates generated C lines.
type emitter struct {
	buf bytes.Buffer
}

func (e *emitter) indent(level int) {
	e.buf.WriteString(strings.Repeat(indentUnit, level))
}

func (e *emitter) line(level int, format string, args ...any) {
	e.indent(level)
	fmt.Fprintf(&e.buf, format, args...)
	e.buf.WriteByte('\n')
}

// stmts writes hoisted statements, one per line.
func (e *emitter) stmts(level int, lines []string) {
	for _, l := range lines {
		e.line(level, "%s", l)
	}
}

func (e *emitter) raw(text string) {
	e.buf.WriteString(text)
}

func (e *emitter) String() string { return e.buf.String() }

func (e *emitter) Len() int { return e.buf.Len() }

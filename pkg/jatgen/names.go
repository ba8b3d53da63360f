package jatgen

import (
	"fmt"
	"strings"

	"github.com/jallib/jat/pkg/symtab"
)

const (
	tempPrefix  = symtab.ReservedPrefix + "t"
	labelPrefix = symtab.ReservedPrefix + "exit"
)

// newTemp returns a fresh temporary name. Temporaries and labels share
// one counter, so no two invented names are ever equal.
func (c *context) newTemp() string {
	c.next++
	return fmt.Sprintf("%s%d", tempPrefix, c.next)
}

// newLabel returns a fresh loop exit label.
func (c *context) newLabel() string {
	c.next++
	return fmt.Sprintf("%s%d", labelPrefix, c.next)
}

// cString renders s as a C string literal.
func cString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if ch < 0x20 || ch >= 0x7f {
				fmt.Fprintf(&b, `\%03o`, ch)
			} else {
				b.WriteByte(ch)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

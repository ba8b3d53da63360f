package ctypes

import "strings"

var keywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true,
	"bool": true, "main": true,
}

// Ident maps a JAL identifier to C. Pseudo-variable accessors such as
// pin_a0'put become pin_a0__put; C keywords get a trailing underscore.
// Two JAL names can map to the same C name, so declarations are checked
// against the mapped form.
func Ident(name string) string {
	name = strings.ReplaceAll(name, "'", "__")
	if keywords[name] {
		return name + "_"
	}
	return name
}

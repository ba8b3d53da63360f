package jal

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeTag is the closed set of JAL type keywords.
type TypeTag int

const (
	Bit TypeTag = iota
	Byte
	Word
	Dword
	Sbyte
	Sword
	Sdword
	String
	Array
)

var typeTagNames = []string{"bit", "byte", "word", "dword", "sbyte", "sword", "sdword", "string", "array"}

func (t TypeTag) String() string {
	if int(t) >= 0 && int(t) < len(typeTagNames) {
		return typeTagNames[t]
	}
	return fmt.Sprintf("TypeTag(%d)", int(t))
}

// IsSigned reports whether values of the tag are signed integers.
func (t TypeTag) IsSigned() bool {
	return t == Sbyte || t == Sword || t == Sdword
}

// Type is a declared JAL type. String carries its capacity in Len; Array
// carries Elem and Len, where Len == 0 is an open array (parameters only).
type Type struct {
	Tag  TypeTag
	Elem *Type
	Len  int
}

// Scalar returns the type for a plain tag.
func Scalar(tag TypeTag) Type { return Type{Tag: tag} }

// StringOf returns a string type holding n characters.
func StringOf(n int) Type { return Type{Tag: String, Len: n} }

// ArrayOf returns an array of n elements; n == 0 is open.
func ArrayOf(elem Type, n int) Type {
	e := elem
	return Type{Tag: Array, Elem: &e, Len: n}
}

// IsArray reports whether the type is stored as an array in C.
func (t Type) IsArray() bool { return t.Tag == Array || t.Tag == String }

// Equal compares two types structurally.
func (t Type) Equal(u Type) bool {
	if t.Tag != u.Tag || t.Len != u.Len {
		return false
	}
	if t.Elem == nil || u.Elem == nil {
		return t.Elem == u.Elem
	}
	return t.Elem.Equal(*u.Elem)
}

// String renders the type in the form accepted by ParseType.
func (t Type) String() string {
	switch t.Tag {
	case String:
		return fmt.Sprintf("string[%d]", t.Len)
	case Array:
		elem := "?"
		if t.Elem != nil {
			elem = t.Elem.String()
		}
		if t.Len == 0 {
			return elem + "[]"
		}
		return fmt.Sprintf("%s[%d]", elem, t.Len)
	}
	return t.Tag.String()
}

// ParseType parses "byte", "string[10]", "word[4]" or "byte[]".
// Type keywords are case-insensitive like every JAL word.
func ParseType(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	base, dims, hasDim := strings.Cut(s, "[")
	base = strings.TrimSpace(base)

	tag := -1
	for i, name := range typeTagNames {
		if name == base && TypeTag(i) != Array {
			tag = i
		}
	}
	if tag < 0 {
		return Type{}, fmt.Errorf("unknown type %q", s)
	}
	if !hasDim {
		if TypeTag(tag) == String {
			return Type{}, fmt.Errorf("string type %q needs a length", s)
		}
		return Scalar(TypeTag(tag)), nil
	}

	lenText, rest, ok := strings.Cut(dims, "]")
	if !ok || strings.TrimSpace(rest) != "" {
		return Type{}, fmt.Errorf("malformed type %q", s)
	}
	n := 0
	if lenText = strings.TrimSpace(lenText); lenText != "" {
		v, err := strconv.Atoi(lenText)
		if err != nil || v <= 0 {
			return Type{}, fmt.Errorf("bad length in type %q", s)
		}
		n = v
	}
	if TypeTag(tag) == String {
		if n == 0 {
			return Type{}, fmt.Errorf("string type %q needs a length", s)
		}
		return StringOf(n), nil
	}
	return ArrayOf(Scalar(TypeTag(tag)), n), nil
}

// Package ctypes models the C99 types that JAL types lower to, and their
// spelling in generated declarations.
package ctypes

import (
	"fmt"
	"math"

	"github.com/jallib/jat/pkg/diag"
	"github.com/jallib/jat/pkg/jal"
)

// Type is the interface for all C types
type Type interface {
	implType()
	String() string
}

// Signedness represents signed/unsigned for integer types
type Signedness int

const (
	Signed Signedness = iota
	Unsigned
)

func (s Signedness) String() string {
	if s == Signed {
		return "signed"
	}
	return "unsigned"
}

// IntSize represents the width of <stdint.h> integer types
type IntSize int

const (
	I8 IntSize = iota
	I16
	I32
)

func (s IntSize) String() string {
	names := []string{"i8", "i16", "i32"}
	if int(s) < len(names) {
		return names[s]
	}
	return "?"
}

// Bits returns the width in bits.
func (s IntSize) Bits() int {
	return 8 << s
}

// Tvoid represents the void type
type Tvoid struct{}

// Tbool represents the <stdbool.h> bool type
type Tbool struct{}

// Tchar represents plain char, the element type of strings
type Tchar struct{}

// Tint represents the exact-width integer types
type Tint struct {
	Size IntSize
	Sign Signedness
}

// Tpointer represents pointer types
type Tpointer struct {
	Elem Type
}

// Tarray represents array types
type Tarray struct {
	Elem Type
	Size int64 // -1 for incomplete array
}

// Marker methods for Type interface
func (Tvoid) implType()    {}
func (Tbool) implType()    {}
func (Tchar) implType()    {}
func (Tint) implType()     {}
func (Tpointer) implType() {}
func (Tarray) implType()   {}

// String methods for types
func (Tvoid) String() string { return "void" }
func (Tbool) String() string { return "bool" }
func (Tchar) String() string { return "char" }

func (t Tint) String() string {
	prefix := "int"
	if t.Sign == Unsigned {
		prefix = "uint"
	}
	return fmt.Sprintf("%s%d_t", prefix, t.Size.Bits())
}

func (t Tpointer) String() string {
	if t.Elem == nil {
		return "void *"
	}
	return t.Elem.String() + " *"
}

func (t Tarray) String() string {
	if t.Elem == nil {
		return "?[]"
	}
	if t.Size < 0 {
		return t.Elem.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", t.Elem, t.Size)
}

// Common type constructors

// Void returns the void type
func Void() Type { return Tvoid{} }

// Bool returns the bool type
func Bool() Type { return Tbool{} }

// Char returns the plain char type
func Char() Type { return Tchar{} }

// UInt8 returns uint8_t
func UInt8() Type { return Tint{Size: I8, Sign: Unsigned} }

// UInt16 returns uint16_t
func UInt16() Type { return Tint{Size: I16, Sign: Unsigned} }

// UInt32 returns uint32_t
func UInt32() Type { return Tint{Size: I32, Sign: Unsigned} }

// Int8 returns int8_t
func Int8() Type { return Tint{Size: I8, Sign: Signed} }

// Int16 returns int16_t
func Int16() Type { return Tint{Size: I16, Sign: Signed} }

// Int32 returns int32_t
func Int32() Type { return Tint{Size: I32, Sign: Signed} }

// Pointer returns a pointer to the given type
func Pointer(elem Type) Type {
	return Tpointer{Elem: elem}
}

// Array returns an array type
func Array(elem Type, size int64) Type {
	return Tarray{Elem: elem, Size: size}
}

// Equal checks if two types are equal
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch ta := a.(type) {
	case Tvoid:
		_, ok := b.(Tvoid)
		return ok
	case Tbool:
		_, ok := b.(Tbool)
		return ok
	case Tchar:
		_, ok := b.(Tchar)
		return ok
	case Tint:
		tb, ok := b.(Tint)
		return ok && ta.Size == tb.Size && ta.Sign == tb.Sign
	case Tpointer:
		tb, ok := b.(Tpointer)
		return ok && Equal(ta.Elem, tb.Elem)
	case Tarray:
		tb, ok := b.(Tarray)
		return ok && ta.Size == tb.Size && Equal(ta.Elem, tb.Elem)
	}
	return false
}

var scalarTypes = map[jal.TypeTag]Type{
	jal.Bit:    Bool(),
	jal.Byte:   UInt8(),
	jal.Word:   UInt16(),
	jal.Dword:  UInt32(),
	jal.Sbyte:  Int8(),
	jal.Sword:  Int16(),
	jal.Sdword: Int32(),
}

// FromJAL maps a declared JAL type to its C type. Strings become char
// arrays with room for the terminator.
func FromJAL(t jal.Type) (Type, error) {
	if ct, ok := scalarTypes[t.Tag]; ok {
		return ct, nil
	}
	switch t.Tag {
	case jal.String:
		return Array(Char(), int64(t.Len)+1), nil
	case jal.Array:
		if t.Elem == nil {
			return nil, diag.Errorf(diag.ErrUnmappedType, t.Tag.String(), "", "array without element type")
		}
		elem, ok := scalarTypes[t.Elem.Tag]
		if !ok {
			return nil, diag.Errorf(diag.ErrUnmappedType, t.Elem.Tag.String(), "", "arrays hold scalar elements only")
		}
		size := int64(t.Len)
		if size == 0 {
			size = -1
		}
		return Array(elem, size), nil
	}
	return nil, diag.New(diag.ErrUnmappedType, t.Tag.String(), "")
}

// Spelling returns the C spelling for a scalar or string tag. An array has
// no spelling of its own; use FromJAL with its element type.
func Spelling(tag jal.TypeTag) (string, error) {
	if ct, ok := scalarTypes[tag]; ok {
		return ct.String(), nil
	}
	if tag == jal.String {
		return Char().String(), nil
	}
	return "", diag.New(diag.ErrUnmappedType, tag.String(), "")
}

// Declarator renders a declaration of name with type t:
// "uint8_t x", "uint8_t *x", "char s[11]", "uint8_t buf[]".
func Declarator(t Type, name string) string {
	switch ct := t.(type) {
	case Tarray:
		if ct.Size < 0 {
			return fmt.Sprintf("%s %s[]", ct.Elem, name)
		}
		return fmt.Sprintf("%s %s[%d]", ct.Elem, name, ct.Size)
	case Tpointer:
		return ct.String() + name
	}
	return t.String() + " " + name
}

// UniversalTag picks the smallest JAL tag that holds v: unsigned tags for
// non-negative values, signed tags otherwise.
func UniversalTag(v int64) jal.TypeTag {
	switch {
	case v >= 0 && v <= math.MaxUint8:
		return jal.Byte
	case v >= 0 && v <= math.MaxUint16:
		return jal.Word
	case v >= 0:
		return jal.Dword
	case v >= math.MinInt8:
		return jal.Sbyte
	case v >= math.MinInt16:
		return jal.Sword
	}
	return jal.Sdword
}

var tagRanges = map[jal.TypeTag][2]int64{
	jal.Bit:    {0, 1},
	jal.Byte:   {0, math.MaxUint8},
	jal.Word:   {0, math.MaxUint16},
	jal.Dword:  {0, math.MaxUint32},
	jal.Sbyte:  {math.MinInt8, math.MaxInt8},
	jal.Sword:  {math.MinInt16, math.MaxInt16},
	jal.Sdword: {math.MinInt32, math.MaxInt32},
}

// Range returns the smallest and largest value of a scalar tag.
func Range(tag jal.TypeTag) (lo, hi int64, ok bool) {
	r, ok := tagRanges[tag]
	return r[0], r[1], ok
}

// Fits reports whether v is a value of the scalar tag.
func Fits(v int64, tag jal.TypeTag) bool {
	lo, hi, ok := Range(tag)
	return ok && v >= lo && v <= hi
}

// Holds reports whether every value of b is also a value of a.
func Holds(a, b jal.TypeTag) bool {
	alo, ahi, ok := Range(a)
	if !ok {
		return false
	}
	blo, bhi, ok := Range(b)
	return ok && alo <= blo && bhi <= ahi
}

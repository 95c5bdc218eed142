package types

import "fmt"

// Kind identifies the shape of a value type
type Kind int

const (
	KindInvalid Kind = iota // zero value; never produced by the parser
	KindInt
	KindFloat
	KindBool
	KindString
	KindVoid
	KindArray
)

// Type is a Frogito value type. Elem is set only for arrays.
type Type struct {
	Kind Kind
	Elem *Type
}

var (
	Int    = Type{Kind: KindInt}
	Float  = Type{Kind: KindFloat}
	Bool   = Type{Kind: KindBool}
	String = Type{Kind: KindString}
	Void   = Type{Kind: KindVoid}
)

// ArrayOf returns the array type with the given element type
func ArrayOf(elem Type) Type {
	e := elem
	return Type{Kind: KindArray, Elem: &e}
}

// Equal reports structural equality; arrays compare element types recursively
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind != KindArray {
		return true
	}
	if t.Elem == nil || other.Elem == nil {
		return t.Elem == other.Elem
	}
	return t.Elem.Equal(*other.Elem)
}

// AssignableFrom reports whether a value of type src may be stored in t.
// There is no widening: the types must be equal.
func (t Type) AssignableFrom(src Type) bool {
	return t.Equal(src)
}

// IsNumeric reports whether t is int or float
func (t Type) IsNumeric() bool {
	return t.Kind == KindInt || t.Kind == KindFloat
}

// IsScalar reports whether t is a primitive non-void value type
func (t Type) IsScalar() bool {
	switch t.Kind {
	case KindInt, KindFloat, KindBool, KindString:
		return true
	}
	return false
}

// IsArray reports whether t is an array type
func (t Type) IsArray() bool {
	return t.Kind == KindArray
}

// IsValid reports whether t was resolved
func (t Type) IsValid() bool {
	return t.Kind != KindInvalid
}

// ElemType returns the element type of an array, or the invalid type
func (t Type) ElemType() Type {
	if t.Kind != KindArray || t.Elem == nil {
		return Type{}
	}
	return *t.Elem
}

// String renders the type in source syntax
func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindVoid:
		return "void"
	case KindArray:
		if t.Elem == nil {
			return "array<?>"
		}
		return fmt.Sprintf("array<%s>", t.Elem.String())
	default:
		return "<invalid>"
	}
}

package types

import "fmt"

// TypeCode is the one-byte type tag stored in the function table of a
// compiled module
type TypeCode byte

const (
	TYPE_INT    TypeCode = 1
	TYPE_FLOAT  TypeCode = 2
	TYPE_BOOL   TypeCode = 3
	TYPE_STRING TypeCode = 4
	TYPE_VOID   TypeCode = 5
	TYPE_ARRAY  TypeCode = 6
)

// String returns the string representation of the type code
func (t TypeCode) String() string {
	switch t {
	case TYPE_INT:
		return "INT"
	case TYPE_FLOAT:
		return "FLOAT"
	case TYPE_BOOL:
		return "BOOL"
	case TYPE_STRING:
		return "STRING"
	case TYPE_VOID:
		return "VOID"
	case TYPE_ARRAY:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is one of the known codes
func (t TypeCode) Valid() bool {
	return t >= TYPE_INT && t <= TYPE_ARRAY
}

// Code maps a type to its wire code. Arrays lose their element type.
func (t Type) Code() (TypeCode, error) {
	switch t.Kind {
	case KindInt:
		return TYPE_INT, nil
	case KindFloat:
		return TYPE_FLOAT, nil
	case KindBool:
		return TYPE_BOOL, nil
	case KindString:
		return TYPE_STRING, nil
	case KindVoid:
		return TYPE_VOID, nil
	case KindArray:
		return TYPE_ARRAY, nil
	default:
		return 0, fmt.Errorf("type %s has no type code", t)
	}
}

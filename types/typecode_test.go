package types

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestTypeCodes(t *testing.T) {
	tests := []struct {
		typ  Type
		code TypeCode
		val  int
		name string
	}{
		{Int, TYPE_INT, 1, "INT"},
		{Float, TYPE_FLOAT, 2, "FLOAT"},
		{Bool, TYPE_BOOL, 3, "BOOL"},
		{String, TYPE_STRING, 4, "STRING"},
		{Void, TYPE_VOID, 5, "VOID"},
		{ArrayOf(ArrayOf(Int)), TYPE_ARRAY, 6, "ARRAY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := tt.typ.Code()
			be.Err(t, err, nil)
			be.Equal(t, code, tt.code)
			be.Equal(t, int(code), tt.val)
			be.Equal(t, code.String(), tt.name)
			be.True(t, code.Valid())
		})
	}
}

func TestTypeCodeInvalid(t *testing.T) {
	_, err := Type{}.Code()
	be.Err(t, err)
	be.True(t, !TypeCode(0).Valid())
	be.True(t, !TypeCode(7).Valid())
	be.Equal(t, TypeCode(9).String(), "UNKNOWN")
}

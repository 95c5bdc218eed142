package bytecode

import (
	"math"
	"strings"
	"testing"

	"frogc/diag"
	"frogc/parser"
	"frogc/types"

	"github.com/nalgeon/be"
)

func TestConstantPoolDeduplicates(t *testing.T) {
	p := NewConstantPool()

	one := p.AddInt(1)
	be.Equal(t, p.AddInt(1), one)
	be.True(t, p.AddFloat(1) != one)
	be.True(t, p.AddString("1") != one)
	be.True(t, p.AddBool(true) != one)

	zero := p.AddFloat(0)
	negZero := p.AddFloat(math.Copysign(0, -1))
	be.True(t, zero != negZero)

	nan := p.AddFloat(math.NaN())
	be.Equal(t, p.AddFloat(math.NaN()), nan)

	be.Equal(t, p.AddBool(false), p.AddBool(false))
	be.Equal(t, p.AddString("x"), p.AddString("x"))
	be.Equal(t, p.Len(), 9)
}

func TestConstantPoolAddValue(t *testing.T) {
	p := NewConstantPool()
	idx, err := p.AddValue(parser.StringValue("hi"))
	be.Err(t, err, nil)
	be.Equal(t, p.Entries()[idx], Constant{Tag: CONST_STRING, Str: "hi"})

	_, err = p.AddValue(parser.Value{})
	be.Err(t, err, "no constant")
}

func TestConstantString(t *testing.T) {
	tests := []struct {
		c    Constant
		want string
	}{
		{Constant{Tag: CONST_INT, Int: -3}, "INT(-3)"},
		{Constant{Tag: CONST_FLOAT, Float: 2}, "FLOAT(2.0)"},
		{Constant{Tag: CONST_FLOAT, Float: 0.5}, "FLOAT(0.5)"},
		{Constant{Tag: CONST_BOOL, Bool: true}, "BOOL(true)"},
		{Constant{Tag: CONST_STRING, Str: "a\"b"}, `STRING("a\"b")`},
		{Constant{Tag: 9}, "UNKNOWN(9)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			be.Equal(t, tt.c.String(), tt.want)
		})
	}
}

func TestOpCodeNames(t *testing.T) {
	tests := []struct {
		op   OpCode
		want string
		code byte
	}{
		{OP_PUSH_CONST, "PUSH_CONST", 0},
		{OP_STORE_GLOBAL, "STORE_GLOBAL", 4},
		{OP_ADD, "ADD", 5},
		{OP_NEG, "NEG", 10},
		{OP_EQ, "EQ", 11},
		{OP_NOT, "NOT", 19},
		{OP_JUMP, "JUMP", 20},
		{OP_RET, "RET", 23},
		{OP_NEW_ARRAY, "NEW_ARRAY", 24},
		{OP_POP, "POP", 27},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			be.Equal(t, tt.op.String(), tt.want)
			be.Equal(t, byte(tt.op), tt.code)
			be.True(t, tt.op.Valid())
		})
	}
	be.Equal(t, OpCode(28).String(), "UNKNOWN")
	be.True(t, !OpCode(28).Valid())
	be.Equal(t, len(OpCodeNames), 28)
}

// validModule returns a small module that passes Validate
func validModule() *Module {
	return &Module{
		Constants: []Constant{
			{Tag: CONST_STRING, Str: "print"},
			{Tag: CONST_INT, Int: 1},
			{Tag: CONST_STRING, Str: "x"},
		},
		Functions: []FunctionInfo{
			{NameConst: 0, ParamCount: 1, Entry: NoEntry, Result: types.TYPE_VOID, Params: []types.TypeCode{types.TYPE_VOID}},
		},
		Code: []Instruction{
			InstA(OP_PUSH_CONST, 1),
			InstA(OP_STORE_GLOBAL, 2),
			InstA(OP_LOAD_GLOBAL, 2),
			InstAB(OP_CALL, 0, 1),
			InstA(OP_JUMP, 5),
		},
	}
}

func TestValidate(t *testing.T) {
	be.Err(t, validModule().Validate(), nil)

	tests := []struct {
		name   string
		mutate func(m *Module)
		want   string
	}{
		{"unpatched jump", func(m *Module) { m.Code[4].A = Unpatched }, "unpatched JUMP"},
		{"jump past end", func(m *Module) { m.Code[4].A = 6 }, "jump target 6 outside code"},
		{"constant out of range", func(m *Module) { m.Code[0].A = 3 }, "constant 3 out of range"},
		{"global not a string", func(m *Module) { m.Code[1].A = 1 }, "global name constant 1 is not a string"},
		{"function out of range", func(m *Module) { m.Code[3].A = 1 }, "function 1 out of range"},
		{"wrong argument count", func(m *Module) { m.Code[3].B = 2 }, "call passes 2 arguments, function takes 1"},
		{"missing operand", func(m *Module) { m.Code[0] = Inst(OP_PUSH_CONST) }, "malformed PUSH_CONST operands"},
		{"extra operand", func(m *Module) { m.Code[0] = InstB(OP_ADD, 1) }, "malformed ADD operands"},
		{"unknown opcode", func(m *Module) { m.Code[0] = Inst(OpCode(99)) }, "unknown opcode 99"},
		{"unknown tag", func(m *Module) { m.Constants[1].Tag = 7 }, "unknown tag 7"},
		{"bad function name", func(m *Module) { m.Functions[0].NameConst = 1 }, "name constant 1 is not a string"},
		{"param count mismatch", func(m *Module) { m.Functions[0].Params = nil }, "0 parameter types for 1 parameters"},
		{"entry outside code", func(m *Module) { m.Functions[0].Entry = 5 }, "entry 5 outside code"},
		{"bad result code", func(m *Module) { m.Functions[0].Result = 0 }, "unknown result type code 0"},
		{"bad param code", func(m *Module) { m.Functions[0].Params[0] = 9 }, "parameter 0 has unknown type code 9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModule()
			tt.mutate(m)
			err := m.Validate()
			be.Err(t, err, tt.want)
			kind, _ := diag.KindOf(err)
			be.Equal(t, kind, diag.KindFormat)
		})
	}
}

func TestDisassembleToleratesBadIndices(t *testing.T) {
	m := &Module{
		Constants: []Constant{{Tag: CONST_INT, Int: 4}},
		Code: []Instruction{
			InstA(OP_PUSH_CONST, 99),
			InstA(OP_LOAD_GLOBAL, 0),
			InstAB(OP_CALL, 42, 1),
			InstA(OP_JUMP, Unpatched),
			InstB(OP_LOAD_LOCAL, 3),
		},
	}
	before := len(m.Code)

	be.Equal(t, DisassembleString(m), listing(
		`0000  PUSH_CONST ?99`,
		`0001  LOAD_GLOBAL ?0`,
		`0002  CALL ?@42, 1`,
		`0003  JUMP L0`,
		`0004  LOAD_LOCAL 3`,
	))
	be.Equal(t, len(m.Code), before)
	be.Equal(t, m.Code[3].A, Unpatched)
}

func TestDisassembleWriter(t *testing.T) {
	m := validModule()
	var sb strings.Builder
	be.Err(t, Disassemble(&sb, m), nil)
	be.Equal(t, sb.String(), listing(
		`0000  PUSH_CONST INT(1)`,
		`0001  STORE_GLOBAL "x"`,
		`0002  LOAD_GLOBAL "x"`,
		`0003  CALL print@0, 1`,
		`0004  JUMP L0`,
		`L0:`,
	))
}

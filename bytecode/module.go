package bytecode

import (
	"fmt"
	"math"

	"frogc/diag"
	"frogc/parser"
	"frogc/types"
)

// NoEntry marks a function without an emitted body (builtins, or a user
// function before its body is generated)
const NoEntry uint32 = math.MaxUint32

// Unpatched is the placeholder target of a jump awaiting its destination
const Unpatched uint32 = math.MaxUint32

// ConstTag is the wire tag of a constant pool entry
type ConstTag byte

const (
	CONST_INT    ConstTag = 1
	CONST_FLOAT  ConstTag = 2
	CONST_BOOL   ConstTag = 3
	CONST_STRING ConstTag = 4
)

// String returns the tag name used by the disassembler
func (t ConstTag) String() string {
	switch t {
	case CONST_INT:
		return "INT"
	case CONST_FLOAT:
		return "FLOAT"
	case CONST_BOOL:
		return "BOOL"
	case CONST_STRING:
		return "STRING"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is a known tag
func (t ConstTag) Valid() bool {
	return t >= CONST_INT && t <= CONST_STRING
}

// Constant is one constant pool entry
type Constant struct {
	Tag   ConstTag
	Int   int32
	Float float64
	Bool  bool
	Str   string
}

// String renders the constant as TAG(value)
func (c Constant) String() string {
	switch c.Tag {
	case CONST_INT:
		return fmt.Sprintf("INT(%d)", c.Int)
	case CONST_FLOAT:
		return "FLOAT(" + parser.FormatFloat(c.Float) + ")"
	case CONST_BOOL:
		return fmt.Sprintf("BOOL(%t)", c.Bool)
	case CONST_STRING:
		return fmt.Sprintf("STRING(%q)", c.Str)
	default:
		return fmt.Sprintf("UNKNOWN(%d)", c.Tag)
	}
}

// constKey identifies a constant for deduplication. Floats are keyed by
// their bit pattern.
type constKey struct {
	tag  ConstTag
	bits uint64
	str  string
}

func (c Constant) key() constKey {
	switch c.Tag {
	case CONST_INT:
		return constKey{tag: c.Tag, bits: uint64(uint32(c.Int))}
	case CONST_FLOAT:
		return constKey{tag: c.Tag, bits: math.Float64bits(c.Float)}
	case CONST_BOOL:
		if c.Bool {
			return constKey{tag: c.Tag, bits: 1}
		}
		return constKey{tag: c.Tag}
	default:
		return constKey{tag: c.Tag, str: c.Str}
	}
}

// ConstantPool is an append-only, deduplicated list of constants. Indices
// are stable once assigned.
type ConstantPool struct {
	entries []Constant
	index   map[constKey]uint32
}

// NewConstantPool creates an empty pool
func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: make(map[constKey]uint32)}
}

// Add returns the index of c, appending it if no equal entry exists
func (p *ConstantPool) Add(c Constant) uint32 {
	k := c.key()
	if idx, ok := p.index[k]; ok {
		return idx
	}
	idx := uint32(len(p.entries))
	p.entries = append(p.entries, c)
	p.index[k] = idx
	return idx
}

func (p *ConstantPool) AddInt(v int32) uint32 {
	return p.Add(Constant{Tag: CONST_INT, Int: v})
}

func (p *ConstantPool) AddFloat(v float64) uint32 {
	return p.Add(Constant{Tag: CONST_FLOAT, Float: v})
}

func (p *ConstantPool) AddBool(v bool) uint32 {
	return p.Add(Constant{Tag: CONST_BOOL, Bool: v})
}

func (p *ConstantPool) AddString(v string) uint32 {
	return p.Add(Constant{Tag: CONST_STRING, Str: v})
}

// AddValue adds a literal value
func (p *ConstantPool) AddValue(v parser.Value) (uint32, error) {
	switch v.Kind {
	case types.KindInt:
		return p.AddInt(v.Int), nil
	case types.KindFloat:
		return p.AddFloat(v.Float), nil
	case types.KindBool:
		return p.AddBool(v.Bool), nil
	case types.KindString:
		return p.AddString(v.Str), nil
	default:
		return 0, fmt.Errorf("no constant for a %s value", v.Type())
	}
}

// Len returns the number of entries
func (p *ConstantPool) Len() int {
	return len(p.entries)
}

// Entries returns the pool contents in index order
func (p *ConstantPool) Entries() []Constant {
	return p.entries
}

// FunctionInfo is one function table entry
type FunctionInfo struct {
	NameConst  uint32 // STRING constant holding the name
	ParamCount uint16
	LocalCount uint16 // slots including parameters
	Entry      uint32 // first instruction, or NoEntry
	Result     types.TypeCode
	Params     []types.TypeCode
}

// Instruction is an opcode with up to two operands: A (constant, function
// or jump index) and B (slot, argument or element count)
type Instruction struct {
	Op   OpCode
	A    uint32
	B    uint16
	HasA bool
	HasB bool
}

// Inst builds an instruction without operands
func Inst(op OpCode) Instruction {
	return Instruction{Op: op}
}

// InstA builds an instruction with operand A
func InstA(op OpCode, a uint32) Instruction {
	return Instruction{Op: op, A: a, HasA: true}
}

// InstB builds an instruction with operand B
func InstB(op OpCode, b uint16) Instruction {
	return Instruction{Op: op, B: b, HasB: true}
}

// InstAB builds an instruction with both operands
func InstAB(op OpCode, a uint32, b uint16) Instruction {
	return Instruction{Op: op, A: a, B: b, HasA: true, HasB: true}
}

// String renders the instruction with raw operands
func (in Instruction) String() string {
	switch {
	case in.HasA && in.HasB:
		return fmt.Sprintf("%s %d %d", in.Op, in.A, in.B)
	case in.HasA:
		return fmt.Sprintf("%s %d", in.Op, in.A)
	case in.HasB:
		return fmt.Sprintf("%s %d", in.Op, in.B)
	default:
		return in.Op.String()
	}
}

// Module is a compiled compilation unit
type Module struct {
	Constants []Constant
	Functions []FunctionInfo
	Code      []Instruction
}

// FunctionName returns the name of function idx, if it can be resolved
func (m *Module) FunctionName(idx uint32) (string, bool) {
	if int64(idx) >= int64(len(m.Functions)) {
		return "", false
	}
	return m.stringConst(m.Functions[idx].NameConst)
}

// FunctionIndex returns the index of the named function
func (m *Module) FunctionIndex(name string) (uint32, bool) {
	for i := range m.Functions {
		if n, ok := m.FunctionName(uint32(i)); ok && n == name {
			return uint32(i), true
		}
	}
	return 0, false
}

func (m *Module) stringConst(idx uint32) (string, bool) {
	if int64(idx) >= int64(len(m.Constants)) || m.Constants[idx].Tag != CONST_STRING {
		return "", false
	}
	return m.Constants[idx].Str, true
}

// Validate checks the structural invariants the VM loader relies on:
// operands match their opcode, every index is in range and no jump is left
// unpatched. A jump may target len(Code), which ends execution.
func (m *Module) Validate() error {
	for i, c := range m.Constants {
		if !c.Tag.Valid() {
			return diag.New(diag.KindFormat, "constant %d: unknown tag %d", i, c.Tag)
		}
	}

	for i, f := range m.Functions {
		if _, ok := m.stringConst(f.NameConst); !ok {
			return diag.New(diag.KindFormat, "function %d: name constant %d is not a string", i, f.NameConst)
		}
		if int(f.ParamCount) != len(f.Params) {
			return diag.New(diag.KindFormat, "function %d: %d parameter types for %d parameters", i, len(f.Params), f.ParamCount)
		}
		if f.Entry != NoEntry && int64(f.Entry) >= int64(len(m.Code)) {
			return diag.New(diag.KindFormat, "function %d: entry %d outside code", i, f.Entry)
		}
		if !f.Result.Valid() {
			return diag.New(diag.KindFormat, "function %d: unknown result type code %d", i, f.Result)
		}
		for j, p := range f.Params {
			if !p.Valid() {
				return diag.New(diag.KindFormat, "function %d: parameter %d has unknown type code %d", i, j, p)
			}
		}
	}

	for ip, in := range m.Code {
		if !in.Op.Valid() {
			return diag.New(diag.KindFormat, "instruction %d: unknown opcode %d", ip, in.Op)
		}
		hasA, hasB := in.Op.operands()
		if in.HasA != hasA || in.HasB != hasB {
			return diag.New(diag.KindFormat, "instruction %d: malformed %s operands", ip, in.Op)
		}
		if in.HasA && in.A == Unpatched {
			return diag.New(diag.KindFormat, "instruction %d: unpatched %s", ip, in.Op)
		}

		switch in.Op {
		case OP_PUSH_CONST:
			if int64(in.A) >= int64(len(m.Constants)) {
				return diag.New(diag.KindFormat, "instruction %d: constant %d out of range", ip, in.A)
			}
		case OP_LOAD_GLOBAL, OP_STORE_GLOBAL:
			if _, ok := m.stringConst(in.A); !ok {
				return diag.New(diag.KindFormat, "instruction %d: global name constant %d is not a string", ip, in.A)
			}
		case OP_CALL:
			if int64(in.A) >= int64(len(m.Functions)) {
				return diag.New(diag.KindFormat, "instruction %d: function %d out of range", ip, in.A)
			}
			if want := m.Functions[in.A].ParamCount; in.B != want {
				return diag.New(diag.KindFormat, "instruction %d: call passes %d arguments, function takes %d", ip, in.B, want)
			}
		case OP_JUMP, OP_JUMP_FALSE:
			if int64(in.A) > int64(len(m.Code)) {
				return diag.New(diag.KindFormat, "instruction %d: jump target %d outside code", ip, in.A)
			}
		}
	}
	return nil
}

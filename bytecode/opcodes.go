package bytecode

// OpCode represents a bytecode instruction. The byte values are the wire
// encoding understood by the VM.
type OpCode byte

// Stack and variable operations
const (
	OP_PUSH_CONST   OpCode = iota // Push constant [const]
	OP_LOAD_LOCAL                 // Push local [slot]
	OP_STORE_LOCAL                // Pop and store to local [slot]
	OP_LOAD_GLOBAL                // Push global named by constant [const]
	OP_STORE_GLOBAL               // Pop and store to global named by constant [const]
)

// Arithmetic Operations
const (
	OP_ADD OpCode = OP_STORE_GLOBAL + 1 + iota // Pop b, a; push a + b
	OP_SUB                                     // Pop b, a; push a - b
	OP_MUL                                     // Pop b, a; push a * b
	OP_DIV                                     // Pop b, a; push a / b
	OP_MOD                                     // Pop b, a; push a % b
	OP_NEG                                     // Pop a; push -a
)

// Comparison and logical operations
const (
	OP_EQ  OpCode = OP_NEG + 1 + iota // Pop b, a; push a == b
	OP_NEQ                            // Pop b, a; push a != b
	OP_LT                             // Pop b, a; push a < b
	OP_LE                             // Pop b, a; push a <= b
	OP_GT                             // Pop b, a; push a > b
	OP_GE                             // Pop b, a; push a >= b
	OP_AND                            // Pop b, a; push a && b (both evaluated)
	OP_OR                             // Pop b, a; push a || b (both evaluated)
	OP_NOT                            // Pop a; push !a
)

// Control Flow
const (
	OP_JUMP       OpCode = OP_NOT + 1 + iota // Jump to instruction [target]
	OP_JUMP_FALSE                            // Pop; jump if false [target]
	OP_CALL                                  // Call function [func, argc]
	OP_RET                                   // Return (with the top of stack for non-void)
)

// Array operations
const (
	OP_NEW_ARRAY   OpCode = OP_RET + 1 + iota // Pop N items, push array [count]
	OP_LOAD_INDEX                             // Pop idx, arr; push arr[idx]
	OP_STORE_INDEX                            // Pop val, idx, arr; set arr[idx]
	OP_POP                                    // Discard top of stack
)

// OpCodeNames maps opcodes to their string names for debugging
var OpCodeNames = map[OpCode]string{
	OP_PUSH_CONST:   "PUSH_CONST",
	OP_LOAD_LOCAL:   "LOAD_LOCAL",
	OP_STORE_LOCAL:  "STORE_LOCAL",
	OP_LOAD_GLOBAL:  "LOAD_GLOBAL",
	OP_STORE_GLOBAL: "STORE_GLOBAL",
	OP_ADD:          "ADD",
	OP_SUB:          "SUB",
	OP_MUL:          "MUL",
	OP_DIV:          "DIV",
	OP_MOD:          "MOD",
	OP_NEG:          "NEG",
	OP_EQ:           "EQ",
	OP_NEQ:          "NEQ",
	OP_LT:           "LT",
	OP_LE:           "LE",
	OP_GT:           "GT",
	OP_GE:           "GE",
	OP_AND:          "AND",
	OP_OR:           "OR",
	OP_NOT:          "NOT",
	OP_JUMP:         "JUMP",
	OP_JUMP_FALSE:   "JUMP_FALSE",
	OP_CALL:         "CALL",
	OP_RET:          "RET",
	OP_NEW_ARRAY:    "NEW_ARRAY",
	OP_LOAD_INDEX:   "LOAD_INDEX",
	OP_STORE_INDEX:  "STORE_INDEX",
	OP_POP:          "POP",
}

// String returns the name of an opcode
func (op OpCode) String() string {
	if name, ok := OpCodeNames[op]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether op is a known opcode
func (op OpCode) Valid() bool {
	return op <= OP_POP
}

// IsJump reports whether the A operand of op is an instruction index
func (op OpCode) IsJump() bool {
	return op == OP_JUMP || op == OP_JUMP_FALSE
}

// operands reports which operands an opcode carries
func (op OpCode) operands() (hasA, hasB bool) {
	switch op {
	case OP_PUSH_CONST, OP_LOAD_GLOBAL, OP_STORE_GLOBAL, OP_JUMP, OP_JUMP_FALSE:
		return true, false
	case OP_LOAD_LOCAL, OP_STORE_LOCAL, OP_NEW_ARRAY:
		return false, true
	case OP_CALL:
		return true, true
	}
	return false, false
}

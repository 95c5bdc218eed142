package bytecode

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Disassemble writes a readable listing of m's code. Jump targets get labels
// L0, L1, ... in the order the jumps appear. m is not modified.
func Disassemble(w io.Writer, m *Module) error {
	_, err := io.WriteString(w, DisassembleString(m))
	return err
}

// DisassembleString returns the listing produced by Disassemble
func DisassembleString(m *Module) string {
	labels := jumpLabels(m.Code)

	var sb strings.Builder
	sb.WriteString("=== CODE (disasm) ===\n")
	for ip, in := range m.Code {
		if label, ok := labels[uint32(ip)]; ok {
			sb.WriteString(label + ":\n")
		}
		fmt.Fprintf(&sb, "%04d  %s", ip, in.Op)
		if ops := operandText(m, in, labels); ops != "" {
			sb.WriteString(" " + ops)
		}
		sb.WriteString("\n")
	}
	// A jump past the last instruction ends the program
	if label, ok := labels[uint32(len(m.Code))]; ok {
		sb.WriteString(label + ":\n")
	}
	return sb.String()
}

// jumpLabels names every jump target
func jumpLabels(code []Instruction) map[uint32]string {
	labels := make(map[uint32]string)
	for _, in := range code {
		if !in.Op.IsJump() || !in.HasA {
			continue
		}
		if _, ok := labels[in.A]; !ok {
			labels[in.A] = "L" + strconv.Itoa(len(labels))
		}
	}
	return labels
}

func operandText(m *Module, in Instruction, labels map[uint32]string) string {
	var parts []string
	if in.HasA {
		parts = append(parts, operandA(m, in, labels))
	}
	if in.HasB {
		parts = append(parts, strconv.Itoa(int(in.B)))
	}
	return strings.Join(parts, ", ")
}

// operandA resolves the A operand; unresolvable indices render as ?N
func operandA(m *Module, in Instruction, labels map[uint32]string) string {
	switch in.Op {
	case OP_PUSH_CONST:
		if int64(in.A) < int64(len(m.Constants)) {
			return m.Constants[in.A].String()
		}
	case OP_LOAD_GLOBAL, OP_STORE_GLOBAL:
		if name, ok := m.stringConst(in.A); ok {
			return strconv.Quote(name)
		}
	case OP_CALL:
		name, ok := m.FunctionName(in.A)
		if !ok {
			name = "?"
		}
		return fmt.Sprintf("%s@%d", name, in.A)
	case OP_JUMP, OP_JUMP_FALSE:
		if label, ok := labels[in.A]; ok {
			return label
		}
	default:
		return strconv.FormatUint(uint64(in.A), 10)
	}
	return "?" + strconv.FormatUint(uint64(in.A), 10)
}

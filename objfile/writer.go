// Package objfile reads and writes compiled modules in the FROG binary
// container format. All integers are big-endian.
package objfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"frogc/bytecode"
	"frogc/diag"
)

// Magic opens every container
const Magic = "FROG"

// Version is the only container version this package reads and writes
const Version uint16 = 1

// Instruction flag bits
const (
	flagA byte = 1 << 0
	flagB byte = 1 << 1
)

// Writer handles serialization of modules
type Writer struct {
	w   *bufio.Writer
	buf [8]byte
}

// NewWriter creates a writer for module serialization
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Flush flushes the underlying buffer
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return diag.Wrap(diag.KindIO, err, "write module")
	}
	return nil
}

// Write serializes m to w. Invalid modules are refused.
func Write(w io.Writer, m *bytecode.Module) error {
	wr := NewWriter(w)
	if err := wr.WriteModule(m); err != nil {
		return err
	}
	return wr.Flush()
}

// Marshal returns the serialized form of m
func Marshal(m *bytecode.Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- Primitive writers ---

func (w *Writer) writeU8(v byte) error {
	return w.w.WriteByte(v)
}

func (w *Writer) writeU16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	_, err := w.w.Write(w.buf[:2])
	return err
}

func (w *Writer) writeU32(v uint32) error {
	binary.BigEndian.PutUint32(w.buf[:4], v)
	_, err := w.w.Write(w.buf[:4])
	return err
}

func (w *Writer) writeF64(v float64) error {
	binary.BigEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	_, err := w.w.Write(w.buf[:8])
	return err
}

// tooLong reports whether n does not fit a u32 count
func tooLong(n int) bool {
	return uint64(n) > math.MaxUint32
}

// writeString writes a u32 length followed by the UTF-8 bytes
func (w *Writer) writeString(s string) error {
	if tooLong(len(s)) {
		return diag.New(diag.KindFormat, "string constant too long")
	}
	if err := w.writeU32(uint32(len(s))); err != nil {
		return err
	}
	_, err := w.w.WriteString(s)
	return err
}

// --- Section writers ---

// WriteModule writes the header and all three sections
func (w *Writer) WriteModule(m *bytecode.Module) error {
	if err := m.Validate(); err != nil {
		return diag.Wrap(diag.KindFormat, err, "refusing to write invalid module")
	}
	if tooLong(len(m.Constants)) || tooLong(len(m.Functions)) || tooLong(len(m.Code)) {
		return diag.New(diag.KindFormat, "module too large")
	}

	if err := w.writeHeader(m); err != nil {
		return diag.Wrap(diag.KindIO, err, "write header")
	}
	for i, c := range m.Constants {
		if err := w.writeConstant(c); err != nil {
			return diag.Wrap(diag.KindIO, err, "write constant %d", i)
		}
	}
	for i, f := range m.Functions {
		if err := w.writeFunction(f); err != nil {
			return diag.Wrap(diag.KindIO, err, "write function %d", i)
		}
	}
	for ip, in := range m.Code {
		if err := w.writeInstruction(in); err != nil {
			return diag.Wrap(diag.KindIO, err, "write instruction %d", ip)
		}
	}
	return nil
}

func (w *Writer) writeHeader(m *bytecode.Module) error {
	if _, err := w.w.WriteString(Magic); err != nil {
		return err
	}
	if err := w.writeU16(Version); err != nil {
		return err
	}
	if err := w.writeU32(uint32(len(m.Constants))); err != nil {
		return err
	}
	if err := w.writeU32(uint32(len(m.Functions))); err != nil {
		return err
	}
	return w.writeU32(uint32(len(m.Code)))
}

// writeConstant writes a tag byte followed by the tag's payload
func (w *Writer) writeConstant(c bytecode.Constant) error {
	if err := w.writeU8(byte(c.Tag)); err != nil {
		return err
	}
	switch c.Tag {
	case bytecode.CONST_INT:
		return w.writeU32(uint32(c.Int))
	case bytecode.CONST_FLOAT:
		return w.writeF64(c.Float)
	case bytecode.CONST_BOOL:
		if c.Bool {
			return w.writeU8(1)
		}
		return w.writeU8(0)
	default:
		return w.writeString(c.Str)
	}
}

func (w *Writer) writeFunction(f bytecode.FunctionInfo) error {
	if err := w.writeU32(f.NameConst); err != nil {
		return err
	}
	if err := w.writeU16(f.ParamCount); err != nil {
		return err
	}
	if err := w.writeU16(f.LocalCount); err != nil {
		return err
	}
	if err := w.writeU32(f.Entry); err != nil {
		return err
	}
	if err := w.writeU8(byte(f.Result)); err != nil {
		return err
	}
	for _, p := range f.Params {
		if err := w.writeU8(byte(p)); err != nil {
			return err
		}
	}
	return nil
}

// writeInstruction writes [op][flags][A?][B?]
func (w *Writer) writeInstruction(in bytecode.Instruction) error {
	var flags byte
	if in.HasA {
		flags |= flagA
	}
	if in.HasB {
		flags |= flagB
	}
	if err := w.writeU8(byte(in.Op)); err != nil {
		return err
	}
	if err := w.writeU8(flags); err != nil {
		return err
	}
	if in.HasA {
		if err := w.writeU32(in.A); err != nil {
			return err
		}
	}
	if in.HasB {
		return w.writeU16(in.B)
	}
	return nil
}

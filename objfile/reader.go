package objfile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"

	"frogc/bytecode"
	"frogc/diag"
	"frogc/types"
)

// preallocLimit caps slice preallocation from untrusted counts
const preallocLimit = 1024

// Reader handles deserialization of modules
type Reader struct {
	r      *bufio.Reader
	offset int64
	buf    [8]byte
}

// NewReader creates a reader for module deserialization
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Read deserializes one module from r and validates it. The container must
// end where the code section ends.
func Read(r io.Reader) (*bytecode.Module, error) {
	return NewReader(r).ReadModule()
}

// Unmarshal deserializes a module from data
func Unmarshal(data []byte) (*bytecode.Module, error) {
	return Read(bytes.NewReader(data))
}

// --- Primitive readers ---

// fail converts a read error: running out of input is a malformed
// container, anything else is an I/O failure
func (r *Reader) fail(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return diag.New(diag.KindFormat, "truncated module: reading %s at offset %d", what, r.offset)
	}
	return diag.Wrap(diag.KindIO, err, "read %s", what)
}

func (r *Reader) readFull(p []byte, what string) error {
	n, err := io.ReadFull(r.r, p)
	r.offset += int64(n)
	if err != nil {
		return r.fail(err, what)
	}
	return nil
}

func (r *Reader) readU8(what string) (byte, error) {
	if err := r.readFull(r.buf[:1], what); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

func (r *Reader) readU16(what string) (uint16, error) {
	if err := r.readFull(r.buf[:2], what); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

func (r *Reader) readU32(what string) (uint32, error) {
	if err := r.readFull(r.buf[:4], what); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.buf[:4]), nil
}

func (r *Reader) readF64(what string) (float64, error) {
	if err := r.readFull(r.buf[:8], what); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(r.buf[:8])), nil
}

// readString reads a u32 length and that many bytes. The buffer grows with
// the data actually present, so a bogus length cannot force a huge allocation.
func (r *Reader) readString(what string) (string, error) {
	n, err := r.readU32(what + " length")
	if err != nil {
		return "", err
	}
	var sb bytes.Buffer
	copied, err := io.CopyN(&sb, r.r, int64(n))
	r.offset += copied
	if err != nil {
		return "", r.fail(err, what)
	}
	return sb.String(), nil
}

// --- Section readers ---

// ReadModule reads the header and all three sections, then validates the
// result
func (r *Reader) ReadModule() (*bytecode.Module, error) {
	nconst, nfunc, ncode, err := r.readHeader()
	if err != nil {
		return nil, err
	}

	m := &bytecode.Module{
		Constants: make([]bytecode.Constant, 0, prealloc(nconst)),
		Functions: make([]bytecode.FunctionInfo, 0, prealloc(nfunc)),
		Code:      make([]bytecode.Instruction, 0, prealloc(ncode)),
	}

	for i := uint32(0); i < nconst; i++ {
		c, err := r.readConstant(i)
		if err != nil {
			return nil, err
		}
		m.Constants = append(m.Constants, c)
	}
	for i := uint32(0); i < nfunc; i++ {
		f, err := r.readFunction(i)
		if err != nil {
			return nil, err
		}
		m.Functions = append(m.Functions, f)
	}
	for i := uint32(0); i < ncode; i++ {
		in, err := r.readInstruction(i)
		if err != nil {
			return nil, err
		}
		m.Code = append(m.Code, in)
	}

	if _, err := r.r.ReadByte(); err == nil {
		return nil, diag.New(diag.KindFormat, "unexpected data after code section at offset %d", r.offset)
	} else if !errors.Is(err, io.EOF) {
		return nil, diag.Wrap(diag.KindIO, err, "read module")
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func prealloc(n uint32) int {
	if n > preallocLimit {
		return preallocLimit
	}
	return int(n)
}

func (r *Reader) readHeader() (nconst, nfunc, ncode uint32, err error) {
	magic := make([]byte, len(Magic))
	if err = r.readFull(magic, "magic"); err != nil {
		return
	}
	if string(magic) != Magic {
		err = diag.New(diag.KindFormat, "bad magic %q, want %q", magic, Magic)
		return
	}

	version, err := r.readU16("version")
	if err != nil {
		return
	}
	if version != Version {
		err = diag.New(diag.KindFormat, "unsupported version %d", version)
		return
	}

	if nconst, err = r.readU32("constant count"); err != nil {
		return
	}
	if nfunc, err = r.readU32("function count"); err != nil {
		return
	}
	ncode, err = r.readU32("code size")
	return
}

func (r *Reader) readConstant(i uint32) (bytecode.Constant, error) {
	tag, err := r.readU8("constant tag")
	if err != nil {
		return bytecode.Constant{}, err
	}

	c := bytecode.Constant{Tag: bytecode.ConstTag(tag)}
	switch c.Tag {
	case bytecode.CONST_INT:
		v, err := r.readU32("int constant")
		if err != nil {
			return c, err
		}
		c.Int = int32(v)
	case bytecode.CONST_FLOAT:
		if c.Float, err = r.readF64("float constant"); err != nil {
			return c, err
		}
	case bytecode.CONST_BOOL:
		b, err := r.readU8("bool constant")
		if err != nil {
			return c, err
		}
		if b > 1 {
			return c, diag.New(diag.KindFormat, "constant %d: bool payload %d", i, b)
		}
		c.Bool = b == 1
	case bytecode.CONST_STRING:
		if c.Str, err = r.readString("string constant"); err != nil {
			return c, err
		}
	default:
		return c, diag.New(diag.KindFormat, "constant %d: unknown tag %d", i, tag)
	}
	return c, nil
}

func (r *Reader) readFunction(i uint32) (bytecode.FunctionInfo, error) {
	var f bytecode.FunctionInfo
	var err error

	if f.NameConst, err = r.readU32("function name"); err != nil {
		return f, err
	}
	if f.ParamCount, err = r.readU16("parameter count"); err != nil {
		return f, err
	}
	if f.LocalCount, err = r.readU16("local count"); err != nil {
		return f, err
	}
	if f.Entry, err = r.readU32("entry point"); err != nil {
		return f, err
	}

	code, err := r.readU8("result type")
	if err != nil {
		return f, err
	}
	f.Result = types.TypeCode(code)
	if !f.Result.Valid() {
		return f, diag.New(diag.KindFormat, "function %d: unknown result type code %d", i, code)
	}

	for p := uint16(0); p < f.ParamCount; p++ {
		code, err := r.readU8("parameter type")
		if err != nil {
			return f, err
		}
		tc := types.TypeCode(code)
		if !tc.Valid() {
			return f, diag.New(diag.KindFormat, "function %d: parameter %d has unknown type code %d", i, p, code)
		}
		f.Params = append(f.Params, tc)
	}
	return f, nil
}

func (r *Reader) readInstruction(ip uint32) (bytecode.Instruction, error) {
	op, err := r.readU8("opcode")
	if err != nil {
		return bytecode.Instruction{}, err
	}
	in := bytecode.Instruction{Op: bytecode.OpCode(op)}
	if !in.Op.Valid() {
		return in, diag.New(diag.KindFormat, "instruction %d: unknown opcode %d", ip, op)
	}

	flags, err := r.readU8("instruction flags")
	if err != nil {
		return in, err
	}
	if flags&^(flagA|flagB) != 0 {
		return in, diag.New(diag.KindFormat, "instruction %d: unknown flags %#02x", ip, flags)
	}

	if flags&flagA != 0 {
		in.HasA = true
		if in.A, err = r.readU32("operand A"); err != nil {
			return in, err
		}
	}
	if flags&flagB != 0 {
		in.HasB = true
		if in.B, err = r.readU16("operand B"); err != nil {
			return in, err
		}
	}
	return in, nil
}

package types

// Symbol is a name bound in a scope: either *VarSymbol or *FuncSymbol
type Symbol interface {
	SymbolName() string
	symbol()
}

// VarSymbol is a declared variable or parameter
type VarSymbol struct {
	Name string
	Type Type
}

// Relax describes how a builtin loosens exact argument checking
type Relax int

const (
	RelaxNone      Relax = iota
	RelaxAnyScalar       // single argument of any primitive scalar type
	RelaxAnyArray        // single argument of any array type
)

// FuncSymbol is a declared function or builtin
type FuncSymbol struct {
	Name    string
	Result  Type
	Params  []Type
	Builtin bool
	Relax   Relax
}

func (s *VarSymbol) SymbolName() string  { return s.Name }
func (s *FuncSymbol) SymbolName() string { return s.Name }

func (s *VarSymbol) symbol()  {}
func (s *FuncSymbol) symbol() {}

// Accepts reports whether argument i may have type arg
func (s *FuncSymbol) Accepts(i int, arg Type) bool {
	switch s.Relax {
	case RelaxAnyScalar:
		return arg.IsScalar()
	case RelaxAnyArray:
		return arg.IsArray() && arg.ElemType().Kind != KindVoid
	}
	if i < 0 || i >= len(s.Params) {
		return false
	}
	return s.Params[i].AssignableFrom(arg)
}

// Builtins returns fresh symbols for the predeclared functions, in the
// order they occupy the low indices of every function table
func Builtins() []*FuncSymbol {
	return []*FuncSymbol{
		{Name: "print", Result: Void, Params: []Type{Void}, Builtin: true, Relax: RelaxAnyScalar},
		{Name: "len", Result: Int, Params: []Type{ArrayOf(Int)}, Builtin: true, Relax: RelaxAnyArray},
		{Name: "new_array_bool", Result: ArrayOf(Bool), Params: []Type{Int, Bool}, Builtin: true},
		{Name: "new_array_int", Result: ArrayOf(Int), Params: []Type{Int, Int}, Builtin: true},
		{Name: "push_int", Result: ArrayOf(Int), Params: []Type{ArrayOf(Int), Int}, Builtin: true},
	}
}

// SizedArrayConstructor names the builtin that allocates an array of the
// given element type, or "" when sized arrays of that element are unsupported
func SizedArrayConstructor(elem Type) string {
	switch elem.Kind {
	case KindInt:
		return "new_array_int"
	case KindBool:
		return "new_array_bool"
	}
	return ""
}

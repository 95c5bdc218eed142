package types

import "fmt"

// SymbolTable is a stack of scopes. The outermost scope is global and
// is never popped.
type SymbolTable struct {
	scopes []map[string]Symbol
}

// NewSymbolTable creates a table with the global scope and the builtins
// already declared
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{scopes: []map[string]Symbol{make(map[string]Symbol)}}
	for _, b := range Builtins() {
		st.scopes[0][b.Name] = b
	}
	return st
}

// Push opens a nested scope
func (st *SymbolTable) Push() {
	st.scopes = append(st.scopes, make(map[string]Symbol))
}

// Pop closes the innermost scope. Returns false on the global scope.
func (st *SymbolTable) Pop() bool {
	if len(st.scopes) <= 1 {
		return false
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
	return true
}

// Depth returns the number of open scopes, including the global one
func (st *SymbolTable) Depth() int {
	return len(st.scopes)
}

// Declare binds sym in the innermost scope. Shadowing an outer binding is
// allowed; a second binding in the same scope is not.
func (st *SymbolTable) Declare(sym Symbol) error {
	cur := st.scopes[len(st.scopes)-1]
	name := sym.SymbolName()
	if _, exists := cur[name]; exists {
		return fmt.Errorf("'%s' is already declared in this scope", name)
	}
	cur[name] = sym
	return nil
}

// Resolve finds name, innermost scope first
func (st *SymbolTable) Resolve(name string) (Symbol, bool) {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i][name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// IsGlobal reports whether the innermost scope is the global one
func (st *SymbolTable) IsGlobal() bool {
	return len(st.scopes) == 1
}

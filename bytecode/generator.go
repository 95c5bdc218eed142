// Package bytecode lowers a typed program into a stack-machine module and
// renders modules for debugging.
package bytecode

import (
	"math"

	"frogc/diag"
	"frogc/parser"
	"frogc/types"
)

// generator holds the state of a single Generate call
type generator struct {
	pool      *ConstantPool
	code      []Instruction
	functions []FunctionInfo
	funcIndex map[string]uint32 // Function name -> table index
	globals   map[string]bool   // Names stored by top-level declarations
	locals    []map[string]uint16
	nextSlot  int
	loops     []LoopContext
}

// LoopContext tracks loop compilation state
type LoopContext struct {
	StartIP       int   // Condition re-test
	BreakJumps    []int // Patch locations for break jumps (forward jumps past loop end)
	ContinueJumps []int // Patch locations for continue jumps
}

var binaryOps = map[parser.TokenType]OpCode{
	parser.TOKEN_PLUS:    OP_ADD,
	parser.TOKEN_MINUS:   OP_SUB,
	parser.TOKEN_STAR:    OP_MUL,
	parser.TOKEN_SLASH:   OP_DIV,
	parser.TOKEN_PERCENT: OP_MOD,
	parser.TOKEN_EQ:      OP_EQ,
	parser.TOKEN_NE:      OP_NEQ,
	parser.TOKEN_LT:      OP_LT,
	parser.TOKEN_LE:      OP_LE,
	parser.TOKEN_GT:      OP_GT,
	parser.TOKEN_GE:      OP_GE,
	parser.TOKEN_AND:     OP_AND,
	parser.TOKEN_OR:      OP_OR,
}

// Generate compiles a type-checked program. Top-level statements come
// first, followed (when the program declares functions) by a jump over the
// function bodies, the bodies themselves and a final RET.
func Generate(prog *parser.Program) (*Module, error) {
	g := &generator{
		pool:      NewConstantPool(),
		code:      make([]Instruction, 0, 64),
		funcIndex: make(map[string]uint32),
		globals:   make(map[string]bool),
	}

	for _, b := range types.Builtins() {
		if err := g.registerFunction(b.Name, b.Params, b.Result, parser.Position{}); err != nil {
			return nil, err
		}
	}
	for _, fn := range prog.Funcs {
		params := make([]types.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Type
		}
		if err := g.registerFunction(fn.Name, params, fn.Result, fn.Pos); err != nil {
			return nil, err
		}
	}

	for _, stmt := range prog.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return nil, err
		}
	}

	if len(prog.Funcs) > 0 {
		skip := g.emitJump(OP_JUMP)
		for _, fn := range prog.Funcs {
			if err := g.genFunction(fn); err != nil {
				return nil, err
			}
		}
		g.patch(skip, g.emit(Inst(OP_RET)))
	}

	m := &Module{
		Constants: g.pool.Entries(),
		Functions: g.functions,
		Code:      g.code,
	}
	if err := m.Validate(); err != nil {
		return nil, diag.Wrap(diag.KindCodegen, err, "generated module is invalid")
	}
	return m, nil
}

func (g *generator) errorf(pos parser.Position, format string, args ...interface{}) error {
	return diag.At(diag.KindCodegen, pos.Line, pos.Column, "", format, args...)
}

// registerFunction appends a function table entry with no body yet
func (g *generator) registerFunction(name string, params []types.Type, result types.Type, pos parser.Position) error {
	if _, dup := g.funcIndex[name]; dup {
		return g.errorf(pos, "function '%s' registered twice", name)
	}
	if len(params) > math.MaxUint16 {
		return g.errorf(pos, "function '%s' has too many parameters", name)
	}

	info := FunctionInfo{
		NameConst:  g.pool.AddString(name),
		ParamCount: uint16(len(params)),
		Entry:      NoEntry,
	}
	var err error
	if info.Result, err = result.Code(); err != nil {
		return g.errorf(pos, "function '%s': %v", name, err)
	}
	for _, p := range params {
		code, err := p.Code()
		if err != nil {
			return g.errorf(pos, "function '%s': %v", name, err)
		}
		info.Params = append(info.Params, code)
	}

	g.funcIndex[name] = uint32(len(g.functions))
	g.functions = append(g.functions, info)
	return nil
}

// genFunction emits a body at the current instruction and records its
// entry point and slot count
func (g *generator) genFunction(fn *parser.FuncDecl) error {
	idx := g.funcIndex[fn.Name]
	entry := len(g.code)

	g.locals = []map[string]uint16{{}}
	g.nextSlot = 0
	for _, p := range fn.Params {
		if _, err := g.declareLocal(p.Name, fn.Pos); err != nil {
			return err
		}
	}

	if err := g.genStmt(fn.Body); err != nil {
		return err
	}
	if fn.Result.Kind == types.KindVoid {
		g.emit(Inst(OP_RET))
	}

	g.functions[idx].Entry = uint32(entry)
	g.functions[idx].LocalCount = uint16(g.nextSlot)
	g.locals = nil
	g.nextSlot = 0
	return nil
}

// emit appends an instruction and returns its index
func (g *generator) emit(in Instruction) int {
	g.code = append(g.code, in)
	return len(g.code) - 1
}

// emitJump emits a jump with a placeholder target
func (g *generator) emitJump(op OpCode) int {
	return g.emit(InstA(op, Unpatched))
}

// patch points the jump at index at to target
func (g *generator) patch(at, target int) {
	g.code[at].A = uint32(target)
}

// here returns the index of the next instruction
func (g *generator) here() int {
	return len(g.code)
}

func (g *generator) inFunction() bool {
	return g.locals != nil
}

// beginScope starts a new local scope; a no-op at top level where every
// variable is global
func (g *generator) beginScope() {
	if g.inFunction() {
		g.locals = append(g.locals, map[string]uint16{})
	}
}

// endScope ends the current local scope. Its slots are not reused.
func (g *generator) endScope() {
	if g.inFunction() && len(g.locals) > 1 {
		g.locals = g.locals[:len(g.locals)-1]
	}
}

// declareLocal assigns the next slot to name in the innermost scope
func (g *generator) declareLocal(name string, pos parser.Position) (uint16, error) {
	if g.nextSlot >= math.MaxUint16 {
		return 0, g.errorf(pos, "too many local variables")
	}
	slot := uint16(g.nextSlot)
	g.nextSlot++
	g.locals[len(g.locals)-1][name] = slot
	return slot, nil
}

// resolveLocal looks name up from the innermost scope outwards
func (g *generator) resolveLocal(name string) (uint16, bool) {
	for i := len(g.locals) - 1; i >= 0; i-- {
		if slot, ok := g.locals[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

// beginLoop starts a new loop context
func (g *generator) beginLoop(start int) {
	g.loops = append(g.loops, LoopContext{StartIP: start})
}

// endLoop patches pending breaks to end and continues to cont
func (g *generator) endLoop(end, cont int) {
	loop := &g.loops[len(g.loops)-1]
	for _, at := range loop.BreakJumps {
		g.patch(at, end)
	}
	for _, at := range loop.ContinueJumps {
		g.patch(at, cont)
	}
	g.loops = g.loops[:len(g.loops)-1]
}

// currentLoop returns the current loop context
func (g *generator) currentLoop() *LoopContext {
	if len(g.loops) == 0 {
		return nil
	}
	return &g.loops[len(g.loops)-1]
}

func (g *generator) genStmt(stmt parser.Stmt) error {
	switch s := stmt.(type) {
	case *parser.VarDeclStmt:
		return g.genVarDecl(s)

	case *parser.ExprStmt:
		if err := g.genExpr(s.Expr); err != nil {
			return err
		}
		if s.Expr.Type().Kind != types.KindVoid {
			g.emit(Inst(OP_POP))
		}
		return nil

	case *parser.IndexAssignStmt:
		if err := g.genExpr(s.Target.Array); err != nil {
			return err
		}
		if err := g.genExpr(s.Target.Index); err != nil {
			return err
		}
		if err := g.genExpr(s.Value); err != nil {
			return err
		}
		g.emit(Inst(OP_STORE_INDEX))
		return nil

	case *parser.BlockStmt:
		g.beginScope()
		defer g.endScope()
		for _, inner := range s.Body {
			if err := g.genStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case *parser.IfStmt:
		return g.genIf(s)

	case *parser.WhileStmt:
		return g.genWhile(s)

	case *parser.ForStmt:
		return g.genFor(s)

	case *parser.ReturnStmt:
		if !g.inFunction() {
			return g.errorf(s.Pos, "return outside of a function")
		}
		if s.Value != nil {
			if err := g.genExpr(s.Value); err != nil {
				return err
			}
		}
		g.emit(Inst(OP_RET))
		return nil

	case *parser.BreakStmt:
		loop := g.currentLoop()
		if loop == nil {
			return g.errorf(s.Pos, "break outside of a loop")
		}
		loop.BreakJumps = append(loop.BreakJumps, g.emitJump(OP_JUMP))
		return nil

	case *parser.ContinueStmt:
		loop := g.currentLoop()
		if loop == nil {
			return g.errorf(s.Pos, "continue outside of a loop")
		}
		loop.ContinueJumps = append(loop.ContinueJumps, g.emitJump(OP_JUMP))
		return nil

	default:
		return g.errorf(stmt.Position(), "unexpected statement %T", stmt)
	}
}

// genVarDecl evaluates the initial value and stores it to a new local, or
// to a global at top level. An array size takes precedence over an
// initializer, which is then not evaluated.
func (g *generator) genVarDecl(s *parser.VarDeclStmt) error {
	switch {
	case s.Size != nil:
		if err := g.genSizedArray(s); err != nil {
			return err
		}
	case s.Init != nil:
		if err := g.genExpr(s.Init); err != nil {
			return err
		}
	default:
		if err := g.pushDefault(s.Type, s.Pos); err != nil {
			return err
		}
	}

	if !g.inFunction() {
		g.globals[s.Name] = true
		g.emit(InstA(OP_STORE_GLOBAL, g.pool.AddString(s.Name)))
		return nil
	}
	slot, err := g.declareLocal(s.Name, s.Pos)
	if err != nil {
		return err
	}
	g.emit(InstB(OP_STORE_LOCAL, slot))
	return nil
}

// genSizedArray calls the builtin constructor for the element type with the
// size and the element's default value
func (g *generator) genSizedArray(s *parser.VarDeclStmt) error {
	elem := s.Type.ElemType()
	name := types.SizedArrayConstructor(elem)
	if name == "" {
		return g.errorf(s.Pos, "arrays of %s cannot be created with a size", elem)
	}
	idx, ok := g.funcIndex[name]
	if !ok {
		return g.errorf(s.Pos, "builtin '%s' is not registered", name)
	}

	if err := g.genExpr(s.Size); err != nil {
		return err
	}
	if err := g.pushDefault(elem, s.Pos); err != nil {
		return err
	}
	g.emit(InstAB(OP_CALL, idx, 2))
	return nil
}

// pushDefault pushes the zero value of t
func (g *generator) pushDefault(t types.Type, pos parser.Position) error {
	switch t.Kind {
	case types.KindInt:
		g.emit(InstA(OP_PUSH_CONST, g.pool.AddInt(0)))
	case types.KindFloat:
		g.emit(InstA(OP_PUSH_CONST, g.pool.AddFloat(0)))
	case types.KindBool:
		g.emit(InstA(OP_PUSH_CONST, g.pool.AddBool(false)))
	case types.KindString:
		g.emit(InstA(OP_PUSH_CONST, g.pool.AddString("")))
	case types.KindArray:
		g.emit(InstB(OP_NEW_ARRAY, 0))
	default:
		return g.errorf(pos, "no default value for type %s", t)
	}
	return nil
}

func (g *generator) genIf(s *parser.IfStmt) error {
	if err := g.genExpr(s.Condition); err != nil {
		return err
	}
	skipThen := g.emitJump(OP_JUMP_FALSE)

	if err := g.genStmt(s.Then); err != nil {
		return err
	}
	if s.Else == nil {
		g.patch(skipThen, g.here())
		return nil
	}

	skipElse := g.emitJump(OP_JUMP)
	g.patch(skipThen, g.here())
	if err := g.genStmt(s.Else); err != nil {
		return err
	}
	g.patch(skipElse, g.here())
	return nil
}

func (g *generator) genWhile(s *parser.WhileStmt) error {
	start := g.here()
	g.beginLoop(start)

	if err := g.genExpr(s.Condition); err != nil {
		return err
	}
	exit := g.emitJump(OP_JUMP_FALSE)

	if err := g.genStmt(s.Body); err != nil {
		return err
	}
	g.emit(InstA(OP_JUMP, uint32(start)))

	end := g.here()
	g.patch(exit, end)
	g.endLoop(end, start)
	return nil
}

// genFor lowers a for loop. The initializer lives in the loop's own scope;
// continue jumps to the increment.
func (g *generator) genFor(s *parser.ForStmt) error {
	g.beginScope()
	defer g.endScope()

	if s.Init != nil {
		if err := g.genStmt(s.Init); err != nil {
			return err
		}
	}

	start := g.here()
	g.beginLoop(start)

	exit := -1
	if s.Condition != nil {
		if err := g.genExpr(s.Condition); err != nil {
			return err
		}
		exit = g.emitJump(OP_JUMP_FALSE)
	}

	if err := g.genStmt(s.Body); err != nil {
		return err
	}

	cont := g.here()
	if s.Post != nil {
		if err := g.genExpr(s.Post); err != nil {
			return err
		}
		if s.Post.Type().Kind != types.KindVoid {
			g.emit(Inst(OP_POP))
		}
	}
	g.emit(InstA(OP_JUMP, uint32(start)))

	end := g.here()
	if exit >= 0 {
		g.patch(exit, end)
	}
	g.endLoop(end, cont)
	return nil
}

func (g *generator) genExpr(expr parser.Expr) error {
	switch e := expr.(type) {
	case *parser.LiteralExpr:
		idx, err := g.pool.AddValue(e.Value)
		if err != nil {
			return g.errorf(e.Pos, "%v", err)
		}
		g.emit(InstA(OP_PUSH_CONST, idx))
		return nil

	case *parser.VarExpr:
		if slot, ok := g.resolveLocal(e.Name); ok {
			g.emit(InstB(OP_LOAD_LOCAL, slot))
			return nil
		}
		if !g.globals[e.Name] {
			return g.errorf(e.Pos, "unknown variable '%s'", e.Name)
		}
		g.emit(InstA(OP_LOAD_GLOBAL, g.pool.AddString(e.Name)))
		return nil

	case *parser.AssignExpr:
		if err := g.genExpr(e.Value); err != nil {
			return err
		}
		if slot, ok := g.resolveLocal(e.Name); ok {
			g.emit(InstB(OP_STORE_LOCAL, slot))
			g.emit(InstB(OP_LOAD_LOCAL, slot))
			return nil
		}
		if !g.globals[e.Name] {
			return g.errorf(e.Pos, "unknown variable '%s'", e.Name)
		}
		name := g.pool.AddString(e.Name)
		g.emit(InstA(OP_STORE_GLOBAL, name))
		g.emit(InstA(OP_LOAD_GLOBAL, name))
		return nil

	case *parser.UnaryExpr:
		if err := g.genExpr(e.Operand); err != nil {
			return err
		}
		switch e.Operator {
		case parser.TOKEN_MINUS:
			g.emit(Inst(OP_NEG))
		case parser.TOKEN_NOT:
			g.emit(Inst(OP_NOT))
		default:
			return g.errorf(e.Pos, "unexpected unary operator %s", e.Operator)
		}
		return nil

	case *parser.BinaryExpr:
		op, ok := binaryOps[e.Operator]
		if !ok {
			return g.errorf(e.Pos, "unexpected binary operator %s", e.Operator)
		}
		if err := g.genExpr(e.Left); err != nil {
			return err
		}
		if err := g.genExpr(e.Right); err != nil {
			return err
		}
		g.emit(Inst(op))
		return nil

	case *parser.CallExpr:
		idx, ok := g.funcIndex[e.Callee]
		if !ok {
			return g.errorf(e.Pos, "unknown function '%s'", e.Callee)
		}
		for _, arg := range e.Args {
			if err := g.genExpr(arg); err != nil {
				return err
			}
		}
		g.emit(InstAB(OP_CALL, idx, uint16(len(e.Args))))
		return nil

	case *parser.IndexExpr:
		if err := g.genExpr(e.Array); err != nil {
			return err
		}
		if err := g.genExpr(e.Index); err != nil {
			return err
		}
		g.emit(Inst(OP_LOAD_INDEX))
		return nil

	case *parser.ArrayLitExpr:
		if len(e.Elements) > math.MaxUint16 {
			return g.errorf(e.Pos, "array literal has too many elements")
		}
		for _, el := range e.Elements {
			if err := g.genExpr(el); err != nil {
				return err
			}
		}
		g.emit(InstB(OP_NEW_ARRAY, uint16(len(e.Elements))))
		return nil

	default:
		return g.errorf(expr.Position(), "unexpected expression %T", expr)
	}
}

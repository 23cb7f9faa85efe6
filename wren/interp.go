package wren

import (
	"math"
)

// ---------------------------------------------------------------------------
// VM: slot-based scripting virtual machine
// ---------------------------------------------------------------------------

// Module is a namespace of module-level variables, including classes.
type Module struct {
	Name    string
	Globals map[string]Value
}

// VM is a single script virtual machine instance. A VM is not internally
// synchronized: the host must serialize all operations on one instance.
// Independent instances share no mutable state and may run concurrently.
type VM struct {
	cfg      Config
	registry *ObjectRegistry
	modules  map[string]*Module
	core     *Module

	// The API slot array: slot 0 is the receiver on input and the result
	// on output, slots 1..N hold positional arguments.
	slots []Value

	handles      map[uint32]*Handle
	nextHandleID uint32

	gcThreshold int

	// depth counts nested script entry points (Interpret, Call) on the
	// native stack. While it is non-zero, locals and intermediate values
	// live in interpreter frames the collector cannot see, so requested
	// collections are deferred until the stack unwinds to a safepoint.
	depth     int
	gcPending bool

	// Built-in value classes.
	numClass    *Class
	boolClass   *Class
	nullClass   *Class
	stringClass *Class
	systemClass *Class
}

// NewVM creates a VM with the given configuration. Zero-value config
// fields get defaults: no module loader, writes discarded, errors
// discarded, default heap tuning.
func NewVM(cfg Config) *VM {
	if cfg.InitialHeap <= 0 {
		cfg.InitialHeap = DefaultInitialHeap
	}
	if cfg.MinHeap <= 0 {
		cfg.MinHeap = DefaultMinHeap
	}
	if cfg.HeapGrowthPercent <= 0 {
		cfg.HeapGrowthPercent = DefaultHeapGrowthPercent
	}

	vm := &VM{
		cfg:          cfg,
		registry:     NewObjectRegistry(),
		modules:      make(map[string]*Module),
		handles:      make(map[uint32]*Handle),
		nextHandleID: 1,
		gcThreshold:  cfg.InitialHeap,
	}
	vm.bootstrapCore()
	return vm
}

// Config returns the VM's configuration.
func (vm *VM) Config() Config {
	return vm.cfg
}

func (vm *VM) write(text string) {
	if vm.cfg.Write != nil {
		vm.cfg.Write(text)
	}
}

func (vm *VM) reportError(kind ErrorKind, module string, line int, message string) {
	if vm.cfg.Error != nil {
		vm.cfg.Error(kind, module, line, message)
	}
}

// moduleNamed returns the module, creating an empty one on first use.
func (vm *VM) moduleNamed(name string) *Module {
	if m, ok := vm.modules[name]; ok {
		return m
	}
	m := &Module{Name: name, Globals: make(map[string]Value)}
	vm.modules[name] = m
	return m
}

// importCompileAbort is the panic payload used to unwind out of a failed
// import compilation so Interpret can report a compile error result.
type importCompileAbort struct{}

// Interpret parses and runs source in the named module. The module's
// variables persist across calls, so bindings made in one Interpret are
// visible to the next.
func (vm *VM) Interpret(module, source string) (result Result) {
	parser := NewParser(source)
	stmts := parser.Parse()
	if errs := parser.Errors(); len(errs) > 0 {
		for _, e := range errs {
			vm.reportError(ErrorCompile, module, e.line, e.message)
		}
		return ResultCompileError
	}

	mod := vm.moduleNamed(module)

	vm.depth++
	defer vm.leaveScript()

	defer func() {
		switch r := recover().(type) {
		case nil:
		case *scriptFault:
			vm.reportError(ErrorRuntime, r.module, r.line, r.message)
			result = ResultRuntimeError
		case importCompileAbort:
			result = ResultCompileError
		default:
			panic(r)
		}
	}()

	fr := &frame{module: mod, receiver: Null}
	topEnv := &env{vars: mod.Globals}
	for _, s := range stmts {
		vm.execStmt(s, topEnv, fr)
		vm.maybeCollect()
	}
	return ResultSuccess
}

// leaveScript unwinds one script entry point and runs a collection that
// was deferred while interpreter frames were live.
func (vm *VM) leaveScript() {
	vm.depth--
	if vm.depth == 0 && vm.gcPending {
		vm.gcPending = false
		vm.collect()
	}
}

// ---------------------------------------------------------------------------
// Execution state
// ---------------------------------------------------------------------------

// frame is the per-call execution context: the module whose globals are
// in scope and the receiver for field access.
type frame struct {
	module   *Module
	receiver Value
	self     *Instance // non-nil only inside instance methods of script classes
}

// env is a lexical scope chain. The top-level env aliases the module's
// globals map, so `var` at the top level defines a module variable.
type env struct {
	vars   map[string]Value
	parent *env
}

func (e *env) get(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return Null, false
}

func (e *env) assign(name string, v Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}

func (e *env) define(name string, v Value) {
	e.vars[name] = v
}

// ctrl signals non-linear control flow out of a statement.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
	ctrlBreak
)

// ---------------------------------------------------------------------------
// Statement execution
// ---------------------------------------------------------------------------

// execBlock runs statements in a fresh child scope. It returns the last
// expression-statement value so single-expression method bodies can act
// as implicit returns.
func (vm *VM) execBlock(stmts []Stmt, parent *env, fr *frame) (ctrl, Value) {
	scope := &env{vars: make(map[string]Value), parent: parent}
	var last Value = Null
	for _, s := range stmts {
		c, v := vm.execStmt(s, scope, fr)
		if c != ctrlNone {
			return c, v
		}
		last = v
	}
	return ctrlNone, last
}

func (vm *VM) execStmt(s Stmt, scope *env, fr *frame) (ctrl, Value) {
	switch st := s.(type) {
	case *VarStmt:
		var v Value = Null
		if st.Init != nil {
			v = vm.eval(st.Init, scope, fr)
		}
		scope.define(st.Name, v)
		return ctrlNone, Null

	case *ExprStmt:
		return ctrlNone, vm.eval(st.E, scope, fr)

	case *IfStmt:
		if vm.eval(st.Cond, scope, fr).IsTruthy() {
			c, v := vm.execBlock(st.Then, scope, fr)
			return c, v
		}
		if st.Else != nil {
			c, v := vm.execBlock(st.Else, scope, fr)
			return c, v
		}
		return ctrlNone, Null

	case *WhileStmt:
		for vm.eval(st.Cond, scope, fr).IsTruthy() {
			c, v := vm.execBlock(st.Body, scope, fr)
			if c == ctrlBreak {
				break
			}
			if c == ctrlReturn {
				return c, v
			}
		}
		return ctrlNone, Null

	case *ReturnStmt:
		if st.Value != nil {
			return ctrlReturn, vm.eval(st.Value, scope, fr)
		}
		return ctrlReturn, Null

	case *BreakStmt:
		return ctrlBreak, Null

	case *ImportStmt:
		vm.execImport(st, fr)
		return ctrlNone, Null

	case *ClassStmt:
		vm.declareClass(st, fr)
		return ctrlNone, Null
	}
	return ctrlNone, Null
}

// ---------------------------------------------------------------------------
// Class declaration
// ---------------------------------------------------------------------------

// declareClass builds a class from its declaration and stores it as a
// module variable. Foreign bindings are resolved here, at compile time
// in the sense of the embedding API: a missing binding is recoverable
// and only becomes a fault if the method or allocator is invoked.
func (vm *VM) declareClass(st *ClassStmt, fr *frame) {
	c := NewClass(fr.module.Name, st.Name)
	c.Foreign = st.Foreign

	if st.Foreign && vm.cfg.BindForeignClass != nil {
		if methods, ok := vm.cfg.BindForeignClass(fr.module.Name, st.Name); ok {
			c.Allocate = methods.Allocate
			c.Finalize = methods.Finalize
		}
	}

	for i := range st.Members {
		m := &st.Members[i]
		sig := m.Signature()
		method := &Method{
			Signature: sig,
			Arity:     len(m.Params),
			Params:    m.Params,
			Body:      m.Body,
			Ctor:      m.Ctor,
			ExprBody:  m.ExprBody,
		}
		if m.Foreign {
			method.ForeignDecl = true
			if vm.cfg.BindForeignMethod != nil {
				method.Foreign = vm.cfg.BindForeignMethod(fr.module.Name, st.Name, m.Static, sig)
			}
		}
		if m.Static || m.Ctor {
			c.Statics[sig] = method
		} else {
			c.Methods[sig] = method
		}
	}

	fr.module.Globals[st.Name] = vm.classValue(c)
}

// ---------------------------------------------------------------------------
// Imports
// ---------------------------------------------------------------------------

func (vm *VM) execImport(st *ImportStmt, fr *frame) {
	mod, loaded := vm.modules[st.Module]
	if !loaded {
		if vm.cfg.LoadModule == nil {
			fault(fr.module.Name, st.Line, "no module loader configured, cannot import %q", st.Module)
		}
		source, err := vm.cfg.LoadModule(st.Module)
		if err != nil {
			fault(fr.module.Name, st.Line, "could not load module %q: %v", st.Module, err)
		}

		parser := NewParser(source)
		stmts := parser.Parse()
		if errs := parser.Errors(); len(errs) > 0 {
			for _, e := range errs {
				vm.reportError(ErrorCompile, st.Module, e.line, e.message)
			}
			panic(importCompileAbort{})
		}

		mod = vm.moduleNamed(st.Module)
		sub := &frame{module: mod, receiver: Null}
		topEnv := &env{vars: mod.Globals}
		for _, s := range stmts {
			vm.execStmt(s, topEnv, sub)
		}
	}

	for _, name := range st.Variables {
		v, ok := mod.Globals[name]
		if !ok {
			fault(fr.module.Name, st.Line,
				"could not find a variable named %q in module %q", name, st.Module)
		}
		fr.module.Globals[name] = v
	}
}

// ---------------------------------------------------------------------------
// Expression evaluation
// ---------------------------------------------------------------------------

func (vm *VM) eval(e Expr, scope *env, fr *frame) Value {
	switch ex := e.(type) {
	case *NumLit:
		return FromNum(ex.Value)
	case *StrLit:
		return vm.newString(ex.Value)
	case *BoolLit:
		return FromBool(ex.Value)
	case *NullLit:
		return Null

	case *Ident:
		if v, ok := scope.get(ex.Name); ok {
			return v
		}
		if v, ok := fr.module.Globals[ex.Name]; ok {
			return v
		}
		if v, ok := vm.core.Globals[ex.Name]; ok {
			return v
		}
		fault(fr.module.Name, ex.Line, "undefined variable %q", ex.Name)
		return Null

	case *FieldRef:
		if fr.self == nil {
			fault(fr.module.Name, ex.Line, "cannot reference field %q outside an instance method", ex.Name)
		}
		if v, ok := fr.self.Fields[ex.Name]; ok {
			return v
		}
		return Null

	case *AssignExpr:
		v := vm.eval(ex.Value, scope, fr)
		switch target := ex.Target.(type) {
		case *Ident:
			if scope.assign(target.Name, v) {
				return v
			}
			if _, ok := fr.module.Globals[target.Name]; ok {
				fr.module.Globals[target.Name] = v
				return v
			}
			fault(fr.module.Name, ex.Line, "cannot assign to undefined variable %q", target.Name)
		case *FieldRef:
			if fr.self == nil {
				fault(fr.module.Name, ex.Line, "cannot assign field %q outside an instance method", target.Name)
			}
			fr.self.Fields[target.Name] = v
			return v
		}
		return v

	case *LogicalExpr:
		left := vm.eval(ex.Left, scope, fr)
		if ex.Op == TokenAnd {
			if !left.IsTruthy() {
				return left
			}
			return vm.eval(ex.Right, scope, fr)
		}
		if left.IsTruthy() {
			return left
		}
		return vm.eval(ex.Right, scope, fr)

	case *UnaryExpr:
		operand := vm.eval(ex.Operand, scope, fr)
		switch ex.Op {
		case TokenMinus:
			if !operand.IsNum() {
				fault(fr.module.Name, ex.Line, "operand of unary '-' must be a number, got %s", vm.typeName(operand))
			}
			return FromNum(-operand.Num())
		case TokenBang:
			return FromBool(!operand.IsTruthy())
		}
		return Null

	case *BinaryExpr:
		return vm.evalBinary(ex, scope, fr)

	case *CallExpr:
		recv := vm.eval(ex.Recv, scope, fr)
		args := make([]Value, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = vm.eval(a, scope, fr)
		}
		return vm.send(fr.module.Name, recv, ex.Signature(), args, ex.Line)
	}
	return Null
}

func (vm *VM) evalBinary(ex *BinaryExpr, scope *env, fr *frame) Value {
	left := vm.eval(ex.Left, scope, fr)
	right := vm.eval(ex.Right, scope, fr)

	switch ex.Op {
	case TokenEq:
		return FromBool(vm.valuesEqual(left, right))
	case TokenNotEq:
		return FromBool(!vm.valuesEqual(left, right))
	}

	// String concatenation.
	if ex.Op == TokenPlus {
		if ls, ok := vm.getString(left); ok {
			rs, ok := vm.getString(right)
			if !ok {
				fault(fr.module.Name, ex.Line, "right operand of '+' must be a string, got %s", vm.typeName(right))
			}
			return vm.newString(ls + rs)
		}
	}

	if !left.IsNum() || !right.IsNum() {
		fault(fr.module.Name, ex.Line, "operands of '%s' must be numbers, got %s and %s",
			ex.Op, vm.typeName(left), vm.typeName(right))
	}
	l, r := left.Num(), right.Num()

	switch ex.Op {
	case TokenPlus:
		return FromNum(l + r)
	case TokenMinus:
		return FromNum(l - r)
	case TokenStar:
		return FromNum(l * r)
	case TokenSlash:
		return FromNum(l / r)
	case TokenPercent:
		return FromNum(math.Mod(l, r))
	case TokenLess:
		return FromBool(l < r)
	case TokenGreater:
		return FromBool(l > r)
	case TokenLessEq:
		return FromBool(l <= r)
	case TokenGreatEq:
		return FromBool(l >= r)
	}
	return Null
}

// valuesEqual implements '=='. Numbers and specials compare by value,
// strings by content, everything else by identity.
func (vm *VM) valuesEqual(a, b Value) bool {
	if a == b {
		return true
	}
	if as, ok := vm.getString(a); ok {
		if bs, ok := vm.getString(b); ok {
			return as == bs
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Method dispatch
// ---------------------------------------------------------------------------

// classOf returns the dispatch class of a non-class value.
func (vm *VM) classOf(v Value) *Class {
	switch {
	case v.IsNum():
		return vm.numClass
	case v == Null:
		return vm.nullClass
	case v.IsBool():
		return vm.boolClass
	}
	switch obj := vm.registry.Get(v).(type) {
	case *StringObject:
		return vm.stringClass
	case *Instance:
		return obj.Class
	case *ForeignInstance:
		return obj.Class
	}
	return nil
}

// send dispatches a call by canonical signature.
func (vm *VM) send(module string, recv Value, sig string, args []Value, line int) Value {
	if co, ok := vm.registry.Get(recv).(*ClassObject); ok {
		m := co.Class.Statics[sig]
		if m == nil {
			fault(module, line, "%s metaclass does not implement %q", co.Class.Name, sig)
		}
		if m.Ctor {
			return vm.construct(co.Class, m, args, module, line)
		}
		return vm.invoke(recv, co.Class, m, args, module, line)
	}

	class := vm.classOf(recv)
	if class == nil {
		fault(module, line, "cannot call %q on a collected object", sig)
	}
	m := class.Methods[sig]
	if m == nil {
		fault(module, line, "%s does not implement %q", class.Name, sig)
	}
	return vm.invoke(recv, class, m, args, module, line)
}

// invoke runs a resolved method: foreign dispatch through the slot API,
// script methods through the interpreter.
func (vm *VM) invoke(recv Value, class *Class, m *Method, args []Value, module string, line int) Value {
	if m.ForeignDecl {
		return vm.callForeign(recv, class, m, args, module, line)
	}

	scope := &env{vars: make(map[string]Value)}
	for i, p := range m.Params {
		scope.vars[p] = args[i]
	}

	fr := &frame{module: vm.methodModule(class), receiver: recv}
	if inst, ok := vm.registry.Get(recv).(*Instance); ok {
		fr.self = inst
	}

	c, v := vm.execBlock(m.Body, scope, fr)
	if c == ctrlReturn {
		return v
	}
	if m.ExprBody {
		return v
	}
	return Null
}

// methodModule resolves the module a class was declared in, so its
// methods see their defining module's variables.
func (vm *VM) methodModule(class *Class) *Module {
	if m, ok := vm.modules[class.Module]; ok {
		return m
	}
	return vm.core
}

// callForeign invokes a foreign method binding through the slot calling
// convention: receiver in slot 0, arguments in slots 1..N, result read
// back from slot 0.
func (vm *VM) callForeign(recv Value, class *Class, m *Method, args []Value, module string, line int) Value {
	if m.Foreign == nil {
		fault(module, line, "no foreign method registered for %s.%s in module %q",
			class.Name, m.Signature, class.Module)
	}

	vm.EnsureSlots(len(args) + 1)
	vm.slots[0] = recv
	for i, a := range args {
		vm.slots[i+1] = a
	}

	if err := m.Foreign(vm); err != nil {
		if sf, ok := err.(*scriptFault); ok {
			panic(sf)
		}
		fault(module, line, "%s.%s: %v", class.Name, m.Signature, err)
	}
	return vm.slots[0]
}

// construct builds an instance. Foreign classes delegate storage to the
// registered allocator; script classes allocate an Instance and run the
// constructor body against it.
func (vm *VM) construct(class *Class, m *Method, args []Value, module string, line int) Value {
	if class.Foreign {
		if class.Allocate == nil {
			fault(module, line, "foreign class %s has no registered allocator in module %q",
				class.Name, class.Module)
		}
		vm.EnsureSlots(len(args) + 1)
		vm.slots[0] = vm.classValue(class)
		for i, a := range args {
			vm.slots[i+1] = a
		}
		if err := class.Allocate(vm); err != nil {
			if sf, ok := err.(*scriptFault); ok {
				panic(sf)
			}
			fault(module, line, "allocating %s: %v", class.Name, err)
		}
		recv := vm.slots[0]
		if _, ok := vm.registry.Get(recv).(*ForeignInstance); !ok {
			fault(module, line, "allocator for foreign class %s did not produce an instance", class.Name)
		}
		if len(m.Body) > 0 {
			vm.invoke(recv, class, &Method{
				Signature: m.Signature,
				Arity:     m.Arity,
				Params:    m.Params,
				Body:      m.Body,
				ExprBody:  m.ExprBody,
			}, args, module, line)
		}
		return recv
	}

	inst := &Instance{Class: class, Fields: make(map[string]Value)}
	recv := vm.registry.Register(inst)

	scope := &env{vars: make(map[string]Value)}
	for i, p := range m.Params {
		scope.vars[p] = args[i]
	}
	fr := &frame{module: vm.methodModule(class), receiver: recv, self: inst}
	vm.execBlock(m.Body, scope, fr)
	return recv
}

// sendBySignature is the Call entry: dispatch recv.sig(args) and return
// the result. Used by call handles.
func (vm *VM) sendBySignature(recv Value, sig *callSignature, args []Value) Value {
	module := "(call)"
	if class := vm.classOf(recv); class != nil {
		module = class.Module
	} else if co, ok := vm.registry.Get(recv).(*ClassObject); ok {
		module = co.Class.Module
	}
	return vm.send(module, recv, sig.full, args, 0)
}

package wrenpp

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/heretique/wrenpp/wren"
)

// ---------------------------------------------------------------------------
// Binding builders
// ---------------------------------------------------------------------------
//
// The binding phase happens before scripts run:
//
//	vm.Module("main").
//	    Class("Vec", Vec{}).
//	    Constructor("new(_,_)", NewVec).
//	    Method("x", (*Vec).X).
//	    Static("dot(_,_)", Dot)
//
// Errors are sticky: the first failure is kept and every later call on
// the same builder is a no-op, so one Err check at the end covers the
// whole chain.

// ModuleContext scopes bindings to one script module.
type ModuleContext struct {
	vm   *VM
	name string
	err  error
}

// Module starts a binding chain for the named script module.
func (vm *VM) Module(name string) *ModuleContext {
	return &ModuleContext{vm: vm, name: name}
}

// Err returns the first error recorded while building this module's
// bindings.
func (m *ModuleContext) Err() error {
	return m.err
}

// Class registers a native type under a script class name and returns
// a builder for its methods. prototype conveys the type: pass a zero
// value (Vec{}) or a nil pointer ((*Vec)(nil)).
func (m *ModuleContext) Class(class string, prototype any) *ClassContext {
	c := &ClassContext{module: m, class: class}
	if m.err != nil {
		return c
	}

	typ := reflect.TypeOf(prototype)
	if typ == nil {
		m.err = fmt.Errorf("wrenpp: %s.%s: prototype must carry a type, got untyped nil", m.name, class)
		return c
	}
	if typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	id, err := m.vm.types.Register(m.name, class, typ)
	if err != nil {
		m.err = err
		return c
	}
	c.info, _ = m.vm.types.lookupID(id)

	binding := &classBinding{typeID: id}
	binding.finalize = m.vm.classFinalizer(id)
	if err := m.vm.state.bindClass(classKey{module: m.name, class: class}, binding); err != nil {
		m.err = err
		return c
	}
	c.binding = binding
	return c
}

// ClassContext builds the bindings of one script class.
type ClassContext struct {
	module  *ModuleContext
	class   string
	info    *typeInfo
	binding *classBinding
}

// Err returns the first error recorded on this chain.
func (c *ClassContext) Err() error {
	return c.module.err
}

func (c *ClassContext) fail(err error) *ClassContext {
	if c.module.err == nil {
		c.module.err = err
	}
	return c
}

func (c *ClassContext) label(signature string) string {
	return c.module.name + "." + c.class + "." + signature
}

// Constructor binds the allocator invoked by the script-side
// constructor. The signature names the constructor as declared in
// script ("new(_,_)"); ctor returns the new payload as T or *T.
func (c *ClassContext) Constructor(signature string, ctor any) *ClassContext {
	if c.module.err != nil {
		return c
	}
	arity, err := wren.SignatureArity(signature)
	if err != nil {
		return c.fail(fmt.Errorf("wrenpp: %s: %w", c.label(signature), err))
	}
	allocate, err := c.module.vm.newAllocator(c.info, ctor, c.label(signature))
	if err != nil {
		return c.fail(err)
	}
	if n := reflect.TypeOf(ctor).NumIn(); n != arity {
		return c.fail(fmt.Errorf("wrenpp: %s: signature takes %d arguments, constructor takes %d",
			c.label(signature), arity, n))
	}
	c.binding.allocate = allocate
	return c
}

// Finalizer registers the host callback run when the collector reclaims
// a value-owned instance of this class. The payload is passed as *T.
// Reference-wrapped instances never reach it.
func (c *ClassContext) Finalizer(fin func(payload any)) *ClassContext {
	if c.module.err != nil {
		return c
	}
	c.module.vm.state.setFinalizer(c.info.id, fin)
	return c
}

// Method binds an instance method. fn's first parameter is the
// receiver (T or *T); the rest map to the signature's placeholders.
func (c *ClassContext) Method(signature string, fn any) *ClassContext {
	return c.bind(signature, fn, false)
}

// Static binds a static method. fn has no receiver parameter.
func (c *ClassContext) Static(signature string, fn any) *ClassContext {
	return c.bind(signature, fn, true)
}

// Getter binds a no-argument instance method under a bare-name
// signature.
func (c *ClassContext) Getter(name string, fn any) *ClassContext {
	return c.bind(name, fn, false)
}

// Setter binds a one-argument instance method under a setter
// signature.
func (c *ClassContext) Setter(name string, fn any) *ClassContext {
	return c.bind(name+"=(_)", fn, false)
}

// Field binds a getter and setter pair for an exported struct field by
// name: Field("x") exposes the Go field X as the script property x.
// The field's type must be marshallable.
func (c *ClassContext) Field(name string) *ClassContext {
	if c.module.err != nil {
		return c
	}
	vm := c.module.vm
	label := c.label(name)

	typ := c.info.typ
	if typ.Kind() != reflect.Struct {
		return c.fail(fmt.Errorf("wrenpp: %s: %s is not a struct type", label, typ))
	}
	goName := exportedFieldName(name)
	sf, ok := typ.FieldByName(goName)
	if !ok {
		return c.fail(fmt.Errorf("wrenpp: %s: %s has no field %s", label, typ, goName))
	}

	read, err := vm.readerFor(sf.Type)
	if err != nil {
		return c.fail(fmt.Errorf("wrenpp: %s: %w", label, err))
	}
	write, err := vm.writerFor(sf.Type)
	if err != nil {
		return c.fail(fmt.Errorf("wrenpp: %s: %w", label, err))
	}
	recv := makeForeignReader(c.info, true)
	index := sf.Index

	getter := func(_ *wren.VM) error {
		self, err := recv(vm, 0)
		if err != nil {
			return fmt.Errorf("%s: receiver: %w", label, err)
		}
		return write(vm, 0, self.Elem().FieldByIndex(index))
	}
	setter := func(_ *wren.VM) error {
		self, err := recv(vm, 0)
		if err != nil {
			return fmt.Errorf("%s: receiver: %w", label, err)
		}
		v, err := read(vm, 1)
		if err != nil {
			return fmt.Errorf("%s: value: %w", label, err)
		}
		self.Elem().FieldByIndex(index).Set(v)
		return nil
	}

	getKey := methodKey{module: c.module.name, class: c.class, signature: name}
	if err := vm.state.bindMethod(getKey, getter); err != nil {
		return c.fail(err)
	}
	setKey := methodKey{module: c.module.name, class: c.class, signature: name + "=(_)"}
	if err := vm.state.bindMethod(setKey, setter); err != nil {
		return c.fail(err)
	}
	return c
}

// exportedFieldName maps a script property name onto the exported Go
// field it reads: "x" to "X", "maxSpeed" to "MaxSpeed".
func exportedFieldName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func (c *ClassContext) bind(signature string, fn any, static bool) *ClassContext {
	if c.module.err != nil {
		return c
	}
	vm := c.module.vm

	arity, err := wren.SignatureArity(signature)
	if err != nil {
		return c.fail(fmt.Errorf("wrenpp: %s: %w", c.label(signature), err))
	}

	recvType := c.info.typ
	if static {
		recvType = nil
	}
	b, err := vm.newBoundFn(fn, recvType, c.label(signature))
	if err != nil {
		return c.fail(err)
	}
	if b.arity() != arity {
		return c.fail(fmt.Errorf("wrenpp: %s: signature takes %d arguments, function takes %d",
			c.label(signature), arity, b.arity()))
	}

	key := methodKey{module: c.module.name, class: c.class, static: static, signature: signature}
	if err := vm.state.bindMethod(key, b.call); err != nil {
		return c.fail(err)
	}
	return c
}

// Raw binds a callback that works the slot API directly, bypassing
// marshalling. For statics slot 0 holds the receiver class.
func (c *ClassContext) Raw(signature string, static bool, fn wren.ForeignMethodFn) *ClassContext {
	if c.module.err != nil {
		return c
	}
	if _, err := wren.SignatureArity(signature); err != nil {
		return c.fail(fmt.Errorf("wrenpp: %s: %w", c.label(signature), err))
	}
	key := methodKey{module: c.module.name, class: c.class, static: static, signature: signature}
	if err := c.module.vm.state.bindMethod(key, fn); err != nil {
		return c.fail(err)
	}
	return c
}

// classFinalizer adapts the per-kind release table to the VM's
// finalize callback shape.
func (vm *VM) classFinalizer(id TypeID) wren.FinalizeFn {
	return func(data any) {
		f, ok := data.(*foreignObject)
		if !ok {
			return
		}
		finalizers[f.kind](vm, f)
	}
}

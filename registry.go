package wrenpp

import (
	"github.com/heretique/wrenpp/wren"
)

// methodKey is the full lookup key for a method binding. Keys are
// compared structurally, so two distinct bindings can never alias the
// way hashed keys can.
type methodKey struct {
	module    string
	class     string
	static    bool
	signature string
}

// classKey identifies a foreign class binding.
type classKey struct {
	module string
	class  string
}

// classBinding pairs the allocator and finalizer of one foreign class.
type classBinding struct {
	allocate wren.ForeignMethodFn
	finalize wren.FinalizeFn
	typeID   TypeID
}

// boundState is the per-VM binding registry the script VM queries
// through its foreign lookup hooks. All writes happen during the
// binding phase, before scripts run; lookups afterwards are read-only.
type boundState struct {
	methods    map[methodKey]wren.ForeignMethodFn
	classes    map[classKey]*classBinding
	finalizers map[TypeID]func(payload any)
}

func newBoundState() *boundState {
	return &boundState{
		methods:    make(map[methodKey]wren.ForeignMethodFn),
		classes:    make(map[classKey]*classBinding),
		finalizers: make(map[TypeID]func(any)),
	}
}

// bindMethod registers a method callback. A duplicate key fails the
// registration rather than replacing the existing entry.
func (s *boundState) bindMethod(key methodKey, fn wren.ForeignMethodFn) error {
	if _, exists := s.methods[key]; exists {
		return &BindingConflictError{
			Module:    key.module,
			Class:     key.class,
			Signature: key.signature,
			Static:    key.static,
		}
	}
	s.methods[key] = fn
	return nil
}

// bindClass registers a foreign class's allocate/finalize pair.
func (s *boundState) bindClass(key classKey, b *classBinding) error {
	if _, exists := s.classes[key]; exists {
		return &BindingConflictError{Module: key.module, Class: key.class}
	}
	s.classes[key] = b
	return nil
}

func (s *boundState) setFinalizer(id TypeID, fin func(any)) {
	s.finalizers[id] = fin
}

func (s *boundState) finalizerFor(id TypeID) func(any) {
	return s.finalizers[id]
}

// lookupMethod is the VM's foreign method hook. A miss returns nil;
// the VM then compiles a stub that faults if the method is ever
// invoked, which keeps a missing binding recoverable at compile time.
func (s *boundState) lookupMethod(module, class string, isStatic bool, signature string) wren.ForeignMethodFn {
	return s.methods[methodKey{module: module, class: class, static: isStatic, signature: signature}]
}

// lookupClass is the VM's foreign class hook.
func (s *boundState) lookupClass(module, class string) (wren.ForeignClassMethods, bool) {
	b, ok := s.classes[classKey{module: module, class: class}]
	if !ok {
		return wren.ForeignClassMethods{}, false
	}
	return wren.ForeignClassMethods{Allocate: b.allocate, Finalize: b.finalize}, true
}

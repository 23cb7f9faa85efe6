package wrenpp

import (
	"reflect"
)

// Ownership tags how a foreign object's native payload is owned.
type Ownership uint8

const (
	// OwnValue: the payload was copied into VM-managed storage when the
	// object was created. The VM owns it and the registered finalizer
	// runs when the collector reclaims the object.
	OwnValue Ownership = iota

	// OwnReference: the payload points at host-owned state. Collection
	// of the script wrapper never touches the payload; keeping it alive
	// for as long as script code can reach it is the host's problem.
	OwnReference
)

func (o Ownership) String() string {
	if o == OwnReference {
		return "reference"
	}
	return "value"
}

// foreignObject is the payload attached to every foreign instance the
// binding layer creates: the ownership tag, the registered type id, and
// the native value itself. For OwnValue the reflect.Value holds an
// addressable copy; for OwnReference it holds the host's pointer.
type foreignObject struct {
	kind   Ownership
	typeID TypeID
	value  reflect.Value
}

// addr returns a pointer-typed reflect.Value for method receivers.
func (f *foreignObject) addr() reflect.Value {
	if f.value.Kind() == reflect.Pointer {
		return f.value
	}
	return f.value.Addr()
}

// finalizeFn releases a foreign object's payload when the collector
// reclaims it. Indexed by ownership kind: new ownership variants extend
// this table, nothing dispatches virtually.
type finalizeFn func(vm *VM, f *foreignObject)

var finalizers = [...]finalizeFn{
	OwnValue: func(vm *VM, f *foreignObject) {
		if fin := vm.state.finalizerFor(f.typeID); fin != nil {
			fin(f.addr().Interface())
		}
	},
	OwnReference: func(vm *VM, f *foreignObject) {
		// Host-owned payload, nothing to release.
	},
}

// newValueObject copies v into VM-owned storage.
func newValueObject(id TypeID, v reflect.Value) *foreignObject {
	storage := reflect.New(v.Type())
	storage.Elem().Set(v)
	return &foreignObject{kind: OwnValue, typeID: id, value: storage.Elem()}
}

// newReferenceObject wraps a host-owned pointer without copying.
func newReferenceObject(id TypeID, ptr reflect.Value) *foreignObject {
	return &foreignObject{kind: OwnReference, typeID: id, value: ptr}
}

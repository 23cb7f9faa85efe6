package wren

import (
	"strconv"
	"sync"
)

// ---------------------------------------------------------------------------
// Heap objects and the object registry
// ---------------------------------------------------------------------------

// StringObject is a heap-allocated UTF-8 string.
type StringObject struct {
	Value string
}

// Instance is an instance of a script-defined class.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// ForeignInstance wraps a host payload allocated through a foreign class
// binding. Data is opaque to the VM; the finalize callback registered on
// the class runs when the collector frees the instance.
type ForeignInstance struct {
	Class *Class
	Data  any
}

// ClassObject makes a class usable as a first-class value (the receiver
// of static calls, the content of a module variable).
type ClassObject struct {
	Class *Class
}

// ObjectRegistry maps registry IDs to heap objects. Values carry the ID
// rather than a raw pointer, so the collector can account for every
// object the VM handed out.
type ObjectRegistry struct {
	mu      sync.RWMutex
	objects map[uint32]any
	nextID  uint32
}

// NewObjectRegistry creates an empty registry.
func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{
		objects: make(map[uint32]any),
		nextID:  1, // 0 means invalid
	}
}

// Register stores an object and returns its value encoding.
func (r *ObjectRegistry) Register(obj any) Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.objects[id] = obj
	return FromObjectID(id)
}

// Get returns the object for a value, or nil if the value is not an
// object or the object has been collected.
func (r *ObjectRegistry) Get(v Value) any {
	if !v.IsObject() {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.objects[v.ObjectID()]
}

// Remove deletes an object by ID.
func (r *ObjectRegistry) Remove(id uint32) {
	r.mu.Lock()
	delete(r.objects, id)
	r.mu.Unlock()
}

// Count returns the number of live objects.
func (r *ObjectRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// ---------------------------------------------------------------------------
// VM-level object helpers
// ---------------------------------------------------------------------------

// newString allocates a string object and returns its value.
func (vm *VM) newString(s string) Value {
	return vm.registry.Register(&StringObject{Value: s})
}

// getString returns the string content of v, if v is a string object.
func (vm *VM) getString(v Value) (string, bool) {
	if s, ok := vm.registry.Get(v).(*StringObject); ok {
		return s.Value, true
	}
	return "", false
}

// classValue wraps a class as a value, caching the wrapper on the class.
func (vm *VM) classValue(c *Class) Value {
	if c.value == 0 {
		c.value = vm.registry.Register(&ClassObject{Class: c})
	}
	return c.value
}

// typeName names the dynamic type of v for diagnostics.
func (vm *VM) typeName(v Value) string {
	switch {
	case v.IsNum():
		return "Num"
	case v == Null:
		return "Null"
	case v.IsBool():
		return "Bool"
	}
	switch obj := vm.registry.Get(v).(type) {
	case *StringObject:
		return "String"
	case *Instance:
		return obj.Class.Name
	case *ForeignInstance:
		return obj.Class.Name
	case *ClassObject:
		return obj.Class.Name + " metaclass"
	}
	return "Unknown"
}

// stringify renders a value the way System.print does.
func (vm *VM) stringify(v Value) string {
	switch {
	case v.IsNum():
		return strconv.FormatFloat(v.Num(), 'g', -1, 64)
	case v == Null:
		return "null"
	case v == True:
		return "true"
	case v == False:
		return "false"
	}
	switch obj := vm.registry.Get(v).(type) {
	case *StringObject:
		return obj.Value
	case *Instance:
		return "instance of " + obj.Class.Name
	case *ForeignInstance:
		return "instance of " + obj.Class.Name
	case *ClassObject:
		return obj.Class.Name
	}
	return "<collected>"
}

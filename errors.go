package wrenpp

import (
	"fmt"
	"reflect"
)

// CompileError reports that script source failed to parse. Diagnostics
// have already been routed to the VM's error reporter by the time this
// is returned.
type CompileError struct {
	Module string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("wrenpp: compile error in module %q", e.Module)
}

// RuntimeError reports a script-level fault during execution.
type RuntimeError struct {
	Module string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("wrenpp: runtime error in module %q", e.Module)
}

// TypeMismatchError reports that a slot's dynamic type does not match
// the type a binding expects. It is returned, not panicked: the fault
// surfaces to the script as a runtime error naming both types.
type TypeMismatchError struct {
	Slot int
	Want string
	Got  string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("wrenpp: slot %d holds %s, want %s", e.Slot, e.Got, e.Want)
}

// BindingConflictError reports an attempt to register a second binding
// under a key that is already taken. Registration fails instead of
// silently replacing the existing entry.
type BindingConflictError struct {
	Module    string
	Class     string
	Signature string // empty for class bindings
	Static    bool
}

func (e *BindingConflictError) Error() string {
	if e.Signature == "" {
		return fmt.Sprintf("wrenpp: class %s.%s is already bound", e.Module, e.Class)
	}
	kind := "method"
	if e.Static {
		kind = "static method"
	}
	return fmt.Sprintf("wrenpp: %s %s.%s.%s is already bound", kind, e.Module, e.Class, e.Signature)
}

// NotRegisteredError reports use of a native type that was never
// registered with the VM's type registry.
type NotRegisteredError struct {
	Type reflect.Type
}

func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("wrenpp: type %s is not registered", e.Type)
}

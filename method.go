package wrenpp

import (
	"fmt"
	"reflect"

	"github.com/heretique/wrenpp/wren"
)

// ValueType tags the dynamic type of a script call result.
type ValueType int

const (
	ValueNull ValueType = iota
	ValueBool
	ValueNum
	ValueString
	ValueForeign
)

func (t ValueType) String() string {
	switch t {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueNum:
		return "num"
	case ValueString:
		return "string"
	case ValueForeign:
		return "foreign"
	}
	return "unknown"
}

// Value is the tagged result of calling into script.
type Value struct {
	Type    ValueType
	Bool    bool
	Num     float64
	Str     string
	Foreign any // host payload of a foreign result, nil otherwise
}

// MethodHandle is a reusable reference to a script callable on a fixed
// receiver. It owns two VM references (the receiver and the resolved
// call target); Release frees both and is safe to call more than once.
//
// Call failures are a distinct signal from a script returning null: a
// fault during the call produces a non-nil error, never a null Value.
type MethodHandle struct {
	vm   *VM
	recv *wren.Handle
	call *wren.Handle
}

// MethodHandle resolves a script variable as a receiver and pairs it
// with a call signature. The variable must exist in an already-executed
// module.
func (vm *VM) MethodHandle(module, variable, signature string) (*MethodHandle, error) {
	vm.wren.EnsureSlots(1)
	if err := vm.wren.GetVariable(module, variable, 0); err != nil {
		return nil, fmt.Errorf("wrenpp: method handle receiver: %w", err)
	}
	recv := vm.wren.GetSlotHandle(0)

	call, err := vm.wren.MakeCallHandle(signature)
	if err != nil {
		recv.Release()
		return nil, err
	}
	return &MethodHandle{vm: vm, recv: recv, call: call}, nil
}

// Release frees the handle's VM references. Idempotent.
func (h *MethodHandle) Release() {
	if h == nil {
		return
	}
	h.recv.Release()
	h.call.Release()
}

// Released reports whether Release has run.
func (h *MethodHandle) Released() bool {
	return h == nil || h.recv.Released()
}

// Call invokes the script method with the given arguments. Arguments
// marshal by the same rules as bound-function results: primitives
// convert through the slot marshaller, registered foreign values pass
// as value copies (T) or host references (*T).
func (h *MethodHandle) Call(args ...any) (Value, error) {
	if h.Released() {
		return Value{}, fmt.Errorf("wrenpp: call on a released method handle")
	}
	vm := h.vm

	vm.wren.EnsureSlots(len(args) + 1)
	vm.wren.SetSlotHandle(0, h.recv)
	for i, arg := range args {
		if arg == nil {
			vm.wren.SetSlotNull(i + 1)
			continue
		}
		av := reflect.ValueOf(arg)
		w, err := vm.writerFor(av.Type())
		if err != nil {
			return Value{}, fmt.Errorf("wrenpp: call argument %d: %w", i+1, err)
		}
		if err := w(vm, i+1, av); err != nil {
			return Value{}, fmt.Errorf("wrenpp: call argument %d: %w", i+1, err)
		}
	}
	// Argument writers may have grown the slot array past the receiver
	// slot; the receiver itself is already pinned in slot 0.

	if res := vm.wren.Call(h.call); res != wren.ResultSuccess {
		return Value{}, &RuntimeError{Module: "(call)"}
	}
	return vm.readResult(0), nil
}

// readResult inspects a slot's type tag and produces the tagged value.
func (vm *VM) readResult(slot int) Value {
	switch vm.wren.SlotType(slot) {
	case wren.SlotBool:
		return Value{Type: ValueBool, Bool: vm.wren.GetSlotBool(slot)}
	case wren.SlotNum:
		return Value{Type: ValueNum, Num: vm.wren.GetSlotDouble(slot)}
	case wren.SlotString:
		return Value{Type: ValueString, Str: vm.wren.GetSlotString(slot)}
	case wren.SlotForeign:
		if f, ok := vm.wren.GetSlotForeign(slot).(*foreignObject); ok {
			return Value{Type: ValueForeign, Foreign: f.addr().Interface()}
		}
		return Value{Type: ValueForeign}
	}
	return Value{Type: ValueNull}
}

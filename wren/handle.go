package wren

import "fmt"

// Handle pins a value so the collector treats it as a root for as long
// as the handle is live. Call handles additionally carry a parsed
// signature and can be invoked with Call.
type Handle struct {
	vm       *VM
	id       uint32
	value    Value
	sig      *callSignature
	released bool
}

func (vm *VM) newHandle(v Value, sig *callSignature) *Handle {
	h := &Handle{vm: vm, id: vm.nextHandleID, value: v, sig: sig}
	vm.nextHandleID++
	vm.handles[h.id] = h
	return h
}

// Release unpins the handle's value. Releasing an already-released
// handle is a no-op, so ownership transfer needs no bookkeeping beyond
// not double-calling on the same logical owner.
func (h *Handle) Release() {
	if h == nil || h.released {
		return
	}
	h.released = true
	delete(h.vm.handles, h.id)
}

// Released reports whether the handle has been released.
func (h *Handle) Released() bool {
	return h == nil || h.released
}

// GetSlotHandle pins the value in a slot and returns the handle.
func (vm *VM) GetSlotHandle(slot int) *Handle {
	vm.slotCheck(slot)
	return vm.newHandle(vm.slots[slot], nil)
}

// SetSlotHandle stores a handle's pinned value into a slot.
func (vm *VM) SetSlotHandle(slot int, h *Handle) {
	vm.slotCheck(slot)
	if h == nil || h.released {
		panic("wren: SetSlotHandle on a released handle")
	}
	vm.slots[slot] = h.value
}

// MakeCallHandle compiles a method signature into a reusable call
// handle. The signature uses underscore placeholders for arguments,
// e.g. "add(_,_)", "count", or "name=(_)".
func (vm *VM) MakeCallHandle(signature string) (*Handle, error) {
	sig, err := parseSignature(signature)
	if err != nil {
		return nil, fmt.Errorf("wren: invalid call signature %q: %w", signature, err)
	}
	return vm.newHandle(Null, sig), nil
}

// Call invokes the call handle against the receiver in slot 0 and
// arguments in slots 1..arity. On success the result replaces slot 0.
// Runtime faults are routed to the configured error callback and
// reported as a runtime error result.
func (vm *VM) Call(h *Handle) (result Result) {
	if h == nil || h.released || h.sig == nil {
		vm.reportError(ErrorRuntime, "(call)", 0, "invalid call handle")
		return ResultRuntimeError
	}
	if len(vm.slots) < h.sig.Arity+1 {
		vm.reportError(ErrorRuntime, "(call)", 0,
			fmt.Sprintf("call %q needs %d slots, have %d", h.sig.full, h.sig.Arity+1, len(vm.slots)))
		return ResultRuntimeError
	}

	vm.depth++
	defer vm.leaveScript()

	defer func() {
		if r := recover(); r != nil {
			sf, ok := r.(*scriptFault)
			if !ok {
				panic(r)
			}
			vm.reportError(ErrorRuntime, sf.module, sf.line, sf.message)
			result = ResultRuntimeError
		}
	}()

	recv := vm.slots[0]
	args := make([]Value, h.sig.Arity)
	copy(args, vm.slots[1:h.sig.Arity+1])

	vm.slots[0] = vm.sendBySignature(recv, h.sig, args)
	return ResultSuccess
}

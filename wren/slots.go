package wren

import "fmt"

// SlotType classifies a slot's content for the host.
type SlotType int

const (
	SlotNull SlotType = iota
	SlotBool
	SlotNum
	SlotString
	SlotForeign
	SlotUnknown
)

func (t SlotType) String() string {
	switch t {
	case SlotNull:
		return "null"
	case SlotBool:
		return "bool"
	case SlotNum:
		return "num"
	case SlotString:
		return "string"
	case SlotForeign:
		return "foreign"
	}
	return "unknown"
}

// EnsureSlots grows the slot array to hold at least n slots. New slots
// are null. Existing slot contents are preserved.
func (vm *VM) EnsureSlots(n int) {
	for len(vm.slots) < n {
		vm.slots = append(vm.slots, Null)
	}
}

// SlotCount reports the current size of the slot array.
func (vm *VM) SlotCount() int {
	return len(vm.slots)
}

// slotCheck panics on out-of-range access. Slot indices are a host
// programming contract, not script-level errors.
func (vm *VM) slotCheck(slot int) {
	if slot < 0 || slot >= len(vm.slots) {
		panic(fmt.Sprintf("wren: slot %d out of range (have %d slots)", slot, len(vm.slots)))
	}
}

// SlotType reports the dynamic type of the value in a slot.
func (vm *VM) SlotType(slot int) SlotType {
	vm.slotCheck(slot)
	v := vm.slots[slot]
	switch {
	case v == Null:
		return SlotNull
	case v.IsBool():
		return SlotBool
	case v.IsNum():
		return SlotNum
	}
	switch vm.registry.Get(v).(type) {
	case *StringObject:
		return SlotString
	case *ForeignInstance:
		return SlotForeign
	}
	return SlotUnknown
}

// GetSlotBool reads a boolean. Panics if the slot does not hold one.
func (vm *VM) GetSlotBool(slot int) bool {
	vm.slotCheck(slot)
	v := vm.slots[slot]
	if !v.IsBool() {
		panic(fmt.Sprintf("wren: slot %d holds %s, not bool", slot, vm.typeName(v)))
	}
	return v.Bool()
}

// GetSlotDouble reads a number. Panics if the slot does not hold one.
func (vm *VM) GetSlotDouble(slot int) float64 {
	vm.slotCheck(slot)
	v := vm.slots[slot]
	if !v.IsNum() {
		panic(fmt.Sprintf("wren: slot %d holds %s, not num", slot, vm.typeName(v)))
	}
	return v.Num()
}

// GetSlotString reads a string. The returned string is an independent
// Go string; it stays valid after the VM mutates or collects the slot's
// object. Panics if the slot does not hold a string.
func (vm *VM) GetSlotString(slot int) string {
	vm.slotCheck(slot)
	s, ok := vm.getString(vm.slots[slot])
	if !ok {
		panic(fmt.Sprintf("wren: slot %d holds %s, not string", slot, vm.typeName(vm.slots[slot])))
	}
	return s
}

// GetSlotForeign returns the host payload of the foreign instance in a
// slot, or nil if the slot does not hold a foreign instance.
func (vm *VM) GetSlotForeign(slot int) any {
	vm.slotCheck(slot)
	if fi, ok := vm.registry.Get(vm.slots[slot]).(*ForeignInstance); ok {
		return fi.Data
	}
	return nil
}

// SetSlotNull stores null into a slot.
func (vm *VM) SetSlotNull(slot int) {
	vm.slotCheck(slot)
	vm.slots[slot] = Null
}

// SetSlotBool stores a boolean into a slot.
func (vm *VM) SetSlotBool(slot int, b bool) {
	vm.slotCheck(slot)
	vm.slots[slot] = FromBool(b)
}

// SetSlotDouble stores a number into a slot.
func (vm *VM) SetSlotDouble(slot int, n float64) {
	vm.slotCheck(slot)
	vm.slots[slot] = FromNum(n)
}

// SetSlotString copies a Go string into a new script string object.
func (vm *VM) SetSlotString(slot int, s string) {
	vm.slotCheck(slot)
	vm.slots[slot] = vm.newString(s)
}

// SetSlotNewForeign creates a foreign instance of the class held in
// classSlot, attaches the host payload, and stores the instance into
// slot. The class must be a foreign class.
func (vm *VM) SetSlotNewForeign(slot, classSlot int, data any) error {
	vm.slotCheck(slot)
	vm.slotCheck(classSlot)
	co, ok := vm.registry.Get(vm.slots[classSlot]).(*ClassObject)
	if !ok {
		return fmt.Errorf("wren: slot %d does not hold a class", classSlot)
	}
	if !co.Class.Foreign {
		return fmt.Errorf("wren: class %s is not foreign", co.Class.Name)
	}
	fi := &ForeignInstance{Class: co.Class, Data: data}
	vm.slots[slot] = vm.registry.Register(fi)
	return nil
}

// GetVariable looks up a module-level variable and stores its value
// into a slot. The module must already be loaded.
func (vm *VM) GetVariable(module, name string, slot int) error {
	vm.slotCheck(slot)
	mod, ok := vm.modules[module]
	if !ok {
		if module == coreModuleName {
			mod = vm.core
		} else {
			return fmt.Errorf("wren: module %q is not loaded", module)
		}
	}
	v, ok := mod.Globals[name]
	if !ok {
		return fmt.Errorf("wren: no variable %q in module %q", name, module)
	}
	vm.slots[slot] = v
	return nil
}

// HasVariable reports whether a loaded module defines a variable.
func (vm *VM) HasVariable(module, name string) bool {
	mod, ok := vm.modules[module]
	if !ok {
		if module != coreModuleName {
			return false
		}
		mod = vm.core
	}
	_, ok = mod.Globals[name]
	return ok
}

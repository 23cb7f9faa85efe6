package wrenpp

import (
	"fmt"
	"reflect"

	"github.com/heretique/wrenpp/wren"
)

// ---------------------------------------------------------------------------
// Slot marshalling
// ---------------------------------------------------------------------------
//
// Conversion between VM call slots and native values. Readers and
// writers are resolved per native type when a binding is registered, so
// the per-call path is a plain loop over prebuilt function values with
// no type switching left in it.
//
// Numbers: the VM's only numeric representation is a double. Every
// integer and float type converts through float64, so integers beyond
// 2^53 lose precision silently.
//
// Strings: reads copy out of VM storage. The returned Go string stays
// valid indefinitely, regardless of later VM operations or collections.

type slotReader func(vm *VM, slot int) (reflect.Value, error)

type slotWriter func(vm *VM, slot int, v reflect.Value) error

var (
	handleType = reflect.TypeOf((*wren.Handle)(nil))
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
)

// readerFor resolves the reader for a native parameter type. Foreign
// types must already be registered.
func (vm *VM) readerFor(typ reflect.Type) (slotReader, error) {
	switch typ.Kind() {
	case reflect.Bool:
		return readBool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return makeNumReader(typ), nil
	case reflect.String:
		return readString, nil
	}

	if typ == handleType {
		return readHandle, nil
	}

	// Foreign value: T reads a copy of the payload, *T aliases it.
	if typ.Kind() == reflect.Pointer {
		if info, ok := vm.types.lookupType(typ.Elem()); ok {
			return makeForeignReader(info, true), nil
		}
	}
	if info, ok := vm.types.lookupType(typ); ok {
		return makeForeignReader(info, false), nil
	}
	return nil, &NotRegisteredError{Type: typ}
}

// writerFor resolves the writer for a native result type.
func (vm *VM) writerFor(typ reflect.Type) (slotWriter, error) {
	switch typ.Kind() {
	case reflect.Bool:
		return writeBool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return writeNum, nil
	case reflect.String:
		return writeString, nil
	}

	if typ == handleType {
		return writeHandle, nil
	}

	// Foreign result: returning T moves a copy into VM ownership,
	// returning *T wraps the host pointer as a reference.
	if typ.Kind() == reflect.Pointer {
		if info, ok := vm.types.lookupType(typ.Elem()); ok {
			return makeForeignWriter(info, true), nil
		}
	}
	if info, ok := vm.types.lookupType(typ); ok {
		return makeForeignWriter(info, false), nil
	}
	return nil, &NotRegisteredError{Type: typ}
}

// ---------------------------------------------------------------------------
// Primitive readers and writers
// ---------------------------------------------------------------------------

func readBool(vm *VM, slot int) (reflect.Value, error) {
	if vm.wren.SlotType(slot) != wren.SlotBool {
		return reflect.Value{}, vm.mismatch(slot, "Bool")
	}
	return reflect.ValueOf(vm.wren.GetSlotBool(slot)), nil
}

func writeBool(vm *VM, slot int, v reflect.Value) error {
	vm.wren.SetSlotBool(slot, v.Bool())
	return nil
}

func makeNumReader(typ reflect.Type) slotReader {
	return func(vm *VM, slot int) (reflect.Value, error) {
		if vm.wren.SlotType(slot) != wren.SlotNum {
			return reflect.Value{}, vm.mismatch(slot, "Num")
		}
		d := vm.wren.GetSlotDouble(slot)
		out := reflect.New(typ).Elem()
		switch typ.Kind() {
		case reflect.Float32, reflect.Float64:
			out.SetFloat(d)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out.SetUint(uint64(d))
		default:
			out.SetInt(int64(d))
		}
		return out, nil
	}
}

func writeNum(vm *VM, slot int, v reflect.Value) error {
	var d float64
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		d = v.Float()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		d = float64(v.Uint())
	default:
		d = float64(v.Int())
	}
	vm.wren.SetSlotDouble(slot, d)
	return nil
}

func readString(vm *VM, slot int) (reflect.Value, error) {
	if vm.wren.SlotType(slot) != wren.SlotString {
		return reflect.Value{}, vm.mismatch(slot, "String")
	}
	return reflect.ValueOf(vm.wren.GetSlotString(slot)), nil
}

func writeString(vm *VM, slot int, v reflect.Value) error {
	vm.wren.SetSlotString(slot, v.String())
	return nil
}

func readHandle(vm *VM, slot int) (reflect.Value, error) {
	return reflect.ValueOf(vm.wren.GetSlotHandle(slot)), nil
}

func writeHandle(vm *VM, slot int, v reflect.Value) error {
	h, ok := v.Interface().(*wren.Handle)
	if !ok || h == nil {
		return fmt.Errorf("wrenpp: cannot write a nil handle to slot %d", slot)
	}
	vm.wren.SetSlotHandle(slot, h)
	return nil
}

// ---------------------------------------------------------------------------
// Foreign readers and writers
// ---------------------------------------------------------------------------

// foreignAt extracts and type-checks the foreign payload in a slot.
func (vm *VM) foreignAt(slot int, info *typeInfo) (*foreignObject, error) {
	if vm.wren.SlotType(slot) != wren.SlotForeign {
		return nil, vm.mismatch(slot, info.class)
	}
	f, ok := vm.wren.GetSlotForeign(slot).(*foreignObject)
	if !ok {
		return nil, vm.mismatch(slot, info.class)
	}
	if f.typeID != info.id {
		got := "unknown foreign type"
		if other, ok := vm.types.lookupID(f.typeID); ok {
			got = other.class
		}
		return nil, &TypeMismatchError{Slot: slot, Want: info.class, Got: got}
	}
	return f, nil
}

func makeForeignReader(info *typeInfo, wantPointer bool) slotReader {
	return func(vm *VM, slot int) (reflect.Value, error) {
		f, err := vm.foreignAt(slot, info)
		if err != nil {
			return reflect.Value{}, err
		}
		if wantPointer {
			return f.addr(), nil
		}
		return f.addr().Elem(), nil
	}
}

func makeForeignWriter(info *typeInfo, isPointer bool) slotWriter {
	return func(vm *VM, slot int, v reflect.Value) error {
		var f *foreignObject
		if isPointer {
			if v.IsNil() {
				vm.wren.SetSlotNull(slot)
				return nil
			}
			f = newReferenceObject(info.id, v)
		} else {
			f = newValueObject(info.id, v)
		}
		return vm.writeForeignObject(slot, info, f)
	}
}

// writeForeignObject creates a script instance of the bound class
// carrying f as its payload. The class variable is fetched into a
// scratch slot past the caller's live slots.
func (vm *VM) writeForeignObject(slot int, info *typeInfo, f *foreignObject) error {
	scratch := vm.wren.SlotCount()
	if scratch <= slot {
		scratch = slot + 1
	}
	vm.wren.EnsureSlots(scratch + 1)
	if err := vm.wren.GetVariable(info.module, info.class, scratch); err != nil {
		return fmt.Errorf("wrenpp: class %s.%s is not defined in script: %w",
			info.module, info.class, err)
	}
	return vm.wren.SetSlotNewForeign(slot, scratch, f)
}

func (vm *VM) mismatch(slot int, want string) error {
	return &TypeMismatchError{
		Slot: slot,
		Want: want,
		Got:  vm.wren.SlotType(slot).String(),
	}
}

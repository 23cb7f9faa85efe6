package wrenpp

import (
	"fmt"
	"reflect"

	"github.com/heretique/wrenpp/wren"
)

// ---------------------------------------------------------------------------
// Invocation wrapping
// ---------------------------------------------------------------------------
//
// A bound function adapts an arbitrary Go callable to the VM's
// zero-argument foreign callback shape. The callable's signature is
// decomposed once at bind time into an ordered list of slot readers and
// an optional result writer; each call is then a loop over that list.
//
// Supported shapes:
//
//	func(args...) R            static method or free function
//	func(recv, args...) R      instance method, receiver from slot 0
//
// where R is empty, a marshallable value, an error, or (value, error).
// A trailing error return becomes a script runtime fault when non-nil.

type boundFn struct {
	vm    *VM
	fn    reflect.Value
	label string

	recvReader slotReader // nil for static bindings
	readers    []slotReader
	writer     slotWriter // nil when nothing is written back

	returnsError bool
}

// newBoundFn decomposes fn. recvType is the registered receiver type
// for instance methods (nil for statics); the receiver parameter must
// be T or *T of the registered type.
func (vm *VM) newBoundFn(fn any, recvType reflect.Type, label string) (*boundFn, error) {
	fv := reflect.ValueOf(fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("wrenpp: %s: binding target is %T, not a function", label, fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("wrenpp: %s: variadic functions cannot be bound", label)
	}

	b := &boundFn{vm: vm, fn: fv, label: label}

	paramStart := 0
	if recvType != nil {
		if ft.NumIn() == 0 {
			return nil, fmt.Errorf("wrenpp: %s: instance method needs a receiver parameter", label)
		}
		in := ft.In(0)
		if in != recvType && !(in.Kind() == reflect.Pointer && in.Elem() == recvType) {
			return nil, fmt.Errorf("wrenpp: %s: receiver is %s, want %s or *%s",
				label, in, recvType, recvType)
		}
		r, err := vm.readerFor(in)
		if err != nil {
			return nil, fmt.Errorf("wrenpp: %s: receiver: %w", label, err)
		}
		b.recvReader = r
		paramStart = 1
	}

	for i := paramStart; i < ft.NumIn(); i++ {
		r, err := vm.readerFor(ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("wrenpp: %s: parameter %d: %w", label, i-paramStart+1, err)
		}
		b.readers = append(b.readers, r)
	}

	switch ft.NumOut() {
	case 0:
	case 1:
		if ft.Out(0) == errorType {
			b.returnsError = true
		} else {
			w, err := vm.writerFor(ft.Out(0))
			if err != nil {
				return nil, fmt.Errorf("wrenpp: %s: result: %w", label, err)
			}
			b.writer = w
		}
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("wrenpp: %s: second result must be error, got %s", label, ft.Out(1))
		}
		w, err := vm.writerFor(ft.Out(0))
		if err != nil {
			return nil, fmt.Errorf("wrenpp: %s: result: %w", label, err)
		}
		b.writer = w
		b.returnsError = true
	default:
		return nil, fmt.Errorf("wrenpp: %s: too many results (%d)", label, ft.NumOut())
	}

	return b, nil
}

// arity reports the number of script-visible arguments.
func (b *boundFn) arity() int {
	return len(b.readers)
}

// call is the wren.ForeignMethodFn adapter. Arguments come from slots
// 1..N, the receiver (if any) from slot 0, and the result goes back to
// slot 0. A void binding leaves slot 0 untouched.
func (b *boundFn) call(_ *wren.VM) error {
	vm := b.vm
	args := make([]reflect.Value, 0, len(b.readers)+1)

	if b.recvReader != nil {
		recv, err := b.recvReader(vm, 0)
		if err != nil {
			return fmt.Errorf("%s: receiver: %w", b.label, err)
		}
		args = append(args, recv)
	}
	for i, read := range b.readers {
		v, err := read(vm, i+1)
		if err != nil {
			return fmt.Errorf("%s: argument %d: %w", b.label, i+1, err)
		}
		args = append(args, v)
	}

	out := b.fn.Call(args)

	if b.returnsError {
		if errv := out[len(out)-1]; !errv.IsNil() {
			return fmt.Errorf("%s: %w", b.label, errv.Interface().(error))
		}
	}
	if b.writer != nil {
		if err := b.writer(vm, 0, out[0]); err != nil {
			return fmt.Errorf("%s: result: %w", b.label, err)
		}
	}
	return nil
}

// newAllocator wraps a constructor function as the foreign class
// allocate callback. The constructor's results place the payload under
// VM ownership: returning T copies it into VM storage, returning *T
// hands the pointed-to value over. Either shape may add a trailing
// error.
func (vm *VM) newAllocator(info *typeInfo, ctor any, label string) (wren.ForeignMethodFn, error) {
	fv := reflect.ValueOf(ctor)
	if !fv.IsValid() || fv.Kind() != reflect.Func {
		return nil, fmt.Errorf("wrenpp: %s: constructor is %T, not a function", label, ctor)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("wrenpp: %s: variadic constructors cannot be bound", label)
	}

	var readers []slotReader
	for i := 0; i < ft.NumIn(); i++ {
		r, err := vm.readerFor(ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("wrenpp: %s: parameter %d: %w", label, i+1, err)
		}
		readers = append(readers, r)
	}

	returnsError := false
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, fmt.Errorf("wrenpp: %s: second result must be error, got %s", label, ft.Out(1))
		}
		returnsError = true
	default:
		return nil, fmt.Errorf("wrenpp: %s: constructor must return the new value", label)
	}
	outType := ft.Out(0)
	isPointer := outType.Kind() == reflect.Pointer && outType.Elem() == info.typ
	if !isPointer && outType != info.typ {
		return nil, fmt.Errorf("wrenpp: %s: constructor returns %s, want %s or *%s",
			label, outType, info.typ, info.typ)
	}

	return func(w *wren.VM) error {
		args := make([]reflect.Value, len(readers))
		for i, read := range readers {
			v, err := read(vm, i+1)
			if err != nil {
				return fmt.Errorf("%s: argument %d: %w", label, i+1, err)
			}
			args[i] = v
		}
		out := fv.Call(args)
		if returnsError {
			if errv := out[1]; !errv.IsNil() {
				return fmt.Errorf("%s: %w", label, errv.Interface().(error))
			}
		}

		var f *foreignObject
		if isPointer {
			if out[0].IsNil() {
				return fmt.Errorf("%s: constructor returned nil", label)
			}
			f = &foreignObject{kind: OwnValue, typeID: info.id, value: out[0]}
		} else {
			f = newValueObject(info.id, out[0])
		}
		// The class is in slot 0 when the allocator runs.
		return w.SetSlotNewForeign(0, 0, f)
	}, nil
}

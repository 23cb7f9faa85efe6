package wrenpp

import (
	"strings"
	"testing"
)

const counterScript = `
class Counter {
  construct new() { _n = 0 }
  add(delta) {
    _n = _n + delta
    return _n
  }
  label(prefix) { prefix + ": " + _n.toString }
  reset() {
    _n = 0
  }
}
var counter = Counter.new()
`

func TestMethodHandleRepeatedCalls(t *testing.T) {
	vm, c := newCaptureVM(t)
	run(t, vm, c, counterScript)

	h, err := vm.MethodHandle("main", "counter", "add(_)")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	var last Value
	for i := 1; i <= 4; i++ {
		last, err = h.Call(float64(i))
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if last.Type != ValueNum || last.Num != 10 {
		t.Errorf("result %+v, want num 10", last)
	}
}

func TestMethodHandleStringResult(t *testing.T) {
	vm, c := newCaptureVM(t)
	run(t, vm, c, counterScript)

	add, err := vm.MethodHandle("main", "counter", "add(_)")
	if err != nil {
		t.Fatal(err)
	}
	defer add.Release()
	if _, err := add.Call(3.0); err != nil {
		t.Fatal(err)
	}

	label, err := vm.MethodHandle("main", "counter", "label(_)")
	if err != nil {
		t.Fatal(err)
	}
	defer label.Release()

	v, err := label.Call("count")
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != ValueString || v.Str != "count: 3" {
		t.Errorf("result %+v, want string \"count: 3\"", v)
	}
}

func TestMethodHandleVoidResultIsNull(t *testing.T) {
	vm, c := newCaptureVM(t)
	run(t, vm, c, counterScript)

	h, err := vm.MethodHandle("main", "counter", "reset()")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	v, err := h.Call()
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != ValueNull {
		t.Errorf("result %+v, want null", v)
	}
}

func TestMethodHandleFailureIsDistinctFromNull(t *testing.T) {
	vm, c := newCaptureVM(t)
	run(t, vm, c, counterScript)

	h, err := vm.MethodHandle("main", "counter", "noSuch()")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	if _, err := h.Call(); err == nil {
		t.Fatal("calling an unimplemented method returned no error")
	}
}

func TestMethodHandleReleaseSemantics(t *testing.T) {
	vm, c := newCaptureVM(t)
	run(t, vm, c, counterScript)

	h, err := vm.MethodHandle("main", "counter", "add(_)")
	if err != nil {
		t.Fatal(err)
	}
	h.Release()
	h.Release() // second release is a no-op
	if !h.Released() {
		t.Error("handle not marked released")
	}
	if _, err := h.Call(1.0); err == nil {
		t.Error("call on released handle succeeded")
	}
}

func TestMethodHandleMissingReceiver(t *testing.T) {
	vm, c := newCaptureVM(t)
	run(t, vm, c, counterScript)
	if _, err := vm.MethodHandle("main", "nonesuch", "add(_)"); err == nil {
		t.Error("resolving a missing variable succeeded")
	}
	if _, err := vm.MethodHandle("main", "counter", "add(x)"); err == nil {
		t.Error("malformed signature accepted")
	}
}

func TestMethodHandleForeignArgument(t *testing.T) {
	vm, c := newCaptureVM(t)
	bindVec(t, vm)
	run(t, vm, c, vecDecl+`
class Report {
  construct new() {}
  describe(v) { "vec x=" + v.x.toString }
}
var report = Report.new()
`)

	h, err := vm.MethodHandle("main", "report", "describe(_)")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	v, err := h.Call(vec{x: 8, y: 0})
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != ValueString || !strings.Contains(v.Str, "x=8") {
		t.Errorf("result %+v", v)
	}
}

func TestMethodHandleForeignResult(t *testing.T) {
	vm, c := newCaptureVM(t)
	bindVec(t, vm)
	run(t, vm, c, vecDecl+`
class Factory {
  construct new() {}
  make() { Vec.new(6, 7) }
}
var factory = Factory.new()
`)

	h, err := vm.MethodHandle("main", "factory", "make()")
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()

	v, err := h.Call()
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != ValueForeign {
		t.Fatalf("result %+v, want foreign", v)
	}
	got, ok := v.Foreign.(*vec)
	if !ok {
		t.Fatalf("payload is %T, want *vec", v.Foreign)
	}
	if got.x != 6 || got.y != 7 {
		t.Errorf("payload %+v", got)
	}
}

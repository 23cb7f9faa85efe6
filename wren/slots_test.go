package wren

import (
	"math"
	"testing"
)

func TestSlotPrimitiveRoundTrips(t *testing.T) {
	vm, _ := newTestVM(nil)
	vm.EnsureSlots(1)

	doubles := []float64{0, -0.0, 1.5, -1.5, math.MaxFloat64, 9007199254740992, math.Inf(1)}
	for _, d := range doubles {
		vm.SetSlotDouble(0, d)
		if got := vm.GetSlotDouble(0); got != d || math.Signbit(got) != math.Signbit(d) {
			t.Errorf("double %v round-tripped to %v", d, got)
		}
	}

	vm.SetSlotBool(0, true)
	if !vm.GetSlotBool(0) {
		t.Error("bool true lost")
	}
	vm.SetSlotBool(0, false)
	if vm.GetSlotBool(0) {
		t.Error("bool false lost")
	}

	for _, s := range []string{"", "plain", "héllo wörld", "emoji \U0001F600", "nul \x00 embedded"} {
		vm.SetSlotString(0, s)
		if got := vm.GetSlotString(0); got != s {
			t.Errorf("string %q round-tripped to %q", s, got)
		}
	}

	vm.SetSlotNull(0)
	if vm.SlotType(0) != SlotNull {
		t.Error("null lost")
	}
}

func TestSlotNaNRoundTrip(t *testing.T) {
	vm, _ := newTestVM(nil)
	vm.EnsureSlots(1)
	vm.SetSlotDouble(0, math.NaN())
	if got := vm.GetSlotDouble(0); !math.IsNaN(got) {
		t.Errorf("NaN round-tripped to %v", got)
	}
	if vm.SlotType(0) != SlotNum {
		t.Errorf("NaN slot type %v, want num", vm.SlotType(0))
	}
}

func TestSlotTypes(t *testing.T) {
	vm, _ := newTestVM(nil)
	vm.EnsureSlots(4)
	vm.SetSlotNull(0)
	vm.SetSlotBool(1, true)
	vm.SetSlotDouble(2, 3.5)
	vm.SetSlotString(3, "s")

	want := []SlotType{SlotNull, SlotBool, SlotNum, SlotString}
	for i, w := range want {
		if got := vm.SlotType(i); got != w {
			t.Errorf("slot %d type %v, want %v", i, got, w)
		}
	}
}

func TestEnsureSlotsGrowsWithoutClobbering(t *testing.T) {
	vm, _ := newTestVM(nil)
	vm.EnsureSlots(2)
	vm.SetSlotDouble(0, 1)
	vm.SetSlotDouble(1, 2)
	vm.EnsureSlots(8)
	if vm.SlotCount() < 8 {
		t.Fatalf("slot count %d, want >= 8", vm.SlotCount())
	}
	if vm.GetSlotDouble(0) != 1 || vm.GetSlotDouble(1) != 2 {
		t.Error("existing slots clobbered by growth")
	}
	if vm.SlotType(7) != SlotNull {
		t.Error("new slots not null")
	}
}

func TestSlotStringIsCopiedOut(t *testing.T) {
	vm, h := newTestVM(nil)
	interpret(t, vm, h, `var s = "payload"`)
	vm.EnsureSlots(1)
	if err := vm.GetVariable("main", "s", 0); err != nil {
		t.Fatal(err)
	}
	got := vm.GetSlotString(0)

	// Drop every script reference and collect; the Go string must
	// remain valid.
	interpret(t, vm, h, `s = null`)
	vm.EnsureSlots(1)
	vm.SetSlotNull(0)
	vm.CollectGarbage()
	if got != "payload" {
		t.Errorf("string invalidated by collection: %q", got)
	}
}

func TestGetVariable(t *testing.T) {
	vm, h := newTestVM(nil)
	interpret(t, vm, h, "var answer = 42")
	vm.EnsureSlots(1)
	if err := vm.GetVariable("main", "answer", 0); err != nil {
		t.Fatal(err)
	}
	if vm.GetSlotDouble(0) != 42 {
		t.Errorf("got %v, want 42", vm.GetSlotDouble(0))
	}
	if err := vm.GetVariable("main", "missing", 0); err == nil {
		t.Error("expected error for missing variable")
	}
	if err := vm.GetVariable("nomod", "x", 0); err == nil {
		t.Error("expected error for unloaded module")
	}
	if !vm.HasVariable("main", "answer") || vm.HasVariable("main", "missing") {
		t.Error("HasVariable disagrees with GetVariable")
	}
}

func TestCallHandle(t *testing.T) {
	vm, h := newTestVM(nil)
	interpret(t, vm, h, `
class Adder {
  construct new(base) { _base = base }
  plus(n) { _base + n }
}
var adder = Adder.new(100)
`)
	call, err := vm.MakeCallHandle("plus(_)")
	if err != nil {
		t.Fatal(err)
	}
	defer call.Release()

	vm.EnsureSlots(2)
	if err := vm.GetVariable("main", "adder", 0); err != nil {
		t.Fatal(err)
	}
	recv := vm.GetSlotHandle(0)
	defer recv.Release()

	for i := 0; i < 3; i++ {
		vm.EnsureSlots(2)
		vm.SetSlotHandle(0, recv)
		vm.SetSlotDouble(1, float64(i))
		if res := vm.Call(call); res != ResultSuccess {
			t.Fatalf("call %d: %v (%v)", i, res, h.errs)
		}
		if got := vm.GetSlotDouble(0); got != float64(100+i) {
			t.Errorf("call %d: got %v, want %v", i, got, 100+i)
		}
	}
}

func TestCallHandleRuntimeFault(t *testing.T) {
	vm, h := newTestVM(nil)
	interpret(t, vm, h, "var s = \"str\"")
	call, err := vm.MakeCallHandle("noSuchMethod()")
	if err != nil {
		t.Fatal(err)
	}
	defer call.Release()

	vm.EnsureSlots(1)
	if err := vm.GetVariable("main", "s", 0); err != nil {
		t.Fatal(err)
	}
	if res := vm.Call(call); res != ResultRuntimeError {
		t.Fatalf("got %v, want runtime error", res)
	}
	if len(h.errs) == 0 {
		t.Error("fault not reported to error callback")
	}
}

func TestMakeCallHandleRejectsBadSignature(t *testing.T) {
	vm, _ := newTestVM(nil)
	for _, bad := range []string{"", "add(x)", "add(_", "=(_)"} {
		if _, err := vm.MakeCallHandle(bad); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestHandleReleaseIsIdempotent(t *testing.T) {
	vm, h := newTestVM(nil)
	interpret(t, vm, h, "var v = 1")
	vm.EnsureSlots(1)
	if err := vm.GetVariable("main", "v", 0); err != nil {
		t.Fatal(err)
	}
	hd := vm.GetSlotHandle(0)
	hd.Release()
	hd.Release() // second release is a no-op
	if !hd.Released() {
		t.Error("handle not marked released")
	}
	if len(vm.handles) != 0 {
		t.Errorf("%d handles still registered", len(vm.handles))
	}
}

func TestCallOnReleasedHandleFails(t *testing.T) {
	vm, _ := newTestVM(nil)
	call, err := vm.MakeCallHandle("x")
	if err != nil {
		t.Fatal(err)
	}
	call.Release()
	vm.EnsureSlots(1)
	vm.SetSlotDouble(0, 1)
	if res := vm.Call(call); res != ResultRuntimeError {
		t.Errorf("got %v, want runtime error for released handle", res)
	}
}

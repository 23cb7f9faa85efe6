package wrenpp

import (
	"math"
	"testing"
)

func TestSlotValueRoundTrips(t *testing.T) {
	vm, _ := newCaptureVM(t)

	nums := []float64{0.0, math.Copysign(0, -1), 9007199254740992, -3.75}
	for _, n := range nums {
		if err := vm.SetSlotValue(0, n); err != nil {
			t.Fatal(err)
		}
		got := vm.readResult(0)
		if got.Type != ValueNum || got.Num != n || math.Signbit(got.Num) != math.Signbit(n) {
			t.Errorf("%v round-tripped to %+v", n, got)
		}
	}

	for _, s := range []string{"", "héllo wörld \U0001F680"} {
		if err := vm.SetSlotValue(0, s); err != nil {
			t.Fatal(err)
		}
		got := vm.readResult(0)
		if got.Type != ValueString || got.Str != s {
			t.Errorf("%q round-tripped to %+v", s, got)
		}
	}

	if err := vm.SetSlotValue(0, true); err != nil {
		t.Fatal(err)
	}
	if got := vm.readResult(0); got.Type != ValueBool || !got.Bool {
		t.Errorf("true round-tripped to %+v", got)
	}

	if err := vm.SetSlotValue(0, nil); err != nil {
		t.Fatal(err)
	}
	if got := vm.readResult(0); got.Type != ValueNull {
		t.Errorf("nil round-tripped to %+v", got)
	}
}

func TestSlotValueIntegerKinds(t *testing.T) {
	vm, _ := newCaptureVM(t)
	cases := []any{int(7), int8(-7), int32(70), int64(700), uint(7), uint16(70), float32(1.5)}
	want := []float64{7, -7, 70, 700, 7, 70, 1.5}
	for i, v := range cases {
		if err := vm.SetSlotValue(0, v); err != nil {
			t.Fatal(err)
		}
		if got := vm.readResult(0); got.Num != want[i] {
			t.Errorf("%T %v round-tripped to %v", v, v, got.Num)
		}
	}
}

func TestSlotValueUnregisteredTypeFails(t *testing.T) {
	vm, _ := newCaptureVM(t)
	type unseen struct{ n int }
	if err := vm.SetSlotValue(0, unseen{}); err == nil {
		t.Error("marshalling an unregistered type succeeded")
	}
}

package wrenpp

import (
	"testing"
)

// tracked counts constructions and finalizations for ownership tests.
type tracked struct {
	id int
}

func TestValueOwnedLifecycle(t *testing.T) {
	ctors, finals := 0, 0
	vm, c := newCaptureVM(t)
	m := vm.Module("main")
	m.Class("Res", tracked{}).
		Constructor("new()", func() tracked {
			ctors++
			return tracked{id: ctors}
		}).
		Finalizer(func(payload any) {
			if _, ok := payload.(*tracked); !ok {
				t.Errorf("finalizer payload is %T, want *tracked", payload)
			}
			finals++
		})
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}

	run(t, vm, c, `
foreign class Res {
  construct new() {}
}
var r = Res.new()
r = null
`)
	if ctors != 1 {
		t.Fatalf("constructor ran %d times, want 1", ctors)
	}

	vm.Interpreter().EnsureSlots(1)
	vm.Interpreter().SetSlotNull(0)
	vm.CollectGarbage()
	if finals != 1 {
		t.Errorf("finalizer ran %d times, want 1", finals)
	}
	vm.CollectGarbage()
	if finals != 1 {
		t.Errorf("finalizer re-ran: %d", finals)
	}
}

func TestReferenceVariantSkipsFinalizer(t *testing.T) {
	finals := 0
	vm, c := newCaptureVM(t)
	m := vm.Module("main")
	host := &tracked{id: 99}
	m.Class("Res", tracked{}).
		Constructor("new()", func() tracked { return tracked{} }).
		Finalizer(func(payload any) { finals++ })
	m.Class("Registry", mathNS{}).
		Static("shared()", func() *tracked { return host })
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}

	run(t, vm, c, `
foreign class Res {
  construct new() {}
}
class Registry {
  foreign static shared()
}
var r = Registry.shared()
r = null
`)
	vm.Interpreter().EnsureSlots(1)
	vm.Interpreter().SetSlotNull(0)
	vm.CollectGarbage()
	if finals != 0 {
		t.Errorf("finalizer ran %d times on a reference wrapper, want 0", finals)
	}
	if host.id != 99 {
		t.Error("host object touched")
	}
}

func TestReferenceSharesHostState(t *testing.T) {
	vm, c := newCaptureVM(t)
	host := &tracked{id: 1}
	m := vm.Module("main")
	m.Class("Res", tracked{}).
		Constructor("new()", func() tracked { return tracked{} }).
		Getter("id", func(r *tracked) float64 { return float64(r.id) }).
		Setter("id", func(r *tracked, v float64) { r.id = int(v) })
	m.Class("Registry", mathNS{}).
		Static("shared()", func() *tracked { return host })
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}

	run(t, vm, c, `
foreign class Res {
  construct new() {}
  foreign id
  foreign id=(v)
}
class Registry {
  foreign static shared()
}
Registry.shared().id = 7
System.print(Registry.shared().id)
`)
	if c.out.String() != "7\n" {
		t.Errorf("output %q, want 7", c.out.String())
	}
	if host.id != 7 {
		t.Errorf("host sees id %d, want 7: reference did not alias", host.id)
	}
}

func TestValueCopySnapshotsArgument(t *testing.T) {
	vm, c := newCaptureVM(t)
	m := vm.Module("main")
	m.Class("Res", tracked{}).
		Constructor("new(_)", func(id float64) tracked { return tracked{id: int(id)} }).
		Getter("id", func(r *tracked) float64 { return float64(r.id) }).
		Method("snapshot()", func(r *tracked) tracked { return *r }).
		Setter("id", func(r *tracked, v float64) { r.id = int(v) })
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}

	run(t, vm, c, `
foreign class Res {
  construct new(id) {}
  foreign id
  foreign id=(v)
  foreign snapshot()
}
var a = Res.new(1)
var b = a.snapshot()
a.id = 2
System.print(a.id)
System.print(b.id)
`)
	if c.out.String() != "2\n1\n" {
		t.Errorf("output %q: value copy aliased its source", c.out.String())
	}
}

func TestOwnershipString(t *testing.T) {
	if OwnValue.String() != "value" || OwnReference.String() != "reference" {
		t.Error("ownership names wrong")
	}
}

func TestCollectFromBoundFunctionIsDeferred(t *testing.T) {
	finals := 0
	duringScript := -1
	vm, c := newCaptureVM(t)
	m := vm.Module("main")
	m.Class("Res", tracked{}).
		Constructor("new()", func() tracked { return tracked{} }).
		Finalizer(func(payload any) { finals++ }).
		Getter("id", func(r *tracked) int { return r.id })
	m.Class("Host", struct{ hostNS bool }{}).
		Static("gc()", func() {
			vm.CollectGarbage()
			duringScript = finals
		})
	if err := m.Err(); err != nil {
		t.Fatal(err)
	}

	// The instance lives only in the loop body's scope; a collection
	// requested mid-loop must not finalize it before the getter runs.
	run(t, vm, c, `
foreign class Res {
  construct new() {}
  foreign id
}
class Host {
  foreign static gc()
}
var i = 0
while (i < 2) {
  var r = Res.new()
  Host.gc()
  System.print(r.id)
  i = i + 1
}
`)
	if duringScript != 0 {
		t.Errorf("finalizer ran %d times while the instance was reachable", duringScript)
	}
	if c.out.String() != "0\n0\n" {
		t.Errorf("output %q, want two ids", c.out.String())
	}
	if finals != 2 {
		t.Errorf("deferred collection finalized %d instances, want 2", finals)
	}
}

// Package wrenpp is a binding and marshalling layer between Go hosts
// and an embedded slot-based scripting VM. Hosts register Go types,
// functions, and methods under script-side module/class/signature
// names; scripts call them through foreign declarations, and hosts call
// back into script state through reusable method handles.
//
// The layer covers four concerns: stable cross-call type identity (a
// per-VM type registry), bidirectional value conversion between Go
// values and VM call slots, two ownership models for foreign instances
// (VM-owned value copies and host-owned references), and a full-key
// binding registry queried by the VM when it compiles foreign
// declarations.
//
// A minimal host:
//
//	vm := wrenpp.New()
//	m := vm.Module("main")
//	m.Class("Math", mathTag{}).
//	    Static("add(_,_)", func(a, b float64) float64 { return a + b })
//	if err := m.Err(); err != nil {
//	    // handle binding failure
//	}
//	err := vm.ExecuteString("main", `
//	    class Math {
//	        foreign static add(a, b)
//	    }
//	    System.print(Math.add(2, 3))
//	`)
package wrenpp

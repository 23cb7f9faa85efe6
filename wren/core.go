package wren

import (
	"math"
	"strings"
	"time"
)

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

const coreModuleName = "core"

// bootstrapCore builds the implicit core module: the value classes
// (Num, Bool, Null, String) and System. Core methods run through the
// same foreign dispatch path as host bindings.
func (vm *VM) bootstrapCore() {
	vm.core = &Module{Name: coreModuleName, Globals: make(map[string]Value)}

	vm.numClass = vm.coreClass("Num")
	vm.boolClass = vm.coreClass("Bool")
	vm.nullClass = vm.coreClass("Null")
	vm.stringClass = vm.coreClass("String")
	vm.systemClass = vm.coreClass("System")

	vm.installSystem()
	vm.installNum()
	vm.installString()
	vm.installShared(vm.numClass, vm.boolClass, vm.nullClass, vm.stringClass)

	vm.core.Globals["System"] = vm.classValue(vm.systemClass)
	vm.core.Globals["Num"] = vm.classValue(vm.numClass)
	vm.core.Globals["Bool"] = vm.classValue(vm.boolClass)
	vm.core.Globals["String"] = vm.classValue(vm.stringClass)
}

func (vm *VM) coreClass(name string) *Class {
	return NewClass(coreModuleName, name)
}

func (vm *VM) installSystem() {
	c := vm.systemClass
	c.addForeignStatic("print(_)", 1, func(vm *VM) error {
		arg := vm.slots[1]
		vm.write(vm.stringify(arg) + "\n")
		vm.slots[0] = arg
		return nil
	})
	c.addForeignStatic("print()", 0, func(vm *VM) error {
		vm.write("\n")
		vm.slots[0] = Null
		return nil
	})
	c.addForeignStatic("write(_)", 1, func(vm *VM) error {
		arg := vm.slots[1]
		vm.write(vm.stringify(arg))
		vm.slots[0] = arg
		return nil
	})
	c.addForeignStatic("clock", 0, func(vm *VM) error {
		vm.slots[0] = FromNum(float64(nowMillis()) / 1000.0)
		return nil
	})
}

func (vm *VM) installNum() {
	c := vm.numClass
	num1 := func(f func(float64) float64) ForeignMethodFn {
		return func(vm *VM) error {
			vm.slots[0] = FromNum(f(vm.slots[0].Num()))
			return nil
		}
	}
	c.addForeignMethod("abs", 0, num1(math.Abs))
	c.addForeignMethod("floor", 0, num1(math.Floor))
	c.addForeignMethod("ceil", 0, num1(math.Ceil))
	c.addForeignMethod("sqrt", 0, num1(math.Sqrt))
	c.addForeignMethod("isInteger", 0, func(vm *VM) error {
		n := vm.slots[0].Num()
		vm.slots[0] = FromBool(!math.IsInf(n, 0) && !math.IsNaN(n) && n == math.Trunc(n))
		return nil
	})
	c.addForeignMethod("min(_)", 1, func(vm *VM) error {
		vm.slots[0] = FromNum(math.Min(vm.slots[0].Num(), vm.slots[1].Num()))
		return nil
	})
	c.addForeignMethod("max(_)", 1, func(vm *VM) error {
		vm.slots[0] = FromNum(math.Max(vm.slots[0].Num(), vm.slots[1].Num()))
		return nil
	})
}

func (vm *VM) installString() {
	c := vm.stringClass
	c.addForeignMethod("count", 0, func(vm *VM) error {
		s, _ := vm.getString(vm.slots[0])
		vm.slots[0] = FromNum(float64(len(s)))
		return nil
	})
	str2 := func(f func(s, t string) bool) ForeignMethodFn {
		return func(vm *VM) error {
			s, _ := vm.getString(vm.slots[0])
			t, ok := vm.getString(vm.slots[1])
			if !ok {
				vm.slots[0] = False
				return nil
			}
			vm.slots[0] = FromBool(f(s, t))
			return nil
		}
	}
	c.addForeignMethod("contains(_)", 1, str2(strings.Contains))
	c.addForeignMethod("startsWith(_)", 1, str2(strings.HasPrefix))
	c.addForeignMethod("endsWith(_)", 1, str2(strings.HasSuffix))
}

// installShared adds methods every value responds to.
func (vm *VM) installShared(classes ...*Class) {
	for _, c := range classes {
		c.addForeignMethod("toString", 0, func(vm *VM) error {
			vm.slots[0] = vm.newString(vm.stringify(vm.slots[0]))
			return nil
		})
	}
}

package wren

// ---------------------------------------------------------------------------
// Mark-sweep collector
// ---------------------------------------------------------------------------
//
// Roots: module variables (core included), the API slot array, and live
// handles. Reachability flows through instance fields. Interpreter
// frames hold locals and intermediates the collector cannot see, so a
// sweep only ever runs at a safepoint: between top-level statements of
// the outermost script entry, or with no script on the stack at all.
// Collections requested in between are deferred to the next safepoint.

// CollectGarbage runs a full mark-sweep collection. Foreign instances
// that are swept have their class finalizer run before removal. When
// called while script is executing (from a foreign method, say), the
// collection is deferred to the next safepoint instead of running with
// live locals unrooted.
func (vm *VM) CollectGarbage() {
	if vm.depth > 0 {
		vm.gcPending = true
		return
	}
	vm.collect()
}

// maybeCollect runs at top-level statement boundaries: it performs a
// deferred collection, or one the adaptive threshold asks for. Nested
// script entries are not safepoints; their boundaries are skipped.
func (vm *VM) maybeCollect() {
	if vm.depth != 1 {
		return
	}
	if vm.gcPending {
		vm.gcPending = false
		vm.collect()
		return
	}
	if vm.registry.Count() >= vm.gcThreshold {
		vm.collect()
	}
}

func (vm *VM) collect() {
	marked := make(map[uint32]bool)

	var mark func(v Value)
	mark = func(v Value) {
		if !v.IsObject() {
			return
		}
		id := v.ObjectID()
		if marked[id] {
			return
		}
		marked[id] = true
		if inst, ok := vm.registry.Get(v).(*Instance); ok {
			for _, fv := range inst.Fields {
				mark(fv)
			}
		}
	}

	for _, mod := range vm.modules {
		for _, v := range mod.Globals {
			mark(v)
		}
	}
	for _, v := range vm.core.Globals {
		mark(v)
	}
	for _, v := range vm.slots {
		mark(v)
	}
	for _, h := range vm.handles {
		mark(h.value)
	}
	// Class wrapper values are created lazily and cached on the class;
	// keep every reachable class's wrapper alive too.
	vm.markClassWrappers(mark)

	vm.registry.mu.Lock()
	for id, obj := range vm.registry.objects {
		if marked[id] {
			continue
		}
		if fi, ok := obj.(*ForeignInstance); ok && fi.Class.Finalize != nil {
			fi.Class.Finalize(fi.Data)
		}
		delete(vm.registry.objects, id)
	}
	live := len(vm.registry.objects)
	vm.registry.mu.Unlock()

	next := live + live*vm.cfg.HeapGrowthPercent/100
	if next < vm.cfg.MinHeap {
		next = vm.cfg.MinHeap
	}
	vm.gcThreshold = next
}

// markClassWrappers marks the cached ClassObject wrapper of every class
// reachable from an already-marked object, so method dispatch on
// surviving instances keeps working.
func (vm *VM) markClassWrappers(mark func(Value)) {
	vm.registry.mu.RLock()
	classes := make([]*Class, 0, 8)
	for _, obj := range vm.registry.objects {
		switch o := obj.(type) {
		case *Instance:
			classes = append(classes, o.Class)
		case *ForeignInstance:
			classes = append(classes, o.Class)
		case *ClassObject:
			classes = append(classes, o.Class)
		}
	}
	vm.registry.mu.RUnlock()
	for _, c := range classes {
		if c.value != 0 {
			mark(c.value)
		}
	}
}

// LiveObjects reports the number of objects currently tracked by the
// collector. Useful for tests and diagnostics.
func (vm *VM) LiveObjects() int {
	return vm.registry.Count()
}

package wren

// ---------------------------------------------------------------------------
// Host configuration hooks
// ---------------------------------------------------------------------------

// LoadModuleFn resolves a module name to its source text. Returning an
// error means the module could not be found; the VM reports it and the
// surrounding operation fails.
type LoadModuleFn func(module string) (string, error)

// WriteFn receives text produced by System.print and friends.
type WriteFn func(text string)

// ErrorKind classifies an error report.
type ErrorKind int

const (
	// ErrorCompile reports a parse or compile failure.
	ErrorCompile ErrorKind = iota
	// ErrorRuntime reports a script-level fault during execution.
	ErrorRuntime
	// ErrorStackTrace reports one stack frame of a runtime fault.
	ErrorStackTrace
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorCompile:
		return "compile error"
	case ErrorRuntime:
		return "runtime error"
	case ErrorStackTrace:
		return "stack trace"
	}
	return "unknown error"
}

// ErrorFn receives error reports. module may be empty for errors not
// attributable to a module.
type ErrorFn func(kind ErrorKind, module string, line int, message string)

// ForeignMethodFn is a host callback invoked as the body of a foreign
// method. Arguments are in slots 1..N, the receiver in slot 0. A non-nil
// error aborts the current script call as a runtime fault.
type ForeignMethodFn func(vm *VM) error

// FinalizeFn destroys the host payload of a foreign instance when the
// collector frees it.
type FinalizeFn func(data any)

// ForeignClassMethods pairs a foreign class's allocate and finalize
// callbacks.
type ForeignClassMethods struct {
	Allocate ForeignMethodFn
	Finalize FinalizeFn
}

// BindForeignMethodFn is queried while compiling a foreign method
// declaration. Returning nil is not an error: the VM installs a stub
// that raises a runtime fault if the method is ever invoked.
type BindForeignMethodFn func(module, class string, isStatic bool, signature string) ForeignMethodFn

// BindForeignClassFn is queried while compiling a foreign class
// declaration. Returning ok=false installs a stub allocator that raises
// a runtime fault on construction.
type BindForeignClassFn func(module, class string) (ForeignClassMethods, bool)

// Default heap tuning. Heap sizes are measured in live registry objects:
// there is no raw allocator to hook in Go, so the reallocate hook of the
// original API survives only as collector thresholds.
const (
	DefaultInitialHeap       = 4096
	DefaultMinHeap           = 1024
	DefaultHeapGrowthPercent = 50
)

// Config carries the host hooks and tuning for a VM instance. Zero-value
// fields get defaults in NewVM.
type Config struct {
	LoadModule        LoadModuleFn
	Write             WriteFn
	Error             ErrorFn
	BindForeignMethod BindForeignMethodFn
	BindForeignClass  BindForeignClassFn

	// Collector thresholds, in objects.
	InitialHeap       int
	MinHeap           int
	HeapGrowthPercent int
}

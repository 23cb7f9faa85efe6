package wrenpp

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/tliron/commonlog"

	"github.com/heretique/wrenpp/wren"
)

// ScriptExtension is appended to module names by the default loader.
const ScriptExtension = ".wren"

var log = commonlog.GetLogger("wrenpp")

// VM owns one script interpreter together with its type registry and
// binding registry. A VM is not internally synchronized: serialize all
// operations on one instance. Independent instances share nothing and
// may run concurrently.
type VM struct {
	wren  *wren.VM
	types *TypeRegistry
	state *boundState
	opts  options
}

type options struct {
	loader    wren.LoadModuleFn
	writer    wren.WriteFn
	reporter  wren.ErrorFn
	scriptDir string

	initialHeap       int
	minHeap           int
	heapGrowthPercent int
}

// Option configures a VM at creation.
type Option func(*options)

// WithLoader replaces the module-source loader.
func WithLoader(fn wren.LoadModuleFn) Option {
	return func(o *options) { o.loader = fn }
}

// WithWriter replaces the script output sink.
func WithWriter(fn wren.WriteFn) Option {
	return func(o *options) { o.writer = fn }
}

// WithErrorReporter replaces the script diagnostic sink.
func WithErrorReporter(fn wren.ErrorFn) Option {
	return func(o *options) { o.reporter = fn }
}

// WithScriptDir sets the directory the default loader resolves module
// files in.
func WithScriptDir(dir string) Option {
	return func(o *options) { o.scriptDir = dir }
}

// WithHeap tunes the collector: initial threshold, minimum threshold,
// and growth percentage, all in live objects.
func WithHeap(initial, min, growthPercent int) Option {
	return func(o *options) {
		o.initialHeap = initial
		o.minHeap = min
		o.heapGrowthPercent = growthPercent
	}
}

// New creates a VM. Without options: modules load from files in the
// current directory with the script extension appended, script output
// goes to stdout, and diagnostics go to the package logger.
func New(opts ...Option) *VM {
	o := options{scriptDir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	vm := &VM{
		types: NewTypeRegistry(),
		state: newBoundState(),
		opts:  o,
	}

	loader := o.loader
	if loader == nil {
		loader = vm.fileLoader
	}
	writer := o.writer
	if writer == nil {
		writer = func(text string) { os.Stdout.WriteString(text) }
	}
	reporter := o.reporter
	if reporter == nil {
		reporter = logReporter
	}

	vm.wren = wren.NewVM(wren.Config{
		LoadModule:        loader,
		Write:             writer,
		Error:             reporter,
		BindForeignMethod: vm.state.lookupMethod,
		BindForeignClass:  vm.state.lookupClass,
		InitialHeap:       o.initialHeap,
		MinHeap:           o.minHeap,
		HeapGrowthPercent: o.heapGrowthPercent,
	})
	return vm
}

// fileLoader is the default loader: module name plus extension,
// resolved in the script directory.
func (vm *VM) fileLoader(name string) (string, error) {
	path := filepath.Join(vm.opts.scriptDir, name+ScriptExtension)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", wren.ErrModuleNotFound, path)
	}
	return string(data), nil
}

// logReporter routes script diagnostics to the package logger.
func logReporter(kind wren.ErrorKind, module string, line int, message string) {
	switch kind {
	case wren.ErrorCompile:
		log.Errorf("compile error in %s:%d: %s", module, line, message)
	case wren.ErrorStackTrace:
		log.Errorf("  at %s:%d: %s", module, line, message)
	default:
		log.Errorf("runtime error in %s:%d: %s", module, line, message)
	}
}

// ExecuteString runs source under the given module name.
func (vm *VM) ExecuteString(module, source string) error {
	return vm.resultError(module, vm.wren.Interpret(module, source))
}

// ExecuteModule loads the named module through the loader and runs it.
// A module the loader cannot resolve is a compile error, not a crash.
func (vm *VM) ExecuteModule(name string) error {
	loader := vm.opts.loader
	if loader == nil {
		loader = vm.fileLoader
	}
	source, err := loader(name)
	if err != nil {
		log.Errorf("module %s: %s", name, err)
		return &CompileError{Module: name}
	}
	return vm.ExecuteString(name, source)
}

func (vm *VM) resultError(module string, res wren.Result) error {
	switch res {
	case wren.ResultCompileError:
		return &CompileError{Module: module}
	case wren.ResultRuntimeError:
		return &RuntimeError{Module: module}
	}
	return nil
}

// CollectGarbage requests a full collection, running finalizers of
// unreachable value-owned foreign instances. Called from inside a bound
// function, the collection is deferred until script execution reaches a
// safepoint.
func (vm *VM) CollectGarbage() {
	vm.wren.CollectGarbage()
}

// Types exposes the VM's type registry.
func (vm *VM) Types() *TypeRegistry {
	return vm.types
}

// Interpreter exposes the underlying script VM for hosts that need the
// raw slot API.
func (vm *VM) Interpreter() *wren.VM {
	return vm.wren
}

// SetSlotValue writes a host value into a slot using the registered
// marshalling rules. Mostly useful together with Interpreter and Raw
// bindings.
func (vm *VM) SetSlotValue(slot int, value any) error {
	if value == nil {
		vm.wren.EnsureSlots(slot + 1)
		vm.wren.SetSlotNull(slot)
		return nil
	}
	av := reflect.ValueOf(value)
	w, err := vm.writerFor(av.Type())
	if err != nil {
		return err
	}
	vm.wren.EnsureSlots(slot + 1)
	return w(vm, slot, av)
}

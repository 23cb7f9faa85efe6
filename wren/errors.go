package wren

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Results and faults
// ---------------------------------------------------------------------------

// Result is the outcome of running script code.
type Result int

const (
	ResultSuccess Result = iota
	ResultCompileError
	ResultRuntimeError
)

func (r Result) String() string {
	switch r {
	case ResultSuccess:
		return "success"
	case ResultCompileError:
		return "compile error"
	case ResultRuntimeError:
		return "runtime error"
	}
	return "unknown"
}

// ErrModuleNotFound is returned by module loaders when a name does not
// resolve to any source.
var ErrModuleNotFound = errors.New("module not found")

// scriptFault is the panic payload for runtime faults. It never escapes
// the VM: Interpret and Call recover it and report through ErrorFn.
type scriptFault struct {
	module  string
	line    int
	message string
}

func (f *scriptFault) Error() string {
	return fmt.Sprintf("%s:%d: %s", f.module, f.line, f.message)
}

// fault aborts the current script call with a runtime fault.
func fault(module string, line int, format string, args ...any) {
	panic(&scriptFault{
		module:  module,
		line:    line,
		message: fmt.Sprintf(format, args...),
	})
}

// compileError collects one parse diagnostic.
type compileError struct {
	line    int
	message string
}

func (e *compileError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line, e.message)
}

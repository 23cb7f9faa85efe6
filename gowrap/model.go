// Package gowrap introspects Go packages and generates script bindings
// for them: a Go registration file wiring the package's API into a VM,
// and the matching script-side foreign declarations.
package gowrap

import "go/types"

// PackageModel is the in-memory representation of a Go package's
// exported, marshallable API.
type PackageModel struct {
	ImportPath string
	Name       string // short package name (e.g. "strings")
	Functions  []FunctionModel
	Types      []TypeModel
}

// TypeModel represents an exported struct type bound as a foreign
// class.
type TypeModel struct {
	Name    string
	GoType  types.Type
	Methods []FunctionModel // pointer-receiver methods
}

// FunctionModel represents an exported function or method whose
// signature the slot marshaller can carry.
type FunctionModel struct {
	Name       string
	IsMethod   bool
	Params     []ParamModel
	Results    []ParamModel // excludes a trailing error
	ReturnsErr bool
}

// ParamModel represents one parameter or result.
type ParamModel struct {
	Name    string
	GoType  types.Type
	TypeStr string
}

// Arity reports the script-visible argument count.
func (f *FunctionModel) Arity() int {
	return len(f.Params)
}

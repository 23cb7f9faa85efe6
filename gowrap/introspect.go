package gowrap

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"
)

// IntrospectPackage loads a Go package by import path and returns the
// part of its exported API the binding layer can marshal. The include
// filter, if non-nil, restricts which exported names are considered.
func IntrospectPackage(importPath string, include map[string]bool) (*PackageModel, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax,
	}

	pkgs, err := packages.Load(cfg, importPath)
	if err != nil {
		return nil, fmt.Errorf("gowrap: loading %s: %w", importPath, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("gowrap: no packages found for %s", importPath)
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		return nil, fmt.Errorf("gowrap: package errors: %v", pkg.Errors)
	}
	if pkg.Types == nil {
		return nil, fmt.Errorf("gowrap: no type information for %s", importPath)
	}

	model := &PackageModel{ImportPath: importPath, Name: pkg.Name}
	scope := pkg.Types.Scope()

	for _, name := range scope.Names() {
		if include != nil && !include[name] {
			continue
		}
		obj := scope.Lookup(name)
		if !obj.Exported() {
			continue
		}

		switch o := obj.(type) {
		case *types.Func:
			if fm, ok := extractFunction(o, nil); ok {
				model.Functions = append(model.Functions, fm)
			}
		case *types.TypeName:
			if tm := extractType(o); tm != nil {
				model.Types = append(model.Types, *tm)
			}
		}
	}

	return model, nil
}

// extractFunction models a function if every parameter and result is
// marshallable. selfType, when non-nil, is the receiver type methods
// may additionally use.
func extractFunction(fn *types.Func, selfType types.Type) (FunctionModel, bool) {
	sig := fn.Type().(*types.Signature)
	fm := FunctionModel{Name: fn.Name(), IsMethod: sig.Recv() != nil}
	if sig.Variadic() {
		return fm, false
	}

	params := sig.Params()
	for i := 0; i < params.Len(); i++ {
		p := params.At(i)
		if !marshallable(p.Type(), selfType) {
			return fm, false
		}
		fm.Params = append(fm.Params, ParamModel{
			Name:    p.Name(),
			GoType:  p.Type(),
			TypeStr: p.Type().String(),
		})
	}

	results := sig.Results()
	for i := 0; i < results.Len(); i++ {
		r := results.At(i)
		if i == results.Len()-1 && isErrorType(r.Type()) {
			fm.ReturnsErr = true
			continue
		}
		if !marshallable(r.Type(), selfType) {
			return fm, false
		}
		fm.Results = append(fm.Results, ParamModel{
			Name:    r.Name(),
			GoType:  r.Type(),
			TypeStr: r.Type().String(),
		})
	}

	// One marshalled result at most; the trailing error travels as a
	// script runtime fault.
	if len(fm.Results) > 1 {
		return fm, false
	}
	return fm, true
}

// extractType models an exported struct type with its marshallable
// pointer-receiver methods.
func extractType(tn *types.TypeName) *TypeModel {
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil
	}
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return nil
	}

	tm := &TypeModel{Name: tn.Name(), GoType: tn.Type()}

	mset := types.NewMethodSet(types.NewPointer(named))
	for i := 0; i < mset.Len(); i++ {
		sel := mset.At(i)
		fn, ok := sel.Obj().(*types.Func)
		if !ok || !fn.Exported() {
			continue
		}
		// Skip promoted methods from embedded fields.
		if len(sel.Index()) > 1 {
			continue
		}
		if fm, ok := extractFunction(fn, named); ok {
			tm.Methods = append(tm.Methods, fm)
		}
	}
	return tm
}

// marshallable reports whether the slot layer can carry t. selfType
// admits the wrapped type itself (as value or pointer).
func marshallable(t types.Type, selfType types.Type) bool {
	if selfType != nil {
		if types.Identical(t, selfType) {
			return true
		}
		if ptr, ok := t.(*types.Pointer); ok && types.Identical(ptr.Elem(), selfType) {
			return true
		}
	}
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return false
	}
	switch basic.Kind() {
	case types.Bool, types.String,
		types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
		types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64,
		types.Float32, types.Float64:
		return true
	}
	return false
}

func isErrorType(t types.Type) bool {
	named, ok := t.(*types.Named)
	if !ok {
		return false
	}
	return named.Obj().Name() == "error" && named.Obj().Pkg() == nil
}

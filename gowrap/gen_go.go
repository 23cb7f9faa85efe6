package gowrap

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
)

// GoOptions controls the generated registration file.
type GoOptions struct {
	// Package is the package clause of the generated file.
	Package string
	// Module is the script module the bindings land in; defaults to the
	// wrapped package's short name.
	Module string
	// Alias is the import alias for the wrapped package; defaults to
	// its short name.
	Alias string
}

// GenerateGo renders a Go source file that registers the model's API
// on a VM. The file exposes one function, Register<Pkg>(vm) error,
// built from the binding chains Module/Class/Method.
func GenerateGo(model *PackageModel, opts GoOptions) ([]byte, error) {
	if opts.Package == "" {
		opts.Package = "bindings"
	}
	if opts.Module == "" {
		opts.Module = model.Name
	}
	if opts.Alias == "" {
		opts.Alias = model.Name
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by wrenpp wrap; DO NOT EDIT.\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", opts.Package)
	fmt.Fprintf(&buf, "import (\n")
	fmt.Fprintf(&buf, "\t%s %q\n\n", opts.Alias, model.ImportPath)
	fmt.Fprintf(&buf, "\t%q\n", "github.com/heretique/wrenpp")
	fmt.Fprintf(&buf, ")\n\n")

	ns := NamespaceClass(model.Name)
	if len(model.Functions) > 0 {
		fmt.Fprintf(&buf, "// %s carries %s's package-level functions.\n", nsTag(model.Name), model.Name)
		fmt.Fprintf(&buf, "type %s struct{}\n\n", nsTag(model.Name))
	}

	fmt.Fprintf(&buf, "// Register%s binds package %s into the %q script module.\n",
		exportName(model.Name), model.Name, opts.Module)
	fmt.Fprintf(&buf, "func Register%s(vm *wrenpp.VM) error {\n", exportName(model.Name))
	fmt.Fprintf(&buf, "\tm := vm.Module(%q)\n", opts.Module)

	ctors := constructorIndex(model)

	if len(model.Functions) > 0 {
		fmt.Fprintf(&buf, "\n\tm.Class(%q, %s{})", ns, nsTag(model.Name))
		for i := range model.Functions {
			fn := &model.Functions[i]
			if _, isCtor := ctors[fn.Name]; isCtor {
				continue
			}
			fmt.Fprintf(&buf, ".\n\t\tStatic(%q, %s.%s)", Signature(fn.Name, fn.Arity()), opts.Alias, fn.Name)
		}
		fmt.Fprintf(&buf, "\n")
	}

	for i := range model.Types {
		t := &model.Types[i]
		fmt.Fprintf(&buf, "\n\tm.Class(%q, (*%s.%s)(nil))", t.Name, opts.Alias, t.Name)
		if ctor, ok := ctors["New"+t.Name]; ok {
			fmt.Fprintf(&buf, ".\n\t\tConstructor(%q, %s.%s)",
				"new"+placeholders(ctor.Arity()), opts.Alias, ctor.Name)
		}
		for j := range t.Methods {
			meth := &t.Methods[j]
			fmt.Fprintf(&buf, ".\n\t\tMethod(%q, (*%s.%s).%s)",
				Signature(meth.Name, meth.Arity()), opts.Alias, t.Name, meth.Name)
		}
		fmt.Fprintf(&buf, "\n")
	}

	fmt.Fprintf(&buf, "\n\treturn m.Err()\n}\n")

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gowrap: formatting generated bindings: %w", err)
	}
	return src, nil
}

// constructorIndex maps New<Type> function names to their models so
// they bind as constructors rather than namespace statics.
func constructorIndex(model *PackageModel) map[string]*FunctionModel {
	ctors := make(map[string]*FunctionModel)
	for i := range model.Types {
		name := "New" + model.Types[i].Name
		for j := range model.Functions {
			fn := &model.Functions[j]
			if fn.Name == name && len(fn.Results) == 1 {
				ctors[name] = fn
				break
			}
		}
	}
	return ctors
}

// placeholders renders a signature's argument list: "(_,_)" for two,
// "()" for none.
func placeholders(arity int) string {
	if arity == 0 {
		return "()"
	}
	return "(" + strings.Repeat(",_", arity)[1:] + ")"
}

func nsTag(pkgName string) string {
	return pkgName + "NS"
}

func exportName(pkgName string) string {
	return NamespaceClass(pkgName)
}

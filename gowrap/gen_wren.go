package gowrap

import (
	"bytes"
	"fmt"
	"strings"
)

// GenerateWren renders the script-side declarations matching the
// model: a namespace class of foreign statics for package functions,
// and a foreign class per bound type.
func GenerateWren(model *PackageModel) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Generated bindings for Go package %s.\n", model.ImportPath)

	ctors := constructorIndex(model)

	if len(model.Functions) > 0 {
		fmt.Fprintf(&buf, "\nclass %s {\n", NamespaceClass(model.Name))
		for i := range model.Functions {
			fn := &model.Functions[i]
			if _, isCtor := ctors[fn.Name]; isCtor {
				continue
			}
			fmt.Fprintf(&buf, "  foreign static %s\n", declaration(fn))
		}
		fmt.Fprintf(&buf, "}\n")
	}

	for i := range model.Types {
		t := &model.Types[i]
		fmt.Fprintf(&buf, "\nforeign class %s {\n", t.Name)
		if ctor, ok := ctors["New"+t.Name]; ok {
			fmt.Fprintf(&buf, "  construct new(%s) {}\n", paramList(ctor))
		}
		for j := range t.Methods {
			fmt.Fprintf(&buf, "  foreign %s\n", declaration(&t.Methods[j]))
		}
		fmt.Fprintf(&buf, "}\n")
	}

	return buf.Bytes()
}

// declaration renders one member: "hasPrefix(s, prefix)" for a method,
// a bare name for a getter.
func declaration(fn *FunctionModel) string {
	name := toCamel(fn.Name)
	if fn.Arity() == 0 {
		return name
	}
	return name + "(" + paramList(fn) + ")"
}

// paramList names a member's parameters, falling back to a, b, c where
// the Go source left them blank.
func paramList(fn *FunctionModel) string {
	names := make([]string, 0, len(fn.Params))
	for i, p := range fn.Params {
		name := p.Name
		if name == "" || name == "_" {
			name = string(rune('a' + i%26))
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

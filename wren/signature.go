package wren

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Canonical method signatures
// ---------------------------------------------------------------------------
//
// A signature is the method name followed by a parenthesized list of
// underscore placeholders, one per argument: "add(_,_)". Getters are the
// bare name ("x"), setters are "x=(_)". Signatures key the dispatch
// tables and the binding registry, and are the argument to MakeCallHandle.

// canonicalSignature builds the signature string for a send or
// declaration with the given shape.
func canonicalSignature(name string, arity int, setter, hasParens bool) string {
	if setter {
		return name + "=(_)"
	}
	if !hasParens && arity == 0 {
		return name
	}
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i := 0; i < arity; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('_')
	}
	b.WriteByte(')')
	return b.String()
}

// SignatureArity validates a signature string and reports how many
// arguments it takes.
func SignatureArity(sig string) (int, error) {
	s, err := parseSignature(sig)
	if err != nil {
		return 0, err
	}
	return s.Arity, nil
}

// callSignature is a parsed signature string.
type callSignature struct {
	Name   string
	Arity  int
	Setter bool
	Getter bool
	full   string
}

// parseSignature validates and decomposes a signature string.
func parseSignature(sig string) (*callSignature, error) {
	if sig == "" {
		return nil, fmt.Errorf("empty signature")
	}

	open := strings.IndexByte(sig, '(')
	if open < 0 {
		// Getter: a bare name.
		if strings.ContainsAny(sig, "=,_ )") {
			return nil, fmt.Errorf("malformed signature %q", sig)
		}
		return &callSignature{Name: sig, Getter: true, full: sig}, nil
	}

	if !strings.HasSuffix(sig, ")") {
		return nil, fmt.Errorf("malformed signature %q: missing ')'", sig)
	}

	name := sig[:open]
	setter := strings.HasSuffix(name, "=")
	if setter {
		name = name[:len(name)-1]
	}
	if name == "" {
		return nil, fmt.Errorf("malformed signature %q: missing name", sig)
	}

	inner := sig[open+1 : len(sig)-1]
	arity := 0
	if inner != "" {
		parts := strings.Split(inner, ",")
		for _, p := range parts {
			if p != "_" {
				return nil, fmt.Errorf("malformed signature %q: parameter %q is not '_'", sig, p)
			}
		}
		arity = len(parts)
	}

	if setter && arity != 1 {
		return nil, fmt.Errorf("malformed signature %q: setters take exactly one argument", sig)
	}

	return &callSignature{
		Name:   name,
		Arity:  arity,
		Setter: setter,
		full:   sig,
	}, nil
}

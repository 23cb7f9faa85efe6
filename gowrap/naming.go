package gowrap

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Signature builds the script signature of a wrapped function:
// PascalCase becomes camelCase, with one placeholder per parameter.
// "HasPrefix" with 2 params becomes "hasPrefix(_,_)"; a no-argument
// method becomes a getter ("len").
func Signature(goName string, arity int) string {
	name := toCamel(goName)
	if arity == 0 {
		return name
	}
	return name + "(" + strings.Repeat(",_", arity)[1:] + ")"
}

// NamespaceClass names the script class package-level functions land
// in: the package's short name, capitalized. "strings" becomes
// "Strings".
func NamespaceClass(pkgName string) string {
	r, size := utf8.DecodeRuneInString(pkgName)
	if r == utf8.RuneError {
		return pkgName
	}
	return string(unicode.ToUpper(r)) + pkgName[size:]
}

// toCamel lowercases the leading upper-case run of an exported Go name,
// keeping the last capital of an initialism: "HTTPServer" becomes
// "httpServer", "ReadAll" becomes "readAll", "URL" becomes "url".
func toCamel(name string) string {
	if name == "" {
		return name
	}
	runes := []rune(name)
	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}
	switch {
	case upper == 0:
		return name
	case upper == len(runes):
		return strings.ToLower(name)
	case upper == 1:
		runes[0] = unicode.ToLower(runes[0])
	default:
		for i := 0; i < upper-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

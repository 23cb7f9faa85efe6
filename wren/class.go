package wren

// ---------------------------------------------------------------------------
// Classes and method tables
// ---------------------------------------------------------------------------

// Class describes a script-visible class: either script-defined, foreign
// (instances allocated by a host callback), or one of the built-in value
// classes (Num, String, Bool, Null, System).
type Class struct {
	Name    string
	Module  string
	Foreign bool

	// Methods maps canonical signatures to instance methods,
	// Statics to methods on the class object (including constructors).
	Methods map[string]*Method
	Statics map[string]*Method

	// Foreign class callbacks; nil until a binding is resolved.
	Allocate ForeignMethodFn
	Finalize FinalizeFn

	// Cached class-object value; 0 until first wrapped.
	value Value
}

// NewClass creates an empty class.
func NewClass(module, name string) *Class {
	return &Class{
		Name:    name,
		Module:  module,
		Methods: make(map[string]*Method),
		Statics: make(map[string]*Method),
	}
}

// Method is a single entry in a class's dispatch table.
type Method struct {
	Signature string
	Arity     int
	Params    []string

	// Script methods carry a body; constructors additionally allocate
	// the receiver before running it.
	Body []Stmt
	Ctor bool

	// ExprBody marks a single-expression body whose value is the
	// implicit return.
	ExprBody bool

	// Foreign methods dispatch to a host callback. ForeignDecl marks a
	// method declared foreign in source; if Foreign is nil the declaration
	// had no registered binding and invoking it is a runtime fault.
	Foreign     ForeignMethodFn
	ForeignDecl bool
}

// lookup finds a method by canonical signature.
func (c *Class) lookup(signature string, static bool) *Method {
	if static {
		return c.Statics[signature]
	}
	return c.Methods[signature]
}

// addForeignStatic installs a built-in static method. Used for the core
// classes, which reuse the foreign dispatch path.
func (c *Class) addForeignStatic(signature string, arity int, fn ForeignMethodFn) {
	c.Statics[signature] = &Method{
		Signature:   signature,
		Arity:       arity,
		Foreign:     fn,
		ForeignDecl: true,
	}
}

// addForeignMethod installs a built-in instance method.
func (c *Class) addForeignMethod(signature string, arity int, fn ForeignMethodFn) {
	c.Methods[signature] = &Method{
		Signature:   signature,
		Arity:       arity,
		Foreign:     fn,
		ForeignDecl: true,
	}
}

package typechecker

// Environment represents a lexical scope used during typechecking. Besides
// variable types it carries the generic bindings in force and the context of the
// enclosing method.
type Environment struct {
	parent     *Environment
	symbols    map[string]Type
	typeParams map[string]Type

	// Set on the scope that opens a class or method body.
	currentObject *ClassSymbol
	method        *MethodSymbol
	hasMethod     bool
	returnType    Type
	lambda        bool
}

// NewEnvironment creates a new environment with an optional parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent:  parent,
		symbols: make(map[string]Type),
	}
}

// Define binds a name to a type in the current scope.
func (e *Environment) Define(name string, typ Type) {
	e.symbols[name] = typ
}

// Lookup searches for a name in the current scope chain.
func (e *Environment) Lookup(name string) (Type, bool) {
	for env := e; env != nil; env = env.parent {
		if typ, ok := env.symbols[name]; ok {
			return typ, true
		}
	}
	return nil, false
}

// Extend returns a child environment.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

// BindTypeParameter makes a generic parameter name resolvable in this scope.
func (e *Environment) BindTypeParameter(name string, typ Type) {
	if e.typeParams == nil {
		e.typeParams = make(map[string]Type)
	}
	e.typeParams[name] = typ
}

// LookupTypeParameter finds the innermost binding, so method parameters shadow
// class parameters.
func (e *Environment) LookupTypeParameter(name string) (Type, bool) {
	for env := e; env != nil; env = env.parent {
		if typ, ok := env.typeParams[name]; ok {
			return typ, true
		}
	}
	return nil, false
}

// CurrentObject is the class whose body encloses this scope (currentObjectSymbol).
func (e *Environment) CurrentObject() *ClassSymbol {
	for env := e; env != nil; env = env.parent {
		if env.currentObject != nil {
			return env.currentObject
		}
	}
	return nil
}

// CurrentMethod is the innermost enclosing method; nil at top level.
func (e *Environment) CurrentMethod() *MethodSymbol {
	for env := e; env != nil; env = env.parent {
		if env.hasMethod {
			return env.method
		}
	}
	return nil
}

// ReturnType is the declared return type of the innermost method or lambda. ok is
// false at top level.
func (e *Environment) ReturnType() (Type, bool) {
	for env := e; env != nil; env = env.parent {
		if env.hasMethod || env.lambda {
			return env.returnType, true
		}
	}
	return nil, false
}

// InLambda reports whether the innermost function-like scope is a lambda.
func (e *Environment) InLambda() bool {
	for env := e; env != nil; env = env.parent {
		if env.lambda {
			return true
		}
		if env.hasMethod {
			return false
		}
	}
	return false
}

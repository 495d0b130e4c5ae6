package typechecker

// lambdaContext collects what a lambda body returns while it is being checked.
type lambdaContext struct {
	expected Type
	returns  []Type
}

// pushLambda opens a lambda body. expected is the contextual return type, nil
// when the lambda's return type is inferred.
func (c *Checker) pushLambda(expected Type) *lambdaContext {
	ctx := &lambdaContext{expected: expected}
	c.lambdaStack = append(c.lambdaStack, ctx)
	return ctx
}

func (c *Checker) popLambda() {
	if len(c.lambdaStack) == 0 {
		return
	}
	c.lambdaStack = c.lambdaStack[:len(c.lambdaStack)-1]
}

func (c *Checker) currentLambda() *lambdaContext {
	if len(c.lambdaStack) == 0 {
		return nil
	}
	return c.lambdaStack[len(c.lambdaStack)-1]
}

// canAccessPrivate applies the visibility rule: a private member is reachable from
// code whose current class is the declaring class or its direct subclass.
func canAccessPrivate(env *Environment, owner *ClassSymbol) bool {
	current := env.CurrentObject()
	if current == nil || owner == nil {
		return false
	}
	return current == owner || current.Superclass == owner
}

// inStaticContext reports whether the innermost method is static, where `this`
// has no meaning.
func inStaticContext(env *Environment) bool {
	method := env.CurrentMethod()
	return method != nil && method.IsStatic()
}

// inConstructorOf reports whether env is inside the constructor of cls.
func inConstructorOf(env *Environment, cls *ClassSymbol) bool {
	method := env.CurrentMethod()
	return method != nil && method.Declaration != nil && method.Declaration.IsConstructor && method.OwnerClass == cls
}

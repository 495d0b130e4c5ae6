package typechecker

import (
	"fmt"
	"sort"
)

// validateImplementations checks that each class provides every method of the
// interfaces it implements, inherited interface methods included, with a
// compatible signature.
func (c *Checker) validateImplementations() []Diagnostic {
	var diags []Diagnostic
	for _, cls := range c.table.Classes() {
		if c.rejected[cls] {
			continue
		}
		for _, ref := range cls.Implements {
			diags = append(diags, c.validateImplementation(cls, ref)...)
		}
	}
	return diags
}

func (c *Checker) validateImplementation(cls *ClassSymbol, ref InterfaceRef) []Diagnostic {
	var diags []Diagnostic
	required := ref.Symbol.AllMethods(ref)
	names := make([]string, 0, len(required))
	for name := range required {
		names = append(names, name)
	}
	sort.Strings(names)

	self := cls.SelfType()
	for _, name := range names {
		want := required[name]
		have, ok := cls.FindMethod(name)
		if !ok {
			msg := fmt.Sprintf("typechecker: class '%s' does not implement method '%s' of interface '%s'", cls.Name, name, ref.Symbol.Name)
			if _, static := cls.StaticMethods[name]; static {
				msg += " (a static method cannot implement an interface method)"
			}
			diags = append(diags, Diagnostic{Message: msg, Node: cls.Declaration})
			continue
		}
		if have.IsPrivate() {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: method '%s' of class '%s' implements interface '%s' and cannot be private", name, cls.Name, ref.Symbol.Name),
				Node:    have.Declaration,
			})
			continue
		}
		if problem := signatureMismatch(want.method, want.bindings, have, receiverBindings(self, have.OwnerClass)); problem != "" {
			diags = append(diags, Diagnostic{
				Message: fmt.Sprintf("typechecker: method '%s' of class '%s' does not match interface '%s': %s", name, cls.Name, ref.Symbol.Name, problem),
				Node:    have.Declaration,
			})
		}
	}
	return diags
}

// signatureMismatch compares an implementation against an interface method. The
// implementation may add trailing parameters with defaults; its parameters must
// accept the interface's and its return must fit the interface's.
func signatureMismatch(want *MethodSymbol, wantBindings Substitution, have *MethodSymbol, haveBindings Substitution) string {
	if len(want.TypeParams) != len(have.TypeParams) {
		return fmt.Sprintf("expected %s, got %d", plural(len(want.TypeParams), "type parameter"), len(have.TypeParams))
	}
	// Align the implementation's own type parameters with the interface's.
	aligned := make(Substitution, len(haveBindings)+len(have.TypeParams))
	for k, v := range haveBindings {
		aligned[k] = v
	}
	for i, tv := range have.TypeParams {
		aligned[tv.Key()] = want.TypeParams[i]
	}

	if have.requiredParameters() > len(want.Parameters) || len(have.Parameters) < len(want.Parameters) {
		return fmt.Sprintf("expected %s, got %d", plural(len(want.Parameters), "parameter"), len(have.Parameters))
	}
	for i, wp := range want.Parameters {
		wantType := substituteType(wp.Type, wantBindings)
		haveType := substituteType(have.Parameters[i].Type, aligned)
		if !Accepts(haveType, wantType) {
			return fmt.Sprintf("parameter %d must accept %s, got %s", i+1, typeName(wantType), typeName(haveType))
		}
	}
	wantReturn := substituteType(want.ReturnType, wantBindings)
	haveReturn := substituteType(have.ReturnType, aligned)
	if !isVoid(wantReturn) && !Accepts(wantReturn, haveReturn) {
		return fmt.Sprintf("return type must be %s, got %s", typeName(wantReturn), typeName(haveReturn))
	}
	return ""
}

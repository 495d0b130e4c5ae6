package typechecker

// Substitution maps TypeVariable keys to their replacements.
type Substitution map[string]Type

// buildTypeSubstitutionMap zips params with args positionally. Parameters without
// a matching argument stay unsubstituted.
func buildTypeSubstitutionMap(params []TypeVariable, args []Type) Substitution {
	subst := make(Substitution, len(params))
	for i, param := range params {
		if i >= len(args) || args[i] == nil {
			continue
		}
		subst[param.Key()] = args[i]
	}
	return subst
}

// substituteType replaces bound TypeVariables. Replacement types are not visited
// again, so a binding that mentions its own variable cannot loop.
func substituteType(t Type, subst Substitution) Type {
	if len(subst) == 0 || t == nil {
		return t
	}
	switch typ := t.(type) {
	case TypeVariable:
		if replacement, ok := subst[typ.Key()]; ok {
			return replacement
		}
		return typ
	case NullableType:
		return NewNullable(substituteType(typ.Inner, subst))
	case ClassRef:
		return ClassRef{Symbol: typ.Symbol, Arguments: substituteAll(typ.Arguments, subst)}
	case InterfaceRef:
		return InterfaceRef{Symbol: typ.Symbol, Arguments: substituteAll(typ.Arguments, subst)}
	case LambdaType:
		return LambdaType{Params: substituteAll(typ.Params, subst), Return: substituteType(typ.Return, subst)}
	default:
		return t
	}
}

func substituteAll(types []Type, subst Substitution) []Type {
	if types == nil {
		return nil
	}
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = substituteType(t, subst)
	}
	return out
}

// containsTypeVariable reports whether t mentions any TypeVariable.
func containsTypeVariable(t Type) bool {
	switch typ := t.(type) {
	case TypeVariable:
		return true
	case NullableType:
		return containsTypeVariable(typ.Inner)
	case ClassRef:
		return anyContainsTypeVariable(typ.Arguments)
	case InterfaceRef:
		return anyContainsTypeVariable(typ.Arguments)
	case LambdaType:
		return anyContainsTypeVariable(typ.Params) || containsTypeVariable(typ.Return)
	}
	return false
}

func anyContainsTypeVariable(types []Type) bool {
	for _, t := range types {
		if containsTypeVariable(t) {
			return true
		}
	}
	return false
}

// eraseTypeVariables replaces every remaining TypeVariable of the given params
// with mixed.
func eraseTypeVariables(t Type, params []TypeVariable) Type {
	if len(params) == 0 {
		return t
	}
	erased := make([]Type, len(params))
	for i := range erased {
		erased[i] = MixedType{}
	}
	return substituteType(t, buildTypeSubstitutionMap(params, erased))
}

// inferBindings unifies a parameter type against an argument type, recording
// bindings for the open variables in params. The first binding wins.
func inferBindings(param, arg Type, open map[string]bool, out Substitution) {
	if param == nil || arg == nil {
		return
	}
	switch p := param.(type) {
	case TypeVariable:
		if !open[p.Key()] {
			return
		}
		if _, bound := out[p.Key()]; bound || isNull(arg) {
			return
		}
		out[p.Key()] = arg
	case NullableType:
		inferBindings(p.Inner, stripNullable(arg), open, out)
	case ClassRef:
		if a, ok := arg.(ClassRef); ok {
			if lifted, ok := liftClass(a, p.Symbol); ok {
				inferPairwise(p.Arguments, lifted.Arguments, open, out)
			}
		}
	case InterfaceRef:
		if lifted, ok := liftToInterface(arg, p.Symbol); ok {
			inferPairwise(p.Arguments, lifted.Arguments, open, out)
		}
	case LambdaType:
		if a, ok := arg.(LambdaType); ok && len(a.Params) == len(p.Params) {
			inferPairwise(p.Params, a.Params, open, out)
			inferBindings(p.Return, a.Return, open, out)
		}
	}
}

func inferPairwise(params, args []Type, open map[string]bool, out Substitution) {
	if len(params) != len(args) {
		return
	}
	for i := range params {
		inferBindings(params[i], args[i], open, out)
	}
}

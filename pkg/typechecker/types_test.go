package typechecker

import (
	"testing"

	"github.com/nalgeon/be"
)

const typeModelSource = `
interface Shape { area(): number; }
class Animal {}
class Dog extends Animal {}
class Box<T> { public value: T? = null; }
class Circle implements Shape { public area(): number { return 3; } }
`

func typeModelSymbols(t *testing.T) *SymbolTable {
	t.Helper()
	result, err := New().CheckProgram(loadProgram(t, typeModelSource))
	be.Err(t, err, nil)
	be.Equal(t, len(result.Diagnostics), 0)
	return result.Symbols
}

func sampleTypes(t *testing.T) []Type {
	t.Helper()
	table := typeModelSymbols(t)
	animal, _ := table.Class("Animal")
	dog, _ := table.Class("Dog")
	box, _ := table.Class("Box")
	shape, _ := table.Interface("Shape")
	return []Type{
		NumberType,
		StringType,
		BooleanType,
		MixedType{},
		VoidType{},
		NullType{},
		NewNullable(NumberType),
		ClassRef{Symbol: animal},
		ClassRef{Symbol: dog},
		ClassRef{Symbol: box, Arguments: []Type{NumberType}},
		ClassRef{Symbol: box},
		InterfaceRef{Symbol: shape},
		LambdaType{Params: []Type{NumberType}, Return: StringType},
		TypeVariable{ParamName: "T", Owner: "Box"},
		NewNullable(TypeVariable{ParamName: "T", Owner: "Box"}),
	}
}

func TestAcceptsIsReflexive(t *testing.T) {
	for _, typ := range sampleTypes(t) {
		be.True(t, Accepts(typ, typ))
		be.True(t, Equal(typ, typ))
	}
}

func TestNullableAcceptance(t *testing.T) {
	samples := sampleTypes(t)
	for _, inner := range samples {
		nullable := NewNullable(inner)
		be.True(t, Accepts(nullable, NullType{}))
		for _, other := range samples {
			switch other.(type) {
			case NullType, NullableType:
				continue
			}
			if _, already := inner.(NullableType); already {
				continue
			}
			if isDynamic(inner) || isNull(inner) {
				continue
			}
			be.Equal(t, Accepts(nullable, other), Accepts(inner, other))
		}
	}
}

func TestNewNullableCollapses(t *testing.T) {
	once := NewNullable(StringType)
	be.True(t, Equal(NewNullable(once), once))
	be.Equal(t, NewNullable(once).Name(), "string?")
	be.True(t, Equal(NewNullable(MixedType{}), MixedType{}))
}

func TestSubtypeLifting(t *testing.T) {
	table := typeModelSymbols(t)
	animal, _ := table.Class("Animal")
	dog, _ := table.Class("Dog")
	circle, _ := table.Class("Circle")
	shape, _ := table.Interface("Shape")

	be.True(t, Accepts(ClassRef{Symbol: animal}, ClassRef{Symbol: dog}))
	be.True(t, !Accepts(ClassRef{Symbol: dog}, ClassRef{Symbol: animal}))
	be.True(t, Accepts(InterfaceRef{Symbol: shape}, ClassRef{Symbol: circle}))
	be.True(t, !Accepts(InterfaceRef{Symbol: shape}, ClassRef{Symbol: dog}))
	be.True(t, !Accepts(ClassRef{Symbol: animal}, NewNullable(ClassRef{Symbol: dog})))
}

func TestRawGenericReferences(t *testing.T) {
	table := typeModelSymbols(t)
	box, _ := table.Class("Box")
	raw := ClassRef{Symbol: box}
	numbers := ClassRef{Symbol: box, Arguments: []Type{NumberType}}
	strs := ClassRef{Symbol: box, Arguments: []Type{StringType}}

	be.True(t, Accepts(raw, numbers))
	be.True(t, Accepts(numbers, raw))
	be.True(t, !Accepts(numbers, strs))
}

func TestLambdaVariance(t *testing.T) {
	table := typeModelSymbols(t)
	animal, _ := table.Class("Animal")
	dog, _ := table.Class("Dog")
	takesAnimal := LambdaType{Params: []Type{ClassRef{Symbol: animal}}, Return: NumberType}
	takesDog := LambdaType{Params: []Type{ClassRef{Symbol: dog}}, Return: NumberType}

	be.True(t, Accepts(takesDog, takesAnimal))
	be.True(t, !Accepts(takesAnimal, takesDog))
	be.True(t, Accepts(LambdaType{Params: []Type{ClassRef{Symbol: dog}}, Return: VoidType{}}, takesAnimal))
}

func TestSubstitution(t *testing.T) {
	table := typeModelSymbols(t)
	box, _ := table.Class("Box")
	tv := box.TypeParams[0]
	generic := LambdaType{
		Params: []Type{ClassRef{Symbol: box, Arguments: []Type{tv}}, NewNullable(tv)},
		Return: tv,
	}
	subst := buildTypeSubstitutionMap(box.TypeParams, []Type{StringType})
	applied := substituteType(generic, subst)
	be.True(t, !containsTypeVariable(applied))
	be.Equal(t, applied.Name(), "(Box<string>, string?) -> string")

	for _, typ := range sampleTypes(t) {
		if containsTypeVariable(typ) {
			continue
		}
		be.True(t, Equal(substituteType(typ, subst), typ))
	}
	be.True(t, Equal(substituteType(applied, subst), applied))

	partial := buildTypeSubstitutionMap(box.TypeParams, nil)
	be.Equal(t, len(partial), 0)
	be.True(t, Equal(substituteType(generic, partial), generic))
}

func TestSubstitutionCollapsesNullable(t *testing.T) {
	tv := TypeVariable{ParamName: "T", Owner: "Box"}
	subst := Substitution{tv.Key(): NewNullable(NumberType)}
	be.Equal(t, substituteType(NewNullable(tv), subst).Name(), "number?")
}

package native

import "fmt"

// Standard returns a registry holding the built-in library: the prelude
// (Iterator, Iterable, Array, ArrayIterator, String, Number, Boolean and the
// print/typeOf functions) and the importable classes Console, Math, Regex, Map and
// MapIterator.
func Standard() *Registry {
	r := NewRegistry()
	classes := iteratorInterfaces()
	classes = append(classes,
		arrayClass(),
		arrayIteratorClass(),
		stringClass(),
		numberClass(),
		booleanClass(),
		consoleClass(),
		mathClass(),
		regexClass(),
		mapClass(),
		mapIteratorClass(),
	)
	for _, class := range classes {
		if err := r.RegisterClass(class); err != nil {
			panic(err)
		}
	}
	for _, fn := range standardFunctions() {
		if err := r.RegisterFunction(fn); err != nil {
			panic(err)
		}
	}
	return r
}

func standardFunctions() []*Function {
	return []*Function{
		{
			Name:      "print",
			Signature: "print(value: mixed): void",
			Impl: func(ctx *CallContext, args []any) (any, error) {
				_, err := fmt.Fprintln(ctx.Stdout, Format(argAt(args, 0)))
				return nil, err
			},
		},
		{
			Name:      "typeOf",
			Signature: "typeOf(value: mixed): string",
			Impl: func(_ *CallContext, args []any) (any, error) {
				return TypeName(argAt(args, 0)), nil
			},
		},
	}
}

package native

import (
	"fmt"
	"io"
	"math"
)

const consoleSignature = `
class Console {
    public static log(value: mixed): void;
    public static error(value: mixed): void;
}
`

const mathSignature = `
class Math {
    public static pi(): number;
    public static floor(x: number): number;
    public static ceil(x: number): number;
    public static round(x: number): number;
    public static sqrt(x: number): number;
    public static pow(base: number, exponent: number): number;
    public static abs(x: number): number;
    public static max(a: number, b: number): number;
    public static min(a: number, b: number): number;
}
`

func writeLine(w io.Writer, args []any) error {
	_, err := fmt.Fprintln(w, Format(argAt(args, 0)))
	return err
}

func consoleClass() *Class {
	return &Class{
		Name:      "Console",
		Signature: consoleSignature,
		StaticMethods: map[string]Func{
			"log": func(ctx *CallContext, args []any) (any, error) {
				return nil, writeLine(ctx.Stdout, args)
			},
			"error": func(ctx *CallContext, args []any) (any, error) {
				return nil, writeLine(ctx.Stderr, args)
			},
		},
	}
}

func unaryMath(name string, fn func(float64) float64) Func {
	return func(_ *CallContext, args []any) (any, error) {
		x, err := NumberArg("Math."+name, args, 0)
		if err != nil {
			return nil, err
		}
		return fn(x), nil
	}
}

func binaryMath(name string, fn func(a, b float64) float64) Func {
	return func(_ *CallContext, args []any) (any, error) {
		a, err := NumberArg("Math."+name, args, 0)
		if err != nil {
			return nil, err
		}
		b, err := NumberArg("Math."+name, args, 1)
		if err != nil {
			return nil, err
		}
		return fn(a, b), nil
	}
}

func mathClass() *Class {
	return &Class{
		Name:      "Math",
		Signature: mathSignature,
		StaticMethods: map[string]Func{
			"pi": func(_ *CallContext, _ []any) (any, error) {
				return math.Pi, nil
			},
			"floor": unaryMath("floor", math.Floor),
			"ceil":  unaryMath("ceil", math.Ceil),
			"round": unaryMath("round", math.Round),
			"abs":   unaryMath("abs", math.Abs),
			"sqrt": func(_ *CallContext, args []any) (any, error) {
				x, err := NumberArg("Math.sqrt", args, 0)
				if err != nil {
					return nil, err
				}
				if x < 0 {
					return nil, fmt.Errorf("Math.sqrt: negative argument %s", FormatNumber(x))
				}
				return math.Sqrt(x), nil
			},
			"pow": binaryMath("pow", math.Pow),
			"max": binaryMath("max", math.Max),
			"min": binaryMath("min", math.Min),
		},
	}
}

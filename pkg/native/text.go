package native

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const stringSignature = `
class String {
    public length(): number;
    public toUpperCase(): string;
    public toLowerCase(): string;
    public title(): string;
    public equalsIgnoreCase(other: string): boolean;
    public trim(): string;
    public contains(needle: string): boolean;
    public startsWith(prefix: string): boolean;
    public endsWith(suffix: string): boolean;
    public indexOf(needle: string): number;
    public charAt(index: number): string;
    public substring(start: number, end: number = -1): string;
    public replace(search: string, replacement: string): string;
    public repeat(count: number): string;
    public split(separator: string): Array<string>;
    public toNumber(): number?;
}
`

const numberSignature = `
class Number {
    public toString(): string;
    public toFixed(digits: number): string;
    public format(digits: number = 0, locale: string = "en"): string;
    public percent(locale: string = "en"): string;
    public currency(code: string, locale: string = "en"): string;
    public floor(): number;
    public ceil(): number;
    public round(): number;
    public abs(): number;
    public isInteger(): boolean;
}
`

const booleanSignature = `
class Boolean {
    public toString(): string;
}
`

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
	titleCaser = cases.Title(language.English)
	foldCaser  = cases.Fold()
)

func localePrinter(method string, args []any, i int) (*message.Printer, error) {
	locale, err := StringArg(method, args, i)
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid locale '%s'", method, locale)
	}
	return message.NewPrinter(tag), nil
}

func stringMethod(name string, impl func(s string, args []any) (any, error)) Method {
	return func(_ *CallContext, self any, args []any) (any, error) {
		s, ok := self.(string)
		if !ok {
			return nil, fmt.Errorf("String.%s: receiver is %s", name, TypeName(self))
		}
		return impl(s, args)
	}
}

// runeSlice resolves [start, end) in runes; a negative end counts from the back.
func runeSlice(s string, start, end int) string {
	runes := []rune(s)
	start, end = clampRange(start, end, len(runes))
	return string(runes[start:end])
}

func stringClass() *Class {
	return &Class{
		Name:      "String",
		Signature: stringSignature,
		Prelude:   true,
		Requires:  []string{"Array"},
		Methods: map[string]Method{
			"length": stringMethod("length", func(s string, _ []any) (any, error) {
				return float64(utf8.RuneCountInString(s)), nil
			}),
			"toUpperCase": stringMethod("toUpperCase", func(s string, _ []any) (any, error) {
				return upperCaser.String(s), nil
			}),
			"toLowerCase": stringMethod("toLowerCase", func(s string, _ []any) (any, error) {
				return lowerCaser.String(s), nil
			}),
			"title": stringMethod("title", func(s string, _ []any) (any, error) {
				return titleCaser.String(s), nil
			}),
			"equalsIgnoreCase": stringMethod("equalsIgnoreCase", func(s string, args []any) (any, error) {
				other, err := StringArg("String.equalsIgnoreCase", args, 0)
				if err != nil {
					return nil, err
				}
				return foldCaser.String(s) == foldCaser.String(other), nil
			}),
			"trim": stringMethod("trim", func(s string, _ []any) (any, error) {
				return strings.TrimSpace(s), nil
			}),
			"contains": stringMethod("contains", func(s string, args []any) (any, error) {
				needle, err := StringArg("String.contains", args, 0)
				if err != nil {
					return nil, err
				}
				return strings.Contains(s, needle), nil
			}),
			"startsWith": stringMethod("startsWith", func(s string, args []any) (any, error) {
				prefix, err := StringArg("String.startsWith", args, 0)
				if err != nil {
					return nil, err
				}
				return strings.HasPrefix(s, prefix), nil
			}),
			"endsWith": stringMethod("endsWith", func(s string, args []any) (any, error) {
				suffix, err := StringArg("String.endsWith", args, 0)
				if err != nil {
					return nil, err
				}
				return strings.HasSuffix(s, suffix), nil
			}),
			"indexOf": stringMethod("indexOf", func(s string, args []any) (any, error) {
				needle, err := StringArg("String.indexOf", args, 0)
				if err != nil {
					return nil, err
				}
				idx := strings.Index(s, needle)
				if idx < 0 {
					return float64(-1), nil
				}
				return float64(utf8.RuneCountInString(s[:idx])), nil
			}),
			"charAt": stringMethod("charAt", func(s string, args []any) (any, error) {
				index, err := IntArg("String.charAt", args, 0)
				if err != nil {
					return nil, err
				}
				runes := []rune(s)
				if index < 0 || index >= len(runes) {
					return nil, fmt.Errorf("String.charAt: index %d out of bounds for length %d", index, len(runes))
				}
				return string(runes[index]), nil
			}),
			"substring": stringMethod("substring", func(s string, args []any) (any, error) {
				start, err := IntArg("String.substring", args, 0)
				if err != nil {
					return nil, err
				}
				end, err := IntArg("String.substring", args, 1)
				if err != nil {
					return nil, err
				}
				return runeSlice(s, start, end), nil
			}),
			"replace": stringMethod("replace", func(s string, args []any) (any, error) {
				search, err := StringArg("String.replace", args, 0)
				if err != nil {
					return nil, err
				}
				replacement, err := StringArg("String.replace", args, 1)
				if err != nil {
					return nil, err
				}
				return strings.ReplaceAll(s, search, replacement), nil
			}),
			"repeat": stringMethod("repeat", func(s string, args []any) (any, error) {
				count, err := IntArg("String.repeat", args, 0)
				if err != nil {
					return nil, err
				}
				if count < 0 {
					return nil, fmt.Errorf("String.repeat: negative count %d", count)
				}
				return strings.Repeat(s, count), nil
			}),
			"split": stringMethod("split", func(s string, args []any) (any, error) {
				sep, err := StringArg("String.split", args, 0)
				if err != nil {
					return nil, err
				}
				parts := strings.Split(s, sep)
				items := make([]any, len(parts))
				for i, part := range parts {
					items[i] = part
				}
				return NewList(items), nil
			}),
			"toNumber": stringMethod("toNumber", func(s string, _ []any) (any, error) {
				f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					return nil, nil
				}
				return f, nil
			}),
		},
	}
}

func numberMethod(name string, impl func(n float64, args []any) (any, error)) Method {
	return func(_ *CallContext, self any, args []any) (any, error) {
		n, ok := self.(float64)
		if !ok {
			return nil, fmt.Errorf("Number.%s: receiver is %s", name, TypeName(self))
		}
		return impl(n, args)
	}
}

func numberClass() *Class {
	return &Class{
		Name:      "Number",
		Signature: numberSignature,
		Prelude:   true,
		Methods: map[string]Method{
			"toString": numberMethod("toString", func(n float64, _ []any) (any, error) {
				return FormatNumber(n), nil
			}),
			"toFixed": numberMethod("toFixed", func(n float64, args []any) (any, error) {
				digits, err := IntArg("Number.toFixed", args, 0)
				if err != nil {
					return nil, err
				}
				if digits < 0 || digits > 20 {
					return nil, fmt.Errorf("Number.toFixed: digits %d out of range", digits)
				}
				return strconv.FormatFloat(n, 'f', digits, 64), nil
			}),
			"format": numberMethod("format", func(n float64, args []any) (any, error) {
				digits, err := IntArg("Number.format", args, 0)
				if err != nil {
					return nil, err
				}
				if digits < 0 || digits > 20 {
					return nil, fmt.Errorf("Number.format: digits %d out of range", digits)
				}
				p, err := localePrinter("Number.format", args, 1)
				if err != nil {
					return nil, err
				}
				return p.Sprintf("%v", number.Decimal(n, number.MinFractionDigits(digits), number.MaxFractionDigits(digits))), nil
			}),
			"percent": numberMethod("percent", func(n float64, args []any) (any, error) {
				p, err := localePrinter("Number.percent", args, 0)
				if err != nil {
					return nil, err
				}
				return p.Sprintf("%v", number.Percent(n)), nil
			}),
			"currency": numberMethod("currency", func(n float64, args []any) (any, error) {
				code, err := StringArg("Number.currency", args, 0)
				if err != nil {
					return nil, err
				}
				unit, err := currency.ParseISO(code)
				if err != nil {
					return nil, fmt.Errorf("Number.currency: unknown currency '%s'", code)
				}
				p, err := localePrinter("Number.currency", args, 1)
				if err != nil {
					return nil, err
				}
				return p.Sprintf("%v", currency.Symbol(unit.Amount(n))), nil
			}),
			"floor": numberMethod("floor", func(n float64, _ []any) (any, error) {
				return math.Floor(n), nil
			}),
			"ceil": numberMethod("ceil", func(n float64, _ []any) (any, error) {
				return math.Ceil(n), nil
			}),
			"round": numberMethod("round", func(n float64, _ []any) (any, error) {
				return math.Round(n), nil
			}),
			"abs": numberMethod("abs", func(n float64, _ []any) (any, error) {
				return math.Abs(n), nil
			}),
			"isInteger": numberMethod("isInteger", func(n float64, _ []any) (any, error) {
				return n == math.Trunc(n) && !math.IsInf(n, 0), nil
			}),
		},
	}
}

func booleanClass() *Class {
	return &Class{
		Name:      "Boolean",
		Signature: booleanSignature,
		Prelude:   true,
		Methods: map[string]Method{
			"toString": func(_ *CallContext, self any, _ []any) (any, error) {
				b, ok := self.(bool)
				if !ok {
					return nil, fmt.Errorf("Boolean.toString: receiver is %s", TypeName(self))
				}
				return strconv.FormatBool(b), nil
			},
		},
	}
}

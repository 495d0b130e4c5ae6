package native

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

const regexSignature = `
class Regex {
    public constructor(pattern: string, flags: string = "");
    public test(input: string): boolean;
    public find(input: string): string?;
    public findAll(input: string): Array<string>;
    public groups(input: string): Array<string>;
    public replace(input: string, replacement: string): string;
    public pattern(): string;
}
`

// Pattern is the handle behind a Regex instance.
type Pattern struct {
	Source string
	Flags  string
	re     *regexp2.Regexp
}

func (*Pattern) NativeClass() string { return "Regex" }

func (p *Pattern) String() string { return "/" + p.Source + "/" + p.Flags }

// CompilePattern compiles with ECMAScript semantics. Flags: i (ignore case),
// m (multiline), s (dot matches newline).
func CompilePattern(source, flags string) (*Pattern, error) {
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	for _, flag := range flags {
		switch flag {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		default:
			return nil, fmt.Errorf("Regex: unknown flag '%c'", flag)
		}
	}
	if opts&regexp2.Singleline != 0 {
		// Singleline is not valid together with ECMAScript in regexp2.
		opts &^= regexp2.ECMAScript
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, fmt.Errorf("Regex: %w", err)
	}
	return &Pattern{Source: source, Flags: flags, re: re}, nil
}

func (p *Pattern) Test(input string) (bool, error) {
	return p.re.MatchString(input)
}

// FindAll returns every non-overlapping match in order.
func (p *Pattern) FindAll(input string) ([]string, error) {
	var out []string
	m, err := p.re.FindStringMatch(input)
	for m != nil && err == nil {
		out = append(out, m.String())
		m, err = p.re.FindNextMatch(m)
	}
	return out, err
}

func patternSelf(method string, self any) (*Pattern, error) {
	p, ok := self.(*Pattern)
	if !ok {
		return nil, fmt.Errorf("Regex.%s: receiver is %s", method, TypeName(self))
	}
	return p, nil
}

func patternMethod(name string, impl func(p *Pattern, input string, args []any) (any, error)) Method {
	return func(_ *CallContext, self any, args []any) (any, error) {
		p, err := patternSelf(name, self)
		if err != nil {
			return nil, err
		}
		input, err := StringArg("Regex."+name, args, 0)
		if err != nil {
			return nil, err
		}
		return impl(p, input, args)
	}
}

func stringList(items []string) *List {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return NewList(out)
}

func regexClass() *Class {
	return &Class{
		Name:      "Regex",
		Signature: regexSignature,
		Requires:  []string{"Array"},
		Constructor: func(_ *CallContext, args []any) (Handle, error) {
			source, err := StringArg("Regex.constructor", args, 0)
			if err != nil {
				return nil, err
			}
			flags, err := StringArg("Regex.constructor", args, 1)
			if err != nil {
				return nil, err
			}
			pattern, err := CompilePattern(source, flags)
			if err != nil {
				return nil, err
			}
			return pattern, nil
		},
		Methods: map[string]Method{
			"test": patternMethod("test", func(p *Pattern, input string, _ []any) (any, error) {
				return p.Test(input)
			}),
			"find": patternMethod("find", func(p *Pattern, input string, _ []any) (any, error) {
				m, err := p.re.FindStringMatch(input)
				if err != nil || m == nil {
					return nil, err
				}
				return m.String(), nil
			}),
			"findAll": patternMethod("findAll", func(p *Pattern, input string, _ []any) (any, error) {
				matches, err := p.FindAll(input)
				if err != nil {
					return nil, err
				}
				return stringList(matches), nil
			}),
			"groups": patternMethod("groups", func(p *Pattern, input string, _ []any) (any, error) {
				m, err := p.re.FindStringMatch(input)
				if err != nil {
					return nil, err
				}
				if m == nil {
					return NewList(nil), nil
				}
				groups := m.Groups()
				out := make([]string, 0, len(groups))
				for _, g := range groups {
					out = append(out, g.String())
				}
				return stringList(out), nil
			}),
			"replace": patternMethod("replace", func(p *Pattern, input string, args []any) (any, error) {
				replacement, err := StringArg("Regex.replace", args, 1)
				if err != nil {
					return nil, err
				}
				return p.re.Replace(input, replacement, -1, -1)
			}),
			"pattern": func(_ *CallContext, self any, _ []any) (any, error) {
				p, err := patternSelf("pattern", self)
				if err != nil {
					return nil, err
				}
				return p.Source, nil
			},
		},
	}
}

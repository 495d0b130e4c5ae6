package native

import (
	"fmt"
	"strings"
)

// List backs Array instances. Items hold host values.
type List struct {
	Items []any
}

func NewList(items []any) *List {
	if items == nil {
		items = make([]any, 0)
	}
	return &List{Items: items}
}

func (*List) NativeClass() string { return "Array" }

func (l *List) Len() int { return len(l.Items) }

func (l *List) Get(index int) (any, error) {
	if index < 0 || index >= len(l.Items) {
		return nil, fmt.Errorf("index %d out of bounds for array of length %d", index, len(l.Items))
	}
	return l.Items[index], nil
}

func (l *List) Set(index int, value any) error {
	switch {
	case index >= 0 && index < len(l.Items):
		l.Items[index] = value
		return nil
	case index == len(l.Items):
		l.Items = append(l.Items, value)
		return nil
	}
	return fmt.Errorf("index %d out of bounds for array of length %d", index, len(l.Items))
}

// ListIterator walks a List with the Iterator protocol.
type ListIterator struct {
	list  *List
	index int
}

func (*ListIterator) NativeClass() string { return "ArrayIterator" }

func (it *ListIterator) Valid() bool { return it.index < len(it.list.Items) }

const iteratorSignature = `
interface Iterator<T> {
    hasNext(): boolean;
    current(): T;
    key(): mixed;
    next(): void;
    rewind(): void;
}
`

const iterableSignature = `
interface Iterable<T> {
    iterator(): Iterator<T>;
}
`

const arraySignature = `
class Array<T> implements Iterable<T> {
    public constructor();
    public length(): number;
    public push(item: T): void;
    public pop(): T?;
    public get(index: number): T;
    public set(index: number, value: T): void;
    public contains(item: T): boolean;
    public indexOf(item: T): number;
    public join(separator: string = ","): string;
    public slice(start: number, end: number = -1): Array<T>;
    public reverse(): Array<T>;
    public map<U>(fn: (T) -> U): Array<U>;
    public filter(fn: (T) -> boolean): Array<T>;
    public forEach(fn: (T) -> void): void;
    public iterator(): Iterator<T>;
}
`

const arrayIteratorSignature = `
class ArrayIterator<T> implements Iterator<T> {
    public hasNext(): boolean;
    public current(): T;
    public key(): mixed;
    public next(): void;
    public rewind(): void;
}
`

func listSelf(method string, self any) (*List, error) {
	list, ok := self.(*List)
	if !ok {
		return nil, fmt.Errorf("Array.%s: receiver is %s, not an array", method, TypeName(self))
	}
	return list, nil
}

func listMethod(name string, impl func(ctx *CallContext, list *List, args []any) (any, error)) Method {
	return func(ctx *CallContext, self any, args []any) (any, error) {
		list, err := listSelf(name, self)
		if err != nil {
			return nil, err
		}
		return impl(ctx, list, args)
	}
}

func arrayClass() *Class {
	return &Class{
		Name:      "Array",
		Signature: arraySignature,
		Prelude:   true,
		Requires:  []string{"Iterator", "Iterable", "ArrayIterator"},
		Constructor: func(_ *CallContext, _ []any) (Handle, error) {
			return NewList(nil), nil
		},
		Methods: map[string]Method{
			"length": listMethod("length", func(_ *CallContext, l *List, _ []any) (any, error) {
				return float64(l.Len()), nil
			}),
			"push": listMethod("push", func(_ *CallContext, l *List, args []any) (any, error) {
				l.Items = append(l.Items, argAt(args, 0))
				return nil, nil
			}),
			"pop": listMethod("pop", func(_ *CallContext, l *List, _ []any) (any, error) {
				if len(l.Items) == 0 {
					return nil, nil
				}
				last := l.Items[len(l.Items)-1]
				l.Items = l.Items[:len(l.Items)-1]
				return last, nil
			}),
			"get": listMethod("get", func(_ *CallContext, l *List, args []any) (any, error) {
				index, err := IntArg("Array.get", args, 0)
				if err != nil {
					return nil, err
				}
				return l.Get(index)
			}),
			"set": listMethod("set", func(_ *CallContext, l *List, args []any) (any, error) {
				index, err := IntArg("Array.set", args, 0)
				if err != nil {
					return nil, err
				}
				return nil, l.Set(index, argAt(args, 1))
			}),
			"contains": listMethod("contains", func(_ *CallContext, l *List, args []any) (any, error) {
				return indexOf(l, argAt(args, 0)) >= 0, nil
			}),
			"indexOf": listMethod("indexOf", func(_ *CallContext, l *List, args []any) (any, error) {
				return float64(indexOf(l, argAt(args, 0))), nil
			}),
			"join": listMethod("join", func(_ *CallContext, l *List, args []any) (any, error) {
				sep, err := StringArg("Array.join", args, 0)
				if err != nil {
					return nil, err
				}
				parts := make([]string, 0, len(l.Items))
				for _, item := range l.Items {
					parts = append(parts, Format(item))
				}
				return strings.Join(parts, sep), nil
			}),
			"slice": listMethod("slice", func(_ *CallContext, l *List, args []any) (any, error) {
				start, err := IntArg("Array.slice", args, 0)
				if err != nil {
					return nil, err
				}
				end, err := IntArg("Array.slice", args, 1)
				if err != nil {
					return nil, err
				}
				start, end = clampRange(start, end, len(l.Items))
				out := make([]any, end-start)
				copy(out, l.Items[start:end])
				return NewList(out), nil
			}),
			"reverse": listMethod("reverse", func(_ *CallContext, l *List, _ []any) (any, error) {
				out := make([]any, len(l.Items))
				for i, item := range l.Items {
					out[len(out)-1-i] = item
				}
				return NewList(out), nil
			}),
			"map": listMethod("map", func(_ *CallContext, l *List, args []any) (any, error) {
				fn, err := CallableArg("Array.map", args, 0)
				if err != nil {
					return nil, err
				}
				out := make([]any, 0, len(l.Items))
				for _, item := range l.Items {
					mapped, err := fn.Call(item)
					if err != nil {
						return nil, err
					}
					out = append(out, mapped)
				}
				return NewList(out), nil
			}),
			"filter": listMethod("filter", func(_ *CallContext, l *List, args []any) (any, error) {
				fn, err := CallableArg("Array.filter", args, 0)
				if err != nil {
					return nil, err
				}
				out := make([]any, 0)
				for _, item := range l.Items {
					keep, err := fn.Call(item)
					if err != nil {
						return nil, err
					}
					if Truthy(keep) {
						out = append(out, item)
					}
				}
				return NewList(out), nil
			}),
			"forEach": listMethod("forEach", func(_ *CallContext, l *List, args []any) (any, error) {
				fn, err := CallableArg("Array.forEach", args, 0)
				if err != nil {
					return nil, err
				}
				for _, item := range l.Items {
					if _, err := fn.Call(item); err != nil {
						return nil, err
					}
				}
				return nil, nil
			}),
			"iterator": listMethod("iterator", func(_ *CallContext, l *List, _ []any) (any, error) {
				return &ListIterator{list: l}, nil
			}),
		},
	}
}

// clampRange resolves slice bounds; a negative end counts from the back, with -1
// meaning "through the last element".
func clampRange(start, end, length int) (int, int) {
	if end < 0 {
		end = length + end + 1
	}
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		start = end
	}
	return start, end
}

func indexOf(l *List, needle any) int {
	for i, item := range l.Items {
		if Equal(item, needle) {
			return i
		}
	}
	return -1
}

func iteratorMethod(name string, impl func(it *ListIterator) (any, error)) Method {
	return func(_ *CallContext, self any, _ []any) (any, error) {
		it, ok := self.(*ListIterator)
		if !ok {
			return nil, fmt.Errorf("ArrayIterator.%s: receiver is %s", name, TypeName(self))
		}
		return impl(it)
	}
}

func arrayIteratorClass() *Class {
	return &Class{
		Name:      "ArrayIterator",
		Signature: arrayIteratorSignature,
		Prelude:   true,
		Requires:  []string{"Iterator"},
		Methods: map[string]Method{
			"hasNext": iteratorMethod("hasNext", func(it *ListIterator) (any, error) {
				return it.Valid(), nil
			}),
			"current": iteratorMethod("current", func(it *ListIterator) (any, error) {
				if !it.Valid() {
					return nil, fmt.Errorf("ArrayIterator.current: iterator exhausted")
				}
				return it.list.Items[it.index], nil
			}),
			"key": iteratorMethod("key", func(it *ListIterator) (any, error) {
				return float64(it.index), nil
			}),
			"next": iteratorMethod("next", func(it *ListIterator) (any, error) {
				it.index++
				return nil, nil
			}),
			"rewind": iteratorMethod("rewind", func(it *ListIterator) (any, error) {
				it.index = 0
				return nil, nil
			}),
		},
	}
}

func iteratorInterfaces() []*Class {
	return []*Class{
		{Name: "Iterator", Signature: iteratorSignature, Prelude: true},
		{Name: "Iterable", Signature: iterableSignature, Prelude: true, Requires: []string{"Iterator"}},
	}
}

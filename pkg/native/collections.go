package native

import (
	"fmt"
	"strings"
)

const mapSignature = `
class Map<K, V> implements Iterable<V> {
    public constructor();
    public size(): number;
    public has(key: K): boolean;
    public get(key: K): V?;
    public set(key: K, value: V): void;
    public remove(key: K): boolean;
    public clear(): void;
    public keys(): Array<K>;
    public values(): Array<V>;
    public iterator(): Iterator<V>;
}
`

const mapIteratorSignature = `
class MapIterator<V> implements Iterator<V> {
    public hasNext(): boolean;
    public current(): V;
    public key(): mixed;
    public next(): void;
    public rewind(): void;
}
`

type mapEntry struct {
	key   any
	value any
}

// Dict is an insertion-ordered hash map backing Map instances.
type Dict struct {
	index   map[any]int
	entries []mapEntry
}

func NewDict() *Dict {
	return &Dict{index: make(map[any]int)}
}

func (*Dict) NativeClass() string { return "Map" }

func (d *Dict) Len() int { return len(d.entries) }

func (d *Dict) Get(key any) (any, bool, error) {
	k, err := hashKey(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[k]
	if !ok {
		return nil, false, nil
	}
	return d.entries[i].value, true, nil
}

func (d *Dict) Set(key, value any) error {
	k, err := hashKey(key)
	if err != nil {
		return err
	}
	if i, ok := d.index[k]; ok {
		d.entries[i].value = value
		return nil
	}
	d.index[k] = len(d.entries)
	d.entries = append(d.entries, mapEntry{key: key, value: value})
	return nil
}

func (d *Dict) Remove(key any) (bool, error) {
	k, err := hashKey(key)
	if err != nil {
		return false, err
	}
	i, ok := d.index[k]
	if !ok {
		return false, nil
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
	delete(d.index, k)
	for j := i; j < len(d.entries); j++ {
		shifted, _ := hashKey(d.entries[j].key)
		d.index[shifted] = j
	}
	return true, nil
}

func (d *Dict) String() string {
	parts := make([]string, 0, len(d.entries))
	for _, e := range d.entries {
		parts = append(parts, format(e.key, true)+": "+format(e.value, true))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// DictIterator walks a Dict's values in insertion order; key() yields the entry key.
type DictIterator struct {
	dict  *Dict
	index int
}

func (*DictIterator) NativeClass() string { return "MapIterator" }

func (it *DictIterator) Valid() bool { return it.index < len(it.dict.entries) }

func dictMethod(name string, impl func(d *Dict, args []any) (any, error)) Method {
	return func(_ *CallContext, self any, args []any) (any, error) {
		d, ok := self.(*Dict)
		if !ok {
			return nil, fmt.Errorf("Map.%s: receiver is %s", name, TypeName(self))
		}
		return impl(d, args)
	}
}

func mapClass() *Class {
	return &Class{
		Name:      "Map",
		Signature: mapSignature,
		Requires:  []string{"Iterable", "Array", "MapIterator"},
		Constructor: func(_ *CallContext, _ []any) (Handle, error) {
			return NewDict(), nil
		},
		Methods: map[string]Method{
			"size": dictMethod("size", func(d *Dict, _ []any) (any, error) {
				return float64(d.Len()), nil
			}),
			"has": dictMethod("has", func(d *Dict, args []any) (any, error) {
				_, ok, err := d.Get(argAt(args, 0))
				return ok, err
			}),
			"get": dictMethod("get", func(d *Dict, args []any) (any, error) {
				v, _, err := d.Get(argAt(args, 0))
				return v, err
			}),
			"set": dictMethod("set", func(d *Dict, args []any) (any, error) {
				return nil, d.Set(argAt(args, 0), argAt(args, 1))
			}),
			"remove": dictMethod("remove", func(d *Dict, args []any) (any, error) {
				return d.Remove(argAt(args, 0))
			}),
			"clear": dictMethod("clear", func(d *Dict, _ []any) (any, error) {
				d.index = make(map[any]int)
				d.entries = nil
				return nil, nil
			}),
			"keys": dictMethod("keys", func(d *Dict, _ []any) (any, error) {
				out := make([]any, len(d.entries))
				for i, e := range d.entries {
					out[i] = e.key
				}
				return NewList(out), nil
			}),
			"values": dictMethod("values", func(d *Dict, _ []any) (any, error) {
				out := make([]any, len(d.entries))
				for i, e := range d.entries {
					out[i] = e.value
				}
				return NewList(out), nil
			}),
			"iterator": dictMethod("iterator", func(d *Dict, _ []any) (any, error) {
				return &DictIterator{dict: d}, nil
			}),
		},
	}
}

func dictIteratorMethod(name string, impl func(it *DictIterator) (any, error)) Method {
	return func(_ *CallContext, self any, _ []any) (any, error) {
		it, ok := self.(*DictIterator)
		if !ok {
			return nil, fmt.Errorf("MapIterator.%s: receiver is %s", name, TypeName(self))
		}
		return impl(it)
	}
}

func mapIteratorClass() *Class {
	return &Class{
		Name:      "MapIterator",
		Signature: mapIteratorSignature,
		Requires:  []string{"Iterator"},
		Methods: map[string]Method{
			"hasNext": dictIteratorMethod("hasNext", func(it *DictIterator) (any, error) {
				return it.Valid(), nil
			}),
			"current": dictIteratorMethod("current", func(it *DictIterator) (any, error) {
				if !it.Valid() {
					return nil, fmt.Errorf("MapIterator.current: iterator exhausted")
				}
				return it.dict.entries[it.index].value, nil
			}),
			"key": dictIteratorMethod("key", func(it *DictIterator) (any, error) {
				if !it.Valid() {
					return nil, nil
				}
				return it.dict.entries[it.index].key, nil
			}),
			"next": dictIteratorMethod("next", func(it *DictIterator) (any, error) {
				it.index++
				return nil, nil
			}),
			"rewind": dictIteratorMethod("rewind", func(it *DictIterator) (any, error) {
				it.index = 0
				return nil, nil
			}),
		},
	}
}

// Package native is the host side of the interpreter's native bridge. Each native
// class or function pairs a signature written in Lyra syntax with a Go
// implementation that works on plain host values:
//
//	nil, bool, float64, string, *List, *ObjectView, *Callable
//
// plus opaque handles implementing Handle. Conversion between these and runtime
// values is the interpreter's job.
package native

import (
	"fmt"
	"io"
	"sort"
)

// Handle is implemented by host objects that back a native class instance.
type Handle interface {
	NativeClass() string
}

// CallContext carries the host facilities a native implementation may use.
type CallContext struct {
	Stdout io.Writer
	Stderr io.Writer
}

type (
	Constructor func(ctx *CallContext, args []any) (Handle, error)
	Method      func(ctx *CallContext, self any, args []any) (any, error)
	Func        func(ctx *CallContext, args []any) (any, error)
)

// Class describes one native declaration. Signature must declare exactly one
// class or interface named Name; interfaces carry no host tables. Requires lists
// other entries that must be linked alongside this one.
type Class struct {
	Name          string
	Signature     string
	Prelude       bool
	Requires      []string
	Constructor   Constructor
	Methods       map[string]Method
	StaticMethods map[string]Func
}

func (c *Class) HasMethod(name string) bool {
	_, ok := c.Methods[name]
	return ok
}

func (c *Class) HasStaticMethod(name string) bool {
	_, ok := c.StaticMethods[name]
	return ok
}

// Function is a free native function; Signature is a bodyless method
// declaration such as `print(value: mixed): void`.
type Function struct {
	Name      string
	Signature string
	Impl      Func
}

// Registry holds the native classes and functions available to one interpreter.
// It is built once and then only read.
type Registry struct {
	classes   map[string]*Class
	functions map[string]*Function
}

func NewRegistry() *Registry {
	return &Registry{
		classes:   make(map[string]*Class),
		functions: make(map[string]*Function),
	}
}

func (r *Registry) RegisterClass(class *Class) error {
	if class == nil || class.Name == "" {
		return fmt.Errorf("native: class requires a name")
	}
	if _, exists := r.classes[class.Name]; exists {
		return fmt.Errorf("native: class %s already registered", class.Name)
	}
	if class.Signature == "" {
		return fmt.Errorf("native: class %s has no signature", class.Name)
	}
	r.classes[class.Name] = class
	return nil
}

func (r *Registry) RegisterFunction(fn *Function) error {
	if fn == nil || fn.Name == "" {
		return fmt.Errorf("native: function requires a name")
	}
	if _, exists := r.functions[fn.Name]; exists {
		return fmt.Errorf("native: function %s already registered", fn.Name)
	}
	if fn.Impl == nil {
		return fmt.Errorf("native: function %s has no implementation", fn.Name)
	}
	r.functions[fn.Name] = fn
	return nil
}

func (r *Registry) Class(name string) (*Class, bool) {
	if r == nil {
		return nil, false
	}
	class, ok := r.classes[name]
	return class, ok
}

func (r *Registry) Function(name string) (*Function, bool) {
	if r == nil {
		return nil, false
	}
	fn, ok := r.functions[name]
	return fn, ok
}

// Classes returns every registered class sorted by name.
func (r *Registry) Classes() []*Class {
	out := make([]*Class, 0, len(r.classes))
	for _, class := range r.classes {
		out = append(out, class)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *Registry) Prelude() []*Class {
	var out []*Class
	for _, class := range r.Classes() {
		if class.Prelude {
			out = append(out, class)
		}
	}
	return out
}

func (r *Registry) Functions() []*Function {
	out := make([]*Function, 0, len(r.functions))
	for _, fn := range r.functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Closure returns the named classes plus everything they require, in a stable
// order. Unknown names are reported.
func (r *Registry) Closure(names ...string) ([]*Class, error) {
	seen := make(map[string]bool)
	var out []*Class
	var visit func(name string) error
	visit = func(name string) error {
		if seen[name] {
			return nil
		}
		class, ok := r.Class(name)
		if !ok {
			return fmt.Errorf("native: unknown native class '%s'", name)
		}
		seen[name] = true
		for _, dep := range class.Requires {
			if err := visit(dep); err != nil {
				return err
			}
		}
		out = append(out, class)
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Restrict returns a registry containing the prelude, all functions, and only the
// named optional classes (with their requirements).
func (r *Registry) Restrict(allowed []string) (*Registry, error) {
	out := NewRegistry()
	names := make([]string, 0, len(allowed))
	for _, class := range r.Prelude() {
		names = append(names, class.Name)
	}
	names = append(names, allowed...)
	classes, err := r.Closure(names...)
	if err != nil {
		return nil, err
	}
	for _, class := range classes {
		out.classes[class.Name] = class
	}
	for name, fn := range r.functions {
		out.functions[name] = fn
	}
	return out, nil
}

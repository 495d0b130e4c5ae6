package runtime

import (
	"fmt"
	"sort"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
)

type FieldDefinition struct {
	Name        string
	Initializer ast.Expression
	Declaration *ast.FieldDeclaration
}

type MethodDefinition struct {
	Name        string
	Declaration *ast.MethodDeclaration
	Owner       *ClassDefinition
}

func (m *MethodDefinition) Parameters() []*ast.Parameter { return m.Declaration.Parameters }

// IsNative reports whether the method has no body and must be served by the
// owner's host table.
func (m *MethodDefinition) IsNative() bool { return m.Declaration.Body == nil }

type staticState int

const (
	staticsPending staticState = iota
	staticsRunning
	staticsReady
)

// ClassDefinition is the evaluator's view of a class: bodies, initializers and,
// for native classes, the host table.
type ClassDefinition struct {
	Name           string
	SuperclassName string
	Superclass     *ClassDefinition
	Fields         []*FieldDefinition
	StaticFields   []*FieldDefinition
	Methods        map[string]*MethodDefinition
	StaticMethods  map[string]*MethodDefinition
	Constructor    *MethodDefinition
	Native         *native.Class
	Annotations    ast.Annotations
	Declaration    *ast.ClassDeclaration

	// Statics is shared by every instance of exactly this class.
	Statics map[string]Value
	state   staticState
}

// NewClassDefinition builds the runtime view of a declaration. nativeClass is the
// host table for native declarations and nil otherwise.
func NewClassDefinition(decl *ast.ClassDeclaration, nativeClass *native.Class) *ClassDefinition {
	def := &ClassDefinition{
		Name:          decl.ID.Name,
		Methods:       make(map[string]*MethodDefinition),
		StaticMethods: make(map[string]*MethodDefinition),
		Native:        nativeClass,
		Annotations:   decl.Annotations,
		Declaration:   decl,
		Statics:       make(map[string]Value),
	}
	if decl.Superclass != nil {
		def.SuperclassName = ast.TypeExpressionName(decl.Superclass)
	}
	for _, field := range decl.Fields {
		fd := &FieldDefinition{Name: field.Name.Name, Initializer: field.Initializer, Declaration: field}
		if field.Modifiers.IsStatic() {
			def.StaticFields = append(def.StaticFields, fd)
		} else {
			def.Fields = append(def.Fields, fd)
		}
	}
	for _, method := range decl.Methods {
		md := &MethodDefinition{Name: method.Name.Name, Declaration: method, Owner: def}
		if method.Modifiers.IsStatic() {
			def.StaticMethods[md.Name] = md
		} else {
			def.Methods[md.Name] = md
		}
	}
	if decl.Constructor != nil {
		def.Constructor = &MethodDefinition{Name: ast.ConstructorName, Declaration: decl.Constructor, Owner: def}
	}
	return def
}

// Chain returns the class followed by its ancestors.
func (c *ClassDefinition) Chain() []*ClassDefinition {
	var out []*ClassDefinition
	for def := c; def != nil; def = def.Superclass {
		out = append(out, def)
	}
	return out
}

// FindMethod resolves an instance method through the superclass chain.
func (c *ClassDefinition) FindMethod(name string) (*MethodDefinition, bool) {
	for def := c; def != nil; def = def.Superclass {
		if m, ok := def.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// FindStaticMethod looks only at the class itself.
func (c *ClassDefinition) FindStaticMethod(name string) (*MethodDefinition, bool) {
	m, ok := c.StaticMethods[name]
	return m, ok
}

// FindConstructor returns the nearest declared constructor, own or inherited.
func (c *ClassDefinition) FindConstructor() *MethodDefinition {
	for def := c; def != nil; def = def.Superclass {
		if def.Constructor != nil {
			return def.Constructor
		}
	}
	return nil
}

// NativeBase returns the nearest class in the chain backed by a host table.
func (c *ClassDefinition) NativeBase() *ClassDefinition {
	for def := c; def != nil; def = def.Superclass {
		if def.Native != nil {
			return def
		}
	}
	return nil
}

func (c *ClassDefinition) IsSubclassOf(other *ClassDefinition) bool {
	for def := c; def != nil; def = def.Superclass {
		if def == other {
			return true
		}
	}
	return false
}

// BeginStaticInit reports whether the caller should run the static initializers
// now. It returns false when they already ran or are running.
func (c *ClassDefinition) BeginStaticInit() bool {
	if c.state != staticsPending {
		return false
	}
	c.state = staticsRunning
	return true
}

func (c *ClassDefinition) FinishStaticInit() { c.state = staticsReady }

func (c *ClassDefinition) StaticsReady() bool { return c.state == staticsReady }

// ClassRegistry holds one definition per class name.
type ClassRegistry struct {
	classes map[string]*ClassDefinition
}

func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: make(map[string]*ClassDefinition)}
}

// Register adds a definition. Registering the same declaration twice is a no-op;
// a different declaration under a taken name is an error.
func (r *ClassRegistry) Register(def *ClassDefinition) (*ClassDefinition, error) {
	if existing, ok := r.classes[def.Name]; ok {
		if existing.Declaration == def.Declaration {
			return existing, nil
		}
		return nil, fmt.Errorf("class '%s' is already defined", def.Name)
	}
	r.classes[def.Name] = def
	return def, nil
}

func (r *ClassRegistry) Lookup(name string) (*ClassDefinition, bool) {
	def, ok := r.classes[name]
	return def, ok
}

// Names returns the registered class names in sorted order.
func (r *ClassRegistry) Names() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve links every definition to its superclass. Unknown superclasses and
// inheritance cycles are errors; after a successful Resolve every non-empty
// SuperclassName has a matching Superclass pointer.
func (r *ClassRegistry) Resolve() error {
	for _, name := range r.Names() {
		def := r.classes[name]
		if def.SuperclassName == "" {
			continue
		}
		super, ok := r.classes[def.SuperclassName]
		if !ok {
			return fmt.Errorf("unknown superclass '%s' for class '%s'", def.SuperclassName, def.Name)
		}
		def.Superclass = super
	}
	for _, name := range r.Names() {
		seen := map[*ClassDefinition]bool{}
		for def := r.classes[name]; def != nil; def = def.Superclass {
			if seen[def] {
				return fmt.Errorf("inheritance cycle through class '%s'", name)
			}
			seen[def] = true
		}
	}
	return nil
}

package typechecker

import (
	"sort"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
)

type ParameterSymbol struct {
	Name    string
	Type    Type
	Default ast.Expression
}

type MethodSymbol struct {
	Name           string
	OwnerClass     *ClassSymbol
	OwnerInterface *InterfaceSymbol
	TypeParams     []TypeVariable
	Parameters     []*ParameterSymbol
	ReturnType     Type
	Modifiers      ast.Modifiers
	Body           *ast.BlockStatement
	Declaration    *ast.MethodDeclaration
	Annotations    ast.Annotations
}

func (m *MethodSymbol) IsStatic() bool  { return m.Modifiers.IsStatic() }
func (m *MethodSymbol) IsPrivate() bool { return m.Modifiers.IsPrivate() }

func (m *MethodSymbol) OwnerName() string {
	switch {
	case m.OwnerClass != nil:
		return m.OwnerClass.Name
	case m.OwnerInterface != nil:
		return m.OwnerInterface.Name
	}
	return ""
}

// requiredParameters counts leading parameters without defaults.
func (m *MethodSymbol) requiredParameters() int {
	n := 0
	for _, p := range m.Parameters {
		if p.Default == nil {
			n++
		}
	}
	return n
}

type FieldSymbol struct {
	Name        string
	Owner       *ClassSymbol
	Type        Type
	Modifiers   ast.Modifiers
	Initializer ast.Expression
	Declaration *ast.FieldDeclaration
}

func (f *FieldSymbol) IsStatic() bool   { return f.Modifiers.IsStatic() }
func (f *FieldSymbol) IsPrivate() bool  { return f.Modifiers.IsPrivate() }
func (f *FieldSymbol) IsReadonly() bool { return f.Modifiers.IsReadonly() }

type ClassSymbol struct {
	Name           string
	Index          int
	Declaration    *ast.ClassDeclaration
	TypeParams     []TypeVariable
	Superclass     *ClassSymbol
	SuperRef       *ClassRef
	Implements     []InterfaceRef
	Fields         map[string]*FieldSymbol
	StaticFields   map[string]*FieldSymbol
	FieldOrder     []string
	Methods        map[string]*MethodSymbol
	StaticMethods  map[string]*MethodSymbol
	Constructor    *MethodSymbol
	Native         bool
	Annotations    ast.Annotations
	superclassName string
}

func newClassSymbol(decl *ast.ClassDeclaration, index int) *ClassSymbol {
	return &ClassSymbol{
		Name:          decl.ID.Name,
		Index:         index,
		Declaration:   decl,
		Fields:        make(map[string]*FieldSymbol),
		StaticFields:  make(map[string]*FieldSymbol),
		Methods:       make(map[string]*MethodSymbol),
		StaticMethods: make(map[string]*MethodSymbol),
		Native:        decl.Native,
		Annotations:   decl.Annotations,
	}
}

// SelfType is the class applied to its own type parameters, the type of `this`.
func (c *ClassSymbol) SelfType() ClassRef {
	args := make([]Type, len(c.TypeParams))
	for i, p := range c.TypeParams {
		args[i] = p
	}
	return ClassRef{Symbol: c, Arguments: args}
}

// FindMethod looks up an instance method through the superclass chain. The
// returned owner is the class that declares it.
func (c *ClassSymbol) FindMethod(name string) (*MethodSymbol, bool) {
	for cls, depth := c, 0; cls != nil && depth <= maxHierarchyDepth; cls, depth = cls.Superclass, depth+1 {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *ClassSymbol) FindField(name string) (*FieldSymbol, bool) {
	for cls, depth := c, 0; cls != nil && depth <= maxHierarchyDepth; cls, depth = cls.Superclass, depth+1 {
		if f, ok := cls.Fields[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// FindConstructor returns the nearest constructor, own or inherited.
func (c *ClassSymbol) FindConstructor() *MethodSymbol {
	for cls, depth := c, 0; cls != nil && depth <= maxHierarchyDepth; cls, depth = cls.Superclass, depth+1 {
		if cls.Constructor != nil {
			return cls.Constructor
		}
	}
	return nil
}

func (c *ClassSymbol) IsSubclassOf(other *ClassSymbol) bool {
	for cls, depth := c, 0; cls != nil && depth <= maxHierarchyDepth; cls, depth = cls.Superclass, depth+1 {
		if cls == other {
			return true
		}
	}
	return false
}

type InterfaceSymbol struct {
	Name        string
	Index       int
	Declaration *ast.InterfaceDeclaration
	TypeParams  []TypeVariable
	Extends     []InterfaceRef
	Methods     map[string]*MethodSymbol
	Native      bool
}

func newInterfaceSymbol(decl *ast.InterfaceDeclaration, index int) *InterfaceSymbol {
	return &InterfaceSymbol{
		Name:        decl.ID.Name,
		Index:       index,
		Declaration: decl,
		Methods:     make(map[string]*MethodSymbol),
		Native:      decl.Native,
	}
}

// interfaceMethod pairs a method with the bindings that express it in terms of a
// particular InterfaceRef.
type interfaceMethod struct {
	method   *MethodSymbol
	bindings Substitution
}

// AllMethods returns the methods of ref including inherited ones, each with the
// substitution that instantiates it for ref's arguments. Own methods shadow
// inherited ones.
func (i *InterfaceSymbol) AllMethods(ref InterfaceRef) map[string]interfaceMethod {
	out := make(map[string]interfaceMethod)
	var visit func(r InterfaceRef, depth int)
	visit = func(r InterfaceRef, depth int) {
		if depth > maxHierarchyDepth {
			return
		}
		bindings := bindingsFor(r.Symbol.TypeParams, r.Arguments)
		for name, m := range r.Symbol.Methods {
			if _, seen := out[name]; !seen {
				out[name] = interfaceMethod{method: m, bindings: bindings}
			}
		}
		for _, base := range r.Symbol.Extends {
			if next, ok := substituteType(base, bindings).(InterfaceRef); ok {
				visit(next, depth+1)
			}
		}
	}
	visit(ref, 0)
	return out
}

// SymbolTable holds every class, interface and native function of one program.
// The class hierarchy is kept as an index graph: superOf[i] is the index of class
// i's superclass or -1.
type SymbolTable struct {
	classes    map[string]*ClassSymbol
	interfaces map[string]*InterfaceSymbol
	classList  []*ClassSymbol
	ifaceList  []*InterfaceSymbol
	functions  map[string]*MethodSymbol
	superOf    []int
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		classes:    make(map[string]*ClassSymbol),
		interfaces: make(map[string]*InterfaceSymbol),
		functions:  make(map[string]*MethodSymbol),
	}
}

func (s *SymbolTable) Class(name string) (*ClassSymbol, bool) {
	c, ok := s.classes[name]
	return c, ok
}

func (s *SymbolTable) Interface(name string) (*InterfaceSymbol, bool) {
	i, ok := s.interfaces[name]
	return i, ok
}

func (s *SymbolTable) Function(name string) (*MethodSymbol, bool) {
	f, ok := s.functions[name]
	return f, ok
}

// Classes returns the classes in registration order.
func (s *SymbolTable) Classes() []*ClassSymbol { return s.classList }

func (s *SymbolTable) Interfaces() []*InterfaceSymbol { return s.ifaceList }

func (s *SymbolTable) FunctionNames() []string {
	names := make([]string, 0, len(s.functions))
	for name := range s.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// registerClass is idempotent for the same declaration node.
func (s *SymbolTable) registerClass(decl *ast.ClassDeclaration) (*ClassSymbol, bool) {
	if existing, ok := s.classes[decl.ID.Name]; ok {
		return existing, existing.Declaration == decl
	}
	sym := newClassSymbol(decl, len(s.classList))
	s.classes[sym.Name] = sym
	s.classList = append(s.classList, sym)
	return sym, true
}

func (s *SymbolTable) registerInterface(decl *ast.InterfaceDeclaration) (*InterfaceSymbol, bool) {
	if existing, ok := s.interfaces[decl.ID.Name]; ok {
		return existing, existing.Declaration == decl
	}
	sym := newInterfaceSymbol(decl, len(s.ifaceList))
	s.interfaces[sym.Name] = sym
	s.ifaceList = append(s.ifaceList, sym)
	return sym, true
}

// hierarchyProblem describes a class whose superclass link cannot be used.
type hierarchyProblem struct {
	class   *ClassSymbol
	message string
}

// resolveHierarchy builds superOf from the recorded superclass names and sets the
// Superclass pointers. Classes with a missing superclass or on an inheritance
// cycle keep a nil pointer and are reported.
func (s *SymbolTable) resolveHierarchy() []hierarchyProblem {
	var problems []hierarchyProblem
	s.superOf = make([]int, len(s.classList))
	for i, cls := range s.classList {
		s.superOf[i] = -1
		if cls.superclassName == "" {
			continue
		}
		if super, ok := s.classes[cls.superclassName]; ok {
			s.superOf[i] = super.Index
			continue
		}
		if _, isInterface := s.interfaces[cls.superclassName]; isInterface {
			problems = append(problems, hierarchyProblem{cls, "class '" + cls.Name + "' cannot extend interface '" + cls.superclassName + "' (use implements)"})
		} else {
			problems = append(problems, hierarchyProblem{cls, "unknown superclass '" + cls.superclassName + "' for class '" + cls.Name + "'"})
		}
	}

	// Walk each chain over indices; revisiting a node means a cycle.
	onCycle := make([]bool, len(s.classList))
	for start := range s.classList {
		seen := map[int]bool{}
		for i := start; i >= 0; i = s.superOf[i] {
			if seen[i] {
				onCycle[start] = true
				break
			}
			seen[i] = true
		}
	}
	for i, cycle := range onCycle {
		if cycle {
			problems = append(problems, hierarchyProblem{s.classList[i], "inheritance cycle through class '" + s.classList[i].Name + "'"})
			s.superOf[i] = -1
		}
	}
	for i, cls := range s.classList {
		if s.superOf[i] >= 0 {
			cls.Superclass = s.classList[s.superOf[i]]
		} else {
			cls.Superclass = nil
			cls.SuperRef = nil
		}
	}
	return problems
}

package driver

import (
	"fmt"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
	"github.com/tonirenner/lyrascript-sub001/pkg/parser"
)

// Module is one parsed source: a user file or a native signature fragment.
type Module struct {
	Path    string
	Source  string
	AST     *ast.Program
	Imports []string
	Native  bool
}

// NativeFunction pairs a host function with its parsed signature.
type NativeFunction struct {
	Function    *native.Function
	Declaration *ast.MethodDeclaration
}

// Program is the linked result handed to the checker and the evaluator: every
// class and interface reachable from the entry, merged into one namespace.
type Program struct {
	Entry      *Module
	Modules    []*Module
	Classes    []*ast.ClassDeclaration
	Interfaces []*ast.InterfaceDeclaration
	Functions  []*NativeFunction
	Natives    *native.Registry
	Sources    diagnostics.Sources
}

// Statements returns the entry module's executable top-level statements. Top-level
// statements of imported modules never run.
func (p *Program) Statements() []ast.Statement {
	if p == nil || p.Entry == nil || p.Entry.AST == nil {
		return nil
	}
	return p.Entry.AST.Statements()
}

// NativeClass returns the host table for a native class declaration.
func (p *Program) NativeClass(decl *ast.ClassDeclaration) *native.Class {
	if p == nil || decl == nil || !decl.Native {
		return nil
	}
	class, _ := p.Natives.Class(decl.ID.Name)
	return class
}

// Class finds a merged class declaration by name.
func (p *Program) Class(name string) (*ast.ClassDeclaration, bool) {
	for _, decl := range p.Classes {
		if decl.ID.Name == name {
			return decl, true
		}
	}
	return nil, false
}

// Link merges modules (dependency order, entry last) into a Program. Declaring
// one name twice in different places is an error.
func Link(entry *Module, modules []*Module, natives *native.Registry) (*Program, error) {
	if entry == nil {
		return nil, fmt.Errorf("linker: entry module is nil")
	}
	program := &Program{
		Entry:   entry,
		Modules: modules,
		Natives: natives,
		Sources: make(diagnostics.Sources),
	}
	owners := make(map[string]*Module)
	declare := func(mod *Module, name string, node ast.Node) error {
		if prev, ok := owners[name]; ok {
			return diagnostics.New(diagnostics.KindType, node.Span(), "duplicate declaration of '%s' (already declared in %s)", name, prev.Path)
		}
		owners[name] = mod
		return nil
	}
	for _, mod := range modules {
		program.Sources[mod.Path] = mod.Source
		if mod.AST == nil {
			continue
		}
		for _, decl := range mod.AST.Interfaces() {
			if err := declare(mod, decl.ID.Name, decl); err != nil {
				return nil, err
			}
			program.Interfaces = append(program.Interfaces, decl)
		}
		for _, decl := range mod.AST.Classes() {
			if err := declare(mod, decl.ID.Name, decl); err != nil {
				return nil, err
			}
			program.Classes = append(program.Classes, decl)
		}
	}
	if natives != nil {
		for _, fn := range natives.Functions() {
			decl, err := parser.ParseSignature("<native:"+fn.Name+">", fn.Signature)
			if err != nil {
				return nil, fmt.Errorf("linker: native function %s: %w", fn.Name, err)
			}
			program.Functions = append(program.Functions, &NativeFunction{Function: fn, Declaration: decl})
		}
	}
	return program, nil
}

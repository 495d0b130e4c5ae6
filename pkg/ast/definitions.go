package ast

// Definitions

type Modifier string

const (
	ModifierPublic   Modifier = "public"
	ModifierPrivate  Modifier = "private"
	ModifierStatic   Modifier = "static"
	ModifierReadonly Modifier = "readonly"
	ModifierOpen     Modifier = "open"
)

func IsModifier(word string) bool {
	switch Modifier(word) {
	case ModifierPublic, ModifierPrivate, ModifierStatic, ModifierReadonly, ModifierOpen:
		return true
	}
	return false
}

type Modifiers []Modifier

func (m Modifiers) Has(mod Modifier) bool {
	for _, candidate := range m {
		if candidate == mod {
			return true
		}
	}
	return false
}

func (m Modifiers) IsStatic() bool   { return m.Has(ModifierStatic) }
func (m Modifiers) IsPrivate() bool  { return m.Has(ModifierPrivate) }
func (m Modifiers) IsReadonly() bool { return m.Has(ModifierReadonly) }

// AnnotationArgument keeps the raw token text; consumers interpret it with a
// permissive cast.
type AnnotationArgument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Annotation struct {
	nodeImpl

	Name      *Identifier          `json:"name"`
	Arguments []AnnotationArgument `json:"arguments,omitempty"`
}

func NewAnnotation(name *Identifier, arguments []AnnotationArgument) *Annotation {
	return &Annotation{nodeImpl: newNodeImpl(NodeAnnotation), Name: name, Arguments: arguments}
}

func (a *Annotation) Argument(name string) (string, bool) {
	for _, arg := range a.Arguments {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return "", false
}

type Annotations []*Annotation

func (a Annotations) Find(name string) *Annotation {
	for _, ann := range a {
		if ann != nil && ann.Name != nil && ann.Name.Name == name {
			return ann
		}
	}
	return nil
}

type TypeParameter struct {
	nodeImpl

	Name *Identifier `json:"name"`
}

func NewTypeParameter(name *Identifier) *TypeParameter {
	return &TypeParameter{nodeImpl: newNodeImpl(NodeTypeParameter), Name: name}
}

type Parameter struct {
	nodeImpl

	Name           *Identifier    `json:"name"`
	TypeAnnotation TypeExpression `json:"typeAnnotation,omitempty"`
	Default        Expression     `json:"default,omitempty"`
}

func NewParameter(name *Identifier, typeAnnotation TypeExpression, defaultValue Expression) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, TypeAnnotation: typeAnnotation, Default: defaultValue}
}

type FieldDeclaration struct {
	nodeImpl

	Name           *Identifier    `json:"name"`
	TypeAnnotation TypeExpression `json:"typeAnnotation,omitempty"`
	Initializer    Expression     `json:"initializer,omitempty"`
	Modifiers      Modifiers      `json:"modifiers,omitempty"`
	Annotations    Annotations    `json:"annotations,omitempty"`
}

func NewFieldDeclaration(name *Identifier, typeAnnotation TypeExpression, initializer Expression, modifiers Modifiers) *FieldDeclaration {
	return &FieldDeclaration{nodeImpl: newNodeImpl(NodeFieldDeclaration), Name: name, TypeAnnotation: typeAnnotation, Initializer: initializer, Modifiers: modifiers}
}

// MethodDeclaration also represents constructors and interface or native
// signatures; Body is nil for the latter two.
type MethodDeclaration struct {
	nodeImpl

	Name           *Identifier      `json:"name"`
	TypeParameters []*TypeParameter `json:"typeParameters,omitempty"`
	Parameters     []*Parameter     `json:"parameters"`
	ReturnType     TypeExpression   `json:"returnType,omitempty"`
	Body           *BlockStatement  `json:"body,omitempty"`
	Modifiers      Modifiers        `json:"modifiers,omitempty"`
	Annotations    Annotations      `json:"annotations,omitempty"`
	IsConstructor  bool             `json:"isConstructor,omitempty"`
}

func NewMethodDeclaration(name *Identifier, typeParams []*TypeParameter, params []*Parameter, returnType TypeExpression, body *BlockStatement, modifiers Modifiers) *MethodDeclaration {
	return &MethodDeclaration{nodeImpl: newNodeImpl(NodeMethodDeclaration), Name: name, TypeParameters: typeParams, Parameters: params, ReturnType: returnType, Body: body, Modifiers: modifiers}
}

const ConstructorName = "constructor"

func NewConstructorDeclaration(params []*Parameter, body *BlockStatement, modifiers Modifiers) *MethodDeclaration {
	decl := NewMethodDeclaration(NewIdentifier(ConstructorName), nil, params, nil, body, modifiers)
	decl.IsConstructor = true
	return decl
}

type ClassDeclaration struct {
	nodeImpl
	statementMarker

	ID             *Identifier          `json:"id"`
	TypeParameters []*TypeParameter     `json:"typeParameters,omitempty"`
	Superclass     TypeExpression       `json:"superclass,omitempty"`
	Implements     []TypeExpression     `json:"implements,omitempty"`
	Fields         []*FieldDeclaration  `json:"fields"`
	Methods        []*MethodDeclaration `json:"methods"`
	Constructor    *MethodDeclaration   `json:"constructor,omitempty"`
	Modifiers      Modifiers            `json:"modifiers,omitempty"`
	Annotations    Annotations          `json:"annotations,omitempty"`
	Native         bool                 `json:"native,omitempty"`
}

func NewClassDeclaration(id *Identifier, typeParams []*TypeParameter, superclass TypeExpression, implements []TypeExpression, fields []*FieldDeclaration, methods []*MethodDeclaration, constructor *MethodDeclaration, modifiers Modifiers) *ClassDeclaration {
	return &ClassDeclaration{nodeImpl: newNodeImpl(NodeClassDeclaration), ID: id, TypeParameters: typeParams, Superclass: superclass, Implements: implements, Fields: fields, Methods: methods, Constructor: constructor, Modifiers: modifiers}
}

type InterfaceDeclaration struct {
	nodeImpl
	statementMarker

	ID             *Identifier          `json:"id"`
	TypeParameters []*TypeParameter     `json:"typeParameters,omitempty"`
	Extends        []TypeExpression     `json:"extends,omitempty"`
	Methods        []*MethodDeclaration `json:"methods"`
	Annotations    Annotations          `json:"annotations,omitempty"`
	Native         bool                 `json:"native,omitempty"`
}

func NewInterfaceDeclaration(id *Identifier, typeParams []*TypeParameter, extends []TypeExpression, methods []*MethodDeclaration) *InterfaceDeclaration {
	return &InterfaceDeclaration{nodeImpl: newNodeImpl(NodeInterfaceDeclaration), ID: id, TypeParameters: typeParams, Extends: extends, Methods: methods}
}

// TypeExpressionName returns the base identifier of a named type expression.
func TypeExpressionName(expr TypeExpression) string {
	switch t := expr.(type) {
	case *SimpleTypeExpression:
		if t.Name != nil {
			return t.Name.Name
		}
	case *GenericTypeExpression:
		if t.Base != nil {
			return t.Base.Name
		}
	case *NullableTypeExpression:
		return TypeExpressionName(t.InnerType)
	}
	return ""
}

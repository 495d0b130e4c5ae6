package ast

type NodeType string

const (
	NodeIdentifier             NodeType = "Identifier"
	NodeThisExpression         NodeType = "ThisExpression"
	NodeSuperExpression        NodeType = "SuperExpression"
	NodeNumberLiteral          NodeType = "NumberLiteral"
	NodeStringLiteral          NodeType = "StringLiteral"
	NodeBooleanLiteral         NodeType = "BooleanLiteral"
	NodeNullLiteral            NodeType = "NullLiteral"
	NodeArrayLiteral           NodeType = "ArrayLiteral"
	NodeSimpleTypeExpression   NodeType = "SimpleTypeExpression"
	NodeGenericTypeExpression  NodeType = "GenericTypeExpression"
	NodeLambdaTypeExpression   NodeType = "LambdaTypeExpression"
	NodeNullableTypeExpression NodeType = "NullableTypeExpression"
	NodeUnaryExpression        NodeType = "UnaryExpression"
	NodeBinaryExpression       NodeType = "BinaryExpression"
	NodeAssignmentExpression   NodeType = "AssignmentExpression"
	NodeMemberAccessExpression NodeType = "MemberAccessExpression"
	NodeIndexExpression        NodeType = "IndexExpression"
	NodeCallExpression         NodeType = "CallExpression"
	NodeNewExpression          NodeType = "NewExpression"
	NodeLambdaExpression       NodeType = "LambdaExpression"
	NodeLetStatement           NodeType = "LetStatement"
	NodeBlockStatement         NodeType = "BlockStatement"
	NodeIfStatement            NodeType = "IfStatement"
	NodeMatchArm               NodeType = "MatchArm"
	NodeMatchStatement         NodeType = "MatchStatement"
	NodeForeachStatement       NodeType = "ForeachStatement"
	NodeReturnStatement        NodeType = "ReturnStatement"
	NodeAnnotation             NodeType = "Annotation"
	NodeTypeParameter          NodeType = "TypeParameter"
	NodeParameter              NodeType = "Parameter"
	NodeFieldDeclaration       NodeType = "FieldDeclaration"
	NodeMethodDeclaration      NodeType = "MethodDeclaration"
	NodeClassDeclaration       NodeType = "ClassDeclaration"
	NodeInterfaceDeclaration   NodeType = "InterfaceDeclaration"
	NodeImportStatement        NodeType = "ImportStatement"
	NodeProgram                NodeType = "Program"
)

type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type nodeImpl struct {
	Type    NodeType `json:"type"`
	SrcSpan Span     `json:"span,omitempty"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.SrcSpan }
func (n *nodeImpl) setSpan(span Span) { n.SrcSpan = span }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

type TypeExpression interface {
	Node
	typeExpressionNode()
}

type typeExpressionMarker struct{}

func (typeExpressionMarker) typeExpressionNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

type AssignmentTarget interface {
	Expression
	assignmentTargetNode()
}

type assignmentTargetMarker struct{}

func (assignmentTargetMarker) assignmentTargetNode() {}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

type ThisExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewThisExpression() *ThisExpression {
	return &ThisExpression{nodeImpl: newNodeImpl(NodeThisExpression)}
}

// SuperExpression is only valid as a callee (`super(...)`) or as the object of a
// member access (`super.method(...)`).
type SuperExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewSuperExpression() *SuperExpression {
	return &SuperExpression{nodeImpl: newNodeImpl(NodeSuperExpression)}
}

// Literals

type NumberLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewNumberLiteral(value float64) *NumberLiteral {
	return &NumberLiteral{nodeImpl: newNodeImpl(NodeNumberLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type NullLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{nodeImpl: newNodeImpl(NodeNullLiteral)}
}

type ArrayLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Elements []Expression `json:"elements"`
}

func NewArrayLiteral(elements []Expression) *ArrayLiteral {
	return &ArrayLiteral{nodeImpl: newNodeImpl(NodeArrayLiteral), Elements: elements}
}

// Type expressions

type SimpleTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Name *Identifier `json:"name"`
}

func NewSimpleTypeExpression(name *Identifier) *SimpleTypeExpression {
	return &SimpleTypeExpression{nodeImpl: newNodeImpl(NodeSimpleTypeExpression), Name: name}
}

type GenericTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	Base      *Identifier      `json:"base"`
	Arguments []TypeExpression `json:"arguments"`
}

func NewGenericTypeExpression(base *Identifier, arguments []TypeExpression) *GenericTypeExpression {
	return &GenericTypeExpression{nodeImpl: newNodeImpl(NodeGenericTypeExpression), Base: base, Arguments: arguments}
}

type LambdaTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	ParamTypes []TypeExpression `json:"paramTypes"`
	ReturnType TypeExpression   `json:"returnType"`
}

func NewLambdaTypeExpression(paramTypes []TypeExpression, returnType TypeExpression) *LambdaTypeExpression {
	return &LambdaTypeExpression{nodeImpl: newNodeImpl(NodeLambdaTypeExpression), ParamTypes: paramTypes, ReturnType: returnType}
}

type NullableTypeExpression struct {
	nodeImpl
	typeExpressionMarker

	InnerType TypeExpression `json:"innerType"`
}

func NewNullableTypeExpression(inner TypeExpression) *NullableTypeExpression {
	return &NullableTypeExpression{nodeImpl: newNodeImpl(NodeNullableTypeExpression), InnerType: inner}
}

// Expressions

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Operand  Expression `json:"operand"`
}

func NewUnaryExpression(operator string, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type AssignmentExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Target AssignmentTarget `json:"target"`
	Value  Expression       `json:"value"`
}

func NewAssignmentExpression(target AssignmentTarget, value Expression) *AssignmentExpression {
	return &AssignmentExpression{nodeImpl: newNodeImpl(NodeAssignmentExpression), Target: target, Value: value}
}

type MemberAccessExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object Expression  `json:"object"`
	Member *Identifier `json:"member"`
}

func NewMemberAccessExpression(object Expression, member *Identifier) *MemberAccessExpression {
	return &MemberAccessExpression{nodeImpl: newNodeImpl(NodeMemberAccessExpression), Object: object, Member: member}
}

type IndexExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
	assignmentTargetMarker

	Object Expression `json:"object"`
	Index  Expression `json:"index"`
}

func NewIndexExpression(object, index Expression) *IndexExpression {
	return &IndexExpression{nodeImpl: newNodeImpl(NodeIndexExpression), Object: object, Index: index}
}

type CallExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee        Expression       `json:"callee"`
	TypeArguments []TypeExpression `json:"typeArguments,omitempty"`
	Arguments     []Expression     `json:"arguments"`
}

func NewCallExpression(callee Expression, arguments []Expression, typeArguments []TypeExpression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCallExpression), Callee: callee, Arguments: arguments, TypeArguments: typeArguments}
}

type NewExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	ClassName     *Identifier      `json:"className"`
	TypeArguments []TypeExpression `json:"typeArguments,omitempty"`
	Arguments     []Expression     `json:"arguments"`
}

func NewNewExpression(className *Identifier, typeArguments []TypeExpression, arguments []Expression) *NewExpression {
	return &NewExpression{nodeImpl: newNodeImpl(NodeNewExpression), ClassName: className, TypeArguments: typeArguments, Arguments: arguments}
}

// LambdaExpression evaluates to the value of its first executed return, else the
// value of a trailing expression statement, else null.
type LambdaExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Parameters []*Parameter `json:"parameters"`
	Body       []Statement  `json:"body"`
}

func NewLambdaExpression(parameters []*Parameter, body []Statement) *LambdaExpression {
	return &LambdaExpression{nodeImpl: newNodeImpl(NodeLambdaExpression), Parameters: parameters, Body: body}
}

// Statements

type LetStatement struct {
	nodeImpl
	statementMarker

	Name           *Identifier    `json:"name"`
	TypeAnnotation TypeExpression `json:"typeAnnotation,omitempty"`
	Value          Expression     `json:"value,omitempty"`
}

func NewLetStatement(name *Identifier, typeAnnotation TypeExpression, value Expression) *LetStatement {
	return &LetStatement{nodeImpl: newNodeImpl(NodeLetStatement), Name: name, TypeAnnotation: typeAnnotation, Value: value}
}

type BlockStatement struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewBlockStatement(body []Statement) *BlockStatement {
	return &BlockStatement{nodeImpl: newNodeImpl(NodeBlockStatement), Body: body}
}

// IfStatement.Alternate is nil, a *BlockStatement, or a nested *IfStatement.
type IfStatement struct {
	nodeImpl
	statementMarker

	Condition  Expression      `json:"condition"`
	Consequent *BlockStatement `json:"consequent"`
	Alternate  Statement       `json:"alternate,omitempty"`
}

func NewIfStatement(condition Expression, consequent *BlockStatement, alternate Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Consequent: consequent, Alternate: alternate}
}

type MatchArm struct {
	nodeImpl

	Patterns []Expression `json:"patterns"`
	Body     Statement    `json:"body"`
}

func NewMatchArm(patterns []Expression, body Statement) *MatchArm {
	return &MatchArm{nodeImpl: newNodeImpl(NodeMatchArm), Patterns: patterns, Body: body}
}

type MatchStatement struct {
	nodeImpl
	statementMarker

	Subject Expression  `json:"subject"`
	Arms    []*MatchArm `json:"arms"`
	Default Statement   `json:"default,omitempty"`
}

func NewMatchStatement(subject Expression, arms []*MatchArm, defaultBody Statement) *MatchStatement {
	return &MatchStatement{nodeImpl: newNodeImpl(NodeMatchStatement), Subject: subject, Arms: arms, Default: defaultBody}
}

type ForeachStatement struct {
	nodeImpl
	statementMarker

	Variable       *Identifier     `json:"variable"`
	TypeAnnotation TypeExpression  `json:"typeAnnotation,omitempty"`
	Iterable       Expression      `json:"iterable"`
	Body           *BlockStatement `json:"body"`
}

func NewForeachStatement(variable *Identifier, typeAnnotation TypeExpression, iterable Expression, body *BlockStatement) *ForeachStatement {
	return &ForeachStatement{nodeImpl: newNodeImpl(NodeForeachStatement), Variable: variable, TypeAnnotation: typeAnnotation, Iterable: iterable, Body: body}
}

type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

// ImportStatement covers `import Name` (native, Source empty) and
// `import {A, B} from "path"`.
type ImportStatement struct {
	nodeImpl
	statementMarker

	Names  []*Identifier `json:"names"`
	Source string        `json:"source,omitempty"`
}

func NewImportStatement(names []*Identifier, source string) *ImportStatement {
	return &ImportStatement{nodeImpl: newNodeImpl(NodeImportStatement), Names: names, Source: source}
}

func (s *ImportStatement) IsNative() bool { return s.Source == "" }

// Program is the root produced for one source file.
type Program struct {
	nodeImpl

	Source  string             `json:"source"`
	Imports []*ImportStatement `json:"imports"`
	Body    []Statement        `json:"body"`
}

func NewProgram(source string, imports []*ImportStatement, body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Source: source, Imports: imports, Body: body}
}

// Classes returns the class declarations in source order.
func (p *Program) Classes() []*ClassDeclaration {
	var out []*ClassDeclaration
	for _, stmt := range p.Body {
		if decl, ok := stmt.(*ClassDeclaration); ok {
			out = append(out, decl)
		}
	}
	return out
}

func (p *Program) Interfaces() []*InterfaceDeclaration {
	var out []*InterfaceDeclaration
	for _, stmt := range p.Body {
		if decl, ok := stmt.(*InterfaceDeclaration); ok {
			out = append(out, decl)
		}
	}
	return out
}

// Statements returns the executable top-level statements, skipping declarations.
func (p *Program) Statements() []Statement {
	var out []Statement
	for _, stmt := range p.Body {
		switch stmt.(type) {
		case *ClassDeclaration, *InterfaceDeclaration:
			continue
		}
		out = append(out, stmt)
	}
	return out
}

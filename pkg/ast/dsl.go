package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Num(value float64) *NumberLiteral {
	return NewNumberLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Null() *NullLiteral {
	return NewNullLiteral()
}

func Arr(elements ...Expression) *ArrayLiteral {
	return NewArrayLiteral(elements)
}

func This() *ThisExpression {
	return NewThisExpression()
}

func Super() *SuperExpression {
	return NewSuperExpression()
}

// Type expression helpers.

func Ty(name string) *SimpleTypeExpression {
	return NewSimpleTypeExpression(ID(name))
}

func Gen(base string, args ...TypeExpression) *GenericTypeExpression {
	return NewGenericTypeExpression(ID(base), args)
}

func LamType(params []TypeExpression, returnType TypeExpression) *LambdaTypeExpression {
	return NewLambdaTypeExpression(params, returnType)
}

func Nullable(inner TypeExpression) *NullableTypeExpression {
	return NewNullableTypeExpression(inner)
}

func TypeParams(names ...string) []*TypeParameter {
	out := make([]*TypeParameter, 0, len(names))
	for _, name := range names {
		out = append(out, NewTypeParameter(ID(name)))
	}
	return out
}

// Expression helpers.

func Un(operator string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(operator, operand)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Assign(target AssignmentTarget, value Expression) *AssignmentExpression {
	return NewAssignmentExpression(target, value)
}

func Member(object Expression, member interface{}) *MemberAccessExpression {
	return NewMemberAccessExpression(object, identifierPtr(member))
}

func Index(object, index Expression) *IndexExpression {
	return NewIndexExpression(object, index)
}

func CallExpr(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args, nil)
}

func Call(name string, args ...Expression) *CallExpression {
	return NewCallExpression(ID(name), args, nil)
}

func CallT(callee Expression, typeArgs []TypeExpression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, args, typeArgs)
}

// MethodCall builds `object.method(args...)`.
func MethodCall(object Expression, method string, args ...Expression) *CallExpression {
	return NewCallExpression(Member(object, method), args, nil)
}

func New(className string, typeArgs []TypeExpression, args ...Expression) *NewExpression {
	return NewNewExpression(ID(className), typeArgs, args)
}

func Lam(params []*Parameter, body ...Statement) *LambdaExpression {
	return NewLambdaExpression(params, body)
}

// Statement helpers.

func Let(name interface{}, typeAnnotation TypeExpression, value Expression) *LetStatement {
	return NewLetStatement(identifierPtr(name), typeAnnotation, value)
}

func Block(statements ...Statement) *BlockStatement {
	return NewBlockStatement(statements)
}

func If(condition Expression, consequent *BlockStatement, alternate Statement) *IfStatement {
	return NewIfStatement(condition, consequent, alternate)
}

func Arm(body Statement, patterns ...Expression) *MatchArm {
	return NewMatchArm(patterns, body)
}

func Match(subject Expression, defaultBody Statement, arms ...*MatchArm) *MatchStatement {
	return NewMatchStatement(subject, arms, defaultBody)
}

func Foreach(variable interface{}, iterable Expression, statements ...Statement) *ForeachStatement {
	return NewForeachStatement(identifierPtr(variable), nil, iterable, Block(statements...))
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func Import(source string, names ...string) *ImportStatement {
	ids := make([]*Identifier, 0, len(names))
	for _, name := range names {
		ids = append(ids, ID(name))
	}
	return NewImportStatement(ids, source)
}

// Declaration helpers.

func Param(name interface{}, paramType TypeExpression) *Parameter {
	return NewParameter(identifierPtr(name), paramType, nil)
}

func ParamDefault(name interface{}, paramType TypeExpression, defaultValue Expression) *Parameter {
	return NewParameter(identifierPtr(name), paramType, defaultValue)
}

func Field(name interface{}, fieldType TypeExpression, initializer Expression, modifiers ...Modifier) *FieldDeclaration {
	return NewFieldDeclaration(identifierPtr(name), fieldType, initializer, modifiers)
}

func Method(name interface{}, params []*Parameter, returnType TypeExpression, body []Statement, modifiers ...Modifier) *MethodDeclaration {
	return NewMethodDeclaration(identifierPtr(name), nil, params, returnType, Block(body...), modifiers)
}

func Sig(name interface{}, params []*Parameter, returnType TypeExpression) *MethodDeclaration {
	return NewMethodDeclaration(identifierPtr(name), nil, params, returnType, nil, nil)
}

func Ctor(params []*Parameter, body ...Statement) *MethodDeclaration {
	return NewConstructorDeclaration(params, Block(body...), Modifiers{ModifierPublic})
}

// ClassSpec gathers the optional parts of a class declaration for Class.
type ClassSpec struct {
	TypeParams  []string
	Extends     TypeExpression
	Implements  []TypeExpression
	Fields      []*FieldDeclaration
	Methods     []*MethodDeclaration
	Constructor *MethodDeclaration
}

func Class(name interface{}, spec ClassSpec) *ClassDeclaration {
	return NewClassDeclaration(identifierPtr(name), TypeParams(spec.TypeParams...), spec.Extends, spec.Implements, spec.Fields, spec.Methods, spec.Constructor, nil)
}

func Iface(name interface{}, typeParams []string, methods ...*MethodDeclaration) *InterfaceDeclaration {
	return NewInterfaceDeclaration(identifierPtr(name), TypeParams(typeParams...), nil, methods)
}

func Prog(source string, statements ...Statement) *Program {
	var imports []*ImportStatement
	var body []Statement
	for _, stmt := range statements {
		if imp, ok := stmt.(*ImportStatement); ok {
			imports = append(imports, imp)
			continue
		}
		body = append(body, stmt)
	}
	return NewProgram(source, imports, body)
}

func identifierPtr(value interface{}) *Identifier {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case string:
		return ID(v)
	case *Identifier:
		return v
	default:
		panic("ast: expected string or *Identifier")
	}
}

package parser_test

import (
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	program, err := parser.ParseProgram("test.lyra", src)
	if err != nil {
		t.Fatalf("ParseProgram returned error: %v", err)
	}
	return program
}

func TestParseClassDeclaration(t *testing.T) {
	program := mustParse(t, `
// leading comment
@entity(table="boxes", version=2)
open class Box<T> extends Base implements Holder<T>, Named {
    private value: T;
    public static count: number = 0;
    public readonly label: string = "box";

    public constructor(value: T) {
        super();
        this.value = value;
    }

    /* block comment */
    public get(): T { return this.value; }

    public static make<U>(value: U, tag: string = "x"): Box<U> {
        return new Box<U>(value);
    }
}
`)
	classes := program.Classes()
	if len(classes) != 1 {
		t.Fatalf("expected one class, got %d", len(classes))
	}
	box := classes[0]
	if box.ID.Name != "Box" || len(box.TypeParameters) != 1 || box.TypeParameters[0].Name.Name != "T" {
		t.Fatalf("unexpected class header %#v", box.ID)
	}
	if !box.Modifiers.Has(ast.ModifierOpen) {
		t.Fatalf("expected open modifier, got %v", box.Modifiers)
	}
	if ast.TypeExpressionName(box.Superclass) != "Base" {
		t.Fatalf("expected superclass Base, got %#v", box.Superclass)
	}
	if len(box.Implements) != 2 {
		t.Fatalf("expected two implemented interfaces, got %d", len(box.Implements))
	}
	if generic, ok := box.Implements[0].(*ast.GenericTypeExpression); !ok || generic.Base.Name != "Holder" {
		t.Fatalf("expected Holder<T>, got %#v", box.Implements[0])
	}
	ann := box.Annotations.Find("entity")
	if ann == nil {
		t.Fatalf("expected entity annotation")
	}
	if v, _ := ann.Argument("table"); v != "boxes" {
		t.Fatalf("expected table=boxes, got %q", v)
	}
	if v, _ := ann.Argument("version"); v != "2" {
		t.Fatalf("expected version=2, got %q", v)
	}
	if len(box.Fields) != 3 {
		t.Fatalf("expected three fields, got %d", len(box.Fields))
	}
	if !box.Fields[0].Modifiers.IsPrivate() || !box.Fields[1].Modifiers.IsStatic() || !box.Fields[2].Modifiers.IsReadonly() {
		t.Fatalf("unexpected field modifiers")
	}
	if box.Constructor == nil || len(box.Constructor.Parameters) != 1 {
		t.Fatalf("expected constructor with one parameter")
	}
	if len(box.Methods) != 2 {
		t.Fatalf("expected two methods, got %d", len(box.Methods))
	}
	factory := box.Methods[1]
	if factory.Name.Name != "make" || len(factory.TypeParameters) != 1 || !factory.Modifiers.IsStatic() {
		t.Fatalf("unexpected static method %#v", factory.Name)
	}
	if factory.Parameters[1].Default == nil {
		t.Fatalf("expected default value on second parameter")
	}
	if box.Native {
		t.Fatalf("ordinary declarations must not be native")
	}
}

func TestParseInterfaceAndNativeFragment(t *testing.T) {
	program, err := parser.ParseNative("<native>", `
interface Iterable<T> extends Base { iterator(): Iterator<T>; }
class Counter { public constructor(start: number); public next(): number; }
`)
	if err != nil {
		t.Fatalf("ParseNative returned error: %v", err)
	}
	ifaces := program.Interfaces()
	if len(ifaces) != 1 || !ifaces[0].Native || len(ifaces[0].Extends) != 1 {
		t.Fatalf("unexpected interface %#v", ifaces)
	}
	if ifaces[0].Methods[0].Body != nil {
		t.Fatalf("interface signature must have no body")
	}
	counter := program.Classes()[0]
	if !counter.Native || counter.Constructor == nil || counter.Constructor.Body != nil {
		t.Fatalf("expected bodyless native constructor")
	}
	if counter.Methods[0].Body != nil {
		t.Fatalf("expected bodyless native method")
	}
}

func TestParseSignature(t *testing.T) {
	sig, err := parser.ParseSignature("<native>", `join<T>(items: Array<T>, sep: string = ","): string`)
	if err != nil {
		t.Fatalf("ParseSignature returned error: %v", err)
	}
	if sig.Name.Name != "join" || len(sig.TypeParameters) != 1 || len(sig.Parameters) != 2 {
		t.Fatalf("unexpected signature %#v", sig)
	}
	if sig.Parameters[1].Default == nil || sig.Body != nil {
		t.Fatalf("expected default on second parameter and no body")
	}
	if _, err := parser.ParseSignature("<native>", `f(): void { return; }`); err == nil {
		t.Fatalf("expected error for signature with body")
	}
	for _, src := range []string{`print(value: mixed): void`, `print(value: mixed): void;`, `now()`} {
		sig, err := parser.ParseSignature("<native>", src)
		if err != nil {
			t.Fatalf("ParseSignature(%q) returned error: %v", src, err)
		}
		if sig.Body != nil {
			t.Fatalf("ParseSignature(%q) produced a body", src)
		}
	}
	if _, err := parser.ParseSignature("<native>", `f(): void extra`); err == nil {
		t.Fatalf("expected error for trailing tokens")
	}
}

func TestParseImports(t *testing.T) {
	program := mustParse(t, `
import Console;
import {Box, Pair} from "./box.lyra";
let b = 1
`)
	if len(program.Imports) != 2 {
		t.Fatalf("expected two imports, got %d", len(program.Imports))
	}
	if !program.Imports[0].IsNative() || program.Imports[0].Names[0].Name != "Console" {
		t.Fatalf("unexpected native import %#v", program.Imports[0])
	}
	second := program.Imports[1]
	if second.Source != "./box.lyra" || len(second.Names) != 2 || second.Names[1].Name != "Pair" {
		t.Fatalf("unexpected module import %#v", second)
	}
	if len(program.Statements()) != 1 {
		t.Fatalf("expected one executable statement")
	}
}

func TestParseStatements(t *testing.T) {
	program := mustParse(t, `
let total: number = 0;
let maybe: string? = null;
foreach (item: number in [1, 2, 3]) { total = total + item; }
if (total > 3) { total = 1; } else if (total == 0) { total = 2; } else { total = 3; }
match (total) {
    1, 2 -> print("low");
    3 -> { print("three"); }
    default -> print("other")
}
`)
	stmts := program.Statements()
	if len(stmts) != 5 {
		t.Fatalf("expected five statements, got %d", len(stmts))
	}
	maybe := stmts[1].(*ast.LetStatement)
	if _, ok := maybe.TypeAnnotation.(*ast.NullableTypeExpression); !ok {
		t.Fatalf("expected nullable annotation, got %#v", maybe.TypeAnnotation)
	}
	loop := stmts[2].(*ast.ForeachStatement)
	if loop.Variable.Name != "item" || loop.TypeAnnotation == nil {
		t.Fatalf("unexpected foreach header")
	}
	if _, ok := loop.Iterable.(*ast.ArrayLiteral); !ok {
		t.Fatalf("expected array literal iterable, got %T", loop.Iterable)
	}
	branch := stmts[3].(*ast.IfStatement)
	if _, ok := branch.Alternate.(*ast.IfStatement); !ok {
		t.Fatalf("expected else-if chain, got %T", branch.Alternate)
	}
	match := stmts[4].(*ast.MatchStatement)
	if len(match.Arms) != 2 || len(match.Arms[0].Patterns) != 2 || match.Default == nil {
		t.Fatalf("unexpected match shape: %d arms", len(match.Arms))
	}
	if _, ok := match.Arms[1].Body.(*ast.BlockStatement); !ok {
		t.Fatalf("expected block arm body, got %T", match.Arms[1].Body)
	}
}

func TestParseLambdaAndLambdaType(t *testing.T) {
	program := mustParse(t, `let add: (number, number) -> number = {a: number, b: number -> a + b};
let unit = { -> 42 }`)
	stmts := program.Statements()
	add := stmts[0].(*ast.LetStatement)
	lamType, ok := add.TypeAnnotation.(*ast.LambdaTypeExpression)
	if !ok || len(lamType.ParamTypes) != 2 {
		t.Fatalf("expected lambda type annotation, got %#v", add.TypeAnnotation)
	}
	lambda, ok := add.Value.(*ast.LambdaExpression)
	if !ok || len(lambda.Parameters) != 2 || len(lambda.Body) != 1 {
		t.Fatalf("unexpected lambda %#v", add.Value)
	}
	if _, ok := lambda.Body[0].(*ast.BinaryExpression); !ok {
		t.Fatalf("expected binary body, got %T", lambda.Body[0])
	}
	unit := stmts[1].(*ast.LetStatement).Value.(*ast.LambdaExpression)
	if len(unit.Parameters) != 0 {
		t.Fatalf("expected zero-parameter lambda")
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	expr, err := parser.ParseExpression("expr", "1 + 2 * 3 == 7 && !done || x")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	or, ok := expr.(*ast.BinaryExpression)
	if !ok || or.Operator != "||" {
		t.Fatalf("expected || at the root, got %#v", expr)
	}
	and := or.Left.(*ast.BinaryExpression)
	if and.Operator != "&&" {
		t.Fatalf("expected && under ||, got %s", and.Operator)
	}
	eq := and.Left.(*ast.BinaryExpression)
	sum := eq.Left.(*ast.BinaryExpression)
	if eq.Operator != "==" || sum.Operator != "+" {
		t.Fatalf("unexpected nesting %s / %s", eq.Operator, sum.Operator)
	}
	if product := sum.Right.(*ast.BinaryExpression); product.Operator != "*" {
		t.Fatalf("expected * to bind tighter than +")
	}
	if unary := and.Right.(*ast.UnaryExpression); unary.Operator != "!" {
		t.Fatalf("expected unary !")
	}
}

func TestParseGenericCallVersusComparison(t *testing.T) {
	call, err := parser.ParseExpression("expr", "Box.make<number>(5).get()")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	outer := call.(*ast.CallExpression)
	inner := outer.Callee.(*ast.MemberAccessExpression).Object.(*ast.CallExpression)
	if len(inner.TypeArguments) != 1 {
		t.Fatalf("expected explicit type argument, got %d", len(inner.TypeArguments))
	}

	cmp, err := parser.ParseExpression("expr", "a < b")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if bin, ok := cmp.(*ast.BinaryExpression); !ok || bin.Operator != "<" {
		t.Fatalf("expected comparison, got %#v", cmp)
	}
}

func TestParseNewWithTypeArguments(t *testing.T) {
	expr, err := parser.ParseExpression("expr", "new Pair<number, Box<string>>(1, new Box<string>(\"a\"))")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	n := expr.(*ast.NewExpression)
	if n.ClassName.Name != "Pair" || len(n.TypeArguments) != 2 || len(n.Arguments) != 2 {
		t.Fatalf("unexpected new expression %#v", n)
	}
	if generic, ok := n.TypeArguments[1].(*ast.GenericTypeExpression); !ok || generic.Base.Name != "Box" {
		t.Fatalf("expected nested generic argument")
	}
}

func TestSpansUseByteOffsets(t *testing.T) {
	src := "let a = 1;\nlet b = a + 2;"
	program := mustParse(t, src)
	let := program.Statements()[1].(*ast.LetStatement)
	span := let.Value.Span()
	if span.Source != "test.lyra" || src[span.Start:span.End] != "a + 2" {
		t.Fatalf("unexpected span %+v (%q)", span, src[span.Start:span.End])
	}
}

func TestTokenErrors(t *testing.T) {
	_, err := parser.ParseProgram("bad.lyra", "let a = \"unterminated")
	if !diagnostics.IsKind(err, diagnostics.KindToken) {
		t.Fatalf("expected token error, got %v", err)
	}
	_, err = parser.ParseProgram("bad.lyra", "let a = 1 # 2")
	if !diagnostics.IsKind(err, diagnostics.KindToken) {
		t.Fatalf("expected token error for '#', got %v", err)
	}
}

func TestParserErrors(t *testing.T) {
	_, err := parser.ParseProgram("bad.lyra", "let = 5")
	if !diagnostics.IsKind(err, diagnostics.KindParser) {
		t.Fatalf("expected parser error, got %v", err)
	}
	if parser.IsIncomplete(err) {
		t.Fatalf("error in the middle of input must not be incomplete")
	}
	_, err = parser.ParseProgram("bad.lyra", "1 + 2 = 3")
	if !diagnostics.IsKind(err, diagnostics.KindParser) {
		t.Fatalf("expected invalid assignment target error, got %v", err)
	}
}

func TestIncompleteInput(t *testing.T) {
	_, err := parser.ParseProgram("repl", "class A {\n  public f(): number {")
	if !parser.IsIncomplete(err) {
		t.Fatalf("expected incomplete input error, got %v", err)
	}
}

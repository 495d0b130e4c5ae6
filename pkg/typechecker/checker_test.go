package typechecker

import (
	"strings"
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
)

func loadProgram(t *testing.T, source string) *driver.Program {
	t.Helper()
	loader, err := driver.NewLoader(driver.LoaderOptions{})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	program, err := loader.LoadSource("test.lyra", source)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	return program
}

func checkSource(t *testing.T, source string) (*Checker, *driver.Program, []Diagnostic) {
	t.Helper()
	program := loadProgram(t, source)
	checker := New()
	result, err := checker.CheckProgram(program)
	if err != nil {
		t.Fatalf("CheckProgram: %v", err)
	}
	return checker, program, result.Diagnostics
}

func expectClean(t *testing.T, source string) (*Checker, *driver.Program) {
	t.Helper()
	checker, program, diags := checkSource(t, source)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diagnosticMessages(diags))
	}
	return checker, program
}

func expectDiagnostic(t *testing.T, source, fragment string) {
	t.Helper()
	_, _, diags := checkSource(t, source)
	for _, d := range diags {
		if strings.Contains(d.Message, fragment) {
			return
		}
	}
	t.Fatalf("expected diagnostic containing %q, got %v", fragment, diagnosticMessages(diags))
}

func diagnosticMessages(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}

func lastExpressionType(t *testing.T, checker *Checker, program *driver.Program) Type {
	t.Helper()
	stmts := program.Statements()
	if len(stmts) == 0 {
		t.Fatalf("program has no statements")
	}
	expr, ok := stmts[len(stmts)-1].(ast.Expression)
	if !ok {
		t.Fatalf("last statement is %T, not an expression", stmts[len(stmts)-1])
	}
	typ, ok := checker.TypeOf(expr)
	if !ok {
		t.Fatalf("no type recorded for last expression")
	}
	return typ
}

const boxSource = `
class Box<T> {
    private value: T;
    public constructor(v: T) { this.value = v; }
    public get(): T { return this.value; }
}
`

func TestCheckerGenericMethodReturnType(t *testing.T) {
	checker, program := expectClean(t, boxSource+"new Box<number>(5).get();")
	if got := lastExpressionType(t, checker, program); !Equal(got, NumberType) {
		t.Fatalf("get() type = %s, want number", typeName(got))
	}
}

func TestCheckerGenericArgumentMismatch(t *testing.T) {
	expectDiagnostic(t, boxSource+`new Box<number>("five");`, "argument 1 of 'Box' expects number, got string")
}

func TestCheckerGenericTypeArgumentCount(t *testing.T) {
	expectDiagnostic(t, boxSource+"new Box<number, string>(5);", "class 'Box' expects 1 type argument, got 2")
}

func TestCheckerRawGenericNew(t *testing.T) {
	checker, program := expectClean(t, boxSource+"new Box(5);")
	got := lastExpressionType(t, checker, program)
	ref, ok := got.(ClassRef)
	if !ok || ref.Symbol.Name != "Box" || len(ref.Arguments) != 0 {
		t.Fatalf("raw new type = %s, want Box", typeName(got))
	}
}

func TestCheckerSubtypeAssignment(t *testing.T) {
	expectClean(t, `
class Animal { public speak(): string { return "..."; } }
class Dog extends Animal { public speak(): string { return "Woof"; } }
let a: Animal = new Dog();
a.speak();
`)
	expectDiagnostic(t, `
class Animal {}
class Rock {}
let a: Animal = new Rock();
`, "cannot assign Rock to variable 'a' of type Animal")
}

func TestCheckerPrivateAccess(t *testing.T) {
	source := `
class Vault {
    private secret(): number { return 42; }
    public reveal(): number { return this.secret(); }
}
class Heir extends Vault {
    public peek(): number { return this.secret(); }
}
`
	expectClean(t, source)
	expectDiagnostic(t, source+"new Vault().secret();", "method 'secret' of class 'Vault' is private")
	expectDiagnostic(t, source+`
class GrandHeir extends Heir {
    public peek2(): number { return this.secret(); }
}
`, "method 'secret' of class 'Vault' is private")
}

func TestCheckerNullable(t *testing.T) {
	expectClean(t, "let x: number? = null;")
	expectDiagnostic(t, "let y: number = null;", "cannot assign null to variable 'y' of type number")
	expectDiagnostic(t, "let z: number;", "variable 'z' of type number must be initialized")
}

func TestCheckerNullableReceivers(t *testing.T) {
	source := `
class Node { public label: string = "n"; public next: Node? = null; }
let maybe: Node? = null;
`
	expectDiagnostic(t, source+`maybe.label;`, "cannot access 'label' on nullable Node? without a null check")
	expectDiagnostic(t, source+`let s: string? = "a";
s.length();`, "cannot call method 'length' on nullable string? without a null check")
	expectDiagnostic(t, source+`maybe.label = "x";`, "cannot assign 'label' on nullable Node?")
	expectDiagnostic(t, source+`new Node().next.label;`, "cannot access 'label' on nullable Node?")

	expectClean(t, source+`
if (maybe != null) { maybe.label; }
if (maybe == null) { print("none"); } else { maybe.label = "x"; }
if (!(maybe == null)) { maybe.label; }
let ok = maybe != null && maybe.label == "n";
let empty = maybe == null || maybe.label == "";
`)
	expectDiagnostic(t, source+`if (maybe == null) { maybe.label; }`, "cannot access 'label' on nullable Node?")
	expectDiagnostic(t, source+`if (maybe != null) { maybe = null; }`, "cannot assign null")
	expectDiagnostic(t, source+`if (maybe != null) { } maybe.label;`, "cannot access 'label' on nullable Node?")
}

func TestCheckerMissingInterfaceMethod(t *testing.T) {
	expectDiagnostic(t, `
class Bag<T> implements Iterable<T> {
    public size(): number { return 0; }
}
`, "class 'Bag' does not implement method 'iterator' of interface 'Iterable'")
	expectDiagnostic(t, `
interface Source<T> { next(): T; }
class Numbers implements Source<number> {
    public next(): string { return "x"; }
}
`, "method 'next' of class 'Numbers' does not match interface 'Source'")
}

func TestCheckerInterfaceSignatureMismatch(t *testing.T) {
	expectDiagnostic(t, `
interface Shape { area(): number; }
class Circle implements Shape {
    public area(): string { return "big"; }
}
`, "method 'area' of class 'Circle' does not match interface 'Shape'")
	expectClean(t, `
interface Shape { area(): number; }
class Base { public area(): number { return 1; } }
class Square extends Base implements Shape {}
let s: Shape = new Square();
`)
}

func TestCheckerUnknownTypesAndClasses(t *testing.T) {
	expectDiagnostic(t, "let w: Widget = null;", "unknown type 'Widget'")
	expectDiagnostic(t, "new Widget();", "unknown class 'Widget'")
	expectDiagnostic(t, "class Cat extends Pet {}", "unknown superclass 'Pet' for class 'Cat'")
	expectDiagnostic(t, "class A extends B {}\nclass B extends A {}", "inheritance cycle")
}

func TestCheckerInterfaceInstantiation(t *testing.T) {
	expectDiagnostic(t, "interface Shape {}\nnew Shape();", "cannot instantiate interface 'Shape'")
}

func TestCheckerReadonlyFields(t *testing.T) {
	source := `
class Point {
    public readonly x: number;
    public constructor(x: number) { this.x = x; }
    public move(): void { this.x = 3; }
}
`
	expectDiagnostic(t, source, "cannot assign to readonly field 'x' outside the constructor of 'Point'")
	expectDiagnostic(t, `
class Point {
    public readonly x: number = 0;
}
let p = new Point();
p.x = 4;
`, "cannot assign to readonly field 'x'")
}

func TestCheckerMissingReturn(t *testing.T) {
	expectDiagnostic(t, `
class Calc {
    public sign(n: number): number {
        if (n > 0) { return 1; }
    }
}
`, "missing return in method 'sign' (expected number)")
	expectClean(t, `
class Calc {
    public sign(n: number): number {
        if (n > 0) { return 1; } else { return -1; }
    }
}
`)
	expectDiagnostic(t, `
class Calc {
    public log(): void { return 1; }
}
`, "void method 'log' cannot return a value")
}

func TestCheckerArrayLiterals(t *testing.T) {
	checker, program := expectClean(t, "[1, 2, 3];")
	if got := typeName(lastExpressionType(t, checker, program)); got != "Array<number>" {
		t.Fatalf("array literal type = %s, want Array<number>", got)
	}
	expectDiagnostic(t, `[1, "two"];`, "array element 1 must be number, got string")
	expectDiagnostic(t, `let names: Array<string> = [1];`, "array element 0 must be string, got number")
	expectDiagnostic(t, `let xs = [1, 2]; xs["a"];`, "index must be a number, got string")
}

func TestCheckerForeach(t *testing.T) {
	expectClean(t, `
let total = 0;
foreach (n in [1, 2, 3]) { total = total + n; }
`)
	expectDiagnostic(t, `foreach (n in 5) { print(n); }`, "foreach requires an Iterable, got number")
	expectDiagnostic(t, `
foreach (n in [1, 2]) { let s: string = n; }
`, "cannot assign number to variable 's' of type string")
}

func TestCheckerOperators(t *testing.T) {
	checker, program := expectClean(t, `"a" + 1;`)
	if got := lastExpressionType(t, checker, program); !Equal(got, StringType) {
		t.Fatalf("string concatenation type = %s", typeName(got))
	}
	expectDiagnostic(t, `true - 1;`, "'-' requires")
	expectDiagnostic(t, `"a" < "b";`, "'<' requires")
	expectDiagnostic(t, `1 == "one";`, "cannot compare number with string")
	hierarchy := `
class Animal {}
class Dog extends Animal {}
let a: Animal = new Animal();
let d: Dog = new Dog();
let maybe: number? = null;
`
	expectClean(t, hierarchy+`a == new Animal(); maybe == null; null != maybe; maybe == 3;`)
	expectDiagnostic(t, hierarchy+`d == a;`, "cannot compare Dog with Animal")
	expectDiagnostic(t, hierarchy+`a != d;`, "cannot compare Animal with Dog")
	expectDiagnostic(t, hierarchy+`a == null;`, "cannot compare Animal with null")
	expectDiagnostic(t, `!5;`, "unary '!' requires a boolean operand (got number)")
	expectDiagnostic(t, `if (1) { }`, "if condition must be boolean, got number")
}

func TestCheckerCallArguments(t *testing.T) {
	source := `
class Greeter {
    public greet(name: string, punctuation: string = "!"): string { return name + punctuation; }
}
let g = new Greeter();
`
	expectClean(t, source+`g.greet("Ada");`)
	expectDiagnostic(t, source+`g.greet();`, "missing argument 'name' for 'greet'")
	expectDiagnostic(t, source+`g.greet("a", "b", "c");`, "too many arguments for 'greet': expected at most 2, got 3")
	expectDiagnostic(t, source+`g.shout();`, "unknown method 'shout' on Greeter")
}

func TestCheckerLambdas(t *testing.T) {
	checker, program := expectClean(t, `
let double = {n: number -> n * 2};
double(4);
`)
	if got := lastExpressionType(t, checker, program); !Equal(got, NumberType) {
		t.Fatalf("lambda call type = %s, want number", typeName(got))
	}
	checker, program = expectClean(t, `[1, 2].map({n -> "x"});`)
	if got := typeName(lastExpressionType(t, checker, program)); got != "Array<string>" {
		t.Fatalf("map result = %s, want Array<string>", got)
	}
	expectDiagnostic(t, `let f: (number) -> string = {n: number -> n};`, "lambda must return string, got number")

	expectDiagnostic(t, `
let pick = {n: number ->
    if (n > 0) { return n; }
    return "negative";
};
`, "lambda returns incompatible types number, string")
	expectDiagnostic(t, `
let f: (number) -> number = {n: number ->
    if (n > 0) { return n; }
    return "negative";
};
`, "lambda returns incompatible types")
	checker, program = expectClean(t, `
class Animal {}
class Dog extends Animal {}
let find = {n: number ->
    if (n == 0) { return null; }
    if (n == 1) { return new Dog(); }
    return new Animal();
};
find(1);
`)
	if got := typeName(lastExpressionType(t, checker, program)); got != "Animal?" {
		t.Fatalf("joined return type = %s, want Animal?", got)
	}
}

func TestCheckerStaticMembers(t *testing.T) {
	source := `
class Counter {
    public static count: number = 0;
    public static bump(): number { Counter.count = Counter.count + 1; return Counter.count; }
}
`
	expectClean(t, source+"Counter.bump();")
	expectDiagnostic(t, source+"new Counter().bump();", "static method 'bump' must be called through class 'Counter'")
	expectDiagnostic(t, `
class Counter {
    public static total: number = this.x;
}
`, "'this' cannot be used in a static context")
}

func TestCheckerThisAndSuper(t *testing.T) {
	expectDiagnostic(t, "this;", "'this' used outside of a class")
	expectDiagnostic(t, `
class Base { public constructor(n: number) {} }
class Derived extends Base {
    public make(): void { super(1); }
}
`, "'super(...)' is only allowed in a constructor")
	expectClean(t, `
class Base {
    public n: number = 0;
    public constructor(n: number) { this.n = n; }
    public describe(): string { return "base"; }
}
class Derived extends Base {
    public constructor() { super(1); }
    public describe(): string { return super.describe() + "!"; }
}
`)
}

func TestCheckerMatch(t *testing.T) {
	expectClean(t, `
let n = 2;
match (n) {
    1 -> { print("one"); }
    2 -> { print("two"); }
    default -> { print("many"); }
}
`)
	expectDiagnostic(t, `
let n = 2;
match (n) {
    "two" -> { print("two"); }
}
`, "match pattern of type string can never equal subject of type number")
}

func TestCheckerAutoboxing(t *testing.T) {
	checker, program := expectClean(t, `"abc".toUpperCase();`)
	if got := lastExpressionType(t, checker, program); !Equal(got, StringType) {
		t.Fatalf("autoboxed call = %s, want string", typeName(got))
	}
	expectDiagnostic(t, `(5).shout();`, "unknown method 'shout'")
}

func TestCheckerPredeclare(t *testing.T) {
	program := loadProgram(t, "previous + 1;")
	checker := New()
	checker.Predeclare("previous")
	result, err := checker.CheckProgram(program)
	if err != nil {
		t.Fatalf("CheckProgram: %v", err)
	}
	if len(result.Diagnostics) != 0 {
		t.Fatalf("predeclared variable not visible: %v", diagnosticMessages(result.Diagnostics))
	}
}

func TestCheckReturnsDiagnosticsList(t *testing.T) {
	program := loadProgram(t, "let y: number = null;\nundefinedName;")
	err := New().Check(program)
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "[TypeError]") || !strings.Contains(msg, "undefined variable 'undefinedName'") {
		t.Fatalf("unexpected error text: %s", msg)
	}
	if strings.Contains(msg, "typechecker: ") {
		t.Fatalf("package prefix leaked into error: %s", msg)
	}
}

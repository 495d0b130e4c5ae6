package interpreter

import (
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

func TestGenericMethodReturnsArgument(t *testing.T) {
	val, _ := mustRun(t, `
class Box<T> {
    private value: T;
    public constructor(v: T) { this.value = v; }
    public get(): T { return this.value; }
}
new Box<number>(5).get();
`)
	expectNumber(t, val, 5)
}

func TestSubclassDispatchAndInheritedMutation(t *testing.T) {
	_, out := mustRun(t, `
class Animal {
    public name: string = "animal";
    public rename(n: string): void { this.name = n; }
    public speak(): string { return "..."; }
}
class Dog extends Animal {
    public speak(): string { return "Woof"; }
}
let a: Animal = new Dog();
print(a.speak());
let d = new Dog();
d.rename("Rex");
print(d.name);
`)
	expectLines(t, out, "Woof", "Rex")
}

func TestSuperResolvesAgainstDeclaringClass(t *testing.T) {
	_, out := mustRun(t, `
class Base {
    public label: string = "";
    public constructor(l: string) { this.label = l; }
    public describe(): string { return "base " + this.label; }
}
class Child extends Base {
    public constructor() { super("child"); }
    public describe(): string { return "child of " + super.describe(); }
}
class GrandChild extends Child {}
print(new GrandChild().describe());
`)
	expectLines(t, out, "child of base child")
}

func TestFieldInitializersRunAncestorsFirst(t *testing.T) {
	_, out := mustRun(t, `
class Base {
    public trail: string = "base";
}
class Derived extends Base {
    public extra: string = "derived";
    public constructor() { this.trail = this.trail + "," + this.extra; }
}
print(new Derived().trail);
`)
	expectLines(t, out, "base,derived")
}

func TestStaticFieldsAreShared(t *testing.T) {
	_, out := mustRun(t, `
class Counter {
    public static count: number = 0;
    public id: number = 0;
    public constructor() {
        Counter.count = Counter.count + 1;
        this.id = Counter.count;
    }
}
let a = new Counter();
let b = new Counter();
print(a.id);
print(b.id);
print(Counter.count);
`)
	expectLines(t, out, "1", "2", "2")
}

func TestDefaultParameters(t *testing.T) {
	_, out := mustRun(t, `
class Greeter {
    public greet(name: string, punctuation: string = "!"): string { return name + punctuation; }
}
let g = new Greeter();
print(g.greet("Ada"));
print(g.greet("Ada", "?"));
`)
	expectLines(t, out, "Ada!", "Ada?")
}

func TestLambdasCloseOverScopeAndThis(t *testing.T) {
	_, out := mustRun(t, `
let base = 10;
let add = {n: number -> n + base};
print(add(5));
print([1, 2, 3].map({n: number -> n * 2}).join(","));
print([1, 2, 3, 4].filter({n: number -> n % 2 == 0}).length());

class Accumulator {
    public total: number = 0;
    public addAll(items: Array<number>): number {
        items.forEach({n: number -> this.total = this.total + n});
        return this.total;
    }
}
print(new Accumulator().addAll([1, 2, 3]));
`)
	expectLines(t, out, "15", "2,4,6", "2", "6")
}

func TestLambdaReturnsFirstReturnOrTrailingExpression(t *testing.T) {
	_, out := mustRun(t, `
let classify = {n: number ->
    if (n > 0) { return "positive"; }
    "non-positive"
};
print(classify(3));
print(classify(-1));
`)
	expectLines(t, out, "positive", "non-positive")
}

func TestMatchRunsFirstEqualArm(t *testing.T) {
	_, out := mustRun(t, `
let describe = {n: number ->
    let label = "many";
    match (n) {
        1 -> { label = "one"; }
        2, 3 -> { label = "few"; }
        default -> { label = "many"; }
    }
    label
};
print(describe(1));
print(describe(3));
print(describe(9));
`)
	expectLines(t, out, "one", "few", "many")
}

func TestIfElseChains(t *testing.T) {
	_, out := mustRun(t, `
class Sign {
    public of(n: number): string {
        if (n > 0) { return "+"; } else if (n < 0) { return "-"; } else { return "0"; }
    }
}
let s = new Sign();
print(s.of(4) + s.of(-4) + s.of(0));
`)
	expectLines(t, out, "+-0")
}

func TestShortCircuitOperators(t *testing.T) {
	_, out := mustRun(t, `
class Probe {
    public hits: number = 0;
    public touch(): boolean { this.hits = this.hits + 1; return true; }
}
let p = new Probe();
let a = false && p.touch();
let b = true || p.touch();
print(p.hits);
print(a || b);
`)
	expectLines(t, out, "0", "true")
}

func TestUserInstancesSurviveNativeRoundTrip(t *testing.T) {
	_, out := mustRun(t, `
class P { public x: number = 1; }
let p = new P();
let items = [p];
items.get(0).x = 5;
print(p.x);
print(items.get(0) == p);
`)
	expectLines(t, out, "5", "true")
}

func TestIndexExpressions(t *testing.T) {
	_, out := mustRun(t, `
let xs = [1, 2, 3];
xs[1] = 20;
print(xs[1]);
print(xs);
`)
	expectLines(t, out, "20", "[1, 20, 3]")
}

func TestEvaluateProgramResult(t *testing.T) {
	program := loadUnchecked(t, "let x = 2;\nx * 21;")
	interp := New(Options{})
	val, err := interp.EvaluateProgram(program)
	if err != nil {
		t.Fatalf("EvaluateProgram: %v", err)
	}
	expectNumber(t, val, 42)
	got, err := interp.GlobalEnvironment().Get("x")
	if err != nil || !runtime.Equal(got, runtime.Number(2)) {
		t.Fatalf("global x = %v, %v", got, err)
	}
}

func TestUserClassExtendingNativeClass(t *testing.T) {
	program := loadUnchecked(t, `
class Stack extends Array {
    public peek(): mixed { return this.get(this.length() - 1); }
}
let s = new Stack();
s.push(1);
s.push(2);
s.peek();
`)
	val, err := New(Options{}).EvaluateProgram(program)
	if err != nil {
		t.Fatalf("EvaluateProgram: %v", err)
	}
	expectNumber(t, val, 2)
}

func TestInstantiateAndCallMethodFromHost(t *testing.T) {
	program := loadUnchecked(t, `
class Adder {
    public base: number = 0;
    public constructor(b: number) { this.base = b; }
    public add(n: number): number { return this.base + n; }
}
`)
	interp := New(Options{})
	if err := interp.Load(program); err != nil {
		t.Fatalf("Load: %v", err)
	}
	inst, err := interp.Instantiate("Adder", runtime.Number(40))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	val, err := interp.CallMethod(inst, "add", runtime.Number(2))
	if err != nil {
		t.Fatalf("CallMethod: %v", err)
	}
	expectNumber(t, val, 42)
	if got := interp.Stringify(inst); got != "Adder {base: 40}" {
		t.Fatalf("Stringify = %q", got)
	}
}

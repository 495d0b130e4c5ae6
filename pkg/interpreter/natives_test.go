package interpreter

import (
	"strings"
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
)

func TestRegexThroughInterpreter(t *testing.T) {
	_, out := mustRun(t, `
import Regex
let digits = new Regex("[0-9]+");
print(digits.test("abc 42"));
print(digits.findAll("1 and 22 and 333").join("|"));
print(new Regex("HELLO", "i").test("hello there"));
print(digits.replace("a1b22", "#"));
print(digits.find("none"));
`)
	expectLines(t, out, "true", "1|22|333", "true", "a#b#", "null")
}

func TestMapThroughInterpreter(t *testing.T) {
	_, out := mustRun(t, `
import Map
let m = new Map<string, number>();
m.set("a", 1);
m.set("b", 2);
m.set("a", 3);
print(m.size());
print(m.get("a"));
print(m.has("c"));
print(m.keys().join(","));
print(m.remove("b"));
print(m.size());
`)
	expectLines(t, out, "2", "3", "false", "a,b", "true", "1")
}

func TestPrimitiveMethods(t *testing.T) {
	_, out := mustRun(t, `
let s = "hello world";
print(s.toUpperCase());
print(s.title());
print(s.length());
print(s.split(" ").length());
print(s.substring(6));
let n = 2.75;
print(n.floor());
print(n.toFixed(1));
let b = true;
print(b.toString());
`)
	expectLines(t, out, "HELLO WORLD", "Hello World", "11", "2", "world", "2", "2.8", "true")
}

func TestStaticNativeClasses(t *testing.T) {
	_, out := mustRun(t, `
import Math
import Console
print(Math.max(3, 7));
print(Math.floor(2.9));
Console.log("a 1 true");
Console.log([1, 2]);
`)
	expectLines(t, out, "7", "2", "a 1 true", "[1, 2]")

	err, _ := runExpectingError(t, `
import Console
Console.log("a", 1);
`)
	if !diagnostics.IsKind(err, diagnostics.KindType) || !strings.Contains(err.Error(), "too many arguments for 'log'") {
		t.Fatalf("expected arity type error, got %v", err)
	}
}

func TestArrayCallbacksReceiveUserValues(t *testing.T) {
	_, out := mustRun(t, `
class Item {
    public price: number = 0;
    public constructor(p: number) { this.price = p; }
}
let items = [new Item(5), new Item(15), new Item(25)];
let cheap = items.filter({i: Item -> i.price < 20});
print(cheap.length());
print(cheap.map({i: Item -> i.price}).join("+"));
`)
	expectLines(t, out, "2", "5+15")
}

func TestTypeOfAndPrintFormatting(t *testing.T) {
	_, out := mustRun(t, `
class Point {
    public x: number = 1;
    public y: number = 2;
}
print(typeOf(1));
print(typeOf("s"));
print(typeOf([1]));
print(new Point());
let mixedItems: Array<mixed> = [1, "two", null];
print(mixedItems);
print(1.5);
`)
	expectLines(t, out, "number", "string", "Array", "Point {x: 1, y: 2}", `[1, "two", null]`, "1.5")
}

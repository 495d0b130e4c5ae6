package interpreter

import (
	"strings"
	"testing"
)

func TestForeachDrivesUserIterator(t *testing.T) {
	_, out := mustRun(t, `
class Probe {
    public static hasNextCalls: number = 0;
    public static nextCalls: number = 0;
    public static rewinds: number = 0;
}

class CountUp implements Iterator<number> {
    private limit: number = 0;
    private at: number = 0;
    public constructor(limit: number) { this.limit = limit; }
    public hasNext(): boolean {
        Probe.hasNextCalls = Probe.hasNextCalls + 1;
        return this.at < this.limit;
    }
    public current(): number { return this.at + 1; }
    public key(): mixed { return this.at; }
    public next(): void {
        Probe.nextCalls = Probe.nextCalls + 1;
        this.at = this.at + 1;
    }
    public rewind(): void {
        Probe.rewinds = Probe.rewinds + 1;
        this.at = 0;
    }
}

class Range implements Iterable<number> {
    private limit: number = 0;
    public constructor(limit: number) { this.limit = limit; }
    public iterator(): Iterator<number> { return new CountUp(this.limit); }
}

let sum = 0;
foreach (n in new Range(5)) {
    sum = sum + n;
}
print(sum);
print(Probe.hasNextCalls);
print(Probe.nextCalls);
print(Probe.rewinds);
`)
	expectLines(t, out, "15", "6", "5", "1")
}

func TestForeachOverArraysAndMaps(t *testing.T) {
	_, out := mustRun(t, `
import Map
let total = 0;
foreach (n in [1, 2, 3]) { total = total + n; }
print(total);

let ages = new Map<string, number>();
ages.set("ada", 36);
ages.set("alan", 41);
let names = "";
foreach (age in ages) { names = names + age + ";"; }
print(names);
`)
	expectLines(t, out, "6", "36;41;")
}

func TestForeachVariableIsScopedPerPass(t *testing.T) {
	_, out := mustRun(t, `
let fns = new Array<mixed>();
foreach (n in [1, 2, 3]) {
    fns.push({ -> n * 10});
}
let first = fns.get(0);
print(first());
`)
	expectLines(t, out, "10")
}

func TestForeachReturnLeavesMethod(t *testing.T) {
	_, out := mustRun(t, `
class Finder {
    public firstEven(items: Array<number>): number {
        foreach (n in items) {
            if (n % 2 == 0) { return n; }
        }
        return -1;
    }
}
let f = new Finder();
print(f.firstEven([3, 5, 8, 10]));
print(f.firstEven([1]));
`)
	expectLines(t, out, "8", "-1")
}

func TestForeachRejectsNonIterableWhenUnchecked(t *testing.T) {
	program := loadUnchecked(t, "foreach (n in 5) { print(n); }")
	_, err := New(Options{}).EvaluateProgram(program)
	if err == nil || !strings.Contains(err.Error(), "foreach requires an Iterable, got number") {
		t.Fatalf("expected iterable error, got %v", err)
	}
}

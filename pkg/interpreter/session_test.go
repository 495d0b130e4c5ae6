package interpreter

import (
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/runtime"
)

func TestSessionKeepsBindingsAndClasses(t *testing.T) {
	engine := newTestEngine(t, EngineOptions{})
	session := engine.NewSession()

	if _, err := session.Eval("let x = 5;"); err != nil {
		t.Fatalf("Eval let: %v", err)
	}
	if _, err := session.Eval("class Sq { public of(n: number): number { return n * n; } }"); err != nil {
		t.Fatalf("Eval class: %v", err)
	}
	val, err := session.Eval("new Sq().of(x);")
	if err != nil {
		t.Fatalf("Eval call: %v\n%s", err, engine.stderr.String())
	}
	expectNumber(t, val, 25)
}

func TestSessionRejectedInputLeavesStateIntact(t *testing.T) {
	engine := newTestEngine(t, EngineOptions{})
	session := engine.NewSession()
	if _, err := session.Eval("let x = 5;"); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if _, err := session.Eval("let y: number = \"s\";"); err == nil {
		t.Fatalf("expected type error")
	}
	if _, err := session.Eval("x = ;"); err == nil {
		t.Fatalf("expected parse error")
	}
	val, err := session.Eval("x + 1;")
	if err != nil {
		t.Fatalf("Eval after rejection: %v", err)
	}
	expectNumber(t, val, 6)
	if engine.stderr.Len() == 0 {
		t.Fatalf("rejected inputs were not reported")
	}
}

func TestSessionImportsPersist(t *testing.T) {
	engine := newTestEngine(t, EngineOptions{})
	session := engine.NewSession()
	if _, err := session.Eval("import Regex"); err != nil {
		t.Fatalf("Eval import: %v", err)
	}
	val, err := session.Eval("new Regex(\"b+\").test(\"abbc\");")
	if err != nil {
		t.Fatalf("Eval regex: %v\n%s", err, engine.stderr.String())
	}
	if got := session.Interpreter().Stringify(val); got != "true" {
		t.Fatalf("result = %s, want true", got)
	}
}

func TestSessionRuntimeErrorKeepsEarlierBindings(t *testing.T) {
	engine := newTestEngine(t, EngineOptions{})
	session := engine.NewSession()
	if _, err := session.Eval("let total = 10;"); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if _, err := session.Eval("let zero = 0;\ntotal / zero;"); err == nil {
		t.Fatalf("expected division error")
	}
	val, err := session.Eval("total;")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	expectNumber(t, val, 10)
}

func TestSessionEvaluatesManyInputs(t *testing.T) {
	engine := newTestEngine(t, EngineOptions{})
	session := engine.NewSession()
	inputs := []string{
		"let x = 1;",
		"x + 1;",
		"let items = [1, 2, 3];",
		"import Map",
		"let m = new Map<string, number>();",
		"m.set(\"k\", items.length());",
		"m.get(\"k\");",
	}
	var val runtime.Value
	for _, input := range inputs {
		var err error
		if val, err = session.Eval(input); err != nil {
			t.Fatalf("Eval(%q): %v\n%s", input, err, engine.stderr.String())
		}
	}
	if got := session.Interpreter().Stringify(val); got != "3" {
		t.Fatalf("result = %s, want 3", got)
	}
}

package interpreter

import (
	"strings"
	"testing"
)

const suiteSource = `
class Suite {
    public counter: number = 0;

    @test(name="addition works")
    public adds(): boolean {
        this.counter = this.counter + 1;
        return 1 + 1 == 2 && this.counter == 1;
    }

    @test
    public fresh(): boolean { this.counter = this.counter + 1; return this.counter == 1; }

    @test
    public returnsFalse(): boolean { return false; }

    @test(skip=true)
    public skipped(): void { print("never"); }

    @test
    public static crashes(): void {
        let zero = 0;
        print(1 / zero);
    }

    public helper(): void { print("not a test"); }
}
`

func TestRunnerReportsEachAnnotatedMethod(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "suite_test.lyra", suiteSource)
	engine := newTestEngine(t, EngineOptions{})

	report, err := engine.Test(path)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if len(report.Results) != 5 {
		t.Fatalf("results = %d, want 5", len(report.Results))
	}
	if report.Passed() != 2 || report.Failed() != 2 || report.Skipped() != 1 {
		t.Fatalf("passed/failed/skipped = %d/%d/%d, want 2/2/1", report.Passed(), report.Failed(), report.Skipped())
	}

	want := []struct {
		name   string
		status TestStatus
	}{
		{"addition works", TestPassed},
		{"Suite.fresh", TestPassed},
		{"Suite.returnsFalse", TestFailed},
		{"Suite.skipped", TestSkipped},
		{"Suite.crashes", TestFailed},
	}
	for idx, w := range want {
		got := report.Results[idx]
		if got.Name != w.name || got.Status != w.status {
			t.Fatalf("result %d = %s %s, want %s %s", idx, got.Name, got.Status, w.name, w.status)
		}
	}
	if !strings.Contains(report.Results[4].Err.Error(), "division by zero") {
		t.Fatalf("crash error = %v", report.Results[4].Err)
	}
	if strings.Contains(engine.stdout.String(), "never") || strings.Contains(engine.stdout.String(), "not a test") {
		t.Fatalf("non-test code ran:\n%s", engine.stdout.String())
	}
	if !strings.Contains(engine.stderr.String(), "returned false") {
		t.Fatalf("failure not reported:\n%s", engine.stderr.String())
	}
}

func TestRunnerRejectsParameterizedTests(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "params.lyra", `
class Suite {
    @test
    public takesArg(n: number): boolean { return n > 0; }
}
`)
	report, err := newTestEngine(t, EngineOptions{}).Test(path)
	if err != nil {
		t.Fatalf("Test: %v", err)
	}
	if report.Failed() != 1 || !strings.Contains(report.Results[0].Err.Error(), "must not take parameters") {
		t.Fatalf("unexpected report: %+v", report.Results)
	}
}

func TestRunnerStopsOnTypeErrors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.lyra", `
class Suite {
    @test
    public bad(): boolean { let s: string = 1; return true; }
}
`)
	if _, err := newTestEngine(t, EngineOptions{}).Test(path); err == nil {
		t.Fatalf("expected type error")
	}
}

package interpreter

import (
	"strings"
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
)

func TestRunResolvesFileImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib/greeter.lyra", `
import {Named} from "./named"
class Greeter {
    public greet(n: Named): string { return "hello " + n.name(); }
}
`)
	writeFile(t, dir, "lib/named.lyra", `
interface Named { name(): string; }
class Person implements Named {
    private n: string = "";
    public constructor(n: string) { this.n = n; }
    public name(): string { return this.n; }
}
`)
	entry := writeFile(t, dir, "main.lyra", `
import {Greeter} from "./lib/greeter"
import {Person} from "./lib/named"
print(new Greeter().greet(new Person("ada")));
`)
	engine := newTestEngine(t, EngineOptions{})
	if _, err := engine.Run(entry); err != nil {
		t.Fatalf("Run: %v\n%s", err, engine.stderr.String())
	}
	expectLines(t, outputLines(engine.stdout.String()), "hello ada")
}

func TestRunReportsErrorsInImportedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lib.lyra", "class Lib {\n    public broken(): number { return \"x\"; }\n}\n")
	entry := writeFile(t, dir, "main.lyra", "import {Lib} from \"./lib\"\nprint(1);\n")
	engine := newTestEngine(t, EngineOptions{})
	if _, err := engine.Run(entry); err == nil {
		t.Fatalf("expected type error")
	}
	if !strings.Contains(engine.stderr.String(), "lib.lyra:2:") {
		t.Fatalf("report does not locate the imported file:\n%s", engine.stderr.String())
	}
	if engine.stdout.Len() != 0 {
		t.Fatalf("program ran: %q", engine.stdout.String())
	}
}

func TestCheckDoesNotRun(t *testing.T) {
	dir := t.TempDir()
	entry := writeFile(t, dir, "main.lyra", "print(\"side effect\");")
	engine := newTestEngine(t, EngineOptions{})
	if err := engine.Check(entry); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if engine.stdout.Len() != 0 {
		t.Fatalf("Check ran the program: %q", engine.stdout.String())
	}
}

func TestManifestCallDepth(t *testing.T) {
	manifest := &driver.Manifest{}
	manifest.Settings.MaxCallDepth = 16
	engine := newTestEngine(t, EngineOptions{Loader: driver.LoaderOptions{Manifest: manifest}})
	_, err := engine.RunSource("test.lyra", `
class Rec {
    public down(n: number): number { return this.down(n + 1); }
}
new Rec().down(0);
`)
	if err == nil || !strings.Contains(err.Error(), "maximum call depth of 16 exceeded") {
		t.Fatalf("expected manifest depth limit, got %v", err)
	}
}

func TestRestrictedNativesRejectImports(t *testing.T) {
	manifest := &driver.Manifest{}
	manifest.Settings.Natives = []string{"Math"}
	engine := newTestEngine(t, EngineOptions{Loader: driver.LoaderOptions{Manifest: manifest}})
	if _, err := engine.RunSource("test.lyra", "import Math\nprint(Math.abs(-3));"); err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	expectLines(t, outputLines(engine.stdout.String()), "3")
	if _, err := engine.RunSource("test.lyra", "import Regex"); err == nil {
		t.Fatalf("expected unknown native class error")
	}
}

package main

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
	"github.com/tonirenner/lyrascript-sub001/pkg/interpreter"
)

func TestLoadManifestFromWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ManifestName), "name: demo\n")
	child := filepath.Join(root, "src", "app")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifest, err := loadManifestFrom(child)
	if err != nil {
		t.Fatalf("loadManifestFrom returned error: %v", err)
	}
	if want := filepath.Join(root, driver.ManifestName); manifest.Path != want {
		t.Fatalf("manifest path = %q, want %q", manifest.Path, want)
	}

	if _, err := loadManifestFrom(t.TempDir()); err == nil {
		t.Fatalf("expected errManifestNotFound")
	}
}

func TestLoadLockfileForManifest(t *testing.T) {
	root := t.TempDir()
	plain := &driver.Manifest{Path: filepath.Join(root, driver.ManifestName), Name: "app"}
	lock, err := loadLockfileForManifest(plain)
	if err != nil || lock != nil {
		t.Fatalf("expected nil lock without git dependencies, got %#v, %v", lock, err)
	}

	withGit := &driver.Manifest{
		Path:         filepath.Join(root, driver.ManifestName),
		Name:         "app",
		Dependencies: map[string]*driver.DependencySpec{"remote": {Git: "https://example.com/remote.git"}},
	}
	if _, err := loadLockfileForManifest(withGit); err == nil || !strings.Contains(err.Error(), "lyra deps install") {
		t.Fatalf("expected missing lock error, got %v", err)
	}
}

func TestVersionAndUsage(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"--version"})
	if code != 0 || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("--version = %d %q", code, stdout)
	}
	code, _, stderr := captureCLI(t, nil)
	if code != 1 || !strings.Contains(stderr, "Usage:") {
		t.Fatalf("no-args = %d %q", code, stderr)
	}
}

func TestRunFileWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "main.lyra"), `
import {Greeter} from "./greeter"
print(new Greeter().greet("world"));
`)
	writeFile(t, filepath.Join(dir, "greeter.lyra"), `
class Greeter {
    public greet(name: string): string { return "hello " + name; }
}
`)

	for _, args := range [][]string{{"main.lyra"}, {"run", "main.lyra"}} {
		code, stdout, stderr := captureCLI(t, args)
		if code != 0 {
			t.Fatalf("%v exit %d: %s", args, code, stderr)
		}
		if strings.TrimSpace(stdout) != "hello world" {
			t.Fatalf("%v stdout = %q", args, stdout)
		}
	}
}

func TestRunManifestTarget(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, driver.ManifestName), `
name: demo
targets:
  app: src/main.lyra
settings:
  max_call_depth: 32
`)
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(dir, "src", "main.lyra"), `print("from target");`)

	for _, args := range [][]string{{"run"}, {"run", "app"}, {"app"}} {
		code, stdout, stderr := captureCLI(t, args)
		if code != 0 || strings.TrimSpace(stdout) != "from target" {
			t.Fatalf("%v = %d %q %q", args, code, stdout, stderr)
		}
	}
}

func TestRunReportsTypeErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "bad.lyra"), "print(\"ran\");\nlet n: number = \"x\";")

	code, stdout, stderr := captureCLI(t, []string{"bad.lyra"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if stdout != "" {
		t.Fatalf("program ran despite type errors: %q", stdout)
	}
	if !strings.Contains(stderr, "[TypeError] cannot assign string to variable 'n' of type number") || !strings.Contains(stderr, "bad.lyra:2:") {
		t.Fatalf("unexpected stderr:\n%s", stderr)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "ok.lyra"), `print("side effect");`)
	code, stdout, stderr := captureCLI(t, []string{"check", "ok.lyra"})
	if code != 0 || strings.Contains(stdout, "side effect") || !strings.Contains(stdout, "ok.lyra: ok") {
		t.Fatalf("check = %d %q %q", code, stdout, stderr)
	}
}

func TestTestCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, filepath.Join(dir, "suite.lyra"), `
class MathTest {
    @test(name="adds")
    public adds(): boolean { return 1 + 2 == 3; }

    @test
    public fails(): boolean { return false; }

    @test(skip=true)
    public later(): void {}
}
`)
	code, stdout, _ := captureCLI(t, []string{"test", "suite.lyra"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1 for a failing test", code)
	}
	for _, want := range []string{"PASS adds", "FAIL MathTest.fails", "SKIP MathTest.later", "1 passed, 1 failed, 1 skipped"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestDepsInstallGitDependencyAndRun(t *testing.T) {
	root := t.TempDir()
	t.Setenv("LYRA_HOME", filepath.Join(root, "home"))

	depDir := filepath.Join(root, "geometry")
	if err := os.MkdirAll(filepath.Join(depDir, "src"), 0o755); err != nil {
		t.Fatalf("mkdir dep: %v", err)
	}
	writeFile(t, filepath.Join(depDir, "src", "circle.lyra"), `
class Circle {
    public r: number = 0;
    public constructor(r: number) { this.r = r; }
    public diameter(): number { return this.r * 2; }
}
`)
	commit := initGitRepo(t, depDir)

	appDir := filepath.Join(root, "app")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		t.Fatalf("mkdir app: %v", err)
	}
	writeFile(t, filepath.Join(appDir, driver.ManifestName), `
name: app
targets:
  main: main.lyra
dependencies:
  geometry:
    git: `+depDir+`
`)
	writeFile(t, filepath.Join(appDir, "main.lyra"), `
import {Circle} from "@geometry/src/circle"
print(new Circle(4).diameter());
`)
	t.Chdir(appDir)

	code, _, stderr := captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "lyra deps install") {
		t.Fatalf("run before install = %d %q", code, stderr)
	}

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("deps install = %d\nstdout:%s\nstderr:%s", code, stdout, stderr)
	}
	lock, err := driver.LoadLockfile(filepath.Join(appDir, driver.LockfileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	locked, ok := lock.Find("geometry")
	if !ok || locked.Revision != commit || locked.Source != depDir {
		t.Fatalf("lock entry = %#v, want revision %s", locked, commit)
	}

	code, stdout, stderr = captureCLI(t, []string{"run"})
	if code != 0 || strings.TrimSpace(stdout) != "8" {
		t.Fatalf("run after install = %d %q %q", code, stdout, stderr)
	}

	code, stdout, _ = captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "(cached)") || !strings.Contains(stdout, "already up to date") {
		t.Fatalf("second install = %d %q", code, stdout)
	}
}

func TestDepsUpdateRejectsUnknownDependency(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LYRA_HOME", filepath.Join(dir, "home"))
	writeFile(t, filepath.Join(dir, driver.ManifestName), "name: app\n")
	t.Chdir(dir)
	code, _, stderr := captureCLI(t, []string{"deps", "update", "ghost"})
	if code != 1 || !strings.Contains(stderr, `dependency "ghost" not declared`) {
		t.Fatalf("deps update ghost = %d %q", code, stderr)
	}
}

func TestReplLoop(t *testing.T) {
	var stdout, stderr, out bytes.Buffer
	engine, err := interpreter.NewEngine(interpreter.EngineOptions{Stdout: &stdout, Stderr: &stderr})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	inputs := []string{
		"let x = 2;",
		"class A {",
		"    public v(): number { return 40; }",
		"}",
		"new A().v() + x;",
		"let broken: number = \"s\";",
		"null;",
		"print(\"side\");",
		":help",
		":quit",
		"never read",
	}
	var prompts []string
	readLine := func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		if len(inputs) == 0 {
			return "", io.EOF
		}
		line := inputs[0]
		inputs = inputs[1:]
		return line, nil
	}
	var history []string
	replLoop(engine.NewSession(), readLine, func(s string) { history = append(history, s) }, &out)

	if got := out.String(); got != "42\nunknown command. Type :quit to exit.\n" {
		t.Fatalf("repl output = %q", got)
	}
	if strings.TrimSpace(stdout.String()) != "side" {
		t.Fatalf("program stdout = %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "[TypeError]") {
		t.Fatalf("type error not reported: %q", stderr.String())
	}
	if len(inputs) != 1 {
		t.Fatalf("repl did not stop at :quit, %d inputs left", len(inputs))
	}
	if prompts[2] != promptCont || prompts[3] != promptCont {
		t.Fatalf("class body should use continuation prompts: %q", prompts)
	}
	if len(history) != 6 || history[1] != "class A {     public v(): number { return 40; } }" {
		t.Fatalf("history = %q", history)
	}
}

func TestIncompleteInput(t *testing.T) {
	cases := map[string]bool{
		"let x = 1;":         false,
		"class A {":          true,
		"/* open comment":    true,
		"let x = ;":          false,
		"print((1 + 2)":      true,
		"foreach (n in [1]) ": true,
	}
	for src, want := range cases {
		if got := incomplete(src); got != want {
			t.Fatalf("incomplete(%q) = %v, want %v", src, got, want)
		}
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func initGitRepo(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Lyra CLI",
			Email: "lyra@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}

	os.Stdout = stdout
	os.Stderr = stderr

	outBytes, err := io.ReadAll(rOut)
	if err != nil {
		t.Fatalf("stdout read: %v", err)
	}
	errBytes, err := io.ReadAll(rErr)
	if err != nil {
		t.Fatalf("stderr read: %v", err)
	}
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}

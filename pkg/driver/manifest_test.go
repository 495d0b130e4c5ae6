package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadManifestBasic(t *testing.T) {
	path := writeManifest(t, `
name: lyra-demo
version: "0.1.0"
authors:
  - Ada
  - Grace
targets:
  app: src/main.lyra
  checks:
    type: test
    main: test/all.lyra
dependencies:
  utils:
    git: https://example.com/utils.git
    tag: v1.0.0
  local: ../local
settings:
  max_call_depth: 2048
  natives: [Regex, Map]
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest returned error: %v", err)
	}
	if got, want := manifest.Name, "lyra_demo"; got != want {
		t.Fatalf("Name = %q, want %q", got, want)
	}
	if len(manifest.Authors) != 2 || manifest.Authors[1] != "Grace" {
		t.Fatalf("Authors unexpected: %#v", manifest.Authors)
	}
	app, ok := manifest.Targets["app"]
	if !ok || app.Type != TargetTypeExecutable || app.Main != "src/main.lyra" {
		t.Fatalf("app target not parsed: %#v", app)
	}
	if checks := manifest.Targets["checks"]; checks == nil || checks.Type != TargetTypeTest {
		t.Fatalf("checks target not parsed: %#v", checks)
	}
	if got := strings.Join(manifest.TargetOrder, ","); got != "app,checks" {
		t.Fatalf("TargetOrder unexpected: %s", got)
	}
	utils := manifest.Dependencies["utils"]
	if !utils.IsGit() || utils.Reference() != "v1.0.0" {
		t.Fatalf("git dependency not parsed: %#v", utils)
	}
	if local := manifest.Dependencies["local"]; local == nil || local.Path != "../local" {
		t.Fatalf("path shorthand not parsed: %#v", local)
	}
	if manifest.Settings.MaxCallDepth != 2048 {
		t.Fatalf("MaxCallDepth = %d, want 2048", manifest.Settings.MaxCallDepth)
	}
	if got := strings.Join(manifest.Settings.Natives, ","); got != "Regex,Map" {
		t.Fatalf("Natives = %q", got)
	}
	if got, want := manifest.MainPath(app), filepath.Join(filepath.Dir(path), "src", "main.lyra"); got != want {
		t.Fatalf("MainPath = %q, want %q", got, want)
	}
}

func TestLoadManifestValidation(t *testing.T) {
	path := writeManifest(t, `
name: ""
targets:
  cli: ""
dependencies:
  util: {}
  pinned:
    path: ../pinned
    tag: v2
settings:
  max_call_depth: -1
`)

	_, err := LoadManifest(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	msg := err.Error()
	wantFragments := []string{
		"name must be provided",
		`target "cli" requires a main entrypoint`,
		"dependencies.util: must specify git or path",
		"dependencies.pinned: rev, tag and branch apply only to git dependencies",
		"settings.max_call_depth must not be negative",
	}
	for _, fragment := range wantFragments {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("validation error missing fragment %q: %s", fragment, msg)
		}
	}
}

func TestLoadManifestRejectsUnknownFields(t *testing.T) {
	path := writeManifest(t, `
name: demo
licence: MIT
`)
	if _, err := LoadManifest(path); err == nil || !strings.Contains(err.Error(), "licence") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestManifestFindTarget(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  app-server: src/app.lyra
  helper: src/helper.lyra
`)

	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}
	if target, ok := manifest.FindTarget("app_server"); !ok || target.OriginalName != "app-server" {
		t.Fatalf("FindTarget sanitized app_server failed: %#v", target)
	}
	if target, ok := manifest.FindTarget("APP-SERVER"); !ok || target.OriginalName != "app-server" {
		t.Fatalf("FindTarget case-insensitive lookup failed: %#v", target)
	}
	if target, ok := manifest.FindTarget("missing"); ok || target != nil {
		t.Fatalf("FindTarget missing should be nil, got %#v", target)
	}
	target, err := manifest.DefaultExecutableTarget()
	if err != nil || target.OriginalName != "app-server" {
		t.Fatalf("DefaultExecutableTarget = %#v, %v", target, err)
	}
}

func TestManifestTargetAndDependencyLookups(t *testing.T) {
	path := writeManifest(t, `
name: demo
targets:
  app: main.lyra
  unit:
    type: test
    main: test/unit.lyra
dependencies:
  zeta-lib: ../zeta
  alpha: ../alpha
`)
	manifest, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	unit, ok := manifest.FirstTarget(TargetTypeTest)
	if !ok || unit.OriginalName != "unit" {
		t.Fatalf("FirstTarget(test) = %#v", unit)
	}
	if _, ok := manifest.FirstTarget(TargetTypeLibrary); ok {
		t.Fatalf("unexpected library target")
	}
	if dep, ok := manifest.Dependency("zeta-lib"); !ok || dep.Path != "../zeta" {
		t.Fatalf("Dependency(zeta-lib) = %#v", dep)
	}
	if _, ok := manifest.Dependency("missing"); ok {
		t.Fatalf("unexpected dependency")
	}
	if got := strings.Join(manifest.DependencyNames(), ","); got != "alpha,zeta_lib" {
		t.Fatalf("DependencyNames = %s", got)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	path := writeManifest(t, "name: demo\n")
	nested := filepath.Join(filepath.Dir(path), "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	found, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest error: %v", err)
	}
	if found != path {
		t.Fatalf("FindManifest = %q, want %q", found, path)
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lock := NewLockfile("demo", "lyra")
	lock.Put(&LockedPackage{Name: "zeta", Source: "https://example.com/zeta.git", Revision: "abc"})
	lock.Put(&LockedPackage{Name: "alpha-lib", Source: "https://example.com/alpha.git", Ref: "v1", Revision: "0123456789abcdef"})
	lock.Put(&LockedPackage{Name: "zeta", Source: "https://example.com/zeta.git", Revision: "def"})

	path := filepath.Join(dir, LockfileName)
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if len(loaded.Packages) != 2 || loaded.Packages[0].Name != "alpha_lib" {
		t.Fatalf("packages not normalized: %#v", loaded.Packages)
	}
	zeta, ok := loaded.Find("zeta")
	if !ok || zeta.Revision != "def" {
		t.Fatalf("Put did not replace zeta: %#v", zeta)
	}
	if got := DependencyDir("/cache", "alpha-lib", "0123456789abcdef"); got != filepath.Join("/cache", "deps", "alpha_lib@0123456789ab") {
		t.Fatalf("DependencyDir = %q", got)
	}
}

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

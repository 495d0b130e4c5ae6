package interpreter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
)

type fixtureManifest struct {
	Description string `json:"description"`
	Entry       string `json:"entry"`
	Expect      struct {
		Result *struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
		} `json:"result"`
		Stdout     []string `json:"stdout"`
		Errors     []string `json:"errors"`
		ErrorKinds []string `json:"errorKinds"`
	} `json:"expect"`
}

func readManifest(t *testing.T, dir string) fixtureManifest {
	t.Helper()
	manifestPath := filepath.Join(dir, "manifest.json")
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("read manifest %s: %v", manifestPath, err)
	}
	var manifest fixtureManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("parse manifest %s: %v", manifestPath, err)
	}
	if manifest.Entry == "" {
		manifest.Entry = "main.lyra"
	}
	return manifest
}

func fixtureDirs(t *testing.T) []string {
	t.Helper()
	root := filepath.Join("testdata", "fixtures")
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read fixtures: %v", err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(root, entry.Name()))
		}
	}
	sort.Strings(dirs)
	return dirs
}

func TestFixtures(t *testing.T) {
	for _, dir := range fixtureDirs(t) {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			runFixture(t, dir)
		})
	}
}

func runFixture(t *testing.T, dir string) {
	manifest := readManifest(t, dir)
	engine := newTestEngine(t, EngineOptions{})
	val, err := engine.Run(filepath.Join(dir, manifest.Entry))

	if len(manifest.Expect.Errors) > 0 {
		if err == nil {
			t.Fatalf("%s: expected errors %v, run succeeded", manifest.Description, manifest.Expect.Errors)
		}
		report := engine.stderr.String()
		for _, fragment := range manifest.Expect.Errors {
			if !strings.Contains(report, fragment) {
				t.Fatalf("report missing %q:\n%s", fragment, report)
			}
		}
		for _, kind := range manifest.Expect.ErrorKinds {
			if !diagnostics.IsKind(err, diagnostics.Kind(kind)) {
				t.Fatalf("error %v is not a %s", err, kind)
			}
		}
	} else if err != nil {
		t.Fatalf("%s: %v\n%s", manifest.Description, err, engine.stderr.String())
	}

	if manifest.Expect.Stdout != nil || len(manifest.Expect.Errors) == 0 {
		expectLines(t, outputLines(engine.stdout.String()), manifest.Expect.Stdout...)
	}

	if res := manifest.Expect.Result; res != nil && err == nil {
		if got := val.Kind().String(); got != res.Kind {
			t.Fatalf("result kind = %s, want %s", got, res.Kind)
		}
		if got := New(Options{}).Stringify(val); got != res.Value {
			t.Fatalf("result = %q, want %q", got, res.Value)
		}
	}
}

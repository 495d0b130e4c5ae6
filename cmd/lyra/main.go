package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
	"github.com/tonirenner/lyrascript-sub001/pkg/interpreter"
)

const cliToolVersion = "lyra 0.1.0-dev"

var errManifestNotFound = errors.New(driver.ManifestName + " not found")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	args, verbose := extractFlag(args, "--verbose", "-v")
	logger := newLogger(os.Stderr, verbose)

	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:], logger)
	case "check":
		return runCheck(args[1:], logger)
	case "test":
		return runTests(args[1:], logger)
	case "repl":
		return runRepl(args[1:], logger)
	case "deps":
		return runDeps(args[1:], logger)
	default:
		return runEntry(args, logger)
	}
}

func extractFlag(args []string, names ...string) ([]string, bool) {
	out := make([]string, 0, len(args))
	found := false
	for _, arg := range args {
		matched := false
		for _, name := range names {
			if arg == name {
				matched = true
				break
			}
		}
		if matched {
			found = true
			continue
		}
		out = append(out, arg)
	}
	return out, found
}

// newLogger returns a debug text logger on w when verbose is set or LYRA_LOG
// names a level, and a discarding logger otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelDebug
	switch strings.ToLower(strings.TrimSpace(os.Getenv("LYRA_LOG"))) {
	case "":
		if !verbose {
			return slog.New(slog.DiscardHandler)
		}
	case "debug":
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	case "off", "none":
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// project is the manifest context of one invocation: nil fields mean the entry
// runs as a plain file.
type project struct {
	manifest *driver.Manifest
	lock     *driver.Lockfile
}

// resolveEntry maps the command arguments to an entry file. With no argument the
// first manifest target of kind is used; an argument naming a target wins over a
// file of the same name.
func resolveEntry(command string, args []string, kind driver.TargetType) (string, *project, error) {
	if len(args) > 1 {
		return "", nil, fmt.Errorf("unexpected arguments: %s", strings.Join(args[1:], " "))
	}

	if len(args) == 0 {
		manifest, err := loadManifestFrom(".")
		if err != nil {
			if errors.Is(err, errManifestNotFound) {
				return "", nil, fmt.Errorf("lyra %s requires a manifest target or source file (%s not found)", command, driver.ManifestName)
			}
			return "", nil, fmt.Errorf("failed to load manifest: %w", err)
		}
		target, ok := manifest.FirstTarget(kind)
		if !ok {
			return "", nil, fmt.Errorf("manifest %s has no %s target", manifest.Path, kind)
		}
		proj, err := openProject(manifest)
		if err != nil {
			return "", nil, err
		}
		return manifest.MainPath(target), proj, nil
	}

	candidate := strings.TrimSpace(args[0])
	if manifest, err := loadManifestFrom("."); err == nil {
		if target, ok := manifest.FindTarget(candidate); ok && !looksLikePathCandidate(candidate) {
			proj, err := openProject(manifest)
			if err != nil {
				return "", nil, err
			}
			return manifest.MainPath(target), proj, nil
		}
	} else if !errors.Is(err, errManifestNotFound) && !looksLikePathCandidate(candidate) {
		return "", nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	manifest, err := loadManifestFrom(candidate)
	switch {
	case err == nil:
		proj, err := openProject(manifest)
		if err != nil {
			return "", nil, err
		}
		return candidate, proj, nil
	case errors.Is(err, errManifestNotFound):
		return candidate, &project{}, nil
	default:
		return "", nil, fmt.Errorf("failed to read manifest for %s: %w", candidate, err)
	}
}

func openProject(manifest *driver.Manifest) (*project, error) {
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		return nil, err
	}
	return &project{manifest: manifest, lock: lock}, nil
}

func newEngine(proj *project, logger *slog.Logger) (*interpreter.Engine, error) {
	opts := interpreter.EngineOptions{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
	if cwd, err := os.Getwd(); err == nil {
		opts.Loader.SearchPaths = []string{cwd}
	}
	if proj != nil && proj.manifest != nil {
		opts.Loader.Manifest = proj.manifest
		opts.Loader.Lockfile = proj.lock
		opts.Loader.SearchPaths = append([]string{proj.manifest.Dir()}, opts.Loader.SearchPaths...)
		cacheRoot, err := driver.DefaultCacheRoot()
		if err != nil {
			return nil, err
		}
		opts.Loader.CacheRoot = cacheRoot
	}
	return interpreter.NewEngine(opts)
}

func runEntry(args []string, logger *slog.Logger) int {
	entry, proj, err := resolveEntry("run", args, driver.TargetTypeExecutable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	engine, err := newEngine(proj, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize engine: %v\n", err)
		return 1
	}
	logger.Debug("running", "entry", entry)
	if _, err := engine.Run(entry); err != nil {
		// The engine has already reported the error.
		return 1
	}
	return 0
}

func runCheck(args []string, logger *slog.Logger) int {
	entry, proj, err := resolveEntry("check", args, driver.TargetTypeExecutable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	engine, err := newEngine(proj, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize engine: %v\n", err)
		return 1
	}
	if err := engine.Check(entry); err != nil {
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s: ok\n", entry)
	return 0
}

func runTests(args []string, logger *slog.Logger) int {
	entry, proj, err := resolveEntry("test", args, driver.TargetTypeTest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	engine, err := newEngine(proj, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize engine: %v\n", err)
		return 1
	}
	report, err := engine.Test(entry)
	if err != nil {
		return 1
	}
	for _, res := range report.Results {
		fmt.Fprintf(os.Stdout, "%s %s (%s)\n", res.Status, res.Name, res.Duration.Round(time.Microsecond))
	}
	fmt.Fprintf(os.Stdout, "%d passed, %d failed, %d skipped\n", report.Passed(), report.Failed(), report.Skipped())
	if report.Failed() > 0 {
		return 1
	}
	return 0
}

func runDeps(args []string, logger *slog.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "lyra deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "lyra deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall(nil, false, logger)
	case "update":
		return runDepsInstall(args[1:], true, logger)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// runDepsInstall fetches missing git dependencies and records them in lyra.lock.
// With update set, the named dependencies (every one when names is empty) are
// re-resolved even if already locked.
func runDepsInstall(names []string, update bool, logger *slog.Logger) int {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestName, err)
		return 1
	}
	cacheDir, err := driver.DefaultCacheRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve LYRA_HOME: %v\n", err)
		return 1
	}

	refresh := make(map[string]bool)
	if update {
		if len(names) == 0 {
			names = manifest.DependencyNames()
		}
		for _, name := range names {
			if _, ok := manifest.Dependency(name); !ok {
				fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", name)
				return 1
			}
			refresh[strings.ReplaceAll(strings.TrimSpace(name), "-", "_")] = true
		}
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Tool = cliToolVersion

	installer := newDependencyInstaller(manifest, cacheDir, logger)
	changed, logs, err := installer.Install(lock, refresh)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, lockPath)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	absStart, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve manifest search path %q: %w", start, err)
	}
	if info, statErr := os.Stat(absStart); statErr == nil && !info.IsDir() {
		absStart = filepath.Dir(absStart)
	}
	manifestPath, err := driver.FindManifest(absStart)
	if err != nil {
		return nil, err
	}
	if manifestPath == "" {
		return nil, fmt.Errorf("no %s found from %s upwards: %w", driver.ManifestName, absStart, errManifestNotFound)
	}
	return driver.LoadManifest(manifestPath)
}

func lockfilePath(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileName)
}

// loadLockfileForManifest returns nil when the project has no git dependencies
// and no lock file yet.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lockPath := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if manifestHasGitDependencies(manifest) {
				return nil, fmt.Errorf("%s missing for %q; run `lyra deps install`", driver.LockfileName, manifest.Name)
			}
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile %s: %w", lockPath, err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}

func manifestHasGitDependencies(manifest *driver.Manifest) bool {
	for _, dep := range manifest.Dependencies {
		if dep.IsGit() {
			return true
		}
	}
	return false
}

func looksLikePathCandidate(arg string) bool {
	if arg == "" {
		return false
	}
	if strings.Contains(arg, "/") || strings.Contains(arg, "\\") {
		return true
	}
	if filepath.Ext(arg) == driver.SourceExtension {
		return true
	}
	return strings.HasPrefix(arg, ".")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lyra run [target]")
	fmt.Fprintln(os.Stderr, "  lyra run <file.lyra>")
	fmt.Fprintln(os.Stderr, "  lyra <file.lyra>")
	fmt.Fprintln(os.Stderr, "  lyra check [target | file.lyra]")
	fmt.Fprintln(os.Stderr, "  lyra test [target | file.lyra]")
	fmt.Fprintln(os.Stderr, "  lyra repl")
	fmt.Fprintln(os.Stderr, "  lyra deps install")
	fmt.Fprintln(os.Stderr, "  lyra deps update [dependency ...]")
	fmt.Fprintln(os.Stderr, "Flags: --verbose (or LYRA_LOG=debug|info|warn|error)")
}

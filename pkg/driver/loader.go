package driver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tonirenner/lyrascript-sub001/pkg/ast"
	"github.com/tonirenner/lyrascript-sub001/pkg/diagnostics"
	"github.com/tonirenner/lyrascript-sub001/pkg/native"
	"github.com/tonirenner/lyrascript-sub001/pkg/parser"
)

// SourceExtension is appended to import paths that carry none.
const SourceExtension = ".lyra"

// LoaderOptions configures module resolution.
type LoaderOptions struct {
	// Natives defaults to native.Standard(). A manifest natives allow-list
	// restricts it further.
	Natives *native.Registry
	// SearchPaths are extra roots for imports that do not resolve relative to
	// the importing file. LYRA_PATH entries are appended.
	SearchPaths []string
	// Manifest and Lockfile enable "@dep/..." imports.
	Manifest  *Manifest
	Lockfile  *Lockfile
	CacheRoot string
	Logger    *slog.Logger
}

// Loader wires Lyra source files into a linked Program.
type Loader struct {
	natives     *native.Registry
	searchPaths []string
	manifest    *Manifest
	lock        *Lockfile
	cacheRoot   string
	logger      *slog.Logger
	// parsed native signatures, reused so every program links the same
	// declarations
	nativeModules map[string]*Module
}

// NewLoader constructs a loader.
func NewLoader(opts LoaderOptions) (*Loader, error) {
	natives := opts.Natives
	if natives == nil {
		natives = native.Standard()
	}
	if opts.Manifest != nil && len(opts.Manifest.Settings.Natives) > 0 {
		restricted, err := natives.Restrict(opts.Manifest.Settings.Natives)
		if err != nil {
			return nil, fmt.Errorf("loader: manifest natives: %w", err)
		}
		natives = restricted
	}

	roots := append([]string{}, opts.SearchPaths...)
	if env := os.Getenv("LYRA_PATH"); env != "" {
		roots = append(roots, filepath.SplitList(env)...)
	}
	unique := make([]string, 0, len(roots))
	seen := make(map[string]struct{}, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search path %q: %w", root, err)
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		unique = append(unique, abs)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{
		natives:     natives,
		searchPaths: unique,
		manifest:    opts.Manifest,
		lock:        opts.Lockfile,
		cacheRoot:   opts.CacheRoot,
		logger:      logger,
	}, nil
}

// Natives is the registry programs from this loader link against.
func (l *Loader) Natives() *native.Registry { return l.natives }

// Load reads and links the entry file and everything it imports.
func (l *Loader) Load(entry string) (*Program, error) {
	if entry == "" {
		return nil, fmt.Errorf("loader: empty entry path")
	}
	entryPath, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve entry path: %w", err)
	}
	info, err := os.Stat(entryPath)
	if err != nil {
		return nil, fmt.Errorf("loader: stat entry %s: %w", entryPath, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("loader: entry path %s is a directory", entryPath)
	}
	data, err := os.ReadFile(entryPath)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", entryPath, err)
	}
	return l.LoadSource(entryPath, string(data))
}

// LoadSource links source as the entry module. Relative imports resolve against
// the directory of path (the working directory when path is not a file).
// Preloaded modules, such as the earlier inputs of an interactive session, are
// linked in as if they had been imported.
func (l *Loader) LoadSource(path, source string, preloaded ...*Module) (*Program, error) {
	entryAST, err := parser.ParseProgram(path, source)
	if err != nil {
		return nil, err
	}
	entry := &Module{Path: path, Source: source, AST: entryAST}

	loaded := make(map[string]*Module)
	var ordered []*Module
	nativeSeen := make(map[string]bool)
	var nativeNames []string
	for _, class := range l.natives.Prelude() {
		nativeSeen[class.Name] = true
		nativeNames = append(nativeNames, class.Name)
	}

	useNatives := func(imp *ast.ImportStatement) error {
		for _, name := range imp.Names {
			if _, ok := l.natives.Class(name.Name); !ok {
				return diagnostics.New(diagnostics.KindType, name.Span(), "unknown native class '%s'", name.Name)
			}
			if !nativeSeen[name.Name] {
				nativeSeen[name.Name] = true
				nativeNames = append(nativeNames, name.Name)
			}
		}
		return nil
	}

	for _, mod := range preloaded {
		if mod == nil || mod.Native || mod.AST == nil {
			continue
		}
		loaded[mod.Path] = mod
		ordered = append(ordered, mod)
		for _, imp := range mod.AST.Imports {
			if imp.IsNative() {
				if err := useNatives(imp); err != nil {
					return nil, err
				}
			}
		}
	}
	loaded[entry.Path] = entry

	// A module already in loaded is either finished or on the current import
	// chain; both are fine, so import cycles terminate without error.
	var loadModule func(mod *Module) error
	loadModule = func(mod *Module) error {
		for _, imp := range mod.AST.Imports {
			if imp.IsNative() {
				if err := useNatives(imp); err != nil {
					return err
				}
				continue
			}
			depPath, err := l.resolveImport(mod.Path, imp.Source)
			if err != nil {
				return diagnostics.New(diagnostics.KindType, imp.Span(), "%s", err.Error())
			}
			dep, ok := loaded[depPath]
			if !ok {
				dep, err = l.parseFile(depPath)
				if err != nil {
					return err
				}
				loaded[depPath] = dep
				l.logger.Debug("module loaded", "path", depPath, "importer", mod.Path)
				if err := loadModule(dep); err != nil {
					return err
				}
				ordered = append(ordered, dep)
			}
			declared := declaredNames(dep.AST)
			for _, name := range imp.Names {
				if !declared[name.Name] {
					return diagnostics.New(diagnostics.KindType, name.Span(), "'%s' is not declared in %s", name.Name, imp.Source)
				}
			}
			mod.Imports = append(mod.Imports, depPath)
		}
		return nil
	}
	if err := loadModule(entry); err != nil {
		return nil, err
	}
	ordered = append(ordered, entry)

	classes, err := l.natives.Closure(nativeNames...)
	if err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}
	modules := make([]*Module, 0, len(classes)+len(ordered))
	for _, class := range classes {
		mod, err := l.nativeModule(class)
		if err != nil {
			return nil, err
		}
		modules = append(modules, mod)
	}
	modules = append(modules, ordered...)
	l.logger.Debug("program linked", "entry", path, "modules", len(modules))
	return Link(entry, modules, l.natives)
}

func (l *Loader) nativeModule(class *native.Class) (*Module, error) {
	if mod, ok := l.nativeModules[class.Name]; ok {
		return mod, nil
	}
	name := "<native:" + class.Name + ">"
	nativeAST, err := parser.ParseNative(name, class.Signature)
	if err != nil {
		return nil, fmt.Errorf("loader: native %s: %w", class.Name, err)
	}
	mod := &Module{Path: name, Source: class.Signature, AST: nativeAST, Native: true}
	if l.nativeModules == nil {
		l.nativeModules = make(map[string]*Module)
	}
	l.nativeModules[class.Name] = mod
	return mod, nil
}

func (l *Loader) parseFile(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", path, err)
	}
	source := string(data)
	tree, err := parser.ParseProgram(path, source)
	if err != nil {
		return nil, err
	}
	return &Module{Path: path, Source: source, AST: tree}, nil
}

// resolveImport maps an import source to an absolute file path. "@name/rest"
// goes through the manifest's dependencies; other paths are tried relative to the
// importer, then against each search path.
func (l *Loader) resolveImport(importer, source string) (string, error) {
	if source == "" {
		return "", fmt.Errorf("empty import path")
	}
	rel := filepath.FromSlash(source)
	if filepath.Ext(rel) == "" {
		rel += SourceExtension
	}

	if strings.HasPrefix(source, "@") {
		name, rest, _ := strings.Cut(strings.TrimPrefix(rel, "@"), string(filepath.Separator))
		root, err := l.dependencyRoot(name)
		if err != nil {
			return "", err
		}
		return existingFile(filepath.Join(root, rest), source)
	}
	if filepath.IsAbs(rel) {
		return existingFile(rel, source)
	}

	base := filepath.Dir(importer)
	if !filepath.IsAbs(importer) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working directory: %w", err)
		}
		base = wd
	}
	candidate := filepath.Join(base, rel)
	if fileExists(candidate) {
		return candidate, nil
	}
	if !strings.HasPrefix(source, ".") {
		for _, root := range l.searchPaths {
			if alt := filepath.Join(root, rel); fileExists(alt) {
				return alt, nil
			}
		}
	}
	return "", fmt.Errorf("cannot resolve import \"%s\"", source)
}

// dependencyRoot locates a manifest dependency on disk: path dependencies relative
// to the manifest, git dependencies in the cache at their locked revision.
func (l *Loader) dependencyRoot(name string) (string, error) {
	if l.manifest == nil {
		return "", fmt.Errorf("dependency '@%s' requires a %s", name, ManifestName)
	}
	dep, ok := l.manifest.Dependencies[sanitizeSegment(name)]
	if !ok {
		return "", fmt.Errorf("unknown dependency '@%s'", name)
	}
	if dep.Path != "" {
		if filepath.IsAbs(dep.Path) {
			return dep.Path, nil
		}
		return filepath.Join(l.manifest.Dir(), filepath.FromSlash(dep.Path)), nil
	}
	locked, ok := l.lock.Find(name)
	if !ok || locked.Revision == "" {
		return "", fmt.Errorf("dependency '@%s' is not installed (run 'lyra deps install')", name)
	}
	cache := l.cacheRoot
	if cache == "" {
		var err error
		if cache, err = DefaultCacheRoot(); err != nil {
			return "", err
		}
	}
	return DependencyDir(cache, name, locked.Revision), nil
}

func existingFile(path, source string) (string, error) {
	if fileExists(path) {
		return path, nil
	}
	return "", fmt.Errorf("cannot resolve import \"%s\"", source)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func declaredNames(program *ast.Program) map[string]bool {
	names := make(map[string]bool)
	if program == nil {
		return names
	}
	for _, decl := range program.Classes() {
		names[decl.ID.Name] = true
	}
	for _, decl := range program.Interfaces() {
		names[decl.ID.Name] = true
	}
	return names
}

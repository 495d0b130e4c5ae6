package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/tonirenner/lyrascript-sub001/pkg/driver"
)

// dependencyInstaller brings the dependency cache in line with a manifest and
// records every git dependency's resolved commit in the lock file.
type dependencyInstaller struct {
	manifest *driver.Manifest
	cacheDir string
	fetcher  *gitFetcher
	logger   *slog.Logger
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string, logger *slog.Logger) *dependencyInstaller {
	return &dependencyInstaller{
		manifest: manifest,
		cacheDir: cacheDir,
		fetcher:  newGitFetcher(cacheDir),
		logger:   logger,
	}
}

// Install resolves every declared dependency. A locked git dependency whose
// source and ref are unchanged keeps its revision unless its name is in refresh.
// It reports whether lock changed, plus one log line per dependency.
func (d *dependencyInstaller) Install(lock *driver.Lockfile, refresh map[string]bool) (bool, []string, error) {
	changed := false
	var logs []string

	declared := make(map[string]bool)
	for _, name := range d.manifest.DependencyNames() {
		dep := d.manifest.Dependencies[name]
		declared[name] = true
		if !dep.IsGit() {
			dir := dep.Path
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(d.manifest.Dir(), filepath.FromSlash(dir))
			}
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				return changed, logs, fmt.Errorf("dependency %q: path %s is not a directory", name, dir)
			}
			logs = append(logs, fmt.Sprintf("%s: path %s", name, dir))
			continue
		}

		locked, ok := lock.Find(name)
		pinned := ""
		if ok && !refresh[name] && locked.Source == dep.Git && locked.Ref == dep.Reference() {
			pinned = locked.Revision
		}
		if pinned != "" {
			if _, err := os.Stat(driver.DependencyDir(d.cacheDir, name, pinned)); err == nil {
				logs = append(logs, fmt.Sprintf("%s: %s (cached)", name, shortRevision(pinned)))
				continue
			}
		}

		revision, err := d.fetcher.Fetch(name, dep, pinned)
		if err != nil {
			return changed, logs, err
		}
		d.logger.Debug("dependency fetched", "name", name, "source", dep.Git, "revision", revision)
		if !ok || locked.Revision != revision || locked.Source != dep.Git || locked.Ref != dep.Reference() {
			changed = true
		}
		lock.Put(&driver.LockedPackage{Name: name, Source: dep.Git, Ref: dep.Reference(), Revision: revision})
		logs = append(logs, fmt.Sprintf("%s: %s %s", name, dep.Git, shortRevision(revision)))
	}

	kept := lock.Packages[:0]
	for _, pkg := range lock.Packages {
		if pkg != nil && declared[pkg.Name] && d.manifest.Dependencies[pkg.Name].IsGit() {
			kept = append(kept, pkg)
			continue
		}
		if pkg != nil {
			logs = append(logs, fmt.Sprintf("%s: removed from lock", pkg.Name))
		}
		changed = true
	}
	lock.Packages = kept
	return changed, logs, nil
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch clones the dependency, resolves pinned (or the manifest ref when pinned
// is empty) to a commit and leaves a checkout at driver.DependencyDir. It returns
// the full commit hash.
func (g *gitFetcher) Fetch(name string, spec *driver.DependencySpec, pinned string) (string, error) {
	if g == nil {
		return "", errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return "", fmt.Errorf("dependency %q: git URL required", name)
	}

	tmpRoot := filepath.Join(g.cacheDir, "tmp")
	if err := os.MkdirAll(tmpRoot, 0o755); err != nil {
		return "", err
	}
	tmpDir, err := os.MkdirTemp(tmpRoot, "git-fetch-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:               url,
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	})
	if err != nil {
		return "", fmt.Errorf("git clone %s: %w", url, err)
	}

	revision := gitRevisionFromSpec(spec)
	if pinned != "" {
		revision = plumbing.Revision(pinned)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return "", fmt.Errorf("dependency %q: resolve revision %s: %w", name, revision, err)
	}

	targetDir := driver.DependencyDir(g.cacheDir, name, hash.String())
	if _, err := os.Stat(targetDir); err == nil {
		return hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", fmt.Errorf("git checkout %s: %w", revision, err)
	}
	if err := os.MkdirAll(filepath.Dir(targetDir), 0o755); err != nil {
		return "", err
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		return "", err
	}
	return hash.String(), nil
}

// gitRevisionFromSpec maps the manifest ref to a revision in a fresh clone: only
// the default branch exists locally, so branches resolve through origin.
func gitRevisionFromSpec(spec *driver.DependencySpec) plumbing.Revision {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev)
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag)
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision("refs/remotes/origin/" + branch)
	}
	return plumbing.Revision("HEAD")
}

package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/corplang/mp/internal/corperr"
	"github.com/corplang/mp/internal/interp"
	"github.com/corplang/mp/internal/parser"
	"github.com/corplang/mp/pkg/token"
)

// sourceExtensions are the two recognized Corplang file suffixes, tried in
// order when a bare module name is resolved to a file.
var sourceExtensions = []string{".mp", ".mf"}

// conventionalDirs are searched, in order, under the current working
// directory when a module isn't found relative to the importing file.
var conventionalDirs = []string{"", "src", "lib", "modules"}

type cacheEntry struct {
	ns  *interp.ModuleNamespace
	err error
}

// Loader implements interp.ModuleLoader: resolution order is the stdlib
// manifest, then a path relative to the importing file, then the working
// directory and its conventional subdirectories, then the packaged stdlib
// root. Modules are parsed and executed at most once; a module that
// re-enters its own import (directly or through a cycle) observes the
// partial namespace seeded before its body ran.
type Loader struct {
	// Interp runs each resolved module's body. Set after both the
	// Interpreter and Loader are constructed, since the two hold a
	// reference to one another (Interpreter.Loader, Loader.Interp).
	Interp *interp.Interpreter

	Manifest    *Manifest
	StdlibRoot  string
	SearchPaths []string

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

// New creates a Loader. manifest and stdlibRoot may be empty/nil if no
// stdlib is configured; extraSearchPaths are consulted after the
// conventional src/lib/modules directories.
func New(manifest *Manifest, stdlibRoot string, extraSearchPaths []string) *Loader {
	return &Loader{
		Manifest:    manifest,
		StdlibRoot:  stdlibRoot,
		SearchPaths: extraSearchPaths,
		cache:       make(map[string]*cacheEntry),
	}
}

// ImportModule resolves, parses, and executes name, returning its exported
// namespace. Re-entrant imports (cycles) return the partial namespace
// seeded before the module's body finished running.
func (l *Loader) ImportModule(name, currentFile string) (*interp.ModuleNamespace, error) {
	path, restricted, err := l.resolve(name, currentFile)
	if err != nil {
		return nil, err
	}
	if restricted {
		policy := l.Interp.Security
		if policy == nil || !policy.AllowImport(name) {
			return nil, corperr.New(corperr.SecurityError, token.Position{}, currentFile,
				fmt.Sprintf("import of %q is restricted by the stdlib manifest", name))
		}
	}

	l.mu.Lock()
	if cached, ok := l.cache[path]; ok {
		l.mu.Unlock()
		return cached.ns, cached.err
	}
	// Seed the cache with an empty namespace before executing the module's
	// body, so a re-entrant (cyclic) import observes this partial
	// namespace instead of recursing forever.
	seed := &interp.ModuleNamespace{Name: path, Vars: make(map[string]interp.Value)}
	l.cache[path] = &cacheEntry{ns: seed}
	l.mu.Unlock()

	ns, err := l.parseAndExecute(path)

	l.mu.Lock()
	l.cache[path] = &cacheEntry{ns: ns, err: err}
	l.mu.Unlock()

	return ns, err
}

func (l *Loader) parseAndExecute(path string) (*interp.ModuleNamespace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corperr.New(corperr.IOError, token.Position{}, path, err.Error())
	}

	prog, syntaxErrs := parser.Parse(string(data), path)
	if len(syntaxErrs) > 0 {
		msgs := make([]string, len(syntaxErrs))
		for i, e := range syntaxErrs {
			msgs[i] = e.Error()
		}
		return nil, corperr.New(corperr.SyntaxError, token.Position{}, path, strings.Join(msgs, "; "))
	}

	return l.Interp.Execute(prog)
}

// resolve implements the four-step search order, returning the resolved
// file path and whether the manifest marked it restricted.
func (l *Loader) resolve(name, currentFile string) (path string, restricted bool, err error) {
	if entry, ok := l.Manifest.Lookup(name); ok {
		p := entry.Path
		if !filepath.IsAbs(p) && l.StdlibRoot != "" {
			p = filepath.Join(l.StdlibRoot, p)
		}
		if _, statErr := os.Stat(p); statErr == nil {
			isRestricted := entry.Restricted() && !entry.AllowsImporter(currentFile)
			return p, isRestricted, nil
		}
	}

	rel := strings.ReplaceAll(name, ".", string(filepath.Separator))

	if currentFile != "" {
		dir := filepath.Dir(currentFile)
		if p, ok := findWithExtensions(filepath.Join(dir, rel)); ok {
			return p, false, nil
		}
	}

	cwd, _ := os.Getwd()
	for _, sub := range conventionalDirs {
		base := cwd
		if sub != "" {
			base = filepath.Join(cwd, sub)
		}
		if p, ok := findWithExtensions(filepath.Join(base, rel)); ok {
			return p, false, nil
		}
	}
	for _, sp := range l.SearchPaths {
		if p, ok := findWithExtensions(filepath.Join(sp, rel)); ok {
			return p, false, nil
		}
	}

	if l.StdlibRoot != "" {
		if p, ok := findWithExtensions(filepath.Join(l.StdlibRoot, rel)); ok {
			return p, false, nil
		}
	}

	msg := fmt.Sprintf("module %q not found", name)
	if hint := l.Manifest.suggestName(name); hint != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", hint)
	}
	return "", false, corperr.New(corperr.IOError, token.Position{}, currentFile, msg)
}

func findWithExtensions(base string) (string, bool) {
	for _, ext := range sourceExtensions {
		p := base + ext
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corplang/mp/internal/interp"
	"github.com/corplang/mp/internal/parser"
)

func runProgram(t *testing.T, i *interp.Interpreter, src, file string) (*interp.ModuleNamespace, error) {
	t.Helper()
	prog, errs := parser.Parse(src, file)
	if len(errs) != 0 {
		t.Fatalf("parse errors in %s: %v", file, errs)
	}
	return i.Execute(prog)
}

func newWiredInterp() (*interp.Interpreter, *Loader) {
	i := interp.New(os.Stdout)
	i.Security = interp.PermissiveSecurityPolicy{}
	l := New(nil, "", nil)
	l.Interp = i
	i.Loader = l
	return i, l
}

func writeFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestImportRelativeToImportingFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "greeter.mp", `var greeting = "hi"`)
	mainPath := writeFile(t, dir, "main.mp", `import greeter
var g = greeter.greeting`)

	i, _ := newWiredInterp()
	src, err := os.ReadFile(mainPath)
	if err != nil {
		t.Fatal(err)
	}
	ns, err := runProgram(t, i, string(src), mainPath)
	if err != nil {
		t.Fatalf("executing main.mp: %v", err)
	}
	if got := ns.Vars["g"].String(); got != "hi" {
		t.Errorf("g = %q, want %q", got, "hi")
	}
}

func TestFromImportAliasAndUnknownNameBindsNull(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.mp", `var answer = 42`)
	mainPath := writeFile(t, dir, "main.mp", `from util import answer as a, missing
var r = a`)

	i, _ := newWiredInterp()
	src, _ := os.ReadFile(mainPath)
	ns, err := runProgram(t, i, string(src), mainPath)
	if err != nil {
		t.Fatalf("executing main.mp: %v", err)
	}
	if got := ns.Vars["r"].String(); got != "42" {
		t.Errorf("r = %q, want 42", got)
	}
	if got, ok := ns.Vars["missing"]; !ok || got.String() != "null" {
		t.Errorf("missing = %v, want null binding", got)
	}
}

func TestCyclicImportReturnsPartialNamespace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.mp", `import b
var fromA = "a"`)
	writeFile(t, dir, "b.mp", `import a
var fromB = "b"`)
	entry := filepath.Join(dir, "entry.mp")

	_, l := newWiredInterp()
	ns, err := l.ImportModule("a", entry)
	if err != nil {
		t.Fatalf("importing a (which cyclically imports b, which imports a): %v", err)
	}
	if got := ns.Vars["fromA"].String(); got != "a" {
		t.Errorf("fromA = %q, want %q", got, "a")
	}
}

func TestUnknownModuleSuggestsClosestManifestName(t *testing.T) {
	dir := t.TempDir()
	manifestPath := writeFile(t, dir, "manifest.json", `[{"name":"core","path":"core.mp","security":"public"}]`)
	stdlibDir := t.TempDir()
	writeFile(t, stdlibDir, "core.mp", `var x = 1`)

	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("loading manifest: %v", err)
	}
	l := New(manifest, stdlibDir, nil)
	i := interp.New(os.Stdout)
	i.Security = interp.PermissiveSecurityPolicy{}
	l.Interp = i
	i.Loader = l

	_, err = l.ImportModule("cor", "")
	if err == nil {
		t.Fatal("expected an error for an unresolvable module")
	}
	if got := err.Error(); !contains(got, "did you mean") {
		t.Errorf("error = %q, want a suggestion mentioning %q", got, "core")
	}
}

func TestRestrictedManifestEntryDeniedOutsideGlob(t *testing.T) {
	dir := t.TempDir()
	stdlibDir := t.TempDir()
	writeFile(t, stdlibDir, "secret.mp", `var x = 1`)
	manifestPath := writeFile(t, dir, "manifest.json",
		`[{"name":"secret","path":"secret.mp","security":"restricted:vendor/*"}]`)

	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		t.Fatalf("loading manifest: %v", err)
	}
	l := New(manifest, stdlibDir, nil)
	i := interp.New(os.Stdout)
	// The manifest's "restricted:<glob>" only marks *which files may import
	// it without host approval; outside the glob, whether it's actually
	// denied is still up to the host's SecurityPolicy.Restricted set.
	i.Security = &interp.DefaultSecurityPolicy{Restricted: map[string]bool{"secret": true}}
	l.Interp = i
	i.Loader = l

	if _, err := l.ImportModule("secret", "app/main.mp"); err == nil {
		t.Fatal("expected the restricted manifest entry to be denied outside its glob")
	}

	// From within the allowed glob, the manifest itself clears the
	// restriction before the host policy is even consulted.
	if _, err := l.ImportModule("secret", "vendor/main.mp"); err != nil {
		t.Errorf("import from an allowed glob should succeed, got: %v", err)
	}
}

func TestLoadProjectConfigReadsYAMLAndAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "corplang.yaml", "module_search_paths:\n  - vendor\nstrict: false\nstdlib_path: /opt/stdlib\n")

	cfg, err := LoadProjectConfig(dir)
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if len(cfg.ModuleSearchPaths) != 1 || cfg.ModuleSearchPaths[0] != "vendor" {
		t.Errorf("ModuleSearchPaths = %v, want [vendor]", cfg.ModuleSearchPaths)
	}
	if cfg.Strict {
		t.Error("Strict = true, want false from the file")
	}

	t.Setenv("CORPLANG_STRICT", "true")
	t.Setenv("CORPLANG_STDLIB_PATH", "/env/stdlib")
	t.Setenv("CORPLANG_ACTIVE_VERSION", "v2")

	cfg, err = LoadProjectConfig(dir)
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if !cfg.Strict {
		t.Error("Strict = false, want true from CORPLANG_STRICT override")
	}
	if want := filepath.Join("/env/stdlib", "v2"); cfg.StdlibPath != want {
		t.Errorf("StdlibPath = %q, want %q", cfg.StdlibPath, want)
	}
}

func TestLoadProjectConfigMissingFileIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadProjectConfig(dir)
	if err != nil {
		t.Fatalf("LoadProjectConfig: %v", err)
	}
	if cfg.Strict || cfg.StdlibPath != "" || len(cfg.ModuleSearchPaths) != 0 {
		t.Errorf("cfg = %+v, want the zero value", cfg)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}

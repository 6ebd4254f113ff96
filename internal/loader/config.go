// Package loader implements Corplang's module loader: stdlib manifest
// resolution, relative/conventional path search, a packaged stdlib root,
// and cycle-safe caching, per spec's §4.4 contract. It depends on interp
// only through the interp.ModuleLoader interface to avoid an import cycle
// (the loader executes module bodies through an *interp.Interpreter it is
// attached to after construction).
package loader

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

// ProjectConfig is the optional corplang.yaml project file: module search
// paths, strict-mode, and a stdlib path override. Environment variables
// (CORPLANG_STRICT, CORPLANG_STDLIB_PATH, CORPLANG_ACTIVE_VERSION) always
// win over the file, matching the CLI's flags-over-defaults layering.
type ProjectConfig struct {
	ModuleSearchPaths []string `yaml:"module_search_paths"`
	Strict            bool     `yaml:"strict"`
	StdlibPath        string   `yaml:"stdlib_path"`
}

// LoadProjectConfig reads corplang.yaml from dir if present, then applies
// environment overrides. A missing file is not an error: the zero
// ProjectConfig (possibly still overridden by environment) is returned.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	cfg := &ProjectConfig{}

	path := filepath.Join(dir, "corplang.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if v, ok := os.LookupEnv("CORPLANG_STRICT"); ok {
		cfg.Strict = v != "" && v != "0" && v != "false"
	}
	if v, ok := os.LookupEnv("CORPLANG_STDLIB_PATH"); ok {
		cfg.StdlibPath = v
	}
	if v, ok := os.LookupEnv("CORPLANG_ACTIVE_VERSION"); ok && cfg.StdlibPath != "" {
		cfg.StdlibPath = filepath.Join(cfg.StdlibPath, v)
	}
	return cfg, nil
}

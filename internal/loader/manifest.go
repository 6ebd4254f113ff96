package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/maruel/natural"
	"github.com/tidwall/match"
)

// ManifestEntry describes one stdlib module: its declared name, the path to
// its source (relative to the stdlib root), and a security marker. Security
// is one of "", "public" (no restriction), "restricted" (denied unless the
// host's SecurityPolicy allows it), or "restricted:<glob>" (allowed when
// the importing file's path matches <glob>, e.g. "restricted:vendor/*";
// any other importer is subject to the host's SecurityPolicy as for
// "restricted").
type ManifestEntry struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	Security string `json:"security" yaml:"security"`
}

// Restricted reports whether the entry carries any access restriction.
func (e ManifestEntry) Restricted() bool {
	return strings.HasPrefix(e.Security, "restricted")
}

// AllowsImporter reports whether a "restricted:<glob>" entry's glob matches
// the importing file's path. Entries without a glob suffix always deny
// (the caller falls back to SecurityPolicy.AllowImport).
func (e ManifestEntry) AllowsImporter(currentFile string) bool {
	glob, ok := strings.CutPrefix(e.Security, "restricted:")
	if !ok {
		return false
	}
	return match.Match(filepath.ToSlash(currentFile), glob)
}

// Manifest is the stdlib root's declared module list, keyed by name.
type Manifest struct {
	entries map[string]ManifestEntry
}

// LoadManifest reads a stdlib manifest file, JSON or YAML by extension.
// A manifest is a list of ManifestEntry; duplicate names keep the first.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stdlib manifest: %w", err)
	}

	var list []ManifestEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &list)
	default:
		err = json.Unmarshal(data, &list)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing stdlib manifest %s: %w", path, err)
	}

	m := &Manifest{entries: make(map[string]ManifestEntry, len(list))}
	for _, e := range list {
		if _, exists := m.entries[e.Name]; exists {
			continue
		}
		m.entries[e.Name] = e
	}
	return m, nil
}

// Lookup finds a manifest entry by exact module name.
func (m *Manifest) Lookup(name string) (ManifestEntry, bool) {
	if m == nil {
		return ManifestEntry{}, false
	}
	e, ok := m.entries[name]
	return e, ok
}

// Names returns every declared module name, naturally sorted so "core2"
// precedes "core10" the way a human scanning the list would expect.
func (m *Manifest) Names() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
	return names
}

// suggestName returns the closest declared module name to a failed lookup,
// for the "module not found" diagnostic's suggestion line. Empty if the
// manifest has no entries close enough to be worth suggesting.
func (m *Manifest) suggestName(name string) string {
	best := ""
	bestDist := -1
	for _, candidate := range m.Names() {
		d := editDistance(name, candidate)
		if bestDist == -1 || d < bestDist {
			best, bestDist = candidate, d
		}
	}
	if bestDist >= 0 && bestDist <= 3 {
		return best
	}
	return ""
}

// editDistance is a plain Levenshtein distance, used only for the small
// "did you mean" nudge above; the stdlib manifest is never large enough to
// warrant anything fancier.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

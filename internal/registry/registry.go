// Package registry holds the canonical insurer roster for one ingestion run:
// the seeded entities plus the curated alias table of known alternate
// spellings. The registry is built once at run start and read-only afterwards.
package registry

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"

	"insurstat/pkg/contracts/domain"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize collapses internal whitespace runs to a single space and trims
// the ends. Display casing is preserved; matching elsewhere lowercases.
func Normalize(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Registry is the bidirectional insurer map: canonical identifier to display
// name, plus every known spelling (canonical names and aliases) back to its
// identifier.
type Registry struct {
	insurers []domain.Insurer
	byName   map[string]int64 // lowercased normalized spelling -> id
	names    []string         // every known spelling, display form
}

// Load reads the seed list and, when aliasPath is non-empty and exists, the
// alias override file. A missing or unreadable seed list is run-fatal by
// contract; a missing alias file is not.
func Load(seedPath, aliasPath string, logger *slog.Logger) (*Registry, error) {
	insurers, err := loadSeed(seedPath)
	if err != nil {
		return nil, err
	}
	reg := New(insurers)

	if aliasPath == "" {
		return reg, nil
	}
	aliases, err := loadAliases(aliasPath)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, err
	}
	for raw, canonical := range aliases {
		if !reg.AddAlias(raw, canonical) {
			logger.Warn("dropping alias with unknown canonical name",
				slog.String("alias", raw),
				slog.String("canonical", canonical))
		}
	}
	return reg, nil
}

// New builds a registry from an already-loaded seed list.
func New(insurers []domain.Insurer) *Registry {
	reg := &Registry{
		insurers: insurers,
		byName:   make(map[string]int64, len(insurers)),
	}
	for _, ins := range insurers {
		name := Normalize(ins.Name)
		key := strings.ToLower(name)
		if _, dup := reg.byName[key]; dup {
			continue
		}
		reg.byName[key] = ins.ID
		reg.names = append(reg.names, name)
	}
	return reg
}

// AddAlias registers an alternate spelling for a canonical name. Returns
// false when the canonical name is unknown; the caller decides whether that
// is worth a log line.
func (r *Registry) AddAlias(raw, canonical string) bool {
	id, ok := r.Lookup(canonical)
	if !ok {
		return false
	}
	name := Normalize(raw)
	key := strings.ToLower(name)
	if _, exists := r.byName[key]; exists {
		return true
	}
	r.byName[key] = id
	r.names = append(r.names, name)
	return true
}

// Lookup resolves an exact spelling (canonical or alias) case-insensitively.
func (r *Registry) Lookup(name string) (int64, bool) {
	id, ok := r.byName[strings.ToLower(Normalize(name))]
	return id, ok
}

// KnownNames returns every spelling the registry can resolve, for fuzzy
// scoring. The returned slice is shared; callers must not mutate it.
func (r *Registry) KnownNames() []string {
	return r.names
}

// Insurers returns the seeded roster.
func (r *Registry) Insurers() []domain.Insurer {
	return r.insurers
}

// Len reports the number of seeded insurers (aliases excluded).
func (r *Registry) Len() int {
	return len(r.insurers)
}

func loadSeed(path string) ([]domain.Insurer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read insurer seed list: %w", err)
	}
	var insurers []domain.Insurer
	if err := yaml.Unmarshal(data, &insurers); err != nil {
		return nil, fmt.Errorf("parse insurer seed list: %w", err)
	}
	if len(insurers) == 0 {
		return nil, fmt.Errorf("insurer seed list %s is empty", path)
	}
	seen := make(map[int64]struct{}, len(insurers))
	for _, ins := range insurers {
		if ins.ID <= 0 || strings.TrimSpace(ins.Name) == "" {
			return nil, fmt.Errorf("insurer seed list %s: invalid entry %+v", path, ins)
		}
		if _, dup := seen[ins.ID]; dup {
			return nil, fmt.Errorf("insurer seed list %s: duplicate id %d", path, ins.ID)
		}
		seen[ins.ID] = struct{}{}
	}
	return insurers, nil
}

func loadAliases(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	aliases := make(map[string]string)
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parse alias overrides: %w", err)
	}
	return aliases, nil
}

// Package resolve maps free-text insurer names to canonical identifiers.
package resolve

import (
	"sort"
	"sync"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"insurstat/internal/registry"
)

// IdentityAcceptScore is the minimum weighted-ratio similarity (0-100) to
// accept a fuzzy identity match. Stricter than header matching: a false
// entity match silently corrupts a financial record, a false header match
// merely drops a column.
const IdentityAcceptScore = 85

// Resolver resolves raw name strings against the registry. Exact matches
// after normalization short-circuit the fuzzy pass. Every name that fails
// resolution is remembered, deduplicated, for the run's unresolved-name log.
// Safe for concurrent use by period workers.
type Resolver struct {
	reg *registry.Registry

	mu         sync.Mutex
	unresolved map[string]struct{}
}

// New builds a resolver over the given registry.
func New(reg *registry.Registry) *Resolver {
	return &Resolver{
		reg:        reg,
		unresolved: make(map[string]struct{}),
	}
}

// Resolve maps a raw name to a canonical insurer id. Returns ok=false for
// unresolvable names after recording them; it never fails the caller.
func (r *Resolver) Resolve(raw string) (int64, bool) {
	name := registry.Normalize(raw)
	if name == "" {
		return 0, false
	}
	if id, ok := r.reg.Lookup(name); ok {
		return id, true
	}

	bestScore := -1
	bestName := ""
	for _, known := range r.reg.KnownNames() {
		score := fuzzy.WRatio(name, known)
		if score > bestScore {
			bestScore = score
			bestName = known
		}
	}
	if bestScore >= IdentityAcceptScore {
		if id, ok := r.reg.Lookup(bestName); ok {
			return id, true
		}
	}

	r.mu.Lock()
	r.unresolved[name] = struct{}{}
	r.mu.Unlock()
	return 0, false
}

// Unresolved returns every name that failed resolution so far, sorted.
func (r *Resolver) Unresolved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.unresolved))
	for name := range r.unresolved {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

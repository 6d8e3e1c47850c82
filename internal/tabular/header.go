package tabular

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// HeaderAcceptScore is the minimum fuzzy similarity (0-100) for a candidate
// phrase to claim a column label. Looser than the identity threshold: a false
// header match only drops a column, it cannot corrupt a record.
const HeaderAcceptScore = 80

// FindColumn locates the column best representing one target field. The
// candidate phrases are ordered most-preferred first; earlier candidates win
// ties. Matching precedence: case-insensitive exact match, substring
// containment, then partial-ratio fuzzy scoring gated by HeaderAcceptScore.
// The returned label is the original (uncleaned) column label.
func FindColumn(columns []string, candidates []string) (string, bool) {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(strings.TrimSpace(c))
	}

	for _, cand := range candidates {
		cl := strings.ToLower(strings.TrimSpace(cand))
		if cl == "" {
			continue
		}
		for i, col := range lowered {
			if cl == col || (col != "" && strings.Contains(col, cl)) {
				return columns[i], true
			}
		}
	}

	bestScore := -1
	bestIdx := -1
	for _, cand := range candidates {
		cl := strings.ToLower(strings.TrimSpace(cand))
		if cl == "" {
			continue
		}
		for i, col := range lowered {
			if col == "" {
				continue
			}
			score := fuzzy.PartialRatio(cl, col)
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
	}
	if bestIdx >= 0 && bestScore >= HeaderAcceptScore {
		return columns[bestIdx], true
	}
	return "", false
}

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeUnresolvedLog appends every name that failed identity resolution this
// run to a per-run log file, one raw name per line, for manual alias-table
// curation. Returns the log path, or "" when there was nothing to write.
func writeUnresolvedLog(logsDir, runID string, names []string) (string, error) {
	if len(names) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return "", fmt.Errorf("create logs directory: %w", err)
	}

	path := filepath.Join(logsDir, fmt.Sprintf("unresolved_names_%s.txt", runID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return "", fmt.Errorf("open unresolved-name log: %w", err)
	}
	defer file.Close()

	for _, name := range names {
		if _, err := fmt.Fprintln(file, name); err != nil {
			return "", fmt.Errorf("write unresolved-name log: %w", err)
		}
	}
	return path, nil
}

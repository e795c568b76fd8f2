package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the parent directory of path if it does not exist
// yet and returns it. In-memory and URI-style paths are left alone.
func EnsureParentDir(path string) (string, error) {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, "mode=memory") {
		return "", nil
	}

	dir := filepath.Dir(path)
	if dir == "." {
		return dir, nil
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

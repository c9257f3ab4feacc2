// Package pathutil resolves the directory gateway's local pane starts
// out scoped to, per spec.md's local-addressing rules.
package pathutil

import (
	"os"
	"path/filepath"
)

// ResolveAbsolutePath turns path into an absolute, symlink-resolved
// path. An empty path resolves to the process's current directory. A
// leading ~ expands to the user's home directory before anything else
// runs.
//
// Symlinks are only resolved along the portion of path that already
// exists on disk; any trailing components that don't exist yet (e.g.
// the destination half of a not-yet-created directory) are appended
// untouched after the existing ancestor is resolved. This matters
// because the local pane is frequently pointed at a path under a
// symlinked home directory before every component of it has been
// created.
func ResolveAbsolutePath(path string) (string, error) {
	if path == "" {
		return os.Getwd()
	}

	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = home + path[1:]
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}

	return resolveDeepestExisting(abs)
}

// resolveDeepestExisting walks abs's ancestors upward until it finds
// one that exists, resolves symlinks on that ancestor alone, then
// reattaches the missing tail components in their original order.
// Reaching the filesystem root without finding an existing ancestor
// just returns abs unresolved rather than erroring — a missing path
// is not this function's problem to diagnose.
func resolveDeepestExisting(abs string) (string, error) {
	missing := make([]string, 0, 4)
	dir := abs

	for {
		if _, err := os.Stat(dir); err == nil {
			base := dir
			if real, err := filepath.EvalSymlinks(dir); err == nil {
				base = real
			}
			for i := len(missing) - 1; i >= 0; i-- {
				base = filepath.Join(base, missing[i])
			}
			return base, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		missing = append(missing, filepath.Base(dir))
		dir = parent
	}
}

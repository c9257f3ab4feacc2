package transfer

import "path"

// remoteJoin joins remote path segments with forward slashes,
// regardless of the host OS's own separator — remote servers are
// always POSIX-style, unlike the local side which uses filepath.
func remoteJoin(dir, name string) string {
	return path.Join(dir, name)
}

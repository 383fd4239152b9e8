//go:build linux || darwin || freebsd

package diskspace

import "golang.org/x/sys/unix"

func availableBytes(dir string) (uint64, bool) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return 0, false
	}
	// Bavail counts blocks available to unprivileged users.
	return uint64(stat.Bavail) * uint64(stat.Bsize), true
}

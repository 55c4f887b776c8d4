//go:build linux

package metadata

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// platformTimes reads the birth time through statx(2). Kernels or filesystems
// without STATX_BTIME leave birth zero, and creation falls back to mtime.
func platformTimes(path string, info os.FileInfo) (birth, access time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, time.Time{}
	}
	access = time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))

	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx); err != nil {
		return time.Time{}, access
	}
	if stx.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, access
	}
	return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), access
}

//go:build darwin

package metadata

import (
	"os"
	"syscall"
	"time"
)

func platformTimes(_ string, info os.FileInfo) (birth, access time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, time.Time{}
	}
	birth = time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
	access = time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	return birth, access
}

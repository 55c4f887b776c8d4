//go:build windows

package metadata

import (
	"os"
	"syscall"
	"time"
)

func platformTimes(_ string, info os.FileInfo) (birth, access time.Time) {
	attr, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return time.Time{}, time.Time{}
	}
	birth = time.Unix(0, attr.CreationTime.Nanoseconds())
	access = time.Unix(0, attr.LastAccessTime.Nanoseconds())
	return birth, access
}

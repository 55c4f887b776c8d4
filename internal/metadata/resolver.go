// Package metadata resolves file timestamps and turns them into name parts.
package metadata

import (
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/On-Jun9/NamePipe/pkg/types"
)

// Resolver looks up file metadata through an afero filesystem.
type Resolver struct {
	fs   afero.Fs
	exif *EXIFExtractor
}

// New returns a Resolver reading from fs. A nil fs means the OS filesystem.
func New(fs afero.Fs) *Resolver {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Resolver{fs: fs, exif: NewEXIFExtractor(fs)}
}

// ValidSource reports whether src is empty or a known date source.
func ValidSource(src types.DateSource) bool {
	switch src {
	case "", types.DateSourceModify, types.DateSourceCreate, types.DateSourceAccess, types.DateSourceEXIF:
		return true
	}
	return false
}

// FileDate returns the timestamp of kind for path. An empty kind means
// modify. Creation and access times fall back to the modification time when
// the platform does not provide them; so does a missing EXIF capture time.
func (r *Resolver) FileDate(path string, kind types.DateSource) (time.Time, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return time.Time{}, &StatError{Path: path, Err: err}
	}

	modTime := info.ModTime()
	birth, access := platformTimes(path, info)

	switch kind {
	case "", types.DateSourceModify:
		return modTime, nil
	case types.DateSourceCreate:
		if birth.IsZero() {
			return modTime, nil
		}
		return birth, nil
	case types.DateSourceAccess:
		if access.IsZero() {
			return modTime, nil
		}
		return access, nil
	case types.DateSourceEXIF:
		if t, err := r.exif.CaptureTime(path); err == nil {
			return t, nil
		}
		return modTime, nil
	default:
		return time.Time{}, fmt.Errorf("unknown date source %q", kind)
	}
}

// Size returns the byte length of path.
func (r *Resolver) Size(path string) (int64, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return 0, &StatError{Path: path, Err: err}
	}
	return info.Size(), nil
}

package metadata

import (
	"errors"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

// ErrNoCaptureTime is returned when EXIF data carries no usable date tag.
var ErrNoCaptureTime = errors.New("no capture time found in EXIF")

type EXIFExtractor struct {
	fs afero.Fs
}

func NewEXIFExtractor(fs afero.Fs) *EXIFExtractor {
	return &EXIFExtractor{fs: fs}
}

// CaptureTime reads DateTimeOriginal, then DateTimeDigitized, from path.
func (e *EXIFExtractor) CaptureTime(path string) (time.Time, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, errors.New("no EXIF data: " + err.Error())
	}

	if t, err := x.DateTime(); err == nil {
		return t, nil
	}

	if tag, err := x.Get(exif.DateTimeDigitized); err == nil {
		if strVal, err := tag.StringVal(); err == nil {
			if t, err := time.ParseInLocation("2006:01:02 15:04:05", strVal, time.Local); err == nil {
				return t, nil
			}
		}
	}

	return time.Time{}, ErrNoCaptureTime
}

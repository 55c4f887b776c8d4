// Package scanner lists the files a batch operates on.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/On-Jun9/NamePipe/pkg/types"
)

type Scanner struct {
	fs         afero.Fs
	includeExt map[string]bool
	recursive  bool
}

// New returns a Scanner. Extensions are matched case-insensitively, with or
// without a leading dot; an empty list accepts every file.
func New(fs afero.Fs, extensions []string, recursive bool) *Scanner {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	extMap := make(map[string]bool)
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			extMap[ext] = true
		}
	}
	return &Scanner{fs: fs, includeExt: extMap, recursive: recursive}
}

// Scan walks root and returns matching files in lexical walk order. Without
// recursion only the direct children of root are listed.
func (s *Scanner) Scan(root string) ([]types.FileRecord, error) {
	ok, err := afero.DirExists(s.fs, root)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", root, os.ErrNotExist)
	}

	var entries []types.FileRecord

	err = afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && !s.recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.matches(info.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = info.Name()
		}

		entries = append(entries, types.FileRecord{
			Name:         info.Name(),
			Path:         path,
			RelativePath: rel,
		})
		return nil
	})

	return entries, err
}

func (s *Scanner) matches(name string) bool {
	if len(s.includeExt) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return s.includeExt[ext]
}

// Package verify checks that a renamed file arrived intact at its new path.
package verify

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

type Verifier struct {
	fs         afero.Fs
	hashVerify bool
}

func New(fs afero.Fs, hashVerify bool) *Verifier {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Verifier{fs: fs, hashVerify: hashVerify}
}

// Fingerprint identifies file content before a rename.
type Fingerprint struct {
	Size int64
	Hash string
}

// Snapshot records the fingerprint of path. Hash is only filled when hash
// verification is enabled.
func (v *Verifier) Snapshot(path string) (Fingerprint, error) {
	info, err := v.fs.Stat(path)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("source file not found: %w", err)
	}

	fp := Fingerprint{Size: info.Size()}
	if v.hashVerify {
		if fp.Hash, err = hashFile(v.fs, path); err != nil {
			return Fingerprint{}, fmt.Errorf("failed to hash source: %w", err)
		}
	}
	return fp, nil
}

// Verify compares destPath with a fingerprint taken before the rename.
func (v *Verifier) Verify(destPath string, expected Fingerprint) error {
	destInfo, err := v.fs.Stat(destPath)
	if err != nil {
		return fmt.Errorf("destination file not found: %w", err)
	}

	if destInfo.Size() != expected.Size {
		return fmt.Errorf("size mismatch: expected %d, got %d", expected.Size, destInfo.Size())
	}

	if !v.hashVerify || expected.Hash == "" {
		return nil
	}

	destHash, err := hashFile(v.fs, destPath)
	if err != nil {
		return fmt.Errorf("failed to hash destination: %w", err)
	}

	if expected.Hash != destHash {
		return fmt.Errorf("hash mismatch: src=%s, dest=%s", expected.Hash, destHash)
	}

	return nil
}

func hashFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

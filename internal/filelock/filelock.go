// Package filelock serialises writes to NamePipe's data files (presets,
// history, exported plans) between concurrent CLI and web processes.
package filelock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const retryDelay = 50 * time.Millisecond

// Lock guards a data file through a sibling "<path>.lock" file.
type Lock struct {
	flock *flock.Flock
	path  string
}

// For returns the lock guarding path.
func For(path string) *Lock {
	lockPath := path + ".lock"
	return &Lock{flock: flock.New(lockPath), path: lockPath}
}

func (l *Lock) Path() string {
	return l.path
}

// Acquire blocks until the lock is held or ctx is done.
func (l *Lock) Acquire(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.flock.TryLockContext(ctx, retryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.path, err)
	}
	if !ok {
		return fmt.Errorf("acquire lock %s: not acquired", l.path)
	}
	return nil
}

// TryAcquire takes the lock without waiting and reports whether it did.
func (l *Lock) TryAcquire() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("try lock %s: %w", l.path, err)
	}
	return ok, nil
}

func (l *Lock) Release() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", l.path, err)
	}
	return nil
}

// WriteAtomic replaces path with data by writing a temp file in the same
// directory and renaming it over the target. Readers see either the old or
// the new content.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	committed = true
	return nil
}

// Write holds the lock for path while atomically replacing it.
func Write(ctx context.Context, path string, data []byte) error {
	lock := For(path)
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer lock.Release()
	return WriteAtomic(path, data)
}

// Update holds the lock for path across a read-modify-write cycle. fn gets
// the current content, or nil when the file does not exist yet.
func Update(ctx context.Context, path string, fn func(current []byte) ([]byte, error)) error {
	lock := For(path)
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer lock.Release()

	current, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return WriteAtomic(path, next)
}

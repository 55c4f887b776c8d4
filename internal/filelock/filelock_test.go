package filelock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
)

func TestFor_UsesSiblingLockFile(t *testing.T) {
	l := For("/data/history.json")
	if l.Path() != "/data/history.json.lock" {
		t.Fatalf("unexpected lock path: %s", l.Path())
	}
}

func TestLock_TryAcquireWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.json")

	first := For(path)
	if err := first.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	ok, err := For(path).TryAcquire()
	if err != nil {
		t.Fatalf("try acquire: %v", err)
	}
	if ok {
		t.Fatal("second lock must not be acquired while first is held")
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	second := For(path)
	ok, err = second.TryAcquire()
	if err != nil || !ok {
		t.Fatalf("expected lock after release, ok=%v err=%v", ok, err)
	}
	second.Release()
}

func TestWriteAtomic_ReplacesContentAndCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "plan.json")

	if err := WriteAtomic(path, []byte("one")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteAtomic(path, []byte("two")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("unexpected content: %q", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestUpdate_SerialisesConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := Update(context.Background(), path, func(current []byte) ([]byte, error) {
				n := 0
				if current != nil {
					n, _ = strconv.Atoi(string(current))
				}
				return []byte(strconv.Itoa(n + 1)), nil
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	data, _ := os.ReadFile(path)
	if string(data) != strconv.Itoa(workers) {
		t.Fatalf("expected %d, got %q", workers, data)
	}
}

func TestUpdate_CallbackErrorLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	if err := os.WriteFile(path, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err := Update(context.Background(), path, func([]byte) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "keep" {
		t.Fatalf("file modified: %q", data)
	}
}

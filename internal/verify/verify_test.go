package verify

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestVerifier_SizeOnlySuccessWhenHashDisabled(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/d/src.bin", []byte("abc"), 0644)

	v := New(fs, false)
	fp, err := v.Snapshot("/d/src.bin")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if fp.Hash != "" {
		t.Fatal("hash must stay empty when hash verification is off")
	}

	if err := fs.Rename("/d/src.bin", "/d/dest.bin"); err != nil {
		t.Fatal(err)
	}
	if err := v.Verify("/d/dest.bin", fp); err != nil {
		t.Fatalf("expected verify success, got %v", err)
	}
}

func TestVerifier_SizeMismatch(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/d/dest.bin", []byte("abc"), 0644)

	err := New(fs, false).Verify("/d/dest.bin", Fingerprint{Size: 4})
	if err == nil {
		t.Fatal("expected size mismatch error")
	}
	if !strings.Contains(err.Error(), "size mismatch") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifier_HashMismatchWhenEnabled(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/d/src.bin", []byte("abcd"), 0644)
	afero.WriteFile(fs, "/d/dest.bin", []byte("wxyz"), 0644)

	v := New(fs, true)
	fp, err := v.Snapshot("/d/src.bin")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}

	err = v.Verify("/d/dest.bin", fp)
	if err == nil || !strings.Contains(err.Error(), "hash mismatch") {
		t.Fatalf("expected hash mismatch, got %v", err)
	}
}

func TestVerifier_MissingFiles(t *testing.T) {
	v := New(afero.NewMemMapFs(), true)

	if _, err := v.Snapshot("/missing"); err == nil || !strings.Contains(err.Error(), "source file not found") {
		t.Fatalf("expected missing source error, got %v", err)
	}
	if err := v.Verify("/missing", Fingerprint{}); err == nil || !strings.Contains(err.Error(), "destination file not found") {
		t.Fatalf("expected missing destination error, got %v", err)
	}
}

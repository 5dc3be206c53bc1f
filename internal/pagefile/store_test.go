package pagefile

import (
	"path/filepath"
	"testing"

	"github.com/orizon-lang/vmemtrans/internal/vmm"
)

func TestFileStoreRoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vmpf")

	s, err := OpenFileStore(path, 4)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}

	words := []vmm.Word{11, 22, 33, 44}
	if err := s.Store(3, words); err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenFileStore(path, 4)
	if err != nil {
		t.Fatalf("OpenFileStore (reopen): %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(3)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for i, w := range words {
		if got[i] != w {
			t.Fatalf("Load(3)[%d] = %d, want %d", i, got[i], w)
		}
	}
}

func TestFileStoreLoadNeverStoredIsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vmpf")

	s, err := OpenFileStore(path, 4)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	defer s.Close()

	got, err := s.Load(500)
	if err != nil {
		t.Fatalf("Load(500): %v", err)
	}

	for i, w := range got {
		if w != 0 {
			t.Fatalf("Load(500)[%d] = %d, want 0", i, w)
		}
	}
}

func TestFileStoreRejectsPageSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vmpf")

	s, err := OpenFileStore(path, 4)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := OpenFileStore(path, 8); err == nil {
		t.Fatalf("OpenFileStore with mismatched page size = nil error, want error")
	}
}

func TestFileStoreRejectsWrongWordCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vmpf")

	s, err := OpenFileStore(path, 4)
	if err != nil {
		t.Fatalf("OpenFileStore: %v", err)
	}
	defer s.Close()

	if err := s.Store(0, []vmm.Word{1, 2}); err == nil {
		t.Fatalf("Store with 2 words against page size 4 = nil error, want error")
	}
}

package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gratitude5dee/tendril/pkg/adapters/file"
	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
	"github.com/gratitude5dee/tendril/pkg/ports/tests"
)

// Ensure Store implements CredentialStore
var _ ports.CredentialStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "credential.json"))
	tests.RunCredentialStoreContract(t, store)
}

func TestFileStore_DefaultPath(t *testing.T) {
	store := file.New("")
	if store.Path != filepath.Join(".tendril", "credential.json") {
		t.Fatalf("default path = %q", store.Path)
	}
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	path := filepath.Join(t.TempDir(), "credential.json")
	store := file.New(path)

	if err := store.Set(context.Background(), "secret-key"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credential file mode = %o, want 0600", perm)
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("seeding corrupt file: %v", err)
	}

	store := file.New(path)
	_, err := store.Get(context.Background())
	if err == nil {
		t.Fatal("expected an error for a corrupt credential file")
	}
	if errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatal("a corrupt file is not the same as an empty slot")
	}
}

func TestFileStore_SetCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "credential.json")
	store := file.New(path)

	if err := store.Set(context.Background(), "key"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "key" {
		t.Fatalf("credential = %q, want %q", got, "key")
	}
}

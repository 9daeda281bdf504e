package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gratitude5dee/tendril/pkg/domain"
)

// Store implements ports.CredentialStore on the local filesystem.
// The slot lives in a single JSON file created with 0600 permissions.
type Store struct {
	Path string
}

// New creates a new Store backed by the given file path.
// If path is empty, it defaults to ".tendril/credential.json".
func New(path string) *Store {
	if path == "" {
		path = filepath.Join(".tendril", "credential.json")
	}
	return &Store{Path: path}
}

type slot struct {
	Credential string `json:"credential"`
}

// Get reads the slot file.
func (s *Store) Get(ctx context.Context) (domain.Credential, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", domain.ErrCredentialNotFound
		}
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}

	var sl slot
	if err := json.Unmarshal(data, &sl); err != nil {
		return "", fmt.Errorf("failed to unmarshal credential file: %w", err)
	}
	if sl.Credential == "" {
		return "", domain.ErrCredentialNotFound
	}

	return domain.Credential(sl.Credential), nil
}

// Set persists the credential atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to
// the destination.
func (s *Store) Set(ctx context.Context, credential domain.Credential) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to ensure credential directory: %w", err)
	}

	data, err := json.Marshal(slot{Credential: string(credential)})
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	// Temp file in the same directory to stay on one filesystem (required for
	// atomic rename). CreateTemp already uses 0600.
	tmpFile, err := os.CreateTemp(dir, "tmp-credential-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()    // Ensure closed
		_ = os.Remove(tmpPath) // Remove if still exists (not renamed)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists; remove it first. The
	// delete+rename window is acceptable compared to a partial write.
	if _, err := os.Stat(s.Path); err == nil {
		if err := os.Remove(s.Path); err != nil {
			return fmt.Errorf("failed to remove existing credential file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}

	return nil
}

// Clear removes the slot file.
func (s *Store) Clear(ctx context.Context) error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credential file: %w", err)
	}
	return nil
}

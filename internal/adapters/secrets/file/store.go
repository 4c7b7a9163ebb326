// Package file stores credential blobs as files under a private root
// directory, one file per credential ref.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"trendpress/internal/domain"
	"trendpress/internal/ports"
)

const (
	storeDirMode = 0o700
	blobFileMode = 0o600
)

type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.CredentialStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Put(ctx context.Context, ref string, blob []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForRef(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), storeDirMode); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}

	if err := os.WriteFile(path, blob, blobFileMode); err != nil {
		return fmt.Errorf("write credential blob %q: %w", ref, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.pathForRef(ref)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("credential blob %q: %w", ref, domain.ErrCredentialNotFound)
		}
		return nil, fmt.Errorf("read credential blob %q: %w", ref, err)
	}

	return data, nil
}

func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.pathForRef(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete credential blob %q: %w", ref, err)
	}

	return nil
}

func (s *Store) pathForRef(ref string) (string, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return "", errors.New("credential ref is empty")
	}

	cleaned := filepath.Clean(trimmed)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("invalid credential ref %q", ref)
	}

	return filepath.Join(s.root, cleaned), nil
}

package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore keeps files under Root and exposes them below BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func NewLocalStore(root, baseURL string) *LocalStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStore{Root: root, BaseURL: baseURL}
}

func (s *LocalStore) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	dst, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return s.BaseURL + name, nil
}

func (s *LocalStore) Delete(_ context.Context, locator string) error {
	name := strings.TrimPrefix(locator, s.BaseURL)
	if name == locator && s.BaseURL != "" {
		return fmt.Errorf("locator %q not managed by this store", locator)
	}
	dst, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path returns the on-disk location for a locator.
func (s *LocalStore) Path(locator string) string {
	p, _ := s.resolve(strings.TrimPrefix(locator, s.BaseURL))
	return p
}

func (s *LocalStore) resolve(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}

var _ Store = (*LocalStore)(nil)

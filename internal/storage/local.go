package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Skotchmaster/shopfront/internal/imageurl"
)

type LocalStore struct {
	Dir      string
	Resolver imageurl.Resolver
}

func NewLocalStore(dir string, resolver imageurl.Resolver) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{Dir: dir, Resolver: resolver}, nil
}

func (s *LocalStore) Save(_ context.Context, up Upload) (string, error) {
	name := GenerateName(up.Field, up.Filename)
	full := filepath.Join(s.Dir, name)

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	n, copyErr := io.Copy(f, io.LimitReader(up.Body, MaxImageSize+1))
	closeErr := f.Close()
	if copyErr == nil && n > MaxImageSize {
		copyErr = ErrTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(full)
		if errors.Is(copyErr, ErrTooLarge) {
			return "", copyErr
		}
		return "", fmt.Errorf("write image file: %w", copyErr)
	}

	return s.Resolver.Path(name), nil
}

func (s *LocalStore) Owns(imageURL string) bool {
	_, ok := s.Resolver.LocalName(imageURL)
	return ok
}

func (s *LocalStore) Remove(_ context.Context, imageURL string) error {
	name, ok := s.Resolver.LocalName(imageURL)
	if !ok {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image file: %w", err)
	}
	return nil
}

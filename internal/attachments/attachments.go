// Package attachments stores uploaded reconciliation documents and gunny
// acknowledgement photos. Records keep only the returned reference.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("attachment not found")
	ErrInvalidName = errors.New("invalid attachment name")
)

type Store interface {
	Put(ctx context.Context, name string, contentType string, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// ObjectName builds "<folder>/<timestamp>-<clean filename>".
func ObjectName(folder string, filename string, at time.Time) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, path.Base(strings.ReplaceAll(filename, "\\", "/")))
	base = strings.TrimLeft(base, ".")
	if base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%s/%s-%s", folder, at.UTC().Format("20060102-150405"), base)
}

func cleanName(name string) (string, error) {
	cleaned := path.Clean(strings.TrimSpace(name))
	if cleaned == "." || cleaned == "/" || strings.HasPrefix(cleaned, "/") || strings.HasPrefix(cleaned, "../") || cleaned == ".." {
		return "", ErrInvalidName
	}
	return cleaned, nil
}

type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Put(_ context.Context, name string, _ string, data []byte) (string, error) {
	ref, err := cleanName(name)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.dir, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *LocalStore) Get(_ context.Context, ref string) ([]byte, error) {
	cleaned, err := cleanName(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filepath.FromSlash(cleaned)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

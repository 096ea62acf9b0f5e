package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/itchan-dev/boardapi/internal/media"
)

type Storage struct {
	rootPath string
}

// Ensure Storage struct implements the interface at compile time.
var _ media.FileStore = (*Storage)(nil)

func New(rootPath string) (*Storage, error) {
	p := filepath.Clean(rootPath)

	for _, kind := range media.Kinds {
		if err := os.MkdirAll(filepath.Join(p, string(kind)), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory %s: %w", kind, err)
		}
	}

	return &Storage{rootPath: p}, nil
}

// Root is the directory that holds the images/ and thumbnails/ folders.
func (s *Storage) Root() string {
	return s.rootPath
}

func (s *Storage) path(kind media.Kind, name string) (string, error) {
	if err := media.CheckName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.rootPath, string(kind), name), nil
}

// Save writes into a temp file next to the destination and renames it, so a
// file under its final name is always complete.
func (s *Storage) Save(ctx context.Context, kind media.Kind, name string, data io.Reader, size int64, contentType string) error {
	fullPath, err := s.path(kind, name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy file data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, kind media.Kind, name string) error {
	fullPath, err := s.path(kind, name)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// List returns regular files of kind. Unfinished temp uploads are skipped.
func (s *Storage) List(ctx context.Context, kind media.Kind) ([]media.FileInfo, error) {
	dir := filepath.Join(s.rootPath, string(kind))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	files := make([]media.FileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || entry.Name()[0] == '.' {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		files = append(files, media.FileInfo{
			Kind:    kind,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

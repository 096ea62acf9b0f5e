package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// Kind is the top-level folder (or key prefix) a file lives under.
type Kind string

const (
	KindImage     Kind = "images"
	KindThumbnail Kind = "thumbnails"
)

var Kinds = []Kind{KindImage, KindThumbnail}

type FileInfo struct {
	Kind    Kind
	Name    string
	Size    int64
	ModTime time.Time
}

// FileStore is where stored images and thumbnails physically live.
type FileStore interface {
	// Save writes the whole of data under kind/name. The file must be
	// complete when Save returns without error.
	Save(ctx context.Context, kind Kind, name string, data io.Reader, size int64, contentType string) error
	// Delete removes kind/name. A missing file is not an error.
	Delete(ctx context.Context, kind Kind, name string) error
	List(ctx context.Context, kind Kind) ([]FileInfo, error)
}

// CheckName rejects anything that is not a plain file name.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("invalid media file name %q", name)
	}
	return nil
}

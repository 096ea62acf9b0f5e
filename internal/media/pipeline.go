package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/itchan-dev/boardapi/internal/domain"
	internal_errors "github.com/itchan-dev/boardapi/internal/errors"
	"github.com/itchan-dev/boardapi/internal/logger"
)

const thumbnailPrefix = "thumb_"

// Pipeline turns uploads into a stored original plus a bounded thumbnail.
type Pipeline struct {
	store          FileStore
	thumbSize      int
	maxDecodedSize int64
}

// NewPipeline creates a pipeline that refuses images whose decoded RGBA
// buffer would exceed maxDecodedSize bytes.
func NewPipeline(store FileStore, thumbnailMaxSize int, maxDecodedSize int64) *Pipeline {
	return &Pipeline{store: store, thumbSize: thumbnailMaxSize, maxDecodedSize: maxDecodedSize}
}

// Store decodes the upload, writes the original and its thumbnail and reports
// what was stored. Nothing is left on the store when it fails.
func (p *Pipeline) Store(ctx context.Context, upload domain.Upload) (domain.StoredImage, error) {
	// header only: a crafted file can claim dimensions that would take
	// gigabytes to decode
	imgCfg, format, err := image.DecodeConfig(upload.Data)
	if err != nil {
		logger.Log.Debug("failed to read image header", "filename", upload.OriginalFilename, "error", err)
		return domain.StoredImage{}, internal_errors.Validation("Not an image! Please upload an image file.")
	}
	if int64(imgCfg.Width)*int64(imgCfg.Height)*4 > p.maxDecodedSize {
		return domain.StoredImage{}, internal_errors.Validation(fmt.Sprintf("Image dimensions are too large: %dx%d.", imgCfg.Width, imgCfg.Height))
	}
	if _, err := upload.Data.Seek(0, io.SeekStart); err != nil {
		return domain.StoredImage{}, fmt.Errorf("failed to rewind upload: %w", err)
	}

	img, err := imaging.Decode(upload.Data, imaging.AutoOrientation(true))
	if err != nil {
		logger.Log.Debug("failed to decode upload", "filename", upload.OriginalFilename, "error", err)
		return domain.StoredImage{}, internal_errors.Validation("Not an image! Please upload an image file.")
	}
	if _, err := upload.Data.Seek(0, io.SeekStart); err != nil {
		return domain.StoredImage{}, fmt.Errorf("failed to rewind upload: %w", err)
	}

	// stored mime type follows the decoded format, not the declared one
	mimeType := "image/" + format
	if mimeType != upload.MimeType {
		logger.Log.Debug("declared mime type differs from content", "declared", upload.MimeType, "detected", mimeType)
	}

	id := uuid.NewString()
	stored := domain.StoredImage{
		ImageFilename: id + extension(upload.OriginalFilename, format),
		MimeType:      mimeType,
		SizeBytes:     upload.Size,
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
	}

	thumb := imaging.Fit(img, p.thumbSize, p.thumbSize, imaging.Lanczos)
	thumbFormat, thumbExt, thumbMime := thumbnailFormat(mimeType)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, thumbFormat, imaging.JPEGQuality(85)); err != nil {
		return domain.StoredImage{}, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if err := p.store.Save(ctx, KindImage, stored.ImageFilename, upload.Data, upload.Size, mimeType); err != nil {
		return domain.StoredImage{}, fmt.Errorf("failed to store image: %w", err)
	}

	stored.ThumbnailFilename = thumbnailPrefix + id + thumbExt
	if err := p.store.Save(ctx, KindThumbnail, stored.ThumbnailFilename, &buf, int64(buf.Len()), thumbMime); err != nil {
		p.Remove(ctx, domain.StoredImage{ImageFilename: stored.ImageFilename})
		return domain.StoredImage{}, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	return stored, nil
}

// Remove deletes the original and thumbnail of every image. It runs even if
// ctx is already cancelled; failures are logged and never returned.
func (p *Pipeline) Remove(ctx context.Context, images ...domain.StoredImage) {
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		p.remove(ctx, KindImage, img.ImageFilename)
		p.remove(ctx, KindThumbnail, img.ThumbnailFilename)
	}
}

func (p *Pipeline) remove(ctx context.Context, kind Kind, name string) {
	if name == "" {
		return
	}
	if err := p.store.Delete(ctx, kind, name); err != nil {
		logger.Log.Error("error deleting media file", "kind", kind, "file", name, "error", err)
	}
}

var formatExtensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
	"webp": ".webp",
	"bmp":  ".bmp",
	"tiff": ".tiff",
}

// extension keeps the client's extension when it matches the decoded format.
func extension(originalFilename, format string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	if ext != "" && CheckName("x"+ext) == nil && mime.TypeByExtension(ext) == "image/"+format {
		return ext
	}
	if ext, ok := formatExtensions[format]; ok {
		return ext
	}
	return "." + format
}

// formats that may carry transparency keep it in a PNG thumbnail
func thumbnailFormat(mimeType string) (imaging.Format, string, string) {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return imaging.PNG, ".png", "image/png"
	default:
		return imaging.JPEG, ".jpg", "image/jpeg"
	}
}

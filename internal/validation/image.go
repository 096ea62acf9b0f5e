package validation

import (
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/itchan-dev/boardapi/internal/domain"
)

// ImageUpload opens the single image in form field. It returns a nil upload
// when the field is absent. The caller closes the returned file via cleanup.
func ImageUpload(form *multipart.Form, field string, allowedMimes []string, maxSize int64) (upload *domain.Upload, cleanup func(), err error) {
	cleanup = func() {}
	if form == nil {
		return nil, cleanup, nil
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, cleanup, nil
	}
	if len(headers) > 1 {
		return nil, cleanup, fmt.Errorf("%w: only one image is allowed", ErrTooManyFiles)
	}
	header := headers[0]

	if header.Size > maxSize {
		return nil, cleanup, fmt.Errorf("%w: image exceeds the limit of %.0f MB", ErrPayloadTooLarge, FormatSizeMB(maxSize))
	}

	mimeType, err := DetectMimeType(header)
	if err != nil {
		return nil, cleanup, err
	}
	if !strings.HasPrefix(mimeType, "image/") || !BuildAllowedMimeMap(allowedMimes)[mimeType] {
		return nil, cleanup, fmt.Errorf("%w: %s (file: %s)", ErrInvalidMimeType, mimeType, header.Filename)
	}

	file, err := header.Open()
	if err != nil {
		return nil, cleanup, fmt.Errorf("failed to open uploaded file: %w", err)
	}

	upload = &domain.Upload{
		OriginalFilename: filepath.Base(header.Filename),
		MimeType:         mimeType,
		Size:             header.Size,
		Data:             file,
	}
	return upload, func() { file.Close() }, nil
}

func BuildAllowedMimeMap(mimes []string) map[string]bool {
	allowed := make(map[string]bool, len(mimes))
	for _, m := range mimes {
		allowed[m] = true
	}
	return allowed
}

func DetectMimeType(fileHeader *multipart.FileHeader) (string, error) {
	mimeType := fileHeader.Header.Get("Content-Type")

	// If no Content-Type or it's generic, detect from extension
	if mimeType == "" || mimeType == "application/octet-stream" {
		ext := filepath.Ext(fileHeader.Filename)
		if detected := mime.TypeByExtension(ext); detected != "" {
			mimeType = detected
		}
	}
	if mimeType == "" {
		return "", fmt.Errorf("%w: could not detect MIME type for file: %s", ErrInvalidMimeType, fileHeader.Filename)
	}

	// drop parameters such as "; charset=..."
	if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = parsed
	}
	return mimeType, nil
}

package validation

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidateAndParseMultipart caps the body at maxSize and parses the multipart form.
// Exceeding the cap makes the server stop reading and close the connection.
func ValidateAndParseMultipart(r *http.Request, w http.ResponseWriter, maxSize int64) error {
	if r.ContentLength > maxSize {
		return fmt.Errorf("%w: request body is %d bytes", ErrPayloadTooLarge, r.ContentLength)
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: failed to parse multipart form", ErrPayloadTooLarge)
		}
		return fmt.Errorf("failed to parse multipart form: %w", err)
	}

	return nil
}

// CalculateMaxRequestSize adds a buffer for form fields and multipart overhead.
func CalculateMaxRequestSize(maxImageSize int64, bufferSize int64) int64 {
	return maxImageSize + bufferSize
}

func FormatSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

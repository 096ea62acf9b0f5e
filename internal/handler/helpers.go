package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	internal_errors "github.com/itchan-dev/boardapi/internal/errors"
	"github.com/itchan-dev/boardapi/internal/validation"
)

// parseIntParam parses an integer parameter from a string and returns a meaningful error
func parseIntParam(param string, paramName string) (int64, error) {
	val, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return 0, internal_errors.Validation(fmt.Sprintf("invalid %s: must be an integer", paramName))
	}
	return val, nil
}

// parseOptionalIntParam treats a missing parameter as zero.
func parseOptionalIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	val, err := parseIntParam(raw, name)
	return int(val), err
}

// formValue returns nil when the field was not submitted at all.
func formValue(r *http.Request, name string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// uploadError maps multipart and image validation failures to client errors.
func uploadError(err error, maxImageSize int64) error {
	switch {
	case errors.Is(err, validation.ErrPayloadTooLarge):
		return internal_errors.TooLarge(fmt.Sprintf("Image exceeds the limit of %.0f MB.", validation.FormatSizeMB(maxImageSize)))
	case errors.Is(err, validation.ErrInvalidMimeType):
		return internal_errors.Validation("Only image files are allowed!")
	case errors.Is(err, validation.ErrTooManyFiles):
		return internal_errors.Validation("Only one image can be attached.")
	default:
		return internal_errors.Validation("Request must be a valid multipart form.")
	}
}

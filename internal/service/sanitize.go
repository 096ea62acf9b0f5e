package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict policy drops every tag; the text is returned unescaped since the API
// serves JSON and escaping is left to whoever renders it.
var textPolicy = bluemonday.StrictPolicy()

func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

// sanitizeOptional returns nil for a nil or blank value.
func sanitizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := sanitizeText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}
